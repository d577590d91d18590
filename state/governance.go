package state

import (
	"errors"

	"github.com/flightsurety/surety-node/tx"
	"github.com/flightsurety/surety-node/types"
	"github.com/cometbft/cometbft/crypto/ed25519"
)

// ApplyAirline sponsors a new airline. While the registered set is small
// enough the applicant is admitted directly; past the multiparty threshold
// each call records one admission vote and the applicant flips to Registered
// when a majority of the current registered set has voted. Exactly one of
// the returned events is set.
func (s *State) ApplyAirline(sponsor string, t *tx.ApplyAirlineTx, checkOnly bool) (applied *types.EventAirlineApplied, registered *types.EventAirlineRegistered, err error) {
	if !s.header.Operational {
		return nil, nil, ErrNotOperational
	}
	sp, err := s.Airline(sponsor)
	if err != nil {
		return nil, nil, err
	}
	if sp == nil {
		return nil, nil, ErrAirlineNotFound
	}
	if sp.Status != types.AirlineStatusFunded {
		return nil, nil, ErrAirlineNotFunded
	}
	if len(t.Pubkey) != ed25519.PubKeySize {
		return nil, nil, errors.New("applicant pubkey size invalid")
	}
	addr := AddrString(t.Pubkey)
	if addr == sponsor {
		return nil, nil, ErrSelfSponsor
	}
	a, err := s.Airline(addr)
	if err != nil {
		return nil, nil, err
	}
	if a != nil && a.Status >= types.AirlineStatusRegistered {
		return nil, nil, ErrAirlineRegistered
	}

	direct := s.header.AirlineCount <= s.cfg.MultipartyThreshold
	if !direct && a != nil && a.HasVote(sponsor) {
		return nil, nil, ErrDuplicateVote
	}

	if !checkOnly {
		if a == nil {
			a = &types.Airline{
				Address: addr,
				PubKey:  append([]byte(nil), t.Pubkey...),
				Name:    t.Name,
				Status:  types.AirlineStatusApplied,
				Height:  s.header.Height,
			}
		}
		a.Votes = append(a.Votes, sponsor)
		votes := uint64(len(a.Votes))
		// majority of the registered set, rounded up
		needed := (s.header.AirlineCount + 1) / 2
		if direct || votes >= needed {
			a.Status = types.AirlineStatusRegistered
			s.header.AirlineCount += 1
			registered = &types.EventAirlineRegistered{
				Airline: addr,
				Sponsor: sponsor,
				Votes:   votes,
			}
		} else {
			applied = &types.EventAirlineApplied{
				Airline: addr,
				Sponsor: sponsor,
				Votes:   votes,
			}
		}
		s.markAirline(a.Clone())
		if err = s.bumpNonce(sponsor); err != nil {
			return nil, nil, err
		}
	}
	return
}

// FundAirline posts the caller's stake. A Registered airline becomes Funded
// and gains sponsor and validator rights; the stake is added to the pool.
func (s *State) FundAirline(caller string, t *tx.FundAirlineTx, checkOnly bool) (event *types.EventAirlineFunded, err error) {
	if !s.header.Operational {
		return nil, ErrNotOperational
	}
	a, err := s.Airline(caller)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAirlineNotFound
	}
	if a.Status == types.AirlineStatusFunded {
		return nil, ErrAlreadyFunded
	}
	if a.Status != types.AirlineStatusRegistered {
		return nil, ErrAirlineNotRegistered
	}
	if t.Amount < s.cfg.MinAirlineFunding {
		return nil, ErrFundingTooLow
	}

	if !checkOnly {
		a.Status = types.AirlineStatusFunded
		a.Funding = t.Amount
		s.markAirline(a.Clone())
		if err = s.addPool(t.Amount); err != nil {
			return nil, err
		}
		if err = s.bumpNonce(caller); err != nil {
			return nil, err
		}
		event = &types.EventAirlineFunded{
			Airline: caller,
			Amount:  t.Amount,
		}
	}
	return
}

// SetOperational flips the pause gate. Only Funded airlines may call it, and
// it stays callable while paused so the scheme can be resumed.
func (s *State) SetOperational(caller string, t *tx.SetOperationalTx, checkOnly bool) (event *types.EventOperationalSet, err error) {
	a, err := s.Airline(caller)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAirlineNotFound
	}
	if a.Status != types.AirlineStatusFunded {
		return nil, ErrAirlineNotFunded
	}

	if !checkOnly {
		s.header.Operational = t.Operational
		if err = s.bumpNonce(caller); err != nil {
			return nil, err
		}
		event = &types.EventOperationalSet{
			Operational: t.Operational,
			By:          caller,
		}
	}
	return
}
