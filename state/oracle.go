package state

import (
	"encoding/binary"

	"github.com/flightsurety/surety-node/tx"
	"github.com/flightsurety/surety-node/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// deriveIndex draws one index from the status domain, seeded by the current
// height and the caller address. The salt disambiguates repeated draws
// within one derivation.
func (s *State) deriveIndex(addr string, salt uint64) uint8 {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], s.header.Height)
	binary.BigEndian.PutUint64(buf[8:], salt)
	h := crypto.Keccak256([]byte(addr), buf[:])
	return h[len(h)-1] % s.cfg.StatusDomainSize
}

// deriveIndexes draws the oracle's distinct index set, bumping the salt
// until enough distinct values come out.
func (s *State) deriveIndexes(addr string) []uint8 {
	idxs := make([]uint8, 0, s.cfg.OracleIndexCount)
	seen := make(map[uint8]bool)
	for salt := uint64(0); len(idxs) < s.cfg.OracleIndexCount; salt++ {
		idx := s.deriveIndex(addr, salt)
		if seen[idx] {
			continue
		}
		seen[idx] = true
		idxs = append(idxs, idx)
	}
	return idxs
}

// RegisterOracle admits a responder: the fee moves into the pool and the
// oracle is bound to its derived index set for good.
func (s *State) RegisterOracle(caller string, pubkey []byte, t *tx.RegisterOracleTx, checkOnly bool) (event *types.EventOracleRegistered, err error) {
	if !s.header.Operational {
		return nil, ErrNotOperational
	}
	if t.Fee < s.cfg.RegistrationFee {
		return nil, ErrFeeTooLow
	}
	o, err := s.Oracle(caller)
	if err != nil {
		return nil, err
	}
	if o != nil {
		return nil, ErrOracleExists
	}

	if !checkOnly {
		o = &types.OracleWorker{
			Address: caller,
			PubKey:  append([]byte(nil), pubkey...),
			Indexes: s.deriveIndexes(caller),
			Height:  s.header.Height,
		}
		s.markOracle(o)
		if err = s.addPool(t.Fee); err != nil {
			return nil, err
		}
		if err = s.bumpNonce(caller); err != nil {
			return nil, err
		}
		event = &types.EventOracleRegistered{
			Oracle:  caller,
			Indexes: o.Indexes,
		}
	}
	return
}

// OracleIndexes returns the index set bound to a registered oracle.
func (s *State) OracleIndexes(addr string) ([]uint8, error) {
	o, err := s.Oracle(addr)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOracleNotFound
	}
	return o.Indexes, nil
}

// FetchFlightStatus opens a status request for a flight under a fresh index
// drawn from the caller. Only oracles holding that index may answer it.
func (s *State) FetchFlightStatus(caller string, t *tx.FetchStatusTx, checkOnly bool) (event *types.EventOracleRequest, err error) {
	if !s.header.Operational {
		return nil, ErrNotOperational
	}
	index := s.deriveIndex(caller, 0)
	key := types.RequestKey(index, t.Airline, t.Flight, t.Timestamp)
	r, err := s.Request(key)
	if err != nil {
		return nil, err
	}
	if r != nil {
		return nil, ErrRequestExists
	}

	if !checkOnly {
		r = &types.StatusRequest{
			Key:       key,
			Index:     index,
			Airline:   t.Airline,
			Flight:    t.Flight,
			Timestamp: t.Timestamp,
			Responses: make(map[uint64][]string),
			Height:    s.header.Height,
		}
		s.markRequest(r)
		if err = s.bumpNonce(caller); err != nil {
			return nil, err
		}
		event = &types.EventOracleRequest{
			Index:     index,
			Airline:   t.Airline,
			Flight:    t.Flight,
			Timestamp: t.Timestamp,
		}
	}
	return
}

// SubmitOracleResponse records one oracle's answer to an open request. The
// first status code reaching the response quorum settles the request and,
// when the code blames the airline, credits the flight's insurees. Late and
// repeated answers are accepted as no-ops so honest retries never fail.
func (s *State) SubmitOracleResponse(caller string, t *tx.OracleResponseTx, checkOnly bool) (statusInfo *types.EventFlightStatusInfo, credited *types.EventInsureesCredited, err error) {
	if !s.header.Operational {
		return nil, nil, ErrNotOperational
	}
	o, err := s.Oracle(caller)
	if err != nil {
		return nil, nil, err
	}
	if o == nil {
		return nil, nil, ErrOracleNotFound
	}
	if !o.HasIndex(t.Index) {
		return nil, nil, ErrIndexNotAssigned
	}
	code := types.FlightStatus(t.Status)
	if !code.Valid() {
		return nil, nil, ErrInvalidStatus
	}
	key := types.RequestKey(t.Index, t.Airline, t.Flight, t.Timestamp)
	r, err := s.Request(key)
	if err != nil {
		return nil, nil, err
	}
	if r == nil {
		return nil, nil, ErrRequestNotFound
	}

	if !checkOnly {
		if r.Resolved || r.HasResponder(code, caller) {
			err = s.bumpNonce(caller)
			return
		}
		r.Responses[t.Status] = append(r.Responses[t.Status], caller)
		if len(r.Responses[t.Status]) >= s.cfg.MinResponses {
			r.Resolved = true
			statusInfo = &types.EventFlightStatusInfo{
				Airline:   t.Airline,
				Flight:    t.Flight,
				Timestamp: t.Timestamp,
				Status:    t.Status,
			}
			fkey := types.FlightKey(t.Airline, t.Flight, t.Timestamp)
			f, ferr := s.Flight(fkey)
			if ferr != nil {
				return nil, nil, ferr
			}
			if f != nil {
				f.Status = code
				s.markFlight(f)
				if code == types.FlightStatusLateAirline {
					if credited, err = s.creditInsurees(f); err != nil {
						return nil, nil, err
					}
				}
			}
		}
		s.markRequest(r)
		if err = s.bumpNonce(caller); err != nil {
			return nil, nil, err
		}
	}
	return
}
