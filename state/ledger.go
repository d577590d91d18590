package state

import (
	"github.com/flightsurety/surety-node/tx"
	"github.com/flightsurety/surety-node/types"
)

// RegisterFlight publishes a flight under the calling airline. The flight
// key binds (airline, number, timestamp) so passengers can recompute it.
func (s *State) RegisterFlight(caller string, t *tx.RegisterFlightTx, checkOnly bool) (event *types.EventFlightRegistered, err error) {
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
	if a.Status != types.AirlineStatusFunded {
		return nil, ErrAirlineNotFunded
	}
	key := types.FlightKey(caller, t.Flight, t.Timestamp)
	f, err := s.Flight(key)
	if err != nil {
		return nil, err
	}
	if f != nil {
		return nil, ErrFlightExists
	}

	if !checkOnly {
		f = &types.Flight{
			Key:        key,
			Airline:    caller,
			Number:     t.Flight,
			Timestamp:  t.Timestamp,
			Status:     types.FlightStatusUnknown,
			Registered: true,
			Height:     s.header.Height,
		}
		s.markFlight(f)
		if err = s.bumpNonce(caller); err != nil {
			return nil, err
		}
		event = &types.EventFlightRegistered{
			Key:       key.Hex(),
			Airline:   caller,
			Flight:    t.Flight,
			Timestamp: t.Timestamp,
		}
	}
	return
}

// BuyInsurance records a capped premium against an unresolved flight. One
// policy per (flight, passenger); the premium moves into the pool.
func (s *State) BuyInsurance(caller string, t *tx.BuyInsuranceTx, checkOnly bool) (event *types.EventInsuranceBought, err error) {
	if !s.header.Operational {
		return nil, ErrNotOperational
	}
	key := types.FlightKey(t.Airline, t.Flight, t.Timestamp)
	f, err := s.Flight(key)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrFlightNotFound
	}
	if f.Status != types.FlightStatusUnknown {
		return nil, ErrFlightResolved
	}
	if t.Amount == 0 {
		return nil, ErrPremiumZero
	}
	if t.Amount > s.cfg.InsuranceCap {
		return nil, ErrPremiumTooHigh
	}
	p, err := s.Policy(key, caller)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return nil, ErrPolicyExists
	}

	if !checkOnly {
		p = &types.InsurancePolicy{
			FlightKey: key,
			Passenger: caller,
			Premium:   t.Amount,
			Height:    s.header.Height,
		}
		s.markPolicy(p)
		passengers, err := s.Insurees(key)
		if err != nil {
			return nil, err
		}
		s.insurees[key] = append(passengers, caller)
		s.modifiedInsurees[key] = true
		if err = s.addPool(t.Amount); err != nil {
			return nil, err
		}
		if err = s.bumpNonce(caller); err != nil {
			return nil, err
		}
		event = &types.EventInsuranceBought{
			FlightKey: key.Hex(),
			Passenger: caller,
			Amount:    t.Amount,
		}
	}
	return
}

// creditInsurees books the payout for every uncredited policy on the flight.
// Idempotent: a policy is credited at most once regardless of how often the
// flight's status gets reported.
func (s *State) creditInsurees(f *types.Flight) (event *types.EventInsureesCredited, err error) {
	passengers, err := s.Insurees(f.Key)
	if err != nil {
		return nil, err
	}
	var total uint64
	for _, passenger := range passengers {
		p, err := s.Policy(f.Key, passenger)
		if err != nil {
			return nil, err
		}
		if p == nil || p.Credited {
			continue
		}
		payout := p.Premium * s.cfg.PayoutNumerator / s.cfg.PayoutDenominator
		p.Credited = true
		p.Payout = payout
		s.markPolicy(p)
		bal, err := s.Credit(passenger)
		if err != nil {
			return nil, err
		}
		s.credits[passenger] = bal + payout
		s.modifiedCredits[passenger] = true
		total += payout
	}
	if total == 0 {
		return nil, nil
	}
	event = &types.EventInsureesCredited{
		FlightKey: f.Key.Hex(),
		Airline:   f.Airline,
		Flight:    f.Number,
		Credit:    total,
	}
	return
}

// Withdraw moves the caller's entire credited balance out of the pool. A
// zero balance is a no-op; a pool shortfall fails the whole withdrawal.
func (s *State) Withdraw(caller string, t *tx.WithdrawTx, checkOnly bool) (event *types.EventPayoutWithdrawn, err error) {
	if !s.header.Operational {
		return nil, ErrNotOperational
	}
	bal, err := s.Credit(caller)
	if err != nil {
		return nil, err
	}
	if bal > 0 {
		pool, err := s.Pool()
		if err != nil {
			return nil, err
		}
		if pool < bal {
			return nil, ErrPoolDrained
		}
	}

	if !checkOnly {
		if bal > 0 {
			if err = s.subPool(bal); err != nil {
				return nil, err
			}
			s.credits[caller] = 0
			s.modifiedCredits[caller] = true
			event = &types.EventPayoutWithdrawn{
				Passenger: caller,
				Amount:    bal,
			}
		}
		if err = s.bumpNonce(caller); err != nil {
			return nil, err
		}
	}
	return
}
