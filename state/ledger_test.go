package state

import (
	"testing"

	"github.com/flightsurety/surety-node/config"
	"github.com/flightsurety/surety-node/tx"
	"github.com/flightsurety/surety-node/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerFlight(t *testing.T, st *State, airline string, number string, ts uint64) {
	t.Helper()
	_, err := st.RegisterFlight(airline, &tx.RegisterFlightTx{Flight: number, Timestamp: ts}, false)
	require.NoError(t, err)
}

func TestRegisterFlight(t *testing.T) {
	st := newTestState(t)
	_, founder := seedFunded(t, st, "founder", 10*config.GWeiPerUnit)
	_, unfunded := registerVia(t, st, founder)

	ftx := &tx.RegisterFlightTx{Flight: "SU123", Timestamp: 1700000000}

	// only funded airlines publish flights
	_, err := st.RegisterFlight(unfunded, ftx, false)
	assert.ErrorIs(t, err, ErrAirlineNotFunded)

	ev, err := st.RegisterFlight(founder, ftx, false)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, "SU123", ev.Flight)

	key := types.FlightKey(founder, "SU123", 1700000000)
	f, err := st.Flight(key)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, types.FlightStatusUnknown, f.Status)
	assert.True(t, f.Registered)

	_, err = st.RegisterFlight(founder, ftx, false)
	assert.ErrorIs(t, err, ErrFlightExists)
}

func TestBuyInsurance(t *testing.T) {
	st := newTestState(t)
	_, founder := seedFunded(t, st, "founder", 10*config.GWeiPerUnit)
	registerFlight(t, st, founder, "SU123", 1700000000)
	_, passenger := genKey()

	btx := func(amount uint64) *tx.BuyInsuranceTx {
		return &tx.BuyInsuranceTx{Airline: founder, Flight: "SU123", Timestamp: 1700000000, Amount: amount}
	}

	// unknown flight
	_, err := st.BuyInsurance(passenger, &tx.BuyInsuranceTx{Airline: founder, Flight: "XX1", Amount: 1}, false)
	assert.ErrorIs(t, err, ErrFlightNotFound)

	// premium bounds
	_, err = st.BuyInsurance(passenger, btx(0), false)
	assert.ErrorIs(t, err, ErrPremiumZero)
	_, err = st.BuyInsurance(passenger, btx(st.cfg.InsuranceCap+1), false)
	assert.ErrorIs(t, err, ErrPremiumTooHigh)

	pool0, err := st.Pool()
	require.NoError(t, err)

	ev, err := st.BuyInsurance(passenger, btx(st.cfg.InsuranceCap), false)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, st.cfg.InsuranceCap, ev.Amount)

	key := types.FlightKey(founder, "SU123", 1700000000)
	p, err := st.Policy(key, passenger)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, st.cfg.InsuranceCap, p.Premium)
	assert.False(t, p.Credited)

	passengers, err := st.Insurees(key)
	require.NoError(t, err)
	assert.Equal(t, []string{passenger}, passengers)

	pool1, err := st.Pool()
	require.NoError(t, err)
	assert.Equal(t, pool0+st.cfg.InsuranceCap, pool1)

	// one policy per passenger per flight
	_, err = st.BuyInsurance(passenger, btx(1), false)
	assert.ErrorIs(t, err, ErrPolicyExists)
}

func TestBuyInsuranceRejectedOnResolvedFlight(t *testing.T) {
	st := newTestState(t)
	_, founder := seedFunded(t, st, "founder", 10*config.GWeiPerUnit)
	registerFlight(t, st, founder, "SU123", 1700000000)

	key := types.FlightKey(founder, "SU123", 1700000000)
	f, err := st.Flight(key)
	require.NoError(t, err)
	f.Status = types.FlightStatusOnTime
	st.markFlight(f)

	_, passenger := genKey()
	_, err = st.BuyInsurance(passenger, &tx.BuyInsuranceTx{
		Airline: founder, Flight: "SU123", Timestamp: 1700000000, Amount: 1,
	}, false)
	assert.ErrorIs(t, err, ErrFlightResolved)
}

func TestCreditInsureesIdempotent(t *testing.T) {
	st := newTestState(t)
	_, founder := seedFunded(t, st, "founder", 10*config.GWeiPerUnit)
	registerFlight(t, st, founder, "SU123", 1700000000)
	_, passenger := genKey()

	premium := uint64(400_000_000)
	_, err := st.BuyInsurance(passenger, &tx.BuyInsuranceTx{
		Airline: founder, Flight: "SU123", Timestamp: 1700000000, Amount: premium,
	}, false)
	require.NoError(t, err)

	key := types.FlightKey(founder, "SU123", 1700000000)
	f, err := st.Flight(key)
	require.NoError(t, err)

	ev, err := st.creditInsurees(f)
	require.NoError(t, err)
	require.NotNil(t, ev)
	want := premium * st.cfg.PayoutNumerator / st.cfg.PayoutDenominator
	assert.Equal(t, want, ev.Credit)

	bal, err := st.Credit(passenger)
	require.NoError(t, err)
	assert.Equal(t, want, bal)

	// a second pass credits nothing
	ev, err = st.creditInsurees(f)
	require.NoError(t, err)
	assert.Nil(t, ev)
	bal, err = st.Credit(passenger)
	require.NoError(t, err)
	assert.Equal(t, want, bal)
}

func TestWithdraw(t *testing.T) {
	st := newTestState(t)
	_, founder := seedFunded(t, st, "founder", 10*config.GWeiPerUnit)
	registerFlight(t, st, founder, "SU123", 1700000000)
	_, passenger := genKey()

	// empty balance is a no-op, not a failure
	ev, err := st.Withdraw(passenger, &tx.WithdrawTx{}, false)
	require.NoError(t, err)
	assert.Nil(t, ev)

	premium := uint64(600_000_000)
	_, err = st.BuyInsurance(passenger, &tx.BuyInsuranceTx{
		Airline: founder, Flight: "SU123", Timestamp: 1700000000, Amount: premium,
	}, false)
	require.NoError(t, err)

	key := types.FlightKey(founder, "SU123", 1700000000)
	f, err := st.Flight(key)
	require.NoError(t, err)
	_, err = st.creditInsurees(f)
	require.NoError(t, err)

	want := premium * st.cfg.PayoutNumerator / st.cfg.PayoutDenominator
	pool0, err := st.Pool()
	require.NoError(t, err)

	ev, err = st.Withdraw(passenger, &tx.WithdrawTx{}, false)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, want, ev.Amount)

	bal, err := st.Credit(passenger)
	require.NoError(t, err)
	assert.Zero(t, bal)
	pool1, err := st.Pool()
	require.NoError(t, err)
	assert.Equal(t, pool0-want, pool1)

	// the balance is gone, a retry is a no-op
	ev, err = st.Withdraw(passenger, &tx.WithdrawTx{}, false)
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestWithdrawPoolShortfall(t *testing.T) {
	st := newTestState(t)
	_, passenger := genKey()
	st.credits[passenger] = 5 * config.GWeiPerUnit
	st.modifiedCredits[passenger] = true

	_, err := st.Withdraw(passenger, &tx.WithdrawTx{}, false)
	assert.ErrorIs(t, err, ErrPoolDrained)

	// the credit survives the failed attempt
	bal, err := st.Credit(passenger)
	require.NoError(t, err)
	assert.Equal(t, uint64(5*config.GWeiPerUnit), bal)
}
