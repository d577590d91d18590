package state

import (
	"testing"

	"github.com/flightsurety/surety-node/config"
	"github.com/flightsurety/surety-node/tx"
	"github.com/flightsurety/surety-node/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedOracle installs an oracle bound to the given indexes, bypassing the
// derivation so tests can line responders up with a request.
func seedOracle(st *State, idxs ...uint8) string {
	_, addr := genKey()
	st.markOracle(&types.OracleWorker{
		Address: addr,
		Indexes: idxs,
		Height:  st.header.Height,
	})
	return addr
}

func respond(st *State, oracle string, index uint8, airline string, status uint64) (*types.EventFlightStatusInfo, *types.EventInsureesCredited, error) {
	return st.SubmitOracleResponse(oracle, &tx.OracleResponseTx{
		Index:     index,
		Airline:   airline,
		Flight:    "SU123",
		Timestamp: 1700000000,
		Status:    status,
	}, false)
}

func TestRegisterOracle(t *testing.T) {
	st := newTestState(t)
	sk, addr := genKey()
	pk := sk.PubKey().Bytes()

	_, err := st.RegisterOracle(addr, pk, &tx.RegisterOracleTx{Fee: st.cfg.RegistrationFee - 1}, false)
	assert.ErrorIs(t, err, ErrFeeTooLow)

	ev, err := st.RegisterOracle(addr, pk, &tx.RegisterOracleTx{Fee: st.cfg.RegistrationFee}, false)
	require.NoError(t, err)
	require.NotNil(t, ev)

	idxs, err := st.OracleIndexes(addr)
	require.NoError(t, err)
	require.Len(t, idxs, st.cfg.OracleIndexCount)
	seen := make(map[uint8]bool)
	for _, idx := range idxs {
		assert.Less(t, idx, st.cfg.StatusDomainSize)
		assert.False(t, seen[idx], "index %d assigned twice", idx)
		seen[idx] = true
	}

	// the fee lands in the pool
	pool, err := st.Pool()
	require.NoError(t, err)
	assert.Equal(t, st.cfg.RegistrationFee, pool)

	_, err = st.RegisterOracle(addr, pk, &tx.RegisterOracleTx{Fee: st.cfg.RegistrationFee}, false)
	assert.ErrorIs(t, err, ErrOracleExists)
}

func TestFetchFlightStatus(t *testing.T) {
	st := newTestState(t)
	_, caller := genKey()

	ftx := &tx.FetchStatusTx{Airline: "some-airline", Flight: "SU123", Timestamp: 1700000000}
	ev, err := st.FetchFlightStatus(caller, ftx, false)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, st.deriveIndex(caller, 0), ev.Index)

	key := types.RequestKey(ev.Index, ftx.Airline, ftx.Flight, ftx.Timestamp)
	r, err := st.Request(key)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.False(t, r.Resolved)
	assert.Empty(t, r.Responses)

	// the same caller cannot reopen the request in the same block
	_, err = st.FetchFlightStatus(caller, ftx, false)
	assert.ErrorIs(t, err, ErrRequestExists)
}

func TestSubmitOracleResponseChecks(t *testing.T) {
	st := newTestState(t)
	_, founder := seedFunded(t, st, "founder", 10*config.GWeiPerUnit)
	registerFlight(t, st, founder, "SU123", 1700000000)

	_, caller := genKey()
	ev, err := st.FetchFlightStatus(caller, &tx.FetchStatusTx{Airline: founder, Flight: "SU123", Timestamp: 1700000000}, false)
	require.NoError(t, err)
	idx := ev.Index
	other := (idx + 1) % st.cfg.StatusDomainSize

	// unknown oracle
	_, stranger := genKey()
	_, _, err = respond(st, stranger, idx, founder, uint64(types.FlightStatusOnTime))
	assert.ErrorIs(t, err, ErrOracleNotFound)

	// oracle without the request's index
	wrong := seedOracle(st, other)
	_, _, err = respond(st, wrong, idx, founder, uint64(types.FlightStatusOnTime))
	assert.ErrorIs(t, err, ErrIndexNotAssigned)

	oracle := seedOracle(st, idx)

	// status code outside the domain
	_, _, err = respond(st, oracle, idx, founder, 21)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	// no open request under the other index
	wrongReq := seedOracle(st, other)
	_, _, err = respond(st, wrongReq, other, founder, uint64(types.FlightStatusOnTime))
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestOracleQuorumCreditsInsurees(t *testing.T) {
	st := newTestState(t)
	_, founder := seedFunded(t, st, "founder", 10*config.GWeiPerUnit)
	registerFlight(t, st, founder, "SU123", 1700000000)

	premium := uint64(1 * config.GWeiPerUnit)
	_, passenger := genKey()
	_, err := st.BuyInsurance(passenger, &tx.BuyInsuranceTx{
		Airline: founder, Flight: "SU123", Timestamp: 1700000000, Amount: premium,
	}, false)
	require.NoError(t, err)

	ev, err := st.FetchFlightStatus(passenger, &tx.FetchStatusTx{Airline: founder, Flight: "SU123", Timestamp: 1700000000}, false)
	require.NoError(t, err)
	idx := ev.Index

	late := uint64(types.FlightStatusLateAirline)
	for i := 0; i < st.cfg.MinResponses-1; i++ {
		oracle := seedOracle(st, idx)
		statusInfo, credited, err := respond(st, oracle, idx, founder, late)
		require.NoError(t, err)
		assert.Nil(t, statusInfo)
		assert.Nil(t, credited)
	}

	// the quorum response settles the flight and credits the insuree
	oracle := seedOracle(st, idx)
	statusInfo, credited, err := respond(st, oracle, idx, founder, late)
	require.NoError(t, err)
	require.NotNil(t, statusInfo)
	assert.Equal(t, late, statusInfo.Status)
	require.NotNil(t, credited)
	want := premium * st.cfg.PayoutNumerator / st.cfg.PayoutDenominator
	assert.Equal(t, want, credited.Credit)

	f, err := st.Flight(types.FlightKey(founder, "SU123", 1700000000))
	require.NoError(t, err)
	assert.Equal(t, types.FlightStatusLateAirline, f.Status)

	bal, err := st.Credit(passenger)
	require.NoError(t, err)
	assert.Equal(t, want, bal)

	// a late answer is swallowed without effect
	straggler := seedOracle(st, idx)
	statusInfo, credited, err = respond(st, straggler, idx, founder, uint64(types.FlightStatusOnTime))
	require.NoError(t, err)
	assert.Nil(t, statusInfo)
	assert.Nil(t, credited)
	bal, err = st.Credit(passenger)
	require.NoError(t, err)
	assert.Equal(t, want, bal)
}

func TestOracleQuorumOnTimePaysNothing(t *testing.T) {
	st := newTestState(t)
	_, founder := seedFunded(t, st, "founder", 10*config.GWeiPerUnit)
	registerFlight(t, st, founder, "SU123", 1700000000)

	_, passenger := genKey()
	_, err := st.BuyInsurance(passenger, &tx.BuyInsuranceTx{
		Airline: founder, Flight: "SU123", Timestamp: 1700000000, Amount: 1 * config.GWeiPerUnit,
	}, false)
	require.NoError(t, err)

	ev, err := st.FetchFlightStatus(passenger, &tx.FetchStatusTx{Airline: founder, Flight: "SU123", Timestamp: 1700000000}, false)
	require.NoError(t, err)
	idx := ev.Index

	onTime := uint64(types.FlightStatusOnTime)
	var statusInfo *types.EventFlightStatusInfo
	var credited *types.EventInsureesCredited
	for i := 0; i < st.cfg.MinResponses; i++ {
		oracle := seedOracle(st, idx)
		statusInfo, credited, err = respond(st, oracle, idx, founder, onTime)
		require.NoError(t, err)
	}
	require.NotNil(t, statusInfo)
	assert.Nil(t, credited)

	bal, err := st.Credit(passenger)
	require.NoError(t, err)
	assert.Zero(t, bal)
}

func TestOracleResponseDuplicateResponder(t *testing.T) {
	st := newTestState(t)
	_, founder := seedFunded(t, st, "founder", 10*config.GWeiPerUnit)
	registerFlight(t, st, founder, "SU123", 1700000000)

	_, caller := genKey()
	ev, err := st.FetchFlightStatus(caller, &tx.FetchStatusTx{Airline: founder, Flight: "SU123", Timestamp: 1700000000}, false)
	require.NoError(t, err)
	idx := ev.Index

	late := uint64(types.FlightStatusLateAirline)
	oracle := seedOracle(st, idx)
	for i := 0; i < st.cfg.MinResponses; i++ {
		statusInfo, _, err := respond(st, oracle, idx, founder, late)
		require.NoError(t, err)
		assert.Nil(t, statusInfo, "repeated answers must not count toward the quorum")
	}

	key := types.RequestKey(idx, founder, "SU123", 1700000000)
	r, err := st.Request(key)
	require.NoError(t, err)
	assert.False(t, r.Resolved)
	assert.Len(t, r.Responses[late], 1)
}

func TestOracleFirstQuorumWins(t *testing.T) {
	st := newTestState(t)
	_, founder := seedFunded(t, st, "founder", 10*config.GWeiPerUnit)
	registerFlight(t, st, founder, "SU123", 1700000000)

	_, caller := genKey()
	ev, err := st.FetchFlightStatus(caller, &tx.FetchStatusTx{Airline: founder, Flight: "SU123", Timestamp: 1700000000}, false)
	require.NoError(t, err)
	idx := ev.Index

	late := uint64(types.FlightStatusLateAirline)
	weather := uint64(types.FlightStatusLateWeather)

	// two codes race: late-airline sits at two answers when weather closes
	for i := 0; i < 2; i++ {
		_, _, err := respond(st, seedOracle(st, idx), idx, founder, late)
		require.NoError(t, err)
		_, _, err = respond(st, seedOracle(st, idx), idx, founder, weather)
		require.NoError(t, err)
	}
	statusInfo, _, err := respond(st, seedOracle(st, idx), idx, founder, weather)
	require.NoError(t, err)
	require.NotNil(t, statusInfo)
	assert.Equal(t, weather, statusInfo.Status)

	f, err := st.Flight(types.FlightKey(founder, "SU123", 1700000000))
	require.NoError(t, err)
	assert.Equal(t, types.FlightStatusLateWeather, f.Status)

	// the trailing code can no longer settle anything
	statusInfo, _, err = respond(st, seedOracle(st, idx), idx, founder, late)
	require.NoError(t, err)
	assert.Nil(t, statusInfo)
}

func TestDeriveIndexesDistinct(t *testing.T) {
	st := newTestState(t)
	for i := 0; i < 20; i++ {
		_, addr := genKey()
		idxs := st.deriveIndexes(addr)
		require.Len(t, idxs, st.cfg.OracleIndexCount)
		seen := make(map[uint8]bool)
		for _, idx := range idxs {
			assert.Less(t, idx, st.cfg.StatusDomainSize)
			assert.False(t, seen[idx])
			seen[idx] = true
		}
	}
}

func TestDeriveIndexVariesWithHeight(t *testing.T) {
	st := newTestState(t)
	_, addr := genKey()

	varies := false
	base := st.deriveIndex(addr, 0)
	for h := uint64(2); h < 12 && !varies; h++ {
		st.header.Height = h
		varies = st.deriveIndex(addr, 0) != base
	}
	assert.True(t, varies, "index derivation should depend on the height")
}
