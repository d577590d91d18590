package state

import (
	"testing"

	"github.com/flightsurety/surety-node/config"
	"github.com/flightsurety/surety-node/tx"
	"github.com/flightsurety/surety-node/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyAirlineDirectAdmission(t *testing.T) {
	st := newTestState(t)
	_, founder := seedFunded(t, st, "founder", 10*config.GWeiPerUnit)

	// airlines 2..5 are admitted by a single funded sponsor
	for i := 0; i < 4; i++ {
		sk, addr := genKey()
		_, registered, err := st.ApplyAirline(founder, &tx.ApplyAirlineTx{Pubkey: sk.PubKey().Bytes()}, false)
		require.NoError(t, err)
		require.NotNil(t, registered)
		assert.Equal(t, addr, registered.Airline)

		a, err := st.Airline(addr)
		require.NoError(t, err)
		assert.Equal(t, types.AirlineStatusRegistered, a.Status)
	}
	assert.Equal(t, uint64(5), st.header.AirlineCount)
}

func TestApplyAirlineMajorityVote(t *testing.T) {
	st := newTestState(t)
	// five registered and funded airlines
	sponsors := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		_, addr := seedFunded(t, st, "airline", 10*config.GWeiPerUnit)
		sponsors = append(sponsors, addr)
	}
	require.Equal(t, uint64(5), st.header.AirlineCount)

	sk, addr := genKey()
	stx := &tx.ApplyAirlineTx{Pubkey: sk.PubKey().Bytes(), Name: "sixth"}

	// two votes fall short of the three-vote majority
	for _, sponsor := range sponsors[:2] {
		applied, registered, err := st.ApplyAirline(sponsor, stx, false)
		require.NoError(t, err)
		require.NotNil(t, applied)
		assert.Nil(t, registered)
	}
	a, err := st.Airline(addr)
	require.NoError(t, err)
	assert.Equal(t, types.AirlineStatusApplied, a.Status)
	assert.Len(t, a.Votes, 2)

	// the third vote registers the applicant
	_, registered, err := st.ApplyAirline(sponsors[2], stx, false)
	require.NoError(t, err)
	require.NotNil(t, registered)
	assert.Equal(t, uint64(3), registered.Votes)
	assert.Equal(t, uint64(6), st.header.AirlineCount)

	a, err = st.Airline(addr)
	require.NoError(t, err)
	assert.Equal(t, types.AirlineStatusRegistered, a.Status)
}

func TestApplyAirlineDuplicateVote(t *testing.T) {
	st := newTestState(t)
	sponsors := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		_, addr := seedFunded(t, st, "airline", 10*config.GWeiPerUnit)
		sponsors = append(sponsors, addr)
	}

	sk, _ := genKey()
	stx := &tx.ApplyAirlineTx{Pubkey: sk.PubKey().Bytes()}
	_, _, err := st.ApplyAirline(sponsors[0], stx, false)
	require.NoError(t, err)
	_, _, err = st.ApplyAirline(sponsors[0], stx, false)
	assert.ErrorIs(t, err, ErrDuplicateVote)
}

func TestApplyAirlineSponsorChecks(t *testing.T) {
	st := newTestState(t)
	skF, founder := seedFunded(t, st, "founder", 10*config.GWeiPerUnit)

	// self sponsorship
	_, _, err := st.ApplyAirline(founder, &tx.ApplyAirlineTx{Pubkey: skF.PubKey().Bytes()}, false)
	assert.ErrorIs(t, err, ErrSelfSponsor)

	// unknown sponsor
	sk, _ := genKey()
	_, stranger := genKey()
	_, _, err = st.ApplyAirline(stranger, &tx.ApplyAirlineTx{Pubkey: sk.PubKey().Bytes()}, false)
	assert.ErrorIs(t, err, ErrAirlineNotFound)

	// registered but unfunded airlines cannot sponsor
	skA, addr := registerVia(t, st, founder)
	sk2, _ := genKey()
	_, _, err = st.ApplyAirline(addr, &tx.ApplyAirlineTx{Pubkey: sk2.PubKey().Bytes()}, false)
	assert.ErrorIs(t, err, ErrAirlineNotFunded)

	// re-sponsoring a registered airline is rejected
	_, _, err = st.ApplyAirline(founder, &tx.ApplyAirlineTx{Pubkey: skA.PubKey().Bytes()}, true)
	assert.ErrorIs(t, err, ErrAirlineRegistered)
}

func TestFundAirline(t *testing.T) {
	st := newTestState(t)
	_, founder := seedFunded(t, st, "founder", 10*config.GWeiPerUnit)
	_, addr := registerVia(t, st, founder)

	// below the minimum stake
	_, err := st.FundAirline(addr, &tx.FundAirlineTx{Amount: st.cfg.MinAirlineFunding - 1}, false)
	assert.ErrorIs(t, err, ErrFundingTooLow)

	pool0, err := st.Pool()
	require.NoError(t, err)

	ev, err := st.FundAirline(addr, &tx.FundAirlineTx{Amount: st.cfg.MinAirlineFunding}, false)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, st.cfg.MinAirlineFunding, ev.Amount)

	a, err := st.Airline(addr)
	require.NoError(t, err)
	assert.Equal(t, types.AirlineStatusFunded, a.Status)
	assert.Equal(t, st.cfg.MinAirlineFunding, a.Funding)

	pool1, err := st.Pool()
	require.NoError(t, err)
	assert.Equal(t, pool0+st.cfg.MinAirlineFunding, pool1)

	// funding twice is rejected
	_, err = st.FundAirline(addr, &tx.FundAirlineTx{Amount: st.cfg.MinAirlineFunding}, false)
	assert.ErrorIs(t, err, ErrAlreadyFunded)

	// an applicant without registration cannot fund
	sk2, _ := genKey()
	applicant := AddrString(sk2.PubKey().Bytes())
	_, err = st.FundAirline(applicant, &tx.FundAirlineTx{Amount: st.cfg.MinAirlineFunding}, false)
	assert.ErrorIs(t, err, ErrAirlineNotFound)
}

func TestSetOperational(t *testing.T) {
	st := newTestState(t)
	_, founder := seedFunded(t, st, "founder", 10*config.GWeiPerUnit)
	_, outsider := registerVia(t, st, founder)

	// only funded airlines flip the gate
	_, err := st.SetOperational(outsider, &tx.SetOperationalTx{Operational: false}, false)
	assert.ErrorIs(t, err, ErrAirlineNotFunded)

	ev, err := st.SetOperational(founder, &tx.SetOperationalTx{Operational: false}, false)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.False(t, st.header.Operational)

	// paused scheme rejects state mutation
	sk, _ := genKey()
	_, _, err = st.ApplyAirline(founder, &tx.ApplyAirlineTx{Pubkey: sk.PubKey().Bytes()}, false)
	assert.ErrorIs(t, err, ErrNotOperational)

	// but the gate itself stays callable so the scheme can resume
	_, err = st.SetOperational(founder, &tx.SetOperationalTx{Operational: true}, false)
	require.NoError(t, err)
	assert.True(t, st.header.Operational)

	_, _, err = st.ApplyAirline(founder, &tx.ApplyAirlineTx{Pubkey: sk.PubKey().Bytes()}, false)
	require.NoError(t, err)
}
