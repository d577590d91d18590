package state

import (
	"testing"

	"github.com/flightsurety/surety-node/config"
	"github.com/flightsurety/surety-node/tx"
	"github.com/flightsurety/surety-node/types"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	dbm "github.com/cosmos/iavl/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	logger := cmtlog.TestingLogger()
	tdb := iavl.NewMutableTree(dbm.NewMemDB(), 128, true, Cometbft2CosmosLogger(logger))
	cfg := config.DefaultSuretyAppConfig(t.TempDir())
	st := newState(tdb, cfg, logger)
	st.header.ChainId = "surety-test"
	st.header.Height = 1
	return st
}

func genKey() (ed25519.PrivKey, string) {
	sk := ed25519.GenPrivKey()
	return sk, AddrString(sk.PubKey().Bytes())
}

// seedFunded installs a genesis-style Funded airline and returns its key.
func seedFunded(t *testing.T, st *State, name string, funding uint64) (ed25519.PrivKey, string) {
	t.Helper()
	sk, addr := genKey()
	err := st.AddAirline(&types.Airline{
		Address: addr,
		PubKey:  sk.PubKey().Bytes(),
		Name:    name,
		Funding: funding,
	})
	require.NoError(t, err)
	return sk, addr
}

// registerVia sponsors a fresh airline through direct admission or voting,
// returning its key once Registered.
func registerVia(t *testing.T, st *State, sponsors ...string) (ed25519.PrivKey, string) {
	t.Helper()
	sk, addr := genKey()
	stx := &tx.ApplyAirlineTx{Pubkey: sk.PubKey().Bytes(), Name: "airline-" + addr[:6]}
	for i, sponsor := range sponsors {
		applied, registered, err := st.ApplyAirline(sponsor, stx, false)
		require.NoError(t, err)
		if i == len(sponsors)-1 {
			require.NotNil(t, registered, "expected registration on final sponsor")
		} else {
			require.NotNil(t, applied)
		}
	}
	return sk, addr
}

func fundAirline(t *testing.T, st *State, addr string, amount uint64) {
	t.Helper()
	_, err := st.FundAirline(addr, &tx.FundAirlineTx{Amount: amount}, false)
	require.NoError(t, err)
}

func TestVerify(t *testing.T) {
	st := newTestState(t)
	sk, addr := genKey()

	btx := &tx.SuretyTx{
		Version: tx.SuretyTxVersion1,
		Type:    tx.SuretyTxTypeWithdraw,
		Nonce:   0,
		Caller:  sk.PubKey().Bytes(),
		Tx:      &tx.WithdrawTx{},
	}
	dat, err := btx.SigData([]byte(st.header.ChainId))
	require.NoError(t, err)
	sig, err := sk.Sign(dat)
	require.NoError(t, err)
	btx.Sig = [][]byte{sig}

	succ, err := st.Verify(btx, false)
	require.NoError(t, err)
	assert.True(t, succ)

	// wrong chain id breaks the signature
	st.header.ChainId = "other-chain"
	_, err = st.Verify(btx, false)
	assert.ErrorIs(t, err, ErrTxSigInvalid)
	st.header.ChainId = "surety-test"

	// stale nonce
	require.NoError(t, st.bumpNonce(addr))
	_, err = st.Verify(btx, false)
	assert.ErrorIs(t, err, ErrTxNonceInvalid)

	// nonce gap allowed for mempool admission
	btx.Nonce = 5
	dat, err = btx.SigData([]byte(st.header.ChainId))
	require.NoError(t, err)
	sig, err = sk.Sign(dat)
	require.NoError(t, err)
	btx.Sig = [][]byte{sig}
	succ, err = st.Verify(btx, true)
	require.NoError(t, err)
	assert.True(t, succ)
	_, err = st.Verify(btx, false)
	assert.ErrorIs(t, err, ErrTxNonceInvalid)
}

func TestVerifyRejectsBadCaller(t *testing.T) {
	st := newTestState(t)
	btx := &tx.SuretyTx{
		Version: tx.SuretyTxVersion1,
		Type:    tx.SuretyTxTypeWithdraw,
		Caller:  []byte{1, 2, 3},
		Tx:      &tx.WithdrawTx{},
		Sig:     [][]byte{{0}},
	}
	_, err := st.Verify(btx, false)
	assert.ErrorIs(t, err, ErrTxSigInvalid)
}

func TestUpdateSaveReload(t *testing.T) {
	logger := cmtlog.TestingLogger()
	mdb := dbm.NewMemDB()
	tdb := iavl.NewMutableTree(mdb, 128, true, Cometbft2CosmosLogger(logger))
	cfg := config.DefaultSuretyAppConfig(t.TempDir())
	st := newState(tdb, cfg, logger)
	st.header.ChainId = "surety-test"
	st.header.Height = 1

	_, addr := seedFunded(t, st, "founder", cfg.MinAirlineFunding)
	_, err := st.Update()
	require.NoError(t, err)
	h, err := st.save()
	require.NoError(t, err)
	require.NotEqual(t, [32]byte{}, [32]byte(h))

	st2 := newState(tdb, cfg, logger)
	require.NoError(t, st2.load())
	assert.Equal(t, uint64(1), st2.header.AirlineCount)
	assert.Equal(t, "surety-test", st2.header.ChainId)
	assert.True(t, st2.header.Operational)

	a, err := st2.Airline(addr)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, types.AirlineStatusFunded, a.Status)
	assert.Equal(t, cfg.MinAirlineFunding, a.Funding)

	pool, err := st2.Pool()
	require.NoError(t, err)
	assert.Equal(t, cfg.MinAirlineFunding, pool)
}

func TestNextStateAdvancesHeight(t *testing.T) {
	st := newTestState(t)
	seedFunded(t, st, "founder", 10*config.GWeiPerUnit)
	_, err := st.Update()
	require.NoError(t, err)
	_, err = st.save()
	require.NoError(t, err)

	n := st.nextState()
	assert.Equal(t, st.header.Height+1, n.header.Height)
	assert.Equal(t, st.header.AirlineCount, n.header.AirlineCount)
	assert.Empty(t, n.airlines)
}

func TestCloneIsolation(t *testing.T) {
	st := newTestState(t)
	_, sponsor := seedFunded(t, st, "founder", 10*config.GWeiPerUnit)

	cl := st.Clone()
	registerVia(t, cl, sponsor)
	assert.Equal(t, uint64(2), cl.header.AirlineCount)
	assert.Equal(t, uint64(1), st.header.AirlineCount)
	assert.Len(t, st.modifiedAirlines, 1)
}

func TestValidatorsTrackFundedAirlines(t *testing.T) {
	st := newTestState(t)
	_, founder := seedFunded(t, st, "founder", 10*config.GWeiPerUnit)
	_, err := st.Update()
	require.NoError(t, err)

	vals, err := st.Validators()
	require.NoError(t, err)
	require.Len(t, vals, 1)

	// a newly funded airline joins the set
	_, addr := registerVia(t, st, founder)
	fundAirline(t, st, addr, 20*config.GWeiPerUnit)
	_, err = st.Update()
	require.NoError(t, err)

	updates, err := st.ValidatorsUpdate(vals)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, int64(20), updates[0].Power)
}
