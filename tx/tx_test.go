package tx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalSuretyTx(t *testing.T) {
	btx := &SuretyTx{
		Version: SuretyTxVersion1,
		Type:    SuretyTxTypeBuyInsurance,
		Nonce:   7,
		Caller:  bytes.Repeat([]byte{1}, 32),
		Tx: &BuyInsuranceTx{
			Airline:   "airline-addr",
			Flight:    "SU123",
			Timestamp: 1700000000,
			Amount:    42,
		},
		Sig: [][]byte{{0xaa}},
	}
	dat, err := MarshalSuretyTx(btx)
	require.NoError(t, err)

	got, err := UnmarshalSuretyTx(dat)
	require.NoError(t, err)
	assert.Equal(t, btx.Version, got.Version)
	assert.Equal(t, btx.Type, got.Type)
	assert.Equal(t, btx.Nonce, got.Nonce)
	assert.Equal(t, btx.Caller, got.Caller)
	require.IsType(t, &BuyInsuranceTx{}, got.Tx)
	assert.Equal(t, btx.Tx, got.Tx)
}

func TestUnmarshalSuretyTxUnknownType(t *testing.T) {
	_, err := UnmarshalSuretyTx([]byte(`{"type":250}`))
	assert.ErrorIs(t, err, ErrUnsupportedTxType)

	_, err = UnmarshalSuretyTx([]byte(`not json`))
	assert.ErrorIs(t, err, ErrUnsupportedTxType)
}

func TestSigDataExcludesSignature(t *testing.T) {
	btx := &SuretyTx{
		Version: SuretyTxVersion1,
		Type:    SuretyTxTypeWithdraw,
		Caller:  bytes.Repeat([]byte{2}, 32),
		Tx:      &WithdrawTx{},
	}
	chainA, err := btx.SigData([]byte("chain-a"))
	require.NoError(t, err)
	chainB, err := btx.SigData([]byte("chain-b"))
	require.NoError(t, err)
	assert.NotEqual(t, chainA, chainB, "sign bytes must bind the chain id")

	// attaching the signature must not change the signed bytes
	btx.Sig = [][]byte{{0xbb}}
	again, err := btx.SigData([]byte("chain-a"))
	require.NoError(t, err)
	assert.Equal(t, chainA, again)
}
