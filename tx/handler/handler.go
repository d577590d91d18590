package handler

import (
	"context"

	"github.com/flightsurety/surety-node/state"
	"github.com/flightsurety/surety-node/tx"
	abcitypes "github.com/cometbft/cometbft/abci/types"
)

// TxHandler runs one transaction type through the three ABCI phases.
// NewContext resets any per-block bookkeeping before Prepare/Process replay
// a block's transactions against a fresh working state.
type TxHandler interface {
	Check(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ResponseCheckTx, err error)
	NewContext(ctx context.Context)
	Prepare(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error)
	Process(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error)
}
