package handler

import (
	"context"

	"github.com/flightsurety/surety-node/state"
	"github.com/flightsurety/surety-node/tx"
	"github.com/flightsurety/surety-node/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type SetOperationalTxHandler struct {
	logger cmtlog.Logger
}

func NewSetOperationalTxHandler(logger cmtlog.Logger) (h *SetOperationalTxHandler) {
	logger = logger.With("module", "setOperationalTx")
	h = &SetOperationalTxHandler{
		logger: logger,
	}
	return
}

func (h *SetOperationalTxHandler) Check(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.SetOperationalTx)
	_, err1 := st.SetOperational(state.AddrString(btx.Caller), stx, true)
	if err1 != nil {
		h.logger.Info("CheckTx SetOperationalTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *SetOperationalTxHandler) NewContext(ctx context.Context) {}

func (h *SetOperationalTxHandler) handle(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	stx := btx.Tx.(*tx.SetOperationalTx)
	event, err := st.SetOperational(state.AddrString(btx.Caller), stx, false)
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventOperationalSet(event)}
	}
	return
}

func (h *SetOperationalTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *SetOperationalTxHandler) Process(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
