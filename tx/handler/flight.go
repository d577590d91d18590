package handler

import (
	"context"

	"github.com/flightsurety/surety-node/state"
	"github.com/flightsurety/surety-node/tx"
	"github.com/flightsurety/surety-node/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type RegisterFlightTxHandler struct {
	logger cmtlog.Logger
}

func NewRegisterFlightTxHandler(logger cmtlog.Logger) (h *RegisterFlightTxHandler) {
	logger = logger.With("module", "registerFlightTx")
	h = &RegisterFlightTxHandler{
		logger: logger,
	}
	return
}

func (h *RegisterFlightTxHandler) Check(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.RegisterFlightTx)
	_, err1 := st.RegisterFlight(state.AddrString(btx.Caller), stx, true)
	if err1 != nil {
		h.logger.Info("CheckTx RegisterFlightTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *RegisterFlightTxHandler) NewContext(ctx context.Context) {}

func (h *RegisterFlightTxHandler) handle(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	stx := btx.Tx.(*tx.RegisterFlightTx)
	event, err := st.RegisterFlight(state.AddrString(btx.Caller), stx, false)
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventFlightRegistered(event)}
	}
	return
}

func (h *RegisterFlightTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *RegisterFlightTxHandler) Process(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
