package handler

import (
	"context"

	"github.com/flightsurety/surety-node/state"
	"github.com/flightsurety/surety-node/tx"
	"github.com/flightsurety/surety-node/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type ApplyAirlineTxHandler struct {
	logger cmtlog.Logger
}

func NewApplyAirlineTxHandler(logger cmtlog.Logger) (h *ApplyAirlineTxHandler) {
	logger = logger.With("module", "applyAirlineTx")
	h = &ApplyAirlineTxHandler{
		logger: logger,
	}
	return
}

func (h *ApplyAirlineTxHandler) Check(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.ApplyAirlineTx)
	_, _, err1 := st.ApplyAirline(state.AddrString(btx.Caller), stx, true)
	if err1 != nil {
		h.logger.Info("CheckTx ApplyAirlineTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *ApplyAirlineTxHandler) NewContext(ctx context.Context) {}

func (h *ApplyAirlineTxHandler) handle(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	stx := btx.Tx.(*tx.ApplyAirlineTx)
	applied, registered, err := st.ApplyAirline(state.AddrString(btx.Caller), stx, false)
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	if applied != nil {
		res.Events = append(res.Events, types.EncodeEventAirlineApplied(applied))
	}
	if registered != nil {
		res.Events = append(res.Events, types.EncodeEventAirlineRegistered(registered))
	}
	return
}

func (h *ApplyAirlineTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *ApplyAirlineTxHandler) Process(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

type FundAirlineTxHandler struct {
	logger cmtlog.Logger
}

func NewFundAirlineTxHandler(logger cmtlog.Logger) (h *FundAirlineTxHandler) {
	logger = logger.With("module", "fundAirlineTx")
	h = &FundAirlineTxHandler{
		logger: logger,
	}
	return
}

func (h *FundAirlineTxHandler) Check(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.FundAirlineTx)
	_, err1 := st.FundAirline(state.AddrString(btx.Caller), stx, true)
	if err1 != nil {
		h.logger.Info("CheckTx FundAirlineTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *FundAirlineTxHandler) NewContext(ctx context.Context) {}

func (h *FundAirlineTxHandler) handle(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	stx := btx.Tx.(*tx.FundAirlineTx)
	event, err := st.FundAirline(state.AddrString(btx.Caller), stx, false)
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventAirlineFunded(event)}
	}
	return
}

func (h *FundAirlineTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *FundAirlineTxHandler) Process(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
