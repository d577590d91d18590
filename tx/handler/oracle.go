package handler

import (
	"context"

	"github.com/flightsurety/surety-node/state"
	"github.com/flightsurety/surety-node/tx"
	"github.com/flightsurety/surety-node/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type RegisterOracleTxHandler struct {
	logger cmtlog.Logger
}

func NewRegisterOracleTxHandler(logger cmtlog.Logger) (h *RegisterOracleTxHandler) {
	logger = logger.With("module", "registerOracleTx")
	h = &RegisterOracleTxHandler{
		logger: logger,
	}
	return
}

func (h *RegisterOracleTxHandler) Check(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.RegisterOracleTx)
	_, err1 := st.RegisterOracle(state.AddrString(btx.Caller), btx.Caller, stx, true)
	if err1 != nil {
		h.logger.Info("CheckTx RegisterOracleTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *RegisterOracleTxHandler) NewContext(ctx context.Context) {}

func (h *RegisterOracleTxHandler) handle(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	stx := btx.Tx.(*tx.RegisterOracleTx)
	event, err := st.RegisterOracle(state.AddrString(btx.Caller), btx.Caller, stx, false)
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventOracleRegistered(event)}
	}
	return
}

func (h *RegisterOracleTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *RegisterOracleTxHandler) Process(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

type FetchStatusTxHandler struct {
	logger cmtlog.Logger
}

func NewFetchStatusTxHandler(logger cmtlog.Logger) (h *FetchStatusTxHandler) {
	logger = logger.With("module", "fetchStatusTx")
	h = &FetchStatusTxHandler{
		logger: logger,
	}
	return
}

func (h *FetchStatusTxHandler) Check(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.FetchStatusTx)
	_, err1 := st.FetchFlightStatus(state.AddrString(btx.Caller), stx, true)
	if err1 != nil {
		h.logger.Info("CheckTx FetchStatusTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *FetchStatusTxHandler) NewContext(ctx context.Context) {}

func (h *FetchStatusTxHandler) handle(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	stx := btx.Tx.(*tx.FetchStatusTx)
	event, err := st.FetchFlightStatus(state.AddrString(btx.Caller), stx, false)
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventOracleRequest(event)}
	}
	return
}

func (h *FetchStatusTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *FetchStatusTxHandler) Process(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

type OracleResponseTxHandler struct {
	logger cmtlog.Logger
}

func NewOracleResponseTxHandler(logger cmtlog.Logger) (h *OracleResponseTxHandler) {
	logger = logger.With("module", "oracleResponseTx")
	h = &OracleResponseTxHandler{
		logger: logger,
	}
	return
}

func (h *OracleResponseTxHandler) Check(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.OracleResponseTx)
	_, _, err1 := st.SubmitOracleResponse(state.AddrString(btx.Caller), stx, true)
	if err1 != nil {
		h.logger.Info("CheckTx OracleResponseTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *OracleResponseTxHandler) NewContext(ctx context.Context) {}

func (h *OracleResponseTxHandler) handle(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	stx := btx.Tx.(*tx.OracleResponseTx)
	statusInfo, credited, err := st.SubmitOracleResponse(state.AddrString(btx.Caller), stx, false)
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	if statusInfo != nil {
		res.Events = append(res.Events, types.EncodeEventFlightStatusInfo(statusInfo))
	}
	if credited != nil {
		res.Events = append(res.Events, types.EncodeEventInsureesCredited(credited))
	}
	return
}

func (h *OracleResponseTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *OracleResponseTxHandler) Process(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
