package handler

import (
	"context"

	"github.com/flightsurety/surety-node/state"
	"github.com/flightsurety/surety-node/tx"
	"github.com/flightsurety/surety-node/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type BuyInsuranceTxHandler struct {
	logger cmtlog.Logger
}

func NewBuyInsuranceTxHandler(logger cmtlog.Logger) (h *BuyInsuranceTxHandler) {
	logger = logger.With("module", "buyInsuranceTx")
	h = &BuyInsuranceTxHandler{
		logger: logger,
	}
	return
}

func (h *BuyInsuranceTxHandler) Check(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.BuyInsuranceTx)
	_, err1 := st.BuyInsurance(state.AddrString(btx.Caller), stx, true)
	if err1 != nil {
		h.logger.Info("CheckTx BuyInsuranceTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *BuyInsuranceTxHandler) NewContext(ctx context.Context) {}

func (h *BuyInsuranceTxHandler) handle(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	stx := btx.Tx.(*tx.BuyInsuranceTx)
	event, err := st.BuyInsurance(state.AddrString(btx.Caller), stx, false)
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventInsuranceBought(event)}
	}
	return
}

func (h *BuyInsuranceTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *BuyInsuranceTxHandler) Process(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

type WithdrawTxHandler struct {
	logger cmtlog.Logger
}

func NewWithdrawTxHandler(logger cmtlog.Logger) (h *WithdrawTxHandler) {
	logger = logger.With("module", "withdrawTx")
	h = &WithdrawTxHandler{
		logger: logger,
	}
	return
}

func (h *WithdrawTxHandler) Check(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.WithdrawTx)
	_, err1 := st.Withdraw(state.AddrString(btx.Caller), stx, true)
	if err1 != nil {
		h.logger.Info("CheckTx WithdrawTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *WithdrawTxHandler) NewContext(ctx context.Context) {}

func (h *WithdrawTxHandler) handle(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	stx := btx.Tx.(*tx.WithdrawTx)
	event, err := st.Withdraw(state.AddrString(btx.Caller), stx, false)
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventPayoutWithdrawn(event)}
	}
	return
}

func (h *WithdrawTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *WithdrawTxHandler) Process(ctx context.Context, st *state.State, btx *tx.SuretyTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
