package app

import (
	"context"
	"fmt"

	"github.com/flightsurety/surety-node/config"
	"github.com/flightsurety/surety-node/state"
	"github.com/flightsurety/surety-node/tx"
	"github.com/flightsurety/surety-node/tx/handler"
	"github.com/flightsurety/surety-node/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cometbft/cometbft/store"
	"github.com/ethereum/go-ethereum/common"
)

type finalizeBlock struct {
	Height uint64
	Hash   common.Hash
}

func (b *finalizeBlock) Set(blk *abcitypes.RequestFinalizeBlock) {
	b.Height = uint64(blk.Height)
	b.Hash = common.BytesToHash(blk.Hash)
}

var _ abcitypes.Application = &SuretyApp{}

// SuretyApp is the ABCI shell around the insurance registry. Genesis
// validators are seeded as the founding Funded airlines, and thereafter the
// validator set tracks whichever airlines hold stake.
type SuretyApp struct {
	cfg    *config.SuretyAppConfig
	logger cmtlog.Logger

	db       *state.StateDB
	lastBlk  finalizeBlock
	txHdlrs  map[tx.SuretyTxType]handler.TxHandler
	queriers map[string]Querier

	st *state.State
}

func NewSuretyApp(cfg *config.SuretyAppConfig, logger cmtlog.Logger) (app *SuretyApp, err error) {
	logger = logger.With("module", "app")

	dir := cfg.Home + "/data"
	db, err := state.NewStateDB(dir, cfg, logger)
	if err != nil {
		return nil, err
	}

	app = &SuretyApp{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		txHdlrs:  make(map[tx.SuretyTxType]handler.TxHandler),
		queriers: make(map[string]Querier),
	}
	app.registerTxHandler()
	app.registerQuerier()
	return
}

func (app *SuretyApp) Start(bs *store.BlockStore) {
	height := app.db.Header().Height
	if height > 0 {
		blk := bs.LoadBlock(int64(height))
		if blk == nil {
			panic("unexpected BlockStore")
		}
		app.lastBlk.Height = height
		app.lastBlk.Hash = common.BytesToHash(blk.Hash())
	}
}

func (app *SuretyApp) Stop() {
	err := app.db.Close()
	if err != nil {
		app.logger.Error("close db fail", "err", err)
	}
	app.logger.Info("surety app stopped")
}

func (app *SuretyApp) DB() *state.StateDB {
	return app.db
}

func (app *SuretyApp) registerTxHandler() {
	app.txHdlrs = map[tx.SuretyTxType]handler.TxHandler{
		tx.SuretyTxTypeApplyAirline:   handler.NewApplyAirlineTxHandler(app.logger),
		tx.SuretyTxTypeFundAirline:    handler.NewFundAirlineTxHandler(app.logger),
		tx.SuretyTxTypeRegisterFlight: handler.NewRegisterFlightTxHandler(app.logger),
		tx.SuretyTxTypeBuyInsurance:   handler.NewBuyInsuranceTxHandler(app.logger),
		tx.SuretyTxTypeWithdraw:       handler.NewWithdrawTxHandler(app.logger),
		tx.SuretyTxTypeRegisterOracle: handler.NewRegisterOracleTxHandler(app.logger),
		tx.SuretyTxTypeFetchStatus:    handler.NewFetchStatusTxHandler(app.logger),
		tx.SuretyTxTypeOracleResponse: handler.NewOracleResponseTxHandler(app.logger),
		tx.SuretyTxTypeSetOperational: handler.NewSetOperationalTxHandler(app.logger),
	}
}

func (app *SuretyApp) registerQuerier() {
	app.queriers["/airlines/"] = NewAirlineQuerier(app.db, app.logger)
	app.queriers["/validators/"] = NewValidatorQuerier(app.db, app.logger)
	app.queriers["/flights/"] = NewFlightQuerier(app.db, app.logger)
	app.queriers["/policies/"] = NewPolicyQuerier(app.db, app.logger)
	app.queriers["/oracles/"] = NewOracleQuerier(app.db, app.logger)
	app.queriers["/requests/"] = NewRequestQuerier(app.db, app.logger)
	app.queriers["/credits/"] = NewCreditQuerier(app.db, app.logger)
	app.queriers["/nonces/"] = NewNonceQuerier(app.db, app.logger)
	app.queriers["/pool/"] = NewPoolQuerier(app.db, app.logger)
}

func (app *SuretyApp) InitChain(_ context.Context, chain *abcitypes.RequestInitChain) (res *abcitypes.ResponseInitChain, err error) {
	st := app.db.NewState()
	st.SetChainId(chain.ChainId)
	for i, v := range chain.Validators {
		pk := v.PubKey.GetEd25519()
		a := types.Airline{
			Address: state.AddrString(pk),
			PubKey:  append([]byte(nil), pk...),
			Name:    fmt.Sprintf("genesis-%v", i),
			Funding: uint64(v.Power) * config.GWeiPerPower(0),
		}
		err = st.AddAirline(&a)
		if err != nil {
			app.logger.Error("InitChain add airline fail", "err", err)
			return nil, err
		}
	}
	var h common.Hash
	_, err = st.Update()
	if err != nil {
		app.logger.Error("InitChain update state fail", "err", err)
		return nil, err
	}
	h, err = app.db.SetState(st)
	if err != nil {
		app.logger.Error("InitChain apply state fail", "err", err)
		return nil, err
	}
	return &abcitypes.ResponseInitChain{
		AppHash: h.Bytes(),
	}, nil
}

func (app *SuretyApp) Info(ctx context.Context, info *abcitypes.RequestInfo) (*abcitypes.ResponseInfo, error) {
	header := app.db.Header()
	return &abcitypes.ResponseInfo{
		LastBlockHeight:  int64(header.Height),
		LastBlockAppHash: header.Hash,
	}, nil
}

func (app *SuretyApp) ExtendVote(_ context.Context, extend *abcitypes.RequestExtendVote) (*abcitypes.ResponseExtendVote, error) {
	return &abcitypes.ResponseExtendVote{}, nil
}

func (app *SuretyApp) VerifyVoteExtension(_ context.Context, verify *abcitypes.RequestVerifyVoteExtension) (*abcitypes.ResponseVerifyVoteExtension, error) {
	return &abcitypes.ResponseVerifyVoteExtension{}, nil
}

func (app *SuretyApp) ApplySnapshotChunk(context.Context, *abcitypes.RequestApplySnapshotChunk) (*abcitypes.ResponseApplySnapshotChunk, error) {
	return nil, nil
}

func (app *SuretyApp) ListSnapshots(context.Context, *abcitypes.RequestListSnapshots) (*abcitypes.ResponseListSnapshots, error) {
	return nil, nil
}

func (app *SuretyApp) LoadSnapshotChunk(context.Context, *abcitypes.RequestLoadSnapshotChunk) (*abcitypes.ResponseLoadSnapshotChunk, error) {
	return nil, nil
}

func (app *SuretyApp) OfferSnapshot(context.Context, *abcitypes.RequestOfferSnapshot) (*abcitypes.ResponseOfferSnapshot, error) {
	return nil, nil
}
