package app

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/flightsurety/surety-node/state"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"
)

type Querier interface {
	Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error)
}

func (app *SuretyApp) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	path := req.Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	q, ok := app.queriers[path]
	if !ok {
		res = &abcitypes.ResponseQuery{}
		res.Code = 404
		return
	}
	res, err = q.Query(ctx, req)
	return
}

// AirlineQuerier resolves an airline record by its address string.
type AirlineQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewAirlineQuerier(db *state.StateDB, logger cmtlog.Logger) (q *AirlineQuerier) {
	q = &AirlineQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *AirlineQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	a, height, _ := q.db.GetAirline(string(req.Data))
	if a == nil {
		res.Code = 1
		return
	}
	res.Value, _ = json.Marshal(a)
	res.Height = int64(height)
	return
}

type ValidatorQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewValidatorQuerier(db *state.StateDB, logger cmtlog.Logger) (q *ValidatorQuerier) {
	q = &ValidatorQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *ValidatorQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	validators, height, err := q.db.State().ValidatorAirlines()
	if err != nil {
		res.Code = 1
		return
	}
	res.Height = int64(height)
	res.Value, _ = json.Marshal(validators)
	return
}

// FlightQuerier resolves a flight by its hex key.
type FlightQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewFlightQuerier(db *state.StateDB, logger cmtlog.Logger) (q *FlightQuerier) {
	q = &FlightQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *FlightQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	f, height, _ := q.db.GetFlight(common.HexToHash(string(req.Data)))
	if f == nil {
		res.Code = 1
		return
	}
	res.Value, _ = json.Marshal(f)
	res.Height = int64(height)
	return
}

type policyQuery struct {
	FlightKey string `json:"flightKey"`
	Passenger string `json:"passenger"`
}

type PolicyQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewPolicyQuerier(db *state.StateDB, logger cmtlog.Logger) (q *PolicyQuerier) {
	q = &PolicyQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *PolicyQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	var pq policyQuery
	if err := json.Unmarshal(req.Data, &pq); err != nil {
		res.Code = 1
		res.Log = err.Error()
		return res, nil
	}
	p, height, _ := q.db.GetPolicy(common.HexToHash(pq.FlightKey), pq.Passenger)
	if p == nil {
		res.Code = 1
		return
	}
	res.Value, _ = json.Marshal(p)
	res.Height = int64(height)
	return
}

type OracleQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewOracleQuerier(db *state.StateDB, logger cmtlog.Logger) (q *OracleQuerier) {
	q = &OracleQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *OracleQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	o, height, _ := q.db.GetOracle(string(req.Data))
	if o == nil {
		res.Code = 1
		return
	}
	res.Value, _ = json.Marshal(o)
	res.Height = int64(height)
	return
}

type RequestQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewRequestQuerier(db *state.StateDB, logger cmtlog.Logger) (q *RequestQuerier) {
	q = &RequestQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *RequestQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	r, height, _ := q.db.GetRequest(common.HexToHash(string(req.Data)))
	if r == nil {
		res.Code = 1
		return
	}
	res.Value, _ = json.Marshal(r)
	res.Height = int64(height)
	return
}

type CreditQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewCreditQuerier(db *state.StateDB, logger cmtlog.Logger) (q *CreditQuerier) {
	q = &CreditQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *CreditQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	bal, height, err := q.db.GetCredit(string(req.Data))
	if err != nil {
		res.Code = 1
		return res, nil
	}
	res.Value, _ = json.Marshal(bal)
	res.Height = int64(height)
	return
}

// NonceQuerier serves the next expected nonce for an address, which tx
// builders need before signing.
type NonceQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewNonceQuerier(db *state.StateDB, logger cmtlog.Logger) (q *NonceQuerier) {
	q = &NonceQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *NonceQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	nonce, height, err := q.db.GetNonce(string(req.Data))
	if err != nil {
		res.Code = 1
		return res, nil
	}
	res.Value, _ = json.Marshal(nonce)
	res.Height = int64(height)
	return
}

type PoolQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewPoolQuerier(db *state.StateDB, logger cmtlog.Logger) (q *PoolQuerier) {
	q = &PoolQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *PoolQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	bal, height, err := q.db.GetPool()
	if err != nil {
		res.Code = 1
		return res, nil
	}
	res.Value, _ = json.Marshal(bal)
	res.Height = int64(height)
	return
}
