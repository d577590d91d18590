package state

import (
	"sync"

	"github.com/flightsurety/surety-node/config"
	"github.com/flightsurety/surety-node/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	dbm "github.com/cosmos/iavl/db"
	"github.com/ethereum/go-ethereum/common"
)

// StateDB owns the committed registry state. Reads are served off the last
// committed State; block processing builds a successor via NewState and
// swaps it in through SetState at commit.
type StateDB struct {
	mtx sync.RWMutex

	dir    string
	logger cmtlog.Logger
	db     *iavl.MutableTree

	state *State
}

func NewStateDB(dir string, cfg *config.SuretyAppConfig, logger cmtlog.Logger) (db *StateDB, err error) {
	logger = logger.With("module", "suretydb")
	ldb, err := dbm.NewDB("surety", "goleveldb", dir)
	if err != nil {
		return nil, err
	}
	tdb := iavl.NewMutableTree(ldb, 128, true, Cometbft2CosmosLogger(logger))
	version, err := tdb.Load()
	if err != nil {
		return nil, err
	}
	logger.Info("load db success", "version", version)
	st := newState(tdb, cfg, logger)
	err = st.load()
	if err != nil {
		logger.Error("from suretydb load fail", "err", err)
		return nil, err
	}
	db = &StateDB{
		dir:    dir,
		logger: logger,
		db:     tdb,
		state:  st,
	}
	return
}

func (db *StateDB) Close() (err error) {
	err = db.db.Close()
	return
}

func (db *StateDB) Header() (header *StateHeader) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	header = db.state.Header()
	return
}

func (db *StateDB) State() *State {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.state
}

func (db *StateDB) NewState() (st *State) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	st = db.state.nextState()
	return
}

func (db *StateDB) SetState(st *State) (hash common.Hash, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	hash, err = st.save()
	if err != nil {
		return
	}
	db.state = st
	return
}

func (db *StateDB) GetAirline(addr string) (a *types.Airline, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	a, err = db.state.Airline(addr)
	if err != nil {
		return
	}
	if a != nil {
		a = a.Clone()
	}
	height = db.state.header.Height
	return
}

func (db *StateDB) GetFlight(key common.Hash) (f *types.Flight, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	f, err = db.state.Flight(key)
	if err != nil {
		return
	}
	if f != nil {
		f = f.Clone()
	}
	height = db.state.header.Height
	return
}

func (db *StateDB) GetPolicy(key common.Hash, passenger string) (p *types.InsurancePolicy, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	p, err = db.state.Policy(key, passenger)
	if err != nil {
		return
	}
	if p != nil {
		p = p.Clone()
	}
	height = db.state.header.Height
	return
}

func (db *StateDB) GetOracle(addr string) (o *types.OracleWorker, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	o, err = db.state.Oracle(addr)
	if err != nil {
		return
	}
	if o != nil {
		o = o.Clone()
	}
	height = db.state.header.Height
	return
}

func (db *StateDB) GetRequest(key common.Hash) (r *types.StatusRequest, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	r, err = db.state.Request(key)
	if err != nil {
		return
	}
	if r != nil {
		r = r.Clone()
	}
	height = db.state.header.Height
	return
}

func (db *StateDB) GetCredit(addr string) (bal uint64, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	bal, err = db.state.Credit(addr)
	height = db.state.header.Height
	return
}

func (db *StateDB) GetPool() (bal uint64, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	bal, err = db.state.Pool()
	height = db.state.header.Height
	return
}

func (db *StateDB) GetNonce(addr string) (nonce uint64, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	nonce, err = db.state.Nonce(addr)
	height = db.state.header.Height
	return
}
