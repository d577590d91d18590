package state

import (
	"container/heap"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/flightsurety/surety-node/config"
	"github.com/flightsurety/surety-node/tx"
	"github.com/flightsurety/surety-node/types"
	abci_types "github.com/cometbft/cometbft/abci/types"
	cmtcrypto "github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/syndtr/goleveldb/leveldb"
)

const (
	MaxValidators = 100
)

var (
	ErrNotFound = errors.New("not found")
)

var (
	KeyState         = "s"
	KeyAirline       = "al%s"
	KeyFlight        = "fl%x"
	KeyPolicy        = "po%x:%s"
	KeyFlightPolicies = "fp%x"
	KeyOracle        = "or%s"
	KeyRequest       = "rq%x"
	KeyCredit        = "cr%s"
	KeyNonce         = "nc%s"
	KeyPool          = "pool"
)

var (
	// operational gate
	ErrNotOperational = errors.New("contract not operational")

	// unauthorized callers
	ErrAirlineNotFunded = errors.New("airline not funded")
	ErrSelfSponsor      = errors.New("airline cannot sponsor itself")
	ErrIndexNotAssigned = errors.New("oracle does not hold request index")

	// unknown entities
	ErrAirlineNotFound = errors.New("airline not found")
	ErrFlightNotFound  = errors.New("flight not found")
	ErrOracleNotFound  = errors.New("oracle not found")
	ErrRequestNotFound = errors.New("status request not found")

	// duplicates
	ErrAirlineRegistered = errors.New("airline already registered")
	ErrAlreadyFunded     = errors.New("airline already funded")
	ErrDuplicateVote     = errors.New("duplicate admission vote")
	ErrFlightExists      = errors.New("flight already registered")
	ErrPolicyExists      = errors.New("policy already exists")
	ErrOracleExists      = errors.New("oracle already registered")
	ErrRequestExists     = errors.New("status request already exists")

	// funds
	ErrFundingTooLow = errors.New("funding below minimum stake")
	ErrFeeTooLow     = errors.New("registration fee too low")
	ErrPremiumTooHigh = errors.New("premium above cap")
	ErrPremiumZero    = errors.New("premium is zero")
	ErrPoolDrained    = errors.New("pool balance insufficient")

	// invalid state
	ErrAirlineNotRegistered = errors.New("airline not registered")
	ErrFlightResolved       = errors.New("flight status already resolved")
	ErrInvalidStatus        = errors.New("invalid status code")

	// tx verification
	ErrTxNonceInvalid = errors.New("nonce invalid")
	ErrTxSigInvalid   = errors.New("signature invalid")
)

// StateHeader is the committed head of the registry: chain position, app
// hash, the operational gate, and the running registered-airline count the
// governance threshold is computed from.
type StateHeader struct {
	Height       uint64 `json:"height"`
	Hash         []byte `json:"hash"`
	RootHash     []byte `json:"rootHash"`
	ChainId      string `json:"chainId"`
	Operational  bool   `json:"operational"`
	AirlineCount uint64 `json:"airlineCount"`
}

func (h *StateHeader) Clone() *StateHeader {
	n := *h
	n.Hash = append([]byte(nil), h.Hash...)
	n.RootHash = append([]byte(nil), h.RootHash...)
	return &n
}

// State is a copy-on-write view over the registry tree. Mutators validate,
// stage changes in the caches, and return typed events; Update flushes the
// staged changes into the working tree and nothing reaches disk before save.
type State struct {
	logger cmtlog.Logger
	cfg    *config.SuretyAppConfig
	db     *iavl.MutableTree
	dbVer  int64

	header     *StateHeader
	validators []abci_types.ValidatorUpdate

	airlines  map[string]*types.Airline
	flights   map[common.Hash]*types.Flight
	policies  map[string]*types.InsurancePolicy
	insurees  map[common.Hash][]string
	oracles   map[string]*types.OracleWorker
	requests  map[common.Hash]*types.StatusRequest
	credits   map[string]uint64
	nonces    map[string]uint64
	pool      uint64
	poolLoaded bool

	modifiedAirlines map[string]bool
	modifiedFlights  map[common.Hash]bool
	modifiedPolicies map[string]bool
	modifiedInsurees map[common.Hash]bool
	modifiedOracles  map[string]bool
	modifiedRequests map[common.Hash]bool
	modifiedCredits  map[string]bool
	modifiedNonces   map[string]bool
	poolModified     bool
}

func newState(db *iavl.MutableTree, cfg *config.SuretyAppConfig, logger cmtlog.Logger) *State {
	s := &State{
		logger: logger,
		cfg:    cfg,
		db:     db,
		dbVer:  0,
		header: new(StateHeader),
	}
	s.header.Operational = true
	s.resetCaches()
	return s
}

func (s *State) resetCaches() {
	s.airlines = make(map[string]*types.Airline)
	s.flights = make(map[common.Hash]*types.Flight)
	s.policies = make(map[string]*types.InsurancePolicy)
	s.insurees = make(map[common.Hash][]string)
	s.oracles = make(map[string]*types.OracleWorker)
	s.requests = make(map[common.Hash]*types.StatusRequest)
	s.credits = make(map[string]uint64)
	s.nonces = make(map[string]uint64)
	s.poolLoaded = false
	s.modifiedAirlines = make(map[string]bool)
	s.modifiedFlights = make(map[common.Hash]bool)
	s.modifiedPolicies = make(map[string]bool)
	s.modifiedInsurees = make(map[common.Hash]bool)
	s.modifiedOracles = make(map[string]bool)
	s.modifiedRequests = make(map[common.Hash]bool)
	s.modifiedCredits = make(map[string]bool)
	s.modifiedNonces = make(map[string]bool)
	s.poolModified = false
}

func (s *State) nextState() *State {
	n := &State{
		logger: s.logger,
		cfg:    s.cfg,
		db:     s.db,
		dbVer:  s.dbVer,
	}
	n.resetCaches()
	n.header = s.header.Clone()
	if s.header.Hash != nil {
		n.header.Height = s.header.Height + 1
	}
	return n
}

func (s *State) Clone() *State {
	n := &State{
		logger: s.logger,
		cfg:    s.cfg,
		db:     s.db,
		dbVer:  s.dbVer,
	}
	n.resetCaches()
	n.header = s.header.Clone()
	for k, v := range s.airlines {
		n.airlines[k] = v.Clone()
	}
	for k, v := range s.flights {
		n.flights[k] = v.Clone()
	}
	for k, v := range s.policies {
		n.policies[k] = v.Clone()
	}
	for k, v := range s.insurees {
		n.insurees[k] = append([]string(nil), v...)
	}
	for k, v := range s.oracles {
		n.oracles[k] = v.Clone()
	}
	for k, v := range s.requests {
		n.requests[k] = v.Clone()
	}
	for k, v := range s.credits {
		n.credits[k] = v
	}
	for k, v := range s.nonces {
		n.nonces[k] = v
	}
	n.pool = s.pool
	n.poolLoaded = s.poolLoaded
	for k, v := range s.modifiedAirlines {
		n.modifiedAirlines[k] = v
	}
	for k, v := range s.modifiedFlights {
		n.modifiedFlights[k] = v
	}
	for k, v := range s.modifiedPolicies {
		n.modifiedPolicies[k] = v
	}
	for k, v := range s.modifiedInsurees {
		n.modifiedInsurees[k] = v
	}
	for k, v := range s.modifiedOracles {
		n.modifiedOracles[k] = v
	}
	for k, v := range s.modifiedRequests {
		n.modifiedRequests[k] = v
	}
	for k, v := range s.modifiedCredits {
		n.modifiedCredits[k] = v
	}
	for k, v := range s.modifiedNonces {
		n.modifiedNonces[k] = v
	}
	n.poolModified = s.poolModified
	n.validators = append([]abci_types.ValidatorUpdate(nil), s.validators...)
	return n
}

func (s *State) load() (err error) {
	val, err := s.db.Get([]byte(KeyState))
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil
		}
		return err
	}
	if val != nil {
		err = json.Unmarshal(val, s.header)
		if err != nil {
			return
		}
		h := s.db.Hash()
		if h != nil {
			s.calcHash(h, true)
		}
	}
	return
}

func (s *State) calcHash(rootHash []byte, update bool) (h common.Hash) {
	h = crypto.Keccak256Hash(rootHash)
	if update {
		if s.header.RootHash == nil {
			s.header.RootHash = make([]byte, len(rootHash))
		}
		copy(s.header.RootHash, rootHash)
		if s.header.Hash == nil {
			s.header.Hash = make([]byte, len(h))
		}
		copy(s.header.Hash, h[:])
	}
	return
}

func (s *State) set(key string, val []byte) (err error) {
	_, err = s.db.Set([]byte(key), val)
	return
}

func (s *State) setJSON(key string, v any) (err error) {
	val, err := json.Marshal(v)
	if err != nil {
		return
	}
	return s.set(key, val)
}

// Update flushes staged changes into the working tree and returns the state
// hash the block commits to. Modified keys are written in sorted order so
// the root hash is deterministic across nodes.
func (s *State) Update() (h common.Hash, err error) {
	var hash []byte
	defer func() {
		if hash == nil {
			s.db.Rollback()
		}
	}()
	err = s.setJSON(KeyState, s.header)
	if err != nil {
		return
	}

	for _, addr := range sortedKeys(s.modifiedAirlines) {
		if err = s.setJSON(fmt.Sprintf(KeyAirline, addr), s.airlines[addr]); err != nil {
			return
		}
	}
	for _, key := range sortedHashKeys(s.modifiedFlights) {
		if err = s.setJSON(fmt.Sprintf(KeyFlight, key), s.flights[key]); err != nil {
			return
		}
	}
	for _, key := range sortedKeys(s.modifiedPolicies) {
		if err = s.setJSON("po"+key, s.policies[key]); err != nil {
			return
		}
	}
	for _, key := range sortedHashKeys(s.modifiedInsurees) {
		if err = s.setJSON(fmt.Sprintf(KeyFlightPolicies, key), s.insurees[key]); err != nil {
			return
		}
	}
	for _, addr := range sortedKeys(s.modifiedOracles) {
		if err = s.setJSON(fmt.Sprintf(KeyOracle, addr), s.oracles[addr]); err != nil {
			return
		}
	}
	for _, key := range sortedHashKeys(s.modifiedRequests) {
		if err = s.setJSON(fmt.Sprintf(KeyRequest, key), s.requests[key]); err != nil {
			return
		}
	}
	for _, addr := range sortedKeys(s.modifiedCredits) {
		if err = s.set(fmt.Sprintf(KeyCredit, addr), uint64Bytes(s.credits[addr])); err != nil {
			return
		}
	}
	for _, addr := range sortedKeys(s.modifiedNonces) {
		if err = s.set(fmt.Sprintf(KeyNonce, addr), uint64Bytes(s.nonces[addr])); err != nil {
			return
		}
	}
	if s.poolModified {
		if err = s.set(KeyPool, uint64Bytes(s.pool)); err != nil {
			return
		}
	}

	hash = s.db.WorkingHash()
	h = s.calcHash(hash, false)
	s.modifiedAirlines = make(map[string]bool)
	s.modifiedFlights = make(map[common.Hash]bool)
	s.modifiedPolicies = make(map[string]bool)
	s.modifiedInsurees = make(map[common.Hash]bool)
	s.modifiedOracles = make(map[string]bool)
	s.modifiedRequests = make(map[common.Hash]bool)
	s.modifiedCredits = make(map[string]bool)
	s.modifiedNonces = make(map[string]bool)
	s.poolModified = false
	return
}

func (s *State) save() (h common.Hash, err error) {
	hash, ver, err := s.db.SaveVersion()
	if err != nil {
		return h, err
	}
	s.dbVer = ver
	h = s.calcHash(hash, true)
	return
}

func (s *State) Header() *StateHeader {
	return s.header
}

func (s *State) Hash() (h common.Hash) {
	if s.header.Hash != nil {
		copy(h[:], s.header.Hash)
	}
	return
}

func (s *State) SetChainId(chainId string) {
	s.header.ChainId = chainId
}

func (s *State) Operational() bool {
	return s.header.Operational
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedHashKeys(m map[common.Hash]bool) []common.Hash {
	keys := make([]common.Hash, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Hex() < keys[j].Hex()
	})
	return keys
}

func uint64Bytes(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

func bytesUint64(dat []byte) uint64 {
	if len(dat) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(dat)
}

// AddrString derives the caller identity string from an ed25519 public key.
func AddrString(pubkey []byte) string {
	return ed25519.PubKey(pubkey).Address().String()
}

func (s *State) get(key string) ([]byte, error) {
	val, err := s.db.Get([]byte(key))
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return val, nil
}

// Airline returns the airline record for addr, nil when unknown.
func (s *State) Airline(addr string) (a *types.Airline, err error) {
	if a = s.airlines[addr]; a != nil {
		return
	}
	val, err := s.get(fmt.Sprintf(KeyAirline, addr))
	if err != nil || val == nil {
		return nil, err
	}
	a = new(types.Airline)
	if err = json.Unmarshal(val, a); err != nil {
		return nil, err
	}
	s.airlines[addr] = a
	return
}

func (s *State) Flight(key common.Hash) (f *types.Flight, err error) {
	if f = s.flights[key]; f != nil {
		return
	}
	val, err := s.get(fmt.Sprintf(KeyFlight, key))
	if err != nil || val == nil {
		return nil, err
	}
	f = new(types.Flight)
	if err = json.Unmarshal(val, f); err != nil {
		return nil, err
	}
	s.flights[key] = f
	return
}

func policyKey(flightKey common.Hash, passenger string) string {
	return fmt.Sprintf("%x:%s", flightKey, passenger)
}

func (s *State) Policy(flightKey common.Hash, passenger string) (p *types.InsurancePolicy, err error) {
	key := policyKey(flightKey, passenger)
	if p = s.policies[key]; p != nil {
		return
	}
	val, err := s.get("po" + key)
	if err != nil || val == nil {
		return nil, err
	}
	p = new(types.InsurancePolicy)
	if err = json.Unmarshal(val, p); err != nil {
		return nil, err
	}
	s.policies[key] = p
	return
}

// Insurees returns the passengers holding a policy on the flight, in
// purchase order.
func (s *State) Insurees(flightKey common.Hash) (passengers []string, err error) {
	if passengers, ok := s.insurees[flightKey]; ok {
		return passengers, nil
	}
	val, err := s.get(fmt.Sprintf(KeyFlightPolicies, flightKey))
	if err != nil {
		return nil, err
	}
	passengers = []string{}
	if val != nil {
		if err = json.Unmarshal(val, &passengers); err != nil {
			return nil, err
		}
	}
	s.insurees[flightKey] = passengers
	return
}

func (s *State) Oracle(addr string) (o *types.OracleWorker, err error) {
	if o = s.oracles[addr]; o != nil {
		return
	}
	val, err := s.get(fmt.Sprintf(KeyOracle, addr))
	if err != nil || val == nil {
		return nil, err
	}
	o = new(types.OracleWorker)
	if err = json.Unmarshal(val, o); err != nil {
		return nil, err
	}
	s.oracles[addr] = o
	return
}

func (s *State) Request(key common.Hash) (r *types.StatusRequest, err error) {
	if r = s.requests[key]; r != nil {
		return
	}
	val, err := s.get(fmt.Sprintf(KeyRequest, key))
	if err != nil || val == nil {
		return nil, err
	}
	r = new(types.StatusRequest)
	if err = json.Unmarshal(val, r); err != nil {
		return nil, err
	}
	s.requests[key] = r
	return
}

// Credit returns the withdrawable balance reserved for a passenger.
func (s *State) Credit(addr string) (bal uint64, err error) {
	if bal, ok := s.credits[addr]; ok {
		return bal, nil
	}
	val, err := s.get(fmt.Sprintf(KeyCredit, addr))
	if err != nil {
		return 0, err
	}
	bal = bytesUint64(val)
	s.credits[addr] = bal
	return
}

func (s *State) Nonce(addr string) (nonce uint64, err error) {
	if nonce, ok := s.nonces[addr]; ok {
		return nonce, nil
	}
	val, err := s.get(fmt.Sprintf(KeyNonce, addr))
	if err != nil {
		return 0, err
	}
	nonce = bytesUint64(val)
	s.nonces[addr] = nonce
	return
}

// Pool is the ledger's own balance: stakes, premiums and fees paid in,
// minus payouts withdrawn. Withdrawals fail closed against it.
func (s *State) Pool() (bal uint64, err error) {
	if s.poolLoaded {
		return s.pool, nil
	}
	val, err := s.get(KeyPool)
	if err != nil {
		return 0, err
	}
	s.pool = bytesUint64(val)
	s.poolLoaded = true
	return s.pool, nil
}

func (s *State) addPool(amount uint64) error {
	bal, err := s.Pool()
	if err != nil {
		return err
	}
	s.pool = bal + amount
	s.poolModified = true
	return nil
}

func (s *State) subPool(amount uint64) error {
	bal, err := s.Pool()
	if err != nil {
		return err
	}
	if bal < amount {
		return ErrPoolDrained
	}
	s.pool = bal - amount
	s.poolModified = true
	return nil
}

func (s *State) bumpNonce(addr string) error {
	nonce, err := s.Nonce(addr)
	if err != nil {
		return err
	}
	s.nonces[addr] = nonce + 1
	s.modifiedNonces[addr] = true
	return nil
}

func (s *State) markAirline(a *types.Airline) {
	s.airlines[a.Address] = a
	s.modifiedAirlines[a.Address] = true
}

func (s *State) markFlight(f *types.Flight) {
	s.flights[f.Key] = f
	s.modifiedFlights[f.Key] = true
}

func (s *State) markPolicy(p *types.InsurancePolicy) {
	key := policyKey(p.FlightKey, p.Passenger)
	s.policies[key] = p
	s.modifiedPolicies[key] = true
}

func (s *State) markOracle(o *types.OracleWorker) {
	s.oracles[o.Address] = o
	s.modifiedOracles[o.Address] = true
}

func (s *State) markRequest(r *types.StatusRequest) {
	s.requests[r.Key] = r
	s.modifiedRequests[r.Key] = true
}

// Verify checks a transaction envelope against committed state: nonce
// freshness per caller address and an ed25519 signature over the chain-id
// salted envelope.
func (s *State) Verify(btx *tx.SuretyTx, allowNonceGap bool) (succ bool, err error) {
	if len(btx.Caller) != ed25519.PubKeySize {
		return false, ErrTxSigInvalid
	}
	addr := AddrString(btx.Caller)
	nonce, err := s.Nonce(addr)
	if err != nil {
		return false, err
	}
	if !(nonce == btx.Nonce || (allowNonceGap && nonce < btx.Nonce)) {
		return false, ErrTxNonceInvalid
	}
	dat, err := btx.SigData([]byte(s.header.ChainId))
	if err != nil {
		return false, err
	}
	if len(btx.Sig) != 1 {
		return false, ErrTxSigInvalid
	}
	succ = ed25519.PubKey(btx.Caller).VerifySignature(dat, btx.Sig[0])
	if !succ {
		err = ErrTxSigInvalid
	}
	return
}

// AddAirline seeds a Funded airline, used at genesis for the founding set.
func (s *State) AddAirline(a *types.Airline) (err error) {
	existing, err := s.Airline(a.Address)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrAirlineRegistered
	}
	a.Status = types.AirlineStatusFunded
	s.header.AirlineCount += 1
	s.markAirline(a.Clone())
	if a.Funding > 0 {
		if err = s.addPool(a.Funding); err != nil {
			return err
		}
	}
	return
}

// Validators maps Funded airlines to host-chain consensus power, capped at
// MaxValidators, highest stake first.
func (s *State) Validators() (updateVals map[string]abci_types.ValidatorUpdate, err error) {
	updateVals = make(map[string]abci_types.ValidatorUpdate, 0)
	start := []byte("al")
	end := PrefixEndBytes(start)
	aIterator, err := s.db.Iterator(start, end, false)
	if err != nil {
		return nil, err
	}

	valsQueue := &PowerQueue{}
	heap.Init(valsQueue)
	for ; aIterator.Valid(); aIterator.Next() {
		var a types.Airline
		if err = json.Unmarshal(aIterator.Value(), &a); err != nil {
			return nil, err
		}
		if a.Status != types.AirlineStatusFunded {
			continue
		}
		power := config.PowerPerFunding(a.Funding, s.header.Height)
		if power > 0 {
			heap.Push(valsQueue, validatorWithPower{
				Address: a.Address,
				Pubkey:  a.PubKey,
				Power:   power,
			})
		}
	}

	vals := make([]abci_types.ValidatorUpdate, 0)
	for valsQueue.Len() > 0 && len(vals) < MaxValidators {
		val := heap.Pop(valsQueue).(validatorWithPower)
		vals = append(vals, abci_types.Ed25519ValidatorUpdate(val.Pubkey, val.Power))
	}
	s.validators = vals

	for _, val := range vals {
		updateVals[val.PubKey.String()] = val
	}

	return updateVals, nil
}

func (s *State) ValidatorsUpdate(curVals map[string]abci_types.ValidatorUpdate) (updateVals []abci_types.ValidatorUpdate, err error) {
	nextVals, err := s.Validators()
	if err != nil {
		return nil, err
	}

	for key, val := range nextVals {
		if v, ok := curVals[key]; ok {
			if v.Power != val.Power {
				updateVals = append(updateVals, val)
			}
		} else {
			updateVals = append(updateVals, val)
		}
	}

	for key, curVal := range curVals {
		if _, ok := nextVals[key]; !ok {
			curVal.Power = 0
			updateVals = append(updateVals, curVal)
		}
	}
	return
}

// ValidatorAirlines returns the airlines currently holding consensus power.
func (s *State) ValidatorAirlines() (airlines []*types.Airline, height uint64, err error) {
	vals := s.validators
	for _, val := range vals {
		pk := ed25519.PubKey(val.PubKey.GetEd25519()[:])
		addr := cmtcrypto.Address(pk.Address()[:]).String()
		a, _ := s.Airline(addr)
		if a != nil {
			airlines = append(airlines, a)
		}
	}
	height = s.header.Height
	return
}

type validatorWithPower struct {
	Address string
	Pubkey  []byte
	Power   int64
}

type PowerQueue []validatorWithPower

func (pq PowerQueue) Len() int { return len(pq) }

func (pq PowerQueue) Less(i, j int) bool {
	if pq[i].Power == pq[j].Power {
		return pq[i].Address < pq[j].Address
	}
	return pq[i].Power > pq[j].Power
}

func (pq PowerQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *PowerQueue) Push(x any) {
	item := x.(validatorWithPower)
	*pq = append(*pq, item)
}

func (pq *PowerQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

func PrefixEndBytes(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}

	end := make([]byte, len(prefix))
	copy(end, prefix)

	for {
		if end[len(end)-1] != byte(255) {
			end[len(end)-1]++
			break
		}

		end = end[:len(end)-1]

		if len(end) == 0 {
			end = nil
			break
		}
	}

	return end
}
