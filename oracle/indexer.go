package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"time"

	app_config "github.com/flightsurety/surety-node/config"
	"github.com/flightsurety/surety-node/crypto"
	"github.com/flightsurety/surety-node/tx"
	"github.com/flightsurety/surety-node/types"
	abci "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	comethttp "github.com/cometbft/cometbft/rpc/client/http"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

// statusCodes a worker may report when it has no feed to consult. The
// original scheme has oracles answer from whatever data source they watch;
// without one the worker samples the domain uniformly.
var statusCodes = []uint64{
	uint64(types.FlightStatusOnTime),
	uint64(types.FlightStatusLateAirline),
	uint64(types.FlightStatusLateWeather),
	uint64(types.FlightStatusLateTechnical),
	uint64(types.FlightStatusLateOther),
}

// ChainIndexer tails the chain, mirrors registry events into sqlite for the
// query service, and doubles as the oracle worker: it keeps the local key
// registered as an oracle and answers status requests matching its indexes.
type ChainIndexer struct {
	logger        cmtlog.Logger
	Url           string
	Height        int64
	db            *gorm.DB
	cli           *comethttp.HTTP
	eventHandlers map[string]eventHandler
	appConfig     *app_config.Config
	signer        *crypto.Signer
	localAddress  string
	ChainId       string
	chainUrl      string
	rnd           *rand.Rand

	localIndexes []uint8
	registered   bool
}

func NewChainIndexer(logger cmtlog.Logger, dbPath string, chainUrl string, appConfig *app_config.Config) (*ChainIndexer, error) {
	logger.Info("NewChainIndexer", "dbPath", dbPath, "url", chainUrl)
	cli, err := comethttp.New(chainUrl, "/websocket")
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Height{}, &AirlineRow{}, &FlightRow{}, &PolicyRow{}, &RequestRow{}, &OracleRow{}, &PayoutRow{}).Error; err != nil {
		return nil, err
	}
	h := Height{Id: 1}
	if err = db.First(&h).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	signer, err := crypto.LoadSigner(appConfig.PrivValidatorKeyFile())
	if err != nil {
		return nil, err
	}
	localAddress := signer.Address()

	ctx := context.Background()
	gres, err := cli.Genesis(ctx)
	if err != nil {
		logger.Error("get genesis fail", "err", err)
		return nil, err
	}
	chainId := gres.Genesis.ChainID

	c := ChainIndexer{
		logger:        logger.With("module", "indexer"),
		Url:           chainUrl,
		Height:        int64(h.Height + 1),
		db:            db,
		cli:           cli,
		eventHandlers: map[string]eventHandler{},
		appConfig:     appConfig,
		signer:        signer,
		localAddress:  localAddress,
		chainUrl:      chainUrl,
		ChainId:       chainId,
		rnd:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	c.eventHandlers = map[string]eventHandler{
		types.EventAirlineAppliedType:    c.handleEventAirlineApplied,
		types.EventAirlineRegisteredType: c.handleEventAirlineRegistered,
		types.EventAirlineFundedType:     c.handleEventAirlineFunded,
		types.EventFlightRegisteredType:  c.handleEventFlightRegistered,
		types.EventInsuranceBoughtType:   c.handleEventInsuranceBought,
		types.EventInsureesCreditedType:  c.handleEventInsureesCredited,
		types.EventPayoutWithdrawnType:   c.handleEventPayoutWithdrawn,
		types.EventOracleRegisteredType:  c.handleEventOracleRegistered,
		types.EventOracleRequestType:     c.handleEventOracleRequest,
		types.EventFlightStatusInfoType:  c.handleEventFlightStatusInfo,
	}
	return &c, nil
}

type eventHandler func(ctx context.Context, event abci.Event, height int64)

func (c *ChainIndexer) handleEvent(ctx context.Context, event abci.Event, height int64) {
	if h, ok := c.eventHandlers[event.Type]; ok {
		h(ctx, event, height)
	}
}

func (c *ChainIndexer) saveAirline(address, name string, status uint64, votes uint64, height int64) {
	row := AirlineRow{}
	if err := c.db.Where("address = ?", address).First(&row).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.logger.Error("get airline fail", "err", err)
		return
	}
	row.Address = address
	if name != "" {
		row.Name = name
	}
	if status > row.Status {
		row.Status = status
	}
	if votes > 0 {
		row.Votes = votes
	}
	row.Height = uint64(height)
	if err := c.db.Save(&row).Error; err != nil {
		c.logger.Error("save airline fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventAirlineApplied(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventAirlineApplied(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	c.saveAirline(ev.Airline, "", uint64(types.AirlineStatusApplied), ev.Votes, height)
}

func (c *ChainIndexer) handleEventAirlineRegistered(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventAirlineRegistered(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	c.saveAirline(ev.Airline, "", uint64(types.AirlineStatusRegistered), ev.Votes, height)
}

func (c *ChainIndexer) handleEventAirlineFunded(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventAirlineFunded(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	row := AirlineRow{}
	if err := c.db.Where("address = ?", ev.Airline).First(&row).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.logger.Error("get airline fail", "err", err)
		return
	}
	row.Address = ev.Airline
	row.Status = uint64(types.AirlineStatusFunded)
	row.Funding = ev.Amount
	row.Height = uint64(height)
	if err := c.db.Save(&row).Error; err != nil {
		c.logger.Error("save airline fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventFlightRegistered(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventFlightRegistered(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	row := FlightRow{
		Key:       ev.Key,
		Airline:   ev.Airline,
		Number:    ev.Flight,
		Timestamp: ev.Timestamp,
		Status:    uint64(types.FlightStatusUnknown),
		Height:    uint64(height),
	}
	if err := c.db.Save(&row).Error; err != nil {
		c.logger.Error("save flight fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventInsuranceBought(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventInsuranceBought(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	row := PolicyRow{
		FlightKey: ev.FlightKey,
		Passenger: ev.Passenger,
		Premium:   ev.Amount,
		Height:    uint64(height),
	}
	if err := c.db.Create(&row).Error; err != nil {
		c.logger.Error("save policy fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventInsureesCredited(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventInsureesCredited(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	var rows []PolicyRow
	if err := c.db.Where("flight_key = ?", ev.FlightKey).Find(&rows).Error; err != nil {
		c.logger.Error("get policies fail", "err", err)
		return
	}
	num := c.appConfig.App.PayoutNumerator
	den := c.appConfig.App.PayoutDenominator
	for _, row := range rows {
		if row.Credit != 0 {
			continue
		}
		row.Credit = row.Premium * num / den
		if err := c.db.Save(&row).Error; err != nil {
			c.logger.Error("save policy fail", "err", err)
		}
	}
}

func (c *ChainIndexer) handleEventPayoutWithdrawn(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventPayoutWithdrawn(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	row := PayoutRow{
		Passenger: ev.Passenger,
		Amount:    ev.Amount,
		Height:    uint64(height),
	}
	if err := c.db.Create(&row).Error; err != nil {
		c.logger.Error("save payout fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventOracleRegistered(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventOracleRegistered(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	idxs := make([]string, len(ev.Indexes))
	for i := range ev.Indexes {
		idxs[i] = strconv.FormatUint(uint64(ev.Indexes[i]), 10)
	}
	row := OracleRow{
		Address: ev.Oracle,
		Indexes: strings.Join(idxs, ","),
		Height:  uint64(height),
	}
	if err := c.db.Save(&row).Error; err != nil {
		c.logger.Error("save oracle fail", "err", err)
	}
	if ev.Oracle == c.localAddress {
		c.localIndexes = append([]uint8(nil), ev.Indexes...)
		c.registered = true
		c.logger.Info("local oracle registered", "indexes", row.Indexes)
	}
}

func (c *ChainIndexer) handleEventOracleRequest(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventOracleRequest(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	row := RequestRow{
		Index:     uint64(ev.Index),
		Airline:   ev.Airline,
		Flight:    ev.Flight,
		Timestamp: ev.Timestamp,
		Height:    uint64(height),
	}
	if err := c.db.Create(&row).Error; err != nil {
		c.logger.Error("save request fail", "err", err)
	}
	c.respond(ctx, ev)
}

func (c *ChainIndexer) handleEventFlightStatusInfo(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventFlightStatusInfo(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	var reqs []RequestRow
	if err := c.db.Where("airline = ? AND flight = ? AND timestamp = ?", ev.Airline, ev.Flight, ev.Timestamp).Find(&reqs).Error; err != nil {
		c.logger.Error("get requests fail", "err", err)
		return
	}
	for _, req := range reqs {
		req.Status = ev.Status
		req.Resolved = true
		if err := c.db.Save(&req).Error; err != nil {
			c.logger.Error("save request fail", "err", err)
		}
	}
	key := types.FlightKey(ev.Airline, ev.Flight, ev.Timestamp)
	flight := FlightRow{}
	if err := c.db.Where("key = ?", key.Hex()).First(&flight).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.logger.Error("get flight fail", "err", err)
		}
		return
	}
	flight.Status = ev.Status
	if err := c.db.Save(&flight).Error; err != nil {
		c.logger.Error("save flight fail", "err", err)
	}
}

// respond answers a status request when the local oracle holds its index.
func (c *ChainIndexer) respond(ctx context.Context, ev *types.EventOracleRequest) {
	if !c.registered {
		return
	}
	match := false
	for _, idx := range c.localIndexes {
		if idx == ev.Index {
			match = true
			break
		}
	}
	if !match {
		return
	}
	status := statusCodes[c.rnd.Intn(len(statusCodes))]
	stx := &tx.OracleResponseTx{
		Index:     ev.Index,
		Airline:   ev.Airline,
		Flight:    ev.Flight,
		Timestamp: ev.Timestamp,
		Status:    status,
	}
	err := c.sendTx(ctx, tx.SuretyTxTypeOracleResponse, stx)
	if err != nil {
		c.logger.Error("broadcast oracle response fail", "err", err)
		return
	}
	c.logger.Info("oracle response sent", "index", ev.Index, "flight", ev.Flight, "status", status)
}

// ensureRegistered submits the oracle registration tx for the local key if
// the chain does not know it yet.
func (c *ChainIndexer) ensureRegistered(ctx context.Context) {
	if c.registered {
		return
	}
	res, err := c.cli.ABCIQuery(ctx, "/oracles/", []byte(c.localAddress))
	if err != nil {
		c.logger.Error("query oracle fail", "err", err)
		return
	}
	if res.Response.Code == 0 {
		var o types.OracleWorker
		if err := json.Unmarshal(res.Response.Value, &o); err == nil {
			c.localIndexes = o.Indexes
			c.registered = true
			return
		}
	}
	stx := &tx.RegisterOracleTx{Fee: c.appConfig.App.RegistrationFee}
	if err := c.sendTx(ctx, tx.SuretyTxTypeRegisterOracle, stx); err != nil {
		c.logger.Error("broadcast oracle registration fail", "err", err)
		return
	}
	c.logger.Info("oracle registration sent", "address", c.localAddress)
}

func (c *ChainIndexer) queryNonce(ctx context.Context, address string) (uint64, error) {
	res, err := c.cli.ABCIQuery(ctx, "/nonces/", []byte(address))
	if err != nil {
		return 0, err
	}
	if res.Response.Code != 0 {
		return 0, errors.New(res.Response.Log)
	}
	var nonce uint64
	if err := json.Unmarshal(res.Response.Value, &nonce); err != nil {
		return 0, err
	}
	return nonce, nil
}

func (c *ChainIndexer) sendTx(ctx context.Context, tp tx.SuretyTxType, payload any) error {
	nonce, err := c.queryNonce(ctx, c.localAddress)
	if err != nil {
		return err
	}
	btx := tx.SuretyTx{
		Version: tx.SuretyTxVersion1,
		Type:    tp,
		Nonce:   nonce,
		Tx:      payload,
	}
	if err = c.signer.SignTx(&btx, c.ChainId); err != nil {
		return err
	}
	dat, err := json.Marshal(btx)
	if err != nil {
		return err
	}
	_, err = c.cli.BroadcastTxSync(ctx, dat)
	return err
}

func (c *ChainIndexer) reconnect() {
	if !c.cli.IsRunning() {
		c.cli.Stop()
		cli, err := comethttp.New(c.Url, "/websocket")
		if err != nil {
			c.logger.Error("reconnect fail", "err", err)
			return
		}
		c.cli = cli
	}
}

func (c *ChainIndexer) Start(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b, err := c.cli.Status(ctx)
			if err != nil {
				c.logger.Error("get status fail", "err", err)
				c.reconnect()
				continue
			}
			c.ensureRegistered(ctx)
			for b.SyncInfo.LatestBlockHeight > c.Height {
				time.Sleep(time.Millisecond * 100)
				c.logger.Info("indexer syncing", "height", c.Height)
				events, err := c.cli.BlockResults(ctx, &c.Height)
				if err != nil {
					c.logger.Error("get block results fail", "err", err)
					c.reconnect()
					break
				}
				for _, res := range events.TxsResults {
					for _, event := range res.Events {
						c.handleEvent(ctx, event, c.Height)
					}
				}
				if err := c.db.Save(Height{
					Id:     1,
					Height: uint64(c.Height),
				}).Error; err != nil {
					c.logger.Error("save height fail", "err", err)
					break
				}
				c.Height++
			}
		}
	}
}

func (c *ChainIndexer) getAirlines(page int, pageSize int) ([]AirlineRow, uint64, error) {
	var rows []AirlineRow
	err := c.db.Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&AirlineRow{}).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (c *ChainIndexer) getFlights(page int, pageSize int) ([]FlightRow, uint64, error) {
	var rows []FlightRow
	err := c.db.Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&FlightRow{}).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (c *ChainIndexer) getFlightByKey(key string) (FlightRow, error) {
	var row FlightRow
	err := c.db.Where("key = ?", key).First(&row).Error
	return row, err
}

func (c *ChainIndexer) getPoliciesByFlight(flightKey string, page int, pageSize int) ([]PolicyRow, uint64, error) {
	var rows []PolicyRow
	err := c.db.Where("flight_key = ?", flightKey).Offset(page * pageSize).Limit(pageSize).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&PolicyRow{}).Where("flight_key = ?", flightKey).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (c *ChainIndexer) getPoliciesByPassenger(passenger string, page int, pageSize int) ([]PolicyRow, uint64, error) {
	var rows []PolicyRow
	err := c.db.Where("passenger = ?", passenger).Offset(page * pageSize).Limit(pageSize).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&PolicyRow{}).Where("passenger = ?", passenger).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (c *ChainIndexer) getRequests(resolved bool, page int, pageSize int) ([]RequestRow, uint64, error) {
	var rows []RequestRow
	err := c.db.Where("resolved = ?", resolved).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&RequestRow{}).Where("resolved = ?", resolved).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (c *ChainIndexer) getOracles(page int, pageSize int) ([]OracleRow, uint64, error) {
	var rows []OracleRow
	err := c.db.Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&OracleRow{}).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (c *ChainIndexer) getPayoutsByPassenger(passenger string, page int, pageSize int) ([]PayoutRow, uint64, error) {
	var rows []PayoutRow
	err := c.db.Where("passenger = ?", passenger).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&PayoutRow{}).Where("passenger = ?", passenger).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
