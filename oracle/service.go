package oracle

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Service exposes the indexed registry over HTTP for dapps and dashboards.
type Service struct {
	engine     *gin.Engine
	indexer    *ChainIndexer
	listenAddr string
}

func NewService(listenAddr string, indexer *ChainIndexer) *Service {
	r := gin.Default()
	s := &Service{
		engine:     r,
		indexer:    indexer,
		listenAddr: listenAddr,
	}
	s.engine.POST("/getAirlines", s.handleGetAirlines)
	s.engine.POST("/getFlights", s.handleGetFlights)
	s.engine.POST("/getPolicies", s.handleGetPolicies)
	s.engine.POST("/getRequests", s.handleGetRequests)
	s.engine.POST("/getOracles", s.handleGetOracles)
	s.engine.POST("/getPayouts", s.handleGetPayouts)
	return s
}

func (s *Service) Start() {
	s.engine.Run(s.listenAddr)
}

type PageReq struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

func (p *PageReq) normalize() {
	if p.PageSize <= 0 || p.PageSize > 100 {
		p.PageSize = 20
	}
	if p.Page < 0 {
		p.Page = 0
	}
}

type GetAirlinesResponse struct {
	Airlines []AirlineRow `json:"airlines"`
	Total    uint64       `json:"total"`
}

func (s *Service) handleGetAirlines(c *gin.Context) {
	var req PageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.normalize()
	rows, total, err := s.indexer.getAirlines(req.Page, req.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, GetAirlinesResponse{Airlines: rows, Total: total})
}

type GetFlightsReq struct {
	Key      string `json:"key"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

type GetFlightsResponse struct {
	Flights []FlightRow `json:"flights"`
	Total   uint64      `json:"total"`
}

func (s *Service) handleGetFlights(c *gin.Context) {
	var req GetFlightsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Key != "" {
		row, err := s.indexer.getFlightByKey(req.Key)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, GetFlightsResponse{Flights: []FlightRow{row}, Total: 1})
		return
	}
	page := PageReq{Page: req.Page, PageSize: req.PageSize}
	page.normalize()
	rows, total, err := s.indexer.getFlights(page.Page, page.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, GetFlightsResponse{Flights: rows, Total: total})
}

type GetPoliciesReq struct {
	FlightKey string `json:"flightKey"`
	Passenger string `json:"passenger"`
	Page      int    `json:"page"`
	PageSize  int    `json:"pageSize"`
}

type GetPoliciesResponse struct {
	Policies []PolicyRow `json:"policies"`
	Total    uint64      `json:"total"`
}

func (s *Service) handleGetPolicies(c *gin.Context) {
	var req GetPoliciesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page := PageReq{Page: req.Page, PageSize: req.PageSize}
	page.normalize()
	var rows []PolicyRow
	var total uint64
	var err error
	switch {
	case req.FlightKey != "":
		rows, total, err = s.indexer.getPoliciesByFlight(req.FlightKey, page.Page, page.PageSize)
	case req.Passenger != "":
		rows, total, err = s.indexer.getPoliciesByPassenger(req.Passenger, page.Page, page.PageSize)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "flightKey or passenger is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, GetPoliciesResponse{Policies: rows, Total: total})
}

type GetRequestsReq struct {
	Resolved bool `json:"resolved"`
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
}

type GetRequestsResponse struct {
	Requests []RequestRow `json:"requests"`
	Total    uint64       `json:"total"`
}

func (s *Service) handleGetRequests(c *gin.Context) {
	var req GetRequestsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page := PageReq{Page: req.Page, PageSize: req.PageSize}
	page.normalize()
	rows, total, err := s.indexer.getRequests(req.Resolved, page.Page, page.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, GetRequestsResponse{Requests: rows, Total: total})
}

type GetOraclesResponse struct {
	Oracles []OracleRow `json:"oracles"`
	Total   uint64      `json:"total"`
}

func (s *Service) handleGetOracles(c *gin.Context) {
	var req PageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.normalize()
	rows, total, err := s.indexer.getOracles(req.Page, req.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, GetOraclesResponse{Oracles: rows, Total: total})
}

type GetPayoutsReq struct {
	Passenger string `json:"passenger"`
	Page      int    `json:"page"`
	PageSize  int    `json:"pageSize"`
}

type GetPayoutsResponse struct {
	Payouts []PayoutRow `json:"payouts"`
	Total   uint64      `json:"total"`
}

func (s *Service) handleGetPayouts(c *gin.Context) {
	var req GetPayoutsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Passenger == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passenger is required"})
		return
	}
	page := PageReq{Page: req.Page, PageSize: req.PageSize}
	page.normalize()
	rows, total, err := s.indexer.getPayoutsByPassenger(req.Passenger, page.Page, page.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, GetPayoutsResponse{Payouts: rows, Total: total})
}
