package types

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

type AirlineStatus uint64

const (
	AirlineStatusApplied    AirlineStatus = 1
	AirlineStatusRegistered AirlineStatus = 2
	AirlineStatusFunded     AirlineStatus = 3
)

type FlightStatus uint64

const (
	FlightStatusUnknown       FlightStatus = 0
	FlightStatusOnTime        FlightStatus = 10
	FlightStatusLateAirline   FlightStatus = 20
	FlightStatusLateWeather   FlightStatus = 30
	FlightStatusLateTechnical FlightStatus = 40
	FlightStatusLateOther     FlightStatus = 50
)

func (s FlightStatus) Valid() bool {
	switch s {
	case FlightStatusUnknown, FlightStatusOnTime, FlightStatusLateAirline,
		FlightStatusLateWeather, FlightStatusLateTechnical, FlightStatusLateOther:
		return true
	}
	return false
}

type Airline struct {
	Address string        `json:"address"`
	PubKey  []byte        `json:"pubKey"`
	Name    string        `json:"name"`
	Status  AirlineStatus `json:"status"`
	Funding uint64        `json:"funding"`
	Votes   []string      `json:"votes"`
	Height  uint64        `json:"height"`
}

func (a *Airline) HasVote(sponsor string) bool {
	for _, v := range a.Votes {
		if v == sponsor {
			return true
		}
	}
	return false
}

func (a *Airline) Clone() *Airline {
	n := *a
	n.PubKey = append([]byte(nil), a.PubKey...)
	n.Votes = append([]string(nil), a.Votes...)
	return &n
}

type Flight struct {
	Key        common.Hash  `json:"key"`
	Airline    string       `json:"airline"`
	Number     string       `json:"number"`
	Timestamp  uint64       `json:"timestamp"`
	Status     FlightStatus `json:"status"`
	Registered bool         `json:"registered"`
	Height     uint64       `json:"height"`
}

func (f *Flight) Clone() *Flight {
	n := *f
	return &n
}

type InsurancePolicy struct {
	FlightKey common.Hash `json:"flightKey"`
	Passenger string      `json:"passenger"`
	Premium   uint64      `json:"premium"`
	Credited  bool        `json:"credited"`
	Payout    uint64      `json:"payout"`
	Height    uint64      `json:"height"`
}

func (p *InsurancePolicy) Clone() *InsurancePolicy {
	n := *p
	return &n
}

type OracleWorker struct {
	Address string  `json:"address"`
	PubKey  []byte  `json:"pubKey"`
	Indexes []uint8 `json:"indexes"`
	Height  uint64  `json:"height"`
}

func (o *OracleWorker) HasIndex(idx uint8) bool {
	for _, v := range o.Indexes {
		if v == idx {
			return true
		}
	}
	return false
}

func (o *OracleWorker) Clone() *OracleWorker {
	n := *o
	n.PubKey = append([]byte(nil), o.PubKey...)
	n.Indexes = append([]uint8(nil), o.Indexes...)
	return &n
}

// StatusRequest accumulates oracle responses for one (index, flight) lookup.
// Responses maps a reported status code to the distinct responder addresses.
type StatusRequest struct {
	Key       common.Hash          `json:"key"`
	Index     uint8                `json:"index"`
	Airline   string               `json:"airline"`
	Flight    string               `json:"flight"`
	Timestamp uint64               `json:"timestamp"`
	Responses map[uint64][]string  `json:"responses"`
	Resolved  bool                 `json:"resolved"`
	Height    uint64               `json:"height"`
}

func (r *StatusRequest) HasResponder(code FlightStatus, addr string) bool {
	for _, v := range r.Responses[uint64(code)] {
		if v == addr {
			return true
		}
	}
	return false
}

func (r *StatusRequest) Clone() *StatusRequest {
	n := *r
	n.Responses = make(map[uint64][]string, len(r.Responses))
	for k, v := range r.Responses {
		n.Responses[k] = append([]string(nil), v...)
	}
	return &n
}

// FlightKey derives the canonical flight identifier. Any party holding the
// airline address, flight number and departure timestamp can recompute it.
func FlightKey(airline string, number string, timestamp uint64) common.Hash {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], timestamp)
	return crypto.Keccak256Hash([]byte(airline), []byte(number), ts[:])
}

// RequestKey derives the status-request identifier from the request index
// and the flight coordinates.
func RequestKey(index uint8, airline string, number string, timestamp uint64) common.Hash {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], timestamp)
	return crypto.Keccak256Hash([]byte{index}, []byte(airline), []byte(number), ts[:])
}
