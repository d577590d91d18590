package types

import (
	"fmt"
	"strconv"
	"strings"

	abci "github.com/cometbft/cometbft/abci/types"
)

const (
	EventAirlineAppliedType    = "airline_applied"
	EventAirlineRegisteredType = "airline_registered"
	EventAirlineFundedType     = "airline_funded"
	EventFlightRegisteredType  = "flight_registered"
	EventInsuranceBoughtType   = "insurance_bought"
	EventInsureesCreditedType  = "insurees_credited"
	EventPayoutWithdrawnType   = "payout_withdrawn"
	EventOracleRegisteredType  = "oracle_registered"
	EventOracleRequestType     = "oracle_request"
	EventFlightStatusInfoType  = "flight_status_info"
	EventOperationalSetType    = "operational_set"
)

type EventAirlineApplied struct {
	Airline string `json:"airline"`
	Sponsor string `json:"sponsor"`
	Votes   uint64 `json:"votes"`
}

func EncodeEventAirlineApplied(event *EventAirlineApplied) abci.Event {
	return abci.Event{
		Type: EventAirlineAppliedType,
		Attributes: []abci.EventAttribute{
			{Key: "airline", Value: event.Airline, Index: true},
			{Key: "sponsor", Value: event.Sponsor, Index: false},
			{Key: "votes", Value: fmt.Sprintf("%v", event.Votes), Index: false},
		},
	}
}

func DecodeEventAirlineApplied(originEvent abci.Event) *EventAirlineApplied {
	event := &EventAirlineApplied{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "airline":
			event.Airline = v.Value
		case "sponsor":
			event.Sponsor = v.Value
		case "votes":
			votes, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Votes = votes
		}
	}
	return event
}

type EventAirlineRegistered struct {
	Airline string `json:"airline"`
	Sponsor string `json:"sponsor"`
	Votes   uint64 `json:"votes"`
}

func EncodeEventAirlineRegistered(event *EventAirlineRegistered) abci.Event {
	return abci.Event{
		Type: EventAirlineRegisteredType,
		Attributes: []abci.EventAttribute{
			{Key: "airline", Value: event.Airline, Index: true},
			{Key: "sponsor", Value: event.Sponsor, Index: false},
			{Key: "votes", Value: fmt.Sprintf("%v", event.Votes), Index: false},
		},
	}
}

func DecodeEventAirlineRegistered(originEvent abci.Event) *EventAirlineRegistered {
	event := &EventAirlineRegistered{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "airline":
			event.Airline = v.Value
		case "sponsor":
			event.Sponsor = v.Value
		case "votes":
			votes, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Votes = votes
		}
	}
	return event
}

type EventAirlineFunded struct {
	Airline string `json:"airline"`
	Amount  uint64 `json:"amount"`
}

func EncodeEventAirlineFunded(event *EventAirlineFunded) abci.Event {
	return abci.Event{
		Type: EventAirlineFundedType,
		Attributes: []abci.EventAttribute{
			{Key: "airline", Value: event.Airline, Index: true},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Amount), Index: false},
		},
	}
}

func DecodeEventAirlineFunded(originEvent abci.Event) *EventAirlineFunded {
	event := &EventAirlineFunded{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "airline":
			event.Airline = v.Value
		case "amount":
			amount, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Amount = amount
		}
	}
	return event
}

type EventFlightRegistered struct {
	Key       string `json:"key"`
	Airline   string `json:"airline"`
	Flight    string `json:"flight"`
	Timestamp uint64 `json:"timestamp"`
}

func EncodeEventFlightRegistered(event *EventFlightRegistered) abci.Event {
	return abci.Event{
		Type: EventFlightRegisteredType,
		Attributes: []abci.EventAttribute{
			{Key: "key", Value: event.Key, Index: true},
			{Key: "airline", Value: event.Airline, Index: true},
			{Key: "flight", Value: event.Flight, Index: false},
			{Key: "timestamp", Value: fmt.Sprintf("%v", event.Timestamp), Index: false},
		},
	}
}

func DecodeEventFlightRegistered(originEvent abci.Event) *EventFlightRegistered {
	event := &EventFlightRegistered{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "key":
			event.Key = v.Value
		case "airline":
			event.Airline = v.Value
		case "flight":
			event.Flight = v.Value
		case "timestamp":
			ts, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Timestamp = ts
		}
	}
	return event
}

type EventInsuranceBought struct {
	FlightKey string `json:"flightKey"`
	Passenger string `json:"passenger"`
	Amount    uint64 `json:"amount"`
}

func EncodeEventInsuranceBought(event *EventInsuranceBought) abci.Event {
	return abci.Event{
		Type: EventInsuranceBoughtType,
		Attributes: []abci.EventAttribute{
			{Key: "flightKey", Value: event.FlightKey, Index: true},
			{Key: "passenger", Value: event.Passenger, Index: true},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Amount), Index: false},
		},
	}
}

func DecodeEventInsuranceBought(originEvent abci.Event) *EventInsuranceBought {
	event := &EventInsuranceBought{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "flightKey":
			event.FlightKey = v.Value
		case "passenger":
			event.Passenger = v.Value
		case "amount":
			amount, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Amount = amount
		}
	}
	return event
}

type EventInsureesCredited struct {
	FlightKey string `json:"flightKey"`
	Airline   string `json:"airline"`
	Flight    string `json:"flight"`
	Credit    uint64 `json:"credit"`
}

func EncodeEventInsureesCredited(event *EventInsureesCredited) abci.Event {
	return abci.Event{
		Type: EventInsureesCreditedType,
		Attributes: []abci.EventAttribute{
			{Key: "flightKey", Value: event.FlightKey, Index: true},
			{Key: "airline", Value: event.Airline, Index: false},
			{Key: "flight", Value: event.Flight, Index: false},
			{Key: "credit", Value: fmt.Sprintf("%v", event.Credit), Index: false},
		},
	}
}

func DecodeEventInsureesCredited(originEvent abci.Event) *EventInsureesCredited {
	event := &EventInsureesCredited{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "flightKey":
			event.FlightKey = v.Value
		case "airline":
			event.Airline = v.Value
		case "flight":
			event.Flight = v.Value
		case "credit":
			credit, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Credit = credit
		}
	}
	return event
}

type EventPayoutWithdrawn struct {
	Passenger string `json:"passenger"`
	Amount    uint64 `json:"amount"`
}

func EncodeEventPayoutWithdrawn(event *EventPayoutWithdrawn) abci.Event {
	return abci.Event{
		Type: EventPayoutWithdrawnType,
		Attributes: []abci.EventAttribute{
			{Key: "passenger", Value: event.Passenger, Index: true},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Amount), Index: false},
		},
	}
}

func DecodeEventPayoutWithdrawn(originEvent abci.Event) *EventPayoutWithdrawn {
	event := &EventPayoutWithdrawn{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "passenger":
			event.Passenger = v.Value
		case "amount":
			amount, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Amount = amount
		}
	}
	return event
}

type EventOracleRegistered struct {
	Oracle  string  `json:"oracle"`
	Indexes []uint8 `json:"indexes"`
}

func EncodeEventOracleRegistered(event *EventOracleRegistered) abci.Event {
	idxs := make([]string, len(event.Indexes))
	for i := range event.Indexes {
		idxs[i] = fmt.Sprintf("%v", event.Indexes[i])
	}
	return abci.Event{
		Type: EventOracleRegisteredType,
		Attributes: []abci.EventAttribute{
			{Key: "oracle", Value: event.Oracle, Index: true},
			{Key: "indexes", Value: strings.Join(idxs, ","), Index: false},
		},
	}
}

func DecodeEventOracleRegistered(originEvent abci.Event) *EventOracleRegistered {
	event := &EventOracleRegistered{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "oracle":
			event.Oracle = v.Value
		case "indexes":
			for _, idxStr := range strings.Split(v.Value, ",") {
				idx, err := strconv.ParseUint(idxStr, 10, 8)
				if err != nil {
					return nil
				}
				event.Indexes = append(event.Indexes, uint8(idx))
			}
		}
	}
	return event
}

type EventOracleRequest struct {
	Index     uint8  `json:"index"`
	Airline   string `json:"airline"`
	Flight    string `json:"flight"`
	Timestamp uint64 `json:"timestamp"`
}

func EncodeEventOracleRequest(event *EventOracleRequest) abci.Event {
	return abci.Event{
		Type: EventOracleRequestType,
		Attributes: []abci.EventAttribute{
			{Key: "index", Value: fmt.Sprintf("%v", event.Index), Index: true},
			{Key: "airline", Value: event.Airline, Index: true},
			{Key: "flight", Value: event.Flight, Index: false},
			{Key: "timestamp", Value: fmt.Sprintf("%v", event.Timestamp), Index: false},
		},
	}
}

func DecodeEventOracleRequest(originEvent abci.Event) *EventOracleRequest {
	event := &EventOracleRequest{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "index":
			idx, err := strconv.ParseUint(v.Value, 10, 8)
			if err != nil {
				return nil
			}
			event.Index = uint8(idx)
		case "airline":
			event.Airline = v.Value
		case "flight":
			event.Flight = v.Value
		case "timestamp":
			ts, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Timestamp = ts
		}
	}
	return event
}

type EventFlightStatusInfo struct {
	Airline   string `json:"airline"`
	Flight    string `json:"flight"`
	Timestamp uint64 `json:"timestamp"`
	Status    uint64 `json:"status"`
}

func EncodeEventFlightStatusInfo(event *EventFlightStatusInfo) abci.Event {
	return abci.Event{
		Type: EventFlightStatusInfoType,
		Attributes: []abci.EventAttribute{
			{Key: "airline", Value: event.Airline, Index: true},
			{Key: "flight", Value: event.Flight, Index: true},
			{Key: "timestamp", Value: fmt.Sprintf("%v", event.Timestamp), Index: false},
			{Key: "status", Value: fmt.Sprintf("%v", event.Status), Index: false},
		},
	}
}

func DecodeEventFlightStatusInfo(originEvent abci.Event) *EventFlightStatusInfo {
	event := &EventFlightStatusInfo{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "airline":
			event.Airline = v.Value
		case "flight":
			event.Flight = v.Value
		case "timestamp":
			ts, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Timestamp = ts
		case "status":
			status, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Status = status
		}
	}
	return event
}

type EventOperationalSet struct {
	Operational bool   `json:"operational"`
	By          string `json:"by"`
}

func EncodeEventOperationalSet(event *EventOperationalSet) abci.Event {
	return abci.Event{
		Type: EventOperationalSetType,
		Attributes: []abci.EventAttribute{
			{Key: "operational", Value: fmt.Sprintf("%v", event.Operational), Index: true},
			{Key: "by", Value: event.By, Index: false},
		},
	}
}

func DecodeEventOperationalSet(originEvent abci.Event) *EventOperationalSet {
	event := &EventOperationalSet{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "operational":
			op, err := strconv.ParseBool(v.Value)
			if err != nil {
				return nil
			}
			event.Operational = op
		case "by":
			event.By = v.Value
		}
	}
	return event
}
