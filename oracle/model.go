package oracle

// sqlite models

type Height struct {
	Id     uint64 `gorm:"primaryKey" json:"id"`
	Height uint64 `json:"height"`
}

type AirlineRow struct {
	Id      uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Address string `gorm:"unique_index" json:"address"`
	Name    string `json:"name"`
	Status  uint64 `json:"status"`
	Funding uint64 `json:"funding"`
	Votes   uint64 `json:"votes"`
	Height  uint64 `json:"height"`
}

type FlightRow struct {
	Id        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Key       string `gorm:"unique_index" json:"key"`
	Airline   string `json:"airline"`
	Number    string `json:"number"`
	Timestamp uint64 `json:"timestamp"`
	Status    uint64 `json:"status"`
	Height    uint64 `json:"height"`
}

type PolicyRow struct {
	Id        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	FlightKey string `json:"flight_key"`
	Passenger string `json:"passenger"`
	Premium   uint64 `json:"premium"`
	Credit    uint64 `json:"credit"`
	Height    uint64 `json:"height"`
}

type RequestRow struct {
	Id        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Index     uint64 `json:"index"`
	Airline   string `json:"airline"`
	Flight    string `json:"flight"`
	Timestamp uint64 `json:"timestamp"`
	Status    uint64 `json:"status"`
	Resolved  bool   `json:"resolved"`
	Height    uint64 `json:"height"`
}

type OracleRow struct {
	Id      uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Address string `gorm:"unique_index" json:"address"`
	Indexes string `json:"indexes"`
	Height  uint64 `json:"height"`
}

type PayoutRow struct {
	Id        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Passenger string `json:"passenger"`
	Amount    uint64 `json:"amount"`
	Height    uint64 `json:"height"`
}
