package tx

import (
	"encoding/json"
)

// SuretyTx is the signed envelope for every engine operation. Caller is the
// submitter's ed25519 public key; the derived address is the caller identity
// the engine attributes state changes to.
type SuretyTx struct {
	Version uint8        `json:"version"`
	Type    SuretyTxType `json:"type"`
	Nonce   uint64       `json:"nonce"`
	Caller  []byte       `json:"caller"`
	Tx      any          `json:"tx"`
	Sig     [][]byte     `json:"sig"`
}

type ApplyAirlineTx struct {
	Pubkey []byte `json:"pubkey"`
	Name   string `json:"name"`
}

type FundAirlineTx struct {
	Amount uint64 `json:"amount"`
}

type RegisterFlightTx struct {
	Flight    string `json:"flight"`
	Timestamp uint64 `json:"timestamp"`
}

type BuyInsuranceTx struct {
	Airline   string `json:"airline"`
	Flight    string `json:"flight"`
	Timestamp uint64 `json:"timestamp"`
	Amount    uint64 `json:"amount"`
}

type WithdrawTx struct{}

type RegisterOracleTx struct {
	Fee uint64 `json:"fee"`
}

type FetchStatusTx struct {
	Airline   string `json:"airline"`
	Flight    string `json:"flight"`
	Timestamp uint64 `json:"timestamp"`
}

type OracleResponseTx struct {
	Index     uint8  `json:"index"`
	Airline   string `json:"airline"`
	Flight    string `json:"flight"`
	Timestamp uint64 `json:"timestamp"`
	Status    uint64 `json:"status"`
}

type SetOperationalTx struct {
	Operational bool `json:"operational"`
}

type suretyTxTmpl[Tx any] struct {
	Version uint8        `json:"version"`
	Type    SuretyTxType `json:"type"`
	Nonce   uint64       `json:"nonce"`
	Caller  []byte       `json:"caller"`
	Tx      Tx           `json:"tx"`
	Sig     [][]byte     `json:"sig"`
}

// SigData is the byte string the caller signs: the envelope with the
// signature slot replaced by the chain id, so signatures never replay
// across chains.
func (tx *SuretyTx) SigData(ext []byte) (dat []byte, err error) {
	ntx := *tx
	ntx.Sig = [][]byte{ext}
	dat, err = json.Marshal(ntx)
	return
}

func parseSuretyTxType(dat []byte) SuretyTxType {
	var tx struct {
		Type SuretyTxType `json:"type"`
	}
	err := json.Unmarshal(dat, &tx)
	if err != nil {
		return SuretyTxTypeUnknown
	}
	return tx.Type
}

func unmarshalSuretyTx[Tx any](dat []byte) (btx *SuretyTx, err error) {
	var txt suretyTxTmpl[Tx]
	err = json.Unmarshal(dat, &txt)
	if err != nil {
		return
	}
	btx = new(SuretyTx)
	btx.Version = txt.Version
	btx.Type = txt.Type
	btx.Nonce = txt.Nonce
	btx.Caller = txt.Caller
	btx.Tx = &txt.Tx
	btx.Sig = txt.Sig
	return
}

func UnmarshalSuretyTx(dat []byte) (btx *SuretyTx, err error) {
	tp := parseSuretyTxType(dat)
	switch tp {
	case SuretyTxTypeApplyAirline:
		return unmarshalSuretyTx[ApplyAirlineTx](dat)
	case SuretyTxTypeFundAirline:
		return unmarshalSuretyTx[FundAirlineTx](dat)
	case SuretyTxTypeRegisterFlight:
		return unmarshalSuretyTx[RegisterFlightTx](dat)
	case SuretyTxTypeBuyInsurance:
		return unmarshalSuretyTx[BuyInsuranceTx](dat)
	case SuretyTxTypeWithdraw:
		return unmarshalSuretyTx[WithdrawTx](dat)
	case SuretyTxTypeRegisterOracle:
		return unmarshalSuretyTx[RegisterOracleTx](dat)
	case SuretyTxTypeFetchStatus:
		return unmarshalSuretyTx[FetchStatusTx](dat)
	case SuretyTxTypeOracleResponse:
		return unmarshalSuretyTx[OracleResponseTx](dat)
	case SuretyTxTypeSetOperational:
		return unmarshalSuretyTx[SetOperationalTx](dat)
	default:
		err = ErrUnsupportedTxType
	}
	return
}

func MarshalSuretyTx(btx *SuretyTx) (dat []byte, err error) {
	return json.Marshal(btx)
}
