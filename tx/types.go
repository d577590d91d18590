package tx

import (
	"errors"
)

type SuretyTxType uint8

const (
	SuretyTxTypeUnknown        SuretyTxType = 0
	SuretyTxTypeApplyAirline   SuretyTxType = 1
	SuretyTxTypeFundAirline    SuretyTxType = 2
	SuretyTxTypeRegisterFlight SuretyTxType = 3
	SuretyTxTypeBuyInsurance   SuretyTxType = 4
	SuretyTxTypeWithdraw       SuretyTxType = 5
	SuretyTxTypeRegisterOracle SuretyTxType = 6
	SuretyTxTypeFetchStatus    SuretyTxType = 7
	SuretyTxTypeOracleResponse SuretyTxType = 8
	SuretyTxTypeSetOperational SuretyTxType = 9
)

const (
	SuretyTxVersion0 uint8 = 0
	SuretyTxVersion1 uint8 = 1
)

var (
	ErrInvalidTx         = errors.New("invalid tx")
	ErrUnsupportedTxType = errors.New("unsupported tx type")
	ErrUnmatchedTxType   = errors.New("unmatched tx type")

	ErrUnsupportedTxVersion = errors.New("unsupported tx version")
)
