package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cometbft/cometbft/config"
	"github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/p2p"
	"github.com/cometbft/cometbft/privval"
)

// GWeiPerUnit is the number of subunits in one native currency unit. All
// amounts carried by transactions and stored in the registry are subunits.
const GWeiPerUnit = 1_000_000_000

// SuretyAppConfig carries the engine constants. Defaults follow the original
// scheme: premiums capped at 1 unit, airlines stake 10 units, oracles pay a
// 1 unit fee, and three matching oracle responses settle a flight status.
type SuretyAppConfig struct {
	Home string `mapstructure:"-"`

	RegistrationFee    uint64 `mapstructure:"registration_fee"`
	MinResponses       int    `mapstructure:"min_responses"`
	InsuranceCap       uint64 `mapstructure:"insurance_cap"`
	MinAirlineFunding  uint64 `mapstructure:"min_airline_funding"`
	StatusDomainSize   uint8  `mapstructure:"status_domain_size"`
	OracleIndexCount   int    `mapstructure:"oracle_index_count"`
	PayoutNumerator    uint64 `mapstructure:"payout_numerator"`
	PayoutDenominator  uint64 `mapstructure:"payout_denominator"`
	MultipartyThreshold uint64 `mapstructure:"multiparty_threshold"`
}

func DefaultSuretyAppConfig(home string) *SuretyAppConfig {
	return &SuretyAppConfig{
		Home:                home,
		RegistrationFee:     1 * GWeiPerUnit,
		MinResponses:        3,
		InsuranceCap:        1 * GWeiPerUnit,
		MinAirlineFunding:   10 * GWeiPerUnit,
		StatusDomainSize:    10,
		OracleIndexCount:    3,
		PayoutNumerator:     3,
		PayoutDenominator:   2,
		MultipartyThreshold: 4,
	}
}

func GWeiPerPower(height uint64) uint64 {
	return GWeiPerUnit
}

// PowerPerFunding converts an airline's posted stake into consensus power on
// the host chain. Only Funded airlines end up with non-zero power.
func PowerPerFunding(funding uint64, height uint64) int64 {
	return int64(funding / GWeiPerPower(height))
}

type Config struct {
	*config.Config `mapstructure:",squash"`

	App *SuretyAppConfig `mapstructure:"app"`
}

func DefaultConfig(home string) *Config {
	if len(home) == 0 {
		home = os.ExpandEnv("$HOME/.surety")
	}
	config := &Config{
		DefaultSuretyCometConfig(),
		DefaultSuretyAppConfig(home),
	}
	config.RootDir = home
	_ = os.MkdirAll(home+"/config", 0755)
	return config
}

func NewSuretyConfig(home string) *Config {
	if len(home) == 0 {
		home = os.ExpandEnv("$HOME/.surety")
	}
	_ = os.MkdirAll(home+"/config", 0755)
	config := &Config{
		DefaultSuretyCometConfig(),
		DefaultSuretyAppConfig(home),
	}
	config.RootDir = home
	return config
}

func InitializeNodeValidatorFiles(config *Config, privKey crypto.PrivKey) (nodeID string, pk crypto.PubKey, err error) {
	nodeKey, err := p2p.LoadOrGenNodeKey(config.NodeKeyFile())
	if err != nil {
		return "", nil, err
	}
	nodeID = string(nodeKey.ID())

	pvKeyFile := config.PrivValidatorKeyFile()
	if err := os.MkdirAll(filepath.Dir(pvKeyFile), 0o777); err != nil {
		return "", nil, fmt.Errorf("could not create directory %q: %w", filepath.Dir(pvKeyFile), err)
	}

	pvStateFile := config.PrivValidatorStateFile()
	if err := os.MkdirAll(filepath.Dir(pvStateFile), 0o777); err != nil {
		return "", nil, fmt.Errorf("could not create directory %q: %w", filepath.Dir(pvStateFile), err)
	}

	var filePV *privval.FilePV
	if privKey == nil {
		filePV = privval.LoadOrGenFilePV(pvKeyFile, pvStateFile)
	} else {
		filePV = privval.NewFilePV(privKey, pvKeyFile, pvStateFile)
		filePV.Save()
	}
	pukey, err := filePV.GetPubKey()
	if err != nil {
		return "", nil, err
	}

	return nodeID, pukey, nil
}

func InitializeNodeOnly(config *Config) {
	_, err := p2p.LoadOrGenNodeKey(config.NodeKeyFile())
	if err != nil {
		return
	}

	pvKeyFile := config.PrivValidatorKeyFile()
	if err := os.MkdirAll(filepath.Dir(pvKeyFile), 0o777); err != nil {
		return
	}

	pvStateFile := config.PrivValidatorStateFile()
	if err := os.MkdirAll(filepath.Dir(pvStateFile), 0o777); err != nil {
		return
	}
	privval.LoadOrGenFilePV(pvKeyFile, pvStateFile)
	os.Remove(pvKeyFile)
}

func DefaultSuretyCometConfig() *config.Config {
	cometConfig := config.DefaultConfig()
	cometConfig.Consensus.TimeoutPropose = time.Second * 10
	cometConfig.Consensus.TimeoutPrevote = time.Second * 1
	cometConfig.Consensus.TimeoutPrecommit = time.Second * 1
	cometConfig.Consensus.TimeoutCommit = time.Millisecond * 1200
	return cometConfig
}
