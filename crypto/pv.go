package crypto

import (
	"fmt"
	"os"

	"github.com/flightsurety/surety-node/tx"
	"github.com/cometbft/cometbft/crypto"
	cmtjson "github.com/cometbft/cometbft/libs/json"
	"github.com/cometbft/cometbft/privval"
)

// Signer wraps the node's file validator key so airlines, passengers and
// oracle workers can sign scheme transactions with the same identity the
// node validates under.
type Signer struct {
	privateKey crypto.PrivKey
	publicKey  crypto.PubKey
}

// LoadSigner reads a comet priv_validator_key.json and returns the signer
// bound to it.
func LoadSigner(keyFilePath string) (*Signer, error) {
	keyJSONBytes, err := os.ReadFile(keyFilePath)
	if err != nil {
		return nil, err
	}
	pvKey := privval.FilePVKey{}
	if err = cmtjson.Unmarshal(keyJSONBytes, &pvKey); err != nil {
		return nil, fmt.Errorf("read validator key %v: %w", keyFilePath, err)
	}
	return &Signer{
		privateKey: pvKey.PrivKey,
		publicKey:  pvKey.PubKey,
	}, nil
}

func (k *Signer) PublicKey() []byte {
	return k.publicKey.Bytes()
}

func (k *Signer) Address() string {
	return k.publicKey.Address().String()
}

func (k *Signer) Sign(data []byte) ([]byte, error) {
	return k.privateKey.Sign(data)
}

// SignTx fills the envelope's caller and signature slots in place. The sign
// bytes bind the chain id so a signed tx never replays across chains.
func (k *Signer) SignTx(btx *tx.SuretyTx, chainId string) error {
	btx.Caller = k.PublicKey()
	dat, err := btx.SigData([]byte(chainId))
	if err != nil {
		return err
	}
	sig, err := k.Sign(dat)
	if err != nil {
		return err
	}
	btx.Sig = [][]byte{sig}
	return nil
}
