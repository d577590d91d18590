package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/flightsurety/surety-node/crypto"
	"github.com/flightsurety/surety-node/tx"
	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/spf13/cobra"
)

// txArguments are the flags every tx command shares.
type txArguments struct {
	Url    string
	Nonce  uint64
	Skey   string
	NoSend bool
}

func txFlags(cmd *cobra.Command, args *txArguments) {
	urlFlag(cmd, &args.Url)
	skeyFlag(cmd, &args.Skey)
	cmd.Flags().Uint64VarP(&args.Nonce, "nonce", "n", 0, "account nonce, queried from the node when zero")
	cmd.Flags().BoolVarP(&args.NoSend, "nosend", "", false, "not send transaction but print signature")
}

func queryNonce(url string, address string) (uint64, error) {
	cli, err := http.New(url, "/websocket")
	if err != nil {
		return 0, err
	}
	res, err := cli.ABCIQuery(context.Background(), "/nonces/", []byte(address))
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

// sendTx signs the payload with the local key and broadcasts it, or prints
// the signature when nosend is set.
func sendTx(args *txArguments, tp tx.SuretyTxType, payload any) {
	cli, err := http.New(args.Url, "/websocket")
	if err != nil {
		fmt.Printf("new client err:%v\n", err)
		return
	}
	ctx := context.Background()
	gres, err := cli.Genesis(ctx)
	if err != nil {
		fmt.Printf("get chain genesis err:%v\n", err)
		return
	}
	chainId := gres.Genesis.ChainID
	signer, err := crypto.LoadSigner(args.Skey)
	if err != nil {
		fmt.Printf("load signer err:%v\n", err)
		return
	}
	nonce := args.Nonce
	if nonce == 0 {
		nonce, err = queryNonce(args.Url, signer.Address())
		if err != nil {
			fmt.Printf("query nonce err:%v\n", err)
			return
		}
	}
	btx := tx.SuretyTx{
		Version: tx.SuretyTxVersion1,
		Type:    tp,
		Nonce:   nonce,
		Tx:      payload,
	}
	if err = signer.SignTx(&btx, chainId); err != nil {
		fmt.Printf("sign tx err:%v\n", err)
		return
	}
	println("pubkey:", hex.EncodeToString(signer.PublicKey()))
	println("address:", signer.Address())
	if args.NoSend {
		fmt.Println("transaction signature:")
		fmt.Println(hex.EncodeToString(btx.Sig[0]))
		return
	}
	dat, err := json.Marshal(btx)
	if err != nil {
		fmt.Printf("marshal tx err:%v\n", err)
		return
	}
	res, err := cli.BroadcastTxSync(ctx, dat)
	if err != nil {
		fmt.Printf("broadcast tx err:%v\n", err)
		return
	}
	dat, _ = json.Marshal(res)
	fmt.Printf("%v\n", string(dat))
}
