package main

import (
	"encoding/hex"
	"fmt"

	"github.com/flightsurety/surety-node/crypto"
	"github.com/spf13/cobra"
)

type pubkeyArguments struct {
	Skey string
}

var pubkeyArgs pubkeyArguments

var pubkeyCmd = &cobra.Command{
	Use:   "pubkey",
	Short: "",
	Long:  ``,
	Run:   pubkeyRun,
}

func init() {
	skeyFlag(pubkeyCmd, &pubkeyArgs.Skey)
}

func pubkeyRun(cmd *cobra.Command, args []string) {
	signer, err := crypto.LoadSigner(pubkeyArgs.Skey)
	if err != nil {
		fmt.Printf("load signer err:%v\n", err)
		return
	}
	println("pubkey:", hex.EncodeToString(signer.PublicKey()))
	println("address:", signer.Address())
}
