package main

import (
	"encoding/base64"
	"encoding/hex"

	"fmt"

	"github.com/flightsurety/surety-node/crypto"

	"github.com/spf13/cobra"
)

type signArguments struct {
	Skey string
	Data string
}

var signArgs signArguments

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "",
	Long:  ``,
	Run:   signRun,
}

func init() {
	skeyFlag(signCmd, &signArgs.Skey)
	signCmd.Flags().StringVarP(&signArgs.Data, "data", "d", "", "data to sign")
}

func signRun(cmd *cobra.Command, args []string) {
	dat := []byte(signArgs.Data)
	signer, err := crypto.LoadSigner(signArgs.Skey)
	if err != nil {
		fmt.Printf("load signer err:%v\n", err)
		return
	}
	sig, err := signer.Sign(dat)
	if err != nil {
		fmt.Printf("sign err:%v\n", err)
		return
	}
	println("pubkey:", hex.EncodeToString(signer.PublicKey()))
	println("address:", signer.Address())
	println("signature base64:", base64.StdEncoding.EncodeToString(sig))
	println("signature:", hex.EncodeToString(sig))
}
