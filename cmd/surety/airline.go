package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/flightsurety/surety-node/config"
	"github.com/flightsurety/surety-node/tx"
	"github.com/flightsurety/surety-node/types"
	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/spf13/cobra"
)

type airlineArguments struct {
	Url     string
	Address string
}

var airlineArgs airlineArguments

var airlineCmd = &cobra.Command{
	Use:   "airline",
	Short: "Query an airline record",
	Long:  ``,
	Run:   airlineRun,
}

func init() {
	urlFlag(airlineCmd, &airlineArgs.Url)
	airlineCmd.Flags().StringVarP(&airlineArgs.Address, "address", "a", "", "airline address")
}

func airlineRun(cmd *cobra.Command, args []string) {
	a, err := queryAirline(airlineArgs.Url, airlineArgs.Address)
	if err != nil {
		fmt.Printf("query airline err:%v\n", err)
		return
	}
	fmt.Printf("address:%v name:%v status:%v funding:%v votes:%v\n",
		a.Address, a.Name, a.Status, a.Funding, len(a.Votes))
}

func queryAirline(url string, address string) (*types.Airline, error) {
	cli, err := http.New(url, "/websocket")
	if err != nil {
		return nil, err
	}
	res, err := cli.ABCIQuery(context.Background(), "/airlines/", []byte(address))
	if err != nil {
		return nil, err
	}
	if res.Response.Code != 0 {
		return nil, errors.New("airline not found")
	}
	var a types.Airline
	if err = json.Unmarshal(res.Response.Value, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

type applyArguments struct {
	txArguments
	Pubkey string
	Name   string
}

var applyArgs applyArguments

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Sponsor an airline for admission",
	Long:  ``,
	Run:   applyRun,
}

func init() {
	txFlags(applyCmd, &applyArgs.txArguments)
	applyCmd.Flags().StringVarP(&applyArgs.Pubkey, "pubkey", "p", "", "applicant ed25519 pubkey hex")
	applyCmd.Flags().StringVarP(&applyArgs.Name, "name", "m", "", "applicant airline name")
}

func applyRun(cmd *cobra.Command, args []string) {
	pk, err := hex.DecodeString(applyArgs.Pubkey)
	if err != nil {
		fmt.Printf("invalid pubkey:%v\n", applyArgs.Pubkey)
		return
	}
	stx := &tx.ApplyAirlineTx{
		Pubkey: pk,
		Name:   applyArgs.Name,
	}
	sendTx(&applyArgs.txArguments, tx.SuretyTxTypeApplyAirline, stx)
}

type fundArguments struct {
	txArguments
	Amount uint64
}

var fundArgs fundArguments

var fundCmd = &cobra.Command{
	Use:   "fund",
	Short: "Post the airline stake",
	Long:  ``,
	Run:   fundRun,
}

func init() {
	txFlags(fundCmd, &fundArgs.txArguments)
	fundCmd.Flags().Uint64VarP(&fundArgs.Amount, "amount", "a", 10*config.GWeiPerUnit, "stake amount in subunits")
}

func fundRun(cmd *cobra.Command, args []string) {
	stx := &tx.FundAirlineTx{
		Amount: fundArgs.Amount,
	}
	sendTx(&fundArgs.txArguments, tx.SuretyTxTypeFundAirline, stx)
}
