package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/flightsurety/surety-node/config"
	"github.com/flightsurety/surety-node/tx"
	"github.com/flightsurety/surety-node/types"
	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/spf13/cobra"
)

type oracleArguments struct {
	txArguments
	Fee     uint64
	Address string
}

var oracleArgs oracleArguments

var oracleCmd = &cobra.Command{
	Use:   "oracle",
	Short: "Register the local key as an oracle, or query one",
	Long:  ``,
	Run:   oracleRun,
}

func init() {
	txFlags(oracleCmd, &oracleArgs.txArguments)
	oracleCmd.Flags().Uint64VarP(&oracleArgs.Fee, "fee", "f", 1*config.GWeiPerUnit, "registration fee in subunits")
	oracleCmd.Flags().StringVarP(&oracleArgs.Address, "address", "a", "", "query an oracle instead of registering")
}

func oracleRun(cmd *cobra.Command, args []string) {
	if oracleArgs.Address != "" {
		o, err := queryOracle(oracleArgs.Url, oracleArgs.Address)
		if err != nil {
			fmt.Printf("query oracle err:%v\n", err)
			return
		}
		fmt.Printf("address:%v indexes:%v\n", o.Address, o.Indexes)
		return
	}
	stx := &tx.RegisterOracleTx{
		Fee: oracleArgs.Fee,
	}
	sendTx(&oracleArgs.txArguments, tx.SuretyTxTypeRegisterOracle, stx)
}

func queryOracle(url string, address string) (*types.OracleWorker, error) {
	cli, err := http.New(url, "/websocket")
	if err != nil {
		return nil, err
	}
	res, err := cli.ABCIQuery(context.Background(), "/oracles/", []byte(address))
	if err != nil {
		return nil, err
	}
	if res.Response.Code != 0 {
		return nil, errors.New("oracle not found")
	}
	var o types.OracleWorker
	if err = json.Unmarshal(res.Response.Value, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

type fetchArguments struct {
	txArguments
	Airline   string
	Flight    string
	Timestamp uint64
}

var fetchArgs fetchArguments

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Open a flight status request",
	Long:  ``,
	Run:   fetchRun,
}

func init() {
	txFlags(fetchCmd, &fetchArgs.txArguments)
	fetchCmd.Flags().StringVarP(&fetchArgs.Airline, "airline", "a", "", "airline address")
	fetchCmd.Flags().StringVarP(&fetchArgs.Flight, "flight", "f", "", "flight number")
	fetchCmd.Flags().Uint64VarP(&fetchArgs.Timestamp, "timestamp", "t", 0, "departure timestamp")
}

func fetchRun(cmd *cobra.Command, args []string) {
	stx := &tx.FetchStatusTx{
		Airline:   fetchArgs.Airline,
		Flight:    fetchArgs.Flight,
		Timestamp: fetchArgs.Timestamp,
	}
	sendTx(&fetchArgs.txArguments, tx.SuretyTxTypeFetchStatus, stx)
}

type respondArguments struct {
	txArguments
	Index     uint8
	Airline   string
	Flight    string
	Timestamp uint64
	Status    uint64
}

var respondArgs respondArguments

var respondCmd = &cobra.Command{
	Use:   "respond",
	Short: "Submit an oracle response to an open request",
	Long:  ``,
	Run:   respondRun,
}

func init() {
	txFlags(respondCmd, &respondArgs.txArguments)
	respondCmd.Flags().Uint8VarP(&respondArgs.Index, "index", "i", 0, "request index")
	respondCmd.Flags().StringVarP(&respondArgs.Airline, "airline", "a", "", "airline address")
	respondCmd.Flags().StringVarP(&respondArgs.Flight, "flight", "f", "", "flight number")
	respondCmd.Flags().Uint64VarP(&respondArgs.Timestamp, "timestamp", "t", 0, "departure timestamp")
	respondCmd.Flags().Uint64VarP(&respondArgs.Status, "status", "c", 0, "flight status code")
}

func respondRun(cmd *cobra.Command, args []string) {
	stx := &tx.OracleResponseTx{
		Index:     respondArgs.Index,
		Airline:   respondArgs.Airline,
		Flight:    respondArgs.Flight,
		Timestamp: respondArgs.Timestamp,
		Status:    respondArgs.Status,
	}
	sendTx(&respondArgs.txArguments, tx.SuretyTxTypeOracleResponse, stx)
}
