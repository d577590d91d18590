package main

import (
	"fmt"

	"github.com/flightsurety/surety-node/tx"
	"github.com/flightsurety/surety-node/types"
	"github.com/spf13/cobra"
)

type flightArguments struct {
	txArguments
	Flight    string
	Timestamp uint64
}

var flightArgs flightArguments

var flightCmd = &cobra.Command{
	Use:   "flight",
	Short: "Register a flight under the calling airline",
	Long:  ``,
	Run:   flightRun,
}

func init() {
	txFlags(flightCmd, &flightArgs.txArguments)
	flightCmd.Flags().StringVarP(&flightArgs.Flight, "flight", "f", "", "flight number")
	flightCmd.Flags().Uint64VarP(&flightArgs.Timestamp, "timestamp", "t", 0, "departure timestamp")
}

func flightRun(cmd *cobra.Command, args []string) {
	if flightArgs.Flight == "" {
		fmt.Println("flight number is required")
		return
	}
	stx := &tx.RegisterFlightTx{
		Flight:    flightArgs.Flight,
		Timestamp: flightArgs.Timestamp,
	}
	sendTx(&flightArgs.txArguments, tx.SuretyTxTypeRegisterFlight, stx)
}

type keyArguments struct {
	Airline   string
	Flight    string
	Timestamp uint64
}

var keyArgs keyArguments

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Print the flight key for (airline, flight, timestamp)",
	Long:  ``,
	Run:   keyRun,
}

func init() {
	keyCmd.Flags().StringVarP(&keyArgs.Airline, "airline", "a", "", "airline address")
	keyCmd.Flags().StringVarP(&keyArgs.Flight, "flight", "f", "", "flight number")
	keyCmd.Flags().Uint64VarP(&keyArgs.Timestamp, "timestamp", "t", 0, "departure timestamp")
	flightCmd.AddCommand(keyCmd)
}

func keyRun(cmd *cobra.Command, args []string) {
	key := types.FlightKey(keyArgs.Airline, keyArgs.Flight, keyArgs.Timestamp)
	fmt.Println(key.Hex())
}
