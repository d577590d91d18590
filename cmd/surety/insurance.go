package main

import (
	"fmt"

	"github.com/flightsurety/surety-node/tx"
	"github.com/spf13/cobra"
)

type insureArguments struct {
	txArguments
	Airline   string
	Flight    string
	Timestamp uint64
	Amount    uint64
}

var insureArgs insureArguments

var insureCmd = &cobra.Command{
	Use:   "insure",
	Short: "Buy insurance on a flight",
	Long:  ``,
	Run:   insureRun,
}

func init() {
	txFlags(insureCmd, &insureArgs.txArguments)
	insureCmd.Flags().StringVarP(&insureArgs.Airline, "airline", "a", "", "airline address")
	insureCmd.Flags().StringVarP(&insureArgs.Flight, "flight", "f", "", "flight number")
	insureCmd.Flags().Uint64VarP(&insureArgs.Timestamp, "timestamp", "t", 0, "departure timestamp")
	insureCmd.Flags().Uint64VarP(&insureArgs.Amount, "amount", "m", 0, "premium in subunits")
}

func insureRun(cmd *cobra.Command, args []string) {
	if insureArgs.Amount == 0 {
		fmt.Println("premium amount is required")
		return
	}
	stx := &tx.BuyInsuranceTx{
		Airline:   insureArgs.Airline,
		Flight:    insureArgs.Flight,
		Timestamp: insureArgs.Timestamp,
		Amount:    insureArgs.Amount,
	}
	sendTx(&insureArgs.txArguments, tx.SuretyTxTypeBuyInsurance, stx)
}

type withdrawArguments struct {
	txArguments
}

var withdrawArgs withdrawArguments

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Withdraw the credited payout balance",
	Long:  ``,
	Run:   withdrawRun,
}

func init() {
	txFlags(withdrawCmd, &withdrawArgs.txArguments)
}

func withdrawRun(cmd *cobra.Command, args []string) {
	sendTx(&withdrawArgs.txArguments, tx.SuretyTxTypeWithdraw, &tx.WithdrawTx{})
}
