package main

import (
	"github.com/flightsurety/surety-node/tx"
	"github.com/spf13/cobra"
)

type operationalArguments struct {
	txArguments
	Pause bool
}

var operationalArgs operationalArguments

var operationalCmd = &cobra.Command{
	Use:   "operational",
	Short: "Pause or resume the scheme",
	Long:  ``,
	Run:   operationalRun,
}

func init() {
	txFlags(operationalCmd, &operationalArgs.txArguments)
	operationalCmd.Flags().BoolVarP(&operationalArgs.Pause, "pause", "p", false, "pause the scheme instead of resuming it")
}

func operationalRun(cmd *cobra.Command, args []string) {
	stx := &tx.SetOperationalTx{
		Operational: !operationalArgs.Pause,
	}
	sendTx(&operationalArgs.txArguments, tx.SuretyTxTypeSetOperational, stx)
}
