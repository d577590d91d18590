package main

import (
	"fmt"
	"os"
)

func main() {
	clCmd.AddCommand(initCmd)
	clCmd.AddCommand(versionCmd)
	clCmd.AddCommand(pubkeyCmd)
	clCmd.AddCommand(signCmd)
	clCmd.AddCommand(airlineCmd)
	clCmd.AddCommand(applyCmd)
	clCmd.AddCommand(fundCmd)
	clCmd.AddCommand(flightCmd)
	clCmd.AddCommand(insureCmd)
	clCmd.AddCommand(withdrawCmd)
	clCmd.AddCommand(oracleCmd)
	clCmd.AddCommand(fetchCmd)
	clCmd.AddCommand(respondCmd)
	clCmd.AddCommand(operationalCmd)
	if err := clCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
