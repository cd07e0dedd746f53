package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "settlement",
	Short: "Marketplace settlement microservice",
	Long:  "A settlement microservice for gateway payments, webhook reconciliation, payout fan-out, and vendor wallets.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
