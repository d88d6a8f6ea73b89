package main

import (
	"fmt"
	"os"

	"github.com/aussiebroadwan/washpay/internal/checkout/app"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "checkoutctl",
		Short:         "Operator tools for the washpay checkout service",
		Version:       app.BuildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(signCmd())
	rootCmd.AddCommand(paramsCmd())
	rootCmd.AddCommand(tokenExpiredCmd())
	rootCmd.AddCommand(keygenCmd())

	return rootCmd
}
