// Package cmd provides the CLI commands for the refund notary server.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/decide-fyi/refund-notary/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "refund-notary",
	Short: "Refund Notary - deterministic refund eligibility service",
	Long: `Refund Notary evaluates refund eligibility requests against a versioned
policy table and notarizes every decision with the rules version that
produced it.

It serves the same decision engine over three surfaces: a JSON HTTP API,
an MCP tool endpoint for agent clients, and an optional yes/no decision
oracle backed by an LLM.

Quick start:
  1. Optionally create a config file: refund-notary.yaml
  2. Run: refund-notary start

Configuration:
  Config is loaded from refund-notary.yaml in the current directory,
  $HOME/.refund-notary/, or /etc/refund-notary/.

  Environment variables can override config values with the REFUND_NOTARY_ prefix.
  Example: REFUND_NOTARY_SERVER_HTTP_ADDR=:9090

Commands:
  start       Start the notary server
  stop        Stop the running server
  vendors     Print the supported vendor policy table
  version     Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./refund-notary.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
