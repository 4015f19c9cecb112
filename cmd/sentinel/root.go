package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sentinel",
	Short: "Sentinel - policy enforcement gateway for LLM traffic",
	Long: `Sentinel is a policy enforcement gateway that sits between applications
and LLM providers.

Every chat completion request is evaluated against configurable policies
before it is forwarded upstream:
  - Keyword, content safety, and semantic similarity conditions
  - Allow / warn / block decisions with per-violation detail
  - Batch evaluation across all loaded evaluators
  - Prometheus metrics and scheduled evaluator health sweeps`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
