// Package cmd provides the CLI commands for clover-calculator.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhishekuniyalibyte/clover-calculator/internal/config"
	"github.com/abhishekuniyalibyte/clover-calculator/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "clover-calculator",
	Short: "Merchant processing cost comparison engine",
	Long: `clover-calculator compares a merchant's current processing costs
against a proposed pricing model and produces a reproducible, auditable
savings analysis.

Examples:
  clover-calculator analyze --profile merchant.json --tenant acme --model flat
  clover-calculator analyze --profile merchant.json --tenant acme --model cost_plus --device clover-flex:2
  clover-calculator catalog resolve --tenant acme --as-of 2026-01-01`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.clover-calculator.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("clover-calculator version 0.1.0")
	},
}
