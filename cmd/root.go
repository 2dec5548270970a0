package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "balance-board",
	Short: "Wallet balance display board",
	Long: `balance-board reads wallet balance and price snapshots, keeps the
balances held on known blockchains, orders them by chain priority and renders
display rows with formatted amounts and USD values.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// .env is optional; real environment variables win
	cobra.OnInitialize(func() { _ = godotenv.Load() })

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

// effectiveLogLevel prefers an explicit --log-level over the config file
func effectiveLogLevel(cmd *cobra.Command, configured string) string {
	if cmd.Flags().Changed("log-level") || configured == "" {
		return logLevel
	}
	return configured
}
