package cmd

import (
	"log/slog"

	"github.com/matrixise/balance-board/internal/config"
	"github.com/matrixise/balance-board/internal/logger"
	"github.com/matrixise/balance-board/internal/scheduler"
	"github.com/matrixise/balance-board/internal/snapshot"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "Validate configuration file",
	Long: `Validate the configuration file syntax and values without serving, and
check that the snapshot files it points to are readable.`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	logger.Setup(logLevel)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		slog.Error("Configuration validation failed", "error", err)
		return err
	}

	priorities, err := cfg.PriorityTable()
	if err != nil {
		slog.Error("Configuration validation failed", "error", err)
		return err
	}

	filesErr := snapshot.NewLoader(cfg.BalancesFile, cfg.PricesFile).Check(cmd.Context())
	if filesErr != nil {
		slog.Warn("Snapshot files not readable yet", "error", filesErr)
	}

	slog.Info("✓ Configuration valid",
		"balances_file", cfg.BalancesFile,
		"prices_file", cfg.PricesFile,
		"chains", priorities.Chains(),
		"schedule", scheduler.DescribeSchedule(cfg.Interval, cfg.GetTimezone()),
		"http_port", cfg.HTTPPort,
		"log_level", cfg.LogLevel,
		"files_readable", filesErr == nil,
	)

	return nil
}
