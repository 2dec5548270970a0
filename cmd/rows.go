package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/matrixise/balance-board/internal/config"
	"github.com/matrixise/balance-board/internal/display"
	"github.com/matrixise/balance-board/internal/logger"
	"github.com/matrixise/balance-board/internal/snapshot"
	"github.com/matrixise/balance-board/internal/wallet"
	"github.com/spf13/cobra"
)

var rowsFormat string

var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "Print display rows once",
	Long:  `Read the balance and price snapshots once and print the resulting display rows.`,
	RunE:  printRows,
}

func init() {
	rootCmd.AddCommand(rowsCmd)

	rowsCmd.Flags().StringVar(&rowsFormat, "format", "table", "output format (table, json)")
}

func printRows(cmd *cobra.Command, args []string) error {
	logger.Setup(logLevel)

	if rowsFormat != "table" && rowsFormat != "json" {
		return fmt.Errorf("unknown format %q", rowsFormat)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		slog.Error("Configuration error", "error", err)
		return err
	}
	logger.Setup(effectiveLogLevel(cmd, cfg.LogLevel))

	priorities, err := cfg.PriorityTable()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	snap, err := snapshot.NewLoader(cfg.BalancesFile, cfg.PricesFile).Load(ctx)
	if err != nil {
		slog.Error("Failed to load snapshot", "error", err)
		return err
	}
	for _, p := range snap.BalanceProblems {
		slog.Warn("Skipped balance record", "error", p)
	}
	for _, p := range snap.PriceProblems {
		slog.Warn("Skipped price record", "error", p)
	}

	result := wallet.NewPipeline(priorities).Run(snap.Balances, snap.Prices)
	for _, ex := range result.Excluded {
		slog.Debug("Balance excluded", "balance", ex.String())
	}

	out := cmd.OutOrStdout()
	if rowsFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(display.NewDocument(snap.LoadedAt, result, snap.Problems()))
	}
	_, err = fmt.Fprintln(out, display.Table(result.Rows))
	return err
}
