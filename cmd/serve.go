package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matrixise/balance-board/internal/api"
	"github.com/matrixise/balance-board/internal/board"
	"github.com/matrixise/balance-board/internal/config"
	"github.com/matrixise/balance-board/internal/health"
	"github.com/matrixise/balance-board/internal/logger"
	"github.com/matrixise/balance-board/internal/scheduler"
	"github.com/matrixise/balance-board/internal/snapshot"
	"github.com/matrixise/balance-board/internal/wallet"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	interval string
	httpPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve display rows over HTTP",
	Long: `Refresh display rows from the snapshot files on a clock-aligned schedule
and serve them over HTTP, together with a health endpoint.`,
	RunE: serveBoard,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&interval, "interval", "", "refresh interval - duration (5m, 1h) or cron (\"*/5 * * * *\") - empty to load once")
	serveCmd.Flags().IntVar(&httpPort, "port", 0, "HTTP port (default from config, 8080)")
}

func serveBoard(cmd *cobra.Command, args []string) error {
	logger.Setup(logLevel)

	// Context with graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		slog.Error("Configuration error", "error", err)
		return err
	}
	log := logger.Setup(effectiveLogLevel(cmd, cfg.LogLevel))

	priorities, err := cfg.PriorityTable()
	if err != nil {
		return err
	}

	// Flags override config
	runInterval := cfg.Interval
	if interval != "" {
		runInterval = interval
	}
	port := cfg.HTTPPort
	if httpPort != 0 {
		port = httpPort
	}
	if port == 0 {
		port = 8080
	}

	log.Info("Configuration loaded",
		"config_path", cfgFile,
		"balances_file", cfg.BalancesFile,
		"prices_file", cfg.PricesFile,
		"chains", len(priorities.Chains()),
		"schedule", scheduler.DescribeSchedule(runInterval, cfg.GetTimezone()),
	)

	loader := snapshot.NewLoader(cfg.BalancesFile, cfg.PricesFile)
	b := board.New(loader, wallet.NewPipeline(priorities), log)

	var sched *scheduler.Scheduler
	var period time.Duration
	if runInterval == "" {
		if _, err := b.Refresh(ctx); err != nil {
			log.Error("Initial refresh failed", "error", err)
		}
	} else {
		sched, err = scheduler.New(ctx, scheduler.Config{
			Interval:       runInterval,
			Timezone:       cfg.GetTimezone(),
			RunImmediately: cfg.ShouldRunImmediately(),
			Logger:         log,
		}, func(jobCtx context.Context) error {
			_, err := b.Refresh(jobCtx)
			return err
		})
		if err != nil {
			log.Error("Failed to create scheduler", "error", err)
			return fmt.Errorf("scheduler creation failed: %w", err)
		}
		period = sched.Schedule().Period
	}

	checker := health.NewChecker(loader, b, period)
	srv := api.NewServer(b, priorities, checker.Handler(), log)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server starting", "port", port, "endpoints", "/rows, /rows/table, /priorities, /health")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if sched != nil {
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				log.Error("Scheduler shutdown error", "error", err)
			}
		}()
	}

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", "error", err)
		return err
	}

	hits, misses := b.MemoStats()
	log.Info("Stopped", "memo_hits", hits, "memo_misses", misses)
	return nil
}
