package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/smallbiznis/retailsales/internal/config"
	"github.com/smallbiznis/retailsales/internal/ingest"
	"github.com/smallbiznis/retailsales/internal/metricsexport"
	"github.com/smallbiznis/retailsales/internal/observability"
	"github.com/smallbiznis/retailsales/internal/ratelimit"
	"github.com/smallbiznis/retailsales/internal/sales/repository"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

type flags struct {
	file      string
	append    bool
	batchSize int
}

func newRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load a sales CSV file into the configured store",
		Long: "Normalizes every row of the CSV file, drops rows without a valid date and " +
			"inserts the rest in batches into the mongo or sql store selected by STORE_BACKEND.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVarP(&f.file, "file", "f", "", "CSV file to import (defaults to DATA_FILE)")
	cmd.Flags().BoolVar(&f.append, "append", false, "keep existing records instead of clearing the store first")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", 0, "records per insert batch (defaults to ingest.batchSize)")
	return cmd
}

func run(ctx context.Context, f flags) error {
	cfg := config.Load()
	if err := repository.RequireWriter(cfg); err != nil {
		return err
	}
	if f.file == "" {
		f.file = cfg.DataFile
	}

	var (
		importer *ingest.Importer
		log      *zap.Logger
	)
	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		config.Module,
		observability.Module,
		metricsexport.Module,
		ratelimit.Module,
		repository.Module(cfg),
		ingest.Module,
		fx.Populate(&importer, &log),
	)
	if err := app.Err(); err != nil {
		return err
	}

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer func() {
		if err := app.Stop(context.Background()); err != nil {
			log.Warn("shutdown failed", zap.Error(err))
		}
	}()

	stats, err := importer.Run(ctx, ingest.Options{
		File:      f.file,
		Append:    f.append,
		BatchSize: f.batchSize,
	})
	fmt.Fprintf(os.Stdout,
		"processed=%d inserted=%d skipped=%d failed_batches=%d duplicate_batches=%d elapsed=%s\n",
		stats.Processed, stats.Inserted, stats.Skipped, stats.FailedBatches, stats.DuplicateBatches, stats.Elapsed,
	)
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
