package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/retailsales/internal/config"
	"github.com/smallbiznis/retailsales/internal/observability/metrics"
	"github.com/smallbiznis/retailsales/internal/ratelimit"
	"github.com/smallbiznis/retailsales/internal/sales/domain"
	"github.com/smallbiznis/retailsales/internal/sales/normalize"
	"github.com/smallbiznis/retailsales/internal/sales/repository"
	"github.com/smallbiznis/retailsales/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Options are the per-run settings of one import.
type Options struct {
	File   string
	Append bool
	// BatchSize overrides ingest.batchSize from tuning when positive.
	BatchSize int
}

// Stats summarizes a finished run.
type Stats struct {
	RunID            string
	Processed        int
	Inserted         int
	Skipped          int
	FailedBatches    int
	// DuplicateBatches counts the failed batches rejected by a unique key.
	DuplicateBatches int
	Elapsed          time.Duration
}

type Params struct {
	fx.In

	Writer  domain.Writer
	Tuning  *config.TuningHolder
	Lock    *ratelimit.IngestLock `optional:"true"`
	Metrics *metrics.Metrics      `optional:"true"`
	Log     *zap.Logger
}

// Importer streams a CSV file into a persistent store in batches.
type Importer struct {
	writer  domain.Writer
	tuning  *config.TuningHolder
	lock    *ratelimit.IngestLock
	metrics *metrics.Metrics
	log     *zap.Logger
}

func New(p Params) *Importer {
	return &Importer{
		writer:  p.Writer,
		tuning:  p.Tuning,
		lock:    p.Lock,
		metrics: p.Metrics,
		log:     p.Log.Named("ingest"),
	}
}

// Run imports opts.File. Rows without a valid date are skipped. A failed
// batch is logged and counted; the run continues with the next one.
func (im *Importer) Run(ctx context.Context, opts Options) (Stats, error) {
	stats := Stats{RunID: ulid.Make().String()}
	log := im.log.With(zap.String("run_id", stats.RunID), zap.String("file", opts.File))
	backend := backendName(im.writer)

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = im.tuning.Get().Ingest.BatchSize
	}

	f, err := os.Open(opts.File)
	if err != nil {
		return stats, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	release, err := im.lock.Acquire(ctx)
	if err != nil {
		if errors.Is(err, ratelimit.ErrLockHeld) {
			return stats, fmt.Errorf("another import is running: %w", err)
		}
		return stats, fmt.Errorf("acquire ingest lock: %w", err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			log.Warn("release ingest lock failed", zap.Error(err))
		}
	}()

	if !opts.Append {
		log.Info("clearing existing data")
		if err := im.writer.Reset(ctx); err != nil {
			return stats, fmt.Errorf("reset store: %w", err)
		}
	}

	start := time.Now()
	log.Info("import started", zap.Int("batch_size", batchSize), zap.Bool("append", opts.Append))

	buffer := make([]domain.Transaction, 0, batchSize)
	flush := func() error {
		if len(buffer) == 0 {
			return nil
		}
		n, err := im.writer.InsertBatch(ctx, buffer)
		stats.Inserted += n
		im.metrics.RecordIngestRows(ctx, backend, "inserted", int64(n))
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			stats.FailedBatches++
			status, reason := "failed", "insert_error"
			if db.IsDuplicateKeyErr(err) {
				stats.DuplicateBatches++
				status, reason = "duplicate", "duplicate_key"
			}
			im.metrics.RecordIngestBatch(ctx, backend, status)
			im.metrics.RecordIngestRows(ctx, backend, "failed", int64(len(buffer)-n))
			log.Warn("insert batch failed",
				zap.String("reason", reason),
				zap.Int("batch_rows", len(buffer)),
				zap.Int("stored", n),
				zap.Error(err),
			)
		} else {
			im.metrics.RecordIngestBatch(ctx, backend, "ok")
		}
		log.Info("progress",
			zap.Int("inserted", stats.Inserted),
			zap.Duration("elapsed", time.Since(start)),
		)
		buffer = buffer[:0]
		return nil
	}

	err = repository.ReadRows(ctx, f, func(row normalize.Row) error {
		stats.Processed++
		t, ok := normalize.Normalize(row)
		if !ok {
			stats.Skipped++
			return nil
		}
		buffer = append(buffer, t)
		if len(buffer) >= batchSize {
			return flush()
		}
		return nil
	})
	if err == nil {
		err = flush()
	}
	im.metrics.RecordIngestRows(ctx, backend, "skipped", int64(stats.Skipped))
	stats.Elapsed = time.Since(start)
	if err != nil {
		return stats, fmt.Errorf("import csv: %w", err)
	}

	if err := im.writer.EnsureIndexes(ctx); err != nil {
		return stats, fmt.Errorf("ensure indexes: %w", err)
	}

	log.Info("import completed",
		zap.Int("processed", stats.Processed),
		zap.Int("inserted", stats.Inserted),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed_batches", stats.FailedBatches),
		zap.Int("duplicate_batches", stats.DuplicateBatches),
		zap.Duration("elapsed", stats.Elapsed),
	)
	return stats, nil
}

func backendName(w domain.Writer) string {
	if b, ok := w.(interface{ Backend() string }); ok {
		return b.Backend()
	}
	return "unknown"
}
