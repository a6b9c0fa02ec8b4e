package metricsexport

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const pushInterval = time.Minute

var Module = fx.Module("metrics.export",
	fx.Provide(NewPusher),
	fx.Invoke(Register),
)

// Register starts the periodic push worker when a pusher is configured.
func Register(lc fx.Lifecycle, pusher Pusher, gatherer prometheus.Gatherer, log *zap.Logger) {
	if pusher == nil {
		return
	}
	log = log.Named("metricsexport")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("starting metrics push worker", zap.Duration("interval", pushInterval))
			go func() {
				defer close(done)
				run(ctx, pusher, gatherer, pushInterval, log)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			// one last snapshot on shutdown
			flushCtx, flushCancel := context.WithTimeout(context.Background(), defaultPushTimeout)
			defer flushCancel()
			if err := pusher.Push(flushCtx, gatherer); err != nil {
				log.Warn("final metrics push failed", zap.Error(err))
			}
			return nil
		},
	})
}

func run(ctx context.Context, pusher Pusher, gatherer prometheus.Gatherer, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	failing := false
	push := func() {
		pushCtx, cancel := context.WithTimeout(ctx, defaultPushTimeout)
		defer cancel()
		if err := pusher.Push(pushCtx, gatherer); err != nil {
			if !failing {
				log.Warn("metrics push failed", zap.Error(err))
			}
			failing = true
			return
		}
		failing = false
	}

	push()
	for {
		select {
		case <-ticker.C:
			push()
		case <-ctx.Done():
			log.Info("stopping metrics push worker")
			return
		}
	}
}
