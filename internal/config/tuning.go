package config

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Tuning holds the runtime knobs that may change without a restart.
type Tuning struct {
	Query     QueryTuning     `mapstructure:"query"`
	Ingest    IngestTuning    `mapstructure:"ingest"`
	RateLimit RateLimitTuning `mapstructure:"ratelimit"`
}

type QueryTuning struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type IngestTuning struct {
	BatchSize int `mapstructure:"batchSize"`
}

// RateLimitTuning configures the per-client token bucket. Rate is tokens per
// second; zero disables limiting.
type RateLimitTuning struct {
	Rate  float64 `mapstructure:"rate"`
	Burst int     `mapstructure:"burst"`
}

func DefaultTuning() Tuning {
	return Tuning{
		Query:     QueryTuning{Timeout: 5 * time.Second},
		Ingest:    IngestTuning{BatchSize: 5000},
		RateLimit: RateLimitTuning{Rate: 0, Burst: 20},
	}
}

var defaultTuningPaths = []string{
	"/var/lib/retailsales/config",
	"/etc/retailsales",
	".",
}

type TuningHolder struct {
	current atomic.Value // holds Tuning
}

// NewTuningHolder reads retailsales.yml from the standard locations.
func NewTuningHolder(log *zap.Logger) (*TuningHolder, error) {
	return NewTuningHolderFromPaths(log, defaultTuningPaths...)
}

// NewTuningHolderFromPaths reads retailsales.yml from the given directories
// and keeps watching the file that was found.
func NewTuningHolderFromPaths(log *zap.Logger, paths ...string) (*TuningHolder, error) {
	log = log.Named("config.tuning")
	v := viper.New()

	v.SetConfigName("retailsales")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("RETAILSALES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultTuning()
	v.SetDefault("query.timeout", defaults.Query.Timeout)
	v.SetDefault("ingest.batchSize", defaults.Ingest.BatchSize)
	v.SetDefault("ratelimit.rate", defaults.RateLimit.Rate)
	v.SetDefault("ratelimit.burst", defaults.RateLimit.Burst)

	found := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		found = false
	}

	var cfg Tuning
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := validateTuning(cfg); err != nil {
		return nil, err
	}

	holder := &TuningHolder{}
	holder.current.Store(cfg)

	if !found {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated Tuning
		if err := v.Unmarshal(&updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validateTuning(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// StaticTuning returns a holder that always yields t.
func StaticTuning(t Tuning) *TuningHolder {
	holder := &TuningHolder{}
	holder.current.Store(t)
	return holder
}

func (h *TuningHolder) Get() Tuning {
	return h.current.Load().(Tuning)
}

func validateTuning(cfg Tuning) error {
	if cfg.Query.Timeout <= 0 {
		return errors.New("query.timeout must be positive")
	}
	if cfg.Ingest.BatchSize <= 0 {
		return errors.New("ingest.batchSize must be positive")
	}
	if cfg.RateLimit.Rate < 0 {
		return errors.New("ratelimit.rate cannot be negative")
	}
	if cfg.RateLimit.Rate > 0 && cfg.RateLimit.Burst <= 0 {
		return errors.New("ratelimit.burst must be positive when rate is set")
	}
	return nil
}
