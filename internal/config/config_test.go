package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("HTTP_ADDR", "")

	cfg := Load()
	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, "truestate", cfg.Mongo.Database)
	assert.Equal(t, "sales", cfg.Mongo.Collection)
}

func TestLoadObservabilitySettings(t *testing.T) {
	t.Setenv("LOG_LEVEL", " DEBUG ")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("OTEL_ENABLED", "yes")
	t.Setenv("OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTLP_PROTOCOL", "HTTP")
	t.Setenv("OTEL_SAMPLING_RATIO", "not-a-number")

	cfg := Load()
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
	assert.Equal(t, OtelConfig{Enabled: true, Endpoint: "collector:4318", Protocol: "http", SamplingRatio: 0.1}, cfg.Otel)
}

func TestLoadBackendAliases(t *testing.T) {
	cases := map[string]string{
		"mongodb":  BackendMongo,
		"MONGO":    BackendMongo,
		"postgres": BackendSQL,
		"sqlite":   BackendSQL,
		"csv":      BackendMemory,
	}
	for raw, want := range cases {
		t.Setenv("STORE_BACKEND", raw)
		assert.Equal(t, want, Load().StoreBackend, raw)
	}
}

func TestRedisEnabled(t *testing.T) {
	assert.False(t, RedisConfig{}.Enabled())
	assert.True(t, RedisConfig{Addr: "localhost:6379"}.Enabled())
}

func TestTuningDefaultsWithoutFile(t *testing.T) {
	holder, err := NewTuningHolderFromPaths(zap.NewNop(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultTuning(), holder.Get())
}

func TestTuningReadsFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("query:\n  timeout: 2s\ningest:\n  batchSize: 250\nratelimit:\n  rate: 5\n  burst: 10\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "retailsales.yml"), content, 0o600))

	holder, err := NewTuningHolderFromPaths(zap.NewNop(), dir)
	require.NoError(t, err)

	got := holder.Get()
	assert.Equal(t, 2*time.Second, got.Query.Timeout)
	assert.Equal(t, 250, got.Ingest.BatchSize)
	assert.Equal(t, 5.0, got.RateLimit.Rate)
	assert.Equal(t, 10, got.RateLimit.Burst)
}

func TestTuningRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("ingest:\n  batchSize: 0\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "retailsales.yml"), content, 0o600))

	_, err := NewTuningHolderFromPaths(zap.NewNop(), dir)
	assert.Error(t, err)
}
