package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	salesQueries     metric.Int64Counter
	salesQueryTime   metric.Float64Histogram
	salesQueryRows   metric.Int64Histogram
	ingestRows       metric.Int64Counter
	ingestBatches    metric.Int64Counter
	rateLimitAllowed metric.Int64Counter
	rateLimitDenied  metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "retailsales"
	}
	meter := provider.Meter(name)

	salesQueries, err := meter.Int64Counter("retailsales_sales_queries_total")
	if err != nil {
		return nil, err
	}
	salesQueryTime, err := meter.Float64Histogram("retailsales_sales_query_duration_seconds", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	salesQueryRows, err := meter.Int64Histogram("retailsales_sales_query_matches")
	if err != nil {
		return nil, err
	}
	ingestRows, err := meter.Int64Counter("retailsales_ingest_rows_total")
	if err != nil {
		return nil, err
	}
	ingestBatches, err := meter.Int64Counter("retailsales_ingest_batches_total")
	if err != nil {
		return nil, err
	}
	rateLimitAllowed, err := meter.Int64Counter("retailsales_rate_limit_allowed_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("retailsales_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		salesQueries:     salesQueries,
		salesQueryTime:   salesQueryTime,
		salesQueryRows:   salesQueryRows,
		ingestRows:       ingestRows,
		ingestBatches:    ingestBatches,
		rateLimitAllowed: rateLimitAllowed,
		rateLimitDenied:  rateLimitDenied,
	}, nil
}

// RecordSalesQuery records one executed sales query.
func (m *Metrics) RecordSalesQuery(ctx context.Context, backend, status string, elapsed time.Duration, total int64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(FilterAttributes(
		attribute.String("backend", strings.TrimSpace(backend)),
		attribute.String("status", strings.TrimSpace(status)),
	)...)
	m.salesQueries.Add(ctx, 1, attrs)
	m.salesQueryTime.Record(ctx, elapsed.Seconds(), attrs)
	if status == "ok" {
		m.salesQueryRows.Record(ctx, total, attrs)
	}
}

// RecordIngestRows counts rows by outcome (inserted, skipped).
func (m *Metrics) RecordIngestRows(ctx context.Context, backend, outcome string, n int64) {
	if m == nil || n == 0 {
		return
	}
	attrs := FilterAttributes(
		attribute.String("backend", strings.TrimSpace(backend)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.ingestRows.Add(ctx, n, metric.WithAttributes(attrs...))
}

// RecordIngestBatch counts insert batches by status.
func (m *Metrics) RecordIngestBatch(ctx context.Context, backend, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("backend", strings.TrimSpace(backend)),
		attribute.String("status", strings.TrimSpace(status)),
	)
	m.ingestBatches.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitAllowed increments rate limit allow counts.
func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.rateLimitAllowed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"backend":     {},
	"status":      {},
	"outcome":     {},
	"endpoint":    {},
	"status_code": {},
	"sort_field":  {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
