package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallbiznis/retailsales/internal/config"
	"github.com/smallbiznis/retailsales/internal/observability/logger"
	"github.com/smallbiznis/retailsales/internal/observability/metrics"
	"github.com/smallbiznis/retailsales/internal/observability/tracing"
	"github.com/smallbiznis/retailsales/internal/sales/domain"
	"github.com/smallbiznis/retailsales/internal/sales/query"
	"github.com/smallbiznis/retailsales/pkg/db"
	"github.com/smallbiznis/retailsales/pkg/db/pagination"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Repo    domain.Repository
	Tuning  *config.TuningHolder
	Metrics *metrics.Metrics `optional:"true"`
	Log     *zap.Logger
}

type Service struct {
	repo    domain.Repository
	tuning  *config.TuningHolder
	metrics *metrics.Metrics
	log     *zap.Logger
}

func New(p Params) domain.Service {
	return &Service{
		repo:    p.Repo,
		tuning:  p.Tuning,
		metrics: p.Metrics,
		log:     p.Log.Named("sales.service"),
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	spec := query.Resolve(req)
	backend := s.repo.Backend()

	ctx, span := otel.Tracer("retailsales/sales").Start(ctx, "sales.list")
	defer span.End()
	span.SetAttributes(tracing.SafeAttributes(
		attribute.String("backend", backend),
		attribute.String("sort_field", string(spec.SortField)),
		attribute.Int("page", spec.Page),
		attribute.Int("limit", spec.Limit),
		attribute.String("search", spec.Search),
	)...)

	ctx, cancel := context.WithTimeout(ctx, s.tuning.Get().Query.Timeout)
	defer cancel()

	start := time.Now()
	page, err := s.repo.Query(ctx, spec)
	elapsed := time.Since(start)

	if err != nil {
		mapped := s.classify(ctx, err)
		status := "error"
		if errors.Is(mapped, domain.ErrQueryTimeout) {
			status = "timeout"
		}
		s.metrics.RecordSalesQuery(ctx, backend, status, elapsed, 0)
		safe := tracing.SafeError(mapped)
		span.RecordError(safe)
		span.SetStatus(codes.Error, safe.Error())
		logger.WithContext(ctx, s.log).Error("sales query failed",
			zap.String("backend", backend),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return domain.ListResponse{}, mapped
	}

	s.metrics.RecordSalesQuery(ctx, backend, "ok", elapsed, page.Total)
	span.SetAttributes(attribute.Int64("total", page.Total))

	data := page.Items
	if data == nil {
		data = []domain.Transaction{}
	}
	return domain.ListResponse{
		Data: data,
		Meta: pagination.BuildMeta(page.Total, pagination.Pagination{Page: spec.Page, Limit: spec.Limit}),
	}, nil
}

func (s *Service) classify(ctx context.Context, err error) error {
	if db.IsTimeout(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrQueryTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrDataSource, err)
}
