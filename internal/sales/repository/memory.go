package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/smallbiznis/retailsales/internal/sales/domain"
	"github.com/smallbiznis/retailsales/internal/sales/query"
	"go.uber.org/zap"
)

// MemoryRepository answers queries from a full copy of the data held in
// process. The copy is loaded from the source on first use; a failed load is
// retried by the next query.
type MemoryRepository struct {
	source Source
	log    *zap.Logger

	mu     sync.Mutex
	loaded bool
	items  []domain.Transaction
}

func NewMemory(source Source, log *zap.Logger) *MemoryRepository {
	return &MemoryRepository{
		source: source,
		log:    log.Named("sales.repository.memory"),
	}
}

func (r *MemoryRepository) Backend() string { return "memory" }

func (r *MemoryRepository) Query(ctx context.Context, q domain.QuerySpec) (domain.Page, error) {
	items, err := r.all(ctx)
	if err != nil {
		return domain.Page{}, err
	}
	return query.Apply(items, q), nil
}

func (r *MemoryRepository) all(ctx context.Context) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return r.items, nil
	}

	items, err := r.source.Load(ctx)
	if err != nil {
		r.log.Error("load failed", zap.Error(err))
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	r.items = items
	r.loaded = true
	return r.items, nil
}

var _ domain.Repository = (*MemoryRepository)(nil)
