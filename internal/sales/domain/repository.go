package domain

import "context"

// Page is the slice of matches a repository returns together with the
// number of matches before pagination.
type Page struct {
	Items []Transaction
	Total int64
}

//go:generate mockgen -source=repository.go -destination=mock/repository_mock.go -package=mock

// Repository answers a resolved query against one backing store.
type Repository interface {
	Query(ctx context.Context, q QuerySpec) (Page, error)
	Backend() string
}

// Writer bulk-loads normalized transactions into a persistent store.
// InsertBatch reports how many records were stored, also when it returns an
// error for the rest of the batch.
type Writer interface {
	Reset(ctx context.Context) error
	InsertBatch(ctx context.Context, batch []Transaction) (int, error)
	EnsureIndexes(ctx context.Context) error
}
