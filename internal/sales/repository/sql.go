package repository

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/retailsales/internal/migration"
	"github.com/smallbiznis/retailsales/internal/sales/domain"
	"github.com/smallbiznis/retailsales/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sqlInsertChunk = 200

type SQLParams struct {
	fx.In

	DB   *gorm.DB
	Node *snowflake.Node
	Log  *zap.Logger
}

// SQLRepository serves queries from the relational sales table and loads it
// during ingestion.
type SQLRepository struct {
	db   *gorm.DB
	node *snowflake.Node
	log  *zap.Logger
}

func NewSQL(p SQLParams) *SQLRepository {
	return &SQLRepository{
		db:   p.DB,
		node: p.Node,
		log:  p.Log.Named("sales.repository.sql"),
	}
}

func (r *SQLRepository) Backend() string { return "sql" }

func (r *SQLRepository) Query(ctx context.Context, q domain.QuerySpec) (domain.Page, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&saleRow{}).
		Scopes(filterScope(q)).
		Count(&total).Error
	if err != nil {
		return domain.Page{}, fmt.Errorf("count sales: %w", err)
	}

	page := pagination.Pagination{Page: q.Page, Limit: q.Limit}
	var rows []saleRow
	if skip, ok := page.Skip(total); ok {
		err = r.db.WithContext(ctx).
			Model(&saleRow{}).
			Scopes(filterScope(q), orderScope(q)).
			Offset(int(skip)).
			Limit(q.Limit).
			Find(&rows).Error
		if err != nil {
			return domain.Page{}, fmt.Errorf("find sales: %w", err)
		}
	}

	items := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return domain.Page{Items: items, Total: total}, nil
}

// Reset removes every stored sale.
func (r *SQLRepository) Reset(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM sale_tags").Error; err != nil {
			return fmt.Errorf("clear sale_tags: %w", err)
		}
		if err := tx.Exec("DELETE FROM sales").Error; err != nil {
			return fmt.Errorf("clear sales: %w", err)
		}
		return nil
	})
}

// InsertBatch stores the batch atomically: either every record is inserted
// or none is.
func (r *SQLRepository) InsertBatch(ctx context.Context, batch []domain.Transaction) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	sales, tags := r.rows(batch)
	if r.db.Dialector.Name() == "postgres" {
		if err := copyRows(ctx, r.db, sales, tags); err != nil {
			return 0, err
		}
		return len(sales), nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(sales, sqlInsertChunk).Error; err != nil {
			return fmt.Errorf("insert sales: %w", err)
		}
		if len(tags) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(tags, sqlInsertChunk*4).Error; err != nil {
			return fmt.Errorf("insert sale_tags: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(sales), nil
}

// EnsureIndexes creates the schema and its indexes when missing.
func (r *SQLRepository) EnsureIndexes(ctx context.Context) error {
	return migration.Run(r.db.WithContext(ctx), Models()...)
}

func (r *SQLRepository) rows(batch []domain.Transaction) ([]saleRow, []saleTagRow) {
	sales := make([]saleRow, 0, len(batch))
	var tags []saleTagRow
	for _, t := range batch {
		id := r.node.Generate().Int64()
		sales = append(sales, toSaleRow(id, t))
		tags = append(tags, tagRows(id, t.Tags)...)
	}
	return sales, tags
}

var (
	_ domain.Repository = (*SQLRepository)(nil)
	_ domain.Writer     = (*SQLRepository)(nil)
)
