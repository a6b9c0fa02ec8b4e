package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/retailsales/internal/migration"
	"github.com/smallbiznis/retailsales/internal/sales/domain"
	"github.com/smallbiznis/retailsales/internal/sales/query"
	"github.com/smallbiznis/retailsales/internal/sales/salestest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupSQL(t *testing.T) *SQLRepository {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.Run(conn, Models()...))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewSQL(SQLParams{DB: conn, Node: node, Log: zap.NewNop()})
}

func withUniqueIDs(items []domain.Transaction) []domain.Transaction {
	for i := range items {
		items[i].CustomerID = fmt.Sprintf("TX-%05d", i)
	}
	return items
}

func customerIDs(items []domain.Transaction) []string {
	out := make([]string, 0, len(items))
	for _, t := range items {
		out = append(out, t.CustomerID)
	}
	return out
}

func TestSQLInsertAndQueryRoundTrip(t *testing.T) {
	repo := setupSQL(t)
	ctx := context.Background()

	in := domain.Transaction{
		CustomerID:     "C1",
		CustomerName:   "Neha Shah",
		PhoneNumber:    "9876543210",
		Gender:         "Female",
		Age:            34,
		CustomerRegion: "North",
		Tags:           []string{"organic", "skincare", "organic"},
		Quantity:       2,
		TotalAmount:    100.5,
		FinalAmount:    90.45,
		Date:           time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC),
		PaymentMethod:  "UPI",
	}
	n, err := repo.InsertBatch(ctx, []domain.Transaction{in})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	page, err := repo.Query(ctx, query.Resolve(domain.ListRequest{}))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	got := page.Items[0]
	assert.Equal(t, in.CustomerName, got.CustomerName)
	assert.Equal(t, in.Tags, got.Tags)
	assert.Equal(t, in.TotalAmount, got.TotalAmount)
	assert.True(t, in.Date.Equal(got.Date))
	assert.Equal(t, int64(1), page.Total)
}

func TestSQLReset(t *testing.T) {
	repo := setupSQL(t)
	ctx := context.Background()

	_, err := repo.InsertBatch(ctx, salestest.Generate(1, 25))
	require.NoError(t, err)
	require.NoError(t, repo.Reset(ctx))

	page, err := repo.Query(ctx, query.Resolve(domain.ListRequest{}))
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
	assert.Empty(t, page.Items)

	var tagCount int64
	require.NoError(t, repo.db.Model(&saleTagRow{}).Count(&tagCount).Error)
	assert.Zero(t, tagCount)
}

func TestSQLSearchEscapesWildcards(t *testing.T) {
	repo := setupSQL(t)
	ctx := context.Background()

	day := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := repo.InsertBatch(ctx, []domain.Transaction{
		{CustomerID: "A", CustomerName: "100% Cotton", Date: day},
		{CustomerID: "B", CustomerName: "1000 Cotton", Date: day},
		{CustomerID: "C", CustomerName: "snake_case", Date: day},
		{CustomerID: "D", CustomerName: "snakeXcase", Date: day},
	})
	require.NoError(t, err)

	page, err := repo.Query(ctx, query.Resolve(domain.ListRequest{Search: "0%"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, customerIDs(page.Items))

	page, err = repo.Query(ctx, query.Resolve(domain.ListRequest{Search: "E_C"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, customerIDs(page.Items))
}

func TestSQLSearchCaseFolding(t *testing.T) {
	repo := setupSQL(t)
	ctx := context.Background()

	day := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []domain.Transaction{
		{CustomerID: "A", CustomerName: "Neha Shah", Date: day},
		{CustomerID: "B", CustomerName: "élise Martin", Date: day},
		{CustomerID: "C", CustomerName: "Élise Dubois", Date: day},
	}
	_, err := repo.InsertBatch(ctx, items)
	require.NoError(t, err)

	for _, term := range []string{"NEHA", "neha", "nEhA sH"} {
		spec := query.Resolve(domain.ListRequest{Search: term})
		page, err := repo.Query(ctx, spec)
		require.NoError(t, err)
		assert.Equal(t, customerIDs(query.Apply(items, spec).Items), customerIDs(page.Items), term)
		assert.Equal(t, []string{"A"}, customerIDs(page.Items), term)
	}

	// sqlite LOWER leaves É as is: the stored lowercase é still matches, the
	// stored uppercase É does not.
	page, err := repo.Query(ctx, query.Resolve(domain.ListRequest{Search: "ÉLISE"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, customerIDs(page.Items))
}

func TestSQLPageBeyondEnd(t *testing.T) {
	repo := setupSQL(t)
	ctx := context.Background()

	_, err := repo.InsertBatch(ctx, salestest.Generate(4, 15))
	require.NoError(t, err)

	page, err := repo.Query(ctx, query.Resolve(domain.ListRequest{Page: "3"}))
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(15), page.Total)
}

// The SQL translation must select, order and page exactly like the in-memory
// predicate for any spec.
func TestSQLHugePageIsEmpty(t *testing.T) {
	repo := setupSQL(t)
	ctx := context.Background()

	items := salestest.Generate(6, 15)
	_, err := repo.InsertBatch(ctx, items)
	require.NoError(t, err)

	spec := query.Resolve(domain.ListRequest{Page: "9223372036854775807", Limit: "10"})
	page, err := repo.Query(ctx, spec)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(15), page.Total)
}

func TestSQLMatchesMemoryForRandomSpecs(t *testing.T) {
	repo := setupSQL(t)
	ctx := context.Background()

	items := withUniqueIDs(salestest.Generate(42, 180))
	_, err := repo.InsertBatch(ctx, items)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 150; i++ {
		spec := salestest.RandomSpec(rng)

		want := query.Apply(items, spec)
		got, err := repo.Query(ctx, spec)
		require.NoError(t, err)

		require.Equal(t, want.Total, got.Total, "spec #%d: %+v", i, spec)
		require.Equal(t, customerIDs(want.Items), customerIDs(got.Items), "spec #%d: %+v", i, spec)
	}
}

func TestSQLEnsureIndexesIsIdempotent(t *testing.T) {
	repo := setupSQL(t)
	require.NoError(t, repo.EnsureIndexes(context.Background()))
	require.NoError(t, repo.EnsureIndexes(context.Background()))
	assert.True(t, repo.db.Migrator().HasIndex(&saleRow{}, "idx_sales_sale_date"))
}
