package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/smallbiznis/retailsales/internal/sales/domain"
	"github.com/smallbiznis/retailsales/internal/sales/normalize"
	"github.com/smallbiznis/retailsales/internal/sales/query"
	"github.com/smallbiznis/retailsales/internal/sales/salestest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingSource struct {
	calls atomic.Int32
	fail  atomic.Bool
	items []domain.Transaction
}

func (s *countingSource) Load(context.Context) ([]domain.Transaction, error) {
	s.calls.Add(1)
	if s.fail.Load() {
		return nil, errors.New("disk on fire")
	}
	return s.items, nil
}

func defaultSpec() domain.QuerySpec {
	return query.Resolve(domain.ListRequest{})
}

func TestMemoryLoadsOnceUnderConcurrency(t *testing.T) {
	src := &countingSource{items: salestest.Generate(1, 40)}
	repo := NewMemory(src, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, err := repo.Query(context.Background(), defaultSpec())
			assert.NoError(t, err)
			assert.Equal(t, int64(40), page.Total)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
}

func TestMemoryFailedLoadIsRetried(t *testing.T) {
	src := &countingSource{items: salestest.Generate(2, 5)}
	src.fail.Store(true)
	repo := NewMemory(src, zap.NewNop())

	_, err := repo.Query(context.Background(), defaultSpec())
	require.Error(t, err)

	src.fail.Store(false)
	page, err := repo.Query(context.Background(), defaultSpec())
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestMemoryQueriesDoNotMutateCache(t *testing.T) {
	items := salestest.Generate(3, 30)
	snapshot := append([]domain.Transaction(nil), items...)
	repo := NewMemory(&countingSource{items: items}, zap.NewNop())

	spec := defaultSpec()
	spec.SortField = domain.SortByCustomerName
	spec.SortOrder = domain.SortAsc
	_, err := repo.Query(context.Background(), spec)
	require.NoError(t, err)

	assert.Equal(t, snapshot, items)
}

const sampleCSV = "\ufeffCustomer ID,Customer Name,Phone Number,Gender,Age,Customer Region,Product Category,Tags,Quantity,Total Amount,Final Amount,Date,Payment Method\n" +
	"C1,Neha Shah,9876543210,Female,34,North,Beauty,\"organic,skincare\",2,100,90,2023-03-15,UPI\n" +
	"C2,Ravi Kumar,9123456780,Male,41,South,Electronics,gadgets,1,500,450,15/04/2023,Cash\n" +
	"C3,No Date,9000000000,Male,22,East,Clothing,,1,10,10,,Cash\n" +
	"C4,Short Row,9111111111\n"

func TestCSVSourceSkipsRowsWithoutDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	items, err := CSVSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "C1", items[0].CustomerID)
	assert.Equal(t, []string{"organic", "skincare"}, items[0].Tags)
	assert.Equal(t, "C2", items[1].CustomerID)
	assert.Equal(t, 4, int(items[1].Date.Month()))
}

func TestCSVSourceMissingFile(t *testing.T) {
	_, err := CSVSource{Path: filepath.Join(t.TempDir(), "missing.csv")}.Load(context.Background())
	assert.Error(t, err)
}

func TestReadRowsKeysByHeader(t *testing.T) {
	var rows []normalize.Row
	err := ReadRows(context.Background(), strings.NewReader(sampleCSV), func(r normalize.Row) error {
		rows = append(rows, r)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "C1", rows[0]["Customer ID"])
	assert.Equal(t, "organic,skincare", rows[0]["Tags"])
	assert.Equal(t, "", rows[3]["Date"])
}

func TestReadRowsEmptyInput(t *testing.T) {
	called := false
	err := ReadRows(context.Background(), strings.NewReader(""), func(normalize.Row) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestMemoryServesCSVEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))
	repo := NewMemory(CSVSource{Path: path}, zap.NewNop())

	page, err := repo.Query(context.Background(), query.Resolve(domain.ListRequest{Tags: "skincare"}))
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, "Neha Shah", page.Items[0].CustomerName)

	page, err = repo.Query(context.Background(), query.Resolve(domain.ListRequest{}))
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Ravi Kumar", page.Items[0].CustomerName)
}
