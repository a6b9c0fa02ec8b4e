package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/smallbiznis/retailsales/internal/sales/domain"
	"github.com/smallbiznis/retailsales/internal/sales/normalize"
	"go.uber.org/zap"
)

// Source produces the full set of transactions for the memory store.
type Source interface {
	Load(ctx context.Context) ([]domain.Transaction, error)
}

// CSVSource reads transactions from a CSV file with a header row.
type CSVSource struct {
	Path string
	Log  *zap.Logger
}

func (s CSVSource) Load(ctx context.Context) ([]domain.Transaction, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer f.Close()

	var (
		items   []domain.Transaction
		skipped int
	)
	err = ReadRows(ctx, f, func(row normalize.Row) error {
		t, ok := normalize.Normalize(row)
		if !ok {
			skipped++
			return nil
		}
		items = append(items, t)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}

	if s.Log != nil {
		s.Log.Info("csv loaded",
			zap.String("path", s.Path),
			zap.Int("records", len(items)),
			zap.Int("skipped", skipped),
		)
	}
	return items, nil
}

// ReadRows decodes r as CSV with a header row and calls fn once per record,
// keyed by header name. Ragged rows are tolerated; missing cells read as "".
func ReadRows(ctx context.Context, r io.Reader, fn func(normalize.Row) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("header: %w", err)
	}
	columns := make([]string, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		columns[i] = strings.TrimSpace(name)
	}

	for line := 2; ; line++ {
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		row := make(normalize.Row, len(columns))
		for i, name := range columns {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}
