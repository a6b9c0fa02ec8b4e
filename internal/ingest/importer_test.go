package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/smallbiznis/retailsales/internal/config"
	"github.com/smallbiznis/retailsales/internal/ratelimit"
	"github.com/smallbiznis/retailsales/internal/sales/domain"
	"github.com/smallbiznis/retailsales/internal/sales/domain/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

const header = "Customer ID,Customer Name,Phone Number,Gender,Age,Customer Region,Product Category,Tags,Quantity,Total Amount,Final Amount,Date,Payment Method\n"

func writeCSV(t *testing.T, rows ...string) string {
	t.Helper()
	body := header
	for _, r := range rows {
		body += r + "\n"
	}
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func sampleFile(t *testing.T) string {
	return writeCSV(t,
		"C1,Neha Shah,9876543210,Female,34,North,Beauty,organic,2,100,90,2023-03-15,UPI",
		"C2,Ravi Kumar,9123456780,Male,41,South,Electronics,gadgets,1,500,450,15/04/2023,Cash",
		"C3,No Date,9000000000,Male,22,East,Clothing,,1,10,10,,Cash",
		"C4,Asha Rao,9111111111,Female,29,West,Clothing,,3,30,27,2023-05-01,Card",
		"C5,Vikram Iyer,9222222222,Male,55,North,Beauty,,1,75,70,2023-06-01,UPI",
		"C6,Bad Date,9333333333,Male,60,North,Beauty,,1,75,70,not-a-date,UPI",
		"C7,Meera Das,9444444444,Female,38,East,Electronics,,2,200,180,2023-07-09,Card",
	)
}

func newImporter(t *testing.T, w domain.Writer) *Importer {
	t.Helper()
	return New(Params{
		Writer: w,
		Tuning: config.StaticTuning(config.DefaultTuning()),
		Lock:   ratelimit.NewIngestLock(nil),
		Log:    zap.NewNop(),
	})
}

func TestRunClearsThenInsertsInBatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := mock.NewMockWriter(ctrl)

	var sizes []int
	var names []string
	insert := func(_ context.Context, batch []domain.Transaction) (int, error) {
		sizes = append(sizes, len(batch))
		for _, tx := range batch {
			names = append(names, tx.CustomerName)
		}
		return len(batch), nil
	}
	gomock.InOrder(
		w.EXPECT().Reset(gomock.Any()).Return(nil),
		w.EXPECT().InsertBatch(gomock.Any(), gomock.Any()).DoAndReturn(insert).Times(3),
		w.EXPECT().EnsureIndexes(gomock.Any()).Return(nil),
	)

	stats, err := newImporter(t, w).Run(context.Background(), Options{File: sampleFile(t), BatchSize: 2})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2, 1}, sizes)
	assert.Equal(t, []string{"Neha Shah", "Ravi Kumar", "Asha Rao", "Vikram Iyer", "Meera Das"}, names)
	assert.Equal(t, 7, stats.Processed)
	assert.Equal(t, 5, stats.Inserted)
	assert.Equal(t, 2, stats.Skipped)
	assert.Zero(t, stats.FailedBatches)
	assert.NotEmpty(t, stats.RunID)
}

func TestRunAppendKeepsExistingData(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := mock.NewMockWriter(ctrl)

	w.EXPECT().Reset(gomock.Any()).Times(0)
	w.EXPECT().InsertBatch(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, batch []domain.Transaction) (int, error) { return len(batch), nil },
	)
	w.EXPECT().EnsureIndexes(gomock.Any()).Return(nil)

	stats, err := newImporter(t, w).Run(context.Background(), Options{File: sampleFile(t), Append: true})
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Inserted)
}

func TestRunToleratesFailedBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := mock.NewMockWriter(ctrl)

	w.EXPECT().Reset(gomock.Any()).Return(nil)
	gomock.InOrder(
		w.EXPECT().InsertBatch(gomock.Any(), gomock.Any()).Return(1, errors.New("connection reset")),
		w.EXPECT().InsertBatch(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, batch []domain.Transaction) (int, error) { return len(batch), nil },
		).Times(2),
	)
	w.EXPECT().EnsureIndexes(gomock.Any()).Return(nil)

	stats, err := newImporter(t, w).Run(context.Background(), Options{File: sampleFile(t), BatchSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FailedBatches)
	assert.Equal(t, 0, stats.DuplicateBatches)
	assert.Equal(t, 4, stats.Inserted)
}

func TestRunReportsDuplicateKeyBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := mock.NewMockWriter(ctrl)

	w.EXPECT().Reset(gomock.Any()).Return(nil)
	gomock.InOrder(
		w.EXPECT().InsertBatch(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, batch []domain.Transaction) (int, error) { return len(batch), nil },
		),
		w.EXPECT().InsertBatch(gomock.Any(), gomock.Any()).Return(0, fmt.Errorf("insert sales: %w", gorm.ErrDuplicatedKey)),
		w.EXPECT().InsertBatch(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, batch []domain.Transaction) (int, error) { return len(batch), nil },
		),
	)
	w.EXPECT().EnsureIndexes(gomock.Any()).Return(nil)

	core, logs := observer.New(zap.WarnLevel)
	im := New(Params{
		Writer: w,
		Tuning: config.StaticTuning(config.DefaultTuning()),
		Log:    zap.New(core),
	})

	stats, err := im.Run(context.Background(), Options{File: sampleFile(t), BatchSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FailedBatches)
	assert.Equal(t, 1, stats.DuplicateBatches)
	assert.Equal(t, 3, stats.Inserted)

	failures := logs.FilterMessage("insert batch failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, "duplicate_key", failures[0].ContextMap()["reason"])
}

func TestRunMissingFileTouchesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := mock.NewMockWriter(ctrl)

	_, err := newImporter(t, w).Run(context.Background(), Options{File: filepath.Join(t.TempDir(), "missing.csv")})
	assert.Error(t, err)
}

func TestRunStopsWhenResetFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := mock.NewMockWriter(ctrl)

	w.EXPECT().Reset(gomock.Any()).Return(errors.New("not primary"))

	_, err := newImporter(t, w).Run(context.Background(), Options{File: sampleFile(t)})
	assert.ErrorContains(t, err, "reset store")
}

func TestRunUsesTuningBatchSize(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := mock.NewMockWriter(ctrl)

	tuning := config.DefaultTuning()
	tuning.Ingest.BatchSize = 3
	im := New(Params{Writer: w, Tuning: config.StaticTuning(tuning), Log: zap.NewNop()})

	var sizes []int
	w.EXPECT().Reset(gomock.Any()).Return(nil)
	w.EXPECT().InsertBatch(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, batch []domain.Transaction) (int, error) {
			sizes = append(sizes, len(batch))
			return len(batch), nil
		},
	).Times(2)
	w.EXPECT().EnsureIndexes(gomock.Any()).Return(nil)

	_, err := im.Run(context.Background(), Options{File: sampleFile(t)})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, sizes)
}
