package stores

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"kv-transactions/internal/collections/mocks"
	"kv-transactions/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newRecords(n int) []*models.TransactionRecord {
	records := make([]*models.TransactionRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, models.NewTransactionRecord(fmt.Sprintf("txn-%d", i)))
	}
	return records
}

func TestTransactionWriter_WritesGroupsInOrder(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCollection := mocks.NewMockCollection(ctrl)
	records := newRecords(2500)
	ctx := context.Background()

	gomock.InOrder(
		mockCollection.EXPECT().BatchSave(ctx, records[0:1000]).Return(nil),
		mockCollection.EXPECT().BatchSave(ctx, records[1000:2000]).Return(nil),
		mockCollection.EXPECT().BatchSave(ctx, records[2000:2500]).Return(nil),
	)

	err := NewTransactionWriter(1000).Write(ctx, mockCollection, records)
	assert.NoError(t, err)
}

func TestTransactionWriter_Empty(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCollection := mocks.NewMockCollection(ctrl)

	err := NewTransactionWriter(1000).Write(context.Background(), mockCollection, nil)
	assert.NoError(t, err)
}

func TestTransactionWriter_StopsAtFailedGroup(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCollection := mocks.NewMockCollection(ctrl)
	records := newRecords(5)
	ctx := context.Background()
	errSave := errors.New("store unavailable")

	gomock.InOrder(
		mockCollection.EXPECT().BatchSave(ctx, records[0:2]).Return(nil),
		mockCollection.EXPECT().BatchSave(ctx, records[2:4]).Return(errSave),
	)

	err := NewTransactionWriter(2).Write(ctx, mockCollection, records)
	require.Error(t, err)
	assert.ErrorIs(t, err, errSave)
	assert.Contains(t, err.Error(), "write group 2 of 3 (records 2-3)")
}

func TestTransactionWriter_CancelledContext(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCollection := mocks.NewMockCollection(ctrl)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewTransactionWriter(2).Write(ctx, mockCollection, newRecords(3))
	assert.ErrorIs(t, err, context.Canceled)
}
