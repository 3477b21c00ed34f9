package collections

import (
	"context"
	"strings"
	"testing"

	"kv-transactions/internal/models"
	"kv-transactions/internal/shared/filestorages"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileProvider(t *testing.T, names ...string) (Provider, filestorages.FileStorage) {
	t.Helper()

	storage, err := filestorages.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return NewFileProvider(storage, names), storage
}

func newRecord(key string, start string, count int64) *models.TransactionRecord {
	rec := models.NewTransactionRecord(key)
	rec.StartTime = decimal.RequireFromString(start)
	rec.EventCount = count
	rec.Fields["id"] = models.ScalarValue(key)
	return rec
}

func keysOf(records []*models.TransactionRecord) []string {
	keys := make([]string, 0, len(records))
	for _, r := range records {
		keys = append(keys, r.Key)
	}
	return keys
}

func TestFileProvider_UnknownCollection(t *testing.T) {
	t.Parallel()

	provider, _ := newTestFileProvider(t, "web_txn")

	_, err := provider.Collection("missing")
	assert.ErrorIs(t, err, ErrCollectionNotFound)
	assert.True(t, IsConfigurationError(err))

	c, err := provider.Collection("web_txn")
	require.NoError(t, err)
	assert.Equal(t, "web_txn", c.Name())
}

func TestFileCollection_SaveQueryDelete(t *testing.T) {
	t.Parallel()

	provider, _ := newTestFileProvider(t, "web_txn")
	c, err := provider.Collection("web_txn")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.BatchSave(ctx, []*models.TransactionRecord{
		newRecord("A", "100", 1),
		newRecord("B/../weird key", "200", 3),
		newRecord("C", "300", 5),
	}))

	all, err := c.Query(ctx, Filter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B/../weird key", "C"}, keysOf(all))

	matched, err := c.Query(ctx, Or(Eq("_key", "A"), Eq("_key", "B/../weird key"), Eq("_key", "Z")))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B/../weird key"}, keysOf(matched))

	busy, err := c.Query(ctx, Gte("event_count", 3))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"B/../weird key", "C"}, keysOf(busy))

	require.NoError(t, c.Delete(ctx, Eq("_key", "C")))
	remaining, err := c.Query(ctx, Filter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B/../weird key"}, keysOf(remaining))
}

func TestFileCollection_BatchSaveUpserts(t *testing.T) {
	t.Parallel()

	provider, _ := newTestFileProvider(t, "web_txn")
	c, err := provider.Collection("web_txn")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.BatchSave(ctx, []*models.TransactionRecord{newRecord("A", "100", 1)}))
	require.NoError(t, c.BatchSave(ctx, []*models.TransactionRecord{newRecord("A", "90", 2)}))

	records, err := c.Query(ctx, Eq("_key", "A"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "90", records[0].StartTime.String())
	assert.Equal(t, int64(2), records[0].EventCount)
}

func TestFileCollection_CollectionsAreIsolated(t *testing.T) {
	t.Parallel()

	provider, _ := newTestFileProvider(t, "one", "two")
	ctx := context.Background()

	one, err := provider.Collection("one")
	require.NoError(t, err)
	two, err := provider.Collection("two")
	require.NoError(t, err)

	require.NoError(t, one.BatchSave(ctx, []*models.TransactionRecord{newRecord("A", "1", 1)}))

	records, err := two.Query(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFileCollection_CorruptDocument(t *testing.T) {
	t.Parallel()

	provider, storage := newTestFileProvider(t, "web_txn")
	c, err := provider.Collection("web_txn")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = storage.Put(ctx, "collections/web_txn/broken.json", strings.NewReader("not json"), filestorages.PutOptions{})
	require.NoError(t, err)

	_, err = c.Query(ctx, Filter{})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}
