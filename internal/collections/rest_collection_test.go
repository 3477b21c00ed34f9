package collections

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"kv-transactions/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRESTCollection(t *testing.T, handler http.HandlerFunc) Collection {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider := NewRESTProvider(server.Client(), RESTOptions{
		BaseURL:       server.URL + "/storage/collections/data/",
		AuthToken:     "secret",
		RetryAttempts: 3,
		RetryBackoff:  time.Millisecond,
	})
	c, err := provider.Collection("web_txn")
	require.NoError(t, err)
	return c
}

func TestRESTCollection_Query(t *testing.T) {
	t.Parallel()

	c := newTestRESTCollection(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/storage/collections/data/web_txn", r.URL.Path)
		assert.Equal(t, "Splunk secret", r.Header.Get("Authorization"))
		assert.JSONEq(t, `{"$or":[{"_key":"A"},{"_key":"B"}]}`, r.URL.Query().Get("query"))

		_, _ = io.WriteString(w, `[{"_key":"A","_user":"nobody","start_time":"90","duration":"10","event_count":2,"hashes":["h1","h2"]}]`)
	})

	records, err := c.Query(context.Background(), Or(Eq("_key", "A"), Eq("_key", "B")))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0].Key)
	assert.Equal(t, "10", records[0].Duration.String())
	assert.Equal(t, int64(2), records[0].EventCount)
}

func TestRESTCollection_QueryRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestRESTCollection(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	})

	records, err := c.Query(context.Background(), Eq("_key", "A"))
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRESTCollection_QueryErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		status        int
		body          string
		expectedErr   error
		expectedCalls int32
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"messages":[]}`, expectedErr: ErrCollectionNotFound, expectedCalls: 1},
		{name: "invalid body", status: http.StatusOK, body: `{"not":"a list"}`, expectedErr: ErrInvalidResponse, expectedCalls: 1},
		{name: "bad request", status: http.StatusBadRequest, body: `bad query`, expectedCalls: 1},
		{name: "server error exhausts retries", status: http.StatusInternalServerError, body: `oops`, expectedCalls: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			c := newTestRESTCollection(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.Query(context.Background(), Eq("_key", "A"))
			require.Error(t, err)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.False(t, IsConfigurationError(err))
			}
			assert.Equal(t, tt.expectedCalls, calls.Load())
		})
	}
}

func TestRESTCollection_BatchSave(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestRESTCollection(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/storage/collections/data/web_txn/batch_save", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var docs []map[string]any
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&docs)) || !assert.Len(t, docs, 2) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "A", docs[0]["_key"])
		assert.Equal(t, "B", docs[1]["_key"])
		_, _ = io.WriteString(w, `["A","B"]`)
	})

	err := c.BatchSave(context.Background(), []*models.TransactionRecord{
		models.NewTransactionRecord("A"),
		models.NewTransactionRecord("B"),
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	require.NoError(t, c.BatchSave(context.Background(), nil))
	assert.Equal(t, int32(1), calls.Load(), "empty batch sends nothing")
}

func TestRESTCollection_BatchSaveIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestRESTCollection(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	err := c.BatchSave(context.Background(), []*models.TransactionRecord{models.NewTransactionRecord("A")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Equal(t, int32(1), calls.Load())
}

func TestRESTCollection_Delete(t *testing.T) {
	t.Parallel()

	c := newTestRESTCollection(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.JSONEq(t, `{"_key":"A"}`, r.URL.Query().Get("query"))
	})

	require.NoError(t, c.Delete(context.Background(), Eq("_key", "A")))
}

func TestRESTCollection_KeyFilterRequestsStayWithinBudget(t *testing.T) {
	t.Parallel()

	const maxBytes = 70000
	keys := make([]string, 0, 5000)
	for i := 0; i < 5000; i++ {
		keys = append(keys, fmt.Sprintf("txn-%08d", i))
	}

	provider := NewRESTProvider(http.DefaultClient, RESTOptions{BaseURL: "https://kv.example:8089/storage/collections/data"})
	c, err := provider.Collection("web_txn")
	require.NoError(t, err)
	rc := c.(*restCollection)

	base, err := rc.endpoint("", Filter{})
	require.NoError(t, err)

	chunks := KeyFilters("_key", keys, maxBytes)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		endpoint, err := rc.endpoint("", chunk)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(endpoint)-len(base), maxBytes)
		assert.Equal(t, chunk.RequestSize(), len(endpoint)-len(base))
	}
}
