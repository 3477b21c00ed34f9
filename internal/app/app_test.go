package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kv-transactions/internal/shared/configs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *configs.Config {
	t.Helper()

	return &configs.Config{
		Server:      configs.ServerConfig{Port: 8080, ReadHeaderTimeout: 1, ReadTimeout: 1, WriteTimeout: 1, IdleTimeout: 1},
		Log:         configs.LogConfig{Level: "error"},
		FileStorage: configs.FileStorageConfig{RootDir: t.TempDir()},
		Store:       configs.StoreConfig{Backend: configs.StoreBackendFile, Collections: []string{"web_txn"}},
		Aggregation: configs.AggregationConfig{
			TransactionIDField:    "sid",
			Accumulate:            "fields",
			AccumulateFields:      []string{"status"},
			Dedupe:                true,
			LookupMaxRequestBytes: 70000,
			LookupConcurrency:     2,
			WriteBatchSize:        100,
		},
		Export: configs.ExportConfig{Sink: configs.ExportSinkFile, Host: "test-host"},
	}
}

func post(t *testing.T, handler http.Handler, target, body string) map[string]any {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestApp_IngestThenMove(t *testing.T) {
	application, err := New(testConfig(t))
	require.NoError(t, err)
	handler := application.server.Handler

	events := `[
		{"sid":"s-1","_time":"100","status":"ok"},
		{"sid":"s-1","_time":"105","status":"retry"},
		{"sid":"s-2","_time":"200","status":"ok"}
	]`
	first := post(t, handler, "/collections/web_txn/transactions", events)
	assert.Equal(t, float64(3), first["merged"])
	assert.Equal(t, true, first["persisted"])

	replay := post(t, handler, "/collections/web_txn/transactions", events)
	assert.Equal(t, float64(3), replay["duplicates"])

	dryRun := post(t, handler, "/collections/web_txn/export", `{"action":"move","minEvents":2,"testmode":true}`)
	assert.Equal(t, float64(1), dryRun["matched"])
	txns := dryRun["transactions"].([]any)
	require.Len(t, txns, 1)
	txn := txns[0].(map[string]any)
	assert.Equal(t, "s-1", txn["sid"])
	assert.Equal(t, "5", txn["duration"])
	assert.Equal(t, []any{"ok", "retry"}, txn["status"])

	moved := post(t, handler, "/collections/web_txn/export", `{"action":"move","minEvents":2}`)
	assert.Equal(t, float64(1), moved["exported"])
	assert.Equal(t, float64(1), moved["deleted"])

	remaining := post(t, handler, "/collections/web_txn/export", `{"action":"copy","testmode":true}`)
	assert.Equal(t, float64(1), remaining["matched"])

	require.NoError(t, application.Shutdown(context.Background()))
}

func TestNew_InvalidAccumulation(t *testing.T) {
	cfg := testConfig(t)
	cfg.Aggregation.AccumulateFields = []string{"_time"}

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNew_InvalidLogLevel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Log.Level = "loud"

	_, err := New(cfg)
	assert.Error(t, err)
}
