package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRecord_MarshalJSON(t *testing.T) {
	t.Parallel()

	rec := NewTransactionRecord("A")
	rec.StartTime = decimal.RequireFromString("90.5")
	rec.Duration = decimal.RequireFromString("10")
	rec.EventCount = 2
	rec.Hashes = []string{"h1", "h2"}
	rec.Fields["id"] = ScalarValue("A")
	rec.Fields["status"] = ListValue("200", "404")
	rec.LatestTimes["id"] = decimal.RequireFromString("100.5")

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"_key": "A",
		"start_time": "90.5",
		"duration": "10",
		"event_count": 2,
		"hashes": ["h1", "h2"],
		"id": "A",
		"status": ["200", "404"],
		"__latest_id": "100.5"
	}`, string(data))
}

func TestTransactionRecord_MarshalJSON_EmptyHashes(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(NewTransactionRecord("B"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"hashes":[]`)
}

func TestTransactionRecord_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		check func(t *testing.T, rec *TransactionRecord)
	}{
		{
			name: "full record",
			input: `{"_key":"A","_user":"nobody","start_time":"90","duration":"10","event_count":2,
				"hashes":["h1","h2"],"v":"x","tags":["a","b"],"__latest_v":"100"}`,
			check: func(t *testing.T, rec *TransactionRecord) {
				assert.Equal(t, "A", rec.Key)
				assert.Equal(t, "90", rec.StartTime.String())
				assert.Equal(t, "10", rec.Duration.String())
				assert.Equal(t, int64(2), rec.EventCount)
				assert.Equal(t, []string{"h1", "h2"}, rec.Hashes)
				assert.Equal(t, ScalarValue("x"), rec.Fields["v"])
				assert.Equal(t, ListValue("a", "b"), rec.Fields["tags"])
				assert.Equal(t, "100", rec.LatestTimes["v"].String())
				assert.NotContains(t, rec.Fields, "_user")
			},
		},
		{
			name:  "numeric times and single string hash",
			input: `{"_key":"A","start_time":1700000000.123456,"duration":0,"hashes":"h1"}`,
			check: func(t *testing.T, rec *TransactionRecord) {
				assert.Equal(t, "1700000000.123456", rec.StartTime.String())
				assert.Equal(t, "0", rec.Duration.String())
				assert.Equal(t, []string{"h1"}, rec.Hashes)
				assert.Equal(t, int64(1), rec.EventCount, "event count derived from hashes")
			},
		},
		{
			name:  "non string scalars",
			input: `{"_key":"A","count":42,"ok":true,"nested":{"b":1,"a":"x"},"gone":null}`,
			check: func(t *testing.T, rec *TransactionRecord) {
				assert.Equal(t, ScalarValue("42"), rec.Fields["count"])
				assert.Equal(t, ScalarValue("true"), rec.Fields["ok"])
				assert.Equal(t, ScalarValue(`{"a":"x","b":1}`), rec.Fields["nested"])
				assert.NotContains(t, rec.Fields, "gone")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var rec TransactionRecord
			require.NoError(t, json.Unmarshal([]byte(tt.input), &rec))
			tt.check(t, &rec)
		})
	}
}

func TestTransactionRecord_UnmarshalJSON_InvalidDecimal(t *testing.T) {
	t.Parallel()

	var rec TransactionRecord
	err := json.Unmarshal([]byte(`{"_key":"A","start_time":"yesterday"}`), &rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start_time")
}

func TestTransactionRecord_RoundTrip(t *testing.T) {
	t.Parallel()

	rec := NewTransactionRecord("A")
	rec.StartTime = decimal.RequireFromString("1700000000.000001")
	rec.Duration = decimal.RequireFromString("3.25")
	rec.EventCount = 1
	rec.Hashes = []string{"h1"}
	rec.Fields["v"] = ListValue("x")

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded TransactionRecord
	require.NoError(t, json.Unmarshal(data, &decoded))

	again, err := json.Marshal(&decoded)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestTransactionRecord_CloneIsDeep(t *testing.T) {
	t.Parallel()

	rec := NewTransactionRecord("A")
	rec.Hashes = []string{"h1"}
	rec.Fields["v"] = ListValue("x")
	rec.LatestTimes["v"] = decimal.NewFromInt(1)

	clone := rec.Clone()
	clone.Hashes = append(clone.Hashes, "h2")
	clone.Fields["v"].Values[0] = "changed"
	clone.LatestTimes["v"] = decimal.NewFromInt(2)

	assert.Equal(t, []string{"h1"}, rec.Hashes)
	assert.Equal(t, "x", rec.Fields["v"].Values[0])
	assert.Equal(t, "1", rec.LatestTimes["v"].String())
	assert.True(t, clone.HasHash("h2"))
	assert.False(t, rec.HasHash("h2"))
}

func TestFieldValue(t *testing.T) {
	t.Parallel()

	assert.True(t, FieldValue{}.IsEmpty())
	assert.True(t, ScalarValue("").IsEmpty())
	assert.True(t, ListValue("", "").IsEmpty())
	assert.False(t, ListValue("", "x").IsEmpty())
	assert.Equal(t, "y", ListValue("x", "y").Scalar())
	assert.Equal(t, "", FieldValue{}.Scalar())
}

func TestTransactionRecord_AddHash(t *testing.T) {
	t.Parallel()

	rec := NewTransactionRecord("A")
	rec.Hashes = []string{"h1", "h2"}
	assert.True(t, rec.HasHash("h2"))
	assert.False(t, rec.HasHash("h3"))

	rec.AddHash("h3")
	assert.Equal(t, []string{"h1", "h2", "h3"}, rec.Hashes)
	assert.True(t, rec.HasHash("h1"))
	assert.True(t, rec.HasHash("h3"))

	// Hashes replaced behind the index's back are still honoured.
	rec.Hashes = []string{"h9"}
	assert.True(t, rec.HasHash("h9"))
	assert.False(t, rec.HasHash("h1"))

	var decoded TransactionRecord
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.HasHash("h9"))
}
