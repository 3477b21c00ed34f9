package collections

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyFilters_SingleChunkWhenBudgetAllows(t *testing.T) {
	t.Parallel()

	chunks := KeyFilters("_key", []string{"A", "B", "C"}, 70000)
	require.Len(t, chunks, 1)
	assert.JSONEq(t, `{"$or":[{"_key":"A"},{"_key":"B"},{"_key":"C"}]}`, chunks[0].String())
}

func TestKeyFilters_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, KeyFilters("_key", nil, 100))
}

func TestKeyFilters_ChunksStayWithinBudget(t *testing.T) {
	t.Parallel()

	keys := make([]string, 0, 500)
	for i := 0; i < 500; i++ {
		keys = append(keys, fmt.Sprintf("txn-%04d", i))
	}

	for _, maxBytes := range []int{1, 40, 64, 100, 1000, 5000} {
		t.Run(fmt.Sprintf("max_%d", maxBytes), func(t *testing.T) {
			t.Parallel()

			chunks := KeyFilters("_key", keys, maxBytes)

			var seen []string
			for _, chunk := range chunks {
				data, err := json.Marshal(chunk)
				require.NoError(t, err)

				var decoded map[string][]map[string]string
				require.NoError(t, json.Unmarshal(data, &decoded))
				preds := decoded["$or"]
				require.NotEmpty(t, preds)
				if len(preds) > 1 {
					assert.LessOrEqual(t, chunk.RequestSize(), maxBytes)
				}
				for _, p := range preds {
					seen = append(seen, p["_key"])
				}
			}
			assert.Equal(t, keys, seen, "every key exactly once, in order")
		})
	}
}

func TestKeyFilters_ExactBudgetBoundary(t *testing.T) {
	t.Parallel()

	// ?query= plus the escaped {"$or":[{"_key":"A"},{"_key":"B"}]} is 88 bytes
	full := KeyFilters("_key", []string{"A", "B"}, 88)
	require.Len(t, full, 1)
	assert.Equal(t, 88, full[0].RequestSize())

	split := KeyFilters("_key", []string{"A", "B"}, 87)
	require.Len(t, split, 2)
}

func TestFilter_RequestSize(t *testing.T) {
	t.Parallel()

	assert.Zero(t, Filter{}.RequestSize())
	// %7B%22_key%22%3A%22A%22%7D
	assert.Equal(t, len("?query=")+26, Eq("_key", "A").RequestSize())
}

func TestKeyFilters_OversizedKeyGetsOwnChunk(t *testing.T) {
	t.Parallel()

	big := strings.Repeat("x", 200)
	chunks := KeyFilters("_key", []string{"a", big, "b"}, 50)
	require.Len(t, chunks, 3)
	assert.Contains(t, chunks[1].String(), big)
}
