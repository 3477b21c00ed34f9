package collections

import (
	"encoding/json"
	"net/url"
)

// queryParam carries the JSON filter of a KV store request.
const queryParam = "query"

var (
	// queryPrefixBytes is len("?query=").
	queryPrefixBytes = len("?" + queryParam + "=")
	// orEnvelopeBytes is the escaped size of {"$or":[]}.
	orEnvelopeBytes = escapedSize(`{"$or":[]}`)
	separatorBytes  = escapedSize(",")
)

// RequestSize is the number of bytes the filter adds to a KV store request URL, "?query=" plus
// the query-escaped JSON.
func (f Filter) RequestSize() int {
	if f.IsEmpty() {
		return 0
	}
	return queryPrefixBytes + escapedSize(f.String())
}

// KeyFilters splits keys into $or filters of field equalities whose RequestSize stays within
// maxBytes. A key that alone exceeds the budget gets a chunk of its own. Every key lands in exactly
// one chunk and the input order is kept.
func KeyFilters(field string, keys []string, maxBytes int) []Filter {
	var (
		chunks  []Filter
		current []Filter
		size    = queryPrefixBytes + orEnvelopeBytes
	)
	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, Or(current...))
		}
		current = nil
		size = queryPrefixBytes + orEnvelopeBytes
	}

	for _, key := range keys {
		predicate := Eq(field, key)
		n := predicateSize(field, key)
		if len(current) > 0 {
			n += separatorBytes
		}
		if len(current) > 0 && size+n > maxBytes {
			flush()
			n -= separatorBytes
		}
		current = append(current, predicate)
		size += n
	}
	flush()
	return chunks
}

func predicateSize(field, key string) int {
	b, err := json.Marshal(map[string]string{field: key})
	if err != nil {
		return escapedSize(field) + escapedSize(key) + 7*3
	}
	return escapedSize(string(b))
}

func escapedSize(s string) int {
	return len(url.QueryEscape(s))
}
