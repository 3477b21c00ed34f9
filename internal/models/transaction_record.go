package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FieldValue is an accumulated field: either a scalar latest value or a list of values.
type FieldValue struct {
	Values []string
	IsList bool
}

func ScalarValue(v string) FieldValue {
	return FieldValue{Values: []string{v}}
}

func ListValue(vs ...string) FieldValue {
	return FieldValue{Values: append([]string{}, vs...), IsList: true}
}

// IsEmpty reports whether the value carries nothing worth keeping.
func (f FieldValue) IsEmpty() bool {
	for _, v := range f.Values {
		if v != "" {
			return false
		}
	}
	return true
}

// Scalar returns the single value, or the last list element.
func (f FieldValue) Scalar() string {
	if len(f.Values) == 0 {
		return ""
	}
	return f.Values[len(f.Values)-1]
}

func (f FieldValue) Clone() FieldValue {
	return FieldValue{Values: append([]string(nil), f.Values...), IsList: f.IsList}
}

func (f FieldValue) document() any {
	if f.IsList {
		return append([]string{}, f.Values...)
	}
	return f.Scalar()
}

// TransactionRecord is the folded state of every event sharing one transaction id.
// A record with EventCount zero has never absorbed an event.
//
// Example JSON:
//
//	{
//	  "_key": "A",
//	  "start_time": "90",
//	  "duration": "10",
//	  "event_count": 2,
//	  "hashes": ["0cc175b9c0f1b6a831c399e269772661", "92eb5ffee6ae2fec3ad71c777531578f"],
//	  "id": "A",
//	  "v": "x",
//	  "__latest_v": "100"
//	}
type TransactionRecord struct {
	Key         string
	StartTime   decimal.Decimal
	Duration    decimal.Decimal
	EventCount  int64
	Hashes      []string
	Fields      map[string]FieldValue
	LatestTimes map[string]decimal.Decimal

	// hashIndex mirrors Hashes once AddHash has been called. HasHash ignores it when its size
	// drifts from Hashes.
	hashIndex map[string]struct{}
}

func NewTransactionRecord(key string) *TransactionRecord {
	return &TransactionRecord{
		Key:         key,
		Fields:      make(map[string]FieldValue),
		LatestTimes: make(map[string]decimal.Decimal),
	}
}

func (r *TransactionRecord) Clone() *TransactionRecord {
	out := &TransactionRecord{
		Key:         r.Key,
		StartTime:   r.StartTime,
		Duration:    r.Duration,
		EventCount:  r.EventCount,
		Hashes:      append([]string(nil), r.Hashes...),
		Fields:      make(map[string]FieldValue, len(r.Fields)),
		LatestTimes: make(map[string]decimal.Decimal, len(r.LatestTimes)),
	}
	for k, v := range r.Fields {
		out.Fields[k] = v.Clone()
	}
	for k, v := range r.LatestTimes {
		out.LatestTimes[k] = v
	}
	return out
}

func (r *TransactionRecord) HasHash(hash string) bool {
	if r.hashIndex != nil && len(r.hashIndex) == len(r.Hashes) {
		_, ok := r.hashIndex[hash]
		return ok
	}
	return slices.Contains(r.Hashes, hash)
}

// AddHash appends a fingerprint the record does not hold yet and keeps HasHash constant time
// for records that grow one event at a time.
func (r *TransactionRecord) AddHash(hash string) {
	if r.hashIndex == nil || len(r.hashIndex) != len(r.Hashes) {
		r.hashIndex = make(map[string]struct{}, len(r.Hashes)+1)
		for _, h := range r.Hashes {
			r.hashIndex[h] = struct{}{}
		}
	}
	r.Hashes = append(r.Hashes, hash)
	r.hashIndex[hash] = struct{}{}
}

func (r *TransactionRecord) EndTime() decimal.Decimal {
	return r.StartTime.Add(r.Duration)
}

// Document renders the record as the flat document stored in a collection.
func (r *TransactionRecord) Document() map[string]any {
	doc := make(map[string]any, len(r.Fields)+len(r.LatestTimes)+5)
	for k, v := range r.Fields {
		doc[k] = v.document()
	}
	for k, t := range r.LatestTimes {
		doc[LatestField(k)] = t.String()
	}
	hashes := r.Hashes
	if hashes == nil {
		hashes = []string{}
	}
	doc[FieldKey] = r.Key
	doc[FieldStartTime] = r.StartTime.String()
	doc[FieldDuration] = r.Duration.String()
	doc[FieldEventCount] = r.EventCount
	doc[FieldHashes] = hashes
	return doc
}

func (r *TransactionRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Document())
}

func (r *TransactionRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	rec := NewTransactionRecord("")
	eventCountSeen := false
	for k, v := range raw {
		if v == nil {
			continue
		}
		switch {
		case k == FieldKey:
			rec.Key = StringValue(v)
		case k == FieldUser, k == FieldTime:
		case k == FieldStartTime:
			d, err := parseDecimal(k, v)
			if err != nil {
				return err
			}
			rec.StartTime = d
		case k == FieldDuration:
			d, err := parseDecimal(k, v)
			if err != nil {
				return err
			}
			rec.Duration = d
		case k == FieldEventCount:
			d, err := parseDecimal(k, v)
			if err != nil {
				return err
			}
			rec.EventCount = d.IntPart()
			eventCountSeen = true
		case k == FieldHashes:
			rec.Hashes = toStrings(v)
		case strings.HasPrefix(k, LatestFieldPrefix):
			d, err := parseDecimal(k, v)
			if err != nil {
				return err
			}
			rec.LatestTimes[strings.TrimPrefix(k, LatestFieldPrefix)] = d
		default:
			if list, ok := v.([]any); ok {
				rec.Fields[k] = FieldValue{Values: toStrings(list), IsList: true}
			} else {
				rec.Fields[k] = ScalarValue(StringValue(v))
			}
		}
	}
	if !eventCountSeen {
		rec.EventCount = int64(len(rec.Hashes))
	}

	*r = *rec
	return nil
}

func parseDecimal(field string, v any) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(StringValue(v))
	if err != nil {
		return decimal.Zero, fmt.Errorf("field %s: %w", field, err)
	}
	return d, nil
}

func toStrings(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{StringValue(v)}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if item == nil {
			continue
		}
		out = append(out, StringValue(item))
	}
	return out
}

// StringValue renders a decoded JSON value as the string form used by events and records.
func StringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
