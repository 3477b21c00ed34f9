package models

import "strings"

// Reserved field names. They are either store bookkeeping or produced by aggregation,
// so they never take part in fingerprints or field accumulation.
const (
	FieldTime       = "_time"
	FieldKey        = "_key"
	FieldUser       = "_user"
	FieldStartTime  = "start_time"
	FieldDuration   = "duration"
	FieldEventCount = "event_count"
	FieldHashes     = "hashes"

	// LatestFieldPrefix marks the field holding the _time of the event that supplied a latest value.
	LatestFieldPrefix = "__latest_"
)

// Event is a single flat input event. Every value is a string; _time is decimal epoch seconds.
type Event map[string]string

func (e Event) Clone() Event {
	out := make(Event, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// IsDerivedField reports whether name is produced by aggregation or by the store itself.
func IsDerivedField(name string) bool {
	switch name {
	case FieldKey, FieldUser, FieldStartTime, FieldDuration, FieldEventCount, FieldHashes:
		return true
	}
	return strings.HasPrefix(name, LatestFieldPrefix)
}

// LatestField returns the name of the latest-time marker of field.
func LatestField(field string) string {
	return LatestFieldPrefix + field
}
