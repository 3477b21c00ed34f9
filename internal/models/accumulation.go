package models

import (
	"fmt"
	"strings"
)

type AccumulationMode string

const (
	// AccumulateOff keeps the latest value of every field.
	AccumulateOff AccumulationMode = "off"
	// AccumulateAll collects the values of every field into lists.
	AccumulateAll AccumulationMode = "all"
	// AccumulateFields collects the listed fields into lists and keeps the latest value of the others.
	AccumulateFields AccumulationMode = "fields"
)

// AccumulationSettings selects how non-reserved event fields are folded into a transaction.
type AccumulationSettings struct {
	Mode   AccumulationMode `json:"mode"`
	Fields []string         `json:"fields,omitempty"`
	Dedupe bool             `json:"dedupe"`
}

// Accumulates reports whether field is collected into a list.
func (s AccumulationSettings) Accumulates(field string) bool {
	switch s.Mode {
	case AccumulateAll:
		return true
	case AccumulateFields:
		for _, f := range s.Fields {
			if f == field {
				return true
			}
		}
	}
	return false
}

// ParseAccumulation parses the accumulate option: "off"/"false", "all"/"true",
// or a comma separated list of field names.
func ParseAccumulation(value string, dedupe bool) (AccumulationSettings, error) {
	v := strings.TrimSpace(value)
	switch strings.ToLower(v) {
	case "", string(AccumulateOff), "false", "f":
		return AccumulationSettings{Mode: AccumulateOff, Dedupe: dedupe}, nil
	case string(AccumulateAll), "true", "t":
		return AccumulationSettings{Mode: AccumulateAll, Dedupe: dedupe}, nil
	}

	var fields []string
	for _, f := range strings.Split(v, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if IsDerivedField(f) || f == FieldTime {
			return AccumulationSettings{}, fmt.Errorf("field %q cannot be accumulated", f)
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return AccumulationSettings{}, fmt.Errorf("invalid accumulate value %q", value)
	}
	return AccumulationSettings{Mode: AccumulateFields, Fields: fields, Dedupe: dedupe}, nil
}
