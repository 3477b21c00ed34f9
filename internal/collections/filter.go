package collections

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	opEq  = ""
	opGt  = "$gt"
	opGte = "$gte"
	opLt  = "$lt"
	opLte = "$lte"
	opAnd = "$and"
	opOr  = "$or"
)

// Filter is a query over flat record documents, serialized in the store's JSON query language:
//
//	{"field":"v"}                 equality
//	{"field":{"$gte":5}}          range
//	{"$or":[{...},{...}]}         boolean combination
//
// The zero Filter matches every document.
type Filter struct {
	op       string
	field    string
	value    any
	children []Filter
}

func Eq(field string, value any) Filter  { return Filter{op: opEq, field: field, value: value} }
func Gt(field string, value any) Filter  { return Filter{op: opGt, field: field, value: value} }
func Gte(field string, value any) Filter { return Filter{op: opGte, field: field, value: value} }
func Lt(field string, value any) Filter  { return Filter{op: opLt, field: field, value: value} }
func Lte(field string, value any) Filter { return Filter{op: opLte, field: field, value: value} }

// And combines filters; empty filters are dropped and a single remaining filter is returned as is.
func And(filters ...Filter) Filter { return combine(opAnd, filters) }

// Or combines filters into a disjunction. Empty filters are dropped.
func Or(filters ...Filter) Filter {
	kept := nonEmpty(filters)
	if len(kept) == 0 {
		return Filter{}
	}
	return Filter{op: opOr, children: kept}
}

func combine(op string, filters []Filter) Filter {
	kept := nonEmpty(filters)
	switch len(kept) {
	case 0:
		return Filter{}
	case 1:
		return kept[0]
	}
	return Filter{op: op, children: kept}
}

func nonEmpty(filters []Filter) []Filter {
	kept := make([]Filter, 0, len(filters))
	for _, f := range filters {
		if !f.IsEmpty() {
			kept = append(kept, f)
		}
	}
	return kept
}

func (f Filter) IsEmpty() bool {
	return f.field == "" && len(f.children) == 0
}

func (f Filter) MarshalJSON() ([]byte, error) {
	switch {
	case f.IsEmpty():
		return []byte("{}"), nil
	case f.op == opAnd || f.op == opOr:
		return json.Marshal(map[string][]Filter{f.op: f.children})
	case f.op == opEq:
		return json.Marshal(map[string]any{f.field: f.value})
	default:
		return json.Marshal(map[string]map[string]any{f.field: {f.op: f.value}})
	}
}

func (f Filter) String() string {
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Sprintf("<invalid filter: %v>", err)
	}
	return string(b)
}

// Match evaluates the filter against a flat document in process. Equality is an exact match of
// the rendered values, so "01" never equals "1". Range operators compare as decimals when both
// sides are numeric, as strings otherwise. A list field matches when any element does.
func (f Filter) Match(doc map[string]any) bool {
	switch {
	case f.IsEmpty():
		return true
	case f.op == opAnd:
		for _, c := range f.children {
			if !c.Match(doc) {
				return false
			}
		}
		return true
	case f.op == opOr:
		for _, c := range f.children {
			if c.Match(doc) {
				return true
			}
		}
		return false
	}

	actual, ok := doc[f.field]
	if !ok || actual == nil {
		return false
	}
	if list, ok := actual.([]string); ok {
		for _, item := range list {
			if f.matchValue(item) {
				return true
			}
		}
		return false
	}
	return f.matchValue(actual)
}

func (f Filter) matchValue(actual any) bool {
	if f.op == opEq {
		return valueString(actual) == valueString(f.value)
	}
	c := compare(actual, f.value)
	switch f.op {
	case opGt:
		return c > 0
	case opGte:
		return c >= 0
	case opLt:
		return c < 0
	case opLte:
		return c <= 0
	}
	return false
}

func compare(a, b any) int {
	as, bs := valueString(a), valueString(b)
	ad, aErr := decimal.NewFromString(as)
	bd, bErr := decimal.NewFromString(bs)
	if aErr == nil && bErr == nil {
		return ad.Cmp(bd)
	}
	return strings.Compare(as, bs)
}

func valueString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case decimal.Decimal:
		return t.String()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
