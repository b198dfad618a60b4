package notes

import (
	"encoding/json"
	"math"
	"strings"
)

// Record is an extraction record keyed by field name.
// Strings are held as string and integers as int64.
type Record map[string]any

// Clone returns a shallow copy of r
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns a string field, or "" when absent or not a string
func (r Record) String(name string) string {
	s, _ := r[name].(string)
	return s
}

// Int returns an integer field and whether it holds a usable value
func (r Record) Int(name string) (int64, bool) {
	n, ok := toInt64(r[name])
	return n, ok
}

var placeholders = map[string]bool{
	"not mentioned": true,
	"n/a":           true,
	"none":          true,
	"":              true,
}

// IsEmpty classifies a value of the given kind. Values of the wrong
// type count as empty.
func IsEmpty(kind Kind, v any) bool {
	switch kind {
	case KindInteger:
		n, ok := toInt64(v)
		return !ok || n < 0
	default:
		s, ok := v.(string)
		if !ok {
			return true
		}
		return placeholders[strings.ToLower(strings.TrimSpace(s))]
	}
}

// kindOf returns the declared kind of name, inferring it from v for unknown fields
func (s *Schema) kindOf(name string, v any) Kind {
	if f, ok := s.Field(name); ok {
		return f.Kind
	}
	if _, ok := v.(string); ok {
		return KindString
	}
	if _, ok := toInt64(v); ok {
		return KindInteger
	}
	return KindString
}

// Reconcile merges candidate into accumulated and returns the result.
// A non-empty candidate value overwrites, an empty one leaves the field
// unchanged. Allow-listed fields additionally require membership.
// Neither input is modified.
func Reconcile(s *Schema, accumulated, candidate Record) Record {
	merged := accumulated.Clone()

	for name, value := range candidate {
		kind := s.kindOf(name, value)
		if IsEmpty(kind, value) {
			continue
		}

		if f, ok := s.Field(name); ok && f.AllowList {
			str, _ := value.(string)
			if !s.Allowed(str) {
				continue
			}
			merged[name] = strings.TrimSpace(str)
			continue
		}

		merged[name] = normalize(kind, value)
	}

	return merged
}

// Changed lists the fields whose value differs between before and after, in schema order
func Changed(s *Schema, before, after Record) []string {
	var names []string
	for _, f := range s.Fields {
		if before[f.Name] != after[f.Name] {
			names = append(names, f.Name)
		}
	}
	return names
}

func normalize(kind Kind, v any) any {
	if kind == KindInteger {
		n, _ := toInt64(v)
		return n
	}
	return v
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return 0, false
		}
		if n >= float64(math.MaxInt64) || n < float64(math.MinInt64) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

// Progress is the completion state of a record
type Progress struct {
	Filled    int
	Total     int
	Completed []FieldSpec
	Missing   []FieldSpec
}

// Percent returns the filled fraction as a percentage
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Filled) / float64(p.Total) * 100
}

// Done reports whether every required field is filled
func (p Progress) Done() bool {
	return p.Filled == p.Total
}

// Completion counts required fields not classified as empty
func Completion(s *Schema, r Record) Progress {
	var p Progress
	for _, f := range s.Fields {
		if !f.Required {
			continue
		}
		p.Total++
		if IsEmpty(f.Kind, r[f.Name]) || (f.AllowList && !s.Allowed(r.String(f.Name))) {
			p.Missing = append(p.Missing, f)
			continue
		}
		p.Filled++
		p.Completed = append(p.Completed, f)
	}
	return p
}
