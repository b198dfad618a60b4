package view

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// SortKey selects the group row column to order by
type SortKey string

const (
	SortLocales   SortKey = "locales"
	SortPublished SortKey = "published"
	SortDraft     SortKey = "draft"
	SortVisitors  SortKey = "visitors"
	SortPageviews SortKey = "pageviews"
)

// SortKeys lists the valid keys in menu order
var SortKeys = []SortKey{SortVisitors, SortPageviews, SortLocales, SortPublished, SortDraft}

// Direction is ascending or descending
type Direction int

const (
	Descending Direction = iota
	Ascending
)

// Sort is a full ordering choice. The zero value sorts by visitors, descending.
type Sort struct {
	Key       SortKey
	Direction Direction
}

// ParseSortKey validates a key name; empty selects visitors
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortVisitors, nil
	}
	for _, k := range SortKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q (valid: visitors, pageviews, locales, published, draft)", s)
}

func (k SortKey) value(r GroupRow) int64 {
	switch k {
	case SortLocales:
		return int64(r.LocaleCount)
	case SortPublished:
		return int64(r.PublishedCount)
	case SortDraft:
		return int64(r.DraftCount)
	case SortPageviews:
		return r.Pageviews
	default:
		return r.Visitors
	}
}

// SortGroupRows orders rows in place. Ties keep their incoming order.
func SortGroupRows(rows []GroupRow, s Sort) {
	key := s.Key
	if key == "" {
		key = SortVisitors
	}
	slices.SortStableFunc(rows, func(a, b GroupRow) int {
		c := cmp.Compare(key.value(a), key.value(b))
		if s.Direction == Descending {
			return -c
		}
		return c
	})
}
