package grouping

import (
	"strings"

	"github.com/dashdoc/webmanager/internal/model"
)

// Filters narrows a group listing. Zero values disable a filter;
// enabled filters combine with AND.
type Filters struct {
	PublishedOnly      bool   // at least one published locale
	DraftOnly          bool   // at least one draft locale
	MissingLocalesOnly bool   // fewer locales than configured
	NameContains       string // case-insensitive substring of any locale's name
	ContentType        string // exact content type of any locale
}

// IsZero reports whether no filter is enabled
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// Match reports whether a single group passes every enabled filter
func (f Filters) Match(g model.LocaleGroup, localeCount int) bool {
	if f.PublishedOnly && g.PublishedCount() == 0 {
		return false
	}
	if f.DraftOnly && g.DraftCount() == 0 {
		return false
	}
	if f.MissingLocalesOnly && g.LocaleCount() >= localeCount {
		return false
	}
	if f.NameContains != "" && !anyLocale(g, func(rec model.ContentRecord) bool {
		return strings.Contains(strings.ToLower(rec.Name), strings.ToLower(f.NameContains))
	}) {
		return false
	}
	if f.ContentType != "" && !anyLocale(g, func(rec model.ContentRecord) bool {
		return rec.ContentType == f.ContentType
	}) {
		return false
	}
	return true
}

// Apply returns the groups passing f, preserving order
func Apply(groups []model.LocaleGroup, f Filters, localeCount int) []model.LocaleGroup {
	if f.IsZero() {
		return groups
	}
	out := make([]model.LocaleGroup, 0, len(groups))
	for _, g := range groups {
		if f.Match(g, localeCount) {
			out = append(out, g)
		}
	}
	return out
}

func anyLocale(g model.LocaleGroup, pred func(model.ContentRecord) bool) bool {
	for _, rec := range g.Locales {
		if pred(rec) {
			return true
		}
	}
	return false
}
