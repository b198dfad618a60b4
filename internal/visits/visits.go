package visits

import (
	"strings"

	"github.com/dashdoc/webmanager/internal/model"
)

// NormalizePath turns a content slug into an analytics page path:
// a leading "/" is added and exactly one trailing "/" removed.
func NormalizePath(slug string) string {
	slug = strings.TrimSuffix(slug, "/")
	return "/" + slug
}

// Lookup returns the visitors and pageviews recorded for a record.
// The first metric whose page equals the normalized slug wins; no match is (0, 0).
func Lookup(rec model.ContentRecord, metrics []model.VisitMetric) (int64, int64) {
	path := NormalizePath(rec.FullSlug)
	for _, m := range metrics {
		if m.Page == path {
			return m.Visitors, m.Pageviews
		}
	}
	return 0, 0
}

// Index is a first-match-wins lookup table over a metric set
type Index map[string]model.VisitMetric

// NewIndex builds an index keeping the first metric per page
func NewIndex(metrics []model.VisitMetric) Index {
	idx := make(Index, len(metrics))
	for _, m := range metrics {
		if _, ok := idx[m.Page]; !ok {
			idx[m.Page] = m
		}
	}
	return idx
}

// Lookup behaves like the package-level Lookup
func (idx Index) Lookup(rec model.ContentRecord) (int64, int64) {
	m, ok := idx[NormalizePath(rec.FullSlug)]
	if !ok {
		return 0, 0
	}
	return m.Visitors, m.Pageviews
}

// Enrich returns copies of records with Visitors and Pageviews filled in
func Enrich(records []model.ContentRecord, metrics []model.VisitMetric) []model.ContentRecord {
	idx := NewIndex(metrics)
	out := make([]model.ContentRecord, len(records))
	for i, rec := range records {
		rec.Visitors, rec.Pageviews = idx.Lookup(rec)
		out[i] = rec
	}
	return out
}
