package view

import (
	"strconv"
	"strings"

	"github.com/dashdoc/webmanager/internal/model"
)

// Linker builds outbound links for a story
type Linker interface {
	EditorURL(id int64) string
	PublicURL(slug string) string
}

// CellStatus is the state of one locale slot in a group row
type CellStatus string

const (
	CellPublished CellStatus = "published"
	CellDraft     CellStatus = "draft"
	CellMissing   CellStatus = "missing"
)

// LocaleCell is one locale column of a group row
type LocaleCell struct {
	Locale    string
	Status    CellStatus
	StoryID   int64
	Link      string
	Visitors  int64
	Pageviews int64
}

// GroupRow is the table projection of a LocaleGroup
type GroupRow struct {
	GroupID        string
	Name           string
	LocaleCount    int
	PublishedCount int
	DraftCount     int
	ContentTypes   string
	Cells          []LocaleCell // one per configured locale, in priority order
	Visitors       int64
	Pageviews      int64
}

// BuildGroupRows projects groups into rows, keeping their order
func BuildGroupRows(groups []model.LocaleGroup, locales []string, links Linker) []GroupRow {
	rows := make([]GroupRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, buildGroupRow(g, locales, links))
	}
	return rows
}

func buildGroupRow(g model.LocaleGroup, locales []string, links Linker) GroupRow {
	row := GroupRow{
		GroupID:     g.GroupID,
		LocaleCount: g.LocaleCount(),
		Cells:       make([]LocaleCell, 0, len(locales)),
	}

	var types []string
	for _, loc := range locales {
		rec, ok := g.Locales[loc]
		if !ok {
			row.Cells = append(row.Cells, LocaleCell{Locale: loc, Status: CellMissing})
			continue
		}

		if row.Name == "" {
			row.Name = rec.Name
		}
		if !contains(types, rec.ContentType) {
			types = append(types, rec.ContentType)
		}

		cell := LocaleCell{
			Locale:    loc,
			Status:    CellDraft,
			StoryID:   rec.ID,
			Visitors:  rec.Visitors,
			Pageviews: rec.Pageviews,
		}
		if rec.Published {
			cell.Status = CellPublished
			row.PublishedCount++
		} else {
			row.DraftCount++
		}
		if links != nil {
			cell.Link = links.EditorURL(rec.ID)
		}

		row.Visitors += rec.Visitors
		row.Pageviews += rec.Pageviews
		row.Cells = append(row.Cells, cell)
	}
	row.ContentTypes = strings.Join(types, ", ")

	return row
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// PageRow is the flat, one-story-per-row projection
type PageRow struct {
	GroupID     string
	Name        string
	ID          int64
	EditorLink  string
	PublicLink  string
	Published   bool
	ContentType string
	Slug        string
	Visitors    int64
	Pageviews   int64
}

// PageFilters narrows the page listing. Text filters match exactly; empty disables.
type PageFilters struct {
	GroupID       string
	Name          string
	ID            string
	PublishedOnly bool
	ContentType   string
	Slug          string
}

// Match reports whether a record passes every enabled filter
func (f PageFilters) Match(rec model.ContentRecord) bool {
	switch {
	case f.GroupID != "" && rec.GroupID != f.GroupID:
		return false
	case f.Name != "" && rec.Name != f.Name:
		return false
	case f.ID != "" && strconv.FormatInt(rec.ID, 10) != strings.TrimSpace(f.ID):
		return false
	case f.PublishedOnly && !rec.Published:
		return false
	case f.ContentType != "" && rec.ContentType != f.ContentType:
		return false
	case f.Slug != "" && rec.FullSlug != f.Slug:
		return false
	}
	return true
}

// BuildPageRows filters records and projects the survivors
func BuildPageRows(records []model.ContentRecord, f PageFilters, links Linker) []PageRow {
	rows := make([]PageRow, 0, len(records))
	for _, rec := range records {
		if !f.Match(rec) {
			continue
		}
		row := PageRow{
			GroupID:     rec.GroupID,
			Name:        rec.Name,
			ID:          rec.ID,
			Published:   rec.Published,
			ContentType: rec.ContentType,
			Slug:        rec.FullSlug,
			Visitors:    rec.Visitors,
			Pageviews:   rec.Pageviews,
		}
		if links != nil {
			row.EditorLink = links.EditorURL(rec.ID)
			row.PublicLink = links.PublicURL(rec.FullSlug)
		}
		rows = append(rows, row)
	}
	return rows
}
