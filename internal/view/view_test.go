package view

import (
	"fmt"
	"math"
	"testing"

	"github.com/dashdoc/webmanager/internal/grouping"
	"github.com/dashdoc/webmanager/internal/model"
)

type stubLinks struct{}

func (stubLinks) EditorURL(id int64) string    { return fmt.Sprintf("https://editor/%d", id) }
func (stubLinks) PublicURL(slug string) string { return "https://site/" + slug }

var twoLocales = []string{"en", "fr"}

func coverageFixture() []model.LocaleGroup {
	records := []model.ContentRecord{
		{ID: 1, GroupID: "g1", FullSlug: "en/x", Published: true},
		{ID: 2, GroupID: "g1", FullSlug: "fr/x"},
		{ID: 3, GroupID: "g2", FullSlug: "en/y", Published: true},
	}
	return grouping.Group(records, twoLocales).Groups
}

func TestSummarize_Coverage(t *testing.T) {
	s := Summarize(coverageFixture(), len(twoLocales))

	if s.Groups != 2 {
		t.Errorf("Expected 2 groups, got %d", s.Groups)
	}
	if s.Records != 3 {
		t.Errorf("Expected 3 records, got %d", s.Records)
	}
	if s.Published != 2 {
		t.Errorf("Expected 2 published, got %d", s.Published)
	}
	if s.Coverage != 75.0 {
		t.Errorf("Expected coverage 75.0, got %f", s.Coverage)
	}
	if got := FormatPercent(s.Coverage); got != "75.0%" {
		t.Errorf("Expected 75.0%%, got %s", got)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, 5)
	if s.Groups != 0 || s.Coverage != 0 {
		t.Errorf("Expected zero summary, got %+v", s)
	}
}

func TestBuildGroupRows(t *testing.T) {
	records := []model.ContentRecord{
		{ID: 10, GroupID: "g", FullSlug: "fr/a", Name: "Tarifs", ContentType: "page", Visitors: 2, Pageviews: 3},
		{ID: 11, GroupID: "g", FullSlug: "en/a", Name: "Pricing", Published: true, ContentType: "landing", Visitors: 5, Pageviews: 8},
	}
	groups := grouping.Group(records, []string{"en", "en-US", "fr"}).Groups
	rows := BuildGroupRows(groups, []string{"en", "en-US", "fr"}, stubLinks{})

	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	row := rows[0]

	if row.Name != "Pricing" {
		t.Errorf("Expected name from highest priority locale, got %q", row.Name)
	}
	if row.ContentTypes != "landing, page" {
		t.Errorf("Expected content types in locale order, got %q", row.ContentTypes)
	}
	if row.LocaleCount != 2 || row.PublishedCount != 1 || row.DraftCount != 1 {
		t.Errorf("Unexpected counts: %+v", row)
	}
	if row.Visitors != 7 || row.Pageviews != 11 {
		t.Errorf("Expected totals 7/11, got %d/%d", row.Visitors, row.Pageviews)
	}

	want := []CellStatus{CellPublished, CellMissing, CellDraft}
	for i, cell := range row.Cells {
		if cell.Status != want[i] {
			t.Errorf("Cell %d: expected %s, got %s", i, want[i], cell.Status)
		}
	}
	if row.Cells[0].Link != "https://editor/11" {
		t.Errorf("Unexpected editor link %q", row.Cells[0].Link)
	}
}

func TestBuildPageRows_Filters(t *testing.T) {
	records := []model.ContentRecord{
		{ID: 1, GroupID: "g1", Name: "Pricing", FullSlug: "en/pricing", Published: true, ContentType: "page"},
		{ID: 2, GroupID: "g1", Name: "Tarifs", FullSlug: "fr/tarifs", ContentType: "page"},
		{ID: 3, Name: "Blog", FullSlug: "en/blog", Published: true, ContentType: "blog"},
	}

	tests := []struct {
		name string
		f    PageFilters
		want []int64
	}{
		{"none", PageFilters{}, []int64{1, 2, 3}},
		{"group", PageFilters{GroupID: "g1"}, []int64{1, 2}},
		{"name exact", PageFilters{Name: "Pricing"}, []int64{1}},
		{"name partial does not match", PageFilters{Name: "Pric"}, nil},
		{"id", PageFilters{ID: "3"}, []int64{3}},
		{"published", PageFilters{PublishedOnly: true}, []int64{1, 3}},
		{"content type", PageFilters{ContentType: "page"}, []int64{1, 2}},
		{"slug", PageFilters{Slug: "fr/tarifs"}, []int64{2}},
		{"combined", PageFilters{GroupID: "g1", PublishedOnly: true}, []int64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := BuildPageRows(records, tt.f, stubLinks{})
			if len(rows) != len(tt.want) {
				t.Fatalf("Expected %d rows, got %d", len(tt.want), len(rows))
			}
			for i, id := range tt.want {
				if rows[i].ID != id {
					t.Errorf("Row %d: expected id %d, got %d", i, id, rows[i].ID)
				}
			}
		})
	}

	rows := BuildPageRows(records[:1], PageFilters{}, stubLinks{})
	if rows[0].PublicLink != "https://site/en/pricing" || rows[0].EditorLink != "https://editor/1" {
		t.Errorf("Unexpected links: %+v", rows[0])
	}
}

func TestSortGroupRows_Stable(t *testing.T) {
	rows := []GroupRow{
		{GroupID: "a", LocaleCount: 2, Visitors: 5},
		{GroupID: "b", LocaleCount: 3, Visitors: 5},
		{GroupID: "c", LocaleCount: 2, Visitors: 9},
		{GroupID: "d", LocaleCount: 1, Visitors: 0},
	}

	tests := []struct {
		sort Sort
		want string
	}{
		{Sort{Key: SortVisitors, Direction: Descending}, "cabd"},
		{Sort{Key: SortVisitors, Direction: Ascending}, "dabc"},
		{Sort{Key: SortLocales, Direction: Descending}, "bacd"},
		{Sort{Key: SortLocales, Direction: Ascending}, "dacb"},
		{Sort{}, "cabd"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s-%d", tt.sort.Key, tt.sort.Direction), func(t *testing.T) {
			sorted := append([]GroupRow(nil), rows...)
			SortGroupRows(sorted, tt.sort)
			got := ""
			for _, r := range sorted {
				got += r.GroupID
			}
			if got != tt.want {
				t.Errorf("Expected order %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParseSortKey(t *testing.T) {
	if k, err := ParseSortKey(""); err != nil || k != SortVisitors {
		t.Errorf("Expected default visitors, got %q, %v", k, err)
	}
	if k, err := ParseSortKey(" Draft "); err != nil || k != SortDraft {
		t.Errorf("Expected draft, got %q, %v", k, err)
	}
	if _, err := ParseSortKey("name"); err == nil {
		t.Error("Expected error for unknown key")
	}
}

func TestPaginate(t *testing.T) {
	rows := make([]int, 23)
	for i := range rows {
		rows[i] = i
	}

	p := Paginate(len(rows), 10, 3)
	if p.TotalPages != 3 {
		t.Errorf("Expected 3 pages, got %d", p.TotalPages)
	}
	got := Slice(rows, p)
	if len(got) != 3 || got[0] != 20 || got[2] != 22 {
		t.Errorf("Expected rows 20-22, got %v", got)
	}
	if p.HasNext() || !p.HasPrev() {
		t.Errorf("Unexpected navigation for last page: %+v", p)
	}

	p = Paginate(len(rows), 10, 5)
	if p.Number != 1 {
		t.Errorf("Expected reset to page 1, got %d", p.Number)
	}
	if got := Slice(rows, p); len(got) != 10 || got[0] != 0 {
		t.Errorf("Expected first 10 rows after reset, got %v", got)
	}

	p = Paginate(0, 10, 2)
	if p.Number != 1 || len(Slice(rows[:0], p)) != 0 {
		t.Errorf("Expected empty first page, got %+v", p)
	}

	p = Paginate(5, 0, 1)
	if p.Size != DefaultPageSize || p.End != 5 {
		t.Errorf("Expected default size window, got %+v", p)
	}
}

func TestWholeNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
	}{
		{"nil", nil, 0},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 0},
		{"fraction", 12.9, 12},
		{"int", 7, 7},
		{"int64", int64(42), 42},
		{"numeric string", "15", 15},
		{"NA string", "NA", 0},
		{"unsupported", struct{}{}, 0},
		{"huge float", 1e20, math.MaxInt64},
		{"huge string", "1e20", math.MaxInt64},
		{"just past int64", 9.3e18, math.MaxInt64},
		{"huge negative", -1e20, math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WholeNumber(tt.in); got != tt.want {
				t.Errorf("WholeNumber(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}

	if got := FormatCount(nil); got != "0" {
		t.Errorf("Expected nil to render as 0, got %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	tests := map[string]string{
		"":                          "N/A",
		"2024-03-05T14:07:00.000Z":  "2024-03-05 14:07",
		"2024-03-05T14:07:00+01:00": "2024-03-05 14:07",
		"2024-03-05":                "2024-03-05 00:00",
		"yesterday":                 "yesterday",
	}
	for in, want := range tests {
		if got := FormatDate(in); got != want {
			t.Errorf("FormatDate(%q) = %q, want %q", in, got, want)
		}
	}
}
