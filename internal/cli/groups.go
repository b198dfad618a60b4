package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dashdoc/webmanager/internal/grouping"
	"github.com/dashdoc/webmanager/internal/model"
	"github.com/dashdoc/webmanager/internal/pipeline"
	"github.com/dashdoc/webmanager/internal/view"
)

var (
	rangeStart   string
	rangeEnd     string
	groupFilters grouping.Filters
	sortKey      string
	sortAsc      bool
	page         int
	perPage      int
	showGroupID  bool
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List pages grouped by language",
	Long: `Groups lists every page group (translations sharing a group_id) with
its locale coverage and the visits of the selected date range.

Example:
  webmanager groups --missing --sort locales --asc
  webmanager groups --content-type blog --published --start 2025-01-01 --end 2025-01-31`,
	Args: cobra.NoArgs,
	RunE: runGroups,
}

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&rangeStart, "start", "", "analytics start date, YYYY-MM-DD (default: 30 days ago)")
	cmd.Flags().StringVar(&rangeEnd, "end", "", "analytics end date, YYYY-MM-DD (default: today)")
}

func init() {
	rootCmd.AddCommand(groupsCmd)

	addRangeFlags(groupsCmd)
	groupsCmd.Flags().BoolVar(&groupFilters.PublishedOnly, "published", false, "only groups with a published locale")
	groupsCmd.Flags().BoolVar(&groupFilters.DraftOnly, "draft", false, "only groups with a draft locale")
	groupsCmd.Flags().BoolVar(&groupFilters.MissingLocalesOnly, "missing", false, "only groups missing a locale")
	groupsCmd.Flags().StringVar(&groupFilters.NameContains, "name", "", "page name contains (case-insensitive)")
	groupsCmd.Flags().StringVar(&groupFilters.ContentType, "content-type", "", "exact content type")
	groupsCmd.Flags().StringVar(&sortKey, "sort", "visitors", "sort by: visitors, pageviews, locales, published, draft")
	groupsCmd.Flags().BoolVar(&sortAsc, "asc", false, "sort ascending")
	groupsCmd.Flags().IntVar(&page, "page", 1, "page number")
	groupsCmd.Flags().IntVar(&perPage, "per-page", view.DefaultPageSize, "groups per page")
	groupsCmd.Flags().BoolVar(&showGroupID, "show-group-id", false, "include the group id column")
}

func dateRange() model.DateRange {
	dr := model.DefaultDateRange(time.Now())
	if rangeStart != "" {
		dr.Start = rangeStart
	}
	if rangeEnd != "" {
		dr.End = rangeEnd
	}
	return dr
}

func loadDataset(ctx context.Context, d *deps) (*pipeline.Dataset, error) {
	ds, err := d.pipeline.Load(ctx, dateRange())
	if err != nil {
		return nil, err
	}
	if ds.VisitsErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (visits shown as 0)\n", ds.VisitsErr)
	}
	return ds, nil
}

func runGroups(cmd *cobra.Command, args []string) error {
	key, err := view.ParseSortKey(sortKey)
	if err != nil {
		return err
	}

	d, err := buildDeps()
	if err != nil {
		return err
	}
	ds, err := loadDataset(cmd.Context(), d)
	if err != nil {
		return err
	}

	locales := d.cfg.Locales
	s := ds.Summary
	fmt.Printf("Groups: %d  Pages: %d  Published: %d  Coverage: %s  Visitors: %d  Pageviews: %d\n\n",
		s.Groups, s.Records, s.Published, view.FormatPercent(s.Coverage), s.Visitors, s.Pageviews)

	filtered := grouping.Apply(ds.Grouped.Groups, groupFilters, len(locales))
	rows := view.BuildGroupRows(filtered, locales, d.storyblok)
	dir := view.Descending
	if sortAsc {
		dir = view.Ascending
	}
	view.SortGroupRows(rows, view.Sort{Key: key, Direction: dir})

	p := view.Paginate(len(rows), perPage, page)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	header := []string{}
	if showGroupID {
		header = append(header, "GROUP ID")
	}
	header = append(header, "NAME", "LOCALES", "PUBLISHED", "DRAFT", "CONTENT TYPE")
	for _, loc := range locales {
		header = append(header, strings.ToUpper(loc))
	}
	header = append(header, "VISITORS", "PAGEVIEWS")
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, row := range view.Slice(rows, p) {
		cols := []string{}
		if showGroupID {
			cols = append(cols, row.GroupID)
		}
		cols = append(cols, row.Name,
			fmt.Sprint(row.LocaleCount), fmt.Sprint(row.PublishedCount), fmt.Sprint(row.DraftCount),
			row.ContentTypes)
		for _, cell := range row.Cells {
			cols = append(cols, cellLabel(cell.Status))
		}
		cols = append(cols, view.FormatCount(row.Visitors), view.FormatCount(row.Pageviews))
		fmt.Fprintln(w, strings.Join(cols, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if p.TotalItems == 0 {
		fmt.Fprintln(os.Stderr, "\nNo groups match the current filters.")
		return nil
	}
	fmt.Fprintf(os.Stderr, "\nShowing %d-%d of %d groups (page %d of %d)\n", p.Start+1, p.End, p.TotalItems, p.Number, p.TotalPages)
	if ds.Grouped.DroppedDuplicates > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d duplicate locale records were overwritten while grouping\n", ds.Grouped.DroppedDuplicates)
	}
	return nil
}

func cellLabel(s view.CellStatus) string {
	switch s {
	case view.CellPublished:
		return "live"
	case view.CellDraft:
		return "draft"
	default:
		return "-"
	}
}
