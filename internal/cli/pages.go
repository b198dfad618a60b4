package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dashdoc/webmanager/internal/httpx"
	"github.com/dashdoc/webmanager/internal/storyblok"
	"github.com/dashdoc/webmanager/internal/view"
)

var pageFilters view.PageFilters

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "List every page with its group and visits",
	Long: `Pages lists stories one per row. Text filters match exactly.

Example:
  webmanager pages --group-id 4b0e...
  webmanager pages --slug fr/tarifs`,
	Args: cobra.NoArgs,
	RunE: runPages,
}

var pagesGroupCmd = &cobra.Command{
	Use:   "group <page-id>...",
	Short: "Assign one new group id to the given pages",
	Long: `Group gives every listed page the same freshly generated group_id,
marking them as translations of one another. Pages are updated one by one;
the command reports which ones failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPagesGroup,
}

func init() {
	rootCmd.AddCommand(pagesCmd)
	pagesCmd.AddCommand(pagesGroupCmd)

	addRangeFlags(pagesCmd)
	pagesCmd.Flags().StringVar(&pageFilters.GroupID, "group-id", "", "exact group id")
	pagesCmd.Flags().StringVar(&pageFilters.Name, "name", "", "exact page name")
	pagesCmd.Flags().StringVar(&pageFilters.ID, "id", "", "exact page id")
	pagesCmd.Flags().BoolVar(&pageFilters.PublishedOnly, "published", false, "only published pages")
	pagesCmd.Flags().StringVar(&pageFilters.ContentType, "content-type", "", "exact content type")
	pagesCmd.Flags().StringVar(&pageFilters.Slug, "slug", "", "exact full slug")
}

func runPages(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	ds, err := loadDataset(cmd.Context(), d)
	if err != nil {
		return err
	}

	rows := view.BuildPageRows(ds.Records, pageFilters, d.storyblok)
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "No pages found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGROUP ID\tNAME\tPUBLISHED\tCONTENT TYPE\tSLUG\tVISITORS\tPAGEVIEWS")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\t%s\t%s\t%s\n",
			r.ID, r.GroupID, r.Name, r.Published, r.ContentType, r.Slug,
			view.FormatCount(r.Visitors), view.FormatCount(r.Pageviews))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "\n%d pages\n", len(rows))
	return nil
}

func runPagesGroup(cmd *cobra.Command, args []string) error {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid page id %q", a)
		}
		ids = append(ids, id)
	}

	d, err := buildDeps()
	if err != nil {
		return err
	}

	outcome, err := d.pipeline.GroupPages(cmd.Context(), ids)
	if err != nil {
		return err
	}

	for _, f := range outcome.Failed {
		fmt.Fprintf(os.Stderr, "✗ Error updating page %d: %s\n", f.ID, httpx.Describe(f.Err))
	}

	switch outcome.Status() {
	case storyblok.GroupFull:
		fmt.Printf("✓ Pages grouped successfully with group_id: %s\n", outcome.GroupID)
		return nil
	case storyblok.GroupPartial:
		fmt.Printf("⚠ Grouped %d pages with group_id %s\n", len(outcome.Updated), outcome.GroupID)
		return fmt.Errorf("failed to group pages: %s", joinIDs(outcome.FailedIDs()))
	default:
		return fmt.Errorf("failed to group any pages, check the page ids and try again")
	}
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
