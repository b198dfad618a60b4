package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dashdoc/webmanager/internal/httpx"
	"github.com/dashdoc/webmanager/internal/notes"
)

var (
	companyID string
	pushNotes bool
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Post-sales voice notes",
}

var notesProcessCmd = &cobra.Command{
	Use:   "process <audio-file>...",
	Short: "Transcribe recordings and extract sales fields",
	Long: `Process transcribes each recording in order, extracts the sales fields
and merges them into one record. Later recordings only fill or update fields;
they never blank out something an earlier recording captured.

Example:
  webmanager notes process call-1.m4a call-2.m4a
  webmanager notes process call.m4a --company 123456 --push`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNotesProcess,
}

func init() {
	rootCmd.AddCommand(notesCmd)
	notesCmd.AddCommand(notesProcessCmd)

	notesProcessCmd.Flags().StringVar(&companyID, "company", "", "CRM company id")
	notesProcessCmd.Flags().BoolVar(&pushNotes, "push", false, "save the record to the CRM company")
}

func runNotesProcess(cmd *cobra.Command, args []string) error {
	if pushNotes {
		if err := notes.ValidateCompanyID(companyID); err != nil {
			return fmt.Errorf("--push needs --company: %w", err)
		}
	}

	d, err := buildDeps()
	if err != nil {
		return err
	}
	if pushNotes && d.hubspot == nil {
		return fmt.Errorf("--push needs hubspot.api_key")
	}

	proc, err := d.processor(cmd.Context())
	if err != nil {
		return fmt.Errorf("notes unavailable: %w", err)
	}
	schema := proc.Schema()
	sess := notes.NewSession(uuid.NewString(), schema)
	sess.CompanyID = companyID

	for _, path := range args {
		audio, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "⚙️  Processing %s...\n", path)
		}
		out, err := proc.ProcessAudio(cmd.Context(), sess, audio, filepath.Base(path))
		if err != nil {
			return fmt.Errorf("process %s: %w", path, err)
		}
		if out.Skipped {
			fmt.Fprintf(os.Stderr, "- %s: already processed, skipped\n", path)
			continue
		}
		if out.SummaryErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: summary failed for %s: %v\n", path, out.SummaryErr)
		}
		fmt.Fprintf(os.Stderr, "✓ %s: %d fields updated\n", path, len(out.Changed))
		if verbose {
			fmt.Fprintf(os.Stderr, "  transcript: %s\n", sess.LastTranscript())
		}
	}

	if sess.Summary != "" {
		fmt.Printf("Summary\n-------\n%s\n\n", sess.Summary)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, f := range schema.Fields {
		fmt.Fprintf(w, "%s\t%s\n", schema.Label(f.Name), displayValue(f, sess.Record))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	prog := notes.Completion(schema, sess.Record)
	fmt.Printf("\nCompletion: %d/%d fields (%.0f%%)\n", prog.Filled, prog.Total, prog.Percent())

	if !pushNotes {
		return nil
	}

	report, err := notes.Push(cmd.Context(), d.hubspot, schema, companyID, sess.Record)
	if err != nil {
		return err
	}
	for _, step := range report.Steps {
		switch step.Status {
		case notes.StepOK:
			fmt.Printf("✓ %s sent to HubSpot\n", step.Name)
		case notes.StepSkipped:
			fmt.Printf("- %s not sent (%s)\n", step.Name, step.Detail)
		default:
			fmt.Printf("✗ %s failed: %s\n", step.Name, httpx.Describe(step.Err))
		}
	}
	if !report.OK() {
		return fmt.Errorf("some CRM updates failed")
	}
	return nil
}

func displayValue(f notes.FieldSpec, r notes.Record) string {
	if notes.IsEmpty(f.Kind, r[f.Name]) {
		return "-"
	}
	if f.Kind == notes.KindInteger {
		n, _ := r.Int(f.Name)
		return strconv.FormatInt(n, 10)
	}
	return r.String(f.Name)
}
