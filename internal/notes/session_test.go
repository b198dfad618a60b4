package notes

import (
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

func TestSession_AppendSummary(t *testing.T) {
	sess := NewSession("s1", SalesSchema(nil))

	sess.AppendSummary("first")
	sess.AppendSummary("  ")
	sess.AppendSummary("second")

	want := "first" + SummarySeparator + "second"
	if sess.Summary != want {
		t.Errorf("expected %q, got %q", want, sess.Summary)
	}
}

func TestSession_LastTranscript(t *testing.T) {
	sess := NewSession("s1", SalesSchema(nil))
	if got := sess.LastTranscript(); got != "" {
		t.Errorf("expected no transcript, got %q", got)
	}

	sess.Transcripts = append(sess.Transcripts, "first call", "second call")
	if got := sess.LastTranscript(); got != "second call" {
		t.Errorf("expected latest transcript, got %q", got)
	}
}

func TestSession_Reset(t *testing.T) {
	s := SalesSchema(nil)
	sess := NewSession("s1", s)
	sess.CompanyID = "123"
	sess.Transcripts = []string{"a"}
	sess.LastAudioHash = "abc"
	sess.Record["warning_note"] = "x"

	sess.Reset(s)

	if sess.ID != "s1" {
		t.Errorf("expected id to survive reset, got %q", sess.ID)
	}
	if sess.CompanyID != "" || len(sess.Transcripts) != 0 || sess.LastAudioHash != "" {
		t.Errorf("expected state to be cleared, got %+v", sess)
	}
	if sess.Record["warning_note"] != "" {
		t.Errorf("expected empty record, got %v", sess.Record)
	}
}

func TestSession_SetField(t *testing.T) {
	s := SalesSchema(testTMS)

	tests := []struct {
		name    string
		field   string
		raw     string
		want    any
		wantErr bool
	}{
		{"string", "warning_note", "  risky  ", "risky", false},
		{"clear string", "warning_note", "", "", false},
		{"integer", "number_truckers", "12", int64(12), false},
		{"zero integer", "number_truckers", "0", int64(0), false},
		{"clear integer", "number_truckers", "", UnsetInteger, false},
		{"negative integer", "number_truckers", "-4", nil, true},
		{"non numeric", "number_truckers", "many", nil, true},
		{"allowed tms", "current_tms", "SystemB", "SystemB", false},
		{"unlisted tms", "current_tms", "Other", nil, true},
		{"valid date", "start_date_constraints", "05/06/2025", "05/06/2025", false},
		{"invalid date", "start_date_constraints", "2025-06-05", nil, true},
		{"unknown field", "nope", "x", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := NewSession("s", s)
			err := sess.SetField(s, tt.field, tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if err != nil {
				if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
					t.Errorf("expected validation category, got %v", err)
				}
				return
			}
			if sess.Record[tt.field] != tt.want {
				t.Errorf("expected %v, got %v", tt.want, sess.Record[tt.field])
			}
		})
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	options := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"}
	s := SalesSchema(options)
	today := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	bare := BuildSystemPrompt(s, nil, today)
	if !strings.Contains(bare, "TODAY IS 2025-03-14") {
		t.Errorf("expected today's date in prompt")
	}
	if strings.Contains(bare, "CURRENT ACCUMULATED DATA") {
		t.Errorf("expected no accumulated section without a record")
	}

	rec := s.Empty()
	rec["warning_note"] = "late payer"
	full := BuildSystemPrompt(s, rec, today)

	if !strings.Contains(full, `"warning_note": "late payer"`) {
		t.Errorf("expected accumulated data in prompt:\n%s", full)
	}
	if !strings.Contains(full, "A, B, C, D, E, F, G, H, I, J...") {
		t.Errorf("expected first ten options with ellipsis:\n%s", full)
	}
	if strings.Contains(full, ", K") {
		t.Errorf("expected options past the tenth to be omitted")
	}
}
