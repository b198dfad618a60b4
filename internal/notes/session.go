package notes

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// SummarySeparator joins summaries of successive recordings
const SummarySeparator = "\n\n--- Additional Notes ---\n"

const fieldInvalidCode = "NOTES_FIELD_INVALID"

// Session is the per-user notes state. It lives only as long as the
// browser session or CLI invocation that owns it.
type Session struct {
	ID          string
	CompanyID   string
	CompanyName string

	Record        Record
	Transcripts   []string
	Summary       string
	LastAudioHash string

	// LastExtraction is the raw model output of the latest recording
	LastExtraction map[string]any
	// LastChanged lists fields updated by the latest recording
	LastChanged []string
}

// NewSession starts a session with an empty record
func NewSession(id string, s *Schema) *Session {
	return &Session{ID: id, Record: s.Empty()}
}

// Reset clears everything except the session id
func (sess *Session) Reset(s *Schema) {
	*sess = Session{ID: sess.ID, Record: s.Empty()}
}

// LastTranscript returns the most recent transcript, or ""
func (sess *Session) LastTranscript() string {
	if len(sess.Transcripts) == 0 {
		return ""
	}
	return sess.Transcripts[len(sess.Transcripts)-1]
}

// AppendSummary accumulates summary text across recordings
func (sess *Session) AppendSummary(summary string) {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return
	}
	if sess.Summary == "" {
		sess.Summary = summary
		return
	}
	sess.Summary += SummarySeparator + summary
}

// SetField applies a manual form edit. Unlike reconciliation, an explicit
// edit may clear a field.
func (sess *Session) SetField(s *Schema, name, raw string) error {
	f, ok := s.Field(name)
	if !ok {
		return fieldError(name, fmt.Errorf("unknown field"))
	}
	raw = strings.TrimSpace(raw)

	switch {
	case f.Kind == KindInteger:
		if raw == "" {
			sess.Record[name] = UnsetInteger
			return nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return fieldError(name, fmt.Errorf("%q is not a whole number", raw))
		}
		sess.Record[name] = n
	case f.AllowList:
		if raw != "" && !s.Allowed(raw) {
			return fieldError(name, fmt.Errorf("%q is not an allowed value", raw))
		}
		sess.Record[name] = raw
	case f.Pattern != "":
		if ok, _ := regexp.MatchString(f.Pattern, raw); !ok {
			return fieldError(name, fmt.Errorf("%q does not match the expected format", raw))
		}
		sess.Record[name] = raw
	default:
		sess.Record[name] = raw
	}
	return nil
}

func fieldError(name string, err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid value for "+name).
		WithTextCode(fieldInvalidCode)
}
