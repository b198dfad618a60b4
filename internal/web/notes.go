package web

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/dashdoc/webmanager/internal/httpx"
	"github.com/dashdoc/webmanager/internal/notes"
)

type fieldView struct {
	Name    string
	Label   string
	Value   string
	Integer bool
	Options []string // allow-list, empty for free text
	Filled  bool
}

type notesPage struct {
	layoutData
	Enabled     bool
	CRMEnabled  bool
	CompanyID   string
	CompanyName string
	CompanyURL  string
	Fields      []fieldView
	Progress    notes.Progress
	Percent     string
	Transcripts []string
	Summary     string
	Outcome     *notes.Outcome
	Push        *notes.PushReport
	Record      notes.Record
	Extraction  map[string]any
}

func (s *Server) notesData(c *fiber.Ctx, sess *notes.Session) notesPage {
	data := notesPage{
		layoutData:  s.layout(c, "Post-Sales Notes", "/notes"),
		Enabled:     s.notes != nil,
		CRMEnabled:  s.crm != nil,
		CompanyID:   sess.CompanyID,
		CompanyName: sess.CompanyName,
		Transcripts: sess.Transcripts,
		Summary:     sess.Summary,
	}
	if s.crm != nil && sess.CompanyID != "" {
		data.CompanyURL = s.crm.CompanyURL(sess.CompanyID)
	}

	data.Progress = notes.Completion(s.schema, sess.Record)
	data.Percent = fmt.Sprintf("%.0f%%", data.Progress.Percent())

	for _, f := range s.schema.Fields {
		fv := fieldView{
			Name:    f.Name,
			Label:   s.schema.Label(f.Name),
			Integer: f.Kind == notes.KindInteger,
			Filled:  !notes.IsEmpty(f.Kind, sess.Record[f.Name]),
		}
		if fv.Integer {
			if n, ok := sess.Record.Int(f.Name); ok && n >= 0 {
				fv.Value = strconv.FormatInt(n, 10)
			}
		} else {
			fv.Value = sess.Record.String(f.Name)
		}
		if f.AllowList {
			fv.Options = s.schema.AllowList
		}
		data.Fields = append(data.Fields, fv)
	}

	if data.Dev {
		data.Record = sess.Record
		data.Extraction = sess.LastExtraction
	}
	if !data.Enabled {
		data.Messages = append(data.Messages, Message{Level: "warning", Text: "Transcription is not configured: set llm.api_key to record notes."})
	}
	return data
}

func (s *Server) handleNotes(c *fiber.Ctx) error {
	sess, unlock := s.session(c)
	defer unlock()
	return render(c, fiber.StatusOK, Notes(s.notesData(c, sess.Notes)))
}

func (s *Server) handleNotesCompany(c *fiber.Ctx) error {
	sess, unlock := s.session(c)
	defer unlock()

	id := strings.TrimSpace(c.FormValue("company_id"))
	var msgs []Message

	switch {
	case id == "":
		sess.Notes.CompanyID, sess.Notes.CompanyName = "", ""
		msgs = append(msgs, Message{Level: "warning", Text: "No company HubSpot ID provided"})
	case notes.ValidateCompanyID(id) != nil:
		msgs = append(msgs, Message{Level: "error", Text: notes.ValidateCompanyID(id).Error()})
	default:
		sess.Notes.CompanyID = id
		sess.Notes.CompanyName = ""
		if s.crm != nil {
			company, err := s.crm.GetCompany(c.UserContext(), id)
			switch {
			case httpx.StatusCode(err) == fiber.StatusNotFound:
				sess.Notes.CompanyID = ""
				msgs = append(msgs, Message{Level: "error", Text: "No HubSpot company with ID " + id})
			case err != nil:
				s.log.Warn("company lookup failed", "company_id", id, "error", err)
				msgs = append(msgs, Message{Level: "error", Text: "Could not load company: " + httpx.Describe(err)})
			default:
				sess.Notes.CompanyName = company.Name()
				msgs = append(msgs, Message{Level: "success", Text: company.Name()})
			}
		}
	}

	data := s.notesData(c, sess.Notes)
	data.Messages = append(data.Messages, msgs...)
	return render(c, fiber.StatusOK, Notes(data))
}

func (s *Server) handleNotesAudio(c *fiber.Ctx) error {
	sess, unlock := s.session(c)
	defer unlock()

	if s.notes == nil {
		return render(c, fiber.StatusServiceUnavailable, Notes(s.notesData(c, sess.Notes)))
	}

	audio, name, err := readAudio(c)
	if err != nil {
		data := s.notesData(c, sess.Notes)
		data.Messages = append(data.Messages, Message{Level: "error", Text: err.Error()})
		return render(c, fiber.StatusBadRequest, Notes(data))
	}

	outcome, err := s.notes.ProcessAudio(c.UserContext(), sess.Notes, audio, name)

	data := s.notesData(c, sess.Notes)
	data.Outcome = outcome
	switch {
	case err != nil:
		s.log.Error("audio processing failed", "session", sess.ID, "error", err)
		data.Messages = append(data.Messages, processMessage(err))
	case outcome.Skipped:
		data.Messages = append(data.Messages, Message{Level: "info", Text: "This audio has already been processed. Record new audio to add more information."})
	default:
		if outcome.SummaryErr != nil {
			data.Messages = append(data.Messages, Message{Level: "warning", Text: "Error generating summary: " + outcome.SummaryErr.Error()})
		}
		text := "No new information found in this recording."
		if len(outcome.Changed) > 0 {
			labels := make([]string, len(outcome.Changed))
			for i, name := range outcome.Changed {
				labels[i] = s.schema.Label(name)
			}
			text = "Updated: " + strings.Join(labels, ", ")
		}
		data.Messages = append(data.Messages, Message{Level: "success", Text: text})
	}
	return render(c, fiber.StatusOK, Notes(data))
}

func readAudio(c *fiber.Ctx) ([]byte, string, error) {
	fh, err := c.FormFile("audio")
	if err != nil {
		return nil, "", fmt.Errorf("no audio file uploaded")
	}
	if fh.Size > maxAudioBytes {
		return nil, "", fmt.Errorf("audio file is larger than %d MB", maxAudioBytes>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	audio, err := io.ReadAll(io.LimitReader(f, maxAudioBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if len(audio) == 0 {
		return nil, "", fmt.Errorf("uploaded audio is empty")
	}
	return audio, fh.Filename, nil
}

func processMessage(err error) Message {
	switch {
	case goerrors.IsCategory(err, goerrors.CategoryValidation):
		return Message{Level: "error", Text: "Error extracting structured data: the response did not match the expected fields. Previous notes were kept."}
	case errors.Is(err, httpx.ErrDecode):
		return Message{Level: "error", Text: "Error parsing model response: " + err.Error()}
	default:
		return Message{Level: "error", Text: "Error processing audio: " + err.Error()}
	}
}

func (s *Server) handleNotesFields(c *fiber.Ctx) error {
	sess, unlock := s.session(c)
	defer unlock()

	var msgs []Message
	status := fiber.StatusOK
	for _, f := range s.schema.Fields {
		raw, ok := formField(c, f.Name)
		if !ok {
			continue
		}
		if err := sess.Notes.SetField(s.schema, f.Name, raw); err != nil {
			status = fiber.StatusBadRequest
			msgs = append(msgs, Message{Level: "error", Text: s.schema.Label(f.Name) + ": " + rootMessage(err)})
		}
	}
	if status == fiber.StatusOK {
		msgs = append(msgs, Message{Level: "success", Text: "Notes updated"})
	}

	data := s.notesData(c, sess.Notes)
	data.Messages = append(data.Messages, msgs...)
	return render(c, status, Notes(data))
}

// formField distinguishes an absent field from one submitted empty
func formField(c *fiber.Ctx, name string) (string, bool) {
	if args := c.Context().PostArgs(); args.Has(name) {
		return string(args.Peek(name)), true
	}
	if form, err := c.MultipartForm(); err == nil {
		if v, ok := form.Value[name]; ok && len(v) > 0 {
			return v[0], true
		}
	}
	return "", false
}

// rootMessage strips go-errors wrapping down to the underlying cause
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func (s *Server) handleNotesReset(c *fiber.Ctx) error {
	sess, unlock := s.session(c)
	defer unlock()

	sess.Notes.Reset(s.schema)
	data := s.notesData(c, sess.Notes)
	data.Messages = append(data.Messages, Message{Level: "info", Text: "Started over"})
	return render(c, fiber.StatusOK, Notes(data))
}

func (s *Server) handleNotesPush(c *fiber.Ctx) error {
	sess, unlock := s.session(c)
	defer unlock()

	data := s.notesData(c, sess.Notes)
	if s.crm == nil {
		data.Messages = append(data.Messages, Message{Level: "error", Text: "CRM is not configured"})
		return render(c, fiber.StatusServiceUnavailable, Notes(data))
	}

	report, err := notes.Push(c.UserContext(), s.crm, s.schema, sess.Notes.CompanyID, sess.Notes.Record)
	if err != nil {
		data.Messages = append(data.Messages, Message{Level: "error", Text: "Set a company HubSpot ID before saving: " + rootMessage(err)})
		return render(c, fiber.StatusBadRequest, Notes(data))
	}

	data.Push = &report
	for _, step := range report.Steps {
		switch step.Status {
		case notes.StepOK:
			data.Messages = append(data.Messages, Message{Level: "success", Text: step.Name + " sent to HubSpot"})
		case notes.StepSkipped:
			data.Messages = append(data.Messages, Message{Level: "warning", Text: step.Name + " not sent to HubSpot (" + step.Detail + ")"})
		default:
			s.log.Error("crm push step failed", "step", step.Name, "company_id", sess.Notes.CompanyID, "error", step.Err)
			data.Messages = append(data.Messages, Message{Level: "error", Text: "Error sending " + step.Name + " to HubSpot: " + httpx.Describe(step.Err)})
		}
	}
	return render(c, fiber.StatusOK, Notes(data))
}
