package notes

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dashdoc/webmanager/internal/llm"
	"github.com/dashdoc/webmanager/internal/logging"
)

// Processor turns one audio recording into reconciled session data
type Processor struct {
	provider  llm.Provider
	schema    *Schema
	validator *Validator
	log       logging.Logger
	now       func() time.Time
}

// NewProcessor creates a processor for schema s
func NewProcessor(provider llm.Provider, s *Schema, log logging.Logger) (*Processor, error) {
	if provider == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}
	validator, err := NewValidator(s)
	if err != nil {
		return nil, err
	}
	return &Processor{
		provider:  provider,
		schema:    s,
		validator: validator,
		log:       logging.OrNop(log),
		now:       time.Now,
	}, nil
}

// Schema returns the schema the processor extracts into
func (p *Processor) Schema() *Schema {
	return p.schema
}

// Outcome describes what one recording changed
type Outcome struct {
	// Skipped is set when the same audio was already processed
	Skipped    bool
	Transcript string
	Summary    string
	// SummaryErr is non-fatal: extraction still runs
	SummaryErr error
	Changed    []string
	Progress   Progress
}

// AudioFingerprint identifies a recording for duplicate detection
func AudioFingerprint(audio []byte) string {
	sum := md5.Sum(audio)
	return hex.EncodeToString(sum[:])
}

// ProcessAudio transcribes audio, summarizes and extracts it, then reconciles
// the extraction into sess. On any error the accumulated record is untouched.
func (p *Processor) ProcessAudio(ctx context.Context, sess *Session, audio []byte, fileName string) (*Outcome, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio")
	}

	hash := AudioFingerprint(audio)
	if hash == sess.LastAudioHash {
		p.log.Debug("audio already processed", "session", sess.ID, "hash", hash)
		return &Outcome{Skipped: true, Progress: Completion(p.schema, sess.Record)}, nil
	}

	tr, err := p.provider.Transcribe(ctx, llm.TranscribeRequest{
		Audio:    bytes.NewReader(audio),
		FileName: fileName,
	})
	if err != nil {
		return nil, fmt.Errorf("transcribe audio: %w", err)
	}

	sess.LastAudioHash = hash
	sess.Transcripts = append(sess.Transcripts, tr.Text)
	p.log.Info("audio transcribed", "session", sess.ID, "chars", len(tr.Text))

	outcome := &Outcome{Transcript: tr.Text}

	if sum, err := p.provider.Summarize(ctx, llm.SummarizeRequest{Transcript: tr.Text}); err != nil {
		p.log.Warn("summary failed", "session", sess.ID, "error", err)
		outcome.SummaryErr = err
	} else {
		outcome.Summary = sum.Summary
		sess.AppendSummary(sum.Summary)
	}

	changed, err := p.ExtractInto(ctx, sess, tr.Text)
	if err != nil {
		return outcome, err
	}

	outcome.Changed = changed
	outcome.Progress = Completion(p.schema, sess.Record)
	return outcome, nil
}

// ExtractInto runs structured extraction on transcript and reconciles it into sess.
// It returns the names of the fields that changed.
func (p *Processor) ExtractInto(ctx context.Context, sess *Session, transcript string) ([]string, error) {
	resp, err := p.provider.Extract(ctx, llm.ExtractRequest{
		SystemPrompt: BuildSystemPrompt(p.schema, sess.Record, p.now()),
		Transcript:   transcript,
		SchemaName:   p.schema.Name,
		Schema:       p.schema.JSONSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("extract fields: %w", err)
	}

	sess.LastExtraction = resp.Data

	if err := p.validator.Validate(resp.Data); err != nil {
		p.log.Warn("extraction rejected", "session", sess.ID, "error", err)
		return nil, err
	}

	merged := Reconcile(p.schema, sess.Record, Record(resp.Data))
	changed := Changed(p.schema, sess.Record, merged)
	sess.Record = merged
	sess.LastChanged = changed

	p.log.Info("extraction reconciled", "session", sess.ID, "changed", len(changed))
	return changed, nil
}
