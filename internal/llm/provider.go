package llm

import (
	"context"
	"encoding/json"
	"io"
)

// Provider defines the interface for speech and language model providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Transcribe converts recorded audio into text
	Transcribe(ctx context.Context, req TranscribeRequest) (*TranscribeResponse, error)

	// Extract fills a JSON schema from a transcript using structured output
	Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error)

	// Summarize produces a short free-text summary of a transcript
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// TranscribeRequest contains one audio recording
type TranscribeRequest struct {
	Audio io.Reader

	// FileName carries the container format to the API (e.g. "note.wav")
	FileName string

	// Model overrides Config.TranscriptionModel
	Model string
}

// TranscribeResponse contains the transcript text
type TranscribeResponse struct {
	Text  string
	Model string
}

// ExtractRequest asks for a strict JSON document matching Schema
type ExtractRequest struct {
	SystemPrompt string
	Transcript   string

	// SchemaName and Schema describe the expected output document
	SchemaName string
	Schema     json.RawMessage

	Model     string
	MaxTokens int
}

// ExtractResponse carries the decoded document and the raw model output
type ExtractResponse struct {
	Data       map[string]any
	Raw        string
	Model      string
	TokensUsed int
}

// SummarizeRequest contains the text to summarize
type SummarizeRequest struct {
	Transcript string

	// Prompt is an optional custom system prompt (if empty, use default)
	Prompt string

	Model     string
	MaxTokens int
}

// SummarizeResponse contains the summary output
type SummarizeResponse struct {
	Summary    string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai" or "" (disabled)
	Provider string

	// Model is the chat model used for extraction and summaries
	Model string

	// TranscriptionModel is the speech-to-text model
	TranscriptionModel string

	APIKey string

	// BaseURL for custom endpoints (proxies, Azure-compatible gateways)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for summary generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:           "", // Disabled by default
		Model:              "gpt-4o-2024-08-06",
		TranscriptionModel: "whisper-1",
		Timeout:            30,
		MaxTokens:          500,
	}
}

const summarySystemPrompt = "You are a helpful assistant that creates concise, professional summaries of conversations or notes. Focus on key points, action items, and important details."

// BuildSummaryPrompt returns the user message for a summary request
func BuildSummaryPrompt(transcript string) string {
	return "Please provide a concise summary of the following transcript:\n\n" + transcript
}

// BuildExtractPrompt returns the user message for an extraction request
func BuildExtractPrompt(transcript string) string {
	return "Please extract structured sales information from the following transcript:\n\n" + transcript
}
