package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
)

func newTestProvider(t *testing.T, url string) *OpenAIProvider {
	t.Helper()
	provider, err := NewOpenAIProvider(Config{
		APIKey:             "test-key",
		BaseURL:            url,
		Model:              "gpt-4o-2024-08-06",
		TranscriptionModel: "whisper-1",
		Timeout:            5,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	return provider
}

func chatResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		ID:      "chatcmpl-123",
		Object:  "chat.completion",
		Created: 1677652288,
		Model:   "gpt-4o-2024-08-06",
		Choices: []openai.ChatCompletionChoice{
			{
				Index: 0,
				Message: openai.ChatCompletionMessage{
					Role:    "assistant",
					Content: content,
				},
				FinishReason: "stop",
			},
		},
		Usage: openai.Usage{TotalTokens: 100},
	}
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Fatal("Expected error for missing API key")
	}
}

func TestOpenAIProvider_Transcribe_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("Expected path /audio/transcriptions, got %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("Expected multipart form: %v", err)
		}
		if r.FormValue("model") != "whisper-1" {
			t.Errorf("Expected whisper-1, got %s", r.FormValue("model"))
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("Expected file part: %v", err)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "RIFFfake" {
			t.Errorf("Unexpected audio bytes: %q", data)
		}
		if header.Filename != "note.wav" {
			t.Errorf("Expected filename note.wav, got %s", header.Filename)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "  The client runs 12 trucks.  "})
	}))
	defer server.Close()

	resp, err := newTestProvider(t, server.URL).Transcribe(context.Background(), TranscribeRequest{
		Audio:    strings.NewReader("RIFFfake"),
		FileName: "note.wav",
	})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if resp.Text != "The client runs 12 trucks." {
		t.Errorf("Unexpected transcript: %q", resp.Text)
	}
}

func TestOpenAIProvider_Transcribe_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "   "})
	}))
	defer server.Close()

	_, err := newTestProvider(t, server.URL).Transcribe(context.Background(), TranscribeRequest{Audio: strings.NewReader("x")})
	if err == nil {
		t.Fatal("Expected error for empty transcript")
	}
}

func TestOpenAIProvider_Transcribe_NoAudio(t *testing.T) {
	provider := newTestProvider(t, "http://unused")
	if _, err := provider.Transcribe(context.Background(), TranscribeRequest{}); err == nil {
		t.Fatal("Expected error for missing audio")
	}
}

func TestOpenAIProvider_Extract_Success(t *testing.T) {
	schema := json.RawMessage(`{"type":"object","properties":{"number_truckers":{"type":"integer"}},"required":["number_truckers"],"additionalProperties":false}`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)

		format, _ := req["response_format"].(map[string]any)
		if format["type"] != "json_schema" {
			t.Errorf("Expected json_schema response format, got %v", format["type"])
		}
		js, _ := format["json_schema"].(map[string]any)
		if js["name"] != "sales_notes_extraction" || js["strict"] != true {
			t.Errorf("Unexpected json_schema block: %v", js)
		}

		messages, _ := req["messages"].([]any)
		if len(messages) != 2 {
			t.Fatalf("Expected system and user messages, got %d", len(messages))
		}
		user, _ := messages[1].(map[string]any)
		if !strings.Contains(user["content"].(string), "twelve trucks") {
			t.Errorf("Expected transcript in user message, got %v", user["content"])
		}

		_ = json.NewEncoder(w).Encode(chatResponse(`{"number_truckers": 12}`))
	}))
	defer server.Close()

	resp, err := newTestProvider(t, server.URL).Extract(context.Background(), ExtractRequest{
		SystemPrompt: "extract",
		Transcript:   "They have twelve trucks",
		SchemaName:   "sales_notes_extraction",
		Schema:       schema,
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if resp.Data["number_truckers"] != float64(12) {
		t.Errorf("Unexpected extraction: %v", resp.Data)
	}
	if resp.TokensUsed != 100 {
		t.Errorf("Expected 100 tokens, got %d", resp.TokensUsed)
	}
}

func TestOpenAIProvider_Extract_MalformedOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse(`not json`))
	}))
	defer server.Close()

	_, err := newTestProvider(t, server.URL).Extract(context.Background(), ExtractRequest{
		Transcript: "x",
		SchemaName: "s",
		Schema:     json.RawMessage(`{"type":"object"}`),
	})
	if err == nil {
		t.Fatal("Expected error for non-JSON model output")
	}
}

func TestOpenAIProvider_Extract_RequiresSchema(t *testing.T) {
	if _, err := newTestProvider(t, "http://unused").Extract(context.Background(), ExtractRequest{}); err == nil {
		t.Fatal("Expected error for missing schema")
	}
}

func TestOpenAIProvider_Summarize_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}
		_ = json.NewEncoder(w).Encode(chatResponse(" Key points: 12 trucks. "))
	}))
	defer server.Close()

	resp, err := newTestProvider(t, server.URL).Summarize(context.Background(), SummarizeRequest{Transcript: "..."})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if resp.Summary != "Key points: 12 trucks." {
		t.Errorf("Unexpected summary: %q", resp.Summary)
	}
}

func TestOpenAIProvider_Summarize_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "Internal Server Error", "type": "server_error"}}`))
	}))
	defer server.Close()

	_, err := newTestProvider(t, server.URL).Summarize(context.Background(), SummarizeRequest{Transcript: "x"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOpenAIProvider_Summarize_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "Rate limit exceeded", "type": "rate_limit_error"}}`))
	}))
	defer server.Close()

	_, err := newTestProvider(t, server.URL).Summarize(context.Background(), SummarizeRequest{Transcript: "x"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOpenAIProvider_Summarize_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// caller deadline is shorter than the provider timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := newTestProvider(t, server.URL).Summarize(ctx, SummarizeRequest{Transcript: "x"})
	if err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
}

func TestOpenAIProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"data": [{"id": "gpt-4o-2024-08-06"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)
	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be true")
	}

	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be false on error")
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{Provider: ""})
	if err != nil || p != nil {
		t.Errorf("Expected disabled provider, got %v %v", p, err)
	}

	if _, err := NewProvider(Config{Provider: "anthropic"}); err == nil {
		t.Error("Expected error for unsupported provider")
	}

	p, err = NewProvider(Config{Provider: "OpenAI", APIKey: "k"})
	if err != nil || p == nil || p.Name() != "openai" {
		t.Errorf("Expected openai provider, got %v %v", p, err)
	}
}
