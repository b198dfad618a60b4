package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dashdoc/webmanager/internal/cache"
	"github.com/dashdoc/webmanager/internal/logging"
	"github.com/dashdoc/webmanager/internal/model"
)

func newTestDeps(t *testing.T, llmURL string) *deps {
	t.Helper()
	logs, err := logging.New(model.LoggingConfig{Level: "error", Format: "json"})
	if err != nil {
		t.Fatalf("logging.New failed: %v", err)
	}
	cfg := model.DefaultConfig()
	cfg.LLM.APIKey = "sk-test"
	cfg.LLM.BaseURL = llmURL
	cfg.HTTP.Timeout = 5 * time.Second
	return &deps{cfg: cfg, logs: logs, cache: cache.NewMemoryCache(time.Minute, time.Minute)}
}

func TestProcessor_ReachableProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			_, _ = w.Write([]byte(`{"data": [{"id": "whisper-1"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	proc, err := newTestDeps(t, server.URL).processor(context.Background())
	if err != nil {
		t.Fatalf("expected processor, got %v", err)
	}
	if proc.Schema() == nil {
		t.Error("expected the sales schema to be loaded")
	}
}

func TestProcessor_UnreachableProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid api key"}}`))
	}))
	defer server.Close()

	_, err := newTestDeps(t, server.URL).processor(context.Background())
	if err == nil {
		t.Fatal("expected error for unreachable provider")
	}
	if !strings.Contains(err.Error(), "not reachable") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestProcessor_NoProvider(t *testing.T) {
	d := newTestDeps(t, "")
	d.cfg.LLM.Provider = ""

	if _, err := d.processor(context.Background()); err == nil {
		t.Fatal("expected error without a provider")
	}
}
