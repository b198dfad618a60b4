package httpx

import (
	"net/http"
	"testing"
)

func TestNewProxyFunc_Explicit(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.internal:3128", "http://secure.internal:3128", "api.hubapi.com")

	req, _ := http.NewRequest(http.MethodGet, "https://mapi.storyblok.com/v1/spaces", nil)
	u, err := proxy(req)
	if err != nil {
		t.Fatalf("proxy failed: %v", err)
	}
	if u == nil || u.Host != "secure.internal:3128" {
		t.Errorf("expected https proxy, got %v", u)
	}

	req, _ = http.NewRequest(http.MethodGet, "https://api.hubapi.com/companies/v2/companies/1", nil)
	u, err = proxy(req)
	if err != nil {
		t.Fatalf("proxy failed: %v", err)
	}
	if u != nil {
		t.Errorf("expected no_proxy host to bypass proxy, got %v", u)
	}
}

func TestNewProxyFunc_FallsBackToEnvironment(t *testing.T) {
	proxy := NewProxyFunc("", "", "")
	if proxy == nil {
		t.Fatal("expected non-nil proxy func")
	}
}
