package model

import (
	"testing"
	"time"
)

func TestDefaultConfig_DevIsValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Env = "dev"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate in dev, got %v", err)
	}
}

func TestDefaultConfig_ThrottlesPlausible(t *testing.T) {
	hosts := DefaultConfig().RateLimiting.Hosts
	if len(hosts) != 1 || hosts[0].Host != "plausible.io" {
		t.Fatalf("expected a plausible.io override, got %+v", hosts)
	}
	if perHour := hosts[0].RequestsPerSecond * 3600; perHour < 599 || perHour > 601 {
		t.Errorf("expected 600 requests per hour, got %.1f", perHour)
	}
}

func TestConfig_Validate_ProdRequiresCredentials(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for prod config without credentials")
	}

	cfg.Auth = AuthConfig{Username: "sales", Password: "secret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestConfig_Validate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown env", func(c *Config) { c.Env = "staging" }},
		{"no locales", func(c *Config) { c.Locales = nil }},
		{"blank locale", func(c *Config) { c.Locales = []string{"en", ""} }},
		{"tiny timeout", func(c *Config) { c.HTTP.Timeout = time.Millisecond }},
		{"per page too large", func(c *Config) { c.Storyblok.PerPage = 500 }},
		{"no page ceiling", func(c *Config) { c.Storyblok.MaxPages = 0 }},
		{"analytics page size", func(c *Config) { c.Plausible.PageSize = 0 }},
		{"cache without ttl", func(c *Config) { c.Cache.TTL = 0 }},
		{"negative rate", func(c *Config) { c.RateLimiting.RequestsPerSecond = -1 }},
		{"host override without host", func(c *Config) {
			c.RateLimiting.Hosts = []HostRateConfig{{RequestsPerSecond: 1}}
		}},
		{"negative host rate", func(c *Config) {
			c.RateLimiting.Hosts = []HostRateConfig{{Host: "plausible.io", RequestsPerSecond: -1}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Env = "dev"
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestDateRange_Validate(t *testing.T) {
	tests := []struct {
		name    string
		r       DateRange
		wantErr bool
	}{
		{"valid", DateRange{Start: "2024-01-01", End: "2024-01-31"}, false},
		{"same day", DateRange{Start: "2024-01-01", End: "2024-01-01"}, false},
		{"missing end", DateRange{Start: "2024-01-01"}, true},
		{"bad format", DateRange{Start: "01/01/2024", End: "2024-01-31"}, true},
		{"reversed", DateRange{Start: "2024-02-01", End: "2024-01-31"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultDateRange(t *testing.T) {
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	r := DefaultDateRange(now)

	if r.End != "2024-03-31" {
		t.Errorf("expected end 2024-03-31, got %s", r.End)
	}
	if r.Start != "2024-03-01" {
		t.Errorf("expected start 2024-03-01, got %s", r.Start)
	}
}

func TestLocaleGroup_Counts(t *testing.T) {
	g := NewLocaleGroup("g1")
	g.Locales["en"] = ContentRecord{ID: 1, Published: true, Visitors: 10, Pageviews: 20}
	g.Locales["fr"] = ContentRecord{ID: 2, Published: false, Visitors: 5, Pageviews: 7}

	if g.LocaleCount() != 2 || g.PublishedCount() != 1 || g.DraftCount() != 1 {
		t.Errorf("unexpected counts: %d/%d/%d", g.LocaleCount(), g.PublishedCount(), g.DraftCount())
	}
	if g.Visitors() != 15 || g.Pageviews() != 27 {
		t.Errorf("unexpected totals: %d/%d", g.Visitors(), g.Pageviews())
	}
}
