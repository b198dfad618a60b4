package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/dashdoc/webmanager/internal/model"
)

func setupConfig(t *testing.T, yamlBody string) {
	t.Helper()
	viper.Reset()
	t.Cleanup(func() {
		viper.Reset()
		cfgFile = ""
	})

	cfgFile = filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgFile, []byte(yamlBody), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	initConfig()
}

func TestLoadConfig_Layers(t *testing.T) {
	t.Setenv("WEBMANAGER_SERVER_PORT", "9090")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	setupConfig(t, "env: dev\nstoryblok:\n  space_id: \"171339\"\ncache:\n  ttl: 2m\n")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Storyblok.SpaceID != "171339" {
		t.Errorf("Expected space id from file, got %q", cfg.Storyblok.SpaceID)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port from env, got %q", cfg.Server.Port)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("Expected API key from OPENAI_API_KEY, got %q", cfg.LLM.APIKey)
	}
	if cfg.Cache.TTL != 2*time.Minute {
		t.Errorf("Expected ttl 2m, got %v", cfg.Cache.TTL)
	}
	if cfg.Storyblok.PerPage != 100 {
		t.Errorf("Expected default per_page, got %d", cfg.Storyblok.PerPage)
	}
	if len(cfg.Locales) != len(model.DefaultLocales) {
		t.Errorf("Expected default locales, got %v", cfg.Locales)
	}
}

func TestLoadConfig_ProdNeedsCredentials(t *testing.T) {
	setupConfig(t, "env: prod\n")

	if _, err := loadConfig(); err == nil {
		t.Error("Expected validation error without credentials")
	}
}

func TestMaskSecrets(t *testing.T) {
	cfg := *model.DefaultConfig()
	cfg.Auth.Password = "hunter2"
	cfg.HubSpot.APIKey = "pat-123"

	masked := maskSecrets(cfg)
	if masked.Auth.Password != "****" || masked.HubSpot.APIKey != "****" {
		t.Errorf("Expected secrets masked, got %+v / %+v", masked.Auth, masked.HubSpot)
	}
	if masked.LLM.APIKey != "" {
		t.Error("Expected empty secrets to stay empty")
	}
	if cfg.Auth.Password != "hunter2" {
		t.Error("maskSecrets must not modify its argument")
	}
}

func TestLoadConfig_HostRateOverrides(t *testing.T) {
	setupConfig(t, "env: dev\nrate_limiting:\n  hosts:\n    - host: api.hubapi.com\n      requests_per_second: 1\n      burst_size: 2\n")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	hosts := cfg.RateLimiting.Hosts
	if len(hosts) != 1 {
		t.Fatalf("Expected the file list to replace the defaults, got %+v", hosts)
	}
	if hosts[0].Host != "api.hubapi.com" || hosts[0].RequestsPerSecond != 1 || hosts[0].BurstSize != 2 {
		t.Errorf("Unexpected host override: %+v", hosts[0])
	}
}
