package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config is the complete runtime configuration.
// Values are layered by viper: flags, WEBMANAGER_* env vars, config file, then these defaults.
type Config struct {
	Env          string          `yaml:"env" mapstructure:"env"` // "dev" skips the credential check
	Auth         AuthConfig      `yaml:"auth" mapstructure:"auth"`
	Server       ServerConfig    `yaml:"server" mapstructure:"server"`
	HTTP         HTTPConfig      `yaml:"http" mapstructure:"http"`
	RateLimiting RateLimitConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Cache        CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Logging      LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	Locales      []string        `yaml:"locales" mapstructure:"locales"` // priority order
	Storyblok    StoryblokConfig `yaml:"storyblok" mapstructure:"storyblok"`
	Plausible    PlausibleConfig `yaml:"plausible" mapstructure:"plausible"`
	HubSpot      HubSpotConfig   `yaml:"hubspot" mapstructure:"hubspot"`
	LLM          LLMConfig       `yaml:"llm" mapstructure:"llm"`
}

// AuthConfig holds the static dashboard credentials
type AuthConfig struct {
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
}

// ServerConfig configures the web dashboard
type ServerConfig struct {
	Port string `yaml:"port" mapstructure:"port"`
}

// HTTPConfig applies to every outbound API call
type HTTPConfig struct {
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent  string        `yaml:"user_agent" mapstructure:"user_agent"`
	HTTPProxy  string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// RateLimitConfig bounds outbound requests per API host
type RateLimitConfig struct {
	RequestsPerSecond float64          `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int              `yaml:"burst_size" mapstructure:"burst_size"`
	Hosts             []HostRateConfig `yaml:"hosts,omitempty" mapstructure:"hosts"` // per-host overrides
}

// HostRateConfig overrides the default rate for one API host
type HostRateConfig struct {
	Host              string  `yaml:"host" mapstructure:"host"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// plausibleHourlyQuota is the stats API allowance per API key
const plausibleHourlyQuota = 600

// CacheConfig controls memoization of story and analytics fetches
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// LoggingConfig selects go-logger level and output format
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json, console, pretty
}

// StoryblokConfig configures the content API
type StoryblokConfig struct {
	BaseURL         string `yaml:"base_url" mapstructure:"base_url"`
	CDNBaseURL      string `yaml:"cdn_base_url" mapstructure:"cdn_base_url"`
	SpaceID         string `yaml:"space_id" mapstructure:"space_id"`
	ManagementToken string `yaml:"management_token,omitempty" mapstructure:"management_token"`
	CDNToken        string `yaml:"cdn_token,omitempty" mapstructure:"cdn_token"`
	PerPage         int    `yaml:"per_page" mapstructure:"per_page"`
	MaxPages        int    `yaml:"max_pages" mapstructure:"max_pages"` // hard ceiling on list pagination
	PublicSiteURL   string `yaml:"public_site_url" mapstructure:"public_site_url"`
}

// PlausibleConfig configures the analytics API
type PlausibleConfig struct {
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	APIKey   string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	SiteID   string `yaml:"site_id" mapstructure:"site_id"`
	Limit    int    `yaml:"limit" mapstructure:"limit"`         // overall row cap
	PageSize int    `yaml:"page_size" mapstructure:"page_size"` // rows per request
}

// HubSpotConfig configures the CRM API
type HubSpotConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	APIKey      string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	PortalID    string `yaml:"portal_id" mapstructure:"portal_id"`
	TMSProperty string `yaml:"tms_property" mapstructure:"tms_property"`
}

// LLMConfig configures transcription and extraction
type LLMConfig struct {
	Provider           string `yaml:"provider" mapstructure:"provider"`
	Model              string `yaml:"model" mapstructure:"model"`
	TranscriptionModel string `yaml:"transcription_model" mapstructure:"transcription_model"`
	APIKey             string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL            string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout            int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens          int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// DefaultLocales is the locale set of the marketing site, in display priority
var DefaultLocales = []string{"en", "en-US", "fr", "nl", "es"}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Env: "prod",
		Server: ServerConfig{
			Port: "8080",
		},
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "webmanager/0.3",
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 3,
			BurstSize:         3,
			Hosts: []HostRateConfig{
				{Host: "plausible.io", RequestsPerSecond: plausibleHourlyQuota / 3600.0, BurstSize: 10},
			},
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Locales: append([]string(nil), DefaultLocales...),
		Storyblok: StoryblokConfig{
			BaseURL:       "https://mapi.storyblok.com/v1",
			CDNBaseURL:    "https://api.storyblok.com/v2/cdn",
			PerPage:       100,
			MaxPages:      100,
			PublicSiteURL: "https://dashdoc.com",
		},
		Plausible: PlausibleConfig{
			BaseURL:  "https://plausible.io",
			SiteID:   "dashdoc.com",
			Limit:    10000,
			PageSize: 1000,
		},
		HubSpot: HubSpotConfig{
			BaseURL:     "https://api.hubapi.com",
			TMSProperty: "tms",
		},
		LLM: LLMConfig{
			Provider:           "openai",
			Model:              "gpt-4o-2024-08-06",
			TranscriptionModel: "whisper-1",
			Timeout:            30,
			MaxTokens:          500,
		},
	}
}

// IsDev reports whether the credential check is disabled
func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

// Validate checks the configuration for values no command can run with
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Env, validation.Required, validation.In("dev", "prod")),
		validation.Field(&c.Locales, validation.Required, validation.Each(validation.Required)),
		validation.Field(&c.HTTP),
		validation.Field(&c.RateLimiting),
		validation.Field(&c.Cache),
		validation.Field(&c.Storyblok),
		validation.Field(&c.Plausible),
	)
	if err != nil {
		return err
	}
	if !c.IsDev() {
		return validation.ValidateStruct(&c.Auth,
			validation.Field(&c.Auth.Username, validation.Required),
			validation.Field(&c.Auth.Password, validation.Required),
		)
	}
	return nil
}

// Validate implements validation.Validatable
func (h HTTPConfig) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Timeout, validation.Required, validation.Min(time.Second)),
	)
}

// Validate implements validation.Validatable
func (r RateLimitConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RequestsPerSecond, validation.Min(0.0)),
		validation.Field(&r.Hosts),
	)
}

// Validate implements validation.Validatable
func (h HostRateConfig) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Host, validation.Required),
		validation.Field(&h.RequestsPerSecond, validation.Min(0.0)),
	)
}

// Validate implements validation.Validatable
func (c CacheConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.TTL, validation.When(c.Enabled, validation.Required)),
	)
}

// Validate implements validation.Validatable
func (s StoryblokConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.BaseURL, validation.Required),
		validation.Field(&s.PerPage, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&s.MaxPages, validation.Required, validation.Min(1)),
	)
}

// Validate implements validation.Validatable
func (p PlausibleConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.BaseURL, validation.Required),
		validation.Field(&p.Limit, validation.Required, validation.Min(1)),
		validation.Field(&p.PageSize, validation.Required, validation.Min(1)),
	)
}
