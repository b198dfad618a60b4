package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dashdoc/webmanager/internal/cache"
	"github.com/dashdoc/webmanager/internal/httpx"
	"github.com/dashdoc/webmanager/internal/hubspot"
	"github.com/dashdoc/webmanager/internal/llm"
	"github.com/dashdoc/webmanager/internal/logging"
	"github.com/dashdoc/webmanager/internal/model"
	"github.com/dashdoc/webmanager/internal/notes"
	"github.com/dashdoc/webmanager/internal/pipeline"
	"github.com/dashdoc/webmanager/internal/plausible"
	"github.com/dashdoc/webmanager/internal/storyblok"
)

// deps is the wired application graph shared by every command
type deps struct {
	cfg       *model.Config
	logs      *logging.Provider
	cache     *cache.MemoryCache
	storyblok *storyblok.Client
	plausible *plausible.Client
	hubspot   *hubspot.Client // nil without an API key
	pipeline  *pipeline.Pipeline
}

func buildDeps() (*deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logs, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	hc := httpx.NewClient(cfg.HTTP, cfg.RateLimiting)
	d := &deps{
		cfg:       cfg,
		logs:      logs,
		cache:     cache.NewMemoryCache(cfg.Cache.TTL, 2*cfg.Cache.TTL),
		storyblok: storyblok.New(cfg.Storyblok, hc, logs.Get("storyblok")),
		plausible: plausible.New(cfg.Plausible, hc, logs.Get("plausible")),
	}
	if cfg.HubSpot.APIKey != "" {
		d.hubspot = hubspot.New(cfg.HubSpot, hc, logs.Get("hubspot"))
	}
	var stories pipeline.StorySource = d.storyblok
	if cfg.Storyblok.ManagementToken == "" && cfg.Storyblok.CDNToken != "" {
		logs.Get("storyblok").Warn("no management token, listing published stories from the CDN; grouping is disabled")
		stories = storyblok.CDNReader{Client: d.storyblok}
	}
	d.pipeline = pipeline.NewPipeline(cfg, stories, d.plausible, d.cache, logs.Get("pipeline"))
	return d, nil
}

// processor builds the notes processor, loading the TMS allow-list from
// the CRM when one is configured
func (d *deps) processor(ctx context.Context) (*notes.Processor, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(d.cfg.LLM, d.cfg.HTTP))
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}
	checkCtx, cancel := context.WithTimeout(ctx, d.cfg.HTTP.Timeout)
	defer cancel()
	if !provider.IsAvailable(checkCtx) {
		return nil, fmt.Errorf("LLM provider %s is not reachable, check llm.api_key and llm.base_url", provider.Name())
	}

	var src notes.OptionsSource
	if d.hubspot != nil {
		src = d.hubspot
	}
	ttl := d.cfg.Cache.TTL
	if ttl == 0 {
		ttl = time.Hour
	}
	schema, err := notes.LoadSalesSchema(ctx, src, d.cache, d.cfg.HubSpot.TMSProperty, ttl)
	if err != nil {
		return nil, err
	}

	return notes.NewProcessor(provider, schema, d.logs.Get("notes"))
}
