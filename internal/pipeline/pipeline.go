package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dashdoc/webmanager/internal/cache"
	"github.com/dashdoc/webmanager/internal/grouping"
	"github.com/dashdoc/webmanager/internal/logging"
	"github.com/dashdoc/webmanager/internal/model"
	"github.com/dashdoc/webmanager/internal/storyblok"
	"github.com/dashdoc/webmanager/internal/view"
	"github.com/dashdoc/webmanager/internal/visits"
)

// StorySource lists stories and regroups them
type StorySource interface {
	ListStories(ctx context.Context) ([]model.ContentRecord, error)
	GroupPages(ctx context.Context, ids []int64) (storyblok.GroupOutcome, error)
}

// VisitSource returns per-page analytics for a date range
type VisitSource interface {
	PageVisits(ctx context.Context, dr model.DateRange) ([]model.VisitMetric, error)
}

// Pipeline loads, joins and groups the content dataset.
// Fetches are memoized in the cache until TTL expiry or Invalidate.
type Pipeline struct {
	stories  StorySource
	visits   VisitSource
	cache    cache.Cache // nil disables memoization
	ttl      time.Duration
	locales  []string
	cacheKey string
	log      logging.Logger
}

// NewPipeline creates a pipeline over the given sources
func NewPipeline(cfg *model.Config, stories StorySource, visits VisitSource, c cache.Cache, log logging.Logger) *Pipeline {
	p := &Pipeline{
		stories:  stories,
		visits:   visits,
		ttl:      cfg.Cache.TTL,
		locales:  cfg.Locales,
		cacheKey: cfg.Storyblok.SpaceID + "\x00" + cfg.Plausible.SiteID,
		log:      logging.OrNop(log),
	}
	if cfg.Cache.Enabled {
		p.cache = c
	}
	return p
}

// Locales returns the configured locales in priority order
func (p *Pipeline) Locales() []string {
	return p.locales
}

// Dataset is one fully joined load
type Dataset struct {
	Range        model.DateRange
	Records      []model.ContentRecord // enriched with visit metrics
	Grouped      grouping.Result
	Summary      view.Summary // over all groups, before any filter
	ContentTypes []string
	VisitsErr    error // analytics failure; records then carry zero metrics
	LoadedAt     time.Time
}

// Load fetches stories and visits, joins them and groups the result.
// A story failure aborts the load; an analytics failure is kept on the dataset.
func (p *Pipeline) Load(ctx context.Context, dr model.DateRange) (*Dataset, error) {
	if err := dr.Validate(); err != nil {
		return nil, fmt.Errorf("date range: %w", err)
	}

	records, err := cache.Memo(p.cache, cache.CacheKey("stories", p.cacheKey), p.ttl, func() ([]model.ContentRecord, error) {
		return p.stories.ListStories(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch stories: %w", err)
	}

	ds := &Dataset{Range: dr, LoadedAt: time.Now().UTC()}

	var metrics []model.VisitMetric
	if p.visits != nil {
		metrics, err = cache.Memo(p.cache, cache.CacheKey("visits", p.cacheKey, dr.String()), p.ttl, func() ([]model.VisitMetric, error) {
			return p.visits.PageVisits(ctx, dr)
		})
		if err != nil {
			p.log.Warn("analytics unavailable, showing zero visits", "range", dr.String(), "error", err)
			ds.VisitsErr = fmt.Errorf("fetch visits: %w", err)
			metrics = nil
		}
	}

	ds.Records = visits.Enrich(records, metrics)
	ds.Grouped = grouping.Group(ds.Records, p.locales)
	ds.Summary = view.Summarize(ds.Grouped.Groups, len(p.locales))
	ds.ContentTypes = grouping.ContentTypes(ds.Records)

	if ds.Grouped.DroppedDuplicates > 0 {
		p.log.Warn("duplicate locale records overwritten during grouping",
			"dropped", ds.Grouped.DroppedDuplicates)
	}
	p.log.Debug("dataset loaded",
		"records", len(ds.Records),
		"groups", ds.Grouped.Len(),
		"metrics", len(metrics),
		"unmatched", ds.Grouped.Unmatched)

	return ds, nil
}

// GroupPages assigns a new shared group id to ids.
// The whole cache is dropped once at least one page was updated.
func (p *Pipeline) GroupPages(ctx context.Context, ids []int64) (storyblok.GroupOutcome, error) {
	outcome, err := p.stories.GroupPages(ctx, ids)
	if err != nil {
		return outcome, err
	}

	switch outcome.Status() {
	case storyblok.GroupFull, storyblok.GroupPartial:
		p.Invalidate()
		p.log.Info("pages grouped",
			"group_id", outcome.GroupID,
			"updated", len(outcome.Updated),
			"failed", len(outcome.Failed))
	default:
		p.log.Error("grouping failed for every page", "ids", ids)
	}
	return outcome, nil
}

// Invalidate drops every memoized fetch
func (p *Pipeline) Invalidate() {
	if p.cache == nil {
		return
	}
	if err := p.cache.Clear(); err != nil {
		p.log.Warn("cache clear failed", "error", err)
	}
}
