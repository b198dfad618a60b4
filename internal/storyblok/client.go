package storyblok

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dashdoc/webmanager/internal/httpx"
	"github.com/dashdoc/webmanager/internal/logging"
	"github.com/dashdoc/webmanager/internal/model"
)

// Re-exported so callers can match failures without importing httpx
var (
	ErrRequest = httpx.ErrRequest
	ErrDecode  = httpx.ErrDecode
)

const editorURLFormat = "https://app.storyblok.com/#/me/spaces/%s/stories/0/0/%d"

// Client talks to the Storyblok management and CDN APIs
type Client struct {
	http *httpx.Client
	cfg  model.StoryblokConfig
	log  logging.Logger
}

// New creates a Storyblok client
func New(cfg model.StoryblokConfig, hc *httpx.Client, log logging.Logger) *Client {
	if cfg.PerPage <= 0 {
		cfg.PerPage = 100
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 100
	}
	return &Client{http: hc, cfg: cfg, log: logging.OrNop(log)}
}

type storiesResponse struct {
	Stories []map[string]any `json:"stories"`
}

type storyResponse struct {
	Story map[string]any `json:"story"`
}

func (c *Client) storiesURL() string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/spaces/" + url.PathEscape(c.cfg.SpaceID) + "/stories/"
}

func (c *Client) authHeaders() map[string]string {
	return map[string]string{"Authorization": c.cfg.ManagementToken}
}

// ListStories fetches every story of the space from the management API.
// Pages are requested until an empty page or the MaxPages ceiling.
func (c *Client) ListStories(ctx context.Context) ([]model.ContentRecord, error) {
	var records []model.ContentRecord

	for page := 1; page <= c.cfg.MaxPages; page++ {
		q := url.Values{}
		q.Set("per_page", strconv.Itoa(c.cfg.PerPage))
		q.Set("page", strconv.Itoa(page))
		q.Set("story_only", "true")

		var resp storiesResponse
		if _, err := c.http.Do(ctx, httpx.Request{
			Method:  http.MethodGet,
			URL:     c.storiesURL() + "?" + q.Encode(),
			Headers: c.authHeaders(),
		}, &resp); err != nil {
			return nil, fmt.Errorf("list stories page %d: %w", page, err)
		}

		if len(resp.Stories) == 0 {
			break
		}
		for _, story := range resp.Stories {
			records = append(records, RecordFromStory(story))
		}
	}

	c.log.Info("fetched stories", "count", len(records))
	return records, nil
}

// ListCDNStories fetches published stories from the CDN delivery API
func (c *Client) ListCDNStories(ctx context.Context) ([]model.ContentRecord, error) {
	base := strings.TrimRight(c.cfg.CDNBaseURL, "/") + "/stories/"
	var records []model.ContentRecord

	for page := 1; page <= c.cfg.MaxPages; page++ {
		q := url.Values{}
		q.Set("per_page", strconv.Itoa(c.cfg.PerPage))
		q.Set("page", strconv.Itoa(page))
		q.Set("token", c.cfg.CDNToken)

		var resp storiesResponse
		if _, err := c.http.Do(ctx, httpx.Request{URL: base + "?" + q.Encode()}, &resp); err != nil {
			return nil, fmt.Errorf("list cdn stories page %d: %w", page, err)
		}

		if len(resp.Stories) == 0 {
			break
		}
		for _, story := range resp.Stories {
			rec := RecordFromStory(story)
			rec.Published = true
			if rec.ContentType == "" {
				if content, ok := story["content"].(map[string]any); ok {
					rec.ContentType, _ = content["component"].(string)
				}
			}
			records = append(records, rec)
		}
	}

	c.log.Info("fetched cdn stories", "count", len(records))
	return records, nil
}

// GetStory returns the full management payload of one story
func (c *Client) GetStory(ctx context.Context, id int64) (map[string]any, error) {
	var resp storyResponse
	if _, err := c.http.Do(ctx, httpx.Request{
		URL:     c.storiesURL() + strconv.FormatInt(id, 10),
		Headers: c.authHeaders(),
	}, &resp); err != nil {
		return nil, fmt.Errorf("get story %d: %w", id, err)
	}
	if resp.Story == nil {
		return nil, fmt.Errorf("get story %d: %w: missing story object", id, ErrDecode)
	}
	return resp.Story, nil
}

// UpdateGroupID rewrites the group id of one story, keeping the rest of its payload
func (c *Client) UpdateGroupID(ctx context.Context, id int64, groupID string) error {
	story, err := c.GetStory(ctx, id)
	if err != nil {
		return err
	}

	story["group_id"] = groupID

	if _, err := c.http.Do(ctx, httpx.Request{
		Method:  http.MethodPut,
		URL:     c.storiesURL() + strconv.FormatInt(id, 10),
		Headers: c.authHeaders(),
		Body:    storyResponse{Story: story},
	}, nil); err != nil {
		return fmt.Errorf("update story %d: %w", id, err)
	}
	return nil
}

// EditorURL links to the story in the Storyblok editor
func (c *Client) EditorURL(id int64) string {
	return fmt.Sprintf(editorURLFormat, c.cfg.SpaceID, id)
}

// PublicURL links to the published page of a slug
func (c *Client) PublicURL(fullSlug string) string {
	if c.cfg.PublicSiteURL == "" {
		return ""
	}
	return strings.TrimRight(c.cfg.PublicSiteURL, "/") + "/" + strings.Trim(fullSlug, "/")
}

// RecordFromStory maps a story payload onto a content record, keeping the payload as Raw
func RecordFromStory(story map[string]any) model.ContentRecord {
	rec := model.ContentRecord{
		ID:        toInt64(story["id"]),
		ParentID:  toInt64(story["parent_id"]),
		Raw:       story,
		Published: toBool(story["published"]),
	}
	rec.GroupID, _ = story["group_id"].(string)
	rec.FullSlug, _ = story["full_slug"].(string)
	rec.Name, _ = story["name"].(string)
	rec.ContentType, _ = story["content_type"].(string)
	rec.UpdatedAt, _ = story["updated_at"].(string)
	return rec
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	}
	return 0
}

func toBool(v any) bool {
	b, _ := v.(bool)
	return b
}
