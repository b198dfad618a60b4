package plausible

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dashdoc/webmanager/internal/httpx"
	"github.com/dashdoc/webmanager/internal/logging"
	"github.com/dashdoc/webmanager/internal/model"
)

var (
	ErrRequest = httpx.ErrRequest
	ErrDecode  = httpx.ErrDecode
)

// Client queries the Plausible stats API v2
type Client struct {
	http *httpx.Client
	cfg  model.PlausibleConfig
	log  logging.Logger
}

// New creates a Plausible client
func New(cfg model.PlausibleConfig, hc *httpx.Client, log logging.Logger) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 1000
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 10000
	}
	return &Client{http: hc, cfg: cfg, log: logging.OrNop(log)}
}

type pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type query struct {
	SiteID     string     `json:"site_id"`
	Metrics    []string   `json:"metrics"`
	DateRange  []string   `json:"date_range"`
	Dimensions []string   `json:"dimensions"`
	OrderBy    [][]string `json:"order_by"`
	Pagination pagination `json:"pagination"`
}

type result struct {
	Metrics    []float64 `json:"metrics"`
	Dimensions []string  `json:"dimensions"`
}

type queryResponse struct {
	Results []result `json:"results"`
}

// PageVisits returns visitors and pageviews per page path for the date range,
// ordered by pageviews descending and capped at the configured limit.
func (c *Client) PageVisits(ctx context.Context, dr model.DateRange) ([]model.VisitMetric, error) {
	if err := dr.Validate(); err != nil {
		return nil, fmt.Errorf("page visits: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/api/v2/query"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	var metrics []model.VisitMetric
	offset := 0

	for len(metrics) < c.cfg.Limit {
		size := min(c.cfg.PageSize, c.cfg.Limit-len(metrics))

		q := query{
			SiteID:     c.cfg.SiteID,
			Metrics:    []string{"visitors", "pageviews"},
			DateRange:  []string{dr.Start, dr.End},
			Dimensions: []string{"event:page"},
			OrderBy:    [][]string{{"pageviews", "desc"}},
			Pagination: pagination{Limit: size, Offset: offset},
		}

		var resp queryResponse
		if _, err := c.http.Do(ctx, httpx.Request{
			Method:  http.MethodPost,
			URL:     endpoint,
			Headers: headers,
			Body:    q,
		}, &resp); err != nil {
			return nil, fmt.Errorf("query plausible at offset %d: %w", offset, err)
		}

		page := make([]model.VisitMetric, 0, len(resp.Results))
		for _, r := range resp.Results {
			// rows missing either metric or the page dimension are skipped
			if len(r.Metrics) < 2 || len(r.Dimensions) < 1 {
				continue
			}
			page = append(page, model.VisitMetric{
				Page:      r.Dimensions[0],
				Visitors:  int64(r.Metrics[0]),
				Pageviews: int64(r.Metrics[1]),
			})
		}

		if len(page) == 0 {
			break
		}
		metrics = append(metrics, page...)
		if len(page) < size {
			break
		}
		offset += size
	}

	c.log.Info("fetched page visits", "rows", len(metrics), "range", dr.String())
	return metrics, nil
}
