package storyblok

import (
	"context"
	"errors"

	"github.com/dashdoc/webmanager/internal/model"
)

// ErrReadOnly is returned by writes through the CDN delivery API
var ErrReadOnly = errors.New("storyblok: cdn token is read-only, configure a management token to regroup pages")

// CDNReader lists published stories through the CDN delivery API.
// Used when only a CDN token is configured.
type CDNReader struct {
	*Client
}

// ListStories lists published stories only
func (r CDNReader) ListStories(ctx context.Context) ([]model.ContentRecord, error) {
	return r.ListCDNStories(ctx)
}

// GroupPages always fails with ErrReadOnly
func (r CDNReader) GroupPages(ctx context.Context, ids []int64) (GroupOutcome, error) {
	return GroupOutcome{}, ErrReadOnly
}
