package notes

import (
	"context"
	"fmt"
	"time"

	"github.com/dashdoc/webmanager/internal/cache"
)

// OptionsSource lists the allowed values of an enumerated CRM property
type OptionsSource interface {
	PropertyOptions(ctx context.Context, property string) ([]string, error)
}

// LoadSalesSchema builds the sales schema with the TMS allow-list fetched
// from the CRM. The list is memoized in c for ttl.
func LoadSalesSchema(ctx context.Context, src OptionsSource, c cache.Cache, property string, ttl time.Duration) (*Schema, error) {
	if src == nil {
		return SalesSchema(nil), nil
	}

	options, err := cache.Memo(c, cache.CacheKey("crm-options", property), ttl, func() ([]string, error) {
		return src.PropertyOptions(ctx, property)
	})
	if err != nil {
		return nil, fmt.Errorf("load %s options: %w", property, err)
	}
	return SalesSchema(options), nil
}
