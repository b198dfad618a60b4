package model

import (
	"fmt"
	"time"
)

// VisitMetric is one analytics row for a URL path
type VisitMetric struct {
	Page      string `json:"page"`
	Visitors  int64  `json:"visitors"`
	Pageviews int64  `json:"pageviews"`
}

// DateLayout is the ISO date format used by the analytics API
const DateLayout = "2006-01-02"

// DateRange bounds an analytics query (inclusive ISO dates)
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DefaultDateRange returns the 30 days ending at now
func DefaultDateRange(now time.Time) DateRange {
	return DateRange{
		Start: now.AddDate(0, 0, -30).Format(DateLayout),
		End:   now.Format(DateLayout),
	}
}

// Validate checks both dates are present, well formed and ordered
func (r DateRange) Validate() error {
	if r.Start == "" || r.End == "" {
		return fmt.Errorf("both start and end dates are required")
	}
	start, err := time.Parse(DateLayout, r.Start)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", r.Start, err)
	}
	end, err := time.Parse(DateLayout, r.End)
	if err != nil {
		return fmt.Errorf("invalid end date %q: %w", r.End, err)
	}
	if end.Before(start) {
		return fmt.Errorf("end date %s is before start date %s", r.End, r.Start)
	}
	return nil
}

// String renders the range for cache keys and logs
func (r DateRange) String() string {
	return r.Start + ".." + r.End
}
