package model

// ContentRecord is one story from the content API.
// Visitors and Pageviews are filled in by the visit joiner and stay zero until then.
type ContentRecord struct {
	ID          int64          `json:"id"`
	GroupID     string         `json:"group_id,omitempty"` // shared by translations of the same page
	FullSlug    string         `json:"full_slug"`          // locale-bearing path, e.g. "fr/tarifs"
	Name        string         `json:"name"`
	Published   bool           `json:"published"`
	ContentType string         `json:"content_type,omitempty"`
	ParentID    int64          `json:"parent_id,omitempty"`
	UpdatedAt   string         `json:"updated_at,omitempty"`
	Visitors    int64          `json:"visitors"`
	Pageviews   int64          `json:"pageviews"`
	Raw         map[string]any `json:"raw,omitempty"` // untouched API payload, shown in dev mode
}

// LocaleGroup holds the translations of one logical page, at most one per locale
type LocaleGroup struct {
	GroupID string                   `json:"group_id"`
	Locales map[string]ContentRecord `json:"locales"`
}

// NewLocaleGroup creates an empty group
func NewLocaleGroup(groupID string) LocaleGroup {
	return LocaleGroup{
		GroupID: groupID,
		Locales: make(map[string]ContentRecord),
	}
}

// LocaleCount returns the number of locales present
func (g LocaleGroup) LocaleCount() int {
	return len(g.Locales)
}

// PublishedCount returns the number of published locales
func (g LocaleGroup) PublishedCount() int {
	count := 0
	for _, rec := range g.Locales {
		if rec.Published {
			count++
		}
	}
	return count
}

// DraftCount returns the number of unpublished locales
func (g LocaleGroup) DraftCount() int {
	return len(g.Locales) - g.PublishedCount()
}

// Visitors sums visitors across locales
func (g LocaleGroup) Visitors() int64 {
	var total int64
	for _, rec := range g.Locales {
		total += rec.Visitors
	}
	return total
}

// Pageviews sums pageviews across locales
func (g LocaleGroup) Pageviews() int64 {
	var total int64
	for _, rec := range g.Locales {
		total += rec.Pageviews
	}
	return total
}
