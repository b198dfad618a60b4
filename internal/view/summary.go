package view

import "github.com/dashdoc/webmanager/internal/model"

// Summary aggregates the whole, unfiltered dataset
type Summary struct {
	Groups    int
	Records   int
	Published int
	Coverage  float64 // percent of locale slots filled
	Visitors  int64
	Pageviews int64
}

// Summarize computes the summary cards. Pass the unfiltered groups.
func Summarize(groups []model.LocaleGroup, localeCount int) Summary {
	var s Summary
	s.Groups = len(groups)
	for _, g := range groups {
		s.Records += g.LocaleCount()
		s.Published += g.PublishedCount()
		s.Visitors += g.Visitors()
		s.Pageviews += g.Pageviews()
	}
	if s.Groups > 0 && localeCount > 0 {
		s.Coverage = float64(s.Records) / float64(s.Groups*localeCount) * 100
	}
	return s
}
