package grouping

import (
	"strings"

	"github.com/dashdoc/webmanager/internal/model"
)

// Result is the grouped view of a record set.
// Groups keep the order in which their group id first appeared.
type Result struct {
	Groups            []model.LocaleGroup
	DroppedDuplicates int // records that overwrote another record of the same locale
	Unmatched         int // grouped records whose slug matched no locale
	index             map[string]int
}

// Get returns the group with the given id
func (r Result) Get(groupID string) (model.LocaleGroup, bool) {
	if i, ok := r.index[groupID]; ok {
		return r.Groups[i], true
	}
	return model.LocaleGroup{}, false
}

// Len returns the number of groups
func (r Result) Len() int {
	return len(r.Groups)
}

// LocaleOf resolves the locale of a slug: the first locale, in priority
// order, that equals the slug or prefixes it as "<locale>/".
func LocaleOf(slug string, locales []string) (string, bool) {
	for _, loc := range locales {
		if slug == loc || strings.HasPrefix(slug, loc+"/") {
			return loc, true
		}
	}
	return "", false
}

// Group partitions records by group id and locale.
//
// Records without a group id are skipped. A record whose slug matches no
// locale still registers its group but contributes no locale entry. When two
// records of one group resolve to the same locale the later one wins and the
// overwrite is counted in DroppedDuplicates.
func Group(records []model.ContentRecord, locales []string) Result {
	res := Result{index: make(map[string]int)}

	for _, rec := range records {
		if rec.GroupID == "" {
			continue
		}

		i, ok := res.index[rec.GroupID]
		if !ok {
			i = len(res.Groups)
			res.index[rec.GroupID] = i
			res.Groups = append(res.Groups, model.NewLocaleGroup(rec.GroupID))
		}

		loc, ok := LocaleOf(rec.FullSlug, locales)
		if !ok {
			res.Unmatched++
			continue
		}

		group := res.Groups[i]
		if _, exists := group.Locales[loc]; exists {
			res.DroppedDuplicates++
		}
		group.Locales[loc] = rec
	}

	return res
}

// ContentTypes lists the distinct content types in first-seen order.
// The first entry is always "" meaning no filter.
func ContentTypes(records []model.ContentRecord) []string {
	types := []string{""}
	seen := map[string]bool{"": true}
	for _, rec := range records {
		if seen[rec.ContentType] {
			continue
		}
		seen[rec.ContentType] = true
		types = append(types, rec.ContentType)
	}
	return types
}
