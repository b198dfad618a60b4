package web

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/dashdoc/webmanager/internal/grouping"
	"github.com/dashdoc/webmanager/internal/httpx"
	"github.com/dashdoc/webmanager/internal/model"
	"github.com/dashdoc/webmanager/internal/pipeline"
	"github.com/dashdoc/webmanager/internal/storyblok"
	"github.com/dashdoc/webmanager/internal/view"
)

type groupsQuery struct {
	Start           string `query:"start"`
	End             string `query:"end"`
	Published       bool   `query:"published"`
	Draft           bool   `query:"draft"`
	Missing         bool   `query:"missing"`
	Name            string `query:"name"`
	ContentType     string `query:"content_type"`
	Sort            string `query:"sort"`
	Asc             bool   `query:"asc"`
	Page            int    `query:"page"`
	PerPage         int    `query:"per_page"`
	ShowGroupID     bool   `query:"show_group_id"`
	LocaleAnalytics bool   `query:"locale_analytics"`
}

func (q groupsQuery) filters() grouping.Filters {
	return grouping.Filters{
		PublishedOnly:      q.Published,
		DraftOnly:          q.Draft,
		MissingLocalesOnly: q.Missing,
		NameContains:       strings.TrimSpace(q.Name),
		ContentType:        q.ContentType,
	}
}

type groupsPage struct {
	layoutData
	Range        model.DateRange
	Query        groupsQuery
	Locales      []string
	Summary      view.Summary
	Rows         []view.GroupRow
	Page         view.Page
	ContentTypes []string
	SortKeys     []view.SortKey
	PageSizes    []int
	Raw          map[string]any
	Loaded       bool
	values       url.Values
}

// PageLink returns the current listing URL at page n
func (p groupsPage) PageLink(n int) string {
	v := url.Values{}
	for k, vals := range p.values {
		v[k] = vals
	}
	v.Set("page", strconv.Itoa(n))
	return "/groups?" + v.Encode()
}

func (s *Server) dateRange(start, end string) model.DateRange {
	dr := model.DefaultDateRange(s.now())
	if start != "" {
		dr.Start = start
	}
	if end != "" {
		dr.End = end
	}
	return dr
}

func queryValues(c *fiber.Ctx) url.Values {
	v := url.Values{}
	for k, val := range c.Queries() {
		if k != "page" {
			v.Set(k, val)
		}
	}
	return v
}

// loadMessage renders a dataset failure the way the user should read it
func loadMessage(err error) Message {
	switch {
	case goerrors.IsCategory(err, goerrors.CategoryValidation):
		return Message{Level: "error", Text: err.Error()}
	case errors.Is(err, httpx.ErrDecode):
		return Message{Level: "error", Text: "Error parsing response: " + httpx.Describe(err)}
	default:
		return Message{Level: "error", Text: "Error fetching stories: " + httpx.Describe(err)}
	}
}

func (s *Server) load(c *fiber.Ctx, dr model.DateRange, data *layoutData) (*pipeline.Dataset, bool) {
	ds, err := s.content.Load(c.UserContext(), dr)
	if err != nil {
		s.log.Error("dataset load failed", "range", dr.String(), "error", err)
		data.Messages = append(data.Messages, loadMessage(err))
		return nil, false
	}
	if ds.VisitsErr != nil {
		data.Messages = append(data.Messages, Message{Level: "warning", Text: "Analytics unavailable, visits shown as 0: " + httpx.Describe(ds.VisitsErr)})
	}
	if len(ds.Records) == 0 {
		data.Messages = append(data.Messages, Message{Level: "warning", Text: "No stories found."})
	}
	return ds, true
}

func (s *Server) handleGroups(c *fiber.Ctx) error {
	var q groupsQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query: "+err.Error())
	}
	if q.PerPage == 0 {
		q.PerPage = view.DefaultPageSize
	}

	data := groupsPage{
		layoutData: s.layout(c, "Page Language Grouping", "/groups"),
		Range:      s.dateRange(q.Start, q.End),
		Query:      q,
		Locales:    s.cfg.Locales,
		SortKeys:   view.SortKeys,
		PageSizes:  view.PageSizes,
		values:     queryValues(c),
	}

	key, err := view.ParseSortKey(q.Sort)
	if err != nil {
		data.Messages = append(data.Messages, Message{Level: "warning", Text: err.Error()})
		key = view.SortVisitors
	}
	data.Query.Sort = string(key)

	ds, ok := s.load(c, data.Range, &data.layoutData)
	if !ok {
		return render(c, fiber.StatusOK, Groups(data))
	}

	data.Loaded = true
	data.Summary = ds.Summary
	data.ContentTypes = ds.ContentTypes
	if ds.Grouped.Len() == 0 {
		data.Messages = append(data.Messages, Message{Level: "warning", Text: "No pages with group_id found in your stories."})
	}
	if ds.Grouped.DroppedDuplicates > 0 {
		data.Messages = append(data.Messages, Message{Level: "info",
			Text: fmt.Sprintf("%d duplicate locale records were overwritten while grouping.", ds.Grouped.DroppedDuplicates)})
	}

	filtered := grouping.Apply(ds.Grouped.Groups, q.filters(), len(s.cfg.Locales))
	rows := view.BuildGroupRows(filtered, s.cfg.Locales, s.links)

	dir := view.Descending
	if q.Asc {
		dir = view.Ascending
	}
	view.SortGroupRows(rows, view.Sort{Key: key, Direction: dir})

	data.Page = view.Paginate(len(rows), q.PerPage, q.Page)
	data.Rows = view.Slice(rows, data.Page)
	if data.Dev && len(ds.Records) > 0 {
		data.Raw = ds.Records[0].Raw
	}

	return render(c, fiber.StatusOK, Groups(data))
}

type pagesQuery struct {
	Start       string `query:"start"`
	End         string `query:"end"`
	GroupID     string `query:"group_id"`
	Name        string `query:"name"`
	ID          string `query:"id"`
	Published   bool   `query:"published"`
	ContentType string `query:"content_type"`
	Slug        string `query:"slug"`
}

func (q pagesQuery) filters() view.PageFilters {
	return view.PageFilters{
		GroupID:       strings.TrimSpace(q.GroupID),
		Name:          strings.TrimSpace(q.Name),
		ID:            strings.TrimSpace(q.ID),
		PublishedOnly: q.Published,
		ContentType:   q.ContentType,
		Slug:          strings.TrimSpace(q.Slug),
	}
}

type pagesPage struct {
	layoutData
	Range        model.DateRange
	Query        pagesQuery
	Rows         []view.PageRow
	ContentTypes []string
	Raw          map[string]any
	Loaded       bool
}

func (s *Server) handlePages(c *fiber.Ctx) error {
	var q pagesQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query: "+err.Error())
	}

	data := pagesPage{
		layoutData: s.layout(c, "Each Page Level", "/pages"),
		Range:      s.dateRange(q.Start, q.End),
		Query:      q,
	}

	ds, ok := s.load(c, data.Range, &data.layoutData)
	if !ok {
		return render(c, fiber.StatusOK, Pages(data))
	}

	data.Loaded = true
	data.ContentTypes = ds.ContentTypes
	data.Rows = view.BuildPageRows(ds.Records, q.filters(), s.links)
	if len(data.Rows) == 0 && len(ds.Records) > 0 {
		data.Messages = append(data.Messages, Message{Level: "warning", Text: "No pages match the current filters."})
	}
	if data.Dev && len(ds.Records) > 0 {
		data.Raw = ds.Records[0].Raw
	}

	return render(c, fiber.StatusOK, Pages(data))
}

type groupConfirmPage struct {
	layoutData
	Pages []view.PageRow
	Done  bool
}

func formIDs(c *fiber.Ctx) ([]int64, error) {
	var ids []int64
	for _, raw := range c.Context().PostArgs().PeekMulti("id") {
		id, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid page id %q", raw)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Server) handleGroupPages(c *fiber.Ctx) error {
	data := groupConfirmPage{layoutData: s.layout(c, "Confirm Page Grouping", "/pages")}

	ids, err := formIDs(c)
	if err != nil {
		data.Messages = append(data.Messages, Message{Level: "error", Text: err.Error()})
		return render(c, fiber.StatusBadRequest, GroupConfirm(data))
	}

	if c.FormValue("confirm") != "yes" {
		data.Pages = s.selectedPages(c, ids)
		if len(ids) == 0 {
			data.Messages = append(data.Messages, Message{Level: "error", Text: "No page IDs provided for grouping"})
		}
		return render(c, fiber.StatusOK, GroupConfirm(data))
	}

	data.Done = true
	outcome, err := s.content.GroupPages(c.UserContext(), ids)
	if err != nil {
		data.Messages = append(data.Messages, Message{Level: "error", Text: "Failed to group pages: " + err.Error()})
		return render(c, fiber.StatusBadRequest, GroupConfirm(data))
	}

	for _, f := range outcome.Failed {
		data.Messages = append(data.Messages, Message{Level: "error",
			Text: fmt.Sprintf("Error updating page %d: %s", f.ID, httpx.Describe(f.Err))})
	}

	switch outcome.Status() {
	case storyblok.GroupFull:
		data.Messages = append(data.Messages, Message{Level: "success",
			Text: "Pages grouped successfully with group_id: " + outcome.GroupID})
	case storyblok.GroupPartial:
		data.Messages = append(data.Messages, Message{Level: "warning",
			Text: fmt.Sprintf("Grouped %d pages with group_id %s. Failed to group pages: %s",
				len(outcome.Updated), outcome.GroupID, joinIDs(outcome.FailedIDs()))})
	default:
		data.Messages = append(data.Messages, Message{Level: "error",
			Text: "Failed to group any pages. Please check the page IDs and try again."})
	}

	return render(c, fiber.StatusOK, GroupConfirm(data))
}

// selectedPages resolves ids against the cached dataset for display.
// Unknown ids are listed by number only.
func (s *Server) selectedPages(c *fiber.Ctx, ids []int64) []view.PageRow {
	byID := map[int64]model.ContentRecord{}
	if ds, err := s.content.Load(c.UserContext(), s.dateRange("", "")); err == nil {
		for _, rec := range ds.Records {
			byID[rec.ID] = rec
		}
	}

	rows := make([]view.PageRow, 0, len(ids))
	for _, id := range ids {
		rec, ok := byID[id]
		if !ok {
			rec = model.ContentRecord{ID: id, Name: strconv.FormatInt(id, 10)}
		}
		rows = append(rows, view.BuildPageRows([]model.ContentRecord{rec}, view.PageFilters{}, s.links)...)
	}
	return rows
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
