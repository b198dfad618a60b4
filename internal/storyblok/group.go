package storyblok

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

const noPagesCode = "GROUP_NO_PAGES"

// ErrNoPages is returned when grouping is requested without any page ids
var ErrNoPages = errors.New("no page ids provided for grouping")

// newGroupID is swapped in tests
var newGroupID = uuid.NewString

// GroupStatus summarises a batch group-id reassignment
type GroupStatus string

const (
	GroupFull    GroupStatus = "full"
	GroupPartial GroupStatus = "partial"
	GroupFailed  GroupStatus = "failed"
)

// PageFailure records why one page could not be regrouped
type PageFailure struct {
	ID  int64
	Err error
}

// GroupOutcome is the per-page result of GroupPages
type GroupOutcome struct {
	GroupID string
	Updated []int64
	Failed  []PageFailure
}

// Status reports full, partial or failed
func (o GroupOutcome) Status() GroupStatus {
	switch {
	case len(o.Failed) == 0 && len(o.Updated) > 0:
		return GroupFull
	case len(o.Updated) > 0:
		return GroupPartial
	default:
		return GroupFailed
	}
}

// FailedIDs lists the page ids that were not updated
func (o GroupOutcome) FailedIDs() []int64 {
	ids := make([]int64, 0, len(o.Failed))
	for _, f := range o.Failed {
		ids = append(ids, f.ID)
	}
	return ids
}

// GroupPages assigns one freshly generated group id to every page in ids.
// Pages are updated one at a time; a failing page does not stop the batch.
func (c *Client) GroupPages(ctx context.Context, ids []int64) (GroupOutcome, error) {
	if len(ids) == 0 {
		return GroupOutcome{}, goerrors.Wrap(ErrNoPages, goerrors.CategoryValidation, "group pages").
			WithTextCode(noPagesCode)
	}

	outcome := GroupOutcome{GroupID: newGroupID()}
	c.log.Info("grouping pages", "count", len(ids), "group_id", outcome.GroupID)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			outcome.Failed = append(outcome.Failed, PageFailure{ID: id, Err: err})
			continue
		}
		if err := c.UpdateGroupID(ctx, id, outcome.GroupID); err != nil {
			c.log.Warn("page regroup failed", "page_id", id, "error", err)
			outcome.Failed = append(outcome.Failed, PageFailure{ID: id, Err: err})
			continue
		}
		outcome.Updated = append(outcome.Updated, id)
	}

	c.log.Info("grouping finished", "group_id", outcome.GroupID, "status", string(outcome.Status()),
		"updated", len(outcome.Updated), "failed", len(outcome.Failed))
	return outcome, nil
}
