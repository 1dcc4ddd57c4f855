// Package merge applies a partial update to a stored payload.
package merge

import (
	"slices"
	"time"

	"github.com/harrisonrobin/arrange/pkg/model"
)

// Merge returns the payload that results from applying u to existing. Fields
// not set in u keep their existing value. StartedAt and FinishedAt are
// write-once: they are stamped with now() the first time the status moves to
// in progress or finished and are never touched again.
//
// A nil existing payload (nothing stored, or it could not be decoded) is
// treated as the default payload. existing itself is never modified.
func Merge(existing *model.Payload, u model.Update, now func() time.Time) model.Payload {
	if now == nil {
		now = time.Now
	}
	base := model.DefaultPayload()
	if existing != nil {
		base = existing.Clone()
	}

	out := base
	if v, ok := u.Status.Get(); ok {
		out.Status = v
	}
	if v, ok := u.Urgent.Get(); ok {
		out.Urgent = v
	}
	if v, ok := u.Important.Get(); ok {
		out.Important = v
	}
	if v, ok := u.Checklist.Get(); ok {
		out.Checklist = slices.Clone(v)
		if out.Checklist == nil {
			out.Checklist = []string{}
		}
	}
	if v, ok := u.Remarks.Get(); ok {
		out.Remarks = nil
		if v != nil {
			r := *v
			out.Remarks = &r
		}
	}

	status, statusSet := u.Status.Get()
	if statusSet && status == model.StatusInProgress && base.StartedAt == nil {
		out.StartedAt = model.TimePtr(now())
	}
	if statusSet && status == model.StatusFinished && base.FinishedAt == nil {
		out.FinishedAt = model.TimePtr(now())
	}
	return out
}
