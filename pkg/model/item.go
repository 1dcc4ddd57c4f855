package model

import (
	"slices"
	"time"
)

// Status is the lifecycle state of an item.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "inProgress"
	StatusBlocked    Status = "blocked"
	StatusFinished   Status = "finished"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is one of the five known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusBlocked, StatusFinished, StatusCancelled:
		return true
	}
	return false
}

// RemarksKind tells how remarks content should be rendered.
type RemarksKind string

const (
	RemarksText     RemarksKind = "text"
	RemarksMarkdown RemarksKind = "markdown"
)

type Remarks struct {
	Kind    RemarksKind `json:"type"`
	Content string      `json:"content"`
}

// Payload holds the fields that the calendar has no native slot for. It is
// what gets embedded in the event description.
type Payload struct {
	Status     Status
	Urgent     bool
	Important  bool
	Checklist  []string
	Remarks    *Remarks
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// DefaultPayload is the payload of an item with no recorded state.
func DefaultPayload() Payload {
	return Payload{
		Status:    StatusNew,
		Checklist: []string{},
	}
}

// Clone returns a deep copy of p.
func (p Payload) Clone() Payload {
	out := p
	out.Checklist = slices.Clone(p.Checklist)
	if out.Checklist == nil {
		out.Checklist = []string{}
	}
	if p.Remarks != nil {
		r := *p.Remarks
		out.Remarks = &r
	}
	out.StartedAt = cloneTime(p.StartedAt)
	out.FinishedAt = cloneTime(p.FinishedAt)
	return out
}

// Equal compares two payloads field by field. A nil checklist equals an
// empty one.
func (p Payload) Equal(o Payload) bool {
	if p.Status != o.Status || p.Urgent != o.Urgent || p.Important != o.Important {
		return false
	}
	if !slices.Equal(p.Checklist, o.Checklist) {
		return false
	}
	if (p.Remarks == nil) != (o.Remarks == nil) {
		return false
	}
	if p.Remarks != nil && *p.Remarks != *o.Remarks {
		return false
	}
	return timeEqual(p.StartedAt, o.StartedAt) && timeEqual(p.FinishedAt, o.FinishedAt)
}

// Item is a task record as the rest of the application sees it: the native
// event fields plus the decoded payload.
type Item struct {
	ID          string
	Subject     string
	Categories  []string
	WindowStart *time.Time // estimated start
	WindowEnd   *time.Time // estimated completion
	Payload
}

// Clone returns a deep copy of it.
func (it Item) Clone() Item {
	out := it
	out.Categories = slices.Clone(it.Categories)
	out.WindowStart = cloneTime(it.WindowStart)
	out.WindowEnd = cloneTime(it.WindowEnd)
	out.Payload = it.Payload.Clone()
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func timeEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time {
	return &t
}
