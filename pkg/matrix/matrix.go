// Package matrix classifies items into the four urgent/important quadrants
// and labels statuses.
package matrix

import (
	"fmt"
	"strings"

	"github.com/harrisonrobin/arrange/pkg/model"
)

type Quadrant int

const (
	DoFirst   Quadrant = iota // urgent and important
	Schedule                  // important, not urgent
	Delegate                  // urgent, not important
	Eliminate                 // neither
)

// Quadrants lists the quadrants in display order.
func Quadrants() []Quadrant {
	return []Quadrant{DoFirst, Schedule, Delegate, Eliminate}
}

// Classify maps the two flags to their quadrant.
func Classify(urgent, important bool) Quadrant {
	switch {
	case urgent && important:
		return DoFirst
	case important:
		return Schedule
	case urgent:
		return Delegate
	default:
		return Eliminate
	}
}

// Of returns the quadrant of an item.
func Of(it model.Item) Quadrant {
	return Classify(it.Urgent, it.Important)
}

// Flags returns the (urgent, important) pair that classifies as q.
func (q Quadrant) Flags() (urgent, important bool) {
	switch q {
	case DoFirst:
		return true, true
	case Schedule:
		return false, true
	case Delegate:
		return true, false
	}
	return false, false
}

func (q Quadrant) String() string {
	switch q {
	case DoFirst:
		return "Do First"
	case Schedule:
		return "Schedule"
	case Delegate:
		return "Delegate"
	case Eliminate:
		return "Eliminate"
	}
	return fmt.Sprintf("Quadrant(%d)", int(q))
}

// Slug is the command-line spelling of q.
func (q Quadrant) Slug() string {
	return strings.ReplaceAll(strings.ToLower(q.String()), " ", "-")
}

// ParseQuadrant accepts a label ("Do First") or a slug ("do-first").
func ParseQuadrant(s string) (Quadrant, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, q := range Quadrants() {
		if norm == q.Slug() || norm == strings.ToLower(q.String()) {
			return q, nil
		}
	}
	return 0, fmt.Errorf("unknown quadrant %q", s)
}

var statusLabels = map[model.Status]string{
	model.StatusNew:        "New",
	model.StatusInProgress: "In Progress",
	model.StatusBlocked:    "Blocked",
	model.StatusFinished:   "Finished",
	model.StatusCancelled:  "Cancelled",
}

// Statuses returns every status in lifecycle order.
func Statuses() []model.Status {
	return []model.Status{
		model.StatusNew,
		model.StatusInProgress,
		model.StatusBlocked,
		model.StatusFinished,
		model.StatusCancelled,
	}
}

// StatusLabel returns the display label of s. It panics on a status outside
// the closed set.
func StatusLabel(s model.Status) string {
	label, ok := statusLabels[s]
	if !ok {
		panic(fmt.Sprintf("matrix: unknown status %q", string(s)))
	}
	return label
}

// ParseStatus accepts the stored value ("inProgress") or the label
// ("In Progress"), case-insensitively.
func ParseStatus(s string) (model.Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, st := range Statuses() {
		if norm == strings.ToLower(string(st)) || norm == strings.ToLower(statusLabels[st]) ||
			norm == strings.ReplaceAll(strings.ToLower(statusLabels[st]), " ", "-") {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}
