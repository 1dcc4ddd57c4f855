package colors

import "github.com/harrisonrobin/arrange/pkg/matrix"

// Google Calendar event color IDs.
const (
	Tomato    = "11"
	Banana    = "5"
	Tangerine = "6"
	Graphite  = "8"
)

// ForQuadrant returns the event colorId used for items in q.
func ForQuadrant(q matrix.Quadrant) string {
	switch q {
	case matrix.DoFirst:
		return Tomato
	case matrix.Schedule:
		return Banana
	case matrix.Delegate:
		return Tangerine
	}
	return Graphite
}
