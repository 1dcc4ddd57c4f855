package overdue

import (
	"slices"
	"time"

	"github.com/harrisonrobin/arrange/pkg/model"
)

// Open reports whether the item still needs work.
func Open(it model.Item) bool {
	return it.Status != model.StatusFinished && it.Status != model.StatusCancelled
}

// Sweep returns the open items whose estimated completion is before now,
// earliest first.
func Sweep(items []model.Item, now time.Time) []model.Item {
	var swept []model.Item
	for _, it := range items {
		if Open(it) && it.WindowEnd != nil && it.WindowEnd.Before(now) {
			swept = append(swept, it)
		}
	}
	slices.SortStableFunc(swept, func(a, b model.Item) int {
		return a.WindowEnd.Compare(*b.WindowEnd)
	})
	return swept
}

// Prefix is the marker printed before an item's subject: "✓" when finished,
// "‣" when in progress, "!" when overdue.
func Prefix(it model.Item, now time.Time) string {
	switch {
	case it.Status == model.StatusFinished:
		return "✓"
	case it.Status == model.StatusInProgress:
		return "‣"
	case Open(it) && it.WindowEnd != nil && it.WindowEnd.Before(now):
		return "!"
	}
	return ""
}
