// Package export writes items out as an iCalendar file of to-dos.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/harrisonrobin/arrange/pkg/matrix"
	"github.com/harrisonrobin/arrange/pkg/model"
)

const productID = "-//arrange//items//EN"

// Priority maps a quadrant to an iCalendar PRIORITY (1 highest, 9 lowest).
func Priority(q matrix.Quadrant) int {
	switch q {
	case matrix.DoFirst:
		return 1
	case matrix.Schedule:
		return 3
	case matrix.Delegate:
		return 5
	}
	return 9
}

func todoStatus(s model.Status) ics.ObjectStatus {
	switch s {
	case model.StatusInProgress, model.StatusBlocked:
		return ics.ObjectStatusInProcess
	case model.StatusFinished:
		return ics.ObjectStatusCompleted
	case model.StatusCancelled:
		return ics.ObjectStatusCancelled
	}
	return ics.ObjectStatusNeedsAction
}

// WriteICS writes one VTODO per item. stamp is used as DTSTAMP.
func WriteICS(w io.Writer, calendarName string, items []model.Item, stamp time.Time) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(calendarName)

	for _, it := range items {
		todo := cal.AddTodo(it.ID)
		todo.SetDtStampTime(stamp)
		todo.SetSummary(it.Subject)
		todo.SetStatus(todoStatus(it.Status))
		todo.SetProperty(ics.ComponentPropertyPriority, strconv.Itoa(Priority(matrix.Of(it))))
		// One property per category: a joined value would have its commas escaped.
		for _, c := range it.Categories {
			todo.AddProperty(ics.ComponentPropertyCategories, c)
		}
		if it.WindowStart != nil {
			todo.SetStartAt(*it.WindowStart)
		}
		if it.WindowEnd != nil {
			todo.SetDueAt(*it.WindowEnd)
		}
		if it.FinishedAt != nil {
			todo.SetCompletedAt(*it.FinishedAt)
		}
		if desc := describe(it); desc != "" {
			todo.SetDescription(desc)
		}
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("could not write calendar: %w", err)
	}
	return nil
}

func describe(it model.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s · %s\n", matrix.Of(it), matrix.StatusLabel(it.Status))
	if it.StartedAt != nil {
		fmt.Fprintf(&b, "Started: %s\n", it.StartedAt.UTC().Format(time.RFC3339))
	}
	if len(it.Checklist) > 0 {
		b.WriteString("\nChecklist:\n")
		for _, line := range it.Checklist {
			fmt.Fprintf(&b, "‣ %s\n", line)
		}
	}
	if it.Remarks != nil && it.Remarks.Content != "" {
		b.WriteString("\n")
		b.WriteString(it.Remarks.Content)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
