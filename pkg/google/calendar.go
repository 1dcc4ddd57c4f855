package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/harrisonrobin/arrange/pkg/auth"
	"github.com/harrisonrobin/arrange/pkg/model"
	"github.com/harrisonrobin/arrange/pkg/util"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

// categoriesProperty is the private extended property holding an event's
// categories as a JSON array.
const categoriesProperty = "arrange_categories"

// CalendarClient is a Google Calendar API client. Every request carries a
// bearer token taken from the supplier at call time.
type CalendarClient struct {
	srv    *calendar.Service
	tokens auth.TokenSupplier
}

// NewCalendarClient creates a new Google Calendar client.
func NewCalendarClient(srv *calendar.Service, tokens auth.TokenSupplier) *CalendarClient {
	return &CalendarClient{srv: srv, tokens: tokens}
}

type headerCall interface {
	Header() http.Header
}

// authorize sets the Authorization header of call.
func (c *CalendarClient) authorize(ctx context.Context, call headerCall) error {
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrToken) {
			return err
		}
		return auth.TokenError(err)
	}
	call.Header().Set("Authorization", "Bearer "+tok)
	return nil
}

// ListEntries fetches every event overlapping [start, end), following pages.
func (c *CalendarClient) ListEntries(ctx context.Context, calendarID string, start, end time.Time) ([]model.Entry, error) {
	call := c.srv.Events.List(calendarID).
		TimeMin(start.UTC().Format(time.RFC3339)).
		TimeMax(end.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")
	if err := c.authorize(ctx, call); err != nil {
		return nil, err
	}

	var entries []model.Entry
	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, ev := range page.Items {
			if ev.Status == "cancelled" {
				continue
			}
			entries = append(entries, fromEvent(ev))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events from calendar: %w", err)
	}
	return entries, nil
}

// GetEntry fetches a single event.
func (c *CalendarClient) GetEntry(ctx context.Context, calendarID, id string) (model.Entry, error) {
	call := c.srv.Events.Get(calendarID, id).Context(ctx)
	if err := c.authorize(ctx, call); err != nil {
		return model.Entry{}, err
	}
	ev, err := call.Do()
	if err != nil {
		return model.Entry{}, fmt.Errorf("unable to fetch event %s: %w", id, err)
	}
	return fromEvent(ev), nil
}

// CreateEntry inserts a new event.
func (c *CalendarClient) CreateEntry(ctx context.Context, calendarID string, e model.Entry) (model.Entry, error) {
	event, err := toEvent(e)
	if err != nil {
		return model.Entry{}, err
	}
	call := c.srv.Events.Insert(calendarID, event).Context(ctx)
	if err := c.authorize(ctx, call); err != nil {
		return model.Entry{}, err
	}
	created, err := call.Do()
	if err != nil {
		return model.Entry{}, fmt.Errorf("unable to create event: %w", err)
	}
	return fromEvent(created), nil
}

// PatchEntry performs a partial update on an event. Only fields set in p are
// sent.
func (c *CalendarClient) PatchEntry(ctx context.Context, calendarID, id string, p model.EntryPatch) (model.Entry, error) {
	patch, err := toPatch(p)
	if err != nil {
		return model.Entry{}, err
	}
	call := c.srv.Events.Patch(calendarID, id, patch).Context(ctx)
	if err := c.authorize(ctx, call); err != nil {
		return model.Entry{}, err
	}
	updated, err := call.Do()
	if err != nil {
		return model.Entry{}, fmt.Errorf("unable to patch event %s: %w", id, err)
	}
	return fromEvent(updated), nil
}

// DeleteEntry deletes an event from the calendar.
func (c *CalendarClient) DeleteEntry(ctx context.Context, calendarID, id string) error {
	call := c.srv.Events.Delete(calendarID, id).Context(ctx)
	if err := c.authorize(ctx, call); err != nil {
		return err
	}
	if err := call.Do(); err != nil {
		return fmt.Errorf("unable to delete event %s: %w", id, err)
	}
	return nil
}

// IsNotFound reports whether err is a 404 or 410 from the Calendar API.
func IsNotFound(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone
	}
	return false
}

func toEvent(e model.Entry) (*calendar.Event, error) {
	event := &calendar.Event{
		Summary:         e.Subject,
		Description:     e.Body,
		ColorId:         e.ColorID,
		ForceSendFields: []string{"Description"},
	}
	if e.Start != nil {
		event.Start = util.EventTime(*e.Start)
	}
	if e.End != nil {
		event.End = util.EventTime(*e.End)
	}
	props, err := categoryProperties(e.Categories)
	if err != nil {
		return nil, err
	}
	event.ExtendedProperties = props
	return event, nil
}

func toPatch(p model.EntryPatch) (*calendar.Event, error) {
	patch := &calendar.Event{}
	if v, ok := p.Subject.Get(); ok {
		patch.Summary = v
		patch.ForceSendFields = append(patch.ForceSendFields, "Summary")
	}
	if v, ok := p.Body.Get(); ok {
		patch.Description = v
		patch.ForceSendFields = append(patch.ForceSendFields, "Description")
	}
	if v, ok := p.ColorID.Get(); ok {
		patch.ColorId = v
	}
	if v, ok := p.Start.Get(); ok {
		patch.Start = util.EventTime(v)
	}
	if v, ok := p.End.Get(); ok {
		patch.End = util.EventTime(v)
	}
	if v, ok := p.Categories.Get(); ok {
		props, err := categoryProperties(v)
		if err != nil {
			return nil, err
		}
		patch.ExtendedProperties = props
	}
	return patch, nil
}

func categoryProperties(categories []string) (*calendar.EventExtendedProperties, error) {
	if categories == nil {
		categories = []string{}
	}
	data, err := json.Marshal(categories)
	if err != nil {
		return nil, fmt.Errorf("could not encode categories: %w", err)
	}
	return &calendar.EventExtendedProperties{
		Private: map[string]string{categoriesProperty: string(data)},
	}, nil
}

func fromEvent(ev *calendar.Event) model.Entry {
	e := model.Entry{
		ID:         ev.Id,
		Subject:    ev.Summary,
		Body:       ev.Description,
		ColorID:    ev.ColorId,
		Categories: []string{},
	}
	var err error
	if e.Start, err = util.ParseEventTime(ev.Start); err != nil {
		log.Printf("event %s: %v", ev.Id, err)
	}
	if e.End, err = util.ParseEventTime(ev.End); err != nil {
		log.Printf("event %s: %v", ev.Id, err)
	}
	if ev.ExtendedProperties != nil {
		if raw, ok := ev.ExtendedProperties.Private[categoriesProperty]; ok && raw != "" {
			if err := json.Unmarshal([]byte(raw), &e.Categories); err != nil {
				log.Printf("event %s: could not decode categories: %v", ev.Id, err)
				e.Categories = []string{}
			}
		}
	}
	return e
}
