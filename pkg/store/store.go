// Package store keeps items in a calendar through an Entries collaborator,
// decoding and merging the embedded payload on every read and write.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/harrisonrobin/arrange/pkg/codec"
	"github.com/harrisonrobin/arrange/pkg/colors"
	"github.com/harrisonrobin/arrange/pkg/matrix"
	"github.com/harrisonrobin/arrange/pkg/merge"
	"github.com/harrisonrobin/arrange/pkg/model"
	"github.com/harrisonrobin/arrange/pkg/util"
)

// ErrValidation is returned, wrapped with the reason, when an item or update
// is rejected before anything is sent to the calendar.
var ErrValidation = errors.New("invalid item")

// Entries is the calendar service as seen by the store. Errors are passed
// back to callers untouched.
type Entries interface {
	ListEntries(ctx context.Context, calendarID string, start, end time.Time) ([]model.Entry, error)
	GetEntry(ctx context.Context, calendarID, id string) (model.Entry, error)
	CreateEntry(ctx context.Context, calendarID string, e model.Entry) (model.Entry, error)
	PatchEntry(ctx context.Context, calendarID, id string, p model.EntryPatch) (model.Entry, error)
	DeleteEntry(ctx context.Context, calendarID, id string) error
}

type Store struct {
	entries    Entries
	calendarID string
	codec      codec.Codec
	now        func() time.Time
}

type Option func(*Store)

// WithCodec replaces the default marker codec.
func WithCodec(c codec.Codec) Option {
	return func(s *Store) { s.codec = c }
}

// WithClock sets the clock used for derived timestamps and default windows.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a store for the calendar identified by calendarID.
func New(entries Entries, calendarID string, opts ...Option) *Store {
	s := &Store{
		entries:    entries,
		calendarID: calendarID,
		codec:      codec.MarkerCodec{},
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// List returns every item whose event overlaps [start, end). An event whose
// description carries no readable payload is returned with the default
// payload.
func (s *Store) List(ctx context.Context, start, end time.Time) ([]model.Item, error) {
	entries, err := s.entries.ListEntries(ctx, s.calendarID, start, end)
	if err != nil {
		return nil, err
	}
	items := make([]model.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, s.toItem(e))
	}
	return items, nil
}

// Get fetches a single item.
func (s *Store) Get(ctx context.Context, id string) (model.Item, error) {
	e, err := s.entries.GetEntry(ctx, s.calendarID, id)
	if err != nil {
		return model.Item{}, err
	}
	return s.toItem(e), nil
}

// Create stores a new item. A missing window defaults to one hour from now
// for thirty minutes.
func (s *Store) Create(ctx context.Context, it model.Item) (model.Item, error) {
	it.Subject = strings.TrimSpace(it.Subject)
	if err := validateItem(it); err != nil {
		return model.Item{}, err
	}

	p := it.Payload
	if p.Status == "" {
		p.Status = model.StatusNew
	}
	payload := merge.Merge(nil, model.PayloadUpdate(p), s.now)
	body, err := s.codec.Encode(payload)
	if err != nil {
		return model.Item{}, err
	}

	start, end := util.DefaultWindow(s.now())
	if it.WindowStart != nil {
		start = *it.WindowStart
		if it.WindowEnd == nil {
			end = start.Add(util.DefaultDuration)
		}
	}
	if it.WindowEnd != nil {
		end = *it.WindowEnd
	}
	if err := validateWindow(start, end); err != nil {
		return model.Item{}, err
	}

	created, err := s.entries.CreateEntry(ctx, s.calendarID, model.Entry{
		Subject:    it.Subject,
		Categories: nonNil(it.Categories),
		Start:      &start,
		End:        &end,
		Body:       body,
		ColorID:    colors.ForQuadrant(matrix.Classify(payload.Urgent, payload.Important)),
	})
	if err != nil {
		return model.Item{}, err
	}
	return s.toItem(created), nil
}

// Update applies u to the stored item. The current event is always fetched
// before the patch is sent: the payload is rewritten in full on every
// update. There is no version check, so concurrent writers to the same item
// race and the last patch wins.
func (s *Store) Update(ctx context.Context, id string, u model.Update) (model.Item, error) {
	if id == "" {
		return model.Item{}, fmt.Errorf("%w: missing id", ErrValidation)
	}
	if err := validateUpdate(u); err != nil {
		return model.Item{}, err
	}

	current, err := s.entries.GetEntry(ctx, s.calendarID, id)
	if err != nil {
		return model.Item{}, err
	}

	var existing *model.Payload
	if p, ok := s.codec.Decode(current.Body); ok {
		existing = &p
	} else {
		logUnreadable(current)
	}
	payload := merge.Merge(existing, u, s.now)
	body, err := s.codec.Embed(current.Body, payload)
	if err != nil {
		return model.Item{}, err
	}

	start, startSet := u.WindowStart.Get()
	end, endSet := u.WindowEnd.Get()
	if startSet || endSet {
		effStart, effEnd := current.Start, current.End
		if startSet {
			effStart = &start
		}
		if endSet {
			effEnd = &end
		}
		if effStart != nil && effEnd != nil {
			if err := validateWindow(*effStart, *effEnd); err != nil {
				return model.Item{}, err
			}
		}
	}

	patch := model.EntryPatch{Body: model.Some(body)}
	if v, ok := u.Subject.Get(); ok {
		patch.Subject = model.Some(strings.TrimSpace(v))
	}
	if v, ok := u.Categories.Get(); ok {
		patch.Categories = model.Some(nonNil(v))
	}
	if startSet {
		patch.Start = model.Some(start)
	}
	if endSet {
		patch.End = model.Some(end)
	}
	if u.Urgent.IsSet() || u.Important.IsSet() {
		patch.ColorID = model.Some(colors.ForQuadrant(matrix.Classify(payload.Urgent, payload.Important)))
	}

	updated, err := s.entries.PatchEntry(ctx, s.calendarID, id, patch)
	if err != nil {
		return model.Item{}, err
	}
	return s.toItem(updated), nil
}

// Delete removes the item's event.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: missing id", ErrValidation)
	}
	return s.entries.DeleteEntry(ctx, s.calendarID, id)
}

func (s *Store) toItem(e model.Entry) model.Item {
	payload, ok := s.codec.Decode(e.Body)
	if !ok {
		logUnreadable(e)
	}
	return model.Item{
		ID:          e.ID,
		Subject:     e.Subject,
		Categories:  nonNil(e.Categories),
		WindowStart: e.Start,
		WindowEnd:   e.End,
		Payload:     payload,
	}
}

// logUnreadable reports an event whose description holds text but no
// readable payload. Empty descriptions are expected and not reported.
func logUnreadable(e model.Entry) {
	if strings.TrimSpace(e.Body) != "" {
		log.Printf("event %s has no readable item payload, using defaults", e.ID)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
