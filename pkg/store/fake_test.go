package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/harrisonrobin/arrange/pkg/model"
)

// fakeEntries is an in-memory calendar. Calls are recorded in order and any
// operation can be made to fail.
type fakeEntries struct {
	mu      sync.Mutex
	entries map[string]model.Entry
	order   []string
	nextID  int
	calls   []string
	patches []model.EntryPatch
	fail    map[string]error
}

func newFakeEntries() *fakeEntries {
	return &fakeEntries{entries: map[string]model.Entry{}, fail: map[string]error{}}
}

func (f *fakeEntries) record(op string) error {
	f.calls = append(f.calls, op)
	return f.fail[op]
}

func (f *fakeEntries) ListEntries(ctx context.Context, calendarID string, start, end time.Time) ([]model.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("list"); err != nil {
		return nil, err
	}
	var out []model.Entry
	for _, id := range f.order {
		e := f.entries[id]
		if e.End != nil && !e.End.After(start) {
			continue
		}
		if e.Start != nil && !e.Start.Before(end) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEntries) GetEntry(ctx context.Context, calendarID, id string) (model.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("get"); err != nil {
		return model.Entry{}, err
	}
	e, ok := f.entries[id]
	if !ok {
		return model.Entry{}, fmt.Errorf("event %s not found", id)
	}
	return e, nil
}

func (f *fakeEntries) CreateEntry(ctx context.Context, calendarID string, e model.Entry) (model.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create"); err != nil {
		return model.Entry{}, err
	}
	f.nextID++
	e.ID = fmt.Sprintf("evt-%d", f.nextID)
	f.entries[e.ID] = e
	f.order = append(f.order, e.ID)
	return e, nil
}

func (f *fakeEntries) PatchEntry(ctx context.Context, calendarID, id string, p model.EntryPatch) (model.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("patch"); err != nil {
		return model.Entry{}, err
	}
	e, ok := f.entries[id]
	if !ok {
		return model.Entry{}, fmt.Errorf("event %s not found", id)
	}
	f.patches = append(f.patches, p)
	if v, ok := p.Subject.Get(); ok {
		e.Subject = v
	}
	if v, ok := p.Categories.Get(); ok {
		e.Categories = slices.Clone(v)
	}
	if v, ok := p.Start.Get(); ok {
		e.Start = &v
	}
	if v, ok := p.End.Get(); ok {
		e.End = &v
	}
	if v, ok := p.Body.Get(); ok {
		e.Body = v
	}
	if v, ok := p.ColorID.Get(); ok {
		e.ColorID = v
	}
	f.entries[id] = e
	return e, nil
}

func (f *fakeEntries) DeleteEntry(ctx context.Context, calendarID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("delete"); err != nil {
		return err
	}
	if _, ok := f.entries[id]; !ok {
		return fmt.Errorf("event %s not found", id)
	}
	delete(f.entries, id)
	f.order = slices.DeleteFunc(f.order, func(s string) bool { return s == id })
	return nil
}
