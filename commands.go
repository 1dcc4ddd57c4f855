package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/harrisonrobin/arrange/pkg/board"
	"github.com/harrisonrobin/arrange/pkg/config"
	"github.com/harrisonrobin/arrange/pkg/export"
	"github.com/harrisonrobin/arrange/pkg/index"
	"github.com/harrisonrobin/arrange/pkg/matrix"
	"github.com/harrisonrobin/arrange/pkg/model"
	"github.com/harrisonrobin/arrange/pkg/overdue"
	"github.com/harrisonrobin/arrange/pkg/store"
)

const timeLayout = "2006-01-02 15:04"

var errNoIndex = errors.New("no item index available; run -list first")

type app struct {
	cfg   *config.Config
	store *store.Store
	index *index.ItemIndex
	out   io.Writer
	now   func() time.Time
}

func (a *app) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}

// fetch lists the items of the configured calendar within days of today,
// ordered by quadrant and then by start.
func (a *app) fetch(ctx context.Context, days int) ([]model.Item, error) {
	now := a.clock()
	items, err := a.store.List(ctx, now.AddDate(0, 0, -days), now.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}
	sortItems(items)
	return items, nil
}

func sortItems(items []model.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		qi, qj := matrix.Of(items[i]), matrix.Of(items[j])
		if qi != qj {
			return qi < qj
		}
		si, sj := items[i].WindowStart, items[j].WindowStart
		if si == nil || sj == nil {
			return si != nil
		}
		return si.Before(*sj)
	})
}

func (a *app) remember(ctx context.Context, items []model.Item) {
	if a.index == nil {
		return
	}
	if err := a.index.Save(ctx, a.cfg.Calendar, items); err != nil {
		log.Printf("Warning: failed to save item index: %v", err)
	}
}

func (a *app) list(ctx context.Context, days int) error {
	items, err := a.fetch(ctx, days)
	if err != nil {
		return err
	}
	a.remember(ctx, items)
	a.print(items)
	return nil
}

func (a *app) print(items []model.Item) {
	now := a.clock()
	loc := a.cfg.Location()
	for _, q := range matrix.Quadrants() {
		fmt.Fprintf(a.out, "== %s ==\n", q)
		for i, it := range items {
			if matrix.Of(it) != q {
				continue
			}
			fmt.Fprintf(a.out, "%3d. %s%s [%s]", i+1, prefix(it, now), it.Subject, matrix.StatusLabel(it.Status))
			if it.WindowEnd != nil {
				fmt.Fprintf(a.out, " due %s", it.WindowEnd.In(loc).Format(timeLayout))
			}
			if len(it.Categories) > 0 {
				fmt.Fprintf(a.out, " (%s)", strings.Join(it.Categories, ", "))
			}
			fmt.Fprintln(a.out)
			for _, line := range it.Checklist {
				fmt.Fprintf(a.out, "       - %s\n", line)
			}
		}
	}
}

func prefix(it model.Item, now time.Time) string {
	if p := overdue.Prefix(it, now); p != "" {
		return p + " "
	}
	return ""
}

func (a *app) overdue(ctx context.Context, days int) error {
	items, err := a.fetch(ctx, days)
	if err != nil {
		return err
	}
	a.remember(ctx, items)
	late := overdue.Sweep(items, a.clock())
	if len(late) == 0 {
		fmt.Fprintln(a.out, "Nothing overdue.")
		return nil
	}
	loc := a.cfg.Location()
	for _, it := range late {
		fmt.Fprintf(a.out, "! %s [%s, %s] was due %s\n", it.Subject, matrix.Of(it),
			matrix.StatusLabel(it.Status), it.WindowEnd.In(loc).Format(timeLayout))
	}
	return nil
}

func (a *app) add(ctx context.Context, opts options) error {
	it := model.Item{
		Subject:    opts.add,
		Categories: opts.categories,
		Payload:    model.DefaultPayload(),
	}
	it.Urgent, it.Important = opts.urgent, opts.important
	if opts.status != "" {
		s, err := matrix.ParseStatus(opts.status)
		if err != nil {
			return err
		}
		it.Status = s
	}
	if len(opts.checklist) > 0 {
		it.Checklist = opts.checklist
	}
	if opts.remarks != "" {
		kind := model.RemarksText
		if opts.markdown {
			kind = model.RemarksMarkdown
		}
		it.Remarks = &model.Remarks{Kind: kind, Content: opts.remarks}
	}

	var err error
	if it.WindowStart, err = a.parseTime(opts.start); err != nil {
		return err
	}
	if it.WindowEnd, err = a.parseTime(opts.end); err != nil {
		return err
	}

	created, err := a.store.Create(ctx, it)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added '%s' to %s (%s)\n", created.Subject, matrix.Of(created), created.ID)
	return nil
}

func (a *app) parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(timeLayout, s, a.cfg.Location())
	if err != nil {
		return nil, fmt.Errorf("invalid time %q, expected %q or RFC3339", s, timeLayout)
	}
	return &t, nil
}

// mutate resolves ref against the indexed board, runs one optimistic change
// through the controller and writes the item as it ended up back to the
// index. Only that item can differ from the indexed board, and positions are
// kept as last listed.
func (a *app) mutate(ctx context.Context, ref string, run func(*board.Controller, string) (*board.Mutation, error)) (model.Item, error) {
	if a.index == nil {
		return model.Item{}, errNoIndex
	}
	if ref == "" {
		return model.Item{}, errors.New("-item is required")
	}
	items, err := a.index.Load(ctx, a.cfg.Calendar)
	if err != nil {
		return model.Item{}, err
	}
	target, err := a.index.Resolve(ctx, a.cfg.Calendar, ref)
	if err != nil {
		return model.Item{}, err
	}

	b := board.New(items)
	m, err := run(board.NewController(b, a.store), target.ID)
	if err != nil {
		return model.Item{}, err
	}
	phase, err := m.Wait()
	it, _ := b.Find(target.ID)
	if perr := a.index.Put(ctx, a.cfg.Calendar, it); perr != nil {
		log.Printf("Warning: failed to save item index: %v", perr)
	}
	if phase == board.RolledBack {
		return model.Item{}, fmt.Errorf("could not update '%s', change rolled back: %w", target.Subject, err)
	}
	return it, nil
}

func (a *app) move(ctx context.Context, ref, quadrant string) error {
	q, err := matrix.ParseQuadrant(quadrant)
	if err != nil {
		return err
	}
	it, err := a.mutate(ctx, ref, func(c *board.Controller, id string) (*board.Mutation, error) {
		return c.MoveTo(ctx, id, q)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "'%s' is now in %s\n", it.Subject, matrix.Of(it))
	return nil
}

func (a *app) setStatus(ctx context.Context, ref, status string) error {
	s, err := matrix.ParseStatus(status)
	if err != nil {
		return err
	}
	it, err := a.mutate(ctx, ref, func(c *board.Controller, id string) (*board.Mutation, error) {
		return c.SetStatus(ctx, id, s)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "'%s' is now %s\n", it.Subject, matrix.StatusLabel(it.Status))
	return nil
}

func (a *app) remove(ctx context.Context, ref string) error {
	if a.index == nil {
		return errNoIndex
	}
	if ref == "" {
		return errors.New("-item is required")
	}
	target, err := a.index.Resolve(ctx, a.cfg.Calendar, ref)
	if err != nil {
		return err
	}
	if err := a.store.Delete(ctx, target.ID); err != nil {
		return err
	}

	// The other items keep the positions shown by the last listing.
	if err := a.index.Remove(ctx, a.cfg.Calendar, target.ID); err != nil {
		log.Printf("Warning: failed to update item index: %v", err)
	}
	fmt.Fprintf(a.out, "Deleted '%s'\n", target.Subject)
	return nil
}

func (a *app) export(ctx context.Context, path string, days int) error {
	items, err := a.fetch(ctx, days)
	if err != nil {
		return err
	}
	if path == "-" {
		return export.WriteICS(a.out, a.cfg.Calendar, items, a.clock())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	if err := export.WriteICS(f, a.cfg.Calendar, items, a.clock()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	log.Printf("Exported %d items to %s", len(items), path)
	return nil
}
