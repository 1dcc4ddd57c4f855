package board

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/harrisonrobin/arrange/pkg/matrix"
	"github.com/harrisonrobin/arrange/pkg/merge"
	"github.com/harrisonrobin/arrange/pkg/model"
)

// ErrUnknownItem is returned when a mutation names an item not on the board.
var ErrUnknownItem = errors.New("item is not on the board")

// Updater writes a partial update to the calendar.
type Updater interface {
	Update(ctx context.Context, id string, u model.Update) (model.Item, error)
}

// Phase is the state of a single mutation.
type Phase int

const (
	Idle Phase = iota
	Pending
	Committed
	RolledBack
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled back"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Mutation tracks one optimistic change until the calendar confirms or
// rejects it.
type Mutation struct {
	ItemID string

	mu    sync.Mutex
	phase Phase
	err   error
	done  chan struct{}
}

func newMutation(id string, phase Phase) *Mutation {
	return &Mutation{ItemID: id, phase: phase, done: make(chan struct{})}
}

func (m *Mutation) finish(phase Phase, err error) {
	m.mu.Lock()
	m.phase, m.err = phase, err
	m.mu.Unlock()
	close(m.done)
}

// Phase returns the current phase.
func (m *Mutation) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Done is closed once the mutation has committed, rolled back or was a no-op.
func (m *Mutation) Done() <-chan struct{} {
	return m.done
}

// Wait blocks until the mutation is settled and returns its final phase and
// the calendar error, if any.
func (m *Mutation) Wait() (Phase, error) {
	<-m.done
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase, m.err
}

// Controller applies user reclassifications and status changes to a Board
// before the calendar has confirmed them, and restores the previous list if
// the calendar rejects them. Failed mutations are not retried.
type Controller struct {
	board *Board
	store Updater
	now   func() time.Time
}

func NewController(b *Board, store Updater) *Controller {
	return &Controller{board: b, store: store, now: time.Now}
}

// Reclassify sets the urgent and important flags of an item.
func (c *Controller) Reclassify(ctx context.Context, id string, urgent, important bool) (*Mutation, error) {
	return c.apply(ctx, id,
		func(it *model.Item) bool {
			if it.Urgent == urgent && it.Important == important {
				return false
			}
			it.Urgent, it.Important = urgent, important
			return true
		},
		model.Update{Urgent: model.Some(urgent), Important: model.Some(important)},
	)
}

// MoveTo reclassifies an item into quadrant q, as when it is dragged there.
func (c *Controller) MoveTo(ctx context.Context, id string, q matrix.Quadrant) (*Mutation, error) {
	urgent, important := q.Flags()
	return c.Reclassify(ctx, id, urgent, important)
}

// SetStatus changes the status of an item. The local copy gets the same
// derived timestamps the calendar write will record.
func (c *Controller) SetStatus(ctx context.Context, id string, status model.Status) (*Mutation, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q", status)
	}
	u := model.Update{Status: model.Some(status)}
	return c.apply(ctx, id,
		func(it *model.Item) bool {
			if it.Status == status {
				return false
			}
			it.Payload = merge.Merge(&it.Payload, u, c.now)
			return true
		},
		u,
	)
}

// apply captures the board as it is now, mutates the item in place and sends
// u to the calendar in the background. mutate returns false when there is
// nothing to change.
func (c *Controller) apply(ctx context.Context, id string, mutate func(*model.Item) bool, u model.Update) (*Mutation, error) {
	b := c.board
	b.mu.Lock()
	i := b.index(id)
	if i < 0 {
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	snapshot := cloneItems(b.items)
	if !mutate(&b.items[i]) {
		b.mu.Unlock()
		m := newMutation(id, Idle)
		close(m.done)
		return m, nil
	}
	b.pending++
	b.mu.Unlock()

	m := newMutation(id, Pending)
	go func() {
		_, err := c.store.Update(ctx, id, u)

		b.mu.Lock()
		b.pending--
		if err != nil {
			b.items = snapshot
			b.lastErr = err
		}
		b.mu.Unlock()

		if err != nil {
			log.Printf("could not update item %s, reverting: %v", id, err)
			m.finish(RolledBack, err)
			return
		}
		m.finish(Committed, nil)
	}()
	return m, nil
}
