package core

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

type Decision int

const (
	Cancelled Decision = iota
	Confirmed
)

func (d Decision) String() string {
	if d == Confirmed {
		return "confirmed"
	}
	return "cancelled"
}

var ErrConfirmPending = errors.New("another confirmation is already pending")

type pendingConfirm struct {
	id       string
	response chan bool
}

// Confirmer asks the user one yes/no question at a time. The question goes
// out through ask; the answer comes back through Resolve.
type Confirmer struct {
	mu      sync.Mutex
	pending *pendingConfirm
	ask     func(id, prompt string) error
}

func NewConfirmer(ask func(id, prompt string) error) *Confirmer {
	return &Confirmer{ask: ask}
}

// Request blocks until the user answers or ctx ends. A cancelled context
// counts as Cancelled.
func (c *Confirmer) Request(ctx context.Context, prompt string) (Decision, error) {
	p := &pendingConfirm{
		id:       uuid.NewString(),
		response: make(chan bool, 1),
	}

	c.mu.Lock()
	if c.pending != nil {
		c.mu.Unlock()
		return Cancelled, ErrConfirmPending
	}
	c.pending = p
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.pending == p {
			c.pending = nil
		}
		c.mu.Unlock()
	}()

	if err := c.ask(p.id, prompt); err != nil {
		return Cancelled, err
	}

	select {
	case approved := <-p.response:
		if approved {
			return Confirmed, nil
		}
		return Cancelled, nil
	case <-ctx.Done():
		return Cancelled, ctx.Err()
	}
}

// Resolve answers the pending request id. Answers for unknown or already
// resolved requests are ignored.
func (c *Confirmer) Resolve(id string, approved bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil || c.pending.id != id {
		return false
	}
	select {
	case c.pending.response <- approved:
		return true
	default:
		return false
	}
}

// Pending returns the ID of the request waiting for an answer, if any.
func (c *Confirmer) Pending() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return "", false
	}
	return c.pending.id, true
}
