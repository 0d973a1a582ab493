// Package optimistic keeps a speculative view of server state that is shown
// immediately and rolled back when the server rejects the change.
package optimistic

import (
	"errors"
	"sync"
)

type State int

const (
	Pending State = iota
	Confirmed
	RolledBack
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case RolledBack:
		return "rolled-back"
	default:
		return "unknown"
	}
}

// ErrSettled is returned when confirming or rejecting an action twice, an
// action discarded by Reset, or an action that belongs to another overlay.
var ErrSettled = errors.New("optimistic: action already settled")

// Action is one speculative change applied to an Overlay.
type Action[T any] struct {
	state    State
	snapshot T
	revert   func(T) T
	gen      uint64
}

func (a *Action[T]) State() State {
	return a.state
}

// Overlay holds the value shown to the user plus the actions that produced it.
// It is safe for concurrent use.
type Overlay[T any] struct {
	mu      sync.Mutex
	value   T
	gen     uint64
	applied []*Action[T]
}

func New[T any](initial T) *Overlay[T] {
	return &Overlay[T]{value: initial}
}

func (o *Overlay[T]) Value() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

// Outstanding counts actions that are still waiting for the server.
func (o *Overlay[T]) Outstanding() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, a := range o.applied {
		if a.state == Pending {
			n++
		}
	}
	return n
}

// Apply snapshots the current value, replaces it with mutate(value) and
// returns the pending action. revert undoes only this action's effect and is
// used when a later action has already been applied on top of it.
func (o *Overlay[T]) Apply(mutate, revert func(T) T) *Action[T] {
	o.mu.Lock()
	defer o.mu.Unlock()

	a := &Action[T]{state: Pending, snapshot: o.value, revert: revert, gen: o.gen}
	o.value = mutate(o.value)
	o.applied = append(o.applied, a)
	return a
}

// Confirm marks a as accepted by the server. The speculative value stays.
func (o *Overlay[T]) Confirm(a *Action[T]) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if a.state != Pending || a.gen != o.gen || o.indexOf(a) < 0 {
		return ErrSettled
	}
	a.state = Confirmed
	o.compact()
	return nil
}

// Reject rolls a back. When a is the newest applied action its snapshot is
// restored; otherwise only a's revert is applied to the current value and to
// the snapshots of the actions applied after it.
func (o *Overlay[T]) Reject(a *Action[T]) (T, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if a.state != Pending || a.gen != o.gen {
		return o.value, ErrSettled
	}

	idx := o.indexOf(a)
	if idx < 0 {
		return o.value, ErrSettled
	}
	if idx == len(o.applied)-1 {
		o.value = a.snapshot
	} else {
		o.value = a.revert(o.value)
		for _, later := range o.applied[idx+1:] {
			later.snapshot = a.revert(later.snapshot)
		}
	}

	a.state = RolledBack
	o.applied = append(o.applied[:idx], o.applied[idx+1:]...)
	o.compact()
	return o.value, nil
}

// Reset replaces the value with fresh server state and discards every
// outstanding action. Settling a discarded action returns ErrSettled.
func (o *Overlay[T]) Reset(server T) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.value = server
	o.gen++
	o.applied = nil
}

func (o *Overlay[T]) indexOf(a *Action[T]) int {
	for i, x := range o.applied {
		if x == a {
			return i
		}
	}
	return -1
}

// compact drops confirmed actions that no pending action precedes; their
// snapshots can no longer be restored.
func (o *Overlay[T]) compact() {
	i := 0
	for i < len(o.applied) && o.applied[i].state == Confirmed {
		i++
	}
	o.applied = o.applied[i:]
}
