package client

import (
	"context"

	"stackit.dev/forum/pkg/optimistic"

	"github.com/google/uuid"
)

// VoteState is what a vote control renders.
type VoteState struct {
	Score    int64
	UserVote int
}

// VoteModel mirrors an answer's vote control: the new score shows at once
// and is rolled back if the API call fails.
type VoteModel struct {
	client   *Client
	answerID uuid.UUID
	overlay  *optimistic.Overlay[VoteState]
}

func NewVoteModel(c *Client, answerID uuid.UUID, score int64, userVote int) *VoteModel {
	return &VoteModel{
		client:   c,
		answerID: answerID,
		overlay:  optimistic.New(VoteState{Score: score, UserVote: userVote}),
	}
}

func (m *VoteModel) State() VoteState {
	return m.overlay.Value()
}

// Click applies a press of the up (1) or down (-1) button locally. Pressing
// the button that is already active retracts the vote. It returns the value
// to send to the server and the pending action.
func (m *VoteModel) Click(value int) (int, *optimistic.Action[VoteState]) {
	var old, next int
	a := m.overlay.Apply(
		func(s VoteState) VoteState {
			old, next = s.UserVote, value
			if old == value {
				next = 0
			}
			return VoteState{Score: s.Score + int64(next-old), UserVote: next}
		},
		func(s VoteState) VoteState {
			s.Score -= int64(next - old)
			if s.UserVote == next {
				s.UserVote = old
			}
			return s
		},
	)
	return next, a
}

// Settle finishes an action started with Click.
func (m *VoteModel) Settle(a *optimistic.Action[VoteState], err error) VoteState {
	if err != nil {
		state, _ := m.overlay.Reject(a)
		return state
	}
	_ = m.overlay.Confirm(a)
	return m.overlay.Value()
}

// Vote clicks and sends the result.
func (m *VoteModel) Vote(ctx context.Context, value int) (VoteState, error) {
	sent, a := m.Click(value)
	_, err := m.client.CastVote(ctx, m.answerID, sent)
	return m.Settle(a, err), err
}

// Refresh adopts server state, dropping anything still in flight.
func (m *VoteModel) Refresh(score int64, userVote int) {
	m.overlay.Reset(VoteState{Score: score, UserVote: userVote})
}

// AcceptModel mirrors the accept control on a question page.
type AcceptModel struct {
	client     *Client
	questionID uuid.UUID
	overlay    *optimistic.Overlay[uuid.UUID]
}

// NewAcceptModel starts from the accepted answer id, uuid.Nil when none.
func NewAcceptModel(c *Client, questionID, accepted uuid.UUID) *AcceptModel {
	return &AcceptModel{client: c, questionID: questionID, overlay: optimistic.New(accepted)}
}

func (m *AcceptModel) Accepted() uuid.UUID {
	return m.overlay.Value()
}

func (m *AcceptModel) IsAccepted(answerID uuid.UUID) bool {
	return m.overlay.Value() == answerID
}

func (m *AcceptModel) Accept(ctx context.Context, answerID uuid.UUID) error {
	var prev uuid.UUID
	a := m.overlay.Apply(
		func(cur uuid.UUID) uuid.UUID {
			prev = cur
			return answerID
		},
		func(cur uuid.UUID) uuid.UUID {
			if cur == answerID {
				return prev
			}
			return cur
		},
	)

	if _, err := m.client.AcceptAnswer(ctx, m.questionID, answerID); err != nil {
		_, _ = m.overlay.Reject(a)
		return err
	}
	_ = m.overlay.Confirm(a)
	return nil
}

func (m *AcceptModel) Refresh(accepted uuid.UUID) {
	m.overlay.Reset(accepted)
}

// ListModel is a list whose rows disappear as soon as a delete is issued and
// come back if the delete fails.
type ListModel[T any] struct {
	key     func(T) uuid.UUID
	overlay *optimistic.Overlay[[]T]
}

func NewListModel[T any](items []T, key func(T) uuid.UUID) *ListModel[T] {
	return &ListModel[T]{key: key, overlay: optimistic.New(clone(items))}
}

func (m *ListModel[T]) Items() []T {
	return clone(m.overlay.Value())
}

// Remove hides the row with the given id and calls del. The row is restored
// at its previous position when del fails.
func (m *ListModel[T]) Remove(ctx context.Context, id uuid.UUID, del func(ctx context.Context, id uuid.UUID) error) error {
	var (
		removed T
		index   = -1
	)
	a := m.overlay.Apply(
		func(items []T) []T {
			out := make([]T, 0, len(items))
			for i, it := range items {
				if index < 0 && m.key(it) == id {
					removed, index = it, i
					continue
				}
				out = append(out, it)
			}
			return out
		},
		func(items []T) []T {
			if index < 0 {
				return items
			}
			at := min(index, len(items))
			out := make([]T, 0, len(items)+1)
			out = append(out, items[:at]...)
			out = append(out, removed)
			return append(out, items[at:]...)
		},
	)

	if err := del(ctx, id); err != nil {
		_, _ = m.overlay.Reject(a)
		return err
	}
	_ = m.overlay.Confirm(a)
	return nil
}

func (m *ListModel[T]) Refresh(items []T) {
	m.overlay.Reset(clone(items))
}

func clone[T any](items []T) []T {
	return append([]T(nil), items...)
}
