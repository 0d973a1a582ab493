package client

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteModelClick(t *testing.T) {
	m := NewVoteModel(nil, uuid.New(), 10, 0)

	sent, a := m.Click(1)
	assert.Equal(t, 1, sent)
	assert.Equal(t, VoteState{Score: 11, UserVote: 1}, m.State())
	m.Settle(a, nil)

	sent, a = m.Click(-1)
	assert.Equal(t, -1, sent)
	assert.Equal(t, VoteState{Score: 9, UserVote: -1}, m.State(), "switching moves the score by two")
	m.Settle(a, nil)

	sent, a = m.Click(-1)
	assert.Equal(t, 0, sent, "pressing the active button retracts")
	assert.Equal(t, VoteState{Score: 10, UserVote: 0}, m.State())
	m.Settle(a, nil)
}

func TestVoteModelRollsBackOnError(t *testing.T) {
	var calls atomic.Int32
	c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"answer not found"}`))
	})
	m := NewVoteModel(c, uuid.New(), 3, 1)

	state, err := m.Vote(context.Background(), -1)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, VoteState{Score: 3, UserVote: 1}, state)
	assert.Equal(t, int32(1), calls.Load())
}

func TestVoteModelConfirms(t *testing.T) {
	c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"score":4,"user_vote":1}}`))
	})
	m := NewVoteModel(c, uuid.New(), 3, 0)

	state, err := m.Vote(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, VoteState{Score: 4, UserVote: 1}, state)
}

func TestVoteModelOutOfOrderSettlement(t *testing.T) {
	m := NewVoteModel(nil, uuid.New(), 10, 0)

	_, up := m.Click(1)
	_, retract := m.Click(1)
	require.Equal(t, VoteState{Score: 10, UserVote: 0}, m.State())

	// the retraction fails after the up vote succeeded
	m.Settle(up, nil)
	assert.Equal(t, VoteState{Score: 11, UserVote: 1}, m.Settle(retract, errors.New("boom")))
}

func TestVoteModelBothFail(t *testing.T) {
	m := NewVoteModel(nil, uuid.New(), 10, 0)

	_, up := m.Click(1)
	_, down := m.Click(-1)
	require.Equal(t, VoteState{Score: 9, UserVote: -1}, m.State())

	m.Settle(up, errors.New("boom"))
	assert.Equal(t, VoteState{Score: 10, UserVote: 0}, m.Settle(down, errors.New("boom")))
}

func TestVoteModelRefreshDiscardsPending(t *testing.T) {
	m := NewVoteModel(nil, uuid.New(), 10, 0)
	_, a := m.Click(1)

	m.Refresh(20, -1)
	assert.Equal(t, VoteState{Score: 20, UserVote: -1}, m.Settle(a, errors.New("late failure")))
}

func TestAcceptModel(t *testing.T) {
	questionID, first, second := uuid.New(), uuid.New(), uuid.New()
	var fail atomic.Bool
	c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/questions/"+questionID.String()+"/accept", r.URL.Path)
		if fail.Load() {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"answer does not belong to this question"}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{}}`))
	})
	m := NewAcceptModel(c, questionID, uuid.Nil)

	require.NoError(t, m.Accept(context.Background(), first))
	assert.True(t, m.IsAccepted(first))

	fail.Store(true)
	err := m.Accept(context.Background(), second)
	require.Error(t, err)
	assert.Equal(t, first, m.Accepted(), "a rejected switch restores the previous answer")
}

type row struct {
	ID   uuid.UUID
	Name string
}

func TestListModelRemove(t *testing.T) {
	a, b, c := row{uuid.New(), "a"}, row{uuid.New(), "b"}, row{uuid.New(), "c"}
	m := NewListModel([]row{a, b, c}, func(r row) uuid.UUID { return r.ID })

	var seen []row
	err := m.Remove(context.Background(), b.ID, func(ctx context.Context, id uuid.UUID) error {
		seen = m.Items()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []row{a, c}, seen, "row disappears before the call returns")
	assert.Equal(t, []row{a, c}, m.Items())
}

func TestListModelRestoresOnFailure(t *testing.T) {
	a, b, c := row{uuid.New(), "a"}, row{uuid.New(), "b"}, row{uuid.New(), "c"}
	m := NewListModel([]row{a, b, c}, func(r row) uuid.UUID { return r.ID })

	err := m.Remove(context.Background(), b.ID, func(ctx context.Context, id uuid.UUID) error {
		return errors.New("forbidden")
	})
	require.Error(t, err)
	assert.Equal(t, []row{a, b, c}, m.Items(), "row is back at its old position")
}

func TestListModelWithClient(t *testing.T) {
	id := uuid.New()
	cl := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/comments/"+id.String(), r.URL.Path)
		_, _ = w.Write([]byte(`{"message":"comment deleted successfully"}`))
	})
	m := NewListModel([]row{{id, "x"}}, func(r row) uuid.UUID { return r.ID })

	require.NoError(t, m.Remove(context.Background(), id, cl.DeleteComment))
	assert.Empty(t, m.Items())
}
