package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	questionDto "stackit.dev/forum/internal/modules/question/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPI(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", WithToken("tok"))
}

func TestCastVote(t *testing.T) {
	answerID := uuid.New()
	c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/answers/"+answerID.String()+"/votes", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(0), body["value"], "retraction must send an explicit zero")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"answer_id":"` + answerID.String() + `","score":4,"user_vote":0}}`))
	})

	res, err := c.CastVote(context.Background(), answerID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Score)
	assert.Equal(t, 0, res.UserVote)
}

func TestAPIErrorCarriesField(t *testing.T) {
	c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"title must be at least 5 characters","field":"title"}`))
	})

	_, err := c.AskQuestion(context.Background(), questionDto.AskQuestionRequest{Title: "hi"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "title", apiErr.Field)
	assert.Equal(t, "title must be at least 5 characters", apiErr.Message)
}

func TestAPIErrorWithoutBody(t *testing.T) {
	c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	err := c.DeleteQuestion(context.Background(), uuid.New())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "Forbidden", apiErr.Message)
}

func TestListQuestionsQuery(t *testing.T) {
	c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/questions", r.URL.Path)
		assert.Equal(t, "unanswered", r.URL.Query().Get("status"))
		assert.Equal(t, "go", r.URL.Query().Get("tag"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.False(t, r.URL.Query().Has("sort"))
		_, _ = w.Write([]byte(`{"data":[],"meta":{"current_page":2,"total_pages":3,"total_items":25,"limit":10}}`))
	})

	res, err := c.ListQuestions(context.Background(), questionDto.QuestionFilter{Status: "unanswered", Tag: "go", Page: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(25), res.Meta.TotalItems)
}

func TestModerateDeleteRejectsUnknownKind(t *testing.T) {
	c := New("http://unused")
	assert.Error(t, c.ModerateDelete(context.Background(), "users", uuid.New()))
}
