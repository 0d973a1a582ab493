// Package client is a Go client for the StackIt HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	answerDto "stackit.dev/forum/internal/modules/answer/dto"
	commentDto "stackit.dev/forum/internal/modules/comment/dto"
	notifDto "stackit.dev/forum/internal/modules/notification/dto"
	questionDto "stackit.dev/forum/internal/modules/question/dto"
	voteDto "stackit.dev/forum/internal/modules/vote/dto"
	"stackit.dev/forum/pkg/dto"

	"github.com/google/uuid"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("stackit: %d %s: %s", e.Status, e.Field, e.Message)
	}
	return fmt.Sprintf("stackit: %d %s", e.Status, e.Message)
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope[T any] struct {
	Data T `json:"data"`
}

func (c *Client) ListQuestions(ctx context.Context, filter questionDto.QuestionFilter) (*questionDto.PaginatedQuestionResponse, error) {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("owner_id", filter.OwnerID)
	set("status", filter.Status)
	set("q", filter.Search)
	set("tag", filter.Tag)
	set("sort", filter.Sort)
	if filter.Page > 0 {
		q.Set("page", fmt.Sprint(filter.Page))
	}
	if filter.Limit > 0 {
		q.Set("limit", fmt.Sprint(filter.Limit))
	}

	path := "/api/questions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out questionDto.PaginatedQuestionResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetQuestion(ctx context.Context, id uuid.UUID) (*questionDto.QuestionDetailResponse, error) {
	var out envelope[questionDto.QuestionDetailResponse]
	if err := c.do(ctx, http.MethodGet, "/api/questions/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) AskQuestion(ctx context.Context, req questionDto.AskQuestionRequest) (uuid.UUID, error) {
	var out struct {
		ID uuid.UUID `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/questions", req, &out); err != nil {
		return uuid.Nil, err
	}
	return out.ID, nil
}

func (c *Client) AcceptAnswer(ctx context.Context, questionID, answerID uuid.UUID) (*questionDto.AcceptAnswerResponse, error) {
	body := questionDto.AcceptAnswerRequest{AnswerID: answerID.String()}
	var out envelope[questionDto.AcceptAnswerResponse]
	if err := c.do(ctx, http.MethodPut, "/api/questions/"+questionID.String()+"/accept", body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/questions/"+id.String(), nil, nil)
}

func (c *Client) SubmitAnswer(ctx context.Context, questionID uuid.UUID, req answerDto.SubmitAnswerRequest) (*dto.AnswerResponse, error) {
	var out envelope[dto.AnswerResponse]
	if err := c.do(ctx, http.MethodPost, "/api/questions/"+questionID.String()+"/answers", req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// CastVote sets the caller's vote; 0 retracts it.
func (c *Client) CastVote(ctx context.Context, answerID uuid.UUID, value int) (*dto.VoteResponse, error) {
	body := voteDto.CastVoteRequest{Value: &value}
	var out envelope[dto.VoteResponse]
	if err := c.do(ctx, http.MethodPost, "/api/answers/"+answerID.String()+"/votes", body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) AddComment(ctx context.Context, answerID uuid.UUID, content string) (*dto.CommentResponse, error) {
	body := commentDto.AddCommentRequest{Content: content}
	var out envelope[dto.CommentResponse]
	if err := c.do(ctx, http.MethodPost, "/api/answers/"+answerID.String()+"/comments", body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) DeleteComment(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/comments/"+id.String(), nil, nil)
}

// ModerateDelete removes a question, answer or comment through the admin API.
// kind is "questions", "answers" or "comments".
func (c *Client) ModerateDelete(ctx context.Context, kind string, id uuid.UUID) error {
	switch kind {
	case "questions", "answers", "comments":
	default:
		return fmt.Errorf("stackit: unknown kind %q", kind)
	}
	return c.do(ctx, http.MethodDelete, "/api/admin/"+kind+"/"+id.String(), nil, nil)
}

func (c *Client) Notifications(ctx context.Context, page, limit int) (*notifDto.PaginatedNotificationResponse, error) {
	path := fmt.Sprintf("/api/notifications?page=%d&limit=%d", page, limit)
	var out notifDto.PaginatedNotificationResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodPut, "/api/notifications/"+id.String()+"/read", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var payload struct {
		Error string `json:"error"`
		Field string `json:"field"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
		apiErr.Field = payload.Field
	}
	return apiErr
}
