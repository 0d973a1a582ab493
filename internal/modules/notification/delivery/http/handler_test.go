package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"stackit.dev/forum/internal/entity"
	notifService "stackit.dev/forum/internal/modules/notification/service"
	"stackit.dev/forum/pkg/response"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu   sync.Mutex
	rows []entity.Notification
}

func (r *memRepo) Create(ctx context.Context, n *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now()
	r.rows = append(r.rows, *n)
	return nil
}

func (r *memRepo) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Notification
	for _, n := range r.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	total := int64(len(out))
	if offset >= len(out) {
		return []entity.Notification{}, total, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (r *memRepo) MarkAsRead(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id && r.rows[i].UserID == userID {
			r.rows[i].IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].UserID == userID {
			r.rows[i].IsRead = true
		}
	}
	return nil
}

func (r *memRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, row := range r.rows {
		if row.UserID == userID && !row.IsRead {
			n++
		}
	}
	return n, nil
}

type fixture struct {
	router  *gin.Engine
	service notifService.NotificationService
	repo    *memRepo
	user    *entity.User
}

func newFixture(t *testing.T, rdb *redis.Client) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &memRepo{}
	svc := notifService.NewNotificationService(repo, rdb)
	h := NewNotificationHandler(svc, rdb)
	user := &entity.User{ID: uuid.New(), Username: "alice", Role: entity.RoleUser}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(response.ContextUserKey, user)
		c.Next()
	})
	r.GET("/notifications", h.GetNotifications)
	r.GET("/notifications/unread-count", h.UnreadCount)
	r.PUT("/notifications/:id/read", h.MarkAsRead)
	r.PUT("/notifications/read-all", h.MarkAllAsRead)
	r.GET("/notifications/ws", h.HandleWebSocket)

	return &fixture{router: r, service: svc, repo: repo, user: user}
}

func (f *fixture) request(method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestReadFlow(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.service.Notify(ctx, f.user.ID, nil, "bob answered your question: Why?", "/questions/1"))
	require.NoError(t, f.service.Notify(ctx, f.user.ID, nil, "bob commented on your answer", "/questions/1#comment-2"))
	require.NoError(t, f.service.Notify(ctx, uuid.New(), nil, "not yours", ""))

	w := f.request(http.MethodGet, "/notifications/unread-count")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":2}`, w.Body.String())

	w = f.request(http.MethodGet, "/notifications?page=1&limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data []entity.Notification `json:"data"`
		Meta struct {
			TotalItems int64 `json:"total_items"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(2), page.Meta.TotalItems)

	w = f.request(http.MethodPut, "/notifications/"+page.Data[0].ID.String()+"/read")
	assert.Equal(t, http.StatusOK, w.Code)
	w = f.request(http.MethodGet, "/notifications/unread-count")
	assert.JSONEq(t, `{"count":1}`, w.Body.String())

	w = f.request(http.MethodPut, "/notifications/read-all")
	assert.Equal(t, http.StatusOK, w.Code)
	w = f.request(http.MethodGet, "/notifications/unread-count")
	assert.JSONEq(t, `{"count":0}`, w.Body.String())
}

func TestMarkAsReadOtherUsersNotification(t *testing.T) {
	f := newFixture(t, nil)
	other := uuid.New()
	require.NoError(t, f.service.Notify(context.Background(), other, nil, "hello", ""))

	w := f.request(http.MethodPut, "/notifications/"+f.repo.rows[0].ID.String()+"/read")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, f.repo.rows[0].IsRead)
}

func TestMarkAsReadBadID(t *testing.T) {
	f := newFixture(t, nil)
	w := f.request(http.MethodPut, "/notifications/nope/read")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetNotificationsRejectsBadLimit(t *testing.T) {
	f := newFixture(t, nil)
	w := f.request(http.MethodGet, "/notifications?limit=500")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebSocketDisabledWithoutRedis(t *testing.T) {
	f := newFixture(t, nil)
	w := f.request(http.MethodGet, "/notifications/ws")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestWebSocketRelaysNotifications(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := newFixture(t, rdb)
	srv := httptest.NewServer(f.router)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/notifications/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	channel := notifService.ChannelName(f.user.ID)
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(channel)[channel] == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, f.service.Notify(context.Background(), f.user.ID, nil, "bob mentioned you in a comment", "/questions/1#comment-9"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got entity.Notification
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, "bob mentioned you in a comment", got.Message)
	assert.Equal(t, f.user.ID, got.UserID)
	require.NotNil(t, got.Link)
	assert.Equal(t, "/questions/1#comment-9", *got.Link)
}
