package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/internal/fanout"
	"github.com/codegram/codegram-live/internal/repository"
	"github.com/codegram/codegram-live/internal/service"
	"github.com/codegram/codegram-live/internal/store"
	"github.com/codegram/codegram-live/internal/testutil"
	"github.com/codegram/codegram-live/pkg/jwt"
	"github.com/codegram/codegram-live/pkg/middleware"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"error"`
}

type testAPI struct {
	db     *gorm.DB
	router *gin.Engine
	tokens *jwt.Manager
	rec    *testutil.Recorder
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	rec := &testutil.Recorder{}
	tokens, err := jwt.NewManager("test-secret", time.Hour, "codegram")
	require.NoError(t, err)

	users := repository.NewGormUserRepository(db)
	contents := repository.NewGormContentRepository(db)
	likes := repository.NewGormLikeRepository(db)
	bookmarks := repository.NewGormBookmarkRepository(db)
	follows := repository.NewGormFollowRepository(db)
	notifRepo := repository.NewGormNotificationRepository(db)
	comments := repository.NewGormCommentRepository(db)

	counters := service.NewCounters(store.NopCounterStore{}, follows, likes, bookmarks, notifRepo)
	notifications := service.NewNotificationService(notifRepo, users, contents, comments, counters, rec)

	h := NewHandler(Services{
		Interactions:  service.NewInteractionService(contents, likes, bookmarks, notifications, counters),
		Follows:       service.NewFollowService(follows, repository.NewGormBlockRepository(db), users, notifications, counters, rec),
		Comments:      service.NewCommentService(comments, contents, notifications, rec),
		Notifications: notifications,
		Contents:      service.NewContentService(contents, users, notifications, fanout.New(follows, rec, 4, time.Second)),
	}, middleware.NewAuthMiddleware(tokens))

	r := gin.New()
	h.RegisterRoutes(r)
	return &testAPI{db: db, router: r, tokens: tokens, rec: rec}
}

func (a *testAPI) token(t *testing.T, u *domain.UserModel) string {
	t.Helper()
	tok, _, err := a.tokens.GenerateAccessToken(u.ID, u.Username, u.Role)
	require.NoError(t, err)
	return tok
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func TestHealth(t *testing.T) {
	a := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestToggleLikeEndpoint(t *testing.T) {
	a := newTestAPI(t)
	alice := testutil.User(t, a.db, "alice")
	bob := testutil.User(t, a.db, "bob")
	s := testutil.Snippet(t, a.db, bob.ID, true)
	tok := a.token(t, alice)

	code, env := a.do(t, http.MethodPost, "/api/likes", tok, map[string]string{"snippetId": s.ID})
	require.Equal(t, http.StatusOK, code)
	var res struct {
		Liked   bool   `json:"liked"`
		Count   int64  `json:"count"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.Liked)
	assert.Equal(t, int64(1), res.Count)
	assert.Equal(t, "Liked successfully", res.Message)

	code, env = a.do(t, http.MethodGet, "/api/likes/check?snippetId="+s.ID, tok, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.Liked)

	code, env = a.do(t, http.MethodPost, "/api/likes", tok, map[string]string{"snippetId": s.ID})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.False(t, res.Liked)
	assert.Equal(t, "Unliked successfully", res.Message)
}

func TestErrorTranslation(t *testing.T) {
	a := newTestAPI(t)
	alice := testutil.User(t, a.db, "alice")
	bob := testutil.User(t, a.db, "bob")
	expired := testutil.Bug(t, a.db, bob.ID, time.Now().Add(-time.Hour))
	tok := a.token(t, alice)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
		code   string
	}{
		{name: "no token", method: http.MethodPost, path: "/api/likes", body: map[string]string{"bugId": "x"}, status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "no target", method: http.MethodPost, path: "/api/likes", token: tok, body: map[string]string{}, status: http.StatusBadRequest, code: "BAD_REQUEST"},
		{name: "check without target", method: http.MethodGet, path: "/api/bookmarks/check", token: tok, status: http.StatusBadRequest, code: "BAD_REQUEST"},
		{name: "missing bug", method: http.MethodPost, path: "/api/bookmarks", token: tok, body: map[string]string{"bugId": "nope"}, status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "expired bug", method: http.MethodPost, path: "/api/likes", token: tok, body: map[string]string{"bugId": expired.ID}, status: http.StatusGone, code: "GONE"},
		{name: "self follow", method: http.MethodPost, path: "/api/follows/" + alice.ID, token: tok, status: http.StatusBadRequest, code: "BAD_REQUEST"},
		{name: "unknown followee", method: http.MethodPost, path: "/api/follows/ghost", token: tok, status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "expired bug status", method: http.MethodPatch, path: "/api/bugs/" + expired.ID + "/status", token: tok, body: map[string]string{"status": "CLOSED"}, status: http.StatusGone, code: "GONE"},
		{name: "malformed body", method: http.MethodPost, path: "/api/comments", token: tok, body: "not an object", status: http.StatusBadRequest, code: "BAD_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := a.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestFollowAndNotificationsEndpoints(t *testing.T) {
	a := newTestAPI(t)
	alice := testutil.User(t, a.db, "alice")
	bob := testutil.User(t, a.db, "bob")

	code, env := a.do(t, http.MethodPost, "/api/follows/"+bob.ID, a.token(t, alice), nil)
	require.Equal(t, http.StatusOK, code)
	var follow struct {
		Following bool  `json:"following"`
		Count     int64 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &follow))
	assert.True(t, follow.Following)
	assert.Equal(t, int64(1), follow.Count)

	code, env = a.do(t, http.MethodGet, "/api/follows/"+bob.ID+"/followers", "", nil)
	require.Equal(t, http.StatusOK, code)
	var page domain.Page[domain.UserSummary]
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.CurrentPage)

	bobTok := a.token(t, bob)
	code, env = a.do(t, http.MethodGet, "/api/notifications/unread-count", bobTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"count":1}`, string(env.Data))

	code, env = a.do(t, http.MethodGet, "/api/notifications?page=1&limit=5", bobTok, nil)
	require.Equal(t, http.StatusOK, code)
	var list domain.NotificationList
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, domain.NotificationFollow, list.Notifications[0].Type)
	assert.Equal(t, 5, list.Limit)

	code, _ = a.do(t, http.MethodPost, "/api/notifications/read", bobTok, nil)
	require.Equal(t, http.StatusOK, code)

	_, env = a.do(t, http.MethodGet, "/api/notifications/unread-count", bobTok, nil)
	assert.JSONEq(t, `{"count":0}`, string(env.Data))
}

func TestCommentEndpoints(t *testing.T) {
	a := newTestAPI(t)
	alice := testutil.User(t, a.db, "alice")
	bob := testutil.User(t, a.db, "bob")
	s := testutil.Snippet(t, a.db, bob.ID, true)
	tok := a.token(t, alice)

	code, env := a.do(t, http.MethodPost, "/api/comments", tok, map[string]string{"snippetId": s.ID, "content": "hello"})
	require.Equal(t, http.StatusCreated, code)
	var comment domain.Comment
	require.NoError(t, json.Unmarshal(env.Data, &comment))
	assert.Equal(t, []string{"content:" + s.ID}, a.rec.Rooms(domain.EventNewComment))

	code, env = a.do(t, http.MethodGet, "/api/comments?snippetId="+s.ID, "", nil)
	require.Equal(t, http.StatusOK, code)
	var page domain.Page[domain.Comment]
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "hello", page.Items[0].Content)

	code, env = a.do(t, http.MethodDelete, "/api/comments/"+comment.ID, a.token(t, bob), nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Access denied", env.Error.Message)

	code, _ = a.do(t, http.MethodDelete, "/api/comments/"+comment.ID, tok, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"content:" + s.ID}, a.rec.Rooms(domain.EventCommentDeleted))
}

func TestCreateSnippetFansOut(t *testing.T) {
	a := newTestAPI(t)
	alice := testutil.User(t, a.db, "alice")
	bob := testutil.User(t, a.db, "bob")

	code, _ := a.do(t, http.MethodPost, "/api/follows/"+bob.ID, a.token(t, alice), nil)
	require.Equal(t, http.StatusOK, code)

	code, env := a.do(t, http.MethodPost, "/api/snippets", a.token(t, bob), map[string]any{
		"title":   "hello",
		"content": "package main",
		"tags":    []string{"Go"},
	})
	require.Equal(t, http.StatusCreated, code)
	var content domain.Content
	require.NoError(t, json.Unmarshal(env.Data, &content))
	assert.True(t, content.IsPublic)
	assert.Equal(t, "bob", content.Author.Username)
	assert.ElementsMatch(t, []string{"user:" + alice.ID, "user:" + bob.ID}, a.rec.Rooms("new-snippet"))
}
