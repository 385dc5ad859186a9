package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegram/codegram-live/pkg/jwt"
)

func newRouter(t *testing.T) (*gin.Engine, *jwt.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := jwt.NewManager("secret", time.Hour, "codegram")
	require.NoError(t, err)
	auth := NewAuthMiddleware(tokens)

	r := gin.New()
	r.GET("/private", auth.RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, GetUserID(c)+"/"+GetRole(c))
	})
	r.GET("/public", auth.OptionalAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, "anon="+GetUserID(c))
	})
	return r, tokens
}

func TestRequireAuth(t *testing.T) {
	r, tokens := newRouter(t)
	token, _, err := tokens.GenerateAccessToken("u1", "alice", RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"garbage token", "Bearer nope", http.StatusUnauthorized, ""},
		{"valid", "Bearer " + token, http.StatusOK, "u1/ADMIN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestOptionalAuth_AllowsAnonymous(t *testing.T) {
	r, _ := newRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anon=", w.Body.String())
}

func TestBearerToken_QueryFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws?token=abc", nil)
	assert.Equal(t, "abc", BearerToken(req))

	req.Header.Set(AuthHeaderKey, "Bearer xyz")
	assert.Equal(t, "xyz", BearerToken(req))
}
