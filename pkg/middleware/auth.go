package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codegram/codegram-live/pkg/jwt"
	"github.com/codegram/codegram-live/pkg/response"
)

const (
	UserIDKey     = "user_id"
	UsernameKey   = "username"
	RoleKey       = "role"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
	TokenQueryKey = "token"

	RoleAdmin = "ADMIN"
)

// TokenValidator validates access tokens.
type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

// AuthMiddleware validates bearer tokens locally.
type AuthMiddleware struct {
	tokens TokenValidator
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// BearerToken extracts the token from the Authorization header, falling back
// to the token query parameter that browser websocket clients have to use.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get(AuthHeaderKey); strings.HasPrefix(h, BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, BearerPrefix))
	}
	return r.URL.Query().Get(TokenQueryKey)
}

// Authenticate validates the request's token, if any. It returns nil claims
// and a nil error for anonymous requests.
func (m *AuthMiddleware) Authenticate(r *http.Request) (*jwt.Claims, error) {
	token := BearerToken(r)
	if token == "" {
		return nil, nil
	}
	return m.tokens.ValidateToken(token)
}

// RequireAuth returns a Gin middleware that rejects requests without a valid token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(AuthHeaderKey) == "" {
			response.Unauthorized(c, "Authentication required")
			return
		}
		claims, err := m.Authenticate(c.Request)
		if err != nil || claims == nil {
			response.Unauthorized(c, "Invalid token")
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches the caller's identity when a valid token is present
// and lets anonymous requests through.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := m.Authenticate(c.Request); err == nil && claims != nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(UsernameKey, claims.Username)
	c.Set(RoleKey, claims.Role)
}

// GetUserID extracts user ID from Gin context.
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// GetUsername extracts username from Gin context.
func GetUsername(c *gin.Context) string {
	return c.GetString(UsernameKey)
}

// GetRole extracts the role from Gin context.
func GetRole(c *gin.Context) string {
	return c.GetString(RoleKey)
}

// IsAdmin reports whether the caller has the admin role.
func IsAdmin(c *gin.Context) bool {
	return GetRole(c) == RoleAdmin
}
