package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrEmptySecret  = errors.New("jwt secret must not be empty")
)

// Claims represents the access token claims issued by the identity login flow.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Manager signs and validates HS256 access tokens with a shared secret.
type Manager struct {
	secret         []byte
	accessDuration time.Duration
	issuer         string
	now            func() time.Time
}

// NewManager creates a new JWT manager.
func NewManager(secret string, accessDuration time.Duration, issuer string) (*Manager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Manager{
		secret:         []byte(secret),
		accessDuration: accessDuration,
		issuer:         issuer,
		now:            time.Now,
	}, nil
}

// GenerateAccessToken creates a signed access token for the user.
func (m *Manager) GenerateAccessToken(userID, username, role string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.accessDuration)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID:   userID,
		Username: username,
		Role:     role,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// ValidateToken validates a token and returns its claims.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
