package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "8081")
	t.Setenv("PUBSUB_DRIVER", "redis")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("RATE_LIMIT_JOIN_CONTENT_ROOM", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.PubSub.Driver)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 5, cfg.RateLimit.JoinUserRoom)
	assert.Equal(t, 3, cfg.RateLimit.JoinContentRoom)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 25*time.Second, cfg.WebSocket.PingInterval)
	assert.EqualValues(t, 4096, cfg.WebSocket.MaxMessageSize)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}
