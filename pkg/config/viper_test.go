package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ReadsYamlAndEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), []byte("server:\n  port: 9000\nws:\n  ping: 15s\n"), 0o600))
	t.Setenv("SERVER_HOST", "127.0.0.1")

	v, err := Load(dir, "app")
	require.NoError(t, err)

	assert.Equal(t, 9000, v.GetInt("server.port"))
	assert.Equal(t, "127.0.0.1", v.GetString("server.host"))
	assert.Equal(t, 15*time.Second, Duration(v, "ws.ping", time.Second))
	assert.Equal(t, time.Minute, Duration(v, "ws.missing", time.Minute))
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	v, err := Load(t.TempDir(), "does-not-exist")
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("CODEGRAM_TEST_KEY", "x")
	assert.Equal(t, "x", GetEnv("CODEGRAM_TEST_KEY", "d"))
	assert.Equal(t, "d", GetEnv("CODEGRAM_TEST_MISSING", "d"))
}
