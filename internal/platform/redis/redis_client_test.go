package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("REDIS_PASSWORD", "pw")

	cfg := LoadConfigFromEnv()

	assert.Equal(t, "cache:6379", cfg.Addr())
	assert.Equal(t, "pw", cfg.Password)
	assert.True(t, cfg.Enabled())
}

func TestConfig_Disabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(Config{Host: mr.Host(), Port: mr.Port()})

	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	assert.NotNil(t, client)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	client, err := NewRedisClient(Config{Host: host, Port: port})

	assert.Error(t, err)
	assert.Nil(t, client)
}
