package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", c.Engine.BaseURL)
	assert.Equal(t, 50, c.Engine.HistogramBins)
	assert.Equal(t, 100.0, c.Engine.VolCutoff)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "filinglens.dashboard.events", c.Kafka.Topic)
	assert.Equal(t, 2*time.Minute, c.Cache.TTL)
	assert.False(t, c.KafkaEnabled())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
engine:
  base_url: http://engine.internal:9000
  histogram_bins: 20
kafka:
  brokers: ["k1:9092", "k2:9092"]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://engine.internal:9000", c.Engine.BaseURL)
	assert.Equal(t, 20, c.Engine.HistogramBins)
	// untouched keys keep their defaults
	assert.Equal(t, 100.0, c.Engine.VolCutoff)
	assert.True(t, c.KafkaEnabled())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  histogram_bins: 0\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HistogramBins")
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("ENGINE_URL", "http://10.0.0.5:8000")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("REDIS_ADDR", "cache.local:6380")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:8000", c.Engine.BaseURL)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "cache.local", c.Cache.Redis.Host)
	assert.Equal(t, 6380, c.Cache.Redis.Port)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoadWithEnvBadPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "eighty")
	_, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
