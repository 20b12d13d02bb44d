package coordinator_test

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/coordinator"
)

func TestConfigEnvDefaultsMatchDefaultConfig(t *testing.T) {
	var cfg coordinator.Config
	require.NoError(t, env.Parse(&cfg))
	assert.Equal(t, coordinator.DefaultConfig(), cfg)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("NOTIFY_TRIGGER_SCAN_INTERVAL", "2s")
	t.Setenv("NOTIFY_QUEUE_DRAIN_INTERVAL", "250ms")
	t.Setenv("NOTIFY_QUEUE_CAPACITY", "10")
	t.Setenv("NOTIFY_QUEUE_MIN_SPACING", "1s")
	t.Setenv("NOTIFY_ENFORCE_DAILY_CAP", "true")

	var cfg coordinator.Config
	require.NoError(t, env.Parse(&cfg))
	assert.Equal(t, 2*time.Second, cfg.TriggerScanInterval)
	assert.Equal(t, 250*time.Millisecond, cfg.QueueDrainInterval)
	assert.Equal(t, 10, cfg.QueueCapacity)
	assert.Equal(t, time.Second, cfg.QueueMinSpacing)
	assert.True(t, cfg.EnforceDailyCap)
	assert.Equal(t, 16, cfg.MaxInFlight)
	assert.Equal(t, 64, cfg.DispatchBacklog)
}
