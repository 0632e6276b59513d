package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.HidingPhase)
	assert.Equal(t, 3, cfg.MaxAttempts)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HIDING_PHASE_MS", "15000")
	t.Setenv("TICK_INTERVAL_MS", "250")
	t.Setenv("MAX_SEEKER_ATTEMPTS", "5")
	t.Setenv("SHUTDOWN_TIMEOUT_MS", "2000")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 15*time.Second, cfg.HidingPhase)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
}

func TestFromEnv_IgnoresGarbage(t *testing.T) {
	t.Setenv("HIDING_PHASE_MS", "soon")
	t.Setenv("MAX_SEEKER_ATTEMPTS", "-2")

	cfg := FromEnv()
	assert.Equal(t, 30*time.Second, cfg.HidingPhase)
	assert.Equal(t, 3, cfg.MaxAttempts)
}
