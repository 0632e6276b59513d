package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries process settings. Defaults match the original game tuning;
// every value can be overridden through the environment.
type Config struct {
	Addr            string
	HidingPhase     time.Duration
	ResultsPhase    time.Duration
	TickInterval    time.Duration
	MaxAttempts     int
	ShutdownTimeout time.Duration
}

func Default() Config {
	return Config{
		Addr:            ":8080",
		HidingPhase:     30 * time.Second,
		ResultsPhase:    5 * time.Second,
		TickInterval:    time.Second,
		MaxAttempts:     3,
		ShutdownTimeout: 10 * time.Second,
	}
}

// FromEnv builds a Config from the defaults plus environment overrides.
func FromEnv() Config {
	cfg := Default()
	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	cfg.HidingPhase = envDuration("HIDING_PHASE_MS", cfg.HidingPhase)
	cfg.ResultsPhase = envDuration("RESULTS_PHASE_MS", cfg.ResultsPhase)
	cfg.TickInterval = envDuration("TICK_INTERVAL_MS", cfg.TickInterval)
	cfg.MaxAttempts = envInt("MAX_SEEKER_ATTEMPTS", cfg.MaxAttempts)
	cfg.ShutdownTimeout = envDuration("SHUTDOWN_TIMEOUT_MS", cfg.ShutdownTimeout)
	return cfg
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
