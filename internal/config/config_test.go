package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.StressGC)
	assert.False(t, cfg.TraceExec)
	assert.Equal(t, 1024, cfg.GCInitialThreshold)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("QUILL_GC_STRESS", "true")
	t.Setenv("QUILL_TRACE", "true")
	t.Setenv("QUILL_GC_INITIAL_THRESHOLD", "64")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.StressGC)
	assert.True(t, cfg.TraceExec)
	assert.Equal(t, 64, cfg.GCInitialThreshold)
}
