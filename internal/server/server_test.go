package server

import (
	"testing"
	"time"

	"github.com/gantry-mcp/gantry/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		DataDir:          t.TempDir(),
		RequestTimeout:   5 * time.Second,
		RetryAttempts:    3,
		RetryBaseDelay:   time.Millisecond,
		RetryMaxDelay:    10 * time.Millisecond,
		DependencyPolicy: "same_level",
	}
}

func TestNew_WiresServerAndCleanup(t *testing.T) {
	s, cleanup, err := New(testConfig(t))
	require.NoError(t, err)
	require.NotNil(t, s)

	cleanup()
}

func TestNew_RejectsUnknownDependencyPolicy(t *testing.T) {
	cfg := testConfig(t)
	cfg.DependencyPolicy = "sideways"

	_, cleanup, err := New(cfg)
	assert.Error(t, err)
	cleanup()
}
