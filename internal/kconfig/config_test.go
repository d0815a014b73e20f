package kconfig

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTunables(t *testing.T) {
	tun := DefaultTunables()
	assert.Greater(t, tun.MaxFrameDepth, 0)
	assert.Greater(t, tun.GCInitialBytes, int64(0))
	assert.Greater(t, tun.GCGrowthFactor, 1.0)
}

func TestLoadTunablesHonorsOverrides(t *testing.T) {
	t.Setenv("KURO_MAX_FRAME_DEPTH", "128")
	t.Setenv("KURO_GC_INITIAL_BYTES", "4096")
	tun := LoadTunables()
	assert.Equal(t, 128, tun.MaxFrameDepth)
	assert.EqualValues(t, 4096, tun.GCInitialBytes)
}

func TestLoadTunablesIgnoresGarbage(t *testing.T) {
	t.Setenv("KURO_MAX_FRAME_DEPTH", "not-a-number")
	tun := LoadTunables()
	assert.Equal(t, DefaultTunables().MaxFrameDepth, tun.MaxFrameDepth)
}

func TestSearchPathEnvUnset(t *testing.T) {
	os.Unsetenv(SearchPathEnv)
	assert.Equal(t, "KURO_PATH", SearchPathEnv)
}
