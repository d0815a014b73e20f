// Package kconfig centralizes the handful of environment-driven knobs
// the runtime reads at startup: the module search path and the VM's
// fixed resource limits. Grounded on the teacher's
// internal/module/module.go getDefaultSearchPath/getStandardLibPath
// pair — the same shape, generalized from a hardcoded "./stdlib" to an
// environment-variable override.
package kconfig

import (
	"os"
	"strconv"
)

// SearchPathEnv is the KUROKO_PATH-equivalent variable (§6 "Environment
// variables"): a PATH-list-separated set of directories searched ahead
// of the built-in defaults when resolving an import.
const SearchPathEnv = "KURO_PATH"

// Tunables holds the fixed resource limits the VM enforces (§5, §9):
// maximum call-frame depth (stack overflow detection) and the
// allocated-bytes watermark that triggers a GC cycle.
type Tunables struct {
	MaxFrameDepth  int
	GCInitialBytes int64
	GCGrowthFactor float64
}

// DefaultTunables mirrors the conservative defaults a reference
// bytecode VM of this size would pick: deep enough to run real
// recursive programs, a small initial heap so the collector exercises
// early and often in tests.
func DefaultTunables() Tunables {
	return Tunables{
		MaxFrameDepth:  512,
		GCInitialBytes: 1 << 20, // 1 MiB
		GCGrowthFactor: 2.0,
	}
}

// LoadTunables overlays environment overrides onto DefaultTunables,
// for the few knobs worth tuning without a rebuild (KURO_MAX_FRAME_DEPTH,
// KURO_GC_INITIAL_BYTES).
func LoadTunables() Tunables {
	t := DefaultTunables()
	if v := os.Getenv("KURO_MAX_FRAME_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			t.MaxFrameDepth = n
		}
	}
	if v := os.Getenv("KURO_GC_INITIAL_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			t.GCInitialBytes = n
		}
	}
	return t
}
