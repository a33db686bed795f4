package wasmlib

import "io"

// Config holds configuration for loading a guest module.
type Config struct {
	// Stdout and Stderr receive the guest's WASI output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer

	// ModuleName is the instance name inside the runtime.
	ModuleName string

	// MemoryLimitPages caps guest memory in 64KiB pages.
	// 0 means the wazero default (65536 pages = 4GB).
	MemoryLimitPages uint32
}

// DefaultConfig returns the configuration used by LoadWithDefaults.
func DefaultConfig() Config {
	return Config{
		ModuleName:       "cairo",
		MemoryLimitPages: 4096,
	}
}
