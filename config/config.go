// Package config holds the run configuration for arcsim.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/arcsim/cache"
)

// CacheConfig describes the optional ARM3 cache model.
type CacheConfig struct {
	// Enabled attaches the cache model to memory. Default: false.
	Enabled bool `json:"enabled"`

	// Size is the cache capacity in bytes. Default: 4096.
	Size int `json:"size"`

	// Associativity is the number of ways per set. Default: 64.
	Associativity int `json:"associativity"`

	// BlockSize is the line size in bytes. Default: 16.
	BlockSize int `json:"block_size"`

	// CacheableLimit is the first address that bypasses the cache.
	// Default: 0x02000000 (physical RAM and above are uncached).
	CacheableLimit uint32 `json:"cacheable_limit"`
}

// Config holds the settings of one emulator run.
type Config struct {
	// ROMPath is the ROM image to boot. The command line may override it.
	ROMPath string `json:"rom_path"`

	// MaxInstructions stops the run after this many instructions.
	// Zero means unlimited.
	MaxInstructions uint64 `json:"max_instructions"`

	// Trace enables the per-instruction trace. Default: true.
	Trace bool `json:"trace"`

	// TracePath sends the trace to a file instead of standard output.
	TracePath string `json:"trace_path"`

	Cache CacheConfig `json:"cache"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	defaults := cache.DefaultConfig()

	return &Config{
		Trace: true,
		Cache: CacheConfig{
			Size:           defaults.Size,
			Associativity:  defaults.Associativity,
			BlockSize:      defaults.BlockSize,
			CacheableLimit: defaults.CacheableLimit,
		},
	}
}

// LoadConfig loads a Config from a JSON file. Fields absent from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the cache geometry. It is only checked when the cache
// is enabled.
func (c *Config) Validate() error {
	if !c.Cache.Enabled {
		return nil
	}

	cc := c.Cache
	if cc.BlockSize <= 0 || !isPowerOfTwo(cc.BlockSize) {
		return fmt.Errorf("cache.block_size must be a positive power of two")
	}
	if cc.Associativity <= 0 {
		return fmt.Errorf("cache.associativity must be > 0")
	}
	if cc.Size <= 0 || cc.Size%(cc.Associativity*cc.BlockSize) != 0 {
		return fmt.Errorf("cache.size must be a multiple of associativity * block_size")
	}
	return nil
}

// CacheModel converts the cache section into a cache.Config.
func (c *Config) CacheModel() cache.Config {
	return cache.Config{
		Size:           c.Cache.Size,
		Associativity:  c.Cache.Associativity,
		BlockSize:      c.Cache.BlockSize,
		CacheableLimit: c.Cache.CacheableLimit,
	}
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

func isPowerOfTwo(n int) bool {
	return n&(n-1) == 0
}
