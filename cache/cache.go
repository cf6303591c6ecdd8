// Package cache provides an ARM3-style cache occupancy model using Akita
// cache components.
//
// The model tracks tags only. Data always comes from emu.Memory; the cache
// records which accesses would have hit. It observes memory through
// emu.AccessObserver.
package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int
	// Associativity (number of ways)
	Associativity int
	// BlockSize in bytes (cache line size)
	BlockSize int
	// CacheableLimit is the first address that bypasses the cache.
	CacheableLimit uint32
}

// DefaultConfig returns the ARM3 geometry: 4KB, 64-way, 16B lines, with
// only the logically mapped region cacheable.
func DefaultConfig() Config {
	return Config{
		Size:           4 * 1024,
		Associativity:  64,
		BlockSize:      16,
		CacheableLimit: 0x02000000,
	}
}

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether the access was a cache hit.
	Hit bool
	// Cacheable is false for accesses at or above the cacheable limit.
	Cacheable bool
	// Evicted is true if a valid block was replaced.
	Evicted bool
	// EvictedAddr is the address of the evicted block (if Evicted is true).
	EvictedAddr uint64
}

// Statistics holds cache statistics.
type Statistics struct {
	Reads     uint64
	Writes    uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Uncached  uint64
}

// HitRate returns hits over cacheable accesses, or zero before any.
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is a write-through, read-allocate cache directory.
type Cache struct {
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	stats Statistics
}

// New creates a new cache with the given configuration.
func New(config Config) *Cache {
	numSets := config.Size / (config.Associativity * config.BlockSize)

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

// ObserveAccess records a completed memory access.
func (c *Cache) ObserveAccess(addr uint32, write bool) {
	if write {
		c.Write(addr)
		return
	}
	c.Read(addr)
}

func (c *Cache) blockAddr(addr uint32) uint64 {
	return (uint64(addr) / uint64(c.config.BlockSize)) * uint64(c.config.BlockSize)
}

// Read looks up addr and allocates its line on a miss.
func (c *Cache) Read(addr uint32) AccessResult {
	c.stats.Reads++

	if addr >= c.config.CacheableLimit {
		c.stats.Uncached++
		return AccessResult{}
	}

	blockAddr := c.blockAddr(addr)
	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block) // Update LRU
		return AccessResult{Hit: true, Cacheable: true}
	}

	c.stats.Misses++
	return c.allocate(blockAddr)
}

// Write looks up addr. Writes go through to memory and do not allocate.
func (c *Cache) Write(addr uint32) AccessResult {
	c.stats.Writes++

	if addr >= c.config.CacheableLimit {
		c.stats.Uncached++
		return AccessResult{}
	}

	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		return AccessResult{Hit: true, Cacheable: true}
	}

	c.stats.Misses++
	return AccessResult{Cacheable: true}
}

// allocate fills a line for blockAddr, replacing the LRU block of its set.
func (c *Cache) allocate(blockAddr uint64) AccessResult {
	result := AccessResult{Cacheable: true}

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return result
	}

	if victim.IsValid {
		c.stats.Evictions++
		result.Evicted = true
		result.EvictedAddr = victim.Tag // Tag stores block-aligned address
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)

	return result
}

// Invalidate marks the line holding addr as invalid.
func (c *Cache) Invalidate(addr uint32) {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		block.IsValid = false
	}
}

// Reset invalidates all lines and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}
