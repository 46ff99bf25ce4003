// Package arena provides a growable region allocator that owns every slice
// decoded for one rig asset and is released as a unit.
//
// Allocations are carved from large typed regions and handed out as
// capacity-capped sub-slices, so appending to a returned slice never
// overwrites a neighbour. An Arena is not safe for concurrent use.
package arena

import (
	"errors"
	"math"
)

// GrowthFactor scales the minimum size of a region created for a request
// that does not fit the regular region size.
const GrowthFactor = 1.5

// DefaultRegionSize is the region size in bytes used when none is given.
const DefaultRegionSize = 4 << 20

// ErrReleased is returned when an arena is released twice.
var ErrReleased = errors.New("arena: already released")

// Shares of the initial size given to each pool's first region.
// Float data (geometry, joint values) dominates decoded rigs.
const (
	float32Share = 0.70
	uint16Share  = 0.15
	uint32Share  = 0.15
)

// Stats describes arena usage.
type Stats struct {
	Regions       int   // Regions taken from the upstream allocator
	ReservedBytes int64 // Bytes held by all regions
	UsedBytes     int64 // Bytes handed out to callers
}

// Arena owns typed regions for float32, uint16 and uint32 slices.
type Arena struct {
	regionSize int
	floats     pool[float32]
	u16        pool[uint16]
	u32        pool[uint32]
	released   bool
}

// New creates an arena. initialSize is the byte budget used to size the
// first region of each pool; regionSize is the byte size of later regions.
func New(initialSize, regionSize int) *Arena {
	if regionSize <= 0 {
		regionSize = DefaultRegionSize
	}
	if initialSize < 0 {
		initialSize = 0
	}
	a := &Arena{regionSize: regionSize}
	a.floats.init(share(initialSize, float32Share), regionSize, 4)
	a.u16.init(share(initialSize, uint16Share), regionSize, 2)
	a.u32.init(share(initialSize, uint32Share), regionSize, 4)
	return a
}

func share(size int, fraction float64) int {
	return int(math.Ceil(float64(size) * fraction))
}

// RegionSize returns the regular region size in bytes.
func (a *Arena) RegionSize() int {
	return a.regionSize
}

// Float32s returns a zeroed slice of n float32 values owned by the arena.
func (a *Arena) Float32s(n int) []float32 {
	if a == nil || a.released {
		return make([]float32, n)
	}
	return a.floats.alloc(n)
}

// Uint16s returns a zeroed slice of n uint16 values owned by the arena.
func (a *Arena) Uint16s(n int) []uint16 {
	if a == nil || a.released {
		return make([]uint16, n)
	}
	return a.u16.alloc(n)
}

// Uint32s returns a zeroed slice of n uint32 values owned by the arena.
func (a *Arena) Uint32s(n int) []uint32 {
	if a == nil || a.released {
		return make([]uint32, n)
	}
	return a.u32.alloc(n)
}

// Stats returns current usage.
func (a *Arena) Stats() Stats {
	if a == nil {
		return Stats{}
	}
	var s Stats
	a.floats.addStats(&s)
	a.u16.addStats(&s)
	a.u32.addStats(&s)
	return s
}

// Released reports whether Release has been called.
func (a *Arena) Released() bool {
	return a.released
}

// Release drops every region. Slices handed out earlier stay valid for the
// garbage collector, but the arena no longer accounts for them.
func (a *Arena) Release() error {
	if a.released {
		return ErrReleased
	}
	a.floats.reset()
	a.u16.reset()
	a.u32.reset()
	a.released = true
	return nil
}

// pool hands out sub-slices of typed regions.
type pool[T any] struct {
	elemSize   int
	regionLen  int // elements per regular region
	initialLen int // elements in the first region
	regions    [][]T
	cur        []T // unused tail of the newest region
	used       int64
}

func (p *pool[T]) init(initialBytes, regionBytes, elemSize int) {
	p.elemSize = elemSize
	p.regionLen = max(regionBytes/elemSize, 1)
	p.initialLen = initialBytes / elemSize
}

func (p *pool[T]) alloc(n int) []T {
	if n <= 0 {
		return nil
	}
	if n > len(p.cur) {
		p.grow(n)
	}
	s := p.cur[:n:n]
	p.cur = p.cur[n:]
	p.used += int64(n * p.elemSize)
	return s
}

// grow takes a new region from the upstream allocator. A request larger
// than the regular region gets a region GrowthFactor times its size.
func (p *pool[T]) grow(n int) {
	size := p.regionLen
	if len(p.regions) == 0 && p.initialLen > size {
		size = p.initialLen
	}
	if n > size {
		size = int(math.Ceil(float64(n) * GrowthFactor))
	}
	region := make([]T, size)
	p.regions = append(p.regions, region)
	p.cur = region
}

func (p *pool[T]) addStats(s *Stats) {
	s.Regions += len(p.regions)
	for _, r := range p.regions {
		s.ReservedBytes += int64(len(r) * p.elemSize)
	}
	s.UsedBytes += p.used
}

func (p *pool[T]) reset() {
	p.regions = nil
	p.cur = nil
	p.used = 0
}
