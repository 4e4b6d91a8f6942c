// Package gcheap implements the memory manager described in §4.2: a
// precise-roots, conservative-stack-scanned tracing mark-sweep collector
// layered over internal/pool.
//
// The real C object header is a single word — a vtable pointer with its
// mark bit stolen for the duration of a collection (§4.2). Skizo's object
// header is instead tracked in Manager.classOf/Manager.marked, the
// "equivalent design in a language without bit-stealing" the spec's own
// design notes call out (§9: "a separate bitmap indexed by arena cell —
// mark bit is O(1) locate"). Reference fields are likewise tracked as an
// explicit Refs slice on pool.Cell rather than raw byte offsets into a
// flat buffer, since byte-offset field access belongs to the emitted C
// program (§4.6), not to this Go-hosted model of the collector's algorithm.
//
// Grounded on funxy's vm package for the shape of a hand-rolled runtime
// component living close to raw memory (growth increments, explicit
// thresholds in vm.go) translated from a bytecode stack's growth policy to
// a heap's collection-threshold policy.
package gcheap

import (
	"github.com/skizo-lang/skizo/internal/config"
	"github.com/skizo-lang/skizo/internal/metadata"
	"github.com/skizo-lang/skizo/internal/pool"
)

// Destructible pairs a swept-but-not-yet-freed object with the class whose
// destructor (or closure teardown) must run before the cell is released
// (§4.2 "Sweeping").
type Destructible struct {
	Ptr   pool.Ptr
	Class *metadata.Class
}

// Manager is the GC (§4.2).
type Manager struct {
	alloc *pool.Allocator

	classOf map[pool.Ptr]*metadata.Class
	marked  map[pool.Ptr]bool

	preciseRoots []*pool.Ptr          // locations registered via AddGCRoots
	rootHolders  map[pool.Ptr]struct{} // AddGCRoot(obj) pins
	internedStrings map[pool.Ptr]struct{}

	threshold      int64
	customPressure int64

	dtorsEnabled bool

	// RunDestructor is supplied by the domain; destructor bodies live in
	// emitted C and are opaque to this package (§4.2 "Destructor phase").
	RunDestructor func(ptr pool.Ptr, class *metadata.Class)

	// stats, surfaced through the domain's profiling data when
	// Flags.GCStatsEnabled is set (§11).
	Collections int
	LastFreed   int
	LastMarked  int
}

// New returns a Manager over a fresh Allocator, with the threshold seeded
// at MinGCThreshold (§4.2).
func New() *Manager {
	return &Manager{
		alloc:           pool.NewAllocator(),
		classOf:         make(map[pool.Ptr]*metadata.Class),
		marked:          make(map[pool.Ptr]bool),
		rootHolders:     make(map[pool.Ptr]struct{}),
		internedStrings: make(map[pool.Ptr]struct{}),
		threshold:       config.MinGCThreshold,
		dtorsEnabled:    true,
	}
}

// Allocator exposes the underlying pool allocator, e.g. for
// is_valid_pointer checks from the conservative stack scanner.
func (m *Manager) Allocator() *pool.Allocator { return m.alloc }

// Alloc allocates an instance of class, triggering a collection first if
// the threshold is exceeded (§4.2 "Collection triggering").
func (m *Manager) Alloc(class *metadata.Class) pool.Ptr {
	if m.alloc.Allocated()+m.customPressure >= m.threshold {
		m.CollectGarbage(false)
	}
	size := class.GC.ContentSize
	if size == 0 {
		size = 8
	}
	ptr := m.alloc.Allocate(size)
	m.classOf[ptr] = class
	m.adjustThreshold()
	return ptr
}

// adjustThreshold implements §4.2's adaptive policy: grow ×1.5 above 75%
// usage, shrink ÷2 (clamped to MinGCThreshold) below 50% usage.
func (m *Manager) adjustThreshold() {
	used := m.alloc.Allocated() + m.customPressure
	ratio := float64(used) / float64(m.threshold)
	switch {
	case ratio > config.GCGrowAbove:
		m.threshold = int64(float64(m.threshold) * config.GCGrowFactor)
	case ratio < config.GCShrinkBelow:
		shrunk := int64(float64(m.threshold) * config.GCShrinkFactor)
		if shrunk < config.MinGCThreshold {
			shrunk = config.MinGCThreshold
		}
		m.threshold = shrunk
	}
}

// AddMemoryPressure / RemoveMemoryPressure let clients report external
// allocations that count toward the collection threshold without being
// pool-backed objects (§4.2). The reported sum saturates at zero.
func (m *Manager) AddMemoryPressure(n int64) { m.customPressure += n }

func (m *Manager) RemoveMemoryPressure(n int64) {
	m.customPressure -= n
	if m.customPressure < 0 {
		m.customPressure = 0
	}
}

// AddGCRoots registers precise root locations, used when a class's static
// fields are initialized (§4.2 root kind 1).
func (m *Manager) AddGCRoots(locs []*pool.Ptr) {
	m.preciseRoots = append(m.preciseRoots, locs...)
}

// AddGCRoot pins obj directly reachable regardless of any other root
// (§4.2 root kind 2; §6 Embedding API).
func (m *Manager) AddGCRoot(obj pool.Ptr) { m.rootHolders[obj] = struct{}{} }

// RemoveGCRoot undoes AddGCRoot, restoring ordinary reachability
// (Testable invariant 6).
func (m *Manager) RemoveGCRoot(obj pool.Ptr) { delete(m.rootHolders, obj) }

// InternString marks a string object as kept alive until domain teardown
// (§4.2 root kind 3).
func (m *Manager) InternString(obj pool.Ptr) { m.internedStrings[obj] = struct{}{} }

// ClassOf returns the class stored at vtable slot 0, i.e. this object's
// dynamic type (Testable invariant 1).
func (m *Manager) ClassOf(ptr pool.Ptr) (*metadata.Class, bool) {
	c, ok := m.classOf[ptr]
	return c, ok
}

// SetDtorsEnabled toggles the second-pass teardown guarantee (§4.2: "a
// teardown pass... disables destructors on the second pass, guaranteeing
// termination").
func (m *Manager) SetDtorsEnabled(v bool) { m.dtorsEnabled = v }
