package pool

import (
	"fmt"
	"sync"

	"github.com/skizo-lang/skizo/internal/config"
)

// Pool groups allocations of one rounded element size across a growable
// list of Arenas and threads a single free list across all of them.
type Pool struct {
	elementSize int
	arenas      []*Arena
	freeList    *Cell
	inUseCount  int
}

func newPool(elementSize int) *Pool {
	return &Pool{elementSize: elementSize}
}

func (p *Pool) growArena() {
	a := newArena(p.elementSize)
	p.arenas = append(p.arenas, a)
	for i := range a.cells {
		a.cells[i].Next = p.freeList
		p.freeList = &a.cells[i]
	}
}

func (p *Pool) alloc(size int) *Cell {
	if p.freeList == nil {
		p.growArena()
	}
	c := p.freeList
	p.freeList = c.Next
	c.Next = nil
	c.Owner = p
	c.Payload = make([]byte, size) // zeroed, per §4.1 "allocate(size) returns a zeroed buffer"
	p.inUseCount++
	return c
}

func (p *Pool) release(c *Cell) {
	c.Owner = nil
	c.Payload = nil
	c.Refs = nil
	c.Next = p.freeList
	p.freeList = c
	p.inUseCount--
}

func (p *Pool) find(addr uintptr) (*Cell, bool) {
	for _, a := range p.arenas {
		if c, ok := a.contains(addr); ok {
			return c, true
		}
	}
	return nil, false
}

// roundUp rounds size up to the pool's granularity, including the header.
func roundUp(size int) int {
	total := size + config.CellGranularity // header overhead, approximated
	rem := total % config.CellGranularity
	if rem != 0 {
		total += config.CellGranularity - rem
	}
	return total
}

// Allocator is the top-level pool allocator: a set of size-classed Pools
// plus a large-object side table for requests exceeding ArenaSize/4
// (§4.1). The allocator never returns an error, and it does not detect
// allocation failure either: nothing in this package panics with
// ErrOutOfMemory.
type Allocator struct {
	mu          sync.Mutex
	pools       map[int]*Pool
	largeObjs   map[*Cell]struct{}
	pendingFree []*Cell // frees deferred during Enumerate (§4.1)
	walking     bool
	allocated   int64
}

// ErrOutOfMemory is the OUT_OF_MEMORY error value (§4.1 Failure mode, §7);
// Allocate does not raise it.
var ErrOutOfMemory = fmt.Errorf("OUT_OF_MEMORY")

// NewAllocator returns an empty Allocator.
func NewAllocator() *Allocator {
	return &Allocator{
		pools:     make(map[int]*Pool),
		largeObjs: make(map[*Cell]struct{}),
	}
}

// Allocate returns a zeroed size-byte buffer's handle. Requests whose
// element size exceeds a quarter of an arena go to the large-object side
// table instead of a size-classed pool (§4.1).
func (al *Allocator) Allocate(size int) Ptr {
	al.mu.Lock()
	defer al.mu.Unlock()

	if size > config.ArenaSize/config.LargeObjectShare {
		c := &Cell{Payload: make([]byte, size)}
		c.Owner = (*Pool)(nil) // large objects have no owning pool; validity is membership in largeObjs
		al.largeObjs[c] = struct{}{}
		al.allocated += int64(size)
		return c
	}

	classSize := roundUp(size)
	p, ok := al.pools[classSize]
	if !ok {
		p = newPool(classSize)
		al.pools[classSize] = p
	}
	c := p.alloc(size)
	al.allocated += int64(size)
	return c
}

// Free returns ptr to its pool's free list, or removes it from the
// large-object table. During a heap walk, frees are deferred (§4.1).
func (al *Allocator) Free(ptr Ptr) {
	al.mu.Lock()
	defer al.mu.Unlock()
	if al.walking {
		al.pendingFree = append(al.pendingFree, ptr)
		return
	}
	al.freeNow(ptr)
}

func (al *Allocator) freeNow(c *Cell) {
	if _, ok := al.largeObjs[c]; ok {
		al.allocated -= int64(len(c.Payload))
		delete(al.largeObjs, c)
		return
	}
	if c.Owner != nil {
		al.allocated -= int64(len(c.Payload))
		c.Owner.release(c)
	}
}

// IsValidPointer reports whether ptr lies inside some arena at a correct
// cell boundary and the cell is in use, or ptr is a live large object
// (§4.1).
func (al *Allocator) IsValidPointer(ptr Ptr) bool {
	al.mu.Lock()
	defer al.mu.Unlock()
	if ptr == nil {
		return false
	}
	if _, ok := al.largeObjs[ptr]; ok {
		return true
	}
	addr := cellAddr(ptr)
	for _, p := range al.pools {
		if c, ok := p.find(addr); ok {
			return c.Owner != nil
		}
	}
	return false
}

// Enumerate walks every arena's in-use cells followed by every large
// object, calling fn(cell) for each. Frees issued by fn are deferred until
// Enumerate returns (§4.1).
func (al *Allocator) Enumerate(fn func(Ptr)) {
	al.mu.Lock()
	al.walking = true
	al.mu.Unlock()

	for _, p := range al.pools {
		for _, a := range p.arenas {
			for i := range a.cells {
				c := &a.cells[i]
				if c.Owner != nil {
					fn(c)
				}
			}
		}
	}
	for c := range al.largeObjs {
		fn(c)
	}

	al.mu.Lock()
	al.walking = false
	pending := al.pendingFree
	al.pendingFree = nil
	al.mu.Unlock()

	for _, c := range pending {
		al.mu.Lock()
		al.freeNow(c)
		al.mu.Unlock()
	}
}

// Allocated returns the current number of live payload bytes, used by the
// GC's threshold comparison (§4.2).
func (al *Allocator) Allocated() int64 {
	al.mu.Lock()
	defer al.mu.Unlock()
	return al.allocated
}

// ObjectCount returns the number of live cells across every pool plus large
// objects — Testable Property / S6's pool.object_count().
func (al *Allocator) ObjectCount() int {
	al.mu.Lock()
	defer al.mu.Unlock()
	n := len(al.largeObjs)
	for _, p := range al.pools {
		n += p.inUseCount
	}
	return n
}
