// Package pool implements the fixed-size arena allocator described in
// §4.1: objects are grouped into pools by element size (rounded up to
// CellGranularity), each pool owns a list of fixed arenas, and oversized
// requests go to a large-object side table.
//
// Grounded on funxy's vm/chunk.go (growable backing-buffer pattern: start
// small, append, never shrink) for the arena-list growth strategy, and on
// vm/vm.go's stack/frame growth increments for the "grow, don't
// reallocate piecemeal" discipline applied here to arenas instead of a
// value stack.
package pool

import (
	"unsafe"

	"github.com/skizo-lang/skizo/internal/config"
)

// Cell is the header every allocated or free slot begins with (§4.1): an
// in-use cell's Owner is non-nil; a free cell's Owner is nil and Next
// threads the pool's free list. Payload is the zeroed user buffer.
type Cell struct {
	Owner   *Pool
	Next    *Cell
	Payload []byte

	// Refs holds this object's reference-typed field values, addressed by
	// the same positions as its class's GCInfo.GCMap offsets. It stands in
	// for reading a *Cell out of Payload at a raw byte offset, which is
	// how the emitted C program does it (§4.6) — this Go model tracks the
	// same graph shape without unsafe byte-level field access.
	Refs []*Cell
}

// Ptr is an opaque handle to a live allocation — a pointer to its Cell.
// Comparisons and is_valid_pointer checks operate on the Cell's address,
// mirroring the C runtime's raw pointer-into-arena checks without giving
// Go callers pointer arithmetic.
type Ptr = *Cell

// Arena holds a fixed number of contiguous cells of one element size
// (§4.1: "128 KiB arenas").
type Arena struct {
	elementSize int
	cells       []Cell
	startAddr   uintptr
	endAddr     uintptr
}

func newArena(elementSize int) *Arena {
	count := config.ArenaSize / elementSize
	if count < 1 {
		count = 1
	}
	cells := make([]Cell, count)
	a := &Arena{elementSize: elementSize, cells: cells}
	if count > 0 {
		a.startAddr = uintptr(unsafe.Pointer(&cells[0]))
		a.endAddr = uintptr(unsafe.Pointer(&cells[count-1])) + unsafe.Sizeof(Cell{})
	}
	return a
}

// contains reports whether addr falls within this arena's cell array and
// lands exactly on a cell boundary (§4.1 is_valid_pointer: "at a correct
// cell boundary").
func (a *Arena) contains(addr uintptr) (*Cell, bool) {
	if addr < a.startAddr || addr >= a.endAddr {
		return nil, false
	}
	offset := addr - a.startAddr
	stride := unsafe.Sizeof(Cell{})
	if offset%stride != 0 {
		return nil, false
	}
	idx := offset / stride
	return &a.cells[idx], true
}

func cellAddr(c *Cell) uintptr { return uintptr(unsafe.Pointer(c)) }
