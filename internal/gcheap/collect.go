package gcheap

import (
	"github.com/skizo-lang/skizo/internal/metadata"
	"github.com/skizo-lang/skizo/internal/pool"
)

// CollectGarbage runs one mark-sweep pass (§4.2). With teardown=true every
// root is ignored and the whole heap is swept; if destructors created new
// objects during teardown, it re-runs with destructors disabled on the
// second pass until the heap drains, guaranteeing termination.
func (m *Manager) CollectGarbage(teardown bool) {
	if !teardown {
		m.collectOnce(false)
		return
	}
	for {
		m.collectOnce(true)
		if m.alloc.ObjectCount() == 0 {
			return
		}
		// Destructors created new objects; re-run with destructors disabled
		// so the sweep can actually drain the heap (§4.2 dtors_enabled).
		m.dtorsEnabled = false
	}
}

func (m *Manager) collectOnce(teardown bool) {
	m.Collections++
	for k := range m.marked {
		delete(m.marked, k)
	}

	if !teardown {
		m.markRoots()
	}

	var destructables []Destructible
	m.alloc.Enumerate(func(c pool.Ptr) {
		if m.marked[c] {
			delete(m.marked, c) // clear the mark bit before user code ever observes it (§4.2)
			return
		}
		class, hasClass := m.classOf[c]
		if hasClass && (class.InstanceDtor != nil || class.Special == metadata.SpecialClassClosureEnv) {
			destructables = append(destructables, Destructible{Ptr: c, Class: class})
			return
		}
		m.freeNow(c)
	})

	m.LastMarked = len(m.marked)
	m.LastFreed = 0
	m.runDestructors(destructables)
}

func (m *Manager) freeNow(c pool.Ptr) {
	delete(m.classOf, c)
	m.alloc.Free(c)
	m.LastFreed++
}

// runDestructors implements §4.2's "Destructor phase": each destructable's
// destructor runs exactly once with GC disabled, swallowing any exception,
// then the cell is freed.
func (m *Manager) runDestructors(list []Destructible) {
	if !m.dtorsEnabled {
		for _, d := range list {
			m.freeNow(d.Ptr)
		}
		return
	}
	for _, d := range list {
		m.runOneDestructor(d)
		m.freeNow(d.Ptr)
	}
}

func (m *Manager) runOneDestructor(d Destructible) {
	defer func() {
		_ = recover() // destructor exceptions are swallowed (§4.2)
	}()
	if m.RunDestructor != nil {
		m.RunDestructor(d.Ptr, d.Class)
	}
}

// markRoots marks every precise and pinned root, then traces outward
// (§4.2 Marking).
func (m *Manager) markRoots() {
	for _, loc := range m.preciseRoots {
		if loc != nil && *loc != nil {
			m.mark(*loc)
		}
	}
	for obj := range m.rootHolders {
		m.mark(obj)
	}
	for obj := range m.internedStrings {
		m.mark(obj)
	}
}

// Mark exposes the mark routine for the conservative stack scanner (§4.2
// Stack scan), which marks any word on the scanned range that passes
// IsValidPointer.
func (m *Manager) Mark(ptr pool.Ptr) { m.mark(ptr) }

func (m *Manager) mark(c pool.Ptr) {
	if c == nil || m.marked[c] {
		return
	}
	m.marked[c] = true
	for _, child := range pool.Refs(c) {
		m.mark(child)
	}
}

// ScanConservativeStack walks every word between base and top (a
// downward-growing stack, §4.2 "architecture assumption"), treating it as
// a potential heap reference when IsValidPointer accepts it.
func (m *Manager) ScanConservativeStack(words []pool.Ptr) {
	for _, w := range words {
		if w != nil && m.alloc.IsValidPointer(w) {
			m.mark(w)
		}
	}
}
