package gcheap

import (
	"testing"

	"github.com/skizo-lang/skizo/internal/metadata"
	"github.com/skizo-lang/skizo/internal/pool"
)

func plainClass(name string) *metadata.Class {
	c := metadata.NewClass(name, name)
	c.GC.ContentSize = 16
	return c
}

func TestCollectGarbageSweepsUnreachable(t *testing.T) {
	m := New()
	class := plainClass("Node")

	root := m.Alloc(class)
	child := m.Alloc(class)
	garbage := m.Alloc(class)

	pool.SetRefs(root, []*pool.Cell{child})
	m.AddGCRoot(root)

	m.CollectGarbage(false)

	if !m.alloc.IsValidPointer(root) || !m.alloc.IsValidPointer(child) {
		t.Fatalf("reachable objects were swept")
	}
	if m.alloc.IsValidPointer(garbage) {
		t.Fatalf("unreachable object survived collection")
	}
}

func TestRemoveGCRootRestoresOrdinaryReachability(t *testing.T) {
	m := New()
	class := plainClass("Node")
	obj := m.Alloc(class)

	m.AddGCRoot(obj)
	m.CollectGarbage(false)
	if !m.alloc.IsValidPointer(obj) {
		t.Fatalf("pinned object was swept")
	}

	m.RemoveGCRoot(obj)
	m.CollectGarbage(false)
	if m.alloc.IsValidPointer(obj) {
		t.Fatalf("object survived after its root was removed")
	}
}

func TestDestructorRunsExactlyOnceBeforeFree(t *testing.T) {
	m := New()
	class := plainClass("Resource")
	class.InstanceDtor = metadata.NewMethod("dtor", metadata.MethodDtor)

	var runs int
	m.RunDestructor = func(ptr pool.Ptr, c *metadata.Class) { runs++ }

	m.Alloc(class) // unrooted, collectible
	m.CollectGarbage(false)

	if runs != 1 {
		t.Fatalf("destructor ran %d times, want 1", runs)
	}
}

func TestTeardownDrainsObjectsCreatedByDestructors(t *testing.T) {
	m := New()
	class := plainClass("Chain")
	class.InstanceDtor = metadata.NewMethod("dtor", metadata.MethodDtor)

	spawned := false
	m.RunDestructor = func(ptr pool.Ptr, c *metadata.Class) {
		if !spawned {
			spawned = true
			m.Alloc(class) // destructor allocates a new object once
		}
	}

	m.Alloc(class)
	m.CollectGarbage(true)

	if m.alloc.ObjectCount() != 0 {
		t.Fatalf("teardown left %d objects on the heap, want 0", m.alloc.ObjectCount())
	}
}

func TestAdaptiveThresholdGrowsAboveHighWaterMark(t *testing.T) {
	m := New()
	class := plainClass("Big")
	class.GC.ContentSize = int(m.threshold) // one alloc crosses the threshold outright

	start := m.threshold
	m.Alloc(class)
	if m.threshold <= start {
		t.Fatalf("threshold did not grow after crossing high water mark: %d -> %d", start, m.threshold)
	}
}
