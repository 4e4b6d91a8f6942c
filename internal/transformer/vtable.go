package transformer

import "github.com/skizo-lang/skizo/internal/metadata"

// assignVTableIndices implements §4.5 step 4: every instance method that
// isn't a constructor/destructor occupies a vtable slot unless it overrides
// a base method, in which case it shares the base method's index (the
// invariant Testable Property 3 checks). Value-types never carry a vtable
// at all (§3.2 invariant).
//
// Grounded on other_examples' malphas-lang-malphas-lang vtables.go, which
// assigns slots in declaration order and has an override reuse the
// overridden method's slot rather than appending a new one.
func (t *Transformer) assignVTableIndices(c *metadata.Class) {
	if c.Flags.IsValueType {
		return
	}

	next := 1 // slot 0 is reserved for the class pointer (§3.2 invariant)
	for _, m := range c.InstanceMethods {
		if m.Kind != metadata.MethodNormal {
			continue
		}
		if m.BaseMethod != nil {
			m.VTableIndex = m.BaseMethod.VTableIndex
			m.Flags.TrulyVirtual = m.BaseMethod.Flags.TrulyVirtual
			continue
		}
		if !t.methodNeedsSlot(c, m) {
			continue
		}
		m.VTableIndex = next
		m.Flags.TrulyVirtual = true
		next++
	}

	c.VT = metadata.NewVTable(next - 1)
}

// methodNeedsSlot decides whether a method declared directly on c (i.e. not
// an override) needs a vtable slot: abstract methods always do, since every
// concrete override of them must land in the same slot; interface methods
// always do; everything else only needs one if some subclass overrides it,
// which the resolver records by pre-populating m.Flags.TrulyVirtual when it
// links an override's BaseMethod back to m during class declaration.
func (t *Transformer) methodNeedsSlot(c *metadata.Class, m *metadata.Method) bool {
	if m.Flags.Abstract {
		return true
	}
	if c.Special == metadata.SpecialClassInterface {
		return true
	}
	return m.Flags.TrulyVirtual
}
