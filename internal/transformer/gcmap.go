package transformer

import (
	"sort"

	"github.com/skizo-lang/skizo/internal/config"
	"github.com/skizo-lang/skizo/internal/metadata"
)

// computeGCMap implements §4.5 step 6: lay out c's instance fields
// sequentially, starting past the vtable pointer for reference types, and
// record the sorted byte offsets of every reference-typed field so the
// collector's Mark pass (§4.2) can walk an instance without per-class
// tracing code. A value-type field's own reference offsets are expanded
// in-place at the field's base offset, so a value-type nested inside a
// reference type traces through correctly without its own vtable.
//
// Grounded on other_examples' CWBudde-go-dws runtime/metadata.go, which
// carries the same "sorted offset list, recursively unioned across
// embedded value-type fields" shape for its own object layout.
func (t *Transformer) computeGCMap(c *metadata.Class) {
	offset := 0
	if c.HasVTable() {
		offset = config.PointerSize
	}

	var refs []int
	for _, f := range c.InstanceFields {
		size := t.fieldSize(f.Type)
		f.Offset = offset
		if t.isReferenceType(f.Type) {
			refs = append(refs, offset)
		} else if f.Type.ResolvedClass != nil && f.Type.ResolvedClass.Flags.IsValueType {
			for _, sub := range f.Type.ResolvedClass.GC.GCMap {
				refs = append(refs, offset+sub)
			}
		}
		offset += size
	}

	sort.Ints(refs)
	c.GC.GCMap = refs
	c.GC.ContentSize = offset
	if c.HasVTable() {
		c.GC.SizeForUse = config.PointerSize // boxed/reference types are passed around by pointer
	} else {
		c.GC.SizeForUse = offset
	}
}

// isReferenceType reports whether a field of this type holds a traced
// pointer: any non-value-type class, or an unresolved object type (which
// can only ever resolve to a reference type — primitives are never left
// unresolved past §4.4).
func (t *Transformer) isReferenceType(typ metadata.TypeRef) bool {
	if typ.Kind != metadata.KindObject {
		return false
	}
	if typ.ResolvedClass == nil {
		return true
	}
	return !typ.ResolvedClass.Flags.IsValueType
}

// fieldSize returns the on-target byte width of a field's type (§3.1,
// §4.6 item 2).
func (t *Transformer) fieldSize(typ metadata.TypeRef) int {
	if typ.IsArray() || typ.Wrapper == metadata.WrapperForeign {
		return config.PointerSize
	}
	switch typ.Kind {
	case metadata.KindInt:
		return config.IntSize
	case metadata.KindFloat:
		return config.FloatSize
	case metadata.KindBool:
		return config.BoolSize
	case metadata.KindChar:
		return config.CharSize
	case metadata.KindIntPtr:
		return config.PointerSize
	case metadata.KindObject:
		if typ.ResolvedClass != nil && typ.ResolvedClass.Flags.IsValueType {
			return typ.ResolvedClass.GC.SizeForUse
		}
		return config.PointerSize
	default:
		return config.PointerSize
	}
}
