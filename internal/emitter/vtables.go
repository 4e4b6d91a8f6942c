package emitter

import "github.com/skizo-lang/skizo/internal/metadata"

// emitVTables implements §4.6 item 4: one array per class whose vtable flag
// is set, slot 0 the class pointer, slot i+1 the instance method at index
// i (or its ultimate base when not overridden locally, cast to the slot's
// declared function-pointer type).
func (e *Emitter) emitVTables(classes []*metadata.Class) {
	for _, c := range classes {
		if !c.HasVTable() {
			continue
		}
		e.emitOneVTable(c)
	}
	e.b.Raw("\n")
}

func (e *Emitter) emitOneVTable(c *metadata.Class) {
	slotCount := len(c.VT.Slots) - 1
	if slotCount < 0 {
		slotCount = 0
	}
	slots := make([]*metadata.Method, slotCount)
	for _, m := range c.InstanceMethods {
		idx := m.VTableIndex - 1
		if !m.IsVirtual() || idx < 0 || idx >= len(slots) {
			continue
		}
		slots[idx] = m
	}

	e.b.Linef("void* %s_vt[%d] = {", cName(c), len(slots)+1)
	e.b.Indent()
	e.b.Linef("(void*)&%s_classptr,", cName(c))
	for i := 1; i < len(slots)+1; i++ {
		m := slots[i-1]
		if m == nil {
			e.b.Line("0,")
			continue
		}
		e.b.Linef("(void*)%s, /* slot %d: %s */", methodCName(c, m), i, m.Name)
	}
	e.b.Dedent()
	e.b.Line("};")
}
