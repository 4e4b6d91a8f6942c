package emitter

import "github.com/skizo-lang/skizo/internal/metadata"

// emitHelpers implements §4.6 item 5: array-init helpers, identity-
// comparison helpers for value-type classes, and unbox helpers for boxed
// classes.
func (e *Emitter) emitHelpers(classes []*metadata.Class) {
	for _, c := range classes {
		switch c.Special {
		case metadata.SpecialClassArray:
			e.emitArrayInitHelper(c)
		case metadata.SpecialClassBoxed:
			e.emitUnboxHelper(c)
		}
		if c.Flags.IsValueType {
			e.emitIdentityHelper(c)
		}
	}
	e.b.Raw("\n")
}

func (e *Emitter) emitArrayInitHelper(c *metadata.Class) {
	e.b.Linef("void* %s_init(int32_t n, void* elements) {", cName(c))
	e.b.Indent()
	e.b.Line("ArrayHeader* h = (ArrayHeader*)_soX_newarray;")
	e.b.Line("h->length = n;")
	e.b.Line("h->data = elements;")
	e.b.Line("return h;")
	e.b.Dedent()
	e.b.Line("}")
}

// emitIdentityHelper emits a byte-wise equality helper for a value-type
// class, used wherever source compares two value-type instances (§4.6
// item 5); this is distinct from IdentityComparison ("==="), which is
// always reference/bit equality on a reference type.
func (e *Emitter) emitIdentityHelper(c *metadata.Class) {
	e.b.Linef("_so_bool %s_eq(struct %s a, struct %s b) {", cName(c), cName(c), cName(c))
	e.b.Indent()
	e.b.Linef("return _soX_biteq(&a, &b, sizeof(struct %s));", cName(c))
	e.b.Dedent()
	e.b.Line("}")
}

func (e *Emitter) emitUnboxHelper(c *metadata.Class) {
	if c.Wrapped == nil {
		return
	}
	e.b.Linef("struct %s %s_unbox(void* boxed) {", cName(c.Wrapped), cName(c))
	e.b.Indent()
	e.b.Linef("return *(struct %s*)_soX_unbox(boxed);", cName(c.Wrapped))
	e.b.Dedent()
	e.b.Line("}")
}
