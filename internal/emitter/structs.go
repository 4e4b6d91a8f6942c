package emitter

import "github.com/skizo-lang/skizo/internal/metadata"

// emitStructHeaders implements §4.6 item 2: every class gets a forward
// declaration, then (in the same value-types-first order) its full body,
// so a field typed as another not-yet-declared class still compiles.
func (e *Emitter) emitStructHeaders(classes []*metadata.Class) {
	b := e.b
	for _, c := range classes {
		if c.Special == metadata.SpecialClassInterface {
			continue
		}
		b.Linef("struct %s;", cName(c))
	}
	b.Raw("\n")

	for _, c := range classes {
		e.emitOneStructBody(c)
	}
	b.Raw("\n")

	for _, c := range classes {
		for _, cst := range c.Consts {
			e.emitConst(c, cst)
		}
	}
	b.Raw("\n")

	for _, c := range classes {
		for _, f := range c.StaticFields {
			e.emitStaticField(c, f)
		}
	}
	b.Raw("\n")
}

func (e *Emitter) emitOneStructBody(c *metadata.Class) {
	if c.Special == metadata.SpecialClassInterface {
		return
	}
	b := e.b
	b.Linef("struct %s {", cName(c))
	b.Indent()
	if c.HasVTable() {
		b.Line("void** vtable;")
	}
	for _, f := range c.InstanceFields {
		b.Linef("%s %s;", cType(f.Type), f.Name)
	}
	if len(c.InstanceFields) == 0 && !c.HasVTable() {
		b.Line("char _unused;") // C forbids an empty struct body
	}
	b.Dedent()
	b.Line("};")
}

func (e *Emitter) emitConst(c *metadata.Class, cst *metadata.Const) {
	name := cName(c) + "_" + cst.Name
	switch cst.ValueKind {
	case metadata.ConstInt:
		e.b.Linef("#define %s %d", name, cst.IntValue)
	case metadata.ConstFloat:
		e.b.Linef("#define %s %f", name, cst.FloatValue)
	case metadata.ConstBool:
		if cst.BoolValue {
			e.b.Linef("#define %s 1", name)
		} else {
			e.b.Linef("#define %s 0", name)
		}
	case metadata.ConstChar:
		e.b.Linef("#define %s %d", name, cst.CharValue)
	case metadata.ConstString:
		e.b.Linef("#define %s %q", name, cst.StringValue)
	}
}

// emitStaticField declares a static field as a file-scope variable named
// `_so_ClassFlat_fieldName` (§4.6 item 2); primitive statics get a zero
// initializer, struct statics are zero-initialized later by _soX_static_vt.
func (e *Emitter) emitStaticField(c *metadata.Class, f *metadata.Field) {
	name := cName(c) + "_" + f.Name
	if f.Type.Kind == metadata.KindObject && f.Type.ResolvedClass != nil && f.Type.ResolvedClass.Flags.IsValueType {
		e.b.Linef("%s %s;", cType(f.Type), name)
		return
	}
	e.b.Linef("%s %s = 0;", cType(f.Type), name)
}
