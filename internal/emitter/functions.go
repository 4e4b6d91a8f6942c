package emitter

import (
	"fmt"
	"strings"

	"github.com/skizo-lang/skizo/internal/metadata"
)

// emitFunctionHeaders implements §4.6 item 3: a forward declaration for
// every constructor, destructor, static method and non-abstract instance
// method, plus a virtual-call-helper declaration for every method reached
// through a vtable.
func (e *Emitter) emitFunctionHeaders(classes []*metadata.Class) {
	for _, c := range classes {
		for _, m := range allMethods(c) {
			if m.Flags.Abstract {
				continue
			}
			e.b.Linef("%s;", e.functionSignature(c, m))
			if m.IsVirtual() && m.BaseMethod == nil {
				e.b.Linef("%s; /* VCH */", e.vchSignature(c, m))
			}
		}
	}
	e.b.Raw("\n")
}

func (e *Emitter) functionSignature(c *metadata.Class, m *metadata.Method) string {
	ret := cType(m.Signature.ReturnType)
	params := e.paramList(c, m)
	return fmt.Sprintf("%s %s(%s)", ret, methodCName(c, m), params)
}

// vchSignature types the virtual-call helper after the method's ultimate
// base, since every override sharing a slot must be callable through one
// matching function-pointer type (§4.6 item 7).
func (e *Emitter) vchSignature(c *metadata.Class, m *metadata.Method) string {
	base := m.UltimateBase()
	ret := cType(base.Signature.ReturnType)
	return fmt.Sprintf("%s _sovch_%s(void* self%s)", ret, sanitize(base.Name), e.extraParamList(base))
}

func (e *Emitter) paramList(c *metadata.Class, m *metadata.Method) string {
	parts := []string{}
	if !m.Signature.IsStatic {
		parts = append(parts, "void* self")
	}
	for _, p := range m.Signature.Params {
		parts = append(parts, fmt.Sprintf("%s %s", cType(p.Type), p.Name))
	}
	if len(parts) == 0 {
		return "void"
	}
	return strings.Join(parts, ", ")
}

func (e *Emitter) extraParamList(m *metadata.Method) string {
	var b strings.Builder
	for _, p := range m.Signature.Params {
		b.WriteString(fmt.Sprintf(", %s %s", cType(p.Type), p.Name))
	}
	return b.String()
}

func allMethods(c *metadata.Class) []*metadata.Method {
	out := make([]*metadata.Method, 0, len(c.InstanceMethods)+len(c.StaticMethods)+len(c.InstanceCtors)+2)
	out = append(out, c.InstanceMethods...)
	out = append(out, c.StaticMethods...)
	out = append(out, c.InstanceCtors...)
	if c.StaticCtor != nil {
		out = append(out, c.StaticCtor)
	}
	if c.InstanceDtor != nil {
		out = append(out, c.InstanceDtor)
	}
	if c.StaticDtor != nil {
		out = append(out, c.StaticDtor)
	}
	return out
}
