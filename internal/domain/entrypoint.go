package domain

import (
	"fmt"

	"github.com/skizo-lang/skizo/internal/cbackend"
	"github.com/skizo-lang/skizo/internal/metadata"
)

// InvokeEntryPoint resolves the configured entry class/method (default
// Program::main) and calls it; any domain-abort raised during the call is
// caught here, its message recorded, and a non-nil error returned rather
// than propagated further (§4.8: "any DomainAbort is caught at the top
// level, its message printed and the return value becomes failure").
func (d *Domain) InvokeEntryPoint() (err error) {
	c, ok := d.registry.ByFlatName(d.entryClass)
	if !ok {
		return fmt.Errorf("domain: entry class %q not found", d.entryClass)
	}
	var entry *metadata.Method
	for _, m := range c.StaticMethods {
		if m.Name == d.entryMethod {
			entry = m
			break
		}
	}
	if entry == nil {
		return fmt.Errorf("domain: entry method %s::%s not found", c.NiceName, d.entryMethod)
	}

	defer func() {
		if r := recover(); r != nil {
			a, ok := r.(*Abort)
			if !ok {
				panic(r)
			}
			d.lastError = a.Error()
			err = a
		}
	}()

	d.pushFrame(StackFrame{ClassName: c.NiceName, MethodName: entry.Name})
	defer d.popFrame()

	addr, ok := d.backend.ResolveSymbol(methodCName(c, entry))
	if !ok {
		d.abort(AbortMissingCallable, "entry point %s::%s was not emitted", c.NiceName, entry.Name)
	}
	cbackend.CallVoid(addr)
	return nil
}

// methodCName mirrors the emitter's own methodCName mangling
// (_som_<flatname>_<method>) so a compiled method's symbol can be looked
// up — for the entry point, static ctors, and static dtors alike — without
// importing the emitter package just for this helper.
func methodCName(c *metadata.Class, m *metadata.Method) string {
	return fmt.Sprintf("_som_%s_%s", sanitizeFlat(c.FlatName), sanitizeFlat(m.Name))
}

func sanitizeFlat(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
			out = append(out, ch)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
