package emitter

import "github.com/skizo-lang/skizo/internal/metadata"

// emitEventDispatch implements §4.6 item 8: the generated fire method
// iterates a snapshot of the handler array (so handlers may mutate the
// list during dispatch), retrieves each handler's invoke through the
// shared Closure layout, and calls it; the generated add-handler method
// appends to that array.
func (e *Emitter) emitEventDispatch(c *metadata.Class, m *metadata.Method) {
	b := e.b
	switch m.Special {
	case metadata.SpecialFire:
		b.Linef("%s {", e.functionSignature(c, m))
		b.Indent()
		b.Line("int n = self->_handlerCount;")
		b.Line("Closure** snapshot = (Closure**)self->_handlers;")
		b.Block("for (int i = 0; i < n; i++) {", "}", func() {
			b.Line("Closure* h = snapshot[i];")
			b.Line("((void(*)(void*))h->vtable[1])(h);")
		})
		b.Dedent()
		b.Line("}")
	case metadata.SpecialAddHandler:
		b.Linef("%s {", e.functionSignature(c, m))
		b.Indent()
		b.Line("self->_handlers[self->_handlerCount++] = handler;")
		b.Dedent()
		b.Line("}")
	}
}

// emitRemoteServerStub implements §4.6 item 10: declared for every instance
// method of every foreign-proxy class (i.e. every method of the wrapped
// class, since the proxy mirrors it), unpacks parameters from a message,
// looks up the target via _soX_findmethod2, and invokes it.
func (e *Emitter) emitRemoteServerStub(c *metadata.Class, m *metadata.Method) {
	b := e.b
	stubName := "_sors_" + sanitize(c.FlatName) + "_" + sanitize(m.Name)
	b.Linef("void %s(void* self, void* msg, void* retbuf) {", stubName)
	b.Indent()
	b.Linef("void* args = _soX_unpack(msg, %d);", len(m.Signature.Params))
	b.Linef("void* target = _soX_findmethod2(self, %q);", m.Name)
	b.Line("((void(*)(void*, void*, void*))target)(self, args, retbuf);")
	b.Dedent()
	b.Line("}")
}
