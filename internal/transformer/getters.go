package transformer

import (
	"github.com/skizo-lang/skizo/internal/ast"
	"github.com/skizo-lang/skizo/internal/metadata"
)

// markInlinableGetter implements §4.5 step 5: a non-virtual instance method
// whose entire body is `return this.field;` (or, in this tree, a one-
// expression Body yielding the field's Identifier) is tagged so the emitter
// can lower a call to it as a direct field load instead of a call (§4.6
// item 7 "non-virtual/getter-inlined calls").
func (t *Transformer) markInlinableGetter(c *metadata.Class, m *metadata.Method) {
	if m.IsVirtual() || m.Signature.Arity() != 0 || m.Body == nil {
		return
	}
	body, ok := m.Body.(*ast.Body)
	if !ok || len(body.Exprs) != 1 {
		return
	}
	id, ok := body.Exprs[0].(*ast.Identifier)
	if !ok || id.Resolved != ast.IdentField || id.Field == nil {
		return
	}
	if id.Field.DeclaringClass != c {
		return
	}
	m.Flags.Inlinable = true
	m.GetterOf = &metadata.InlinableGetter{Field: id.Field}
}
