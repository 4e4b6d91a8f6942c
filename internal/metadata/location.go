// Package metadata is the central in-memory model shared by the resolver,
// transformer, emitter and thunk manager: Class, Method, Field, Const,
// Local, Param, Signature, Attribute and TypeRef (§3 DATA MODEL).
//
// Grounded on funxy's internal/symbols (class/symbol registry shape) and
// internal/typesystem (Type interface, substitution), and on
// other_examples' CWBudde-go-dws runtime/metadata.go and
// malphas-lang-malphas-lang internal/codegen/llvm/vtables.go for the
// vtable-slot and member-list shape of a metadata node in a compiled,
// non-generic OO language.
package metadata

import "fmt"

// SourceLocation pinpoints a declaration or expression in source text.
// Every Method, Field, Class and ast.Expr carries one (§3.5).
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

func (l SourceLocation) String() string {
	if l.File == "" {
		return "<generated>"
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Unknown is the zero-value location used for compiler-generated nodes that
// have no direct source counterpart (closure-env classes, inlined helpers).
var Unknown = SourceLocation{File: "<generated>"}
