// Package emitter produces one self-contained C translation unit per domain
// from a fully transformed set of classes (§4.6). Ordering is strict:
// preamble, struct headers (two-pass), function headers, vtables, helpers,
// function bodies, then prolog/epilog.
//
// Grounded on funxy's vm/disasm.go for the indent-aware text-building
// style (via internal/strutil.Builder) and on other_examples'
// CWBudde-go-dws compiler/*.go two-pass forward-declare-then-define
// struct emission shape.
package emitter

import (
	"fmt"
	"sort"

	"github.com/skizo-lang/skizo/internal/config"
	"github.com/skizo-lang/skizo/internal/metadata"
	"github.com/skizo-lang/skizo/internal/strutil"
)

// Emitter renders a domain's resolved, transformed classes to C source.
type Emitter struct {
	registry *metadata.Registry
	flags    config.Flags
	b        *strutil.Builder
}

// New returns an Emitter over registry's classes.
func New(registry *metadata.Registry, flags config.Flags) *Emitter {
	return &Emitter{registry: registry, flags: flags, b: strutil.NewBuilder()}
}

// Emit renders the complete translation unit and returns it as a string.
func (e *Emitter) Emit() string {
	classes := sortedClasses(e.registry.All())

	e.emitPreamble()
	e.emitStructHeaders(classes)
	e.emitFunctionHeaders(classes)
	e.emitVTables(classes)
	e.emitHelpers(classes)
	e.emitFunctionBodies(classes)
	e.emitProlog(classes)
	e.emitEpilog(classes)

	return e.b.String()
}

// sortedClasses returns classes value-types first then reference-types,
// each group in flat-name order, matching §4.6 item 2's ordering rule
// (needed so two runs over the same registry produce byte-identical
// output, which the C backend's build cache relies on).
func sortedClasses(classes []*metadata.Class) []*metadata.Class {
	out := append([]*metadata.Class(nil), classes...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Flags.IsValueType != out[j].Flags.IsValueType {
			return out[i].Flags.IsValueType
		}
		return out[i].FlatName < out[j].FlatName
	})
	return out
}

// cName mangles a class's flat name into a valid C identifier fragment.
func cName(c *metadata.Class) string {
	return "_so_" + sanitize(c.FlatName)
}

func sanitize(s string) string {
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

func methodCName(c *metadata.Class, m *metadata.Method) string {
	return fmt.Sprintf("_som_%s_%s", sanitize(c.FlatName), sanitize(m.Name))
}

// cType returns the C type spelling for a TypeRef (§4.6 preamble aliases).
func cType(t metadata.TypeRef) string {
	if t.IsArray() || t.Wrapper == metadata.WrapperForeign {
		return "void*"
	}
	switch t.Kind {
	case metadata.KindVoid:
		return "void"
	case metadata.KindInt:
		return "int"
	case metadata.KindFloat:
		return "double"
	case metadata.KindBool:
		return "_so_bool"
	case metadata.KindChar:
		return "_so_char"
	case metadata.KindIntPtr:
		return "void*"
	case metadata.KindObject:
		if t.ResolvedClass != nil && t.ResolvedClass.Flags.IsValueType {
			return "struct " + cName(t.ResolvedClass)
		}
		return "void*"
	default:
		return "void*"
	}
}
