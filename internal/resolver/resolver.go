// Package resolver implements the type resolver of §4.4: it turns an
// unresolved TypeRef into one with ResolvedClass populated, generating
// array/failable/boxed/foreign wrapper classes on demand and caching them
// on the domain's Registry.
//
// Grounded on funxy's internal/typesystem/unify.go and dispatch.go for the
// "recursively resolve the inner type first, then dispatch on shape"
// control flow — translated from funxy's Hindley-Milner unification (out
// of scope per spec.md Non-goals: "a sound type system with generics") to
// Skizo's much simpler non-generic resolution-by-shape.
package resolver

import (
	"fmt"

	"github.com/skizo-lang/skizo/internal/metadata"
)

// AbortError is returned when resolution cannot complete; callers at the
// domain boundary convert it into a DomainAbort (§4.4 "Output: ... or a
// domain abort on failure").
type AbortError struct {
	Ref metadata.TypeRef
	Msg string
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("cannot resolve type %s: %s", e.Ref.FlatName(), e.Msg)
}

// Resolver resolves TypeRefs against a single domain's Registry.
type Resolver struct {
	registry   *metadata.Registry
	primitives map[metadata.PrimitiveKind]*metadata.Class
	forced     []metadata.TypeRef
}

// New returns a Resolver over registry, with the seven built-in primitive
// classes pre-registered under their §4.8 nice names.
func New(registry *metadata.Registry) *Resolver {
	r := &Resolver{registry: registry, primitives: make(map[metadata.PrimitiveKind]*metadata.Class)}
	r.registerPrimitives()
	return r
}

func (r *Resolver) registerPrimitives() {
	reg := func(kind metadata.PrimitiveKind, name string, isValueType bool) {
		c := metadata.NewClass(name, name)
		c.Flags.IsValueType = isValueType
		c.IsInitialized = true
		r.registry.Register(c)
		r.primitives[kind] = c
	}
	reg(metadata.KindVoid, "void", true)
	reg(metadata.KindInt, "int", true)
	reg(metadata.KindFloat, "float", true)
	reg(metadata.KindBool, "bool", true)
	reg(metadata.KindChar, "char", true)
	reg(metadata.KindIntPtr, "intptr", true)
	reg(metadata.KindObject, "any", false)
}

// Resolve resolves ref to its Class (§4.4 algorithm, steps 1-4). Composite
// shapes are resolved inside-out: the element/referent type resolves
// first, then the wrapper around it.
func (r *Resolver) Resolve(ref metadata.TypeRef) (metadata.TypeRef, error) {
	if ref.IsResolved() {
		return ref, nil
	}

	if ref.IsArray() {
		elem, err := r.Resolve(ref.ElementType())
		if err != nil {
			return ref, err
		}
		return r.resolveArray(ref, elem)
	}

	if ref.Wrapper == metadata.WrapperFailable {
		inner := ref
		inner.Wrapper = metadata.WrapperNormal
		resolvedInner, err := r.Resolve(inner)
		if err != nil {
			return ref, err
		}
		return r.resolveFailable(ref, resolvedInner)
	}

	if ref.Wrapper == metadata.WrapperForeign {
		return r.resolveForeign(ref)
	}

	// Step 2: primitive.
	if ref.Kind != metadata.KindObject {
		ref.ResolvedClass = r.primitives[ref.Kind]
		if ref.ResolvedClass == nil {
			return ref, &AbortError{Ref: ref, Msg: "unknown primitive kind"}
		}
		return ref, nil
	}

	// Step 3: look up by flat name.
	if c, ok := r.registry.ByFlatName(ref.ClassName); ok {
		ref.ResolvedClass = c
		return ref, nil
	}

	return ref, &AbortError{Ref: ref, Msg: "no such class in this domain"}
}

// MustResolve is a convenience for call sites that have already
// established the type must resolve (built-in bootstrap code); it panics
// with an AbortError otherwise, mirroring the non-recoverable nature of a
// domain abort (§7).
func (r *Resolver) MustResolve(ref metadata.TypeRef) metadata.TypeRef {
	resolved, err := r.Resolve(ref)
	if err != nil {
		panic(err)
	}
	return resolved
}

// EnqueueForced registers ref (written `force T[]*?` in source) so its
// wrapper class exists even if no user code mentions it syntactically
// (§4.4 step 5).
func (r *Resolver) EnqueueForced(ref metadata.TypeRef) {
	r.forced = append(r.forced, ref)
}

// ResolveForced drains the forced-type queue, resolving (and thereby
// generating) every entry. Returns the first error encountered, if any.
func (r *Resolver) ResolveForced() error {
	for len(r.forced) > 0 {
		ref := r.forced[0]
		r.forced = r.forced[1:]
		if _, err := r.Resolve(ref); err != nil {
			return err
		}
	}
	return nil
}

// Registry exposes the resolver's backing registry, e.g. for the
// transformer to look up a resolved class's members after resolution.
func (r *Resolver) Registry() *metadata.Registry { return r.registry }
