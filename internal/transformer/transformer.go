// Package transformer walks every method body in a domain and performs the
// eight passes of §4.5: capture resolution, type inference, conditional
// inlining, vtable-index assignment, inlinable-getter marking, GC-map
// computation, ECall attribute resolution, and verification.
//
// Grounded on funxy's internal/analyzer (inference.go/inference_*.go) for
// the bottom-up-inference-over-a-tagged-tree shape, translated from
// funxy's Hindley-Milner inference (generic, unification-based — out of
// scope per spec.md's Non-goals) to Skizo's much simpler
// strict/exact-match inference (§4.5 step 2: "no implicit upcasts
// inferred"). The vtable-index and GC-map passes are grounded on
// other_examples' malphas-lang-malphas-lang vtables.go and
// CWBudde-go-dws runtime/metadata.go.
package transformer

import (
	"fmt"

	"github.com/skizo-lang/skizo/internal/metadata"
	"github.com/skizo-lang/skizo/internal/resolver"
)

// Transformer runs the per-class, per-method passes against a single
// domain's registry and resolver.
type Transformer struct {
	resolver *resolver.Resolver
	registry *metadata.Registry
	flags    Flags
}

// Flags mirrors the subset of config.Flags the transformer consults
// directly (passed in rather than importing internal/config to keep the
// dependency direction domain -> transformer -> {metadata,resolver}).
type Flags struct {
	InlineBranching bool
}

// New returns a Transformer over resolver/registry with the given flags.
func New(r *resolver.Resolver, flags Flags) *Transformer {
	return &Transformer{resolver: r, registry: r.Registry(), flags: flags}
}

// TransformClass runs every pass against one class's methods, in the order
// §4.5 specifies.
func (t *Transformer) TransformClass(c *metadata.Class) error {
	for _, m := range allMethods(c) {
		t.resolveCaptures(c, m)
	}
	for _, m := range allMethods(c) {
		if err := t.inferTypes(m); err != nil {
			return fmt.Errorf("transformer: %s::%s: %w", c.NiceName, m.Name, err)
		}
	}
	if t.flags.InlineBranching {
		for _, m := range allMethods(c) {
			t.inlineConditionals(m)
		}
	}
	t.assignVTableIndices(c)
	for _, m := range c.InstanceMethods {
		t.markInlinableGetter(c, m)
	}
	t.computeGCMap(c)
	for _, m := range allMethods(c) {
		if err := t.resolveECallAttributes(m); err != nil {
			return fmt.Errorf("transformer: %s::%s: %w", c.NiceName, m.Name, err)
		}
	}
	return t.verify(c)
}

// allMethods returns every method a class declares: instance, static,
// ctors, dtor, static ctor/dtor — the set every later pass iterates.
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
