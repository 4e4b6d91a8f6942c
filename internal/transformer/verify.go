package transformer

import (
	"fmt"

	"github.com/skizo-lang/skizo/internal/metadata"
)

// verify implements §4.5 step 8, the transformer's last pass: a set of
// whole-class sanity checks that must hold before the emitter runs. A
// failure here is a program (not transformer) bug, so it is reported the
// same way a resolver abort is — as an error the domain turns into a
// DomainAbort (§7) — rather than panicking.
func (t *Transformer) verify(c *metadata.Class) error {
	if err := t.verifyAbstractCoverage(c); err != nil {
		return err
	}
	if err := t.verifyOverrideSignatures(c); err != nil {
		return err
	}
	if err := t.verifyNativeMethodsResolved(c); err != nil {
		return err
	}
	return nil
}

// verifyAbstractCoverage requires every abstract method to be either
// re-declared abstract on a non-concrete class or overridden by a concrete
// one — a concrete class with an unoverridden abstract method can never be
// instantiated correctly, since its vtable slot would hold no code pointer.
func (t *Transformer) verifyAbstractCoverage(c *metadata.Class) error {
	if c.Flags.IsAbstract || c.Special == metadata.SpecialClassInterface {
		return nil
	}
	for _, m := range c.InstanceMethods {
		if m.Flags.Abstract {
			return fmt.Errorf("class %s does not override abstract method %s", c.NiceName, m.Name)
		}
	}
	return nil
}

// verifyOverrideSignatures requires an override's signature to exactly
// match its base method's (§3.3 invariant): Overrides links a vtable slot
// together, and the emitter assumes a matching ABI on both sides of that
// slot.
func (t *Transformer) verifyOverrideSignatures(c *metadata.Class) error {
	for _, m := range c.InstanceMethods {
		if m.BaseMethod == nil {
			continue
		}
		if !m.Signature.Equal(m.BaseMethod.Signature) {
			return fmt.Errorf("class %s: %s overrides %s with a mismatched signature", c.NiceName, m.Name, m.BaseMethod.Name)
		}
	}
	return nil
}

// verifyNativeMethodsResolved requires every native method to have
// completed ECall attribute resolution (§4.5 step 7) before the domain
// tries to load it.
func (t *Transformer) verifyNativeMethodsResolved(c *metadata.Class) error {
	for _, m := range allMethods(c) {
		if m.Special == metadata.SpecialNative && !m.Flags.AttributesResolved {
			return fmt.Errorf("class %s: native method %s has unresolved ECall attributes", c.NiceName, m.Name)
		}
	}
	return nil
}
