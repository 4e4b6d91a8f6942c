package transformer

import (
	"fmt"

	"github.com/skizo-lang/skizo/internal/metadata"
)

// resolveECallAttributes implements §4.5 step 7: a method tagged native
// reads its `[module=...]` and optional `[callConv=...]` attributes into an
// ECallDescriptor (§3.3, §6). The NativePtr field is left zero here — it is
// populated later, once, when the domain actually loads the module
// (§4.8 resolveECalls), not at transform time.
func (t *Transformer) resolveECallAttributes(m *metadata.Method) error {
	if m.Special != metadata.SpecialNative {
		return nil
	}
	if m.Flags.AttributesResolved {
		return nil
	}

	module, ok := metadata.Lookup(m.Attributes, "module")
	if !ok || module == "" {
		return fmt.Errorf("ecall: method %s is native but declares no [module=...] attribute", m.Name)
	}

	entry := m.Name
	if ep, ok := metadata.Lookup(m.Attributes, "entryPoint"); ok && ep != "" {
		entry = ep
	}

	conv := metadata.CallConvCdecl
	if cc, ok := metadata.Lookup(m.Attributes, "callConv"); ok {
		switch cc {
		case "stdcall":
			conv = metadata.CallConvStdcall
		case "cdecl":
			conv = metadata.CallConvCdecl
		default:
			return fmt.Errorf("ecall: method %s declares unknown callConv %q", m.Name, cc)
		}
	}

	m.ECall = metadata.ECallDescriptor{Module: module, EntryPoint: entry, CallConv: conv}
	m.Flags.AttributesResolved = true
	return nil
}
