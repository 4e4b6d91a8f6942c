// Package thunk hand-emits x86 (32-bit) machine code into executable pages
// for the four use-cases §4.7 names: closure callback trampolines, the
// closure constructor stub, boxed-method self-patching trampolines, and
// reflection thunks. Bypassing the C backend for these avoids pathological
// recompiles on class-heavy programs and permits call-site tricks a C
// compiler cannot express.
//
// Grounded on other_examples' CWBudde-go-dws runtime code-buffer allocator
// for the "hand assemble into a raw byte buffer, mark it executable" shape.
// Executable-page allocation uses golang.org/x/sys/unix's Mmap/Mprotect
// (PROT_EXEC), the same facility funxy's own go.sum pulls in transitively
// through grpc's transport stack — reused here for its one genuinely
// domain-appropriate use in this codebase. The one call a hand-assembled
// trampoline cannot make directly into Go (the SafeCallbacks domain check)
// goes through a tiny cgo shim in native.go instead.
package thunk

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/skizo-lang/skizo/internal/metadata"
)

// pageSize is the allocation granule Mmap requires pages in.
const pageSize = 4096

// Manager owns every executable page this domain has allocated and frees
// them when the owning object (a closure, a method) is swept or the
// domain closes.
type Manager struct {
	mu    sync.Mutex
	pages []*page
}

type page struct {
	data []byte // mmap'd PROT_EXEC|PROT_WRITE region
	used int
}

// New returns an empty Manager.
func New() *Manager { return &Manager{} }

// alloc carves n bytes off the current page, mapping a fresh one if the
// current page is full or none exists. Code buffers are never partially
// overwritten by a later allocation, so a self-patching trampoline (the
// boxed-method case) can safely rewrite its own bytes in place later.
func (mgr *Manager) alloc(n int) ([]byte, error) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	if len(mgr.pages) == 0 || mgr.pages[len(mgr.pages)-1].used+n > pageSize {
		data, err := unix.Mmap(-1, 0, pageSize, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC, unix.MAP_ANON|unix.MAP_PRIVATE)
		if err != nil {
			return nil, fmt.Errorf("thunk: mmap executable page: %w", err)
		}
		mgr.pages = append(mgr.pages, &page{data: data})
	}
	p := mgr.pages[len(mgr.pages)-1]
	buf := p.data[p.used : p.used+n]
	p.used += n
	return buf, nil
}

// Close releases every executable page the manager allocated (§4.8
// close_domain: "frees thunk pages").
func (mgr *Manager) Close() error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	var firstErr error
	for _, p := range mgr.pages {
		if err := unix.Munmap(p.data); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	mgr.pages = nil
	return firstErr
}

// Closure mirrors the shared runtime Closure layout (§4.6 preamble):
// vtable slot 0 is the class, slot 1 is invoke; CodeOffset holds whatever
// the thunk manager last stored there (a trampoline's entry point, or 0
// before one exists).
type Closure struct {
	VTable     []uintptr
	Env        uintptr
	CodeOffset uintptr
	HomeDomain uintptr // read by SafeCallbacks trampolines; compared against the running domain
}

// ClosureCallbackTrampoline builds a plain C-callable function pointer
// that re-pushes its arguments, pushes closure as `this`, and jumps to
// invoke (§4.7 bullet 1). When safeCallbacks is set, the prolog verifies
// runningDomain == closure's home domain and aborts otherwise.
func (mgr *Manager) ClosureCallbackTrampoline(closure *Closure, argWords int, safeCallbacks bool) (uintptr, error) {
	code, patches := assembleCallbackTrampoline(closure, argWords, safeCallbacks)
	buf, err := mgr.alloc(len(code))
	if err != nil {
		return 0, err
	}
	copy(buf, code)
	applyPatches(buf, patches)
	entry := sliceAddr(buf)
	closure.CodeOffset = entry
	return entry, nil
}

// ClosureCtorStub implements the closure-ctor special (§4.7 bullet 2): a
// stub that pushes m's metadata pointer and env, then tail-calls a helper
// that lazily builds the closure class's vtable, computes its GC map,
// allocates the object, and sets its env pointer.
func (mgr *Manager) ClosureCtorStub(m *metadata.Method, helper uintptr) (uintptr, error) {
	code, patches := assembleClosureCtorStub(m, helper)
	buf, err := mgr.alloc(len(code))
	if err != nil {
		return 0, err
	}
	copy(buf, code)
	applyPatches(buf, patches)
	return sliceAddr(buf), nil
}

// BoxedMethodTrampoline implements the boxed-method special (§4.7 bullet
// 3): a one-shot trampoline whose first call jumps to a JIT helper, which
// writes a method stub re-pushing the boxed `this`'s unwrapped fields in
// granule order and tail-calling the wrapped method, then self-patches the
// trampoline's jump target so subsequent calls skip the helper.
func (mgr *Manager) BoxedMethodTrampoline(wrapped *metadata.Method, jitHelper uintptr) (uintptr, error) {
	code, patches := assembleBoxedTrampoline(jitHelper)
	buf, err := mgr.alloc(len(code))
	if err != nil {
		return 0, err
	}
	copy(buf, code)
	applyPatches(buf, patches)
	entry := sliceAddr(buf)
	return entry, nil
}

// patchRel32Operand overwrites a previously emitted call/jmp rel32's 4-byte
// operand in place — both 0xE8 (call) and 0xE9 (jmp) encode their target
// relative to the address immediately following the instruction, so the
// same fixup works for either. operandOffset must point at the 4 bytes
// immediately following the opcode. Used both to resolve every placeholder
// a trampoline is built with and, for the boxed trampoline specifically, by
// its JIT helper to self-patch the same bytes once it has compiled a real
// method stub to jump to instead.
func patchRel32Operand(buf []byte, operandOffset int, newTarget uintptr) {
	rel := int32(int(newTarget) - int(sliceAddrOffset(buf, operandOffset+4)))
	buf[operandOffset] = byte(rel)
	buf[operandOffset+1] = byte(rel >> 8)
	buf[operandOffset+2] = byte(rel >> 16)
	buf[operandOffset+3] = byte(rel >> 24)
}

// applyPatches resolves every placeholder rel32 operand an assemble*
// function left behind, now that buf's final address is known.
func applyPatches(buf []byte, patches []patch) {
	for _, p := range patches {
		patchRel32Operand(buf, p.offset, p.target)
	}
}

// ReflectionThunk implements §4.7 bullet 4: a stub that unpacks a flat
// argument buffer into CDECL layout (including a hidden return-buffer
// argument for a value-type return), calls the compiled method at
// methodAddr (its resolved entry point in the C backend's loaded object),
// and boxes a value-type return via the wrapped class's boxed constructor
// — with a float return in st0 copied into eax first. Cached on the
// method.
func (mgr *Manager) ReflectionThunk(m *metadata.Method, methodAddr, boxedCtor uintptr) (uintptr, error) {
	if m.ReflectionThunk != 0 {
		return m.ReflectionThunk, nil
	}
	returnsValueType := m.Signature.ReturnType.Kind == metadata.KindObject &&
		m.Signature.ReturnType.ResolvedClass != nil &&
		m.Signature.ReturnType.ResolvedClass.Flags.IsValueType
	returnsFloat := m.Signature.ReturnType.Kind == metadata.KindFloat

	code, patches := assembleReflectionThunk(m, returnsValueType, returnsFloat, methodAddr, boxedCtor)
	buf, err := mgr.alloc(len(code))
	if err != nil {
		return 0, err
	}
	copy(buf, code)
	applyPatches(buf, patches)
	entry := sliceAddr(buf)
	m.ReflectionThunk = entry
	return entry, nil
}

// RejectUnsupportedClosureParam implements the §4.7 assumption: a closure
// signature carrying a non-primitive value-type parameter cannot be
// trampolined portably (different ABIs pass large structs differently),
// so it is rejected at thunk-generation time rather than miscompiled.
func RejectUnsupportedClosureParam(sig metadata.Signature) error {
	for _, p := range sig.Params {
		if p.Type.Kind == metadata.KindObject && p.Type.ResolvedClass != nil &&
			p.Type.ResolvedClass.Flags.IsValueType && p.Type.ResolvedClass.NativeSize == 0 {
			return fmt.Errorf("thunk: closure parameter %s has non-primitive value-type %s, unsupported across ABIs", p.Name, p.Type.ResolvedClass.NiceName)
		}
	}
	return nil
}
