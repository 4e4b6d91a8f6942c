package thunk

import (
	"testing"

	"github.com/skizo-lang/skizo/internal/metadata"
)

func TestClosureCallbackTrampolineAllocatesExecutablePage(t *testing.T) {
	mgr := New()
	defer mgr.Close()

	c := &Closure{VTable: []uintptr{0, 0}}
	entry, err := mgr.ClosureCallbackTrampoline(c, 2, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry == 0 {
		t.Fatalf("expected a non-zero entry point")
	}
	if c.CodeOffset != entry {
		t.Fatalf("closure CodeOffset not updated to the trampoline entry")
	}
}

func TestReflectionThunkCachesOnMethod(t *testing.T) {
	mgr := New()
	defer mgr.Close()

	m := metadata.NewMethod("compute", metadata.MethodNormal)
	entry1, err := mgr.ReflectionThunk(m, 0x1000, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entry2, err := mgr.ReflectionThunk(m, 0x1000, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry1 != entry2 {
		t.Fatalf("expected cached reflection thunk to be reused")
	}
}

func TestReflectionThunkCallOperandPatchedToMethodAddr(t *testing.T) {
	mgr := New()
	defer mgr.Close()

	m := metadata.NewMethod("compute", metadata.MethodNormal)
	const methodAddr = uintptr(0xdeadbeef)
	code, patches := assembleReflectionThunk(m, false, false, methodAddr, 0)
	if len(patches) != 1 {
		t.Fatalf("expected exactly one patch site, got %d", len(patches))
	}
	buf, err := mgr.alloc(len(code))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	copy(buf, code)
	applyPatches(buf, patches)

	decoded := decodeRel32Target(buf, patches[0].offset)
	if decoded != methodAddr {
		t.Fatalf("expected patched call to target %#x, got %#x", methodAddr, decoded)
	}
}

func TestClosureCallbackTrampolineInvokeOperandPatchedToVTableSlot(t *testing.T) {
	mgr := New()
	defer mgr.Close()

	const invokeAddr = uintptr(0xcafef00d)
	c := &Closure{VTable: []uintptr{0, invokeAddr}}
	code, patches := assembleCallbackTrampoline(c, 1, false)
	if len(patches) != 1 {
		t.Fatalf("expected exactly one patch site without SafeCallbacks, got %d", len(patches))
	}
	buf, err := mgr.alloc(len(code))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	copy(buf, code)
	applyPatches(buf, patches)

	decoded := decodeRel32Target(buf, patches[0].offset)
	if decoded != invokeAddr {
		t.Fatalf("expected patched invoke call to target %#x, got %#x", invokeAddr, decoded)
	}
}

func TestClosureCallbackTrampolineSafeCallbacksPatchesDomainCheckToo(t *testing.T) {
	mgr := New()
	defer mgr.Close()

	c := &Closure{VTable: []uintptr{0, uintptr(0x1234)}, HomeDomain: 1}
	code, patches := assembleCallbackTrampoline(c, 0, true)
	if len(patches) != 2 {
		t.Fatalf("expected a domain-check patch and an invoke patch, got %d", len(patches))
	}
	buf, err := mgr.alloc(len(code))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	copy(buf, code)
	applyPatches(buf, patches)

	if decodeRel32Target(buf, patches[0].offset) != checkDomainTarget() {
		t.Fatalf("expected domain-check call patched to the cgo shim's address")
	}
}

// decodeRel32Target reverses patchRel32Operand's math, recovering the
// absolute address a patched rel32 operand resolves to.
func decodeRel32Target(buf []byte, operandOffset int) uintptr {
	rel := int32(buf[operandOffset]) | int32(buf[operandOffset+1])<<8 |
		int32(buf[operandOffset+2])<<16 | int32(buf[operandOffset+3])<<24
	return uintptr(int(sliceAddrOffset(buf, operandOffset+4)) + int(rel))
}

func TestRejectUnsupportedClosureParam(t *testing.T) {
	blob := metadata.NewClass("Blob", "Blob")
	blob.Flags.IsValueType = true
	blob.NativeSize = 0

	sig := metadata.Signature{Params: []metadata.Param{
		{Name: "b", Type: metadata.TypeRef{Kind: metadata.KindObject, ClassName: "Blob", ResolvedClass: blob}},
	}}
	if err := RejectUnsupportedClosureParam(sig); err == nil {
		t.Fatalf("expected rejection of a non-primitive value-type closure parameter")
	}
}

func TestManagerCloseReleasesAllPages(t *testing.T) {
	mgr := New()
	if _, err := mgr.ClosureCtorStub(metadata.NewMethod("x", metadata.MethodCtor), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mgr.Close(); err != nil {
		t.Fatalf("unexpected error closing manager: %v", err)
	}
	if len(mgr.pages) != 0 {
		t.Fatalf("expected pages to be cleared after Close")
	}
}
