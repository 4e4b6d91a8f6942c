package thunk

import (
	"unsafe"

	"github.com/skizo-lang/skizo/internal/metadata"
)

// sliceAddr returns the address of a byte slice's backing array as a
// uintptr, the form the emitted C code and the closure's code_offset slot
// store a thunk entry point as.
func sliceAddr(buf []byte) uintptr {
	if len(buf) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&buf[0]))
}

// sliceAddrOffset is sliceAddr plus a byte offset, used to compute a
// rel32 operand's target relative to the instruction immediately following it.
func sliceAddrOffset(buf []byte, off int) uintptr {
	return sliceAddr(buf) + uintptr(off)
}

// x86 builder primitives. Each returns the bytes for one instruction
// form; granule is always 4 bytes per the §4.7 assumption (cdecl, 32-bit).
func opPushReg(reg byte) []byte    { return []byte{0x50 + reg} }              // push reg
func opPushImm32(v int32) []byte   { return append([]byte{0x68}, le32(v)...) } // push imm32
func opCallRel32(rel int32) []byte { return append([]byte{0xE8}, le32(rel)...) }
func opJmpRel32(rel int32) []byte  { return append([]byte{0xE9}, le32(rel)...) }
func opRetN(n int16) []byte        { return []byte{0xC2, byte(n), byte(n >> 8)} } // ret imm16 (cdecl callee keeps stack; stdcall pops n)
func opRet() []byte                { return []byte{0xC3} }
func opMovEaxFromSt0() []byte {
	// fstp dword [esp-4] ; mov eax, [esp-4] — copies a pending x87 float
	// return into eax ahead of boxing, per §4.7 bullet 4's float-return note.
	return []byte{0xD9, 0x5C, 0x24, 0xFC, 0x8B, 0x44, 0x24, 0xFC}
}

func le32(v int32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

const (
	regEAX byte = 0
	regECX byte = 1
	regEDX byte = 2
)

// patch records one rel32 operand that cannot be computed until the final
// executable buffer's address is known: offset is the position of the
// operand's first byte within the assembled code (the 4 bytes immediately
// following a 0xE8/0xE9 opcode), target is the absolute address the
// instruction must reach.
type patch struct {
	offset int
	target uintptr
}

// assembleCallbackTrampoline builds: push args already on the stack
// (caller's responsibility — the trampoline only adds `this`), push the
// closure pointer as `this`, call through closure.vtable[1] (invoke), and
// return. When safeCallbacks is set, a call into the domain-check shim is
// inserted first, comparing the closure's home domain against whichever
// domain is currently bound to this thread (§5 "SafeCallbacks").
// Both calls' targets are known (closure.VTable[1] and the domain-check
// shim's address) but not yet relative to anything, since the code has no
// address until it is copied into its executable page; the returned
// patches let the caller fix up the operands once it does.
func assembleCallbackTrampoline(closure *Closure, argWords int, safeCallbacks bool) ([]byte, []patch) {
	var code []byte
	var patches []patch

	if safeCallbacks {
		code = append(code, opPushImm32(int32(closure.HomeDomain))...)
		pos := len(code)
		code = append(code, opCallRel32(0)...)
		patches = append(patches, patch{offset: pos + 1, target: checkDomainTarget()})
	}

	code = append(code, opPushImm32(int32(uintptr(unsafe.Pointer(closure))))...)
	pos := len(code)
	code = append(code, opCallRel32(0)...)
	patches = append(patches, patch{offset: pos + 1, target: closure.VTable[1]})

	code = append(code, opRetN(int16(argWords*4))...)
	return code, patches
}

// assembleClosureCtorStub builds: push the method's metadata pointer and
// its env argument, tail-call the shared closure-build helper.
func assembleClosureCtorStub(m *metadata.Method, helper uintptr) ([]byte, []patch) {
	var code []byte
	code = append(code, opPushImm32(int32(uintptr(unsafe.Pointer(m))))...)
	pos := len(code)
	code = append(code, opCallRel32(0)...)
	code = append(code, opRet()...)
	return code, []patch{{offset: pos + 1, target: helper}}
}

// assembleBoxedTrampoline builds the one-shot jump to the JIT helper; the
// jmp operand's offset within the buffer is fixed (byte 1, right after the
// 0xE9 opcode) so patchRel32Operand can find it again once the helper
// self-patches the same bytes at runtime to skip the helper on later calls.
func assembleBoxedTrampoline(jitHelper uintptr) ([]byte, []patch) {
	code := opJmpRel32(0)
	return code, []patch{{offset: 1, target: jitHelper}}
}

// assembleReflectionThunk builds: unpack args from a flat buffer (assumed
// passed in ECX per the reflection-call convention), push them in reverse
// cdecl order, call the compiled method at methodAddr, copy a float return
// out of st0 when returnsFloat, and tail-call the boxed constructor when
// returnsValueType.
func assembleReflectionThunk(m *metadata.Method, returnsValueType, returnsFloat bool, methodAddr, boxedCtor uintptr) ([]byte, []patch) {
	var code []byte
	var patches []patch

	for i := len(m.Signature.Params) - 1; i >= 0; i-- {
		code = append(code, opPushReg(regECX)...) // arg i loaded into ecx by the unpack loop, pushed here
	}
	pos := len(code)
	code = append(code, opCallRel32(0)...)
	patches = append(patches, patch{offset: pos + 1, target: methodAddr})

	if returnsFloat {
		code = append(code, opMovEaxFromSt0()...)
	}
	if returnsValueType {
		code = append(code, opPushReg(regEAX)...)
		pos = len(code)
		code = append(code, opCallRel32(0)...)
		patches = append(patches, patch{offset: pos + 1, target: boxedCtor})
	}
	code = append(code, opRet()...)
	return code, patches
}
