// Package cbackend wraps the external C backend (TinyCC) as the opaque
// compile-and-link service §4.8 treats it as: a process given emitted C
// text and a set of ICall/ECall names to resolve, nothing more. The
// backend's internals — its optimizer, its calling-convention lowering,
// its object format — are out of scope; this package owns the process
// boundary around it *and* the boundary into the object it produces, since
// §4.8 lists "entrypoint"/"prolog"/"epilog" as steps the domain lifecycle
// runs, not steps the backend runs for it.
//
// Grounded on funxy's internal/ext.Builder: write generated sources into a
// scratch workspace, shell out to an external toolchain via os/exec, and
// report a handle to the result. The backend is additionally serialized by
// a single process-wide mutex (§5 "a process-wide mutex around the C
// backend because it is not reentrant"), the same shape as a singleton
// with init()/shutdown() the spec calls out explicitly (§8 redesign flags).
// Loading the compiled object and resolving/invoking its symbols uses
// cgo's dlopen/dlsym/call-through-a-function-pointer idiom — the standard
// Go mechanism for crossing into code no Go toolchain produced, since
// nothing in the example pack carries a pure-Go alternative for calling an
// arbitrary native address by value.
package cbackend

/*
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>

static void skizo_call_void(void *fn) {
	void (*f)(void) = (void (*)(void))fn;
	f();
}
*/
import "C"

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"unsafe"
)

// globalMu serializes every compile, matching the single non-reentrant
// backend instance a real domain host would link against.
var globalMu sync.Mutex

// CompilerPath is the external C compiler invoked to realize emitted
// translation units. Defaults to the tcc binary named in §1; overridable
// for hosts that vendor a different cdecl/stdcall-compatible compiler.
var CompilerPath = "tcc"

// Session is one domain's live C-backend handle: the scratch workspace
// holding the emitted source and its compiled shared object, dlopen'd into
// this process so its symbols resolve to real, callable addresses.
type Session struct {
	workDir    string
	sourcePath string
	objectPath string
	handle     unsafe.Pointer // dlopen handle
	symbols    map[string]uintptr
	unlock     func()
}

// Compile emits source to a fresh scratch workspace, invokes the external
// compiler to produce a shared object, and dlopen's it into this process.
// The returned Session holds the process-wide backend mutex until Close is
// called — mirroring the single in-process backend instance real domains
// share (§5).
func Compile(domainName, source string) (*Session, error) {
	globalMu.Lock()
	unlock := globalMu.Unlock

	workDir, err := os.MkdirTemp("", "skizo-cbackend-"+sanitizeName(domainName)+"-*")
	if err != nil {
		unlock()
		return nil, fmt.Errorf("cbackend: scratch workspace: %w", err)
	}

	sourcePath := filepath.Join(workDir, "domain.c")
	if err := os.WriteFile(sourcePath, []byte(source), 0o644); err != nil {
		os.RemoveAll(workDir)
		unlock()
		return nil, fmt.Errorf("cbackend: writing emitted source: %w", err)
	}

	objectPath := filepath.Join(workDir, "domain.so")
	cmd := exec.Command(CompilerPath, "-shared", "-fPIC", "-o", objectPath, sourcePath)
	cmd.Dir = workDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		os.RemoveAll(workDir)
		unlock()
		return nil, fmt.Errorf("cbackend: compile failed:\n%s\n%w", string(out), err)
	}

	sess := &Session{workDir: workDir, sourcePath: sourcePath, objectPath: objectPath, symbols: make(map[string]uintptr), unlock: unlock}
	if err := sess.load(); err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}

// load dlopen's the compiled object into this process, so every symbol
// ResolveSymbol later returns is a real, directly callable address rather
// than a link-time offset into a file nothing has mapped.
func (s *Session) load() error {
	cPath := C.CString(s.objectPath)
	defer C.free(unsafe.Pointer(cPath))

	handle := C.dlopen(cPath, C.RTLD_NOW)
	if handle == nil {
		return fmt.Errorf("cbackend: dlopen %s: %s", s.objectPath, C.GoString(C.dlerror()))
	}
	s.handle = handle
	return nil
}

// ResolveSymbol looks up a compiled function's address by its emitted C
// name, used to bind ICall pointers and ECall native-module symbols
// (§4.8 "resolve each ICall name to its registered pointer and each ECall
// to its native module symbol") and to locate the entry point, static
// ctors/dtors, and reflection targets the domain package actually calls.
func (s *Session) ResolveSymbol(name string) (uintptr, bool) {
	if addr, ok := s.symbols[name]; ok {
		return addr, true
	}
	if s.handle == nil {
		return 0, false
	}
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	sym := C.dlsym(s.handle, cName)
	if sym == nil {
		return 0, false
	}
	addr := uintptr(sym)
	s.symbols[name] = addr
	return addr, true
}

// CallVoid crosses into the compiled object: invokes the resolved native
// function at fn, a plain cdecl `void fn(void)`, the signature every entry
// point, static constructor, and static destructor the domain package
// calls through here shares. A no-op for fn == 0, so a caller that already
// guards on ResolveSymbol's ok result doesn't need a second check.
func CallVoid(fn uintptr) {
	if fn == 0 {
		return
	}
	C.skizo_call_void(unsafe.Pointer(fn))
}

// ObjectPath returns the compiled shared object's path.
func (s *Session) ObjectPath() string { return s.objectPath }

// Close releases the C-backend session (§4.8 close_domain: "releases the
// C backend session"): removes the scratch workspace and frees the
// process-wide backend mutex for the next domain in line. The dlopen
// handle is intentionally not dlclose'd — any thunk holding a pointer into
// the mapped object (a reflection thunk's patched call target, say) must
// stay valid until the thunk manager itself is closed, and the mapping is
// reclaimed by the OS when the process exits either way.
func (s *Session) Close() error {
	err := os.RemoveAll(s.workDir)
	if s.unlock != nil {
		s.unlock()
		s.unlock = nil
	}
	return err
}

func sanitizeName(name string) string {
	var b strings.Builder
	alnum := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			alnum = true
		default:
			b.WriteByte('_')
		}
	}
	if !alnum {
		return "domain"
	}
	return b.String()
}
