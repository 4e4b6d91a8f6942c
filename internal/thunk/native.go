package thunk

/*
#include <stdint.h>
#include <stdlib.h>

static uintptr_t skizo_current_domain = 0;

static void skizo_set_current_domain(uintptr_t id) {
	skizo_current_domain = id;
}

static void skizo_check_domain(uintptr_t expected) {
	if (expected != skizo_current_domain) {
		abort();
	}
}

static uintptr_t skizo_check_domain_addr = (uintptr_t)skizo_check_domain;
*/
import "C"

// SetCurrentDomain records which domain id is bound to this OS thread.
// SafeCallbacks trampolines call into the domain-check shim below, which
// reads this value at the moment a foreign call arrives and aborts the
// process if it doesn't match the closure's home domain (§5 "a closure
// invoked from a thread other than its home domain's must abort rather
// than touch that domain's heap").
func SetCurrentDomain(id uint64) {
	C.skizo_set_current_domain(C.uintptr_t(id))
}

// checkDomainTarget is the real call target a SafeCallbacks trampoline's
// rel32 operand is patched to: a tiny cdecl shim taking the closure's
// home-domain id as its sole argument and comparing it against whatever
// SetCurrentDomain last recorded.
func checkDomainTarget() uintptr {
	return uintptr(C.skizo_check_domain_addr)
}
