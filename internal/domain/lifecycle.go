package domain

import (
	"fmt"

	"github.com/skizo-lang/skizo/internal/cbackend"
	"github.com/skizo-lang/skizo/internal/pool"
)

// CollectGarbage runs a mark-sweep pass; teardown=true ignores roots and
// frees everything regardless of reachability, re-running with destructors
// disabled if destructors created new objects (§4.2 "Sweeping", §4.8
// close_domain).
func (d *Domain) CollectGarbage(teardown bool) {
	d.gc.CollectGarbage(teardown)
}

// AddGCRoot pins obj so the collector always treats it as reachable,
// until a matching RemoveGCRoot (§6 Embedding API: add_gc_root/remove_gc_root).
func (d *Domain) AddGCRoot(obj pool.Ptr) { d.gc.AddGCRoot(obj) }

// RemoveGCRoot un-pins a previously added root.
func (d *Domain) RemoveGCRoot(obj pool.Ptr) { d.gc.RemoveGCRoot(obj) }

// GetProfilingData returns accumulated samples sorted by "total",
// "average", or "calls" (§6 Embedding API).
func (d *Domain) GetProfilingData(sortBy string) []ProfileSample {
	return d.profile.SortBy(sortBy)
}

// DumpProfilingData persists accumulated samples to the configured
// SQLite file, or is a no-op if none was configured.
func (d *Domain) DumpProfilingData() error {
	return d.profile.DumpToDisk()
}

// CloseDomain runs §4.8's close_domain: epilog (static dtors), a forced
// teardown collection, release of the C-backend session, freeing thunk
// pages, and unbinding the domain's thread. Idempotent.
func (d *Domain) CloseDomain() error {
	if d.closed {
		return nil
	}
	d.closed = true

	d.runEpilog()
	d.CollectGarbage(true)

	if d.server != nil {
		d.server.Stop()
	}

	var firstErr error
	if d.backend != nil {
		if err := d.backend.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("domain: closing C backend session: %w", err)
		}
	}
	if err := d.thunks.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("domain: freeing thunk pages: %w", err)
	}
	d.unbind()
	return firstErr
}

// runEpilog calls every registered class's static destructor, matching the
// emitter's epilog ordering (reverse of prolog registration is not
// required — static dtors have no declared ordering dependency in §4.6).
// A dtor missing from the compiled object is skipped rather than treated
// as fatal: close_domain must still finish tearing the rest of the domain
// down (unlike stageRunProlog, whose ctors are load-bearing for anything
// that runs afterward).
func (d *Domain) runEpilog() {
	if d.backend == nil {
		return
	}
	for _, c := range d.registry.All() {
		if c.StaticDtor == nil {
			continue
		}
		addr, ok := d.backend.ResolveSymbol(methodCName(c, c.StaticDtor))
		if !ok {
			continue
		}
		d.pushFrame(StackFrame{ClassName: c.NiceName, MethodName: c.StaticDtor.Name})
		cbackend.CallVoid(addr)
		d.popFrame()
	}
}

// CheckPermission consults the security manager before starting a
// remoting listener, its only call site (§12 "Permission list
// enforcement"). Trusted domains always pass.
func (d *Domain) CheckPermission(op string) bool {
	return d.permissions.Check(op)
}
