// Package embed is the stable embedding API (§6): the small, frozen
// surface a host program links against to create a domain, run it, and
// tear it down, without reaching into internal/domain directly.
//
// Grounded on funxy's own pkg/cli as the thin-wrapper-over-the-real-engine
// shape; here the wrapper is a public API package instead of a CLI, since
// §6 calls the embedding surface out as its own stable contract distinct
// from any one host's CLI.
package embed

import (
	"github.com/skizo-lang/skizo/internal/config"
	"github.com/skizo-lang/skizo/internal/domain"
	"github.com/skizo-lang/skizo/internal/pool"
)

// Flags mirrors the embedding API's flag set (§6: "flags (stack trace,
// profiling, soft debugging, GC stats, explicit null check, safe
// callbacks, inline branching)").
type Flags = config.Flags

// DefaultFlags returns the release-host defaults.
func DefaultFlags() Flags { return config.DefaultFlags() }

// Parser is the scanning/parsing collaborator a host must supply — §6
// describes source as "source string or path" but leaves scanning rules
// to an external component.
type Parser = domain.Parser

// Source is a parsed compilation unit, as returned by a Parser.
type Source = domain.Source

// Config mirrors domain creation's parameters (§6): source, stack base,
// GC ceiling, flags, an icall table, search paths, untrusted flag and
// permission list.
type Config struct {
	Name            string
	EntrySourceName string
	EntrySourceText string
	EntryClass      string
	EntryMethod     string

	StackBase   uintptr
	MaxGCMemory int64
	Flags       Flags
	SearchPaths []string
	ICalls      map[string]uintptr
	Parser      Parser

	ProfileDBPath string
	Untrusted     bool
	Permissions   []string
}

func (c Config) toInternal() domain.Config {
	return domain.Config{
		Name:            c.Name,
		EntrySourceName: c.EntrySourceName,
		EntrySourceText: c.EntrySourceText,
		EntryClass:      c.EntryClass,
		EntryMethod:     c.EntryMethod,
		StackBase:       c.StackBase,
		MaxGCMemory:     c.MaxGCMemory,
		Flags:           c.Flags,
		SearchPaths:     c.SearchPaths,
		ICalls:          c.ICalls,
		Parser:          c.Parser,
		ProfileDBPath:   c.ProfileDBPath,
		Untrusted:       c.Untrusted,
		Permissions:     c.Permissions,
	}
}

// Domain is a live, isolated runtime instance (§3.6).
type Domain struct {
	inner *domain.Domain
}

// CreateDomain runs the full §4.8 create_domain sequence: bind thread,
// register built-ins, parse/import, resolve, transform, thunk, emit,
// compile, resolve calls, prolog.
func CreateDomain(cfg Config) (*Domain, error) {
	inner, err := domain.CreateDomain(cfg.toInternal())
	if err != nil {
		return nil, err
	}
	return &Domain{inner: inner}, nil
}

// InvokeEntryPoint resolves and calls the entry point (default
// Program::main), converting any caught DomainAbort into an error.
func (d *Domain) InvokeEntryPoint() error { return d.inner.InvokeEntryPoint() }

// CloseDomain runs epilog, a forced teardown collection, releases the C
// backend session, frees thunk pages, and unbinds the thread.
func (d *Domain) CloseDomain() error { return d.inner.CloseDomain() }

// CollectGarbage runs a collection cycle; teardown ignores roots and
// releases every object, re-running with destructors disabled if
// destructors created new objects.
func (d *Domain) CollectGarbage(teardown bool) { d.inner.CollectGarbage(teardown) }

// AddGCRoot / RemoveGCRoot pin and release an object against collection.
func (d *Domain) AddGCRoot(obj pool.Ptr)    { d.inner.AddGCRoot(obj) }
func (d *Domain) RemoveGCRoot(obj pool.Ptr) { d.inner.RemoveGCRoot(obj) }

// Abort throws a domain-abort that unwinds to the creation or
// entry-point frame.
func (d *Domain) Abort(message string) { d.inner.Abort(message) }

// LastError returns the most recently recorded abort message.
func (d *Domain) LastError() string { return d.inner.LastError() }

// GetProfilingData returns accumulated samples sorted by "total",
// "average", or "calls".
func (d *Domain) GetProfilingData(sortBy string) []domain.ProfileSample {
	return d.inner.GetProfilingData(sortBy)
}

// DumpProfilingData persists accumulated samples to the configured
// SQLite file.
func (d *Domain) DumpProfilingData() error { return d.inner.DumpProfilingData() }

// StackTrace returns a snapshot of the current call-frame stack.
func (d *Domain) StackTrace() []domain.StackFrame { return d.inner.StackTrace() }
