package domain

import (
	"github.com/skizo-lang/skizo/internal/config"
)

// Parser turns one named unit of source text into a Source. Supplied by
// the embedder — scanning/parsing is out of scope for the runtime core,
// the same boundary funxy draws between its own lexer/parser packages and
// the VM that only ever sees already-built ASTs.
type Parser interface {
	Parse(name, text string) (*Source, error)
}

// Config mirrors the embedding API's domain-creation parameters (§6):
// source, stack base, GC ceiling, flags, an icall table, search paths, and
// the untrusted/permission-list pair the security manager enforces.
type Config struct {
	Name            string
	EntrySourceName string
	EntrySourceText string
	EntryClass      string // defaults to config.EntryPointClass
	EntryMethod     string // defaults to config.EntryPointMethod

	StackBase    uintptr
	MaxGCMemory  int64
	Flags        config.Flags
	SearchPaths  []string
	ICalls       map[string]uintptr // icall name -> native pointer, registered ahead of thunk generation
	Parser       Parser
	ProfileDBPath string // empty disables ProfileStore persistence

	Untrusted   bool
	Permissions []string // consulted only when Untrusted is set
}

// permissionSet consults Permissions; an empty, non-untrusted domain
// allows everything (§12 "Permission list enforcement").
type permissionSet struct {
	untrusted bool
	allowed   map[string]bool
}

func newPermissionSet(cfg Config) *permissionSet {
	allowed := make(map[string]bool, len(cfg.Permissions))
	for _, p := range cfg.Permissions {
		allowed[p] = true
	}
	return &permissionSet{untrusted: cfg.Untrusted, allowed: allowed}
}

// Check reports whether op is allowed. Trusted domains always pass; an
// untrusted domain must have op in its configured permission list.
func (p *permissionSet) Check(op string) bool {
	if !p.untrusted {
		return true
	}
	return p.allowed[op]
}
