package config

// Flags are the runtime-configuration switches threaded from domain creation
// (§6 Embedding API) through the transformer and emitter. They are grouped
// here, rather than as arguments on every function, the same way funxy's
// config package centralizes IsTestMode/IsLSPMode as shared package state
// consulted from deep call sites — except here each domain owns its own
// Flags value instead of a single process-global, since domains are
// independent (§3.6).
type Flags struct {
	// StackTraceEnabled wraps every non-unsafe method body with
	// _soX_pushframe/_soX_popframe (§4.6 item 6).
	StackTraceEnabled bool

	// ProfilingEnabled is carried on the domain's flags, but neither the
	// emitter nor the domain reads it: method bodies get no tick-counting
	// prologues/epilogues and no ProfileStore sampling is switched on by it.
	ProfilingEnabled bool

	// SoftDebuggingEnabled registers locals/params for the breakpoint
	// callback's watch iterator when a method contains `break` expressions.
	SoftDebuggingEnabled bool

	// GCStatsEnabled turns on allocation/collection counters surfaced
	// through the domain's profiling data.
	GCStatsEnabled bool

	// ExplicitNullCheck inserts a null check at the top of every instance
	// method (§4.6 item 6).
	ExplicitNullCheck bool

	// SafeCallbacks makes closure trampolines verify the running domain
	// equals the closure's home domain before dispatch (§4.7).
	SafeCallbacks bool

	// InlineBranching turns on transformer step 3 (inlined conditionals).
	InlineBranching bool
}

// DefaultFlags matches what a release host would pick: stack traces and
// null checks on (cheap, catch bugs), debugging/profiling off.
func DefaultFlags() Flags {
	return Flags{
		StackTraceEnabled: true,
		ExplicitNullCheck: true,
		InlineBranching:   true,
		SafeCallbacks:     true,
	}
}
