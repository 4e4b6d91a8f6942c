// Package config holds runtime constants and the package-level flags that
// tune a domain's behavior. It mirrors the flat, package-scoped constants
// style used throughout the rest of the runtime instead of a config struct
// threaded through every call.
package config

import "time"

// Version is the current Skizo runtime version.
var Version = "0.4.0"

// SourceFileExt is the canonical Skizo source extension.
const SourceFileExt = ".sk"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".sk", ".skizo"}

// TrimSourceExt removes any recognized source extension from a filename.
// Returns the original string if no extension matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if the path ends with any recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// IsTestMode indicates the process is running under `skizo test`.
var IsTestMode = false

// GC tuning (§4.2).
const (
	MinGCThreshold  = 256 * 1024 // bytes
	GCGrowFactor    = 1.5
	GCShrinkFactor  = 0.5
	GCGrowAbove     = 0.75
	GCShrinkBelow   = 0.50
)

// Pool allocator tuning (§4.1).
const (
	ArenaSize        = 128 * 1024 // bytes
	CellGranularity  = 16         // bytes
	LargeObjectShare = 4          // an allocation larger than ArenaSize/LargeObjectShare is a large object
)

// PointerSize is the reference/vtable-slot width the emitter and GC-map
// pass lay out struct fields against. Fixed at 4 because the thunk manager
// (§4.7) targets 32-bit x86 cdecl/stdcall frames; metadata offsets must
// match what the emitted C struct actually gets compiled to on that target
// regardless of the host Go process's own pointer width.
const PointerSize = 4

// Primitive field sizes, in bytes, on the same 32-bit target (§3.1, §4.6
// item 2 struct layout).
const (
	IntSize   = 4
	FloatSize = 8
	BoolSize  = 1
	CharSize  = 2
)

// Timeouts (§5).
const (
	RemoteCallTimeout   = 2 * time.Second
	DomainTimeout       = 3 * time.Second
	MessageQueueTimeout = 100 * time.Millisecond
)

// Built-in class nice-names registered by every domain (§4.8).
const (
	AnyClassName     = "any"
	IntClassName     = "int"
	FloatClassName   = "float"
	BoolClassName    = "bool"
	CharClassName    = "char"
	IntPtrClassName  = "intptr"
	StringClassName  = "string"
	ErrorClassName   = "Error"
	RangeClassName   = "Range"
	PredicateName    = "Predicate"
	ActionClassName  = "Action"
	VoidClassName    = "void"
)

// EntryPointClass / EntryPointMethod are the default `main` location,
// overridable via DomainConfig.EntryPoint.
const (
	EntryPointClass  = "Program"
	EntryPointMethod = "main"
)

// IsLSPMode indicates the process is running as a language tool, not a
// compiled program host. Kept separate from IsTestMode so both can be true
// (tools run tests too).
var IsLSPMode = false
