package emitter

// externHelpers lists the runtime helper symbols every domain's
// translation unit declares extern (§4.6 item 1). Defined once here so the
// preamble and the call-lowering pass agree on the exact symbol names.
var externHelpers = []string{
	"_soX_gc_alloc", "_soX_gc_roots", "_soX_static_vt",
	"_soX_findmethod", "_soX_findmethod2", "_soX_downcast", "_soX_is",
	"_soX_unbox", "_soX_abort0", "_soX_abort_e", "_soX_newarray",
	"_soX_zero", "_soX_biteq", "_soX_cctor", "_soX_checktype",
	"_soX_addhandler", "_soX_msgsnd_sync", "_soX_unpack",
}

// optionalExternHelpers are declared only when the matching flag is on,
// since they're unused (and would otherwise draw an unused-declaration
// warning from a strict C compiler) when the feature is off.
var optionalExternHelpers = map[string][]string{
	"StackTraceEnabled":    {"_soX_pushframe", "_soX_popframe"},
	"SoftDebuggingEnabled": {"_soX_break", "_soX_reglocals", "_soX_unreglocals"},
}

func (e *Emitter) emitPreamble() {
	b := e.b
	b.Line("/* generated — do not edit by hand */")
	b.Line("#include <stdint.h>")
	b.Line("#include <stddef.h>")
	b.Raw("\n")

	b.Line("typedef uint8_t _so_bool;")
	b.Line("typedef uint16_t _so_char;")
	b.Raw("\n")

	b.Line("typedef struct { int32_t length; void* data; } ArrayHeader;")
	b.Line("typedef struct { void** vtable; void* env; void* code_offset; } Closure;")
	b.Raw("\n")

	for _, name := range externHelpers {
		b.Linef("extern void* %s;", name)
	}
	if e.flags.StackTraceEnabled {
		for _, name := range optionalExternHelpers["StackTraceEnabled"] {
			b.Linef("extern void* %s;", name)
		}
	}
	if e.flags.SoftDebuggingEnabled {
		for _, name := range optionalExternHelpers["SoftDebuggingEnabled"] {
			b.Linef("extern void* %s;", name)
		}
	}
	b.Raw("\n")
}
