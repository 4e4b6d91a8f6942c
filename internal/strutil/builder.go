package strutil

import (
	"fmt"
	"strings"
)

// Builder accumulates formatted C source text with automatic indentation
// tracking. The emitter (§4.6) is its only user.
type Builder struct {
	buf    strings.Builder
	indent int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// Indent increases the indentation level used by Line/Linef.
func (b *Builder) Indent() { b.indent++ }

// Dedent decreases the indentation level, clamped at zero.
func (b *Builder) Dedent() {
	if b.indent > 0 {
		b.indent--
	}
}

// Line writes s on its own line at the current indentation.
func (b *Builder) Line(s string) {
	b.buf.WriteString(strings.Repeat("    ", b.indent))
	b.buf.WriteString(s)
	b.buf.WriteByte('\n')
}

// Linef is fmt.Sprintf plus Line.
func (b *Builder) Linef(format string, args ...interface{}) {
	b.Line(fmt.Sprintf(format, args...))
}

// Raw appends s verbatim, with no indentation or trailing newline. Used for
// inline expression fragments assembled left to right within a Line.
func (b *Builder) Raw(s string) { b.buf.WriteString(s) }

// Block runs body with the indentation level raised by one, restoring it
// afterwards. Mirrors the brace-delimited blocks the emitter produces for
// every method body and control-flow construct.
func (b *Builder) Block(open, close string, body func()) {
	b.Line(open)
	b.Indent()
	body()
	b.Dedent()
	b.Line(close)
}

// String returns the accumulated text.
func (b *Builder) String() string { return b.buf.String() }

// Len reports the number of bytes written so far.
func (b *Builder) Len() int { return b.buf.Len() }
