package domain

import "fmt"

// StackFrame is one pushed call frame, formatted as
// "ClassName::methodName (file:line)" for get_last_error()/abort
// diagnostics — the original implementation's abort-message format,
// restored here since spec.md's distillation only names the stack as a
// collaborator without spelling out its text form.
type StackFrame struct {
	ClassName  string
	MethodName string
	File       string
	Line       int
}

func (f StackFrame) String() string {
	return fmt.Sprintf("%s::%s (%s:%d)", f.ClassName, f.MethodName, f.File, f.Line)
}

// pushFrame records entry into a method, mirroring the emitted
// _soX_pushframe call a compiled method makes when StackTraceEnabled.
func (d *Domain) pushFrame(f StackFrame) {
	d.frames = append(d.frames, f)
}

// popFrame unwinds the most recently pushed frame.
func (d *Domain) popFrame() {
	if len(d.frames) == 0 {
		return
	}
	d.frames = d.frames[:len(d.frames)-1]
}

// StackTrace returns a snapshot of the current frame stack, outermost
// first, for diagnostics or a debugger front end.
func (d *Domain) StackTrace() []StackFrame {
	out := make([]StackFrame, len(d.frames))
	copy(out, d.frames)
	return out
}
