package emitter

import (
	"fmt"
	"sort"

	"github.com/skizo-lang/skizo/internal/ast"
	"github.com/skizo-lang/skizo/internal/metadata"
)

// sortedLocalNames returns a method's local-variable names in a
// deterministic order, since the emitter's variable-segment declarations
// must render identically across runs for the C backend's build cache to
// skip recompiling unchanged translation units.
func sortedLocalNames(locals map[string]*metadata.Local) []string {
	names := make([]string, 0, len(locals))
	for name := range locals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// emitFunctionBodies implements §4.6 item 6-7: the common prologue
// (null-check, closure-env allocation, locals segment, stack-trace/
// soft-debugging wrapping) followed by lowered call expressions. No
// profiling prologue or epilogue is emitted, whatever ProfilingEnabled says.
func (e *Emitter) emitFunctionBodies(classes []*metadata.Class) {
	for _, c := range classes {
		for _, m := range allMethods(c) {
			switch m.Special {
			case metadata.SpecialFire, metadata.SpecialAddHandler:
				e.emitEventDispatch(c, m)
				continue
			case metadata.SpecialForeignSync:
				// The client stub's logic is inlined straight into its call
				// sites (see lowerer.call), so no standalone body exists.
				continue
			}
			if m.Body == nil {
				continue // native or abstract: no body to emit
			}
			e.emitOneFunctionBody(c, m)
		}
		if c.Special == metadata.SpecialClassForeign && c.Wrapped != nil {
			for _, m := range c.Wrapped.InstanceMethods {
				e.emitRemoteServerStub(c.Wrapped, m)
			}
		}
	}
}

func (e *Emitter) emitOneFunctionBody(c *metadata.Class, m *metadata.Method) {
	b := e.b
	b.Linef("%s {", e.functionSignature(c, m))
	b.Indent()

	if e.flags.ExplicitNullCheck && !m.Signature.IsStatic && !m.Flags.Unsafe {
		b.Line("if (self == 0) { _soX_abort0(1); }")
	}
	if m.ClosureEnvClass != nil {
		b.Linef("struct %s* _env = (struct %s*)_soX_gc_alloc;", cName(m.ClosureEnvClass), cName(m.ClosureEnvClass))
	}
	for _, name := range sortedLocalNames(m.Locals) {
		l := m.Locals[name]
		b.Linef("%s %s;", cType(l.Type), l.Name)
	}

	if e.flags.StackTraceEnabled && !m.Flags.Unsafe {
		b.Linef("_soX_pushframe(\"%s::%s\");", c.NiceName, m.Name)
	}
	if e.flags.SoftDebuggingEnabled && m.Flags.HasBreakExprs {
		b.Line("_soX_reglocals();")
	}

	lw := &lowerer{e: e, c: c, m: m}
	lw.emitBody(m.Body)

	if e.flags.SoftDebuggingEnabled && m.Flags.HasBreakExprs {
		b.Line("_soX_unreglocals();")
	}
	if e.flags.StackTraceEnabled && !m.Flags.Unsafe {
		b.Line("_soX_popframe();")
	}

	b.Dedent()
	b.Line("}")
}

// lowerer holds the per-method state call-expression lowering needs.
type lowerer struct {
	e *Emitter
	c *metadata.Class
	m *metadata.Method
}

func (lw *lowerer) emitBody(e metadata.Expr) {
	body, ok := e.(*ast.Body)
	if !ok {
		lw.e.b.Linef("%s;", lw.expr(e))
		return
	}
	for i, sub := range body.Exprs {
		if i == len(body.Exprs)-1 && lw.m.Signature.ReturnType.Kind != metadata.KindVoid {
			lw.e.b.Linef("return %s;", lw.expr(sub))
			continue
		}
		lw.e.b.Linef("%s;", lw.expr(sub))
	}
}

// expr lowers a single expression to a C text fragment (§4.6 item 7).
func (lw *lowerer) expr(e metadata.Expr) string {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return fmt.Sprintf("%d", n.Value)
	case *ast.FloatLiteral:
		return fmt.Sprintf("%f", n.Value)
	case *ast.BoolLiteral:
		if n.Value {
			return "1"
		}
		return "0"
	case *ast.CharLiteral:
		return fmt.Sprintf("%d", n.Value)
	case *ast.StringLiteral:
		return fmt.Sprintf("%q", n.Value)
	case *ast.NullLiteral:
		return "0"
	case *ast.This:
		return "self"
	case *ast.Identifier:
		return lw.identifier(n)
	case *ast.Call:
		return lw.call(n)
	case *ast.Cast:
		return lw.cast(n)
	case *ast.IdentityComparison:
		op := "=="
		if n.Negate {
			op = "!="
		}
		return fmt.Sprintf("(%s %s %s)", lw.expr(n.Left), op, lw.expr(n.Right))
	case *ast.Assignment:
		return fmt.Sprintf("%s = %s", lw.expr(n.Target), lw.expr(n.Value))
	case *ast.Ref:
		return fmt.Sprintf("&(%s)", lw.expr(n.Operand))
	case *ast.Is:
		return fmt.Sprintf("_soX_checktype(%s, %q)", lw.expr(n.Operand), n.Target.FlatName())
	case *ast.Abort:
		if n.Message != nil {
			return fmt.Sprintf("_soX_abort_e(%s)", lw.expr(n.Message))
		}
		return fmt.Sprintf("_soX_abort0(%d)", n.Code)
	case *ast.Assert:
		return fmt.Sprintf("((%s) ? 0 : _soX_abort0(2))", lw.expr(n.Condition))
	case *ast.Break:
		return "break"
	case *ast.CCode:
		return n.Text
	case *ast.ArrayCreation:
		return fmt.Sprintf("_soX_newarray(%s, sizeof(%s))", lw.expr(n.Length), cType(n.ElementType))
	case *ast.ArrayInit:
		return lw.arrayInit(n)
	case *ast.InlinedCondition:
		return lw.inlinedCondition(n)
	case *ast.Sizeof:
		return fmt.Sprintf("sizeof(%s)", cType(n.Target))
	default:
		return fmt.Sprintf("/* unhandled expr kind %v */ 0", e.Kind())
	}
}

func (lw *lowerer) identifier(id *ast.Identifier) string {
	switch id.Resolved {
	case ast.IdentField:
		if id.Field != nil && id.Field.IsStatic {
			return cName(id.Field.DeclaringClass) + "_" + id.Field.Name
		}
		return fmt.Sprintf("self->%s", id.Name)
	case ast.IdentLocal, ast.IdentParam:
		return id.Name
	case ast.IdentConst:
		if id.Const != nil {
			return cName(id.Const.DeclaringClass) + "_" + id.Const.Name
		}
	case ast.IdentClass:
		if id.Class != nil {
			return cName(id.Class) + "_classptr"
		}
	}
	return id.Name
}

func (lw *lowerer) cast(n *ast.Cast) string {
	switch n.Info {
	case ast.CastDowncast:
		return fmt.Sprintf("_soX_downcast(%s, %q)", lw.expr(n.Operand), n.Target.FlatName())
	case ast.CastBox:
		return fmt.Sprintf("%s_box(%s)", cName(n.Target.ResolvedClass), lw.expr(n.Operand))
	case ast.CastUnbox:
		return fmt.Sprintf("%s_unbox(%s)", cName(n.Target.ResolvedClass), lw.expr(n.Operand))
	default:
		return fmt.Sprintf("(%s)(%s)", cType(n.Target), lw.expr(n.Operand))
	}
}

func (lw *lowerer) arrayInit(n *ast.ArrayInit) string {
	if n.HelperID != "" {
		args := ""
		for i, el := range n.Elements {
			if i > 0 {
				args += ", "
			}
			args += lw.expr(el)
		}
		return fmt.Sprintf("%s(%s)", n.HelperID, args)
	}
	return "/* empty array init */ 0"
}

// call implements §4.6 item 7's five call shapes.
func (lw *lowerer) call(n *ast.Call) string {
	// Primitive int division traps divide-by-zero through a runtime helper.
	if n.Name == "/" && n.Receiver != nil && len(n.Args) == 1 {
		if rt := n.Receiver.InferredType(); rt.Kind == metadata.KindInt {
			return fmt.Sprintf("_so_int_op_divide(%s, %s)", lw.expr(n.Receiver), lw.expr(n.Args[0]))
		}
	}

	args := ""
	start := 0
	if n.Receiver != nil && n.TargetMethod != nil && !n.TargetMethod.Signature.IsStatic {
		args = lw.expr(n.Receiver)
		start = 1
	}
	for i, a := range n.Args {
		if i+start > 0 {
			args += ", "
		}
		args += lw.expr(a)
	}

	m := n.TargetMethod
	if m == nil {
		return fmt.Sprintf("/* unresolved call %s */ 0", n.Name)
	}

	switch {
	case m.Special == metadata.SpecialForeignSync:
		return fmt.Sprintf("_soX_msgsnd_sync(%s->_domainHandle, %s->_exportedName, %q, (void*[]){%s}, 0)",
			lw.expr(n.Receiver), lw.expr(n.Receiver), m.Name, args)
	case lw.c.Special == metadata.SpecialClassInterface || m.DeclaringClass.Special == metadata.SpecialClassInterface:
		return fmt.Sprintf("((%s(*)(%s))_soX_findmethod(%s, %q))(%s)",
			cType(m.Signature.ReturnType), lw.paramTypesList(m), lw.expr(n.Receiver), m.Name, args)
	case m.Flags.Inlinable && m.GetterOf != nil:
		return fmt.Sprintf("%s->%s", lw.expr(n.Receiver), m.GetterOf.Field.Name)
	case !m.IsVirtual() || m.BaseMethod == nil && !m.Flags.TrulyVirtual:
		return fmt.Sprintf("%s(%s)", methodCName(m.DeclaringClass, m), args)
	default:
		return fmt.Sprintf("_sovch_%s(%s)", sanitize(m.UltimateBase().Name), args)
	}
}

func (lw *lowerer) paramTypesList(m *metadata.Method) string {
	out := "void*"
	for _, p := range m.Signature.Params {
		out += ", " + cType(p.Type)
	}
	return out
}

func (lw *lowerer) inlinedCondition(n *ast.InlinedCondition) string {
	switch n.ConditionKind {
	case ast.InlinedThen:
		return fmt.Sprintf("if (%s) { %s }", lw.expr(n.Condition), lw.blockText(n.Body))
	case ast.InlinedElse:
		return fmt.Sprintf("if (!(%s)) { %s }", lw.expr(n.Condition), lw.blockText(n.Body))
	case ast.InlinedWhile:
		return fmt.Sprintf("while (%s) { %s }", lw.expr(n.Condition), lw.blockText(n.Body))
	case ast.InlinedRange:
		return fmt.Sprintf("for (int _i = %s; _i < %s; _i++) { %s }", lw.expr(n.RangeStart), lw.expr(n.RangeEnd), lw.blockText(n.Body))
	default:
		return "/* unhandled inlined condition */"
	}
}

func (lw *lowerer) blockText(body *ast.Body) string {
	if body == nil {
		return ""
	}
	out := ""
	for _, sub := range body.Exprs {
		out += lw.expr(sub) + "; "
	}
	return out
}
