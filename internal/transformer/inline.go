package transformer

import (
	"github.com/skizo-lang/skizo/internal/ast"
	"github.com/skizo-lang/skizo/internal/metadata"
)

// inlineConditionals implements §4.5 step 3: a call of the shape
// `cond.then { ... }`, `cond.else { ... }`, `pred.while { ... }` or
// `a.to(b).forEach { ... }`, where the sole argument is a closure literal
// written inline, is rewritten into an InlinedCondition node so the emitter
// can lower it straight to a C if/while/for statement instead of
// allocating a closure and calling through it (§4.6 item 6). Only runs
// when config.Flags.InlineBranching is set, since it changes the shape of
// the stack-trace/soft-debugging frame the emitter wraps the call in.
func (t *Transformer) inlineConditionals(m *metadata.Method) {
	if m.Body == nil {
		return
	}
	m.Body = rewriteInline(m.Body)
}

// rewriteInline walks e post-order, replacing any child Call that matches
// one of the four recognized shapes with an InlinedCondition, then checks
// whether e itself matches.
func rewriteInline(e metadata.Expr) metadata.Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *ast.Body:
		for i, sub := range n.Exprs {
			n.Exprs[i] = rewriteInline(sub)
		}
		return n
	case *ast.Call:
		if n.Receiver != nil {
			n.Receiver = rewriteInline(n.Receiver)
		}
		for i, a := range n.Args {
			n.Args[i] = rewriteInline(a)
		}
		if inlined, ok := tryInlineCall(n); ok {
			return inlined
		}
		return n
	case *ast.Cast:
		n.Operand = rewriteInline(n.Operand)
		return n
	case *ast.ArrayCreation:
		n.Length = rewriteInline(n.Length)
		return n
	case *ast.ArrayInit:
		for i, el := range n.Elements {
			n.Elements[i] = rewriteInline(el)
		}
		return n
	case *ast.IdentityComparison:
		n.Left = rewriteInline(n.Left)
		n.Right = rewriteInline(n.Right)
		return n
	case *ast.Assignment:
		n.Target = rewriteInline(n.Target)
		n.Value = rewriteInline(n.Value)
		return n
	case *ast.Abort:
		if n.Message != nil {
			n.Message = rewriteInline(n.Message)
		}
		return n
	case *ast.Assert:
		n.Condition = rewriteInline(n.Condition)
		return n
	case *ast.Ref:
		n.Operand = rewriteInline(n.Operand)
		return n
	case *ast.Is:
		n.Operand = rewriteInline(n.Operand)
		return n
	default:
		return e
	}
}

// tryInlineCall recognizes the four closure-argument shapes §4.5 step 3
// names. A match requires exactly one argument and that argument to
// already be a Body (a closure literal written directly at the call site,
// never a stored variable — only the textually inline form is eligible).
func tryInlineCall(c *ast.Call) (*ast.InlinedCondition, bool) {
	if len(c.Args) != 1 {
		return nil, false
	}
	body, ok := c.Args[0].(*ast.Body)
	if !ok || c.Receiver == nil {
		return nil, false
	}

	switch c.Name {
	case "then":
		return &ast.InlinedCondition{ConditionKind: ast.InlinedThen, Condition: c.Receiver, Body: body}, true
	case "else":
		return &ast.InlinedCondition{ConditionKind: ast.InlinedElse, Condition: c.Receiver, Body: body}, true
	case "while":
		return &ast.InlinedCondition{ConditionKind: ast.InlinedWhile, Condition: c.Receiver, Body: body}, true
	case "forEach":
		rangeCall, ok := c.Receiver.(*ast.Call)
		if !ok || rangeCall.Name != "to" || len(rangeCall.Args) != 1 {
			return nil, false
		}
		return &ast.InlinedCondition{
			ConditionKind: ast.InlinedRange,
			RangeStart:    rangeCall.Receiver,
			RangeEnd:      rangeCall.Args[0],
			Body:          body,
		}, true
	}
	return nil, false
}
