package transformer

import (
	"github.com/skizo-lang/skizo/internal/ast"
	"github.com/skizo-lang/skizo/internal/metadata"
)

// resolveCaptures implements §4.5 step 1: any identifier whose resolved
// storage (local/param/this) belongs to an enclosing method is marked
// captured, and method's enclosing-method-local captures are collected so
// the emitter/thunk manager can lift them into a closure-env class field
// list (§3.2 SpecialClassClosureEnv, §4.7 closure-ctor).
func (t *Transformer) resolveCaptures(owner *metadata.Class, m *metadata.Method) {
	if m.Body == nil {
		return
	}
	var captured []string
	walkExprs(m.Body, func(e metadata.Expr) {
		id, ok := e.(*ast.Identifier)
		if !ok {
			return
		}
		switch id.Resolved {
		case ast.IdentLocal:
			if id.Local != nil && id.Local.DeclaringMethod != m {
				id.Local.IsCaptured = true
				captured = append(captured, id.Name)
			}
		case ast.IdentParam:
			if id.Param != nil && id.Param.DeclaringMethod != m {
				id.Param.IsCaptured = true
				captured = append(captured, id.Name)
			}
		}
	})
	if _, ok := m.Body.(*ast.Body); ok {
		if this, crosses := findCapturedThis(m); crosses {
			m.Flags.SelfCaptured = true
			_ = this
		}
	}
	if len(captured) > 0 || m.Flags.SelfCaptured {
		m.ClosureEnvClass = t.buildClosureEnvClass(owner, m, captured)
	}
}

// findCapturedThis reports whether m's body references `this` while m is
// itself a nested (parent-having) method, which is the only situation
// where `this` crosses a method boundary.
func findCapturedThis(m *metadata.Method) (found, crosses bool) {
	if m.ParentMethod == nil || m.Body == nil {
		return false, false
	}
	walkExprs(m.Body, func(e metadata.Expr) {
		if _, ok := e.(*ast.This); ok {
			found = true
		}
	})
	return found, found
}

// buildClosureEnvClass materializes the compiler-generated value-type
// class whose fields mirror m's captured locals/params/this (§4.5 step 1,
// §3.2 SpecialClassClosureEnv). Each env additionally holds an `_upper`
// pointer to its immediate parent env, letting a nested closure navigate
// the chain to reach an outer capture.
func (t *Transformer) buildClosureEnvClass(owner *metadata.Class, m *metadata.Method, names []string) *metadata.Class {
	flat := "0Env_" + owner.FlatName + "_" + m.Name
	env := metadata.NewClass(flat, flat)
	env.Special = metadata.SpecialClassClosureEnv
	env.Flags.IsCompilerGenerated = true

	if m.ParentMethod != nil && m.ParentMethod.ClosureEnvClass != nil {
		_ = env.AddField(&metadata.Field{Name: "_upper", Type: metadata.Object(m.ParentMethod.ClosureEnvClass.FlatName)})
	}
	if m.Flags.SelfCaptured {
		_ = env.AddField(&metadata.Field{Name: "_this", Type: metadata.Object(owner.FlatName)})
	}
	for _, name := range names {
		if typ, ok := lookupCapturedType(m, name); ok {
			_ = env.AddField(&metadata.Field{Name: name, Type: typ})
		}
	}
	t.registry.Register(env)
	return env
}

func lookupCapturedType(m *metadata.Method, name string) (metadata.TypeRef, bool) {
	cur := m
	for cur != nil {
		if l, ok := cur.Locals[name]; ok {
			return l.Type, true
		}
		for _, p := range cur.Signature.Params {
			if p.Name == name {
				return p.Type, true
			}
		}
		cur = cur.ParentMethod
	}
	return metadata.TypeRef{}, false
}

// walkExprs visits e and every sub-expression reachable from it, calling
// visit on each node including e itself.
func walkExprs(e metadata.Expr, visit func(metadata.Expr)) {
	if e == nil {
		return
	}
	visit(e)
	switch n := e.(type) {
	case *ast.Body:
		for _, sub := range n.Exprs {
			walkExprs(sub, visit)
		}
	case *ast.Call:
		if n.Receiver != nil {
			walkExprs(n.Receiver, visit)
		}
		for _, a := range n.Args {
			walkExprs(a, visit)
		}
	case *ast.Cast:
		walkExprs(n.Operand, visit)
	case *ast.ArrayCreation:
		walkExprs(n.Length, visit)
	case *ast.ArrayInit:
		for _, el := range n.Elements {
			walkExprs(el, visit)
		}
	case *ast.IdentityComparison:
		walkExprs(n.Left, visit)
		walkExprs(n.Right, visit)
	case *ast.Assignment:
		walkExprs(n.Target, visit)
		walkExprs(n.Value, visit)
	case *ast.Abort:
		if n.Message != nil {
			walkExprs(n.Message, visit)
		}
	case *ast.Assert:
		walkExprs(n.Condition, visit)
	case *ast.Ref:
		walkExprs(n.Operand, visit)
	case *ast.Is:
		walkExprs(n.Operand, visit)
	case *ast.InlinedCondition:
		if n.Condition != nil {
			walkExprs(n.Condition, visit)
		}
		if n.RangeStart != nil {
			walkExprs(n.RangeStart, visit)
		}
		if n.RangeEnd != nil {
			walkExprs(n.RangeEnd, visit)
		}
		if n.Body != nil {
			walkExprs(n.Body, visit)
		}
	}
}
