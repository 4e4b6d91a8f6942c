package transformer

import (
	"fmt"

	"github.com/skizo-lang/skizo/internal/ast"
	"github.com/skizo-lang/skizo/internal/metadata"
)

// inferTypes implements §4.5 step 2: a single bottom-up pass assigns an
// InferredType to every expression node. Unlike funxy's unification-based
// inference, a mismatch is never resolved by generalizing a type variable —
// it either matches exactly, is bridged by an explicit upcast the pass
// inserts as a Cast node, or is an error.
func (t *Transformer) inferTypes(m *metadata.Method) error {
	if m.Body == nil {
		return nil
	}
	inf := &inferrer{t: t, m: m}
	_, err := inf.infer(m.Body)
	if err == nil {
		m.Flags.Inferred = true
	}
	return err
}

type inferrer struct {
	t *Transformer
	m *metadata.Method
}

func (inf *inferrer) infer(e metadata.Expr) (metadata.TypeRef, error) {
	var result metadata.TypeRef
	var err error

	switch n := e.(type) {
	case *ast.Body:
		for i, sub := range n.Exprs {
			typ, ierr := inf.infer(sub)
			if ierr != nil {
				return result, ierr
			}
			if i == len(n.Exprs)-1 {
				result = typ
			}
		}
	case *ast.IntLiteral:
		result = inf.t.resolver.MustResolve(metadata.Primitive(metadata.KindInt))
	case *ast.FloatLiteral:
		result = inf.t.resolver.MustResolve(metadata.Primitive(metadata.KindFloat))
	case *ast.BoolLiteral:
		result = inf.t.resolver.MustResolve(metadata.Primitive(metadata.KindBool))
	case *ast.CharLiteral:
		result = inf.t.resolver.MustResolve(metadata.Primitive(metadata.KindChar))
	case *ast.StringLiteral:
		result = metadata.Object("string")
		if c, ok := inf.t.registry.ByFlatName("string"); ok {
			result.ResolvedClass = c
		}
	case *ast.NullLiteral:
		result = metadata.Object("any")
	case *ast.This:
		if inf.m.DeclaringClass != nil {
			result = metadata.Object(inf.m.DeclaringClass.FlatName)
			result.ResolvedClass = inf.m.DeclaringClass
		}
	case *ast.Identifier:
		result, err = inf.inferIdentifier(n)
	case *ast.Call:
		result, err = inf.inferCall(n)
	case *ast.Cast:
		if _, ierr := inf.infer(n.Operand); ierr != nil {
			return result, ierr
		}
		result = n.Target
	case *ast.Sizeof:
		result = inf.t.resolver.MustResolve(metadata.Primitive(metadata.KindInt))
	case *ast.ArrayCreation:
		if _, ierr := inf.infer(n.Length); ierr != nil {
			return result, ierr
		}
		result = n.ElementType.ArrayOf()
	case *ast.ArrayInit:
		for _, el := range n.Elements {
			if _, ierr := inf.infer(el); ierr != nil {
				return result, ierr
			}
		}
	case *ast.IdentityComparison:
		if _, ierr := inf.infer(n.Left); ierr != nil {
			return result, ierr
		}
		if _, ierr := inf.infer(n.Right); ierr != nil {
			return result, ierr
		}
		result = inf.t.resolver.MustResolve(metadata.Primitive(metadata.KindBool))
	case *ast.Assignment:
		targetType, ierr := inf.infer(n.Target)
		if ierr != nil {
			return result, ierr
		}
		valueType, ierr := inf.infer(n.Value)
		if ierr != nil {
			return result, ierr
		}
		if !targetType.Equal(valueType) {
			if upcast, ok := inf.tryUpcast(n.Value, valueType, targetType); ok {
				n.Value = upcast
			} else {
				return result, fmt.Errorf("cannot assign %s to %s", valueType, targetType)
			}
		}
		result = targetType
	case *ast.Abort:
		if n.Message != nil {
			if _, ierr := inf.infer(n.Message); ierr != nil {
				return result, ierr
			}
		}
	case *ast.Assert:
		if _, ierr := inf.infer(n.Condition); ierr != nil {
			return result, ierr
		}
	case *ast.Ref:
		result, err = inf.infer(n.Operand)
	case *ast.Is:
		if _, ierr := inf.infer(n.Operand); ierr != nil {
			return result, ierr
		}
		result = inf.t.resolver.MustResolve(metadata.Primitive(metadata.KindBool))
	case *ast.InlinedCondition:
		if n.Condition != nil {
			if _, ierr := inf.infer(n.Condition); ierr != nil {
				return result, ierr
			}
		}
		if n.RangeStart != nil {
			if _, ierr := inf.infer(n.RangeStart); ierr != nil {
				return result, ierr
			}
		}
		if n.RangeEnd != nil {
			if _, ierr := inf.infer(n.RangeEnd); ierr != nil {
				return result, ierr
			}
		}
		if n.Body != nil {
			if _, ierr := inf.infer(n.Body); ierr != nil {
				return result, ierr
			}
		}
	case *ast.Break, *ast.CCode:
		// leaves with no operand type to propagate
	default:
		return result, fmt.Errorf("inference: unhandled expression kind %v", e.Kind())
	}

	if err != nil {
		return result, err
	}
	e.SetInferredType(result)
	return result, nil
}

func (inf *inferrer) inferIdentifier(id *ast.Identifier) (metadata.TypeRef, error) {
	switch id.Resolved {
	case ast.IdentField:
		if id.Field != nil {
			return id.Field.Type, nil
		}
	case ast.IdentLocal:
		if id.Local != nil {
			return id.Local.Type, nil
		}
	case ast.IdentParam:
		if id.Param != nil {
			return id.Param.Type, nil
		}
	case ast.IdentConst:
		if id.Const != nil {
			return id.Const.Type, nil
		}
	case ast.IdentClass:
		if id.Class != nil {
			ref := metadata.Object(id.Class.FlatName)
			ref.ResolvedClass = id.Class
			return ref, nil
		}
	}
	return metadata.TypeRef{}, fmt.Errorf("inference: identifier %q has no resolved storage", id.Name)
}

func (inf *inferrer) inferCall(c *ast.Call) (metadata.TypeRef, error) {
	if c.Receiver != nil {
		if _, err := inf.infer(c.Receiver); err != nil {
			return metadata.TypeRef{}, err
		}
	}
	for i, a := range c.Args {
		argType, err := inf.infer(a)
		if err != nil {
			return metadata.TypeRef{}, err
		}
		if c.TargetMethod != nil && i < len(c.TargetMethod.Signature.Params) {
			want := c.TargetMethod.Signature.Params[i].Type
			if !argType.Equal(want) {
				if upcast, ok := inf.tryUpcast(a, argType, want); ok {
					c.Args[i] = upcast
				} else {
					return metadata.TypeRef{}, fmt.Errorf("argument %d: cannot use %s as %s", i, argType, want)
				}
			}
		}
	}
	if c.CallTy == ast.CallConstAccess && c.TargetConst != nil {
		return c.TargetConst.Type, nil
	}
	if c.TargetMethod != nil {
		return c.TargetMethod.Signature.ReturnType, nil
	}
	return metadata.Object("void"), nil
}

// tryUpcast inserts an explicit Cast node when from is assignable to to via
// a base-class relationship (§4.5 step 2: "no implicit upcasts inferred" —
// they are made explicit as Cast nodes instead of being silently allowed).
func (inf *inferrer) tryUpcast(e metadata.Expr, from, to metadata.TypeRef) (metadata.Expr, bool) {
	if from.ResolvedClass == nil || to.ResolvedClass == nil {
		return nil, false
	}
	if !to.ResolvedClass.IsAssignableFrom(from.ResolvedClass) {
		return nil, false
	}
	cast := &ast.Cast{Info: ast.CastUpcast, Target: to, Operand: e}
	cast.SetInferredType(to)
	return cast, true
}
