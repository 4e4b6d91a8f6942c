package transformer

import (
	"testing"

	"github.com/skizo-lang/skizo/internal/ast"
	"github.com/skizo-lang/skizo/internal/metadata"
	"github.com/skizo-lang/skizo/internal/resolver"
)

func newTestTransformer() (*Transformer, *metadata.Registry, *resolver.Resolver) {
	reg := metadata.NewRegistry()
	r := resolver.New(reg)
	return New(r, Flags{InlineBranching: true}), reg, r
}

func declareGetter(t *testing.T, c *metadata.Class, name string, field *metadata.Field) *metadata.Method {
	t.Helper()
	m := metadata.NewMethod(name, metadata.MethodNormal)
	body := &ast.Body{Exprs: []metadata.Expr{
		&ast.Identifier{Name: field.Name, Resolved: ast.IdentField, Field: field},
	}}
	m.Body = body
	if err := c.AddInstanceMethod(m); err != nil {
		t.Fatalf("AddInstanceMethod: %v", err)
	}
	return m
}

// TestVTableIndexStableAcrossOverride verifies Testable Property 3: an
// override occupies the exact same vtable slot its base method does.
func TestVTableIndexStableAcrossOverride(t *testing.T) {
	tr, _, _ := newTestTransformer()

	base := metadata.NewClass("Base", "Base")
	baseMethod := metadata.NewMethod("speak", metadata.MethodNormal)
	baseMethod.Flags.TrulyVirtual = true
	if err := base.AddInstanceMethod(baseMethod); err != nil {
		t.Fatalf("AddInstanceMethod: %v", err)
	}
	if err := tr.TransformClass(base); err != nil {
		t.Fatalf("TransformClass(base): %v", err)
	}
	if baseMethod.VTableIndex != 1 {
		t.Fatalf("base method VTableIndex = %d, want 1", baseMethod.VTableIndex)
	}

	derived := metadata.NewClass("Derived", "Derived")
	derived.ResolvedBase = base
	override := metadata.NewMethod("speak", metadata.MethodNormal)
	override.BaseMethod = baseMethod
	if err := derived.AddInstanceMethod(override); err != nil {
		t.Fatalf("AddInstanceMethod: %v", err)
	}
	if err := tr.TransformClass(derived); err != nil {
		t.Fatalf("TransformClass(derived): %v", err)
	}
	if override.VTableIndex != baseMethod.VTableIndex {
		t.Fatalf("override VTableIndex = %d, want %d (base's)", override.VTableIndex, baseMethod.VTableIndex)
	}
}

// TestComputeGCMapFindsReferenceFields verifies computeGCMap records the
// offset of a reference-typed field but not a primitive one, and that the
// reference field's offset starts past the vtable pointer.
func TestComputeGCMapFindsReferenceFields(t *testing.T) {
	tr, reg, _ := newTestTransformer()

	other := metadata.NewClass("Other", "Other")
	reg.Register(other)

	c := metadata.NewClass("Holder", "Holder")
	c.VT = metadata.NewVTable(0)
	idField := &metadata.Field{Name: "id", Type: metadata.Primitive(metadata.KindInt)}
	refField := &metadata.Field{Name: "other", Type: metadata.TypeRef{Kind: metadata.KindObject, ClassName: "Other", ResolvedClass: other}}
	if err := c.AddField(idField); err != nil {
		t.Fatalf("AddField(id): %v", err)
	}
	if err := c.AddField(refField); err != nil {
		t.Fatalf("AddField(other): %v", err)
	}

	if err := tr.TransformClass(c); err != nil {
		t.Fatalf("TransformClass: %v", err)
	}

	if len(c.GC.GCMap) != 1 {
		t.Fatalf("GCMap = %v, want exactly one reference offset", c.GC.GCMap)
	}
	if c.GC.GCMap[0] != refField.Offset {
		t.Fatalf("GCMap[0] = %d, want refField.Offset = %d", c.GC.GCMap[0], refField.Offset)
	}
	if refField.Offset <= idField.Offset {
		t.Fatalf("refField.Offset (%d) should come after idField.Offset (%d)", refField.Offset, idField.Offset)
	}
}

// TestMarkInlinableGetterTagsTrivialAccessor verifies a single-expression
// `return this.field` method body is tagged inlinable and non-virtual.
func TestMarkInlinableGetterTagsTrivialAccessor(t *testing.T) {
	tr, _, _ := newTestTransformer()

	c := metadata.NewClass("Point", "Point")
	xField := &metadata.Field{Name: "x", Type: metadata.Primitive(metadata.KindInt)}
	if err := c.AddField(xField); err != nil {
		t.Fatalf("AddField: %v", err)
	}
	getter := declareGetter(t, c, "getX", xField)

	if err := tr.TransformClass(c); err != nil {
		t.Fatalf("TransformClass: %v", err)
	}

	if !getter.Flags.Inlinable {
		t.Fatalf("expected getX to be marked inlinable")
	}
	if getter.GetterOf == nil || getter.GetterOf.Field != xField {
		t.Fatalf("expected GetterOf to point at field x")
	}
	if getter.IsVirtual() {
		t.Fatalf("inlinable getter should not occupy a vtable slot")
	}
}

// TestAbstractMethodWithoutOverrideFailsVerify exercises the verify pass's
// abstract-coverage check.
func TestAbstractMethodWithoutOverrideFailsVerify(t *testing.T) {
	tr, _, _ := newTestTransformer()

	c := metadata.NewClass("Shape", "Shape")
	abstractMethod := metadata.NewMethod("area", metadata.MethodNormal)
	abstractMethod.Flags.Abstract = true
	if err := c.AddInstanceMethod(abstractMethod); err != nil {
		t.Fatalf("AddInstanceMethod: %v", err)
	}

	if err := tr.TransformClass(c); err == nil {
		t.Fatalf("expected verify to reject a concrete class with an unoverridden abstract method")
	}
}

// TestInlineConditionalsRewritesThenCall verifies the `cond.then { ... }`
// shape becomes an InlinedCondition node when InlineBranching is enabled.
func TestInlineConditionalsRewritesThenCall(t *testing.T) {
	tr, _, _ := newTestTransformer()

	m := metadata.NewMethod("run", metadata.MethodNormal)
	cond := &ast.BoolLiteral{Value: true}
	closureBody := &ast.Body{Exprs: []metadata.Expr{&ast.IntLiteral{Value: 1}}}
	call := &ast.Call{Name: "then", Receiver: cond, Args: []metadata.Expr{closureBody}}
	m.Body = &ast.Body{Exprs: []metadata.Expr{call}}

	tr.inlineConditionals(m)

	body := m.Body.(*ast.Body)
	inlined, ok := body.Exprs[0].(*ast.InlinedCondition)
	if !ok {
		t.Fatalf("expected InlinedCondition, got %T", body.Exprs[0])
	}
	if inlined.ConditionKind != ast.InlinedThen {
		t.Fatalf("ConditionKind = %v, want InlinedThen", inlined.ConditionKind)
	}
	if inlined.Body != closureBody {
		t.Fatalf("inlined body does not point at the original closure body")
	}
}
