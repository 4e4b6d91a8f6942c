package emitter

import (
	"strings"
	"testing"

	"github.com/skizo-lang/skizo/internal/ast"
	"github.com/skizo-lang/skizo/internal/config"
	"github.com/skizo-lang/skizo/internal/metadata"
)

func TestEmitProducesStructWithInstanceField(t *testing.T) {
	reg := metadata.NewRegistry()

	point := metadata.NewClass("Point", "Point")
	xField := &metadata.Field{Name: "x", Type: metadata.Primitive(metadata.KindInt)}
	if err := point.AddField(xField); err != nil {
		t.Fatalf("AddField: %v", err)
	}
	getter := metadata.NewMethod("getX", metadata.MethodNormal)
	getter.Flags.Inlinable = true
	getter.GetterOf = &metadata.InlinableGetter{Field: xField}
	getter.Body = &ast.Body{Exprs: []metadata.Expr{
		&ast.Identifier{Name: "x", Resolved: ast.IdentField, Field: xField},
	}}
	if err := point.AddInstanceMethod(getter); err != nil {
		t.Fatalf("AddInstanceMethod: %v", err)
	}
	reg.Register(point)

	e := New(reg, config.DefaultFlags())
	out := e.Emit()

	if !strings.Contains(out, "struct _so_Point {") {
		t.Fatalf("expected a Point struct declaration, got:\n%s", out)
	}
	if !strings.Contains(out, "int x;") {
		t.Fatalf("expected field x in struct body, got:\n%s", out)
	}
}

func TestSortedClassesPutsValueTypesFirst(t *testing.T) {
	refClass := metadata.NewClass("Ref", "Ref")
	valClass := metadata.NewClass("Val", "Val")
	valClass.Flags.IsValueType = true

	out := sortedClasses([]*metadata.Class{refClass, valClass})
	if !out[0].Flags.IsValueType {
		t.Fatalf("expected value-type class first, got %s", out[0].FlatName)
	}
}
