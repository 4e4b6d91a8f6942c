package resolver

import (
	"testing"

	"github.com/skizo-lang/skizo/internal/metadata"
)

func newTestResolver() (*Resolver, *metadata.Registry) {
	reg := metadata.NewRegistry()
	return New(reg), reg
}

func TestResolvePrimitive(t *testing.T) {
	r, _ := newTestResolver()
	resolved, err := r.Resolve(metadata.Primitive(metadata.KindInt))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.ResolvedClass == nil || resolved.ResolvedClass.NiceName != "int" {
		t.Fatalf("expected int class, got %+v", resolved.ResolvedClass)
	}
}

func TestResolveUnknownClassAborts(t *testing.T) {
	r, _ := newTestResolver()
	_, err := r.Resolve(metadata.Object("Nope"))
	if err == nil {
		t.Fatalf("expected abort for unknown class")
	}
}

func TestResolveArrayGeneratesAndCachesWrapper(t *testing.T) {
	r, reg := newTestResolver()
	c := metadata.NewClass("Point", "Point")
	reg.Register(c)

	ref := metadata.Object("Point").ArrayOf()
	resolved1, err := r.Resolve(ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved1.ResolvedClass.Special != metadata.SpecialClassArray {
		t.Fatalf("expected array special class")
	}

	resolved2, err := r.Resolve(ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved1.ResolvedClass != resolved2.ResolvedClass {
		t.Fatalf("array wrapper was not cached/reused")
	}
}

func TestResolveFailableWraps(t *testing.T) {
	r, _ := newTestResolver()
	ref := metadata.Primitive(metadata.KindInt).Failable()
	resolved, err := r.Resolve(ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.ResolvedClass.Special != metadata.SpecialClassFailable {
		t.Fatalf("expected failable special class")
	}
	if !resolved.ResolvedClass.Flags.IsValueType {
		t.Fatalf("failable wrapper must be a value type")
	}
}

func TestResolveBoxedSharesNiceName(t *testing.T) {
	r, reg := newTestResolver()
	vt := metadata.NewClass("Pair", "Pair")
	vt.Flags.IsValueType = true
	reg.Register(vt)

	boxed, err := r.ResolveBoxed(vt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if boxed.NiceName != vt.NiceName {
		t.Fatalf("boxed wrapper nice name = %s, want %s", boxed.NiceName, vt.NiceName)
	}
	if boxed.Flags.IsValueType {
		t.Fatalf("boxed wrapper must be a reference type")
	}
}

func TestForcedQueueDrainsOnResolveForced(t *testing.T) {
	r, reg := newTestResolver()
	c := metadata.NewClass("Widget", "Widget")
	reg.Register(c)

	r.EnqueueForced(metadata.Object("Widget").ArrayOf())
	if err := r.ResolveForced(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := reg.CachedWrapper(metadata.SpecialClassArray, "Widget"); !ok {
		t.Fatalf("forced array wrapper was not generated")
	}
}
