package domain

import (
	"os/exec"
	"testing"

	"github.com/skizo-lang/skizo/internal/cbackend"
	"github.com/skizo-lang/skizo/internal/metadata"
	"github.com/skizo-lang/skizo/internal/remoting"
)

func TestInvokeReturnsErrorForUnknownExportedObject(t *testing.T) {
	d := newTestDomain(Config{})
	if _, err := d.Invoke("obj-missing", "greet", nil); err == nil {
		t.Fatalf("expected error for unknown exported object")
	}
}

func TestExportRejectsUnregisteredClass(t *testing.T) {
	d := newTestDomain(Config{})
	if _, err := d.Export("Ghost", nil); err == nil {
		t.Fatalf("expected error exporting an unregistered class")
	}
}

func TestInvokeRejectsMethodTakingArguments(t *testing.T) {
	d := newTestDomain(Config{})

	greeter := metadata.NewClass("Greeter", "Greeter")
	m := metadata.NewMethod("greet", metadata.MethodNormal)
	m.Signature.Params = []metadata.Param{{Name: "who", Type: metadata.TypeRef{Kind: metadata.KindInt}}}
	greeter.InstanceMethods = append(greeter.InstanceMethods, m)
	d.registry.Register(greeter)

	name, err := d.Export("Greeter", nil)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if _, err := d.Invoke(name, "greet", nil); err == nil {
		t.Fatalf("expected error for a method that takes arguments")
	}
}

// TestInvokeCallsCompiledZeroArgMethod exercises the real remoting.Invoke
// call boundary against a compiled zero-argument void method, the one
// shape it supports today, analogous to the entry-point S1 integration
// test. Skipped unless the configured C compiler is on PATH.
func TestInvokeCallsCompiledZeroArgMethod(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if _, err := exec.LookPath(cbackend.CompilerPath); err != nil {
		t.Skipf("%s not found on PATH", cbackend.CompilerPath)
	}

	const source = `#include <stdio.h>
void _som_Greeter_greet(void) {
	printf("hi");
}
`
	sess, err := cbackend.Compile("remoting-invoke", source)
	if err != nil {
		t.Fatalf("cbackend.Compile: %v", err)
	}
	defer sess.Close()

	d := newTestDomain(Config{})
	d.backend = sess

	greeter := metadata.NewClass("Greeter", "Greeter")
	greeter.InstanceMethods = append(greeter.InstanceMethods, metadata.NewMethod("greet", metadata.MethodNormal))
	d.registry.Register(greeter)

	name, err := d.Export("Greeter", nil)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	result, err := d.Invoke(name, "greet", nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if result != (remoting.Arg{}) {
		t.Fatalf("expected zero Arg result, got %+v", result)
	}
}
