package domain

import (
	"io"
	"os"
	"os/exec"
	"syscall"
	"testing"

	"github.com/skizo-lang/skizo/internal/cbackend"
	"github.com/skizo-lang/skizo/internal/config"
	"github.com/skizo-lang/skizo/internal/metadata"
)

// TestInvokeEntryPointRunsCompiledCodeAndProducesObservedOutput exercises
// §8 scenario S1 end to end through the real call boundary: compile a
// translation unit whose entry point prints "3", resolve it through a real
// C-backend session, and check that invoking the entry point actually runs
// it rather than merely resolving its address. Requires the configured C
// compiler on PATH; skipped (like funxy's own integration tests gate on
// "go" being present) when it isn't, and in short mode.
func TestInvokeEntryPointRunsCompiledCodeAndProducesObservedOutput(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if _, err := exec.LookPath(cbackend.CompilerPath); err != nil {
		t.Skipf("%s not found on PATH", cbackend.CompilerPath)
	}

	const source = `#include <stdio.h>
void _som_Program_main(void) {
	printf("3");
}
`
	sess, err := cbackend.Compile("s1", source)
	if err != nil {
		t.Fatalf("cbackend.Compile: %v", err)
	}
	defer sess.Close()

	d := newTestDomain(Config{})
	d.backend = sess
	d.entryClass = config.EntryPointClass
	d.entryMethod = config.EntryPointMethod

	program := metadata.NewClass(config.EntryPointClass, config.EntryPointClass)
	program.StaticMethods = append(program.StaticMethods, metadata.NewMethod(config.EntryPointMethod, metadata.MethodNormal))
	d.registry.Register(program)

	// The compiled code's printf writes through libc to fd 1 directly, not
	// through Go's os.Stdout variable, so the real OS file descriptor has
	// to be redirected (not just the os.Stdout value) to observe it.
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	savedFd, err := syscall.Dup(1)
	if err != nil {
		t.Fatalf("dup stdout: %v", err)
	}
	if err := syscall.Dup2(int(w.Fd()), 1); err != nil {
		t.Fatalf("redirecting stdout: %v", err)
	}

	invokeErr := d.InvokeEntryPoint()

	w.Close()
	syscall.Dup2(savedFd, 1)
	syscall.Close(savedFd)

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading captured stdout: %v", err)
	}
	if invokeErr != nil {
		t.Fatalf("InvokeEntryPoint returned an error: %v", invokeErr)
	}
	if string(out) != "3" {
		t.Fatalf("expected compiled entry point to print %q, got %q", "3", string(out))
	}
}
