package domain

import (
	"testing"

	"github.com/skizo-lang/skizo/internal/config"
	"github.com/skizo-lang/skizo/internal/metadata"
	"github.com/skizo-lang/skizo/internal/pipeline"
	"github.com/skizo-lang/skizo/internal/remoting"
)

func newTestDomain(cfg Config) *Domain {
	d := &Domain{
		name:        cfg.Name,
		cfg:         cfg,
		registry:    metadata.NewRegistry(),
		permissions: newPermissionSet(cfg),
		profile:     newProfileStore(""),
		exported:    remoting.NewExportedObjects(),
		sourceSeen:  make(map[string]bool),
	}
	return d
}

func TestStageRegisterBuiltinsRegistersAllFive(t *testing.T) {
	d := newTestDomain(Config{})
	if err := d.stageRegisterBuiltins(&pipeline.Context{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{
		config.StringClassName, config.ErrorClassName, config.RangeClassName,
		config.PredicateName, config.ActionClassName,
	} {
		if _, ok := d.registry.ByFlatName(name); !ok {
			t.Fatalf("expected built-in class %s to be registered", name)
		}
	}
}

func TestStageRegisterBuiltinsRejectsDuplicate(t *testing.T) {
	d := newTestDomain(Config{})
	if err := d.stageRegisterBuiltins(&pipeline.Context{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := d.stageRegisterBuiltins(&pipeline.Context{}); err == nil {
		t.Fatalf("expected duplicate built-in registration to fail")
	}
}

func TestPermissionSetTrustedAlwaysPasses(t *testing.T) {
	p := newPermissionSet(Config{Untrusted: false})
	if !p.Check("reflection") {
		t.Fatalf("expected trusted domain to allow any operation")
	}
}

func TestPermissionSetUntrustedRequiresListing(t *testing.T) {
	p := newPermissionSet(Config{Untrusted: true, Permissions: []string{"reflection"}})
	if !p.Check("reflection") {
		t.Fatalf("expected listed permission to pass")
	}
	if p.Check("remoting") {
		t.Fatalf("expected unlisted permission to fail")
	}
}

func TestStackFrameFormatsClassMethodFileLine(t *testing.T) {
	f := StackFrame{ClassName: "Program", MethodName: "main", File: "main.sk", Line: 7}
	if got, want := f.String(), "Program::main (main.sk:7)"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestAbortCarriesFrameAndLastError(t *testing.T) {
	d := newTestDomain(Config{})
	d.pushFrame(StackFrame{ClassName: "Program", MethodName: "main", File: "main.sk", Line: 3})

	defer func() {
		r := recover()
		a, ok := r.(*Abort)
		if !ok {
			t.Fatalf("expected *Abort panic, got %v", r)
		}
		if a.Frame != "Program::main (main.sk:3)" {
			t.Fatalf("unexpected frame: %q", a.Frame)
		}
		if d.LastError() != a.Error() {
			t.Fatalf("LastError not updated to match the abort")
		}
	}()
	d.abort(AbortNullDereference, "null dereference")
}

func TestProfileStoreSortsByCalls(t *testing.T) {
	p := newProfileStore("")
	p.Record("Program", "main", 10)
	p.Record("Program", "main", 10)
	p.Record("Other", "helper", 100)

	byCalls := p.SortBy("calls")
	if byCalls[0].MethodName != "main" {
		t.Fatalf("expected main (2 calls) to sort first by calls, got %s", byCalls[0].MethodName)
	}
	byTotal := p.SortBy("total")
	if byTotal[0].MethodName != "helper" {
		t.Fatalf("expected helper (100 ticks) to sort first by total, got %s", byTotal[0].MethodName)
	}
}
