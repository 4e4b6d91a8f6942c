// Package cli is the thin command-line front end over pkg/embed, mirroring
// funxy's cmd/funxy -> pkg/cli.Run() split: main.go stays a one-liner,
// every actual flag/IO concern lives here.
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/skizo-lang/skizo/internal/config"
	"github.com/skizo-lang/skizo/pkg/embed"
)

// colorEnabled detects terminal color support the same way funxy's
// detectColorLevel does: respect NO_COLOR, then require a real terminal.
func colorEnabled(out *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
}

func colorize(s string, code string, enabled bool) string {
	if !enabled {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

// NoopParser rejects every import, since scanning/parsing ships as a
// separate, host-supplied collaborator (§1 "the lexer/parser surface ...
// is out of scope"); a real front end wires its own Parser here.
type NoopParser struct{}

func (NoopParser) Parse(name, text string) (*embed.Source, error) {
	return nil, fmt.Errorf("cli: no parser configured; skizo's CLI does not bundle a lexer/parser front end")
}

// Run is the CLI entry point funxy's cmd/funxy/main.go delegates to.
// Returns the process exit code.
func Run(args []string) int {
	fs := flag.NewFlagSet("skizo", flag.ContinueOnError)
	entryClass := fs.String("entry-class", config.EntryPointClass, "entry point class")
	entryMethod := fs.String("entry-method", config.EntryPointMethod, "entry point method")
	stackTrace := fs.Bool("stack-trace", true, "enable stack traces")
	profiling := fs.Bool("profile", false, "enable profiling")
	untrusted := fs.Bool("untrusted", false, "run the domain as untrusted")
	dumpHeap := fs.Bool("dump-heap", false, "print a heap-dump notice after running; per-class counts are not available through pkg/embed (§12 heap walk diagnostic)")
	profileDB := fs.String("profile-db", "", "SQLite path to persist profiling samples")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: skizo [flags] <source-file>")
		return 2
	}
	path := fs.Arg(0)

	enableColor := colorEnabled(os.Stdout)

	text, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, colorize(fmt.Sprintf("skizo: %v", err), "31", enableColor))
		return 1
	}

	flags := embed.DefaultFlags()
	flags.StackTraceEnabled = *stackTrace
	flags.ProfilingEnabled = *profiling

	d, err := embed.CreateDomain(embed.Config{
		Name:            path,
		EntrySourceName: path,
		EntrySourceText: string(text),
		EntryClass:      *entryClass,
		EntryMethod:     *entryMethod,
		Flags:           flags,
		Parser:          NoopParser{},
		ProfileDBPath:   *profileDB,
		Untrusted:       *untrusted,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, colorize(fmt.Sprintf("skizo: domain creation failed: %v", err), "31", enableColor))
		return 1
	}

	exitCode := 0
	if err := d.InvokeEntryPoint(); err != nil {
		fmt.Fprintln(os.Stderr, colorize(fmt.Sprintf("skizo: %v", err), "31", enableColor))
		for _, frame := range d.StackTrace() {
			fmt.Fprintln(os.Stderr, colorize("  at "+frame.String(), "33", enableColor))
		}
		exitCode = 1
	}

	if *dumpHeap {
		dumpHeapDiagnostics(os.Stdout)
	}
	if *profiling {
		if err := d.DumpProfilingData(); err != nil {
			fmt.Fprintln(os.Stderr, colorize(fmt.Sprintf("skizo: dumping profile data: %v", err), "33", enableColor))
		}
	}

	if err := d.CloseDomain(); err != nil {
		fmt.Fprintln(os.Stderr, colorize(fmt.Sprintf("skizo: closing domain: %v", err), "33", enableColor))
		if exitCode == 0 {
			exitCode = 1
		}
	}
	return exitCode
}

// dumpHeapDiagnostics backs §12's "--dump-heap CLI verb". A per-class dump
// of object counts and bytes would be read via internal/pool's
// Allocator.Enumerate, but pkg/embed deliberately doesn't expose the
// allocator (it's an internal collaborator, not part of the stable
// embedding surface), so this prints a separator and a notice that no
// heap dump is available.
func dumpHeapDiagnostics(out *os.File) {
	fmt.Fprintln(out, strings.Repeat("-", 40))
	fmt.Fprintln(out, "heap dump unavailable: allocator not exposed through pkg/embed")
}
