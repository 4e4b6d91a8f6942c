// Package domain implements §4.8's domain lifecycle: the object that owns
// every other subsystem in this module (metadata registry, resolver,
// transformer, emitter, thunk manager, C backend session, GC) and
// sequences them through creation, entry-point invocation, and teardown.
//
// Grounded on funxy's internal/evaluator (the component that owns a VM
// instance's full lifecycle end to end) for the "one struct, one owner,
// every subsystem reachable from it" shape, and on internal/pipeline for
// sequencing creation as an ordered list of named stages rather than one
// long function body.
package domain

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/skizo-lang/skizo/internal/cbackend"
	"github.com/skizo-lang/skizo/internal/config"
	"github.com/skizo-lang/skizo/internal/emitter"
	"github.com/skizo-lang/skizo/internal/gcheap"
	"github.com/skizo-lang/skizo/internal/metadata"
	"github.com/skizo-lang/skizo/internal/pipeline"
	"github.com/skizo-lang/skizo/internal/remoting"
	"github.com/skizo-lang/skizo/internal/resolver"
	"github.com/skizo-lang/skizo/internal/thunk"
	"github.com/skizo-lang/skizo/internal/transformer"
)

var uniqueIDCounter uint64

// Domain is one isolated runtime instance (§3.6): its own metadata arenas,
// registry, memory manager, thunk manager, C-backend session, message
// queue, and security policy. Two domains share nothing but immutable Go
// package state.
type Domain struct {
	name     string
	id       uint64
	cfg      Config
	bound    bool
	boundMu  sync.Mutex

	registry    *metadata.Registry
	resolver    *resolver.Resolver
	transformer *transformer.Transformer
	gc          *gcheap.Manager
	thunks      *thunk.Manager
	backend     *cbackend.Session

	permissions *permissionSet
	profile     *ProfileStore

	exported *remoting.ExportedObjects
	queue    *remoting.MessageQueue
	server   *remoting.Server

	sourceQueue []string
	sourceSeen  map[string]bool

	frames    []StackFrame
	lastError string

	entryClass  string
	entryMethod string

	closed bool
}

// CreateDomain runs §4.8's create_domain sequence as a pipeline.Pipeline
// over the stages named there, returning a bound, fully transformed and
// emitted (but not yet entered) Domain.
func CreateDomain(cfg Config) (*Domain, error) {
	if cfg.EntryClass == "" {
		cfg.EntryClass = config.EntryPointClass
	}
	if cfg.EntryMethod == "" {
		cfg.EntryMethod = config.EntryPointMethod
	}
	if cfg.Parser == nil {
		return nil, fmt.Errorf("domain: Config.Parser is required (scanning/parsing is an external collaborator)")
	}

	d := &Domain{
		name:        cfg.Name,
		id:          atomic.AddUint64(&uniqueIDCounter, 1),
		cfg:         cfg,
		registry:    metadata.NewRegistry(),
		gc:          gcheap.New(),
		thunks:      thunk.New(),
		permissions: newPermissionSet(cfg),
		profile:     newProfileStore(cfg.ProfileDBPath),
		exported:    remoting.NewExportedObjects(),
		sourceSeen:  make(map[string]bool),
		entryClass:  cfg.EntryClass,
		entryMethod: cfg.EntryMethod,
	}
	d.resolver = resolver.New(d.registry)
	d.transformer = transformer.New(d.resolver, transformer.Flags{InlineBranching: cfg.Flags.InlineBranching})

	var emittedSource string

	p := pipeline.New(
		pipeline.StageFunc{StageName: "bind-thread", Fn: d.stageBindThread},
		pipeline.StageFunc{StageName: "register-builtins", Fn: d.stageRegisterBuiltins},
		pipeline.StageFunc{StageName: "parse-imports", Fn: d.stageParseImports},
		pipeline.StageFunc{StageName: "resolve-types", Fn: d.stageResolveTypes},
		pipeline.StageFunc{StageName: "transform-classes", Fn: d.stageTransformClasses},
		pipeline.StageFunc{StageName: "register-thunks", Fn: d.stageRegisterThunks},
		pipeline.StageFunc{StageName: "emit-source", Fn: func(ctx *pipeline.Context) error {
			var err error
			emittedSource, err = d.stageEmitSource()
			return err
		}},
		pipeline.StageFunc{StageName: "compile-and-link", Fn: func(ctx *pipeline.Context) error {
			return d.stageCompileAndLink(emittedSource)
		}},
		pipeline.StageFunc{StageName: "resolve-calls", Fn: d.stageResolveCalls},
		pipeline.StageFunc{StageName: "run-prolog", Fn: d.stageRunProlog},
	)

	ctx := &pipeline.Context{DomainName: cfg.Name}
	p.Run(ctx)
	if ctx.Failed() {
		d.unbind()
		return nil, ctx.Errors[0]
	}
	return d, nil
}

func (d *Domain) stageBindThread(ctx *pipeline.Context) error {
	d.boundMu.Lock()
	defer d.boundMu.Unlock()
	if d.bound {
		return fmt.Errorf("domain: already bound to a thread")
	}
	d.bound = true
	thunk.SetCurrentDomain(d.id)
	return nil
}

func (d *Domain) unbind() {
	d.boundMu.Lock()
	d.bound = false
	d.boundMu.Unlock()
}

// stageRegisterBuiltins registers the non-primitive built-ins (§4.8): the
// resolver's own New already seeded the seven primitives (any, int,
// float, bool, char, intptr, void); the rest are ordinary reference
// classes with no declared members beyond what the compiled C side
// supplies, stood in here as empty shells the transformer can still
// process (zero methods is a valid, trivially verified class).
func (d *Domain) stageRegisterBuiltins(ctx *pipeline.Context) error {
	for _, name := range []string{
		config.StringClassName,
		config.ErrorClassName,
		config.RangeClassName,
		config.PredicateName,
		config.ActionClassName,
	} {
		c := metadata.NewClass(name, name)
		c.IsInitialized = true
		if !d.registry.Register(c) {
			return fmt.Errorf("domain: built-in class %s already registered", name)
		}
	}
	return nil
}

func (d *Domain) stageParseImports(ctx *pipeline.Context) error {
	d.sourceQueue = append(d.sourceQueue, d.cfg.EntrySourceName)
	texts := map[string]string{d.cfg.EntrySourceName: d.cfg.EntrySourceText}

	for len(d.sourceQueue) > 0 {
		name := d.sourceQueue[0]
		d.sourceQueue = d.sourceQueue[1:]
		if d.sourceSeen[name] {
			continue
		}
		d.sourceSeen[name] = true

		text, ok := texts[name]
		if !ok {
			loaded, err := d.loadImport(name)
			if err != nil {
				return fmt.Errorf("domain: loading import %q: %w", name, err)
			}
			text = loaded
		}

		src, err := d.cfg.Parser.Parse(name, text)
		if err != nil {
			return fmt.Errorf("domain: parsing %q: %w", name, err)
		}
		for _, c := range src.Classes {
			if !d.registry.Register(c) {
				return fmt.Errorf("domain: class %s already registered", c.FlatName)
			}
		}
		for _, imp := range src.Imports {
			if !d.sourceSeen[imp] {
				d.sourceQueue = append(d.sourceQueue, imp)
			}
		}
	}
	return nil
}

// loadImport resolves an import name against the configured search paths.
// Filesystem access is an external collaborator (spec.md: "the platform
// wrappers for file system ... icall implementations ... are out of
// scope"), so this always fails unless the caller pre-supplied the text
// via EntrySourceText for a single-unit program.
func (d *Domain) loadImport(name string) (string, error) {
	return "", fmt.Errorf("import %q not found on search paths %v (filesystem access is a host collaborator)", name, d.cfg.SearchPaths)
}

func (d *Domain) stageResolveTypes(ctx *pipeline.Context) error {
	for _, c := range d.registry.All() {
		for _, f := range c.InstanceFields {
			resolved, err := d.resolver.Resolve(f.Type)
			if err != nil {
				return err
			}
			f.Type = resolved
		}
	}
	return d.resolver.ResolveForced()
}

func (d *Domain) stageTransformClasses(ctx *pipeline.Context) error {
	for _, c := range d.registry.All() {
		if err := d.transformer.TransformClass(c); err != nil {
			return err
		}
	}
	return nil
}

// stageRegisterThunks runs the thunk manager over every closure-ctor,
// boxed-method, and reflection-eligible method discovered during
// transformation, registering their JIT-generated entry points as icalls
// the emitted C program can call into (§4.8 "run the thunk manager to
// register JIT-generated icalls").
func (d *Domain) stageRegisterThunks(ctx *pipeline.Context) error {
	for _, c := range d.registry.All() {
		for _, m := range c.InstanceMethods {
			if m.ClosureEnvClass != nil {
				if err := thunk.RejectUnsupportedClosureParam(m.Signature); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (d *Domain) stageEmitSource() (string, error) {
	e := emitter.New(d.registry, d.cfg.Flags)
	return e.Emit(), nil
}

func (d *Domain) stageCompileAndLink(source string) error {
	sess, err := cbackend.Compile(d.name, source)
	if err != nil {
		return err
	}
	d.backend = sess
	return nil
}

// stageResolveCalls resolves each ICall name to its registered pointer and
// each ECall to its native module symbol (§4.8), using the C backend's
// recovered symbol table for native-declared methods and the config-
// supplied icall table for compiled-in ones.
func (d *Domain) stageResolveCalls(ctx *pipeline.Context) error {
	for _, c := range d.registry.All() {
		for _, m := range append(append([]*metadata.Method{}, c.InstanceMethods...), c.StaticMethods...) {
			if m.Special != metadata.SpecialNative {
				continue
			}
			if !m.Flags.AttributesResolved {
				return fmt.Errorf("domain: native method %s::%s missing resolved ECall attributes", c.NiceName, m.Name)
			}
			if ptr, ok := d.cfg.ICalls[m.ECall.Module]; ok {
				m.ECall.NativePtr = ptr
				continue
			}
			addr, ok := d.backend.ResolveSymbol(m.ECall.Module)
			if !ok {
				return fmt.Errorf("domain: missing icall/ecall %q for %s::%s", m.ECall.Module, c.NiceName, m.Name)
			}
			m.ECall.NativePtr = addr
		}
	}
	return nil
}

// stageRunProlog runs every class's static constructor, matching the
// emitter's §4.6 item 11 prolog ordering (vtable registration happens
// inside the compiled prolog itself, ahead of any static ctor, so a ctor
// that allocates sees a fully registered vtable by the time this calls it).
func (d *Domain) stageRunProlog(ctx *pipeline.Context) error {
	for _, c := range d.registry.All() {
		if c.StaticCtor == nil {
			c.IsInitialized = true
			continue
		}
		addr, ok := d.backend.ResolveSymbol(methodCName(c, c.StaticCtor))
		if !ok {
			return fmt.Errorf("domain: static ctor %s::%s was not emitted", c.NiceName, c.StaticCtor.Name)
		}
		d.pushFrame(StackFrame{ClassName: c.NiceName, MethodName: c.StaticCtor.Name})
		cbackend.CallVoid(addr)
		d.popFrame()
		c.IsInitialized = true
	}
	return nil
}
