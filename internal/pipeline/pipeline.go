// Package pipeline sequences the ordered stages of §4.8's create_domain:
// bind thread, init memory manager, register built-ins, parse+import,
// resolve, transform, thunk, emit, link, resolve calls, run prolog. Kept
// as its own small abstraction, rather than one long function, the same
// way the teacher's own pipeline separated "a sequence of steps over a
// shared context" from any one step's implementation.
package pipeline

// Context threads the state every stage may read or extend. Stages run in
// order; Run appends the error a stage returns to Errors and stops there,
// leaving later stages unattempted, since each subsequent stage assumes
// the previous one succeeded (§4.8's steps are a strict sequence, not
// independent passes).
type Context struct {
	DomainName string
	Errors     []error
}

// Failed reports whether any stage has recorded an error.
func (c *Context) Failed() bool { return len(c.Errors) > 0 }

// Stage is one named step of domain creation.
type Stage interface {
	Name() string
	Run(ctx *Context) error
}

// StageFunc adapts a plain function to Stage.
type StageFunc struct {
	StageName string
	Fn        func(ctx *Context) error
}

func (s StageFunc) Name() string { return s.StageName }
func (s StageFunc) Run(ctx *Context) error { return s.Fn(ctx) }

// Pipeline runs its stages in order, stopping at the first error.
type Pipeline struct {
	stages []Stage
}

// New returns a Pipeline over the given stages, run in order.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run executes every stage in order until one fails or all succeed.
func (p *Pipeline) Run(ctx *Context) *Context {
	for _, s := range p.stages {
		if err := s.Run(ctx); err != nil {
			ctx.Errors = append(ctx.Errors, err)
			return ctx
		}
	}
	return ctx
}
