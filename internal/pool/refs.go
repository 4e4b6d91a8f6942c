package pool

// SetRefs records c's reference-typed field values for the GC to trace.
// Called by whoever constructs an object (tests, or a future emitted-C
// shim) once the reference fields are known.
func SetRefs(c *Cell, refs []*Cell) { c.Refs = refs }

// Refs returns c's traced reference fields.
func Refs(c *Cell) []*Cell { return c.Refs }
