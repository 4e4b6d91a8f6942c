package remoting

import (
	"sync"

	"github.com/google/uuid"
)

// ExportedObjects is the one structure both the producer (a remote
// caller) and consumer (the owning domain) thread mutate (§5
// "Shared-resource policy": "The exported-objects table is the only
// structure both producer and consumer threads mutate; its mutex
// brackets all reads and writes").
type ExportedObjects struct {
	mu   sync.Mutex
	byID map[string]any
}

// NewExportedObjects returns an empty table.
func NewExportedObjects() *ExportedObjects {
	return &ExportedObjects{byID: make(map[string]any)}
}

// Export assigns obj a fresh name and registers it, returning the name a
// remote caller addresses it by.
func (e *ExportedObjects) Export(obj any) string {
	name := "obj-" + uuid.NewString()
	e.mu.Lock()
	e.byID[name] = obj
	e.mu.Unlock()
	return name
}

// Lookup resolves a previously exported name back to its object.
func (e *ExportedObjects) Lookup(name string) (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	obj, ok := e.byID[name]
	return obj, ok
}

// Revoke removes an exported name, e.g. once the owning object is
// collected.
func (e *ExportedObjects) Revoke(name string) {
	e.mu.Lock()
	delete(e.byID, name)
	e.mu.Unlock()
}
