package metadata

import "sync"

// Registry owns every Class a domain knows about, indexed by flat name and
// by nice name, plus the per-special-kind caches the resolver consults
// before generating a wrapper class (§3.6, §4.4 step 4: "generated lazily
// and cached").
//
// Registry is read-write only while the owning domain's transformer is
// running; once transformation finishes it is read-only and may safely be
// inspected from another domain's thread during a remoting handshake
// (§5 Shared-resource policy). The mutex exists for that read-only
// cross-thread inspection, not to support concurrent mutation.
type Registry struct {
	mu        sync.RWMutex
	byFlat    map[string]*Class
	byNice    map[string][]*Class // a nice name may be shared by wrappers of distinct flat names

	arrayCache    map[string]*Class // element flat name -> array wrapper class
	failableCache map[string]*Class
	foreignCache  map[string]*Class
	boxedCache    map[string]*Class
	aliasCache    map[string]*Class
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byFlat:        make(map[string]*Class),
		byNice:        make(map[string][]*Class),
		arrayCache:    make(map[string]*Class),
		failableCache: make(map[string]*Class),
		foreignCache:  make(map[string]*Class),
		boxedCache:    make(map[string]*Class),
		aliasCache:    make(map[string]*Class),
	}
}

// Register adds c under its flat name, failing (returning false) if the
// flat name is already taken — §3.2's uniqueness invariant.
func (r *Registry) Register(c *Class) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byFlat[c.FlatName]; exists {
		return false
	}
	r.byFlat[c.FlatName] = c
	r.byNice[c.NiceName] = append(r.byNice[c.NiceName], c)
	return true
}

// ByFlatName looks up a class by its mangled internal name.
func (r *Registry) ByFlatName(flat string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byFlat[flat]
	return c, ok
}

// ByNiceName returns every registered class sharing the given user-visible
// name (a value-type and its boxed wrapper share one, per §3.2 invariant).
func (r *Registry) ByNiceName(nice string) []*Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Class(nil), r.byNice[nice]...)
}

// All returns every registered class, for heap-walk diagnostics and
// GC-map recomputation passes.
func (r *Registry) All() []*Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Class, 0, len(r.byFlat))
	for _, c := range r.byFlat {
		out = append(out, c)
	}
	return out
}

func cacheFor(r *Registry, special SpecialClassTag) map[string]*Class {
	switch special {
	case SpecialClassArray:
		return r.arrayCache
	case SpecialClassFailable:
		return r.failableCache
	case SpecialClassForeign:
		return r.foreignCache
	case SpecialClassBoxed:
		return r.boxedCache
	case SpecialClassAlias:
		return r.aliasCache
	default:
		return nil
	}
}

// CachedWrapper returns a previously generated wrapper class of the given
// special kind over the element identified by key (its flat name), if any.
func (r *Registry) CachedWrapper(special SpecialClassTag, key string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cache := cacheFor(r, special)
	if cache == nil {
		return nil, false
	}
	c, ok := cache[key]
	return c, ok
}

// CacheWrapper records a newly generated wrapper class so future resolutions
// of the same element/special-kind pair reuse it (§4.4 step 4 "cached").
func (r *Registry) CacheWrapper(special SpecialClassTag, key string, c *Class) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cache := cacheFor(r, special)
	if cache != nil {
		cache[key] = c
	}
}
