package metadata

import "fmt"

// SpecialClassTag distinguishes a user class from the kinds of classes the
// resolver or transformer generates on demand (§3.2).
type SpecialClassTag int

const (
	SpecialClassNone SpecialClassTag = iota
	SpecialClassInterface
	SpecialClassArray
	SpecialClassFailable
	SpecialClassForeign
	SpecialClassBoxed
	SpecialClassClosureEnv
	SpecialClassMethodClass
	SpecialClassEventClass
	SpecialClassAlias
	SpecialClassBinaryBlob
)

// ClassFlags packs the boolean kind bits every Class carries (§3.2).
type ClassFlags struct {
	IsValueType        bool
	IsStatic           bool
	IsAbstract         bool
	IsHierarchyRoot    bool
	IsCompilerGenerated bool
}

// GCInfo is the data the garbage collector needs to trace and size an
// instance of the class (§4.2 marking, §4.6 item 2 struct layout).
type GCInfo struct {
	ContentSize int   // bytes of the class's own payload
	SizeForUse  int   // sizeof when embedded as a value-type field
	GCMap       []int // byte offsets of reference-typed instance fields, sorted
}

// VTable is an owned pointer array: slot 0 is the class pointer, slots
// 1..N are instance-method code pointers (§3.2 invariant).
type VTable struct {
	Slots []uintptr
}

// NewVTable allocates a VTable with methodCount+1 slots, slot 0 reserved for
// the class pointer.
func NewVTable(methodCount int) *VTable {
	return &VTable{Slots: make([]uintptr, methodCount+1)}
}

// Class is the central metadata node (§3.2).
type Class struct {
	FlatName        string // mangled, unique within a domain (invariant)
	NiceName        string // user-visible, stable across domains
	Loc             SourceLocation
	DeclaringDomain string // domain id; set by the registry on registration
	DeclaringModule string

	Flags   ClassFlags
	Special SpecialClassTag

	Base         TypeRef
	ResolvedBase *Class

	InstanceFields   []*Field
	StaticFields     []*Field
	InstanceMethods  []*Method // inherited methods are prepended (§3.2)
	StaticMethods    []*Method
	InstanceCtors    []*Method
	StaticCtor       *Method
	InstanceDtor     *Method
	StaticDtor       *Method
	Consts           []*Const

	members map[string]interface{} // name -> *Field/*Method/*Const, for uniqueness checks

	GC GCInfo

	VT *VTable // nil for value-types (§3.2 invariant)

	// Wrapped is the element/inner/wrapped type for array, failable,
	// foreign, boxed, alias and event-class specials (§3.2).
	Wrapped *Class

	// IsInitialized is set by the domain's prolog stage once this class's
	// static ctor has run (at once for a class without one); built-in
	// classes are registered already initialized (Testable Property 1).
	IsInitialized bool

	// NativeSize is populated from [nativeSize=N] for a binary-blob class
	// (§6 Attributes).
	NativeSize int
	// PtrWrapper is populated from [ptrWrapper] (§12 supplemented feature):
	// a binary-blob class with a single native-pointer payload whose
	// members forward directly to the pointer instead of copying fields.
	PtrWrapper bool
}

// NewClass returns a Class with its member-name set initialized.
func NewClass(flatName, niceName string) *Class {
	return &Class{
		FlatName: flatName,
		NiceName: niceName,
		members:  make(map[string]interface{}),
	}
}

// HasVTable reports whether instances of the class carry a vtable. A
// value-type never does (§3.2 invariant).
func (c *Class) HasVTable() bool { return !c.Flags.IsValueType && c.VT != nil }

// Declare registers name -> member in the class's uniqueness set, returning
// false if name is already taken (§3.2 invariant: flat names/member names
// unique within their scope).
func (c *Class) Declare(name string, member interface{}) bool {
	if _, exists := c.members[name]; exists {
		return false
	}
	c.members[name] = member
	return true
}

// Lookup returns the member registered under name, if any.
func (c *Class) Lookup(name string) (interface{}, bool) {
	m, ok := c.members[name]
	return m, ok
}

// AllInstanceMethods returns the instance-method list in vtable order: the
// order methods were appended, which per §3.2 prepends inherited methods
// first.
func (c *Class) AllInstanceMethods() []*Method { return c.InstanceMethods }

// AddInstanceMethod appends m, declares it by name, and wires DeclaringClass.
func (c *Class) AddInstanceMethod(m *Method) error {
	if !c.Declare(m.Name, m) {
		return fmt.Errorf("metadata: class %s already declares member %s", c.FlatName, m.Name)
	}
	m.DeclaringClass = c
	c.InstanceMethods = append(c.InstanceMethods, m)
	return nil
}

// AddField appends f to the appropriate list and declares it by name.
func (c *Class) AddField(f *Field) error {
	if !c.Declare(f.Name, f) {
		return fmt.Errorf("metadata: class %s already declares member %s", c.FlatName, f.Name)
	}
	f.DeclaringClass = c
	if f.IsStatic {
		c.StaticFields = append(c.StaticFields, f)
	} else {
		c.InstanceFields = append(c.InstanceFields, f)
	}
	return nil
}

// IsAssignableFrom reports whether a value of class other may be assigned to
// a slot of class c without a cast: other is c or a transitive subclass, or
// c is other's alias target.
func (c *Class) IsAssignableFrom(other *Class) bool {
	for cur := other; cur != nil; cur = cur.ResolvedBase {
		if cur == c {
			return true
		}
		if cur.Special == SpecialClassAlias && cur.Wrapped == c {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer for debug/log output, showing the nice
// name the way diagnostics should read.
func (c *Class) String() string { return c.NiceName }
