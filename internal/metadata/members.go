package metadata

// Attribute is a name=value pair parsed from source `[name=value]` syntax
// (§3.4, §6). Declarations carry a slice of these; the transformer resolves
// the ones it recognizes (module, callConv, nativeSize, ptrWrapper) into
// typed fields elsewhere (ECallDescriptor, Class.NativeSize, ...).
type Attribute struct {
	Name  string
	Value string
}

// Lookup returns the value of the first attribute named name, and whether
// it was present.
func Lookup(attrs []Attribute, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AccessModifier controls cross-class visibility of a member (§6).
type AccessModifier int

const (
	AccessPrivate AccessModifier = iota
	AccessProtected
	AccessPublic
	AccessInternal
)

func (a AccessModifier) String() string {
	switch a {
	case AccessPrivate:
		return "private"
	case AccessProtected:
		return "protected"
	case AccessPublic:
		return "public"
	case AccessInternal:
		return "internal"
	default:
		return "?"
	}
}

// Field is an instance or static member variable (§3.4).
type Field struct {
	DeclaringClass *Class
	Name           string
	Access         AccessModifier
	IsStatic       bool
	Type           TypeRef
	Offset         int // byte offset within the instance; meaningless for static fields
	Attributes     []Attribute
	Loc            SourceLocation
}

// Param is a method parameter (§3.4); Param and Local share a shape because
// both are addressable storage a closure capture can lift into an env class.
type Param struct {
	Name            string
	Type            TypeRef
	DeclaringMethod *Method
	IsCaptured      bool
	Loc             SourceLocation
}

// Local is a method-local variable (§3.4).
type Local struct {
	Name            string
	Type            TypeRef
	DeclaringMethod *Method
	IsCaptured      bool
	Loc             SourceLocation
}

// ConstKind discriminates the literal kinds a Const may hold (§3.4).
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstBool
	ConstChar
	ConstString
)

// Const is a compile-time constant member, emitted as a C #define (§4.6
// item 2).
type Const struct {
	DeclaringClass *Class
	Name           string
	Access         AccessModifier
	Type           TypeRef
	ValueKind      ConstKind
	IntValue       int64
	FloatValue     float64
	BoolValue      bool
	CharValue      rune
	StringValue    string // interned
	Loc            SourceLocation
}

// Signature is a method's return type, ordered parameters, and staticness
// (§3.3). Two methods override each other only if their signatures match
// except for the receiver.
type Signature struct {
	ReturnType TypeRef
	Params     []Param
	IsStatic   bool
}

// Arity returns the parameter count.
func (s Signature) Arity() int { return len(s.Params) }

// Equal compares two signatures structurally (return type + param types +
// staticness); used by the transformer to confirm an override matches its
// base method (§3.3 invariant).
func (s Signature) Equal(o Signature) bool {
	if s.IsStatic != o.IsStatic || !s.ReturnType.Equal(o.ReturnType) || len(s.Params) != len(o.Params) {
		return false
	}
	for i := range s.Params {
		if !s.Params[i].Type.Equal(o.Params[i].Type) {
			return false
		}
	}
	return true
}
