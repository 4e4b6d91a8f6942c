package metadata

// ExprKind tags every node of the expression tree (§3.5). The concrete node
// types live in package ast, which imports metadata for TypeRef/Class; Expr
// is declared here, not there, so Method.Body can hold one without metadata
// importing ast back (ast node structs implement this interface).
type ExprKind int

const (
	ExprBody ExprKind = iota
	ExprCall
	ExprIdentifier
	ExprIntLiteral
	ExprFloatLiteral
	ExprStringLiteral
	ExprCharLiteral
	ExprNullLiteral
	ExprBoolLiteral
	ExprThis
	ExprCCode
	ExprCast
	ExprSizeof
	ExprArrayCreation
	ExprArrayInit
	ExprIdentityComparison
	ExprAssignment
	ExprAbort
	ExprAssert
	ExprRef
	ExprBreak
	ExprIs
	ExprInlinedCondition
)

// Expr is implemented by every node of the expression tree. It is
// intentionally small: Kind for type-switch-free dispatch in simple callers,
// Loc/InferredType for the header every node shares (§3.5 last paragraph).
type Expr interface {
	Kind() ExprKind
	Loc() SourceLocation
	InferredType() TypeRef
	SetInferredType(TypeRef)
}

// ExprHeader is embedded by every concrete node in package ast; it supplies
// the shared Loc/InferredType storage so each node type only needs to embed
// it and implement Kind().
type ExprHeader struct {
	Location SourceLocation
	Inferred TypeRef
}

func (h *ExprHeader) Loc() SourceLocation       { return h.Location }
func (h *ExprHeader) InferredType() TypeRef     { return h.Inferred }
func (h *ExprHeader) SetInferredType(t TypeRef) { h.Inferred = t }
