package ast

import "github.com/skizo-lang/skizo/internal/metadata"

// CastInfo discriminates the conversions a Cast node may perform (§3.5).
type CastInfo int

const (
	CastUpcast CastInfo = iota
	CastDowncast
	CastValueToFailable
	CastErrorToFailable
	CastBox
	CastUnbox
)

// Cast is an explicit or transformer-inserted conversion (§4.5 step 2:
// "upcasts are inserted as explicit cast nodes... labeled with cast-info").
type Cast struct {
	metadata.ExprHeader
	Info   CastInfo
	Target metadata.TypeRef
	Operand metadata.Expr
}

func (n *Cast) Kind() metadata.ExprKind { return metadata.ExprCast }

// Sizeof yields the byte size of a type — used by binary-blob/nativeSize
// classes (§6 Attributes) and the pool allocator's bookkeeping helpers.
type Sizeof struct {
	metadata.ExprHeader
	Target metadata.TypeRef
}

func (n *Sizeof) Kind() metadata.ExprKind { return metadata.ExprSizeof }

// ArrayCreation allocates a new array of a computed length (§4.4 array
// wrapper `createByLength`).
type ArrayCreation struct {
	metadata.ExprHeader
	ElementType metadata.TypeRef
	Length      metadata.Expr
}

func (n *ArrayCreation) Kind() metadata.ExprKind { return metadata.ExprArrayCreation }

// ArrayInit is an array literal; HelperID names the emitted C helper
// function that builds it (§4.6 item 5).
type ArrayInit struct {
	metadata.ExprHeader
	Elements []metadata.Expr
	HelperID string
}

func (n *ArrayInit) Kind() metadata.ExprKind { return metadata.ExprArrayInit }

// IdentityComparison is reference/bit equality (`===`), as opposed to a
// value-type's generated equality helper (§4.6 item 5).
type IdentityComparison struct {
	metadata.ExprHeader
	Left, Right metadata.Expr
	Negate      bool
}

func (n *IdentityComparison) Kind() metadata.ExprKind { return metadata.ExprIdentityComparison }

// Assignment stores Value into Target (an Identifier, field access, or
// array index expression modeled as a Call in this tree).
type Assignment struct {
	metadata.ExprHeader
	Target metadata.Expr
	Value  metadata.Expr
}

func (n *Assignment) Kind() metadata.ExprKind { return metadata.ExprAssignment }

// Abort lowers to `_soX_abort0(code)` / `_soX_abort_e(error)` (§4.6
// preamble, §7).
type Abort struct {
	metadata.ExprHeader
	Code    int
	Message metadata.Expr // nil when Code alone identifies the abort reason
}

func (n *Abort) Kind() metadata.ExprKind { return metadata.ExprAbort }

// Assert lowers to a conditional Abort when Condition is false.
type Assert struct {
	metadata.ExprHeader
	Condition metadata.Expr
	Message   string
}

func (n *Assert) Kind() metadata.ExprKind { return metadata.ExprAssert }

// Ref marks an argument passed by reference (address-of an lvalue).
type Ref struct {
	metadata.ExprHeader
	Operand metadata.Expr
}

func (n *Ref) Kind() metadata.ExprKind { return metadata.ExprRef }

// Break exits the innermost loop; HasBreakExprs on the enclosing method is
// set when one of these is found (§4.5, used by soft debugging §4.6 item 6).
type Break struct {
	metadata.ExprHeader
}

func (n *Break) Kind() metadata.ExprKind { return metadata.ExprBreak }

// Is is a runtime type test (`x is T`), lowered through `_soX_checktype`
// (§4.6 preamble).
type Is struct {
	metadata.ExprHeader
	Operand metadata.Expr
	Target  metadata.TypeRef
}

func (n *Is) Kind() metadata.ExprKind { return metadata.ExprIs }

// InlinedConditionKind discriminates the three shapes the transformer's
// conditional-inlining pass produces (§4.5 step 3).
type InlinedConditionKind int

const (
	InlinedThen InlinedConditionKind = iota
	InlinedElse
	InlinedWhile
	InlinedRange
)

// InlinedCondition replaces a `cond then {...}` / `cond else {...}` /
// `pred while {...}` / range-loop call once the transformer recognizes the
// matching method-class signature and removes the closure allocation on
// that path (§4.5 step 3). Produced only by the transformer — never by the
// parser.
type InlinedCondition struct {
	metadata.ExprHeader
	ConditionKind InlinedConditionKind
	Condition     metadata.Expr
	Body          *Body
	RangeStart    metadata.Expr // non-nil only for InlinedRange
	RangeEnd      metadata.Expr
}

func (n *InlinedCondition) Kind() metadata.ExprKind { return metadata.ExprInlinedCondition }
