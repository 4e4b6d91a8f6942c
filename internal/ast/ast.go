// Package ast defines the shapes of the Skizo expression tree (§3.5). The
// scanning/parsing rules that produce these nodes are an external
// collaborator (§1 out of scope) — only the node shapes belong here, the
// same division funxy draws between internal/lexer+internal/parser
// (grammar) and internal/ast (shapes). Grounded on funxy's
// internal/ast/ast_core.go and ast_expressions.go, translated from
// funxy's single-inheritance-with-Accept(Visitor) node shape into the
// explicit tagged variant the design notes (§9) call for: each node embeds
// metadata.ExprHeader and implements metadata.Expr via Kind()/Loc()/
// InferredType().
package ast

import "github.com/skizo-lang/skizo/internal/metadata"

// Body is a sequence of expressions forming a method or closure body
// (§3.5). ReturnAlreadyDefined is set by the transformer once a `return`
// has been seen on every control-flow path, so later unreachable-return
// diagnostics and implicit-void-return insertion can be skipped.
type Body struct {
	metadata.ExprHeader
	Exprs                 []metadata.Expr
	OwningMethod          *metadata.Method
	GeneratedEnvClass     *metadata.Class // non-nil once the transformer lifts a capture (§4.5 step 1)
	ReturnAlreadyDefined  bool
}

func (b *Body) Kind() metadata.ExprKind { return metadata.ExprBody }

// CallType discriminates what a Call node resolves to (§3.5).
type CallType int

const (
	CallUnresolved CallType = iota
	CallMethodCall
	CallConstAccess
)

// Call is an ordered list of sub-expressions: target (or nil for a free
// function reference), arguments, and whatever the parser shaped this
// syntactic call as (§3.5).
type Call struct {
	metadata.ExprHeader
	Args           []metadata.Expr
	Receiver       metadata.Expr // nil for a static/unbound call
	Name           string
	CallTy         CallType
	TargetMethod   *metadata.Method
	TargetConst    *metadata.Const
}

func (c *Call) Kind() metadata.ExprKind { return metadata.ExprCall }

// IdentResolvedKind says what an Identifier ultimately names, once the
// transformer binds it (§3.5, §4.5 step 1).
type IdentResolvedKind int

const (
	IdentUnresolved IdentResolvedKind = iota
	IdentField
	IdentLocal
	IdentParam
	IdentConst
	IdentClass
	IdentMethod
)

// Identifier names a binding site; TypedAtDeclarationSite and IsAuto record
// whether the source gave it an explicit type or relied on `:=` inference.
type Identifier struct {
	metadata.ExprHeader
	Name                   string
	TypedAtDeclarationSite bool
	IsAuto                 bool
	Resolved               IdentResolvedKind
	Field                  *metadata.Field
	Local                  *metadata.Local
	Param                  *metadata.Param
	Const                  *metadata.Const
	Class                  *metadata.Class
	Method                 *metadata.Method
}

func (i *Identifier) Kind() metadata.ExprKind { return metadata.ExprIdentifier }

// IntLiteral, FloatLiteral, StringLiteral, CharLiteral, NullLiteral and
// BoolLiteral are the primitive literal leaves (§3.5).
type IntLiteral struct {
	metadata.ExprHeader
	Value int64
}

func (n *IntLiteral) Kind() metadata.ExprKind { return metadata.ExprIntLiteral }

type FloatLiteral struct {
	metadata.ExprHeader
	Value float64
}

func (n *FloatLiteral) Kind() metadata.ExprKind { return metadata.ExprFloatLiteral }

type StringLiteral struct {
	metadata.ExprHeader
	Value string // interned by the domain's string table
}

func (n *StringLiteral) Kind() metadata.ExprKind { return metadata.ExprStringLiteral }

type CharLiteral struct {
	metadata.ExprHeader
	Value rune
}

func (n *CharLiteral) Kind() metadata.ExprKind { return metadata.ExprCharLiteral }

type NullLiteral struct {
	metadata.ExprHeader
}

func (n *NullLiteral) Kind() metadata.ExprKind { return metadata.ExprNullLiteral }

type BoolLiteral struct {
	metadata.ExprHeader
	Value bool
}

func (n *BoolLiteral) Kind() metadata.ExprKind { return metadata.ExprBoolLiteral }

// This refers to the implicit receiver of an instance method (§3.5).
type This struct {
	metadata.ExprHeader
}

func (n *This) Kind() metadata.ExprKind { return metadata.ExprThis }

// CCode is a verbatim-emitted C source fragment, used by `native` bodies
// and compiler-generated helpers that bypass normal lowering (§3.5, §4.6).
type CCode struct {
	metadata.ExprHeader
	Text string
}

func (n *CCode) Kind() metadata.ExprKind { return metadata.ExprCCode }
