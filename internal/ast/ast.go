// Package ast defines the tagged tree produced by the parser: modules,
// items, expressions, patterns, and types. Every node carries a Span; the
// parser invariant is that a node's span covers every child's span.
package ast

import (
	"github.com/vaislang/vais/internal/lexer"
	"github.com/vaislang/vais/internal/span"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	Span() span.Span
}

// Item is a top-level declaration.
type Item interface {
	Node
	itemNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a block statement (AILANG-style languages are expression-heavy;
// this core still distinguishes a bare ExprStmt from a let-binding).
type Stmt interface {
	Node
	stmtNode()
}

// Pattern is a match/let pattern.
type Pattern interface {
	Node
	patternNode()
}

// Type is a type annotation as written in source (unresolved).
type Type interface {
	Node
	typeNode()
}

// Base carries the span every node embeds, giving it Span() for free.
type Base struct{ Sp span.Span }

func (b Base) Span() span.Span { return b.Sp }

// ---------------------------------------------------------------------
// Module
// ---------------------------------------------------------------------

// Module owns every item parsed across one compilation job, plus a map
// from source file path to the indices of items that file contributed.
// The parser fills the map; nothing in the orchestrator reads it.
type Module struct {
	Base
	Items     []Item
	FileItems map[string][]int // file path -> indices into Items
}

// Visibility is a declaration's exposure.
type Visibility int

const (
	VisPrivate Visibility = iota
	VisPublic
)

// OwnershipMode is how a parameter receives its argument.
type OwnershipMode int

const (
	OwnByValue OwnershipMode = iota
	OwnByRef
	OwnByMutRef
)

// Variance of a generic parameter.
type Variance int

const (
	VarianceInvariant Variance = iota
	VarianceCovariant
	VarianceContravariant
)

// GenericParam is one <T: Bound1 + Bound2> entry on a generic item.
type GenericParam struct {
	Name     string
	Bounds   []string
	Variance Variance
}

// WhereClause constrains a generic parameter beyond its inline bounds.
type WhereClause struct {
	Param  string
	Bounds []string
}

// Param is one function parameter.
type Param struct {
	Name      string
	Ownership OwnershipMode
	Mutable   bool
	Type      Type // nil if omitted/inferred
	Default   Expr // nil if none
	Vararg    bool
	Sp        span.Span
}

// FieldDecl is one struct/variant field.
type FieldDecl struct {
	Name string
	Type Type
	Sp   span.Span
}

// FuncBody is either a single expression body or a block of statements.
type FuncBody struct {
	Expr  Expr   // set when the body is `= expr`
	Block *Block // set when the body is `{ ... }`
}

// Function is a top-level or impl-method function declaration.
type Function struct {
	Base
	Name       string
	Generics   []GenericParam
	Params     []Param
	ReturnType Type
	Body       FuncBody
	Attributes []string
	Visibility Visibility
	Async      bool
	Where      []WhereClause
}

func (*Function) itemNode() {}

// Struct is a named record type declaration.
type Struct struct {
	Base
	Name       string
	Generics   []GenericParam
	Fields     []FieldDecl
	Visibility Visibility
	Attributes []string
}

func (*Struct) itemNode() {}

// EnumVariant is one tagged-sum case: a name plus optional positional fields.
type EnumVariant struct {
	Name   string
	Fields []FieldDecl
	Sp     span.Span
}

// Enum is a tagged-union declaration.
type Enum struct {
	Base
	Name       string
	Generics   []GenericParam
	Variants   []EnumVariant
	Visibility Visibility
	Attributes []string
}

func (*Enum) itemNode() {}

// Union mirrors Enum at the item level, and the checker registers it the
// same way: a nominal type whose variants are constructors. The type
// system has no separate union kind.
type Union struct {
	Base
	Name       string
	Generics   []GenericParam
	Variants   []EnumVariant
	Visibility Visibility
}

func (*Union) itemNode() {}

// TraitMethodSig is one required-method signature inside a trait body.
type TraitMethodSig struct {
	Name       string
	Params     []Param
	ReturnType Type
	Default    *FuncBody // non-nil if the trait provides a default body
	Sp         span.Span
}

// Trait declares a set of methods types may implement.
type Trait struct {
	Base
	Name     string
	Generics []GenericParam
	Methods  []TraitMethodSig
}

func (*Trait) itemNode() {}

// Impl implements a trait (or provides inherent methods) for a target type.
type Impl struct {
	Base
	TraitName  string // "" for an inherent impl
	Generics   []GenericParam
	TargetType Type
	IsNegative bool // `impl !Trait for T`
	Methods    []*Function
}

func (*Impl) itemNode() {}

// Const is a compile-time constant.
type Const struct {
	Base
	Name  string
	Type  Type
	Value Expr
}

func (*Const) itemNode() {}

// Global is a mutable (or immutable) module-level variable.
type Global struct {
	Base
	Name    string
	Type    Type
	Value   Expr
	Mutable bool
}

func (*Global) itemNode() {}

// TypeAlias binds a name to another type expression.
type TypeAlias struct {
	Base
	Name     string
	Generics []GenericParam
	Aliased  Type
}

func (*TypeAlias) itemNode() {}

// Use imports symbols from another module. Symbols is empty for a
// whole-module import.
type Use struct {
	Base
	Path    string
	Symbols []string
}

func (*Use) itemNode() {}

// ExternBlock declares foreign-function signatures under a calling
// convention ABI (e.g. "C").
type ExternBlock struct {
	Base
	ABI   string
	Funcs []TraitMethodSig
}

func (*ExternBlock) itemNode() {}

// MacroRule is one `(pattern) => { template }` rule of a macro definition.
type MacroRule struct {
	Pattern  []lexer.Token
	Template []lexer.Token
	Sp       span.Span
}

// Macro is a macro_rules!-style definition collected before expansion.
type Macro struct {
	Base
	Name  string
	Rules []MacroRule
}

func (*Macro) itemNode() {}

// ErrorItem is the recovery sentinel: a top-level item the parser could
// not make sense of. It carries the diagnostic message and the exact
// tokens skipped while resynchronizing.
type ErrorItem struct {
	Base
	Message string
	Skipped []lexer.Token
}

func (*ErrorItem) itemNode() {}
