package ast

import (
	"strings"

	"github.com/problang/stanfront/core/tokens"
)

// Expr is implemented by every expression node. Traversal happens through
// Accept, which double-dispatches to the matching ExprVisitor method.
type Expr interface {
	Accept(v ExprVisitor) any
	String() string
}

// ExprVisitor has one method per concrete expression node. Downstream
// consumers (printers, interpreters, compilers) implement this interface;
// adding a node here is a compile-time break for every consumer, which is
// intended.
type ExprVisitor interface {
	VisitLiteral(e *Literal) any
	VisitUnary(e *Unary) any
	VisitArithmeticBinary(e *ArithmeticBinary) any
	VisitTernary(e *Ternary) any
	VisitFunctionApplication(e *FunctionApplication) any
	VisitFunctionConditionalApplication(e *FunctionConditionalApplication) any
	VisitIndexing(e *Indexing) any
	VisitSlice(e *Slice) any
	VisitVariable(e *Variable) any
	VisitParenthesis(e *Parenthesis) any
}

// Literal wraps a single literal token (string, int, real or imaginary).
type Literal struct {
	Token tokens.Token
}

func (e *Literal) Accept(v ExprVisitor) any { return v.VisitLiteral(e) }

func (e *Literal) String() string { return e.Token.Lexeme }

// Unary is a prefix operation: !x, -x, +x.
type Unary struct {
	Operator tokens.Token
	Right    Expr
}

func (e *Unary) Accept(v ExprVisitor) any { return v.VisitUnary(e) }

func (e *Unary) String() string { return e.Operator.Lexeme + e.Right.String() }

// ArithmeticBinary is any binary infix operation, arithmetic or logical.
type ArithmeticBinary struct {
	Left     Expr
	Operator tokens.Token
	Right    Expr
}

func (e *ArithmeticBinary) Accept(v ExprVisitor) any { return v.VisitArithmeticBinary(e) }

func (e *ArithmeticBinary) String() string {
	return e.Left.String() + " " + e.Operator.Lexeme + " " + e.Right.String()
}

// Ternary is the conditional operator a ? b : c. Both operator tokens are
// kept so diagnostics can point at either.
type Ternary struct {
	Left          Expr
	LeftOperator  tokens.Token // ?
	Middle        Expr
	RightOperator tokens.Token // :
	Right         Expr
}

func (e *Ternary) Accept(v ExprVisitor) any { return v.VisitTernary(e) }

func (e *Ternary) String() string {
	return e.Left.String() + " ? " + e.Middle.String() + " : " + e.Right.String()
}

// FunctionApplication is a call f(a, b, c). ClosingParen carries the
// position of the ')' for error messages about the call as a whole.
type FunctionApplication struct {
	Callee       Expr
	ClosingParen tokens.Token
	Arguments    []Expr
}

func (e *FunctionApplication) Accept(v ExprVisitor) any { return v.VisitFunctionApplication(e) }

func (e *FunctionApplication) String() string {
	args := make([]string, len(e.Arguments))
	for i, a := range e.Arguments {
		args[i] = a.String()
	}
	return e.Callee.String() + "(" + strings.Join(args, ", ") + ")"
}

// FunctionConditionalApplication is the call form f(y | a, b) used with
// distribution functions: Outcome is the expression before the bar,
// Parameters the ones after it.
type FunctionConditionalApplication struct {
	Callee     Expr
	Outcome    Expr
	Parameters []Expr
}

func (e *FunctionConditionalApplication) Accept(v ExprVisitor) any {
	return v.VisitFunctionConditionalApplication(e)
}

func (e *FunctionConditionalApplication) String() string {
	params := make([]string, len(e.Parameters))
	for i, p := range e.Parameters {
		params[i] = p.String()
	}
	return e.Callee.String() + "(" + e.Outcome.String() + " | " + strings.Join(params, ", ") + ")"
}

// Indexing is a bracketed index list a[i, j]. Chained indexing (a[i][j])
// nests an Indexing as the callee of another.
type Indexing struct {
	Callee         Expr
	ClosingBracket tokens.Token
	Indices        []Expr
}

func (e *Indexing) Accept(v ExprVisitor) any { return v.VisitIndexing(e) }

func (e *Indexing) String() string {
	idx := make([]string, len(e.Indices))
	for i, x := range e.Indices {
		idx[i] = x.String()
	}
	return e.Callee.String() + "[" + strings.Join(idx, ", ") + "]"
}

// Slice is a ':'-separated range inside an index list. Either bound may be
// nil: a[:], a[1:], a[:n].
type Slice struct {
	Left  Expr
	Right Expr
}

func (e *Slice) Accept(v ExprVisitor) any { return v.VisitSlice(e) }

func (e *Slice) String() string {
	var b strings.Builder
	if e.Left != nil {
		b.WriteString(e.Left.String())
	}
	b.WriteString(":")
	if e.Right != nil {
		b.WriteString(e.Right.String())
	}
	return b.String()
}

// Variable is a bare identifier reference.
type Variable struct {
	Identifier tokens.Token
}

func (e *Variable) Accept(v ExprVisitor) any { return v.VisitVariable(e) }

func (e *Variable) String() string { return e.Identifier.Lexeme }

// Parenthesis preserves explicit grouping so the tree can be rendered back
// without re-deriving precedence.
type Parenthesis struct {
	Inner Expr
}

func (e *Parenthesis) Accept(v ExprVisitor) any { return v.VisitParenthesis(e) }

func (e *Parenthesis) String() string { return "(" + e.Inner.String() + ")" }
