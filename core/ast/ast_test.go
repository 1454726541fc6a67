package ast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/problang/stanfront/core/tokens"
)

func ident(name string) tokens.Token {
	return tokens.Token{Type: tokens.IDENTIFIER, Lexeme: name}
}

func op(ttype tokens.TokenType, lexeme string) tokens.Token {
	return tokens.Token{Type: ttype, Lexeme: lexeme}
}

func TestExprString(t *testing.T) {
	x := &Variable{Identifier: ident("x")}
	y := &Variable{Identifier: ident("y")}
	one := &Literal{Token: tokens.Token{Type: tokens.INTNUMERAL, Lexeme: "1", Literal: int64(1)}}

	tests := []struct {
		name     string
		expr     Expr
		expected string
	}{
		{
			name:     "binary",
			expr:     &ArithmeticBinary{Left: x, Operator: op(tokens.PLUS, "+"), Right: one},
			expected: "x + 1",
		},
		{
			name:     "unary",
			expr:     &Unary{Operator: op(tokens.MINUS, "-"), Right: x},
			expected: "-x",
		},
		{
			name: "ternary",
			expr: &Ternary{
				Left:          x,
				LeftOperator:  op(tokens.QMARK, "?"),
				Middle:        y,
				RightOperator: op(tokens.COLON, ":"),
				Right:         one,
			},
			expected: "x ? y : 1",
		},
		{
			name:     "call",
			expr:     &FunctionApplication{Callee: x, Arguments: []Expr{y, one}},
			expected: "x(y, 1)",
		},
		{
			name:     "call_without_arguments",
			expr:     &FunctionApplication{Callee: x},
			expected: "x()",
		},
		{
			name:     "conditional_call",
			expr:     &FunctionConditionalApplication{Callee: x, Outcome: y, Parameters: []Expr{one}},
			expected: "x(y | 1)",
		},
		{
			name:     "indexing",
			expr:     &Indexing{Callee: x, Indices: []Expr{one, y}},
			expected: "x[1, y]",
		},
		{
			name:     "open_slice",
			expr:     &Indexing{Callee: x, Indices: []Expr{&Slice{}}},
			expected: "x[:]",
		},
		{
			name:     "bounded_slice",
			expr:     &Slice{Left: one, Right: y},
			expected: "1:y",
		},
		{
			name:     "parenthesis",
			expr:     &Parenthesis{Inner: &ArithmeticBinary{Left: x, Operator: op(tokens.PLUS, "+"), Right: y}},
			expected: "(x + y)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.expr.String())
		})
	}
}

func TestStmtString(t *testing.T) {
	x := &Variable{Identifier: ident("x")}
	zero := &Literal{Token: tokens.Token{Type: tokens.INTNUMERAL, Lexeme: "0", Literal: int64(0)}}

	tests := []struct {
		name     string
		stmt     Stmt
		expected string
	}{
		{
			name:     "assign",
			stmt:     &Assign{LHS: x, Operator: op(tokens.ASSIGN, "="), Value: zero},
			expected: "x = 0;",
		},
		{
			name:     "tilde",
			stmt:     &Tilde{LHS: x, Identifier: ident("normal"), Args: []Expr{zero, zero}},
			expected: "x ~ normal(0, 0);",
		},
		{
			name:     "target",
			stmt:     &TargetPlusAssign{Value: x},
			expected: "target += x;",
		},
		{
			name:     "bare_return",
			stmt:     &Return{},
			expected: "return;",
		},
		{
			name:     "return_value",
			stmt:     &Return{Value: x},
			expected: "return x;",
		},
		{
			name:     "for",
			stmt:     &For{Identifier: ident("i"), Begin: zero, End: x, Body: &Break{}},
			expected: "for (i in 0:x) break;",
		},
		{
			name:     "if_else",
			stmt:     &IfElse{Condition: x, Consequent: &Continue{}, Alternative: &Empty{}},
			expected: "if (x) continue; else ;",
		},
		{
			name: "declaration_with_constraint",
			stmt: &Declaration{
				Dtype:      op(tokens.INT, "int"),
				Identifier: ident("J"),
				Lower:      zero,
			},
			expected: "int<lower=0> J;",
		},
		{
			name: "declaration_with_dims_and_initializer",
			stmt: &Declaration{
				Dtype:       op(tokens.VECTOR, "vector"),
				Identifier:  ident("mu"),
				TypeDims:    []Expr{x},
				Initializer: zero,
			},
			expected: "vector[x] mu = 0;",
		},
		{
			name: "function_declaration",
			stmt: &FunctionDeclaration{
				ReturnType: &ReturnTypeDeclaration{Dtype: tokens.REAL, NDims: 1},
				Identifier: ident("f"),
				Args: []*ArgumentDeclaration{
					{Dtype: tokens.ROWVECTOR, Identifier: ident("v")},
				},
			},
			expected: "array[] real f(row_vector v)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.stmt.String())
		})
	}
}

func TestProgramString(t *testing.T) {
	program := &Program{
		Data: &Block{Declarations: []*Declaration{
			{Dtype: op(tokens.INT, "int"), Identifier: ident("N")},
		}},
		Model: &Block{Statements: []Stmt{&Empty{}}},
	}

	rendered := program.String()
	require.Contains(t, rendered, "data {\n  int N;\n}")
	require.Contains(t, rendered, "model {\n  ;\n}")
	require.NotContains(t, rendered, "parameters")
}

// exprKindRecorder visits an expression tree and records which node kinds
// dispatched, proving Accept routes to the matching visitor method.
type exprKindRecorder struct {
	kinds []string
}

func (r *exprKindRecorder) record(kind string, children ...Expr) any {
	r.kinds = append(r.kinds, kind)
	for _, child := range children {
		if child != nil {
			child.Accept(r)
		}
	}
	return nil
}

func (r *exprKindRecorder) VisitLiteral(e *Literal) any { return r.record("literal") }
func (r *exprKindRecorder) VisitUnary(e *Unary) any     { return r.record("unary", e.Right) }
func (r *exprKindRecorder) VisitArithmeticBinary(e *ArithmeticBinary) any {
	return r.record("binary", e.Left, e.Right)
}
func (r *exprKindRecorder) VisitTernary(e *Ternary) any {
	return r.record("ternary", e.Left, e.Middle, e.Right)
}
func (r *exprKindRecorder) VisitFunctionApplication(e *FunctionApplication) any {
	return r.record("call", append([]Expr{e.Callee}, e.Arguments...)...)
}
func (r *exprKindRecorder) VisitFunctionConditionalApplication(e *FunctionConditionalApplication) any {
	return r.record("conditional_call", append([]Expr{e.Callee, e.Outcome}, e.Parameters...)...)
}
func (r *exprKindRecorder) VisitIndexing(e *Indexing) any {
	return r.record("indexing", append([]Expr{e.Callee}, e.Indices...)...)
}
func (r *exprKindRecorder) VisitSlice(e *Slice) any   { return r.record("slice", e.Left, e.Right) }
func (r *exprKindRecorder) VisitVariable(e *Variable) any {
	return r.record("variable")
}
func (r *exprKindRecorder) VisitParenthesis(e *Parenthesis) any {
	return r.record("parenthesis", e.Inner)
}

func TestExprVisitorDispatch(t *testing.T) {
	// f(y | a)[1:] as a hand-built tree.
	tree := &Indexing{
		Callee: &FunctionConditionalApplication{
			Callee:     &Variable{Identifier: ident("f")},
			Outcome:    &Variable{Identifier: ident("y")},
			Parameters: []Expr{&Variable{Identifier: ident("a")}},
		},
		Indices: []Expr{&Slice{
			Left: &Literal{Token: tokens.Token{Type: tokens.INTNUMERAL, Lexeme: "1", Literal: int64(1)}},
		}},
	}

	recorder := &exprKindRecorder{}
	tree.Accept(recorder)

	require.Equal(t, []string{
		"indexing", "conditional_call", "variable", "variable", "variable",
		"slice", "literal",
	}, recorder.kinds)
}
