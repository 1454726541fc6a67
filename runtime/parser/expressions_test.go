package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/problang/stanfront/core/ast"
	"github.com/problang/stanfront/core/tokens"
	"github.com/problang/stanfront/runtime/scanner"
)

func scanTokens(t *testing.T, source string) []tokens.Token {
	t.Helper()
	tokenList, err := scanner.New(source).Scan()
	require.NoError(t, err, "scan failed for %q", source)
	return tokenList
}

func parseExpr(t *testing.T, source string) ast.Expr {
	t.Helper()
	p := New(scanTokens(t, source))
	expression, err := p.ParseExpression()
	require.NoError(t, err, "parse failed for %q", source)
	require.True(t, p.isAtEnd(), "trailing tokens after expression in %q", source)
	return expression
}

func TestParser_ExpressionStrings(t *testing.T) {
	// The renderer emits one space around every infix operator and none
	// around postfix forms, so these all round-trip exactly.
	sources := []string{
		"a + b",
		"a - b - c",
		"a + b * c",
		"(a + b) * c",
		"a .* b ./ c",
		"x \\ y",
		"7 %/% 2",
		"a % b",
		"2 ^ 3 ^ 4",
		"x .^ 2",
		"-a",
		"!done",
		"a == b && c != d",
		"x < y || y >= z",
		"cond ? yes : no",
		"f()",
		"f(a, b)",
		"normal_lpdf(y | mu, sigma)",
		"a[1]",
		"a[1, 2]",
		"a[1:n]",
		"a[:n]",
		"a[2:]",
		"a[:]",
		"f(x)[1]",
	}

	for _, source := range sources {
		t.Run(source, func(t *testing.T) {
			require.Equal(t, source, parseExpr(t, source).String())
		})
	}
}

func TestParser_LeftAssociativity(t *testing.T) {
	tests := []struct {
		source   string
		operator string
	}{
		{"a - b - c", "-"},
		{"a / b / c", "/"},
		{"x \\ y \\ z", "\\"},
		{"a .* b .* c", ".*"},
		{"a && b && c", "&&"},
		{"a || b || c", "||"},
		{"a == b == c", "=="},
		{"a < b < c", "<"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			expression := parseExpr(t, tt.source)
			root, ok := expression.(*ast.ArithmeticBinary)
			require.True(t, ok, "want binary root, got %T", expression)
			require.Equal(t, tt.operator, root.Operator.Lexeme)

			// Left-deep: the nested operation hangs off the left child.
			left, ok := root.Left.(*ast.ArithmeticBinary)
			require.True(t, ok, "want binary left child, got %T", root.Left)
			require.Equal(t, tt.operator, left.Operator.Lexeme)
			require.IsType(t, &ast.Variable{}, root.Right)
		})
	}
}

func TestParser_PowerIsRightAssociative(t *testing.T) {
	root, ok := parseExpr(t, "2 ^ 3 ^ 4").(*ast.ArithmeticBinary)
	require.True(t, ok)
	require.Equal(t, "^", root.Operator.Lexeme)

	require.IsType(t, &ast.Literal{}, root.Left)
	right, ok := root.Right.(*ast.ArithmeticBinary)
	require.True(t, ok, "want binary right child, got %T", root.Right)
	require.Equal(t, "3 ^ 4", right.String())
}

func TestParser_TernaryIsRightAssociative(t *testing.T) {
	root, ok := parseExpr(t, "a ? b : c ? d : e").(*ast.Ternary)
	require.True(t, ok)
	require.Equal(t, "a", root.Left.String())
	require.Equal(t, "b", root.Middle.String())

	nested, ok := root.Right.(*ast.Ternary)
	require.True(t, ok, "want nested ternary, got %T", root.Right)
	require.Equal(t, "c ? d : e", nested.String())
}

func TestParser_PrecedenceLayers(t *testing.T) {
	tests := []struct {
		name   string
		source string
		top    string // operator expected at the root
	}{
		{name: "add_over_mul", source: "a + b * c", top: "+"},
		{name: "mul_over_ldivide", source: "a * b \\ c", top: "*"},
		{name: "ldivide_over_elt", source: "a \\ b .* c", top: "\\"},
		{name: "compare_over_add", source: "a + b < c", top: "<"},
		{name: "and_over_compare", source: "a < b && c", top: "&&"},
		{name: "or_over_and", source: "a && b || c", top: "||"},
		{name: "idivide_binds_like_mul", source: "a %/% b + c", top: "+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, ok := parseExpr(t, tt.source).(*ast.ArithmeticBinary)
			require.True(t, ok)
			require.Equal(t, tt.top, root.Operator.Lexeme)
		})
	}
}

func TestParser_UnaryBindsTighterThanBinary(t *testing.T) {
	root, ok := parseExpr(t, "-a + b").(*ast.ArithmeticBinary)
	require.True(t, ok)
	require.Equal(t, "+", root.Operator.Lexeme)
	require.IsType(t, &ast.Unary{}, root.Left)

	nested, ok := parseExpr(t, "!-a").(*ast.Unary)
	require.True(t, ok)
	require.Equal(t, "!", nested.Operator.Lexeme)
	require.IsType(t, &ast.Unary{}, nested.Right)
}

func TestParser_UnaryOverPower(t *testing.T) {
	// Stan binds ^ tighter than unary minus: -2^2 is -(2^2).
	root, ok := parseExpr(t, "-2 ^ 2").(*ast.Unary)
	require.True(t, ok)
	require.IsType(t, &ast.ArithmeticBinary{}, root.Right)
}

func TestParser_FunctionApplication(t *testing.T) {
	t.Run("no_arguments", func(t *testing.T) {
		call, ok := parseExpr(t, "foo()").(*ast.FunctionApplication)
		require.True(t, ok)
		require.Empty(t, call.Arguments)
		require.Equal(t, "foo", call.Callee.String())
	})

	t.Run("nested_calls", func(t *testing.T) {
		call, ok := parseExpr(t, "f(g(x), h(y, z))").(*ast.FunctionApplication)
		require.True(t, ok)
		require.Len(t, call.Arguments, 2)
		require.IsType(t, &ast.FunctionApplication{}, call.Arguments[0])
	})

	t.Run("conditional_form", func(t *testing.T) {
		call, ok := parseExpr(t, "normal_lpdf(y | mu, sigma)").(*ast.FunctionConditionalApplication)
		require.True(t, ok)
		require.Equal(t, "y", call.Outcome.String())
		require.Len(t, call.Parameters, 2)
	})

	t.Run("conditional_with_single_parameter", func(t *testing.T) {
		call, ok := parseExpr(t, "poisson_lpmf(n | lambda)").(*ast.FunctionConditionalApplication)
		require.True(t, ok)
		require.Equal(t, "n", call.Outcome.String())
		require.Len(t, call.Parameters, 1)
	})
}

func TestParser_Indexing(t *testing.T) {
	t.Run("multi_index", func(t *testing.T) {
		indexing, ok := parseExpr(t, "a[i, j]").(*ast.Indexing)
		require.True(t, ok)
		require.Len(t, indexing.Indices, 2)
	})

	t.Run("chained_empty_slices", func(t *testing.T) {
		outer, ok := parseExpr(t, "a[:][:]").(*ast.Indexing)
		require.True(t, ok)
		require.Len(t, outer.Indices, 1)
		outerSlice, ok := outer.Indices[0].(*ast.Slice)
		require.True(t, ok)
		require.Nil(t, outerSlice.Left)
		require.Nil(t, outerSlice.Right)

		inner, ok := outer.Callee.(*ast.Indexing)
		require.True(t, ok, "want nested indexing, got %T", outer.Callee)
		require.Len(t, inner.Indices, 1)
		innerSlice, ok := inner.Indices[0].(*ast.Slice)
		require.True(t, ok)
		require.Nil(t, innerSlice.Left)
		require.Nil(t, innerSlice.Right)
	})

	t.Run("mixed_index_and_slice", func(t *testing.T) {
		indexing, ok := parseExpr(t, "m[1, 2:k]").(*ast.Indexing)
		require.True(t, ok)
		require.Len(t, indexing.Indices, 2)
		require.IsType(t, &ast.Literal{}, indexing.Indices[0])
		require.IsType(t, &ast.Slice{}, indexing.Indices[1])
	})
}

func TestParser_ExpressionErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "empty_input", source: ""},
		{name: "dangling_operator", source: "a +"},
		{name: "unclosed_paren", source: "(a + b"},
		{name: "unclosed_call", source: "f(a, b"},
		{name: "unclosed_index", source: "a[1"},
		{name: "missing_ternary_colon", source: "a ? b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(scanTokens(t, tt.source))
			_, err := p.ParseExpression()
			require.Error(t, err)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
		})
	}
}
