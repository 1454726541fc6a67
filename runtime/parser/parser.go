// Package parser builds a Stan AST from the scanner's token stream.
//
// The parser is a recursive-descent machine over an explicit token cursor:
// one token of lookahead, no backtracking, consumed tokens are never
// un-consumed. Expression parsing is an 11-level precedence climber that
// follows Stan's published operator table. The first error aborts the
// parse; callers must treat any error as total failure of the invocation.
package parser

import (
	"slices"

	"github.com/problang/stanfront/core/ast"
	"github.com/problang/stanfront/core/tokens"
)

// Data types with no type dimensions.
var scalarVarTypes = []tokens.TokenType{
	tokens.INT,
	tokens.REAL,
}

// Data types with exactly one type dimension.
var oneDimVarTypes = []tokens.TokenType{
	tokens.VECTOR,
	tokens.ORDERED,
	tokens.POSITIVEORDERED,
	tokens.SIMPLEX,
	tokens.UNITVECTOR,
	tokens.ROWVECTOR,
	tokens.CHOLESKYFACTORCORR,
	tokens.CORRMATRIX,
	tokens.COVMATRIX,
}

// Data types with exactly two type dimensions.
var twoDimVarTypes = []tokens.TokenType{tokens.MATRIX}

// Data types with one or two type dimensions.
var optTwoDimVarTypes = []tokens.TokenType{tokens.CHOLESKYFACTORCOV}

// All data types that may open a declaration.
var varTypes = joinTypes(scalarVarTypes, oneDimVarTypes, twoDimVarTypes, optTwoDimVarTypes)

// Basic types allowed in custom function signatures.
var basicTypes = []tokens.TokenType{
	tokens.INT,
	tokens.REAL,
	tokens.COMPLEX,
	tokens.VECTOR,
	tokens.ROWVECTOR,
	tokens.MATRIX,
}

// Token types that carry a literal value.
var literalTypes = []tokens.TokenType{
	tokens.STRING,
	tokens.INTNUMERAL,
	tokens.REALNUMERAL,
	tokens.IMAGNUMERAL,
}

// Types that may open a custom function return type.
var returnTypeTypes = joinTypes([]tokens.TokenType{tokens.VOID, tokens.ARRAY}, basicTypes)

// Data types that may carry lower/upper constraints.
var lowerUpperConstraintVarTypes = []tokens.TokenType{
	tokens.INT,
	tokens.REAL,
	tokens.VECTOR,
	tokens.ROWVECTOR,
	tokens.MATRIX,
}

// Data types that may carry offset/multiplier constraints.
var offsetMultiplierConstraintVarTypes = []tokens.TokenType{
	tokens.REAL,
	tokens.VECTOR,
	tokens.ROWVECTOR,
	tokens.MATRIX,
}

var assignmentOps = []tokens.TokenType{
	tokens.ASSIGN,
	tokens.ARROWASSIGN,
	tokens.PLUSASSIGN,
	tokens.MINUSASSIGN,
	tokens.TIMESASSIGN,
	tokens.DIVIDEASSIGN,
	tokens.ELTTIMESASSIGN,
	tokens.ELTDIVIDEASSIGN,
}

func joinTypes(groups ...[]tokens.TokenType) []tokens.TokenType {
	var all []tokens.TokenType
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}

// Parser consumes a token stream produced by the scanner. A Parser owns its
// private cursor; nothing is shared between instances.
type Parser struct {
	tokens  []tokens.Token
	current int
	source  string // for error snippets; optional
}

// Option configures a Parser.
type Option func(*Parser)

// WithSource attaches the original source text so parse errors can render
// a code snippet with a caret.
func WithSource(source string) Option {
	return func(p *Parser) { p.source = source }
}

// New creates a Parser over the given token stream. The stream must be
// terminated by an EOF token, as produced by the scanner.
func New(tokenList []tokens.Token, opts ...Option) *Parser {
	p := &Parser{tokens: slices.Clone(tokenList)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// --- cursor primitives ---

func (p *Parser) peek() tokens.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() tokens.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == tokens.EOF
}

// popToken returns the current token and advances, except at EOF which is
// sticky.
func (p *Parser) popToken() tokens.Token {
	token := p.peek()
	if !p.isAtEnd() {
		p.current++
	}
	return token
}

func (p *Parser) checkAny(ttypes ...tokens.TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return slices.Contains(ttypes, p.peek().Type)
}

func (p *Parser) check(ttype tokens.TokenType) bool {
	return p.checkAny(ttype)
}

func (p *Parser) matchAny(ttypes ...tokens.TokenType) bool {
	if p.checkAny(ttypes...) {
		p.popToken()
		return true
	}
	return false
}

func (p *Parser) match(ttype tokens.TokenType) bool {
	return p.matchAny(ttype)
}

// consumeAny consumes a token of one of the required types or fails with a
// ParseError. An empty message selects the auto-generated "Expected
// {types}." form; a misspelled identifier additionally gets a fuzzy
// keyword suggestion.
func (p *Parser) consumeAny(ttypes []tokens.TokenType, message string) (tokens.Token, error) {
	if p.checkAny(ttypes...) {
		return p.popToken(), nil
	}

	got := p.peek()
	err := &ParseError{
		Token:    got,
		Message:  message,
		Expected: ttypes,
		Source:   p.source,
	}
	if got.Type == tokens.IDENTIFIER {
		err.Suggestion = closestKeyword(got.Lexeme, ttypes)
	}
	return tokens.Token{}, err
}

func (p *Parser) consume(ttype tokens.TokenType, message string) (tokens.Token, error) {
	return p.consumeAny([]tokens.TokenType{ttype}, message)
}

// errorAt builds a ParseError for the given token.
func (p *Parser) errorAt(token tokens.Token, message string) error {
	return &ParseError{Token: token, Message: message, Source: p.source}
}

// --- expression grammar ---

// ParseExpression parses a single expression starting at the cursor. On
// error the cursor is left at the point of failure.
func (p *Parser) ParseExpression() (ast.Expr, error) {
	return p.parsePrecedence10()
}

// parsePrecedence10 handles the `? :` conditional operator, ternary infix,
// right associative: a ? b : c ? d : e groups as a ? b : (c ? d : e).
func (p *Parser) parsePrecedence10() (ast.Expr, error) {
	expression, err := p.parsePrecedence9()
	if err != nil {
		return nil, err
	}

	for p.match(tokens.QMARK) {
		leftOperator := p.previous()
		middle, err := p.parsePrecedence10()
		if err != nil {
			return nil, err
		}
		rightOperator, err := p.consume(tokens.COLON, "")
		if err != nil {
			return nil, err
		}
		right, err := p.parsePrecedence10()
		if err != nil {
			return nil, err
		}
		expression = &ast.Ternary{
			Left:          expression,
			LeftOperator:  leftOperator,
			Middle:        middle,
			RightOperator: rightOperator,
			Right:         right,
		}
	}

	return expression, nil
}

// parsePrecedence9 handles `||`, binary infix, left associative.
func (p *Parser) parsePrecedence9() (ast.Expr, error) {
	return p.parseLeftAssociative(p.parsePrecedence8, tokens.OR)
}

// parsePrecedence8 handles `&&`, binary infix, left associative.
func (p *Parser) parsePrecedence8() (ast.Expr, error) {
	return p.parseLeftAssociative(p.parsePrecedence7, tokens.AND)
}

// parsePrecedence7 handles `==` and `!=`, binary infix, left associative.
func (p *Parser) parsePrecedence7() (ast.Expr, error) {
	return p.parseLeftAssociative(p.parsePrecedence6, tokens.EQUALS, tokens.NEQUALS)
}

// parsePrecedence6 handles `<`, `<=`, `>` and `>=`, binary infix, left
// associative.
func (p *Parser) parsePrecedence6() (ast.Expr, error) {
	return p.parseLeftAssociative(p.parsePrecedence5,
		tokens.LABRACK, tokens.LEQ, tokens.RABRACK, tokens.GEQ)
}

// parsePrecedence5 handles `+` and `-`, binary infix, left associative.
func (p *Parser) parsePrecedence5() (ast.Expr, error) {
	return p.parseLeftAssociative(p.parsePrecedence4, tokens.PLUS, tokens.MINUS)
}

// parsePrecedence4 handles `*`, `/`, `%` and `%/%`, binary infix, left
// associative.
func (p *Parser) parsePrecedence4() (ast.Expr, error) {
	return p.parseLeftAssociative(p.parsePrecedence3,
		tokens.TIMES, tokens.DIVIDE, tokens.MODULO, tokens.IDIVIDE)
}

// parsePrecedence3 handles `\` left division, binary infix, left
// associative.
func (p *Parser) parsePrecedence3() (ast.Expr, error) {
	return p.parseLeftAssociative(p.parsePrecedence2, tokens.LDIVIDE)
}

// parsePrecedence2 handles `.*` and `./`, binary infix, left associative.
func (p *Parser) parsePrecedence2() (ast.Expr, error) {
	return p.parseLeftAssociative(p.parsePrecedence1, tokens.ELTTIMES, tokens.ELTDIVIDE)
}

// parsePrecedence1 handles the unary prefix operators `!`, `-` and `+`,
// which bind by recursing into this level.
func (p *Parser) parsePrecedence1() (ast.Expr, error) {
	if p.matchAny(tokens.BANG, tokens.MINUS, tokens.PLUS) {
		operator := p.previous()
		right, err := p.parsePrecedence1()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Operator: operator, Right: right}, nil
	}
	return p.parsePrecedence05()
}

// parsePrecedence05 handles `^` and `.^`, binary infix, right associative.
func (p *Parser) parsePrecedence05() (ast.Expr, error) {
	expression, err := p.parsePrecedence0()
	if err != nil {
		return nil, err
	}

	for p.matchAny(tokens.HAT, tokens.ELTPOW) {
		operator := p.previous()
		right, err := p.parsePrecedence05()
		if err != nil {
			return nil, err
		}
		expression = &ast.ArithmeticBinary{Left: expression, Operator: operator, Right: right}
	}

	return expression, nil
}

// parsePrecedence0 handles the postfix forms: `()` function application and
// `[]` indexing. Indexing chains (a[i][j]); a call may be followed by
// index brackets (f(x)[1]).
func (p *Parser) parsePrecedence0() (ast.Expr, error) {
	expression, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	if p.match(tokens.LPAREN) {
		expression, err = p.completeFunctionApplication(expression)
		if err != nil {
			return nil, err
		}
	}
	for p.match(tokens.LBRACK) {
		expression, err = p.completeIndexing(expression)
		if err != nil {
			return nil, err
		}
	}

	return expression, nil
}

// completeFunctionApplication finishes a call once the callee and '(' have
// been consumed. A '|' after the first argument switches to the
// conditional form f(y | a, b).
func (p *Parser) completeFunctionApplication(callee ast.Expr) (ast.Expr, error) {
	var arguments []ast.Expr
	var outcome ast.Expr

	if !p.check(tokens.RPAREN) {
		first, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		arguments = append(arguments, first)

		if p.match(tokens.BAR) {
			outcome = first
			arguments = nil

			if !p.check(tokens.RPAREN) {
				arg, err := p.ParseExpression()
				if err != nil {
					return nil, err
				}
				arguments = append(arguments, arg)
			}
		}

		for p.match(tokens.COMMA) {
			arg, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			arguments = append(arguments, arg)
		}
	}

	paren, err := p.consume(tokens.RPAREN, "Expect ')' after arguments.")
	if err != nil {
		return nil, err
	}

	if outcome != nil {
		return &ast.FunctionConditionalApplication{
			Callee:     callee,
			Outcome:    outcome,
			Parameters: arguments,
		}, nil
	}
	return &ast.FunctionApplication{
		Callee:       callee,
		ClosingParen: paren,
		Arguments:    arguments,
	}, nil
}

// completeIndexing finishes an index list once the callee and '[' have
// been consumed.
func (p *Parser) completeIndexing(callee ast.Expr) (ast.Expr, error) {
	var indices []ast.Expr

	if !p.check(tokens.RBRACK) {
		index, err := p.parseSlice()
		if err != nil {
			return nil, err
		}
		indices = append(indices, index)

		for p.match(tokens.COMMA) {
			index, err := p.parseSlice()
			if err != nil {
				return nil, err
			}
			indices = append(indices, index)
		}
	}

	bracket, err := p.consume(tokens.RBRACK, "Expect ']' after indices.")
	if err != nil {
		return nil, err
	}

	return &ast.Indexing{Callee: callee, ClosingBracket: bracket, Indices: indices}, nil
}

// parseSlice parses one index-list entry: a plain expression or a
// ':'-bounded range where either bound may be missing (a[:], a[1:], a[:n]).
func (p *Parser) parseSlice() (ast.Expr, error) {
	var left ast.Expr
	if !p.check(tokens.COLON) {
		var err error
		left, err = p.ParseExpression()
		if err != nil {
			return nil, err
		}
	}

	if p.match(tokens.COLON) {
		var right ast.Expr
		if !p.checkAny(tokens.RBRACK, tokens.COMMA) {
			var err error
			right, err = p.ParseExpression()
			if err != nil {
				return nil, err
			}
		}
		return &ast.Slice{Left: left, Right: right}, nil
	}

	return left, nil
}

// parsePrimary parses a literal, a parenthesized expression or a bare
// identifier. Anything else fails with the token's own position as the
// whole diagnostic.
func (p *Parser) parsePrimary() (ast.Expr, error) {
	if p.checkAny(literalTypes...) {
		return &ast.Literal{Token: p.popToken()}, nil
	}

	if p.match(tokens.LPAREN) {
		inner, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(tokens.RPAREN, "Expected ')'."); err != nil {
			return nil, err
		}
		return &ast.Parenthesis{Inner: inner}, nil
	}

	if p.match(tokens.IDENTIFIER) {
		return &ast.Variable{Identifier: p.previous()}, nil
	}

	return nil, p.errorAt(p.peek(), "")
}

// parseLeftAssociative folds `operand (op operand)*` into a left-deep tree.
func (p *Parser) parseLeftAssociative(operand func() (ast.Expr, error), ops ...tokens.TokenType) (ast.Expr, error) {
	expression, err := operand()
	if err != nil {
		return nil, err
	}

	for p.matchAny(ops...) {
		operator := p.previous()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		expression = &ast.ArithmeticBinary{Left: expression, Operator: operator, Right: right}
	}

	return expression, nil
}
