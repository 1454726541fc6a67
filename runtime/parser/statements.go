package parser

import (
	"fmt"
	"slices"

	"github.com/problang/stanfront/core/ast"
	"github.com/problang/stanfront/core/tokens"
)

// varConstraints collects the optional <...> clause of a declaration.
type varConstraints struct {
	lower      ast.Expr
	upper      ast.Expr
	offset     ast.Expr
	multiplier ast.Expr
}

// parseDeclaration parses a variable declaration. The type token has
// already been consumed by the caller.
func (p *Parser) parseDeclaration() (*ast.Declaration, error) {
	dtype := p.previous()

	constraints, err := p.parseConstraintClause(dtype)
	if err != nil {
		return nil, err
	}

	typeDims, err := p.parseTypeDims(dtype.Type)
	if err != nil {
		return nil, err
	}

	identifier, err := p.consume(tokens.IDENTIFIER, "Expect identifier in declaration.")
	if err != nil {
		return nil, err
	}

	arrayDims, err := p.parseArrayDims()
	if err != nil {
		return nil, err
	}

	var initializer ast.Expr
	if p.match(tokens.ASSIGN) {
		initializer, err = p.ParseExpression()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.consume(tokens.SEMICOLON, "Expect ';' after declaration."); err != nil {
		return nil, err
	}

	return &ast.Declaration{
		Dtype:       dtype,
		Identifier:  identifier,
		TypeDims:    typeDims,
		ArrayDims:   arrayDims,
		Lower:       constraints.lower,
		Upper:       constraints.upper,
		Offset:      constraints.offset,
		Multiplier:  constraints.multiplier,
		Initializer: initializer,
	}, nil
}

// parseDeclarationNoAssign parses a declaration and rejects an initializer,
// for the data and parameters blocks where initialization is structurally
// forbidden.
func (p *Parser) parseDeclarationNoAssign(errMsgIfInit string) (*ast.Declaration, error) {
	declaration, err := p.parseDeclaration()
	if err != nil {
		return nil, err
	}
	if declaration.Initializer != nil {
		return nil, p.errorAt(declaration.Identifier, errMsgIfInit)
	}
	return declaration, nil
}

// parseConstraintClause parses an optional <...> clause. The clause form
// (lower/upper vs offset/multiplier) is gated jointly by the leading
// keyword and the declared type.
func (p *Parser) parseConstraintClause(dtype tokens.Token) (varConstraints, error) {
	var constraints varConstraints
	if !p.match(tokens.LABRACK) {
		return constraints, nil
	}

	switch {
	case p.checkAny(tokens.OFFSET, tokens.MULTIPLIER) &&
		slices.Contains(offsetMultiplierConstraintVarTypes, dtype.Type):
		if err := p.parseConstraintPair(tokens.OFFSET, tokens.MULTIPLIER,
			&constraints.offset, &constraints.multiplier); err != nil {
			return constraints, err
		}
	case p.checkAny(tokens.LOWER, tokens.UPPER) &&
		slices.Contains(lowerUpperConstraintVarTypes, dtype.Type):
		if err := p.parseConstraintPair(tokens.LOWER, tokens.UPPER,
			&constraints.lower, &constraints.upper); err != nil {
			return constraints, err
		}
	default:
		return constraints, p.errorAt(p.peek(),
			"Expected multiplier, offset, lower, upper.")
	}

	if _, err := p.consume(tokens.RABRACK, "Expect '>' after var constraints."); err != nil {
		return constraints, err
	}
	return constraints, nil
}

// parseConstraintPair parses one or two `keyword = expr` entries in either
// order. Bounds are parsed at the additive level so the closing '>' is not
// swallowed as a comparison. Defining the same keyword twice is an error.
func (p *Parser) parseConstraintPair(ttype0, ttype1 tokens.TokenType, slot0, slot1 *ast.Expr) error {
	for {
		if !p.matchAny(ttype0, ttype1) {
			return p.errorAt(p.peek(), fmt.Sprintf("Expected '%s' or '%s', but found '%s'.",
				keywordSpellings[ttype0], keywordSpellings[ttype1], p.peek().Lexeme))
		}
		modifier := p.previous()
		name := keywordSpellings[modifier.Type]

		if _, err := p.consume(tokens.ASSIGN, fmt.Sprintf("Expect '=' after %s.", name)); err != nil {
			return err
		}

		slot := slot0
		if modifier.Type == ttype1 {
			slot = slot1
		}
		if *slot != nil {
			return p.errorAt(modifier, fmt.Sprintf("Multiple definition of %s.", name))
		}

		value, err := p.parsePrecedence5()
		if err != nil {
			return err
		}
		*slot = value

		if !p.match(tokens.COMMA) {
			return nil
		}
	}
}

// parseTypeDims parses the bracketed dimensions intrinsic to a type: none
// for scalars, one for vector-like types, two for matrix, one or two for
// cholesky_factor_cov.
func (p *Parser) parseTypeDims(ttype tokens.TokenType) ([]ast.Expr, error) {
	var typeDims []ast.Expr

	switch {
	case slices.Contains(oneDimVarTypes, ttype):
		if _, err := p.consume(tokens.LBRACK, "Expected '['."); err != nil {
			return nil, err
		}
		dim, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		typeDims = append(typeDims, dim)
		if _, err := p.consume(tokens.RBRACK, "Expected ']'."); err != nil {
			return nil, err
		}

	case slices.Contains(twoDimVarTypes, ttype):
		if _, err := p.consume(tokens.LBRACK, "Expected '['."); err != nil {
			return nil, err
		}
		rows, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(tokens.COMMA, "Expected ','."); err != nil {
			return nil, err
		}
		cols, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		typeDims = append(typeDims, rows, cols)
		if _, err := p.consume(tokens.RBRACK, "Expected ']'."); err != nil {
			return nil, err
		}

	case slices.Contains(optTwoDimVarTypes, ttype):
		if _, err := p.consume(tokens.LBRACK, "Expected '['."); err != nil {
			return nil, err
		}
		dim, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		typeDims = append(typeDims, dim)
		if p.match(tokens.COMMA) {
			second, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			typeDims = append(typeDims, second)
		}
		if _, err := p.consume(tokens.RBRACK, "Expected ']'."); err != nil {
			return nil, err
		}
	}

	return typeDims, nil
}

// parseArrayDims parses the optional bracketed array dimensions after the
// identifier. An empty list inside the brackets is an error.
func (p *Parser) parseArrayDims() ([]ast.Expr, error) {
	var arrayDims []ast.Expr

	if p.match(tokens.LBRACK) {
		for {
			dim, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			arrayDims = append(arrayDims, dim)

			if !p.match(tokens.COMMA) {
				break
			}
		}

		if _, err := p.consume(tokens.RBRACK, "Expected ']' after array dimensions."); err != nil {
			return nil, err
		}
	}

	return arrayDims, nil
}

// ParseStatement parses a single statement starting at the cursor.
func (p *Parser) ParseStatement() (ast.Stmt, error) {
	switch {
	case p.match(tokens.BREAK):
		keyword := p.previous()
		if _, err := p.consume(tokens.SEMICOLON, "Expect ';' after 'break'."); err != nil {
			return nil, err
		}
		return &ast.Break{Keyword: keyword}, nil

	case p.match(tokens.CONTINUE):
		keyword := p.previous()
		if _, err := p.consume(tokens.SEMICOLON, "Expect ';' after 'continue'."); err != nil {
			return nil, err
		}
		return &ast.Continue{Keyword: keyword}, nil

	case p.match(tokens.RETURN):
		keyword := p.previous()
		var value ast.Expr
		if !p.match(tokens.SEMICOLON) {
			var err error
			value, err = p.ParseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(tokens.SEMICOLON, "Expect ';' after return value."); err != nil {
				return nil, err
			}
		}
		return &ast.Return{Keyword: keyword, Value: value}, nil

	case p.match(tokens.IF):
		if _, err := p.consume(tokens.LPAREN, "Expect '(' after 'if'."); err != nil {
			return nil, err
		}
		condition, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(tokens.RPAREN, "Expect ')' after condition."); err != nil {
			return nil, err
		}
		consequent, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		var alternative ast.Stmt
		if p.match(tokens.ELSE) {
			alternative, err = p.ParseStatement()
			if err != nil {
				return nil, err
			}
		}
		return &ast.IfElse{Condition: condition, Consequent: consequent, Alternative: alternative}, nil

	case p.match(tokens.WHILE):
		if _, err := p.consume(tokens.LPAREN, "Expect '(' after 'while'."); err != nil {
			return nil, err
		}
		condition, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(tokens.RPAREN, "Expect ')' after condition."); err != nil {
			return nil, err
		}
		body, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		return &ast.While{Condition: condition, Body: body}, nil

	case p.match(tokens.FOR):
		if _, err := p.consume(tokens.LPAREN, "Expect '(' after 'for'."); err != nil {
			return nil, err
		}
		identifier, err := p.consume(tokens.IDENTIFIER, "Expect identifier after '('.")
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(tokens.IN, "Expect 'in' after identifier."); err != nil {
			return nil, err
		}
		begin, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(tokens.COLON, "Expect ':' after expression."); err != nil {
			return nil, err
		}
		end, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(tokens.RPAREN, "Expect ')'."); err != nil {
			return nil, err
		}
		body, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		return &ast.For{Identifier: identifier, Begin: begin, End: end, Body: body}, nil

	case p.match(tokens.PRINT):
		expressions, err := p.parseParenthesizedList("print")
		if err != nil {
			return nil, err
		}
		return &ast.Print{Expressions: expressions}, nil

	case p.match(tokens.REJECT):
		expressions, err := p.parseParenthesizedList("reject")
		if err != nil {
			return nil, err
		}
		return &ast.Reject{Expressions: expressions}, nil

	case p.match(tokens.INCREMENTLOGPROB):
		keyword := p.previous()
		if _, err := p.consume(tokens.LPAREN, "Expect '(' after 'increment_log_prob'."); err != nil {
			return nil, err
		}
		value, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(tokens.RPAREN, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		if _, err := p.consume(tokens.SEMICOLON, "Expect ';' after statement."); err != nil {
			return nil, err
		}
		return &ast.IncrementLogProb{Keyword: keyword, Value: value}, nil

	case p.match(tokens.TARGET):
		if _, err := p.consume(tokens.PLUSASSIGN, "Expect '+=' after 'target'."); err != nil {
			return nil, err
		}
		value, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(tokens.SEMICOLON, "Expect ';' after expression."); err != nil {
			return nil, err
		}
		return &ast.TargetPlusAssign{Value: value}, nil

	case p.match(tokens.LBRACE):
		return p.parseBlock()

	case p.match(tokens.SEMICOLON):
		return &ast.Empty{Semicolon: p.previous()}, nil
	}

	// Expression-led statement: assignment or sampling.
	expression, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	if p.matchAny(assignmentOps...) {
		operator := p.previous()
		value, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(tokens.SEMICOLON, "Expect ';' after assignment."); err != nil {
			return nil, err
		}
		return &ast.Assign{LHS: expression, Operator: operator, Value: value}, nil
	}

	if _, err := p.consume(tokens.TILDE, "Invalid statement."); err != nil {
		return nil, err
	}
	identifier, err := p.consume(tokens.IDENTIFIER, "Expect identifier after '~'.")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(tokens.LPAREN, "Expect '('."); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for {
		arg, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(tokens.COMMA) {
			break
		}
	}
	if _, err := p.consume(tokens.RPAREN, "Expect ')'."); err != nil {
		return nil, err
	}

	// Truncation clauses (T[...]) are a known grammar gap and are rejected
	// here like any other stray token before ';'.
	if _, err := p.consume(tokens.SEMICOLON, "Expect ';'."); err != nil {
		return nil, err
	}

	return &ast.Tilde{LHS: expression, Identifier: identifier, Args: args}, nil
}

// parseParenthesizedList parses '(' expr (',' expr)* ')' ';' for print and
// reject statements.
func (p *Parser) parseParenthesizedList(keyword string) ([]ast.Expr, error) {
	if _, err := p.consume(tokens.LPAREN, fmt.Sprintf("Expect '(' after '%s'.", keyword)); err != nil {
		return nil, err
	}

	first, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	expressions := []ast.Expr{first}

	for p.match(tokens.COMMA) {
		next, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		expressions = append(expressions, next)
	}

	if _, err := p.consume(tokens.RPAREN, "Expect ')' after expression."); err != nil {
		return nil, err
	}
	if _, err := p.consume(tokens.SEMICOLON, "Expect ';' after statement."); err != nil {
		return nil, err
	}
	return expressions, nil
}

// parseBlock parses a block body; the opening '{' has been consumed.
// Declarations are consumed greedily first and cannot reappear after the
// first statement.
func (p *Parser) parseBlock() (*ast.Block, error) {
	var declarations []*ast.Declaration
	for p.matchAny(varTypes...) {
		declaration, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		declarations = append(declarations, declaration)
	}

	var statements []ast.Stmt
	for !p.match(tokens.RBRACE) {
		statement, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, statement)
	}

	return &ast.Block{Declarations: declarations, Statements: statements}, nil
}
