package parser

import (
	"fmt"

	"github.com/problang/stanfront/core/ast"
	"github.com/problang/stanfront/core/tokens"
)

// ParseProgram parses a whole Stan program: up to seven named blocks in
// their fixed order, each optional. The stream must end at EOF once the
// last block closes.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	program := &ast.Program{}
	var err error

	if p.match(tokens.FUNCTIONBLOCK) {
		program.Functions, err = p.parseFunctionsBlock()
		if err != nil {
			return nil, err
		}
	}

	if p.match(tokens.DATABLOCK) {
		program.Data, err = p.parseDeclarationOnlyBlock("data")
		if err != nil {
			return nil, err
		}
	}

	if p.match(tokens.TRANSFORMEDDATABLOCK) {
		program.TransformedData, err = p.parseNamedBlock("transformed data")
		if err != nil {
			return nil, err
		}
	}

	if p.match(tokens.PARAMETERSBLOCK) {
		program.Parameters, err = p.parseDeclarationOnlyBlock("parameters")
		if err != nil {
			return nil, err
		}
	}

	if p.match(tokens.TRANSFORMEDPARAMETERSBLOCK) {
		program.TransformedParameters, err = p.parseNamedBlock("transformed parameters")
		if err != nil {
			return nil, err
		}
	}

	if p.match(tokens.MODELBLOCK) {
		program.Model, err = p.parseNamedBlock("model")
		if err != nil {
			return nil, err
		}
	}

	if p.match(tokens.GENERATEDQUANTITIESBLOCK) {
		program.GeneratedQuantities, err = p.parseNamedBlock("generated quantities")
		if err != nil {
			return nil, err
		}
	}

	if !p.isAtEnd() {
		return nil, p.errorAt(p.peek(), "Expect end of program.")
	}

	return program, nil
}

// parseNamedBlock parses '{' body '}' for a block that allows both
// declarations and statements.
func (p *Parser) parseNamedBlock(name string) (*ast.Block, error) {
	if _, err := p.consume(tokens.LBRACE, fmt.Sprintf("Expect '{' after '%s'.", name)); err != nil {
		return nil, err
	}
	return p.parseBlock()
}

// parseDeclarationOnlyBlock parses the data and parameters blocks, which
// hold declarations without initializers and no statements.
func (p *Parser) parseDeclarationOnlyBlock(name string) (*ast.Block, error) {
	if _, err := p.consume(tokens.LBRACE, fmt.Sprintf("Expect '{' after '%s'.", name)); err != nil {
		return nil, err
	}

	errMsg := fmt.Sprintf("Assigments not allowed in %s block.", name)

	var declarations []*ast.Declaration
	for p.matchAny(varTypes...) {
		declaration, err := p.parseDeclarationNoAssign(errMsg)
		if err != nil {
			return nil, err
		}
		declarations = append(declarations, declaration)
	}

	if _, err := p.consume(tokens.RBRACE, "Expect '}' after declarations."); err != nil {
		return nil, err
	}

	return &ast.Block{Declarations: declarations}, nil
}

// parseFunctionsBlock parses the functions block: a sequence of custom
// function declarations (header ';') and definitions (header block).
func (p *Parser) parseFunctionsBlock() (*ast.Block, error) {
	if _, err := p.consume(tokens.LBRACE, "Expect '{' after 'functions'."); err != nil {
		return nil, err
	}

	var statements []ast.Stmt
	for !p.match(tokens.RBRACE) {
		header, err := p.parseFunctionDeclaration()
		if err != nil {
			return nil, err
		}

		if p.match(tokens.SEMICOLON) {
			statements = append(statements, header)
			continue
		}

		if _, err := p.consume(tokens.LBRACE, "Expect ';' or '{' after function signature."); err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		statements = append(statements, &ast.FunctionDefinition{Header: header, Body: body})
	}

	return &ast.Block{Statements: statements}, nil
}

// parseFunctionDeclaration parses a custom function header: return type,
// name and parenthesized argument list. The trailing ';' or body is left
// to the caller.
func (p *Parser) parseFunctionDeclaration() (*ast.FunctionDeclaration, error) {
	returnType, err := p.parseReturnType()
	if err != nil {
		return nil, err
	}

	identifier, err := p.consume(tokens.IDENTIFIER, "Expect function name.")
	if err != nil {
		return nil, err
	}

	if _, err := p.consume(tokens.LPAREN, "Expect '(' after function name."); err != nil {
		return nil, err
	}

	var args []*ast.ArgumentDeclaration
	if !p.check(tokens.RPAREN) {
		for {
			arg, err := p.parseArgumentDeclaration()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(tokens.COMMA) {
				break
			}
		}
	}

	if _, err := p.consume(tokens.RPAREN, "Expect ')' after function arguments."); err != nil {
		return nil, err
	}

	return &ast.FunctionDeclaration{ReturnType: returnType, Identifier: identifier, Args: args}, nil
}

// parseReturnType parses a custom function return type: void, a basic type
// with optional trailing unsized brackets (`real[]`), or `array [ , ... ]`
// followed by a basic type.
func (p *Parser) parseReturnType() (*ast.ReturnTypeDeclaration, error) {
	token, err := p.consumeAny(returnTypeTypes, "Expect return type.")
	if err != nil {
		return nil, err
	}

	if token.Type == tokens.ARRAY {
		if _, err := p.consume(tokens.LBRACK, "Expect '[' after 'array'."); err != nil {
			return nil, err
		}
		ndims, err := p.parseUnsizedDims()
		if err != nil {
			return nil, err
		}
		basic, err := p.consumeAny(basicTypes, "Expect basic type.")
		if err != nil {
			return nil, err
		}
		return &ast.ReturnTypeDeclaration{Dtype: basic.Type, NDims: ndims}, nil
	}

	ndims := 0
	if token.Type != tokens.VOID && p.match(tokens.LBRACK) {
		ndims, err = p.parseUnsizedDims()
		if err != nil {
			return nil, err
		}
	}
	return &ast.ReturnTypeDeclaration{Dtype: token.Type, NDims: ndims}, nil
}

// parseArgumentDeclaration parses one (type, identifier) pair of a custom
// function signature. Argument types are unsized: a basic type with
// optional trailing brackets (`int[,]`) or `array [ , ... ]` plus a basic
// type.
func (p *Parser) parseArgumentDeclaration() (*ast.ArgumentDeclaration, error) {
	ndims := 0

	prefixed := p.match(tokens.ARRAY)
	if prefixed {
		if _, err := p.consume(tokens.LBRACK, "Expect '[' after 'array'."); err != nil {
			return nil, err
		}
		var err error
		ndims, err = p.parseUnsizedDims()
		if err != nil {
			return nil, err
		}
	}

	dtype, err := p.consumeAny(basicTypes, "Expect basic type.")
	if err != nil {
		return nil, err
	}

	if !prefixed && p.match(tokens.LBRACK) {
		ndims, err = p.parseUnsizedDims()
		if err != nil {
			return nil, err
		}
	}

	identifier, err := p.consume(tokens.IDENTIFIER, "Expect argument name.")
	if err != nil {
		return nil, err
	}

	return &ast.ArgumentDeclaration{Dtype: dtype.Type, NDims: ndims, Identifier: identifier}, nil
}

// parseUnsizedDims counts the dimensions of an unsized bracket group whose
// '[' has been consumed: `[]` is one dimension, each comma adds one.
func (p *Parser) parseUnsizedDims() (int, error) {
	ndims := 1
	for p.match(tokens.COMMA) {
		ndims++
	}
	if _, err := p.consume(tokens.RBRACK, "Expect ']' after array dimensions."); err != nil {
		return 0, err
	}
	return ndims, nil
}
