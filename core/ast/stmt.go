package ast

import (
	"strings"

	"github.com/problang/stanfront/core/tokens"
)

// Stmt is implemented by every statement node.
type Stmt interface {
	Accept(v StmtVisitor) any
	String() string
}

// StmtVisitor has one method per concrete statement node.
type StmtVisitor interface {
	VisitDeclaration(s *Declaration) any
	VisitArgumentDeclaration(s *ArgumentDeclaration) any
	VisitAssign(s *Assign) any
	VisitTilde(s *Tilde) any
	VisitIncrementLogProb(s *IncrementLogProb) any
	VisitBreak(s *Break) any
	VisitContinue(s *Continue) any
	VisitReturn(s *Return) any
	VisitEmpty(s *Empty) any
	VisitIfElse(s *IfElse) any
	VisitWhile(s *While) any
	VisitFor(s *For) any
	VisitPrint(s *Print) any
	VisitReject(s *Reject) any
	VisitTargetPlusAssign(s *TargetPlusAssign) any
	VisitBlock(s *Block) any
	VisitFunctionDeclaration(s *FunctionDeclaration) any
	VisitFunctionDefinition(s *FunctionDefinition) any
	VisitReturnTypeDeclaration(s *ReturnTypeDeclaration) any
	VisitProgram(s *Program) any
}

// Declaration is a sized variable declaration, optionally constrained and
// initialized:
//
//	real<lower=0> sigma;
//	vector[N] mu = rep_vector(0, N);
//	real y[J];
//
// TypeDims are intrinsic to the type (vector[N]); ArrayDims follow the
// identifier (real y[J]). The four constraint fields are nil when absent.
type Declaration struct {
	Dtype       tokens.Token
	Identifier  tokens.Token
	TypeDims    []Expr
	ArrayDims   []Expr
	Lower       Expr
	Upper       Expr
	Offset      Expr
	Multiplier  Expr
	Initializer Expr
}

func (s *Declaration) Accept(v StmtVisitor) any { return v.VisitDeclaration(s) }

func (s *Declaration) String() string {
	var b strings.Builder
	b.WriteString(s.Dtype.Lexeme)
	var constraints []string
	if s.Lower != nil {
		constraints = append(constraints, "lower="+s.Lower.String())
	}
	if s.Upper != nil {
		constraints = append(constraints, "upper="+s.Upper.String())
	}
	if s.Offset != nil {
		constraints = append(constraints, "offset="+s.Offset.String())
	}
	if s.Multiplier != nil {
		constraints = append(constraints, "multiplier="+s.Multiplier.String())
	}
	if len(constraints) > 0 {
		b.WriteString("<" + strings.Join(constraints, ", ") + ">")
	}
	if len(s.TypeDims) > 0 {
		b.WriteString("[" + joinExprs(s.TypeDims) + "]")
	}
	b.WriteString(" " + s.Identifier.Lexeme)
	if len(s.ArrayDims) > 0 {
		b.WriteString("[" + joinExprs(s.ArrayDims) + "]")
	}
	if s.Initializer != nil {
		b.WriteString(" = " + s.Initializer.String())
	}
	b.WriteString(";")
	return b.String()
}

// ArgumentDeclaration is a (type, identifier) pair in a custom function
// signature. Function argument types are unsized, so only the number of
// array dimensions is recorded.
type ArgumentDeclaration struct {
	Dtype      tokens.TokenType
	NDims      int
	Identifier tokens.Token
}

func (s *ArgumentDeclaration) Accept(v StmtVisitor) any { return v.VisitArgumentDeclaration(s) }

func (s *ArgumentDeclaration) String() string {
	return typeWithDims(s.Dtype, s.NDims) + " " + s.Identifier.Lexeme
}

// Assign covers simple and compound assignment statements.
type Assign struct {
	LHS      Expr
	Operator tokens.Token
	Value    Expr
}

func (s *Assign) Accept(v StmtVisitor) any { return v.VisitAssign(s) }

func (s *Assign) String() string {
	return s.LHS.String() + " " + s.Operator.Lexeme + " " + s.Value.String() + ";"
}

// Tilde is the sampling statement lhs ~ distribution(args);.
type Tilde struct {
	LHS        Expr
	Identifier tokens.Token
	Args       []Expr
}

func (s *Tilde) Accept(v StmtVisitor) any { return v.VisitTilde(s) }

func (s *Tilde) String() string {
	return s.LHS.String() + " ~ " + s.Identifier.Lexeme + "(" + joinExprs(s.Args) + ");"
}

// IncrementLogProb is the deprecated increment_log_prob(expr); statement.
type IncrementLogProb struct {
	Keyword tokens.Token
	Value   Expr
}

func (s *IncrementLogProb) Accept(v StmtVisitor) any { return v.VisitIncrementLogProb(s) }

func (s *IncrementLogProb) String() string {
	return "increment_log_prob(" + s.Value.String() + ");"
}

// Break is a break; statement.
type Break struct {
	Keyword tokens.Token
}

func (s *Break) Accept(v StmtVisitor) any { return v.VisitBreak(s) }

func (s *Break) String() string { return "break;" }

// Continue is a continue; statement.
type Continue struct {
	Keyword tokens.Token
}

func (s *Continue) Accept(v StmtVisitor) any { return v.VisitContinue(s) }

func (s *Continue) String() string { return "continue;" }

// Return is a return statement; Value is nil for a bare return;.
type Return struct {
	Keyword tokens.Token
	Value   Expr
}

func (s *Return) Accept(v StmtVisitor) any { return v.VisitReturn(s) }

func (s *Return) String() string {
	if s.Value == nil {
		return "return;"
	}
	return "return " + s.Value.String() + ";"
}

// Empty is a bare semicolon.
type Empty struct {
	Semicolon tokens.Token
}

func (s *Empty) Accept(v StmtVisitor) any { return v.VisitEmpty(s) }

func (s *Empty) String() string { return ";" }

// IfElse is an if statement with an optional else branch.
type IfElse struct {
	Condition   Expr
	Consequent  Stmt
	Alternative Stmt
}

func (s *IfElse) Accept(v StmtVisitor) any { return v.VisitIfElse(s) }

func (s *IfElse) String() string {
	out := "if (" + s.Condition.String() + ") " + s.Consequent.String()
	if s.Alternative != nil {
		out += " else " + s.Alternative.String()
	}
	return out
}

// While is a while loop.
type While struct {
	Condition Expr
	Body      Stmt
}

func (s *While) Accept(v StmtVisitor) any { return v.VisitWhile(s) }

func (s *While) String() string {
	return "while (" + s.Condition.String() + ") " + s.Body.String()
}

// For is Stan's range-based loop: for (i in begin:end) body.
type For struct {
	Identifier tokens.Token
	Begin      Expr
	End        Expr
	Body       Stmt
}

func (s *For) Accept(v StmtVisitor) any { return v.VisitFor(s) }

func (s *For) String() string {
	return "for (" + s.Identifier.Lexeme + " in " + s.Begin.String() + ":" + s.End.String() + ") " + s.Body.String()
}

// Print is a print(expr, ...); statement.
type Print struct {
	Expressions []Expr
}

func (s *Print) Accept(v StmtVisitor) any { return v.VisitPrint(s) }

func (s *Print) String() string { return "print(" + joinExprs(s.Expressions) + ");" }

// Reject is a reject(expr, ...); statement.
type Reject struct {
	Expressions []Expr
}

func (s *Reject) Accept(v StmtVisitor) any { return v.VisitReject(s) }

func (s *Reject) String() string { return "reject(" + joinExprs(s.Expressions) + ");" }

// TargetPlusAssign is the target += expr; statement.
type TargetPlusAssign struct {
	Value Expr
}

func (s *TargetPlusAssign) Accept(v StmtVisitor) any { return v.VisitTargetPlusAssign(s) }

func (s *TargetPlusAssign) String() string { return "target += " + s.Value.String() + ";" }

// Block is a brace-delimited group: declarations first, then statements.
// Declarations cannot appear after the first statement, so the split is
// made at parse time and preserved here.
type Block struct {
	Declarations []*Declaration
	Statements   []Stmt
}

func (s *Block) Accept(v StmtVisitor) any { return v.VisitBlock(s) }

func (s *Block) String() string {
	var b strings.Builder
	b.WriteString("{\n")
	for _, d := range s.Declarations {
		b.WriteString("  " + d.String() + "\n")
	}
	for _, st := range s.Statements {
		b.WriteString("  " + st.String() + "\n")
	}
	b.WriteString("}")
	return b.String()
}

// ReturnTypeDeclaration describes a custom function's return type: a basic
// type or void, with the number of unsized array dimensions.
type ReturnTypeDeclaration struct {
	Dtype tokens.TokenType
	NDims int
}

func (s *ReturnTypeDeclaration) Accept(v StmtVisitor) any { return v.VisitReturnTypeDeclaration(s) }

func (s *ReturnTypeDeclaration) String() string { return typeWithDims(s.Dtype, s.NDims) }

// FunctionDeclaration is the header of a custom function: return type,
// name and argument list. Followed by ';' it stands alone as a forward
// declaration.
type FunctionDeclaration struct {
	ReturnType *ReturnTypeDeclaration
	Identifier tokens.Token
	Args       []*ArgumentDeclaration
}

func (s *FunctionDeclaration) Accept(v StmtVisitor) any { return v.VisitFunctionDeclaration(s) }

func (s *FunctionDeclaration) String() string {
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = a.String()
	}
	return s.ReturnType.String() + " " + s.Identifier.Lexeme + "(" + strings.Join(args, ", ") + ")"
}

// FunctionDefinition is a custom function with a body.
type FunctionDefinition struct {
	Header *FunctionDeclaration
	Body   *Block
}

func (s *FunctionDefinition) Accept(v StmtVisitor) any { return v.VisitFunctionDefinition(s) }

func (s *FunctionDefinition) String() string { return s.Header.String() + " " + s.Body.String() }

// Program is the root node: the seven optional Stan blocks in their fixed
// order. A nil field means the block is absent from the source.
type Program struct {
	Functions             *Block
	Data                  *Block
	TransformedData       *Block
	Parameters            *Block
	TransformedParameters *Block
	Model                 *Block
	GeneratedQuantities   *Block
}

func (s *Program) Accept(v StmtVisitor) any { return v.VisitProgram(s) }

func (s *Program) String() string {
	var parts []string
	add := func(name string, b *Block) {
		if b != nil {
			parts = append(parts, name+" "+b.String())
		}
	}
	add("functions", s.Functions)
	add("data", s.Data)
	add("transformed data", s.TransformedData)
	add("parameters", s.Parameters)
	add("transformed parameters", s.TransformedParameters)
	add("model", s.Model)
	add("generated quantities", s.GeneratedQuantities)
	return strings.Join(parts, "\n")
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

func typeWithDims(dtype tokens.TokenType, ndims int) string {
	var name string
	switch dtype {
	case tokens.VOID:
		name = "void"
	case tokens.INT:
		name = "int"
	case tokens.REAL:
		name = "real"
	case tokens.COMPLEX:
		name = "complex"
	case tokens.VECTOR:
		name = "vector"
	case tokens.ROWVECTOR:
		name = "row_vector"
	case tokens.MATRIX:
		name = "matrix"
	default:
		name = strings.ToLower(dtype.String())
	}
	if ndims == 0 {
		return name
	}
	return "array[" + strings.Repeat(",", ndims-1) + "] " + name
}
