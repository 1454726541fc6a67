package tokens

import "fmt"

// TokenType identifies the lexical class of a scanned token.
type TokenType int

const (
	// Special tokens
	EOF TokenType = iota

	// Program blocks
	FUNCTIONBLOCK              // functions
	DATABLOCK                  // data
	TRANSFORMEDDATABLOCK       // transformed data
	PARAMETERSBLOCK            // parameters
	TRANSFORMEDPARAMETERSBLOCK // transformed parameters
	MODELBLOCK                 // model
	GENERATEDQUANTITIESBLOCK   // generated quantities

	// Punctuation
	LBRACE    // {
	RBRACE    // }
	LPAREN    // (
	RPAREN    // )
	LBRACK    // [
	RBRACK    // ]
	LABRACK   // <
	RABRACK   // >
	COMMA     // ,
	SEMICOLON // ;
	BAR       // |

	// Control flow keywords
	RETURN   // return
	IF       // if
	ELSE     // else
	WHILE    // while
	PROFILE  // profile
	FOR      // for
	IN       // in
	BREAK    // break
	CONTINUE // continue

	// Types
	VOID               // void
	INT                // int
	REAL               // real
	COMPLEX            // complex
	VECTOR             // vector
	ROWVECTOR          // row_vector
	ARRAY              // array
	MATRIX             // matrix
	ORDERED            // ordered
	POSITIVEORDERED    // positive_ordered
	SIMPLEX            // simplex
	UNITVECTOR         // unit_vector
	CHOLESKYFACTORCORR // cholesky_factor_corr
	CHOLESKYFACTORCOV  // cholesky_factor_cov
	CORRMATRIX         // corr_matrix
	COVMATRIX          // cov_matrix

	// Constraint keywords
	LOWER      // lower
	UPPER      // upper
	OFFSET     // offset
	MULTIPLIER // multiplier

	// Operators
	QMARK     // ?
	COLON     // :
	BANG      // !
	MINUS     // -
	PLUS      // +
	HAT       // ^
	TRANSPOSE // '
	TIMES     // *
	DIVIDE    // /
	MODULO    // %
	IDIVIDE   // %/%
	LDIVIDE   // \
	ELTTIMES  // .*
	ELTPOW    // .^
	ELTDIVIDE // ./
	OR        // ||
	AND       // &&
	EQUALS    // ==
	NEQUALS   // !=
	LEQ       // <=
	GEQ       // >=
	TILDE     // ~

	// Assignments
	ASSIGN          // =
	PLUSASSIGN      // +=
	MINUSASSIGN     // -=
	TIMESASSIGN     // *=
	DIVIDEASSIGN    // /=
	ELTTIMESASSIGN  // .*=
	ELTDIVIDEASSIGN // ./=
	ARROWASSIGN     // <-

	// Keyword statements
	TARGET           // target
	INCREMENTLOGPROB // increment_log_prob
	PRINT            // print
	REJECT           // reject
	TRUNCATE         // T (context sensitive)

	// Literals
	STRING      // "text"
	INTNUMERAL  // 123
	REALNUMERAL // 1.3, 10.4e2
	IMAGNUMERAL // 123i, 1.3i

	IDENTIFIER
)

// Pre-computed token name lookup for fast debugging
var tokenNames = [...]string{
	EOF:                        "EOF",
	FUNCTIONBLOCK:              "FUNCTIONBLOCK",
	DATABLOCK:                  "DATABLOCK",
	TRANSFORMEDDATABLOCK:       "TRANSFORMEDDATABLOCK",
	PARAMETERSBLOCK:            "PARAMETERSBLOCK",
	TRANSFORMEDPARAMETERSBLOCK: "TRANSFORMEDPARAMETERSBLOCK",
	MODELBLOCK:                 "MODELBLOCK",
	GENERATEDQUANTITIESBLOCK:   "GENERATEDQUANTITIESBLOCK",
	LBRACE:                     "LBRACE",
	RBRACE:                     "RBRACE",
	LPAREN:                     "LPAREN",
	RPAREN:                     "RPAREN",
	LBRACK:                     "LBRACK",
	RBRACK:                     "RBRACK",
	LABRACK:                    "LABRACK",
	RABRACK:                    "RABRACK",
	COMMA:                      "COMMA",
	SEMICOLON:                  "SEMICOLON",
	BAR:                        "BAR",
	RETURN:                     "RETURN",
	IF:                         "IF",
	ELSE:                       "ELSE",
	WHILE:                      "WHILE",
	PROFILE:                    "PROFILE",
	FOR:                        "FOR",
	IN:                         "IN",
	BREAK:                      "BREAK",
	CONTINUE:                   "CONTINUE",
	VOID:                       "VOID",
	INT:                        "INT",
	REAL:                       "REAL",
	COMPLEX:                    "COMPLEX",
	VECTOR:                     "VECTOR",
	ROWVECTOR:                  "ROWVECTOR",
	ARRAY:                      "ARRAY",
	MATRIX:                     "MATRIX",
	ORDERED:                    "ORDERED",
	POSITIVEORDERED:            "POSITIVEORDERED",
	SIMPLEX:                    "SIMPLEX",
	UNITVECTOR:                 "UNITVECTOR",
	CHOLESKYFACTORCORR:         "CHOLESKYFACTORCORR",
	CHOLESKYFACTORCOV:          "CHOLESKYFACTORCOV",
	CORRMATRIX:                 "CORRMATRIX",
	COVMATRIX:                  "COVMATRIX",
	LOWER:                      "LOWER",
	UPPER:                      "UPPER",
	OFFSET:                     "OFFSET",
	MULTIPLIER:                 "MULTIPLIER",
	QMARK:                      "QMARK",
	COLON:                      "COLON",
	BANG:                       "BANG",
	MINUS:                      "MINUS",
	PLUS:                       "PLUS",
	HAT:                        "HAT",
	TRANSPOSE:                  "TRANSPOSE",
	TIMES:                      "TIMES",
	DIVIDE:                     "DIVIDE",
	MODULO:                     "MODULO",
	IDIVIDE:                    "IDIVIDE",
	LDIVIDE:                    "LDIVIDE",
	ELTTIMES:                   "ELTTIMES",
	ELTPOW:                     "ELTPOW",
	ELTDIVIDE:                  "ELTDIVIDE",
	OR:                         "OR",
	AND:                        "AND",
	EQUALS:                     "EQUALS",
	NEQUALS:                    "NEQUALS",
	LEQ:                        "LEQ",
	GEQ:                        "GEQ",
	TILDE:                      "TILDE",
	ASSIGN:                     "ASSIGN",
	PLUSASSIGN:                 "PLUSASSIGN",
	MINUSASSIGN:                "MINUSASSIGN",
	TIMESASSIGN:                "TIMESASSIGN",
	DIVIDEASSIGN:               "DIVIDEASSIGN",
	ELTTIMESASSIGN:             "ELTTIMESASSIGN",
	ELTDIVIDEASSIGN:            "ELTDIVIDEASSIGN",
	ARROWASSIGN:                "ARROWASSIGN",
	TARGET:                     "TARGET",
	INCREMENTLOGPROB:           "INCREMENTLOGPROB",
	PRINT:                      "PRINT",
	REJECT:                     "REJECT",
	TRUNCATE:                   "TRUNCATE",
	STRING:                     "STRING",
	INTNUMERAL:                 "INTNUMERAL",
	REALNUMERAL:                "REALNUMERAL",
	IMAGNUMERAL:                "IMAGNUMERAL",
	IDENTIFIER:                 "IDENTIFIER",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) && int(t) >= 0 {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Keywords maps reserved words to their token types. Two-word keywords
// ("transformed data" etc.) appear with their full spelling; the scanner
// extends the identifier run across exactly one space when the first word
// is a known compound prefix.
var Keywords = map[string]TokenType{
	"functions":              FUNCTIONBLOCK,
	"data":                   DATABLOCK,
	"transformed data":       TRANSFORMEDDATABLOCK,
	"parameters":             PARAMETERSBLOCK,
	"transformed parameters": TRANSFORMEDPARAMETERSBLOCK,
	"model":                  MODELBLOCK,
	"generated quantities":   GENERATEDQUANTITIESBLOCK,
	"return":                 RETURN,
	"if":                     IF,
	"else":                   ELSE,
	"while":                  WHILE,
	"profile":                PROFILE,
	"for":                    FOR,
	"in":                     IN,
	"break":                  BREAK,
	"continue":               CONTINUE,
	"void":                   VOID,
	"int":                    INT,
	"real":                   REAL,
	"complex":                COMPLEX,
	"vector":                 VECTOR,
	"row_vector":             ROWVECTOR,
	"array":                  ARRAY,
	"matrix":                 MATRIX,
	"ordered":                ORDERED,
	"positive_ordered":       POSITIVEORDERED,
	"simplex":                SIMPLEX,
	"unit_vector":            UNITVECTOR,
	"cholesky_factor_corr":   CHOLESKYFACTORCORR,
	"cholesky_factor_cov":    CHOLESKYFACTORCOV,
	"corr_matrix":            CORRMATRIX,
	"cov_matrix":             COVMATRIX,
	"lower":                  LOWER,
	"upper":                  UPPER,
	"offset":                 OFFSET,
	"multiplier":             MULTIPLIER,
	"target":                 TARGET,
	"increment_log_prob":     INCREMENTLOGPROB,
	"print":                  PRINT,
	"reject":                 REJECT,
}

// CompoundKeywordPrefixes holds the first words of two-word keywords.
var CompoundKeywordPrefixes = map[string]bool{
	"transformed": true,
	"generated":   true,
}

// Token is an immutable lexical token. Literal is nil for most tokens; for
// STRING it holds the decoded string, for INTNUMERAL an int64, for
// REALNUMERAL a RealValue, and for IMAGNUMERAL a ComplexValue.
type Token struct {
	Type    TokenType
	Line    int // 1-based
	Column  int // 1-based
	Lexeme  string
	Literal any
}

// String returns a compact debug representation of the token.
func (t Token) String() string {
	if t.Literal != nil {
		return fmt.Sprintf("%s %q %v [%d:%d]", t.Type, t.Lexeme, t.Literal, t.Line, t.Column)
	}
	return fmt.Sprintf("%s %q [%d:%d]", t.Type, t.Lexeme, t.Line, t.Column)
}

// RealValue is the decomposed form of a real literal. The textual parts are
// kept separate so later stages can build language-specific numerics without
// an intermediate float. Exponent is the power-of-ten multiplier and
// defaults to 1:
//
//	value = (IntegerPart + NonIntegerPart * 10^-digits) * 10^Exponent
type RealValue struct {
	IntegerPart    int64
	NonIntegerPart int64
	Exponent       int64
}

// ComplexValue wraps the imaginary component of an imaginary-suffixed
// numeral such as 123i or 1.3i.
type ComplexValue struct {
	Imag RealValue
}
