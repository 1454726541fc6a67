// Package scanner converts Stan source text into a flat token stream.
//
// The scanner is a single forward pass over the source. Whitespace and
// comments are discarded, multi-character operators are disambiguated with
// bounded lookahead, and the two-word block keywords ("transformed data",
// "generated quantities") are folded into single tokens. Scanning is total:
// any input either yields a token slice terminated by exactly one EOF token
// or fails with a position-tagged *Error.
package scanner

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/problang/stanfront/core/tokens"
)

// Error is a fatal scan error: a malformed literal or an unrecognized
// character. Scanning does not recover; the first Error aborts the pass.
type Error struct {
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[line %d, column %d]: %s", e.Line, e.Column, e.Message)
}

// Scanner holds the state of one scan pass. A Scanner is single-use: create
// one with New, call Scan once.
type Scanner struct {
	source    string
	tokens    []tokens.Token
	start     int // offset of the first character of the token in progress
	current   int // offset of the next character to consume
	line      int // 1-based
	lineStart int // offset of the first character of the current line

	logger *slog.Logger
}

// New creates a Scanner for the given source string.
func New(source string) *Scanner {
	logLevel := slog.LevelInfo
	if os.Getenv("STANFRONT_DEBUG_SCANNER") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	return &Scanner{
		source: source,
		line:   1,
		logger: logger,
	}
}

// Scan runs the pass and returns the token stream, always terminated by a
// single EOF token whose position is one past the last consumed character.
func (s *Scanner) Scan() ([]tokens.Token, error) {
	for !s.isAtEnd(0) {
		s.start = s.current
		if err := s.scanToken(); err != nil {
			return nil, err
		}
	}

	s.tokens = append(s.tokens, tokens.Token{
		Type:   tokens.EOF,
		Line:   s.line,
		Column: s.column(s.current),
	})
	return s.tokens, nil
}

func (s *Scanner) scanToken() error {
	ch := s.advance()

	switch ch {
	case ' ', '\t', '\r':
		// whitespace is tracked for positions only, never emitted
	case '\n':
		s.line++
		s.lineStart = s.current
	case '{':
		s.addToken(tokens.LBRACE)
	case '}':
		s.addToken(tokens.RBRACE)
	case '(':
		s.addToken(tokens.LPAREN)
	case ')':
		s.addToken(tokens.RPAREN)
	case '[':
		s.addToken(tokens.LBRACK)
	case ']':
		s.addToken(tokens.RBRACK)
	case ',':
		s.addToken(tokens.COMMA)
	case ';':
		s.addToken(tokens.SEMICOLON)
	case '?':
		s.addToken(tokens.QMARK)
	case ':':
		s.addToken(tokens.COLON)
	case '^':
		s.addToken(tokens.HAT)
	case '\'':
		s.addToken(tokens.TRANSPOSE)
	case '~':
		s.addToken(tokens.TILDE)
	case '\\':
		s.addToken(tokens.LDIVIDE)
	case '"':
		return s.scanString()
	case '<':
		if s.match('=') {
			s.addToken(tokens.LEQ)
		} else if s.match('-') {
			s.addToken(tokens.ARROWASSIGN)
		} else {
			s.addToken(tokens.LABRACK)
		}
	case '>':
		if s.match('=') {
			s.addToken(tokens.GEQ)
		} else {
			s.addToken(tokens.RABRACK)
		}
	case '|':
		if s.match('|') {
			s.addToken(tokens.OR)
		} else {
			s.addToken(tokens.BAR)
		}
	case '&':
		if s.match('&') {
			s.addToken(tokens.AND)
		} else {
			return s.errorf("Unknown character '&'.")
		}
	case '-':
		if s.match('=') {
			s.addToken(tokens.MINUSASSIGN)
		} else {
			s.addToken(tokens.MINUS)
		}
	case '+':
		if s.match('=') {
			s.addToken(tokens.PLUSASSIGN)
		} else {
			s.addToken(tokens.PLUS)
		}
	case '*':
		if s.match('=') {
			s.addToken(tokens.TIMESASSIGN)
		} else {
			s.addToken(tokens.TIMES)
		}
	case '/':
		if s.match('/') {
			s.skipLineComment()
		} else if s.match('=') {
			s.addToken(tokens.DIVIDEASSIGN)
		} else {
			s.addToken(tokens.DIVIDE)
		}
	case '!':
		if s.match('=') {
			s.addToken(tokens.NEQUALS)
		} else {
			s.addToken(tokens.BANG)
		}
	case '=':
		if s.match('=') {
			s.addToken(tokens.EQUALS)
		} else {
			s.addToken(tokens.ASSIGN)
		}
	case '%':
		if s.peek() == '/' && s.peekAt(1) == '%' {
			s.advance()
			s.advance()
			s.addToken(tokens.IDIVIDE)
		} else {
			s.addToken(tokens.MODULO)
		}
	case '.':
		if s.peek() == '*' && s.peekAt(1) == '=' {
			s.advance()
			s.advance()
			s.addToken(tokens.ELTTIMESASSIGN)
		} else if s.peek() == '/' && s.peekAt(1) == '=' {
			s.advance()
			s.advance()
			s.addToken(tokens.ELTDIVIDEASSIGN)
		} else if s.match('*') {
			s.addToken(tokens.ELTTIMES)
		} else if s.match('/') {
			s.addToken(tokens.ELTDIVIDE)
		} else if s.match('^') {
			s.addToken(tokens.ELTPOW)
		} else {
			return s.errorf("Unknown character '.'.")
		}
	default:
		if isDigit(ch) {
			return s.scanNumber()
		}
		if isIdentifierChar(ch, true) {
			s.scanIdentifier()
			return nil
		}
		return s.errorf("Unknown character %q.", ch)
	}

	return nil
}

// scanString scans a string literal; the opening '"' has been consumed.
// Strings cannot span lines, so a newline or EOF before the closing quote
// is fatal.
func (s *Scanner) scanString() error {
	for {
		if s.isAtEnd(0) {
			return s.errorf("Unterminated string.")
		}
		ch := s.peek()
		if ch == '"' {
			break
		}
		if !isValidStringLiteralChar(ch) {
			return s.errorf("Unterminated string.")
		}
		s.advance()
	}
	s.advance() // closing quote

	literal := s.source[s.start+1 : s.current-1]
	s.addTokenLiteral(tokens.STRING, literal)
	return nil
}

// scanNumber scans an integer, real or imaginary numeral; the first digit
// has been consumed. Real literals keep their textual decomposition
// (integer part, fractional digits, power-of-ten exponent) instead of being
// collapsed into a float.
func (s *Scanner) scanNumber() error {
	for isDigit(s.peek()) {
		s.advance()
	}
	integerEnd := s.current

	nonIntegerStart, nonIntegerEnd := -1, -1
	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance() // '.'
		nonIntegerStart = s.current
		for isDigit(s.peek()) {
			s.advance()
		}
		nonIntegerEnd = s.current
	}

	hasExponent := false
	exponentNegative := false
	exponentStart, exponentEnd := -1, -1
	if s.peek() == 'e' || s.peek() == 'E' {
		next := s.peekAt(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(s.peekAt(2))) {
			hasExponent = true
			s.advance() // 'e' / 'E'
			if s.peek() == '+' || s.peek() == '-' {
				exponentNegative = s.peek() == '-'
				s.advance()
			}
			exponentStart = s.current
			for isDigit(s.peek()) {
				s.advance()
			}
			exponentEnd = s.current
		}
	}

	imaginary := s.peek() == 'i'
	if imaginary {
		s.advance()
	}

	integerPart, err := strconv.ParseInt(s.source[s.start:integerEnd], 10, 64)
	if err != nil {
		return s.errorf("Invalid numeric literal %q.", s.source[s.start:s.current])
	}

	if nonIntegerStart < 0 && !hasExponent && !imaginary {
		s.addTokenLiteral(tokens.INTNUMERAL, integerPart)
		return nil
	}

	value := tokens.RealValue{IntegerPart: integerPart, Exponent: 1}
	if nonIntegerStart >= 0 {
		value.NonIntegerPart, err = strconv.ParseInt(s.source[nonIntegerStart:nonIntegerEnd], 10, 64)
		if err != nil {
			return s.errorf("Invalid numeric literal %q.", s.source[s.start:s.current])
		}
	}
	if hasExponent {
		value.Exponent, err = strconv.ParseInt(s.source[exponentStart:exponentEnd], 10, 64)
		if err != nil {
			return s.errorf("Invalid numeric literal %q.", s.source[s.start:s.current])
		}
		if exponentNegative {
			value.Exponent = -value.Exponent
		}
	}

	if imaginary {
		s.addTokenLiteral(tokens.IMAGNUMERAL, tokens.ComplexValue{Imag: value})
		return nil
	}
	s.addTokenLiteral(tokens.REALNUMERAL, value)
	return nil
}

// scanIdentifier scans an identifier or keyword; the first character has
// been consumed. When the run spells a compound-keyword prefix and exactly
// one whitespace character separates it from the right second word, the
// scan extends across the separator so "transformed data" becomes one
// token.
func (s *Scanner) scanIdentifier() {
	for isIdentifierChar(s.peek(), false) {
		s.advance()
	}
	text := s.source[s.start:s.current]

	if tokens.CompoundKeywordPrefixes[text] && isInlineSpace(s.peek()) && isIdentifierChar(s.peekAt(1), true) {
		end := s.current + 1
		for end < len(s.source) && isIdentifierChar(s.source[end], false) {
			end++
		}
		compound := text + " " + s.source[s.current+1:end]
		if _, ok := tokens.Keywords[compound]; ok {
			s.current = end
			text = compound
		}
	}

	if ttype, ok := tokens.Keywords[text]; ok {
		s.addToken(ttype)
		return
	}
	s.addToken(tokens.IDENTIFIER)
}

func (s *Scanner) skipLineComment() {
	for !s.isAtEnd(0) && s.peek() != '\n' {
		s.advance()
	}
}

func (s *Scanner) addToken(ttype tokens.TokenType) {
	s.addTokenLiteral(ttype, nil)
}

func (s *Scanner) addTokenLiteral(ttype tokens.TokenType, literal any) {
	token := tokens.Token{
		Type:    ttype,
		Line:    s.line,
		Column:  s.column(s.start),
		Lexeme:  s.source[s.start:s.current],
		Literal: literal,
	}
	s.logger.Debug("token", "type", ttype.String(), "lexeme", token.Lexeme,
		"line", token.Line, "column", token.Column)
	s.tokens = append(s.tokens, token)
}

func (s *Scanner) advance() byte {
	ch := s.source[s.current]
	s.current++
	return ch
}

// match consumes the next character only if it equals expected.
func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd(0) || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) peek() byte {
	return s.peekAt(0)
}

func (s *Scanner) peekAt(offset int) byte {
	if s.isAtEnd(offset) {
		return 0
	}
	return s.source[s.current+offset]
}

func (s *Scanner) isAtEnd(offset int) bool {
	return s.current+offset >= len(s.source)
}

func (s *Scanner) column(offset int) int {
	return offset - s.lineStart + 1
}

func (s *Scanner) errorf(format string, args ...any) error {
	return &Error{
		Line:    s.line,
		Column:  s.column(s.start),
		Message: fmt.Sprintf(format, args...),
	}
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

// isIdentifierChar reports whether ch may appear in an identifier. Digits
// and underscores are valid anywhere except the first position.
func isIdentifierChar(ch byte, first bool) bool {
	if first {
		return isLetter(ch)
	}
	return isLetter(ch) || isDigit(ch) || ch == '_'
}

// isInlineSpace reports whether ch is whitespace that can separate the two
// words of a compound keyword. Newlines never qualify.
func isInlineSpace(ch byte) bool {
	return ch == ' ' || ch == '\t'
}

// isValidStringLiteralChar reports whether ch may appear inside a string
// literal. Line breaks terminate the literal unconditionally.
func isValidStringLiteralChar(ch byte) bool {
	return ch != '\n' && ch != '\r'
}
