package parser

import (
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/problang/stanfront/core/tokens"
)

// ParseError reports that a required token or token set was not found at
// the cursor, or that a grammar constraint was violated. The first
// ParseError aborts the parse; there is no resynchronization.
type ParseError struct {
	Token      tokens.Token
	Message    string // empty means only the position identifies the problem
	Expected   []tokens.TokenType
	Suggestion string // closest keyword spelling, when one exists
	Source     string // original source, for the code snippet; may be empty
}

func (e *ParseError) Error() string {
	message := e.Message
	if message == "" && len(e.Expected) > 0 {
		names := make([]string, len(e.Expected))
		for i, ttype := range e.Expected {
			names[i] = ttype.String()
		}
		message = fmt.Sprintf("Expected %s.", strings.Join(names, ","))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "line %d, column %d: %s", e.Token.Line, e.Token.Column, message)
	if e.Suggestion != "" {
		fmt.Fprintf(&b, " Did you mean '%s'?", e.Suggestion)
	}
	if snippet := e.codeSnippet(); snippet != "" {
		b.WriteString("\n")
		b.WriteString(snippet)
	}
	return b.String()
}

// codeSnippet renders the offending line with a caret under the token.
func (e *ParseError) codeSnippet() string {
	if e.Source == "" || e.Token.Line == 0 {
		return ""
	}

	lines := strings.Split(e.Source, "\n")
	if e.Token.Line > len(lines) {
		return ""
	}
	lineContent := lines[e.Token.Line-1]

	var b strings.Builder
	fmt.Fprintf(&b, "  --> %d:%d\n", e.Token.Line, e.Token.Column)
	b.WriteString("   |\n")
	fmt.Fprintf(&b, "%2d | %s\n", e.Token.Line, lineContent)
	b.WriteString("   | ")
	if e.Token.Column > 0 && e.Token.Column <= len(lineContent)+1 {
		b.WriteString(strings.Repeat(" ", e.Token.Column-1) + "^")
	}
	return b.String()
}

// keywordSpellings maps single-word keyword token types back to their
// source spelling, for error messages and fuzzy suggestions.
var keywordSpellings = func() map[tokens.TokenType]string {
	spellings := make(map[tokens.TokenType]string, len(tokens.Keywords))
	for word, ttype := range tokens.Keywords {
		if !strings.Contains(word, " ") {
			spellings[ttype] = word
		}
	}
	return spellings
}()

// closestKeyword fuzzy-matches a misspelled identifier against the
// spellings of the expected keyword types. Returns "" when nothing ranks.
func closestKeyword(lexeme string, expected []tokens.TokenType) string {
	var candidates []string
	for _, ttype := range expected {
		if spelling, ok := keywordSpellings[ttype]; ok {
			candidates = append(candidates, spelling)
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	ranks := fuzzy.RankFindFold(lexeme, candidates)
	if len(ranks) == 0 {
		return ""
	}
	best := ranks[0]
	for _, rank := range ranks[1:] {
		if rank.Distance < best.Distance {
			best = rank
		}
	}
	return best.Target
}
