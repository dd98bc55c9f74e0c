package parser

import (
	"fmt"
	"strings"

	"github.com/psh-go/psh/token"
)

// ParseError is the precise parse-failure shape of spec.md §4.4: a
// message, the offending token, and the set of kinds that would have been
// valid there. Grounded on the teacher's runtime/parser/tree.go ParseError
// struct (Message/Token/Expected), trimmed to what this grammar needs.
type ParseError struct {
	Message  string
	Token    token.Token
	Expected []token.Kind
}

func (e *ParseError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("%s: %s", e.Token.Start, e.Message)
	}
	names := make([]string, len(e.Expected))
	for i, k := range e.Expected {
		names[i] = k.String()
	}
	return fmt.Sprintf("%s: %s (expected one of: %s, got %s)",
		e.Token.Start, e.Message, strings.Join(names, ", "), e.Token.Kind)
}

// IncompleteParseError is the parser-error subkind of spec.md §7/§4.4:
// signals that more input would let the parse succeed. Awaiting names what
// the parser was expecting at EOF: a terminatorName value ("DO", "DONE",
// "FI", "THEN", "IN", "ESAC", "'}' to end compound command", "RPAREN",
// "DOUBLE_RBRACKET") or a context: "case item terminator" or "test operand".
type IncompleteParseError struct {
	*ParseError
	Awaiting string
}

func incomplete(tok token.Token, awaiting string) *IncompleteParseError {
	return &IncompleteParseError{
		ParseError: &ParseError{
			Message: fmt.Sprintf("Expected %s", awaiting),
			Token:   tok,
		},
		Awaiting: awaiting,
	}
}

func unexpected(tok token.Token, context string, expected ...token.Kind) *ParseError {
	return &ParseError{
		Message:  fmt.Sprintf("unexpected token '%s' while parsing %s", tok.Value, context),
		Token:    tok,
		Expected: expected,
	}
}
