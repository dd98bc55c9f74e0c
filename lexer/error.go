package lexer

import (
	"fmt"

	"github.com/psh-go/psh/token"
)

// Error is a fatal lexer failure: unterminated quoting, unterminated
// substitution, or some other malformed input. The lexer never attempts
// recovery (spec.md §4.2 Error behavior) — it returns the first Error it
// hits.
type Error struct {
	Message string
	Span    token.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Message)
}

func newError(pos token.Position, format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Span: pos}
}
