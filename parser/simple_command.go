package parser

import (
	"github.com/psh-go/psh/ast"
	"github.com/psh-go/psh/token"
)

// appendArg records a parsed Word as the next SimpleCommand argument,
// keeping args/arg_types/quote_types/words in lockstep (spec.md §3
// SimpleCommand invariant).
func appendArg(sc *ast.SimpleCommand, w *ast.Word) {
	sc.Args = append(sc.Args, w.Raw)
	sc.ArgTypes = append(sc.ArgTypes, wordArgType(w))
	sc.QuoteTypes = append(sc.QuoteTypes, wordQuote(w))
	sc.Words = append(sc.Words, w)
	sc.NoGlob = append(sc.NoGlob, wordNoGlob(w))
}

// simpleCommandStop reports whether the current token ends a simple
// command (spec.md §4.4 grammar: a run of words/assignments/redirects
// terminated by a separator, pipe, control operator, or a closing keyword).
func (p *Parser) simpleCommandStop() bool {
	switch p.cur().Kind {
	case token.EOF, token.NEWLINE, token.SEMI, token.SEMI_SEMI, token.SEMI_AMP, token.SEMI_SEMI_AMP,
		token.AMP, token.PIPE, token.AND_AND, token.OR_OR,
		token.DO, token.DONE, token.THEN, token.ELIF, token.ELSE, token.FI,
		token.ESAC, token.RBRACE, token.RPAREN, token.DRPAREN, token.DRBRACKET:
		return true
	}
	return false
}

// parseSimpleCommand implements spec.md §3 SimpleCommand: an interleaving
// of assignment words, plain words, and redirects, in source order.
func (p *Parser) parseSimpleCommand() (ast.Command, error) {
	start := p.cur().Start
	sc := &ast.SimpleCommand{}

	for !p.simpleCommandStop() {
		switch {
		case p.at(token.IONUMBER):
			if !p.redirectStartAt(1) {
				return nil, unexpected(p.cur(), "simple command")
			}
			r, err := p.parseRedirect()
			if err != nil {
				return nil, err
			}
			sc.Redirects = append(sc.Redirects, r)
		case p.redirectStart():
			r, err := p.parseRedirect()
			if err != nil {
				return nil, err
			}
			sc.Redirects = append(sc.Redirects, r)
		case p.at(token.ASSIGNMENT_WORD):
			if err := p.parseAssignmentWord(sc); err != nil {
				return nil, err
			}
		case p.cur().Kind.WordProducing():
			w := p.parseCompositeWord()
			appendArg(sc, w)
		default:
			return nil, unexpected(p.cur(), "simple command")
		}
	}
	if len(sc.Args) == 0 && len(sc.Redirects) == 0 && len(sc.ArrayAssignments) == 0 {
		return nil, unexpected(p.cur(), "simple command")
	}

	sc.Sp = span(start, p.prevEnd())
	return sc, nil
}

// redirectStartAt reports whether the token n positions ahead begins a
// redirect operator, used to confirm an IONUMBER is actually a redirect fd
// prefix rather than a bare numeric argument.
func (p *Parser) redirectStartAt(n int) bool {
	switch p.peek(n).Kind {
	case token.LESS, token.GREAT, token.DGREAT, token.LESSAMP, token.GREATAMP,
		token.LESSGREAT, token.AMPGREAT, token.HEREDOC_START, token.HEREDOC_STRIP_START,
		token.HERESTRING:
		return true
	}
	return false
}
