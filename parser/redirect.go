package parser

import (
	"strconv"

	"github.com/psh-go/psh/ast"
	"github.com/psh-go/psh/token"
)

// redirectStart reports whether the current token begins a redirect,
// optionally preceded by an IONUMBER already consumed by the caller.
func (p *Parser) redirectStart() bool {
	switch p.cur().Kind {
	case token.LESS, token.GREAT, token.DGREAT, token.LESSAMP, token.GREATAMP,
		token.LESSGREAT, token.AMPGREAT, token.HEREDOC_START, token.HEREDOC_STRIP_START,
		token.HERESTRING, token.PROCESS_SUB_IN, token.PROCESS_SUB_OUT:
		return true
	}
	return false
}

// parseRedirect implements spec.md §3 Redirect: an optional leading fd
// (IONUMBER), the operator, and a target (a word, a dup-fd number, or a
// heredoc delimiter — heredoc body content is attached later by the source
// processor, not the parser).
func (p *Parser) parseRedirect() (*ast.Redirect, error) {
	start := p.cur().Start
	r := &ast.Redirect{}

	if p.at(token.IONUMBER) {
		n, err := strconv.Atoi(p.cur().Value)
		if err == nil {
			r.Fd = n
			r.HasFd = true
		}
		p.advance()
	}

	op := p.advance()
	switch op.Kind {
	case token.LESS:
		r.Type = "<"
	case token.GREAT:
		r.Type = ">"
	case token.DGREAT:
		r.Type = ">>"
	case token.LESSAMP:
		r.Type = "<&"
	case token.GREATAMP:
		r.Type = ">&"
	case token.LESSGREAT:
		r.Type = "<>"
	case token.AMPGREAT:
		r.Type = "&>"
	case token.HERESTRING:
		r.Type = "<<<"
	case token.HEREDOC_START:
		r.Type = "<<"
		r.Target = op.Value
		r.HasTarget = true
		r.HeredocQuoted = op.Quote != 0
		r.Sp = span(start, p.prevEnd())
		return r, nil
	case token.HEREDOC_STRIP_START:
		r.Type = "<<-"
		r.Target = op.Value
		r.HasTarget = true
		r.HeredocQuoted = op.Quote != 0
		r.Sp = span(start, p.prevEnd())
		return r, nil
	case token.PROCESS_SUB_IN:
		r.Type = "<("
		r.Target = op.Value
		r.HasTarget = true
		r.Sp = span(start, p.prevEnd())
		return r, nil
	case token.PROCESS_SUB_OUT:
		r.Type = ">("
		r.Target = op.Value
		r.HasTarget = true
		r.Sp = span(start, p.prevEnd())
		return r, nil
	default:
		return nil, unexpected(op, "redirection operator")
	}

	if (r.Type == "<&" || r.Type == ">&") && p.at(token.WORD) {
		if n, err := strconv.Atoi(p.cur().Value); err == nil {
			r.DupFd = n
			r.HasDupFd = true
			p.advance()
			r.Sp = span(start, p.prevEnd())
			return r, nil
		}
	}

	if !p.cur().Kind.WordProducing() {
		return nil, unexpected(p.cur(), "redirection target")
	}
	w := p.parseCompositeWord()
	r.Target = w.Raw
	r.HasTarget = true
	r.Sp = span(start, p.prevEnd())
	return r, nil
}
