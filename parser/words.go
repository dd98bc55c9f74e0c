package parser

import (
	"strings"

	"github.com/psh-go/psh/ast"
	"github.com/psh-go/psh/token"
)

// literalValue reconstructs the semantic (quotes-stripped, sigils-kept)
// text spec.md §8 scenario 1 expects for a single token.
func literalValue(t token.Token) string {
	switch t.Kind {
	case token.STRING, token.SINGLE_STRING, token.WORD:
		return t.Value
	case token.VARIABLE:
		return "$" + t.Value
	case token.COMMAND_SUB:
		return "$(" + t.Value + ")"
	case token.COMMAND_SUB_BACKTICK:
		return "`" + t.Value + "`"
	case token.ARITH_SUB:
		return "$((" + t.Value + "))"
	default:
		return t.Value
	}
}

// parseCompositeWord fuses a maximal run of adjacent word-producing tokens
// starting at the current position into a single Word (spec.md §3
// "Composite argument", §4.4 "Composite-word fusion"), advancing past all
// consumed tokens.
func (p *Parser) parseCompositeWord() *ast.Word {
	start := p.cur().Start
	first := p.advance()
	firstPart := ast.WordPart{Kind: ast.ArgTypeFromTokenKind(first.Kind), Text: literalValue(first), Quote: first.Quote}
	w := p.fuseWordRun(first.End, firstPart)
	w.Sp = span(start, w.fusedEnd)
	return w.Word
}

// fusedWord carries the byte offset of its last consumed token alongside
// the built *ast.Word, so callers can compute an accurate span.
type fusedWord struct {
	*ast.Word
	fusedEnd token.Position
}

// fuseWordRun builds a Word starting from an already-consumed leading part,
// then greedily consumes adjacent word-producing tokens starting at
// prevEnd (spec.md §4.4 "Composite-word fusion"). Used both for ordinary
// arguments and for the value half of an array-element assignment.
func (p *Parser) fuseWordRun(prevEnd token.Position, lead ast.WordPart) fusedWord {
	w := &ast.Word{Parts: []ast.WordPart{lead}}
	var b strings.Builder
	b.WriteString(lead.Text)

	for {
		cur := p.cur()
		if !cur.Kind.WordProducing() || cur.Start.Offset != prevEnd.Offset {
			break
		}
		p.advance()
		part := ast.WordPart{Kind: ast.ArgTypeFromTokenKind(cur.Kind), Text: literalValue(cur), Quote: cur.Quote}
		w.Parts = append(w.Parts, part)
		b.WriteString(part.Text)
		prevEnd = cur.End
	}

	w.Raw = b.String()
	w.Composite = len(w.Parts) > 1
	if len(w.Parts) == 1 {
		w.IsVariable = w.Parts[0].Kind == ast.ArgVariable
		w.Quote = w.Parts[0].Quote
		w.Quoted = w.Parts[0].Quote != 0
	}
	for _, part := range w.Parts {
		if part.Quote != 0 {
			w.Quoted = true
		}
	}
	return fusedWord{Word: w, fusedEnd: prevEnd}
}

// wordArgType returns the SimpleCommand arg_type for a parsed Word,
// promoting a multi-part fusion to COMPOSITE per spec.md §3.
func wordArgType(w *ast.Word) ast.ArgType {
	if w.Composite {
		return ast.ArgComposite
	}
	return w.Parts[0].Kind
}

// wordQuote returns the effective single quote char recorded for a Word,
// or 0 for a composite or unquoted word.
func wordQuote(w *ast.Word) byte {
	if w.Composite {
		return 0
	}
	return w.Parts[0].Quote
}

// wordNoGlob reports whether a word must be tagged to suppress pathname
// expansion downstream (spec.md §4.4 "Globbing suppression for COMPOSITE":
// any quoted segment, alone or fused, disables glob expansion for that
// argument — spec.md §8 scenario 1 is the single-part case of this rule).
func wordNoGlob(w *ast.Word) bool {
	for _, part := range w.Parts {
		if part.Quote == '\'' || part.Quote == '"' {
			return true
		}
	}
	return false
}
