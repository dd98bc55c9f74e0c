package parser

import (
	"strings"
	"unicode"

	"github.com/psh-go/psh/ast"
	"github.com/psh-go/psh/token"
)

// decomposeAssignment splits an ASSIGNMENT_WORD token's literal text into
// its NAME, optional [INDEX], +=/= append flag, and whatever value text the
// lexer already folded into the same token (spec.md §3 ArrayInitialization /
// ArrayElementAssignment). remainder is "" when the value was split across
// later tokens (e.g. the value contains a quote or expansion) — the caller
// fuses those separately.
func decomposeAssignment(text string) (name, index string, hasIndex, isAppend bool, remainder string, ok bool) {
	r := []rune(text)
	if len(r) == 0 || !(r[0] == '_' || unicode.IsLetter(r[0])) {
		return
	}
	i := 1
	for i < len(r) && (r[i] == '_' || unicode.IsLetter(r[i]) || unicode.IsDigit(r[i])) {
		i++
	}
	name = string(r[:i])

	if i < len(r) && r[i] == '[' {
		depth := 1
		j := i + 1
		start := j
		for j < len(r) && depth > 0 {
			switch r[j] {
			case '[':
				depth++
			case ']':
				depth--
			}
			if depth == 0 {
				break
			}
			j++
		}
		if j >= len(r) || depth != 0 {
			return "", "", false, false, "", false
		}
		index = string(r[start:j])
		hasIndex = true
		i = j + 1
	}

	if i < len(r) && r[i] == '+' {
		isAppend = true
		i++
	}
	if i >= len(r) || r[i] != '=' {
		return "", "", false, false, "", false
	}
	i++
	remainder = string(r[i:])
	return name, index, hasIndex, isAppend, remainder, true
}

// fuseAssignmentValue builds the value Word following an ASSIGNMENT_WORD
// token: remainder is whatever value text the lexer already folded into
// that token (possibly empty), and any further tokens adjacent to afterPos
// (the assignment token's end) are fused in, exactly like an ordinary
// composite argument (spec.md §4.4 "Composite-word fusion").
func (p *Parser) fuseAssignmentValue(afterPos token.Position, remainder string) *ast.Word {
	if remainder != "" {
		lead := ast.WordPart{Kind: ast.ArgWord, Text: remainder}
		fw := p.fuseWordRun(afterPos, lead)
		return fw.Word
	}
	if p.cur().Kind.WordProducing() && p.cur().Start.Offset == afterPos.Offset {
		first := p.advance()
		lead := ast.WordPart{Kind: ast.ArgTypeFromTokenKind(first.Kind), Text: literalValue(first), Quote: first.Quote}
		fw := p.fuseWordRun(first.End, lead)
		return fw.Word
	}
	return &ast.Word{}
}

// parseAssignmentWord consumes an ASSIGNMENT_WORD token and whatever
// continuation it needs, appending either an array assignment or a plain
// Arg entry to sc.
func (p *Parser) parseAssignmentWord(sc *ast.SimpleCommand) error {
	tok := p.cur()
	name, index, hasIndex, isAppend, remainder, ok := decomposeAssignment(tok.Value)
	if !ok {
		w := p.parseCompositeWord()
		appendArg(sc, w)
		return nil
	}
	start := tok.Start

	if !hasIndex && remainder == "" && p.peek(1).Kind == token.LPAREN {
		p.advance() // ASSIGNMENT_WORD "name=" / "name+="
		p.advance() // LPAREN
		init := &ast.ArrayInitialization{Name: name, IsAppend: isAppend}
		p.skipNewlines()
		for !p.at(token.RPAREN) && !p.at(token.EOF) {
			el := p.parseCompositeWord()
			init.Elements = append(init.Elements, el.Raw)
			init.ElementTypes = append(init.ElementTypes, wordArgType(el))
			init.ElementQuoteTypes = append(init.ElementQuoteTypes, wordQuote(el))
			p.skipNewlines()
		}
		if _, err := p.expect(token.RPAREN, "array initialization"); err != nil {
			return err
		}
		init.Sp = span(start, p.prevEnd())
		sc.ArrayAssignments = append(sc.ArrayAssignments, init)
		return nil
	}

	if hasIndex {
		p.advance() // consume ASSIGNMENT_WORD
		value := p.fuseAssignmentValue(tok.End, remainder)
		elem := &ast.ArrayElementAssignment{
			Name: name, Index: index, Value: value.Raw,
			ValueType: wordArgType(value), ValueQuoteType: wordQuote(value),
			IsAppend: isAppend,
		}
		elem.Sp = span(start, p.prevEnd())
		sc.ArrayAssignments = append(sc.ArrayAssignments, elem)
		return nil
	}

	// Plain scalar assignment ("name=value" or "name+=value"): recorded as
	// a normal argument, per spec.md §4.8's "name=value as the first word".
	p.advance() // consume ASSIGNMENT_WORD
	value := p.fuseAssignmentValue(tok.End, remainder)
	prefix := strings.TrimSuffix(tok.Value, remainder)
	w := &ast.Word{Raw: prefix + value.Raw, Parts: []ast.WordPart{{Kind: ast.ArgWord, Text: prefix + value.Raw}}}
	w.Sp = span(start, p.prevEnd())
	appendArg(sc, w)
	return nil
}
