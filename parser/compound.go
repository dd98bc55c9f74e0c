package parser

import (
	"strings"

	"github.com/psh-go/psh/ast"
	"github.com/psh-go/psh/token"
)

// parseIf implements `if_clause := IF statement_list THEN statement_list
// { ELIF statement_list THEN statement_list } [ ELSE statement_list ] FI`
// (spec.md §4.4).
func (p *Parser) parseIf() (ast.Command, error) {
	start := p.cur().Start
	p.advance() // IF
	cond, err := p.parseStatementListUntil(token.THEN)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.THEN, "if clause"); err != nil {
		return nil, err
	}
	then, err := p.parseThenBody()
	if err != nil {
		return nil, err
	}

	node := &ast.IfConditional{Condition: cond, Then: then}
	for p.at(token.ELIF) {
		p.advance()
		elifCond, err := p.parseStatementListUntil(token.THEN)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.THEN, "elif clause"); err != nil {
			return nil, err
		}
		elifThen, err := p.parseThenBody()
		if err != nil {
			return nil, err
		}
		node.ElifParts = append(node.ElifParts, ast.ElifPart{Condition: elifCond, Then: elifThen})
	}
	if p.at(token.ELSE) {
		p.advance()
		elseBody, err := p.parseStatementListUntil(token.FI)
		if err != nil {
			return nil, err
		}
		node.Else = elseBody
	}
	if _, err := p.expect(token.FI, "if clause"); err != nil {
		return nil, err
	}
	node.Sp = span(start, p.prevEnd())
	return node, nil
}

// parseThenBody parses a THEN-branch body, stopping at whichever of
// ELIF/ELSE/FI comes first.
func (p *Parser) parseThenBody() (*ast.StatementList, error) {
	sl := &ast.StatementList{}
	p.skipNewlines()
	for !p.at(token.ELIF) && !p.at(token.ELSE) && !p.at(token.FI) && !p.at(token.EOF) {
		aol, err := p.parseAndOrList()
		if err != nil {
			return nil, err
		}
		if p.at(token.AMP) {
			p.markBackground(aol)
			p.advance()
		} else if p.at(token.SEMI) {
			p.advance()
		}
		sl.Statements = append(sl.Statements, aol)
		p.skipNewlines()
	}
	if p.at(token.EOF) {
		return nil, incomplete(p.cur(), "FI")
	}
	return sl, nil
}

// parseWhile implements `while_clause := (WHILE|UNTIL) statement_list DO
// statement_list DONE` (spec.md §4.4).
func (p *Parser) parseWhile(until bool) (ast.Command, error) {
	start := p.cur().Start
	p.advance() // WHILE | UNTIL
	cond, err := p.parseStatementListUntil(token.DO)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DO, "while clause"); err != nil {
		return nil, err
	}
	body, err := p.parseStatementListUntil(token.DONE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DONE, "while clause"); err != nil {
		return nil, err
	}
	node := &ast.WhileLoop{Condition: cond, Body: body, Until: until}
	node.Sp = span(start, p.prevEnd())
	return node, nil
}

// parseFor dispatches between the word-list `for name in word...` form and
// the C-style `for (( init; cond; update ))` form (spec.md §4.4).
func (p *Parser) parseFor() (ast.Command, error) {
	start := p.cur().Start
	p.advance() // FOR
	if p.at(token.DLPAREN) {
		return p.parseCStyleFor(start)
	}
	nameTok, err := p.expect(token.WORD, "for loop variable")
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	var items []*ast.Word
	if p.at(token.IN) {
		p.advance()
		for !p.isSeparator() && !p.at(token.DO) && !p.at(token.EOF) {
			items = append(items, p.parseCompositeWord())
		}
		if p.at(token.SEMI) || p.at(token.NEWLINE) {
			p.advance()
		}
	}
	p.skipNewlines()
	if _, err := p.expect(token.DO, "for loop"); err != nil {
		return nil, err
	}
	body, err := p.parseStatementListUntil(token.DONE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DONE, "for loop"); err != nil {
		return nil, err
	}
	node := &ast.ForLoop{Variable: nameTok.Value, Items: items, Body: body}
	node.Sp = span(start, p.prevEnd())
	return node, nil
}

// parseCStyleFor parses the `(( init; cond; update ))` header, pulling the
// three clauses out of the raw source between the parens rather than
// re-interpreting the arithmetic tokens (spec.md §4.4 "C-style for header").
func (p *Parser) parseCStyleFor(start token.Position) (ast.Command, error) {
	headerStart := p.cur().End // just past "(("
	p.advance()                // DLPAREN
	rawEnd, err := p.skipToMatchingArithClose()
	if err != nil {
		return nil, err
	}
	header := p.rawText(headerStart, rawEnd)
	parts := strings.SplitN(header, ";", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	initExpr, condExpr, updateExpr := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])

	p.skipNewlines()
	missingDo := false
	if p.at(token.SEMI) {
		p.advance()
		p.skipNewlines()
	}
	if p.at(token.DO) {
		p.advance()
	} else {
		missingDo = true
	}
	body, err := p.parseStatementListUntil(token.DONE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DONE, "for loop"); err != nil {
		return nil, err
	}
	node := &ast.CStyleForLoop{
		InitExpr: initExpr, CondExpr: condExpr, UpdateExpr: updateExpr,
		Body:      body,
		HasInit:   initExpr != "",
		HasCond:   condExpr != "",
		HasUpdate: updateExpr != "",
		MissingDo: missingDo,
	}
	node.Sp = span(start, p.prevEnd())
	return node, nil
}

// skipToMatchingArithClose advances past tokens until the DRPAREN that
// balances the DLPAREN already consumed by the caller, returning the source
// position immediately before it.
func (p *Parser) skipToMatchingArithClose() (token.Position, error) {
	depth := 0
	for {
		cur := p.cur()
		switch cur.Kind {
		case token.EOF:
			return token.Position{}, incomplete(cur, "RPAREN")
		case token.LPAREN:
			depth++
			p.advance()
		case token.DLPAREN:
			depth += 2
			p.advance()
		case token.RPAREN:
			if depth == 0 {
				return cur.Start, nil
			}
			depth--
			p.advance()
		case token.DRPAREN:
			if depth <= 1 {
				end := cur.Start
				p.advance()
				return end, nil
			}
			depth -= 2
			p.advance()
		default:
			p.advance()
		}
	}
}

// parseArithEval implements `arith_eval := DLPAREN ... DRPAREN`
// (spec.md §3 ArithmeticEvaluation), keeping the raw expression text.
func (p *Parser) parseArithEval() (ast.Command, error) {
	start := p.cur().Start
	exprStart := p.cur().End
	p.advance() // DLPAREN
	exprEnd, err := p.skipToMatchingArithClose()
	if err != nil {
		return nil, err
	}
	node := &ast.ArithmeticEvaluation{Expression: strings.TrimSpace(p.rawText(exprStart, exprEnd))}
	node.Sp = span(start, p.prevEnd())
	return node, nil
}

// parseCase implements `case_clause := CASE word IN { case_item } ESAC`
// (spec.md §4.4). A bare ';;'/';&'/';;&' found outside a case item body
// ends a simple command before any word is read, so parseSimpleCommand
// rejects the resulting empty command with an "unexpected token" error.
func (p *Parser) parseCase() (ast.Command, error) {
	start := p.cur().Start
	p.advance() // CASE
	expr := p.parseCompositeWord()
	p.skipNewlines()
	if _, err := p.expect(token.IN, "case clause"); err != nil {
		return nil, err
	}
	p.skipNewlines()

	node := &ast.CaseConditional{Expr: expr}
	for !p.at(token.ESAC) && !p.at(token.EOF) {
		item, err := p.parseCaseItem()
		if err != nil {
			return nil, err
		}
		node.Items = append(node.Items, item)
		p.skipNewlines()
	}
	if _, err := p.expect(token.ESAC, "case clause"); err != nil {
		return nil, err
	}
	node.Sp = span(start, p.prevEnd())
	return node, nil
}

func (p *Parser) parseCaseItem() (*ast.CaseItem, error) {
	start := p.cur().Start
	if p.at(token.LPAREN) {
		p.advance()
	}
	item := &ast.CaseItem{}
	for {
		patTok := p.advance()
		item.Patterns = append(item.Patterns, patTok.Value)
		if p.at(token.PIPE) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RPAREN, "case pattern"); err != nil {
		return nil, err
	}
	p.skipNewlines()
	body := &ast.StatementList{}
	for !p.at(token.SEMI_SEMI) && !p.at(token.SEMI_AMP) && !p.at(token.SEMI_SEMI_AMP) &&
		!p.at(token.ESAC) && !p.at(token.EOF) {
		aol, err := p.parseAndOrList()
		if err != nil {
			return nil, err
		}
		body.Statements = append(body.Statements, aol)
		if p.at(token.SEMI) {
			p.advance()
		}
		p.skipNewlines()
	}
	item.Commands = body
	switch p.cur().Kind {
	case token.SEMI_SEMI:
		item.Terminator = ";;"
		p.advance()
	case token.SEMI_AMP:
		item.Terminator = ";&"
		p.advance()
	case token.SEMI_SEMI_AMP:
		item.Terminator = ";;&"
		p.advance()
	case token.ESAC:
		item.Terminator = ";;"
	default:
		return nil, incomplete(p.cur(), "case item terminator")
	}
	item.Sp = span(start, p.prevEnd())
	return item, nil
}

// parseSelect implements `select_clause := SELECT name [IN word...] DO
// statement_list DONE`, mirroring parseFor's word-list handling.
func (p *Parser) parseSelect() (ast.Command, error) {
	start := p.cur().Start
	p.advance() // SELECT
	nameTok, err := p.expect(token.WORD, "select loop variable")
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	var items []*ast.Word
	if p.at(token.IN) {
		p.advance()
		for !p.isSeparator() && !p.at(token.DO) && !p.at(token.EOF) {
			items = append(items, p.parseCompositeWord())
		}
		if p.at(token.SEMI) || p.at(token.NEWLINE) {
			p.advance()
		}
	}
	p.skipNewlines()
	if _, err := p.expect(token.DO, "select loop"); err != nil {
		return nil, err
	}
	body, err := p.parseStatementListUntil(token.DONE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DONE, "select loop"); err != nil {
		return nil, err
	}
	node := &ast.SelectLoop{Variable: nameTok.Value, Items: items, Body: body}
	node.Sp = span(start, p.prevEnd())
	return node, nil
}

// parseBraceGroup implements `brace_group := '{' statement_list '}'`.
func (p *Parser) parseBraceGroup() (ast.Command, error) {
	start := p.cur().Start
	body, err := p.parseBraceBody()
	if err != nil {
		return nil, err
	}
	node := &ast.BraceGroup{Body: body}
	node.Sp = span(start, p.prevEnd())
	return node, nil
}

// parseSubshell implements `subshell := '(' statement_list ')'`.
func (p *Parser) parseSubshell() (ast.Command, error) {
	start := p.cur().Start
	p.advance() // LPAREN
	body, err := p.parseStatementListUntil(token.RPAREN)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "subshell"); err != nil {
		return nil, err
	}
	node := &ast.SubshellGroup{Body: body}
	node.Sp = span(start, p.prevEnd())
	return node, nil
}
