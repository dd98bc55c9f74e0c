// Package parser implements the recursive-descent parser of spec.md §4.4:
// tokens to AST, with precise, non-recovering parse errors.
//
// Grounded on the teacher's (opal-lang-opal runtime/parser) hand-written
// recursive-descent entry points and its ParseError shape, generalized from
// devcmd's grammar to POSIX shell's.
package parser

import (
	"strconv"

	"github.com/psh-go/psh/ast"
	"github.com/psh-go/psh/lexer"
	"github.com/psh-go/psh/token"
)

// Parser consumes a fixed token slice produced by the lexer and the source
// text it came from (kept only to slice out raw arithmetic/test expression
// text by byte offset — the parser never re-lexes).
type Parser struct {
	src  string
	toks []token.Token
	pos  int
}

// Parse tokenizes and parses src in one call, the common entry point.
func Parse(src string) (*ast.TopLevel, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &Parser{src: src, toks: toks}
	return p.parseProgram()
}

// New builds a Parser over an already-lexed token stream (used by the
// source processor, which tokenizes incrementally itself).
func New(src string, toks []token.Token) *Parser {
	return &Parser{src: src, toks: toks}
}

func (p *Parser) ParseProgram() (*ast.TopLevel, error) { return p.parseProgram() }

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peek(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[i]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) expect(k token.Kind, context string) (token.Token, error) {
	if p.cur().Kind != k {
		if p.cur().Kind == token.EOF {
			return token.Token{}, incomplete(p.cur(), terminatorName(k))
		}
		return token.Token{}, unexpected(p.cur(), context, k)
	}
	return p.advance(), nil
}

func terminatorName(k token.Kind) string {
	switch k {
	case token.DO:
		return "DO"
	case token.DONE:
		return "DONE"
	case token.FI:
		return "FI"
	case token.THEN:
		return "THEN"
	case token.IN:
		return "IN"
	case token.ESAC:
		return "ESAC"
	case token.RBRACE:
		return "'}' to end compound command"
	case token.RPAREN:
		return "RPAREN"
	case token.DRPAREN:
		return "RPAREN"
	case token.DRBRACKET:
		return "DOUBLE_RBRACKET"
	default:
		return k.String()
	}
}

func (p *Parser) skipNewlines() {
	for p.at(token.NEWLINE) {
		p.advance()
	}
}

// isSeparator reports whether the current token ends a statement_list_item
// (spec.md §4.4 grammar: ';' | '&' | NEWLINE).
func (p *Parser) isSeparator() bool {
	switch p.cur().Kind {
	case token.SEMI, token.AMP, token.NEWLINE:
		return true
	}
	return false
}

func (p *Parser) rawText(start, end token.Position) string {
	if end.Offset > len(p.src) || start.Offset > end.Offset {
		return ""
	}
	return p.src[start.Offset:end.Offset]
}

// parseProgram implements `program := { function_def | statement_list_item }`
// (spec.md §4.4), grouping consecutive statement_list_items into one
// StatementList per spec.md §3's TopLevel shape.
func (p *Parser) parseProgram() (*ast.TopLevel, error) {
	top := &ast.TopLevel{}
	var cur *ast.StatementList
	flush := func() {
		if cur != nil && len(cur.Statements) > 0 {
			top.Items = append(top.Items, cur)
		}
		cur = nil
	}

	p.skipNewlines()
	for !p.at(token.EOF) {
		if p.isFunctionDefStart() {
			flush()
			fn, err := p.parseFunctionDef()
			if err != nil {
				return nil, err
			}
			top.Items = append(top.Items, fn)
			p.skipNewlines()
			continue
		}
		aol, err := p.parseAndOrList()
		if err != nil {
			return nil, err
		}
		if cur == nil {
			cur = &ast.StatementList{}
		}
		if p.at(token.AMP) {
			p.markBackground(aol)
			p.advance()
		} else if p.at(token.SEMI) {
			p.advance()
		}
		cur.Statements = append(cur.Statements, aol)
		p.skipNewlines()
	}
	flush()
	return top, nil
}

// markBackground tags the trailing simple command of the last pipeline as
// background when a statement_list_item is terminated by '&'.
func (p *Parser) markBackground(aol *ast.AndOrList) {
	if len(aol.Pipelines) == 0 {
		return
	}
	last := aol.Pipelines[len(aol.Pipelines)-1]
	if len(last.Commands) == 0 {
		return
	}
	if sc, ok := last.Commands[len(last.Commands)-1].(*ast.SimpleCommand); ok {
		sc.Background = true
	}
}

func (p *Parser) isFunctionDefStart() bool {
	if p.at(token.FUNCTION) {
		return true
	}
	if p.at(token.WORD) && p.peek(1).Kind == token.LPAREN && p.peek(2).Kind == token.RPAREN {
		return true
	}
	return false
}

func (p *Parser) parseFunctionDef() (*ast.FunctionDef, error) {
	start := p.cur().Start
	if p.at(token.FUNCTION) {
		p.advance()
	}
	nameTok, err := p.expect(token.WORD, "function name")
	if err != nil {
		return nil, err
	}
	if p.at(token.LPAREN) {
		p.advance()
		if _, err := p.expect(token.RPAREN, "function parameter list"); err != nil {
			return nil, err
		}
	}
	p.skipNewlines()
	body, err := p.parseBraceBody()
	if err != nil {
		return nil, err
	}
	fn := &ast.FunctionDef{Name: nameTok.Value, Body: body}
	fn.Sp = span(start, p.prevEnd())
	return fn, nil
}

func (p *Parser) prevEnd() token.Position {
	if p.pos == 0 {
		return p.cur().Start
	}
	return p.toks[p.pos-1].End
}

func span(start, end token.Position) ast.Span {
	return ast.Span{Start: start, End: end, Valid: true}
}

// parseBraceBody parses `{ statement_list }`, consuming both braces.
func (p *Parser) parseBraceBody() (*ast.StatementList, error) {
	if _, err := p.expect(token.LBRACE, "compound command"); err != nil {
		return nil, err
	}
	body, err := p.parseStatementListUntil(token.RBRACE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE, "compound command"); err != nil {
		return nil, err
	}
	return body, nil
}

// parseStatementListUntil parses AndOrLists separated by ';'/'&'/NEWLINE
// until the given terminator kind is next (not consumed).
func (p *Parser) parseStatementListUntil(terminator token.Kind) (*ast.StatementList, error) {
	sl := &ast.StatementList{}
	p.skipNewlines()
	for !p.at(terminator) && !p.at(token.EOF) {
		aol, err := p.parseAndOrList()
		if err != nil {
			return nil, err
		}
		if p.at(token.AMP) {
			p.markBackground(aol)
			p.advance()
		} else if p.at(token.SEMI) {
			p.advance()
		} else if p.at(token.NEWLINE) {
			// consumed by skipNewlines below
		} else if !p.at(terminator) && !p.at(token.EOF) {
			return nil, unexpected(p.cur(), "statement separator", token.SEMI, token.AMP, token.NEWLINE, terminator)
		}
		sl.Statements = append(sl.Statements, aol)
		p.skipNewlines()
	}
	if p.at(token.EOF) && terminator != token.EOF {
		return nil, incomplete(p.cur(), terminatorName(terminator))
	}
	return sl, nil
}

func (p *Parser) parseAndOrList() (*ast.AndOrList, error) {
	start := p.cur().Start
	first, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}
	list := &ast.AndOrList{Pipelines: []*ast.Pipeline{first}}
	for p.at(token.AND_AND) || p.at(token.OR_OR) {
		op := "&&"
		if p.at(token.OR_OR) {
			op = "||"
		}
		p.advance()
		p.skipNewlines()
		next, err := p.parsePipeline()
		if err != nil {
			return nil, err
		}
		list.Pipelines = append(list.Pipelines, next)
		list.Operators = append(list.Operators, op)
	}
	list.Sp = span(start, p.prevEnd())
	return list, nil
}


func (p *Parser) parsePipeline() (*ast.Pipeline, error) {
	start := p.cur().Start
	negated := false
	if p.at(token.BANG) {
		negated = true
		p.advance()
	}
	first, err := p.parseCommand()
	if err != nil {
		return nil, err
	}
	cmds := []ast.Command{first}
	for p.at(token.PIPE) {
		p.advance()
		p.skipNewlines()
		next, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, next)
	}
	pl := &ast.Pipeline{Commands: cmds, Negated: negated}
	pl.Sp = span(start, p.prevEnd())
	return pl, nil
}

func (p *Parser) parseCommand() (ast.Command, error) {
	switch p.cur().Kind {
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile(false)
	case token.UNTIL:
		return p.parseWhile(true)
	case token.FOR:
		return p.parseFor()
	case token.CASE:
		return p.parseCase()
	case token.SELECT:
		return p.parseSelect()
	case token.FUNCTION:
		return p.parseFunctionDef()
	case token.LBRACE:
		return p.parseBraceGroup()
	case token.LPAREN:
		return p.parseSubshell()
	case token.DLPAREN:
		return p.parseArithEval()
	case token.DLBRACKET:
		return p.parseEnhancedTest()
	case token.BREAK:
		return p.parseBreakContinue(true)
	case token.CONTINUE:
		return p.parseBreakContinue(false)
	case token.RETURN:
		return p.parseReturn()
	default:
		if p.isFunctionDefStart() {
			return p.parseFunctionDef()
		}
		return p.parseSimpleCommand()
	}
}

func (p *Parser) parseBreakContinue(isBreak bool) (ast.Command, error) {
	start := p.cur().Start
	p.advance()
	level := 1
	if p.at(token.WORD) {
		if n, err := strconv.Atoi(p.cur().Value); err == nil && n >= 1 {
			level = n
			p.advance()
		}
	}
	sp := span(start, p.prevEnd())
	if isBreak {
		b := &ast.BreakStatement{Level: level}
		b.Sp = sp
		return b, nil
	}
	c := &ast.ContinueStatement{Level: level}
	c.Sp = sp
	return c, nil
}

func (p *Parser) parseReturn() (ast.Command, error) {
	start := p.cur().Start
	p.advance()
	r := &ast.ReturnStatement{}
	if p.at(token.WORD) {
		r.Code = p.cur().Value
		r.HasCode = true
		p.advance()
	}
	r.Sp = span(start, p.prevEnd())
	return r, nil
}
