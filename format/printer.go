package format

import (
	"strconv"
	"strings"

	"github.com/psh-go/psh/ast"
)

// Printer reconstructs a shell script from an AST, grounded on
// original_source/psh/visitor/formatter_visitor.py: each visit method
// returns a string fragment for its node, and control structures track
// an indent level across recursive calls.
type Printer struct {
	IndentWidth int
	level       int
}

// NewPrinter builds a Printer using the given per-level indent width
// (formatter_visitor.py defaults to 2).
func NewPrinter(indentWidth int) *Printer {
	if indentWidth <= 0 {
		indentWidth = 2
	}
	return &Printer{IndentWidth: indentWidth}
}

// Print renders top as shell-script text.
func Print(top *ast.TopLevel) string {
	return NewPrinter(2).Print(top)
}

func (p *Printer) indent() string { return strings.Repeat(" ", p.level*p.IndentWidth) }
func (p *Printer) inc()           { p.level++ }
func (p *Printer) dec() {
	if p.level > 0 {
		p.level--
	}
}

// Print renders top as shell-script text, blank-line separated between
// top-level items.
func (p *Printer) Print(top *ast.TopLevel) string {
	var parts []string
	for _, item := range top.Items {
		parts = append(parts, p.visit(item))
	}
	return strings.Join(parts, "\n\n")
}

func (p *Printer) visit(node ast.Node) string {
	switch n := node.(type) {
	case *ast.StatementList:
		var parts []string
		for _, s := range n.Statements {
			parts = append(parts, p.visit(s))
		}
		return strings.Join(parts, "\n")
	case *ast.AndOrList:
		return p.visitAndOrList(n)
	case *ast.Pipeline:
		return p.visitPipeline(n)
	case *ast.SimpleCommand:
		return p.visitSimpleCommand(n)
	case *ast.WhileLoop:
		return p.visitWhileLoop(n)
	case *ast.ForLoop:
		return p.visitForLoop(n)
	case *ast.CStyleForLoop:
		return p.visitCStyleForLoop(n)
	case *ast.IfConditional:
		return p.visitIfConditional(n)
	case *ast.CaseConditional:
		return p.visitCaseConditional(n)
	case *ast.CaseItem:
		return p.visitCaseItem(n)
	case *ast.SelectLoop:
		return p.visitSelectLoop(n)
	case *ast.FunctionDef:
		return p.visitFunctionDef(n)
	case *ast.SubshellGroup:
		return p.indent() + "(\n" + p.visitIndented(n.Body) + "\n" + p.indent() + ")"
	case *ast.BraceGroup:
		return p.indent() + "{\n" + p.visitIndented(n.Body) + "\n" + p.indent() + "}"
	case *ast.BreakStatement:
		if n.Level == 1 {
			return p.indent() + "break"
		}
		return p.indent() + "break " + strconv.Itoa(n.Level)
	case *ast.ContinueStatement:
		if n.Level == 1 {
			return p.indent() + "continue"
		}
		return p.indent() + "continue " + strconv.Itoa(n.Level)
	case *ast.ReturnStatement:
		if n.HasCode {
			return p.indent() + "return " + n.Code
		}
		return p.indent() + "return"
	case *ast.ArithmeticEvaluation:
		return p.indent() + "((" + n.Expression + "))"
	case *ast.EnhancedTestStatement:
		return p.indent() + "[[ " + p.visitTest(n.Expression) + " ]]"
	case *ast.ArrayInitialization:
		return p.visitArrayInit(n)
	case *ast.ArrayElementAssignment:
		return p.visitArrayElementAssignment(n)
	case *ast.Redirect:
		return p.visitRedirect(n)
	default:
		return p.indent() + "# unknown node: " + ast.KindName(node)
	}
}

func (p *Printer) visitIndented(node ast.Node) string {
	p.inc()
	defer p.dec()
	return p.visit(node)
}

func (p *Printer) visitAndOrList(n *ast.AndOrList) string {
	if len(n.Pipelines) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(p.visit(n.Pipelines[0]))
	for i, op := range n.Operators {
		if i+1 < len(n.Pipelines) {
			b.WriteString(" " + op + " ")
			b.WriteString(strings.TrimSpace(p.visit(n.Pipelines[i+1])))
		}
	}
	return b.String()
}

func (p *Printer) visitPipeline(n *ast.Pipeline) string {
	savedLevel := p.level
	p.level = 0
	var parts []string
	for _, cmd := range n.Commands {
		parts = append(parts, strings.TrimSpace(p.visit(cmd)))
	}
	p.level = savedLevel

	result := strings.Join(parts, " | ")
	if n.Negated {
		result = "! " + result
	}
	return p.indent() + result
}

func (p *Printer) visitSimpleCommand(n *ast.SimpleCommand) string {
	var parts []string
	for _, assignment := range n.ArrayAssignments {
		parts = append(parts, p.visit(assignment))
	}
	for i, arg := range n.Args {
		var argType ast.ArgType
		if i < len(n.ArgTypes) {
			argType = n.ArgTypes[i]
		}
		switch argType {
		case ast.ArgString:
			quote := byte('"')
			if i < len(n.QuoteTypes) && n.QuoteTypes[i] != 0 {
				quote = n.QuoteTypes[i]
			}
			parts = append(parts, string(quote)+arg+string(quote))
		case ast.ArgSingleString:
			parts = append(parts, "'"+arg+"'")
		default:
			parts = append(parts, arg)
		}
	}
	for _, r := range n.Redirects {
		parts = append(parts, p.visit(r))
	}
	if n.Background {
		parts = append(parts, "&")
	}
	return p.indent() + strings.Join(parts, " ")
}

func (p *Printer) visitWhileLoop(n *ast.WhileLoop) string {
	keyword := "while"
	if n.Until {
		keyword = "until"
	}
	var lines []string
	lines = append(lines, p.indent()+keyword)
	lines = append(lines, p.visitIndented(n.Condition))
	lines = append(lines, p.indent()+"do")
	lines = append(lines, p.visitIndented(n.Body))
	lines = append(lines, p.indent()+"done")
	return strings.Join(lines, "\n")
}

func (p *Printer) visitForLoop(n *ast.ForLoop) string {
	var items []string
	for _, w := range n.Items {
		items = append(items, quoteForLoopItem(w.Raw))
	}
	var lines []string
	lines = append(lines, p.indent()+"for "+n.Variable+" in "+strings.Join(items, " "))
	lines = append(lines, p.indent()+"do")
	lines = append(lines, p.visitIndented(n.Body))
	lines = append(lines, p.indent()+"done")
	return strings.Join(lines, "\n")
}

func quoteForLoopItem(item string) string {
	if strings.ContainsAny(item, " *?[]") {
		return `"` + item + `"`
	}
	return item
}

func (p *Printer) visitCStyleForLoop(n *ast.CStyleForLoop) string {
	var lines []string
	lines = append(lines, p.indent()+"for (("+n.InitExpr+"; "+n.CondExpr+"; "+n.UpdateExpr+"))")
	lines = append(lines, p.indent()+"do")
	lines = append(lines, p.visitIndented(n.Body))
	lines = append(lines, p.indent()+"done")
	return strings.Join(lines, "\n")
}

func (p *Printer) visitIfConditional(n *ast.IfConditional) string {
	var lines []string
	lines = append(lines, p.indent()+"if")
	lines = append(lines, p.visitIndented(n.Condition))
	lines = append(lines, p.indent()+"then")
	lines = append(lines, p.visitIndented(n.Then))
	for _, elif := range n.ElifParts {
		lines = append(lines, p.indent()+"elif")
		lines = append(lines, p.visitIndented(elif.Condition))
		lines = append(lines, p.indent()+"then")
		lines = append(lines, p.visitIndented(elif.Then))
	}
	if n.Else != nil {
		lines = append(lines, p.indent()+"else")
		lines = append(lines, p.visitIndented(n.Else))
	}
	lines = append(lines, p.indent()+"fi")
	return strings.Join(lines, "\n")
}

func (p *Printer) visitCaseConditional(n *ast.CaseConditional) string {
	expr := ""
	if n.Expr != nil {
		expr = n.Expr.Raw
	}
	var lines []string
	lines = append(lines, p.indent()+"case "+expr+" in")
	p.inc()
	for _, item := range n.Items {
		lines = append(lines, p.visit(item))
	}
	p.dec()
	lines = append(lines, p.indent()+"esac")
	return strings.Join(lines, "\n")
}

func (p *Printer) visitCaseItem(n *ast.CaseItem) string {
	var lines []string
	lines = append(lines, p.indent()+strings.Join(n.Patterns, " | ")+")")
	if n.Commands != nil && len(n.Commands.Statements) > 0 {
		lines = append(lines, p.visitIndented(n.Commands))
	}
	lines = append(lines, p.indent()+n.Terminator)
	return strings.Join(lines, "\n")
}

func (p *Printer) visitSelectLoop(n *ast.SelectLoop) string {
	var items []string
	for _, w := range n.Items {
		items = append(items, quoteForLoopItem(w.Raw))
	}
	var lines []string
	lines = append(lines, p.indent()+"select "+n.Variable+" in "+strings.Join(items, " "))
	lines = append(lines, p.indent()+"do")
	lines = append(lines, p.visitIndented(n.Body))
	lines = append(lines, p.indent()+"done")
	return strings.Join(lines, "\n")
}

func (p *Printer) visitFunctionDef(n *ast.FunctionDef) string {
	var lines []string
	lines = append(lines, p.indent()+n.Name+"() {")
	lines = append(lines, p.visitIndented(n.Body))
	lines = append(lines, p.indent()+"}")
	return strings.Join(lines, "\n")
}

func (p *Printer) visitArrayInit(n *ast.ArrayInitialization) string {
	var elements []string
	for i, elem := range n.Elements {
		if i < len(n.ElementTypes) && n.ElementTypes[i] == ast.ArgString {
			quote := byte('"')
			if i < len(n.ElementQuoteTypes) && n.ElementQuoteTypes[i] != 0 {
				quote = n.ElementQuoteTypes[i]
			}
			elements = append(elements, string(quote)+elem+string(quote))
		} else {
			elements = append(elements, elem)
		}
	}
	op := "="
	if n.IsAppend {
		op = "+="
	}
	return n.Name + op + "(" + strings.Join(elements, " ") + ")"
}

func (p *Printer) visitArrayElementAssignment(n *ast.ArrayElementAssignment) string {
	op := "="
	if n.IsAppend {
		op = "+="
	}
	value := n.Value
	if n.ValueType == ast.ArgString && n.ValueQuoteType != 0 {
		value = string(n.ValueQuoteType) + n.Value + string(n.ValueQuoteType)
	}
	return n.Name + "[" + n.Index + "]" + op + value
}

func (p *Printer) visitRedirect(n *ast.Redirect) string {
	var b strings.Builder
	if n.HasFd {
		b.WriteString(strconv.Itoa(n.Fd))
	}
	b.WriteString(n.Type)
	if n.HasDupFd {
		b.WriteString(strconv.Itoa(n.DupFd))
	} else if n.Target != "" {
		b.WriteString(" " + n.Target)
	}
	return b.String()
}

func (p *Printer) visitTest(expr ast.TestExpr) string {
	switch e := expr.(type) {
	case *ast.BinaryTestExpression:
		return e.Left + " " + e.Op + " " + e.Right
	case *ast.UnaryTestExpression:
		return e.Op + " " + e.Operand
	case *ast.CompoundTestExpression:
		return p.visitTest(e.Left) + " " + e.Op + " " + p.visitTest(e.Right)
	case *ast.NegatedTestExpression:
		return "! " + p.visitTest(e.Expression)
	default:
		return ""
	}
}
