// Package format implements the AST/token debug renderers of spec.md
// §4.12: an indented tree printer, a DOT graph generator, an
// S-expression renderer, and a raw token dumper. Grounded on
// original_source/psh/visitor/debug_ast_visitor.py's hierarchical
// "NodeType: summary" header format and per-node child enumeration.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/psh-go/psh/ast"
	"github.com/psh-go/psh/token"
)

// Style selects how much detail Tree renders per node, mirroring
// debug_ast_visitor.py's DebugASTVisitor/CompactDebugVisitor split plus a
// Detailed tier that also prints each node's span as line:column pairs.
type Style int

const (
	Compact Style = iota
	Normal
	Detailed
)

// Tree renders node as an indented text tree in debug_ast_visitor.py's
// "NodeType: summary" header style, two spaces per level.
func Tree(node ast.Node, style Style) string {
	var b strings.Builder
	writeTree(&b, node, 0, style)
	return b.String()
}

func indent(level int) string { return strings.Repeat("  ", level) }

func writeTree(b *strings.Builder, node ast.Node, level int, style Style) {
	if node == nil {
		return
	}
	header(b, node, level, style)
	children(b, node, level, style)
}

func header(b *strings.Builder, node ast.Node, level int, style Style) {
	kind := ast.KindName(node)
	summary := summarize(node)
	b.WriteString(indent(level))
	b.WriteString(kind)
	if summary != "" {
		b.WriteString(": ")
		b.WriteString(summary)
	}
	if style == Detailed {
		sp := node.Span()
		if sp.Valid {
			fmt.Fprintf(b, "  [%d:%d-%d:%d]", sp.Start.Line, sp.Start.Column, sp.End.Line, sp.End.Column)
		}
	}
	b.WriteString("\n")
}

// summarize renders the single-line extra info debug_ast_visitor.py shows
// next to a node's header (the joined args for a SimpleCommand, the
// variable name for a loop, and so on).
func summarize(node ast.Node) string {
	switch n := node.(type) {
	case *ast.SimpleCommand:
		s := "(empty)"
		if len(n.Args) > 0 {
			s = strings.Join(n.Args, " ")
		}
		if n.Background {
			s += " &"
		}
		return s
	case *ast.WhileLoop:
		if n.Until {
			return "until"
		}
		return "while"
	case *ast.ForLoop:
		return "var: " + n.Variable
	case *ast.CStyleForLoop:
		return "((" + n.InitExpr + "; " + n.CondExpr + "; " + n.UpdateExpr + "))"
	case *ast.SelectLoop:
		return "var: " + n.Variable
	case *ast.CaseConditional:
		if n.Expr != nil {
			return "expr: " + n.Expr.Raw
		}
		return ""
	case *ast.CaseItem:
		return strings.Join(n.Patterns, " | ") + " " + n.Terminator
	case *ast.FunctionDef:
		return n.Name
	case *ast.BreakStatement:
		return strconv.Itoa(n.Level)
	case *ast.ContinueStatement:
		return strconv.Itoa(n.Level)
	case *ast.ReturnStatement:
		if n.HasCode {
			return n.Code
		}
		return ""
	case *ast.ArithmeticEvaluation:
		return n.Expression
	case *ast.Redirect:
		s := n.Type
		if n.HasFd {
			s = strconv.Itoa(n.Fd) + s
		}
		if n.HasTarget {
			s += " " + n.Target
		}
		return s
	case *ast.ArrayInitialization:
		return n.Name + "=(" + strings.Join(n.Elements, " ") + ")"
	case *ast.ArrayElementAssignment:
		return n.Name + "[" + n.Index + "]=" + n.Value
	case *ast.Pipeline:
		if n.Negated {
			return "negated"
		}
		return ""
	case *ast.AndOrList:
		return strings.Join(n.Operators, " ")
	case *ast.BinaryTestExpression:
		return n.Left + " " + n.Op + " " + n.Right
	case *ast.UnaryTestExpression:
		return n.Op + " " + n.Operand
	case *ast.CompoundTestExpression:
		return n.Op
	case *ast.Word:
		return n.Raw
	default:
		return ""
	}
}

func children(b *strings.Builder, node ast.Node, level int, style Style) {
	next := level + 1
	switch n := node.(type) {
	case *ast.TopLevel:
		for _, item := range n.Items {
			writeTree(b, item, next, style)
		}
	case *ast.StatementList:
		for _, s := range n.Statements {
			writeTree(b, s, next, style)
		}
	case *ast.AndOrList:
		for _, p := range n.Pipelines {
			writeTree(b, p, next, style)
		}
	case *ast.Pipeline:
		for _, c := range n.Commands {
			writeTree(b, c, next, style)
		}
	case *ast.SimpleCommand:
		for _, a := range n.ArrayAssignments {
			writeTree(b, a, next, style)
		}
		for _, r := range n.Redirects {
			writeTree(b, r, next, style)
		}
	case *ast.WhileLoop:
		writeTree(b, n.Condition, next, style)
		writeTree(b, n.Body, next, style)
	case *ast.ForLoop:
		writeTree(b, n.Body, next, style)
	case *ast.CStyleForLoop:
		writeTree(b, n.Body, next, style)
	case *ast.IfConditional:
		writeTree(b, n.Condition, next, style)
		writeTree(b, n.Then, next, style)
		for _, elif := range n.ElifParts {
			writeTree(b, elif.Condition, next, style)
			writeTree(b, elif.Then, next, style)
		}
		if n.Else != nil {
			writeTree(b, n.Else, next, style)
		}
	case *ast.CaseConditional:
		for _, item := range n.Items {
			writeTree(b, item, next, style)
		}
	case *ast.CaseItem:
		if n.Commands != nil {
			writeTree(b, n.Commands, next, style)
		}
	case *ast.SelectLoop:
		writeTree(b, n.Body, next, style)
	case *ast.FunctionDef:
		writeTree(b, n.Body, next, style)
	case *ast.SubshellGroup:
		writeTree(b, n.Body, next, style)
	case *ast.BraceGroup:
		writeTree(b, n.Body, next, style)
	case *ast.CompoundTestExpression:
		writeTree(b, n.Left, next, style)
		writeTree(b, n.Right, next, style)
	case *ast.NegatedTestExpression:
		writeTree(b, n.Expression, next, style)
	}
}

// DumpTokens renders one line per token: kind, literal value, and source
// span, the raw-lexer counterpart to Tree (spec.md §C.4).
func DumpTokens(toks []token.Token) string {
	var b strings.Builder
	for _, t := range toks {
		fmt.Fprintf(&b, "%-20s %-20q  %d:%d-%d:%d\n",
			t.Kind.String(), t.Value, t.Start.Line, t.Start.Column, t.End.Line, t.End.Column)
	}
	return b.String()
}
