package format

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/psh-go/psh/ast"
)

// maxLabelWidth bounds a DOT node label's rendered column width (via
// golang.org/x/text/width, which a plain len() would get wrong for
// full-width/CJK script content embedded in a string literal), so a
// pathological one-line script doesn't blow up node box sizes.
const maxLabelWidth = 60

// DOT renders node and its descendants as a Graphviz "digraph AST { ... }"
// (spec.md §4.12 ast-dot), one node per AST node plus an edge per parent-
// child relationship, labeled with ast.KindName and a truncated summary.
func DOT(node ast.Node) string {
	var b strings.Builder
	b.WriteString("digraph AST {\n  node [shape=box, fontname=\"monospace\"];\n")
	counter := 0
	writeDOT(&b, node, &counter)
	b.WriteString("}\n")
	return b.String()
}

func writeDOT(b *strings.Builder, node ast.Node, counter *int) int {
	id := *counter
	*counter++
	label := ast.KindName(node)
	if s := summarize(node); s != "" {
		label += "\\n" + truncateLabel(s)
	}
	fmt.Fprintf(b, "  n%d [label=%q];\n", id, label)

	for _, child := range dotChildren(node) {
		childID := writeDOT(b, child, counter)
		fmt.Fprintf(b, "  n%d -> n%d;\n", id, childID)
	}
	return id
}

func truncateLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	if dotLabelWidth(s) <= maxLabelWidth {
		return s
	}
	var b strings.Builder
	w := 0
	for _, r := range s {
		rw := runeWidth(r)
		if w+rw > maxLabelWidth-1 {
			break
		}
		b.WriteRune(r)
		w += rw
	}
	b.WriteString("...")
	return b.String()
}

func dotLabelWidth(s string) int {
	w := 0
	for _, r := range s {
		w += runeWidth(r)
	}
	return w
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// dotChildren returns the direct AST children of node, reusing the same
// enumeration Tree's children() uses, flattened into a slice so DOT can
// assign each a fresh node id.
func dotChildren(node ast.Node) []ast.Node {
	var out []ast.Node
	switch n := node.(type) {
	case *ast.TopLevel:
		for _, item := range n.Items {
			out = append(out, item)
		}
	case *ast.StatementList:
		for _, s := range n.Statements {
			out = append(out, s)
		}
	case *ast.AndOrList:
		for _, p := range n.Pipelines {
			out = append(out, p)
		}
	case *ast.Pipeline:
		for _, c := range n.Commands {
			out = append(out, c)
		}
	case *ast.SimpleCommand:
		for _, a := range n.ArrayAssignments {
			out = append(out, a)
		}
		for _, r := range n.Redirects {
			out = append(out, r)
		}
	case *ast.WhileLoop:
		out = append(out, n.Condition, n.Body)
	case *ast.ForLoop:
		out = append(out, n.Body)
	case *ast.CStyleForLoop:
		out = append(out, n.Body)
	case *ast.IfConditional:
		out = append(out, n.Condition, n.Then)
		for _, elif := range n.ElifParts {
			out = append(out, elif.Condition, elif.Then)
		}
		if n.Else != nil {
			out = append(out, n.Else)
		}
	case *ast.CaseConditional:
		for _, item := range n.Items {
			out = append(out, item)
		}
	case *ast.CaseItem:
		if n.Commands != nil {
			out = append(out, n.Commands)
		}
	case *ast.SelectLoop:
		out = append(out, n.Body)
	case *ast.FunctionDef:
		out = append(out, n.Body)
	case *ast.SubshellGroup:
		out = append(out, n.Body)
	case *ast.BraceGroup:
		out = append(out, n.Body)
	case *ast.CompoundTestExpression:
		out = append(out, n.Left, n.Right)
	case *ast.NegatedTestExpression:
		out = append(out, n.Expression)
	}
	return out
}

// SExpr renders node as a parenthesized S-expression, e.g.
// (SimpleCommand "echo" "hello") or (IfConditional (StatementList ...) ...).
// A SimpleCommand whose args are all plain words or quoted strings, with no
// redirects, assignments or '&', is written in that per-argument shorthand.
func SExpr(node ast.Node) string {
	var b strings.Builder
	writeSExpr(&b, node)
	return b.String()
}

func writeSExpr(b *strings.Builder, node ast.Node) {
	if node == nil {
		b.WriteString("nil")
		return
	}
	kids := dotChildren(node)
	if sc, ok := node.(*ast.SimpleCommand); ok && len(sc.Args) > 0 && len(kids) == 0 && !sc.Background {
		pure := true
		for _, t := range sc.ArgTypes {
			if t != ast.ArgWord && t != ast.ArgString && t != ast.ArgSingleString {
				pure = false
			}
		}
		if pure {
			b.WriteString("(SimpleCommand")
			for _, a := range sc.Args {
				b.WriteString(" " + strconv.Quote(a))
			}
			b.WriteString(")")
			return
		}
	}
	b.WriteString("(")
	b.WriteString(ast.KindName(node))
	if s := summarize(node); s != "" {
		b.WriteString(" ")
		b.WriteString(strconv.Quote(s))
	}
	for _, k := range kids {
		b.WriteString(" ")
		writeSExpr(b, k)
	}
	b.WriteString(")")
}
