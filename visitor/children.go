package visitor

import "github.com/psh-go/psh/ast"

// WalkChildren visits every direct child of node via w.Visit, a type
// switch enumerating each concrete node's child slots. Grounded on
// base.py's ASTTransformer.transform_children, which walks
// dataclasses.fields(node) and recurses into any field holding an
// ASTNode, list of ASTNode, or tuple of ASTNode; here the same set of
// child slots is named explicitly per node type instead of discovered by
// reflection (spec.md §9's redesign flag).
func WalkChildren(w NodeWalker, node ast.Node) {
	switch n := node.(type) {
	case *ast.TopLevel:
		for _, item := range n.Items {
			w.Visit(item)
		}
	case *ast.StatementList:
		for _, s := range n.Statements {
			w.Visit(s)
		}
	case *ast.AndOrList:
		for _, p := range n.Pipelines {
			w.Visit(p)
		}
	case *ast.Pipeline:
		for _, c := range n.Commands {
			w.Visit(c)
		}
	case *ast.SimpleCommand:
		for _, r := range n.Redirects {
			w.Visit(r)
		}
	case *ast.WhileLoop:
		w.Visit(n.Condition)
		w.Visit(n.Body)
	case *ast.ForLoop:
		w.Visit(n.Body)
	case *ast.CStyleForLoop:
		w.Visit(n.Body)
	case *ast.IfConditional:
		w.Visit(n.Condition)
		w.Visit(n.Then)
		for _, elif := range n.ElifParts {
			w.Visit(elif.Condition)
			w.Visit(elif.Then)
		}
		if n.Else != nil {
			w.Visit(n.Else)
		}
	case *ast.CaseConditional:
		for _, item := range n.Items {
			w.Visit(item)
		}
	case *ast.CaseItem:
		if n.Commands != nil {
			w.Visit(n.Commands)
		}
	case *ast.SelectLoop:
		w.Visit(n.Body)
	case *ast.FunctionDef:
		w.Visit(n.Body)
	case *ast.SubshellGroup:
		w.Visit(n.Body)
	case *ast.BraceGroup:
		w.Visit(n.Body)
	case *ast.CompoundTestExpression:
		w.Visit(n.Left)
		w.Visit(n.Right)
	case *ast.NegatedTestExpression:
		w.Visit(n.Expression)
	// ArithmeticEvaluation, EnhancedTestStatement, BreakStatement,
	// ContinueStatement, ReturnStatement, Redirect, ArrayInitialization,
	// ArrayElementAssignment, BinaryTestExpression, UnaryTestExpression,
	// Word: leaf nodes carrying only scalar/string fields, nothing to walk.
	default:
	}
}

// TransformChildren rebuilds node with each of its direct children run
// through t.Visit, leaving leaf nodes untouched. This is the Transformer
// analogue of WalkChildren, used as the default fallback for any node
// kind without a registered handler.
func TransformChildren(t NodeTransformer, node ast.Node) ast.Node {
	switch n := node.(type) {
	case *ast.TopLevel:
		out := &ast.TopLevel{}
		out.Sp = n.Sp
		for _, item := range n.Items {
			if r := t.Visit(item); r != nil {
				out.Items = append(out.Items, r.(ast.TopLevelItem))
			}
		}
		return out
	case *ast.StatementList:
		out := &ast.StatementList{}
		for _, s := range n.Statements {
			r := t.Visit(s)
			if r == nil {
				continue
			}
			out.Statements = append(out.Statements, r.(*ast.AndOrList))
		}
		return out
	case *ast.AndOrList:
		out := &ast.AndOrList{Operators: n.Operators}
		out.Sp = n.Sp
		for _, p := range n.Pipelines {
			out.Pipelines = append(out.Pipelines, t.Visit(p).(*ast.Pipeline))
		}
		return out
	case *ast.Pipeline:
		out := &ast.Pipeline{Negated: n.Negated}
		out.Sp = n.Sp
		for _, c := range n.Commands {
			out.Commands = append(out.Commands, t.Visit(c).(ast.Command))
		}
		return out
	case *ast.WhileLoop:
		out := &ast.WhileLoop{Until: n.Until}
		out.Sp = n.Sp
		out.Condition = t.Visit(n.Condition).(*ast.StatementList)
		out.Body = t.Visit(n.Body).(*ast.StatementList)
		return out
	case *ast.ForLoop:
		out := &ast.ForLoop{Variable: n.Variable, Items: n.Items}
		out.Sp = n.Sp
		out.Body = t.Visit(n.Body).(*ast.StatementList)
		return out
	case *ast.CStyleForLoop:
		out := *n
		out.Body = t.Visit(n.Body).(*ast.StatementList)
		return &out
	case *ast.IfConditional:
		out := &ast.IfConditional{}
		out.Sp = n.Sp
		out.Condition = t.Visit(n.Condition).(*ast.StatementList)
		out.Then = t.Visit(n.Then).(*ast.StatementList)
		for _, elif := range n.ElifParts {
			out.ElifParts = append(out.ElifParts, ast.ElifPart{
				Condition: t.Visit(elif.Condition).(*ast.StatementList),
				Then:      t.Visit(elif.Then).(*ast.StatementList),
			})
		}
		if n.Else != nil {
			out.Else = t.Visit(n.Else).(*ast.StatementList)
		}
		return out
	case *ast.CaseConditional:
		out := &ast.CaseConditional{Expr: n.Expr}
		out.Sp = n.Sp
		for _, item := range n.Items {
			out.Items = append(out.Items, t.Visit(item).(*ast.CaseItem))
		}
		return out
	case *ast.CaseItem:
		out := *n
		if n.Commands != nil {
			out.Commands = t.Visit(n.Commands).(*ast.StatementList)
		}
		return &out
	case *ast.SelectLoop:
		out := &ast.SelectLoop{Variable: n.Variable, Items: n.Items}
		out.Sp = n.Sp
		out.Body = t.Visit(n.Body).(*ast.StatementList)
		return out
	case *ast.FunctionDef:
		out := &ast.FunctionDef{Name: n.Name}
		out.Sp = n.Sp
		out.Body = t.Visit(n.Body).(*ast.StatementList)
		return out
	case *ast.SubshellGroup:
		out := &ast.SubshellGroup{}
		out.Sp = n.Sp
		out.Body = t.Visit(n.Body).(*ast.StatementList)
		return out
	case *ast.BraceGroup:
		out := &ast.BraceGroup{}
		out.Sp = n.Sp
		out.Body = t.Visit(n.Body).(*ast.StatementList)
		return out
	case *ast.CompoundTestExpression:
		out := &ast.CompoundTestExpression{Op: n.Op}
		out.Sp = n.Sp
		out.Left = t.Visit(n.Left).(ast.TestExpr)
		out.Right = t.Visit(n.Right).(ast.TestExpr)
		return out
	case *ast.NegatedTestExpression:
		out := &ast.NegatedTestExpression{}
		out.Sp = n.Sp
		out.Expression = t.Visit(n.Expression).(ast.TestExpr)
		return out
	default:
		return node
	}
}
