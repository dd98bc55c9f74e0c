// Package optimize implements the bottom-up AST-to-AST rewrite pass of
// spec.md §4.11, grounded on
// original_source/psh/visitor/optimization_visitor.py: useless-cat
// elimination in pipelines, constant true/false folding of if/while
// conditions, dead-code removal of resulting empty statement lists, and
// pre-tagging of literal WORD arguments as LITERAL.
package optimize

import (
	"github.com/psh-go/psh/ast"
	"github.com/psh-go/psh/visitor"
)

// Optimizer rewrites an AST in place (functionally — it returns a new
// tree) and counts how many rewrites it applied, mirroring
// OptimizationVisitor.optimizations_applied.
type Optimizer struct {
	OptimizationsApplied int
	engine                *visitor.Transformer
}

// NewOptimizer builds a ready-to-use Optimizer.
func NewOptimizer() *Optimizer {
	o := &Optimizer{}
	o.engine = visitor.NewTransformer()
	o.register()
	return o
}

// Optimize runs the optimizer over top and returns the rewritten tree.
func Optimize(top *ast.TopLevel) (*ast.TopLevel, int) {
	o := NewOptimizer()
	out := o.engine.Visit(top).(*ast.TopLevel)
	return out, o.OptimizationsApplied
}

func (o *Optimizer) register() {
	t := o.engine

	t.On("Pipeline", func(t *visitor.Transformer, node ast.Node) ast.Node {
		n := node.(*ast.Pipeline)
		var optimized []ast.Command
		for _, cmd := range n.Commands {
			// A constant-folded if/while (see below) replaces itself with its
			// surviving body instead of a Command, since the fold can collapse
			// to zero statements; re-wrap that body so it still occupies a
			// Command slot in the pipeline, or drop it entirely when empty.
			switch r := t.Visit(cmd).(type) {
			case ast.Command:
				optimized = append(optimized, r)
			case *ast.StatementList:
				if len(r.Statements) == 0 {
					o.OptimizationsApplied++
					continue
				}
				optimized = append(optimized, &ast.BraceGroup{Body: r})
			}
		}
		if len(optimized) == 0 {
			return &ast.StatementList{}
		}

		for {
			changed := false
			var next []ast.Command
			for i, cmd := range optimized {
				isCat := isSimpleCat(cmd)
				leadingOrTrailing := (i == 0 || i == len(optimized)-1) && isCat && len(optimized) > 1
				middle := i > 0 && i < len(optimized)-1 && isCat &&
					!isSimpleCat(optimized[i-1]) && !isSimpleCat(optimized[i+1])
				if leadingOrTrailing || middle {
					o.OptimizationsApplied++
					changed = true
					continue
				}
				next = append(next, cmd)
			}
			optimized = next
			if !changed || len(optimized) <= 1 {
				break
			}
		}

		out := &ast.Pipeline{Commands: optimized, Negated: n.Negated}
		out.Sp = n.Sp
		return out
	})

	t.On("SimpleCommand", func(t *visitor.Transformer, node ast.Node) ast.Node {
		n := node.(*ast.SimpleCommand)
		out := *n
		out.ArgTypes = make([]ast.ArgType, len(n.ArgTypes))
		copy(out.ArgTypes, n.ArgTypes)
		for i, argType := range n.ArgTypes {
			if argType == ast.ArgWord && !hasExpansionChars(n.Args[i]) {
				out.ArgTypes[i] = ast.ArgLiteral
			}
		}
		out.Redirects = make([]*ast.Redirect, len(n.Redirects))
		for i, r := range n.Redirects {
			out.Redirects[i] = t.Visit(r).(*ast.Redirect)
		}
		return &out
	})

	t.On("IfConditional", func(t *visitor.Transformer, node ast.Node) ast.Node {
		n := node.(*ast.IfConditional)
		if ast.IsConstantTrue(n.Condition) {
			o.OptimizationsApplied++
			return t.Visit(n.Then)
		}
		if ast.IsConstantFalse(n.Condition) {
			o.OptimizationsApplied++
			if len(n.ElifParts) > 0 {
				first := n.ElifParts[0]
				rest := n.ElifParts[1:]
				next := &ast.IfConditional{Condition: first.Condition, Then: first.Then, ElifParts: rest, Else: n.Else}
				next.Sp = n.Sp
				return t.Visit(next)
			}
			if n.Else != nil {
				return t.Visit(n.Else)
			}
			return &ast.StatementList{}
		}
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
	})

	t.On("WhileLoop", func(t *visitor.Transformer, node ast.Node) ast.Node {
		n := node.(*ast.WhileLoop)
		if !n.Until && ast.IsConstantFalse(n.Condition) {
			o.OptimizationsApplied++
			return &ast.StatementList{}
		}
		out := &ast.WhileLoop{Until: n.Until}
		out.Sp = n.Sp
		out.Condition = t.Visit(n.Condition).(*ast.StatementList)
		out.Body = t.Visit(n.Body).(*ast.StatementList)
		return out
	})

	t.On("StatementList", func(t *visitor.Transformer, node ast.Node) ast.Node {
		n := node.(*ast.StatementList)
		out := &ast.StatementList{}
		for _, stmt := range n.Statements {
			r := t.Visit(stmt)
			if sl, ok := r.(*ast.StatementList); ok && len(sl.Statements) == 0 {
				continue
			}
			out.Statements = append(out.Statements, r.(*ast.AndOrList))
		}
		return out
	})

	t.On("TopLevel", func(t *visitor.Transformer, node ast.Node) ast.Node {
		n := node.(*ast.TopLevel)
		out := &ast.TopLevel{}
		out.Sp = n.Sp
		for _, item := range n.Items {
			r := t.Visit(item)
			if sl, ok := r.(*ast.StatementList); ok && len(sl.Statements) == 0 {
				continue
			}
			out.Items = append(out.Items, r.(ast.TopLevelItem))
		}
		return out
	})

	t.On("AndOrList", func(t *visitor.Transformer, node ast.Node) ast.Node {
		n := node.(*ast.AndOrList)
		var pipelines []*ast.Pipeline
		var operators []string
		for i, p := range n.Pipelines {
			pl, ok := t.Visit(p).(*ast.Pipeline)
			if !ok {
				// the pipeline folded away to nothing (every command inside it
				// was eliminated); drop it along with the operator joining it
				// to its neighbor.
				continue
			}
			if len(pipelines) > 0 {
				operators = append(operators, n.Operators[i-1])
			}
			pipelines = append(pipelines, pl)
		}
		if len(pipelines) == 0 {
			return &ast.StatementList{}
		}
		out := &ast.AndOrList{Pipelines: pipelines, Operators: operators}
		out.Sp = n.Sp
		return out
	})
}

// isSimpleCat mirrors _is_simple_cat: a bare "cat" with no arguments and
// no redirects.
func isSimpleCat(cmd ast.Command) bool {
	sc, ok := cmd.(*ast.SimpleCommand)
	if !ok {
		return false
	}
	return len(sc.Args) == 1 && sc.Args[0] == "cat" && len(sc.Redirects) == 0
}

// hasExpansionChars mirrors the character set visit_SimpleCommand checks
// before pre-tagging a WORD argument as LITERAL.
func hasExpansionChars(arg string) bool {
	for _, r := range arg {
		switch r {
		case '$', '*', '?', '[', '~':
			return true
		}
	}
	return false
}

