package validate

import (
	"strconv"
	"strings"

	"github.com/psh-go/psh/ast"
	"github.com/psh-go/psh/visitor"
)

// StructuralValidator checks the rules from validator_visitor.py's
// ValidatorVisitor: semantic errors (empty commands, mismatched break/
// continue nesting), common mistakes (cd with too many args, deprecated
// commands), and style notes, independent of any live shell state.
//
// The "single-command pipeline can be simplified" INFO that
// validator_visitor.py defines but leaves commented out as too noisy is
// deliberately not implemented here.
type StructuralValidator struct {
	Issues []Issue

	inLoop        int
	functionNames map[string]bool
	variableNames map[string]bool
	ctx           contextStack
	inPipeline    []ast.Command
	engine        *visitor.Analyzer
}

// NewStructuralValidator builds a ready-to-use StructuralValidator.
func NewStructuralValidator() *StructuralValidator {
	v := &StructuralValidator{
		functionNames: map[string]bool{},
		variableNames: map[string]bool{},
	}
	v.engine = visitor.NewAnalyzer()
	v.register()
	return v
}

// Validate walks top and returns the accumulated issues.
func (v *StructuralValidator) Validate(top *ast.TopLevel) []Issue {
	v.engine.Visit(top)
	return v.Issues
}

func (v *StructuralValidator) addError(msg string, node ast.Node) {
	v.Issues = append(v.Issues, Issue{Severity: Error, Message: msg, NodeType: nodeTypeOf(node), Context: v.ctx.get()})
}

func (v *StructuralValidator) addWarning(msg string, node ast.Node) {
	v.Issues = append(v.Issues, Issue{Severity: Warning, Message: msg, NodeType: nodeTypeOf(node), Context: v.ctx.get()})
}

func (v *StructuralValidator) addInfo(msg string, node ast.Node) {
	v.Issues = append(v.Issues, Issue{Severity: Info, Message: msg, NodeType: nodeTypeOf(node), Context: v.ctx.get()})
}

func (v *StructuralValidator) register() {
	e := v.engine

	e.On("TopLevel", func(e *visitor.Analyzer, node ast.Node) { e.Walk(node) })
	e.On("StatementList", func(e *visitor.Analyzer, node ast.Node) { e.Walk(node) })

	e.On("SimpleCommand", func(e *visitor.Analyzer, node ast.Node) {
		n := node.(*ast.SimpleCommand)
		if len(n.Args) == 0 && len(n.ArrayAssignments) == 0 {
			v.addError("Empty command with no arguments or assignments", node)
			return
		}
		if len(n.Args) > 0 {
			cmd := n.Args[0]
			if cmd == "cd" && len(n.Args) > 2 {
				v.addWarning("cd: too many arguments (got "+strconv.Itoa(len(n.Args)-1)+", expected 0 or 1)", node)
			}
			if cmd == "which" {
				v.addInfo("Consider using 'command -v' instead of 'which' for better portability", node)
			}
			if cmd == "cat" && len(n.Args) == 2 && v.inCurrentPipeline(node) {
				v.addWarning("Useless use of cat - consider using input redirection instead", node)
			}
			for _, arg := range n.Args[1:] {
				if strings.Contains(arg, "=") && !strings.HasPrefix(arg, "=") {
					v.variableNames[strings.SplitN(arg, "=", 2)[0]] = true
				}
			}
		}
		for _, a := range n.ArrayAssignments {
			e.Visit(a)
		}
		for _, r := range n.Redirects {
			e.Visit(r)
		}
	})

	e.On("Pipeline", func(e *visitor.Analyzer, node ast.Node) {
		n := node.(*ast.Pipeline)
		if len(n.Commands) == 0 {
			v.addError("Empty pipeline with no commands", node)
			return
		}
		prevPipeline := v.inPipeline
		v.inPipeline = n.Commands
		for i, cmd := range n.Commands {
			if i > 0 {
				v.ctx.push("pipeline command " + strconv.Itoa(i+1))
			}
			e.Visit(cmd)
			if i > 0 {
				v.ctx.pop()
			}
		}
		v.inPipeline = prevPipeline
	})

	e.On("AndOrList", func(e *visitor.Analyzer, node ast.Node) {
		n := node.(*ast.AndOrList)
		if len(n.Pipelines) == 0 {
			v.addError("Empty and/or list with no pipelines", node)
			return
		}
		if len(n.Operators) != len(n.Pipelines)-1 {
			v.addError("Mismatched operators and pipelines", node)
		}
		for _, p := range n.Pipelines {
			e.Visit(p)
		}
	})

	e.On("WhileLoop", func(e *visitor.Analyzer, node ast.Node) {
		n := node.(*ast.WhileLoop)
		v.ctx.push("while loop")
		v.inLoop++
		if len(n.Condition.Statements) == 0 {
			v.addWarning("While loop with empty condition will loop forever", node)
		}
		e.Visit(n.Condition)
		e.Visit(n.Body)
		v.inLoop--
		v.ctx.pop()
	})

	e.On("ForLoop", func(e *visitor.Analyzer, node ast.Node) {
		n := node.(*ast.ForLoop)
		v.ctx.push("for loop (var: " + n.Variable + ")")
		v.inLoop++
		if len(n.Items) == 0 {
			v.addWarning("For loop with no items will not execute", node)
		}
		if isDigits(n.Variable) {
			v.addError("Invalid variable name '"+n.Variable+"' (cannot be numeric)", node)
		}
		v.variableNames[n.Variable] = true
		e.Visit(n.Body)
		v.inLoop--
		v.ctx.pop()
	})

	e.On("CStyleForLoop", func(e *visitor.Analyzer, node ast.Node) {
		n := node.(*ast.CStyleForLoop)
		v.ctx.push("C-style for loop")
		v.inLoop++
		if !n.HasCond {
			v.addWarning("C-style for loop with no condition will loop forever (use 'while true' for clarity)", node)
		}
		e.Visit(n.Body)
		v.inLoop--
		v.ctx.pop()
	})

	e.On("IfConditional", func(e *visitor.Analyzer, node ast.Node) {
		n := node.(*ast.IfConditional)
		v.ctx.push("if statement")
		if len(n.Condition.Statements) == 0 {
			v.addError("If statement with empty condition", node)
		}
		e.Visit(n.Condition)
		if len(n.Then.Statements) == 0 {
			v.addWarning("If statement with empty then block", node)
		}
		e.Visit(n.Then)
		for i, elif := range n.ElifParts {
			v.ctx.push("elif " + strconv.Itoa(i+1))
			if len(elif.Condition.Statements) == 0 {
				v.addError("Elif with empty condition", node)
			}
			e.Visit(elif.Condition)
			e.Visit(elif.Then)
			v.ctx.pop()
		}
		if n.Else != nil {
			v.ctx.push("else")
			e.Visit(n.Else)
			v.ctx.pop()
		}
		v.ctx.pop()
	})

	e.On("CaseConditional", func(e *visitor.Analyzer, node ast.Node) {
		n := node.(*ast.CaseConditional)
		expr := ""
		if n.Expr != nil {
			expr = n.Expr.Raw
		}
		v.ctx.push("case statement (expr: " + expr + ")")
		if len(n.Items) == 0 {
			v.addWarning("Case statement with no patterns", node)
		}
		seen := map[string]bool{}
		for _, item := range n.Items {
			for _, pat := range item.Patterns {
				if seen[pat] {
					v.addWarning("Duplicate case pattern '"+pat+"'", node)
				}
				seen[pat] = true
			}
			e.Visit(item)
		}
		v.ctx.pop()
	})

	e.On("CaseItem", func(e *visitor.Analyzer, node ast.Node) {
		n := node.(*ast.CaseItem)
		if len(n.Patterns) == 0 {
			v.addError("Case item with no patterns", node)
		}
		v.ctx.push("case pattern: " + strings.Join(n.Patterns, ", "))
		if n.Commands != nil {
			e.Visit(n.Commands)
		}
		if n.Terminator == ";&" || n.Terminator == ";;&" {
			v.addInfo("Using advanced case terminator '"+n.Terminator+"' - ensure this is intentional", node)
		}
		v.ctx.pop()
	})

	e.On("SelectLoop", func(e *visitor.Analyzer, node ast.Node) {
		n := node.(*ast.SelectLoop)
		v.ctx.push("select loop (var: " + n.Variable + ")")
		v.inLoop++
		if len(n.Items) == 0 {
			v.addWarning("Select loop with no items", node)
		}
		v.variableNames[n.Variable] = true
		e.Visit(n.Body)
		v.inLoop--
		v.ctx.pop()
	})

	e.On("BreakStatement", func(e *visitor.Analyzer, node ast.Node) {
		n := node.(*ast.BreakStatement)
		switch {
		case v.inLoop == 0:
			v.addError("break: only meaningful in a `for', `while', or `until' loop", node)
		case n.Level > v.inLoop:
			v.addError("break: loop count "+strconv.Itoa(n.Level)+" exceeds maximum nesting level "+strconv.Itoa(v.inLoop), node)
		}
	})

	e.On("ContinueStatement", func(e *visitor.Analyzer, node ast.Node) {
		n := node.(*ast.ContinueStatement)
		switch {
		case v.inLoop == 0:
			v.addError("continue: only meaningful in a `for', `while', or `until' loop", node)
		case n.Level > v.inLoop:
			v.addError("continue: loop count "+strconv.Itoa(n.Level)+" exceeds maximum nesting level "+strconv.Itoa(v.inLoop), node)
		}
	})

	e.On("FunctionDef", func(e *visitor.Analyzer, node ast.Node) {
		n := node.(*ast.FunctionDef)
		if v.functionNames[n.Name] {
			v.addWarning("Redefinition of function '"+n.Name+"'", node)
		}
		v.functionNames[n.Name] = true
		if len(n.Name) > 0 && n.Name[0] >= '0' && n.Name[0] <= '9' {
			v.addError("Invalid function name '"+n.Name+"' (cannot start with digit)", node)
		}
		v.ctx.push("function " + n.Name)
		e.Visit(n.Body)
		v.ctx.pop()
	})

	e.On("ArrayInitialization", func(e *visitor.Analyzer, node ast.Node) {
		n := node.(*ast.ArrayInitialization)
		v.variableNames[n.Name] = true
		if len(n.ElementTypes) > 0 {
			first := n.ElementTypes[0]
			for _, t := range n.ElementTypes {
				if t != first {
					v.addInfo("Array '"+n.Name+"' initialized with mixed element types", node)
					break
				}
			}
		}
	})

	e.On("ArrayElementAssignment", func(e *visitor.Analyzer, node ast.Node) {
		n := node.(*ast.ArrayElementAssignment)
		v.variableNames[n.Name] = true
	})

	e.On("Redirect", func(e *visitor.Analyzer, node ast.Node) {
		n := node.(*ast.Redirect)
		if n.Type == ">" && (n.Target == "&1" || n.Target == "&2") {
			v.addError("Invalid redirection syntax '>"+n.Target+"' - use '>&"+strings.TrimPrefix(n.Target, "&")+"' instead", node)
		}
		if n.Type == ">" && n.Target != "/dev/null" {
			v.addInfo("Consider using '>|' to force overwrite or '>>' to append", node)
		}
	})

	e.On("EnhancedTestStatement", func(e *visitor.Analyzer, node ast.Node) {})
}

func (v *StructuralValidator) inCurrentPipeline(node ast.Node) bool {
	if len(v.inPipeline) <= 1 {
		return false
	}
	for _, c := range v.inPipeline {
		if c == node {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
