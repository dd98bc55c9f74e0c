// Package validate implements the structural and enhanced AST validators
// of spec.md §4.8, grounded on
// original_source/psh/visitor/validator_visitor.py (structural rules) and
// original_source/psh/visitor/enhanced_validator_visitor.py (scoped
// variable tracking, command-typo and security checks).
package validate

import (
	"fmt"
	"strings"

	"github.com/psh-go/psh/ast"
)

// Severity mirrors validator_visitor.py's Severity enum.
type Severity string

const (
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
)

// Issue is a single validation finding, grounded on ValidationIssue.
type Issue struct {
	Severity Severity
	Message  string
	NodeType string
	Context  string
}

func (i Issue) String() string {
	prefix := fmt.Sprintf("[%s]", i.NodeType)
	if i.Context != "" {
		prefix += " in " + i.Context
	}
	return prefix + ": " + i.Message
}

// contextStack is the "current_context" push/pop/get helper from
// validator_visitor.py's _push_context/_pop_context/_get_context.
type contextStack struct {
	frames []string
}

func (c *contextStack) push(frame string) { c.frames = append(c.frames, frame) }

func (c *contextStack) pop() {
	if len(c.frames) > 0 {
		c.frames = c.frames[:len(c.frames)-1]
	}
}

func (c *contextStack) get() string {
	return strings.Join(c.frames, " > ")
}

// Summary renders the grouped-by-severity text report get_summary()
// produces in validator_visitor.py.
func Summary(issues []Issue) string {
	if len(issues) == 0 {
		return "No issues found - AST is valid!"
	}
	var errs, warns, infos []Issue
	for _, i := range issues {
		switch i.Severity {
		case Error:
			errs = append(errs, i)
		case Warning:
			warns = append(warns, i)
		case Info:
			infos = append(infos, i)
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d issue(s):\n", len(issues))
	if len(errs) > 0 {
		fmt.Fprintf(&b, "  - %d error(s)\n", len(errs))
	}
	if len(warns) > 0 {
		fmt.Fprintf(&b, "  - %d warning(s)\n", len(warns))
	}
	if len(infos) > 0 {
		fmt.Fprintf(&b, "  - %d info message(s)\n", len(infos))
	}
	b.WriteString("\n")
	for _, group := range []struct {
		sev   Severity
		label string
		items []Issue
	}{
		{Error, "ERRORS", errs},
		{Warning, "WARNINGS", warns},
		{Info, "INFOS", infos},
	} {
		if len(group.items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", group.label)
		for _, issue := range group.items {
			b.WriteString(issue.String())
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func nodeTypeOf(n ast.Node) string { return ast.KindName(n) }
