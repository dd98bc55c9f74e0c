// Package security implements the security-pattern scanner of spec.md
// §4.10, grounded on
// original_source/psh/visitor/security_visitor.py's dangerous-command,
// sensitive-command, chmod/rm, curl|sh, and arithmetic-injection checks.
package security

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/psh-go/psh/ast"
	"github.com/psh-go/psh/visitor"
)

// Severity mirrors SecurityIssue's 'HIGH'/'MEDIUM'/'LOW' strings.
type Severity string

const (
	High   Severity = "HIGH"
	Medium Severity = "MEDIUM"
	Low    Severity = "LOW"
)

// Issue is a single security finding, grounded on SecurityIssue.
type Issue struct {
	Severity Severity
	Kind     string
	Message  string
	Node     ast.Node
}

func (i Issue) String() string { return "[" + string(i.Severity) + "] " + i.Kind + ": " + i.Message }

var dangerousCommands = map[string]string{
	"eval":   "Dynamic code execution - high risk of injection",
	"source": "Loading external scripts - verify source is trusted",
	".":      "Loading external scripts - verify source is trusted",
	"exec":   "Process replacement - ensure arguments are validated",
}

var sensitiveCommands = map[string]string{
	"chmod": "File permission changes",
	"chown": "File ownership changes",
	"rm":    "File deletion",
	"dd":    "Low-level disk operations",
	"mkfs":  "Filesystem creation",
	"fdisk": "Disk partitioning",
}

var shellInterpreters = map[string]bool{"sh": true, "bash": true, "zsh": true, "ksh": true}
var dangerousRmTargets = map[string]bool{"/": true, "/*": true, "/bin": true, "/usr": true, "/etc": true, "/var": true, "/home": true}
var sensitiveFiles = map[string]bool{"/etc/passwd": true, "/etc/shadow": true, "/etc/sudoers": true}

var octalPerm = regexp.MustCompile(`^\d{3,4}$`)

// Scanner walks an AST and accumulates Issues, grounded on SecurityVisitor.
type Scanner struct {
	Issues []Issue
	engine *visitor.Analyzer
}

// NewScanner builds a ready-to-use Scanner.
func NewScanner() *Scanner {
	s := &Scanner{}
	s.engine = visitor.NewAnalyzer()
	s.register()
	return s
}

// Scan walks top and returns the accumulated issues.
func Scan(top *ast.TopLevel) []Issue {
	s := NewScanner()
	s.engine.Visit(top)
	return s.Issues
}

func (s *Scanner) add(sev Severity, kind, msg string, node ast.Node) {
	s.Issues = append(s.Issues, Issue{Severity: sev, Kind: kind, Message: msg, Node: node})
}

func (s *Scanner) register() {
	e := s.engine

	e.On("SimpleCommand", func(e *visitor.Analyzer, node ast.Node) {
		n := node.(*ast.SimpleCommand)
		if len(n.Args) == 0 {
			return
		}
		cmd := n.Args[0]

		if reason, ok := dangerousCommands[cmd]; ok {
			s.add(High, "DANGEROUS_COMMAND", cmd+": "+reason, n)
		}
		if reason, ok := sensitiveCommands[cmd]; ok {
			s.add(Medium, "SENSITIVE_COMMAND", cmd+": "+reason, n)
		}

		if cmd == "chmod" {
			for _, arg := range n.Args[1:] {
				if isWorldWritablePermission(arg) {
					s.add(High, "WORLD_WRITABLE", "chmod "+arg+": Creates world-writable files - security risk", n)
				}
			}
		}

		if cmd == "eval" || shellInterpreters[cmd] {
			if len(n.Words) > 1 {
				for _, w := range n.Words[1:] {
					if w == nil {
						continue
					}
					if w.IsVariable || (!w.Quoted && strings.Contains(w.Raw, "$")) {
						s.add(High, "UNQUOTED_EXPANSION", "Unquoted variable in "+cmd+" - potential command injection", n)
					}
				}
			} else {
				for _, arg := range n.Args[1:] {
					if strings.Contains(arg, "$") {
						s.add(High, "UNQUOTED_EXPANSION", "Unquoted variable in "+cmd+" - potential command injection", n)
					}
				}
			}
		}

		if cmd == "rm" && strings.Contains(strings.Join(n.Args, " "), "-rf") {
			for _, arg := range n.Args {
				if dangerousRmTargets[arg] {
					s.add(High, "DANGEROUS_RM", "rm -rf "+arg+": Extremely dangerous operation", n)
				}
			}
		}

		for _, r := range n.Redirects {
			e.Visit(r)
		}
	})

	e.On("Pipeline", func(e *visitor.Analyzer, node ast.Node) {
		n := node.(*ast.Pipeline)
		var cmdNames []string
		for _, cmd := range n.Commands {
			if sc, ok := cmd.(*ast.SimpleCommand); ok && len(sc.Args) > 0 {
				cmdNames = append(cmdNames, sc.Args[0])
			}
			e.Visit(cmd)
		}
		if len(cmdNames) >= 2 {
			first, last := cmdNames[0], cmdNames[len(cmdNames)-1]
			if (first == "curl" || first == "wget") && shellInterpreters[last] {
				s.add(High, "REMOTE_CODE_EXECUTION", "Downloading and executing remote code without verification", n)
			}
		}
	})

	e.On("Redirect", func(e *visitor.Analyzer, node ast.Node) {
		n := node.(*ast.Redirect)
		if sensitiveFiles[n.Target] && (n.Type == ">" || n.Type == ">>") {
			s.add(High, "SENSITIVE_FILE_WRITE", "Writing to sensitive file: "+n.Target, n)
		}
	})

	e.On("ForLoop", func(e *visitor.Analyzer, node ast.Node) {
		n := node.(*ast.ForLoop)
		for _, item := range n.Items {
			if strings.HasPrefix(item.Raw, "$(") || strings.HasPrefix(item.Raw, "`") {
				s.add(Medium, "UNQUOTED_SUBSTITUTION", "Iterating over unquoted command substitution - may break on spaces", n)
			}
		}
		e.Visit(n.Body)
	})

	e.On("ArithmeticEvaluation", func(e *visitor.Analyzer, node ast.Node) {
		n := node.(*ast.ArithmeticEvaluation)
		if arithmeticHasVariableLikeText(n.Expression) {
			s.add(Medium, "ARITHMETIC_INJECTION", "Variable expansion in arithmetic - ensure variables contain only numbers", n)
		}
	})
}

// isWorldWritablePermission mirrors _is_world_writable_permission.
func isWorldWritablePermission(perm string) bool {
	if octalPerm.MatchString(perm) {
		last := perm[len(perm)-1]
		n, err := strconv.Atoi(string(last))
		return err == nil && n&2 != 0
	}
	if strings.Contains(perm, "o+w") || strings.Contains(perm, "a+w") || strings.Contains(perm, "o=w") {
		return true
	}
	return perm == "777" || perm == "0777"
}

// arithmeticHasVariableLikeText mirrors visit_ArithmeticEvaluation's
// character-stripping heuristic: after removing digits, operators,
// parens, and whitespace, any remaining letter/underscore means a
// variable reference survived into the expression.
func arithmeticHasVariableLikeText(expr string) bool {
	const strip = "0123456789+-*/%()= \t<>!&|^~"
	var b strings.Builder
	for _, r := range strings.TrimSpace(expr) {
		if strings.ContainsRune(strip, r) {
			continue
		}
		b.WriteRune(r)
	}
	rest := b.String()
	for _, r := range rest {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}
