// Package source implements the script/line processor of spec.md §4.13:
// incremental line accumulation over an arbitrary line-yielding input,
// a completeness probe that distinguishes "needs more input" from a real
// parse error, heredoc body collection, an alias-expansion hook, debug
// dump hooks, and dispatch to an external executor collaborator. It also
// owns the trap-table data model (trap.go) and the shebang supplement
// (Processor.Shebang), grounded on
// original_source/psh/scripting/{shebang_handler,script_validator}.py and
// original_source/psh/core/trap_manager.py.
package source

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/psh-go/psh/ast"
	"github.com/psh-go/psh/format"
	"github.com/psh-go/psh/lexer"
	"github.com/psh-go/psh/parser"
	"github.com/psh-go/psh/token"
	"github.com/psh-go/psh/visitor"
)

// LineReader yields the next input line (without its trailing newline)
// and whether one was available; ok is false at end of input. It is the
// processor's only notion of "a file, a string, or an interactive
// reader" (spec.md §4.13) — callers adapt bufio.Scanner, a string
// splitter, or a readline prompt to this shape.
type LineReader func() (line string, ok bool)

// AliasExpander is the external alias manager collaborator: the
// processor does not implement alias semantics itself, only the hook
// contract (spec.md §4.13 "Alias expansion hook").
type AliasExpander interface {
	Expand(toks []token.Token) []token.Token
}

// Executor runs a parsed top level and reports the resulting exit code,
// the external execution collaborator (spec.md §1 Non-goals: process
// execution is out of scope for this module).
type Executor interface {
	ExecuteTopLevel(top *ast.TopLevel) (exitCode int, err error)
}

// HistorySink records successfully parsed command text, an external
// collaborator the processor only calls into (spec.md Non-goals:
// history is out of scope here).
type HistorySink interface {
	Record(command string)
}

// LoopControlSignal is what an Executor should return when a break/
// continue leaks past every enclosing loop it could apply to; the
// processor converts it into a user-facing message rather than letting
// it propagate as an internal control-flow exception (spec.md §4.13
// "Dispatch").
type LoopControlSignal struct {
	Kind  string // "break" or "continue"
	Level int
}

func (e *LoopControlSignal) Error() string {
	return fmt.Sprintf("%s: only meaningful in a `for', `while', or `until' loop", e.Kind)
}

// Processor drives the lexer and parser over a LineReader, one logical
// command at a time.
type Processor struct {
	Filename    string
	DebugTokens bool
	DebugAST    bool
	DebugFormat string // "pretty" | "tree" | "compact" | "dot" | "sexp"

	Aliases AliasExpander
	Exec    Executor
	History HistorySink
	Traps   *TrapTable

	lastExitCode int

	bufferLines     []string
	bufferStartLine int
	lineNo          int

	shebang    string
	hasShebang bool
}

// NewProcessor builds a Processor that dispatches parsed scripts to
// exec, defaulting DebugFormat to "tree" (spec.md §6.3 PSH_AST_FORMAT
// default) and initializing an empty trap table whose action runner is
// exec itself when exec also implements ActionRunner, or a no-op runner
// otherwise.
func NewProcessor(filename string, exec Executor) *Processor {
	p := &Processor{Filename: filename, DebugFormat: "tree", Exec: exec}
	runner, ok := exec.(ActionRunner)
	if !ok {
		runner = noopActionRunner{}
	}
	p.Traps = NewTrapTable(runner)
	return p
}

type noopActionRunner struct{}

func (noopActionRunner) RunTrapAction(string) (int, error) { return 0, nil }

// LastExitCode returns the exit code of the most recently dispatched
// command, or of the most recent parse failure (which sets it to 1).
func (p *Processor) LastExitCode() int { return p.lastExitCode }

// Shebang returns the leading "#!" line's text (without the leading
// "#!", whitespace-trimmed) and whether one was seen, supplemented per
// SPEC_FULL.md §C.1.
func (p *Processor) Shebang() (string, bool) { return p.shebang, p.hasShebang }

// Run drives lr to completion, processing and dispatching every
// complete command it yields, stopping at the first reported error
// (matching a single non-interactive script pass). It returns nil once
// lr is exhausted with no pending partial command.
func (p *Processor) Run(lr LineReader) error {
	for {
		handled, err := p.Next(lr)
		if err != nil {
			return err
		}
		if !handled {
			return nil
		}
	}
}

// Next accumulates and dispatches the next complete command from lr.
// handled is false when lr was already exhausted and there was nothing
// to do; err is non-nil for a genuine (non-incomplete) parse failure or
// a dispatch-time error, already located via (*Processor).locate.
func (p *Processor) Next(lr LineReader) (handled bool, err error) {
	top, toks, text, err := p.readCommand(lr)
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		p.lastExitCode = 1
		return true, p.locate(err)
	}

	if err := p.collectHeredocs(top, lr); err != nil {
		p.lastExitCode = 1
		return true, p.locate(err)
	}

	if p.DebugTokens || p.DebugAST {
		p.emitDebug(toks, top)
	}

	if p.History != nil {
		p.History.Record(text)
	}

	code, execErr := p.Exec.ExecuteTopLevel(top)
	p.lastExitCode = code
	p.Traps.SetLastExitCode(code)

	var loopSignal *LoopControlSignal
	if errors.As(execErr, &loopSignal) {
		return true, p.locate(loopSignal)
	}
	if execErr != nil {
		return true, p.locate(execErr)
	}
	return true, nil
}

// readCommand accumulates lines from lr into one logical command
// buffer: empty/comment-only lines are skipped while the buffer is
// empty, a trailing unescaped backslash continues the current line
// without a newline, and after every completed line a full tokenize+
// parse is attempted. An IncompleteParseError means "read more"; any
// other error (or a clean success) ends accumulation.
func (p *Processor) readCommand(lr LineReader) (*ast.TopLevel, []token.Token, string, error) {
	p.bufferLines = nil
	pendingContinuation := false

	for {
		line, ok := lr()
		p.lineNo++
		if !ok {
			if len(p.bufferLines) == 0 {
				return nil, nil, "", io.EOF
			}
			return nil, nil, "", fmt.Errorf("unexpected end of input")
		}

		if p.lineNo == 1 && strings.HasPrefix(line, "#!") {
			p.shebang = strings.TrimSpace(strings.TrimPrefix(line, "#!"))
			p.hasShebang = true
		}

		trimmed := strings.TrimSpace(line)
		if !pendingContinuation && len(p.bufferLines) == 0 {
			p.bufferStartLine = p.lineNo
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
		}

		cont := trailingUnescapedBackslash(line)
		if cont {
			line = strings.TrimSuffix(line, "\\")
		}
		if pendingContinuation {
			p.bufferLines[len(p.bufferLines)-1] += line
		} else {
			p.bufferLines = append(p.bufferLines, line)
		}
		pendingContinuation = cont
		if cont {
			continue
		}

		text := strings.Join(p.bufferLines, "\n")
		toks, lexErr := lexer.Tokenize(text)
		if lexErr != nil {
			return nil, nil, "", lexErr
		}
		if p.Aliases != nil {
			toks = p.Aliases.Expand(toks)
		}
		top, err := parser.New(text, toks).ParseProgram()
		if err == nil {
			return top, toks, text, nil
		}

		var incomplete *parser.IncompleteParseError
		if errors.As(err, &incomplete) {
			continue
		}
		return nil, nil, "", err
	}
}

// trailingUnescapedBackslash reports whether line ends in a backslash
// that is itself not escaped (an odd run of trailing backslashes).
func trailingUnescapedBackslash(line string) bool {
	n := 0
	for i := len(line) - 1; i >= 0 && line[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

// collectHeredocs walks top for every "<<"/"<<-" redirect still missing
// its body and reads subsequent lines from lr up to (not including) the
// delimiter, stripping leading tabs for "<<-".
func (p *Processor) collectHeredocs(top *ast.TopLevel, lr LineReader) error {
	var pending []*ast.Redirect
	e := visitor.NewAnalyzer()
	e.On("Redirect", func(e *visitor.Analyzer, node ast.Node) {
		r := node.(*ast.Redirect)
		if (r.Type == "<<" || r.Type == "<<-") && !r.HasHeredoc {
			pending = append(pending, r)
		}
	})
	e.Visit(top)

	for _, r := range pending {
		strip := r.Type == "<<-"
		var b strings.Builder
		for {
			line, ok := lr()
			if !ok {
				return fmt.Errorf("unexpected EOF while looking for heredoc delimiter %q", r.Target)
			}
			p.lineNo++
			check := line
			if strip {
				check = strings.TrimLeft(line, "\t")
			}
			if check == r.Target {
				break
			}
			if strip {
				line = strings.TrimLeft(line, "\t")
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		r.HeredocContent = b.String()
		r.HasHeredoc = true
	}
	return nil
}

// emitDebug logs token dumps and/or an AST rendering in the configured
// format, through the package logger (spec.md §A.1: structured
// slog.Debug records, not ad-hoc prints).
func (p *Processor) emitDebug(toks []token.Token, top *ast.TopLevel) {
	if p.DebugTokens {
		logger.Debug("token dump", "tokens", format.DumpTokens(toks))
	}
	if p.DebugAST {
		logger.Debug("ast dump", "format", p.DebugFormat, "ast", p.renderAST(top))
	}
}

func (p *Processor) renderAST(top *ast.TopLevel) string {
	switch p.DebugFormat {
	case "pretty":
		return format.Print(top)
	case "compact":
		return format.Tree(top, format.Compact)
	case "dot":
		return format.DOT(top)
	case "sexp":
		return format.SExpr(top)
	default:
		return format.Tree(top, format.Normal)
	}
}
