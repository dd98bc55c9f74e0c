// Package ast defines the typed node taxonomy of spec.md §3: a tree (never a
// DAG — every child has exactly one parent, and nodes never reference their
// parent) built by the parser and read or rewritten by visitors.
//
// The node shapes mirror the teacher's (opal-lang-opal, core/ast.go) typed
// `Node` interface with a `Position()`/span accessor, generalized from that
// language's command-decorator grammar to POSIX shell's command/pipeline/
// control-flow grammar.
package ast

import "github.com/psh-go/psh/token"

// Span is the optional source-location range of a node (spec.md §3 "every
// node has an optional source span"). Valid is false for synthesized nodes
// (e.g. ones produced by the optimizer) that have no single source span.
type Span struct {
	Start token.Position
	End   token.Position
	Valid bool
}

// Node is satisfied by every AST node.
type Node interface {
	Span() Span
}

// base is embedded by every concrete node to provide Span() for free.
type base struct {
	Sp Span
}

func (b base) Span() Span { return b.Sp }

// ArgType classifies a SimpleCommand argument or Word part (spec.md §3).
type ArgType int

const (
	ArgWord ArgType = iota
	ArgString
	ArgSingleString
	ArgVariable
	ArgCommandSub
	ArgCommandSubBacktick
	ArgArithSub
	ArgComposite
	ArgLiteral
)

func (t ArgType) String() string {
	switch t {
	case ArgWord:
		return "WORD"
	case ArgString:
		return "STRING"
	case ArgSingleString:
		return "SINGLE_STRING"
	case ArgVariable:
		return "VARIABLE"
	case ArgCommandSub:
		return "COMMAND_SUB"
	case ArgCommandSubBacktick:
		return "COMMAND_SUB_BACKTICK"
	case ArgArithSub:
		return "ARITH_SUB"
	case ArgComposite:
		return "COMPOSITE"
	case ArgLiteral:
		return "LITERAL"
	default:
		return "UNKNOWN"
	}
}

// ArgTypeFromTokenKind maps a lexer token kind to the ArgType it produces as
// a bare (non-composite) SimpleCommand argument.
func ArgTypeFromTokenKind(k token.Kind) ArgType {
	switch k {
	case token.STRING:
		return ArgString
	case token.SINGLE_STRING:
		return ArgSingleString
	case token.VARIABLE:
		return ArgVariable
	case token.COMMAND_SUB:
		return ArgCommandSub
	case token.COMMAND_SUB_BACKTICK:
		return ArgCommandSubBacktick
	case token.ARITH_SUB:
		return ArgArithSub
	default:
		return ArgWord
	}
}

// ---- Top level ----

// TopLevelItem is either a *FunctionDef or a *StatementList.
type TopLevelItem interface {
	Node
	isTopLevelItem()
}

type TopLevel struct {
	base
	Items []TopLevelItem
}

// ---- Statement containers ----

type StatementList struct {
	base
	Statements []*AndOrList
}

func (*StatementList) isTopLevelItem() {}

// IsEmpty reports whether the list has no statements, the shape the
// optimizer folds dead branches down to (spec.md §4.11 Empty removal).
func (s *StatementList) IsEmpty() bool { return s == nil || len(s.Statements) == 0 }

type AndOrList struct {
	base
	Pipelines []*Pipeline
	Operators []string // "&&" | "||", len == len(Pipelines)-1
}

type Pipeline struct {
	base
	Commands []Command
	Negated  bool
}

// ---- Commands ----

// Command is satisfied by SimpleCommand, any CompoundCommand, and
// FunctionDef (spec.md §3 Pipeline.commands).
type Command interface {
	Node
	isCommand()
}

// CompoundCommand is the closed set of control-structure commands.
type CompoundCommand interface {
	Command
	isCompoundCommand()
}

type SimpleCommand struct {
	base
	Args             []string
	ArgTypes         []ArgType
	QuoteTypes       []byte // 0 when the arg has no effective quote char
	Redirects        []*Redirect
	Background       bool
	ArrayAssignments []ArrayAssignment
	Words            []*Word // optional structured view, parallel to Args
	NoGlob           []bool  // per-arg: true when pathname expansion must be suppressed (COMPOSITE tagging, spec.md §4.4)
}

func (*SimpleCommand) isCommand() {}

type WhileLoop struct {
	base
	Condition *StatementList
	Body      *StatementList
	Until     bool // true renders/parses as an `until` clause
}

func (*WhileLoop) isCommand()         {}
func (*WhileLoop) isCompoundCommand() {}

type ForLoop struct {
	base
	Variable string
	Items    []*Word
	Body     *StatementList
}

func (*ForLoop) isCommand()         {}
func (*ForLoop) isCompoundCommand() {}

type CStyleForLoop struct {
	base
	InitExpr    string
	CondExpr    string
	UpdateExpr  string
	Body        *StatementList
	HasInit     bool
	HasCond     bool
	HasUpdate   bool
	MissingDo   bool // true when the optional `do` keyword (spec.md §4.4) was absent
}

func (*CStyleForLoop) isCommand()         {}
func (*CStyleForLoop) isCompoundCommand() {}

type ElifPart struct {
	Condition *StatementList
	Then      *StatementList
}

type IfConditional struct {
	base
	Condition *StatementList
	Then      *StatementList
	ElifParts []ElifPart
	Else      *StatementList
}

func (*IfConditional) isCommand()         {}
func (*IfConditional) isCompoundCommand() {}

type CaseItem struct {
	base
	Patterns   []string
	Commands   *StatementList
	Terminator string // ";;" | ";&" | ";;&"
}

type CaseConditional struct {
	base
	Expr  *Word
	Items []*CaseItem
}

func (*CaseConditional) isCommand()         {}
func (*CaseConditional) isCompoundCommand() {}

type SelectLoop struct {
	base
	Variable string
	Items    []*Word
	Body     *StatementList
}

func (*SelectLoop) isCommand()         {}
func (*SelectLoop) isCompoundCommand() {}

type ArithmeticEvaluation struct {
	base
	Expression string
}

func (*ArithmeticEvaluation) isCommand()         {}
func (*ArithmeticEvaluation) isCompoundCommand() {}

type EnhancedTestStatement struct {
	base
	Expression TestExpr
}

func (*EnhancedTestStatement) isCommand()         {}
func (*EnhancedTestStatement) isCompoundCommand() {}

type SubshellGroup struct {
	base
	Body *StatementList
}

func (*SubshellGroup) isCommand()         {}
func (*SubshellGroup) isCompoundCommand() {}

type BraceGroup struct {
	base
	Body *StatementList
}

func (*BraceGroup) isCommand()         {}
func (*BraceGroup) isCompoundCommand() {}

type FunctionDef struct {
	base
	Name string
	Body *StatementList
}

func (*FunctionDef) isCommand()      {}
func (*FunctionDef) isTopLevelItem() {}

// BreakStatement and ContinueStatement may appear anywhere syntactically;
// loop-context legality is a validator concern (spec.md §4.4 Negative
// rules), not a parse error.
type BreakStatement struct {
	base
	Level int
}

func (*BreakStatement) isCommand() {}

type ContinueStatement struct {
	base
	Level int
}

func (*ContinueStatement) isCommand() {}

// ReturnStatement: the `return` keyword is part of the token taxonomy
// (spec.md §3) and every psh function needs a way to return a status; the
// original implementation's parser treats it as a statement in its own
// right (supplemented per SPEC_FULL.md §C).
type ReturnStatement struct {
	base
	Code    string
	HasCode bool
}

func (*ReturnStatement) isCommand() {}

// ---- Redirection ----

type Redirect struct {
	base
	Type           string // ">" ">>" "<" "<<" "<<-" "<<<" ">&" "<&" "<>" "&>"
	Fd             int
	HasFd          bool
	Target         string
	HasTarget      bool
	DupFd          int
	HasDupFd       bool
	HeredocContent string
	HasHeredoc     bool
	HeredocQuoted  bool
}

// ---- Arrays ----

type ArrayAssignment interface {
	Node
	isArrayAssignment()
}

type ArrayInitialization struct {
	base
	Name              string
	Elements          []string
	ElementTypes      []ArgType
	ElementQuoteTypes []byte
	IsAppend          bool
}

func (*ArrayInitialization) isArrayAssignment() {}

type ArrayElementAssignment struct {
	base
	Name           string
	Index          string
	Value          string
	ValueType      ArgType
	ValueQuoteType byte
	IsAppend       bool
}

func (*ArrayElementAssignment) isArrayAssignment() {}

// ---- Test-expression tree ----

type TestExpr interface {
	Node
	isTestExpr()
}

type BinaryTestExpression struct {
	base
	Op    string
	Left  string
	Right string
}

func (*BinaryTestExpression) isTestExpr() {}

type UnaryTestExpression struct {
	base
	Op      string
	Operand string
}

func (*UnaryTestExpression) isTestExpr() {}

type CompoundTestExpression struct {
	base
	Op    string // "&&" | "||"
	Left  TestExpr
	Right TestExpr
}

func (*CompoundTestExpression) isTestExpr() {}

type NegatedTestExpression struct {
	base
	Expression TestExpr
}

func (*NegatedTestExpression) isTestExpr() {}

// ---- Word (optional structured view, spec.md §3 "Word structure") ----

type WordPart struct {
	Kind  ArgType
	Text  string
	Quote byte
}

type Word struct {
	base
	Raw        string
	Quoted     bool
	Quote      byte
	IsVariable bool
	Composite  bool
	Parts      []WordPart
}
