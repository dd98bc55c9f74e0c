package format

import (
	"strings"
	"testing"

	"github.com/psh-go/psh/ast"
	"github.com/psh-go/psh/lexer"
	"github.com/psh-go/psh/parser"
)

func mustParse(t *testing.T, src string) *ast.TopLevel {
	t.Helper()
	top, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parser.Parse(%q): %v", src, err)
	}
	return top
}

func TestTreeHeaderShowsCommandSummary(t *testing.T) {
	top := mustParse(t, "echo hello world")
	out := Tree(top, Normal)
	if !strings.Contains(out, "SimpleCommand: echo hello world") {
		t.Fatalf("Tree output missing SimpleCommand summary:\n%s", out)
	}
}

func TestTreeBackgroundSuffix(t *testing.T) {
	top := mustParse(t, "sleep 1 &")
	out := Tree(top, Normal)
	if !strings.Contains(out, "sleep 1 &") {
		t.Fatalf("Tree output missing background suffix:\n%s", out)
	}
}

func TestTreeDetailedShowsSpans(t *testing.T) {
	top := mustParse(t, "echo hi")
	out := Tree(top, Detailed)
	if !strings.Contains(out, "[1:1-") {
		t.Fatalf("Detailed Tree output missing span annotation:\n%s", out)
	}
	compact := Tree(top, Compact)
	if strings.Contains(compact, "[1:1-") {
		t.Fatalf("Compact Tree output should not show spans:\n%s", compact)
	}
}

func TestTreeIndentsNestedBody(t *testing.T) {
	top := mustParse(t, "if true; then echo a; fi")
	out := Tree(top, Normal)
	lines := strings.Split(out, "\n")
	var sawIndented bool
	for _, l := range lines {
		if strings.HasPrefix(l, "  ") && strings.TrimSpace(l) != "" {
			sawIndented = true
		}
	}
	if !sawIndented {
		t.Fatalf("expected at least one indented child line:\n%s", out)
	}
}

func TestDOTWrapsInDigraph(t *testing.T) {
	top := mustParse(t, "echo hi")
	out := DOT(top)
	if !strings.HasPrefix(out, "digraph AST {\n") || !strings.HasSuffix(out, "}\n") {
		t.Fatalf("DOT output malformed:\n%s", out)
	}
	if !strings.Contains(out, "n0 -> n1") {
		t.Fatalf("DOT output missing a parent-child edge:\n%s", out)
	}
}

func TestSExprForPureStringSimpleCommand(t *testing.T) {
	top := mustParse(t, "echo hello")
	out := SExpr(top)
	if !strings.Contains(out, `(SimpleCommand "echo" "hello")`) {
		t.Fatalf(`SExpr output = %q, want it to contain (SimpleCommand "echo" "hello")`, out)
	}
}

func TestPrinterRoundTripsSimpleCommand(t *testing.T) {
	top := mustParse(t, "echo hello world")
	out := Print(top)
	if out != "echo hello world" {
		t.Fatalf("Print() = %q, want %q", out, "echo hello world")
	}
}

func TestPrinterQuotesStringArguments(t *testing.T) {
	top := mustParse(t, `echo "hello world"`)
	out := Print(top)
	if out != `echo "hello world"` {
		t.Fatalf("Print() = %q, want %q", out, `echo "hello world"`)
	}
}

func TestPrinterIfConditionalRoundTrip(t *testing.T) {
	top := mustParse(t, "if true; then echo a; else echo b; fi")
	out := Print(top)
	for _, want := range []string{"if\n  true", "then", "echo a", "else", "echo b", "fi"} {
		if !strings.Contains(out, want) {
			t.Errorf("Print() output missing %q:\n%s", want, out)
		}
	}
}

func TestPrinterRedirectPrependsFdDigit(t *testing.T) {
	top := mustParse(t, "echo hi 2>> err.log")
	out := Print(top)
	if strings.Contains(out, "22>>") {
		t.Fatalf("Print() duplicated the fd digit: %q", out)
	}
	if !strings.Contains(out, "2>> err.log") {
		t.Fatalf("Print() = %q, want it to contain \"2>> err.log\"", out)
	}
}

func TestPrinterForLoopQuotesItemsWithSpaces(t *testing.T) {
	top := mustParse(t, `for f in a "b c" d; do echo $f; done`)
	out := Print(top)
	if !strings.Contains(out, `"b c"`) {
		t.Fatalf("Print() should re-quote a for-loop item containing a space:\n%s", out)
	}
}

func TestDumpTokensNonEmpty(t *testing.T) {
	toks, err := lexer.Tokenize("echo hi")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	out := DumpTokens(toks)
	if out == "" {
		t.Fatal("DumpTokens returned empty output")
	}
}
