package optimize

import (
	"testing"

	"github.com/psh-go/psh/ast"
	"github.com/psh-go/psh/parser"
)

func mustParse(t *testing.T, src string) *ast.TopLevel {
	t.Helper()
	top, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse(%q): %v", src, err)
	}
	return top
}

func firstPipeline(t *testing.T, top *ast.TopLevel) *ast.Pipeline {
	t.Helper()
	sl := top.Items[0].(*ast.StatementList)
	return sl.Statements[0].Pipelines[0]
}

func TestOptimizeDropsBareCatAtPipelineEnd(t *testing.T) {
	top := mustParse(t, "echo hi | cat")
	out, applied := Optimize(top)
	if applied == 0 {
		t.Fatal("expected at least one optimization for a trailing bare 'cat'")
	}
	pl := firstPipeline(t, out)
	if len(pl.Commands) != 1 {
		t.Fatalf("Commands = %d, want 1 after dropping bare cat", len(pl.Commands))
	}
	sc := pl.Commands[0].(*ast.SimpleCommand)
	if sc.Args[0] != "echo" {
		t.Fatalf("remaining command = %v, want echo", sc.Args)
	}
}

func TestOptimizeKeepsCatWithArguments(t *testing.T) {
	top := mustParse(t, "cat file.txt | grep x")
	_, applied := Optimize(top)
	if applied != 0 {
		t.Fatalf("applied = %d, want 0: 'cat file.txt' has an argument and should survive", applied)
	}
}

// foldedCommand unwraps the BraceGroup an if/while fold leaves behind when
// it replaces a Pipeline command slot with surviving statements, and
// returns the first command inside it.
func foldedCommand(t *testing.T, out *ast.TopLevel) *ast.SimpleCommand {
	t.Helper()
	sl := out.Items[0].(*ast.StatementList)
	cmd := sl.Statements[0].Pipelines[0].Commands[0]
	bg, ok := cmd.(*ast.BraceGroup)
	if !ok {
		return cmd.(*ast.SimpleCommand)
	}
	return bg.Body.Statements[0].Pipelines[0].Commands[0].(*ast.SimpleCommand)
}

func TestOptimizeFoldsConstantTrueIf(t *testing.T) {
	top := mustParse(t, "if true; then echo yes; fi")
	out, applied := Optimize(top)
	if applied == 0 {
		t.Fatal("expected at least one optimization folding a constant-true if")
	}
	cmd := foldedCommand(t, out)
	if cmd.Args[0] != "echo" {
		t.Fatalf("expected the if to fold down to its then-branch, got %v", cmd.Args)
	}
}

func TestOptimizeFoldsConstantFalseIfIntoElse(t *testing.T) {
	top := mustParse(t, "if false; then echo yes; else echo no; fi")
	out, applied := Optimize(top)
	if applied == 0 {
		t.Fatal("expected at least one optimization folding a constant-false if")
	}
	cmd := foldedCommand(t, out)
	if cmd.Args[0] != "echo" || cmd.Args[1] != "no" {
		t.Fatalf("expected the if to fold down to its else-branch, got %v", cmd.Args)
	}
}

func TestOptimizeRemovesConstantFalseWhileLoop(t *testing.T) {
	top := mustParse(t, "while false; do echo never; done")
	out, applied := Optimize(top)
	if applied == 0 {
		t.Fatal("expected at least one optimization for a constant-false while loop")
	}
	if len(out.Items) != 0 {
		t.Fatalf("expected the dead while loop to be dropped from TopLevel, got %d items", len(out.Items))
	}
}

func TestOptimizeTagsLiteralWordArgs(t *testing.T) {
	top := mustParse(t, "echo hello")
	out, _ := Optimize(top)
	sl := out.Items[0].(*ast.StatementList)
	cmd := sl.Statements[0].Pipelines[0].Commands[0].(*ast.SimpleCommand)
	if cmd.ArgTypes[1] != ast.ArgLiteral {
		t.Fatalf("ArgTypes[1] = %v, want ArgLiteral for a plain word with no expansion chars", cmd.ArgTypes[1])
	}
}

func TestOptimizeDoesNotTagExpansionLikeWordsAsLiteral(t *testing.T) {
	top := mustParse(t, "echo *.txt")
	out, _ := Optimize(top)
	sl := out.Items[0].(*ast.StatementList)
	cmd := sl.Statements[0].Pipelines[0].Commands[0].(*ast.SimpleCommand)
	if cmd.ArgTypes[1] == ast.ArgLiteral {
		t.Fatal("a glob-containing arg should not be tagged ArgLiteral")
	}
}
