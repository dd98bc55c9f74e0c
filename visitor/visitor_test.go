package visitor

import (
	"testing"

	"github.com/psh-go/psh/ast"
)

func cmd(args ...string) *ast.SimpleCommand {
	return &ast.SimpleCommand{Args: args}
}

func oneCmdTop(c ast.Command) *ast.TopLevel {
	pl := &ast.Pipeline{Commands: []ast.Command{c}}
	aol := &ast.AndOrList{Pipelines: []*ast.Pipeline{pl}}
	sl := &ast.StatementList{Statements: []*ast.AndOrList{aol}}
	return &ast.TopLevel{Items: []ast.TopLevelItem{sl}}
}

func TestAnalyzerDispatchesToRegisteredHandler(t *testing.T) {
	top := oneCmdTop(cmd("echo", "hi"))
	var seen []string
	a := NewAnalyzer()
	a.On("SimpleCommand", func(a *Analyzer, node ast.Node) {
		seen = append(seen, node.(*ast.SimpleCommand).Args[0])
	})
	a.On("TopLevel", func(a *Analyzer, node ast.Node) { a.Walk(node) })
	a.On("StatementList", func(a *Analyzer, node ast.Node) { a.Walk(node) })
	a.On("AndOrList", func(a *Analyzer, node ast.Node) { a.Walk(node) })
	a.On("Pipeline", func(a *Analyzer, node ast.Node) { a.Walk(node) })
	a.Visit(top)

	if len(seen) != 1 || seen[0] != "echo" {
		t.Fatalf("seen = %v, want [echo]", seen)
	}
}

func TestAnalyzerFallsBackToWalkWithoutHandler(t *testing.T) {
	top := oneCmdTop(cmd("echo"))
	visited := 0
	a := NewAnalyzer()
	a.On("SimpleCommand", func(a *Analyzer, node ast.Node) { visited++ })
	a.Visit(top) // no handlers for TopLevel/StatementList/... -> falls through to Walk
	if visited != 1 {
		t.Fatalf("visited = %d, want 1 (generic_visit fallback should still reach SimpleCommand)", visited)
	}
}

func TestAnalyzerStrictPanicsOnUnknownKind(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic for an unregistered kind in strict mode")
		}
		if _, ok := r.(*UnknownNodeKind); !ok {
			t.Fatalf("panic value = %v (%T), want *UnknownNodeKind", r, r)
		}
	}()
	a := NewAnalyzer()
	a.Strict = true
	a.Visit(oneCmdTop(cmd("echo")))
}

func TestTransformerRebuildsChildrenByDefault(t *testing.T) {
	top := oneCmdTop(cmd("echo", "hi"))
	tr := NewTransformer()
	tr.On("SimpleCommand", func(t *Transformer, node ast.Node) ast.Node {
		n := node.(*ast.SimpleCommand)
		out := *n
		out.Args = append([]string{}, n.Args...)
		out.Args[0] = "printf"
		return &out
	})
	out := tr.Visit(top).(*ast.TopLevel)
	sl := out.Items[0].(*ast.StatementList)
	got := sl.Statements[0].Pipelines[0].Commands[0].(*ast.SimpleCommand)
	if got.Args[0] != "printf" {
		t.Fatalf("Args[0] = %q, want printf", got.Args[0])
	}
}

func TestRegistryRejectsDuplicateRegistration(t *testing.T) {
	r := NewRegistry()
	factory := func() Step { return nil }
	if err := r.Register("debug", factory, "d", "debug"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := r.Register("debug", factory, "d2", "debug"); err == nil {
		t.Fatal("expected an error re-registering \"debug\"")
	}
}

func TestRegistryListSortsByCategoryThenName(t *testing.T) {
	r := NewRegistry()
	mustReg := func(name, desc, cat string) {
		t.Helper()
		if err := r.Register(name, func() Step { return stubStep{} }, desc, cat); err != nil {
			t.Fatalf("Register(%q): %v", name, err)
		}
	}
	mustReg("metrics", "m", "analysis")
	mustReg("security", "s", "analysis")
	mustReg("debug", "d", "debug")

	all := r.List("")
	want := []string{"analysis/metrics", "analysis/security", "debug/debug"}
	if len(all) != len(want) {
		t.Fatalf("List returned %d entries, want %d", len(all), len(want))
	}
	for i, info := range all {
		got := info.Category + "/" + info.Name
		if got != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got, want[i])
		}
	}

	filtered := r.List("analysis")
	if len(filtered) != 2 {
		t.Fatalf("List(\"analysis\") returned %d entries, want 2", len(filtered))
	}
}

func TestRegistryCategoriesIsSortedAndDeduped(t *testing.T) {
	r := NewRegistry()
	r.Register("a", func() Step { return stubStep{} }, "", "transformation")
	r.Register("b", func() Step { return stubStep{} }, "", "analysis")
	r.Register("c", func() Step { return stubStep{} }, "", "analysis")

	cats := r.Categories()
	want := []string{"analysis", "transformation"}
	if len(cats) != len(want) {
		t.Fatalf("Categories() = %v, want %v", cats, want)
	}
	for i := range want {
		if cats[i] != want[i] {
			t.Errorf("Categories()[%d] = %q, want %q", i, cats[i], want[i])
		}
	}
}

type stubStep struct{}

func (stubStep) Kind() Kind { return KindAnalyzer }
func (stubStep) Run(top *ast.TopLevel) Outcome {
	return Outcome{Kind: KindAnalyzer, Report: "ran"}
}

func TestPipelineThreadsTransformerOutputForward(t *testing.T) {
	top := oneCmdTop(cmd("echo"))

	var seenByStepTwo *ast.TopLevel
	rewritten := &ast.TopLevel{} // a distinct tree identity to prove threading

	p := NewPipeline(nil)
	p.AddStep("rewrite", func() Step {
		return transformFunc(func(in *ast.TopLevel) Outcome {
			return Outcome{Kind: KindTransformer, AST: rewritten}
		})
	})
	p.AddStep("observe", func() Step {
		return analyzeFunc(func(in *ast.TopLevel) Outcome {
			seenByStepTwo = in
			return Outcome{Kind: KindAnalyzer, Report: "ok"}
		})
	})

	results := p.Run(top)
	if len(results) != 2 {
		t.Fatalf("Run returned %d outcomes, want 2", len(results))
	}
	if seenByStepTwo != rewritten {
		t.Fatal("second step should observe the first step's rewritten tree")
	}
	if p.FinalAST() != rewritten {
		t.Fatal("FinalAST() should return the last transformer's output")
	}
	if _, ok := p.Result("observe"); !ok {
		t.Fatal("Result(\"observe\") should be recorded")
	}
}

func TestPipelineAddNamedRequiresRegistry(t *testing.T) {
	p := NewPipeline(nil)
	if _, err := p.AddNamed("debug"); err == nil {
		t.Fatal("expected an error adding a named step with no registry")
	}
}

func TestPipelineClearResetsStepsAndResults(t *testing.T) {
	r := NewRegistry()
	r.Register("stub", func() Step { return stubStep{} }, "", "")
	p := NewPipeline(r)
	if _, err := p.AddNamed("stub"); err != nil {
		t.Fatalf("AddNamed: %v", err)
	}
	p.Run(oneCmdTop(cmd("echo")))
	if len(p.results) == 0 {
		t.Fatal("expected at least one result before Clear")
	}
	p.Clear()
	if len(p.steps) != 0 || len(p.results) != 0 {
		t.Fatal("Clear should empty both steps and results")
	}
}

type transformFunc func(*ast.TopLevel) Outcome

func (transformFunc) Kind() Kind                        { return KindTransformer }
func (f transformFunc) Run(top *ast.TopLevel) Outcome { return f(top) }

type analyzeFunc func(*ast.TopLevel) Outcome

func (analyzeFunc) Kind() Kind                        { return KindAnalyzer }
func (f analyzeFunc) Run(top *ast.TopLevel) Outcome { return f(top) }
