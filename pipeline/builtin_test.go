package pipeline

import (
	"testing"

	"github.com/psh-go/psh/ast"
	"github.com/psh-go/psh/parser"
	"github.com/psh-go/psh/visitor"
)

func mustTop(t *testing.T, src string) *ast.TopLevel {
	t.Helper()
	top, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse(%q): %v", src, err)
	}
	return top
}

func TestNewRegistryListsAllBuiltinSteps(t *testing.T) {
	r := NewRegistry()
	all := r.List("")
	names := map[string]string{}
	for _, info := range all {
		names[info.Name] = info.Category
	}
	want := map[string]string{
		"debug":     "debug",
		"validator": "analysis",
		"security":  "analysis",
		"metrics":   "analysis",
		"formatter": "transformation",
		"optimizer": "transformation",
	}
	for name, cat := range want {
		if got, ok := names[name]; !ok || got != cat {
			t.Errorf("step %q: category = %q, ok=%v, want %q", name, got, ok, cat)
		}
	}
}

func TestNewRegistryMetricsStepProducesReport(t *testing.T) {
	r := NewRegistry()
	p := visitor.NewPipeline(r)
	if _, err := p.AddNamed("metrics"); err != nil {
		t.Fatalf("AddNamed(metrics): %v", err)
	}
	results := p.Run(mustTop(t, "echo hi; ls"))
	if len(results) != 1 {
		t.Fatalf("Run returned %d outcomes, want 1", len(results))
	}
	if results[0].Outcome.Report == nil {
		t.Fatal("metrics step should produce a non-nil report")
	}
}

func TestNewRegistrySecurityStepFindsIssues(t *testing.T) {
	r := NewRegistry()
	p := visitor.NewPipeline(r)
	if _, err := p.AddNamed("security"); err != nil {
		t.Fatalf("AddNamed(security): %v", err)
	}
	results := p.Run(mustTop(t, "eval $cmd"))
	if len(results) != 1 {
		t.Fatalf("Run returned %d outcomes, want 1", len(results))
	}
	if results[0].Outcome.Report == nil {
		t.Fatal("security step should produce a non-nil report")
	}
}

func TestNewRegistryOptimizerStepRewritesAST(t *testing.T) {
	r := NewRegistry()
	p := visitor.NewPipeline(r)
	if _, err := p.AddNamed("optimizer"); err != nil {
		t.Fatalf("AddNamed(optimizer): %v", err)
	}
	top := mustTop(t, "echo hi | cat")
	p.Run(top)
	if p.FinalAST() == nil {
		t.Fatal("optimizer step should leave a rewritten AST as FinalAST")
	}
}

func TestDefaultPipelineRunsFourSteps(t *testing.T) {
	p := DefaultPipeline()
	results := p.Run(mustTop(t, "echo hi"))
	if len(results) != 4 {
		t.Fatalf("DefaultPipeline produced %d results, want 4 (debug, validator, security, metrics)", len(results))
	}
}

func TestSecurityScanPipelineRunsSecurityThenOptimizer(t *testing.T) {
	p := SecurityScanPipeline()
	results := p.Run(mustTop(t, "eval $cmd"))
	if len(results) != 2 {
		t.Fatalf("SecurityScanPipeline produced %d results, want 2", len(results))
	}
	if results[0].Outcome.Kind != visitor.KindAnalyzer {
		t.Errorf("first step (security) should be an analyzer, got %v", results[0].Outcome.Kind)
	}
	if results[1].Outcome.Kind != visitor.KindTransformer {
		t.Errorf("second step (optimizer) should be a transformer, got %v", results[1].Outcome.Kind)
	}
}
