// Package pipeline wires the concrete analysis/transformation packages
// into the visitor package's generic Registry/Pipeline machinery,
// grounded on original_source/psh/visitor/visitor_pipeline.py's
// register_builtin_visitors and the example scripts in
// original_source/examples/ that hard-code a debug→validator→
// security→metrics→optimizer step ordering.
//
// This lives outside package visitor because visitor is imported by
// every concrete package below; wiring them back into visitor itself
// would be an import cycle, so the registrations live in their own
// leaf package instead.
package pipeline

import (
	"github.com/psh-go/psh/ast"
	"github.com/psh-go/psh/format"
	"github.com/psh-go/psh/metrics"
	"github.com/psh-go/psh/optimize"
	"github.com/psh-go/psh/security"
	"github.com/psh-go/psh/validate"
	"github.com/psh-go/psh/visitor"
)

type analyzerStep struct {
	run func(top *ast.TopLevel) any
}

func (analyzerStep) Kind() visitor.Kind { return visitor.KindAnalyzer }

func (s analyzerStep) Run(top *ast.TopLevel) visitor.Outcome {
	return visitor.Outcome{Kind: visitor.KindAnalyzer, Report: s.run(top)}
}

type transformerStep struct {
	run func(top *ast.TopLevel) (*ast.TopLevel, any)
}

func (transformerStep) Kind() visitor.Kind { return visitor.KindTransformer }

func (s transformerStep) Run(top *ast.TopLevel) visitor.Outcome {
	out, report := s.run(top)
	return visitor.Outcome{Kind: visitor.KindTransformer, AST: out, Report: report}
}

// NewRegistry builds a Registry with the standard debug/validator/
// security/metrics/formatter/optimizer steps registered, mirroring
// register_builtin_visitors.
func NewRegistry() *visitor.Registry {
	r := visitor.NewRegistry()

	must(r.Register("debug", func() visitor.Step {
		return analyzerStep{run: func(top *ast.TopLevel) any { return format.Tree(top, format.Normal) }}
	}, "Display AST structure for debugging", "debug"))

	must(r.Register("validator", func() visitor.Step {
		return analyzerStep{run: func(top *ast.TopLevel) any {
			structural, enhanced := validate.ValidateScript(top, validate.DefaultConfig())
			return struct {
				Structural []validate.Issue
				Enhanced   []validate.Issue
			}{structural, enhanced}
		}}
	}, "Validate script for syntax and semantic errors", "analysis"))

	must(r.Register("security", func() visitor.Step {
		return analyzerStep{run: func(top *ast.TopLevel) any { return security.Scan(top) }}
	}, "Analyze script for security vulnerabilities", "analysis"))

	must(r.Register("metrics", func() visitor.Step {
		return analyzerStep{run: func(top *ast.TopLevel) any {
			return metrics.Collect(top).GetReport()
		}}
	}, "Collect code metrics and complexity analysis", "analysis"))

	must(r.Register("formatter", func() visitor.Step {
		return analyzerStep{run: func(top *ast.TopLevel) any { return format.Print(top) }}
	}, "Format AST back to shell script", "transformation"))

	must(r.Register("optimizer", func() visitor.Step {
		return transformerStep{run: func(top *ast.TopLevel) (*ast.TopLevel, any) {
			out, applied := optimize.Optimize(top)
			return out, applied
		}}
	}, "Optimize AST for better performance", "transformation"))

	return r
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// DefaultPipeline builds the standard debug→validator→security→
// metrics pipeline the original's visitor_pipeline_demo.py example
// hard-codes.
func DefaultPipeline() *visitor.Pipeline {
	p := visitor.NewPipeline(NewRegistry())
	for _, name := range []string{"debug", "validator", "security", "metrics"} {
		if _, err := p.AddNamed(name); err != nil {
			panic(err)
		}
	}
	return p
}

// SecurityScanPipeline builds the security-focused pipeline the
// original's security_scan.py example hard-codes: security analysis
// followed by the optimizer (so dangerous patterns the optimizer would
// otherwise fold away are still flagged beforehand).
func SecurityScanPipeline() *visitor.Pipeline {
	p := visitor.NewPipeline(NewRegistry())
	for _, name := range []string{"security", "optimizer"} {
		if _, err := p.AddNamed(name); err != nil {
			panic(err)
		}
	}
	return p
}
