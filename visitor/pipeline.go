package visitor

import (
	"fmt"

	"github.com/psh-go/psh/ast"
)

// StepOutcome pairs a pipeline step's name with what running it
// produced, preserving run order the way VisitorPipeline._results
// (an OrderedDict) does.
type StepOutcome struct {
	Name    string
	Outcome Outcome
}

type pendingStep struct {
	name    string
	factory Factory
}

// Pipeline composes named Steps and runs them in sequence over a
// script, threading a transformer step's output into the next step
// and recording every step's outcome, grounded on VisitorPipeline.
type Pipeline struct {
	registry *Registry
	steps    []pendingStep
	results  []StepOutcome
}

// NewPipeline builds an empty Pipeline. registry may be nil if every
// step is added directly via AddStep.
func NewPipeline(registry *Registry) *Pipeline {
	return &Pipeline{registry: registry}
}

// AddNamed looks up name in the pipeline's registry and queues its
// factory, mirroring add_visitor(str_name).
func (p *Pipeline) AddNamed(name string) (*Pipeline, error) {
	if p.registry == nil {
		return nil, errNoRegistry
	}
	factory, err := p.registry.Get(name)
	if err != nil {
		return nil, err
	}
	p.steps = append(p.steps, pendingStep{name: name, factory: factory})
	return p, nil
}

// AddStep queues a Step factory under name, mirroring
// add_visitor(instance); Run calls the factory to build the Step.
func (p *Pipeline) AddStep(name string, factory Factory) *Pipeline {
	p.steps = append(p.steps, pendingStep{name: name, factory: factory})
	return p
}

var errNoRegistry = fmt.Errorf("no registry available for visitor lookup")

// Run executes every queued step over top in order, feeding a
// transformer step's rewritten tree into the next step (analyzer steps
// pass the tree through unchanged), and returns every step's outcome.
func (p *Pipeline) Run(top *ast.TopLevel) []StepOutcome {
	p.results = nil
	current := top
	for _, ps := range p.steps {
		step := ps.factory()
		outcome := step.Run(current)
		if outcome.Kind == KindTransformer && outcome.AST != nil {
			current = outcome.AST
		}
		p.results = append(p.results, StepOutcome{Name: ps.name, Outcome: outcome})
	}
	return p.results
}

// Result returns the outcome recorded for name, mirroring get_result.
func (p *Pipeline) Result(name string) (Outcome, bool) {
	for _, r := range p.results {
		if r.Name == name {
			return r.Outcome, true
		}
	}
	return Outcome{}, false
}

// FinalAST returns the tree produced by the last transformer step run,
// or nil if none ran, mirroring get_final_ast.
func (p *Pipeline) FinalAST() *ast.TopLevel {
	for i := len(p.results) - 1; i >= 0; i-- {
		if p.results[i].Outcome.Kind == KindTransformer {
			return p.results[i].Outcome.AST
		}
	}
	return nil
}

// Clear resets the pipeline's queued steps and recorded results.
func (p *Pipeline) Clear() *Pipeline {
	p.steps = nil
	p.results = nil
	return p
}
