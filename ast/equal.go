package ast

import "github.com/google/go-cmp/cmp"

// spanComparer makes every pair of Spans compare equal, so cmp.Equal below
// ignores source position entirely no matter how deeply a Span is nested.
var spanComparer = cmp.Comparer(func(x, y Span) bool { return true })

// Equal reports whether a and b are structurally equal, ignoring source
// spans (spec.md §4.5: "an equality check on nodes is structural (ignores
// spans) and is used by the optimizer's constant-folding predicates").
//
// Grounded on the teacher's direct github.com/google/go-cmp dependency,
// used here instead of a hand-written recursive deep-equal.
func Equal(a, b Node) bool {
	return cmp.Equal(a, b, spanComparer)
}

// IsConstant reports whether sl is a StatementList of exactly one AndOrList
// with exactly one Pipeline with exactly one non-negated SimpleCommand whose
// sole argument equals word (spec.md §4.11 "Constant-true/false
// detection").
func IsConstant(sl *StatementList, word string) bool {
	if sl == nil || len(sl.Statements) != 1 {
		return false
	}
	aol := sl.Statements[0]
	if len(aol.Pipelines) != 1 {
		return false
	}
	p := aol.Pipelines[0]
	if p.Negated || len(p.Commands) != 1 {
		return false
	}
	sc, ok := p.Commands[0].(*SimpleCommand)
	if !ok {
		return false
	}
	return len(sc.Args) == 1 && sc.Args[0] == word && len(sc.Redirects) == 0
}

// IsConstantTrue reports whether sl is the constant-true condition shape
// ("true" or ":").
func IsConstantTrue(sl *StatementList) bool {
	return IsConstant(sl, "true") || IsConstant(sl, ":")
}

// IsConstantFalse reports whether sl is the constant-false condition shape.
func IsConstantFalse(sl *StatementList) bool {
	return IsConstant(sl, "false")
}
