package ast

import (
	"testing"

	"github.com/psh-go/psh/token"
)

func simpleCmd(args ...string) *SimpleCommand {
	return &SimpleCommand{Args: args, ArgTypes: make([]ArgType, len(args))}
}

func wrapStatement(cmd Command) *StatementList {
	pl := &Pipeline{Commands: []Command{cmd}}
	aol := &AndOrList{Pipelines: []*Pipeline{pl}}
	return &StatementList{Statements: []*AndOrList{aol}}
}

func TestKindNameCoversConcreteTypes(t *testing.T) {
	tests := []struct {
		node Node
		want string
	}{
		{&TopLevel{}, "TopLevel"},
		{&SimpleCommand{}, "SimpleCommand"},
		{&WhileLoop{}, "WhileLoop"},
		{&ForLoop{}, "ForLoop"},
		{&IfConditional{}, "IfConditional"},
		{&Redirect{}, "Redirect"},
		{&Word{}, "Word"},
	}
	for _, tt := range tests {
		if got := KindName(tt.node); got != tt.want {
			t.Errorf("KindName(%T) = %q, want %q", tt.node, got, tt.want)
		}
	}
}

func TestArgTypeFromTokenKind(t *testing.T) {
	tests := []struct {
		k    token.Kind
		want ArgType
	}{
		{token.STRING, ArgString},
		{token.SINGLE_STRING, ArgSingleString},
		{token.VARIABLE, ArgVariable},
		{token.COMMAND_SUB, ArgCommandSub},
		{token.WORD, ArgWord},
	}
	for _, tt := range tests {
		if got := ArgTypeFromTokenKind(tt.k); got != tt.want {
			t.Errorf("ArgTypeFromTokenKind(%s) = %s, want %s", tt.k, got, tt.want)
		}
	}
}

func TestSpanIgnoredByEqual(t *testing.T) {
	a := simpleCmd("true")
	a.Sp = Span{Start: token.Position{Offset: 0}, Valid: true}
	b := simpleCmd("true")
	b.Sp = Span{Start: token.Position{Offset: 99}, Valid: true}

	if !Equal(a, b) {
		t.Fatal("Equal should ignore Span differences")
	}

	c := simpleCmd("false")
	if Equal(a, c) {
		t.Fatal("Equal should distinguish differing Args")
	}
}

func TestIsConstantTrue(t *testing.T) {
	if !IsConstantTrue(wrapStatement(simpleCmd("true"))) {
		t.Error("`true` should be constant-true")
	}
	if !IsConstantTrue(wrapStatement(simpleCmd(":"))) {
		t.Error("`:` should be constant-true (alias)")
	}
	if IsConstantTrue(wrapStatement(simpleCmd("false"))) {
		t.Error("`false` should not be constant-true")
	}
}

func TestIsConstantFalse(t *testing.T) {
	if !IsConstantFalse(wrapStatement(simpleCmd("false"))) {
		t.Error("`false` should be constant-false")
	}
	if IsConstantFalse(wrapStatement(simpleCmd("true"))) {
		t.Error("`true` should not be constant-false")
	}
}

func TestIsConstantRejectsRedirectsAndExtraArgs(t *testing.T) {
	withRedirect := simpleCmd("true")
	withRedirect.Redirects = []*Redirect{{Type: ">", Target: "/dev/null"}}
	if IsConstantTrue(wrapStatement(withRedirect)) {
		t.Error("a redirected `true` should not count as constant-true")
	}

	extraArgs := simpleCmd("true", "ignored")
	if IsConstantTrue(wrapStatement(extraArgs)) {
		t.Error("`true ignored` should not count as constant-true")
	}
}

func TestIsConstantRejectsNegatedPipeline(t *testing.T) {
	pl := &Pipeline{Commands: []Command{simpleCmd("true")}, Negated: true}
	aol := &AndOrList{Pipelines: []*Pipeline{pl}}
	sl := &StatementList{Statements: []*AndOrList{aol}}
	if IsConstantTrue(sl) {
		t.Error("a negated `! true` should not count as constant-true")
	}
}

func TestStatementListIsEmpty(t *testing.T) {
	var nilList *StatementList
	if !nilList.IsEmpty() {
		t.Error("nil *StatementList should be empty")
	}
	if !(&StatementList{}).IsEmpty() {
		t.Error("zero-value StatementList should be empty")
	}
	if wrapStatement(simpleCmd("true")).IsEmpty() {
		t.Error("a StatementList with one statement should not be empty")
	}
}
