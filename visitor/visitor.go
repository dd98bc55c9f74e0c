// Package visitor implements the dispatch/traversal engine that every
// analyzer and transformer in this module (validate, metrics, security,
// optimize, format) is built on.
//
// Grounded on original_source/psh/visitor/base.py's ASTVisitor/ASTTransformer
// contract, but NOT its reflection mechanism: base.py caches a
// node.__class__ -> visit_ClassName method lookup and falls back to
// dataclasses.fields()/isinstance() introspection in transform_children.
// spec.md's redesign flag for that convention asks for a tagged-union match
// instead of dynamic dispatch by class name, so here dispatch is a plain
// map[string]HandlerFunc keyed by ast.KindName, and child traversal is a
// hand-written type switch (WalkChildren/TransformChildren) enumerating
// every concrete node's child slots rather than inspecting struct tags.
package visitor

import "github.com/psh-go/psh/ast"

// UnknownNodeKind is returned by a strict Analyzer/Transformer when it has
// no handler and no default for a node's ast.KindName.
type UnknownNodeKind struct {
	Kind string
}

func (e *UnknownNodeKind) Error() string {
	return "visitor: no handler registered for node kind " + e.Kind
}

// NodeWalker is the minimal surface WalkChildren needs: something that can
// be recursed into for each child node. *Analyzer satisfies it.
type NodeWalker interface {
	Visit(node ast.Node)
}

// NodeTransformer is the minimal surface TransformChildren needs.
// *Transformer satisfies it.
type NodeTransformer interface {
	Visit(node ast.Node) ast.Node
}

// AnalyzerFunc handles one AST node kind for side-effecting traversal
// (collecting metrics, issues, reports). Recurse into children by calling
// e.Visit or e.Walk from inside the handler.
type AnalyzerFunc func(e *Analyzer, node ast.Node)

// Analyzer is a reflection-free visitor engine for read-only traversals,
// grounded on ASTVisitor's generic_visit contract (base.py lines 1-60):
// a registered handler runs for its node kind; everything else falls back
// to Default, or to a plain child walk if Default is nil.
type Analyzer struct {
	handlers map[string]AnalyzerFunc
	// Default handles any node kind with no registered handler. Left nil,
	// unhandled kinds just walk their children (ASTVisitor.generic_visit's
	// "traverse children of type we don't understand" behavior).
	Default AnalyzerFunc
	// Strict, when true, makes Visit panic with *UnknownNodeKind instead of
	// silently walking children for an unhandled kind.
	Strict bool
}

// NewAnalyzer returns an Analyzer with no handlers registered.
func NewAnalyzer() *Analyzer {
	return &Analyzer{handlers: make(map[string]AnalyzerFunc)}
}

// On registers fn as the handler for the given ast.KindName.
func (e *Analyzer) On(kind string, fn AnalyzerFunc) { e.handlers[kind] = fn }

// Visit dispatches node to its registered handler, Default, or a plain
// child walk, in that order.
func (e *Analyzer) Visit(node ast.Node) {
	if node == nil {
		return
	}
	kind := ast.KindName(node)
	if fn, ok := e.handlers[kind]; ok {
		fn(e, node)
		return
	}
	if e.Default != nil {
		e.Default(e, node)
		return
	}
	if e.Strict {
		panic(&UnknownNodeKind{Kind: kind})
	}
	e.Walk(node)
}

// Walk visits every direct child of node without invoking a handler on
// node itself — the equivalent of ASTVisitor.generic_visit's traversal.
func (e *Analyzer) Walk(node ast.Node) { WalkChildren(e, node) }

// TransformerFunc rewrites one AST node kind, returning the node unchanged,
// a modified copy, or a replacement node (e.g. dead-branch elimination
// collapsing an IfConditional down to its Else body).
type TransformerFunc func(t *Transformer, node ast.Node) ast.Node

// Transformer is a reflection-free rewrite engine grounded on
// ASTTransformer (base.py): generic_visit there returns the node
// unchanged; transform_children rebuilds a node's children in place. Here
// Default plays generic_visit's role and TransformChildren plays
// transform_children's, built from a type switch instead of
// dataclasses.fields introspection.
type Transformer struct {
	handlers map[string]TransformerFunc
	// Default handles any node kind with no registered handler. Left nil,
	// unhandled kinds are rebuilt with their children transformed
	// (TransformChildren) and otherwise left alone.
	Default TransformerFunc
	Strict  bool
}

// NewTransformer returns a Transformer with no handlers registered.
func NewTransformer() *Transformer {
	return &Transformer{handlers: make(map[string]TransformerFunc)}
}

// On registers fn as the handler for the given ast.KindName.
func (t *Transformer) On(kind string, fn TransformerFunc) { t.handlers[kind] = fn }

// Visit dispatches node to its registered handler, Default, or a
// children-only rebuild, in that order.
func (t *Transformer) Visit(node ast.Node) ast.Node {
	if node == nil {
		return nil
	}
	kind := ast.KindName(node)
	if fn, ok := t.handlers[kind]; ok {
		return fn(t, node)
	}
	if t.Default != nil {
		return t.Default(t, node)
	}
	if t.Strict {
		panic(&UnknownNodeKind{Kind: kind})
	}
	return TransformChildren(t, node)
}
