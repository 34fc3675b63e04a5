/*
Package cst defines the concrete syntax tree produced by package parser:
typed leaves and nodes with parent back-references, positions derived from
source text rather than stored redundantly, and a Code method that
reconstructs the exact source a (sub)tree was parsed from.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2026 The pyparso Authors.

*/
package cst

import (
	"strings"

	"github.com/gopytools/pyparso"
	"github.com/gopytools/pyparso/tokenizer"
)

// Element is the common interface of Leaf and Node: anything that can sit
// in a Node's Children slice.
type Element interface {
	Parent() *Node
	setParent(*Node)
	StartPos() pyparso.Position
	EndPos() pyparso.Position
	Code() string
}

// Leaf is a terminal tree element, wrapping exactly one token. Kind
// mirrors the tokenizer's kind for non-syntax tokens (NAME, NUMBER,
// STRING, ...); for NAME/OP tokens that a grammar reserved as a keyword
// or operator literal, Kind still reports the underlying tokenizer kind —
// callers distinguishing "the NAME 'if'" from "the NAME 'x'" compare
// Value, the same way the parser's reserved-word table works.
type Leaf struct {
	Kind   tokenizer.Kind
	Value  string
	Prefix string
	Start  pyparso.Position
	parent *Node
}

// NewLeaf builds a Leaf from a token emitted by the tokenizer.
func NewLeaf(tok tokenizer.Token) *Leaf {
	return &Leaf{Kind: tok.Kind, Value: tok.Value, Prefix: tok.Prefix, Start: tok.Start}
}

func (l *Leaf) Parent() *Node         { return l.parent }
func (l *Leaf) setParent(p *Node)     { l.parent = p }
func (l *Leaf) StartPos() pyparso.Position { return l.Start }

// EndPos is derived from Start and Value, accounting for embedded
// newlines (as in multi-line strings).
func (l *Leaf) EndPos() pyparso.Position {
	line, col := l.Start.Line, l.Start.Column
	for _, r := range l.Value {
		if r == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return pyparso.Position{Line: line, Column: col}
}

// Code returns this leaf's exact source text, prefix included.
func (l *Leaf) Code() string {
	return l.Prefix + l.Value
}

func (l *Leaf) String() string {
	return l.Kind.String() + "(" + l.Value + ")"
}

// Node is a non-terminal tree element: a named grammar rule together with
// its children. Node.Type is the rule name the grammar declared (e.g.
// "if_stmt", "funcdef"); unrecognized or generic rules use a plain Node
// with no specialized behavior.
type Node struct {
	Type     string
	Children []Element
	parent   *Node
}

// NewNode wraps children into a Node of the given type, fixing up parent
// pointers on every child.
func NewNode(typ string, children []Element) *Node {
	n := &Node{Type: typ, Children: children}
	for _, c := range children {
		c.setParent(n)
	}
	return n
}

func (n *Node) Parent() *Node     { return n.parent }
func (n *Node) setParent(p *Node) { n.parent = p }

// AsNode returns n itself. Specialized node variants (FuncDef, Suite, ...)
// embed *Node, so this method promotes onto them unchanged — it lets Walk,
// Leaves, and callers outside this package reach a wrapper's Type and
// Children without a type switch over every specialized variant.
func (n *Node) AsNode() *Node { return n }

// StartPos is the start position of this node's first child.
func (n *Node) StartPos() pyparso.Position {
	if len(n.Children) == 0 {
		return pyparso.Position{}
	}
	return n.Children[0].StartPos()
}

// EndPos is the end position of this node's last child.
func (n *Node) EndPos() pyparso.Position {
	if len(n.Children) == 0 {
		return pyparso.Position{}
	}
	return n.Children[len(n.Children)-1].EndPos()
}

// Code reconstructs this node's exact source text by concatenating every
// descendant leaf's prefix+value in order.
func (n *Node) Code() string {
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(c.Code())
	}
	return b.String()
}

// Leaves returns every Leaf in this subtree, left to right.
func (n *Node) Leaves() []*Leaf {
	var out []*Leaf
	Walk(n, func(e Element) {
		if leaf, ok := e.(*Leaf); ok {
			out = append(out, leaf)
		}
	})
	return out
}

// Walk visits e and every descendant, depth-first, left to right. It
// descends through specialized node variants (FuncDef, Suite, ...) the
// same as a plain Node, since those embed *Node and so promote AsNode().
func Walk(e Element, visit func(Element)) {
	visit(e)
	if nb, ok := e.(interface{ AsNode() *Node }); ok {
		for _, c := range nb.AsNode().Children {
			Walk(c, visit)
		}
	}
}

// RelinkParents walks root and fixes up every descendant's parent
// pointer to match the tree shape. Parent is unexported and so is not
// preserved by generic (de)serialization, e.g. gob decoding a tree read
// back from package cache; callers doing that must call RelinkParents
// once on the decoded root before trusting Parent()/Root().
func RelinkParents(root Element) {
	relink(root, nil)
}

func relink(e Element, parent *Node) {
	e.setParent(parent)
	if nb, ok := e.(interface{ AsNode() *Node }); ok {
		n := nb.AsNode()
		for _, c := range n.Children {
			relink(c, n)
		}
	}
}

// Root returns the outermost ancestor of e, or e itself if it has no
// parent.
func Root(e Element) Element {
	p := e.Parent()
	if p == nil {
		return e
	}
	var top Element = p
	for top.Parent() != nil {
		top = top.Parent()
	}
	return top
}
