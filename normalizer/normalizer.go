/*
Package normalizer provides a generic depth-first visitor over a cst tree
and collects deduplicated diagnostic Issues, the framework concrete lint-
style checks (unused names, style rules, ...) are built on top of.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2026 The pyparso Authors.

*/
package normalizer

import (
	"github.com/gopytools/pyparso"
	"github.com/gopytools/pyparso/cst"
)

// Issue is one diagnostic raised while walking a tree. Issues are
// deduplicated by (Code, Pos).
type Issue struct {
	Code    string
	Message string
	Pos     pyparso.Position
}

// Visitor is implemented by checks that want to observe every node and
// leaf of a tree. EnterNode/LeaveNode bracket a node's subtree (LeaveNode
// always runs once EnterNode has, even if the subtree is empty);
// VisitLeaf is called for every terminal. Each method receives the
// *Collector currently accumulating issues for this walk, so
// implementations stay stateless across walks.
type Visitor interface {
	EnterNode(n *cst.Node, c *Collector)
	LeaveNode(n *cst.Node, c *Collector)
	VisitLeaf(l *cst.Leaf, c *Collector)
}

// Collector accumulates Issues for a single Walk, deduplicating by
// (Code, Pos).
type Collector struct {
	issues []Issue
	seen   map[[2]interface{}]bool
}

// AddIssue records an issue unless one with the same (code, pos) was
// already recorded during this walk.
func (c *Collector) AddIssue(code, message string, pos pyparso.Position) {
	key := [2]interface{}{code, pos}
	if c.seen == nil {
		c.seen = map[[2]interface{}]bool{}
	}
	if c.seen[key] {
		return
	}
	c.seen[key] = true
	c.issues = append(c.issues, Issue{Code: code, Message: message, Pos: pos})
}

// Walk drives v depth-first, left-to-right over root (root may be any
// cst.Element: a *cst.Node, a specialized variant, or a *cst.Leaf), and
// returns the deduplicated issues collected along the way.
func Walk(root cst.Element, v Visitor) []Issue {
	c := &Collector{}
	walk(root, v, c)
	return c.issues
}

func walk(e cst.Element, v Visitor, c *Collector) {
	switch el := e.(type) {
	case *cst.Leaf:
		v.VisitLeaf(el, c)
	default:
		nb, ok := e.(interface{ AsNode() *cst.Node })
		if !ok {
			return
		}
		n := nb.AsNode()
		v.EnterNode(n, c)
		for _, child := range n.Children {
			walk(child, v, c)
		}
		v.LeaveNode(n, c)
	}
}

// BaseVisitor implements Visitor with no-op methods, so concrete checks
// can embed it and only override the callback(s) they care about.
type BaseVisitor struct{}

func (BaseVisitor) EnterNode(*cst.Node, *Collector) {}
func (BaseVisitor) LeaveNode(*cst.Node, *Collector) {}
func (BaseVisitor) VisitLeaf(*cst.Leaf, *Collector) {}
