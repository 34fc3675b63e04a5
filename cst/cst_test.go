package cst

import (
	"testing"

	"github.com/gopytools/pyparso"
	"github.com/gopytools/pyparso/tokenizer"
)

func leaf(kind tokenizer.Kind, prefix, value string) *Leaf {
	return &Leaf{Kind: kind, Prefix: prefix, Value: value, Start: pyparso.Position{}}
}

func TestNodeCodeReconstructsSource(t *testing.T) {
	children := []Element{
		leaf(tokenizer.NAME, "", "x"),
		leaf(tokenizer.OP, " ", "="),
		leaf(tokenizer.NUMBER, " ", "1"),
		leaf(tokenizer.NEWLINE, "", "\n"),
	}
	n := NewNode("expr_stmt", children)
	if got, want := n.Code(), "x = 1\n"; got != want {
		t.Errorf("Code() = %q, want %q", got, want)
	}
	for _, c := range children {
		if c.Parent() != n {
			t.Errorf("child %v has parent %v, want %v", c, c.Parent(), n)
		}
	}
}

func TestSuiteStripsIndentDedent(t *testing.T) {
	children := []Element{
		leaf(tokenizer.NEWLINE, "", "\n"),
		leaf(tokenizer.INDENT, "", ""),
		leaf(tokenizer.NAME, "    ", "pass"),
		leaf(tokenizer.NEWLINE, "", "\n"),
		leaf(tokenizer.DEDENT, "", ""),
	}
	elem := newSuite("suite", children)
	suite, ok := elem.(*Suite)
	if !ok {
		t.Fatalf("expected *Suite, got %T", elem)
	}
	for _, c := range suite.Children {
		if l, ok := c.(*Leaf); ok && (l.Kind == tokenizer.INDENT || l.Kind == tokenizer.DEDENT) {
			t.Errorf("suite retained a synthetic %s leaf", l.Kind)
		}
	}
	if got, want := suite.Code(), "\n    pass\n"; got != want {
		t.Errorf("Code() = %q, want %q", got, want)
	}
}

func TestWalkVisitsDepthFirst(t *testing.T) {
	inner := NewNode("atom", []Element{leaf(tokenizer.NAME, "", "x")})
	outer := NewNode("expr_stmt", []Element{inner, leaf(tokenizer.NEWLINE, "", "\n")})

	var visited []string
	Walk(outer, func(e Element) {
		switch v := e.(type) {
		case *Node:
			visited = append(visited, v.Type)
		case *Leaf:
			visited = append(visited, v.Value)
		}
	})
	want := []string{"expr_stmt", "atom", "x", "\n"}
	if len(visited) != len(want) {
		t.Fatalf("got %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("visit %d: got %q, want %q", i, visited[i], want[i])
		}
	}
}

func TestRootFollowsParentChain(t *testing.T) {
	l := leaf(tokenizer.NAME, "", "x")
	n := NewNode("atom", []Element{l})
	top := NewNode("expr_stmt", []Element{n})
	if Root(l) != top {
		t.Errorf("Root(leaf) = %v, want %v", Root(l), top)
	}
}
