package cst

import "github.com/gopytools/pyparso/tokenizer"

// Constructor builds a specialized Node variant from a rule's raw
// children, e.g. FuncDef exposing Name/Params/Body instead of making
// callers index into Children by position. Unknown or unspecialized rule
// types fall back to the generic Node built by NewNode.
type Constructor func(typ string, children []Element) Element

// NodeConstructors maps a grammar rule name to the specialized type it
// should be wrapped in when the parser reduces that rule, mirroring
// parso's tree.py node-class table. Rules absent from this map reduce to
// a plain *Node.
var NodeConstructors = map[string]Constructor{
	"suite":    newSuite,
	"funcdef":  newFuncDef,
	"classdef": newClassDef,
	"if_stmt":  newIfStmt,
}

// Suite is a block of indented statements. Its synthetic INDENT/DEDENT
// leaves (needed by the parser to recognize block boundaries, but not
// part of the program text a user would write out of context) are
// stripped so the CST holds only real source tokens, per spec.md's suite
// invariant.
type Suite struct {
	*Node
}

func newSuite(typ string, children []Element) Element {
	stripped := children[:0:0]
	for _, c := range children {
		if leaf, ok := c.(*Leaf); ok && (leaf.Kind == tokenizer.INDENT || leaf.Kind == tokenizer.DEDENT) {
			continue
		}
		stripped = append(stripped, c)
	}
	return &Suite{Node: NewNode(typ, stripped)}
}

// FuncDef is a "def NAME(params): suite" node.
type FuncDef struct {
	*Node
}

func newFuncDef(typ string, children []Element) Element {
	return &FuncDef{Node: NewNode(typ, children)}
}

// Name returns the function's identifier leaf, the token right after
// 'def'.
func (f *FuncDef) Name() *Leaf {
	for i, c := range f.Children {
		if leaf, ok := c.(*Leaf); ok && leaf.Kind == tokenizer.NAME && leaf.Value == "def" {
			if i+1 < len(f.Children) {
				if nameLeaf, ok := f.Children[i+1].(*Leaf); ok {
					return nameLeaf
				}
			}
		}
	}
	return nil
}

// Params returns the function's parameter list (its "parameters" child,
// right after the NAME identifier), or nil if not found.
func (f *FuncDef) Params() Element {
	for i, c := range f.Children {
		if leaf, ok := c.(*Leaf); ok && leaf.Kind == tokenizer.NAME && leaf.Value == "def" {
			if i+2 < len(f.Children) {
				return f.Children[i+2]
			}
		}
	}
	return nil
}

// Body returns the function's suite, its last child.
func (f *FuncDef) Body() Element {
	if len(f.Children) == 0 {
		return nil
	}
	return f.Children[len(f.Children)-1]
}

// ClassDef is a "class NAME(bases): suite" node.
type ClassDef struct {
	*Node
}

func newClassDef(typ string, children []Element) Element {
	return &ClassDef{Node: NewNode(typ, children)}
}

// Name returns the class's identifier leaf.
func (c *ClassDef) Name() *Leaf {
	for i, child := range c.Children {
		if leaf, ok := child.(*Leaf); ok && leaf.Kind == tokenizer.NAME && leaf.Value == "class" {
			if i+1 < len(c.Children) {
				if nameLeaf, ok := c.Children[i+1].(*Leaf); ok {
					return nameLeaf
				}
			}
		}
	}
	return nil
}

// IfStmt is an "if ... : suite (elif ... : suite)* (else: suite)?" node.
type IfStmt struct {
	*Node
}

func newIfStmt(typ string, children []Element) Element {
	return &IfStmt{Node: NewNode(typ, children)}
}

// Branches returns the (keyword leaf, test-or-nil, suite) triples making
// up this if-statement: the keyword is "if", "elif" or "else"; test is
// nil for the "else" branch.
type Branch struct {
	Keyword *Leaf
	Test    Element
	Body    Element
}

func (s *IfStmt) Branches() []Branch {
	var out []Branch
	i := 0
	for i < len(s.Children) {
		kw, ok := s.Children[i].(*Leaf)
		if !ok || kw.Kind != tokenizer.NAME {
			i++
			continue
		}
		switch kw.Value {
		case "if", "elif":
			// children: KEYWORD test ':' suite
			if i+3 < len(s.Children) {
				out = append(out, Branch{Keyword: kw, Test: s.Children[i+1], Body: s.Children[i+3]})
			}
			i += 4
		case "else":
			// children: 'else' ':' suite
			if i+2 < len(s.Children) {
				out = append(out, Branch{Keyword: kw, Body: s.Children[i+2]})
			}
			i += 3
		default:
			i++
		}
	}
	return out
}
