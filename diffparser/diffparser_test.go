package diffparser

import (
	"strings"
	"testing"

	"github.com/gopytools/pyparso/cst"
	"github.com/gopytools/pyparso/grammar"
	"github.com/gopytools/pyparso/grammars"
	"github.com/gopytools/pyparso/parser"
	"github.com/gopytools/pyparso/tokenizer"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func setup(t *testing.T) func() {
	t.Helper()
	return gotestingadapter.QuickConfig(t, "pyparso.diffparser")
}

func compile38(t *testing.T) *grammar.Tables {
	t.Helper()
	src, err := grammars.Source("3.8")
	if err != nil {
		t.Fatalf("loading embedded 3.8 grammar: %v", err)
	}
	tbl, err := grammar.Compile("3.8", src)
	if err != nil {
		t.Fatalf("compiling 3.8 grammar: %v", err)
	}
	return tbl
}

func splitLines(src string) []string {
	var out []string
	for len(src) > 0 {
		i := strings.IndexByte(src, '\n')
		if i < 0 {
			out = append(out, src)
			break
		}
		out = append(out, src[:i+1])
		src = src[i+1:]
	}
	return out
}

func parseFull(t *testing.T, tbl *grammar.Tables, src string) *cst.Node {
	t.Helper()
	root, err := parser.Parse(tbl, tokenizer.New(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	nb, ok := root.(interface{ AsNode() *cst.Node })
	if !ok {
		t.Fatalf("expected a file_input node, got %T", root)
	}
	return nb.AsNode()
}

func topLevelStmts(n *cst.Node) []cst.Element {
	var out []cst.Element
	for _, c := range n.Children {
		if leaf, ok := c.(*cst.Leaf); ok {
			if leaf.Kind == tokenizer.NEWLINE || leaf.Kind == tokenizer.ENDMARKER {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

func TestUpdateReusesUnchangedStatements(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	tbl := compile38(t)

	oldSrc := "a = 1\nb = 2\n"
	newSrc := "a = 1\nc = 3\nb = 2\n"
	oldLines := splitLines(oldSrc)
	newLines := splitLines(newSrc)

	oldTree := parseFull(t, tbl, oldSrc)
	oldStmts := topLevelStmts(oldTree)
	if len(oldStmts) != 2 {
		t.Fatalf("expected 2 old statements, got %d", len(oldStmts))
	}

	newTree, err := Update(tbl, oldTree, oldLines, newLines)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, want := newTree.Code(), newSrc; got != want {
		t.Fatalf("Code() = %q, want %q", got, want)
	}

	newStmts := topLevelStmts(newTree)
	if len(newStmts) != 3 {
		t.Fatalf("expected 3 new statements, got %d", len(newStmts))
	}
	if newStmts[0] != oldStmts[0] {
		t.Errorf("expected the 'a = 1' statement to be reused by identity")
	}
	// "b = 2" moved down one line but is otherwise untouched, so it must
	// stay pointer-equal to its old counterpart, with its position
	// renumbered in place.
	if newStmts[2] != oldStmts[1] {
		t.Errorf("expected the shifted 'b = 2' statement to be reused by identity")
	}
	if newStmts[2].Code() != "b = 2\n" {
		t.Errorf("shifted statement Code() = %q, want %q", newStmts[2].Code(), "b = 2\n")
	}
}

func TestUpdateMatchesFullReparse(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	tbl := compile38(t)

	oldSrc := "def f():\n    return 1\n\nx = f()\n"
	newSrc := "def f():\n    return 2\n\nx = f()\ny = 3\n"
	oldLines := splitLines(oldSrc)
	newLines := splitLines(newSrc)

	oldTree := parseFull(t, tbl, oldSrc)
	gotTree, err := Update(tbl, oldTree, oldLines, newLines)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	wantTree := parseFull(t, tbl, newSrc)
	if gotTree.Code() != wantTree.Code() {
		t.Fatalf("Code() = %q, want %q", gotTree.Code(), wantTree.Code())
	}
	if gotTree.Code() != newSrc {
		t.Fatalf("Code() = %q, want exact new source %q", gotTree.Code(), newSrc)
	}
}

func TestUpdateNoOpDiffReusesEverything(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	tbl := compile38(t)

	src := "a = 1\nb = 2\nc = 3\n"
	lines := splitLines(src)
	oldTree := parseFull(t, tbl, src)

	newTree, err := Update(tbl, oldTree, lines, lines)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	oldStmts, newStmts := topLevelStmts(oldTree), topLevelStmts(newTree)
	if len(oldStmts) != len(newStmts) {
		t.Fatalf("got %d statements, want %d", len(newStmts), len(oldStmts))
	}
	for i := range oldStmts {
		if oldStmts[i] != newStmts[i] {
			t.Errorf("statement %d was not reused by identity on a no-op diff", i)
		}
	}
}

func TestUpdateParentPointersRewrittenForCopiedSubtrees(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	tbl := compile38(t)

	oldSrc := "a = 1\nb = 2\n"
	newSrc := "x = 0\na = 1\nb = 2\n"
	oldTree := parseFull(t, tbl, oldSrc)
	newTree, err := Update(tbl, oldTree, splitLines(oldSrc), splitLines(newSrc))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	for _, c := range newTree.Children {
		if c.Parent() != newTree {
			t.Errorf("child %v has parent %v, want the new root %v", c, c.Parent(), newTree)
		}
	}
}
