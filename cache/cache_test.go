package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/gopytools/pyparso"
	"github.com/gopytools/pyparso/cst"
	"github.com/gopytools/pyparso/tokenizer"
)

func sampleTree() *cst.Node {
	children := []cst.Element{
		&cst.Leaf{Kind: tokenizer.NAME, Value: "x", Start: pyparso.Position{Line: 1, Column: 0}},
		&cst.Leaf{Kind: tokenizer.OP, Prefix: " ", Value: "=", Start: pyparso.Position{Line: 1, Column: 2}},
		&cst.Leaf{Kind: tokenizer.NUMBER, Prefix: " ", Value: "1", Start: pyparso.Position{Line: 1, Column: 4}},
	}
	return cst.NewNode("expr_stmt", children)
}

func TestSaveThenLoadHitsMemory(t *testing.T) {
	c := New("")
	tree := sampleTree()
	c.Save("hash1", "mod.py", tree, []string{"x = 1\n"})

	got, lines, ok := c.Load("hash1", "mod.py")
	if !ok {
		t.Fatalf("expected a memory hit")
	}
	if got != tree {
		t.Fatalf("Load returned a different tree than was saved")
	}
	if len(lines) != 1 || lines[0] != "x = 1\n" {
		t.Fatalf("Load returned lines = %v", lines)
	}
}

func TestLoadMissForUnknownPath(t *testing.T) {
	c := New("")
	if _, _, ok := c.Load("hash1", "nope.py"); ok {
		t.Fatalf("expected a miss for an unseen path")
	}
}

func TestSaveThenLoadHitsDiskAfterMemoryEviction(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	tree := sampleTree()
	c.Save("hash1", "mod.py", tree, []string{"x = 1\n"})

	// Simulate a cold process: a fresh Cache sharing the same disk dir.
	c2 := New(dir)
	got, lines, ok := c2.Load("hash1", "mod.py")
	if !ok {
		t.Fatalf("expected a disk hit")
	}
	if got.Code() != tree.Code() {
		t.Fatalf("decoded tree Code() = %q, want %q", got.Code(), tree.Code())
	}
	if len(lines) != 1 || lines[0] != "x = 1\n" {
		t.Fatalf("Load returned lines = %v", lines)
	}
	// RelinkParents must have run: every child's Parent() should be the root.
	for _, child := range got.Children {
		if child.Parent() != got {
			t.Errorf("decoded child %v has parent %v, want %v", child, child.Parent(), got)
		}
	}
}

func TestDiskLayoutFansOutByHashPrefix(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	c.Save("abcdef", "mod.py", sampleTree(), []string{"x = 1\n"})

	want := filepath.Join(dir, "ab", "abcdef")
	matches, err := filepath.Glob(filepath.Join(want, "*.cache"))
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected exactly one cache file under %s, got %v", want, matches)
	}
}

func TestEvictByCount(t *testing.T) {
	c := New("")
	c.MaxEntries = 2
	c.Save("hash1", "a.py", sampleTree(), nil)
	c.Save("hash1", "b.py", sampleTree(), nil)
	c.Save("hash1", "c.py", sampleTree(), nil)

	hits := 0
	for _, p := range []string{"a.py", "b.py", "c.py"} {
		if _, _, ok := c.Load("hash1", p); ok {
			hits++
		}
	}
	if hits != 2 {
		t.Fatalf("expected exactly 2 surviving entries after MaxEntries=2, got %d", hits)
	}
}

func TestEvictByAge(t *testing.T) {
	c := New("")
	c.MaxAge = time.Millisecond
	c.Save("hash1", "a.py", sampleTree(), nil)
	time.Sleep(5 * time.Millisecond)
	c.Evict()

	if _, _, ok := c.Load("hash1", "a.py"); ok {
		t.Fatalf("expected entry older than MaxAge to be evicted")
	}
}

func TestStaleEnvelopeFormatVersionIsRejected(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	c.Save("hash1", "mod.py", sampleTree(), []string{"x = 1\n"})

	// Corrupt the stored format version by writing a mismatched envelope
	// directly, bypassing Save.
	if err := c.writeEnvelope("hash1", "mod.py", envelope{
		FormatVersion: formatVersion + 1,
		GrammarHash:   "hash1",
		Path:          "mod.py",
		Tree:          sampleTree(),
	}); err != nil {
		t.Fatalf("writeEnvelope: %v", err)
	}

	c2 := New(dir)
	if _, _, ok := c2.Load("hash1", "mod.py"); ok {
		t.Fatalf("expected a stale-format envelope to be rejected as a miss")
	}
}
