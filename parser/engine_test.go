package parser

import (
	"testing"

	"github.com/gopytools/pyparso"
	"github.com/gopytools/pyparso/cst"
	"github.com/gopytools/pyparso/grammar"
	"github.com/gopytools/pyparso/grammars"
	"github.com/gopytools/pyparso/tokenizer"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

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

func parseSource(t *testing.T, src string, opts ...Option) (cst.Element, error) {
	t.Helper()
	teardown := gotestingadapter.QuickConfig(t, "pyparso.parser")
	defer teardown()
	tbl := compile38(t)
	tok := tokenizer.New(src)
	return Parse(tbl, tok, opts...)
}

// findFirst returns the first descendant of e (including e) whose type
// matches typ, depth-first left-to-right. It works for both plain *cst.Node
// values and specialized wrappers (FuncDef, IfStmt, Suite, ...) since all
// of them promote AsNode from the embedded *cst.Node.
func findFirst(e cst.Element, typ string) *cst.Node {
	var found *cst.Node
	cst.Walk(e, func(el cst.Element) {
		if found != nil {
			return
		}
		if nb, ok := el.(interface{ AsNode() *cst.Node }); ok {
			if n := nb.AsNode(); n.Type == typ {
				found = n
			}
		}
	})
	return found
}

func leafValues(n *cst.Node) []string {
	var out []string
	for _, c := range n.Children {
		if leaf, ok := c.(*cst.Leaf); ok {
			out = append(out, leaf.Value)
		}
	}
	return out
}

func TestArithExprScenario(t *testing.T) {
	root, err := parseSource(t, "hello + 1\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	expr := findFirst(root, "arith_expr")
	if expr == nil {
		t.Fatalf("expected an arith_expr node in the tree")
	}
	got := leafValues(expr)
	want := []string{"hello", "+", "1"}
	if len(got) != len(want) {
		t.Fatalf("arith_expr children = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("arith_expr children = %v, want %v", got, want)
		}
	}
	if end := expr.EndPos(); end != (pyparso.Position{Line: 1, Column: 9}) {
		t.Fatalf("arith_expr.EndPos() = %s, want 1:9", end)
	}
}

func TestFuncdefWithErrorBody(t *testing.T) {
	root, err := parseSource(t, "def x(): f.\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fn := findFirst(root, "funcdef")
	if fn == nil {
		t.Fatalf("expected a funcdef node")
	}
	errNode := findFirst(fn, "error_node")
	if errNode == nil {
		t.Fatalf("expected an error_node inside the funcdef body")
	}
	got := leafValues(errNode)
	want := []string{"f", "."}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("error_node children = %v, want %v", got, want)
	}
	if root.Code() != "def x(): f.\n" {
		t.Fatalf("round trip mismatch: %q", root.Code())
	}
}

func TestComprehensionHasNoErrorNodes(t *testing.T) {
	root, err := parseSource(t, "[x*2 for x in range(5)]\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if bad := findFirst(root, "error_node"); bad != nil {
		t.Fatalf("unexpected error_node in a well-formed comprehension")
	}
	if bad := findFirst(root, "error_leaf"); bad != nil {
		t.Fatalf("unexpected error_leaf in a well-formed comprehension")
	}
	compFor := findFirst(root, "comp_for")
	if compFor == nil {
		t.Fatalf("expected a comp_for node")
	}
}

func TestUnrecoverableTrailingOperatorWithRecovery(t *testing.T) {
	root, err := parseSource(t, "1 +", WithErrorRecovery(true))
	if err != nil {
		t.Fatalf("Parse: unexpected error with recovery enabled: %v", err)
	}
	errNode := findFirst(root, "error_node")
	if errNode == nil {
		t.Fatalf("expected an error_node wrapping the dangling '1 +'")
	}
	got := leafValues(errNode)
	if len(got) < 2 || got[0] != "1" || got[1] != "+" {
		t.Fatalf("error_node children = %v, want to start with [1 +]", got)
	}
}

func TestUnrecoverableTrailingOperatorWithoutRecovery(t *testing.T) {
	_, err := parseSource(t, "1 +", WithErrorRecovery(false))
	if err == nil {
		t.Fatalf("expected a *SyntaxError, got nil")
	}
	synErr, ok := err.(*SyntaxError)
	if !ok {
		t.Fatalf("expected a *SyntaxError, got %T: %v", err, err)
	}
	if pos := synErr.Leaf.StartPos(); pos != (pyparso.Position{Line: 1, Column: 3}) {
		t.Fatalf("SyntaxError leaf start_pos = %s, want 1:3", pos)
	}
}

func TestRecoveryRejectedWithNonDefaultStartSymbol(t *testing.T) {
	_, err := parseSource(t, "x\n", WithStartSymbol("test"), WithErrorRecovery(true))
	if err != ErrRecoveryNotImplementedForStartSymbol {
		t.Fatalf("got %v, want ErrRecoveryNotImplementedForStartSymbol", err)
	}
}

func TestParentConsistency(t *testing.T) {
	root, err := parseSource(t, "def x():\n    return 1\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if root.Parent() != nil {
		t.Fatalf("root element should have a nil parent")
	}
	count := 0
	cst.Walk(root, func(e cst.Element) {
		count++
		if e != root && e.Parent() == nil {
			t.Errorf("non-root element %v has a nil parent", e)
		}
	})
	if count < 5 {
		t.Fatalf("expected Walk to visit the whole tree, only saw %d elements", count)
	}
}
