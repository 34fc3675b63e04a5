package grammar

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func setup(t *testing.T) func() {
	t.Helper()
	return gotestingadapter.QuickConfig(t, "pyparso.grammar")
}

func TestCompileSimpleGrammar(t *testing.T) {
	defer setup(t)()
	src := "start: 'a' 'b'\n"
	tbl, err := Compile("test", src)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if tbl.Start != "start" {
		t.Fatalf("Start = %q, want %q", tbl.Start, "start")
	}
	s0, ok := tbl.StartStateID("start")
	if !ok {
		t.Fatalf("no start state for rule \"start\"")
	}
	plan, ok := tbl.Plan("start", s0, "a")
	if !ok {
		t.Fatalf("no plan for 'a' at start state")
	}
	if tbl.IsFinal("start", plan.NextState) {
		t.Fatalf("state after 'a' should not be final yet")
	}
	plan2, ok := tbl.Plan("start", plan.NextState, "b")
	if !ok {
		t.Fatalf("no plan for 'b'")
	}
	if !tbl.IsFinal("start", plan2.NextState) {
		t.Fatalf("state after 'a' 'b' should be final")
	}
	if !tbl.ReservedWords["a"] {
		// "a" is a single lowercase letter - isWordLiteral treats it as a
		// word, so it lands in ReservedWords not ReservedOps.
		t.Fatalf("expected %q classified as a reserved word", "a")
	}
}

func TestCompileGroupRepetition(t *testing.T) {
	defer setup(t)()
	src := "start: 'x' ('+' 'x')*\n"
	tbl, err := Compile("test", src)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	s0, _ := tbl.StartStateID("start")
	afterX, ok := tbl.Plan("start", s0, "x")
	if !ok {
		t.Fatalf("no transition on 'x'")
	}
	if !tbl.IsFinal("start", afterX.NextState) {
		t.Fatalf("single 'x' alone should already be accepting (zero repetitions)")
	}
	afterPlus, ok := tbl.Plan("start", afterX.NextState, "+")
	if !ok {
		t.Fatalf("no transition on '+' after 'x'")
	}
	afterX2, ok := tbl.Plan("start", afterPlus.NextState, "x")
	if !ok {
		t.Fatalf("no transition on second 'x'")
	}
	if afterX2.NextState != afterX.NextState {
		t.Fatalf("minimization should have merged the post-'x' states: got %d and %d", afterX2.NextState, afterX.NextState)
	}
}

func TestCompileOptional(t *testing.T) {
	defer setup(t)()
	src := "start: 'a' ['b'] 'c'\n"
	tbl, err := Compile("test", src)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	s0, _ := tbl.StartStateID("start")
	afterA, _ := tbl.Plan("start", s0, "a")
	if _, ok := tbl.Plan("start", afterA.NextState, "c"); !ok {
		t.Fatalf("expected skipping the optional 'b' to still reach 'c'")
	}
	afterB, ok := tbl.Plan("start", afterA.NextState, "b")
	if !ok {
		t.Fatalf("expected a transition on the optional 'b'")
	}
	if _, ok := tbl.Plan("start", afterB.NextState, "c"); !ok {
		t.Fatalf("expected 'c' to follow 'b'")
	}
}

func TestPlanSplicesThroughNestedRule(t *testing.T) {
	defer setup(t)()
	src := "start: inner 'end'\ninner: 'a' 'b'\n"
	tbl, err := Compile("test", src)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	s0, _ := tbl.StartStateID("start")
	plan, ok := tbl.Plan("start", s0, "a")
	if !ok {
		t.Fatalf("expected start's plan on 'a' to be spliced in from inner")
	}
	if len(plan.Pushes) != 1 || plan.Pushes[0].Rule != "inner" {
		t.Fatalf("expected a single Push onto rule \"inner\", got %v", plan.Pushes)
	}
}

func TestSharedPrefixDoesNotFalselyConflict(t *testing.T) {
	defer setup(t)()
	// Mirrors the grammar's argument rule: two alternatives beginning with
	// the same nonterminal merge into a single DFA edge before Plan
	// computation runs, so this must compile without an ambiguity error.
	src := "start: argument\nargument: test ['=' test] | test 'for' test\ntest: NAME\n"
	if _, err := Compile("test", src); err != nil {
		t.Fatalf("Compile: unexpected ambiguity error: %v", err)
	}
}

func TestLeftRecursionIsRejected(t *testing.T) {
	defer setup(t)()
	src := "start: start 'x' | 'y'\n"
	_, err := Compile("test", src)
	if err == nil {
		t.Fatalf("expected a left-recursion error, got nil")
	}
}

func TestUndefinedRuleReferenceIsRejected(t *testing.T) {
	defer setup(t)()
	src := "start: missing_rule\n"
	_, err := Compile("test", src)
	if err == nil {
		t.Fatalf("expected an undefined-symbol error, got nil")
	}
}

func TestAmbiguousGrammarIsRejected(t *testing.T) {
	defer setup(t)()
	src := "start: x | y\nx: 'a'\ny: 'a'\n"
	_, err := Compile("test", src)
	if err == nil {
		t.Fatalf("expected an ambiguity error for two alternative rules that both begin with 'a'")
	}
}

func TestEmptyGrammarIsRejected(t *testing.T) {
	defer setup(t)()
	if _, err := Compile("test", ""); err == nil {
		t.Fatalf("expected an error compiling an empty grammar")
	}
}

func TestHashIsStableAndVersionSensitive(t *testing.T) {
	defer setup(t)()
	src := "start: 'a'\n"
	t1, err := Compile("3.8", src)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	t2, err := Compile("3.8", src)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if t1.Hash() != t2.Hash() {
		t.Fatalf("identical (version, source) should hash identically")
	}
	t3, err := Compile("3.9", src)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if t1.Hash() == t3.Hash() {
		t.Fatalf("different versions should hash differently")
	}
}

func TestReservedOperatorsAreClassifiedSeparately(t *testing.T) {
	defer setup(t)()
	src := "start: NAME '->' NAME\n"
	tbl, err := Compile("test", src)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !tbl.ReservedOps["->"] {
		t.Fatalf("expected \"->\" classified as a reserved operator")
	}
	if tbl.ReservedWords["->"] {
		t.Fatalf("\"->\" should not also be classified as a reserved word")
	}
}
