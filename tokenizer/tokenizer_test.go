package tokenizer

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// roundTrip reassembles prefix+value for every token and checks it
// reproduces src exactly, the tokenizer's central invariant.
func roundTrip(t *testing.T, src string) []Token {
	t.Helper()
	teardown := gotestingadapter.QuickConfig(t, "pyparso.tokenizer")
	defer teardown()

	toks, err := New(src).All()
	if err != nil {
		t.Fatalf("tokenizing: %v", err)
	}
	var b strings.Builder
	for _, tok := range toks {
		b.WriteString(tok.Prefix)
		b.WriteString(tok.Value)
	}
	if b.String() != src {
		t.Fatalf("round trip mismatch:\n got: %q\nwant: %q", b.String(), src)
	}
	return toks
}

func TestSimpleStatement(t *testing.T) {
	toks := roundTrip(t, "x = 1 + 2\n")
	kinds := []Kind{NAME, OP, NUMBER, OP, NUMBER, NEWLINE, ENDMARKER}
	if len(toks) != len(kinds) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(kinds), toks)
	}
	for i, k := range kinds {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}

func TestIndentDedent(t *testing.T) {
	src := "if x:\n    y = 1\n    z = 2\nw = 3\n"
	toks := roundTrip(t, src)
	var kinds []Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	want := []Kind{
		NAME, OP, OP, NEWLINE,
		INDENT,
		NAME, OP, NUMBER, NEWLINE,
		NAME, OP, NUMBER, NEWLINE,
		DEDENT,
		NAME, OP, NUMBER, NEWLINE,
		ENDMARKER,
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestMismatchedDedentIsErrorDedent(t *testing.T) {
	src := "if x:\n    if y:\n        z = 1\n   w = 2\n"
	toks := roundTrip(t, src)
	found := false
	for _, tok := range toks {
		if tok.Kind == ErrorDedent {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an ErrorDedent token for misaligned dedent, got %v", toks)
	}
}

func TestBlankAndCommentLinesDoNotAffectIndentation(t *testing.T) {
	src := "if x:\n    y = 1\n\n    # a comment\n    z = 2\n"
	toks := roundTrip(t, src)
	indents, dedents := 0, 0
	for _, tok := range toks {
		if tok.Kind == INDENT {
			indents++
		}
		if tok.Kind == DEDENT {
			dedents++
		}
	}
	if indents != 1 || dedents != 1 {
		t.Errorf("got %d INDENT / %d DEDENT, want 1/1", indents, dedents)
	}
}

func TestImplicitLineJoiningInsideParens(t *testing.T) {
	src := "x = (1 +\n     2)\n"
	toks := roundTrip(t, src)
	newlines := 0
	for _, tok := range toks {
		if tok.Kind == NEWLINE {
			newlines++
		}
	}
	if newlines != 1 {
		t.Errorf("got %d NEWLINE tokens inside a paren-continued line, want 1", newlines)
	}
}

func TestExplicitBackslashContinuation(t *testing.T) {
	src := "x = 1 + \\\n    2\n"
	roundTrip(t, src)
}

func TestTripleQuotedStringSpansLines(t *testing.T) {
	src := "x = \"\"\"line one\nline two\"\"\"\n"
	toks := roundTrip(t, src)
	found := false
	for _, tok := range toks {
		if tok.Kind == STRING && strings.Contains(tok.Value, "\n") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a multi-line STRING token, got %v", toks)
	}
}

func TestUnterminatedStringIsErrorToken(t *testing.T) {
	src := "x = 'oops\n"
	toks := roundTrip(t, src)
	found := false
	for _, tok := range toks {
		if tok.Kind == ErrorToken {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an ErrorToken for the unterminated string, got %v", toks)
	}
}

func TestFString(t *testing.T) {
	src := "x = f'hello {name!r} world'\n"
	toks := roundTrip(t, src)
	var kinds []Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	wantPrefix := []Kind{NAME, OP, FStringStart, FStringMiddle, NAME}
	if len(kinds) < len(wantPrefix) {
		t.Fatalf("too few tokens: %v", kinds)
	}
	for i := range wantPrefix {
		if kinds[i] != wantPrefix[i] {
			t.Errorf("token %d: got %s, want %s", i, kinds[i], wantPrefix[i])
		}
	}
	var sawEnd bool
	for _, k := range kinds {
		if k == FStringEnd {
			sawEnd = true
		}
	}
	if !sawEnd {
		t.Errorf("expected a FSTRING_END token, got %v", kinds)
	}
}

func TestBOMFoldedIntoFirstPrefix(t *testing.T) {
	src := "\ufeffx = 1\n"
	toks := roundTrip(t, src)
	if !strings.HasPrefix(toks[0].Prefix, "\ufeff") {
		t.Errorf("expected BOM folded into first token prefix, got %q", toks[0].Prefix)
	}
}

func TestKeywordIsStillNAME(t *testing.T) {
	toks := roundTrip(t, "if True:\n    pass\n")
	if toks[0].Kind != NAME || toks[0].Value != "if" {
		t.Errorf("expected keyword 'if' lexed as NAME, got %v", toks[0])
	}
	if !IsKeyword("if") || IsKeyword("x") {
		t.Errorf("IsKeyword table mismatch")
	}
}

func TestEmptySource(t *testing.T) {
	toks := roundTrip(t, "")
	if len(toks) != 1 || toks[0].Kind != ENDMARKER {
		t.Errorf("expected just ENDMARKER for empty source, got %v", toks)
	}
}
