package tokenizer

import (
	"strings"
	"sync"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// Operators lists Python's multi- and single-character operators and
// delimiters, longest first within any shared prefix so that a naive
// scanner would need to try them in this order. The lexmachine-generated
// scanner built below resolves maximal munch on its own (that is the
// entire point of routing operator/number/name recognition through a
// compiled DFA instead of a hand-sorted table), but the literal ordering
// is kept for readability. The fallback in scanToken does not use this
// list: singleRuneOperator (operators.go) has its own single-rune table.
var Operators = []string{
	"**=", "//=", "<<=", ">>=", "...", "!=", "->", ":=",
	"**", "//", "<<", ">>", "<=", ">=", "==",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=",
	"+", "-", "*", "/", "%", "@", "&", "|", "^", "~",
	"<", ">", "(", ")", "[", "]", "{", "}",
	",", ":", ".", ";", "=",
}

const (
	tokNumber = iota
	tokName
	tokOp
)

var (
	atomLexer     *lexmachine.Lexer
	atomLexerOnce sync.Once
	atomLexerErr  error
)

func atomAction(id int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}

// buildAtomLexer compiles the regex-DFA recognizer for names, numbers and
// operators. Strings and f-strings are not part of this DFA: their
// termination depends on matching quote characters and, for triple
// quotes, spans physical lines, which is exactly the class of lexeme the
// tokenizer package's own driver (not a regular-language scanner) is
// responsible for per SPEC_FULL.md §4.4.
func buildAtomLexer() (*lexmachine.Lexer, error) {
	lexer := lexmachine.NewLexer()

	number := `(0[xX][0-9a-fA-F_]+|0[oO][0-7_]+|0[bB][01_]+|` +
		`[0-9][0-9_]*(\.[0-9_]*)?([eE](\+|-)?[0-9_]+)?[jJ]?|` +
		`\.[0-9][0-9_]*([eE](\+|-)?[0-9_]+)?[jJ]?)`
	if err := lexer.Add([]byte(number), atomAction(tokNumber)); err != nil {
		return nil, err
	}

	name := `[A-Za-z_][A-Za-z0-9_]*`
	if err := lexer.Add([]byte(name), atomAction(tokName)); err != nil {
		return nil, err
	}

	for _, op := range Operators {
		pattern := escapeLexmachine(op)
		if err := lexer.Add([]byte(pattern), atomAction(tokOp)); err != nil {
			return nil, err
		}
	}

	if err := lexer.Compile(); err != nil {
		return nil, err
	}
	return lexer, nil
}

// escapeLexmachine backslash-escapes every rune of a literal operator so
// it cannot be misread as lexmachine regex metasyntax, the same trick the
// teacher's lexmachine adapter uses for punctuation literals
// (lr/scanner/lexmachine.go).
func escapeLexmachine(lit string) string {
	var b strings.Builder
	for _, r := range lit {
		b.WriteByte('\\')
		b.WriteRune(r)
	}
	return b.String()
}

func getAtomLexer() (*lexmachine.Lexer, error) {
	atomLexerOnce.Do(func() {
		atomLexer, atomLexerErr = buildAtomLexer()
	})
	return atomLexer, atomLexerErr
}

// scanAtom recognizes the single next name/number/operator token at the
// start of text, returning its kind tag, matched text, and byte length.
// ok is false if no atomic token starts here (the caller then falls back
// to string/f-string/error-token handling).
func scanAtom(text string) (tag int, lexeme string, ok bool) {
	lexer, err := getAtomLexer()
	if err != nil || text == "" {
		return 0, "", false
	}
	scanner, err := lexer.Scanner([]byte(text))
	if err != nil {
		return 0, "", false
	}
	tok, err, eof := scanner.Next()
	if eof || err != nil || tok == nil {
		return 0, "", false
	}
	t := tok.(*lexmachine.Token)
	if t.TC != 0 {
		// TC is the 0-based byte offset into `text` where the match
		// starts (StartColumn/StartLine are 1-based human-readable
		// positions, not a reliable zero test). A nonzero TC means the
		// scanner skipped unrecognized bytes to find this match; we only
		// want a match anchored at the current position.
		return 0, "", false
	}
	return t.Type, string(t.Lexeme), true
}
