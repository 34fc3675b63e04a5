/*
Package tokenizer turns Python source lines into a stream of positioned
tokens, preserving every byte of whitespace, comments and line
continuations as the "prefix" of the following token so that
concatenating prefix+value for every token reproduces the source exactly.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2026 The pyparso Authors.

*/
package tokenizer

import "github.com/gopytools/pyparso"

// Kind is a closed enumeration of token categories, mirroring the token
// types a Python tokenizer must distinguish.
type Kind int

const (
	NAME Kind = iota
	NUMBER
	STRING
	FStringStart
	FStringMiddle
	FStringEnd
	NEWLINE
	INDENT
	DEDENT
	ErrorDedent
	OP
	ErrorToken
	ENDMARKER
)

var kindNames = map[Kind]string{
	NAME:          "NAME",
	NUMBER:        "NUMBER",
	STRING:        "STRING",
	FStringStart:  "FSTRING_START",
	FStringMiddle: "FSTRING_MIDDLE",
	FStringEnd:    "FSTRING_END",
	NEWLINE:       "NEWLINE",
	INDENT:        "INDENT",
	DEDENT:        "DEDENT",
	ErrorDedent:   "ERROR_DEDENT",
	OP:            "OP",
	ErrorToken:    "ERRORTOKEN",
	ENDMARKER:     "ENDMARKER",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "UNKNOWN"
}

// ContainsSyntax reports whether tokens of this kind may carry a reserved
// word/operator identity distinct from their bare kind (NAME and OP are the
// two kinds grammar literals can reserve: keywords reserve a NAME value,
// operators reserve an OP value).
func (k Kind) ContainsSyntax() bool {
	return k == NAME || k == OP
}

// KindByGrammarName maps the bare, unquoted terminal names a grammar file
// may reference (NAME, NUMBER, NEWLINE, ...) to their Kind. Grammar rules
// never reference OP or ERRORTOKEN or ERROR_DEDENT bare since those only
// ever arise from the tokenizer's own error/operator handling, but the
// table is kept total for robustness.
var KindByGrammarName = map[string]Kind{
	"NAME":           NAME,
	"NUMBER":         NUMBER,
	"STRING":         STRING,
	"FSTRING_START":  FStringStart,
	"FSTRING_MIDDLE": FStringMiddle,
	"FSTRING_END":    FStringEnd,
	"NEWLINE":        NEWLINE,
	"INDENT":         INDENT,
	"DEDENT":         DEDENT,
	"ERROR_DEDENT":   ErrorDedent,
	"OP":             OP,
	"ERRORTOKEN":     ErrorToken,
	"ENDMARKER":      ENDMARKER,
}

// Token is an immutable record of one lexical unit. Prefix is the exact
// whitespace/comment/continuation text preceding the token; for any
// sequence of tokens t0..tn produced from source S,
// concat(ti.Prefix+ti.Value) == S.
type Token struct {
	Kind   Kind
	Value  string
	Start  pyparso.Position
	Prefix string
}

// End derives the end position of the token from its start and value,
// accounting for embedded newlines (as in triple-quoted strings).
func (t Token) End() pyparso.Position {
	line, col := t.Start.Line, t.Start.Column
	for _, r := range t.Value {
		if r == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return pyparso.Position{Line: line, Column: col}
}

func (t Token) String() string {
	return t.Kind.String() + "(" + t.Value + ")@" + t.Start.String()
}
