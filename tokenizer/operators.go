package tokenizer

// keywords is the set of Python reserved words. A NAME token whose value
// is in this set is still lexed as NAME (the grammar layer reserves it to
// a dedicated label via grammar.Tables.TokenLabel, mirroring how the
// parser's reserved-word table works for keywords-as-NAME rather than the
// tokenizer inventing a separate KEYWORD kind).
var keywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// IsKeyword reports whether value is a reserved word.
func IsKeyword(value string) bool {
	return keywords[value]
}

// singleRuneOperator reports whether r is one of Python's single-rune
// operator/delimiter punctuation marks. scanToken (tokenizer.go) checks
// this as a plain-table fallback right before degrading to ERRORTOKEN, in
// case the atom scanner's lexmachine DFA (lexrules.go) is unavailable or
// fails to match a rune it should have recognized.
func singleRuneOperator(r rune) bool {
	switch r {
	case '+', '-', '*', '/', '%', '@', '&', '|', '^', '~',
		'<', '>', '=', '!', '(', ')', '[', ']', '{', '}',
		',', ':', '.', ';':
		return true
	}
	return false
}
