package tokenizer

import (
	"strings"

	"github.com/gopytools/pyparso"
)

// fstringSpan describes one quoted string literal's quote character and
// whether it is triple-quoted, shared by plain and f-strings since both
// follow the same quoting rules.
type fstringSpan struct {
	quote  byte
	triple bool
	raw    bool
	fstr   bool
	bytes  bool
}

// classifyStringPrefix parses a string literal's prefix letters (r, b, f,
// rb, fr, ...) returning the flags that govern how its body is scanned.
func classifyStringPrefix(prefix string) (raw, fstr, byteStr bool) {
	for _, r := range strings.ToLower(prefix) {
		switch r {
		case 'r':
			raw = true
		case 'f':
			fstr = true
		case 'b':
			byteStr = true
		}
	}
	return
}

// scanStringPrefix reports the length of a valid string-literal prefix
// (possibly empty) at the start of text, e.g. "f", "rb", "BR".
func scanStringPrefix(text string) int {
	n := 0
	for n < len(text) && n < 2 {
		switch text[n] {
		case 'r', 'R', 'b', 'B', 'f', 'F', 'u', 'U':
			n++
			continue
		}
		break
	}
	// validate: CPython accepts r,R,b,B,f,F,u,U alone or in the pairs
	// rb,br,rf,fr (any case); reject anything else by shrinking n.
	switch strings.ToLower(text[:n]) {
	case "", "r", "b", "f", "u", "rb", "br", "rf", "fr":
		return n
	}
	return 0
}

// scanQuote reports the quote byte and whether it is tripled, starting at
// text[0].
func scanQuote(text string) (quote byte, triple bool, ok bool) {
	if len(text) == 0 {
		return 0, false, false
	}
	c := text[0]
	if c != '\'' && c != '"' {
		return 0, false, false
	}
	if len(text) >= 3 && text[1] == c && text[2] == c {
		return c, true, true
	}
	return c, false, true
}

// stringTerminator finds the byte offset just past the closing quote of a
// string literal whose body starts at body (text immediately after the
// opening quote). It understands backslash escapes (disabled for raw
// strings only with respect to quote-escaping semantics, matching
// CPython: a raw string can still backslash-escape a quote for the
// purpose of not terminating the literal, it just keeps the backslash in
// the value). Returns -1 if the terminator is not found in body (the
// caller must pull more physical lines for a triple-quoted literal, or
// report an unterminated single-line string).
func stringTerminator(body string, quote byte, triple bool) int {
	i := 0
	for i < len(body) {
		switch body[i] {
		case '\\':
			i += 2
			continue
		case quote:
			if !triple {
				return i + 1
			}
			if i+2 < len(body) && body[i+1] == quote && body[i+2] == quote {
				return i + 3
			}
		}
		i++
	}
	return -1
}

// splitFStringBody splits the interior text of an f-string (between its
// quotes) into FStringMiddle segments and the raw text of embedded
// replacement fields ("{expr}"), tracking brace-escape ("{{", "}}") and
// nested brace depth. It does not itself tokenize the expression text;
// the caller feeds each field's text back through the main tokenizer
// driver so replacement-field expressions get full NAME/NUMBER/OP/STRING
// treatment, matching spec.md's FSTRING_START/MIDDLE/END model.
type fstringPart struct {
	isField bool
	text    string
	offset  int // byte offset within the f-string body
}

func splitFStringBody(body string) []fstringPart {
	var parts []fstringPart
	i := 0
	start := 0
	flushMiddle := func(end int) {
		if end > start {
			parts = append(parts, fstringPart{text: body[start:end], offset: start})
		}
	}
	for i < len(body) {
		switch body[i] {
		case '{':
			if i+1 < len(body) && body[i+1] == '{' {
				i += 2
				continue
			}
			flushMiddle(i)
			depth := 1
			fieldStart := i + 1
			j := fieldStart
			inStr := byte(0)
			for j < len(body) && depth > 0 {
				c := body[j]
				switch {
				case inStr != 0:
					if c == '\\' {
						j++
					} else if c == inStr {
						inStr = 0
					}
				case c == '\'' || c == '"':
					inStr = c
				case c == '{':
					depth++
				case c == '}':
					depth--
					if depth == 0 {
						break
					}
				}
				j++
			}
			parts = append(parts, fstringPart{isField: true, text: body[fieldStart : j-1], offset: fieldStart})
			i = j
			start = i
		case '}':
			if i+1 < len(body) && body[i+1] == '}' {
				i += 2
				continue
			}
			i++
		default:
			i++
		}
	}
	flushMiddle(len(body))
	return parts
}

// advancePosition computes the position reached after consuming text
// starting at pos, accounting for embedded newlines (triple-quoted
// strings and multi-line f-string bodies).
func advancePosition(pos pyparso.Position, text string) pyparso.Position {
	line, col := pos.Line, pos.Column
	for _, r := range text {
		if r == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return pyparso.Position{Line: line, Column: col}
}
