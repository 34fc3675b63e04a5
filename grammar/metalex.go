package grammar

import (
	"fmt"
	"strings"
)

// metaKind enumerates the token kinds of the grammar meta-language, the
// small EBNF dialect used to write rules such as
//
//	if_stmt: 'if' test ':' suite ('elif' test ':' suite)* ['else' ':' suite]
type metaKind int

const (
	metaName metaKind = iota
	metaString
	metaColon
	metaVBar
	metaLPar
	metaRPar
	metaLSqb
	metaRSqb
	metaStar
	metaPlus
	metaNewline
	metaEOF
)

type metaToken struct {
	kind metaKind
	text string
	line int
}

// metaLexer tokenizes grammar text into metaTokens. It is a small
// hand-rolled scanner (not routed through lexmachine, unlike the Python
// tokenizer's atom recognizer) because the meta-grammar's alphabet is
// tiny and fixed, and because metaLexer must run once, at grammar-compile
// time, where compiled-DFA startup cost buys nothing.
type metaLexer struct {
	src  string
	pos  int
	line int
}

func newMetaLexer(src string) *metaLexer {
	return &metaLexer{src: src, line: 1}
}

func (l *metaLexer) next() (metaToken, error) {
	for {
		l.skipSpacesAndComments()
		if l.pos >= len(l.src) {
			return metaToken{kind: metaEOF, line: l.line}, nil
		}
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.pos++
			line := l.line
			l.line++
			return metaToken{kind: metaNewline, line: line}, nil
		case c == ':':
			l.pos++
			return metaToken{kind: metaColon, line: l.line}, nil
		case c == '|':
			l.pos++
			return metaToken{kind: metaVBar, line: l.line}, nil
		case c == '(':
			l.pos++
			return metaToken{kind: metaLPar, line: l.line}, nil
		case c == ')':
			l.pos++
			return metaToken{kind: metaRPar, line: l.line}, nil
		case c == '[':
			l.pos++
			return metaToken{kind: metaLSqb, line: l.line}, nil
		case c == ']':
			l.pos++
			return metaToken{kind: metaRSqb, line: l.line}, nil
		case c == '*':
			l.pos++
			return metaToken{kind: metaStar, line: l.line}, nil
		case c == '+':
			l.pos++
			return metaToken{kind: metaPlus, line: l.line}, nil
		case c == '\'' || c == '"':
			return l.scanString(c)
		case isMetaNameStart(c):
			return l.scanName(), nil
		default:
			return metaToken{}, fmt.Errorf("grammar syntax error at line %d: unexpected %q", l.line, c)
		}
	}
}

func (l *metaLexer) skipSpacesAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == ' ' || c == '\t' || c == '\r' {
			l.pos++
			continue
		}
		if c == '#' {
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
			continue
		}
		break
	}
}

func (l *metaLexer) scanString(quote byte) (metaToken, error) {
	start := l.pos
	l.pos++
	for l.pos < len(l.src) && l.src[l.pos] != quote {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return metaToken{}, fmt.Errorf("grammar syntax error at line %d: unterminated literal", l.line)
	}
	text := l.src[start+1 : l.pos]
	l.pos++
	return metaToken{kind: metaString, text: text, line: l.line}, nil
}

func (l *metaLexer) scanName() metaToken {
	start := l.pos
	for l.pos < len(l.src) && isMetaNameCont(l.src[l.pos]) {
		l.pos++
	}
	return metaToken{kind: metaName, text: l.src[start:l.pos], line: l.line}
}

func isMetaNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isMetaNameCont(c byte) bool {
	return isMetaNameStart(c) || (c >= '0' && c <= '9')
}

func (k metaKind) String() string {
	names := []string{"NAME", "STRING", ":", "|", "(", ")", "[", "]", "*", "+", "NEWLINE", "EOF"}
	if int(k) < len(names) {
		return names[k]
	}
	return "?"
}

func (t metaToken) String() string {
	if t.kind == metaName || t.kind == metaString {
		return fmt.Sprintf("%s(%s)", t.kind, t.text)
	}
	return t.kind.String()
}

// splitRules splits a full grammar text into "name: body" rule chunks
// for diagnostic purposes (the real parser in nfa.go consumes a single
// token stream across all rules, this helper is only used to produce
// friendlier error locations in tables.go).
func splitRules(src string) []string {
	var out []string
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
