package tokenizer

import (
	"fmt"
	"strings"

	"github.com/gopytools/pyparso"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'pyparso.tokenizer'.
func tracer() tracing.Trace {
	return tracing.Select("pyparso.tokenizer")
}

// Tokenizer is a pull-iterator over the tokens of a Python source string.
// Call Next repeatedly until it returns an ENDMARKER token. Next never
// returns an error for malformed input: lexically invalid input surfaces
// as ErrorToken/ErrorDedent tokens so that callers building an
// error-recovering parser can keep going, matching spec.md's round-trip
// invariant (every byte of source is accounted for by some token's
// prefix+value, even when that source is not valid Python).
type Tokenizer struct {
	lines   []string
	lineIdx int
	col     int // byte offset within lines[lineIdx]
	pos     pyparso.Position

	parenDepth  int
	indents     *indentStack
	atLineStart bool
	prefix      strings.Builder
	pending     []Token
	done        bool
	emittedAny  bool
	openLine    bool // a real token has been emitted since the last NEWLINE
}

// New builds a Tokenizer over src. The leading BOM, if any, is folded
// into the first token's prefix so the round-trip invariant covers it.
func New(src string) *Tokenizer {
	lines, hadBOM := Lines(src)
	t := &Tokenizer{
		lines:       lines,
		pos:         pyparso.Position{Line: 1},
		indents:     newIndentStack(),
		atLineStart: true,
	}
	if hadBOM {
		t.prefix.WriteString(bom)
	}
	return t
}

func (t *Tokenizer) curLine() string {
	if t.lineIdx >= len(t.lines) {
		return ""
	}
	return t.lines[t.lineIdx]
}

func (t *Tokenizer) eof() bool {
	return t.lineIdx >= len(t.lines)
}

func (t *Tokenizer) rest() string {
	return t.curLine()[t.col:]
}

// advanceLine moves to the start of the next physical line.
func (t *Tokenizer) advanceLine() {
	t.lineIdx++
	t.col = 0
	t.pos.Line++
	t.pos.Column = 0
}

func (t *Tokenizer) consume(n int) string {
	s := t.curLine()[t.col : t.col+n]
	t.col += n
	t.pos.Column += len([]rune(s))
	return s
}

// Next returns the next token. After an ENDMARKER has been returned, Next
// keeps returning ENDMARKER at the same position.
func (t *Tokenizer) Next() (Token, error) {
	if len(t.pending) > 0 {
		tok := t.pending[0]
		t.pending = t.pending[1:]
		return tok, nil
	}
	return t.next()
}

// All drains the tokenizer, a convenience used by tests and by the
// diff parser's retokenization of a changed region.
func (t *Tokenizer) All() ([]Token, error) {
	var out []Token
	for {
		tok, err := t.Next()
		if err != nil {
			return out, err
		}
		out = append(out, tok)
		if tok.Kind == ENDMARKER {
			return out, nil
		}
	}
}

func (t *Tokenizer) next() (Token, error) {
	for {
		if t.done {
			return t.emit(ENDMARKER, "", t.pos), nil
		}

		if t.atLineStart && t.parenDepth == 0 {
			if tok, handled, err := t.handleLineStart(); handled {
				return tok, err
			}
		}

		if t.eof() {
			end := t.pos
			if n := len(t.lines); n > 0 && !strings.HasSuffix(t.lines[n-1], "\n") {
				// no final line break: end of input is the end of the
				// last line, not the start of a line after it
				end = pyparso.Position{Line: n, Column: len([]rune(t.lines[n-1]))}
			}
			if t.parenDepth > 0 {
				// brackets still open at end of input
				t.parenDepth = 0
				return t.emit(ErrorToken, "", end), nil
			}
			if t.openLine {
				// CPython's own tokenizer synthesizes a trailing NEWLINE
				// when the source ends mid-logical-line, so every
				// statement still closes cleanly even without a final
				// newline character.
				t.openLine = false
				return t.emit(NEWLINE, "", end), nil
			}
			t.done = true
			closing := t.indents.closeAll(t.pos)
			if len(closing) == 0 {
				return t.emit(ENDMARKER, "", t.pos), nil
			}
			for i, tok := range closing {
				closing[i] = t.finish(tok)
			}
			first := closing[0]
			t.pending = append(t.pending, closing[1:]...)
			return first, nil
		}

		if t.col >= len(t.curLine()) {
			t.advanceLine()
			continue
		}

		c := t.curLine()[t.col]

		switch {
		case c == ' ' || c == '\t' || c == '\f':
			t.prefix.WriteByte(c)
			t.consume(1)
			continue
		case c == '\\' && t.col == len(t.curLine())-1:
			t.prefix.WriteByte(c)
			t.consume(1)
			continue
		case c == '\\' && t.col == len(t.curLine())-2 && t.curLine()[t.col+1] == '\n':
			t.prefix.WriteString(t.rest())
			t.advanceLine()
			continue
		case c == '#':
			if t.openLine && t.parenDepth == 0 {
				// a trailing comment: leave the line break for the NEWLINE
				// that ends this logical line
				comment := strings.TrimRight(t.rest(), "\r\n")
				t.prefix.WriteString(comment)
				t.consume(len(comment))
				continue
			}
			t.prefix.WriteString(t.rest())
			t.advanceLine()
			if !t.openLine && t.parenDepth == 0 {
				// a comment-only line: the next line still starts a
				// logical line whose indentation must be resolved
				t.atLineStart = true
			}
			continue
		case c == '\n' || c == '\r':
			if t.parenDepth > 0 {
				t.prefix.WriteString(t.rest())
				t.advanceLine()
				continue
			}
			start := t.pos
			nl := t.rest()
			t.advanceLine()
			t.atLineStart = true
			if !t.emittedAny {
				// a blank line before any real token contributes only to
				// prefix, matching CPython (no NEWLINE token for it).
				t.prefix.WriteString(nl)
				continue
			}
			return t.emit(NEWLINE, nl, start), nil
		}

		return t.scanToken()
	}
}

// handleLineStart measures indentation and resolves INDENT/DEDENT at the
// start of a logical line. It reports handled=false when the line is
// blank or comment-only (those never affect indentation) so the caller
// falls through to ordinary character scanning, which will itself
// recognize the blank line / comment and loop around.
func (t *Tokenizer) handleLineStart() (Token, bool, error) {
	t.atLineStart = false
	line := t.curLine()
	n := 0
	for n < len(line) {
		c := line[n]
		if c == ' ' || c == '\t' || c == '\f' {
			n++
			continue
		}
		break
	}
	rest := line[n:]
	if rest == "" || rest == "\n" || rest == "\r\n" || strings.HasPrefix(rest, "#") {
		return Token{}, false, nil
	}
	indentText := line[:n]
	w := width(indentText)
	startPos := t.pos
	toks, ok := t.indents.resolve(w, startPos)
	if len(toks) == 0 {
		return Token{}, false, nil
	}
	t.prefix.WriteString(indentText)
	t.consume(n)
	if !ok {
		bad := toks[len(toks)-1]
		bad.Kind = ErrorDedent
		toks[len(toks)-1] = bad
	}
	for i, tok := range toks {
		tok.Start = startPos
		toks[i] = t.finish(tok)
	}
	first := toks[0]
	t.pending = append(t.pending, toks[1:]...)
	return first, true, nil
}

// scanToken recognizes exactly one NAME/NUMBER/STRING/OP/ERRORTOKEN at
// the current position, which is guaranteed not to be whitespace, a
// comment, or a line terminator.
func (t *Tokenizer) scanToken() (Token, error) {
	startPos := t.pos
	remainder := t.rest()

	if n := scanStringPrefix(remainder); n >= 0 {
		if q, triple, ok := scanQuote(remainder[n:]); ok {
			return t.scanString(remainder[:n], q, triple, n)
		}
	}

	if tag, lexeme, ok := scanAtom(remainder); ok {
		t.consume(len(lexeme))
		switch tag {
		case tokNumber:
			return t.emit(NUMBER, lexeme, startPos), nil
		case tokName:
			return t.emit(NAME, lexeme, startPos), nil
		default: // tokOp
			switch lexeme {
			case "(", "[", "{":
				t.parenDepth++
			case ")", "]", "}":
				if t.parenDepth > 0 {
					t.parenDepth--
				}
			}
			return t.emit(OP, lexeme, startPos), nil
		}
	}

	// The atom DFA (lexrules.go) should recognize every operator in
	// Operators, so this is reached only if that lexer is unavailable
	// (buildAtomLexer failed) or disagrees with the plain-table fallback;
	// either way a recognizable single-rune operator still gets tokenized
	// as OP rather than degrading to ERRORTOKEN.
	r, size := decodeRune(remainder)
	if singleRuneOperator(r) {
		lexeme := remainder[:size]
		t.consume(size)
		switch lexeme {
		case "(", "[", "{":
			t.parenDepth++
		case ")", "]", "}":
			if t.parenDepth > 0 {
				t.parenDepth--
			}
		}
		return t.emit(OP, lexeme, startPos), nil
	}

	bad := remainder[:size]
	t.consume(size)
	return t.emit(ErrorToken, bad, startPos), nil
}

// scanString consumes a (possibly f-) string literal, which may span
// multiple physical lines when triple-quoted. prefixLen is the byte
// length of the string's quote-prefix letters (r, b, f, ...).
func (t *Tokenizer) scanString(quotePrefix string, quote byte, triple bool, prefixLen int) (Token, error) {
	startPos := t.pos
	_, fstr, _ := classifyStringPrefix(quotePrefix)
	quoteLen := 1
	if triple {
		quoteLen = 3
	}
	opener := prefixLen + quoteLen

	startLineIdx, startCol := t.lineIdx, t.col
	body := t.curLine()[startCol+opener:]

	if end := stringTerminator(body, quote, triple); end >= 0 {
		endCol := startCol + opener + end
		full := t.lines[startLineIdx][startCol:endCol]
		t.lineIdx, t.col = startLineIdx, endCol
		t.pos = advancePosition(startPos, full)
		return t.finishStringLiteral(quotePrefix, full, startPos, fstr)
	}

	if !triple {
		full := t.curLine()[startCol:]
		t.lineIdx, t.col = startLineIdx, len(t.curLine())
		t.pos = advancePosition(startPos, full)
		return t.emit(ErrorToken, full, startPos), nil
	}

	li := startLineIdx
	for {
		li++
		if li >= len(t.lines) {
			full := concatLines(t.lines, startLineIdx, startCol, len(t.lines)-1, len(t.lines[len(t.lines)-1]))
			t.lineIdx, t.col = len(t.lines), 0
			t.pos = advancePosition(startPos, full)
			return t.emit(ErrorToken, full, startPos), nil
		}
		before := len(body)
		body += t.lines[li]
		if end := stringTerminator(body, quote, triple); end >= 0 {
			endCol := end - before
			full := concatLines(t.lines, startLineIdx, startCol, li, endCol)
			t.lineIdx, t.col = li, endCol
			t.pos = advancePosition(startPos, full)
			return t.finishStringLiteral(quotePrefix, full, startPos, fstr)
		}
	}
}

// concatLines joins the text spanning [startLine:startCol, endLine:endCol)
// across one or more physical lines.
func concatLines(lines []string, startLine, startCol, endLine, endCol int) string {
	if startLine == endLine {
		return lines[startLine][startCol:endCol]
	}
	var b strings.Builder
	b.WriteString(lines[startLine][startCol:])
	for i := startLine + 1; i < endLine; i++ {
		b.WriteString(lines[i])
	}
	b.WriteString(lines[endLine][:endCol])
	return b.String()
}

// finishStringLiteral builds the STRING (or FSTRING_*) tokens for a
// completed literal whose full source text (quotePrefix+quotes+body+
// quotes) is `full`. The tokenizer's line/col/pos cursor has already been
// advanced past full by the caller.
func (t *Tokenizer) finishStringLiteral(quotePrefix, full string, startPos pyparso.Position, fstr bool) (Token, error) {
	if !fstr {
		return t.emit(STRING, full, startPos), nil
	}

	quoteLen := 1
	if strings.HasSuffix(full, `"""`) || strings.HasSuffix(full, `'''`) {
		quoteLen = 3
	}
	prefixLen := len(quotePrefix) + quoteLen
	body := full[prefixLen : len(full)-quoteLen]
	parts := splitFStringBody(body)

	startTok := t.finish(Token{Kind: FStringStart, Value: full[:prefixLen], Start: startPos})

	var pending []Token
	covered := 0 // body bytes already accounted for by some token
	carry := ""  // field braces and whitespace owed to the next token's prefix
	for _, p := range parts {
		carry += body[covered:p.offset]
		covered = p.offset + len(p.text)
		partPos := advancePosition(startPos, full[:prefixLen+p.offset])
		if !p.isField {
			pending = append(pending, Token{Kind: FStringMiddle, Value: p.text, Start: partPos, Prefix: carry})
			carry = ""
			continue
		}
		sub := New(p.text)
		subToks, _ := sub.All()
		for _, st := range subToks {
			if st.Kind == ENDMARKER {
				carry += st.Prefix
				continue
			}
			st.Prefix, carry = carry+st.Prefix, ""
			st.Start = absolutePosition(partPos, st.Start)
			pending = append(pending, st)
		}
	}
	carry += body[covered:]
	endTok := Token{Kind: FStringEnd, Value: full[len(full)-quoteLen:], Start: advancePosition(startPos, full[:len(full)-quoteLen]), Prefix: carry}

	for _, tok := range append(pending, endTok) {
		t.prefix.WriteString(tok.Prefix)
		t.pending = append(t.pending, t.finish(tok))
	}
	return startTok, nil
}

// absolutePosition translates a position relative to the start of a
// replacement field's own source text (as produced by tokenizing that
// text in isolation, so line 1 is the field's first line) into an
// absolute position, given the field's own absolute start position.
func absolutePosition(fieldStart, relative pyparso.Position) pyparso.Position {
	if relative.Line == 1 {
		return pyparso.Position{Line: fieldStart.Line, Column: fieldStart.Column + relative.Column}
	}
	return pyparso.Position{Line: fieldStart.Line + relative.Line - 1, Column: relative.Column}
}

func decodeRune(s string) (rune, int) {
	for i, r := range s {
		if i == 0 {
			n := 1
			for j := 1; j < len(s) && s[j]&0xC0 == 0x80; j++ {
				n++
			}
			return r, n
		}
	}
	return 0, 0
}

// emit finishes building a token (attaching and clearing the accumulated
// prefix).
func (t *Tokenizer) emit(kind Kind, value string, start pyparso.Position) Token {
	return t.finish(Token{Kind: kind, Value: value, Start: start})
}

func (t *Tokenizer) finish(tok Token) Token {
	tok.Prefix = t.prefix.String()
	t.prefix.Reset()
	if tok.Kind != ENDMARKER {
		t.emittedAny = true
	}
	switch tok.Kind {
	case NEWLINE:
		t.openLine = false
	case INDENT, DEDENT, ErrorDedent, ENDMARKER:
		// indentation bookkeeping tokens don't open or close a logical line
	default:
		t.openLine = true
	}
	if tok.Kind == ErrorToken || tok.Kind == ErrorDedent {
		tracer().Errorf("%s", Error(tok).Error())
	} else {
		tracer().Debugf("token: %s", tok.String())
	}
	return tok
}

// Error formats a lexical diagnostic, used by callers that want to
// surface ErrorToken/ErrorDedent occurrences as human-readable messages
// without treating them as fatal.
func Error(tok Token) error {
	switch tok.Kind {
	case ErrorToken:
		return fmt.Errorf("invalid token %q at %s", tok.Value, tok.Start)
	case ErrorDedent:
		return fmt.Errorf("unindent does not match any outer indentation level at %s", tok.Start)
	default:
		return nil
	}
}
