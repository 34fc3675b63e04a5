package tokenizer

import "github.com/gopytools/pyparso"

// indentStack tracks the column widths of currently open indentation
// levels, column 0 always present as the base level. It is consulted only
// at the start of a logical line (paren depth 0, not a blank or
// comment-only line), exactly the condition under which Python's own
// tokenizer emits INDENT/DEDENT.
type indentStack struct {
	levels []int
}

func newIndentStack() *indentStack {
	return &indentStack{levels: []int{0}}
}

func (s *indentStack) top() int {
	return s.levels[len(s.levels)-1]
}

// resolve compares a new logical line's indentation width against the
// stack, returning the INDENT/DEDENT tokens needed to reach it (zero or
// more DEDENTs, or at most one INDENT — Python indentation only ever
// grows by a single new level at a time). ok is false if width doesn't
// match any enclosing level on a dedent, which the caller reports as
// ErrorDedent.
func (s *indentStack) resolve(width int, pos pyparso.Position) (toks []Token, ok bool) {
	top := s.top()
	switch {
	case width == top:
		return nil, true
	case width > top:
		s.levels = append(s.levels, width)
		return []Token{{Kind: INDENT, Start: pos}}, true
	default:
		for len(s.levels) > 1 && width < s.top() {
			s.levels = s.levels[:len(s.levels)-1]
			toks = append(toks, Token{Kind: DEDENT, Start: pos})
		}
		if s.top() != width {
			return toks, false
		}
		return toks, true
	}
}

// closeAll emits the DEDENTs needed to return to column 0, used at
// end-of-file.
func (s *indentStack) closeAll(pos pyparso.Position) []Token {
	var toks []Token
	for len(s.levels) > 1 {
		s.levels = s.levels[:len(s.levels)-1]
		toks = append(toks, Token{Kind: DEDENT, Start: pos})
	}
	return toks
}

// width measures indentation, expanding tabs to the next multiple of 8
// columns, matching CPython's tokenizer (tabsize=8, not editor-configurable).
func width(indentText string) int {
	col := 0
	for _, r := range indentText {
		switch r {
		case '\t':
			col = (col/8 + 1) * 8
		case ' ':
			col++
		case '\f':
			col = 0
		default:
			return col
		}
	}
	return col
}
