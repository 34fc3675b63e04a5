package grammar

import "fmt"

// label identifies an NFA/DFA arc: either a bare name (a terminal kind
// such as NAME/NUMBER, or a reference to another rule) or a quoted
// literal (a reserved keyword or operator, e.g. 'if', '+', ':').
type label struct {
	text    string
	literal bool
}

func (l label) String() string {
	if l.literal {
		return "'" + l.text + "'"
	}
	return l.text
}

// nfaState is one state of a rule's Thompson-construction NFA. Arcs with
// a nil label are epsilon transitions.
type nfaState struct {
	id   int
	arcs []nfaArc
}

type nfaArc struct {
	label  *label // nil => epsilon
	target *nfaState
}

func (s *nfaState) addArc(l *label, to *nfaState) {
	s.arcs = append(s.arcs, nfaArc{label: l, target: to})
}

// nfaRule is one compiled grammar rule: a fragment with a single start
// state and a single accepting end state.
type nfaRule struct {
	name  string
	start *nfaState
	end   *nfaState
}

// nfaBuilder parses grammar meta-language text into one nfaRule per
// production, following the recursive-descent shape of CPython's own
// pgen meta-grammar:
//
//	MSTART: (NEWLINE | RULE)* ENDMARKER
//	RULE:   NAME ':' RHS NEWLINE
//	RHS:    ALT ('|' ALT)*
//	ALT:    ITEM+
//	ITEM:   '[' RHS ']' | ATOM ['+' | '*']
//	ATOM:   '(' RHS ')' | NAME | STRING
type nfaBuilder struct {
	lex     *metaLexer
	tok     metaToken
	nextID  int
	rules   map[string]*nfaRule
	order   []string // rule names in declaration order
}

// compileNFA parses src and returns every rule's NFA fragment, keyed by
// rule name, plus the declaration order (the first rule is the grammar's
// start symbol).
func compileNFA(src string) (rules map[string]*nfaRule, order []string, err error) {
	b := &nfaBuilder{lex: newMetaLexer(src), rules: map[string]*nfaRule{}}
	if err := b.advance(); err != nil {
		return nil, nil, err
	}
	for b.tok.kind != metaEOF {
		if b.tok.kind == metaNewline {
			if err := b.advance(); err != nil {
				return nil, nil, err
			}
			continue
		}
		if err := b.parseRule(); err != nil {
			return nil, nil, err
		}
	}
	return b.rules, b.order, nil
}

func (b *nfaBuilder) advance() error {
	t, err := b.lex.next()
	if err != nil {
		return err
	}
	b.tok = t
	return nil
}

func (b *nfaBuilder) expect(k metaKind) (metaToken, error) {
	if b.tok.kind != k {
		return metaToken{}, fmt.Errorf("grammar syntax error at line %d: expected %s, got %s", b.tok.line, k, b.tok)
	}
	t := b.tok
	return t, b.advance()
}

func (b *nfaBuilder) newState() *nfaState {
	s := &nfaState{id: b.nextID}
	b.nextID++
	return s
}

func (b *nfaBuilder) parseRule() error {
	name, err := b.expect(metaName)
	if err != nil {
		return err
	}
	if _, err := b.expect(metaColon); err != nil {
		return err
	}
	start, end, err := b.parseRHS()
	if err != nil {
		return err
	}
	if b.tok.kind != metaNewline && b.tok.kind != metaEOF {
		return fmt.Errorf("grammar syntax error at line %d: expected NEWLINE after rule %q, got %s", b.tok.line, name.text, b.tok)
	}
	if b.tok.kind == metaNewline {
		if err := b.advance(); err != nil {
			return err
		}
	}
	if _, exists := b.rules[name.text]; exists {
		return fmt.Errorf("grammar error: rule %q declared more than once", name.text)
	}
	b.rules[name.text] = &nfaRule{name: name.text, start: start, end: end}
	b.order = append(b.order, name.text)
	return nil
}

// parseRHS parses ALT ('|' ALT)*, returning a shared start/end pair
// fanning out over epsilon arcs to each alternative.
func (b *nfaBuilder) parseRHS() (*nfaState, *nfaState, error) {
	start, end := b.newState(), b.newState()
	altStart, altEnd, err := b.parseAlt()
	if err != nil {
		return nil, nil, err
	}
	start.addArc(nil, altStart)
	altEnd.addArc(nil, end)
	for b.tok.kind == metaVBar {
		if err := b.advance(); err != nil {
			return nil, nil, err
		}
		altStart, altEnd, err := b.parseAlt()
		if err != nil {
			return nil, nil, err
		}
		start.addArc(nil, altStart)
		altEnd.addArc(nil, end)
	}
	return start, end, nil
}

// parseAlt parses ITEM+, chaining each item's end to the next item's
// start.
func (b *nfaBuilder) parseAlt() (*nfaState, *nfaState, error) {
	start, end, err := b.parseItem()
	if err != nil {
		return nil, nil, err
	}
	for b.startsItem() {
		itemStart, itemEnd, err := b.parseItem()
		if err != nil {
			return nil, nil, err
		}
		end.addArc(nil, itemStart)
		end = itemEnd
	}
	return start, end, nil
}

func (b *nfaBuilder) startsItem() bool {
	switch b.tok.kind {
	case metaName, metaString, metaLPar, metaLSqb:
		return true
	default:
		return false
	}
}

// parseItem parses '[' RHS ']' (optional) or ATOM possibly followed by
// '*' or '+' (repetition).
func (b *nfaBuilder) parseItem() (*nfaState, *nfaState, error) {
	if b.tok.kind == metaLSqb {
		if err := b.advance(); err != nil {
			return nil, nil, err
		}
		inStart, inEnd, err := b.parseRHS()
		if err != nil {
			return nil, nil, err
		}
		if _, err := b.expect(metaRSqb); err != nil {
			return nil, nil, err
		}
		start, end := b.newState(), b.newState()
		start.addArc(nil, inStart)
		inEnd.addArc(nil, end)
		start.addArc(nil, end) // optional: may skip entirely
		return start, end, nil
	}

	atomStart, atomEnd, err := b.parseAtom()
	if err != nil {
		return nil, nil, err
	}
	switch b.tok.kind {
	case metaStar:
		if err := b.advance(); err != nil {
			return nil, nil, err
		}
		start, end := b.newState(), b.newState()
		start.addArc(nil, atomStart)
		atomEnd.addArc(nil, atomStart) // loop back for another repetition
		start.addArc(nil, end)         // zero repetitions
		atomEnd.addArc(nil, end)
		return start, end, nil
	case metaPlus:
		if err := b.advance(); err != nil {
			return nil, nil, err
		}
		end := b.newState()
		atomEnd.addArc(nil, atomStart) // loop back for another repetition
		atomEnd.addArc(nil, end)
		return atomStart, end, nil
	default:
		return atomStart, atomEnd, nil
	}
}

// parseAtom parses '(' RHS ')', a bare NAME (terminal kind or rule
// reference), or a quoted STRING literal.
func (b *nfaBuilder) parseAtom() (*nfaState, *nfaState, error) {
	switch b.tok.kind {
	case metaLPar:
		if err := b.advance(); err != nil {
			return nil, nil, err
		}
		start, end, err := b.parseRHS()
		if err != nil {
			return nil, nil, err
		}
		if _, err := b.expect(metaRPar); err != nil {
			return nil, nil, err
		}
		return start, end, nil
	case metaName:
		name := b.tok.text
		if err := b.advance(); err != nil {
			return nil, nil, err
		}
		start, end := b.newState(), b.newState()
		start.addArc(&label{text: name}, end)
		return start, end, nil
	case metaString:
		text := b.tok.text
		if err := b.advance(); err != nil {
			return nil, nil, err
		}
		start, end := b.newState(), b.newState()
		start.addArc(&label{text: text, literal: true}, end)
		return start, end, nil
	default:
		return nil, nil, fmt.Errorf("grammar syntax error at line %d: expected an atom, got %s", b.tok.line, b.tok)
	}
}
