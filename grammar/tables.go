package grammar

import (
	"github.com/cnf/structhash"
	"github.com/gopytools/pyparso/grammar/sparse"
	"github.com/gopytools/pyparso/tokenizer"
)

// numStates returns one past the highest state id in d, so a dense
// (state, label) matrix sized off it has a row for every id minimize()
// assigned (ids are assigned densely from 0, see dfa.go's relabel pass).
func numStates(d *ruleDFA) int {
	max := -1
	it := d.states.Iterator()
	for it.Next() {
		if id := it.Value().(*dfaState).id; id > max {
			max = id
		}
	}
	return max + 1
}

// isTerminalKindName reports whether name is a bare tokenizer terminal
// (NAME, NUMBER, STRING, NEWLINE, INDENT, DEDENT, ENDMARKER, ...) as
// opposed to a reference to another grammar rule.
func isTerminalKindName(name string) bool {
	_, ok := tokenizer.KindByGrammarName[name]
	return ok
}

// isWordLiteral reports whether a quoted grammar literal looks like a
// Python identifier (e.g. 'if', 'class', 'None') rather than an operator
// or delimiter (e.g. '+', ':'), distinguishing reserved keywords from
// reserved operators — both are "reserved", but the tokenizer always
// lexes the former as NAME tokens and the latter as OP tokens.
func isWordLiteral(text string) bool {
	if text == "" {
		return false
	}
	for i, r := range text {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Tables holds the fully compiled form of a grammar: one minimized,
// plan-resolved DFA per rule, plus the reserved-word/operator labels the
// parser needs to classify incoming NAME/OP tokens.
type Tables struct {
	Version       string
	Start         string
	RuleOrder     []string
	dfas          map[string]*ruleDFA
	plans         map[string]*planIndex
	ReservedWords map[string]bool // e.g. "if", "def", "None"
	ReservedOps   map[string]bool // e.g. "+", "->", ":="
	hash          string
}

// planIndex is the lookup a compiled rule's Plan() calls hit on every
// token the parser shifts: a sparse (state, interned-label) -> plan-slot
// matrix over sparse.IntMatrix, rather than the nested
// map[int]map[string]Plan the planner in plan.go naturally produces.
// Built once per rule at Compile time from that nested-map form.
type planIndex struct {
	labelID map[string]int32
	matrix  *sparse.IntMatrix
	plans   []Plan
}

const noPlan = -1

func newPlanIndex(numStates int, byState map[int]map[string]Plan) *planIndex {
	labelID := map[string]int32{}
	for _, byLabel := range byState {
		for lbl := range byLabel {
			if _, ok := labelID[lbl]; !ok {
				labelID[lbl] = int32(len(labelID))
			}
		}
	}
	pi := &planIndex{
		labelID: labelID,
		matrix:  sparse.NewIntMatrix(numStates, len(labelID), noPlan),
	}
	for state, byLabel := range byState {
		for lbl, plan := range byLabel {
			slot := int32(len(pi.plans))
			pi.plans = append(pi.plans, plan)
			pi.matrix.Set(state, int(labelID[lbl]), slot)
		}
	}
	return pi
}

func (pi *planIndex) lookup(state int, tokenLabel string) (Plan, bool) {
	col, ok := pi.labelID[tokenLabel]
	if !ok {
		return Plan{}, false
	}
	slot := pi.matrix.Value(state, int(col))
	if slot == noPlan {
		return Plan{}, false
	}
	return pi.plans[slot], true
}

// StartStateID returns the initial DFA state id for rule.
func (t *Tables) StartStateID(rule string) (int, bool) {
	d, ok := t.dfas[rule]
	if !ok {
		return 0, false
	}
	return d.start.id, true
}

// IsFinal reports whether the given state of rule is an accepting state.
func (t *Tables) IsFinal(rule string, state int) bool {
	d, ok := t.dfas[rule]
	if !ok {
		return false
	}
	it := d.states.Iterator()
	for it.Next() {
		s := it.Value().(*dfaState)
		if s.id == state {
			return s.isFinal
		}
	}
	return false
}

// Plan looks up the transition plan for `rule` at `state` on the given
// token label (as produced by TokenLabel). ok is false if no transition
// exists (a syntax error at this point).
func (t *Tables) Plan(rule string, state int, tokenLabel string) (Plan, bool) {
	pi, ok := t.plans[rule]
	if !ok {
		return Plan{}, false
	}
	return pi.lookup(state, tokenLabel)
}

// TokenLabel computes the label a concrete token resolves to for Plan
// lookup: a NAME token whose value is a reserved keyword (or an OP token
// whose value is a reserved operator) resolves to its exact text (since
// the grammar may have a literal arc for it); any other token resolves
// to its bare tokenizer kind name. This mirrors parso's reserved-word
// table in parser.py's _token_to_transition.
func (t *Tables) TokenLabel(tok tokenizer.Token) string {
	if tok.Kind == tokenizer.NAME && t.ReservedWords[tok.Value] {
		return tok.Value
	}
	if tok.Kind == tokenizer.OP && t.ReservedOps[tok.Value] {
		return tok.Value
	}
	return tok.Kind.String()
}

// Hash returns a content hash of the compiled grammar, used by package
// cache to key cached parse trees to the exact grammar that produced
// them.
func (t *Tables) Hash() string {
	return t.hash
}

// Compile parses grammar meta-language text into a fully resolved Tables:
// NFA construction (nfa.go), per-rule subset construction and
// minimization (dfa.go), and first-terminal Plan splicing (plan.go).
func Compile(version, src string) (*Tables, error) {
	rules, order, err := compileNFA(src)
	if err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return nil, errNoRules
	}

	dfas := map[string]*ruleDFA{}
	reservedWords := map[string]bool{}
	reservedOps := map[string]bool{}
	for name, rule := range rules {
		raw := buildRawDFA(rule)
		dfas[name] = minimize(raw)
		collectLiterals(rule, reservedWords, reservedOps)
	}

	rawPlans, err := computeAllPlans(dfas)
	if err != nil {
		return nil, err
	}
	plans := map[string]*planIndex{}
	for name, byState := range rawPlans {
		plans[name] = newPlanIndex(numStates(dfas[name]), byState)
	}

	hash, err := structhash.Hash(struct {
		Version string
		Source  string
	}{Version: version, Source: src}, 1)
	if err != nil {
		return nil, err
	}

	tracer().Infof("compiled grammar %s: %d rules, hash %s", version, len(order), hash)
	return &Tables{
		Version:       version,
		Start:         order[0],
		RuleOrder:     order,
		dfas:          dfas,
		plans:         plans,
		ReservedWords: reservedWords,
		ReservedOps:   reservedOps,
		hash:          hash,
	}, nil
}

// collectLiterals walks a rule's NFA arcs and records every literal label
// into the reserved-words or reserved-operators table.
func collectLiterals(rule *nfaRule, words, ops map[string]bool) {
	seen := map[*nfaState]bool{}
	var walk func(*nfaState)
	walk = func(s *nfaState) {
		if seen[s] {
			return
		}
		seen[s] = true
		for _, arc := range s.arcs {
			if arc.label != nil && arc.label.literal {
				if isWordLiteral(arc.label.text) {
					words[arc.label.text] = true
				} else {
					ops[arc.label.text] = true
				}
			}
			walk(arc.target)
		}
	}
	walk(rule.start)
}

type compileError string

func (e compileError) Error() string { return string(e) }

const errNoRules = compileError("grammar text defines no rules")
