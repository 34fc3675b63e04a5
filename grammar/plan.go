package grammar

import "fmt"

// Push describes one frame to open when a transition is taken that
// passes through one or more nonterminal-only epsilon chains before
// reaching a terminal: Rule is the nested rule to push, and State is the
// DFA state within THAT rule's own automaton to resume at (i.e. the state
// already reached after consuming the terminal that triggered this whole
// transition). Splicing these chains at grammar-compile time is what lets
// the runtime parser avoid a recursive call per nested nonterminal: it
// just pushes every frame in Pushes and continues.
type Push struct {
	Rule  string
	State int
}

// Plan is the fully resolved action for one (dfaState, terminal) pair:
// which state the CURRENT frame resumes at once done, and which nested
// frames must be opened first (outermost first) before the terminal is
// actually consumed.
type Plan struct {
	NextState int
	Pushes    []Push
}

// planKey names a (rule, state) pair being memoized during first-terminal
// computation.
type planKey struct {
	rule  string
	state int
}

type planner struct {
	dfas       map[string]*ruleDFA
	cache      map[planKey]map[string]Plan
	inProgress map[planKey]bool
}

// computeAllPlans resolves, for every rule's every DFA state, the map of
// concrete terminal label -> Plan, following parso's
// _calculate_first_terminals splice algorithm: a transition labeled by a
// nonterminal N is replaced by N's own first-terminal plans, each wrapped
// with an extra Push frame recording where to resume within N.
func computeAllPlans(dfas map[string]*ruleDFA) (map[string]map[int]map[string]Plan, error) {
	p := &planner{dfas: dfas, cache: map[planKey]map[string]Plan{}, inProgress: map[planKey]bool{}}
	out := map[string]map[int]map[string]Plan{}
	for rule, d := range dfas {
		out[rule] = map[int]map[string]Plan{}
		it := d.states.Iterator()
		for it.Next() {
			s := it.Value().(*dfaState)
			plans, err := p.firstPlans(rule, s.id)
			if err != nil {
				return nil, err
			}
			out[rule][s.id] = plans
		}
	}
	return out, nil
}

func (p *planner) stateByID(rule string, id int) *dfaState {
	d := p.dfas[rule]
	it := d.states.Iterator()
	for it.Next() {
		s := it.Value().(*dfaState)
		if s.id == id {
			return s
		}
	}
	return nil
}

// firstPlans computes the terminal -> Plan map for a single DFA state,
// memoizing results and detecting left recursion via the in-progress
// sentinel (re-entering a (rule,state) pair still being computed means
// the grammar recurses into itself without consuming a token first).
func (p *planner) firstPlans(rule string, stateID int) (map[string]Plan, error) {
	key := planKey{rule, stateID}
	if cached, ok := p.cache[key]; ok {
		return cached, nil
	}
	if p.inProgress[key] {
		return nil, fmt.Errorf("left recursion detected in rule %q", rule)
	}
	p.inProgress[key] = true
	defer delete(p.inProgress, key)

	d := p.dfas[rule]
	s := p.stateByID(rule, stateID)
	result := map[string]Plan{}
	for _, e := range d.edgesFrom(s) {
		if known, ok := resolveTerminal(e.lbl); ok {
			if _, clash := result[known]; clash {
				return nil, fmt.Errorf("ambiguous grammar: rule %q has two transitions on %q", rule, known)
			}
			result[known] = Plan{NextState: e.to.id}
			continue
		}
		// e.lbl names another rule: splice its first-terminal plans in,
		// recording a Push frame that resumes in this rule's DFA at e.to.
		nested := e.lbl.text
		if _, ok := p.dfas[nested]; !ok {
			return nil, fmt.Errorf("grammar error: rule %q references undefined symbol %q", rule, nested)
		}
		deeper, err := p.firstPlans(nested, p.startStateID(nested))
		if err != nil {
			return nil, err
		}
		for terminal, deeperPlan := range deeper {
			if _, clash := result[terminal]; clash {
				return nil, fmt.Errorf("ambiguous grammar: rule %q has two transitions on %q (one via %q)", rule, terminal, nested)
			}
			pushes := append([]Push{{Rule: nested, State: deeperPlan.NextState}}, deeperPlan.Pushes...)
			result[terminal] = Plan{NextState: e.to.id, Pushes: pushes}
		}
	}
	p.cache[key] = result
	return result, nil
}

func (p *planner) startStateID(rule string) int {
	return p.dfas[rule].start.id
}

// resolveTerminal reports whether lbl names a concrete, consumable
// terminal (a literal keyword/operator, or a bare tokenizer kind such as
// NAME/NUMBER) as opposed to a reference to another grammar rule, and if
// so the canonical string a parsed token resolves to for table lookup:
// literals resolve to their exact text (e.g. "if", "+"), bare terminal
// kinds resolve to their kind name (e.g. "NAME").
func resolveTerminal(lbl label) (string, bool) {
	if lbl.literal {
		return lbl.text, true
	}
	if isTerminalKindName(lbl.text) {
		return lbl.text, true
	}
	return "", false
}
