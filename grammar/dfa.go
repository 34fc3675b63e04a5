package grammar

import (
	"sort"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/gopytools/pyparso/internal/iterset"
)

// dfaState is one state of a rule's determinized automaton, identified by
// the set of NFA states it subsumes (subset construction).
type dfaState struct {
	id      int
	nfa     *iterset.Set // member type: *nfaState
	isFinal bool
}

type dfaEdge struct {
	from, to *dfaState
	lbl      label
}

// ruleDFA is the determinized, not-yet-minimized automaton for one rule.
type ruleDFA struct {
	states *treeset.Set // member type: *dfaState
	edges  *arraylist.List
	start  *dfaState
	nextID int
}

func stateComparator(a, b interface{}) int {
	return utils.IntComparator(a.(*dfaState).id, b.(*dfaState).id)
}

func newRuleDFA() *ruleDFA {
	return &ruleDFA{states: treeset.NewWith(stateComparator), edges: arraylist.New()}
}

func (d *ruleDFA) addState(nfa *iterset.Set) (*dfaState, bool) {
	if s := d.findStateByItems(nfa); s != nil {
		return s, false
	}
	s := &dfaState{id: d.nextID, nfa: nfa}
	d.nextID++
	d.states.Add(s)
	return s, true
}

func (d *ruleDFA) findStateByItems(nfa *iterset.Set) *dfaState {
	it := d.states.Iterator()
	for it.Next() {
		s := it.Value().(*dfaState)
		if s.nfa.Equals(nfa) {
			return s
		}
	}
	return nil
}

func (d *ruleDFA) addEdge(from, to *dfaState, lbl label) {
	d.edges.Add(&dfaEdge{from: from, to: to, lbl: lbl})
}

func (d *ruleDFA) edgesFrom(s *dfaState) []*dfaEdge {
	var out []*dfaEdge
	it := d.edges.Iterator()
	for it.Next() {
		e := it.Value().(*dfaEdge)
		if e.from == s {
			out = append(out, e)
		}
	}
	return out
}

// epsilonClosure follows epsilon arcs from every state in seed until
// fixed point.
func epsilonClosure(seed *iterset.Set) *iterset.Set {
	closure := seed.Copy()
	closure.IterateOnce()
	for closure.Next() {
		s := closure.Item().(*nfaState)
		for _, arc := range s.arcs {
			if arc.label == nil {
				closure.Add(arc.target)
			}
		}
	}
	// the initial IterateOnce snapshot may have missed states added
	// mid-walk; re-run until no growth, matching the teacher's
	// closureSet fixed-point pattern (lr/tables.go).
	for {
		before := closure.Size()
		closure.IterateOnce()
		for closure.Next() {
			s := closure.Item().(*nfaState)
			for _, arc := range s.arcs {
				if arc.label == nil {
					closure.Add(arc.target)
				}
			}
		}
		if closure.Size() == before {
			break
		}
	}
	return closure
}

// buildRawDFA performs subset construction over a rule's NFA, following
// the worklist idiom used by the teacher's CFSM builder (lr/tables.go's
// buildCFSM): a treeset of states (deduplicated by contained item set)
// and an arraylist of edges, with new states queued on a worklist until
// exhausted.
func buildRawDFA(rule *nfaRule) *ruleDFA {
	d := newRuleDFA()
	seed := iterset.New(1)
	seed.Add(rule.start)
	closure0 := epsilonClosure(seed)
	d.start, _ = d.addState(closure0)

	worklist := treeset.NewWith(stateComparator)
	worklist.Add(d.start)
	for worklist.Size() > 0 {
		values := worklist.Values()
		s := values[0].(*dfaState)
		worklist.Remove(s)

		targets := map[string]*iterset.Set{}
		labels := map[string]label{}
		s.nfa.IterateOnce()
		for s.nfa.Next() {
			n := s.nfa.Item().(*nfaState)
			for _, arc := range n.arcs {
				if arc.label == nil {
					continue
				}
				key := arc.label.String()
				if targets[key] == nil {
					targets[key] = iterset.New(1)
					labels[key] = *arc.label
				}
				targets[key].Add(arc.target)
			}
		}
		for key, moveSet := range targets {
			closure := epsilonClosure(moveSet)
			snew, isNew := d.addState(closure)
			d.addEdge(s, snew, labels[key])
			if isNew {
				worklist.Add(snew)
			}
		}
	}

	it := d.states.Iterator()
	for it.Next() {
		s := it.Value().(*dfaState)
		s.isFinal = s.nfa.Contains(rule.end)
	}
	return d
}

// minimize merges DFA states that are equivalent: same finality and,
// for every label, transitions to the same (already-merged) partner
// state. Equivalence is decided by repeated partition refinement rather
// than structural recursion over the whole automaton, since comparing
// two states by recursively comparing every reachable state would not
// terminate on the cyclic automata repetition (*, +) produces.
func minimize(d *ruleDFA) *ruleDFA {
	states := d.states.Values()
	n := len(states)
	if n <= 1 {
		return d
	}
	idOf := map[*dfaState]int{}
	for i, s := range states {
		idOf[s.(*dfaState)] = i
	}
	arcsOf := make([]map[string]int, n) // label -> state index
	for i, sv := range states {
		s := sv.(*dfaState)
		arcsOf[i] = map[string]int{}
		for _, e := range d.edgesFrom(s) {
			arcsOf[i][e.lbl.String()] = idOf[e.to]
		}
	}
	part := make([]int, n) // current partition id per state
	for i, sv := range states {
		if sv.(*dfaState).isFinal {
			part[i] = 1
		}
	}
	for {
		changed := false
		sig := make([]string, n)
		next := map[string]int{}
		nextID := 0
		for i := range states {
			arcs := make([]string, 0, len(arcsOf[i]))
			for lbl, target := range arcsOf[i] {
				arcs = append(arcs, lbl+"->"+itoa(part[target])+";")
			}
			sort.Strings(arcs) // map order is random; equal arc sets must give equal signatures
			s := ""
			for _, a := range arcs {
				s += a
			}
			sig[i] = itoa(part[i]) + "|" + s
			if _, ok := next[sig[i]]; !ok {
				next[sig[i]] = nextID
				nextID++
			}
		}
		newPart := make([]int, n)
		for i := range states {
			newPart[i] = next[sig[i]]
			if newPart[i] != part[i] {
				changed = true
			}
		}
		part = newPart
		if !changed {
			break
		}
	}

	merged := newRuleDFA()
	repByPart := map[int]*dfaState{}
	for i, sv := range states {
		s := sv.(*dfaState)
		p := part[i]
		if _, ok := repByPart[p]; !ok {
			rep := &dfaState{id: p, isFinal: s.isFinal}
			repByPart[p] = rep
			merged.states.Add(rep)
		}
	}
	for i, sv := range states {
		if sv.(*dfaState) == d.start {
			merged.start = repByPart[part[i]]
		}
	}
	seen := map[string]bool{}
	for i, sv := range states {
		s := sv.(*dfaState)
		from := repByPart[part[i]]
		for _, e := range d.edgesFrom(s) {
			to := repByPart[part[idOf[e.to]]]
			key := itoa(from.id) + "|" + e.lbl.String() + "|" + itoa(to.id)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged.addEdge(from, to, e.lbl)
		}
	}
	renumber(merged)
	return merged
}

// renumber reassigns contiguous, deterministic ids to a merged DFA's
// states (partition ids are not contiguous or meaningfully ordered).
func renumber(d *ruleDFA) {
	it := d.states.Iterator()
	id := 0
	relabel := map[*dfaState]int{}
	// First pass in current iteration order (treeset's comparator sorts
	// by the partition-derived id, which is deterministic for a given
	// input automaton).
	for it.Next() {
		s := it.Value().(*dfaState)
		relabel[s] = id
		id++
	}
	for s, newID := range relabel {
		s.id = newID
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
