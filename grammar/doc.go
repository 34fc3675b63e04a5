/*
Package grammar compiles an EBNF-like grammar text into a set of
per-nonterminal DFAs with precomputed transition plans (the "pgen" stage):
the meta-grammar is parsed into Thompson-style NFAs (nfa.go), each rule's
NFA is determinized and minimized into a DFA (dfa.go), and every DFA
state's outgoing transitions are resolved into token-indexed Plans that
splice through nonterminal-only epsilon chains so the runtime parser never
has to recurse through empty productions (plan.go). Tables assembles the
per-rule DFAs, the reserved keyword/operator labels, and a content hash of
the whole grammar (tables.go).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2026 The pyparso Authors.

*/
package grammar

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'pyparso.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("pyparso.grammar")
}
