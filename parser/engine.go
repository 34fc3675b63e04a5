package parser

import (
	"github.com/gopytools/pyparso/cst"
	"github.com/gopytools/pyparso/grammar"
	"github.com/gopytools/pyparso/tokenizer"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("pyparso.parser")
}

// TokenSource is anything Parse can pull tokens from. *tokenizer.Tokenizer
// satisfies this directly.
type TokenSource interface {
	Next() (tokenizer.Token, error)
}

// frame is one level of the parse stack: the rule currently being
// recognized, the DFA state reached so far within it, and the children
// collected for it so far.
type frame struct {
	rule     string
	state    int
	children []cst.Element
}

// Engine drives one parse. An Engine is single-use: build a fresh one (via
// Parse) per input.
type Engine struct {
	tables            *grammar.Tables
	opts              options
	stack             []*frame
	pendingIndentDrop int // INDENTs discarded by recovery, awaiting a matching DEDENT to drop
}

// Parse consumes every token from tokens against tables's grammar and
// returns the resulting concrete syntax tree. The root element is built for
// opts.start's rule (the grammar's declared start symbol by default,
// typically "file_input"); like any rule without a registered constructor,
// a start rule that collected exactly one child collapses to that child, so
// empty input yields the bare ENDMARKER leaf.
func Parse(tables *grammar.Tables, tokens TokenSource, opts ...Option) (cst.Element, error) {
	o := options{recovery: true, start: tables.Start}
	for _, opt := range opts {
		opt(&o)
	}
	if o.recovery && o.start != tables.Start {
		return nil, ErrRecoveryNotImplementedForStartSymbol
	}
	startState, ok := tables.StartStateID(o.start)
	if !ok {
		return nil, &InternalError{Msg: "unknown start symbol " + o.start}
	}

	e := &Engine{
		tables: tables,
		opts:   o,
		stack:  []*frame{{rule: o.start, state: startState}},
	}

	for {
		tok, err := tokens.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == tokenizer.DEDENT && e.pendingIndentDrop > 0 {
			e.pendingIndentDrop--
			tracer().Debugf("dropping DEDENT to rebalance a discarded INDENT")
			continue
		}
		root, done, err := e.addToken(tok)
		if err != nil {
			return nil, err
		}
		if done {
			return root, nil
		}
	}
}

// addToken runs the shift/reduce loop of spec.md §4.4 for a single token.
func (e *Engine) addToken(tok tokenizer.Token) (cst.Element, bool, error) {
	label := e.tables.TokenLabel(tok)
	for {
		top := e.stack[len(e.stack)-1]
		if plan, ok := e.tables.Plan(top.rule, top.state, label); ok {
			e.shift(plan, tok)
			break
		}
		if e.tables.IsFinal(top.rule, top.state) && len(e.stack) > 1 {
			e.reduce()
			continue
		}
		// No transition, and this frame can't be silently reduced away:
		// either it's final at the root (an unexpected trailing token), or
		// it's plain unfinished. Both are a user syntax error.
		if !e.opts.recovery {
			return nil, false, &SyntaxError{Leaf: cst.NewLeaf(tok)}
		}
		if e.recover(tok) {
			// Nothing had been collected yet: the token itself became a
			// lone error_leaf and is fully consumed.
			return nil, false, nil
		}
		// Prior partial parse was bundled into an error_node; the
		// triggering token itself was not consumed by it, so retry it
		// against the (now shallower) stack.
	}

	if tok.Kind == tokenizer.ENDMARKER {
		return e.finish()
	}
	return nil, false, nil
}

// shift applies a resolved Plan: it advances the current top frame's
// state, pushes one frame per nonterminal the plan splices through
// (outermost first, matching plan.Pushes's order), and appends the token
// as a leaf of whichever frame ends up on top.
func (e *Engine) shift(plan grammar.Plan, tok tokenizer.Token) {
	top := e.stack[len(e.stack)-1]
	top.state = plan.NextState
	for _, push := range plan.Pushes {
		e.stack = append(e.stack, &frame{rule: push.Rule, state: push.State})
	}
	inner := e.stack[len(e.stack)-1]
	inner.children = append(inner.children, cst.NewLeaf(tok))
}

// reduce pops the top frame, building its tree element (a single-child
// collapse unless the rule has a specialized cst constructor, per
// spec.md's "except for syntactically meaningful types"), and appends it
// to the new top frame's children.
func (e *Engine) reduce() cst.Element {
	n := len(e.stack)
	top := e.stack[n-1]
	e.stack = e.stack[:n-1]
	elem := buildElement(top.rule, top.children)
	if len(e.stack) > 0 {
		parent := e.stack[len(e.stack)-1]
		parent.children = append(parent.children, elem)
	}
	return elem
}

// buildElement wraps a reduced rule's children into a tree element,
// dispatching to cst.NodeConstructors when the rule has a specialized
// variant and collapsing single-child generic rules to avoid redundant
// unary nodes.
func buildElement(rule string, children []cst.Element) cst.Element {
	if ctor, ok := cst.NodeConstructors[rule]; ok {
		return ctor(rule, children)
	}
	if len(children) == 1 {
		return children[0]
	}
	return cst.NewNode(rule, children)
}

// finish is called once the ENDMARKER has been shifted: it reduces the
// stack to the root frame (every remaining frame must be in a final
// state) and returns the resulting tree.
func (e *Engine) finish() (cst.Element, bool, error) {
	for len(e.stack) > 1 {
		top := e.stack[len(e.stack)-1]
		if !e.tables.IsFinal(top.rule, top.state) {
			return nil, false, &InternalError{Msg: "incomplete input: stack not reducible at end-of-file"}
		}
		e.reduce()
	}
	top := e.stack[0]
	if !e.tables.IsFinal(top.rule, top.state) {
		return nil, false, &InternalError{Msg: "incomplete input: start rule never reached an accepting state"}
	}
	return buildElement(top.rule, top.children), true, nil
}

// recover implements spec.md §7's panic-mode recovery: walk the stack down
// to the nearest enclosing "suite" or the start rule and discard every
// frame above it. If those frames had collected anything, it is bundled
// into a single error_node and the triggering token is NOT consumed — the
// caller retries it against the now-shallower stack. Otherwise the
// triggering token itself becomes a lone error_leaf, and recover reports
// that it was consumed.
func (e *Engine) recover(tok tokenizer.Token) (consumed bool) {
	idx := len(e.stack) - 1
	for idx > 0 && e.stack[idx].rule != "suite" && e.stack[idx].rule != e.tables.Start {
		idx--
	}
	enclosing := e.stack[idx]

	var collected []cst.Element
	for i := idx + 1; i < len(e.stack); i++ {
		collected = append(collected, e.stack[i].children...)
	}
	e.stack = e.stack[:idx+1]

	for _, c := range collected {
		if leaf, ok := c.(*cst.Leaf); ok && leaf.Kind == tokenizer.INDENT {
			e.pendingIndentDrop++
		}
	}

	if len(collected) > 0 {
		tracer().Errorf("recovering: bundling %d discarded element(s) into an error_node before %s", len(collected), tok)
		enclosing.children = append(enclosing.children, cst.NewNode("error_node", collected))
		return false
	}
	leaf := cst.NewLeaf(tok)
	tracer().Errorf("recovering: unexpected %s becomes a lone error_leaf", leaf)
	enclosing.children = append(enclosing.children, cst.NewNode("error_leaf", []cst.Element{leaf}))
	return true
}
