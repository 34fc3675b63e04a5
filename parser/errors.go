/*
Package parser implements the table-driven pushdown engine that consumes a
token stream and a compiled grammar (package grammar) to build a concrete
syntax tree (package cst): shift/reduce against a DFA-per-rule stack,
single-child reduction collapse, and pluggable panic-mode error recovery.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2026 The pyparso Authors.

*/
package parser

import (
	"errors"
	"fmt"

	"github.com/gopytools/pyparso/cst"
)

// SyntaxError is raised when error recovery is disabled and a token has no
// transition at the current parser state.
type SyntaxError struct {
	Leaf *cst.Leaf
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("pyparso: syntax error at %s: unexpected %s", e.Leaf.StartPos(), e.Leaf)
}

// InternalError indicates a parser bug rather than a malformed input:
// end-of-input reached with an unreducible stack or a start rule that never
// accepted, or a start symbol the grammar tables do not define.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return "pyparso: internal parse error: " + e.Msg
}

// ErrRecoveryNotImplementedForStartSymbol is returned by Parse when both
// WithErrorRecovery(true) (the default) and a non-default WithStartSymbol
// are requested together; recovery's "walk down to file_input" logic
// assumes the default start symbol.
var ErrRecoveryNotImplementedForStartSymbol = errors.New("pyparso: error_recovery is not implemented together with a non-default start symbol")
