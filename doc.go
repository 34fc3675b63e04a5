/*
Package pyparso is a round-trip, error-recovering parser for Python source
code. It compiles an EBNF-like grammar into a set of per-rule DFAs (package
grammar), tokenizes Python source while preserving every byte of whitespace,
comments and continuations (package tokenizer), drives a table-driven
pushdown parser with pluggable error recovery to build a concrete syntax
tree (packages parser and cst), and can reparse a lightly edited source
against an old tree in time bounded by the size of the edit (package
diffparser), optionally memoizing the result (package cache). Package
structure is as follows:

■ grammar: compiles grammar text into per-rule DFA tables (the "pgen" stage).

■ tokenizer: turns Python source into a stream of positioned tokens.

■ parser: the table-driven engine that consumes tokens and grammar tables
to build a tree.

■ cst: the concrete syntax tree node/leaf types.

■ diffparser: incremental reparse of an edited source against an old tree.

■ cache: in-memory and on-disk memoization of parsed trees.

■ normalizer: a generic tree-walking visitor for building diagnostics.

The base package contains the position/span types used throughout all of
the above.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2026 The pyparso Authors.

*/
package pyparso
