/*
Package sparse implements a sparse integer matrix, adapted from a parser
table representation for use as the state×label portion of a compiled DFA's
transition table: most (state, label) pairs have no transition, so a dense
matrix would waste the overwhelming majority of its cells.

This implementation uses the COO algorithm (a.k.a. triplet-encoding).

   https://medium.com/@jmaxg3/101-ways-to-store-a-sparse-matrix-c7f2bf15a229
   https://www.coin-or.org/Ipopt/documentation/node38.html

Unlike an LR ACTION table, a compiled LL(1) grammar never has a
shift/reduce-style double entry for the same (state, label) pair — the
grammar builder rejects ambiguity before a Plan is ever recorded — so,
unlike the teacher package this was adapted from, each cell here holds a
single int32.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2026 The pyparso Authors.

*/
package sparse

// DefaultNullValue is the default empty-value for matrices.
const DefaultNullValue = -2147483648

// IntMatrix is a sparse matrix of int32, addressed by (row, col).
//
//	m := NewIntMatrix(10, 10, -1)  // last parameter is m's null-value
//	m.Set(2, 3, 4711)
//	v := m.Value(2, 3)             // 4711
//	v = m.Value(9, 9)              // -1, the null-value
//
// Values cannot be deleted, but may be overwritten with the null-value.
type IntMatrix struct {
	values  []triplet
	rowcnt  int
	colcnt  int
	nullval int32
}

type triplet struct {
	row, col int
	value    int32
}

// NewIntMatrix creates a matrix of size m x n with the given null-value.
func NewIntMatrix(m, n int, nullValue int32) *IntMatrix {
	return &IntMatrix{rowcnt: m, colcnt: n, nullval: nullValue}
}

// M returns the row count.
func (m *IntMatrix) M() int { return m.rowcnt }

// N returns the column count.
func (m *IntMatrix) N() int { return m.colcnt }

// NullValue returns this matrix' null value.
func (m *IntMatrix) NullValue() int32 { return m.nullval }

// ValueCount returns the number of non-null entries stored.
func (m *IntMatrix) ValueCount() int { return len(m.values) }

// Value returns the value at (i,j), or NullValue if unset.
func (m *IntMatrix) Value(i, j int) int32 {
	for _, t := range m.values {
		if !t.storedLeftOf(i, j) {
			if t.storedAt(i, j) {
				return t.value
			}
			break
		}
	}
	return m.nullval
}

// Set stores a value at (i,j), overwriting any prior value there.
func (m *IntMatrix) Set(i, j int, value int32) *IntMatrix {
	at := 0
	for k, t := range m.values {
		if !t.storedLeftOf(i, j) {
			if t.storedAt(i, j) {
				m.values[k].value = value
				return m
			}
			break
		}
		at++
	}
	tnew := triplet{row: i, col: j, value: value}
	m.values = append(m.values, tnew)
	copy(m.values[at+1:], m.values[at:])
	m.values[at] = tnew
	return m
}

func (t *triplet) storedLeftOf(i, j int) bool {
	return t.row < i || t.row == i && t.col < j
}

func (t *triplet) storedAt(i, j int) bool {
	return t.row == i && t.col == j
}
