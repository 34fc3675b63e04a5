/*
Package iterset implements a small iteratable container type, used by the
grammar package for NFA epsilon-closures and DFA worklist construction.
These algorithms read naturally as set operations (union, difference,
closure-under-iteration), so it is more straightforward to give them a
dedicated set type than to hand-roll map[interface{}]struct{} everywhere.

Unusually, iteration is stateful and destructive with respect to position:
IterateOnce/Next/Item model a single walk over a snapshot of the set's
current members, so that closure algorithms can keep adding members to the
very set they are iterating without invalidating the walk.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2026 The pyparso Authors.

*/
package iterset

// Set is a small general-purpose set of comparable values, with an
// in-progress iteration cursor suitable for closure-style fixed-point
// algorithms (add members while iterating; the walk only advances over
// members present at the time IterateOnce was called, but newly added
// members remain visible to a subsequent IterateOnce).
type Set struct {
	members map[interface{}]struct{}
	order   []interface{} // preserves insertion order for deterministic iteration
	cursor  []interface{} // snapshot walked by IterateOnce/Next
	pos     int
}

// New creates an empty set, optionally pre-sized.
func New(sizeHint int) *Set {
	return &Set{members: make(map[interface{}]struct{}, sizeHint)}
}

// Add inserts a value into the set. Returns the set for chaining.
func (s *Set) Add(v interface{}) *Set {
	if _, ok := s.members[v]; !ok {
		s.members[v] = struct{}{}
		s.order = append(s.order, v)
	}
	return s
}

// Contains reports whether v is a member of s.
func (s *Set) Contains(v interface{}) bool {
	_, ok := s.members[v]
	return ok
}

// Size returns the number of members.
func (s *Set) Size() int {
	return len(s.members)
}

// Empty reports whether the set has no members.
func (s *Set) Empty() bool {
	return len(s.members) == 0
}

// Values returns all members, in insertion order.
func (s *Set) Values() []interface{} {
	out := make([]interface{}, len(s.order))
	copy(out, s.order)
	return out
}

// Copy creates a shallow duplicate of s.
func (s *Set) Copy() *Set {
	c := New(len(s.order))
	for _, v := range s.order {
		c.Add(v)
	}
	return c
}

// Union destructively merges other into s.
func (s *Set) Union(other *Set) *Set {
	for _, v := range other.order {
		s.Add(v)
	}
	return s
}

// Difference returns the members of s not present in other, as a new set.
// s itself is not modified.
func (s *Set) Difference(other *Set) *Set {
	d := New(len(s.order))
	for _, v := range s.order {
		if !other.Contains(v) {
			d.Add(v)
		}
	}
	return d
}

// Equals reports whether s and other contain exactly the same members.
func (s *Set) Equals(other *Set) bool {
	if other == nil || len(s.members) != len(other.members) {
		return false
	}
	for v := range s.members {
		if !other.Contains(v) {
			return false
		}
	}
	return true
}

// IterateOnce resets the iteration cursor to a snapshot of the current
// members. Call Next to advance and Item to read the current value.
func (s *Set) IterateOnce() {
	s.cursor = s.Values()
	s.pos = -1
}

// Next advances the cursor, returning false once the snapshot taken by the
// last IterateOnce call is exhausted. Members added to s after IterateOnce
// was called are visible on the NEXT IterateOnce, not the current walk,
// unless the caller re-snapshots (see grammar/dfa.go's closure loop, which
// calls IterateOnce again each time new members were merged in).
func (s *Set) Next() bool {
	s.pos++
	return s.pos < len(s.cursor)
}

// Item returns the member at the current cursor position.
func (s *Set) Item() interface{} {
	return s.cursor[s.pos]
}

// FirstMatch returns the first member for which pred returns true, or nil.
func (s *Set) FirstMatch(pred func(interface{}) bool) interface{} {
	for _, v := range s.order {
		if pred(v) {
			return v
		}
	}
	return nil
}

// AppendTo appends all members of s to out and returns the result.
func (s *Set) AppendTo(out []interface{}) []interface{} {
	return append(out, s.order...)
}
