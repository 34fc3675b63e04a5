/*
Package diffparser implements an incremental parse: given a CST already
parsed from old source lines and a new version of those lines, it reuses
whichever top-level statements are untouched and only retokenizes and
reparses the lines that actually changed, falling back to a full parse
whenever the reused pieces don't round-trip back to the new source.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2026 The pyparso Authors.

*/
package diffparser

import (
	"strings"

	"github.com/gopytools/pyparso/cst"
	"github.com/gopytools/pyparso/grammar"
	"github.com/gopytools/pyparso/parser"
	"github.com/gopytools/pyparso/tokenizer"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("pyparso.diffparser")
}

// Update produces a CST for newLines, starting from old (a tree
// previously parsed from oldLines under the same grammar tables) and
// reusing as much of it as it safely can. Reused subtrees are the exact
// same objects as in old — callers must treat old as immutable
// afterwards, and must not hand the same old tree to two concurrent
// Update calls.
//
// tables must be the same grammar old was parsed with; Update has no way
// to recover that from the tree alone.
func Update(tables *grammar.Tables, old *cst.Node, oldLines, newLines []string) (*cst.Node, error) {
	segments := old.Children
	align := alignment(oldLines, newLines)

	spliced, err := splice(tables, segments, oldLines, newLines, align)
	if err != nil {
		return nil, err
	}

	result := cst.NewNode(old.Type, spliced)
	want := strings.Join(newLines, "")
	if got := result.Code(); got != want {
		tracer().Infof("diff parse round-trip mismatch, falling back to a full parse")
		return fullParse(tables, newLines)
	}
	return result, nil
}

// lineRange returns the half-open [start,end) 0-indexed old line range
// this segment spans.
func lineRange(e cst.Element) (start, end int) {
	s, f := e.StartPos(), e.EndPos()
	start = s.Line - 1
	end = f.Line - 1
	if f.Column > 0 || end == start {
		end++
	}
	return start, end
}

// copyableOffset reports whether every old line in [start,end) has a
// counterpart in newLines at a single constant offset, i.e. the segment
// can be reused verbatim (shifted by offset lines) rather than reparsed.
func copyableOffset(align []int, start, end int) (offset int, ok bool) {
	if start >= end || end > len(align) {
		return 0, false
	}
	first := align[start]
	if first < 0 {
		return 0, false
	}
	offset = first - start
	for i := start + 1; i < end; i++ {
		if align[i] != i+offset {
			return 0, false
		}
	}
	return offset, true
}

// splice walks segments (old.Children, in source order) and rebuilds the
// equivalent list for newLines: runs of segments that survive unchanged
// are reused by pointer (their leaves renumbered in place by shift if their
// line number moved),
// and every gap between them is retokenized and reparsed fresh.
func splice(tables *grammar.Tables, segments []cst.Element, oldLines, newLines []string, align []int) ([]cst.Element, error) {
	var out []cst.Element
	newCursor := 0 // 0-indexed new line: everything before this has been emitted
	pending := 0   // index into segments of the first not-yet-handled segment

	flushGap := func(uptoNewLine int) error {
		if uptoNewLine <= newCursor {
			return nil
		}
		fragment, err := fullParse(tables, newLines[newCursor:uptoNewLine])
		if err != nil {
			return err
		}
		for _, c := range fragment.Children {
			if leaf, ok := c.(*cst.Leaf); ok && leaf.Kind == tokenizer.ENDMARKER {
				continue
			}
			out = append(out, shift(c, newCursor))
		}
		newCursor = uptoNewLine
		return nil
	}

	for pending < len(segments) {
		seg := segments[pending]
		if leaf, ok := seg.(*cst.Leaf); ok && leaf.Kind == tokenizer.ENDMARKER {
			// The end marker is handled by the final flushGap below, so
			// that a length-changing edit always gets a freshly tokenized
			// ENDMARKER rather than a stale reused one.
			pending++
			continue
		}

		start, end := lineRange(seg)
		offset, ok := copyableOffset(align, start, end)
		if !ok {
			pending++
			continue
		}
		newStart, newEnd := start+offset, end+offset
		if newStart < newCursor {
			// Overlaps a gap we already reparsed (can happen when two
			// segments' old ranges both map past the previous cursor);
			// safest to let the gap reparse own this text instead.
			pending++
			continue
		}

		if err := flushGap(newStart); err != nil {
			return nil, err
		}
		out = append(out, shift(seg, offset))
		newCursor = newEnd
		pending++
	}

	// The tail always gets a fresh ENDMARKER: unlike the mid-stream gaps
	// above (which must strip their fragment's ENDMARKER since more
	// reused content follows), nothing follows the tail, so its
	// ENDMARKER becomes the new tree's actual end marker. This also
	// covers the common case where every statement was reused and
	// newCursor already equals len(newLines) — the tail fragment is then
	// just the empty string, which still tokenizes to a lone ENDMARKER.
	tail, err := fullParse(tables, newLines[newCursor:])
	if err != nil {
		return nil, err
	}
	tailOffset := newCursor
	for _, c := range tail.Children {
		out = append(out, shift(c, tailOffset))
	}
	return out, nil
}

// shift returns e itself, having renumbered every leaf's Start.Line in its
// subtree by offset in place. Reused subtrees stay pointer-equal to their
// counterparts in the old tree even after a pure line shift, matching
// §4.5 step 4 ("add the line-offset to every position in the copied
// subtree") rather than rebuilding fresh nodes — parso's own diff parser
// renumbers a copied subtree in place for the same reason: callers that
// cached a pointer into the old tree (e.g. an editor's selection) must
// keep seeing the same object after an edit elsewhere in the file.
// Column numbers never change: a reused/retokenized segment's internal
// layout is untouched, only its line in the file moved.
func shift(e cst.Element, offset int) cst.Element {
	if offset == 0 {
		return e
	}
	cst.Walk(e, func(el cst.Element) {
		if leaf, ok := el.(*cst.Leaf); ok {
			leaf.Start.Line += offset
		}
	})
	return e
}

// fullParse parses lines (each including its own line ending) as a
// standalone module. It's used both for Update's final fallback and for
// reparsing individual changed gaps, which are themselves complete,
// self-contained statement runs terminated by a synthetic ENDMARKER.
func fullParse(tables *grammar.Tables, lines []string) (*cst.Node, error) {
	src := strings.Join(lines, "")
	tok := tokenizer.New(src)
	root, err := parser.Parse(tables, tok)
	if err != nil {
		return nil, err
	}
	// A body consisting of nothing but ENDMARKER single-child-collapses to
	// the bare leaf (buildElement's generic-rule rule); re-wrap it so
	// callers can always rely on a *cst.Node of type file_input here.
	if nb, ok := root.(interface{ AsNode() *cst.Node }); ok {
		return nb.AsNode(), nil
	}
	return cst.NewNode(tables.Start, []cst.Element{root}), nil
}
