// Package buffer provides the editable text buffer that macro scripts operate
// on.
//
// A Buffer holds one mutable string and applies batches of non-overlapping
// range replacements in a single pass. Every replacement shifts the offsets
// of the text that follows it; Replace accounts for that and reports where
// each replacement text ended up in the new content, so callers can chain
// further edits without recomputing offsets by hand.
//
// Basic usage:
//
//	buf := buffer.New("hello")
//
//	// Insert "XY" at offset 3
//	out, _ := buf.Insert([]int{3}, []string{"XY"})
//	// buf.Text() == "helXYlo", out == [[3:5)]
//
//	// Replace two spans at once, in any order
//	_, err := buf.Replace(
//	    []buffer.Range{{Start: 5, End: 7}, {Start: 0, End: 3}},
//	    []string{"LO", "HEL"},
//	)
//
// Search primitives (MatchNext, IndexAfter, LastIndexAfter) always run
// against the current content and take an explicit start position, so each
// call is independent and resumable.
//
// Offsets:
//
// All offsets are byte offsets into the UTF-8 content. Ranges are half-open,
// [Start, End).
//
// Checkpoints:
//
// A Buffer keeps an append-only log of full-text snapshots. MarkUndoPoint
// always appends; SetText appends the pre-overwrite text when debug mode is
// enabled. The log is replayed into a display surface after a run.
//
// Thread Safety:
//
// A Buffer is not safe for concurrent use. During a run it is owned by
// exactly one engine.Registry, and the registry is only reachable from the
// script being executed.
package buffer
