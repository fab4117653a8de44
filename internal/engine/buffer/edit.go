package buffer

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Edit represents a text edit operation.
// It specifies a range to replace and the new text.
type Edit struct {
	Range   Range  // The range to replace
	NewText string // The replacement text
}

// NewEdit creates a new Edit.
func NewEdit(r Range, newText string) Edit {
	return Edit{Range: r, NewText: newText}
}

// NewInsert creates an Edit that inserts text at a position.
func NewInsert(offset int, text string) Edit {
	return Edit{Range: Point(offset), NewText: text}
}

// NewDelete creates an Edit that deletes a range of text.
func NewDelete(start, end int) Edit {
	return Edit{Range: Range{Start: start, End: end}}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	if e.Range.IsEmpty() {
		return fmt.Sprintf("Insert(%d, %q)", e.Range.Start, e.NewText)
	}
	if e.NewText == "" {
		return fmt.Sprintf("Delete%s", e.Range.String())
	}
	return fmt.Sprintf("Replace%s with %q", e.Range.String(), e.NewText)
}

// Delta returns the change in buffer length caused by this edit.
func (e Edit) Delta() int {
	return len(e.NewText) - e.Range.Len()
}

// RangeConflictError reports two ranges of one Replace call that overlap.
// Indices refer to the caller's argument order.
type RangeConflictError struct {
	First       int
	FirstRange  Range
	Second      int
	SecondRange Range
}

func (e *RangeConflictError) Error() string {
	return fmt.Sprintf("range %d %s overlaps with range %d %s",
		e.First, e.FirstRange, e.Second, e.SecondRange)
}

// pendingEdit keeps an edit paired with its position in the caller's slice
// while the batch is sorted.
type pendingEdit struct {
	Edit
	index int
}

// Replace replaces every range with the replacement at the same index and
// returns, in the same order, the ranges the replacement texts occupy in the
// new content.
//
// Ranges may be given in any order but must not overlap; touching ranges and
// repeated zero-width ranges are allowed. Zero-width ranges at the same
// offset are applied in argument order. On error the content is unchanged.
//
// Negative or inverted ranges fail first with ErrRangeInvalid, then
// overlaps with *RangeConflictError, and only then ranges ending past the
// content with ErrRangeInvalid.
func (b *Buffer) Replace(ranges []Range, replacements []string) ([]Range, error) {
	if len(ranges) != len(replacements) {
		return nil, fmt.Errorf("%w: %d ranges, %d replacements",
			ErrLengthMismatch, len(ranges), len(replacements))
	}

	edits := make([]pendingEdit, len(ranges))
	for i, r := range ranges {
		if !r.IsValid() {
			return nil, fmt.Errorf("%w: range %d %s", ErrRangeInvalid, i, r)
		}
		edits[i] = pendingEdit{Edit: Edit{Range: r, NewText: replacements[i]}, index: i}
	}

	sorted, err := sortEdits(edits)
	if err != nil {
		return nil, err
	}
	for _, e := range edits {
		if e.Range.End > len(b.text) {
			return nil, fmt.Errorf("%w: range %d %s (length %d)", ErrRangeInvalid, e.index, e.Range, len(b.text))
		}
	}

	text, out := splice(b.text, sorted)
	b.text = text
	return out, nil
}

// Insert inserts texts[i] at positions[i] and returns the ranges of the
// inserted texts in the new content.
func (b *Buffer) Insert(positions []int, texts []string) ([]Range, error) {
	ranges := make([]Range, len(positions))
	for i, p := range positions {
		ranges[i] = Point(p)
	}
	return b.Replace(ranges, texts)
}

// Remove deletes every range and returns the zero-width ranges left behind.
func (b *Buffer) Remove(ranges []Range) ([]Range, error) {
	return b.Replace(ranges, make([]string, len(ranges)))
}

// ApplyEdits applies a batch of edits with the same rules as Replace.
func (b *Buffer) ApplyEdits(edits []Edit) ([]Range, error) {
	ranges := make([]Range, len(edits))
	texts := make([]string, len(edits))
	for i, e := range edits {
		ranges[i] = e.Range
		texts[i] = e.NewText
	}
	return b.Replace(ranges, texts)
}

// sortEdits orders edits by (Start, End) keeping argument order for equal
// ranges, then rejects any adjacent pair where the earlier edit ends past
// the start of the next one.
func sortEdits(edits []pendingEdit) ([]pendingEdit, error) {
	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b pendingEdit) int {
		if c := cmp.Compare(a.Range.Start, b.Range.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.Range.End, b.Range.End)
	})

	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.Range.End > cur.Range.Start {
			first, second := prev, cur
			if second.index < first.index {
				first, second = second, first
			}
			return nil, &RangeConflictError{
				First:       first.index,
				FirstRange:  first.Range,
				Second:      second.index,
				SecondRange: second.Range,
			}
		}
	}
	return sorted, nil
}

// splice walks the sorted edits once, copying untouched spans and
// replacement texts, and records where each replacement lands.
func splice(text string, sorted []pendingEdit) (string, []Range) {
	size := len(text)
	for _, e := range sorted {
		size += e.Delta()
	}

	var sb strings.Builder
	sb.Grow(size)

	out := make([]Range, len(sorted))
	cursor := 0
	delta := 0
	for _, e := range sorted {
		sb.WriteString(text[cursor:e.Range.Start])
		sb.WriteString(e.NewText)
		cursor = e.Range.End

		start := e.Range.Start + delta
		out[e.index] = Range{Start: start, End: start + len(e.NewText)}
		delta += e.Delta()
	}
	sb.WriteString(text[cursor:])

	return sb.String(), out
}
