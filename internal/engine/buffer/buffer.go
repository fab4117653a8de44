package buffer

import (
	"errors"
	"slices"
)

// Errors returned by buffer operations.
var (
	ErrRangeInvalid   = errors.New("invalid range")
	ErrLengthMismatch = errors.New("ranges and replacements differ in length")
)

// Buffer owns one mutable text value and its checkpoint log.
type Buffer struct {
	text        string
	checkpoints []string
	debugMode   bool
}

// New creates a buffer holding text.
func New(text string, opts ...Option) *Buffer {
	b := &Buffer{text: text}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	return b.text
}

// Len returns the byte length of the content.
func (b *Buffer) Len() int {
	return len(b.text)
}

// IsEmpty returns true if the buffer holds no text.
func (b *Buffer) IsEmpty() bool {
	return b.text == ""
}

// SetText overwrites the whole content. In debug mode the previous content
// is pushed onto the checkpoint log first.
func (b *Buffer) SetText(text string) {
	if b.debugMode {
		b.MarkUndoPoint()
	}
	b.text = text
}

// MarkUndoPoint pushes the current content onto the checkpoint log.
func (b *Buffer) MarkUndoPoint() {
	b.checkpoints = append(b.checkpoints, b.text)
}

// Checkpoints returns a copy of the checkpoint log, oldest first.
func (b *Buffer) Checkpoints() []string {
	return slices.Clone(b.checkpoints)
}

// CheckpointCount returns the number of checkpoints taken so far.
func (b *Buffer) CheckpointCount() int {
	return len(b.checkpoints)
}

// DebugMode reports whether SetText records checkpoints.
func (b *Buffer) DebugMode() bool {
	return b.debugMode
}

// SetDebugMode enables or disables automatic checkpoints on SetText.
func (b *Buffer) SetDebugMode(on bool) {
	b.debugMode = on
}

// States returns every checkpoint followed by the current content, the
// sequence a display surface receives during replay.
func (b *Buffer) States() []string {
	states := make([]string, 0, len(b.checkpoints)+1)
	states = append(states, b.checkpoints...)
	return append(states, b.text)
}
