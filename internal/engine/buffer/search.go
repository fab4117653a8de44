package buffer

import (
	"regexp"
	"strings"
)

// Match is one regular expression match against a buffer.
// Offsets are relative to the whole buffer.
type Match struct {
	Index int    // Start of the match
	End   int    // End of the match (exclusive)
	Value string // Matched text

	// Groups holds the whole match followed by every capture group.
	// Groups that did not participate are "".
	Groups []string

	// Named maps named capture groups to their text.
	Named map[string]string
}

// Range returns the span of the match.
func (m Match) Range() Range {
	return Range{Start: m.Index, End: m.End}
}

// Literal compiles a pattern that matches s verbatim.
func Literal(s string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(s))
}

// MatchNext returns the first match of re at or after position.
//
// The search runs over the text starting at position, so anchors such as ^
// match at position itself. Negative positions are treated as 0; positions
// past the end never match.
func (b *Buffer) MatchNext(re *regexp.Regexp, position int) (Match, bool) {
	if position < 0 {
		position = 0
	}
	if position > len(b.text) {
		return Match{}, false
	}

	sub := b.text[position:]
	loc := re.FindStringSubmatchIndex(sub)
	if loc == nil {
		return Match{}, false
	}

	m := Match{
		Index:  loc[0] + position,
		End:    loc[1] + position,
		Value:  sub[loc[0]:loc[1]],
		Groups: make([]string, len(loc)/2),
	}
	for g := range m.Groups {
		if s, e := loc[2*g], loc[2*g+1]; s >= 0 {
			m.Groups[g] = sub[s:e]
		}
	}
	for g, name := range re.SubexpNames() {
		if name == "" {
			continue
		}
		if m.Named == nil {
			m.Named = make(map[string]string)
		}
		m.Named[name] = m.Groups[g]
	}
	return m, true
}

// MatchNextLiteral is MatchNext with lit matched verbatim.
func (b *Buffer) MatchNextLiteral(lit string, position int) (Match, bool) {
	return b.MatchNext(Literal(lit), position)
}

// IndexAfter returns the offset just past the first occurrence of lit at or
// after position, or -1.
func (b *Buffer) IndexAfter(lit string, position int) int {
	position = min(max(position, 0), len(b.text))

	i := strings.Index(b.text[position:], lit)
	if i < 0 {
		return -1
	}
	return position + i + len(lit)
}

// LastIndexAfter returns the offset just past the last occurrence of lit
// that ends at or before position, scanning backward from position.
//
// position is the offset of the last byte a match may cover; negative
// values count from the end of the text, so -1 searches the whole buffer.
// The scan probes every candidate down to -1 and the candidate closest to
// position wins. An empty lit returns -1.
func (b *Buffer) LastIndexAfter(lit string, position int) int {
	if position < 0 {
		position = len(b.text) + position
	}
	if lit == "" {
		return -1
	}
	position = min(position, len(b.text)-1)

	for i := position; i >= -1; i-- {
		if b.endsWithAt(lit, i) {
			return i + 1
		}
	}
	return -1
}

// endsWithAt reports whether lit occupies the bytes ending at pos inclusive.
func (b *Buffer) endsWithAt(lit string, pos int) bool {
	start := pos + 1 - len(lit)
	if start < 0 || pos >= len(b.text) {
		return false
	}
	return b.text[start:pos+1] == lit
}
