package buffer

import (
	"math"
	"regexp"
	"testing"
)

func TestMatchNext(t *testing.T) {
	b := New("hello")
	re := regexp.MustCompile(`l+`)

	m, ok := b.MatchNext(re, 0)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Index != 2 || m.Value != "ll" || m.End != 4 {
		t.Errorf("expected 'll' at 2, got %q at %d", m.Value, m.Index)
	}

	// Starting inside the run only sees the remaining "l".
	m, ok = b.MatchNext(re, 3)
	if !ok || m.Index != 3 || m.Value != "l" {
		t.Errorf("expected 'l' at 3, got %+v (ok=%v)", m, ok)
	}

	if _, ok := b.MatchNext(re, 4); ok {
		t.Error("expected no match from position 4")
	}
}

func TestMatchNextIsIndependentPerCall(t *testing.T) {
	b := New("a1 b2 c3")
	re := regexp.MustCompile(`[a-z](\d)`)

	for i := 0; i < 3; i++ {
		m, ok := b.MatchNext(re, 0)
		if !ok || m.Index != 0 || m.Groups[1] != "1" {
			t.Fatalf("call %d: expected first match, got %+v", i, m)
		}
	}
}

func TestMatchNextResumable(t *testing.T) {
	b := New("a1 b2 c3")
	re := regexp.MustCompile(`[a-z](\d)`)

	var digits string
	pos := 0
	for {
		m, ok := b.MatchNext(re, pos)
		if !ok {
			break
		}
		digits += m.Groups[1]
		pos = m.End
	}

	if digits != "123" {
		t.Errorf("expected '123', got %q", digits)
	}
}

func TestMatchNextAnchorsAtPosition(t *testing.T) {
	b := New("foo bar")
	re := regexp.MustCompile(`^bar`)

	m, ok := b.MatchNext(re, 4)
	if !ok || m.Index != 4 {
		t.Errorf("expected ^ to anchor at the search position, got %+v (ok=%v)", m, ok)
	}
}

func TestMatchNextGroups(t *testing.T) {
	b := New("key=value; other")
	re := regexp.MustCompile(`(?P<key>\w+)=(?P<val>\w+)(;)?(x)?`)

	m, ok := b.MatchNext(re, 0)
	if !ok {
		t.Fatal("expected a match")
	}
	if len(m.Groups) != 5 {
		t.Fatalf("expected 5 groups, got %d", len(m.Groups))
	}
	if m.Groups[0] != "key=value;" || m.Groups[1] != "key" || m.Groups[2] != "value" {
		t.Errorf("unexpected groups %q", m.Groups)
	}
	if m.Groups[4] != "" {
		t.Errorf("unmatched group should be empty, got %q", m.Groups[4])
	}
	if m.Named["key"] != "key" || m.Named["val"] != "value" {
		t.Errorf("unexpected named groups %v", m.Named)
	}
}

func TestMatchNextPositionBounds(t *testing.T) {
	b := New("abc")
	re := regexp.MustCompile(`a`)

	if m, ok := b.MatchNext(re, -5); !ok || m.Index != 0 {
		t.Errorf("negative position should clamp to 0, got %+v", m)
	}
	if _, ok := b.MatchNext(re, 10); ok {
		t.Error("position past end should not match")
	}

	empty := regexp.MustCompile(`$`)
	if m, ok := b.MatchNext(empty, 3); !ok || m.Index != 3 {
		t.Errorf("expected empty match at end, got %+v (ok=%v)", m, ok)
	}
}

func TestMatchNextLiteral(t *testing.T) {
	b := New("a.b.c (x)")

	m, ok := b.MatchNextLiteral(".", 2)
	if !ok || m.Index != 3 {
		t.Errorf("expected literal '.' at 3, got %+v", m)
	}

	m, ok = b.MatchNextLiteral("(x)", 0)
	if !ok || m.Index != 6 || m.Range() != NewRange(6, 9) {
		t.Errorf("expected literal '(x)' at 6, got %+v", m)
	}

	if _, ok := b.MatchNextLiteral("a.c", 0); ok {
		t.Error("literal should not be treated as a pattern")
	}
}

func TestIndexAfter(t *testing.T) {
	tests := []struct {
		text     string
		lit      string
		position int
		want     int
	}{
		{"hello", "lo", 0, 5},
		{"hello", "xy", 0, -1},
		{"abcabc", "abc", 1, 6},
		{"abcabc", "abc", 0, 3},
		{"abc", "", 1, 1},
		{"abc", "a", -3, 1},
		{"abc", "c", 9, -1},
	}

	for _, tt := range tests {
		b := New(tt.text)
		if got := b.IndexAfter(tt.lit, tt.position); got != tt.want {
			t.Errorf("IndexAfter(%q, %d) on %q = %d, want %d", tt.lit, tt.position, tt.text, got, tt.want)
		}
	}
}

func TestLastIndexAfter(t *testing.T) {
	tests := []struct {
		text     string
		lit      string
		position int
		want     int
	}{
		{"hello", "l", -1, 4},
		{"hello", "l", 2, 3},
		{"hello", "l", 1, -1},
		{"hello", "he", -1, 2},
		{"hello", "hello", 4, 5},
		{"hello", "", -1, -1},
		{"hello", "z", -1, -1},
		{"abcabc", "abc", -1, 6},
		{"abcabc", "abc", 4, 3},
		{"abcabc", "abc", -2, 3},
		{"hello", "o", 99, 5},
		{"hello", "l", math.MaxInt, 4},
		{"hello", "l", math.MinInt, -1},
		{"", "a", -1, -1},
	}

	for _, tt := range tests {
		b := New(tt.text)
		if got := b.LastIndexAfter(tt.lit, tt.position); got != tt.want {
			t.Errorf("LastIndexAfter(%q, %d) on %q = %d, want %d", tt.lit, tt.position, tt.text, got, tt.want)
		}
	}
}

func TestSearchSeesCurrentContent(t *testing.T) {
	b := New("one two")
	if _, err := b.Replace(Ranges([2]int{0, 3}), []string{"three"}); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	if got := b.IndexAfter("three", 0); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
	if got := b.LastIndexAfter("two", -1); got != 9 {
		t.Errorf("expected 9, got %d", got)
	}
}
