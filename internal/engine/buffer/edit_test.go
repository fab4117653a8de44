package buffer

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestInsert(t *testing.T) {
	b := New("hello")

	out, err := b.Insert([]int{3}, []string{"XY"})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if b.Text() != "helXYlo" {
		t.Errorf("expected 'helXYlo', got %q", b.Text())
	}
	if want := Ranges([2]int{3, 5}); !slices.Equal(out, want) {
		t.Errorf("expected %v, got %v", want, out)
	}
}

func TestRemove(t *testing.T) {
	b := New("hello")

	out, err := b.Remove(Ranges([2]int{1, 3}))
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	if b.Text() != "hlo" {
		t.Errorf("expected 'hlo', got %q", b.Text())
	}
	if want := Ranges([2]int{1, 1}); !slices.Equal(out, want) {
		t.Errorf("expected %v, got %v", want, out)
	}
}

func TestReplaceUnsorted(t *testing.T) {
	b := New("hello world")

	out, err := b.Replace(
		Ranges([2]int{6, 11}, [2]int{0, 5}),
		[]string{"there", "hi"},
	)
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	if b.Text() != "hi there" {
		t.Errorf("expected 'hi there', got %q", b.Text())
	}
	// Output ranges follow the argument order.
	if want := Ranges([2]int{3, 8}, [2]int{0, 2}); !slices.Equal(out, want) {
		t.Errorf("expected %v, got %v", want, out)
	}
}

func TestReplaceTouchingRanges(t *testing.T) {
	b := New("abcdef")

	out, err := b.Replace(Ranges([2]int{0, 3}, [2]int{3, 6}), []string{"1", "2222"})
	if err != nil {
		t.Fatalf("touching ranges should be allowed: %v", err)
	}
	if b.Text() != "12222" {
		t.Errorf("expected '12222', got %q", b.Text())
	}
	if want := Ranges([2]int{0, 1}, [2]int{1, 5}); !slices.Equal(out, want) {
		t.Errorf("expected %v, got %v", want, out)
	}
}

func TestReplaceOverlapConflict(t *testing.T) {
	b := New("hello world")

	_, err := b.Replace(Ranges([2]int{0, 5}, [2]int{3, 8}), []string{"a", "b"})

	var conflict *RangeConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected RangeConflictError, got %v", err)
	}
	if conflict.First != 0 || conflict.Second != 1 {
		t.Errorf("expected indices 0 and 1, got %d and %d", conflict.First, conflict.Second)
	}
	if conflict.FirstRange != NewRange(0, 5) || conflict.SecondRange != NewRange(3, 8) {
		t.Errorf("unexpected ranges %v %v", conflict.FirstRange, conflict.SecondRange)
	}
	if b.Text() != "hello world" {
		t.Errorf("content changed on conflict: %q", b.Text())
	}
}

func TestReplaceConflictBeforeBounds(t *testing.T) {
	b := New("hello")

	_, err := b.Replace(Ranges([2]int{0, 5}, [2]int{3, 8}), []string{"a", "b"})

	var conflict *RangeConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected RangeConflictError, got %v", err)
	}
	if errors.Is(err, ErrRangeInvalid) {
		t.Errorf("conflict should not also be ErrRangeInvalid: %v", err)
	}
	if conflict.First != 0 || conflict.Second != 1 {
		t.Errorf("expected indices 0 and 1, got %d and %d", conflict.First, conflict.Second)
	}
	if b.Text() != "hello" {
		t.Errorf("content changed on conflict: %q", b.Text())
	}
}

func TestReplaceConflictReportsArgumentIndices(t *testing.T) {
	b := New("0123456789")

	_, err := b.Replace(Ranges([2]int{8, 9}, [2]int{4, 7}, [2]int{0, 5}), []string{"", "", ""})

	var conflict *RangeConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected RangeConflictError, got %v", err)
	}
	if conflict.First != 1 || conflict.Second != 2 {
		t.Errorf("expected indices 1 and 2, got %d and %d", conflict.First, conflict.Second)
	}
	if !strings.Contains(err.Error(), "overlaps") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestReplaceSamePointInserts(t *testing.T) {
	b := New("abc")

	out, err := b.Insert([]int{1, 1}, []string{"X", "YZ"})
	if err != nil {
		t.Fatalf("zero-width ranges at one point should be allowed: %v", err)
	}
	if b.Text() != "aXYZbc" {
		t.Errorf("expected 'aXYZbc', got %q", b.Text())
	}
	if want := Ranges([2]int{1, 2}, [2]int{2, 4}); !slices.Equal(out, want) {
		t.Errorf("expected %v, got %v", want, out)
	}
}

func TestReplaceInsertBeforeRangeAtSameStart(t *testing.T) {
	// The zero-width range sorts first regardless of argument order.
	b := New("abcdef")

	out, err := b.Replace(Ranges([2]int{2, 4}, [2]int{2, 2}), []string{"--", "+"})
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if b.Text() != "ab+--ef" {
		t.Errorf("expected 'ab+--ef', got %q", b.Text())
	}
	if want := Ranges([2]int{3, 5}, [2]int{2, 3}); !slices.Equal(out, want) {
		t.Errorf("expected %v, got %v", want, out)
	}
}

func TestReplaceInvalidRanges(t *testing.T) {
	tests := []struct {
		name   string
		ranges []Range
	}{
		{"negative start", Ranges([2]int{-1, 2})},
		{"inverted", Ranges([2]int{3, 1})},
		{"past end", Ranges([2]int{2, 6})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("hello")
			_, err := b.Replace(tt.ranges, make([]string, len(tt.ranges)))
			if !errors.Is(err, ErrRangeInvalid) {
				t.Errorf("expected ErrRangeInvalid, got %v", err)
			}
			if b.Text() != "hello" {
				t.Errorf("content changed: %q", b.Text())
			}
		})
	}
}

func TestReplaceLengthMismatch(t *testing.T) {
	b := New("hello")

	_, err := b.Replace(Ranges([2]int{0, 1}), nil)
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestReplaceEmptyBatch(t *testing.T) {
	b := New("hello")

	out, err := b.Replace(nil, nil)
	if err != nil {
		t.Fatalf("empty batch failed: %v", err)
	}
	if len(out) != 0 || b.Text() != "hello" {
		t.Errorf("empty batch should be a no-op, got %v %q", out, b.Text())
	}
}

func TestReplaceRoundTrip(t *testing.T) {
	tests := []struct {
		text   string
		ranges []Range
		repl   []string
	}{
		{"the quick brown fox", Ranges([2]int{4, 9}, [2]int{16, 19}, [2]int{0, 3}), []string{"slow", "dog", "A"}},
		{"aaaa", Ranges([2]int{0, 0}, [2]int{4, 4}, [2]int{2, 2}), []string{"<", ">", "|"}},
		{"abc", Ranges([2]int{0, 3}), []string{""}},
		{"line1\nline2\nline3", Ranges([2]int{5, 6}, [2]int{11, 12}), []string{"\r\n", "\r\n"}},
		{"héllo wörld", Ranges([2]int{1, 3}, [2]int{8, 10}), []string{"e", "o"}},
	}

	for _, tt := range tests {
		b := New(tt.text)
		want := manualSplice(tt.text, tt.ranges, tt.repl)

		out, err := b.Replace(tt.ranges, tt.repl)
		if err != nil {
			t.Fatalf("replace %q failed: %v", tt.text, err)
		}
		if b.Text() != want {
			t.Errorf("expected %q, got %q", want, b.Text())
		}
		for i, r := range out {
			if got := b.Text()[r.Start:r.End]; got != tt.repl[i] {
				t.Errorf("%q: output range %d %v holds %q, want %q", tt.text, i, r, got, tt.repl[i])
			}
		}
	}
}

// manualSplice applies edits back to front, the way a caller would by hand.
func manualSplice(text string, ranges []Range, repl []string) string {
	idx := make([]int, len(ranges))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		if ranges[a].Start != ranges[b].Start {
			return ranges[b].Start - ranges[a].Start
		}
		return b - a
	})
	for _, i := range idx {
		r := ranges[i]
		text = text[:r.Start] + repl[i] + text[r.End:]
	}
	return text
}

func TestChainedEdits(t *testing.T) {
	b := New("a,b,c")

	out, err := b.Replace(Ranges([2]int{0, 1}, [2]int{2, 3}, [2]int{4, 5}), []string{"alpha", "beta", "gamma"})
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	// Wrap every replacement using the returned coordinates.
	positions := make([]int, 0, 2*len(out))
	texts := make([]string, 0, 2*len(out))
	for _, r := range out {
		positions = append(positions, r.Start, r.End)
		texts = append(texts, "[", "]")
	}
	if _, err := b.Insert(positions, texts); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if b.Text() != "[alpha],[beta],[gamma]" {
		t.Errorf("unexpected text %q", b.Text())
	}
}

func TestApplyEdits(t *testing.T) {
	b := New("Hello World")

	_, err := b.ApplyEdits([]Edit{
		NewInsert(5, ","),
		NewDelete(5, 11),
		NewEdit(NewRange(0, 1), "J"),
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if b.Text() != "Jello," {
		t.Errorf("expected 'Jello,', got %q", b.Text())
	}
}

func TestEditString(t *testing.T) {
	tests := []struct {
		edit Edit
		want string
	}{
		{NewInsert(3, "x"), `Insert(3, "x")`},
		{NewDelete(1, 4), "Delete[1:4)"},
		{NewEdit(NewRange(0, 2), "y"), `Replace[0:2) with "y"`},
	}
	for _, tt := range tests {
		if got := tt.edit.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}
