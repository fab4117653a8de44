package macro

import (
	"regexp"
	"strings"
)

// Marker must appear on the first line of every macro.
const Marker = "macro"

// LoopWarning is reported when a source contains a possibly unbounded loop.
const LoopWarning = "macro contains a while or repeat loop; it will run until it finishes"

var loopPattern = regexp.MustCompile(`\bwhile\b[\s\S]*?\bdo\b|\brepeat\b`)

// HasMarker reports whether the first line of source mentions "macro",
// ignoring case. A source without a newline is all first line.
func HasMarker(source string) bool {
	first, _, _ := strings.Cut(source, "\n")
	return strings.Contains(strings.ToLower(first), Marker)
}

// Validate checks that source can be run as a macro.
func Validate(name, source string) error {
	if strings.TrimSpace(source) == "" {
		return &ValidationError{Name: name, Err: ErrEmptySource}
	}
	if !HasMarker(source) {
		return &ValidationError{Name: name, Err: ErrMissingMarker}
	}
	return nil
}

// Check validates source and applies the loop heuristic. A loop is a
// warning unless rejectLoops is set, in which case it fails validation.
func Check(name, source string, rejectLoops bool) ([]string, error) {
	if err := Validate(name, source); err != nil {
		return nil, err
	}
	if !ContainsUnboundedLoop(source) {
		return nil, nil
	}
	if rejectLoops {
		return nil, &ValidationError{Name: name, Err: ErrUnboundedLoop}
	}
	return []string{LoopWarning}, nil
}

// ContainsUnboundedLoop reports whether source has a while or repeat loop
// outside strings and comments. This is a heuristic: numeric and generic
// for loops are not reported, and a reported loop may well terminate.
func ContainsUnboundedLoop(source string) bool {
	return loopPattern.MatchString(stripStringsAndComments(source))
}

// stripStringsAndComments replaces Lua string literals and comments with a
// single space each.
func stripStringsAndComments(src string) string {
	var sb strings.Builder
	sb.Grow(len(src))

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '-' && strings.HasPrefix(src[i:], "--"):
			j := i + 2
			if level, ok := longBracket(src, j); ok {
				i = skipLong(src, j, level)
			} else if nl := strings.IndexByte(src[j:], '\n'); nl >= 0 {
				i = j + nl
			} else {
				i = len(src)
			}
			sb.WriteByte(' ')

		case c == '"' || c == '\'':
			j := i + 1
			for j < len(src) && src[j] != c && src[j] != '\n' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			i = min(j+1, len(src))
			sb.WriteByte(' ')

		case c == '[':
			if level, ok := longBracket(src, i); ok {
				i = skipLong(src, i, level)
				sb.WriteByte(' ')
				continue
			}
			sb.WriteByte(c)
			i++

		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String()
}

// longBracket reports whether a long bracket such as [[ or [==[ opens at i.
func longBracket(src string, i int) (int, bool) {
	if i >= len(src) || src[i] != '[' {
		return 0, false
	}
	j := i + 1
	for j < len(src) && src[j] == '=' {
		j++
	}
	if j < len(src) && src[j] == '[' {
		return j - i - 1, true
	}
	return 0, false
}

// skipLong returns the index just past the long bracket opened at i.
// An unclosed bracket runs to the end of src.
func skipLong(src string, i, level int) int {
	open := level + 2
	closing := "]" + strings.Repeat("=", level) + "]"
	end := strings.Index(src[i+open:], closing)
	if end == -1 {
		return len(src)
	}
	return i + open + end + len(closing)
}
