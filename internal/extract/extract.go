// Package extract isolates the JSON payload a generative model embedded in
// its free-form reply.
package extract

import (
	"strings"

	"github.com/abhisek/learnhub/internal/apperr"
)

// Shape is the top-level JSON shape the caller expects.
type Shape int

const (
	Object Shape = iota
	Array
)

func (s Shape) String() string {
	if s == Array {
		return "array"
	}
	return "object"
}

var fenceReplacer = strings.NewReplacer("```json", "", "```JSON", "", "```", "")

// StripFences removes markdown code-fence markers anywhere in s and trims
// surrounding whitespace.
func StripFences(s string) string {
	return strings.TrimSpace(fenceReplacer.Replace(s))
}

// Extract returns the first balanced region of the requested shape in raw,
// after fences are stripped. Arrays must contain at least one object.
func Extract(raw string, shape Shape) (string, error) {
	text := StripFences(raw)

	var (
		found string
		ok    bool
	)
	switch shape {
	case Array:
		found, ok = FindArray(text)
	default:
		found, ok = FindObject(text)
	}
	if !ok {
		return "", apperr.Errorf(apperr.PayloadNotFound, "extract.Extract", "no balanced JSON %s in model output", shape)
	}
	return found, nil
}

// FindObject returns the first balanced {...} region of s.
func FindObject(s string) (string, bool) {
	for start := 0; start < len(s); {
		i := strings.IndexByte(s[start:], '{')
		if i < 0 {
			return "", false
		}
		i += start
		if end, ok := balancedEnd(s, i, '{', '}'); ok {
			return s[i : end+1], true
		}
		start = i + 1
	}
	return "", false
}

// FindArray returns the first balanced [...] region of s that contains
// at least one '{'.
func FindArray(s string) (string, bool) {
	for start := 0; start < len(s); {
		i := strings.IndexByte(s[start:], '[')
		if i < 0 {
			return "", false
		}
		i += start
		if end, ok := balancedEnd(s, i, '[', ']'); ok {
			block := s[i : end+1]
			if strings.IndexByte(block, '{') >= 0 {
				return block, true
			}
		}
		start = i + 1
	}
	return "", false
}

// balancedEnd scans s from the opening delimiter at start and returns the
// index of its matching close. Delimiters inside JSON strings are ignored.
func balancedEnd(s string, start int, open, close byte) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
