package parse

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/robfig/bgtl/ast"
	"github.com/robfig/bgtl/errortypes"
)

// ScanFlag modifies how FindDelimiter searches.
type ScanFlag uint8

const (
	// MustFind makes a failed search an error instead of a nil match.
	MustFind ScanFlag = 1 << iota
	// Escapable skips needles immediately preceded by a backslash.
	Escapable
	// IgnoreStrings disables skipping over quoted string literals.
	IgnoreStrings
	// IgnoreParens disables skipping over parenthesized spans.
	IgnoreParens
)

// Match is the result of a successful delimiter search.
type Match struct {
	Delimiter string // the needle that was found
	Offset    int    // byte offset of the needle in the haystack
}

// FindDelimiter returns the earliest occurrence of any of the needles in
// haystack at or after offset.
//
// Unless IgnoreStrings is set, single and double quoted literals met before a
// candidate are opaque: the search resumes after their closing quote. Unless
// IgnoreParens is set, an unescaped "(" opens a span whose balancing ")" is
// found by a nested search that still skips strings.
//
// If nothing is found, it returns nil, or a MissingDelimiter LexingError at
// location at when MustFind is set.
func FindDelimiter(needles []string, haystack string, offset int, flags ScanFlag, at ast.Location) (*Match, error) {
	var pos = offset
	for pos <= len(haystack) {
		var idx, needle = indexAny(haystack, pos, needles)
		if opener := indexOpener(haystack, pos, idx, flags); opener >= 0 {
			var closing *Match
			var err error
			switch c := haystack[opener]; c {
			case '"', '\'':
				closing, err = FindDelimiter([]string{string(c)}, haystack, opener+1,
					MustFind|Escapable|IgnoreStrings|IgnoreParens, at)
			default:
				closing, err = FindDelimiter([]string{")"}, haystack, opener+1,
					MustFind|Escapable, at)
			}
			if err != nil {
				return nil, err
			}
			pos = closing.Offset + 1
			continue
		}
		if idx < 0 {
			break
		}
		if flags&Escapable != 0 && isEscaped(haystack, idx) {
			pos = idx + 1
			continue
		}
		return &Match{needle, idx}, nil
	}

	if flags&MustFind != 0 {
		return nil, errortypes.NewLexingError(errortypes.MissingDelimiter, at.Line, at.Column,
			"missing %s", quoteAll(needles))
	}
	return nil, nil
}

// indexAny returns the position of the earliest needle in s at or after pos,
// or -1. On a tie the longer needle wins.
func indexAny(s string, pos int, needles []string) (int, string) {
	var best, found = -1, ""
	for _, needle := range needles {
		var i = strings.Index(s[pos:], needle)
		if i < 0 {
			continue
		}
		i += pos
		if best < 0 || i < best || (i == best && len(needle) > len(found)) {
			best, found = i, needle
		}
	}
	return best, found
}

// indexOpener returns the position of the first unescaped quote or "(" in
// s[pos:limit] that flags ask to skip over, or -1. A negative limit means the
// end of s.
func indexOpener(s string, pos, limit int, flags ScanFlag) int {
	var strs = flags&IgnoreStrings == 0
	var parens = flags&IgnoreParens == 0
	if !strs && !parens {
		return -1
	}
	if limit < 0 {
		limit = len(s)
	}
	for i := pos; i < limit; i++ {
		switch s[i] {
		case '"', '\'':
			if strs && !isEscaped(s, i) {
				return i
			}
		case '(':
			if parens && !isEscaped(s, i) {
				return i
			}
		}
	}
	return -1
}

// isEscaped reports whether the byte at i is preceded by a backslash. Only a
// single level is checked.
func isEscaped(s string, i int) bool {
	return i > 0 && s[i-1] == '\\'
}

func quoteAll(needles []string) string {
	var quoted = make([]string, len(needles))
	for i, n := range needles {
		quoted[i] = "'" + n + "'"
	}
	return strings.Join(quoted, " or ")
}

// lineIndex maps byte offsets to line and column numbers. CR, LF and CRLF
// each count as one line break.
type lineIndex struct {
	input  string
	starts []int // byte offset of the start of each line
}

func newLineIndex(input string) *lineIndex {
	var starts = []int{0}
	for i := 0; i < len(input); i++ {
		switch input[i] {
		case '\r':
			if i+1 < len(input) && input[i+1] == '\n' {
				i++
			}
			starts = append(starts, i+1)
		case '\n':
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{input, starts}
}

func (l *lineIndex) location(offset int) ast.Location {
	var line = sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > offset })
	var start = l.starts[line-1]
	return ast.Location{
		Line:   line,
		Column: utf8.RuneCountInString(l.input[start:offset]) + 1,
	}
}

// Position returns the 1-based line and column of the byte offset in input.
func Position(input string, offset int) ast.Location {
	return newLineIndex(input).location(offset)
}
