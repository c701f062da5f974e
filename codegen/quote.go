package codegen

import (
	"fmt"
	"unicode/utf16"
)

var escapes = map[rune]rune{
	'\\': '\\',
	'\'': '\'',
	'\n': 'n',
	'\r': 'r',
}

// quoteString quotes s as a single-quoted JS string literal. Anything outside
// printable ASCII is written as \uXXXX, using surrogate pairs where needed.
func quoteString(s string) string {
	var q = make([]rune, 1, len(s)+10)
	q[0] = '\''
	for _, ch := range s {
		if seq, ok := escapes[ch]; ok {
			q = append(q, '\\', seq)
			continue
		}
		if ch >= 0x20 && ch < 0x7f {
			q = append(q, ch)
			continue
		}
		if r1, r2 := utf16.EncodeRune(ch); r1 != 0xFFFD {
			q = append(q, []rune(fmt.Sprintf(`\u%04x\u%04x`, r1, r2))...)
			continue
		}
		q = append(q, []rune(fmt.Sprintf(`\u%04x`, ch))...)
	}
	return string(append(q, '\''))
}
