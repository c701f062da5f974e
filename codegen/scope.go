package codegen

import (
	"regexp"
	"strconv"
)

var reservedWords = []string{
	"break", "case", "catch", "class", "const", "continue", "debugger", "default", "delete", "do",
	"else", "enum", "export", "extends", "false", "finally", "for", "function", "if",
	"implements", "import", "in", "instanceof", "interface", "let", "null", "new", "package",
	"private", "protected", "public", "return", "static", "super", "switch", "this", "throw",
	"true", "try", "typeof", "var", "void", "while", "with", "yield",
}

var reservedWordSet map[string]struct{}

func init() {
	reservedWordSet = make(map[string]struct{}, len(reservedWords))
	for _, word := range reservedWords {
		reservedWordSet[word] = struct{}{}
	}
}

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// isBindable reports whether name may be bound as a JS function parameter.
func isBindable(name string) bool {
	if _, reserved := reservedWordSet[name]; reserved {
		return false
	}
	return identifier.MatchString(name)
}

// scope hands out unique names for generated variables, so that nested
// foreach constructs never share their list or body variables.
type scope struct {
	n int
}

// makevar generates and returns a new JS name with the given prefix.
func (s *scope) makevar(prefix string) string {
	s.n++
	return prefix + strconv.Itoa(s.n)
}
