package codegen

import (
	"strings"

	"github.com/robfig/bgtl/ast"
)

// Line is one emitted line of JavaScript and the token that produced it.
// Origin is nil outside debug mode and for scaffolding lines.
type Line struct {
	Text   string
	Origin *ast.Token
}

// Unit is an emitted program: an ordered sequence of lines.
type Unit struct {
	Lines []Line

	// origins holds the originating token of every physical line. A Line
	// whose text embeds newlines (from an expression snippet) spans several.
	origins []*ast.Token
}

func (u *Unit) add(text string, origin *ast.Token) {
	u.Lines = append(u.Lines, Line{text, origin})
	for i := strings.Count(text, "\n"); i >= 0; i-- {
		u.origins = append(u.origins, origin)
	}
}

// Origin returns the token that produced the given 1-based physical line of
// String(), or nil if it is unknown.
func (u *Unit) Origin(line int) *ast.Token {
	if line < 1 || line > len(u.origins) {
		return nil
	}
	return u.origins[line-1]
}

// String returns the program source.
func (u *Unit) String() string {
	var b strings.Builder
	for i, line := range u.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line.Text)
	}
	return b.String()
}
