// Package ast contains definitions for the in-memory representation of a
// bgtl template: a tree of tokens produced by the lexer.
package ast

import (
	"bytes"
	"fmt"
)

// Kind identifies the type of a Token.
type Kind int

const (
	Markup    Kind = iota // literal text
	Variable              // {{ expr }}, HTML-escaped output
	Construct             // {% keyword %} or {% keyword(arg) %}
)

func (k Kind) String() string {
	switch k {
	case Markup:
		return "markup"
	case Variable:
		return "variable"
	case Construct:
		return "construct"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Location is a 1-based line and column in the template source.
type Location struct {
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Token is a node of the parsed template.
type Token struct {
	Kind Kind

	// Value is the literal text for Markup, the raw expression for Variable
	// and the keyword name for Construct.
	Value string

	// Arg is the raw argument of a Construct. HasArg distinguishes an empty
	// argument from none at all.
	Arg    string
	HasArg bool

	// Children is non-empty only for block constructs.
	Children Tokens

	Offset int // byte offset of the token in the source
	Length int // byte length of the token in the source

	Location
}

// Keyword returns the keyword definition of a Construct token, or nil.
func (t *Token) Keyword() *Keyword {
	if t.Kind != Construct {
		return nil
	}
	return Keywords[t.Value]
}

// String returns the template source representation of this token and its
// children. The closing tag of a block is written by Tokens.String.
func (t *Token) String() string {
	switch t.Kind {
	case Markup:
		return t.Value
	case Variable:
		return "{{" + t.Value + "}}"
	}
	var b bytes.Buffer
	b.WriteString("{%" + t.Value)
	if t.HasArg {
		b.WriteString(" (" + t.Arg + ")")
	}
	b.WriteString("%}")
	b.WriteString(t.Children.String())
	return b.String()
}

// Tokens is an ordered sequence of sibling tokens: the root of a parse and
// the children of every block.
type Tokens []*Token

// String returns the template source of the sequence, closing tags included.
func (ts Tokens) String() string {
	var b bytes.Buffer
	for i, t := range ts {
		b.WriteString(t.String())
		var kw = t.Keyword()
		if kw == nil || !kw.OpensBlock {
			continue
		}
		if i+1 < len(ts) {
			if next := ts[i+1].Keyword(); next != nil && next.Continuable && kw.ClosedBy(next.Name) {
				continue
			}
		}
		b.WriteString("{%" + End + "%}")
	}
	return b.String()
}

// Walk calls fn for every token in depth-first order. It stops descending
// into a token's children when fn returns false.
func (ts Tokens) Walk(fn func(*Token) bool) {
	for _, t := range ts {
		if fn(t) {
			t.Children.Walk(fn)
		}
	}
}
