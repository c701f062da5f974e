// Package parse converts a bgtl template into its token tree.
package parse

import (
	"github.com/robfig/bgtl/ast"
	"github.com/robfig/bgtl/errortypes"
)

// lexer holds the state of the scan over a single template.
type lexer struct {
	lines *lineIndex
	input string
	pos   int // current position in the input
	text  int // start of the pending markup
}

// Tokenize converts the template source into a token tree. Block constructs
// own their children; closing tags are consumed and do not appear in the
// result.
func Tokenize(input string) (ast.Tokens, error) {
	var l = &lexer{
		lines: newLineIndex(input),
		input: input,
	}
	var tokens, _, err = l.tokens(nil)
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// tokens scans sibling tokens until a construct that closes block, or the end
// of input. The closing tag is returned, already consumed.
//
// When a branch of an if chain is closed by elif or else, the closer is
// appended here as the next sibling and its own children are scanned, so that
// a nested block's closer can never close the enclosing block.
func (l *lexer) tokens(block *ast.Keyword) (ast.Tokens, *Tag, error) {
	var list ast.Tokens
	for {
		var tag, err = findTag(l.lines, l.pos)
		if err != nil {
			return nil, nil, err
		}
		if tag == nil {
			list = l.markup(list, len(l.input))
			l.pos = len(l.input)
			return list, nil, nil
		}
		l.pos = tag.Offset + tag.Length
		if tag.Escaped {
			// Kept verbatim, backslash included, as part of the pending markup.
			continue
		}
		list = l.markup(list, tag.Offset)
		l.text = l.pos

		if tag.Kind == ast.Variable {
			list = append(list, tag.token())
			continue
		}
		if block != nil && block.ClosedBy(tag.Value) {
			return list, tag, nil
		}

		var kw = ast.Keywords[tag.Value]
		switch {
		case kw.Continuable:
			return nil, nil, tag.errorf(errortypes.InvalidKeyword,
				"%q must directly follow an if or elif block", tag.Value)
		case tag.Value == ast.End:
			return nil, nil, tag.errorf(errortypes.InvalidKeyword, "%q without an open block", tag.Value)
		}

		var tok = tag.token()
		list = append(list, tok)
		for kw.OpensBlock {
			var children, closer, err = l.tokens(kw)
			if err != nil {
				return nil, nil, err
			}
			if closer == nil {
				return nil, nil, tag.errorf(errortypes.MissingClosingConstruct,
					"%q is never closed", tok.Value)
			}
			tok.Children = children
			tok.Length = closer.Offset - tok.Offset
			if closer.Value == ast.End {
				break
			}
			tag, tok, kw = closer, closer.token(), ast.Keywords[closer.Value]
			list = append(list, tok)
		}
	}
}

// markup appends the pending text up to end, if any, as a Markup token.
func (l *lexer) markup(list ast.Tokens, end int) ast.Tokens {
	if end <= l.text {
		return list
	}
	return append(list, &ast.Token{
		Kind:     ast.Markup,
		Value:    l.input[l.text:end],
		Offset:   l.text,
		Length:   end - l.text,
		Location: l.lines.location(l.text),
	})
}
