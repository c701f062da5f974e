package parse

import (
	"strings"

	"github.com/robfig/bgtl/ast"
	"github.com/robfig/bgtl/errortypes"
)

const (
	variableOpen   = "{{"
	variableClose  = "}}"
	constructOpen  = "{%"
	constructClose = "%}"
)

// Tag is a {{ }} or {% %} tag found in the source.
type Tag struct {
	Kind   ast.Kind // ast.Variable or ast.Construct
	Value  string   // raw expression, or keyword name
	Arg    string   // raw construct argument
	HasArg bool

	Offset int // byte offset of the opening delimiter
	Length int // byte length of the whole tag, delimiters included

	// Escaped is set when the opening delimiter is preceded by a backslash.
	// The body of an escaped tag is not validated.
	Escaped bool

	ast.Location // position of the opening delimiter
}

func (t *Tag) token() *ast.Token {
	return &ast.Token{
		Kind:     t.Kind,
		Value:    t.Value,
		Arg:      t.Arg,
		HasArg:   t.HasArg,
		Offset:   t.Offset,
		Length:   t.Length,
		Location: t.Location,
	}
}

// FindTag returns the next tag in source at or after offset, or nil if there
// is none.
func FindTag(source string, offset int) (*Tag, error) {
	return findTag(newLineIndex(source), offset)
}

func findTag(lines *lineIndex, offset int) (*Tag, error) {
	var source = lines.input
	var open, _ = FindDelimiter([]string{variableOpen, constructOpen}, source, offset,
		IgnoreStrings|IgnoreParens, ast.Location{})
	if open == nil {
		return nil, nil
	}

	var tag = &Tag{
		Kind:     ast.Variable,
		Offset:   open.Offset,
		Escaped:  isEscaped(source, open.Offset),
		Location: lines.location(open.Offset),
	}
	var closeDelim = variableClose
	var flags = MustFind | IgnoreStrings | IgnoreParens
	if open.Delimiter == constructOpen {
		tag.Kind = ast.Construct
		closeDelim = constructClose
		flags = MustFind
	}
	if tag.Escaped {
		flags = IgnoreStrings | IgnoreParens
	}

	var bodyStart = open.Offset + len(open.Delimiter)
	var closing, err = FindDelimiter([]string{closeDelim}, source, bodyStart, flags, tag.Location)
	if err != nil {
		return nil, err
	}
	if closing == nil {
		// An escaped opener with nothing to close it stands alone.
		tag.Length = len(open.Delimiter)
		return tag, nil
	}
	tag.Length = closing.Offset + len(closeDelim) - open.Offset
	tag.Value = source[bodyStart:closing.Offset]
	if tag.Escaped || tag.Kind == ast.Variable {
		return tag, nil
	}
	if err = tag.parseConstruct(); err != nil {
		return nil, err
	}
	return tag, nil
}

// parseConstruct splits the body of a construct tag, held in Value, into its
// keyword and optional parenthesized argument.
//	keyword
//	keyword(argument)
func (t *Tag) parseConstruct() error {
	var body = t.Value
	var start = skipSpace(body, 0)
	var end = start
	for end < len(body) && isWordChar(body[end]) {
		end++
	}
	var keyword = body[start:end]
	if keyword == "" {
		return t.errorf(errortypes.InvalidConstructSyntax, "invalid construct %q", strings.TrimSpace(body))
	}

	var pos = skipSpace(body, end)
	if pos < len(body) {
		if body[pos] != '(' {
			return t.errorf(errortypes.InvalidConstructSyntax, "invalid construct %q", strings.TrimSpace(body))
		}
		var closing, err = FindDelimiter([]string{")"}, body, pos+1, MustFind|Escapable, t.Location)
		if err != nil {
			return err
		}
		if skipSpace(body, closing.Offset+1) != len(body) {
			return t.errorf(errortypes.InvalidConstructSyntax,
				"unexpected %q after argument of %q", strings.TrimSpace(body[closing.Offset+1:]), keyword)
		}
		t.Arg = strings.TrimSpace(body[pos+1 : closing.Offset])
		t.HasArg = true
	}

	var kw, ok = ast.Keywords[keyword]
	switch {
	case !ok:
		return t.errorf(errortypes.InvalidKeyword, "unknown keyword %q", keyword)
	case kw.NeedsArg && t.Arg == "":
		return t.errorf(errortypes.MissingArgument, "%q requires an argument", keyword)
	case !kw.NeedsArg && t.HasArg:
		return t.errorf(errortypes.UnexpectedArgument, "%q does not take an argument", keyword)
	}
	t.Value = keyword
	return nil
}

func (t *Tag) errorf(kind errortypes.Kind, format string, args ...interface{}) error {
	return errortypes.NewLexingError(kind, t.Line, t.Column, format, args...)
}

func skipSpace(s string, pos int) int {
	for pos < len(s) && isSpace(s[pos]) {
		pos++
	}
	return pos
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isWordChar(c byte) bool {
	return c == '_' || '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}
