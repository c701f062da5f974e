package codegen

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/robfig/bgtl/ast"
	"github.com/robfig/bgtl/errortypes"
)

// DefaultConstructs are the code generators for the built-in keywords.
var DefaultConstructs = map[string]Construct{
	ast.If:      visitIf,
	ast.Elif:    visitElif,
	ast.Else:    visitElse,
	ast.Foreach: visitForeach,
	ast.Raw:     visitRaw,
	ast.End:     visitEnd,
}

func visitIf(s *State, tok *ast.Token) error {
	s.Line("if (", s.Expr(tok.Arg, errortypes.IfRenderingFailed), ") {")
	s.Walk(tok.Children)
	s.Line("}")
	return nil
}

// visitElif relies on the lexer placing elif directly after an if or elif.
func visitElif(s *State, tok *ast.Token) error {
	s.Line("else if (", s.Expr(tok.Arg, errortypes.ElifRenderingFailed), ") {")
	s.Walk(tok.Children)
	s.Line("}")
	return nil
}

func visitElse(s *State, tok *ast.Token) error {
	s.Line("else {")
	s.Walk(tok.Children)
	s.Line("}")
	return nil
}

// visitEnd emits nothing: the lexer consumes end tags.
func visitEnd(s *State, tok *ast.Token) error {
	return nil
}

//	[var ]name in expr	binds each index or key
//	[var ]name as expr	binds each element or value
var foreachHeader = regexp.MustCompile(`(?s)^(?:var\s+)?([A-Za-z_$][A-Za-z0-9_$]*)\s+(in|as)\s+(.+)$`)

// visitForeach evaluates the iterable once and runs the body as its own
// function per iteration, so loop variables never leak between levels.
func visitForeach(s *State, tok *ast.Token) error {
	var m = foreachHeader.FindStringSubmatch(strings.TrimSpace(tok.Arg))
	if m == nil {
		s.Errorf(errortypes.InvalidArgument,
			"invalid foreach argument %q, expected \"[var] name in|as expression\"", tok.Arg)
	}
	var name, values, expr = m[1], m[2] == "as", m[3]
	if !isBindable(name) {
		s.Errorf(errortypes.InvalidArgument, "%q cannot be used as a loop variable", name)
	}

	var list, body = s.Var("list"), s.Var("each")
	s.Guarded(errortypes.ForeachRenderingFailed, func() {
		s.Line("var ", list, " = (", expr, ");")
		s.Line("var ", body, " = function (", name, ") {")
		s.Walk(tok.Children)
		s.Line("};")
		s.Line(PreludeName, ".each(this, ", list, ", ", body, ", ", strconv.FormatBool(values), ");")
	})
	return nil
}

// visitRaw is the only output path without HTML escaping.
func visitRaw(s *State, tok *ast.Token) error {
	s.Guarded(errortypes.RawRenderingFailed, func() {
		s.Line(OutputVar, " += ", PreludeName, ".str((", tok.Arg, "));")
	})
	return nil
}
