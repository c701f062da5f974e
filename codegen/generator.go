// Package codegen turns a template's token tree into a JavaScript function
// expression. Calling that function with the render context bound to "this"
// returns either {output: "..."} or a rendering failure record built by the
// Prelude helpers.
package codegen

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/robfig/bgtl/ast"
	"github.com/robfig/bgtl/errortypes"
)

// Construct emits the code for one construct token. Implementations write
// through the State and report bad input with State.Errorf or a returned error.
type Construct func(s *State, tok *ast.Token) error

// Generator converts token trees into JavaScript. It owns its construct
// registry and debug flag; it is not safe for concurrent configuration.
type Generator struct {
	constructs map[string]Construct
	debug      bool
}

// NewGenerator returns a Generator with the default constructs registered.
func NewGenerator() *Generator {
	var constructs = make(map[string]Construct, len(DefaultConstructs))
	for k, v := range DefaultConstructs {
		constructs[k] = v
	}
	return &Generator{constructs: constructs}
}

// SetDebugMode sets whether each emitted fragment is guarded so that a
// failure is attributed to the line and column of its tag.
func (g *Generator) SetDebugMode(enabled bool) *Generator {
	g.debug = enabled
	return g
}

// DebugMode reports whether debug mode is enabled.
func (g *Generator) DebugMode() bool {
	return g.debug
}

// Register installs the code generator for keyword, replacing any existing
// one. The keyword must be defined in ast.Keywords.
func (g *Generator) Register(keyword string, c Construct) error {
	if _, ok := ast.Keywords[keyword]; !ok {
		return fmt.Errorf("codegen: %q is not a keyword", keyword)
	}
	if c == nil {
		return fmt.Errorf("codegen: nil construct for %q", keyword)
	}
	g.constructs[keyword] = c
	return nil
}

// Generate emits the program for the given tokens.
func (g *Generator) Generate(tokens ast.Tokens) (unit *Unit, err error) {
	defer errRecover(&err)
	var s = &State{
		gen:  g,
		unit: &Unit{},
	}
	s.jsln("(function () {")
	s.indentLevels++
	s.jsln("var ", OutputVar, " = '';")
	s.jsln("try {")
	s.Walk(tokens)
	s.jsln("} catch (__e) {")
	s.indentLevels++
	s.jsln("return ", PreludeName, ".fail(__e, ", quoteString(errortypes.Generic.String()), ", 0, 0);")
	s.indentLevels--
	s.jsln("}")
	s.jsln("return {output: ", OutputVar, "};")
	s.indentLevels--
	s.jsln("})")
	return s.unit, nil
}

// Write generates the program for the given tokens and writes it to out.
func (g *Generator) Write(out io.Writer, tokens ast.Tokens) error {
	var unit, err = g.Generate(tokens)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, unit.String())
	return err
}

// OutputVar is the name of the buffer variable that accumulates output.
const OutputVar = "__output"

// State is the emitter handed to each Construct.
type State struct {
	gen          *Generator
	unit         *Unit
	token        *ast.Token // current token, for errors and line origins
	indentLevels int
	scope        scope
}

// Debug reports whether fragments should be guarded.
func (s *State) Debug() bool {
	return s.gen.debug
}

// Line emits one line of code at the current indentation.
func (s *State) Line(args ...string) {
	s.jsln(args...)
}

// Walk emits the given tokens one nesting level deeper.
func (s *State) Walk(tokens ast.Tokens) {
	var parent = s.token
	s.indentLevels++
	for _, tok := range tokens {
		s.walk(tok)
	}
	s.indentLevels--
	s.token = parent
}

// Var returns a fresh variable name with the given prefix.
func (s *State) Var(prefix string) string {
	return s.scope.makevar("__" + prefix)
}

// Errorf aborts generation with a CompilingError at the current token.
func (s *State) Errorf(kind errortypes.Kind, format string, args ...interface{}) {
	var line, col int
	if s.token != nil {
		line, col = s.token.Line, s.token.Column
	}
	panic(errortypes.NewCompilingError(kind, nil, line, col, format, args...))
}

// Expr returns a JS expression evaluating the snippet expr. In debug mode a
// failure is attributed to the current token with the given kind.
func (s *State) Expr(expr string, kind errortypes.Kind) string {
	if !s.Debug() {
		return "(" + expr + ")"
	}
	return fmt.Sprintf("%s.guard(this, function () { return (%s); }, %s, %d, %d)",
		PreludeName, expr, quoteString(kind.String()), s.token.Line, s.token.Column)
}

// Guarded emits the lines produced by body. In debug mode they are wrapped in
// a try block that attributes a failure to the current token with the given
// kind, unless the failure was already attributed.
func (s *State) Guarded(kind errortypes.Kind, body func()) {
	if !s.Debug() {
		body()
		return
	}
	var tok = s.token
	s.jsln("try {")
	s.indentLevels++
	body()
	s.indentLevels--
	s.token = tok
	s.jsln(fmt.Sprintf("} catch (__e) { throw %s.fail(__e, %s, %d, %d); }",
		PreludeName, quoteString(kind.String()), tok.Line, tok.Column))
}

// walk emits the code for a single token.
func (s *State) walk(tok *ast.Token) {
	s.token = tok
	switch tok.Kind {
	case ast.Markup:
		s.Guarded(errortypes.MarkupRenderingFailed, func() {
			s.jsln(OutputVar, " += ", quoteString(tok.Value), ";")
		})
	case ast.Variable:
		s.Guarded(errortypes.VariableRenderingFailed, func() {
			s.jsln(OutputVar, " += ", PreludeName, ".escapeHtml((", tok.Value, "));")
		})
	case ast.Construct:
		var c, ok = s.gen.constructs[tok.Value]
		if !ok {
			s.Errorf(errortypes.UnknownConstruct, "no code generator for %q", tok.Value)
		}
		if err := c(s, tok); err != nil {
			var cerr *errortypes.CompilingError
			if errors.As(err, &cerr) {
				panic(cerr)
			}
			panic(errortypes.NewCompilingError(errortypes.InvalidArgument, err, tok.Line, tok.Column, ""))
		}
	default:
		s.Errorf(errortypes.InvalidCode, "unknown token kind %v", tok.Kind)
	}
}

// jsln emits the concatenated arguments as one line.
func (s *State) jsln(args ...string) {
	var origin *ast.Token
	if s.Debug() {
		origin = s.token
	}
	s.unit.add(strings.Repeat("  ", s.indentLevels)+strings.Join(args, ""), origin)
}

// errRecover is the handler that turns panics into returns from the top
// level of Generate.
func errRecover(errp *error) {
	var e = recover()
	if e == nil {
		return
	}
	switch e := e.(type) {
	case *errortypes.CompilingError:
		*errp = e
	case error:
		*errp = errortypes.NewCompilingError(errortypes.InvalidCode, e, 0, 0, "")
	default:
		panic(e)
	}
}
