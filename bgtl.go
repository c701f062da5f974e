package bgtl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/robertkrimen/otto"
	"github.com/robertkrimen/otto/parser"
	"github.com/robfig/bgtl/codegen"
	"github.com/robfig/bgtl/errortypes"
	"github.com/robfig/bgtl/parse"
)

// templateVar is the global holding the compiled template function inside
// each Template's VM.
const templateVar = "__bgtlTemplate"

// Compiler turns template source into Templates. Its configuration must not be
// changed while it is compiling.
type Compiler struct {
	gen *codegen.Generator
}

// New returns a Compiler with the default constructs and debug mode off.
func New() *Compiler {
	return &Compiler{gen: codegen.NewGenerator()}
}

// SetDebugMode sets whether compiled templates attribute rendering failures
// to the tag that caused them. It costs a guard around every fragment.
func (c *Compiler) SetDebugMode(enabled bool) *Compiler {
	c.gen.SetDebugMode(enabled)
	return c
}

// DebugMode reports whether debug mode is enabled.
func (c *Compiler) DebugMode() bool {
	return c.gen.DebugMode()
}

// Register replaces the code generator of a built-in keyword.
func (c *Compiler) Register(keyword string, construct codegen.Construct) error {
	return c.gen.Register(keyword, construct)
}

// Generate writes the JavaScript for source to w: the runtime prelude followed
// by the template function expression.
func (c *Compiler) Generate(w io.Writer, source string) error {
	var unit, err = c.generate(source)
	if err != nil {
		return err
	}
	if _, err = io.WriteString(w, codegen.Prelude); err != nil {
		return err
	}
	_, err = io.WriteString(w, unit.String()+"\n")
	return err
}

func (c *Compiler) generate(source string) (*codegen.Unit, error) {
	var tokens, err = parse.Tokenize(source)
	if err != nil {
		return nil, err
	}
	return c.gen.Generate(tokens)
}

// Compile lexes, generates and evaluates source, returning a Template ready to
// be rendered.
func (c *Compiler) Compile(source string) (*Template, error) {
	var unit, err = c.generate(source)
	if err != nil {
		return nil, err
	}

	var vm = otto.New()
	if _, err = vm.Run(codegen.Prelude); err != nil {
		return nil, errortypes.NewCompilingError(errortypes.InvalidCode, err, 0, 0, "prelude")
	}
	var js = unit.String()
	script, err := vm.Compile("", js)
	if err != nil {
		return nil, syntaxError(unit, err)
	}
	fn, err := vm.Run(script)
	if err != nil {
		return nil, errortypes.NewCompilingError(errortypes.InvalidCode, err, 0, 0, "")
	}
	if !fn.IsFunction() {
		return nil, errortypes.NewCompilingError(errortypes.InvalidCode, nil, 0, 0,
			"generated code evaluated to %v, not a function", fn.Class())
	}
	if err = vm.Set(templateVar, fn); err != nil {
		return nil, errortypes.NewCompilingError(errortypes.InvalidCode, err, 0, 0, "")
	}
	return &Template{source: js, vm: vm}, nil
}

// syntaxError attributes a JS syntax error to the token that produced the
// offending line. Without debug mode there are no origins and it lands at 0/0.
func syntaxError(unit *codegen.Unit, err error) error {
	var line int
	switch e := err.(type) {
	case parser.ErrorList:
		if len(e) > 0 {
			line = e[0].Position.Line
		}
	case *parser.Error:
		line = e.Position.Line
	}
	if tok := unit.Origin(line); tok != nil {
		return errortypes.NewCompilingError(errortypes.InvalidCode, err, tok.Line, tok.Column,
			"invalid %v %q", tok.Kind, tok.Value)
	}
	return errortypes.NewCompilingError(errortypes.InvalidCode, err, 0, 0, "")
}

// Compile compiles source with a default Compiler.
func Compile(source string) (*Template, error) {
	return New().Compile(source)
}

// Template is a compiled template. It is immutable and safe for concurrent
// use: every Render works on its own copy of the prepared VM.
type Template struct {
	source string

	mu sync.Mutex // guards copying vm
	vm *otto.Otto
}

// Source returns the generated JavaScript function expression.
func (t *Template) Source() string {
	return t.source
}

// Render executes the template with context bound as "this".
//
// The context may be an otto.Value, a json.RawMessage (parsed as JSON) or any
// Go value otto can convert. A nil context renders with a null "this".
func (t *Template) Render(context interface{}) (output string, err error) {
	defer renderRecover(&err)

	t.mu.Lock()
	var vm = t.vm.Copy()
	t.mu.Unlock()

	this, err := toValue(vm, context)
	if err != nil {
		return "", errortypes.NewRenderingError(errortypes.Generic, err, 0, 0, "invalid context")
	}
	fn, err := vm.Get(templateVar)
	if err != nil {
		return "", errortypes.NewRenderingError(errortypes.Generic, err, 0, 0, "")
	}
	result, err := fn.Call(this)
	if err != nil {
		return "", errortypes.NewRenderingError(errortypes.Generic, err, 0, 0, "")
	}
	return decodeResult(result)
}

func toValue(vm *otto.Otto, context interface{}) (otto.Value, error) {
	switch ctx := context.(type) {
	case nil:
		return otto.NullValue(), nil
	case otto.Value:
		return ctx, nil
	case json.RawMessage:
		if !json.Valid(ctx) {
			return otto.UndefinedValue(), errors.New("malformed JSON context")
		}
		return vm.Call("JSON.parse", nil, string(ctx))
	}
	return vm.ToValue(context)
}

// decodeResult reads either {output} or a failure record.
func decodeResult(result otto.Value) (string, error) {
	if !result.IsObject() {
		return "", errortypes.NewRenderingError(errortypes.Generic, nil, 0, 0,
			"template returned %v", result)
	}
	var obj = result.Object()
	if failed, _ := obj.Get("__bgtlFailure"); failed.IsBoolean() {
		if ok, _ := failed.ToBoolean(); ok {
			var reason, _ = obj.Get("reason")
			var line, _ = obj.Get("line")
			var col, _ = obj.Get("column")
			var message, _ = obj.Get("message")
			var l, _ = line.ToInteger()
			var c, _ = col.ToInteger()
			return "", errortypes.NewRenderingError(errortypes.ParseKind(reason.String()),
				errors.New(message.String()), int(l), int(c), "")
		}
	}
	var output, _ = obj.Get("output")
	return output.String(), nil
}

// renderRecover turns a panic inside the VM into a Generic RenderingError.
func renderRecover(errp *error) {
	var e = recover()
	if e == nil {
		return
	}
	switch e := e.(type) {
	case error:
		*errp = errortypes.NewRenderingError(errortypes.Generic, e, 0, 0, "")
	default:
		*errp = errortypes.NewRenderingError(errortypes.Generic, fmt.Errorf("%v", e), 0, 0, "")
	}
}
