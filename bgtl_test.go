package bgtl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/robertkrimen/otto"
	"github.com/robfig/bgtl/ast"
	"github.com/robfig/bgtl/codegen"
	"github.com/robfig/bgtl/errortypes"
)

type data map[string]interface{}

func jsValue(v interface{}) otto.Value {
	var val, err = otto.ToValue(v)
	if err != nil {
		panic(err)
	}
	return val
}

type renderTest struct {
	name   string
	input  string
	ctx    interface{}
	output string
}

var renderTests = []renderTest{
	{"no tags", "Hello <em>world</em>!\n", nil, "Hello <em>world</em>!\n"},
	{"round trip", "Tõst\"\\", nil, "Tõst\"\\"},
	{"round trip multiline", "a'b\r\nc d\x01", nil, "a'b\r\nc d\x01"},
	{"this", "{{this}}", "<b>", "&lt;b&gt;"},
	{"map context", "Hello {{this.name}}!", data{"name": "<world>"}, "Hello &lt;world&gt;!"},
	{"json context", "{{this.a.b}}", json.RawMessage(`{"a": {"b": "&"}}`), "&amp;"},
	{"otto value context", "{{this + '!'}}", jsValue("x"), "x!"},
	{"nil context", "static {{1 + 1}}", nil, "static 2"},
	{"raw", "{%raw (this.html)%}", data{"html": "<i>x</i>"}, "<i>x</i>"},
	{"escaped tags", `\{{this}} \{%if%}`, "x", `\{{this}} \{%if%}`},

	{"if boolean true", "{%if (this.c)%}A{%end%}", data{"c": true}, "A"},
	{"if boolean false", "{%if (this.c)%}A{%end%}", data{"c": false}, ""},
	{"if non-boolean truthy", "{%if (this.c)%}A{%end%}", data{"c": "yes"}, "A"},
	{"if non-boolean falsy", "{%if (this.c)%}A{%end%}", data{"c": ""}, ""},

	{"chain first", "{%if (this.a)%}A{%elif (this.b)%}B{%else%}C{%end%}", data{"a": 1, "b": 1}, "A"},
	{"chain second", "{%if (this.a)%}A{%elif (this.b)%}B{%else%}C{%end%}", data{"a": 0, "b": 1}, "B"},
	{"chain default", "{%if (this.a)%}A{%elif (this.b)%}B{%else%}C{%end%}", data{"a": 0, "b": 0}, "C"},

	{"foreach array values", "{%foreach (var x as this)%}{{x}}{%end%}", json.RawMessage(`[1, 2, 3]`), "123"},
	{"foreach object values", "{%foreach (var x as this)%}{{x}}{%end%}", json.RawMessage(`{"a": 1, "b": 2}`), "12"},
	{"foreach array indices", "{%foreach (var k in this)%}{{k}}{%end%}", json.RawMessage(`[1, 2, 3]`), "012"},
	{"foreach object keys", "{%foreach (var k in this)%}{{k}}{%end%}", json.RawMessage(`{"a": 1, "b": 2}`), "ab"},

	{"nesting", `{%foreach (var row as this.rows)%}[{%foreach (var cell as row)%}{%if (cell.on)%}{%foreach (var k in cell)%}{{k}}{%end%}{%elif (cell.n > 1)%}{{cell.n}}{%else%}-{%end%}{%end%}]{%end%}`,
		json.RawMessage(`{"rows": [[{"on": true}, {"n": 2}], [{"n": 1}]]}`), "[on2][-]"},
	{"sibling iterations", `{%foreach (var a as this)%}{%foreach (var b as a)%}{{b}}{%end%}{{typeof b}};{%end%}`,
		json.RawMessage(`[[1], [2, 3]]`), "1undefined;23undefined;"},
}

func TestRender(t *testing.T) {
	for _, debug := range []bool{false, true} {
		var c = New().SetDebugMode(debug)
		for _, test := range renderTests {
			var tmpl, err = c.Compile(test.input)
			if err != nil {
				t.Errorf("%s (debug=%v): compile error: %v", test.name, debug, err)
				continue
			}
			out, err := tmpl.Render(test.ctx)
			if err != nil {
				t.Errorf("%s (debug=%v): render error: %v", test.name, debug, err)
				continue
			}
			if out != test.output {
				t.Errorf("%s (debug=%v): expected %q, got %q", test.name, debug, test.output, out)
			}
		}
	}
}

func TestCompileErrors(t *testing.T) {
	var tests = []struct {
		name      string
		input     string
		debug     bool
		lexing    bool
		kind      errortypes.Kind
		line, col int
	}{
		{"unterminated block", "ab\n {%if (true)%}x", false, true, errortypes.MissingClosingConstruct, 2, 2},
		{"invalid keyword", "{{1}}\n\n   {%bogus%}", false, true, errortypes.InvalidKeyword, 3, 4},
		{"missing delimiter", "x {{ this", false, true, errortypes.MissingDelimiter, 1, 3},
		{"foreach header", "\n{%foreach (x)%}{%end%}", false, false, errortypes.InvalidArgument, 2, 1},
		{"syntax error with debug", "ok\nx{{ a + }}", true, false, errortypes.InvalidCode, 2, 2},
		{"syntax error in construct", "{%if (true)%}\n  {%raw (]) %}{%end%}", true, false, errortypes.InvalidCode, 2, 3},
		{"syntax error without debug", "ok\nx{{ a + }}", false, false, errortypes.InvalidCode, 0, 0},
	}
	for _, test := range tests {
		var _, err = New().SetDebugMode(test.debug).Compile(test.input)
		if err == nil {
			t.Errorf("%s: expected an error", test.name)
			continue
		}
		var lerr *errortypes.LexingError
		var cerr *errortypes.CompilingError
		var kind errortypes.Kind
		switch {
		case errors.As(err, &lerr) && test.lexing:
			kind = lerr.Kind
		case errors.As(err, &cerr) && !test.lexing:
			kind = cerr.Kind
		default:
			t.Errorf("%s: unexpected error type %T: %v", test.name, err, err)
			continue
		}
		var pos = errortypes.ToErrFilePos(err)
		if kind != test.kind || pos.Line() != test.line || pos.Col() != test.col {
			t.Errorf("%s: expected %v at %d:%d, got %v", test.name, test.kind, test.line, test.col, err)
		}
	}
}

func TestRenderErrors(t *testing.T) {
	var src = "Hi\n  {{this.explode()}}"
	var ctx = json.RawMessage(`{}`)

	var tmpl, err = New().SetDebugMode(true).Compile(src)
	if err != nil {
		t.Fatal(err)
	}
	_, err = tmpl.Render(ctx)
	var rerr *errortypes.RenderingError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected a RenderingError, got %T: %v", err, err)
	}
	if rerr.Kind != errortypes.VariableRenderingFailed || rerr.Line() != 2 || rerr.Col() != 3 {
		t.Errorf("unexpected error: %v", rerr)
	}
	if !strings.HasPrefix(rerr.Error(), "Rendering failed on line 2 at column 3: ") ||
		!strings.Contains(rerr.Error(), "TypeError") {
		t.Errorf("unexpected message: %v", rerr)
	}

	tmpl, err = Compile(src)
	if err != nil {
		t.Fatal(err)
	}
	_, err = tmpl.Render(ctx)
	if !errors.As(err, &rerr) {
		t.Fatalf("expected a RenderingError, got %T: %v", err, err)
	}
	if rerr.Kind != errortypes.Generic || rerr.Line() != 0 || rerr.Col() != 0 || rerr.Unwrap() == nil {
		t.Errorf("unexpected error: %v", rerr)
	}

	// The template stays usable after a failed render.
	out, err := tmpl.Render(json.RawMessage(`{"explode": 1}`))
	if err == nil {
		t.Errorf("expected calling a number to fail, got %q", out)
	}
	tmpl, _ = Compile("{{this.x}}")
	if out, err = tmpl.Render(data{"x": 1}); err != nil || out != "1" {
		t.Errorf("expected 1, got %q, %v", out, err)
	}

	_, err = tmpl.Render(json.RawMessage(`{"x": `))
	if !errors.As(err, &rerr) || rerr.Kind != errortypes.Generic {
		t.Errorf("expected a Generic RenderingError for a malformed context, got %v", err)
	}
}

func TestIdempotence(t *testing.T) {
	var src = "{%foreach (var k in this)%}{{k}}={%raw (this[k])%};{%end%}"
	var ctx = json.RawMessage(`{"a": "<1>", "b": [2]}`)
	var t1, err1 = Compile(src)
	var t2, err2 = Compile(src)
	if err1 != nil || err2 != nil {
		t.Fatal(err1, err2)
	}
	if t1.Source() != t2.Source() {
		t.Errorf("generated code differs:\n%s\n%s", t1.Source(), t2.Source())
	}
	var o1, _ = t1.Render(ctx)
	var o2, _ = t2.Render(ctx)
	if o1 != o2 || o1 != "a=<1>;b=2;" {
		t.Errorf("expected identical output, got %q and %q", o1, o2)
	}
}

func TestConcurrentRender(t *testing.T) {
	var tmpl, err = New().SetDebugMode(true).Compile(
		"{%foreach (var i as this.items)%}{{this.prefix}}{{i}}{%end%}")
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	var errs = make(chan error, 32)
	for n := 0; n < cap(errs); n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			var ctx = json.RawMessage(fmt.Sprintf(`{"prefix": "%d:", "items": [1, 2]}`, n))
			var out, err = tmpl.Render(ctx)
			if err != nil {
				errs <- err
				return
			}
			if expected := fmt.Sprintf("%d:1%d:2", n, n); out != expected {
				errs <- fmt.Errorf("expected %q, got %q", expected, out)
			}
		}(n)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestGenerate(t *testing.T) {
	var buf bytes.Buffer
	if err := New().Generate(&buf, "Hi {{this}}"); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), codegen.Prelude) {
		t.Errorf("expected the prelude first")
	}

	var vm = otto.New()
	fn, err := vm.Run(buf.String())
	if err != nil {
		t.Fatalf("generated code does not run: %v\n%s", err, buf.String())
	}
	result, err := fn.Call(jsValue("there"))
	if err != nil {
		t.Fatal(err)
	}
	output, _ := result.Object().Get("output")
	if output.String() != "Hi there" {
		t.Errorf("expected %q, got %q", "Hi there", output.String())
	}

	if err := New().Generate(&buf, "{%end%}"); err == nil {
		t.Errorf("expected an error for a stray end")
	}
}

func TestRegister(t *testing.T) {
	var c = New()
	var err = c.Register(ast.Raw, func(s *codegen.State, tok *ast.Token) error {
		s.Line(codegen.OutputVar, " += '[' + (", tok.Arg, ") + ']';")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	var tmpl, _ = c.Compile("{%raw (this)%}")
	if out, _ := tmpl.Render("x"); out != "[x]" {
		t.Errorf("expected [x], got %q", out)
	}
	if err = c.Register("include", nil); err == nil {
		t.Errorf("expected an error for an unknown keyword")
	}

	// Other compilers keep the defaults.
	tmpl, _ = Compile("{%raw (this)%}")
	if out, _ := tmpl.Render("x"); out != "x" {
		t.Errorf("expected x, got %q", out)
	}
}
