/*
Package bgtl compiles bgtl templates into JavaScript and renders them with an
embedded interpreter.

A template is markup with two kinds of tags:

  {{ expr }}             output expr, HTML-escaped
  {% raw (expr) %}       output expr as is
  {% if (expr) %} ... {% elif (expr) %} ... {% else %} ... {% end %}
  {% foreach (var x as expr) %} ... {% end %}     x is each value
  {% foreach (var k in expr) %} ... {% end %}     k is each index or key

Expressions are JavaScript, evaluated with the render context bound to
"this". A tag opener preceded by a backslash is kept as literal text.

Usage example

  var tmpl, err = bgtl.Compile("Hello {{this.name}}!")
  if err != nil {
      return err
  }
  out, err := tmpl.Render(map[string]interface{}{"name": "<world>"})
  // out == "Hello &lt;world&gt;!"

Errors are *errortypes.LexingError, *errortypes.CompilingError or
*errortypes.RenderingError, and carry the line and column of the tag at fault.
Rendering failures are only attributed to a tag when the template was compiled
in debug mode:

  var tmpl, err = bgtl.New().SetDebugMode(true).Compile(src)

Bundles

In a web application, a directory of templates can be compiled together, and
recompiled as the files change during development:

  registry, _ := bgtl.NewBundle().
      WatchFiles(mode == "dev").   // recompile on changes (in dev)
      AddTemplateDir("views").     // load *.bgtl and *.html in all sub-directories
      Compile()

  out, err := registry.Render("account/overview.html", user)

Advanced Usage

The parse and codegen packages are usable on their own, e.g. to inspect the
token tree or to replace the code generator of a keyword via
Compiler.Register.
*/
package bgtl
