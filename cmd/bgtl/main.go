/*
Command bgtl renders a template file to standard output.

Invoke it like so:

  bgtl [-debug] [-js] [-data context.json] [-o page.html] [-watch] page.bgtl

The context bound to "this" is read as JSON from the -data file, if given.
With -js the generated JavaScript is printed instead. With -watch the template
is rendered again every time the file changes. With -o the output replaces
the named file atomically, so readers never see a partial render.
*/
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/robfig/bgtl"
)

var (
	debug    = flag.Bool("debug", false, "attribute rendering errors to template tags")
	genJS    = flag.Bool("js", false, "print the generated JavaScript instead of rendering")
	dataFile = flag.String("data", "", "JSON file holding the render context")
	watch    = flag.Bool("watch", false, "render again whenever the template changes")
	output   = flag.String("o", "", "write the output to this file instead of stdout")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: bgtl [flags] template")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	var filename = flag.Arg(0)
	var compiler = bgtl.New().SetDebugMode(*debug)

	if *genJS {
		var source, err = ioutil.ReadFile(filename)
		if err != nil {
			bgtl.Logger.Fatal(err)
		}
		if err = compiler.Generate(os.Stdout, string(source)); err != nil {
			bgtl.Logger.Fatalf("%s: %v", filename, err)
		}
		return
	}

	var context interface{}
	if *dataFile != "" {
		var raw, err = ioutil.ReadFile(*dataFile)
		if err != nil {
			bgtl.Logger.Fatal(err)
		}
		if !json.Valid(raw) {
			bgtl.Logger.Fatalf("%s: invalid JSON", *dataFile)
		}
		context = json.RawMessage(raw)
	}

	var bundle = bgtl.NewBundle().
		SetCompiler(compiler).
		WatchFiles(*watch).
		SetRecompilationCallback(func(r *bgtl.Registry) {
			render(r, filename, context)
		}).
		AddTemplateFile(filename)
	var registry, err = bundle.Compile()
	if err != nil {
		bgtl.Logger.Fatal(err)
	}
	if !render(registry, filename, context) && !*watch {
		os.Exit(1)
	}
	if *watch {
		select {}
	}
}

func render(registry *bgtl.Registry, name string, context interface{}) bool {
	var out, err = registry.Render(name, context)
	if err != nil {
		bgtl.Logger.Println(err)
		return false
	}
	if *output == "" {
		fmt.Print(out)
		return true
	}
	if err = atomic.WriteFile(*output, strings.NewReader(out)); err != nil {
		bgtl.Logger.Println(err)
		return false
	}
	bgtl.Logger.Printf("wrote %s", *output)
	return true
}
