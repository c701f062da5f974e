/*
Package bgtlweb is a simple development server that serves the given template.

Invoke it like so:

  go get github.com/robfig/bgtl/bgtlweb
  bgtlweb test.bgtl

The template is recompiled on every request, and rendered with an object
holding the URL query parameters as its context, so that

  http://localhost:9812/?name=Rob

renders {{this.name}} as "Rob".
*/
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/robfig/bgtl"
)

var (
	port  = flag.Int("port", 9812, "port on which to listen")
	debug = flag.Bool("debug", true, "attribute rendering errors to template tags")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("usage: bgtlweb [flags] template")
	}
	fmt.Print("Listening on :", *port, "...")
	log.Fatal(http.ListenAndServe(
		fmt.Sprintf(":%d", *port),
		handler(flag.Arg(0), *debug)))
}

func handler(filename string, debug bool) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		var registry, err = bgtl.NewBundle().
			SetCompiler(bgtl.New().SetDebugMode(debug)).
			AddTemplateFile(filename).
			Compile()
		if err != nil {
			http.Error(res, err.Error(), 500)
			return
		}

		var m = make(map[string]string)
		for k, v := range req.URL.Query() {
			m[k] = v[0]
		}

		out, err := registry.Render(filename, m)
		if err != nil {
			bgtl.Logger.Println(err)
			http.Error(res, err.Error(), 500)
			return
		}

		res.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.Copy(res, bytes.NewBufferString(out))
	}
}
