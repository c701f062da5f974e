package bgtl

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Logger is used to print notifications and compile errors when using the
// "WatchFiles" feature.
var Logger = log.New(os.Stderr, "[bgtl] ", 0)

// TemplateExtensions are the file suffixes picked up by AddTemplateDir.
var TemplateExtensions = []string{".bgtl", ".html"}

type templateFile struct {
	name, content string
	path          string // empty for templates added as strings
}

// Bundle is a collection of templates compiled together by one Compiler.
type Bundle struct {
	files                 []templateFile
	compiler              *Compiler
	encoding              encoding.Encoding
	err                   error
	watcher               *fsnotify.Watcher
	recompilationCallback func(*Registry)
}

// NewBundle returns an empty bundle using a default Compiler.
func NewBundle() *Bundle {
	return &Bundle{compiler: New()}
}

// SetCompiler sets the Compiler used by Compile, e.g. one in debug mode.
func (b *Bundle) SetCompiler(c *Compiler) *Bundle {
	b.compiler = c
	return b
}

// SetEncoding sets the character encoding of template files added after it,
// by its WHATWG name (e.g. "windows-1252"). Files are UTF-8 by default.
func (b *Bundle) SetEncoding(name string) *Bundle {
	var enc, err = htmlindex.Get(name)
	if err != nil {
		b.err = fmt.Errorf("encoding %q: %w", name, err)
		return b
	}
	b.encoding = enc
	return b
}

// WatchFiles tells the bundle to watch any template files added to it,
// recompile as necessary, and swap the results into the Registry returned by
// Compile. It should be called once, before adding any files.
func (b *Bundle) WatchFiles(watch bool) *Bundle {
	if watch && b.err == nil && b.watcher == nil {
		b.watcher, b.err = fsnotify.NewWatcher()
	}
	return b
}

// AddTemplateDir adds all template files found within the given directory
// (including sub-directories) to the bundle. Each is named by its path
// relative to root, with forward slashes.
func (b *Bundle) AddTemplateDir(root string) *Bundle {
	var err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isTemplateFile(path) {
			return nil
		}
		var rel, _ = filepath.Rel(root, path)
		b.addFile(filepath.ToSlash(rel), path)
		return nil
	})
	if err != nil {
		b.err = err
	}
	return b
}

func isTemplateFile(path string) bool {
	for _, ext := range TemplateExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// AddTemplateFile adds the given template file, named by its path.
// If WatchFiles is on, it will be subsequently watched for updates.
func (b *Bundle) AddTemplateFile(filename string) *Bundle {
	return b.addFile(filename, filename)
}

func (b *Bundle) addFile(name, path string) *Bundle {
	content, err := b.readFile(path)
	if err != nil {
		b.err = err
	}
	if b.err == nil && b.watcher != nil {
		b.err = b.watcher.Add(path)
	}
	b.files = append(b.files, templateFile{name: name, content: content, path: path})
	return b
}

func (b *Bundle) readFile(path string) (string, error) {
	content, err := ioutil.ReadFile(path)
	if err != nil {
		return "", err
	}
	if b.encoding != nil {
		if content, err = b.encoding.NewDecoder().Bytes(content); err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
	}
	return string(content), nil
}

// AddTemplateString adds the given template to the bundle under name.
func (b *Bundle) AddTemplateString(name, source string) *Bundle {
	b.files = append(b.files, templateFile{name: name, content: source})
	return b
}

// SetRecompilationCallback assigns the bundle a function to call after
// recompilation. This is called before updating the in-use registry.
func (b *Bundle) SetRecompilationCallback(c func(*Registry)) *Bundle {
	b.recompilationCallback = c
	return b
}

// Compile compiles every template in the bundle. Errors are prefixed with the
// template name and keep their type for errors.As.
func (b *Bundle) Compile() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}
	var registry, err = b.compile()
	if err != nil {
		return nil, err
	}
	if b.watcher != nil {
		go b.recompiler(registry)
	}
	return registry, nil
}

func (b *Bundle) compile() (*Registry, error) {
	var registry = newRegistry()
	for _, f := range b.files {
		if _, ok := registry.templates[f.name]; ok {
			return nil, fmt.Errorf("template %q is defined twice", f.name)
		}
		var t, err = b.compiler.Compile(f.content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		registry.templates[f.name] = t
	}
	return registry, nil
}

// reload re-reads every file-backed template.
func (b *Bundle) reload() error {
	for i, f := range b.files {
		if f.path == "" {
			continue
		}
		var content, err = b.readFile(f.path)
		if err != nil {
			return err
		}
		b.files[i].content = content
	}
	return nil
}

func (b *Bundle) recompiler(reg *Registry) {
	for {
		select {
		case ev, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			// If it's a rename, then fsnotify has removed the watch.
			// Add it back, after a delay.
			if ev.Op&(fsnotify.Rename|fsnotify.Remove) != 0 {
				time.Sleep(10 * time.Millisecond)
				if err := b.watcher.Add(ev.Name); err != nil {
					Logger.Println(err)
				}
			}

			if err := b.reload(); err != nil {
				Logger.Println(err)
				continue
			}
			var registry, err = b.compile()
			if err != nil {
				Logger.Println(err)
				continue
			}

			if b.recompilationCallback != nil {
				b.recompilationCallback(registry)
			}
			reg.replace(registry)
			Logger.Printf("update successful (%v)", ev)

		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			Logger.Println(err)
		}
	}
}

// Close stops watching files.
func (b *Bundle) Close() error {
	if b.watcher == nil {
		return nil
	}
	return b.watcher.Close()
}
