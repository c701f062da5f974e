// Package errortypes defines the errors raised while lexing, compiling and
// rendering templates. Each carries the line and column of the template tag
// it is attributed to, or 0/0 when no attribution is possible.
package errortypes

import (
	"fmt"
	"strconv"
)

// Kind is the reason of a failure within its phase.
type Kind int

const (
	// Lexing
	MissingDelimiter Kind = iota + 1
	InvalidConstructSyntax
	InvalidKeyword
	MissingArgument
	UnexpectedArgument
	MissingClosingConstruct

	// Compiling
	InvalidArgument
	InvalidCode
	UnknownConstruct

	// Rendering
	Generic
	IfRenderingFailed
	ElifRenderingFailed
	ForeachRenderingFailed
	RawRenderingFailed
	MarkupRenderingFailed
	VariableRenderingFailed
)

var kindNames = map[Kind]string{
	MissingDelimiter:        "MissingDelimiter",
	InvalidConstructSyntax:  "InvalidConstructSyntax",
	InvalidKeyword:          "InvalidKeyword",
	MissingArgument:         "MissingArgument",
	UnexpectedArgument:      "UnexpectedArgument",
	MissingClosingConstruct: "MissingClosingConstruct",
	InvalidArgument:         "InvalidArgument",
	InvalidCode:             "InvalidCode",
	UnknownConstruct:        "UnknownConstruct",
	Generic:                 "Generic",
	IfRenderingFailed:       "IfRenderingFailed",
	ElifRenderingFailed:     "ElifRenderingFailed",
	ForeachRenderingFailed:  "ForeachRenderingFailed",
	RawRenderingFailed:      "RawRenderingFailed",
	MarkupRenderingFailed:   "MarkupRenderingFailed",
	VariableRenderingFailed: "VariableRenderingFailed",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind returns the Kind of the given name, or Generic if it is unknown.
func ParseKind(name string) Kind {
	for k, v := range kindNames {
		if v == name {
			return k
		}
	}
	return Generic
}

// filePos is the shape shared by all three phases.
type filePos struct {
	Kind  Kind
	Msg   string
	Cause error
	line  int
	col   int
}

func (e *filePos) Line() int {
	return e.line
}

func (e *filePos) Col() int {
	return e.col
}

// Unwrap returns the wrapped cause, if any.
func (e *filePos) Unwrap() error {
	return e.Cause
}

func (e *filePos) format(phase string) string {
	var msg = fmt.Sprintf("%s failed on line %d at column %d", phase, e.line, e.col)
	var detail = e.Msg
	switch {
	case detail != "" && e.Cause != nil:
		detail += ": " + e.Cause.Error()
	case e.Cause != nil:
		detail = e.Cause.Error()
	}
	if detail != "" {
		msg += ": " + detail
	}
	return msg
}

func newFilePos(kind Kind, cause error, line, col int, format string, args []interface{}) filePos {
	var msg = format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return filePos{Kind: kind, Msg: msg, Cause: cause, line: line, col: col}
}

// LexingError reports malformed template syntax.
type LexingError struct{ filePos }

func (e *LexingError) Error() string { return e.format("Lexing") }

// NewLexingError creates a LexingError at the given position.
func NewLexingError(kind Kind, line, col int, format string, args ...interface{}) *LexingError {
	return &LexingError{newFilePos(kind, nil, line, col, format, args)}
}

// CompilingError reports a construct that could not be turned into code, or
// generated code that could not be turned into a callable.
type CompilingError struct{ filePos }

func (e *CompilingError) Error() string { return e.format("Compiling") }

// NewCompilingError creates a CompilingError at the given position, wrapping
// cause (which may be nil).
func NewCompilingError(kind Kind, cause error, line, col int, format string, args ...interface{}) *CompilingError {
	return &CompilingError{newFilePos(kind, cause, line, col, format, args)}
}

// RenderingError reports a failure while rendering a compiled template. Kind
// names the construct that failed and is meant for diagnostics only.
type RenderingError struct{ filePos }

func (e *RenderingError) Error() string { return e.format("Rendering") }

// NewRenderingError creates a RenderingError at the given position, wrapping
// cause (which may be nil).
func NewRenderingError(kind Kind, cause error, line, col int, format string, args ...interface{}) *RenderingError {
	return &RenderingError{newFilePos(kind, cause, line, col, format, args)}
}
