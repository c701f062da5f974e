package errortypes_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/robfig/bgtl/errortypes"
)

func TestIsErrFilePos(t *testing.T) {
	var tests = []struct {
		name string
		in   error
		out  bool
	}{
		{
			name: "nil",
			out:  false,
		},
		{
			name: "errors.New",
			in:   errors.New("an error"),
			out:  false,
		},
		{
			name: "lexing error",
			in:   errortypes.NewLexingError(errortypes.InvalidKeyword, 1, 2, "message"),
			out:  true,
		},
		{
			name: "wrapped rendering error",
			in:   fmt.Errorf("page.html: %w", errortypes.NewRenderingError(errortypes.Generic, nil, 0, 0, "")),
			out:  true,
		},
	}
	for _, test := range tests {
		got := errortypes.IsErrFilePos(test.in)
		if got != test.out {
			t.Errorf("%s: Expected %v, got %v", test.name, test.out, got)
		}
	}
}

func TestToErrFilePos(t *testing.T) {
	var tests = []struct {
		name         string
		in           error
		expectNil    bool
		expectedLine int
		expectedCol  int
	}{
		{
			name:      "nil",
			expectNil: true,
		},
		{
			name:      "errors.New",
			in:        errors.New("an error"),
			expectNil: true,
		},
		{
			name:         "compiling error",
			in:           errortypes.NewCompilingError(errortypes.InvalidArgument, nil, 3, 7, "message"),
			expectedLine: 3,
			expectedCol:  7,
		},
		{
			name:         "wrapped",
			in:           fmt.Errorf("outer: %w", errortypes.NewLexingError(errortypes.MissingDelimiter, 10, 4, "")),
			expectedLine: 10,
			expectedCol:  4,
		},
	}
	for _, test := range tests {
		got := errortypes.ToErrFilePos(test.in)
		if test.expectNil {
			if got != nil {
				t.Errorf("%s: Expected nil, got %v", test.name, got)
			}
			continue
		}
		if got == nil {
			t.Errorf("%s: Expected non-nil", test.name)
			continue
		}
		if got.Line() != test.expectedLine || got.Col() != test.expectedCol {
			t.Errorf("%s: Expected %d:%d, got %d:%d", test.name,
				test.expectedLine, test.expectedCol, got.Line(), got.Col())
		}
	}
}
