package errortypes

import "errors"

// ErrFilePos extends the error interface to add details on the template
// position where the error occurred.
type ErrFilePos interface {
	error
	Line() int
	Col() int
}

// IsErrFilePos identifies whether or not the provided error, or any error it
// wraps, is of the ErrFilePos type.
func IsErrFilePos(err error) bool {
	return ToErrFilePos(err) != nil
}

// ToErrFilePos converts the input error to an ErrFilePos if possible, or nil if not.
// If IsErrFilePos returns true, this will not return nil.
func ToErrFilePos(err error) ErrFilePos {
	if err == nil {
		return nil
	}
	var out ErrFilePos
	if errors.As(err, &out) {
		return out
	}
	return nil
}

var (
	_ ErrFilePos = &LexingError{}
	_ ErrFilePos = &CompilingError{}
	_ ErrFilePos = &RenderingError{}
)
