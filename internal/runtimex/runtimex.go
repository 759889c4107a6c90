// Package runtimex contains helpers to turn unrecoverable errors into
// panics. Commands recover these panics in main and exit non-zero.
package runtimex

import (
	"errors"
	"fmt"
)

// ErrFatal wraps every panic value raised by this package.
var ErrFatal = errors.New("fatal error")

// PanicOnError calls panic() if err is not nil. The panic value is an
// error wrapping both [ErrFatal] and err.
func PanicOnError(err error, message string) {
	if err != nil {
		panic(fmt.Errorf("%w: %s: %w", ErrFatal, message, err))
	}
}

// Try1 returns v if err is nil and panics otherwise.
func Try1[T any](v T, err error) T {
	PanicOnError(err, "Try1")
	return v
}

// Recover converts a panic raised by this package back into an error
// and stores it into *errp. Other panics propagate. Use it as
//
//	defer runtimex.Recover(&err)
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if err, ok := r.(error); ok && errors.Is(err, ErrFatal) {
		*errp = err
		return
	}
	panic(r)
}
