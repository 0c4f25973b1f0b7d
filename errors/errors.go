// Package zqe attaches a Kind to errors raised while compiling or running a
// query so callers can tell a shape the compiler declines from a defect.
package zqe

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// A Kind classifies an error.  Unsupported errors send a shape to the
// interpreter.  Internal errors are compiler defects and surface as panics.
type Kind int

const (
	Other Kind = iota
	Invalid
	Unsupported
	Internal
)

func (k Kind) String() string {
	switch k {
	case Other:
		return "other error"
	case Invalid:
		return "invalid operation"
	case Unsupported:
		return "unsupported query shape"
	case Internal:
		return "internal compiler error"
	}
	return "unknown error kind"
}

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	var parts []string
	if e.Kind != Other {
		parts = append(parts, e.Kind.String())
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if len(parts) == 0 {
		return "no error"
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message is Error without the Kind prefix.
func (e *Error) Message() string {
	switch {
	case e.Err != nil:
		return e.Err.Error()
	case e.Kind != Other:
		return e.Kind.String()
	}
	return "no error"
}

// E builds an *Error from a Kind, a wrapped error, and a format string with
// its arguments, in that order.  Each piece is optional but the format, when
// present, comes last and may use %w.
func E(args ...any) error {
	if len(args) == 0 {
		panic("zqe.E called without arguments")
	}
	e := &Error{}
	for i, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
		case error:
			e.Err = arg
		case string:
			e.Err = fmt.Errorf(arg, args[i+1:]...)
			return e
		default:
			_, file, line, _ := runtime.Caller(1)
			return fmt.Errorf("zqe.E: unexpected %T argument %v at %s:%d", arg, arg, file, line)
		}
	}
	return e
}

// KindOf returns the Kind of the outermost *Error in err's chain or Other.
func KindOf(err error) Kind {
	var zerr *Error
	if errors.As(err, &zerr) {
		return zerr.Kind
	}
	return Other
}

// IsKind reports whether err wraps a zqe error of kind k.
func IsKind(err error, k Kind) bool {
	var zerr *Error
	return errors.As(err, &zerr) && zerr.Kind == k
}

func IsUnsupported(err error) bool {
	return IsKind(err, Unsupported)
}

// Recovered turns a value caught by recover into an Internal error.  Errors
// that already carry a Kind keep it.
func Recovered(r any) error {
	if err, ok := r.(error); ok {
		if KindOf(err) != Other {
			return err
		}
		return E(Internal, err)
	}
	return E(Internal, "panic: %v", r)
}
