// Package zerror defines the tagged error kinds the planner and engine
// surface (spec.md §4.6). It exists as its own package, below pixel,
// filter, graph, and builder in the dependency order, purely so those
// packages can raise and the root façade can match on error kind without
// an import cycle.
package zerror

import (
	"errors"
	"fmt"
)

// Kind names one of the error categories spec.md §4.6 enumerates.
type Kind string

const (
	OutOfMemory               Kind = "OutOfMemory"
	InvalidImageSize          Kind = "InvalidImageSize"
	GreyscaleSubsampling      Kind = "GreyscaleSubsampling"
	ColorFamilyMismatch       Kind = "ColorFamilyMismatch"
	UnsupportedSubsampling    Kind = "UnsupportedSubsampling"
	ImageNotDivisible         Kind = "ImageNotDivisible"
	BitDepthOverflow          Kind = "BitDepthOverflow"
	NoFieldParityConversion   Kind = "NoFieldParityConversion"
	NoColorspaceConversion    Kind = "NoColorspaceConversion"
	ResamplingNotAvailable    Kind = "ResamplingNotAvailable"
	InternalError             Kind = "InternalError"
	UserCallbackFailed        Kind = "UserCallbackFailed"
)

// Error is a tagged error: a Kind plus a short human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("zimg: %s", e.Kind)
	}
	return fmt.Sprintf("zimg: %s: %s", e.Kind, e.Message)
}

// Is lets errors.Is match any *Error of the same Kind against a bare
// sentinel constructed with New(kind, ""), independent of Message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs a tagged error.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Sentinel returns a bare, message-less error of the given kind, suitable
// for errors.Is comparisons.
func Sentinel(kind Kind) *Error { return &Error{Kind: kind} }

// KindOf extracts the Kind from err if it (or something it wraps) is a
// *Error, reporting ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
