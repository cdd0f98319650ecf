package api

import (
	"errors"
	"fmt"
	"os"

	"inkframe/pkg/export"
	"inkframe/pkg/filter"
)

// Kind classifies session failures.
type Kind int

const (
	KindRenderingFailure Kind = iota + 1
	KindPermissionDenied
	KindFilterFailure
)

func (k Kind) String() string {
	switch k {
	case KindRenderingFailure:
		return "rendering failed"
	case KindPermissionDenied:
		return "permission denied"
	case KindFilterFailure:
		return "filter failed"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a failed session operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Error names the kind only when there is no cause; the wrapped sentinels
// already say it.
func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Op != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// Match any *Error of the same kind with errors.Is.
var (
	ErrRenderingFailure = &Error{Kind: KindRenderingFailure}
	ErrPermissionDenied = &Error{Kind: KindPermissionDenied}
	ErrFilterFailure    = &Error{Kind: KindFilterFailure}
)

var (
	// ErrNoImage is returned when an operation needs an image and none is
	// loaded.
	ErrNoImage = errors.New("no image loaded")

	// ErrSuperseded is reported to async callers whose result was dropped
	// because the image or request changed while it ran.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// wrap classifies err by the package sentinels it carries.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	kind := KindRenderingFailure
	switch {
	case errors.Is(err, export.ErrPermissionDenied), errors.Is(err, os.ErrPermission):
		kind = KindPermissionDenied
	case errors.Is(err, filter.ErrFilterFailed):
		kind = KindFilterFailure
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
