package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

// Error is a service failure of a known kind. Its message is safe to return
// to API callers.
type Error struct {
	Op   string
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Unwrap lets errors.Is match the kind.
func (e *Error) Unwrap() error { return e.Kind }

func newKind(op string, kind error, msg string) error {
	return &Error{Op: op, Kind: kind, Msg: msg}
}

func invalid(op, msg string) error { return newKind(op, ErrValidation, msg) }

func notFound(op, msg string) error { return newKind(op, ErrNotFound, msg) }
