package stream

import "errors"

// Stream error kinds. Match them with errors.Is.
var (
	ErrOpen        = errors.New("stream: open failed")
	ErrAlreadyOpen = errors.New("stream: already open")
	ErrRead        = errors.New("stream: read failed")
	ErrWrite       = errors.New("stream: write failed")
	ErrSeek        = errors.New("stream: seek failed")
)

// Error is the result of a failed stream operation.
// Kind is one of the ErrXxx sentinels; Err is the underlying cause, if any.
type Error struct {
	Kind error
	Path string
	Err  error
}

func newError(kind error, path string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Err: cause}
}

// Error formats the failure as "<kind> (<path>): <cause>".
func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
