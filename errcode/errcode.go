package errcode

import "errors"

// Code is a stable, log-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }
func (c Code) Code() Code    { return c }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Radio or peripheral call failed.
	AdapterError Code = "adapter_error"
	// Pin operation failed after acquisition.
	InvalidState Code = "invalid_state"
	// Task start or queue plumbing failed.
	Unexpected Code = "unexpected"

	QueueClosed   Code = "queue_closed"
	QueueFull     Code = "queue_full"
	UnsetHandle   Code = "unset_handle"
	InvalidConfig Code = "invalid_config"
	InvalidParams Code = "invalid_params"

	UnknownPin  Code = "unknown_pin"
	PinInUse    Code = "pin_in_use"
	Unsupported Code = "unsupported"

	Error Code = "error" // generic fallback
)

// E keeps an operation name and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Wrap returns nil when err is nil.
func Wrap(c Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: c, Op: op, Err: err}
}

// New builds an E without a cause.
func New(c Code, op, msg string) error {
	return &E{C: c, Op: op, Msg: msg}
}

// Of extracts a Code from an error chain, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	return Error
}
