package wiring

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies the kind of a wiring error. It is comparable and
// implements error, so errors.Is(err, ErrIllegalMode) works on any error
// returned by this package.
type Code string

func (c Code) Error() string { return string(c) }

const (
	// ErrConfiguration: the operation is not allowed under the library's
	// Configuration.
	ErrConfiguration Code = "configuration_error"
	// ErrIllegalMode: the operation is not allowed in the pin's current mode.
	ErrIllegalMode Code = "illegal_mode"
	// ErrHardwareFailure: the hardware driver reported a failure status.
	ErrHardwareFailure Code = "hardware_failure"
)

// Error carries the context of a failed call. Pin is -1 for operations not
// bound to a pin; Status holds the raw driver status for hardware failures.
type Error struct {
	Code   Code
	Op     string
	Pin    int
	Status int
	Msg    string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("wiring: ")
	b.WriteString(e.Op)
	if e.Pin >= 0 {
		fmt.Fprintf(&b, " pin %d", e.Pin)
	}
	b.WriteString(": ")
	b.WriteString(string(e.Code))
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Code == ErrHardwareFailure {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Code }

// Is matches another *Error of the same Code.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Code == e.Code
	}
	return false
}

// CodeOf extracts the Code of err, "" when err is nil or foreign.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return ""
}

func configurationError(op string, pin int, msg string) error {
	return &Error{Code: ErrConfiguration, Op: op, Pin: pin, Msg: msg}
}

func illegalMode(op string, pin int, mode Mode) error {
	return &Error{Code: ErrIllegalMode, Op: op, Pin: pin, Msg: "pin is in " + mode.String() + " mode"}
}

func hardwareFailure(op string, pin, status int) error {
	return &Error{Code: ErrHardwareFailure, Op: op, Pin: pin, Status: status}
}
