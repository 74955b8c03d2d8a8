package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

var (
	// ErrUnauthorized is used whenever a request without sufficient
	// authorization is handled.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound is used when a requested operation cannot be completed
	// due to missing data.
	ErrNotFound = Register(3, "not found")

	// ErrInvalidInput stands for general input problems indication.
	ErrInvalidInput = Register(4, "invalid input")

	// ErrInvalidModel is returned whenever a configuration or a model is
	// invalid and cannot be used. Configuration validation failures are
	// always of this kind.
	ErrInvalidModel = Register(5, "invalid model")

	// ErrInvalidState is returned when an object is in invalid state.
	ErrInvalidState = Register(6, "invalid state")

	// ErrInvalidAmount stands for invalid amount of whatever.
	ErrInvalidAmount = Register(7, "invalid amount")

	// ErrInsufficientBalance is returned when an account does not hold
	// enough funds to complete an operation.
	ErrInsufficientBalance = Register(8, "insufficient balance")

	// ErrInsufficientAllowance is returned when a spender was not approved
	// to move the requested amount on behalf of the owner.
	ErrInsufficientAllowance = Register(9, "insufficient allowance")

	// ErrExpired stands for expired entities, for example a swap executed
	// after its deadline.
	ErrExpired = Register(10, "expired")

	// ErrOverflow is returned when a computation cannot be completed
	// because the result value exceeds the type.
	ErrOverflow = Register(11, "an operation cannot be completed due to value overflow")

	// ErrSlippage is returned when the output of an exchange is lower than
	// the accepted minimum.
	ErrSlippage = Register(12, "output below accepted minimum")

	// ErrReentrancy is returned when an operation is called again while
	// its previous invocation is still running.
	ErrReentrancy = Register(13, "reentrant call")

	// ErrRecipient is returned when a recipient cannot accept a payout.
	ErrRecipient = Register(14, "recipient failure")

	// ErrSwap is returned when an external exchange cannot complete a swap.
	ErrSwap = Register(15, "external swap failure")

	// ErrDatabase is returned when the underlying storage fails.
	ErrDatabase = Register(16, "database")

	// ErrPanic is only set when we recover from a panic, so we know to
	// redact potentially sensitive system info.
	ErrPanic = Register(111222, "panic")
)

// registry maps codes to their root errors. Code 1 is kept for errors that
// were never registered.
var registry = map[uint32]*Error{1: nil}

// Register declares a root error. Codes are unique; registering a code twice
// panics. Call it from package level variable declarations only.
func Register(code uint32, description string) *Error {
	if prev, ok := registry[code]; ok {
		desc := "reserved"
		if prev != nil {
			desc = prev.desc
		}
		panic(fmt.Sprintf("error code %d already registered: %s", code, desc))
	}
	e := &Error{code: code, desc: description}
	registry[code] = e
	return e
}

// Error is a root error. Errors returned at runtime wrap one of them, so
// that callers can tell the failures apart with Is.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string { return e.desc }

func (e Error) Code() uint32 { return e.code }

// New is a shortcut for Wrap(e, description).
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

func (e *Error) Newf(format string, args ...interface{}) error {
	return Wrapf(e, format, args...)
}

// Is returns true if err is this root error or wraps it. Every member of a
// multi error is checked. A nil root error matches only nil errors.
func (e *Error) Is(err error) bool {
	if e == nil {
		return isNilErr(err)
	}
	for err != nil {
		if err == e {
			return true
		}
		if m, ok := err.(unpacker); ok {
			for _, member := range m.Unpack() {
				if e.Is(member) {
					return true
				}
			}
			return false
		}
		c, ok := err.(causer)
		if !ok {
			return false
		}
		err = c.Cause()
	}
	return false
}

// Wrap adds a description to err and records a stack trace unless err
// already carries one. It returns nil for a nil err.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &wrappedError{msg: description, parent: err}
}

func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.parent.Error()
}

func (e *wrappedError) Cause() error { return e.parent }

// Unwrap lets the standard library errors.Is and errors.As see through.
func (e *wrappedError) Unwrap() error { return e.parent }

// Code returns the code of the root error that err wraps, or 1.
func Code(err error) uint32 {
	for err != nil {
		if c, ok := err.(coder); ok {
			return c.Code()
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return 1
}

// Recover turns a panic into an ErrPanic assigned to *err. It must be
// deferred.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

type causer interface {
	Cause() error
}

type coder interface {
	Code() uint32
}

func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	switch v := reflect.ValueOf(err); v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
