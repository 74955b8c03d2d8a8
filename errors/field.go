package errors

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Field attaches a field name to err. A nil err gives a nil result.
//
// Field names follow the Go struct naming, for example DevFeeBps. Nested
// fields and list elements are joined with a dot, see FieldPath.
func Field(name string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{parent: err, field: name, desc: description}
}

// AppendField adds a field error of name to errs. Nothing is added when
// fieldErr is nil.
func AppendField(errs error, name string, fieldErr error) error {
	return Append(errs, Field(name, fieldErr, ""))
}

// FieldPath builds a field name out of struct field names and list
// indexes, for example FieldPath("Recipients", 2, "Account") returns
// "Recipients.2.Account".
func FieldPath(parts ...interface{}) string {
	chunks := make([]string, len(parts))
	for i, p := range parts {
		switch p := p.(type) {
		case int:
			chunks[i] = strconv.Itoa(p)
		default:
			chunks[i] = fmt.Sprint(p)
		}
	}
	return strings.Join(chunks, ".")
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (e *fieldError) Error() string {
	if e.desc == "" {
		return fmt.Sprintf("field %q: %s", e.field, e.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", e.field, e.desc, e.parent)
}

func (e *fieldError) Cause() error { return e.parent }

func (e *fieldError) Field() string { return e.field }

type fielder interface {
	Field() string
}

// FieldErrors returns all errors reported for the field name. Multi errors
// are searched recursively.
func FieldErrors(err error, name string) []error {
	var found []error
	walkFields(err, func(f error, field string) {
		if field == name {
			found = append(found, f)
		}
	})
	return found
}

// walkFields calls fn with every field error found in err. Field errors are
// not searched any deeper.
func walkFields(err error, fn func(error, string)) {
	for !isNilErr(err) {
		if f, ok := err.(fielder); ok {
			fn(err, f.Field())
			return
		}
		if u, ok := err.(unpacker); ok {
			for _, e := range u.Unpack() {
				walkFields(e, fn)
			}
			return
		}
		c, ok := err.(causer)
		if !ok {
			return
		}
		err = c.Cause()
	}
}
