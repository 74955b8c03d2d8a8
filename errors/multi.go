package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If none or only one error is provided, that error is returned as is. The
// result of combining multiple errors is a multi error that reports all of
// them and matches, through the Is method, any root error that one of its
// members is matching.
func Append(errs ...error) error {
	var res multiErr
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if m, ok := e.(multiErr); ok {
			res = append(res, m...)
		} else {
			res = append(res, e)
		}
	}
	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

// multiErr is a default implementation of an error that holds several
// errors at once. It does not support nesting, appending a multi error
// flattens it.
type multiErr []error

func (me multiErr) Error() string {
	points := make([]string, len(me))
	for i, err := range me {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s", len(me), strings.Join(points, "\n\t"))
}

// Unpack returns all errors that this multi error is built of.
func (me multiErr) Unpack() []error {
	return me
}

type unpacker interface {
	Unpack() []error
}
