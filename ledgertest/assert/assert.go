// Package assert holds the few assertions shared by the ledger tests. Each
// of them stops the test on failure.
package assert

import (
	"reflect"

	"github.com/alium-swap/ledger/errors"
)

// Tester is the part of testing.TB the assertions use.
type Tester interface {
	Helper()
	Logf(string, ...interface{})
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

func Nil(t Tester, value interface{}) {
	t.Helper()
	if isNil(value) {
		return
	}
	// %+v prints the stack trace of an error.
	t.Fatalf("want nil, got %+v", value)
}

// isNil also returns true for typed nil pointers, maps and slices.
func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

// Equal compares with reflect.DeepEqual.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if reflect.DeepEqual(want, got) {
		return
	}
	t.Fatalf("not equal\nwant %T %v\n got %T %v", want, want, got, got)
}

func Panics(t Tester, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("no panic")
		}
	}()
	fn()
}

// IsErr passes when got is want or when want is a registered error that
// got wraps.
func IsErr(t Tester, want, got error) {
	t.Helper()
	if want == got {
		return
	}
	if e, ok := want.(*errors.Error); ok && e.Is(got) {
		return
	}
	t.Fatalf("want %q, got %+v", want, got)
}

// FieldError expects err to carry exactly one error for the field and that
// error to be want. A nil want expects no error for the field.
func FieldError(t Tester, err error, field string, want *errors.Error) {
	t.Helper()
	found := errors.FieldErrors(err, field)
	switch {
	case want == nil && len(found) == 0:
		return
	case want == nil:
		logAll(t, found)
		t.Fatalf("want no %q field error, got %d", field, len(found))
	case len(found) == 0:
		t.Fatalf("no %q field error in %v", field, err)
	case len(found) > 1:
		logAll(t, found)
		t.Fatalf("want one %q field error, got %d", field, len(found))
	case !want.Is(found[0]):
		t.Fatalf("want %q field error %q, got %q", field, want, found[0])
	}
}

func logAll(t Tester, errs []error) {
	for i, e := range errs {
		t.Logf("\t%d: %s", i+1, e)
	}
}
