package errors

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackTrace returns the innermost stack trace recorded along the cause
// chain of err, or nil.
func stackTrace(err error) errors.StackTrace {
	for err != nil {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return nil
}

func (e *wrappedError) StackTrace() errors.StackTrace {
	return stackTrace(e.parent)
}

// Format prints the message for %s and %q. %v adds the place the error was
// created as [file:line], %+v prints the whole stack first.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	switch {
	case verb != 'v':
		fmt.Fprint(s, e.Error())
	case s.Flag('+'):
		fmt.Fprintf(s, "%+v\n%s", callerStack(stackTrace(e)), e.Error())
	default:
		fmt.Fprint(s, e.Error())
		if st := callerStack(stackTrace(e)); len(st) > 0 {
			file, line := frameLine(st[0])
			fmt.Fprintf(s, " [%s:%d]", shortPath(file), line)
		}
	}
}

// callerStack drops the frames of this package and of the runtime, so
// that the first frame is where the error was created.
func callerStack(st errors.StackTrace) errors.StackTrace {
	skip := func(f errors.Frame, dirs ...string) bool {
		file, _ := frameLine(f)
		for _, d := range dirs {
			if strings.Contains(file, d) {
				return true
			}
		}
		return false
	}
	for len(st) > 0 && skip(st[0], "/ledger/errors/", "/runtime/") {
		st = st[1:]
	}
	for len(st) > 0 && skip(st[len(st)-1], "/runtime/", "/testing/") {
		st = st[:len(st)-1]
	}
	return st
}

// frameLine resolves a frame the same way pkg/errors does when printing it.
func frameLine(f errors.Frame) (string, int) {
	pc := uintptr(f) - 1
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown", 0
	}
	return fn.FileLine(pc)
}

// shortPath keeps the package directory and the file name.
func shortPath(file string) string {
	dir, name := filepath.Split(file)
	return filepath.Join(filepath.Base(dir), name)
}
