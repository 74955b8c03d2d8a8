/*
Package errors implements the error model shared by all ledger extensions.

Every failure is categorized by one of the root errors declared in this
package. Extensions create error instances by wrapping a root error with
additional context, so that callers can test the category with the Is method
no matter how many times the error was wrapped:

	if errors.ErrInsufficientBalance.Is(err) {
		...
	}

If you need a new category, register it with Register(code, description)
during program initialization. A code can be registered only once.

Error instances created with Wrap or Err.New carry a stack trace of the
creation point. Use fmt formatting verbs to inspect it:
	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created
*/
package errors
