package formula

import "fmt"

// Result holds either a computed Value or an error message, never both.
type Result struct {
	value Value
	err   string
	ok    bool
}

func Success(v Value) Result {
	return Result{value: v, ok: true}
}

func Failure(msg string) Result {
	return Result{err: msg}
}

func Failuref(format string, args ...any) Result {
	return Failure(fmt.Sprintf(format, args...))
}

func (r Result) IsSuccess() bool { return r.ok }

// Value returns the held value; it is the zero Value for a failure.
func (r Result) Value() Value { return r.value }

// Err returns the failure message, or "" for a success.
func (r Result) Err() string { return r.err }

// Map applies fn to a successful value. Failures pass through untouched.
func (r Result) Map(fn func(Value) Value) Result {
	if !r.ok {
		return r
	}
	return Success(fn(r.value))
}

// FlatMap chains a computation that may itself fail.
func (r Result) FlatMap(fn func(Value) Result) Result {
	if !r.ok {
		return r
	}
	return fn(r.value)
}

// Typecheck fails unless the held value has the expected kind.
func (r Result) Typecheck(expected Kind) Result {
	if !r.ok {
		return r
	}
	if r.value.kind != expected {
		return Failuref("Expected %s and got %s", expected, r.value.kind)
	}
	return r
}

// String renders the value or the error message, whichever is held.
func (r Result) String() string {
	if !r.ok {
		return r.err
	}
	return r.value.String()
}
