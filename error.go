package flux

import "fmt"

// IllegalArgumentErr signals a protocol violation such as a non-positive
// request or a duplicate OnSubscribe.
type IllegalArgumentErr struct {
	msg string
}

func IllegalArgumentError(format string, args ...interface{}) error {
	return IllegalArgumentErr{fmt.Sprintf(format, args...)}
}

func (e IllegalArgumentErr) Error() string {
	return e.msg
}

// NullValueErr signals that a user-supplied collaborator produced a nil
// where a value was required.
type NullValueErr struct {
	msg string
}

func NullValueError(format string, args ...interface{}) error {
	return NullValueErr{fmt.Sprintf(format, args...)}
}

func (e NullValueErr) Error() string {
	return e.msg
}

// OverflowErr signals that a value could not be delivered for lack of
// downstream demand.
type OverflowErr struct {
	msg string
}

func OverflowError(format string, args ...interface{}) error {
	return OverflowErr{fmt.Sprintf(format, args...)}
}

func (e OverflowErr) Error() string {
	return e.msg
}

// DisconnectedErr signals that a shared connection was torn down while
// subscribers were still attached.
type DisconnectedErr struct{}

func DisconnectedError() error {
	return DisconnectedErr{}
}

func (DisconnectedErr) Error() string {
	return "disconnected"
}

// RuntimeErr wraps a recovered panic value.
type RuntimeErr struct {
	err error
}

func RuntimeError(v interface{}) error {
	if err, ok := v.(error); ok {
		return RuntimeErr{err}
	}
	return RuntimeErr{fmt.Errorf("runtime-error: %v", v)}
}

func (e RuntimeErr) Error() string {
	return e.err.Error()
}

func (e RuntimeErr) Previous() error {
	return e.err
}

func errInvalidRequest(n int64) error {
	return IllegalArgumentError("n > 0 required but it was %d", n)
}
