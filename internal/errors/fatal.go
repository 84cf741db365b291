package errors

import (
	"fmt"
	"runtime/debug"
)

// ImpossibleState panics with an ERR_502 error. Index structures call it when a
// caller removes something that was never inserted, removes it twice, or mutated
// a join-relevant property outside the retract/insert protocol.
func ImpossibleState(format string, args ...any) {
	panic(New(ErrCodeImpossibleState, fmt.Sprintf(format, args...), nil).
		WithSuggestion("retract the tuple with the key and entry returned by its insert"))
}

// Unsupported panics with an ERR_503 error naming the operation and the node kind
// that does not implement it.
func Unsupported(operation, node string) {
	panic(New(ErrCodeUnsupportedOperation,
		fmt.Sprintf("%s is not supported by %s", operation, node), nil).
		WithDetail("operation", operation).
		WithDetail("node", node))
}

// Capture runs fn and converts a panic raised with an *IndexError into a returned
// error. Any other panic value is wrapped as ERR_501 with its stack attached.
// Use it at the boundary of a solve or a benchmark run, never inside index code.
func Capture(fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch v := r.(type) {
		case *IndexError:
			err = v
		case error:
			err = New(ErrCodeInternal, v.Error(), v).WithDetail("stack", string(debug.Stack()))
		default:
			err = New(ErrCodeInternal, fmt.Sprint(v), nil).WithDetail("stack", string(debug.Stack()))
		}
	}()
	fn()
	return nil
}
