// Package diag pairs a failure value with the call stack at the point it was
// first observed.
//
// A Capture is created once, where the failure happens, and is never
// modified afterwards. It travels with every defect so that a failure can be
// reported long after the stack that produced it has unwound.
package diag

import (
	"fmt"

	"github.com/go-stack/stack"
)

// Capture is an immutable (failure, call stack) pair. The failure may be any
// value: an error returned by a collaborator, a value recovered from a panic,
// or a synthesized error describing a logical problem.
type Capture struct {
	err   interface{}
	trace stack.CallStack
}

// New captures err together with the stack of the caller of New.
func New(err interface{}) Capture {
	return Capture{
		err:   err,
		trace: stack.Trace().TrimBelow(stack.Caller(1)).TrimRuntime(),
	}
}

// Errorf synthesizes an error with fmt.Errorf semantics (including %w) and
// captures it together with the stack of the caller of Errorf.
func Errorf(format string, args ...interface{}) Capture {
	return Capture{
		err:   fmt.Errorf(format, args...),
		trace: stack.Trace().TrimBelow(stack.Caller(1)).TrimRuntime(),
	}
}

// Err returns the captured failure value as it was observed.
func (c Capture) Err() interface{} { return c.err }

// Trace returns the captured call stack, innermost frame first.
func (c Capture) Trace() stack.CallStack { return c.trace }

// IsZero reports whether c was never populated.
func (c Capture) IsZero() bool { return c.err == nil && len(c.trace) == 0 }

// Error renders the captured failure. Captures are not errors themselves,
// but they are routinely logged as one.
func (c Capture) Error() string {
	switch e := c.err.(type) {
	case nil:
		return "<nil>"
	case error:
		return e.Error()
	case string:
		return e
	default:
		return fmt.Sprintf("%v", e)
	}
}

// Unwrap returns the captured failure if it is an error, so a Capture placed
// in an error chain keeps errors.Is and errors.As working.
func (c Capture) Unwrap() error {
	err, _ := c.err.(error)
	return err
}

// Format implements fmt.Formatter. %v and %s print the failure; %+v also
// prints one line per captured frame.
func (c Capture) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		fmt.Fprint(s, c.Error())
		if s.Flag('+') {
			for _, call := range c.trace {
				fmt.Fprintf(s, "\n\t%+v (%n)", call, call)
			}
		}
	case 's':
		fmt.Fprint(s, c.Error())
	case 'q':
		fmt.Fprintf(s, "%q", c.Error())
	}
}
