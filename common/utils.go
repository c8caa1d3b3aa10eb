package common

import "fmt"

// EnableDebug turns on debug-only invariant checks that cost extra memory or time, such as verifying that
// group-by input really arrives grouped.
var EnableDebug = false

// Assert checks a condition and panics if it is false.
//
// Use it for conditions that can only fail through a bug in the engine or its caller (a schema that does not
// match the data it was used to encode, a switch case that should be unreachable). Conditions that depend on
// input or I/O are reported as errors instead.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
