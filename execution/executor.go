package execution

import (
	"mit.edu/dsg/lemurdb/storage"
)

// Executor is the interface that all physical execution nodes must implement.
//
// Executors form a tree. Each one exclusively owns its children, pulls tuples from them on demand and hands
// ownership of every tuple it produces to its caller.
type Executor interface {
	// Next advances the executor to the next tuple. It returns false at the end of the stream or on failure, and
	// keeps returning false on every later call until Reset.
	Next() bool

	// Current returns the tuple most recently read by Next(). It is only valid after Next returned true.
	Current() storage.Tuple

	// Error returns the error that stopped the stream, if any. A false Next with a nil Error is a clean end.
	Error() error

	// Reset rewinds the executor so that it replays its output stream from the start.
	Reset() error

	// Close cleans up any resources held by the executor and its children.
	Close() error
}

// Collect drains e and returns every tuple it produces.
func Collect(e Executor) ([]storage.Tuple, error) {
	var result []storage.Tuple
	for e.Next() {
		result = append(result, e.Current())
	}
	if err := e.Error(); err != nil {
		return result, err
	}
	return result, nil
}
