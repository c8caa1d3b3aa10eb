package execution

import (
	"bytes"
	"errors"

	"mit.edu/dsg/lemurdb/storage"
)

// NestedLoopsJoinExecutor implements an inner equi-join with the simple nested loop algorithm.
// For every tuple of the left (outer) child it scans the whole right (inner) child and emits the outer tuple's
// fields followed by the inner tuple's fields for each match. The inner child is reset after every outer tuple,
// so it should be cheap to rewind (a materialized or disk-backed source).
//
// Join keys match on raw byte equality of the encoded fields. Both sides must encode the join column with the
// same type for the result to be meaningful.
type NestedLoopsJoinExecutor struct {
	left, right       Executor
	leftCol, rightCol int

	// Runtime State
	started     bool
	done        bool
	currentLeft storage.Tuple
	leftKey     []byte
	current     storage.Tuple
	err         error
}

// NewNestedLoopsJoinExecutor creates a new NestedLoopsJoinExecutor. The first outer tuple is pulled by the
// first call to Next.
func NewNestedLoopsJoinExecutor(left, right Executor, leftCol, rightCol int) *NestedLoopsJoinExecutor {
	return &NestedLoopsJoinExecutor{
		left:     left,
		right:    right,
		leftCol:  leftCol,
		rightCol: rightCol,
	}
}

// advanceLeft moves to the next outer tuple. It returns false when the outer child is exhausted or fails.
func (e *NestedLoopsJoinExecutor) advanceLeft() bool {
	if !e.left.Next() {
		e.err = e.left.Error()
		e.done = true
		return false
	}
	e.currentLeft = e.left.Current()
	key, err := e.currentLeft.Field(e.leftCol)
	if err != nil {
		e.err = err
		return false
	}
	e.leftKey = key
	return true
}

func (e *NestedLoopsJoinExecutor) fail(err error) bool {
	e.err = err
	return false
}

func (e *NestedLoopsJoinExecutor) Next() bool {
	if e.err != nil || e.done {
		return false
	}
	if !e.started {
		e.started = true
		if !e.advanceLeft() {
			return false
		}
	}

	for {
		// The outer tuple stays put while the inner child still has candidates
		for e.right.Next() {
			inner := e.right.Current()
			key, err := inner.Field(e.rightCol)
			if err != nil {
				return e.fail(err)
			}
			if bytes.Equal(e.leftKey, key) {
				e.current = e.currentLeft.Append(inner)
				return true
			}
		}
		if err := e.right.Error(); err != nil {
			return e.fail(err)
		}
		if err := e.right.Reset(); err != nil {
			return e.fail(err)
		}
		if !e.advanceLeft() {
			return false
		}
	}
}

func (e *NestedLoopsJoinExecutor) Current() storage.Tuple {
	return e.current
}

func (e *NestedLoopsJoinExecutor) Error() error {
	return e.err
}

func (e *NestedLoopsJoinExecutor) Reset() error {
	e.started = false
	e.done = false
	e.err = nil
	return errors.Join(e.left.Reset(), e.right.Reset())
}

func (e *NestedLoopsJoinExecutor) Close() error {
	return errors.Join(e.left.Close(), e.right.Close())
}
