package execution

import (
	"mit.edu/dsg/lemurdb/storage"
)

// MaterializeExecutor acts as a pipeline barrier.
// It buffers every tuple of its child during the first pass. After a Reset it replays the buffer and only reads
// from the child again where the first pass stopped. Placing it under the inner side of a nested loops join
// makes every inner rescan a memory scan.
type MaterializeExecutor struct {
	child Executor

	// Runtime state
	tuples       []storage.Tuple
	childDone    bool
	currentIndex int
}

func NewMaterializeExecutor(child Executor) *MaterializeExecutor {
	return &MaterializeExecutor{
		child:        child,
		tuples:       make([]storage.Tuple, 0),
		currentIndex: -1,
	}
}

func (e *MaterializeExecutor) Next() bool {
	if e.currentIndex+1 < len(e.tuples) {
		e.currentIndex++
		return true
	}
	if e.childDone || e.child.Error() != nil {
		e.currentIndex = len(e.tuples)
		return false
	}

	if e.child.Next() {
		e.tuples = append(e.tuples, e.child.Current())
		e.currentIndex = len(e.tuples) - 1
		return true
	}
	e.childDone = e.child.Error() == nil
	e.currentIndex = len(e.tuples)
	return false
}

func (e *MaterializeExecutor) Current() storage.Tuple {
	return e.tuples[e.currentIndex]
}

func (e *MaterializeExecutor) Error() error {
	return e.child.Error()
}

func (e *MaterializeExecutor) Reset() error {
	e.currentIndex = -1
	return nil
}

func (e *MaterializeExecutor) Close() error {
	e.tuples = nil
	return e.child.Close()
}
