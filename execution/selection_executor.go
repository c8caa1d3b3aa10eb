package execution

import (
	"mit.edu/dsg/lemurdb/storage"
)

// SelectionExecutor filters tuples from its child executor based on a predicate.
type SelectionExecutor struct {
	child     Executor
	predicate Predicate
	err       error
}

// NewSelectionExecutor creates a new SelectionExecutor. The predicate must be deterministic and free of side
// effects, since a reset replays the child and evaluates it again.
func NewSelectionExecutor(child Executor, predicate Predicate) *SelectionExecutor {
	return &SelectionExecutor{
		child:     child,
		predicate: predicate,
	}
}

func (e *SelectionExecutor) Next() bool {
	if e.err != nil {
		return false
	}
	for e.child.Next() {
		ok, err := e.predicate(e.child.Current())
		if err != nil {
			e.err = err
			return false
		}
		if ok {
			return true
		}
	}
	return false
}

func (e *SelectionExecutor) Current() storage.Tuple {
	return e.child.Current()
}

func (e *SelectionExecutor) Error() error {
	if e.err != nil {
		return e.err
	}
	return e.child.Error()
}

func (e *SelectionExecutor) Reset() error {
	e.err = nil
	return e.child.Reset()
}

func (e *SelectionExecutor) Close() error {
	return e.child.Close()
}
