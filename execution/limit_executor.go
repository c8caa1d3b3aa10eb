package execution

import (
	"mit.edu/dsg/lemurdb/common"
	"mit.edu/dsg/lemurdb/storage"
)

// LimitExecutor limits the number of tuples returned by the child executor.
type LimitExecutor struct {
	child Executor
	limit int

	numEmitted int
	childDone  bool
}

func NewLimitExecutor(child Executor, limit int) *LimitExecutor {
	common.Assert(limit >= 0, "limit must not be negative, got %d", limit)
	return &LimitExecutor{
		child: child,
		limit: limit,
	}
}

func (e *LimitExecutor) Next() bool {
	// Checked before pulling, so the child is never read past the limit
	if e.childDone || e.numEmitted >= e.limit {
		return false
	}

	if e.child.Next() {
		e.numEmitted++
		return true
	}
	e.childDone = true
	return false
}

func (e *LimitExecutor) Current() storage.Tuple {
	return e.child.Current()
}

func (e *LimitExecutor) Error() error {
	return e.child.Error()
}

func (e *LimitExecutor) Reset() error {
	e.numEmitted = 0
	e.childDone = false
	return e.child.Reset()
}

func (e *LimitExecutor) Close() error {
	return e.child.Close()
}
