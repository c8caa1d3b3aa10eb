package execution

import (
	"mit.edu/dsg/lemurdb/storage"
)

// ScanExecutor passes its child's tuples through unchanged. It marks the point where a source enters a query.
type ScanExecutor struct {
	child Executor
}

func NewScanExecutor(child Executor) *ScanExecutor {
	return &ScanExecutor{child: child}
}

func (e *ScanExecutor) Next() bool {
	return e.child.Next()
}

func (e *ScanExecutor) Current() storage.Tuple {
	return e.child.Current()
}

func (e *ScanExecutor) Error() error {
	return e.child.Error()
}

func (e *ScanExecutor) Reset() error {
	return e.child.Reset()
}

func (e *ScanExecutor) Close() error {
	return e.child.Close()
}
