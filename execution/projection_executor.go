package execution

import (
	"mit.edu/dsg/lemurdb/storage"
)

// ProjectionExecutor builds a new tuple from a list of column positions of its child's tuples. Positions may
// repeat and appear in any order.
type ProjectionExecutor struct {
	child   Executor
	columns []int

	current storage.Tuple
	fields  [][]byte
	err     error
}

func NewProjectionExecutor(child Executor, columns []int) *ProjectionExecutor {
	return &ProjectionExecutor{
		child:   child,
		columns: columns,
		fields:  make([][]byte, len(columns)),
	}
}

func (e *ProjectionExecutor) Next() bool {
	if e.err != nil || !e.child.Next() {
		return false
	}

	t := e.child.Current()
	for i, col := range e.columns {
		field, err := t.Field(col)
		if err != nil {
			e.err = err
			return false
		}
		e.fields[i] = field
	}
	// NewTuple copies, so the output shares nothing with the child's tuple
	e.current = storage.NewTuple(e.fields...)
	return true
}

func (e *ProjectionExecutor) Current() storage.Tuple {
	return e.current
}

func (e *ProjectionExecutor) Error() error {
	if e.err != nil {
		return e.err
	}
	return e.child.Error()
}

func (e *ProjectionExecutor) Reset() error {
	e.err = nil
	return e.child.Reset()
}

func (e *ProjectionExecutor) Close() error {
	return e.child.Close()
}
