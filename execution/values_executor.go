package execution

import (
	"mit.edu/dsg/lemurdb/storage"
)

// ValuesExecutor produces a fixed list of tuples held in memory.
type ValuesExecutor struct {
	tuples       []storage.Tuple
	currentIndex int
}

func NewValuesExecutor(tuples []storage.Tuple) *ValuesExecutor {
	return &ValuesExecutor{tuples: tuples, currentIndex: -1}
}

func (e *ValuesExecutor) Next() bool {
	if e.currentIndex < len(e.tuples) {
		e.currentIndex++
	}
	return e.currentIndex < len(e.tuples)
}

func (e *ValuesExecutor) Current() storage.Tuple {
	return e.tuples[e.currentIndex]
}

func (e *ValuesExecutor) Error() error {
	return nil
}

func (e *ValuesExecutor) Reset() error {
	e.currentIndex = -1
	return nil
}

func (e *ValuesExecutor) Close() error {
	return nil
}
