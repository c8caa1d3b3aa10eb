package execution

import (
	"io"

	"mit.edu/dsg/lemurdb/common"
	"mit.edu/dsg/lemurdb/storage"
)

// InsertExecutor drains its child into a DiskWriter and flushes it. It then produces a single Integer tuple
// holding the number of tuples written. Reset replays that tuple without writing again.
type InsertExecutor struct {
	child  Executor
	writer *storage.DiskWriter

	// Runtime state
	executed bool
	emitted  bool
	cnt      int
	err      error
}

func NewInsertExecutor(child Executor, dest io.Writer) *InsertExecutor {
	return &InsertExecutor{
		child:  child,
		writer: storage.NewDiskWriter(dest),
	}
}

func (e *InsertExecutor) Next() bool {
	if e.err != nil {
		return false
	}
	if !e.executed {
		for e.child.Next() {
			if err := e.writer.AddTuple(e.child.Current()); err != nil {
				e.err = err
				return false
			}
			e.cnt++
		}
		if err := e.child.Error(); err != nil {
			e.err = err
			return false
		}
		if err := e.writer.Flush(); err != nil {
			e.err = err
			return false
		}
		e.executed = true
	}
	if e.emitted {
		return false
	}
	e.emitted = true
	return true
}

func (e *InsertExecutor) Current() storage.Tuple {
	return storage.NewTuple(common.EncodeInteger(uint32(e.cnt)))
}

// Count returns the number of tuples written so far.
func (e *InsertExecutor) Count() int {
	return e.cnt
}

func (e *InsertExecutor) Error() error {
	return e.err
}

func (e *InsertExecutor) Reset() error {
	e.emitted = false
	return nil
}

func (e *InsertExecutor) Close() error {
	return e.child.Close()
}
