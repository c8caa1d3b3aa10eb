package execution

import (
	"sort"

	"mit.edu/dsg/lemurdb/common"
	"mit.edu/dsg/lemurdb/storage"
)

type SortOrder int

const (
	SortOrderAscending SortOrder = iota
	SortOrderDescending
)

func (o SortOrder) String() string {
	if o == SortOrderDescending {
		return "DESC"
	}
	return "ASC"
}

// SimpleSortExecutor sorts its input on a single column.
// It is a blocking operator but uses lazy evaluation (sorts on first Next).
//
// The sort is not stable: tuples with equal keys may come out in any order. Group-by aggregation only needs
// equal keys to be adjacent, which an unstable sort still guarantees.
type SimpleSortExecutor struct {
	child   Executor
	column  int
	colType common.Type
	order   SortOrder

	// Runtime state
	sortedTuples []storage.Tuple
	sorted       bool
	currentIndex int
	err          error
}

type sortEntry struct {
	key   common.Value
	tuple storage.Tuple
}

func NewSimpleSortExecutor(child Executor, column int, colType common.Type, order SortOrder) *SimpleSortExecutor {
	return &SimpleSortExecutor{
		child:        child,
		column:       column,
		colType:      colType,
		order:        order,
		currentIndex: -1,
	}
}

// sortAllRows drains the child and sorts its tuples. Keys are decoded once up front, so a field that does not
// match the declared column type fails the query before any tuple is emitted.
func (e *SimpleSortExecutor) sortAllRows() bool {
	var entries []sortEntry
	for e.child.Next() {
		t := e.child.Current()
		key, err := t.Value(e.column, e.colType)
		if err != nil {
			e.err = err
			return false
		}
		entries = append(entries, sortEntry{key: key, tuple: t})
	}
	if err := e.child.Error(); err != nil {
		e.err = err
		return false
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].key, entries[j].key
		if e.order == SortOrderDescending {
			a, b = b, a
		}
		return keyLess(a, b)
	})

	e.sortedTuples = make([]storage.Tuple, len(entries))
	for i, entry := range entries {
		e.sortedTuples[i] = entry.tuple
	}
	e.sorted = true
	return true
}

// keyLess orders NaN before every number and treats NaNs as equal to each other.
func keyLess(a, b common.Value) bool {
	cmp, ordered := a.Compare(b)
	if ordered {
		return cmp < 0
	}
	return isNaN(a) && !isNaN(b)
}

func isNaN(v common.Value) bool {
	_, ordered := v.Compare(v)
	return !ordered
}

func (e *SimpleSortExecutor) Next() bool {
	if e.err != nil {
		return false
	}
	if !e.sorted {
		if !e.sortAllRows() {
			return false
		}
	}
	if e.currentIndex < len(e.sortedTuples) {
		e.currentIndex++
	}
	return e.currentIndex < len(e.sortedTuples)
}

func (e *SimpleSortExecutor) Current() storage.Tuple {
	return e.sortedTuples[e.currentIndex]
}

func (e *SimpleSortExecutor) Error() error {
	return e.err
}

// Reset replays the sorted buffer without touching the child. Only a sort that failed before finishing goes
// back to its input.
func (e *SimpleSortExecutor) Reset() error {
	e.currentIndex = -1
	if e.sorted {
		return nil
	}
	e.err = nil
	return e.child.Reset()
}

func (e *SimpleSortExecutor) Close() error {
	e.sortedTuples = nil
	e.sorted = false
	return e.child.Close()
}
