package execution

import (
	"bytes"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"mit.edu/dsg/lemurdb/common"
	"mit.edu/dsg/lemurdb/storage"
)

type AggregateType int

const (
	// Count counts rows and ignores the aggregate column.
	Count AggregateType = iota
	Sum
	// Avg divides the sum by the row count as a float, whatever the column type.
	Avg
)

func (a AggregateType) String() string {
	switch a {
	case Count:
		return "COUNT"
	case Sum:
		return "SUM"
	case Avg:
		return "AVG"
	}
	return "???"
}

// ParseAggregateType parses the names produced by AggregateType.String, ignoring case.
func ParseAggregateType(s string) (AggregateType, error) {
	for a := Count; a <= Avg; a++ {
		if bytes.EqualFold([]byte(a.String()), []byte(s)) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown aggregate %q", s)
}

// NoGroupBy selects whole-relation aggregation.
const NoGroupBy = -1

// AggregateExecutor computes one aggregate over a column of its input.
//
// Without a group-by column, it drains the input on the first Next and emits exactly one tuple holding the
// aggregate, even over an empty input.
//
// With a group-by column, the input must already be sorted (or at least grouped) on that column: the executor
// does not sort. It streams one (group key, aggregate) tuple per run of equal keys, pulling input only as far as
// the start of the next run. With common.EnableDebug set, it panics when a key reappears after its run ended.
//
// Sum and Avg accumulate in the width of the column type (16 bits for SmallInt, 32 for Integer and Float) and
// wrap silently on overflow. Count accumulates in 32 bits.
type AggregateExecutor struct {
	child   Executor
	aggType AggregateType
	column  int
	colType common.Type
	groupBy int

	// Runtime state
	current   storage.Tuple
	finished  bool
	childDone bool
	// first tuple of the next group, already pulled from the child
	pending    storage.Tuple
	hasPending bool
	seenKeys   mapset.Set[string]
	err        error
}

// NewAggregateExecutor creates an AggregateExecutor over column, decoded as colType. Pass NoGroupBy as groupBy
// for whole-relation aggregation. Sum and Avg over a Text column fail with UnsupportedOperationError.
func NewAggregateExecutor(child Executor, aggType AggregateType, column int, colType common.Type, groupBy int) (*AggregateExecutor, error) {
	if aggType != Count && colType.Kind() == common.TextKind {
		return nil, common.LemurError{
			Code:      common.UnsupportedOperationError,
			ErrString: fmt.Sprintf("cannot compute %s over a %s column", aggType, colType),
		}
	}
	if aggType < Count || aggType > Avg {
		return nil, common.LemurError{
			Code:      common.UnsupportedOperationError,
			ErrString: fmt.Sprintf("unknown aggregate %d", aggType),
		}
	}
	return &AggregateExecutor{
		child:   child,
		aggType: aggType,
		column:  column,
		colType: colType,
		groupBy: groupBy,
	}, nil
}

// OutputType returns the type of the aggregate column in the output tuples.
func (e *AggregateExecutor) OutputType() common.Type {
	switch e.aggType {
	case Count:
		return common.Integer
	case Avg:
		return common.Float
	}
	return e.colType
}

func (e *AggregateExecutor) Next() bool {
	if e.err != nil || e.finished {
		return false
	}
	if e.groupBy == NoGroupBy {
		return e.aggregateAll()
	}
	return e.aggregateNextGroup()
}

func (e *AggregateExecutor) aggregateAll() bool {
	acc := newAccumulator(e.aggType, e.colType)
	for e.child.Next() {
		if err := acc.add(e.child.Current(), e.column); err != nil {
			e.err = err
			return false
		}
	}
	if err := e.child.Error(); err != nil {
		e.err = err
		return false
	}
	e.current = storage.NewTuple(acc.result())
	e.finished = true
	return true
}

func (e *AggregateExecutor) aggregateNextGroup() bool {
	if !e.hasPending {
		if e.childDone || !e.pull() {
			e.finished = true
			return false
		}
	}

	first := e.pending
	e.hasPending = false
	key, err := first.Field(e.groupBy)
	if err != nil {
		e.err = err
		return false
	}

	acc := newAccumulator(e.aggType, e.colType)
	if err := acc.add(first, e.column); err != nil {
		e.err = err
		return false
	}
	for e.pull() {
		nextKey, err := e.pending.Field(e.groupBy)
		if err != nil {
			e.err = err
			return false
		}
		if !bytes.Equal(key, nextKey) {
			// Keep the tuple as the first of the next group
			break
		}
		e.hasPending = false
		if err := acc.add(e.pending, e.column); err != nil {
			e.err = err
			return false
		}
	}
	if e.err != nil {
		return false
	}

	if common.EnableDebug {
		if e.seenKeys == nil {
			e.seenKeys = mapset.NewThreadUnsafeSet[string]()
		}
		common.Assert(e.seenKeys.Add(string(key)), "group-by input is not grouped: key %v appears in more than one run", key)
	}

	// The final group is emitted here when pull hit the end of the input
	e.current = storage.NewTuple(key, acc.result())
	return true
}

// pull reads the next child tuple into pending. It returns false at the end of the input or on failure.
func (e *AggregateExecutor) pull() bool {
	if e.child.Next() {
		e.pending = e.child.Current()
		e.hasPending = true
		return true
	}
	e.childDone = true
	e.err = e.child.Error()
	return false
}

func (e *AggregateExecutor) Current() storage.Tuple {
	return e.current
}

func (e *AggregateExecutor) Error() error {
	return e.err
}

func (e *AggregateExecutor) Reset() error {
	e.finished = false
	e.childDone = false
	e.hasPending = false
	e.seenKeys = nil
	e.err = nil
	return e.child.Reset()
}

func (e *AggregateExecutor) Close() error {
	return e.child.Close()
}

// accumulator folds column values in the native width of the column type.
type accumulator struct {
	aggType AggregateType
	colType common.Type

	count    uint32
	sumSmall uint16
	sumInt   uint32
	sumFloat float32
}

func newAccumulator(aggType AggregateType, colType common.Type) *accumulator {
	return &accumulator{aggType: aggType, colType: colType}
}

func (a *accumulator) add(t storage.Tuple, column int) error {
	a.count++
	if a.aggType == Count {
		return nil
	}

	field, err := t.Field(column)
	if err != nil {
		return err
	}
	switch a.colType.Kind() {
	case common.SmallIntKind:
		v, err := common.DecodeSmallInt(field)
		if err != nil {
			return err
		}
		a.sumSmall += v
	case common.IntegerKind:
		v, err := common.DecodeInteger(field)
		if err != nil {
			return err
		}
		a.sumInt += v
	case common.FloatKind:
		v, err := common.DecodeFloat(field)
		if err != nil {
			return err
		}
		a.sumFloat += v
	default:
		panic("unsupported aggregate column type")
	}
	return nil
}

func (a *accumulator) sum() float32 {
	switch a.colType.Kind() {
	case common.SmallIntKind:
		return float32(a.sumSmall)
	case common.IntegerKind:
		return float32(a.sumInt)
	}
	return a.sumFloat
}

func (a *accumulator) result() []byte {
	switch a.aggType {
	case Count:
		return common.EncodeInteger(a.count)
	case Avg:
		return common.EncodeFloat(a.sum() / float32(a.count))
	}
	switch a.colType.Kind() {
	case common.SmallIntKind:
		return common.EncodeSmallInt(a.sumSmall)
	case common.IntegerKind:
		return common.EncodeInteger(a.sumInt)
	}
	return common.EncodeFloat(a.sumFloat)
}
