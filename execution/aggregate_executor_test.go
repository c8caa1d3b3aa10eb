package execution

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mit.edu/dsg/lemurdb/common"
	"mit.edu/dsg/lemurdb/storage"
)

func aggregateAll(t *testing.T, input []storage.Tuple, aggType AggregateType, colType common.Type) storage.Tuple {
	agg, err := NewAggregateExecutor(NewValuesExecutor(input), aggType, 0, colType, NoGroupBy)
	require.NoError(t, err)
	rows, err := Collect(agg)
	require.NoError(t, err)
	require.Len(t, rows, 1, "whole-relation aggregation emits exactly one tuple")
	assert.False(t, agg.Next())
	return rows[0]
}

func TestAggregate_WholeRelation(t *testing.T) {
	input := intRows(10, 20, 30)

	sum, err := aggregateAll(t, input, Sum, common.Integer).Integer(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(60), sum)

	count, err := aggregateAll(t, input, Count, common.Integer).Integer(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), count)

	avg, err := aggregateAll(t, input, Avg, common.Integer).Float(0)
	require.NoError(t, err)
	assert.Equal(t, float32(20.0), avg)
}

func TestAggregate_FloatAndSmallInt(t *testing.T) {
	floats := []storage.Tuple{
		storage.NewTuple(common.EncodeFloat(1.5)),
		storage.NewTuple(common.EncodeFloat(2.5)),
	}
	sum, err := aggregateAll(t, floats, Sum, common.Float).Float(0)
	require.NoError(t, err)
	assert.Equal(t, float32(4), sum)

	// Sums accumulate in the column's own width and wrap on overflow
	smallInts := []storage.Tuple{
		storage.NewTuple(common.EncodeSmallInt(65535)),
		storage.NewTuple(common.EncodeSmallInt(2)),
	}
	wrapped, err := aggregateAll(t, smallInts, Sum, common.SmallInt).SmallInt(0)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), wrapped)
}

func TestAggregate_EmptyInput(t *testing.T) {
	count, err := aggregateAll(t, nil, Count, common.Integer).Integer(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), count)

	avg, err := aggregateAll(t, nil, Avg, common.Integer).Float(0)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(float64(avg)))
}

func TestAggregate_TextIsUnsupported(t *testing.T) {
	_, err := NewAggregateExecutor(NewValuesExecutor(nil), Sum, 0, common.Text(4), NoGroupBy)
	assert.True(t, common.HasCode(err, common.UnsupportedOperationError))
	_, err = NewAggregateExecutor(NewValuesExecutor(nil), Avg, 0, common.Text(4), 1)
	assert.True(t, common.HasCode(err, common.UnsupportedOperationError))

	// Count ignores the column, so its type does not matter
	_, err = NewAggregateExecutor(NewValuesExecutor(nil), Count, 0, common.Text(4), NoGroupBy)
	assert.NoError(t, err)
}

type kv struct {
	key string
	val uint32
}

// groupRows builds (group text(1), value integer) tuples.
func groupRows(rows ...kv) []storage.Tuple {
	tuples := make([]storage.Tuple, len(rows))
	for i, r := range rows {
		tuples[i] = storage.NewTuple(common.EncodeText(r.key, 1), common.EncodeInteger(r.val))
	}
	return tuples
}

func TestAggregate_GroupByCount(t *testing.T) {
	input := groupRows(kv{"A", 1}, kv{"A", 1}, kv{"B", 1})
	agg, err := NewAggregateExecutor(NewValuesExecutor(input), Count, 1, common.Integer, 0)
	require.NoError(t, err)

	rows, err := Collect(agg)
	require.NoError(t, err)
	assert.Equal(t, []string{"A, 2", "B, 1"}, formatRows(t, rows, []common.Type{common.Text(1), agg.OutputType()}),
		"the final group is emitted when the input runs out")
	assert.False(t, agg.Next())

	require.NoError(t, agg.Reset())
	rows, err = Collect(agg)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestAggregate_GroupBySumAndAvg(t *testing.T) {
	input := groupRows(kv{"A", 1}, kv{"A", 2}, kv{"B", 5}, kv{"C", 4}, kv{"C", 5})

	rows, err := FromValues(input...).Aggregate(Sum, 1, common.Integer, 0).Collect()
	require.NoError(t, err)
	assert.Equal(t, []string{"A, 3", "B, 5", "C, 9"}, formatRows(t, rows, []common.Type{common.Text(1), common.Integer}))

	rows, err = FromValues(input...).Aggregate(Avg, 1, common.Integer, 0).Collect()
	require.NoError(t, err)
	assert.Equal(t, []string{"A, 1.5", "B, 5", "C, 4.5"}, formatRows(t, rows, []common.Type{common.Text(1), common.Float}))
}

func TestAggregate_GroupByAfterSort(t *testing.T) {
	input := groupRows(kv{"B", 1}, kv{"A", 1}, kv{"B", 1}, kv{"C", 1}, kv{"A", 1}, kv{"B", 1})

	// Ties inside a group may come out of the sort in any order; grouping does not depend on it
	rows, err := FromValues(input...).
		SimpleSort(0, common.Text(1), SortOrderAscending).
		Aggregate(Count, 1, common.Integer, 0).
		Collect()
	require.NoError(t, err)
	assert.Equal(t, []string{"A, 2", "B, 3", "C, 1"}, formatRows(t, rows, []common.Type{common.Text(1), common.Integer}))
}

func TestAggregate_GroupByStreams(t *testing.T) {
	child := &countingExecutor{Executor: NewValuesExecutor(groupRows(kv{"A", 1}, kv{"A", 1}, kv{"B", 1}, kv{"C", 1}))}
	agg, err := NewAggregateExecutor(child, Count, 1, common.Integer, 0)
	require.NoError(t, err)

	require.True(t, agg.Next())
	assert.Equal(t, 3, child.nexts, "the first group is complete once the first B is read")
	require.True(t, agg.Next())
	assert.Equal(t, 4, child.nexts)
}

func TestAggregate_EmptyGroupBy(t *testing.T) {
	agg, err := NewAggregateExecutor(NewValuesExecutor(nil), Count, 1, common.Integer, 0)
	require.NoError(t, err)
	rows, err := Collect(agg)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAggregate_DebugDetectsUngroupedInput(t *testing.T) {
	common.EnableDebug = true
	defer func() { common.EnableDebug = false }()

	input := groupRows(kv{"A", 1}, kv{"B", 1}, kv{"A", 1})
	agg, err := NewAggregateExecutor(NewValuesExecutor(input), Count, 1, common.Integer, 0)
	require.NoError(t, err)
	assert.Panics(t, func() { _, _ = Collect(agg) })
}

func TestAggregate_DecodeMismatchFails(t *testing.T) {
	input := []storage.Tuple{storage.NewTuple(common.EncodeSmallInt(1))}
	agg, err := NewAggregateExecutor(NewValuesExecutor(input), Sum, 0, common.Integer, NoGroupBy)
	require.NoError(t, err)
	assert.False(t, agg.Next())
	assert.True(t, common.HasCode(agg.Error(), common.EncodingError))
}
