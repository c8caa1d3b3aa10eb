package execution

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mit.edu/dsg/lemurdb/common"
	"mit.edu/dsg/lemurdb/storage"
)

// countingExecutor records how often its wrapped executor is pulled and rewound.
type countingExecutor struct {
	Executor
	nexts  int
	resets int
	closes int
}

func (c *countingExecutor) Next() bool {
	c.nexts++
	return c.Executor.Next()
}

func (c *countingExecutor) Reset() error {
	c.resets++
	return c.Executor.Reset()
}

func (c *countingExecutor) Close() error {
	c.closes++
	return c.Executor.Close()
}

// setupRows creates n tuples with columns (id integer, name text(10)).
func setupRows(n int) []storage.Tuple {
	tuples := make([]storage.Tuple, n)
	for i := 0; i < n; i++ {
		tuples[i] = storage.NewTuple(
			common.EncodeInteger(uint32(i)),
			common.EncodeText(fmt.Sprintf("row-%d", i), 10),
		)
	}
	return tuples
}

func float32Nan() float32 {
	return float32(math.NaN())
}

func intRows(vals ...uint32) []storage.Tuple {
	tuples := make([]storage.Tuple, len(vals))
	for i, v := range vals {
		tuples[i] = storage.NewTuple(common.EncodeInteger(v))
	}
	return tuples
}

func integersAt(t *testing.T, tuples []storage.Tuple, col int) []uint32 {
	result := make([]uint32, len(tuples))
	for i, tup := range tuples {
		v, err := tup.Integer(col)
		require.NoError(t, err)
		result[i] = v
	}
	return result
}

func TestBasicExecutor_Values(t *testing.T) {
	exec := NewValuesExecutor(setupRows(10))

	count1 := 0
	for exec.Next() {
		id, err := exec.Current().Integer(0)
		require.NoError(t, err)
		assert.Equal(t, uint32(count1), id, "Pass 1: Tuple ID mismatch at row %d", count1)
		count1++
	}
	assert.Equal(t, 10, count1)
	assert.False(t, exec.Next(), "exhausted executors keep returning false")
	assert.NoError(t, exec.Error())

	// Reset should rewind the cursor so the source can be scanned multiple times
	require.NoError(t, exec.Reset())
	rows, err := Collect(exec)
	require.NoError(t, err)
	assert.Len(t, rows, 10, "Pass 2: reset source failed to return all tuples")
}

func TestBasicExecutor_Scan(t *testing.T) {
	rows := setupRows(5)
	scan := NewScanExecutor(NewValuesExecutor(rows))

	got, err := Collect(scan)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i := range rows {
		assert.True(t, rows[i].Equal(got[i]))
	}

	require.NoError(t, scan.Reset())
	got, err = Collect(scan)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestBasicExecutor_Selection(t *testing.T) {
	predicate := CompareColumn(0, common.Integer, GreaterThan, common.NewIntegerValue(5))
	selection := NewSelectionExecutor(NewValuesExecutor(setupRows(10)), predicate)

	rows, err := Collect(selection)
	require.NoError(t, err)
	assert.Equal(t, []uint32{6, 7, 8, 9}, integersAt(t, rows, 0), "Should match IDs 6, 7, 8, 9")

	require.NoError(t, selection.Reset())
	rows, err = Collect(selection)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestBasicExecutor_SelectionCombinators(t *testing.T) {
	low := CompareColumn(0, common.Integer, LessThan, common.NewIntegerValue(2))
	high := CompareColumn(0, common.Integer, GreaterThanOrEqual, common.NewIntegerValue(8))
	named := CompareColumn(1, common.Text(10), Equal, common.NewTextValue("row-5"))

	rows, err := FromValues(setupRows(10)...).Selection(Or(low, high, named)).Collect()
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 5, 8, 9}, integersAt(t, rows, 0))

	rows, err = FromValues(setupRows(10)...).Selection(And(Not(low), Not(high))).Collect()
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 3, 4, 5, 6, 7}, integersAt(t, rows, 0))

	rows, err = FromValues(setupRows(10)...).Selection(ColumnEquals(0, common.EncodeInteger(3))).Collect()
	require.NoError(t, err)
	assert.Equal(t, []uint32{3}, integersAt(t, rows, 0))
}

func TestBasicExecutor_SelectionError(t *testing.T) {
	predicate := CompareColumn(4, common.Integer, Equal, common.NewIntegerValue(1))
	selection := NewSelectionExecutor(NewValuesExecutor(setupRows(3)), predicate)

	assert.False(t, selection.Next())
	assert.True(t, common.HasCode(selection.Error(), common.IndexOutOfRangeError))
	assert.False(t, selection.Next(), "errors are sticky")
}

func TestBasicExecutor_FloatComparisonWithNaN(t *testing.T) {
	nan := storage.NewTuple(common.EncodeFloat(float32Nan()))
	one := storage.NewTuple(common.EncodeFloat(1))

	for _, tc := range []struct {
		op   ComparisonType
		want int
	}{
		{Equal, 1}, {LessThan, 0}, {GreaterThanOrEqual, 1}, {NotEqual, 1},
	} {
		p := CompareColumn(0, common.Float, tc.op, common.NewFloatValue(1))
		rows, err := FromValues(nan, one).Selection(p).Collect()
		require.NoError(t, err)
		assert.Len(t, rows, tc.want, "operator %s", tc.op)
	}
}

func TestBasicExecutor_Projection(t *testing.T) {
	projection := NewProjectionExecutor(NewValuesExecutor(setupRows(5)), []int{1, 0, 1})

	rows, err := Collect(projection)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	for i, row := range rows {
		assert.Equal(t, 3, row.NumFields())
		name, err := row.Text(0)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("row-%d", i), name)
		id, err := row.Integer(1)
		require.NoError(t, err)
		assert.Equal(t, uint32(i), id)
		again, err := row.Text(2)
		require.NoError(t, err)
		assert.Equal(t, name, again)
	}

	bad := NewProjectionExecutor(NewValuesExecutor(setupRows(5)), []int{0, 2})
	assert.False(t, bad.Next())
	assert.True(t, common.HasCode(bad.Error(), common.IndexOutOfRangeError))
}

func TestBasicExecutor_Limit(t *testing.T) {
	for _, tc := range []struct{ limit, rows, want int }{
		{3, 10, 3}, {20, 5, 5}, {0, 5, 0}, {5, 5, 5}, {2, 0, 0},
	} {
		child := &countingExecutor{Executor: NewValuesExecutor(setupRows(tc.rows))}
		limit := NewLimitExecutor(child, tc.limit)

		rows, err := Collect(limit)
		require.NoError(t, err)
		assert.Len(t, rows, tc.want, "limit %d over %d rows", tc.limit, tc.rows)
		for i := 0; i < 3; i++ {
			assert.False(t, limit.Next())
		}
		assert.LessOrEqual(t, child.nexts, tc.limit+1, "limit must not drain its child")

		require.NoError(t, limit.Reset())
		rows, err = Collect(limit)
		require.NoError(t, err)
		assert.Len(t, rows, tc.want, "limit %d replays after reset", tc.limit)
	}

	assert.Panics(t, func() { NewLimitExecutor(NewValuesExecutor(nil), -1) })
}

func TestBasicExecutor_LimitStopsAtChildEnd(t *testing.T) {
	child := &countingExecutor{Executor: NewValuesExecutor(nil)}
	limit := NewLimitExecutor(child, 2)

	for i := 0; i < 4; i++ {
		assert.False(t, limit.Next())
	}
	assert.Equal(t, 1, child.nexts, "an exhausted child is not pulled again")

	require.NoError(t, limit.Reset())
	assert.False(t, limit.Next())
	assert.Equal(t, 2, child.nexts)
}

func TestBasicExecutor_Materialize(t *testing.T) {
	child := &countingExecutor{Executor: NewValuesExecutor(setupRows(10))}
	mat := NewMaterializeExecutor(child)

	// A partial first pass
	limited := NewLimitExecutor(mat, 4)
	rows, err := Collect(limited)
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	for pass := 0; pass < 3; pass++ {
		require.NoError(t, mat.Reset())
		rows, err = Collect(mat)
		require.NoError(t, err)
		assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, integersAt(t, rows, 0))
	}
	assert.Equal(t, 11, child.nexts, "the child is read once, plus the call that found its end")
	assert.Equal(t, 0, child.resets)
}
