package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mit.edu/dsg/lemurdb/common"
	"mit.edu/dsg/lemurdb/storage"
)

// (id integer, name text(4))
func outerRows() []storage.Tuple {
	return []storage.Tuple{
		storage.NewTuple(common.EncodeInteger(1), common.EncodeText("a", 4)),
		storage.NewTuple(common.EncodeInteger(2), common.EncodeText("b", 4)),
		storage.NewTuple(common.EncodeInteger(3), common.EncodeText("c", 4)),
	}
}

// (tag text(4), ref integer)
func innerRows() []storage.Tuple {
	return []storage.Tuple{
		storage.NewTuple(common.EncodeText("x", 4), common.EncodeInteger(1)),
		storage.NewTuple(common.EncodeText("y", 4), common.EncodeInteger(3)),
		storage.NewTuple(common.EncodeText("z", 4), common.EncodeInteger(1)),
		storage.NewTuple(common.EncodeText("w", 4), common.EncodeInteger(4)),
	}
}

var joinedTypes = []common.Type{common.Integer, common.Text(4), common.Text(4), common.Integer}

func formatRows(t *testing.T, rows []storage.Tuple, types []common.Type) []string {
	result := make([]string, len(rows))
	for i, row := range rows {
		s, err := row.Format(types)
		require.NoError(t, err)
		result[i] = s
	}
	return result
}

func TestNestedLoopsJoin(t *testing.T) {
	inner := &countingExecutor{Executor: NewValuesExecutor(innerRows())}
	join := NewNestedLoopsJoinExecutor(NewValuesExecutor(outerRows()), inner, 0, 1)

	rows, err := Collect(join)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"1, a, x, 1",
		"1, a, z, 1",
		"3, c, y, 3",
	}, formatRows(t, rows, joinedTypes), "pairs come in outer order, inner order within an outer row")
	assert.Equal(t, 3, inner.resets, "the inner side is rewound once per outer tuple")

	assert.False(t, join.Next())
	require.NoError(t, join.Reset())
	rows, err = Collect(join)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestNestedLoopsJoin_ManyToMany(t *testing.T) {
	left := intRows(1, 2, 1)
	right := intRows(1, 1, 5)
	rows, err := FromValues(left...).NestedLoopsJoin(FromValues(right...).Materialize(), 0, 0).Collect()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []uint32{1, 1, 1, 1}, integersAt(t, rows, 0))
	assert.Equal(t, []uint32{1, 1, 1, 1}, integersAt(t, rows, 1))
}

func TestNestedLoopsJoin_EmptySides(t *testing.T) {
	inner := &countingExecutor{Executor: NewValuesExecutor(innerRows())}
	rows, err := Collect(NewNestedLoopsJoinExecutor(NewValuesExecutor(nil), inner, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 0, inner.nexts, "an empty outer side never touches the inner side")

	rows, err = Collect(NewNestedLoopsJoinExecutor(NewValuesExecutor(outerRows()), NewValuesExecutor(nil), 0, 1))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestNestedLoopsJoin_KeyOutOfRange(t *testing.T) {
	join := NewNestedLoopsJoinExecutor(NewValuesExecutor(outerRows()), NewValuesExecutor(innerRows()), 0, 5)
	assert.False(t, join.Next())
	assert.True(t, common.HasCode(join.Error(), common.IndexOutOfRangeError))
}
