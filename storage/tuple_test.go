package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mit.edu/dsg/lemurdb/common"
)

func makeTuples() (Tuple, Tuple) {
	t0 := NewTuple([]byte("one"), []byte{0, 2}, []byte("three"))
	t1 := NewTuple([]byte("four"), []byte{0, 66}, []byte("six"))
	return t0, t1
}

func TestTupleFields(t *testing.T) {
	fields := [][]byte{[]byte("one"), {0, 2}, []byte("three")}
	tup := NewTuple(fields...)

	assert.Equal(t, 3, tup.NumFields())
	assert.Equal(t, []int{0, 3, 5}, tup.Offsets())
	for i, f := range fields {
		got, err := tup.Field(i)
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := tup.Field(3)
	assert.True(t, common.HasCode(err, common.IndexOutOfRangeError))
	_, err = tup.Field(-1)
	assert.True(t, common.HasCode(err, common.IndexOutOfRangeError))
}

func TestTupleEmpty(t *testing.T) {
	tup := NewTuple()
	assert.Equal(t, 0, tup.NumFields())
	assert.Equal(t, 0, tup.Len())
	_, err := tup.Field(0)
	assert.Error(t, err)

	s, err := tup.Format(nil)
	require.NoError(t, err)
	assert.Equal(t, "", s)
}

func TestTupleAppend(t *testing.T) {
	t0, t1 := makeTuples()
	joined := t0.Append(t1)

	assert.Equal(t, []byte{
		111, 110, 101, 0, 2, 116, 104, 114, 101, 101,
		102, 111, 117, 114, 0, 66, 115, 105, 120,
	}, joined.Data())
	assert.Equal(t, []int{0, 3, 5, 10, 14, 16}, joined.Offsets())

	for i := 0; i < t1.NumFields(); i++ {
		want, _ := t1.Field(i)
		got, err := joined.Field(i + t0.NumFields())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// Inputs are left untouched
	assert.Equal(t, 3, t0.NumFields())
	assert.Equal(t, []int{0, 4, 6}, t1.Offsets())
}

func TestTupleFromTextRecord(t *testing.T) {
	types := []common.Type{common.SmallInt, common.Text(5), common.Float}
	tup, err := FromTextRecord([]string{"17", "testy", "2.5"}, types)
	require.NoError(t, err)

	v, err := tup.SmallInt(0)
	require.NoError(t, err)
	assert.Equal(t, uint16(17), v)
	s, err := tup.Text(1)
	require.NoError(t, err)
	assert.Equal(t, "testy", s)
	f, err := tup.Float(2)
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), f)

	_, err = FromTextRecord([]string{"17", "testy"}, types)
	assert.True(t, common.HasCode(err, common.EncodingError))

	_, err = FromTextRecord([]string{"x", "testy", "2.5"}, types)
	assert.True(t, common.HasCode(err, common.EncodingError))
}

func TestTupleTypedAccessorsCheckWidth(t *testing.T) {
	tup := NewTuple(common.EncodeInteger(7), common.EncodeSmallInt(3))

	v, err := tup.Integer(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), v)

	_, err = tup.Integer(1)
	assert.True(t, common.HasCode(err, common.EncodingError))
	_, err = tup.SmallInt(0)
	assert.True(t, common.HasCode(err, common.EncodingError))
	_, err = tup.Integer(2)
	assert.True(t, common.HasCode(err, common.IndexOutOfRangeError))

	val, err := tup.Value(1, common.SmallInt)
	require.NoError(t, err)
	assert.Equal(t, uint16(3), val.SmallIntValue())
}

func TestTupleFormat(t *testing.T) {
	types := []common.Type{common.Integer, common.Text(10), common.Float}
	tup := NewTuple(common.EncodeInteger(60), common.EncodeText("three", 10), common.EncodeFloat(25.4))

	s, err := tup.Format(types)
	require.NoError(t, err)
	assert.Equal(t, "60, three, 25.4", s)

	_, err = tup.Format(types[:2])
	assert.Error(t, err)
}

func TestTupleCloneAndEqual(t *testing.T) {
	t0, t1 := makeTuples()
	clone := t0.Clone()
	assert.True(t, t0.Equal(clone))
	assert.False(t, t0.Equal(t1))

	clone.Data()[0] = 'O'
	assert.False(t, t0.Equal(clone), "clone must not share storage")

	// Same bytes split differently are different tuples
	assert.False(t, NewTuple([]byte("ab"), []byte("c")).Equal(NewTuple([]byte("a"), []byte("bc"))))
}
