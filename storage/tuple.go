package storage

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"mit.edu/dsg/lemurdb/common"
)

// Tuple is one row in its binary form: the field payloads concatenated into data, and the starting offset of each
// field within data. The end of the last field is implicitly len(data).
//
// A Tuple does not know what it contains. Decoding a field requires the column type from an out-of-band schema.
// Tuples are immutable once built. Operators build new tuples (Append, projection) rather than editing fields.
type Tuple struct {
	data    []byte
	offsets []int
}

// NewTuple concatenates the given fields into a tuple. Calling it with no fields yields the empty tuple.
func NewTuple(fields ...[]byte) Tuple {
	size := 0
	for _, f := range fields {
		size += len(f)
	}
	data := make([]byte, 0, size)
	offsets := make([]int, len(fields))
	for i, f := range fields {
		offsets[i] = len(data)
		data = append(data, f...)
	}
	return Tuple{data: data, offsets: offsets}
}

// newTupleFromParts builds a tuple that takes ownership of data and offsets. Callers must not modify either
// afterwards. offsets may be shared between tuples since no Tuple method writes to it.
func newTupleFromParts(data []byte, offsets []int) Tuple {
	return Tuple{data: data, offsets: offsets}
}

// FromTextRecord converts one text record (typically a CSV row) into a tuple, encoding each field with the
// corresponding column type.
func FromTextRecord(record []string, types []common.Type) (Tuple, error) {
	if len(record) != len(types) {
		return Tuple{}, common.LemurError{
			Code:      common.EncodingError,
			ErrString: fmt.Sprintf("record has %d fields but schema has %d columns", len(record), len(types)),
		}
	}
	size := 0
	for _, t := range types {
		size += t.Size()
	}
	data := make([]byte, 0, size)
	offsets := make([]int, len(types))
	for i, s := range record {
		field, err := types[i].Encode(s)
		if err != nil {
			return Tuple{}, fmt.Errorf("column %d: %w", i, err)
		}
		offsets[i] = len(data)
		data = append(data, field...)
	}
	return Tuple{data: data, offsets: offsets}, nil
}

func (t Tuple) NumFields() int {
	return len(t.offsets)
}

// Data returns the tuple's backing bytes. The caller must not modify them.
func (t Tuple) Data() []byte {
	return t.data
}

// Offsets returns the start offset of every field. The caller must not modify them.
func (t Tuple) Offsets() []int {
	return t.offsets
}

// Len is the record length of the tuple in bytes.
func (t Tuple) Len() int {
	return len(t.data)
}

// Field returns the bytes of field i, or IndexOutOfRangeError when the tuple has no such field.
func (t Tuple) Field(i int) ([]byte, error) {
	if i < 0 || i >= len(t.offsets) {
		return nil, common.LemurError{
			Code:      common.IndexOutOfRangeError,
			ErrString: fmt.Sprintf("field %d requested from a tuple with %d fields", i, len(t.offsets)),
		}
	}
	if i == len(t.offsets)-1 {
		return t.data[t.offsets[i]:], nil
	}
	return t.data[t.offsets[i]:t.offsets[i+1]], nil
}

// Value decodes field i as the given type.
func (t Tuple) Value(i int, typ common.Type) (common.Value, error) {
	field, err := t.Field(i)
	if err != nil {
		return common.Value{}, err
	}
	return common.AsValue(typ, field)
}

func (t Tuple) SmallInt(i int) (uint16, error) {
	field, err := t.Field(i)
	if err != nil {
		return 0, err
	}
	return common.DecodeSmallInt(field)
}

func (t Tuple) Integer(i int) (uint32, error) {
	field, err := t.Field(i)
	if err != nil {
		return 0, err
	}
	return common.DecodeInteger(field)
}

func (t Tuple) Float(i int) (float32, error) {
	field, err := t.Field(i)
	if err != nil {
		return 0, err
	}
	return common.DecodeFloat(field)
}

func (t Tuple) Text(i int) (string, error) {
	field, err := t.Field(i)
	if err != nil {
		return "", err
	}
	return common.DecodeText(field)
}

// Append returns a new tuple holding t's fields followed by other's. Neither input is modified.
func (t Tuple) Append(other Tuple) Tuple {
	data := make([]byte, 0, len(t.data)+len(other.data))
	data = append(data, t.data...)
	data = append(data, other.data...)

	offsets := make([]int, 0, len(t.offsets)+len(other.offsets))
	offsets = append(offsets, t.offsets...)
	shift := len(t.data)
	for _, off := range other.offsets {
		offsets = append(offsets, off+shift)
	}
	return Tuple{data: data, offsets: offsets}
}

// Clone returns a deep copy of the tuple.
func (t Tuple) Clone() Tuple {
	return Tuple{data: slices.Clone(t.data), offsets: slices.Clone(t.offsets)}
}

// Equal reports whether both tuples hold the same bytes split into the same fields.
func (t Tuple) Equal(other Tuple) bool {
	return bytes.Equal(t.data, other.data) && slices.Equal(t.offsets, other.offsets)
}

// Format renders the tuple as a comma-separated list of decoded fields.
func (t Tuple) Format(types []common.Type) (string, error) {
	if len(types) != len(t.offsets) {
		return "", common.LemurError{
			Code:      common.EncodingError,
			ErrString: fmt.Sprintf("tuple has %d fields but schema has %d columns", len(t.offsets), len(types)),
		}
	}
	fields := make([]string, len(types))
	for i, typ := range types {
		field, _ := t.Field(i)
		s, err := typ.Format(field)
		if err != nil {
			return "", fmt.Errorf("column %d: %w", i, err)
		}
		fields[i] = s
	}
	return strings.Join(fields, ", "), nil
}

func (t Tuple) String() string {
	return fmt.Sprintf("Tuple{data: %v, offsets: %v}", t.data, t.offsets)
}
