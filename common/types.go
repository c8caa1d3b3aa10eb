package common

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ObjectID is a unique identifier for a relation in the catalog. It also names the relation's backing file.
type ObjectID uint32

const InvalidObjectID ObjectID = 0

// RelationFileName returns the name of the file backing the relation with the given id.
func RelationFileName(oid ObjectID) string {
	return fmt.Sprintf("rel_%d.dat", oid)
}

// Kind enumerates the families of column types supported by the engine.
type Kind int8

const (
	// For uninitialized Types
	InvalidKind Kind = iota
	SmallIntKind
	IntegerKind
	FloatKind
	TextKind
)

const (
	SmallIntSize = 2
	IntegerSize  = 4
	FloatSize    = 4
)

// Type is a declared column type. All types are fixed width: numeric types have their natural big-endian
// width and Text carries its allocation length. Fixed widths are what allow the storage layer to recover record
// boundaries from the schema alone.
type Type struct {
	kind   Kind
	length int
}

var (
	SmallInt = Type{kind: SmallIntKind}
	Integer  = Type{kind: IntegerKind}
	Float    = Type{kind: FloatKind}
)

// Text returns a fixed-allocation text type of n bytes.
func Text(n int) Type {
	Assert(n > 0, "text allocation must be positive, got %d", n)
	return Type{kind: TextKind, length: n}
}

// Kind returns the family of the type.
func (t Type) Kind() Kind {
	return t.kind
}

// IsNil returns true if the Type is uninitialized.
func (t Type) IsNil() bool {
	return t.kind == InvalidKind
}

// Size returns the fixed-width storage size of the type in bytes
func (t Type) Size() int {
	switch t.kind {
	case SmallIntKind:
		return SmallIntSize
	case IntegerKind:
		return IntegerSize
	case FloatKind:
		return FloatSize
	case TextKind:
		return t.length
	default:
		panic("unknown type")
	}
}

func (t Type) String() string {
	switch t.kind {
	case SmallIntKind:
		return "smallint"
	case IntegerKind:
		return "integer"
	case FloatKind:
		return "float"
	case TextKind:
		return fmt.Sprintf("text(%d)", t.length)
	}
	return "unknown"
}

// ParseType parses the textual form produced by Type.String.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "smallint":
		return SmallInt, nil
	case "integer", "int":
		return Integer, nil
	case "float":
		return Float, nil
	}
	if strings.HasPrefix(s, "text(") && strings.HasSuffix(s, ")") {
		n, err := strconv.Atoi(s[len("text(") : len(s)-1])
		if err != nil || n <= 0 {
			return Type{}, LemurError{Code: EncodingError, ErrString: fmt.Sprintf("invalid text allocation in %q", s)}
		}
		return Text(n), nil
	}
	return Type{}, LemurError{Code: EncodingError, ErrString: fmt.Sprintf("unknown type %q", s)}
}

func (t Type) MarshalText() ([]byte, error) {
	if t.IsNil() {
		return nil, fmt.Errorf("cannot marshal uninitialized type")
	}
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Encode converts the text form of a value into its fixed-width binary field. It is the conversion used on the
// ingestion boundary, so every failure (bad number, text over its allocation) is reported as an EncodingError.
func (t Type) Encode(s string) ([]byte, error) {
	switch t.kind {
	case SmallIntKind:
		v, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return nil, encodingErr("cannot parse %q as smallint: %v", s, err)
		}
		return EncodeSmallInt(uint16(v)), nil
	case IntegerKind:
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, encodingErr("cannot parse %q as integer: %v", s, err)
		}
		return EncodeInteger(uint32(v)), nil
	case FloatKind:
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, encodingErr("cannot parse %q as float: %v", s, err)
		}
		return EncodeFloat(float32(v)), nil
	case TextKind:
		if len(s) > t.length {
			return nil, encodingErr("text of %d bytes exceeds allocation %s", len(s), t)
		}
		return EncodeText(s, t.length), nil
	}
	panic("unknown type")
}

// Format renders a binary field for display.
func (t Type) Format(field []byte) (string, error) {
	switch t.kind {
	case SmallIntKind:
		v, err := DecodeSmallInt(field)
		if err != nil {
			return "", err
		}
		return strconv.FormatUint(uint64(v), 10), nil
	case IntegerKind:
		v, err := DecodeInteger(field)
		if err != nil {
			return "", err
		}
		return strconv.FormatUint(uint64(v), 10), nil
	case FloatKind:
		v, err := DecodeFloat(field)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case TextKind:
		return DecodeText(field)
	}
	panic("unknown type")
}

func encodingErr(format string, args ...any) error {
	return LemurError{Code: EncodingError, ErrString: fmt.Sprintf(format, args...)}
}

func EncodeSmallInt(v uint16) []byte {
	return binary.BigEndian.AppendUint16(nil, v)
}

func EncodeInteger(v uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, v)
}

func EncodeFloat(v float32) []byte {
	return binary.BigEndian.AppendUint32(nil, math.Float32bits(v))
}

// EncodeText writes s into a NUL-padded field of exactly n bytes. The schema is controlled by the caller, so
// a string longer than its allocation is a programming error and panics.
func EncodeText(s string, n int) []byte {
	Assert(len(s) <= n, "text of %d bytes exceeds allocation of %d", len(s), n)
	buf := make([]byte, n)
	copy(buf, s)
	return buf
}

func DecodeSmallInt(field []byte) (uint16, error) {
	if len(field) != SmallIntSize {
		return 0, encodingErr("data has wrong number of bytes: expected %d, got %d", SmallIntSize, len(field))
	}
	return binary.BigEndian.Uint16(field), nil
}

func DecodeInteger(field []byte) (uint32, error) {
	if len(field) != IntegerSize {
		return 0, encodingErr("data has wrong number of bytes: expected %d, got %d", IntegerSize, len(field))
	}
	return binary.BigEndian.Uint32(field), nil
}

func DecodeFloat(field []byte) (float32, error) {
	if len(field) != FloatSize {
		return 0, encodingErr("data has wrong number of bytes: expected %d, got %d", FloatSize, len(field))
	}
	return math.Float32frombits(binary.BigEndian.Uint32(field)), nil
}

// DecodeText interprets the field as UTF-8 with its trailing NUL padding removed.
func DecodeText(field []byte) (string, error) {
	if !utf8.Valid(field) {
		return "", encodingErr("field is not valid utf-8")
	}
	return strings.TrimRight(string(field), "\x00"), nil
}

// Value represents a (deserialized) field of a tuple. Values are only produced on demand, since tuples carry no
// type information and are decoded against an out-of-band schema.
type Value struct {
	t             Type
	underlyingInt uint32
	underlyingFlt float32
	underlyingStr string
}

// AsValue decodes a binary field as the given type.
func AsValue(t Type, field []byte) (Value, error) {
	val := Value{t: t}
	var err error
	switch t.kind {
	case SmallIntKind:
		var v uint16
		v, err = DecodeSmallInt(field)
		val.underlyingInt = uint32(v)
	case IntegerKind:
		val.underlyingInt, err = DecodeInteger(field)
	case FloatKind:
		val.underlyingFlt, err = DecodeFloat(field)
	case TextKind:
		val.underlyingStr, err = DecodeText(field)
	default:
		panic("unknown type")
	}
	if err != nil {
		return Value{}, err
	}
	return val, nil
}

func NewSmallIntValue(v uint16) Value {
	return Value{t: SmallInt, underlyingInt: uint32(v)}
}

func NewIntegerValue(v uint32) Value {
	return Value{t: Integer, underlyingInt: v}
}

func NewFloatValue(v float32) Value {
	return Value{t: Float, underlyingFlt: v}
}

// NewTextValue creates a text Value whose allocation is exactly the length of s.
func NewTextValue(s string) Value {
	n := len(s)
	if n == 0 {
		n = 1
	}
	return Value{t: Text(n), underlyingStr: s}
}

// Type returns the type of the Value.
func (v Value) Type() Type {
	return v.t
}

// IsNil returns true if the Value is uninitialized.
func (v Value) IsNil() bool {
	return v.t.IsNil()
}

func (v Value) SmallIntValue() uint16 {
	Assert(v.t.kind == SmallIntKind, "type mismatch in SmallIntValue")
	return uint16(v.underlyingInt)
}

func (v Value) IntegerValue() uint32 {
	Assert(v.t.kind == IntegerKind, "type mismatch in IntegerValue")
	return v.underlyingInt
}

func (v Value) FloatValue() float32 {
	Assert(v.t.kind == FloatKind, "type mismatch in FloatValue")
	return v.underlyingFlt
}

func (v Value) TextValue() string {
	Assert(v.t.kind == TextKind, "type mismatch in TextValue")
	return v.underlyingStr
}

// Bytes serializes the Value into its fixed-width field.
func (v Value) Bytes() []byte {
	switch v.t.kind {
	case SmallIntKind:
		return EncodeSmallInt(uint16(v.underlyingInt))
	case IntegerKind:
		return EncodeInteger(v.underlyingInt)
	case FloatKind:
		return EncodeFloat(v.underlyingFlt)
	case TextKind:
		return EncodeText(v.underlyingStr, v.t.length)
	}
	panic("unknown type")
}

func (v Value) String() string {
	switch v.t.kind {
	case SmallIntKind, IntegerKind:
		return strconv.FormatUint(uint64(v.underlyingInt), 10)
	case FloatKind:
		return strconv.FormatFloat(float64(v.underlyingFlt), 'f', -1, 32)
	case TextKind:
		return v.underlyingStr
	}
	return "<nil>"
}

// Compare compares two Values of the same kind.
// Returns -1 if v < other, 0 if v == other, 1 if v > other. ordered is false when the values are incomparable,
// which only happens for floats when either side is NaN.
func (v Value) Compare(other Value) (cmp int, ordered bool) {
	Assert(v.t.kind == other.t.kind, "type mismatch in comparison: %s vs %s", v.t, other.t)

	switch v.t.kind {
	case SmallIntKind, IntegerKind:
		if v.underlyingInt < other.underlyingInt {
			return -1, true
		}
		if v.underlyingInt > other.underlyingInt {
			return 1, true
		}
		return 0, true
	case FloatKind:
		a, b := v.underlyingFlt, other.underlyingFlt
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		case a == b:
			return 0, true
		}
		return 0, false
	case TextKind:
		return strings.Compare(v.underlyingStr, other.underlyingStr), true
	}
	panic("unreachable")
}
