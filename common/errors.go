package common

import (
	"errors"
	"fmt"
)

type LemurErrorCode int

const (
	// EncodingError indicates a field whose bytes do not match its declared type (wrong width, invalid
	// UTF-8) or text input that cannot be converted into one.
	EncodingError LemurErrorCode = iota
	// IndexOutOfRangeError indicates a reference to a field position a tuple does not have.
	IndexOutOfRangeError
	// UnsupportedOperationError indicates a request the engine does not implement, such as summing a
	// Text column.
	UnsupportedOperationError
	// SizeLimitError indicates a record that cannot fit in a single disk block.
	SizeLimitError
	// CorruptBlockError indicates a disk block whose header or slot array is inconsistent with the block
	// format or the schema used to read it.
	CorruptBlockError
	// DuplicateObjectError indicates an attempt to register a relation that already exists in the catalog.
	DuplicateObjectError
	// NoSuchObjectError indicates a request for a relation that does not exist in the catalog.
	NoSuchObjectError
)

func (ec LemurErrorCode) String() string {
	switch ec {
	case EncodingError:
		return "EncodingError"
	case IndexOutOfRangeError:
		return "IndexOutOfRangeError"
	case UnsupportedOperationError:
		return "UnsupportedOperationError"
	case SizeLimitError:
		return "SizeLimitError"
	case CorruptBlockError:
		return "CorruptBlockError"
	case DuplicateObjectError:
		return "DuplicateObjectError"
	case NoSuchObjectError:
		return "NoSuchObjectError"
	}
	return "unknown"
}

// LemurError is the custom error type for the engine.
// It wraps a specific LemurErrorCode with a detailed message.
type LemurError struct {
	Code      LemurErrorCode
	ErrString string
}

func (e LemurError) Error() string {
	return fmt.Sprintf("err: %s; msg: %s", e.Code.String(), e.ErrString)
}

// HasCode reports whether err, or any error it wraps, is a LemurError with the given code.
func HasCode(err error, code LemurErrorCode) bool {
	var lemurErr LemurError
	if errors.As(err, &lemurErr) {
		return lemurErr.Code == code
	}
	return false
}
