package execution

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"mit.edu/dsg/lemurdb/common"
	"mit.edu/dsg/lemurdb/storage"
)

// CSVScanExecutor reads text records from a CSV source and encodes each one as a tuple with the given column
// types. Reset seeks the source back to the start.
type CSVScanExecutor struct {
	src       io.ReadSeeker
	types     []common.Type
	hasHeader bool

	reader  *csv.Reader
	line    int
	current storage.Tuple
	done    bool
	err     error
}

func NewCSVScanExecutor(src io.ReadSeeker, types []common.Type, hasHeader bool) *CSVScanExecutor {
	return &CSVScanExecutor{
		src:       src,
		types:     types,
		hasHeader: hasHeader,
		reader:    storage.NewCSVReader(src),
	}
}

func (e *CSVScanExecutor) Next() bool {
	if e.err != nil || e.done {
		return false
	}
	for {
		record, err := e.reader.Read()
		if errors.Is(err, io.EOF) {
			e.done = true
			return false
		}
		if err != nil {
			e.err = fmt.Errorf("failed to read csv: %w", err)
			return false
		}
		e.line++
		if e.hasHeader && e.line == 1 {
			continue
		}

		t, err := storage.FromTextRecord(record, e.types)
		if err != nil {
			e.err = fmt.Errorf("line %d: %w", e.line, err)
			return false
		}
		e.current = t
		return true
	}
}

func (e *CSVScanExecutor) Current() storage.Tuple {
	return e.current
}

func (e *CSVScanExecutor) Error() error {
	return e.err
}

func (e *CSVScanExecutor) Reset() error {
	if _, err := e.src.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind csv source: %w", err)
	}
	e.reader = storage.NewCSVReader(e.src)
	e.line = 0
	e.done = false
	e.err = nil
	return nil
}

func (e *CSVScanExecutor) Close() error {
	if closer, ok := e.src.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
