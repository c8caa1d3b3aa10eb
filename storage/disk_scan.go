package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"mit.edu/dsg/lemurdb/common"
	"mit.edu/dsg/lemurdb/logging"
)

// DiskScan reads the records of a relation file block by block, in slot order within each block.
//
// Records are fixed length, so the scan recovers every record boundary and field offset from the column types
// alone. The scan only moves forward; Reset seeks back to the start of the source.
type DiskScan struct {
	src   io.ReadSeeker
	types []common.Type
	// field start offsets within a record, shared by every tuple the scan produces
	offsets   []int
	recordLen int

	block  Block
	slots  []int
	cursor int
	done   bool
	log    *slog.Logger
}

// NewDiskScan creates a scan over src and loads its first block. An empty source yields an empty scan.
func NewDiskScan(src io.ReadSeeker, types []common.Type) (*DiskScan, error) {
	offsets := make([]int, len(types))
	recordLen := 0
	for i, t := range types {
		offsets[i] = recordLen
		recordLen += t.Size()
	}

	s := &DiskScan{
		src:       src,
		types:     types,
		offsets:   offsets,
		recordLen: recordLen,
		block:     NewBlock(),
		log:       logging.WithComponent("disk_scan"),
	}
	if err := s.loadNextBlock(); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordLen returns the fixed length of a record under the scan's schema.
func (s *DiskScan) RecordLen() int {
	return s.recordLen
}

// Next returns the next record as a tuple. The tuple owns a copy of the record bytes, so it stays valid after
// the scan moves to another block. ok is false once the source is exhausted.
//
// A short read at the end of the source is treated as the end of the relation, since a truncated trailing
// block cannot be told apart from a clean end of file. Any other read failure, and a block whose header does not
// fit the schema, is returned as err with ok false, and the scan stays finished until Reset.
func (s *DiskScan) Next() (t Tuple, ok bool, err error) {
	for !s.done {
		if s.cursor < len(s.slots) {
			start := s.slots[s.cursor]
			s.cursor++
			data := make([]byte, s.recordLen)
			copy(data, s.block[start:start+s.recordLen])
			return newTupleFromParts(data, s.offsets), true, nil
		}
		if err := s.loadNextBlock(); err != nil {
			return Tuple{}, false, err
		}
	}
	return Tuple{}, false, nil
}

// Reset rewinds the scan to the first record of the source.
func (s *DiskScan) Reset() error {
	if _, err := s.src.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind relation: %w", err)
	}
	s.done = false
	return s.loadNextBlock()
}

// loadNextBlock reads the next full block and parses its slot array. It marks the scan as done when no full
// block remains. Blocks without records are loaded like any other and drained immediately by Next.
func (s *DiskScan) loadNextBlock() error {
	s.slots = nil
	s.cursor = 0

	_, err := io.ReadFull(s.src, s.block)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			s.log.Warn("ignoring partial trailing block")
		}
		s.done = true
		return nil
	}
	if err != nil {
		s.done = true
		return fmt.Errorf("failed to read block: %w", err)
	}
	blocksRead.Inc()

	slots, err := s.block.validate(s.recordLen)
	if err != nil {
		s.done = true
		return err
	}
	s.slots = slots
	s.log.Debug("block loaded", "records", len(slots))
	return nil
}
