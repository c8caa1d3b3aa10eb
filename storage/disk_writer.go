package storage

import (
	"fmt"
	"io"
	"log/slog"

	"mit.edu/dsg/lemurdb/common"
	"mit.edu/dsg/lemurdb/logging"
)

// DiskWriter packs tuples into slotted blocks and appends them to a destination.
//
// Completed blocks accumulate in memory until Flush, which writes them together with the block in progress.
// Nothing reaches the destination without a call to Flush. A DiskWriter is not safe for concurrent use.
type DiskWriter struct {
	dest io.Writer
	// completed blocks that have not been written to dest yet
	out   []byte
	block Block
	// upper is the next free slot position, lower the start of the record area
	upper, lower int
	// number of records in block
	records int
	// number of blocks written to dest so far
	flushed int
	log     *slog.Logger
}

// NewDiskWriter creates a writer that appends blocks to dest.
func NewDiskWriter(dest io.Writer) *DiskWriter {
	return &DiskWriter{
		dest:  dest,
		block: NewBlock(),
		upper: BlockHeaderSize,
		lower: BlockSize,
		log:   logging.WithComponent("disk_writer"),
	}
}

// AddTuple appends the tuple's data as one record. If the record and its slot do not fit in the free space of
// the current block, the block is completed and the record starts a fresh one. A record that would not fit
// even in an empty block is rejected with SizeLimitError.
func (w *DiskWriter) AddTuple(t Tuple) error {
	recordLen := t.Len()
	if recordLen > MaxRecordSize {
		return common.LemurError{
			Code:      common.SizeLimitError,
			ErrString: fmt.Sprintf("record of %d bytes exceeds the %d bytes available in a block", recordLen, MaxRecordSize),
		}
	}

	if recordLen+SlotSize > w.lower-w.upper {
		w.completeBlock()
	}

	w.lower -= recordLen
	copy(w.block[w.lower:], t.Data())
	w.block.setSlot(w.upper, w.lower)
	w.upper += SlotSize
	w.block.setHeader(w.upper, w.lower)
	w.records++

	tuplesWritten.Inc()
	return nil
}

// completeBlock moves the current block to the output accumulator and starts a fresh one.
func (w *DiskWriter) completeBlock() {
	w.out = append(w.out, w.block...)
	w.log.Debug("block completed", "records", w.records, "free", w.lower-w.upper)
	w.block.clear()
	w.upper = BlockHeaderSize
	w.lower = BlockSize
	w.records = 0
	blocksWritten.Inc()
}

// Flush writes every completed block and the current, possibly partial, block to the destination. Later
// tuples go into a new block. The current block is skipped when it is empty, unless nothing has been written
// yet, so a flushed destination always holds at least one block.
func (w *DiskWriter) Flush() error {
	if w.records > 0 || (w.flushed == 0 && len(w.out) == 0) {
		w.completeBlock()
	}
	if len(w.out) == 0 {
		return nil
	}

	n := len(w.out) / BlockSize
	if _, err := w.dest.Write(w.out); err != nil {
		return fmt.Errorf("failed to write %d blocks: %w", n, err)
	}
	w.flushed += n
	w.out = w.out[:0]
	w.log.Debug("blocks flushed", "blocks", n, "total", w.flushed)
	return nil
}

// BlocksFlushed returns the number of blocks written to the destination so far.
func (w *DiskWriter) BlocksFlushed() int {
	return w.flushed
}
