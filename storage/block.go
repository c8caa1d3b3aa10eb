package storage

import (
	"encoding/binary"
	"fmt"

	"mit.edu/dsg/lemurdb/common"
)

const (
	// BlockSize is the size of every block in a relation file. A file is a plain concatenation of blocks.
	BlockSize = 8000
	// BlockHeaderSize covers the two header pointers at the start of a block.
	BlockHeaderSize = 4
	// SlotSize is the size of one entry of the slot array.
	SlotSize = 2
	// MaxRecordSize is the largest record that fits in an otherwise empty block together with its slot.
	MaxRecordSize = BlockSize - BlockHeaderSize - SlotSize
)

// Block is a view over one slotted block of exactly BlockSize bytes.
//
// Layout:
//
//	[0,2)          upper: big-endian offset just past the last slot entry
//	[2,4)          lower: big-endian offset of the most recently written record
//	[4,upper)      slot array, one big-endian record start offset per record
//	[lower,8000)   records, packed back to front in reverse insertion order
//
// Records carry no length. Every record of a relation has the fixed length implied by its schema.
// A block whose header is all zeroes has never been written to and holds no records.
type Block []byte

// NewBlock allocates a zeroed block.
func NewBlock() Block {
	return make(Block, BlockSize)
}

func (b Block) Upper() int {
	return int(binary.BigEndian.Uint16(b[0:2]))
}

func (b Block) Lower() int {
	return int(binary.BigEndian.Uint16(b[2:4]))
}

func (b Block) setHeader(upper, lower int) {
	binary.BigEndian.PutUint16(b[0:2], uint16(upper))
	binary.BigEndian.PutUint16(b[2:4], uint16(lower))
}

func (b Block) setSlot(pos, start int) {
	binary.BigEndian.PutUint16(b[pos:pos+SlotSize], uint16(start))
}

// IsBlank reports whether the block has never had a record written to it.
func (b Block) IsBlank() bool {
	return b.Upper() == 0 && b.Lower() == 0
}

// NumSlots returns the number of records in the block.
func (b Block) NumSlots() int {
	if b.IsBlank() {
		return 0
	}
	return (b.Upper() - BlockHeaderSize) / SlotSize
}

// Slot returns the start offset of record i.
func (b Block) Slot(i int) int {
	off := BlockHeaderSize + i*SlotSize
	return int(binary.BigEndian.Uint16(b[off : off+SlotSize]))
}

// FreeSpace returns the number of bytes between the slot array and the record area.
func (b Block) FreeSpace() int {
	if b.IsBlank() {
		return BlockSize - BlockHeaderSize
	}
	return b.Lower() - b.Upper()
}

// clear zeroes the block so it can be reused for a fresh page.
func (b Block) clear() {
	clear(b)
}

// validate checks the header and slot array against the block format and the fixed record length of the
// schema the block is read with, and returns the record start offsets.
func (b Block) validate(recordLen int) ([]int, error) {
	if len(b) != BlockSize {
		return nil, corruptBlock("block has %d bytes, expected %d", len(b), BlockSize)
	}
	if b.IsBlank() {
		return nil, nil
	}
	upper, lower := b.Upper(), b.Lower()
	if upper < BlockHeaderSize || upper > lower || lower > BlockSize {
		return nil, corruptBlock("invalid header: upper=%d lower=%d", upper, lower)
	}
	if (upper-BlockHeaderSize)%SlotSize != 0 {
		return nil, corruptBlock("slot array ends mid-entry at %d", upper)
	}

	slots := make([]int, b.NumSlots())
	for i := range slots {
		start := b.Slot(i)
		if start < lower || start+recordLen > BlockSize {
			return nil, corruptBlock("slot %d points at %d, outside record area [%d,%d) for %d-byte records",
				i, start, lower, BlockSize, recordLen)
		}
		slots[i] = start
	}
	return slots, nil
}

func corruptBlock(format string, args ...any) error {
	return common.LemurError{Code: common.CorruptBlockError, ErrString: fmt.Sprintf(format, args...)}
}
