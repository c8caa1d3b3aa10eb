package storage

import (
	"fmt"
	"io"

	"mit.edu/dsg/lemurdb/common"
)

// RelationFile abstracts the physical file that stores one relation as a sequence of blocks.
//
// Scans and writers never share a file offset. Each gets its own cursor through NewRelationReader or
// NewRelationAppender, so a relation can be scanned while another writer appends to it.
type RelationFile interface {
	io.ReaderAt
	io.WriterAt
	// Size returns the current length of the file in bytes.
	Size() (int64, error)
	// Sync forces any buffered writes to stable storage, ensuring durability.
	Sync() error
	// Close closes the underlying file handle and releases resources.
	Close() error
}

// FileManager manages the lifecycle and caching of RelationFile instances, keyed by the relation's ObjectID.
type FileManager interface {
	// CreateRelation returns an empty file for the relation, truncating any existing content.
	CreateRelation(oid common.ObjectID) (RelationFile, error)
	// OpenRelation returns the existing file for the relation, or NoSuchObjectError if there is none. If the
	// file is already open, the cached handle is returned.
	OpenRelation(oid common.ObjectID) (RelationFile, error)
	// DropRelation permanently removes the file for the relation.
	DropRelation(oid common.ObjectID) error
	// Close closes every open file.
	Close() error
}

// NewRelationReader returns a reader over the blocks currently in f. Blocks appended after the call are not
// visible to the reader.
func NewRelationReader(f RelationFile) (io.ReadSeeker, error) {
	size, err := f.Size()
	if err != nil {
		return nil, err
	}
	return io.NewSectionReader(f, 0, size), nil
}

// NewRelationAppender returns a writer that appends to the end of f.
func NewRelationAppender(f RelationFile) (io.Writer, error) {
	size, err := f.Size()
	if err != nil {
		return nil, err
	}
	if size%BlockSize != 0 {
		return nil, corruptBlock("relation file of %d bytes is not a whole number of blocks", size)
	}
	return io.NewOffsetWriter(f, size), nil
}

// NumBlocks returns the number of whole blocks in f.
func NumBlocks(f RelationFile) (int, error) {
	size, err := f.Size()
	if err != nil {
		return 0, fmt.Errorf("failed to stat relation file: %w", err)
	}
	return int(size / BlockSize), nil
}

func noSuchRelation(oid common.ObjectID) error {
	return common.LemurError{
		Code:      common.NoSuchObjectError,
		ErrString: fmt.Sprintf("no file for relation %d", oid),
	}
}
