package execution

import (
	"mit.edu/dsg/lemurdb/common"
	"mit.edu/dsg/lemurdb/storage"
)

// DiskScanExecutor reads every record of a relation file in storage order.
type DiskScanExecutor struct {
	scan    *storage.DiskScan
	current storage.Tuple
	err     error
}

// NewDiskScanExecutor opens a scan over the blocks currently in file, decoding records with types.
func NewDiskScanExecutor(file storage.RelationFile, types []common.Type) (*DiskScanExecutor, error) {
	src, err := storage.NewRelationReader(file)
	if err != nil {
		return nil, err
	}
	scan, err := storage.NewDiskScan(src, types)
	if err != nil {
		return nil, err
	}
	return &DiskScanExecutor{scan: scan}, nil
}

func (e *DiskScanExecutor) Next() bool {
	if e.err != nil {
		return false
	}
	t, ok, err := e.scan.Next()
	if err != nil {
		e.err = err
		return false
	}
	e.current = t
	return ok
}

func (e *DiskScanExecutor) Current() storage.Tuple {
	return e.current
}

func (e *DiskScanExecutor) Error() error {
	return e.err
}

func (e *DiskScanExecutor) Reset() error {
	e.err = nil
	return e.scan.Reset()
}

// Close leaves the relation file open. Files belong to the FileManager that opened them.
func (e *DiskScanExecutor) Close() error {
	return nil
}
