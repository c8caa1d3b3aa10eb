package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/puzpuzpuz/xsync/v3"
	"mit.edu/dsg/lemurdb/common"
	"mit.edu/dsg/lemurdb/logging"
)

// DiskRelationFile implements the RelationFile interface using a standard OS file.
type DiskRelationFile struct {
	*os.File
}

// Size returns the file length from stat.
func (f DiskRelationFile) Size() (int64, error) {
	stat, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return stat.Size(), nil
}

// DiskFileManager manages a collection of DiskRelationFiles rooted at a specific directory.
type DiskFileManager struct {
	rootPath  string
	fileCache *xsync.MapOf[common.ObjectID, DiskRelationFile]
}

// NewDiskFileManager initializes a manager rooted at `rootPath`.
func NewDiskFileManager(rootPath string) *DiskFileManager {
	return &DiskFileManager{
		rootPath:  rootPath,
		fileCache: xsync.NewMapOf[common.ObjectID, DiskRelationFile](),
	}
}

func (dfm *DiskFileManager) path(oid common.ObjectID) string {
	return filepath.Join(dfm.rootPath, common.RelationFileName(oid))
}

// CreateRelation creates (or truncates) the file for oid.
func (dfm *DiskFileManager) CreateRelation(oid common.ObjectID) (RelationFile, error) {
	if file, ok := dfm.fileCache.Load(oid); ok {
		if err := file.Truncate(0); err != nil {
			return nil, fmt.Errorf("failed to truncate relation %d: %w", oid, err)
		}
		return file, nil
	}
	return dfm.open(oid, os.O_RDWR|os.O_CREATE|os.O_TRUNC)
}

// OpenRelation retrieves the file for oid.
//
// It maintains a cache of open files to ensure only one handle exists per physical file.
func (dfm *DiskFileManager) OpenRelation(oid common.ObjectID) (RelationFile, error) {
	if file, ok := dfm.fileCache.Load(oid); ok {
		return file, nil
	}
	file, err := dfm.open(oid, os.O_RDWR)
	if errors.Is(err, os.ErrNotExist) {
		return nil, noSuchRelation(oid)
	}
	return file, err
}

func (dfm *DiskFileManager) open(oid common.ObjectID, flag int) (RelationFile, error) {
	f, err := os.OpenFile(dfm.path(oid), flag, 0666)
	if err != nil {
		return nil, err
	}
	newFile := DiskRelationFile{File: f}

	actualFile, loaded := dfm.fileCache.LoadOrStore(oid, newFile)
	if loaded {
		// We lost the race. Another caller opened the file and inserted it first.
		// Close our unnecessary file handle and use theirs.
		_ = newFile.Close()
		return actualFile, nil
	}
	return newFile, nil
}

// DropRelation permanently deletes the file backing the given ObjectID.
//
// Warning: The caller must ensure that no scan or writer is still using the file.
func (dfm *DiskFileManager) DropRelation(oid common.ObjectID) error {
	file, loaded := dfm.fileCache.LoadAndDelete(oid)
	if loaded {
		if err := file.Close(); err != nil {
			// We continue even if close fails, to ensure physical deletion
			logging.WithComponent("file_manager").Warn("failed to close relation file, proceeding with deletion",
				"oid", oid, "error", err)
		}
	}

	err := os.Remove(dfm.path(oid))
	if errors.Is(err, os.ErrNotExist) {
		return noSuchRelation(oid)
	}
	return err
}

// Close syncs and closes every cached file.
func (dfm *DiskFileManager) Close() error {
	var errs []error
	dfm.fileCache.Range(func(oid common.ObjectID, file DiskRelationFile) bool {
		if err := file.Sync(); err != nil {
			errs = append(errs, fmt.Errorf("sync relation %d: %w", oid, err))
		}
		if err := file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close relation %d: %w", oid, err))
		}
		dfm.fileCache.Delete(oid)
		return true
	})
	return errors.Join(errs...)
}
