package storage

import (
	"github.com/dsnet/golib/memfile"
	"github.com/puzpuzpuz/xsync/v3"
	"mit.edu/dsg/lemurdb/common"
)

// MemRelationFile is a RelationFile held entirely in memory.
type MemRelationFile struct {
	*memfile.File
}

// NewMemRelationFile wraps a copy of data as a relation file.
func NewMemRelationFile(data []byte) MemRelationFile {
	buf := make([]byte, len(data))
	copy(buf, data)
	return MemRelationFile{File: memfile.New(buf)}
}

func (f MemRelationFile) Size() (int64, error) {
	return int64(len(f.Bytes())), nil
}

func (f MemRelationFile) Sync() error {
	return nil
}

func (f MemRelationFile) Close() error {
	return nil
}

// MemFileManager keeps relation files in memory. Closing it keeps the contents, so a relation can be reopened
// until it is dropped.
type MemFileManager struct {
	files *xsync.MapOf[common.ObjectID, MemRelationFile]
}

func NewMemFileManager() *MemFileManager {
	return &MemFileManager{files: xsync.NewMapOf[common.ObjectID, MemRelationFile]()}
}

func (m *MemFileManager) CreateRelation(oid common.ObjectID) (RelationFile, error) {
	file := NewMemRelationFile(nil)
	m.files.Store(oid, file)
	return file, nil
}

func (m *MemFileManager) OpenRelation(oid common.ObjectID) (RelationFile, error) {
	file, ok := m.files.Load(oid)
	if !ok {
		return nil, noSuchRelation(oid)
	}
	return file, nil
}

func (m *MemFileManager) DropRelation(oid common.ObjectID) error {
	if _, ok := m.files.LoadAndDelete(oid); !ok {
		return noSuchRelation(oid)
	}
	return nil
}

func (m *MemFileManager) Close() error {
	return nil
}
