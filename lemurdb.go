package lemurdb

import (
	"errors"
	"fmt"
	"io"
	"os"

	"mit.edu/dsg/lemurdb/catalog"
	"mit.edu/dsg/lemurdb/common"
	"mit.edu/dsg/lemurdb/execution"
	"mit.edu/dsg/lemurdb/logging"
	"mit.edu/dsg/lemurdb/storage"
)

// LemurDB is the top-level container for a database living in one data directory: the catalog, persisted as
// catalog.json, and one block file per relation.
type LemurDB struct {
	Catalog *catalog.Catalog
	Files   *storage.DiskFileManager

	provider *catalog.DiskCatalogManager
}

// Open loads (or creates) the database in dataDir.
func Open(dataDir string) (*LemurDB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	provider := catalog.NewDiskCatalogManager(dataDir)
	cat, err := catalog.NewCatalog(provider)
	if err != nil {
		return nil, err
	}
	logging.WithComponent("lemurdb").Debug("database opened", "data_dir", dataDir, "relations", len(cat.ListRelations()))

	return &LemurDB{
		Catalog:  cat,
		Files:    storage.NewDiskFileManager(dataDir),
		provider: provider,
	}, nil
}

// Import registers a new relation and loads the CSV records in r into it. If loading fails, the relation is
// removed again and the error is returned.
func (db *LemurDB) Import(name string, columns []catalog.Column, r io.Reader, hasHeader bool) (*catalog.RelationSchema, int, error) {
	rel, err := db.Catalog.AddRelation(name, columns, db.provider)
	if err != nil {
		return nil, 0, err
	}
	n, err := storage.ImportCSV(r, rel, db.Files, hasHeader)
	if err != nil {
		return nil, 0, errors.Join(err, db.Drop(name))
	}
	return rel, n, nil
}

// Drop removes the relation from the catalog and deletes its file. A relation whose file was never written is
// dropped without error.
func (db *LemurDB) Drop(name string) error {
	rel, err := db.Catalog.DropRelation(name, db.provider)
	if err != nil {
		return err
	}
	if err := db.Files.DropRelation(rel.Oid); err != nil && !common.HasCode(err, common.NoSuchObjectError) {
		return err
	}
	return nil
}

// Scan starts a query over the named relation.
func (db *LemurDB) Scan(name string) (*execution.Query, *catalog.RelationSchema, error) {
	rel, err := db.Catalog.GetRelation(name)
	if err != nil {
		return nil, nil, err
	}
	q := execution.FromRelation(db.Files, rel)
	if err := q.Err(); err != nil {
		return nil, nil, err
	}
	return q, rel, nil
}

// Close syncs and closes every relation file.
func (db *LemurDB) Close() error {
	return db.Files.Close()
}
