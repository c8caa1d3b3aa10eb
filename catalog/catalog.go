package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/tidwall/btree"
	"mit.edu/dsg/lemurdb/common"
	"mit.edu/dsg/lemurdb/logging"
)

// Catalog manages the relation schemas known to the engine and routes each relation to its backing file through
// its ObjectID. The catalog is serialized as a single JSON blob.
//
// Operators never consult the catalog: tuples carry no type information, and every operator that needs to
// decode a field is handed the column type it should use. The catalog exists so that callers (the CLI, import
// jobs) can recover those types for a named relation across restarts.
type Catalog struct {
	catalogState

	// In-memory index of relations ordered by name
	relations *btree.BTreeG[*RelationSchema]
}

// Column is one named, typed column of a schema.
type Column struct {
	Name string      `json:"name"`
	Type common.Type `json:"type"`
}

// Schema is an ordered list of columns.
type Schema struct {
	Columns []Column `json:"columns"`
}

// NewSchema builds a schema from the given columns.
func NewSchema(columns ...Column) Schema {
	return Schema{Columns: columns}
}

func (s Schema) NumColumns() int {
	return len(s.Columns)
}

// Types returns the column types in order. This is the only part of a schema the execution layer needs.
func (s Schema) Types() []common.Type {
	types := make([]common.Type, len(s.Columns))
	for i, c := range s.Columns {
		types[i] = c.Type
	}
	return types
}

func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1.
func (s Schema) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Concat returns the schema of a joined row: s's columns followed by other's.
func (s Schema) Concat(other Schema) Schema {
	columns := make([]Column, 0, len(s.Columns)+len(other.Columns))
	columns = append(columns, s.Columns...)
	columns = append(columns, other.Columns...)
	return Schema{Columns: columns}
}

// ParseColumns parses a column list of the form "name:type,name:type", e.g. "movieId:integer,title:text(255)".
func ParseColumns(spec string) ([]Column, error) {
	var columns []Column
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, typeName, ok := strings.Cut(part, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("column %q must be of the form name:type", part)
		}
		t, err := common.ParseType(typeName)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		columns = append(columns, Column{Name: strings.TrimSpace(name), Type: t})
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no columns in %q", spec)
	}
	return columns, nil
}

// RelationSchema is a named schema registered in the catalog. Its Oid identifies the relation's backing file.
type RelationSchema struct {
	Oid     common.ObjectID `json:"oid"`
	Name    string          `json:"name"`
	Columns []Column        `json:"columns"`
}

func (r *RelationSchema) Schema() Schema {
	return Schema{Columns: r.Columns}
}

// FileName returns the name of the relation's backing file.
func (r *RelationSchema) FileName() string {
	return common.RelationFileName(r.Oid)
}

func (r *RelationSchema) Types() []common.Type {
	return r.Schema().Types()
}

func (r *RelationSchema) String() string {
	b, _ := json.MarshalIndent(r, "", "  ")
	return string(b)
}

// PersistenceProvider abstracts how the catalog is saved to and loaded from disk.
type PersistenceProvider interface {
	LoadCatalogState() (json string, err error)
	SaveCatalogState(json string) error
}

type catalogState struct {
	NextId    uint32            `json:"next_id"`
	Relations []*RelationSchema `json:"relations"`
}

func (c *Catalog) String() string {
	b, _ := json.MarshalIndent(c, "", "  ")
	return string(b)
}

func (c *Catalog) toJSON() (string, error) {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *Catalog) fromJSON(jsonData string) error {
	if err := json.Unmarshal([]byte(jsonData), c); err != nil {
		return err
	}
	for _, r := range c.Relations {
		c.relations.Set(r)
	}
	return nil
}

func newRelationIndex() *btree.BTreeG[*RelationSchema] {
	return btree.NewBTreeG(func(a, b *RelationSchema) bool {
		return a.Name < b.Name
	})
}

// NewCatalog initializes a catalog. It attempts to load existing state
// from the provider; if no state exists, it starts with an empty database.
func NewCatalog(provider PersistenceProvider) (*Catalog, error) {
	result := &Catalog{
		catalogState: catalogState{
			NextId:    0,
			Relations: make([]*RelationSchema, 0),
		},
		relations: newRelationIndex(),
	}

	jsonData, err := provider.LoadCatalogState()
	if errors.Is(err, os.ErrNotExist) {
		// Start from scratch
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	if err = result.fromJSON(jsonData); err != nil {
		// Parsing errors are fatal system errors, usually indicating corruption
		return nil, fmt.Errorf("failed to parse catalog state: %v", err)
	}

	return result, nil
}

// AddRelation registers a new relation in the catalog.
// It assigns a globally unique ObjectID to the relation and persists the updated state. If a relation with that
// name already exists, it returns DuplicateObjectError.
func (c *Catalog) AddRelation(name string, columns []Column, provider PersistenceProvider) (*RelationSchema, error) {
	if _, exists := c.relations.Get(&RelationSchema{Name: name}); exists {
		return nil, common.LemurError{
			Code:      common.DuplicateObjectError,
			ErrString: fmt.Sprintf("relation '%s' already exists", name),
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("relation '%s' must have at least one column", name)
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	for _, col := range columns {
		if !seen.Add(col.Name) {
			return nil, common.LemurError{
				Code:      common.DuplicateObjectError,
				ErrString: fmt.Sprintf("column '%s' appears twice in relation '%s'", col.Name, name),
			}
		}
		common.Assert(!col.Type.IsNil(), "column '%s' has no type", col.Name)
	}

	// oid 0 is reserved for INVALID
	c.NextId++

	r := &RelationSchema{
		Oid:     common.ObjectID(c.NextId),
		Name:    name,
		Columns: columns,
	}

	c.Relations = append(c.Relations, r)
	c.relations.Set(r)
	if err := c.persist(provider); err != nil {
		c.Relations = c.Relations[:len(c.Relations)-1]
		c.relations.Delete(r)
		c.NextId--
		return nil, err
	}
	logging.WithRelation(r.Name, uint32(r.Oid)).Info("relation registered", "columns", len(columns))
	return r, nil
}

// persist saves the catalog state. Callers undo their in-memory change when it fails, so memory never runs
// ahead of what is on disk.
func (c *Catalog) persist(provider PersistenceProvider) error {
	jsonData, err := c.toJSON()
	if err != nil {
		return err
	}
	return provider.SaveCatalogState(jsonData)
}

// GetRelation fetches the schema for a specific relation name.
func (c *Catalog) GetRelation(name string) (*RelationSchema, error) {
	r, exists := c.relations.Get(&RelationSchema{Name: name})
	if !exists {
		return nil, common.LemurError{
			Code:      common.NoSuchObjectError,
			ErrString: fmt.Sprintf("relation '%s' does not exist", name),
		}
	}
	return r, nil
}

// ListRelations returns all relations ordered by name.
func (c *Catalog) ListRelations() []*RelationSchema {
	result := make([]*RelationSchema, 0, c.relations.Len())
	c.relations.Scan(func(r *RelationSchema) bool {
		result = append(result, r)
		return true
	})
	return result
}

// DropRelation removes the relation from the catalog and persists the change. The caller is responsible for
// deleting the relation's file.
func (c *Catalog) DropRelation(name string, provider PersistenceProvider) (*RelationSchema, error) {
	r, err := c.GetRelation(name)
	if err != nil {
		return nil, err
	}
	previous := c.Relations
	remaining := make([]*RelationSchema, 0, len(previous))
	for _, candidate := range previous {
		if candidate.Oid != r.Oid {
			remaining = append(remaining, candidate)
		}
	}

	c.Relations = remaining
	c.relations.Delete(r)
	if err := c.persist(provider); err != nil {
		c.Relations = previous
		c.relations.Set(r)
		return nil, err
	}
	return r, nil
}

const CatalogFileName = "catalog.json"

type DiskCatalogManager struct {
	rootPath string
}

func NewDiskCatalogManager(rootPath string) *DiskCatalogManager {
	return &DiskCatalogManager{
		rootPath: rootPath,
	}
}

// LoadCatalogState implements the catalog.PersistenceProvider interface.
func (dcm *DiskCatalogManager) LoadCatalogState() (string, error) {
	path := filepath.Join(dcm.rootPath, CatalogFileName)
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err // Let the caller (Catalog) handle os.ErrNotExist
	}
	return string(content), nil
}

// SaveCatalogState implements the catalog.PersistenceProvider interface.
func (dcm *DiskCatalogManager) SaveCatalogState(jsonData string) error {
	// perform an atomic write using a temporary file.
	tmpPath := filepath.Join(dcm.rootPath, CatalogFileName+".tmp")
	finalPath := filepath.Join(dcm.rootPath, CatalogFileName)

	if err := os.WriteFile(tmpPath, []byte(jsonData), 0644); err != nil {
		return err
	}

	return os.Rename(tmpPath, finalPath)
}

// MemCatalogManager keeps the catalog state in memory.
type MemCatalogManager struct {
	state string
	saved bool
}

func (m *MemCatalogManager) LoadCatalogState() (string, error) {
	if !m.saved {
		return "", os.ErrNotExist
	}
	return m.state, nil
}

func (m *MemCatalogManager) SaveCatalogState(jsonData string) error {
	m.state = jsonData
	m.saved = true
	return nil
}
