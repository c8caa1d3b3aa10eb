package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"mit.edu/dsg/lemurdb/catalog"
	"mit.edu/dsg/lemurdb/logging"
)

// NewCSVReader configures a csv.Reader the way every ingestion path expects. Field counts are checked against
// the schema when records are converted, not by the reader.
func NewCSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true
	return reader
}

// ImportCSV replaces the contents of rel's file with the records read from r and returns the number of tuples
// written. When hasHeader is set, the first record is skipped.
func ImportCSV(r io.Reader, rel *catalog.RelationSchema, fm FileManager, hasHeader bool) (int, error) {
	log := logging.WithRelation(rel.Name, uint32(rel.Oid))
	types := rel.Types()

	file, err := fm.CreateRelation(rel.Oid)
	if err != nil {
		return 0, err
	}
	dest, err := NewRelationAppender(file)
	if err != nil {
		return 0, err
	}
	writer := NewDiskWriter(dest)

	reader := NewCSVReader(r)
	count := 0
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read csv: %w", err)
		}
		if hasHeader && line == 1 {
			continue
		}

		t, err := FromTextRecord(record, types)
		if err != nil {
			return count, fmt.Errorf("line %d: %w", line, err)
		}
		if err := writer.AddTuple(t); err != nil {
			return count, fmt.Errorf("line %d: %w", line, err)
		}
		count++
	}

	if err := writer.Flush(); err != nil {
		return count, err
	}
	if err := file.Sync(); err != nil {
		return count, err
	}
	log.Info("csv imported", "tuples", count, "blocks", writer.BlocksFlushed())
	return count, nil
}
