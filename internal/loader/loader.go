// Package loader reads the source workbook into a normalized record set.
// It validates the schema, trims and normalizes every retained cell, drops
// rows missing their identifying fields, and runs composite-key
// deduplication when the source carries all four key columns.
//
// Loading never crashes the caller: a failed primary read falls back once
// to the configured fallback workbook, and if that also fails the loader
// returns an empty degraded dataset so the system stays queryable.
package loader

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"itrq/internal/config"
	"itrq/internal/errors"
	"itrq/internal/logging"
	"itrq/internal/records"
)

// Table is the raw contents of one worksheet: a header row plus data rows.
// Rows may be shorter than the header when trailing cells are empty.
type Table struct {
	Header []string
	Rows   [][]string
}

// Loader turns workbook files into datasets.
type Loader struct {
	sourcePath   string
	fallbackPath string
	logger       *logging.Logger

	// readTable is injectable so parsing and fallback behavior can be
	// tested without workbook files.
	readTable func(path string) (*Table, error)
}

// New creates a loader for the configured source and fallback paths.
func New(cfg *config.Config, logger *logging.Logger) *Loader {
	return &Loader{
		sourcePath:   cfg.SourceFile,
		fallbackPath: cfg.FallbackFile,
		logger:       logger,
		readTable:    readWorkbook,
	}
}

// SourcePath returns the primary source path.
func (l *Loader) SourcePath() string {
	return l.sourcePath
}

// Load reads the primary source, falling back once to the fallback path.
// It always returns a usable dataset; total failure yields an empty
// degraded dataset rather than an error.
func (l *Loader) Load() *records.Dataset {
	ds, err := l.LoadFile(l.sourcePath)
	if err == nil {
		return ds
	}

	l.logger.Warn("Failed to load primary source", map[string]interface{}{
		"path":  l.sourcePath,
		"error": err.Error(),
	})

	if l.fallbackPath != "" {
		if _, statErr := os.Stat(l.fallbackPath); statErr == nil {
			fbDs, fbErr := l.LoadFile(l.fallbackPath)
			if fbErr == nil {
				l.logger.Info("Loaded fallback source", map[string]interface{}{
					"path":    l.fallbackPath,
					"records": fbDs.Len(),
				})
				return fbDs
			}
			l.logger.Warn("Failed to load fallback source", map[string]interface{}{
				"path":  l.fallbackPath,
				"error": fbErr.Error(),
			})
		}
	}

	l.logger.Error("No source could be loaded, continuing with empty dataset", map[string]interface{}{
		"source": l.sourcePath,
	})
	return records.EmptyDataset(err.Error())
}

// LoadFile reads and parses a single workbook.
func (l *Loader) LoadFile(path string) (*records.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewSourceNotFound(path)
		}
		return nil, errors.New(errors.SourceNotFound, fmt.Sprintf("cannot access source file: %s", path), err)
	}

	start := time.Now()
	table, err := l.readTable(path)
	if err != nil {
		return nil, errors.New(errors.InternalError, fmt.Sprintf("failed to read workbook: %s", path), err)
	}

	recs, err := l.Parse(table)
	if err != nil {
		return nil, err
	}

	l.logger.Info("Loaded ITR records", map[string]interface{}{
		"path":       path,
		"records":    len(recs),
		"durationMs": time.Since(start).Milliseconds(),
	})

	return &records.Dataset{
		Records:    recs,
		SourcePath: path,
		LoadedAt:   time.Now(),
	}, nil
}

// Parse converts a raw table into normalized records. It fails only on
// schema violations; data-quality problems degrade per row.
func (l *Loader) Parse(table *Table) ([]records.Record, error) {
	cols := columnIndex(table.Header)

	var missing []string
	for _, name := range records.RequiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewSchemaError(missing)
	}

	keyPresent := 0
	for _, name := range records.KeyColumns {
		if _, ok := cols[name]; ok {
			keyPresent++
		}
	}
	dedupe := keyPresent == len(records.KeyColumns)
	if keyPresent > 0 && !dedupe {
		l.logger.Warn("Partial deduplication columns present, skipping deduplication", map[string]interface{}{
			"present":  keyPresent,
			"expected": len(records.KeyColumns),
		})
	}

	recs := make([]records.Record, 0, len(table.Rows))
	dropped := 0
	for _, row := range table.Rows {
		r := records.Record{
			SystemID:             cell(row, cols, records.ColSystem),
			SystemDescription:    cell(row, cols, records.ColSystemDescr),
			SubsystemID:          cell(row, cols, records.ColSubsystem),
			SubsystemDescription: cell(row, cols, records.ColSubsystemDesc),
			RecordType:           cell(row, cols, records.ColRecordType),
			CompletionMarker:     cell(row, cols, records.ColEndCert),
			ItemKey:              cell(row, cols, records.ColItem),
			RuleKey:              cell(row, cols, records.ColRule),
			TestKey:              cell(row, cols, records.ColTest),
			FormKey:              cell(row, cols, records.ColForm),
		}

		// Rows without their identifying fields are unusable.
		if r.SystemID == "" || r.SubsystemID == "" || r.RecordType == "" {
			dropped++
			continue
		}
		recs = append(recs, r)
	}

	if dropped > 0 {
		l.logger.Warn("Dropped rows missing identifying fields", map[string]interface{}{
			"dropped": dropped,
		})
	}

	if dedupe {
		before := len(recs)
		recs = records.Deduplicate(recs)
		l.logger.Info("Deduplicated records", map[string]interface{}{
			"before": before,
			"after":  len(recs),
		})
	}

	return recs, nil
}

// SetReadTable overrides the workbook reader. Test hook.
func (l *Loader) SetReadTable(fn func(path string) (*Table, error)) {
	l.readTable = fn
}

// columnIndex maps column names to positions. The first occurrence of a
// duplicated header wins.
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		if _, ok := cols[name]; !ok {
			cols[name] = i
		}
	}
	return cols
}

// cell returns the trimmed value of the named column for a row, or ""
// when the column is absent or the row is short.
func cell(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// readWorkbook reads the first sheet of an .xlsx workbook.
func readWorkbook(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets: %s", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}

	if len(rows) == 0 {
		return &Table{}, nil
	}
	return &Table{Header: rows[0], Rows: rows[1:]}, nil
}
