// Package testutil provides shared testing utilities: workbook fixture
// writers and a silent logger.
package testutil

import (
	"io"
	"testing"

	"github.com/xuri/excelize/v2"

	"itrq/internal/logging"
)

// FullHeader is the complete source schema including the four
// deduplication key columns.
var FullHeader = []string{
	"System", "System Descr.", "SubSystem", "SubSystem Descr.",
	"ITR", "End Cert.", "ITEM", "Rule", "Test", "Form",
}

// BaseHeader is the required schema without the key columns.
var BaseHeader = []string{
	"System", "System Descr.", "SubSystem", "SubSystem Descr.",
	"ITR", "End Cert.",
}

// WriteWorkbook writes an .xlsx file with the given header and rows,
// failing the test on error.
func WriteWorkbook(t *testing.T, path string, header []string, rows [][]string) {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	all := append([][]string{header}, rows...)
	for i, row := range all {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellStr(sheet, cell, val); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

// SilentLogger returns a logger that discards all output.
func SilentLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.ErrorLevel,
		Output: io.Discard,
	})
}
