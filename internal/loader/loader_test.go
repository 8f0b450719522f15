package loader

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"itrq/internal/config"
	"itrq/internal/errors"
	"itrq/internal/records"
	"itrq/internal/testutil"
)

func newTestLoader(t *testing.T, source, fallback string) *Loader {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.SourceFile = source
	cfg.FallbackFile = fallback
	return New(cfg, testutil.SilentLogger())
}

func TestParse_SchemaError(t *testing.T) {
	l := newTestLoader(t, "unused.xlsx", "")

	table := &Table{
		Header: []string{"System", "SubSystem", "ITR"},
		Rows:   [][]string{{"S1", "SS1", "ITR-A"}},
	}

	_, err := l.Parse(table)
	if err == nil {
		t.Fatal("expected schema error")
	}

	ie := errors.AsItrError(err)
	if ie.Code != errors.SchemaInvalid {
		t.Errorf("Code = %v, want %v", ie.Code, errors.SchemaInvalid)
	}
	for _, col := range []string{"System Descr.", "SubSystem Descr.", "End Cert."} {
		if !strings.Contains(ie.Message, col) {
			t.Errorf("error %q should name missing column %q", ie.Message, col)
		}
	}
}

func TestParse_NormalizesAndDropsRows(t *testing.T) {
	l := newTestLoader(t, "unused.xlsx", "")

	table := &Table{
		Header: []string{"System", "System Descr.", "SubSystem", "SubSystem Descr.", "ITR", "End Cert."},
		Rows: [][]string{
			{" 7-1100-P-01 ", " Pumps ", " 7-1100-P-01-05 ", "Feed pumps", " ITR-A ", " Y "},
			{"", "x", "7-1100-P-01-05", "x", "ITR-A", "Y"},  // missing system
			{"7-1100-P-01", "x", "", "x", "ITR-A", "Y"},     // missing subsystem
			{"7-1100-P-01", "x", "7-1100-P-01-05", "x", "", "Y"}, // missing type
			{"7-1100-P-01", "", "7-1100-P-01-06", "", "ITR-B"},  // short row, End Cert. absent
		},
	}

	recs, err := l.Parse(table)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2 (three rows dropped)", len(recs))
	}

	got := recs[0]
	if got.SystemID != "7-1100-P-01" {
		t.Errorf("SystemID = %q, want trimmed value", got.SystemID)
	}
	if got.SystemDescription != "Pumps" {
		t.Errorf("SystemDescription = %q, want %q", got.SystemDescription, "Pumps")
	}
	if got.CompletionMarker != "Y" {
		t.Errorf("CompletionMarker = %q, want %q", got.CompletionMarker, "Y")
	}

	short := recs[1]
	if short.SubsystemID != "7-1100-P-01-06" || short.RecordType != "ITR-B" {
		t.Errorf("short row parsed wrong: %+v", short)
	}
	if short.CompletionMarker != "" {
		t.Errorf("CompletionMarker = %q, want empty for absent cell", short.CompletionMarker)
	}
}

func TestParse_AbsentMarkerIsNotStarted(t *testing.T) {
	l := newTestLoader(t, "unused.xlsx", "")

	table := &Table{
		Header: []string{"System", "System Descr.", "SubSystem", "SubSystem Descr.", "ITR", "End Cert."},
		Rows: [][]string{
			{"S1", "", "SS1", "", "ITR-A"}, // End Cert. missing entirely
		},
	}

	recs, err := l.Parse(table)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len = %d, want 1", len(recs))
	}
	if recs[0].CompletionMarker != "" {
		t.Errorf("CompletionMarker = %q, want empty for short row", recs[0].CompletionMarker)
	}
	if recs[0].Status() != records.StatusNotStarted {
		t.Errorf("Status = %v, want not_started", recs[0].Status())
	}
}

func TestParse_DeduplicatesWithAllKeyColumns(t *testing.T) {
	l := newTestLoader(t, "unused.xlsx", "")

	table := &Table{
		Header: testutil.FullHeader,
		Rows: [][]string{
			{"S1", "", "SS1", "", "ITR-A", "Y", "P001", "R001", "T001", "F001"},
			{"S1", "", "SS1", "", "ITR-B", "N", "P001", "R001", "T001", "F001"},
			{"S1", "", "SS1", "", "ITR-C", "", "P002", "R002", "T002", "F002"},
		},
	}

	recs, err := l.Parse(table)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2 after deduplication", len(recs))
	}
	if recs[0].RecordType != "ITR-A" {
		t.Errorf("survivor = %q, want first occurrence ITR-A", recs[0].RecordType)
	}
}

func TestParse_PartialKeyColumnsSkipsDedup(t *testing.T) {
	l := newTestLoader(t, "unused.xlsx", "")

	// Only ITEM and Rule present: rows that would be duplicates under the
	// full key must all survive.
	table := &Table{
		Header: []string{"System", "System Descr.", "SubSystem", "SubSystem Descr.", "ITR", "End Cert.", "ITEM", "Rule"},
		Rows: [][]string{
			{"S1", "", "SS1", "", "ITR-A", "Y", "P001", "R001"},
			{"S1", "", "SS1", "", "ITR-B", "N", "P001", "R001"},
		},
	}

	recs, err := l.Parse(table)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("len = %d, want 2 (dedup skipped)", len(recs))
	}
	if recs[0].ItemKey != "P001" || recs[0].RuleKey != "R001" {
		t.Errorf("present key columns should still be loaded, got %+v", recs[0])
	}
}

func TestParse_NoKeyColumnsSkipsDedup(t *testing.T) {
	l := newTestLoader(t, "unused.xlsx", "")

	table := &Table{
		Header: []string{"System", "System Descr.", "SubSystem", "SubSystem Descr.", "ITR", "End Cert."},
		Rows: [][]string{
			{"S1", "", "SS1", "", "ITR-A", "Y"},
			{"S1", "", "SS1", "", "ITR-A", "Y"},
		},
	}

	recs, err := l.Parse(table)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("len = %d, want 2 (no key columns, dedup skipped)", len(recs))
	}
}

func TestLoadFile_SourceMissing(t *testing.T) {
	l := newTestLoader(t, filepath.Join(t.TempDir(), "nope.xlsx"), "")

	_, err := l.LoadFile(l.SourcePath())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if errors.AsItrError(err).Code != errors.SourceNotFound {
		t.Errorf("Code = %v, want %v", errors.AsItrError(err).Code, errors.SourceNotFound)
	}
}

func TestLoad_WorkbookRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "itrs.xlsx")
	testutil.WriteWorkbook(t, path, testutil.FullHeader, [][]string{
		{"7-1100-P-01", "Pumps", "7-1100-P-01-05", "Feed pumps", "ITR-A", "Y", "P001", "R001", "T001", "F001"},
		{"7-1100-P-01", "Pumps", "7-1100-P-01-05", "Feed pumps", "ITR-B", "N", "P001", "R001", "T001", "F001"},
		{"7-1100-P-01", "Pumps", "7-1100-P-01-05", "Feed pumps", "ITR-C", "", "P002", "R002", "T002", "F002"},
	})

	l := newTestLoader(t, path, "")
	ds := l.Load()

	if ds.Degraded {
		t.Fatalf("dataset degraded: %s", ds.DegradedReason)
	}
	if ds.Len() != 2 {
		t.Fatalf("Len = %d, want 2 after dedup", ds.Len())
	}
	if ds.Records[0].SubsystemID != "7-1100-P-01-05" {
		t.Errorf("SubsystemID = %q", ds.Records[0].SubsystemID)
	}
}

func TestLoad_FallbackUsed(t *testing.T) {
	dir := t.TempDir()
	fallback := filepath.Join(dir, "fallback.xlsx")
	testutil.WriteWorkbook(t, fallback, testutil.FullHeader, [][]string{
		{"S1", "", "SS1", "", "ITR-A", "Y", "1", "2", "3", "4"},
	})

	l := newTestLoader(t, filepath.Join(dir, "missing.xlsx"), fallback)
	ds := l.Load()

	if ds.Degraded {
		t.Fatalf("fallback load should not be degraded: %s", ds.DegradedReason)
	}
	if ds.Len() != 1 {
		t.Errorf("Len = %d, want 1 from fallback", ds.Len())
	}
}

func TestLoad_TotalFailureDegrades(t *testing.T) {
	dir := t.TempDir()
	l := newTestLoader(t, filepath.Join(dir, "missing.xlsx"), filepath.Join(dir, "also-missing.xlsx"))

	ds := l.Load()
	if !ds.Degraded {
		t.Error("expected degraded dataset")
	}
	if ds.Len() != 0 {
		t.Errorf("Len = %d, want 0", ds.Len())
	}
	if ds.DegradedReason == "" {
		t.Error("degraded dataset should carry a reason")
	}
}

func TestLoad_ReaderFailureDegrades(t *testing.T) {
	// A file that exists but cannot be parsed as a workbook must degrade,
	// not crash.
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.xlsx")
	testutil.WriteWorkbook(t, path, testutil.FullHeader, nil)

	l := newTestLoader(t, path, "")
	l.SetReadTable(func(string) (*Table, error) {
		return nil, fmt.Errorf("zip: not a valid zip file")
	})

	ds := l.Load()
	if !ds.Degraded {
		t.Error("expected degraded dataset on reader failure")
	}
}
