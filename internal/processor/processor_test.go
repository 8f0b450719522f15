package processor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"itrq/internal/config"
	"itrq/internal/testutil"
)

func testConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.SourceFile = filepath.Join(dir, "itrs.xlsx")
	cfg.FallbackFile = ""
	cfg.CacheDir = filepath.Join(dir, "cache")
	return cfg
}

func sampleRows() [][]string {
	return [][]string{
		{"7-1100-P-01", "Pumps", "7-1100-P-01-05", "Feed pumps", "ITR-A", "Y", "P001", "R001", "T001", "F001"},
		{"7-1100-P-01", "Pumps", "7-1100-P-01-05", "Feed pumps", "ITR-B", "N", "P001", "R001", "T001", "F001"},
		{"7-1100-P-01", "Pumps", "7-1100-P-01-05", "Feed pumps", "ITR-C", "", "P002", "R002", "T002", "F002"},
	}
}

func TestProcessor_InitialLoadAndPersist(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	testutil.WriteWorkbook(t, cfg.SourceFile, testutil.FullHeader, sampleRows())

	p := New(cfg, testutil.SilentLogger())

	ds := p.Dataset()
	if ds.Degraded {
		t.Fatalf("dataset degraded: %s", ds.DegradedReason)
	}
	if ds.Len() != 2 {
		t.Fatalf("Len = %d, want 2 after dedup", ds.Len())
	}

	status := p.CacheStatus()
	if !status.Exists {
		t.Error("cache should exist after a successful load")
	}
	if !status.Valid {
		t.Error("cache should be valid immediately after load")
	}
	if status.RecordCount != 2 {
		t.Errorf("RecordCount = %d, want 2", status.RecordCount)
	}
}

func TestProcessor_ServesFromCacheWithoutSourceRead(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	testutil.WriteWorkbook(t, cfg.SourceFile, testutil.FullHeader, sampleRows())

	// First processor populates the cache.
	New(cfg, testutil.SilentLogger())

	// Replace the source with garbage but restore the original mtime:
	// a cache hit must not re-read the file.
	info, err := os.Stat(cfg.SourceFile)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.SourceFile, []byte("not a workbook"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(cfg.SourceFile, info.ModTime(), info.ModTime()); err != nil {
		t.Fatal(err)
	}

	p2 := New(cfg, testutil.SilentLogger())
	ds := p2.Dataset()
	if ds.Degraded {
		t.Fatalf("cache hit should have served: %s", ds.DegradedReason)
	}
	if ds.Len() != 2 {
		t.Errorf("Len = %d, want 2 from cache", ds.Len())
	}
}

func TestProcessor_StaleCacheTriggersReload(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	testutil.WriteWorkbook(t, cfg.SourceFile, testutil.FullHeader, sampleRows())

	p := New(cfg, testutil.SilentLogger())
	if p.Dataset().Len() != 2 {
		t.Fatal("setup failed")
	}

	// Rewrite the source with one extra unique row and push its mtime
	// into the future.
	rows := append(sampleRows(),
		[]string{"7-1100-P-02", "", "7-1100-P-02-01", "", "ITR-A", "N", "P003", "R003", "T003", "F003"})
	testutil.WriteWorkbook(t, cfg.SourceFile, testutil.FullHeader, rows)
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(cfg.SourceFile, future, future); err != nil {
		t.Fatal(err)
	}

	if status := p.CacheStatus(); status.Valid {
		t.Error("cache should be stale after source mtime advanced")
	}

	p2 := New(cfg, testutil.SilentLogger())
	if p2.Dataset().Len() != 3 {
		t.Errorf("Len = %d, want 3 after re-reading updated source", p2.Dataset().Len())
	}
}

func TestProcessor_Reload(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	testutil.WriteWorkbook(t, cfg.SourceFile, testutil.FullHeader, sampleRows())

	p := New(cfg, testutil.SilentLogger())

	// Update the source without advancing mtime past cache validity
	// concerns; reload must bypass the cache regardless.
	rows := append(sampleRows(),
		[]string{"7-1100-P-02", "", "7-1100-P-02-01", "", "ITR-A", "N", "P003", "R003", "T003", "F003"})
	testutil.WriteWorkbook(t, cfg.SourceFile, testutil.FullHeader, rows)

	result := p.Reload()
	if !result.Success {
		t.Fatalf("reload failed: %+v", result)
	}
	if result.RecordCount != 3 {
		t.Errorf("RecordCount = %d, want 3", result.RecordCount)
	}
	if p.Dataset().Len() != 3 {
		t.Errorf("dataset Len = %d, want 3 after reload", p.Dataset().Len())
	}
}

func TestProcessor_MissingSourceDegrades(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	// No workbook written.

	p := New(cfg, testutil.SilentLogger())

	ds := p.Dataset()
	if !ds.Degraded {
		t.Error("expected degraded dataset for missing source")
	}
	if ds.Len() != 0 {
		t.Errorf("Len = %d, want 0", ds.Len())
	}

	status := p.CacheStatus()
	if status.Exists {
		t.Error("no cache should be written for a degraded load")
	}

	result := p.Reload()
	if result.Success {
		t.Error("reload of a missing source should not report success")
	}
}

func TestProcessor_CacheStatusNoCache(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)

	p := New(cfg, testutil.SilentLogger())
	status := p.CacheStatus()
	if status.Exists || status.Valid {
		t.Errorf("status = %+v, want neither exists nor valid", status)
	}
}

func TestShared_SingleInstance(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	testutil.WriteWorkbook(t, cfg.SourceFile, testutil.FullHeader, sampleRows())

	logger := testutil.SilentLogger()

	const n = 8
	procs := make([]*Processor, n)
	done := make(chan int, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			procs[i] = Shared(cfg, logger)
			done <- i
		}(i)
	}
	for i := 0; i < n; i++ {
		<-done
	}

	for i := 1; i < n; i++ {
		if procs[i] != procs[0] {
			t.Fatal("Shared returned different instances under concurrent first access")
		}
	}
}
