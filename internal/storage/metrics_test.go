package storage

import (
	"testing"
	"time"

	"itrq/internal/testutil"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir(), testutil.SilentLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRecordAndAggregate(t *testing.T) {
	db := openTestDB(t)

	calls := []struct {
		tool string
		ms   time.Duration
		ok   bool
		code string
	}{
		{"queryComprehensive", 12 * time.Millisecond, true, ""},
		{"queryComprehensive", 8 * time.Millisecond, true, ""},
		{"queryComprehensive", 5 * time.Millisecond, false, "SUBSYSTEM_NOT_FOUND"},
		{"search", 3 * time.Millisecond, true, ""},
	}
	for _, c := range calls {
		if err := db.RecordToolCall(c.tool, c.ms, c.ok, c.code); err != nil {
			t.Fatalf("RecordToolCall(%s): %v", c.tool, err)
		}
	}

	aggs, err := db.ToolAggregates(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(aggs) != 2 {
		t.Fatalf("aggregates = %d, want 2", len(aggs))
	}

	// Most-called first.
	q := aggs[0]
	if q.ToolName != "queryComprehensive" {
		t.Errorf("first tool = %s, want queryComprehensive", q.ToolName)
	}
	if q.CallCount != 3 || q.ErrCount != 1 || q.TotalMs != 25 {
		t.Errorf("aggregate = %+v", q)
	}
	if got := q.ErrorRate(); got < 0.33 || got > 0.34 {
		t.Errorf("ErrorRate = %v", got)
	}
}

func TestAggregatesRespectWindow(t *testing.T) {
	db := openTestDB(t)

	if err := db.RecordToolCall("search", time.Millisecond, true, ""); err != nil {
		t.Fatal(err)
	}

	aggs, err := db.ToolAggregates(time.Now().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(aggs) != 0 {
		t.Errorf("aggregates = %d, want 0 for a future window", len(aggs))
	}
}

func TestRecentToolCalls(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 5; i++ {
		ok := i%2 == 0
		code := ""
		if !ok {
			code = "NO_DATA"
		}
		if err := db.RecordToolCall("manageCache", time.Duration(i)*time.Millisecond, ok, code); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.RecordToolCall("search", time.Millisecond, true, ""); err != nil {
		t.Fatal(err)
	}

	all, err := db.RecentToolCalls(3, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].ToolName != "search" {
		t.Errorf("newest = %s, want search", all[0].ToolName)
	}

	filtered, err := db.RecentToolCalls(10, "manageCache")
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 5 {
		t.Fatalf("filtered len = %d, want 5", len(filtered))
	}
	for _, c := range filtered {
		if c.ToolName != "manageCache" {
			t.Errorf("unexpected tool %s in filtered results", c.ToolName)
		}
	}
	if !filtered[0].OK {
		t.Errorf("newest manageCache call should be ok: %+v", filtered[0])
	}
	if filtered[1].OK || filtered[1].ErrorCode != "NO_DATA" {
		t.Errorf("failed call should carry its error code: %+v", filtered[1])
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	logger := testutil.SilentLogger()

	db1, err := Open(dir, logger)
	if err != nil {
		t.Fatal(err)
	}
	if err := db1.RecordToolCall("search", time.Millisecond, true, ""); err != nil {
		t.Fatal(err)
	}
	if err := db1.Close(); err != nil {
		t.Fatal(err)
	}

	db2, err := Open(dir, logger)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()

	aggs, err := db2.ToolAggregates(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(aggs) != 1 || aggs[0].CallCount != 1 {
		t.Errorf("aggregates after reopen = %+v", aggs)
	}
}
