package storage

import (
	"time"
)

// ToolCall is one recorded tool invocation.
type ToolCall struct {
	ID         int64     `json:"id"`
	ToolName   string    `json:"toolName"`
	DurationMs int64     `json:"durationMs"`
	OK         bool      `json:"ok"`
	ErrorCode  string    `json:"errorCode,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

// ToolAggregate is the per-tool rollup reported by the metrics command.
type ToolAggregate struct {
	ToolName  string `json:"toolName"`
	CallCount int64  `json:"callCount"`
	ErrCount  int64  `json:"errCount"`
	TotalMs   int64  `json:"totalMs"`
}

// AvgLatencyMs returns the average call latency in milliseconds.
func (a *ToolAggregate) AvgLatencyMs() float64 {
	if a.CallCount == 0 {
		return 0
	}
	return float64(a.TotalMs) / float64(a.CallCount)
}

// ErrorRate returns the fraction of calls that failed.
func (a *ToolAggregate) ErrorRate() float64 {
	if a.CallCount == 0 {
		return 0
	}
	return float64(a.ErrCount) / float64(a.CallCount)
}

// RecordToolCall persists one tool invocation.
func (db *DB) RecordToolCall(toolName string, duration time.Duration, ok bool, errorCode string) error {
	okVal := 0
	if ok {
		okVal = 1
	}
	_, err := db.conn.Exec(`
		INSERT INTO tool_calls (tool_name, duration_ms, ok, error_code, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`, toolName, duration.Milliseconds(), okVal, errorCode, time.Now().UTC().Format(time.RFC3339))
	return err
}

// ToolAggregates returns per-tool rollups for calls recorded at or after
// since, most-called first.
func (db *DB) ToolAggregates(since time.Time) ([]ToolAggregate, error) {
	rows, err := db.conn.Query(`
		SELECT
			tool_name,
			COUNT(*) AS call_count,
			SUM(CASE WHEN ok = 0 THEN 1 ELSE 0 END) AS err_count,
			SUM(duration_ms) AS total_ms
		FROM tool_calls
		WHERE recorded_at >= ?
		GROUP BY tool_name
		ORDER BY call_count DESC, tool_name ASC
	`, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aggs []ToolAggregate
	for rows.Next() {
		var a ToolAggregate
		if err := rows.Scan(&a.ToolName, &a.CallCount, &a.ErrCount, &a.TotalMs); err != nil {
			return nil, err
		}
		aggs = append(aggs, a)
	}
	return aggs, rows.Err()
}

// RecentToolCalls returns the most recent calls, optionally filtered by tool.
func (db *DB) RecentToolCalls(limit int, toolFilter string) ([]ToolCall, error) {
	query := `
		SELECT id, tool_name, duration_ms, ok, error_code, recorded_at
		FROM tool_calls
	`
	args := []interface{}{}
	if toolFilter != "" {
		query += " WHERE tool_name = ?"
		args = append(args, toolFilter)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []ToolCall
	for rows.Next() {
		var c ToolCall
		var okVal int
		var recordedAt string
		if err := rows.Scan(&c.ID, &c.ToolName, &c.DurationMs, &okVal, &c.ErrorCode, &recordedAt); err != nil {
			return nil, err
		}
		c.OK = okVal != 0
		if ts, err := time.Parse(time.RFC3339, recordedAt); err == nil {
			c.RecordedAt = ts
		}
		calls = append(calls, c)
	}
	return calls, rows.Err()
}
