package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"itrq/internal/processor"
	"itrq/internal/query"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *query.SubsystemReport:
		return formatReportHuman(v), nil
	case *query.SubsystemOverview:
		return formatSubsystemOverviewHuman(v), nil
	case *query.SubsystemMatches:
		return formatSubsystemMatchesHuman(v), nil
	case *query.SystemOverview:
		return formatSystemOverviewHuman(v), nil
	case *query.SystemMatches:
		return formatSystemMatchesHuman(v), nil
	case *processor.CacheStatus:
		return formatCacheStatusHuman(v), nil
	case *processor.ReloadResult:
		return formatReloadHuman(v), nil
	case *MetricsResponseCLI:
		return formatMetricsHuman(v), nil
	case *RecentCallsResponseCLI:
		return formatRecentCallsHuman(v), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func header(title string) string {
	return title + "\n" + strings.Repeat("=", 60) + "\n\n"
}

func formatReportHuman(r *query.SubsystemReport) string {
	var b strings.Builder

	b.WriteString(header(fmt.Sprintf("ITR Status - SubSystem %s", r.Subsystem)))
	if r.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n\n", r.Description)
	}

	b.WriteString("Overall:\n")
	fmt.Fprintf(&b, "  Total:      %d\n", r.Overall.Total)
	fmt.Fprintf(&b, "  Open:       %d (%d not started, %d ongoing)\n",
		r.Overall.Open, r.Overall.NotStarted, r.Overall.Ongoing)
	fmt.Fprintf(&b, "  Completed:  %d\n", r.Overall.Completed)
	if r.Overall.Unknown > 0 {
		fmt.Fprintf(&b, "  Unknown:    %d\n", r.Overall.Unknown)
	}
	fmt.Fprintf(&b, "  Completion: %.1f%%\n\n", r.CompletionRate)

	b.WriteString("By Type:\n")
	for _, tb := range r.ByType {
		fmt.Fprintf(&b, "  %s: %d total, %d open, %d completed\n",
			tb.Type, tb.Total, tb.Open, tb.Completed)
	}

	fmt.Fprintf(&b, "\n%s\n", r.Guidance)
	return b.String()
}

func formatSubsystemOverviewHuman(r *query.SubsystemOverview) string {
	var b strings.Builder

	b.WriteString(header(fmt.Sprintf("Subsystems (%d total)", r.TotalSubsystems)))
	for _, e := range r.Subsystems {
		writeEntryLine(&b, e.ID, e.Description, "")
	}
	writeFooterLines(&b, r.Truncated, r.Guidance)
	return b.String()
}

func formatSubsystemMatchesHuman(r *query.SubsystemMatches) string {
	var b strings.Builder

	b.WriteString(header(fmt.Sprintf("Subsystem Search: %q", r.Pattern)))
	fmt.Fprintf(&b, "Found %d of %d subsystems\n\n", r.Found, r.TotalAvailable)
	for _, m := range r.Matches {
		writeEntryLine(&b, m.ID, m.Description, string(m.MatchType))
	}
	writeFooterLines(&b, r.Truncated, r.Guidance)
	return b.String()
}

func formatSystemOverviewHuman(r *query.SystemOverview) string {
	var b strings.Builder

	b.WriteString(header(fmt.Sprintf("Systems (%d total)", r.TotalSystems)))
	for _, e := range r.Systems {
		writeSystemLine(&b, e, "")
	}
	writeFooterLines(&b, r.Truncated, r.Guidance)
	return b.String()
}

func formatSystemMatchesHuman(r *query.SystemMatches) string {
	var b strings.Builder

	b.WriteString(header(fmt.Sprintf("System Search: %q", r.Pattern)))
	fmt.Fprintf(&b, "Found %d of %d systems\n\n", r.Found, r.TotalAvailable)
	for _, m := range r.Matches {
		writeSystemLine(&b, m.SystemEntry, string(m.MatchType))
	}
	writeFooterLines(&b, r.Truncated, r.Guidance)
	return b.String()
}

func writeEntryLine(b *strings.Builder, id, description, matchType string) {
	fmt.Fprintf(b, "  %s", id)
	if description != "" {
		fmt.Fprintf(b, " - %s", description)
	}
	if matchType != "" {
		fmt.Fprintf(b, " [%s]", matchType)
	}
	b.WriteString("\n")
}

func writeSystemLine(b *strings.Builder, e query.SystemEntry, matchType string) {
	fmt.Fprintf(b, "  %s", e.ID)
	if e.Description != "" {
		fmt.Fprintf(b, " - %s", e.Description)
	}
	if matchType != "" {
		fmt.Fprintf(b, " [%s]", matchType)
	}
	fmt.Fprintf(b, "\n    subsystems: %s\n", strings.Join(e.Subsystems, ", "))
}

func writeFooterLines(b *strings.Builder, truncated, guidance string) {
	if truncated != "" {
		fmt.Fprintf(b, "\n%s\n", truncated)
	}
	fmt.Fprintf(b, "\n%s\n", guidance)
}

func formatCacheStatusHuman(s *processor.CacheStatus) string {
	var b strings.Builder

	b.WriteString(header("Cache Status"))
	if !s.Exists {
		b.WriteString("No cache exists. Data will load fresh from the source file.\n")
		return b.String()
	}

	state := "outdated"
	if s.Valid {
		state = "valid"
	}
	fmt.Fprintf(&b, "State:   %s\n", state)
	fmt.Fprintf(&b, "Records: %d\n", s.RecordCount)
	fmt.Fprintf(&b, "Age:     %.1f minutes\n", s.AgeMinutes)
	return b.String()
}

func formatReloadHuman(r *processor.ReloadResult) string {
	var b strings.Builder

	b.WriteString(header("Cache Reload"))
	if r.Success {
		fmt.Fprintf(&b, "Reloaded %d records from source.\n", r.RecordCount)
	} else {
		b.WriteString("Reload failed.\n")
		if r.Reason != "" {
			fmt.Fprintf(&b, "Reason: %s\n", r.Reason)
		}
	}
	return b.String()
}

func formatMetricsHuman(r *MetricsResponseCLI) string {
	var b strings.Builder

	b.WriteString(header(fmt.Sprintf("Tool Metrics (%s)", r.Period)))
	if len(r.Aggregates) == 0 {
		b.WriteString("No tool calls recorded in this period.\n")
		return b.String()
	}

	for _, a := range r.Aggregates {
		fmt.Fprintf(&b, "%s:\n", a.ToolName)
		fmt.Fprintf(&b, "  Calls:       %d\n", a.CallCount)
		fmt.Fprintf(&b, "  Errors:      %d (%.1f%%)\n", a.ErrCount, a.ErrorRate()*100)
		fmt.Fprintf(&b, "  Avg Latency: %.1fms\n\n", a.AvgLatencyMs())
	}
	return b.String()
}

func formatRecentCallsHuman(r *RecentCallsResponseCLI) string {
	var b strings.Builder

	title := fmt.Sprintf("Recent Tool Calls (last %d)", r.Limit)
	if r.Tool != "" {
		title = fmt.Sprintf("Recent %s Calls (last %d)", r.Tool, r.Limit)
	}
	b.WriteString(header(title))
	if len(r.Calls) == 0 {
		b.WriteString("No tool calls recorded.\n")
		return b.String()
	}

	for _, c := range r.Calls {
		outcome := "ok"
		if !c.OK {
			outcome = "error"
			if c.ErrorCode != "" {
				outcome = fmt.Sprintf("error (%s)", c.ErrorCode)
			}
		}
		fmt.Fprintf(&b, "%s  %-20s %6dms  %s\n",
			c.RecordedAt.Format("2006-01-02 15:04:05"), c.ToolName, c.DurationMs, outcome)
	}
	return b.String()
}
