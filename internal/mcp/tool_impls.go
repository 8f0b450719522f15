package mcp

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"itrq/internal/errors"
	"itrq/internal/processor"
	"itrq/internal/query"
)

// handleQueryComprehensive implements the queryComprehensive tool.
func (s *Server) handleQueryComprehensive(params map[string]interface{}) (string, error) {
	subsystemID := strings.TrimSpace(cast.ToString(params["subsystemId"]))
	if subsystemID == "" {
		return "", errors.New(errors.InvalidArgument, "subsystemId is required", nil).
			WithGuidance("Pass the SubSystem ID to query, e.g. subsystemId=\"7-1100-P-01-05\"")
	}

	report, err := s.engine.QuerySubsystem(subsystemID)
	if err != nil {
		return "", err
	}
	return formatSubsystemReport(report), nil
}

// handleSearch implements the search tool.
func (s *Server) handleSearch(params map[string]interface{}) (string, error) {
	pattern := strings.TrimSpace(cast.ToString(params["pattern"]))
	scope := strings.TrimSpace(cast.ToString(params["scope"]))
	if scope == "" {
		scope = "subsystem"
	}

	switch scope {
	case "subsystem":
		res, err := s.engine.SearchSubsystems(pattern)
		if err != nil {
			return "", err
		}
		return formatSubsystemSearch(res), nil
	case "system":
		res, err := s.engine.SearchSystems(pattern)
		if err != nil {
			return "", err
		}
		return formatSystemSearch(res), nil
	default:
		return "", errors.New(errors.InvalidArgument, fmt.Sprintf("unknown scope %q", scope), nil).
			WithGuidance("Valid scopes: subsystem, system")
	}
}

// handleManageCache implements the manageCache tool.
func (s *Server) handleManageCache(params map[string]interface{}) (string, error) {
	action := strings.TrimSpace(cast.ToString(params["action"]))

	switch action {
	case "status":
		return formatCacheStatus(s.processor.CacheStatus()), nil
	case "reload":
		result := s.processor.Reload()
		var b strings.Builder
		if result.Success {
			b.WriteString("Data Reloaded Successfully\n")
			fmt.Fprintf(&b, "Loaded: %d records\n", result.RecordCount)
			b.WriteString("Guidance: Data reloaded successfully - all queries now use fresh data")
		} else {
			b.WriteString("Reload Failed\n")
			if result.Reason != "" {
				fmt.Fprintf(&b, "Reason: %s\n", result.Reason)
			}
			b.WriteString("Guidance: Check if the source file exists and is accessible")
		}
		return b.String(), nil
	default:
		return "", errors.NewInvalidAction(action, []string{"status", "reload"}).
			WithGuidance("Use action=\"status\" to check cache or action=\"reload\" to refresh data")
	}
}

func formatSubsystemReport(r *query.SubsystemReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "ITR Status for SubSystem: %s\n", r.Subsystem)
	if r.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", r.Description)
	}

	b.WriteString("\nOverall Summary:\n")
	fmt.Fprintf(&b, "- Total ITRs: %d\n", r.Overall.Total)
	fmt.Fprintf(&b, "- Open ITRs: %d (%d not started, %d ongoing)\n",
		r.Overall.Open, r.Overall.NotStarted, r.Overall.Ongoing)
	fmt.Fprintf(&b, "- Completed ITRs: %d\n", r.Overall.Completed)
	if r.Overall.Unknown > 0 {
		fmt.Fprintf(&b, "- Unknown status: %d\n", r.Overall.Unknown)
	}
	fmt.Fprintf(&b, "- Completion Rate: %.1f%%\n", r.CompletionRate)

	b.WriteString("\nBreakdown by Type:\n")
	for _, tb := range r.ByType {
		fmt.Fprintf(&b, "- %s: %d total | %d open | %d completed\n",
			tb.Type, tb.Total, tb.Open, tb.Completed)
	}

	fmt.Fprintf(&b, "\nGuidance: %s", r.Guidance)
	return b.String()
}

func formatSubsystemSearch(res query.SubsystemSearchResult) string {
	var b strings.Builder

	switch r := res.(type) {
	case *query.SubsystemOverview:
		b.WriteString("Subsystem Overview:\n")
		fmt.Fprintf(&b, "Total Available: %d\n\nSubsystems:\n", r.TotalSubsystems)
		for _, e := range r.Subsystems {
			writeEntry(&b, e.ID, e.Description, "")
		}
		writeFooter(&b, r.Truncated, r.Guidance)
	case *query.SubsystemMatches:
		fmt.Fprintf(&b, "Search Results for %q:\n", r.Pattern)
		fmt.Fprintf(&b, "Found %d of %d subsystems\n", r.Found, r.TotalAvailable)
		if len(r.Matches) > 0 {
			b.WriteString("\nMatching Subsystems:\n")
			for _, m := range r.Matches {
				writeEntry(&b, m.ID, m.Description, string(m.MatchType))
			}
		}
		writeFooter(&b, r.Truncated, r.Guidance)
	}

	return b.String()
}

func formatSystemSearch(res query.SystemSearchResult) string {
	var b strings.Builder

	switch r := res.(type) {
	case *query.SystemOverview:
		b.WriteString("System Overview:\n")
		fmt.Fprintf(&b, "Total Available: %d\n\nSystems:\n", r.TotalSystems)
		for _, e := range r.Systems {
			writeSystemEntry(&b, e, "")
		}
		writeFooter(&b, r.Truncated, r.Guidance)
	case *query.SystemMatches:
		fmt.Fprintf(&b, "Search Results for %q:\n", r.Pattern)
		fmt.Fprintf(&b, "Found %d of %d systems\n", r.Found, r.TotalAvailable)
		if len(r.Matches) > 0 {
			b.WriteString("\nMatching Systems:\n")
			for _, m := range r.Matches {
				writeSystemEntry(&b, m.SystemEntry, string(m.MatchType))
			}
		}
		writeFooter(&b, r.Truncated, r.Guidance)
	}

	return b.String()
}

func writeEntry(b *strings.Builder, id, description, matchType string) {
	fmt.Fprintf(b, "- %s", id)
	if description != "" {
		fmt.Fprintf(b, " (%s)", description)
	}
	if matchType != "" {
		fmt.Fprintf(b, " [matched: %s]", matchType)
	}
	b.WriteString("\n")
}

func writeSystemEntry(b *strings.Builder, e query.SystemEntry, matchType string) {
	fmt.Fprintf(b, "- %s", e.ID)
	if e.Description != "" {
		fmt.Fprintf(b, " (%s)", e.Description)
	}
	if matchType != "" {
		fmt.Fprintf(b, " [matched: %s]", matchType)
	}
	fmt.Fprintf(b, " - %d subsystems: %s\n", len(e.Subsystems), strings.Join(e.Subsystems, ", "))
}

func writeFooter(b *strings.Builder, truncated, guidance string) {
	if truncated != "" {
		fmt.Fprintf(b, "\n%s\n", truncated)
	}
	fmt.Fprintf(b, "\nGuidance: %s", guidance)
}

func formatCacheStatus(status *processor.CacheStatus) string {
	var b strings.Builder

	if !status.Exists {
		b.WriteString("Cache Status: No cache exists\n")
		b.WriteString("Guidance: No cache exists - data will load fresh from the source file")
		return b.String()
	}

	if status.Valid {
		b.WriteString("Cache Status: valid\n")
	} else {
		b.WriteString("Cache Status: outdated\n")
	}
	fmt.Fprintf(&b, "Records: %d\n", status.RecordCount)
	fmt.Fprintf(&b, "Age: %.1f minutes\n", status.AgeMinutes)
	if status.Valid {
		b.WriteString("Guidance: Cache is current - fast queries enabled")
	} else {
		b.WriteString("Guidance: Cache outdated - will reload from the source on next load")
	}
	return b.String()
}
