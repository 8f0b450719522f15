package query

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"itrq/internal/errors"
	"itrq/internal/records"
)

// Breakdown is the status bucket distribution of a set of records.
// Unknown markers count toward Total but not toward Open.
type Breakdown struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	Completed  int `json:"completed"`
	NotStarted int `json:"notStarted"`
	Ongoing    int `json:"ongoing"`
	Unknown    int `json:"unknown,omitempty"`
}

// TypeBreakdown is the breakdown restricted to one record type.
type TypeBreakdown struct {
	Type string `json:"type"`
	Breakdown
}

// SubsystemReport is the comprehensive aggregate result for one subsystem.
// ByType always carries every canonical type in canonical order, zero-filled
// for types absent from the data.
type SubsystemReport struct {
	Subsystem      string          `json:"subsystem"`
	Description    string          `json:"description,omitempty"`
	Overall        Breakdown       `json:"overall"`
	ByType         []TypeBreakdown `json:"byType"`
	CompletionRate float64         `json:"completionRate"`
	Guidance       string          `json:"guidance"`
}

// QuerySubsystem aggregates every record of one subsystem. A subsystem with
// no records is a semantic not-found result, returned as an error value
// carrying guidance.
func (e *Engine) QuerySubsystem(subsystemID string) (*SubsystemReport, error) {
	ds, err := e.dataset()
	if err != nil {
		return nil, err
	}

	var rows []records.Record
	for _, r := range ds.Records {
		if r.SubsystemID == subsystemID {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return nil, errors.NewSubsystemNotFound(subsystemID)
	}

	overall := breakdown(rows)

	byType := make([]TypeBreakdown, 0, len(records.CanonicalTypes))
	for _, t := range records.CanonicalTypes {
		var typed []records.Record
		for _, r := range rows {
			if r.RecordType == t {
				typed = append(typed, r)
			}
		}
		byType = append(byType, TypeBreakdown{Type: t, Breakdown: breakdown(typed)})
	}

	report := &SubsystemReport{
		Subsystem:      subsystemID,
		Description:    rows[0].SubsystemDescription,
		Overall:        overall,
		ByType:         byType,
		CompletionRate: completionRate(overall),
		Guidance:       generateGuidance(overall.Open, byType),
	}

	e.logger.Debug("Computed subsystem report", map[string]interface{}{
		"subsystem": subsystemID,
		"total":     overall.Total,
		"open":      overall.Open,
	})

	return report, nil
}

// breakdown counts records by classified status.
func breakdown(rows []records.Record) Breakdown {
	var b Breakdown
	b.Total = len(rows)
	for _, r := range rows {
		switch r.Status() {
		case records.StatusCompleted:
			b.Completed++
		case records.StatusOngoing:
			b.Ongoing++
		case records.StatusNotStarted:
			b.NotStarted++
		default:
			b.Unknown++
		}
	}
	b.Open = b.NotStarted + b.Ongoing
	return b
}

// completionRate is completed/total as a percentage, rounded to one decimal,
// 0 for an empty set.
func completionRate(b Breakdown) float64 {
	if b.Total == 0 {
		return 0
	}
	return math.Round(float64(b.Completed)/float64(b.Total)*100*10) / 10
}

// generateGuidance produces the next-action text attached to every report.
func generateGuidance(open int, byType []TypeBreakdown) string {
	var suggestions []string

	if open > 0 {
		suggestions = append(suggestions, fmt.Sprintf("Found %d open ITRs", open))

		withOpen := make([]TypeBreakdown, 0, len(byType))
		for _, tb := range byType {
			if tb.Open > 0 {
				withOpen = append(withOpen, tb)
			}
		}
		// Stable so the canonical type order breaks ties.
		sort.SliceStable(withOpen, func(i, j int) bool {
			return withOpen[i].Open > withOpen[j].Open
		})
		if len(withOpen) > 0 {
			top := withOpen[0]
			suggestions = append(suggestions,
				fmt.Sprintf("Most open ITRs are %s (%d open)", top.Type, top.Open))
		}
	} else {
		suggestions = append(suggestions, "All ITRs completed")
	}

	suggestions = append(suggestions,
		"Ask about specific ITR types, compare with other subsystems, or search for related subsystems")

	return strings.Join(suggestions, ". ")
}
