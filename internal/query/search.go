package query

import (
	"fmt"
	"sort"
	"strings"
)

// MatchType classifies which field a pattern hit.
type MatchType string

const (
	MatchID          MatchType = "id"
	MatchDescription MatchType = "description"
	MatchBoth        MatchType = "both"
)

// SubsystemSearchResult is a sealed result variant. Callers type-switch on
// the concrete variant rather than probing for field presence:
// *SubsystemOverview for the no-pattern case, *SubsystemMatches when a
// pattern was given.
type SubsystemSearchResult interface {
	isSubsystemSearchResult()
}

// SystemSearchResult mirrors SubsystemSearchResult for system search.
type SystemSearchResult interface {
	isSystemSearchResult()
}

// SubsystemEntry is one distinct subsystem with its first-seen description.
type SubsystemEntry struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
}

// SubsystemMatch is a pattern hit on a subsystem.
type SubsystemMatch struct {
	SubsystemEntry
	MatchType MatchType `json:"matchType"`
}

// SystemEntry is one distinct system with its first-seen description and
// the sorted distinct subsystem ids that belong to it.
type SystemEntry struct {
	ID          string   `json:"id"`
	Description string   `json:"description,omitempty"`
	Subsystems  []string `json:"subsystems"`
}

// SystemMatch is a pattern hit on a system.
type SystemMatch struct {
	SystemEntry
	MatchType MatchType `json:"matchType"`
}

// SubsystemOverview lists every distinct subsystem (capped at the search
// limit, with a truncation note).
type SubsystemOverview struct {
	TotalSubsystems int              `json:"totalSubsystems"`
	Subsystems      []SubsystemEntry `json:"subsystems"`
	Truncated       string           `json:"truncated,omitempty"`
	Guidance        string           `json:"guidance"`
}

// SubsystemMatches lists subsystems matching a pattern. An empty match list
// is a valid result, not an error.
type SubsystemMatches struct {
	Pattern        string           `json:"pattern"`
	Found          int              `json:"found"`
	TotalAvailable int              `json:"totalAvailable"`
	Matches        []SubsystemMatch `json:"matches"`
	Truncated      string           `json:"truncated,omitempty"`
	Guidance       string           `json:"guidance"`
}

// SystemOverview lists every distinct system.
type SystemOverview struct {
	TotalSystems int           `json:"totalSystems"`
	Systems      []SystemEntry `json:"systems"`
	Truncated    string        `json:"truncated,omitempty"`
	Guidance     string        `json:"guidance"`
}

// SystemMatches lists systems matching a pattern.
type SystemMatches struct {
	Pattern        string        `json:"pattern"`
	Found          int           `json:"found"`
	TotalAvailable int           `json:"totalAvailable"`
	Matches        []SystemMatch `json:"matches"`
	Truncated      string        `json:"truncated,omitempty"`
	Guidance       string        `json:"guidance"`
}

func (*SubsystemOverview) isSubsystemSearchResult() {}
func (*SubsystemMatches) isSubsystemSearchResult()  {}
func (*SystemOverview) isSystemSearchResult()       {}
func (*SystemMatches) isSystemSearchResult()        {}

// SearchSubsystems returns an overview of all subsystems when pattern is
// empty, or the subsystems whose id or description contains the pattern
// (case-insensitive).
func (e *Engine) SearchSubsystems(pattern string) (SubsystemSearchResult, error) {
	ds, err := e.dataset()
	if err != nil {
		return nil, err
	}

	descriptions := make(map[string]string)
	var ids []string
	for _, r := range ds.Records {
		if _, seen := descriptions[r.SubsystemID]; !seen {
			descriptions[r.SubsystemID] = r.SubsystemDescription
			ids = append(ids, r.SubsystemID)
		}
	}
	sort.Strings(ids)

	if pattern == "" {
		entries := make([]SubsystemEntry, 0, len(ids))
		for _, id := range ids {
			entries = append(entries, SubsystemEntry{ID: id, Description: descriptions[id]})
		}
		total := len(entries)
		entries, truncated := capEntries(entries, e.limit, "subsystems")
		return &SubsystemOverview{
			TotalSubsystems: total,
			Subsystems:      entries,
			Truncated:       truncated,
			Guidance: fmt.Sprintf("Found %d total subsystems. Use a search pattern to narrow down or queryComprehensive for specific subsystem details",
				total),
		}, nil
	}

	var matches []SubsystemMatch
	for _, id := range ids {
		if mt, ok := matchType(pattern, id, descriptions[id]); ok {
			matches = append(matches, SubsystemMatch{
				SubsystemEntry: SubsystemEntry{ID: id, Description: descriptions[id]},
				MatchType:      mt,
			})
		}
	}

	found := len(matches)
	var truncated string
	if found > e.limit {
		matches = matches[:e.limit]
		truncated = fmt.Sprintf("Showing first %d of %d matches", e.limit, found)
	}
	if matches == nil {
		matches = []SubsystemMatch{}
	}

	return &SubsystemMatches{
		Pattern:        pattern,
		Found:          found,
		TotalAvailable: len(ids),
		Matches:        matches,
		Truncated:      truncated,
		Guidance:       matchGuidance(found, pattern, "subsystems", "queryComprehensive"),
	}, nil
}

// SearchSystems mirrors SearchSubsystems at the system level. Each system
// carries the sorted distinct subsystem ids that belong to it.
func (e *Engine) SearchSystems(pattern string) (SystemSearchResult, error) {
	ds, err := e.dataset()
	if err != nil {
		return nil, err
	}

	descriptions := make(map[string]string)
	members := make(map[string]map[string]bool)
	var ids []string
	for _, r := range ds.Records {
		if _, seen := descriptions[r.SystemID]; !seen {
			descriptions[r.SystemID] = r.SystemDescription
			members[r.SystemID] = make(map[string]bool)
			ids = append(ids, r.SystemID)
		}
		members[r.SystemID][r.SubsystemID] = true
	}
	sort.Strings(ids)

	entry := func(id string) SystemEntry {
		subs := make([]string, 0, len(members[id]))
		for s := range members[id] {
			subs = append(subs, s)
		}
		sort.Strings(subs)
		return SystemEntry{ID: id, Description: descriptions[id], Subsystems: subs}
	}

	if pattern == "" {
		entries := make([]SystemEntry, 0, len(ids))
		for _, id := range ids {
			entries = append(entries, entry(id))
		}
		total := len(entries)
		var truncated string
		if total > e.limit {
			entries = entries[:e.limit]
			truncated = fmt.Sprintf("Showing first %d of %d systems", e.limit, total)
		}
		return &SystemOverview{
			TotalSystems: total,
			Systems:      entries,
			Truncated:    truncated,
			Guidance: fmt.Sprintf("Found %d total systems. Use a search pattern to narrow down or query a subsystem for ITR details",
				total),
		}, nil
	}

	var matches []SystemMatch
	for _, id := range ids {
		if mt, ok := matchType(pattern, id, descriptions[id]); ok {
			matches = append(matches, SystemMatch{SystemEntry: entry(id), MatchType: mt})
		}
	}

	found := len(matches)
	var truncated string
	if found > e.limit {
		matches = matches[:e.limit]
		truncated = fmt.Sprintf("Showing first %d of %d matches", e.limit, found)
	}
	if matches == nil {
		matches = []SystemMatch{}
	}

	return &SystemMatches{
		Pattern:        pattern,
		Found:          found,
		TotalAvailable: len(ids),
		Matches:        matches,
		Truncated:      truncated,
		Guidance:       matchGuidance(found, pattern, "systems", "queryComprehensive"),
	}, nil
}

// matchType reports whether pattern (case-insensitive) hits the id, the
// description, or both.
func matchType(pattern, id, description string) (MatchType, bool) {
	p := strings.ToLower(pattern)
	idHit := strings.Contains(strings.ToLower(id), p)
	descHit := description != "" && strings.Contains(strings.ToLower(description), p)
	switch {
	case idHit && descHit:
		return MatchBoth, true
	case idHit:
		return MatchID, true
	case descHit:
		return MatchDescription, true
	default:
		return "", false
	}
}

func matchGuidance(found int, pattern, noun, queryTool string) string {
	if found == 0 {
		return fmt.Sprintf("No %s found matching %q. Try a shorter or different pattern", noun, pattern)
	}
	return fmt.Sprintf("Found %d %s matching %q. Use %s to get ITR details for any subsystem",
		found, noun, pattern, queryTool)
}

func capEntries(entries []SubsystemEntry, limit int, noun string) ([]SubsystemEntry, string) {
	if len(entries) <= limit {
		return entries, ""
	}
	return entries[:limit], fmt.Sprintf("Showing first %d of %d %s", limit, len(entries), noun)
}
