package records

import "strings"

// Status is the classified completion state of a record
type Status string

const (
	// StatusNotStarted means no completion marker has been recorded
	StatusNotStarted Status = "not_started"
	// StatusOngoing means work has started but is not certified complete
	StatusOngoing Status = "ongoing"
	// StatusCompleted means the record is certified complete
	StatusCompleted Status = "completed"
	// StatusUnknown means the marker holds unrecognized text
	StatusUnknown Status = "unknown"
)

// Display returns the human-readable form of the status.
func (s Status) Display() string {
	switch s {
	case StatusNotStarted:
		return "Not Started"
	case StatusOngoing:
		return "Ongoing"
	case StatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Classify maps a raw completion-marker value to a status. It is total:
// every string maps to exactly one status and nothing errors.
//
// "nan" and "none" are treated as empty because upstream exports render
// missing cells that way.
func Classify(marker string) Status {
	v := strings.ToLower(strings.TrimSpace(marker))
	switch v {
	case "", "nan", "none":
		return StatusNotStarted
	case "n":
		return StatusOngoing
	case "y":
		return StatusCompleted
	default:
		return StatusUnknown
	}
}
