// Package records defines the ITR record model, status classification,
// and composite-key deduplication.
//
// An ITR (Inspection Test Record) is one line-item of certifiable work,
// belonging to a SubSystem, which in turn belongs to a System.
package records

import "time"

// Source workbook column names. Matching is exact and case-sensitive.
const (
	ColSystem        = "System"
	ColSystemDescr   = "System Descr."
	ColSubsystem     = "SubSystem"
	ColSubsystemDesc = "SubSystem Descr."
	ColRecordType    = "ITR"
	ColEndCert       = "End Cert."

	// Deduplication key columns. Optional as a group: all four must be
	// present for deduplication to run.
	ColItem = "ITEM"
	ColRule = "Rule"
	ColTest = "Test"
	ColForm = "Form"
)

// RequiredColumns lists the columns every source workbook must carry.
var RequiredColumns = []string{
	ColSystem,
	ColSystemDescr,
	ColSubsystem,
	ColSubsystemDesc,
	ColRecordType,
	ColEndCert,
}

// KeyColumns lists the composite-key columns, in key order.
var KeyColumns = []string{ColItem, ColRule, ColTest, ColForm}

// Canonical record types always reported in per-type breakdowns, in order.
var CanonicalTypes = []string{"ITR-A", "ITR-B", "ITR-C"}

// Record is one normalized inspection-test-record row. All fields are
// trimmed and never missing; optional source cells become empty strings.
type Record struct {
	SystemID             string `json:"systemId"`
	SystemDescription    string `json:"systemDescription"`
	SubsystemID          string `json:"subsystemId"`
	SubsystemDescription string `json:"subsystemDescription"`
	RecordType           string `json:"recordType"`
	CompletionMarker     string `json:"completionMarker"`

	ItemKey string `json:"itemKey,omitempty"`
	RuleKey string `json:"ruleKey,omitempty"`
	TestKey string `json:"testKey,omitempty"`
	FormKey string `json:"formKey,omitempty"`
}

// Status classifies the record's completion marker.
func (r Record) Status() Status {
	return Classify(r.CompletionMarker)
}

// Dataset is the in-memory collection of records. It is rebuilt wholesale
// on every reload and never mutated in place by query or search code.
//
// Degraded marks a dataset produced by the load-failure fallback path
// (empty records instead of a crash) so callers can surface a warning
// instead of silently operating on nothing.
type Dataset struct {
	Records        []Record  `json:"records"`
	SourcePath     string    `json:"sourcePath,omitempty"`
	Degraded       bool      `json:"degraded,omitempty"`
	DegradedReason string    `json:"degradedReason,omitempty"`
	LoadedAt       time.Time `json:"loadedAt"`
}

// EmptyDataset returns a degraded dataset carrying the failure reason.
func EmptyDataset(reason string) *Dataset {
	return &Dataset{
		Records:        []Record{},
		Degraded:       true,
		DegradedReason: reason,
		LoadedAt:       time.Now(),
	}
}

// Empty reports whether the dataset has no records.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Records) == 0
}

// Len returns the record count.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}
