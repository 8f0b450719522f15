// Package errors defines the stable error taxonomy for itrq.
// Every failure mode carries a machine-readable code plus human guidance
// naming the corrective action, so callers can surface errors without
// inspecting Go error chains.
package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// SchemaInvalid indicates required columns are absent from the source workbook
	SchemaInvalid ErrorCode = "SCHEMA_INVALID"
	// SourceNotFound indicates the source workbook path does not exist
	SourceNotFound ErrorCode = "SOURCE_NOT_FOUND"
	// CacheCorrupt indicates the cache artifacts could not be deserialized
	CacheCorrupt ErrorCode = "CACHE_CORRUPT"
	// SubsystemNotFound indicates a query targeted a subsystem with no records
	SubsystemNotFound ErrorCode = "SUBSYSTEM_NOT_FOUND"
	// InvalidAction indicates an unrecognized cache-management action
	InvalidAction ErrorCode = "INVALID_ACTION"
	// InvalidArgument indicates a missing or malformed tool parameter
	InvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// NoData indicates the dataset is empty (degraded load)
	NoData ErrorCode = "NO_DATA"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// ItrError is the error type returned across component boundaries.
// Semantic conditions (not-found, invalid action) travel as ordinary
// ItrError values; they are never panics.
type ItrError struct {
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	Guidance string    `json:"guidance,omitempty"`
	cause    error     // Underlying error (not exported to JSON)
}

// New creates a new ItrError. When guidance is empty the default
// guidance for the code is used.
func New(code ErrorCode, message string, cause error) *ItrError {
	return &ItrError{
		Code:     code,
		Message:  message,
		Guidance: GetGuidance(code),
		cause:    cause,
	}
}

// Error implements the error interface
func (e *ItrError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ItrError) Unwrap() error {
	return e.cause
}

// WithGuidance overrides the default guidance for the code
func (e *ItrError) WithGuidance(guidance string) *ItrError {
	e.Guidance = guidance
	return e
}

// defaultGuidance maps error codes to the default next-action text.
var defaultGuidance = map[ErrorCode]string{
	SchemaInvalid:     "Check that the source workbook has the expected header row",
	SourceNotFound:    "Check that the source file exists and the configured path is correct",
	CacheCorrupt:      "Run manageCache with action=\"reload\" to rebuild the cache",
	SubsystemNotFound: "Use search() to find available subsystem IDs",
	InvalidArgument:   "Check the tool's input schema for required parameters",
	NoData:            "Try reloading data with the manageCache tool",
	InternalError:     "Retry the operation; report the error if it persists",
}

// GetGuidance returns the default guidance for an error code.
func GetGuidance(code ErrorCode) string {
	return defaultGuidance[code]
}

// NewSchemaError builds a SchemaInvalid error naming every missing column.
func NewSchemaError(missing []string) *ItrError {
	return New(SchemaInvalid,
		fmt.Sprintf("source is missing required columns: %s", strings.Join(missing, ", ")),
		nil)
}

// NewSourceNotFound builds a SourceNotFound error for a path.
func NewSourceNotFound(path string) *ItrError {
	return New(SourceNotFound, fmt.Sprintf("source file not found: %s", path), nil)
}

// NewSubsystemNotFound builds the semantic not-found result for a subsystem query.
func NewSubsystemNotFound(subsystem string) *ItrError {
	return New(SubsystemNotFound, fmt.Sprintf("no ITRs found for subsystem %s", subsystem), nil)
}

// NewInvalidAction builds an InvalidAction error listing the valid actions.
func NewInvalidAction(action string, valid []string) *ItrError {
	e := New(InvalidAction, fmt.Sprintf("unknown action %q", action), nil)
	e.Guidance = fmt.Sprintf("Valid actions: %s", strings.Join(valid, ", "))
	return e
}

// AsItrError extracts an ItrError from an error chain, or wraps err as an
// InternalError so every boundary failure carries a code and guidance.
func AsItrError(err error) *ItrError {
	if err == nil {
		return nil
	}
	if ie, ok := err.(*ItrError); ok {
		return ie
	}
	return New(InternalError, err.Error(), err)
}
