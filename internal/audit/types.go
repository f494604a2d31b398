// Package audit records what a landingmig run did as an append-only JSON Lines
// log, one event per line, so a migration can be reviewed after the fact.
package audit

import "time"

// LogFileName is the name of the audit log inside the log directory.
const LogFileName = "landingmig-audit.jsonl"

// RunID is a unique identifier for each program execution (UUID v4).
type RunID string

// EventType represents the type of audit event.
type EventType string

const (
	// Run lifecycle events
	EventRunStart EventType = "RUN_START"
	EventRunEnd   EventType = "RUN_END"

	// File events
	EventCopy  EventType = "COPY"
	EventSkip  EventType = "SKIP"
	EventError EventType = "ERROR"

	// System events
	EventLogInitialized EventType = "LOG_INITIALIZED"
)

// OperationStatus represents the outcome of an operation.
type OperationStatus string

const (
	StatusSuccess OperationStatus = "SUCCESS"
	StatusFailure OperationStatus = "FAILURE"
	StatusSkipped OperationStatus = "SKIPPED"
)

// ReasonCode explains why a file was skipped.
type ReasonCode string

const (
	ReasonRootFile      ReasonCode = "ROOT_FILE"
	ReasonNotImage      ReasonCode = "NOT_IMAGE"
	ReasonEmptyCategory ReasonCode = "EMPTY_CATEGORY"
	ReasonEmptyFilename ReasonCode = "EMPTY_FILENAME"
)

// RunStatus represents the status of a run.
type RunStatus string

const (
	RunStatusInProgress  RunStatus = "IN_PROGRESS"
	RunStatusCompleted   RunStatus = "COMPLETED"
	RunStatusFailed      RunStatus = "FAILED"
	RunStatusInterrupted RunStatus = "INTERRUPTED"
)

// RunType represents the type of run.
type RunType string

const (
	RunTypeMigrate RunType = "MIGRATE"
	RunTypeWatch   RunType = "WATCH"
)

// FileIdentity captures the content of a copied file.
type FileIdentity struct {
	ContentHash string    `json:"contentHash"` // SHA-256 hex string
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"modTime"`
}

// ErrorDetails contains detailed information about an error.
type ErrorDetails struct {
	ErrorType    string `json:"errorType"`
	ErrorMessage string `json:"errorMessage"`
	Operation    string `json:"operation"`
}

// AuditEvent represents a single audit record.
type AuditEvent struct {
	Timestamp       time.Time
	RunID           RunID
	EventType       EventType
	Status          OperationStatus
	SourcePath      string
	DestinationPath string
	ReasonCode      ReasonCode
	FileIdentity    *FileIdentity
	ErrorDetails    *ErrorDetails
	Metadata        map[string]string
}

// RunSummary contains statistics for a completed run.
type RunSummary struct {
	TotalFiles  int   `json:"totalFiles"`
	Copied      int   `json:"copied"`
	Skipped     int   `json:"skipped"`
	Errors      int   `json:"errors"`
	BytesCopied int64 `json:"bytesCopied"`
}

// RunInfo contains metadata and summary for a run, rebuilt from its events.
type RunInfo struct {
	RunID     RunID
	RunType   RunType
	StartTime time.Time
	EndTime   *time.Time
	Status    RunStatus
	Source    string
	Dest      string
	Summary   RunSummary
}

// AuditConfig holds configuration for the audit log. An empty LogDirectory
// disables auditing.
type AuditConfig struct {
	LogDirectory string `json:"logDirectory" yaml:"logDirectory"`
}
