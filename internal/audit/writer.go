package audit

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNoActiveRun is returned when a file event is recorded outside a run.
var ErrNoActiveRun = errors.New("no active run: call StartRun first")

// AuditWriter appends events to the audit log. Every event is flushed and
// synced before the call returns.
type AuditWriter struct {
	mu         sync.Mutex
	file       *os.File
	writer     *bufio.Writer
	logPath    string
	currentRun *RunID
	config     AuditConfig
}

// NewAuditWriter creates the log directory if needed and opens the log for
// appending. A brand new log starts with a LOG_INITIALIZED event.
func NewAuditWriter(config AuditConfig) (*AuditWriter, error) {
	if config.LogDirectory == "" {
		return nil, errors.New("audit log directory is empty")
	}
	if err := os.MkdirAll(config.LogDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(config.LogDirectory, LogFileName)

	isNewLog := false
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		isNewLog = true
	}

	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	w := &AuditWriter{
		file:    file,
		writer:  bufio.NewWriter(file),
		logPath: logPath,
		config:  config,
	}

	if isNewLog {
		err := w.writeEventLocked(AuditEvent{
			Timestamp: time.Now().UTC(),
			EventType: EventLogInitialized,
			Status:    StatusSuccess,
			Metadata:  map[string]string{"logPath": logPath},
		})
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write LOG_INITIALIZED event: %w", err)
		}
	}

	return w, nil
}

// StartRun generates a run ID and writes the RUN_START event.
func (w *AuditWriter) StartRun(runType RunType, sourceRoot, destRoot string) (RunID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	runID := RunID(uuid.NewString())

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		RunID:     runID,
		EventType: EventRunStart,
		Status:    StatusSuccess,
		Metadata: map[string]string{
			"runType":         string(runType),
			"sourceRoot":      sourceRoot,
			"destinationRoot": destRoot,
		},
	}
	if err := w.writeEventLocked(event); err != nil {
		return "", fmt.Errorf("failed to write RUN_START event: %w", err)
	}

	w.currentRun = &runID
	return runID, nil
}

// EndRun records the run completion status and summary.
func (w *AuditWriter) EndRun(status RunStatus, summary RunSummary) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.currentRun == nil {
		return ErrNoActiveRun
	}

	opStatus := StatusSuccess
	if status != RunStatusCompleted {
		opStatus = StatusFailure
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		RunID:     *w.currentRun,
		EventType: EventRunEnd,
		Status:    opStatus,
		Metadata: map[string]string{
			"status":      string(status),
			"totalFiles":  strconv.Itoa(summary.TotalFiles),
			"copied":      strconv.Itoa(summary.Copied),
			"skipped":     strconv.Itoa(summary.Skipped),
			"errors":      strconv.Itoa(summary.Errors),
			"bytesCopied": strconv.FormatInt(summary.BytesCopied, 10),
		},
	}
	if err := w.writeEventLocked(event); err != nil {
		return fmt.Errorf("failed to write RUN_END event: %w", err)
	}

	w.currentRun = nil
	return nil
}

// RecordCopy records a COPY event.
func (w *AuditWriter) RecordCopy(source, dest string, identity *FileIdentity) error {
	return w.record(AuditEvent{
		EventType:       EventCopy,
		Status:          StatusSuccess,
		SourcePath:      source,
		DestinationPath: dest,
		FileIdentity:    identity,
	})
}

// RecordSkip records a SKIP event with the reason the file was not copied.
func (w *AuditWriter) RecordSkip(source string, reason ReasonCode) error {
	return w.record(AuditEvent{
		EventType:  EventSkip,
		Status:     StatusSkipped,
		SourcePath: source,
		ReasonCode: reason,
	})
}

// RecordError records an ERROR event.
func (w *AuditWriter) RecordError(source, errType, errMsg, operation string) error {
	return w.record(AuditEvent{
		EventType:  EventError,
		Status:     StatusFailure,
		SourcePath: source,
		ErrorDetails: &ErrorDetails{
			ErrorType:    errType,
			ErrorMessage: errMsg,
			Operation:    operation,
		},
	})
}

func (w *AuditWriter) record(event AuditEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.currentRun == nil {
		return ErrNoActiveRun
	}
	event.Timestamp = time.Now().UTC()
	event.RunID = *w.currentRun
	return w.writeEventLocked(event)
}

// writeEventLocked marshals the event, appends a newline and syncs to disk.
func (w *AuditWriter) writeEventLocked(event AuditEvent) error {
	data, err := event.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := w.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	if err := w.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync event to disk: %w", err)
	}

	return nil
}

// Close flushes any buffered data and closes the audit log file.
func (w *AuditWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush on close: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close audit log: %w", err)
	}
	return nil
}

// CurrentRunID returns the current run ID, or nil if no run is active.
func (w *AuditWriter) CurrentRunID() *RunID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currentRun
}

// LogPath returns the path to the audit log file.
func (w *AuditWriter) LogPath() string {
	return w.logPath
}
