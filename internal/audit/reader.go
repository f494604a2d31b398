package audit

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// ErrRunNotFound is returned when a run ID is not present in the log.
var ErrRunNotFound = errors.New("run not found")

// AuditReader reads events back from the audit log.
type AuditReader struct {
	logDir string
}

// NewAuditReader creates a new AuditReader for the given log directory.
func NewAuditReader(logDir string) *AuditReader {
	return &AuditReader{logDir: logDir}
}

// ReadEvents returns every event in the log in file order. A missing log
// yields no events and no error.
func (r *AuditReader) ReadEvents() ([]AuditEvent, error) {
	path := filepath.Join(r.logDir, LogFileName)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []AuditEvent{}, nil
		}
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	var events []AuditEvent
	scanner := bufio.NewScanner(file)
	const maxScanTokenSize = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxScanTokenSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		event, err := UnmarshalJSONLine(line)
		if err != nil {
			return nil, fmt.Errorf("failed to parse line %d: %w", lineNum, err)
		}
		events = append(events, *event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file: %w", err)
	}

	return events, nil
}

// ListRuns returns one RunInfo per run, oldest first.
func (r *AuditReader) ListRuns() ([]RunInfo, error) {
	events, err := r.ReadEvents()
	if err != nil {
		return nil, err
	}

	byRun := make(map[RunID][]AuditEvent)
	for _, event := range events {
		if event.RunID == "" {
			continue
		}
		byRun[event.RunID] = append(byRun[event.RunID], event)
	}

	runs := make([]RunInfo, 0, len(byRun))
	for runID, evs := range byRun {
		runs = append(runs, buildRunInfo(runID, evs))
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartTime.Before(runs[j].StartTime)
	})

	return runs, nil
}

// GetRun returns the events of one run.
func (r *AuditReader) GetRun(runID RunID) ([]AuditEvent, error) {
	events, err := r.ReadEvents()
	if err != nil {
		return nil, err
	}

	var out []AuditEvent
	for _, event := range events {
		if event.RunID == runID {
			out = append(out, event)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return out, nil
}

// buildRunInfo folds the events of a single run into a RunInfo. Counts from
// RUN_END win over counts derived from file events.
func buildRunInfo(runID RunID, events []AuditEvent) RunInfo {
	info := RunInfo{
		RunID:   runID,
		Status:  RunStatusInProgress,
		RunType: RunTypeMigrate,
	}

	for _, event := range events {
		switch event.EventType {
		case EventRunStart:
			info.StartTime = event.Timestamp
			if rt, ok := event.Metadata["runType"]; ok {
				info.RunType = RunType(rt)
			}
			info.Source = event.Metadata["sourceRoot"]
			info.Dest = event.Metadata["destinationRoot"]

		case EventRunEnd:
			end := event.Timestamp
			info.EndTime = &end
			if status, ok := event.Metadata["status"]; ok {
				info.Status = RunStatus(status)
			}
			info.Summary = parseSummary(event.Metadata)

		case EventCopy:
			if info.EndTime == nil {
				info.Summary.TotalFiles++
				info.Summary.Copied++
				if event.FileIdentity != nil {
					info.Summary.BytesCopied += event.FileIdentity.Size
				}
			}

		case EventSkip:
			if info.EndTime == nil {
				info.Summary.TotalFiles++
				info.Summary.Skipped++
			}

		case EventError:
			if info.EndTime == nil {
				info.Summary.TotalFiles++
				info.Summary.Errors++
			}
		}
	}

	return info
}

func parseSummary(metadata map[string]string) RunSummary {
	var s RunSummary
	s.TotalFiles, _ = strconv.Atoi(metadata["totalFiles"])
	s.Copied, _ = strconv.Atoi(metadata["copied"])
	s.Skipped, _ = strconv.Atoi(metadata["skipped"])
	s.Errors, _ = strconv.Atoi(metadata["errors"])
	s.BytesCopied, _ = strconv.ParseInt(metadata["bytesCopied"], 10, 64)
	return s
}
