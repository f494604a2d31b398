package audit

import (
	"encoding/json"
	"time"
)

// ISO8601Format is the time format used for audit event timestamps.
const ISO8601Format = time.RFC3339Nano

// eventJSON is the wire form of an event. Optional strings are pointers so
// they can be omitted when empty.
type eventJSON struct {
	Timestamp       string            `json:"timestamp"`
	RunID           RunID             `json:"runId"`
	EventType       EventType         `json:"eventType"`
	Status          OperationStatus   `json:"status"`
	SourcePath      *string           `json:"sourcePath,omitempty"`
	DestinationPath *string           `json:"destinationPath,omitempty"`
	ReasonCode      *ReasonCode       `json:"reasonCode,omitempty"`
	FileIdentity    *FileIdentity     `json:"fileIdentity,omitempty"`
	ErrorDetails    *ErrorDetails     `json:"errorDetails,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// MarshalJSON implements json.Marshaler for AuditEvent.
func (e AuditEvent) MarshalJSON() ([]byte, error) {
	ej := eventJSON{
		Timestamp:    e.Timestamp.Format(ISO8601Format),
		RunID:        e.RunID,
		EventType:    e.EventType,
		Status:       e.Status,
		FileIdentity: e.FileIdentity,
		ErrorDetails: e.ErrorDetails,
		Metadata:     e.Metadata,
	}

	if e.SourcePath != "" {
		ej.SourcePath = &e.SourcePath
	}
	if e.DestinationPath != "" {
		ej.DestinationPath = &e.DestinationPath
	}
	if e.ReasonCode != "" {
		rc := e.ReasonCode
		ej.ReasonCode = &rc
	}

	return json.Marshal(ej)
}

// UnmarshalJSON implements json.Unmarshaler for AuditEvent.
func (e *AuditEvent) UnmarshalJSON(data []byte) error {
	var ej eventJSON
	if err := json.Unmarshal(data, &ej); err != nil {
		return err
	}

	t, err := time.Parse(ISO8601Format, ej.Timestamp)
	if err != nil {
		return err
	}

	*e = AuditEvent{
		Timestamp:    t,
		RunID:        ej.RunID,
		EventType:    ej.EventType,
		Status:       ej.Status,
		FileIdentity: ej.FileIdentity,
		ErrorDetails: ej.ErrorDetails,
		Metadata:     ej.Metadata,
	}
	if ej.SourcePath != nil {
		e.SourcePath = *ej.SourcePath
	}
	if ej.DestinationPath != nil {
		e.DestinationPath = *ej.DestinationPath
	}
	if ej.ReasonCode != nil {
		e.ReasonCode = *ej.ReasonCode
	}

	return nil
}

// UnmarshalJSONLine unmarshals a JSON line into an AuditEvent.
func UnmarshalJSONLine(data []byte) (*AuditEvent, error) {
	var e AuditEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
