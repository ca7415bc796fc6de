package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/tempofiller/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventWorklogCreated EventType = "worklog_created"
	EventWorklogDeleted EventType = "worklog_deleted"
	EventBatchCompleted EventType = "batch_completed"
)

// Source identifies which surface triggered an operation.
type Source string

const (
	SourceMCP  Source = "mcp"
	SourceHTTP Source = "http"
	SourceCLI  Source = "cli"
)

// Event represents a worklog side effect emitted by services.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Worker    domain.Identity `json:"worker"`
	Source    Source          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   any             `json:"payload"`
}

// NewEvent stamps a new event with a fresh id.
func NewEvent(eventType EventType, worker domain.Identity, source Source, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Worker:    worker,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// WorklogCreatedPayload payload.
type WorklogCreatedPayload struct {
	Worklog domain.WorklogRecord `json:"worklog"`
	BatchID string               `json:"batch_id,omitempty"`
}

// WorklogDeletedPayload payload.
type WorklogDeletedPayload struct {
	WorklogID string `json:"worklog_id"`
}

// BatchCompletedPayload payload.
type BatchCompletedPayload struct {
	BatchID   string                `json:"batch_id"`
	Total     int                   `json:"total"`
	Succeeded int                   `json:"succeeded"`
	Outcomes  []domain.BatchOutcome `json:"outcomes"`
}
