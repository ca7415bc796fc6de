package domain

import "time"

// JournalAction enumerates recorded worklog side effects.
type JournalAction string

const (
	JournalActionCreated JournalAction = "CREATED"
	JournalActionDeleted JournalAction = "DELETED"
	JournalActionFailed  JournalAction = "FAILED"
)

// JournalEntry is an audit record of a worklog operation performed through
// this server.
type JournalEntry struct {
	ID        string
	EventID   string
	Action    JournalAction
	WorklogID string
	IssueKey  string
	Worker    string
	Date      string
	Seconds   int64
	Error     string
	CreatedAt time.Time
}
