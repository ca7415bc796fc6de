package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/tempofiller/internal/domain"
	"github.com/spec-kit/tempofiller/internal/events"
	"github.com/spec-kit/tempofiller/internal/repository"
)

// JournalService records worklog events in the journal and keeps the
// recent-issue index current.
type JournalService struct {
	dispatcher events.Dispatcher
	journal    repository.JournalRepository
	recent     repository.RecentIssueRepository
	logger     *zap.Logger
}

// NewJournalService creates the service.
func NewJournalService(dispatcher events.Dispatcher, journal repository.JournalRepository, recent repository.RecentIssueRepository, logger *zap.Logger) *JournalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalService{
		dispatcher: dispatcher,
		journal:    journal,
		recent:     recent,
		logger:     logger.Named("journal"),
	}
}

// RegisterHandlers subscribes to events.
func (j *JournalService) RegisterHandlers() {
	if j.dispatcher == nil {
		return
	}
	j.dispatcher.Subscribe(events.EventWorklogCreated, j.handleWorklogCreated)
	j.dispatcher.Subscribe(events.EventWorklogDeleted, j.handleWorklogDeleted)
	j.dispatcher.Subscribe(events.EventBatchCompleted, j.handleBatchCompleted)
}

// History returns the newest journal entries for worker.
func (j *JournalService) History(ctx context.Context, worker string, limit int) ([]domain.JournalEntry, error) {
	return j.journal.ListByWorker(ctx, worker, limit)
}

func (j *JournalService) handleWorklogCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.WorklogCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	w := payload.Worklog
	j.logger.Info("WorklogCreated",
		zap.String("event_id", event.ID),
		zap.String("worklog_id", w.ID),
		zap.String("issue", w.IssueKey),
		zap.String("source", string(event.Source)))

	entry := &domain.JournalEntry{
		EventID:   event.ID,
		Action:    domain.JournalActionCreated,
		WorklogID: w.ID,
		IssueKey:  w.IssueKey,
		Worker:    event.Worker.String(),
		Date:      w.StartDate(),
		Seconds:   w.TimeSpentSeconds,
	}
	journalErr := j.journal.Append(ctx, entry)

	var recentErr error
	if j.recent != nil && w.IssueKey != "" {
		recentErr = j.recent.Touch(ctx, event.Worker.String(), domain.RecentIssue{
			Key:      w.IssueKey,
			Summary:  w.IssueSummary,
			Project:  domain.ProjectKey(w.IssueKey),
			LastUsed: event.Timestamp,
		})
	}
	return errors.Join(journalErr, recentErr)
}

func (j *JournalService) handleWorklogDeleted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.WorklogDeletedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	j.logger.Info("WorklogDeleted", zap.String("event_id", event.ID), zap.String("worklog_id", payload.WorklogID))
	return j.journal.Append(ctx, &domain.JournalEntry{
		EventID:   event.ID,
		Action:    domain.JournalActionDeleted,
		WorklogID: payload.WorklogID,
		Worker:    event.Worker.String(),
	})
}

// handleBatchCompleted journals failed entries; successes arrive as their
// own WorklogCreated events.
func (j *JournalService) handleBatchCompleted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.BatchCompletedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	j.logger.Info("BatchCompleted",
		zap.String("event_id", event.ID),
		zap.String("batch_id", payload.BatchID),
		zap.Int("total", payload.Total),
		zap.Int("succeeded", payload.Succeeded))

	var errs []error
	for _, o := range payload.Outcomes {
		if o.Success {
			continue
		}
		errs = append(errs, j.journal.Append(ctx, &domain.JournalEntry{
			EventID:  event.ID,
			Action:   domain.JournalActionFailed,
			IssueKey: o.Request.IssueKey,
			Worker:   event.Worker.String(),
			Date:     o.Request.StartDate,
			Seconds:  domain.HoursToSeconds(o.Request.Hours),
			Error:    o.Error,
		}))
	}
	return errors.Join(errs...)
}
