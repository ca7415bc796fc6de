package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/tempofiller/internal/domain"
	"github.com/spec-kit/tempofiller/internal/events"
	"github.com/spec-kit/tempofiller/internal/repository"
	"github.com/spec-kit/tempofiller/internal/tempo"
)

// TempoClient is the subset of the Tempo client the service depends on.
type TempoClient interface {
	CurrentIdentity(ctx context.Context) (domain.Identity, error)
	SearchWorklogs(ctx context.Context, q tempo.WorklogQuery) ([]domain.WorklogRecord, error)
	Create(ctx context.Context, req domain.WorklogCreateRequest) (domain.WorklogRecord, error)
	CreateBatch(ctx context.Context, reqs []domain.WorklogCreateRequest) []domain.BatchOutcome
	DeleteWorklog(ctx context.Context, id string) error
	SearchSchedule(ctx context.Context, from, to string) ([]domain.ScheduleDay, error)
}

// WorklogService validates tool input, calls Tempo and publishes worklog
// events. It backs every transport: MCP, HTTP and the CLI.
type WorklogService struct {
	client         TempoClient
	recent         repository.RecentIssueRepository
	dispatcher     events.Dispatcher
	logger         *zap.Logger
	maxBulkEntries int
}

// WorklogDependencies bundles collaborators for the worklog service.
type WorklogDependencies struct {
	Client         TempoClient
	RecentRepo     repository.RecentIssueRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	MaxBulkEntries int
}

// GetWorklogsInput selects worklogs. EndDate defaults to StartDate.
type GetWorklogsInput struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate,omitempty"`
	IssueKey  string `json:"issueKey,omitempty"`
}

// WorklogList is the result of GetWorklogs.
type WorklogList struct {
	StartDate  string                 `json:"startDate"`
	EndDate    string                 `json:"endDate"`
	IssueKey   string                 `json:"issueKey,omitempty"`
	Worklogs   []domain.WorklogRecord `json:"worklogs"`
	TotalHours float64                `json:"totalHours"`
}

// BulkEntry is a single-day entry of a bulk request.
type BulkEntry struct {
	IssueKey    string  `json:"issueKey" yaml:"issueKey"`
	Hours       float64 `json:"hours" yaml:"hours"`
	Date        string  `json:"date" yaml:"date"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// BulkInput is a batch of entries sharing one billable flag.
type BulkInput struct {
	Worklogs []BulkEntry `json:"worklogs" yaml:"worklogs"`
	Billable *bool       `json:"billable,omitempty" yaml:"billable,omitempty"`
}

// BulkSummary counts the outcome of a bulk request.
type BulkSummary struct {
	TotalEntries int     `json:"totalEntries"`
	Successful   int     `json:"successful"`
	Failed       int     `json:"failed"`
	TotalHours   float64 `json:"totalHours"`
}

// BulkResult is the result of BulkPostWorklogs. DailyTotals maps date to issue
// key to hours logged by successful entries.
type BulkResult struct {
	BatchID     string                        `json:"batchId"`
	Outcomes    []domain.BatchOutcome         `json:"results"`
	Summary     BulkSummary                   `json:"summary"`
	DailyTotals map[string]map[string]float64 `json:"dailyTotals"`
}

// AllFailed reports whether no entry succeeded.
func (r BulkResult) AllFailed() bool {
	return r.Summary.Successful == 0
}

// ScheduleInput selects a schedule range. EndDate defaults to StartDate.
type ScheduleInput struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate,omitempty"`
}

// ScheduleResult is the result of GetSchedule.
type ScheduleResult struct {
	StartDate string                 `json:"startDate"`
	EndDate   string                 `json:"endDate"`
	Days      []domain.ScheduleDay   `json:"days"`
	Summary   domain.ScheduleSummary `json:"summary"`
}

// NewWorklogService constructs the service.
func NewWorklogService(deps WorklogDependencies) *WorklogService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxBulk := deps.MaxBulkEntries
	if maxBulk <= 0 {
		maxBulk = DefaultMaxBulkEntries
	}
	return &WorklogService{
		client:         deps.Client,
		recent:         deps.RecentRepo,
		dispatcher:     deps.Dispatcher,
		logger:         logger.Named("worklogs"),
		maxBulkEntries: maxBulk,
	}
}

// MaxBulkEntries returns the bulk request cap.
func (s *WorklogService) MaxBulkEntries() int {
	return s.maxBulkEntries
}

// GetWorklogs returns the caller's worklogs for the input range.
func (s *WorklogService) GetWorklogs(ctx context.Context, input GetWorklogsInput) (*WorklogList, error) {
	errs := fieldErrors{}
	errs.date("startDate", input.StartDate, true)
	errs.date("endDate", input.EndDate, false)
	errs.dateOrder("startDate", input.StartDate, "endDate", input.EndDate)
	if err := errs.err("invalid worklog query"); err != nil {
		return nil, err
	}

	end := input.EndDate
	if end == "" {
		end = input.StartDate
	}
	issueKey := strings.TrimSpace(input.IssueKey)
	records, err := s.client.SearchWorklogs(ctx, tempo.WorklogQuery{From: input.StartDate, To: end, IssueKey: issueKey})
	if err != nil {
		return nil, err
	}

	var seconds int64
	for _, r := range records {
		seconds += r.TimeSpentSeconds
	}
	return &WorklogList{
		StartDate:  input.StartDate,
		EndDate:    end,
		IssueKey:   issueKey,
		Worklogs:   records,
		TotalHours: domain.SecondsToHours(seconds),
	}, nil
}

// MonthWorklogs returns the caller's worklogs for a YYYY-MM month.
func (s *WorklogService) MonthWorklogs(ctx context.Context, month string) (*WorklogList, error) {
	from, to, err := monthRange(month)
	if err != nil {
		return nil, err
	}
	return s.GetWorklogs(ctx, GetWorklogsInput{StartDate: from, EndDate: to})
}

// PostWorklog creates a single worklog.
func (s *WorklogService) PostWorklog(ctx context.Context, req domain.WorklogCreateRequest) (*domain.WorklogRecord, error) {
	req.IssueKey = strings.TrimSpace(req.IssueKey)
	errs := fieldErrors{}
	errs.required("issueKey", req.IssueKey)
	errs.hours("hours", req.Hours)
	errs.date("startDate", req.StartDate, true)
	errs.date("endDate", req.EndDate, false)
	errs.dateOrder("startDate", req.StartDate, "endDate", req.EndDate)
	if err := errs.err("invalid worklog"); err != nil {
		return nil, err
	}

	record, err := s.client.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventWorklogCreated, events.WorklogCreatedPayload{Worklog: record})
	return &record, nil
}

// BulkPostWorklogs creates every entry concurrently. Individual failures are
// reported per entry; an error is returned only for invalid input.
func (s *WorklogService) BulkPostWorklogs(ctx context.Context, input BulkInput) (*BulkResult, error) {
	if len(input.Worklogs) == 0 {
		return nil, fieldErrors{"worklogs": "at least one entry is required"}.err("no worklog entries provided")
	}
	if len(input.Worklogs) > s.maxBulkEntries {
		return nil, fieldErrors{"worklogs": fmt.Sprintf("at most %d entries are allowed", s.maxBulkEntries)}.err(
			fmt.Sprintf("too many worklog entries: maximum %d entries allowed per bulk operation", s.maxBulkEntries))
	}

	errs := fieldErrors{}
	reqs := make([]domain.WorklogCreateRequest, len(input.Worklogs))
	for i, entry := range input.Worklogs {
		prefix := fmt.Sprintf("worklogs[%d].", i)
		errs.required(prefix+"issueKey", entry.IssueKey)
		errs.hours(prefix+"hours", entry.Hours)
		errs.date(prefix+"date", entry.Date, true)
		reqs[i] = domain.WorklogCreateRequest{
			IssueKey:    strings.TrimSpace(entry.IssueKey),
			Hours:       entry.Hours,
			StartDate:   entry.Date,
			EndDate:     entry.Date,
			Billable:    input.Billable,
			Description: entry.Description,
		}
	}
	if err := errs.err("invalid worklog entries"); err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	outcomes := s.client.CreateBatch(ctx, reqs)
	result := summarizeBatch(batchID, outcomes)

	for _, o := range outcomes {
		if o.Success && o.Worklog != nil {
			s.publish(ctx, events.EventWorklogCreated, events.WorklogCreatedPayload{Worklog: *o.Worklog, BatchID: batchID})
		}
	}
	s.publish(ctx, events.EventBatchCompleted, events.BatchCompletedPayload{
		BatchID:   batchID,
		Total:     result.Summary.TotalEntries,
		Succeeded: result.Summary.Successful,
		Outcomes:  outcomes,
	})
	return result, nil
}

func summarizeBatch(batchID string, outcomes []domain.BatchOutcome) *BulkResult {
	result := &BulkResult{
		BatchID:     batchID,
		Outcomes:    outcomes,
		DailyTotals: map[string]map[string]float64{},
	}
	result.Summary.TotalEntries = len(outcomes)

	var hours float64
	for _, o := range outcomes {
		if !o.Success {
			result.Summary.Failed++
			continue
		}
		result.Summary.Successful++
		hours += o.Request.Hours

		day := o.Request.StartDate
		if result.DailyTotals[day] == nil {
			result.DailyTotals[day] = map[string]float64{}
		}
		result.DailyTotals[day][o.Request.IssueKey] = domain.Round2(result.DailyTotals[day][o.Request.IssueKey] + o.Request.Hours)
	}
	result.Summary.TotalHours = domain.Round2(hours)
	return result
}

// DeleteWorklog removes a worklog by its Tempo id.
func (s *WorklogService) DeleteWorklog(ctx context.Context, worklogID string) error {
	worklogID = strings.TrimSpace(worklogID)
	errs := fieldErrors{}
	errs.required("worklogId", worklogID)
	if err := errs.err("invalid worklog id"); err != nil {
		return err
	}

	if err := s.client.DeleteWorklog(ctx, worklogID); err != nil {
		return err
	}
	s.publish(ctx, events.EventWorklogDeleted, events.WorklogDeletedPayload{WorklogID: worklogID})
	return nil
}

// GetSchedule returns the caller's schedule and its summary.
func (s *WorklogService) GetSchedule(ctx context.Context, input ScheduleInput) (*ScheduleResult, error) {
	errs := fieldErrors{}
	errs.date("startDate", input.StartDate, true)
	errs.date("endDate", input.EndDate, false)
	errs.dateOrder("startDate", input.StartDate, "endDate", input.EndDate)
	if err := errs.err("invalid schedule query"); err != nil {
		return nil, err
	}

	end := input.EndDate
	if end == "" {
		end = input.StartDate
	}
	days, err := s.client.SearchSchedule(ctx, input.StartDate, end)
	if err != nil {
		return nil, err
	}
	return &ScheduleResult{
		StartDate: input.StartDate,
		EndDate:   end,
		Days:      days,
		Summary:   domain.Summarize(days),
	}, nil
}

// RecentIssues lists the issues the caller most recently logged time against
// through this server.
func (s *WorklogService) RecentIssues(ctx context.Context, limit int) ([]domain.RecentIssue, error) {
	if s.recent == nil {
		return []domain.RecentIssue{}, nil
	}
	identity, err := s.client.CurrentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	issues, err := s.recent.ListRecent(ctx, identity.String(), limit)
	if err != nil {
		return nil, err
	}
	if issues == nil {
		issues = []domain.RecentIssue{}
	}
	return issues, nil
}

func (s *WorklogService) publish(ctx context.Context, eventType events.EventType, payload any) {
	if s.dispatcher == nil {
		return
	}
	identity, err := s.client.CurrentIdentity(ctx)
	if err != nil {
		s.logger.Warn("skipping event without identity", zap.String("event_type", string(eventType)), zap.Error(err))
		return
	}
	event := events.NewEvent(eventType, identity, SourceFromContext(ctx), payload)
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.String("event_id", event.ID), zap.Error(err))
	}
}

type sourceKey struct{}

// WithSource tags ctx with the surface that triggered an operation.
func WithSource(ctx context.Context, source events.Source) context.Context {
	return context.WithValue(ctx, sourceKey{}, source)
}

// SourceFromContext returns the tagged source, defaulting to MCP.
func SourceFromContext(ctx context.Context) events.Source {
	if source, ok := ctx.Value(sourceKey{}).(events.Source); ok {
		return source
	}
	return events.SourceMCP
}
