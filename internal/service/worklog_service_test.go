package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spec-kit/tempofiller/internal/domain"
	"github.com/spec-kit/tempofiller/internal/events"
	"github.com/spec-kit/tempofiller/internal/repository"
	"github.com/spec-kit/tempofiller/internal/tempo"
	"github.com/spec-kit/tempofiller/pkg/util/errorutil"
)

const worker = domain.Identity("JIRAUSER100")

type fakeClient struct {
	mu        sync.Mutex
	records   []domain.WorklogRecord
	lastQuery tempo.WorklogQuery
	created   []domain.WorklogCreateRequest
	deleted   []string
	days      []domain.ScheduleDay
	missing   map[string]bool
	createErr error
}

func (f *fakeClient) CurrentIdentity(context.Context) (domain.Identity, error) {
	return worker, nil
}

func (f *fakeClient) SearchWorklogs(_ context.Context, q tempo.WorklogQuery) ([]domain.WorklogRecord, error) {
	f.lastQuery = q
	return f.records, nil
}

func (f *fakeClient) Create(_ context.Context, req domain.WorklogCreateRequest) (domain.WorklogRecord, error) {
	if f.createErr != nil {
		return domain.WorklogRecord{}, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	return domain.WorklogRecord{
		ID:               "w-" + req.IssueKey + "-" + req.StartDate,
		IssueKey:         req.IssueKey,
		IssueSummary:     "Summary of " + req.IssueKey,
		TimeSpentSeconds: domain.HoursToSeconds(req.Hours),
		Started:          req.StartDate + "T00:00:00.000",
		Worker:           worker.String(),
	}, nil
}

func (f *fakeClient) CreateBatch(ctx context.Context, reqs []domain.WorklogCreateRequest) []domain.BatchOutcome {
	out := make([]domain.BatchOutcome, len(reqs))
	for i, req := range reqs {
		out[i].Request = req
		if f.missing[req.IssueKey] {
			err := errorutil.NewNotFound("issue", req.IssueKey)
			out[i].Error = err.Error()
			out[i].ErrorKind = string(errorutil.KindOf(err))
			continue
		}
		record, _ := f.Create(ctx, req)
		out[i].Success = true
		out[i].Worklog = &record
	}
	return out
}

func (f *fakeClient) DeleteWorklog(_ context.Context, id string) error {
	if id == "missing" {
		return errorutil.NewNotFound("worklog", id)
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeClient) SearchSchedule(context.Context, string, string) ([]domain.ScheduleDay, error) {
	return f.days, nil
}

type harness struct {
	client  *fakeClient
	service *WorklogService
	journal *repository.MemoryJournal
	recent  *repository.MemoryRecentIssues
}

func newHarness() *harness {
	client := &fakeClient{missing: map[string]bool{}}
	dispatcher := events.NewInMemoryDispatcher()
	journal := repository.NewMemoryJournal()
	recent := repository.NewMemoryRecentIssues()
	NewJournalService(dispatcher, journal, recent, nil).RegisterHandlers()

	return &harness{
		client:  client,
		journal: journal,
		recent:  recent,
		service: NewWorklogService(WorklogDependencies{
			Client:     client,
			RecentRepo: recent,
			Dispatcher: dispatcher,
		}),
	}
}

func TestGetWorklogsDefaultsEndDateAndTotals(t *testing.T) {
	h := newHarness()
	h.client.records = []domain.WorklogRecord{
		{ID: "1", IssueKey: "PROJ-1", TimeSpentSeconds: 3600},
		{ID: "2", IssueKey: "PROJ-2", TimeSpentSeconds: 5400},
	}

	list, err := h.service.GetWorklogs(context.Background(), GetWorklogsInput{StartDate: "2024-01-15", IssueKey: " PROJ-1 "})
	if err != nil {
		t.Fatalf("GetWorklogs: %v", err)
	}
	if h.client.lastQuery.To != "2024-01-15" || h.client.lastQuery.IssueKey != "PROJ-1" {
		t.Fatalf("unexpected query %+v", h.client.lastQuery)
	}
	if list.TotalHours != 2.5 || list.EndDate != "2024-01-15" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestGetWorklogsValidation(t *testing.T) {
	h := newHarness()
	tests := []GetWorklogsInput{
		{},
		{StartDate: "15/01/2024"},
		{StartDate: "2024-02-30"},
		{StartDate: "2024-01-15", EndDate: "2024-01-14"},
	}
	for _, input := range tests {
		if _, err := h.service.GetWorklogs(context.Background(), input); !errors.Is(err, errorutil.ErrValidation) {
			t.Errorf("GetWorklogs(%+v): expected validation error, got %v", input, err)
		}
	}
}

func TestMonthWorklogs(t *testing.T) {
	h := newHarness()
	list, err := h.service.MonthWorklogs(context.Background(), "2024-02")
	if err != nil {
		t.Fatalf("MonthWorklogs: %v", err)
	}
	if list.StartDate != "2024-02-01" || list.EndDate != "2024-02-29" {
		t.Fatalf("unexpected month range %s..%s", list.StartDate, list.EndDate)
	}
	if _, err := h.service.MonthWorklogs(context.Background(), "Feb"); !errors.Is(err, errorutil.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPostWorklogValidation(t *testing.T) {
	h := newHarness()
	tests := []struct {
		name string
		req  domain.WorklogCreateRequest
	}{
		{name: "missing issue", req: domain.WorklogCreateRequest{Hours: 8, StartDate: "2024-01-15"}},
		{name: "too few hours", req: domain.WorklogCreateRequest{IssueKey: "PROJ-1", Hours: 0.05, StartDate: "2024-01-15"}},
		{name: "too many hours", req: domain.WorklogCreateRequest{IssueKey: "PROJ-1", Hours: 24.5, StartDate: "2024-01-15"}},
		{name: "bad date", req: domain.WorklogCreateRequest{IssueKey: "PROJ-1", Hours: 8, StartDate: "2024-1-15"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.service.PostWorklog(context.Background(), tc.req)
			if !errors.Is(err, errorutil.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if len(h.client.created) != 0 {
		t.Fatalf("invalid requests must not reach Tempo")
	}
}

func TestPostWorklogJournalsAndTracksRecentIssue(t *testing.T) {
	h := newHarness()
	ctx := WithSource(context.Background(), events.SourceCLI)

	record, err := h.service.PostWorklog(ctx, domain.WorklogCreateRequest{IssueKey: "PROJ-1", Hours: 8, StartDate: "2024-01-15"})
	if err != nil {
		t.Fatalf("PostWorklog: %v", err)
	}
	if record.IssueKey != "PROJ-1" {
		t.Fatalf("unexpected record %+v", record)
	}

	entries, _ := h.journal.ListByWorker(ctx, worker.String(), 10)
	if len(entries) != 1 || entries[0].Action != domain.JournalActionCreated || entries[0].Seconds != 28800 {
		t.Fatalf("unexpected journal %+v", entries)
	}

	recent, err := h.service.RecentIssues(ctx, 5)
	if err != nil {
		t.Fatalf("RecentIssues: %v", err)
	}
	if len(recent) != 1 || recent[0].Key != "PROJ-1" || recent[0].Project != "PROJ" {
		t.Fatalf("unexpected recent issues %+v", recent)
	}
}

func TestPostWorklogPropagatesTypedErrors(t *testing.T) {
	h := newHarness()
	h.client.createErr = errorutil.NewAuthentication("")

	_, err := h.service.PostWorklog(context.Background(), domain.WorklogCreateRequest{IssueKey: "PROJ-1", Hours: 8, StartDate: "2024-01-15"})
	if !errors.Is(err, errorutil.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestBulkPostWorklogs(t *testing.T) {
	h := newHarness()
	h.client.missing["NOPE-1"] = true
	billable := false

	result, err := h.service.BulkPostWorklogs(context.Background(), BulkInput{
		Billable: &billable,
		Worklogs: []BulkEntry{
			{IssueKey: "PROJ-1", Hours: 4, Date: "2024-01-15"},
			{IssueKey: "PROJ-2", Hours: 4, Date: "2024-01-15"},
			{IssueKey: "NOPE-1", Hours: 2, Date: "2024-01-16"},
			{IssueKey: "PROJ-1", Hours: 7.5, Date: "2024-01-16"},
		},
	})
	if err != nil {
		t.Fatalf("BulkPostWorklogs: %v", err)
	}

	if result.BatchID == "" {
		t.Fatal("expected batch id")
	}
	want := BulkSummary{TotalEntries: 4, Successful: 3, Failed: 1, TotalHours: 15.5}
	if result.Summary != want {
		t.Fatalf("summary = %+v, want %+v", result.Summary, want)
	}
	if result.AllFailed() {
		t.Fatal("batch with successes must not be reported as failed")
	}
	if result.DailyTotals["2024-01-15"]["PROJ-2"] != 4 || result.DailyTotals["2024-01-16"]["PROJ-1"] != 7.5 {
		t.Fatalf("unexpected daily totals %+v", result.DailyTotals)
	}
	if _, ok := result.DailyTotals["2024-01-16"]["NOPE-1"]; ok {
		t.Fatal("failed entries must not count towards daily totals")
	}

	for _, req := range h.client.created {
		if req.IsBillable() || req.EndDate != req.StartDate {
			t.Fatalf("bulk entries must be single-day and carry the shared billable flag: %+v", req)
		}
	}

	entries, _ := h.journal.ListByWorker(context.Background(), worker.String(), 10)
	var created, failed int
	for _, e := range entries {
		switch e.Action {
		case domain.JournalActionCreated:
			created++
		case domain.JournalActionFailed:
			failed++
		}
	}
	if created != 3 || failed != 1 {
		t.Fatalf("expected 3 created and 1 failed journal entries, got %d and %d", created, failed)
	}
}

func TestBulkPostWorklogsAllFailed(t *testing.T) {
	h := newHarness()
	h.client.missing["NOPE-1"] = true

	result, err := h.service.BulkPostWorklogs(context.Background(), BulkInput{Worklogs: []BulkEntry{{IssueKey: "NOPE-1", Hours: 1, Date: "2024-01-15"}}})
	if err != nil {
		t.Fatalf("BulkPostWorklogs: %v", err)
	}
	if !result.AllFailed() {
		t.Fatalf("expected all failed, got %+v", result.Summary)
	}
}

func TestBulkPostWorklogsLimits(t *testing.T) {
	h := newHarness()
	h.service = NewWorklogService(WorklogDependencies{Client: h.client, MaxBulkEntries: 2})

	if _, err := h.service.BulkPostWorklogs(context.Background(), BulkInput{}); !errors.Is(err, errorutil.ErrValidation) {
		t.Fatalf("expected validation error for empty batch, got %v", err)
	}

	entry := BulkEntry{IssueKey: "PROJ-1", Hours: 1, Date: "2024-01-15"}
	_, err := h.service.BulkPostWorklogs(context.Background(), BulkInput{Worklogs: []BulkEntry{entry, entry, entry}})
	if !errors.Is(err, errorutil.ErrValidation) {
		t.Fatalf("expected validation error for oversized batch, got %v", err)
	}

	_, err = h.service.BulkPostWorklogs(context.Background(), BulkInput{Worklogs: []BulkEntry{entry, {IssueKey: "PROJ-2", Hours: 30, Date: "2024-01-15"}}})
	var domainErr *errorutil.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected domain error, got %v", err)
	}
	if _, ok := domainErr.Details["worklogs[1].hours"]; !ok {
		t.Fatalf("expected the offending entry to be named, got %+v", domainErr.Details)
	}
	if len(h.client.created) != 0 {
		t.Fatal("no entry may be created when any entry is invalid")
	}
}

func TestDeleteWorklog(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	if err := h.service.DeleteWorklog(ctx, " 42 "); err != nil {
		t.Fatalf("DeleteWorklog: %v", err)
	}
	if len(h.client.deleted) != 1 || h.client.deleted[0] != "42" {
		t.Fatalf("unexpected deletes %v", h.client.deleted)
	}
	entries, _ := h.journal.ListByWorker(ctx, worker.String(), 10)
	if len(entries) != 1 || entries[0].Action != domain.JournalActionDeleted || entries[0].WorklogID != "42" {
		t.Fatalf("unexpected journal %+v", entries)
	}

	if err := h.service.DeleteWorklog(ctx, ""); !errors.Is(err, errorutil.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := h.service.DeleteWorklog(ctx, "missing"); !errors.Is(err, errorutil.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetSchedule(t *testing.T) {
	h := newHarness()
	h.client.days = []domain.ScheduleDay{
		{Date: "2024-01-05", RequiredSeconds: 28800, IsWorkingDay: true},
		{Date: "2024-01-06"},
	}

	result, err := h.service.GetSchedule(context.Background(), ScheduleInput{StartDate: "2024-01-05", EndDate: "2024-01-06"})
	if err != nil {
		t.Fatalf("GetSchedule: %v", err)
	}
	if result.Summary.WorkingDays != 1 || result.Summary.TotalRequiredHours != 8 || result.Summary.AverageDailyHours != 8 {
		t.Fatalf("unexpected summary %+v", result.Summary)
	}
}

func TestSourceFromContext(t *testing.T) {
	if got := SourceFromContext(context.Background()); got != events.SourceMCP {
		t.Fatalf("expected default source mcp, got %s", got)
	}
	if got := SourceFromContext(WithSource(context.Background(), events.SourceHTTP)); got != events.SourceHTTP {
		t.Fatalf("expected http source, got %s", got)
	}
}
