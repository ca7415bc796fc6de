package tempo

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/spec-kit/tempofiller/internal/domain"
	"github.com/spec-kit/tempofiller/pkg/util/errorutil"
)

// startOfDay is appended to calendar dates in creation payloads.
const startOfDay = "T00:00:00.000"

// WorklogQuery selects the caller's worklogs within [From, To] inclusive.
// To defaults to From. IssueKey narrows the search to one issue.
type WorklogQuery struct {
	From     string
	To       string
	IssueKey string
}

func (q WorklogQuery) window() (string, string) {
	if q.To == "" {
		return q.From, q.From
	}
	return q.From, q.To
}

// SearchWorklogs returns the caller's worklogs in the query window.
//
// With an issue key the Jira issue worklog endpoint is read and filtered
// client-side. Without one, the Tempo search endpoint is scoped server-side to
// the caller. Both paths apply the same identity and date filter and fill the
// issue key and summary, so results have the same shape.
func (c *Client) SearchWorklogs(ctx context.Context, q WorklogQuery) ([]domain.WorklogRecord, error) {
	identity, err := c.CurrentIdentity(ctx)
	if err != nil {
		return nil, err
	}

	var records []domain.WorklogRecord
	if key := strings.TrimSpace(q.IssueKey); key != "" {
		records, err = c.issueWorklogs(ctx, key, identity)
	} else {
		records, err = c.searchWorklogs(ctx, q, identity)
	}
	if err != nil {
		return nil, err
	}

	from, to := q.window()
	out := make([]domain.WorklogRecord, 0, len(records))
	for _, r := range records {
		if r.Worker != identity.String() {
			continue
		}
		if day := r.StartDate(); day < from || day > to {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (c *Client) issueWorklogs(ctx context.Context, key string, identity domain.Identity) ([]domain.WorklogRecord, error) {
	issue, err := c.ResolveIssue(ctx, key)
	if err != nil {
		return nil, err
	}

	var list jiraWorklogList
	status, err := c.do(ctx, "issue_worklogs", http.MethodGet, pathIssue+url.PathEscape(key)+"/worklog", nil, &list)
	if status == http.StatusNotFound {
		return nil, errorutil.NewNotFound("issue", key)
	}
	if err != nil {
		return nil, err
	}

	// Jira worklogs carry no billable split; all time counts as billable.
	records := make([]domain.WorklogRecord, 0, len(list.Worklogs))
	for _, w := range list.Worklogs {
		if !w.Author.is(identity) {
			continue
		}
		records = append(records, domain.WorklogRecord{
			ID:               string(w.ID),
			IssueKey:         issue.Key,
			IssueSummary:     issue.Summary,
			TimeSpentSeconds: w.TimeSpentSeconds,
			BillableSeconds:  w.TimeSpentSeconds,
			Started:          w.Started,
			Worker:           identity.String(),
			Attributes:       map[string]any{},
			TimeSpent:        w.TimeSpent,
			Comment:          w.Comment,
		})
	}
	return records, nil
}

func (c *Client) searchWorklogs(ctx context.Context, q WorklogQuery, identity domain.Identity) ([]domain.WorklogRecord, error) {
	from, to := q.window()
	body := worklogSearchRequest{From: from, To: to, Worker: []string{identity.String()}}

	var list []tempoWorklog
	if _, err := c.do(ctx, "search_worklogs", http.MethodPost, pathWorklogSearch, body, &list); err != nil {
		return nil, err
	}

	records := make([]domain.WorklogRecord, 0, len(list))
	for _, w := range list {
		records = append(records, w.record())
	}
	return records, nil
}

// BuildPayload resolves the request's issue and the caller's identity and
// returns the creation payload together with the resolved issue.
func (c *Client) BuildPayload(ctx context.Context, req domain.WorklogCreateRequest) (domain.WorklogPayload, domain.ResolvedIssue, error) {
	issue, err := c.ResolveIssue(ctx, req.IssueKey)
	if err != nil {
		return domain.WorklogPayload{}, domain.ResolvedIssue{}, err
	}
	identity, err := c.CurrentIdentity(ctx)
	if err != nil {
		return domain.WorklogPayload{}, domain.ResolvedIssue{}, err
	}

	seconds := domain.HoursToSeconds(req.Hours)
	var billable int64
	if req.IsBillable() {
		billable = seconds
	}

	return domain.WorklogPayload{
		Attributes:       map[string]any{},
		BillableSeconds:  billable,
		TimeSpentSeconds: seconds,
		Worker:           identity.String(),
		Started:          req.StartDate + startOfDay,
		OriginTaskID:     issue.ID,
		EndDate:          req.EffectiveEndDate() + startOfDay,
		Comment:          req.Description,
	}, issue, nil
}

// CreateWorklog submits payload. Tempo answers with a list holding the
// created worklog; anything else is a protocol error.
func (c *Client) CreateWorklog(ctx context.Context, payload domain.WorklogPayload) (domain.WorklogRecord, error) {
	var created []tempoWorklog
	if _, err := c.do(ctx, "create_worklog", http.MethodPost, pathWorklogs, payload, &created); err != nil {
		return domain.WorklogRecord{}, err
	}
	if len(created) == 0 {
		return domain.WorklogRecord{}, errorutil.NewProtocolError("unexpected response format from Tempo API: expected a non-empty worklog list")
	}
	return created[0].record(), nil
}

// Create builds the payload for req and creates the worklog. Fields missing
// from the response are filled from the resolved issue.
func (c *Client) Create(ctx context.Context, req domain.WorklogCreateRequest) (domain.WorklogRecord, error) {
	payload, issue, err := c.BuildPayload(ctx, req)
	if err != nil {
		return domain.WorklogRecord{}, err
	}
	record, err := c.CreateWorklog(ctx, payload)
	if err != nil {
		return domain.WorklogRecord{}, err
	}
	return completeRecord(record, issue, payload), nil
}

// DeleteWorklog removes the worklog with the given Tempo id.
func (c *Client) DeleteWorklog(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errorutil.NewValidationError("worklog id is required", nil)
	}
	status, err := c.do(ctx, "delete_worklog", http.MethodDelete, pathWorklogs+url.PathEscape(id), nil, nil)
	if status == http.StatusNotFound {
		return errorutil.NewNotFound("worklog", id)
	}
	return err
}

func completeRecord(record domain.WorklogRecord, issue domain.ResolvedIssue, payload domain.WorklogPayload) domain.WorklogRecord {
	if record.IssueKey == "" {
		record.IssueKey = issue.Key
	}
	if record.IssueSummary == "" {
		record.IssueSummary = issue.Summary
	}
	if record.Worker == "" {
		record.Worker = payload.Worker
	}
	if record.Started == "" {
		record.Started = payload.Started
	}
	if record.TimeSpentSeconds == 0 {
		record.TimeSpentSeconds = payload.TimeSpentSeconds
		record.BillableSeconds = payload.BillableSeconds
	}
	return record
}
