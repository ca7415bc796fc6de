package tempo

import (
	"context"
	"net/http"
	"testing"

	"github.com/spec-kit/tempofiller/internal/domain"
	"github.com/spec-kit/tempofiller/pkg/util/errorutil"
)

func TestCreateBatchIsolatesFailures(t *testing.T) {
	fake, srv := newFakeTempo(t)
	fake.addIssue("PROJ-1", "10001", "One")
	fake.addIssue("PROJ-2", "10002", "Two")
	client := newTestClient(srv, nil)

	reqs := []domain.WorklogCreateRequest{
		{IssueKey: "PROJ-1", Hours: 8, StartDate: "2024-01-15"},
		{IssueKey: "PROJ-2", Hours: 4, StartDate: "2024-01-16"},
		{IssueKey: "NOPE-3", Hours: 2, StartDate: "2024-01-17"},
		{IssueKey: "PROJ-1", Hours: 1.5, StartDate: "2024-01-18"},
		{IssueKey: "PROJ-2", Hours: 0.25, StartDate: "2024-01-19"},
	}

	outcomes := client.CreateBatch(context.Background(), reqs)
	if len(outcomes) != len(reqs) {
		t.Fatalf("expected %d outcomes, got %d", len(reqs), len(outcomes))
	}

	for i, o := range outcomes {
		if o.Request != reqs[i] {
			t.Fatalf("outcome %d does not echo its request: %+v", i, o.Request)
		}
		if i == 2 {
			continue
		}
		if !o.Success || o.Worklog == nil {
			t.Fatalf("outcome %d should succeed: %+v", i, o)
		}
		if o.Worklog.IssueKey != reqs[i].IssueKey || o.Worklog.Hours() != reqs[i].Hours {
			t.Fatalf("outcome %d has wrong worklog %+v", i, o.Worklog)
		}
	}

	failed := outcomes[2]
	if failed.Success || failed.Worklog != nil {
		t.Fatalf("outcome 2 should fail: %+v", failed)
	}
	if failed.ErrorKind != string(errorutil.KindNotFound) || failed.Error == "" {
		t.Fatalf("expected not-found failure, got %+v", failed)
	}
	if len(fake.created) != 4 {
		t.Fatalf("expected 4 worklogs created, got %d", len(fake.created))
	}
}

func TestCreateBatchResolvesEachIssueOnce(t *testing.T) {
	fake, srv := newFakeTempo(t)
	fake.addIssue("PROJ-1", "10001", "One")
	client := newTestClient(srv, nil)

	reqs := make([]domain.WorklogCreateRequest, 6)
	for i := range reqs {
		reqs[i] = domain.WorklogCreateRequest{IssueKey: "PROJ-1", Hours: 1, StartDate: "2024-01-15"}
	}
	for i, o := range client.CreateBatch(context.Background(), reqs) {
		if !o.Success {
			t.Fatalf("outcome %d failed: %s", i, o.Error)
		}
	}
	if got := fake.issueCalls.Load(); got != 1 {
		t.Fatalf("expected one issue lookup, got %d", got)
	}
	if got := fake.myselfCalls.Load(); got != 1 {
		t.Fatalf("expected one identity lookup, got %d", got)
	}
}

func TestCreateBatchCreationFailure(t *testing.T) {
	fake, srv := newFakeTempo(t)
	fake.addIssue("PROJ-1", "10001", "One")
	fake.addIssue("LOCK-1", "20001", "Locked")
	fake.createStatus["20001"] = http.StatusBadRequest
	client := newTestClient(srv, nil)

	outcomes := client.CreateBatch(context.Background(), []domain.WorklogCreateRequest{
		{IssueKey: "LOCK-1", Hours: 8, StartDate: "2024-01-15"},
		{IssueKey: "PROJ-1", Hours: 8, StartDate: "2024-01-15"},
	})

	if outcomes[0].Success || outcomes[0].ErrorKind != string(errorutil.KindAPI) {
		t.Fatalf("expected api failure for locked issue, got %+v", outcomes[0])
	}
	if !outcomes[1].Success {
		t.Fatalf("expected second entry to succeed, got %+v", outcomes[1])
	}
}

func TestCreateBatchAllFailKeepsOrder(t *testing.T) {
	fake, srv := newFakeTempo(t)
	fake.setFailStatus(http.StatusUnauthorized)
	client := newTestClient(srv, nil)

	reqs := []domain.WorklogCreateRequest{
		{IssueKey: "A-1", Hours: 1, StartDate: "2024-01-01"},
		{IssueKey: "B-2", Hours: 2, StartDate: "2024-01-02"},
		{IssueKey: "C-3", Hours: 3, StartDate: "2024-01-03"},
	}
	outcomes := client.CreateBatch(context.Background(), reqs)
	for i, o := range outcomes {
		if o.Success || o.Request.IssueKey != reqs[i].IssueKey {
			t.Fatalf("unexpected outcome %d: %+v", i, o)
		}
		if o.ErrorKind != string(errorutil.KindAuthentication) {
			t.Fatalf("expected authentication failure, got %s", o.ErrorKind)
		}
	}
}

func TestCreateBatchEmpty(t *testing.T) {
	_, srv := newFakeTempo(t)
	client := newTestClient(srv, nil)

	if got := client.CreateBatch(context.Background(), nil); len(got) != 0 {
		t.Fatalf("expected no outcomes, got %d", len(got))
	}
}
