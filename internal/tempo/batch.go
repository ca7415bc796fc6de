package tempo

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/tempofiller/internal/domain"
	"github.com/spec-kit/tempofiller/pkg/util/errorutil"
)

type preparedWorklog struct {
	payload domain.WorklogPayload
	issue   domain.ResolvedIssue
	err     error
}

// CreateBatch creates one worklog per request and returns one outcome per
// request, in input order. Payloads are built first so each distinct issue is
// resolved once, then all creations run concurrently. A failing item is
// reported in its outcome and never stops the others; the call returns only
// after every item has settled.
func (c *Client) CreateBatch(ctx context.Context, reqs []domain.WorklogCreateRequest) []domain.BatchOutcome {
	outcomes := make([]domain.BatchOutcome, len(reqs))
	if len(reqs) == 0 {
		return outcomes
	}

	prepared := make([]preparedWorklog, len(reqs))
	var wg sync.WaitGroup
	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload, issue, err := c.BuildPayload(ctx, reqs[i])
			prepared[i] = preparedWorklog{payload: payload, issue: issue, err: err}
		}(i)
	}
	wg.Wait()

	for i := range reqs {
		outcomes[i].Request = reqs[i]
		if err := prepared[i].err; err != nil {
			outcomes[i].Error = err.Error()
			outcomes[i].ErrorKind = string(errorutil.KindOf(err))
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			record, err := c.CreateWorklog(ctx, prepared[i].payload)
			if err != nil {
				outcomes[i].Error = err.Error()
				outcomes[i].ErrorKind = string(errorutil.KindOf(err))
				return
			}
			record = completeRecord(record, prepared[i].issue, prepared[i].payload)
			outcomes[i].Success = true
			outcomes[i].Worklog = &record
		}(i)
	}
	wg.Wait()

	failed := 0
	for i, o := range outcomes {
		if o.Success {
			continue
		}
		failed++
		c.logger.Warn("batch item failed",
			zap.Int("index", i),
			zap.String("issue", o.Request.IssueKey),
			zap.String("date", o.Request.StartDate),
			zap.String("error", o.Error))
	}
	c.logger.Info("batch completed", zap.Int("total", len(outcomes)), zap.Int("failed", failed))
	return outcomes
}
