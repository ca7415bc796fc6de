package tempo

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/tempofiller/internal/domain"
	"github.com/spec-kit/tempofiller/pkg/util/errorutil"
)

// ResolveIssue maps an issue key to its numeric id and summary. Fresh cache
// entries are returned without a remote call; concurrent lookups of the same
// uncached key share one request.
func (c *Client) ResolveIssue(ctx context.Context, key string) (domain.ResolvedIssue, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ResolvedIssue{}, errorutil.NewValidationError("issue key is required", nil)
	}

	if issue, ok := c.issues.Get(ctx, key); ok {
		return issue, nil
	}

	v, err := c.shared(ctx, "issue:"+key, func(ctx context.Context) (any, error) {
		if issue, ok := c.issues.Get(ctx, key); ok {
			return issue, nil
		}
		issue, err := c.fetchIssue(ctx, key)
		if err != nil {
			return nil, err
		}
		if err := c.issues.Put(ctx, key, issue); err != nil {
			c.logger.Warn("issue cache write failed", zap.String("issue", key), zap.Error(err))
		}
		return issue, nil
	})
	if err != nil {
		return domain.ResolvedIssue{}, err
	}
	return v.(domain.ResolvedIssue), nil
}

func (c *Client) fetchIssue(ctx context.Context, key string) (domain.ResolvedIssue, error) {
	var resp issueResponse
	status, err := c.do(ctx, "get_issue", http.MethodGet, pathIssue+url.PathEscape(key)+"?fields=summary", nil, &resp)
	if status == http.StatusNotFound {
		return domain.ResolvedIssue{}, errorutil.NewNotFound("issue", key)
	}
	if err != nil {
		return domain.ResolvedIssue{}, err
	}
	if resp.ID == "" {
		return domain.ResolvedIssue{}, errorutil.NewProtocolError("issue " + key + " response has no id")
	}

	resolvedKey := resp.Key
	if resolvedKey == "" {
		resolvedKey = key
	}
	return domain.ResolvedIssue{
		ID:      string(resp.ID),
		Key:     resolvedKey,
		Summary: resp.Fields.Summary,
	}, nil
}
