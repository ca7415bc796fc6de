// Package tempo is the Jira/Tempo integration client. It resolves the caller's
// identity and issue references, caches issue lookups, and performs worklog
// and schedule operations against the remote API.
package tempo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spec-kit/tempofiller/internal/cache"
	"github.com/spec-kit/tempofiller/internal/domain"
	"github.com/spec-kit/tempofiller/internal/observability"
	"github.com/spec-kit/tempofiller/pkg/util/errorutil"
)

// DefaultIssueCacheTTL is how long a resolved issue is reused.
const DefaultIssueCacheTTL = 300 * time.Second

// Remote endpoints, relative to the Jira base URL.
const (
	pathMyself         = "/rest/api/latest/myself"
	pathIssue          = "/rest/api/latest/issue/"
	pathWorklogs       = "/rest/tempo-timesheets/4/worklogs/"
	pathWorklogSearch  = "/rest/tempo-timesheets/4/worklogs/search"
	pathScheduleSearch = "/rest/tempo-core/2/user/schedule/search"
)

// Options configures a Client. IssueStore defaults to an in-memory store.
type Options struct {
	BaseURL       string
	Token         string
	UserAgent     string
	Timeout       time.Duration
	IssueCacheTTL time.Duration
	IssueStore    cache.Store[domain.ResolvedIssue]
	Clock         cache.Clock
	HTTPClient    *http.Client
	Logger        *zap.Logger
	Metrics       *observability.Metrics
}

// Client talks to Jira and Tempo on behalf of a single authenticated user.
// The issue cache and the memoized identity belong to the instance; create a
// new Client to pick up a changed identity.
type Client struct {
	baseURL   string
	token     string
	userAgent string
	http      *http.Client
	logger    *zap.Logger
	metrics   *observability.Metrics

	issues  *cache.TTLCache[domain.ResolvedIssue]
	lookups singleflight.Group
	timeout time.Duration

	identityMu sync.Mutex
	identity   domain.Identity
}

// NewClient builds a Client from opts.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := opts.IssueStore
	if store == nil {
		store = cache.NewMemoryStore[domain.ResolvedIssue]()
	}
	ttl := opts.IssueCacheTTL
	if ttl <= 0 {
		ttl = DefaultIssueCacheTTL
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "tempofiller/dev"
	}

	return &Client{
		baseURL:   opts.BaseURL,
		token:     opts.Token,
		userAgent: userAgent,
		http:      httpClient,
		logger:    logger.Named("tempo"),
		metrics:   opts.Metrics,
		issues:    cache.New(store, ttl, opts.Clock),
		timeout:   timeout,
	}
}

// ClearIssueCache drops all cached issue resolutions.
func (c *Client) ClearIssueCache(ctx context.Context) error {
	return c.issues.Clear(ctx)
}

// CachedIssueCount reports how many issue resolutions are held.
func (c *Client) CachedIssueCount(ctx context.Context) int {
	return c.issues.Len(ctx)
}

// shared runs fn once for all concurrent callers of the same key. fn runs
// under a context detached from the first caller's cancellation and bounded
// by the client timeout, so one caller's deadline never fails the others.
// Each caller stops waiting when its own ctx is done.
func (c *Client) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := c.lookups.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return fn(fetchCtx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// do performs a JSON request and decodes a 2xx body into out. Non-2xx
// responses are normalized by normalizeError. The returned status is zero
// when no response was received.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) (int, error) {
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, &TransportError{Method: method, URL: url, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordError(op, method, "TRANSPORT")
		c.logger.Warn("request failed", zap.String("op", op), zap.String("method", method), zap.String("url", url), zap.Error(err))
		return 0, &TransportError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	c.metrics.RecordRequest(op, method, resp.StatusCode, elapsed)
	c.logger.Debug("request completed",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", elapsed))
	if err != nil {
		return resp.StatusCode, &TransportError{Method: method, URL: url, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		normalized := normalizeError(method, url, resp.StatusCode, payload)
		c.metrics.RecordError(op, method, string(errorutil.KindOf(normalized)))
		return resp.StatusCode, normalized
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		c.metrics.RecordError(op, method, string(errorutil.KindProtocol))
		return resp.StatusCode, errorutil.NewProtocolError(fmt.Sprintf("unexpected %s response from %s %s: %v", op, method, url, err))
	}
	return resp.StatusCode, nil
}
