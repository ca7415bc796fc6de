package tempo

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/tempofiller/internal/domain"
	"github.com/spec-kit/tempofiller/pkg/util/errorutil"
)

const identityLookupKey = "myself"

// CurrentIdentity returns the authenticated user's key. The first successful
// lookup is memoized for the lifetime of the client; failures are not.
// Concurrent first calls share one request and each honours its own ctx.
func (c *Client) CurrentIdentity(ctx context.Context) (domain.Identity, error) {
	if id := c.memoizedIdentity(); id != "" {
		return id, nil
	}

	v, err := c.shared(ctx, identityLookupKey, func(ctx context.Context) (any, error) {
		if id := c.memoizedIdentity(); id != "" {
			return id, nil
		}
		return c.fetchIdentity(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(domain.Identity), nil
}

func (c *Client) memoizedIdentity() domain.Identity {
	c.identityMu.Lock()
	defer c.identityMu.Unlock()
	return c.identity
}

func (c *Client) fetchIdentity(ctx context.Context) (domain.Identity, error) {
	var me myselfResponse
	if _, err := c.do(ctx, "myself", http.MethodGet, pathMyself, nil, &me); err != nil {
		return "", err
	}

	key := me.Key
	if key == "" {
		key = me.Name
	}
	if key == "" {
		return "", errorutil.NewAuthentication("unable to determine current user from API response")
	}

	id := domain.Identity(key)
	c.identityMu.Lock()
	c.identity = id
	c.identityMu.Unlock()
	c.logger.Info("authenticated", zap.String("user", key), zap.String("display_name", me.DisplayName))
	return id, nil
}
