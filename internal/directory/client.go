// internal/directory/client.go
package directory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenSource hands out Authorization header values scoped to a target
// tenant. The token refresher implements it.
type TokenSource interface {
	Authorization(ctx context.Context, tenantID string) (string, error)
}

// Client talks to the directory REST surface. It owns no credential: every
// call takes the Authorization header value for the tenant it targets.
type Client struct {
	http *resty.Client
	log  *zap.SugaredLogger
}

func New(log *zap.SugaredLogger, baseURL string) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "application/json").
		SetTransport(Transport("gdap-directory"))
	return &Client{http: client, log: log}
}

// req starts an authenticated request with a fresh client-request-id so
// failures can be correlated with the service's own logs.
func (c *Client) req(ctx context.Context, auth string) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", auth).
		SetHeader("client-request-id", uuid.NewString())
}

// listAll pages through a collection endpoint following @odata.nextLink.
func listAll[T any](ctx context.Context, c *Client, auth, path string) ([]T, error) {
	var out []T
	next := path
	for next != "" {
		var page collection[T]
		resp, err := c.req(ctx, auth).SetResult(&page).Get(next)
		if err != nil {
			return nil, fmt.Errorf("directory: GET %s: %w", path, err)
		}
		if resp.IsError() {
			return nil, errorFrom(resp)
		}
		out = append(out, page.Value...)
		next = page.NextLink
	}
	return out, nil
}
