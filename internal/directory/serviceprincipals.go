// internal/directory/serviceprincipals.go
package directory

import (
	"context"
	"fmt"
	"strings"
)

// FindServicePrincipalByAppID probes a tenant for the service application.
// The bool is false when the app has not been consented there.
func (c *Client) FindServicePrincipalByAppID(ctx context.Context, auth, appID string) (ServicePrincipal, bool, error) {
	escaped := strings.ReplaceAll(appID, "'", "''")
	var page collection[ServicePrincipal]
	resp, err := c.req(ctx, auth).
		SetQueryParam("$filter", fmt.Sprintf("appId eq '%s'", escaped)).
		SetResult(&page).
		Get("/servicePrincipals")
	if err != nil {
		return ServicePrincipal{}, false, fmt.Errorf("directory: find service principal %s: %w", appID, err)
	}
	if resp.IsError() {
		return ServicePrincipal{}, false, errorFrom(resp)
	}
	if len(page.Value) == 0 {
		return ServicePrincipal{}, false, nil
	}
	return page.Value[0], true, nil
}

func (c *Client) DeleteServicePrincipal(ctx context.Context, auth, id string) error {
	resp, err := c.req(ctx, auth).Delete("/servicePrincipals/" + id)
	if err != nil {
		return fmt.Errorf("directory: delete service principal %s: %w", id, err)
	}
	if resp.IsError() {
		return errorFrom(resp)
	}
	return nil
}
