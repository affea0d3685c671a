// internal/directory/groups.go
package directory

import (
	"context"
	"fmt"
	"strings"
)

// FindGroupByName looks a security group up by exact display name. The bool
// is false when no group matches.
func (c *Client) FindGroupByName(ctx context.Context, auth, displayName string) (Group, bool, error) {
	// Single quotes inside OData string literals are doubled.
	escaped := strings.ReplaceAll(displayName, "'", "''")
	var page collection[Group]
	resp, err := c.req(ctx, auth).
		SetQueryParam("$filter", fmt.Sprintf("displayName eq '%s'", escaped)).
		SetResult(&page).
		Get("/groups")
	if err != nil {
		return Group{}, false, fmt.Errorf("directory: find group %q: %w", displayName, err)
	}
	if resp.IsError() {
		return Group{}, false, errorFrom(resp)
	}
	if len(page.Value) == 0 {
		return Group{}, false, nil
	}
	return page.Value[0], true, nil
}

func (c *Client) GetGroup(ctx context.Context, auth, id string) (Group, error) {
	var out Group
	resp, err := c.req(ctx, auth).
		SetResult(&out).
		Get("/groups/" + id)
	if err != nil {
		return Group{}, fmt.Errorf("directory: get group %s: %w", id, err)
	}
	if resp.IsError() {
		return Group{}, errorFrom(resp)
	}
	return out, nil
}

func (c *Client) CreateGroup(ctx context.Context, auth string, g Group) (Group, error) {
	var out Group
	resp, err := c.req(ctx, auth).
		SetBody(g).
		SetResult(&out).
		Post("/groups")
	if err != nil {
		return Group{}, fmt.Errorf("directory: create group %q: %w", g.DisplayName, err)
	}
	if resp.IsError() {
		return Group{}, errorFrom(resp)
	}
	return out, nil
}
