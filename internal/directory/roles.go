// internal/directory/roles.go
package directory

import (
	"context"
)

// ListRoleTemplates enumerates the directory's role catalog. Which roles
// exist is the service's ground truth; this is read-only.
func (c *Client) ListRoleTemplates(ctx context.Context, auth string) ([]RoleTemplate, error) {
	return listAll[RoleTemplate](ctx, c, auth, "/directoryRoleTemplates")
}
