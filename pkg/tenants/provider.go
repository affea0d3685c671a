// pkg/tenants/provider.go
package tenants

import (
	"context"
)

type Provider interface {
	// List all customer tenants visible to the service identity.
	List(ctx context.Context) ([]TenantReference, error)
	// Resolve a single tenant by id.
	Resolve(ctx context.Context, id string) (TenantReference, error)
}
