// pkg/tenants/directory.go
package tenants

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Lister is implemented by the directory client: it pages through the
// provider's contracted customer tenants.
type Lister interface {
	ListCustomerTenants(ctx context.Context) ([]TenantReference, error)
}

type directoryProvider struct {
	log    *zap.SugaredLogger
	lister Lister
}

// NewDirectoryProvider resolves tenants live from the directory listing.
// No caching: a consent batch should always see the current contract set.
func NewDirectoryProvider(log *zap.SugaredLogger, l Lister) Provider {
	return &directoryProvider{log: log, lister: l}
}

func (d *directoryProvider) List(ctx context.Context) ([]TenantReference, error) {
	return d.lister.ListCustomerTenants(ctx)
}

func (d *directoryProvider) Resolve(ctx context.Context, id string) (TenantReference, error) {
	refs, err := d.lister.ListCustomerTenants(ctx)
	if err != nil {
		return TenantReference{}, err
	}
	for _, r := range refs {
		if r.TenantID == id {
			return r, nil
		}
	}
	return TenantReference{}, errors.New("tenant not found")
}
