// internal/directory/customers.go
package directory

import (
	"context"

	"gdap/pkg/tenants"
)

const customersPath = "/tenantRelationships/delegatedAdminCustomers"

func (c *Client) ListCustomers(ctx context.Context, auth string) ([]Customer, error) {
	return listAll[Customer](ctx, c, auth, customersPath)
}

// customerLister adapts the customers listing to tenants.Lister, refreshing
// a provider-tenant token on each call.
type customerLister struct {
	client         *Client
	tokens         TokenSource
	providerTenant string
}

// Customers returns a tenants.Lister backed by the delegated-admin customer
// listing of the provider tenant.
func (c *Client) Customers(ts TokenSource, providerTenant string) tenants.Lister {
	return &customerLister{client: c, tokens: ts, providerTenant: providerTenant}
}

func (l *customerLister) ListCustomerTenants(ctx context.Context) ([]tenants.TenantReference, error) {
	auth, err := l.tokens.Authorization(ctx, l.providerTenant)
	if err != nil {
		return nil, err
	}
	rows, err := l.client.ListCustomers(ctx, auth)
	if err != nil {
		return nil, err
	}
	refs := make([]tenants.TenantReference, 0, len(rows))
	for _, r := range rows {
		refs = append(refs, tenants.TenantReference{TenantID: r.TenantID, DisplayName: r.DisplayName})
	}
	return refs, nil
}
