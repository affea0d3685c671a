// pkg/credstore/env.go
package credstore

import (
	"context"
	"os"
)

// EnvStore reads the bundle from environment variables. CI and container
// deployments use this; it never persists anything.
type EnvStore struct{}

func (EnvStore) Load(_ context.Context) (Bundle, error) {
	b := Bundle{
		ClientID:     os.Getenv("GDAP_CLIENT_ID"),
		ClientSecret: os.Getenv("GDAP_CLIENT_SECRET"),
		TenantID:     os.Getenv("GDAP_TENANT_ID"),
		RefreshToken: os.Getenv("GDAP_REFRESH_TOKEN"),
	}
	if err := b.Validate(); err != nil {
		return Bundle{}, err
	}
	return b, nil
}

func (EnvStore) Save(context.Context, Bundle) error { return ErrReadOnly }
