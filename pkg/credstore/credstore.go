// pkg/credstore/credstore.go
package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Bundle is the credential set powering every remote call: one confidential
// client plus its long-lived refresh token. AccessToken/IssuedAt/ExpiresIn are
// replaced together on each refresh and are only ever session-scoped.
type Bundle struct {
	ClientID     string    `json:"clientId"`
	ClientSecret string    `json:"clientSecret"`
	TenantID     string    `json:"tenantId"`
	RefreshToken string    `json:"refreshToken"`
	AccessToken  string    `json:"accessToken,omitempty"`
	IssuedAt     time.Time `json:"issuedAt,omitempty"`
	ExpiresIn    int64     `json:"expiresIn,omitempty"`
}

func (b Bundle) Validate() error {
	switch {
	case b.ClientID == "":
		return errors.New("credential bundle: missing clientId")
	case b.ClientSecret == "":
		return errors.New("credential bundle: missing clientSecret")
	case b.TenantID == "":
		return errors.New("credential bundle: missing tenantId")
	case b.RefreshToken == "":
		return errors.New("credential bundle: missing refreshToken")
	}
	return nil
}

// Clone hands a caller its own copy, so tenants processed concurrently never
// share the mutable token fields.
func (b Bundle) Clone() Bundle { return b }

// SetToken replaces the short-lived fields atomically (single assignment on
// the caller's copy).
func (b *Bundle) SetToken(accessToken string, expiresIn int64) {
	b.AccessToken = accessToken
	b.IssuedAt = time.Now().UTC()
	b.ExpiresIn = expiresIn
}

var ErrReadOnly = errors.New("credstore: store is read-only")

// Store persists a named credential bundle. The core never writes through it
// on its own; only explicit caller actions (login, token rotation) do.
type Store interface {
	Load(ctx context.Context) (Bundle, error)
	Save(ctx context.Context, b Bundle) error
}

// Open picks a store: a file path if provided, otherwise environment variables.
func Open(path string) Store {
	if path != "" {
		return &FileStore{Path: path}
	}
	return EnvStore{}
}

func notFound(what string) error { return fmt.Errorf("credstore: %s not found", what) }
