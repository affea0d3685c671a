// internal/token/session.go
package token

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"gdap/pkg/credstore"
)

// expirySkew is subtracted from expires_in so a token never gets used in the
// last moments of its validity.
const expirySkew = 2 * time.Minute

// Session caches per-tenant grants for the lifetime of the process. Nothing
// is persisted; a new run always refreshes.
type Session struct {
	log       *zap.SugaredLogger
	refresher *Refresher
	bundle    credstore.Bundle
	scope     string
	cache     *gocache.Cache
}

func NewSession(log *zap.SugaredLogger, r *Refresher, b credstore.Bundle, scope string) *Session {
	return &Session{
		log:       log,
		refresher: r,
		bundle:    b.Clone(),
		scope:     scope,
		cache:     gocache.New(5*time.Minute, time.Minute),
	}
}

// Authorization returns a cached header value for tenantID, refreshing once
// when absent or expired.
func (s *Session) Authorization(ctx context.Context, tenantID string) (string, error) {
	if v, ok := s.cache.Get(tenantID); ok {
		return v.(string), nil
	}
	grant, err := s.refresher.Refresh(ctx, tenantID, s.bundle, s.scope)
	if err != nil {
		return "", err
	}
	ttl := time.Duration(grant.ExpiresIn)*time.Second - expirySkew
	if ttl < time.Minute {
		ttl = time.Minute
	}
	header := grant.Header()
	s.cache.Set(tenantID, header, ttl)
	return header, nil
}

// Forget drops the cached grant for tenantID, forcing the next call to
// refresh. Used after a remote 401.
func (s *Session) Forget(tenantID string) { s.cache.Delete(tenantID) }
