// pkg/tenants/memory.go
package tenants

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
)

type memProvider struct {
	log  *zap.SugaredLogger
	byID map[string]TenantReference
	all  []TenantReference
}

// NewMemoryProvider serves a fixed tenant list supplied by the caller.
func NewMemoryProvider(log *zap.SugaredLogger, refs []TenantReference) Provider {
	p := &memProvider{log: log, byID: map[string]TenantReference{}}
	for _, r := range refs {
		if r.TenantID == "" {
			continue
		}
		if _, dup := p.byID[r.TenantID]; dup {
			continue
		}
		p.byID[r.TenantID] = r
		p.all = append(p.all, r)
	}
	return p
}

// NewMemoryProviderFromEnv seeds from GDAP_TENANT_SEED_JSON, a JSON array of
// {tenantId, displayName} entries. Dev convenience only.
func NewMemoryProviderFromEnv(log *zap.SugaredLogger) Provider {
	var refs []TenantReference
	if seed := os.Getenv("GDAP_TENANT_SEED_JSON"); seed != "" {
		if err := json.Unmarshal([]byte(seed), &refs); err != nil {
			log.Warnw("tenant seed parse failed", "err", err)
		}
	}
	return NewMemoryProvider(log, refs)
}

// LoadFile reads a JSON array of tenant references from disk.
func LoadFile(path string) ([]TenantReference, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tenants: read %s: %w", path, err)
	}
	var refs []TenantReference
	if err := json.Unmarshal(raw, &refs); err != nil {
		return nil, fmt.Errorf("tenants: parse %s: %w", path, err)
	}
	return refs, nil
}

func (m *memProvider) List(context.Context) ([]TenantReference, error) {
	out := make([]TenantReference, len(m.all))
	copy(out, m.all)
	return out, nil
}

func (m *memProvider) Resolve(_ context.Context, id string) (TenantReference, error) {
	if t, ok := m.byID[id]; ok {
		return t, nil
	}
	return TenantReference{}, errors.New("tenant not found")
}
