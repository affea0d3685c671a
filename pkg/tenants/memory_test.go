package tenants

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdap/pkg/logger"
)

func TestMemoryProvider(t *testing.T) {
	p := NewMemoryProvider(logger.Nop(), []TenantReference{
		{TenantID: "t1", DisplayName: "Contoso"},
		{TenantID: "t2"},
		{TenantID: "t1", DisplayName: "duplicate, dropped"},
		{}, // no id, dropped
	})

	refs, err := p.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, refs, 2)

	got, err := p.Resolve(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "Contoso", got.DisplayName)

	_, err = p.Resolve(context.Background(), "missing")
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tenants.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"tenantId":"a","displayName":"A"},{"tenantId":"b"}]`), 0o644))

	refs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "A", refs[0].DisplayName)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "A", TenantReference{TenantID: "a", DisplayName: "A"}.Label())
	assert.Equal(t, "a", TenantReference{TenantID: "a"}.Label())
}
