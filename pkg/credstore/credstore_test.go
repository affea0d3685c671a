package credstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBundle() Bundle {
	return Bundle{
		ClientID:     "client-1",
		ClientSecret: "secret",
		TenantID:     "tenant-1",
		RefreshToken: "refresh-abc",
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validBundle().Validate())

	b := validBundle()
	b.RefreshToken = ""
	assert.Error(t, b.Validate())

	assert.Error(t, Bundle{}.Validate())
}

func TestFileStoreRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	store := &FileStore{Path: path}
	ctx := context.Background()

	in := validBundle()
	in.SetToken("at-123", 3600)
	require.NoError(t, store.Save(ctx, in))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in.ClientID, out.ClientID)
	assert.Equal(t, in.RefreshToken, out.RefreshToken)
	assert.Equal(t, in.AccessToken, out.AccessToken)
	assert.Equal(t, int64(3600), out.ExpiresIn)
}

func TestFileStoreMissing(t *testing.T) {
	store := &FileStore{Path: filepath.Join(t.TempDir(), "nope.json")}
	_, err := store.Load(context.Background())
	require.Error(t, err)
}

func TestEnvStore(t *testing.T) {
	t.Setenv("GDAP_CLIENT_ID", "c")
	t.Setenv("GDAP_CLIENT_SECRET", "s")
	t.Setenv("GDAP_TENANT_ID", "t")
	t.Setenv("GDAP_REFRESH_TOKEN", "r")

	b, err := EnvStore{}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "c", b.ClientID)

	assert.ErrorIs(t, EnvStore{}.Save(context.Background(), b), ErrReadOnly)
}

func TestCloneIsIndependent(t *testing.T) {
	a := validBundle()
	b := a.Clone()
	b.SetToken("other", 60)
	assert.Empty(t, a.AccessToken)
	assert.Equal(t, "other", b.AccessToken)
}
