package consent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdap/internal/directory"
	"gdap/internal/token"
	"gdap/pkg/credstore"
	"gdap/pkg/logger"
	"gdap/pkg/retry"
	"gdap/pkg/tenants"
)

func testBundle() credstore.Bundle {
	return credstore.Bundle{
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		TenantID:     "provider-tenant",
		RefreshToken: "rt-1",
	}
}

func testPermissions() Permissions {
	return Permissions{
		ApplicationID: "app-1",
		DisplayName:   "Service App",
		Grants:        []Grant{{EnterpriseApplicationID: "ea-1", Scope: "Directory.Read.All"}},
	}
}

// fakeLogin answers the refresh-token grant, failing where told to.
type fakeLogin struct {
	mu      sync.Mutex
	failFor map[string]int // tenant -> status code
	tokens  []string       // tenants that got a token, in call order
}

func (f *fakeLogin) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenant := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)[0]
		require.NoError(t, r.ParseForm())
		require.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		f.mu.Lock()
		defer f.mu.Unlock()
		if code, ok := f.failFor[tenant]; ok {
			w.WriteHeader(code)
			w.Write([]byte(`{"error":"invalid_grant","error_description":"AADSTS700082: refresh token expired"}`))
			return
		}
		f.tokens = append(f.tokens, tenant)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"token_type":   "Bearer",
			"access_token": "tok-" + tenant,
			"expires_in":   3600,
		})
	})
}

// fakeProbe serves the service-principal surface. Per-tenant presence is
// keyed off the bearer token the login fake issued.
type fakeProbe struct {
	mu          sync.Mutex
	present     map[string]bool // tenant -> service principal exists
	probeCode   int             // non-zero: every find answers this status
	undeletable bool            // DELETE succeeds but the principal stays visible
	deletes     int
	finds       int
}

func tenantFromAuth(auth string) string {
	return strings.TrimPrefix(auth, "Bearer tok-")
}

func (f *fakeProbe) handlerFunc() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/servicePrincipals", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.finds++
		if f.probeCode != 0 {
			w.WriteHeader(f.probeCode)
			w.Write([]byte(`{"error":{"code":"Authorization_RequestDenied","message":"insufficient privileges"}}`))
			return
		}
		tenant := tenantFromAuth(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		if f.present[tenant] {
			json.NewEncoder(w).Encode(map[string]any{"value": []directory.ServicePrincipal{{ID: "sp-" + tenant, AppID: "app-1"}}})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"value": []directory.ServicePrincipal{}})
	})
	mux.HandleFunc("/servicePrincipals/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		f.deletes++
		if !f.undeletable {
			tenant := tenantFromAuth(r.Header.Get("Authorization"))
			f.present[tenant] = false
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

type fakeSubmitter struct {
	mu     sync.Mutex
	calls  []string
	errFor map[string]error
}

func (s *fakeSubmitter) Submit(_ context.Context, _, tenantID string, _ Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, tenantID)
	return s.errFor[tenantID]
}

func newTestOrchestrator(t *testing.T, login *fakeLogin, probe *fakeProbe, sub Submitter, workers int) (*Orchestrator, func()) {
	t.Helper()
	loginSrv := httptest.NewServer(login.handler(t))
	probeSrv := httptest.NewServer(probe.handlerFunc())
	o := NewOrchestrator(
		logger.Nop(),
		directory.New(logger.Nop(), probeSrv.URL),
		token.NewRefresher(logger.Nop(), loginSrv.URL),
		sub,
		testPermissions(),
		"https://graph.microsoft.com/.default",
		workers,
	)
	o.deletePoll = retry.Policy{MaxAttempts: 3, Interval: 2 * time.Millisecond, Multiplier: 2}
	return o, func() { loginSrv.Close(); probeSrv.Close() }
}

func refs(ids ...string) []tenants.TenantReference {
	out := make([]tenants.TenantReference, 0, len(ids))
	for _, id := range ids {
		out = append(out, tenants.TenantReference{TenantID: id})
	}
	return out
}

func TestApplyConsentOneOutcomePerTenant(t *testing.T) {
	login := &fakeLogin{failFor: map[string]int{"tenant-b": http.StatusBadRequest}}
	probe := &fakeProbe{present: map[string]bool{}}
	sub := &fakeSubmitter{}
	o, done := newTestOrchestrator(t, login, probe, sub, 1)
	defer done()

	outcomes, err := o.ApplyConsent(context.Background(), refs("tenant-a", "tenant-b", "tenant-c"), testBundle(), false)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, "tenant-a", outcomes[0].Tenant.TenantID)
	assert.Equal(t, StatusConsented, outcomes[0].Status)

	assert.Equal(t, "tenant-b", outcomes[1].Tenant.TenantID)
	assert.Equal(t, StatusFailed, outcomes[1].Status)
	assert.Equal(t, StepRefresh, outcomes[1].Step)
	assert.Equal(t, http.StatusBadRequest, outcomes[1].StatusCode)
	assert.Contains(t, outcomes[1].Detail, "AADSTS700082")

	assert.Equal(t, "tenant-c", outcomes[2].Tenant.TenantID)
	assert.Equal(t, StatusConsented, outcomes[2].Status)

	assert.Equal(t, []string{"tenant-a", "tenant-c"}, sub.calls)
}

func TestApplyConsentProbeErrorTreatedAsAbsent(t *testing.T) {
	login := &fakeLogin{}
	probe := &fakeProbe{probeCode: http.StatusForbidden}
	sub := &fakeSubmitter{}
	o, done := newTestOrchestrator(t, login, probe, sub, 1)
	defer done()

	outcomes, err := o.ApplyConsent(context.Background(), refs("tenant-a"), testBundle(), false)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusConsented, outcomes[0].Status)
	assert.Equal(t, []string{"tenant-a"}, sub.calls)
}

func TestApplyConsentSkipsExisting(t *testing.T) {
	login := &fakeLogin{}
	probe := &fakeProbe{present: map[string]bool{"tenant-a": true}}
	sub := &fakeSubmitter{}
	o, done := newTestOrchestrator(t, login, probe, sub, 1)
	defer done()

	outcomes, err := o.ApplyConsent(context.Background(), refs("tenant-a"), testBundle(), false)
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, outcomes[0].Status)
	assert.Empty(t, sub.calls, "skipped tenants must not be re-consented")
	assert.Zero(t, probe.deletes)
}

func TestApplyConsentUpdateExistingReplacesConsent(t *testing.T) {
	login := &fakeLogin{}
	probe := &fakeProbe{present: map[string]bool{"tenant-a": true}}
	sub := &fakeSubmitter{}
	o, done := newTestOrchestrator(t, login, probe, sub, 1)
	defer done()

	outcomes, err := o.ApplyConsent(context.Background(), refs("tenant-a"), testBundle(), true)
	require.NoError(t, err)
	assert.Equal(t, StatusConsented, outcomes[0].Status)
	assert.Equal(t, 1, probe.deletes)
	assert.Equal(t, []string{"tenant-a"}, sub.calls)
}

func TestApplyConsentDeletionTimeout(t *testing.T) {
	login := &fakeLogin{}
	probe := &fakeProbe{present: map[string]bool{"tenant-a": true}, undeletable: true}
	sub := &fakeSubmitter{}
	o, done := newTestOrchestrator(t, login, probe, sub, 1)
	defer done()

	outcomes, err := o.ApplyConsent(context.Background(), refs("tenant-a"), testBundle(), true)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, outcomes[0].Status)
	assert.Equal(t, StepTeardown, outcomes[0].Step)
	assert.Contains(t, outcomes[0].Detail, "tenant-a")
	assert.Empty(t, sub.calls, "consent must not be submitted over a lingering principal")
}

func TestApplyConsentSubmitFailurePreservesDetail(t *testing.T) {
	login := &fakeLogin{}
	probe := &fakeProbe{present: map[string]bool{}}
	sub := &fakeSubmitter{errFor: map[string]error{
		"tenant-a": &SubmitError{StatusCode: 400, Code: "800001", Message: "grants include an invalid scope"},
	}}
	o, done := newTestOrchestrator(t, login, probe, sub, 1)
	defer done()

	outcomes, err := o.ApplyConsent(context.Background(), refs("tenant-a"), testBundle(), false)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, outcomes[0].Status)
	assert.Equal(t, StepConsent, outcomes[0].Step)
	assert.Equal(t, 400, outcomes[0].StatusCode)
	assert.Contains(t, outcomes[0].Detail, "800001")
}

func TestApplyConsentSetupFailures(t *testing.T) {
	login := &fakeLogin{}
	probe := &fakeProbe{present: map[string]bool{}}
	sub := &fakeSubmitter{}
	o, done := newTestOrchestrator(t, login, probe, sub, 1)
	defer done()

	bad := testBundle()
	bad.RefreshToken = ""
	outcomes, err := o.ApplyConsent(context.Background(), refs("tenant-a"), bad, false)
	require.Error(t, err)
	assert.Nil(t, outcomes)

	o.permissions = Permissions{ApplicationID: "app-1"}
	outcomes, err = o.ApplyConsent(context.Background(), refs("tenant-a"), testBundle(), false)
	require.Error(t, err)
	assert.Nil(t, outcomes)
	assert.Empty(t, sub.calls)
	assert.Empty(t, login.tokens, "setup failures must not touch any tenant")
}

func TestApplyConsentConcurrentKeepsOrder(t *testing.T) {
	ids := []string{"t1", "t2", "t3", "t4", "t5", "t6"}
	login := &fakeLogin{failFor: map[string]int{"t4": http.StatusUnauthorized}}
	probe := &fakeProbe{present: map[string]bool{}}
	sub := &fakeSubmitter{}
	o, done := newTestOrchestrator(t, login, probe, sub, 4)
	defer done()

	outcomes, err := o.ApplyConsent(context.Background(), refs(ids...), testBundle(), false)
	require.NoError(t, err)
	require.Len(t, outcomes, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, outcomes[i].Tenant.TenantID, "outcome %d must match input order", i)
	}
	assert.Equal(t, StatusFailed, outcomes[3].Status)
	assert.Equal(t, http.StatusUnauthorized, outcomes[3].StatusCode)
}

func TestLoadPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "permissions.yaml")
	raw := `applicationId: app-1
displayName: Service App
grants:
  - enterpriseApplicationId: ea-1
    scope: Directory.Read.All
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	p, err := LoadPermissions(path)
	require.NoError(t, err)
	assert.Equal(t, "app-1", p.ApplicationID)
	require.Len(t, p.Grants, 1)
	assert.Equal(t, "Directory.Read.All", p.Grants[0].Scope)
}

func TestLoadPermissionsRejectsEmptyGrants(t *testing.T) {
	path := filepath.Join(t.TempDir(), "permissions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("applicationId: app-1\ngrants: []\n"), 0o600))

	_, err := LoadPermissions(path)
	require.Error(t, err)
}
