// internal/consent/orchestrator.go
package consent

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gdap/internal/directory"
	"gdap/internal/observability"
	"gdap/internal/token"
	"gdap/pkg/credstore"
	"gdap/pkg/retry"
	"gdap/pkg/tenants"
)

// Deletion polling: exponential backoff starting at 10s, doubling, six
// attempts total.
const (
	deletePollInitial  = 10 * time.Second
	deletePollAttempts = 6
)

// Orchestrator applies the consent pipeline across many customer tenants.
// One tenant's failure never halts the batch; only setup problems do.
type Orchestrator struct {
	log         *zap.SugaredLogger
	dir         *directory.Client
	refresher   *token.Refresher
	submitter   Submitter
	permissions Permissions
	scope       string
	workers     int
	deletePoll  retry.Policy
}

func NewOrchestrator(log *zap.SugaredLogger, dir *directory.Client, r *token.Refresher, s Submitter, perms Permissions, scope string, workers int) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		log:         log,
		dir:         dir,
		refresher:   r,
		submitter:   s,
		permissions: perms,
		scope:       scope,
		workers:     workers,
		deletePoll:  retry.Policy{MaxAttempts: deletePollAttempts, Interval: deletePollInitial, Multiplier: 2},
	}
}

// ApplyConsent processes every tenant and returns exactly one outcome per
// input tenant, in input order. A non-nil error means nothing ran at all
// (setup failure); per-tenant problems live in the outcomes.
func (o *Orchestrator) ApplyConsent(ctx context.Context, refs []tenants.TenantReference, bundle credstore.Bundle, updateExisting bool) ([]Outcome, error) {
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	if err := o.permissions.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	defer func() { observability.BatchDuration.Observe(time.Since(started).Seconds()) }()

	outcomes := make([]Outcome, len(refs))
	if o.workers <= 1 {
		for i, ref := range refs {
			outcomes[i] = o.processTenant(ctx, ref, bundle.Clone(), updateExisting)
		}
	} else {
		// Each worker gets a private bundle copy: the token fields are
		// tenant-scoped and must not be shared across tenants (see Clone).
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.workers)
		for i, ref := range refs {
			i, ref := i, ref
			g.Go(func() error {
				outcomes[i] = o.processTenant(gctx, ref, bundle.Clone(), updateExisting)
				return nil
			})
		}
		_ = g.Wait() // workers never return errors
	}

	for _, oc := range outcomes {
		observability.TenantsProcessed.WithLabelValues(string(oc.Status)).Inc()
	}
	return outcomes, nil
}

// processTenant runs refresh -> probe -> optional teardown -> consent for one
// tenant and folds any failure into the outcome.
func (o *Orchestrator) processTenant(ctx context.Context, ref tenants.TenantReference, bundle credstore.Bundle, updateExisting bool) Outcome {
	out := Outcome{Tenant: ref}

	grant, err := o.refresher.Refresh(ctx, ref.TenantID, bundle, o.scope)
	if err != nil {
		observability.TokenRefreshes.WithLabelValues("failure").Inc()
		return o.failed(out, StepRefresh, err)
	}
	observability.TokenRefreshes.WithLabelValues("success").Inc()
	bundle.SetToken(grant.AccessToken, grant.ExpiresIn)
	auth := grant.Header()

	// Existence probe is best-effort: an un-consented tenant legitimately
	// answers this with an authorization error, which means "not found".
	sp, found, err := o.dir.FindServicePrincipalByAppID(ctx, auth, o.permissions.ApplicationID)
	if err != nil {
		o.log.Debugw("existence probe failed, treating as absent", "tenant", ref.TenantID, "err", err)
		found = false
	}

	switch {
	case found && !updateExisting:
		out.Status = StatusSkipped
		out.Detail = "application already consented"
		return out
	case found && updateExisting:
		if err := o.teardown(ctx, auth, ref.TenantID, sp.ID); err != nil {
			return o.failed(out, StepTeardown, err)
		}
	}

	req := Request{
		ApplicationID: o.permissions.ApplicationID,
		DisplayName:   o.permissions.DisplayName,
		Grants:        o.permissions.Grants,
	}
	if err := o.submitter.Submit(ctx, auth, ref.TenantID, req); err != nil {
		return o.failed(out, StepConsent, err)
	}
	out.Status = StatusConsented
	return out
}

var errStillPresent = errors.New("consent: service principal still present")

// teardown deletes the existing service principal and polls until probes no
// longer see it. Probe errors during the poll count as gone, matching the
// best-effort probe above.
func (o *Orchestrator) teardown(ctx context.Context, auth, tenantID, servicePrincipalID string) error {
	if err := o.dir.DeleteServicePrincipal(ctx, auth, servicePrincipalID); err != nil {
		if directory.IsNotFound(err) {
			return nil
		}
		return err
	}
	o.log.Infow("existing consent deleted, waiting for disappearance", "tenant", tenantID)

	err := o.deletePoll.Do(ctx, func() error {
		_, stillThere, perr := o.dir.FindServicePrincipalByAppID(ctx, auth, o.permissions.ApplicationID)
		if perr == nil && stillThere {
			return errStillPresent
		}
		return nil
	})
	if errors.Is(err, errStillPresent) || errors.Is(err, context.DeadlineExceeded) {
		return &DeletionTimeoutError{TenantID: tenantID, Attempts: deletePollAttempts}
	}
	return err
}

// failed fills the failure fields, pulling a status code out of the typed
// errors so callers can tell denial from transport trouble.
func (o *Orchestrator) failed(out Outcome, step string, err error) Outcome {
	out.Status = StatusFailed
	out.Step = step
	out.Detail = err.Error()

	var re *token.RefreshError
	var de *directory.RequestError
	var se *SubmitError
	switch {
	case errors.As(err, &re):
		out.StatusCode = re.StatusCode
	case errors.As(err, &de):
		out.StatusCode = de.StatusCode
	case errors.As(err, &se):
		out.StatusCode = se.StatusCode
	}
	o.log.Warnw("tenant failed", "tenant", out.Tenant.Label(), "step", step, "err", err)
	return out
}
