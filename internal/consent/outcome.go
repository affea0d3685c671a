// internal/consent/outcome.go
package consent

import (
	"fmt"

	"gdap/pkg/tenants"
)

type Status string

const (
	StatusConsented Status = "consented"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Steps of the per-tenant pipeline, recorded on failure so operators know
// how far a tenant got.
const (
	StepRefresh  = "refresh"
	StepTeardown = "teardown"
	StepConsent  = "consent"
)

// Outcome is one tenant's result. A batch over N tenants always yields
// exactly N outcomes, failures included.
type Outcome struct {
	Tenant     tenants.TenantReference `json:"tenant"`
	Status     Status                  `json:"status"`
	Step       string                  `json:"step,omitempty"`
	Detail     string                  `json:"detail,omitempty"`
	StatusCode int                     `json:"statusCode,omitempty"`
}

// DeletionTimeoutError: an existing service principal was deleted but never
// disappeared from probes within the polling budget. The consent call for
// that tenant is not attempted.
type DeletionTimeoutError struct {
	TenantID string
	Attempts int
}

func (e *DeletionTimeoutError) Error() string {
	return fmt.Sprintf("consent: service principal in %s still present after %d probes", e.TenantID, e.Attempts)
}
