// internal/consent/submit.go
package consent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Grant is one requested permission for the service application.
type Grant struct {
	EnterpriseApplicationID string `json:"enterpriseApplicationId" yaml:"enterpriseApplicationId"`
	Scope                   string `json:"scope" yaml:"scope"`
}

// Request is the consent payload submitted per customer tenant.
type Request struct {
	ApplicationID string  `json:"applicationId"`
	DisplayName   string  `json:"displayName"`
	Grants        []Grant `json:"applicationGrants"`
}

// Submitter sends one consent request to the consent surface. Separate from
// the directory client: it is a different REST host with its own schema.
type Submitter interface {
	Submit(ctx context.Context, auth, tenantID string, req Request) error
}

// SubmitError preserves the consent surface's own error code and message.
type SubmitError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *SubmitError) Error() string {
	msg := fmt.Sprintf("consent: submit failed with status %d", e.StatusCode)
	if e.Code != "" {
		msg += fmt.Sprintf(" code=%s", e.Code)
	}
	if e.Message != "" {
		msg += fmt.Sprintf(": %s", e.Message)
	}
	return msg
}

type restSubmitter struct {
	http *resty.Client
	log  *zap.SugaredLogger
}

func NewSubmitter(log *zap.SugaredLogger, baseURL string) Submitter {
	return &restSubmitter{
		http: resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")).SetTimeout(30 * time.Second),
		log:  log,
	}
}

func (s *restSubmitter) Submit(ctx context.Context, auth, tenantID string, req Request) error {
	resp, err := s.http.R().
		SetContext(ctx).
		SetHeader("Authorization", auth).
		SetHeader("client-request-id", uuid.NewString()).
		SetBody(req).
		Post("/customers/" + tenantID + "/applicationConsents")
	if err != nil {
		return fmt.Errorf("consent: submit to %s: %w", tenantID, err)
	}
	if resp.IsError() {
		se := &SubmitError{StatusCode: resp.StatusCode()}
		var body struct {
			Code        string `json:"code"`
			Description string `json:"description"`
			Message     string `json:"message"`
		}
		if json.Unmarshal(resp.Body(), &body) == nil {
			se.Code = body.Code
			se.Message = body.Description
			if se.Message == "" {
				se.Message = body.Message
			}
		}
		if se.Message == "" && len(resp.Body()) > 0 {
			se.Message = string(resp.Body())
		}
		return se
	}
	s.log.Infow("consent submitted", "tenant", tenantID, "app", req.ApplicationID)
	return nil
}
