// internal/token/refresher.go
package token

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"gdap/pkg/credstore"
)

// Grant is a short-lived access token scoped to one target tenant.
type Grant struct {
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Header renders the Authorization header value.
func (g Grant) Header() string {
	typ := g.TokenType
	if typ == "" {
		typ = "Bearer"
	}
	return typ + " " + g.AccessToken
}

// RefreshError is any non-2xx answer from the token endpoint. Blind retry on
// an invalid grant is unsafe, so the refresher never retries on its own.
type RefreshError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *RefreshError) Error() string {
	msg := fmt.Sprintf("token: refresh failed with status %d", e.StatusCode)
	if e.Code != "" {
		msg += fmt.Sprintf(" error=%s", e.Code)
	}
	if e.Description != "" {
		msg += fmt.Sprintf(": %s", e.Description)
	}
	return msg
}

// Refresher exchanges the bundle's long-lived refresh token for access
// tokens. One bundle can be refreshed against many tenant IDs; that is how a
// single service credential powers cross-tenant operations.
type Refresher struct {
	http *resty.Client
	log  *zap.SugaredLogger
}

func NewRefresher(log *zap.SugaredLogger, loginBaseURL string) *Refresher {
	client := resty.New().
		SetBaseURL(strings.TrimRight(loginBaseURL, "/")).
		SetTimeout(30 * time.Second)
	return &Refresher{http: client, log: log}
}

// Refresh performs the refresh-token grant against tenantID's token endpoint.
// The bundle is read, never mutated; callers that want the new token recorded
// use Bundle.SetToken themselves.
func (r *Refresher) Refresh(ctx context.Context, tenantID string, b credstore.Bundle, scope string) (Grant, error) {
	var grant Grant
	resp, err := r.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"client_id":     b.ClientID,
			"client_secret": b.ClientSecret,
			"refresh_token": b.RefreshToken,
			"scope":         scope,
		}).
		SetResult(&grant).
		Post("/" + tenantID + "/oauth2/v2.0/token")
	if err != nil {
		return Grant{}, fmt.Errorf("token: refresh against %s: %w", tenantID, err)
	}
	if resp.IsError() {
		re := &RefreshError{StatusCode: resp.StatusCode()}
		var body struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		if json.Unmarshal(resp.Body(), &body) == nil {
			re.Code = body.Error
			re.Description = body.Description
		}
		if re.Description == "" && len(resp.Body()) > 0 {
			re.Description = string(resp.Body())
		}
		r.log.Warnw("token refresh rejected", "tenant", tenantID, "status", re.StatusCode, "error", re.Code)
		return Grant{}, re
	}
	r.log.Debugw("token refreshed", "tenant", tenantID, "expires_in", grant.ExpiresIn)
	return grant, nil
}
