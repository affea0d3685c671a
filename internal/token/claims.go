// internal/token/claims.go
package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Claims are the diagnostic fields read out of an access token. Parsing is
// unverified on purpose: we issued the request, the transport was TLS, and
// the fields are only used locally (expiry decisions, logging).
type Claims struct {
	TenantID string
	AppID    string
	Scopes   []string
	Expiry   time.Time
}

// InspectClaims decodes a raw access token without signature verification.
// Used when a token response omits expires_in/expires_on.
func InspectClaims(raw string) (Claims, error) {
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "Bearer "), "bearer ")
	tok, err := jwt.ParseInsecure([]byte(raw))
	if err != nil {
		return Claims{}, fmt.Errorf("token: parse claims: %w", err)
	}
	c := Claims{Expiry: tok.Expiration()}
	if v, ok := tok.Get("tid"); ok {
		c.TenantID, _ = v.(string)
	}
	if v, ok := tok.Get("appid"); ok {
		c.AppID, _ = v.(string)
	}
	if v, ok := tok.Get("scp"); ok {
		if s, ok := v.(string); ok && s != "" {
			c.Scopes = strings.Fields(s)
		}
	}
	return c, nil
}
