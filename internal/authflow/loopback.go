// internal/authflow/loopback.go
package authflow

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gdap/pkg/retry"
)

// Callback codes shorter than this are noise (favicon probes, health checks),
// not authorization codes.
const minAuthCodeLen = 10

// pollSlice is how often the wait loop wakes up to check for a callback or
// the deadline.
const pollSlice = time.Second

const ackHTML = `<!doctype html><html><body><h3>%s</h3><p>You can close this window.</p></body></html>`

// Params carries everything one authorization needs. No process-wide state:
// concurrent flows on different ports are independent.
type Params struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scope        string
	Timeout      time.Duration
}

// TokenResponse is the token endpoint's answer, passed through unmodified.
type TokenResponse struct {
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
}

type callback struct {
	code    string
	errCode string
	errDesc string
}

// Exchanger drives the loopback authorization-code flow.
type Exchanger struct {
	log   *zap.SugaredLogger
	http  *resty.Client
	open  func(url string) error
	binds retry.Policy
}

func NewExchanger(log *zap.SugaredLogger, loginBaseURL string) *Exchanger {
	return &Exchanger{
		log:  log,
		http: resty.New().SetBaseURL(strings.TrimRight(loginBaseURL, "/")).SetTimeout(30 * time.Second),
		open: openBrowser,
		// Port may linger in TIME_WAIT from a previous run.
		binds: retry.Policy{MaxAttempts: 3, Interval: 2 * time.Second},
	}
}

// Authorize runs one interactive authorization: bind the loopback listener,
// send the user to the consent prompt, wait for the redirect, exchange the
// code. The listener is released on every exit path.
func (e *Exchanger) Authorize(ctx context.Context, p Params) (TokenResponse, error) {
	port, err := redirectPort(p.RedirectURI)
	if err != nil {
		return TokenResponse{}, err
	}

	var ln net.Listener
	if err := e.binds.Do(ctx, func() error {
		var lerr error
		ln, lerr = net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		return lerr
	}); err != nil {
		return TokenResponse{}, &BindError{Port: port, Err: err}
	}

	got := make(chan callback, 1)
	state := uuid.NewString()

	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		cb := callback{
			code:    q.Get("code"),
			errCode: q.Get("error"),
			errDesc: q.Get("error_description"),
		}
		switch {
		case cb.errCode != "":
			writeAck(w, "Authorization failed.")
		case len(cb.code) >= minAuthCodeLen && (q.Get("state") == "" || q.Get("state") == state):
			writeAck(w, "Authorization received.")
		default:
			// Not our callback; acknowledge and keep waiting.
			writeAck(w, "Waiting for authorization…")
			return
		}
		select {
		case got <- cb:
		default:
		}
	})

	srv := &http.Server{Handler: r}
	go func() {
		if serr := srv.Serve(ln); serr != nil && serr != http.ErrServerClosed {
			e.log.Debugw("loopback listener stopped", "err", serr)
		}
	}()
	defer srv.Close()

	authURL := e.authorizeURL(p, state)
	e.log.Infow("opening browser for consent", "tenant", p.TenantID, "port", port)
	if oerr := e.open(authURL); oerr != nil {
		// No feedback channel anyway; tell the user where to go by hand.
		e.log.Warnw("browser launch failed, open the URL manually", "url", authURL, "err", oerr)
	}

	cb, err := e.wait(ctx, got, p.Timeout)
	if err != nil {
		return TokenResponse{}, err
	}
	if cb.errCode != "" {
		return TokenResponse{}, &DeniedError{Code: cb.errCode, Description: cb.errDesc}
	}
	return e.exchange(ctx, p, cb.code)
}

// wait polls in one-second slices so external cancellation and the timeout
// are both honored promptly.
func (e *Exchanger) wait(ctx context.Context, got <-chan callback, timeout time.Duration) (callback, error) {
	deadline := time.Now().Add(timeout)
	for {
		select {
		case cb := <-got:
			return cb, nil
		case <-ctx.Done():
			return callback{}, ctx.Err()
		case <-time.After(pollSlice):
			if time.Now().After(deadline) {
				return callback{}, &TimeoutError{Timeout: timeout}
			}
		}
	}
}

func (e *Exchanger) exchange(ctx context.Context, p Params, code string) (TokenResponse, error) {
	var tok TokenResponse
	resp, err := e.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "authorization_code",
			"client_id":     p.ClientID,
			"client_secret": p.ClientSecret,
			"redirect_uri":  p.RedirectURI,
			"scope":         p.Scope,
			"code":          code,
		}).
		SetResult(&tok).
		Post("/" + p.TenantID + "/oauth2/v2.0/token")
	if err != nil {
		return TokenResponse{}, fmt.Errorf("authflow: code exchange: %w", err)
	}
	if resp.IsError() {
		var body struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		_ = json.Unmarshal(resp.Body(), &body)
		return TokenResponse{}, &DeniedError{Code: body.Error, Description: body.Description}
	}
	return tok, nil
}

func (e *Exchanger) authorizeURL(p Params, state string) string {
	q := url.Values{}
	q.Set("client_id", p.ClientID)
	q.Set("response_type", "code")
	q.Set("response_mode", "query")
	q.Set("redirect_uri", p.RedirectURI)
	q.Set("scope", p.Scope)
	q.Set("state", state)
	return fmt.Sprintf("%s/%s/oauth2/v2.0/authorize?%s", e.http.BaseURL, p.TenantID, q.Encode())
}

func redirectPort(redirectURI string) (int, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return 0, fmt.Errorf("authflow: bad redirect uri %q: %w", redirectURI, err)
	}
	port := u.Port()
	if port == "" {
		return 0, fmt.Errorf("authflow: redirect uri %q must carry an explicit port", redirectURI)
	}
	var n int
	if _, err := fmt.Sscanf(port, "%d", &n); err != nil {
		return 0, fmt.Errorf("authflow: bad redirect port %q: %w", port, err)
	}
	return n, nil
}

func writeAck(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, ackHTML, msg)
}
