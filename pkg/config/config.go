// pkg/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env string

	// Identity platform endpoints
	LoginBaseURL   string // authorize + token endpoints live under <login>/<tenant>/oauth2/v2.0
	GraphBaseURL   string // directory REST surface
	PartnerBaseURL string // consent submission surface (empty -> consent submit uses GraphBaseURL)

	// Loopback authorization flow
	RedirectURI  string
	DefaultScope string
	AuthTimeout  time.Duration

	// Bulk consent orchestration
	ConsentWorkers int

	// Local artifacts
	CredentialsFile string
	TemplatesFile   string
	PermissionsFile string
}

func Load() Config {
	_ = godotenv.Load()
	return Config{
		Env:             env("GDAP_ENV", "dev"),
		LoginBaseURL:    env("GDAP_LOGIN_BASE_URL", "https://login.microsoftonline.com"),
		GraphBaseURL:    env("GDAP_GRAPH_BASE_URL", "https://graph.microsoft.com/v1.0"),
		PartnerBaseURL:  env("GDAP_PARTNER_BASE_URL", ""),
		RedirectURI:     env("GDAP_REDIRECT_URI", "http://localhost:8400"),
		DefaultScope:    env("GDAP_DEFAULT_SCOPE", "https://graph.microsoft.com/.default offline_access"),
		AuthTimeout:     envDur("GDAP_AUTH_TIMEOUT_SEC", 300) * time.Second,
		ConsentWorkers:  envInt("GDAP_CONSENT_WORKERS", 1),
		CredentialsFile: env("GDAP_CREDENTIALS_FILE", ".gdap-credentials.json"),
		TemplatesFile:   env("GDAP_TEMPLATES_FILE", "templates.yaml"),
		PermissionsFile: env("GDAP_PERMISSIONS_FILE", "permissions.yaml"),
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return time.Duration(i)
		}
	}
	return time.Duration(def)
}
