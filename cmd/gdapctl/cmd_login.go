package main

import (
	"github.com/spf13/cobra"

	"gdap/internal/authflow"
	"gdap/pkg/credstore"
)

// newLoginCmd bootstraps (or rotates) the service credential through the
// interactive loopback flow and persists the resulting bundle.
func newLoginCmd(a *app) *cobra.Command {
	var (
		tenantID     string
		clientID     string
		clientSecret string
		scope        string
		redirectURI  string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize the service identity interactively and store its credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if scope == "" {
				scope = a.cfg.DefaultScope
			}
			if redirectURI == "" {
				redirectURI = a.cfg.RedirectURI
			}

			ex := authflow.NewExchanger(a.log, a.cfg.LoginBaseURL)
			tok, err := ex.Authorize(ctx, authflow.Params{
				TenantID:     tenantID,
				ClientID:     clientID,
				ClientSecret: clientSecret,
				RedirectURI:  redirectURI,
				Scope:        scope,
				Timeout:      a.cfg.AuthTimeout,
			})
			if err != nil {
				return err
			}

			bundle := credstore.Bundle{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				TenantID:     tenantID,
				RefreshToken: tok.RefreshToken,
			}
			bundle.SetToken(tok.AccessToken, tok.ExpiresIn)
			if err := a.store().Save(ctx, bundle); err != nil {
				return err
			}
			a.log.Infow("credential stored", "file", a.cfg.CredentialsFile, "tenant", tenantID)
			return a.printJSON(map[string]any{
				"tenantId":  tenantID,
				"clientId":  clientID,
				"expiresIn": tok.ExpiresIn,
				"scope":     tok.Scope,
			})
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant to authorize against")
	cmd.Flags().StringVar(&clientID, "client-id", "", "application (client) id")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "client secret")
	cmd.Flags().StringVar(&scope, "scope", "", "requested scope (default from config)")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "loopback redirect uri (default from config)")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("client-id")
	_ = cmd.MarkFlagRequired("client-secret")
	return cmd
}
