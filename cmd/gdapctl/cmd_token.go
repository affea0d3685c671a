package main

import (
	"github.com/spf13/cobra"

	"gdap/internal/token"
)

// newTokenCmd refreshes an access token for a target tenant and prints its
// decoded claims. Handy for verifying cross-tenant access.
func newTokenCmd(a *app) *cobra.Command {
	var (
		tenantID string
		showRaw  bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Refresh an access token scoped to a tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			bundle, err := a.store().Load(ctx)
			if err != nil {
				return err
			}
			if tenantID == "" {
				tenantID = bundle.TenantID
			}
			r := token.NewRefresher(a.log, a.cfg.LoginBaseURL)
			grant, err := r.Refresh(ctx, tenantID, bundle, a.cfg.DefaultScope)
			if err != nil {
				return err
			}

			out := map[string]any{
				"tenantId":  tenantID,
				"tokenType": grant.TokenType,
				"expiresIn": grant.ExpiresIn,
			}
			if claims, cerr := token.InspectClaims(grant.AccessToken); cerr == nil {
				out["claims"] = map[string]any{
					"tid":    claims.TenantID,
					"appid":  claims.AppID,
					"scopes": claims.Scopes,
					"exp":    claims.Expiry,
				}
			}
			if showRaw {
				out["accessToken"] = grant.AccessToken
			}
			return a.printJSON(out)
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "target tenant (default: the bundle's own tenant)")
	cmd.Flags().BoolVar(&showRaw, "show-token", false, "include the raw access token in the output")
	return cmd
}
