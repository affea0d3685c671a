package main

import (
	"errors"

	"github.com/spf13/cobra"

	"gdap/internal/consent"
	"gdap/internal/token"
	"gdap/pkg/tenants"
)

func newConsentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consent",
		Short: "Bulk consent orchestration across customer tenants",
	}
	cmd.AddCommand(newConsentApplyCmd(a))
	return cmd
}

func newConsentApplyCmd(a *app) *cobra.Command {
	var (
		tenantsFile     string
		all             bool
		updateExisting  bool
		permissionsFile string
	)
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the configured consent to a set of customer tenants",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if permissionsFile == "" {
				permissionsFile = a.cfg.PermissionsFile
			}
			perms, err := consent.LoadPermissions(permissionsFile)
			if err != nil {
				return err
			}

			bundle, err := a.store().Load(ctx)
			if err != nil {
				return err
			}
			refresher := token.NewRefresher(a.log, a.cfg.LoginBaseURL)
			dir := a.directory()

			var refs []tenants.TenantReference
			switch {
			case all:
				sess := token.NewSession(a.log, refresher, bundle, a.cfg.DefaultScope)
				provider := tenants.NewDirectoryProvider(a.log, dir.Customers(sess, bundle.TenantID))
				if refs, err = provider.List(ctx); err != nil {
					return err
				}
			case tenantsFile != "":
				if refs, err = tenants.LoadFile(tenantsFile); err != nil {
					return err
				}
			default:
				// GDAP_TENANT_SEED_JSON, dev convenience.
				if refs, err = tenants.NewMemoryProviderFromEnv(a.log).List(ctx); err != nil {
					return err
				}
			}
			if len(refs) == 0 {
				return errors.New("no tenants: pass --tenants-file, --all, or set GDAP_TENANT_SEED_JSON")
			}

			partnerBase := a.cfg.PartnerBaseURL
			if partnerBase == "" {
				partnerBase = a.cfg.GraphBaseURL
			}
			orch := consent.NewOrchestrator(
				a.log,
				dir,
				refresher,
				consent.NewSubmitter(a.log, partnerBase),
				perms,
				a.cfg.DefaultScope,
				a.cfg.ConsentWorkers,
			)
			outcomes, err := orch.ApplyConsent(ctx, refs, bundle, updateExisting)
			if err != nil {
				return err
			}
			return a.printJSON(outcomes)
		},
	}
	cmd.Flags().StringVar(&tenantsFile, "tenants-file", "", "JSON file with [{tenantId, displayName}] entries")
	cmd.Flags().BoolVar(&all, "all", false, "process every contracted customer tenant")
	cmd.Flags().BoolVar(&updateExisting, "update-existing", false, "replace an existing consent instead of skipping it")
	cmd.Flags().StringVar(&permissionsFile, "permissions", "", "permissions file (default from config)")
	return cmd
}
