package main

import (
	"github.com/spf13/cobra"
)

func newRolesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Inspect the directory role catalog",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List directory role templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, bundle, err := a.session(ctx)
			if err != nil {
				return err
			}
			auth, err := sess.Authorization(ctx, bundle.TenantID)
			if err != nil {
				return err
			}
			templates, err := a.directory().ListRoleTemplates(ctx, auth)
			if err != nil {
				return err
			}
			return a.printJSON(templates)
		},
	})
	return cmd
}
