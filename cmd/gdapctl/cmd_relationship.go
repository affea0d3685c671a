package main

import (
	"github.com/spf13/cobra"

	"gdap/internal/relationship"
)

func newRelationshipCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "relationship",
		Aliases: []string{"rel"},
		Short:   "Manage delegated-admin relationships",
	}
	cmd.AddCommand(
		newRelationshipCreateCmd(a),
		newRelationshipGetCmd(a),
		newRelationshipListCmd(a),
		newRelationshipRejectCmd(a),
		newRelationshipTerminateCmd(a),
		newRelationshipDeleteCmd(a),
		newRelationshipOperationsCmd(a),
	)
	return cmd
}

// relService wires the shared relationship service for one invocation.
func (a *app) relService(cmd *cobra.Command) (*relationship.Service, error) {
	sess, bundle, err := a.session(cmd.Context())
	if err != nil {
		return nil, err
	}
	return relationship.NewService(a.log, a.directory(), sess, bundle.TenantID), nil
}

func newRelationshipCreateCmd(a *app) *cobra.Command {
	var p relationship.CreateParams
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a relationship and lock it for customer approval",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.relService(cmd)
			if err != nil {
				return err
			}
			rel, err := svc.Create(cmd.Context(), p)
			if err != nil {
				return err
			}
			return a.printJSON(rel)
		},
	}
	cmd.Flags().StringVar(&p.DisplayName, "display-name", "", "relationship display name")
	cmd.Flags().StringVar(&p.Duration, "duration", "P30D", "relationship duration (ISO 8601)")
	cmd.Flags().StringVar(&p.AutoExtendDuration, "auto-extend", "", "auto-extend duration (ISO 8601)")
	cmd.Flags().StringVar(&p.CustomerTenantID, "customer", "", "customer tenant id (omit for a customer-agnostic invite)")
	cmd.Flags().StringVar(&p.CustomerDisplayName, "customer-name", "", "customer display name")
	cmd.Flags().StringSliceVar(&p.RoleIDs, "role", nil, "role definition id (repeatable)")
	_ = cmd.MarkFlagRequired("display-name")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newRelationshipGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <relationship-id>",
		Short: "Show one relationship",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.relService(cmd)
			if err != nil {
				return err
			}
			rel, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(rel)
		},
	}
}

func newRelationshipListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List relationships",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.relService(cmd)
			if err != nil {
				return err
			}
			rels, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(rels)
		},
	}
}

func newRelationshipRejectCmd(a *app) *cobra.Command {
	var reason, etag string
	cmd := &cobra.Command{
		Use:   "reject <relationship-id>",
		Short: "Reject a pending relationship",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.relService(cmd)
			if err != nil {
				return err
			}
			rel, err := svc.Reject(cmd.Context(), args[0], reason, etag)
			if err != nil {
				return err
			}
			return a.printJSON(rel)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the relationship is rejected")
	cmd.Flags().StringVar(&etag, "etag", "", "expected etag (fetched when omitted)")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func newRelationshipTerminateCmd(a *app) *cobra.Command {
	var etag string
	cmd := &cobra.Command{
		Use:   "terminate <relationship-id>",
		Short: "Terminate an active relationship and wait for it to settle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.relService(cmd)
			if err != nil {
				return err
			}
			rel, err := svc.Terminate(cmd.Context(), args[0], etag)
			if err != nil {
				return err
			}
			return a.printJSON(rel)
		},
	}
	cmd.Flags().StringVar(&etag, "etag", "", "expected etag (fetched when omitted)")
	return cmd
}

func newRelationshipDeleteCmd(a *app) *cobra.Command {
	var etag string
	cmd := &cobra.Command{
		Use:   "delete <relationship-id>",
		Short: "Delete a terminated relationship",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.relService(cmd)
			if err != nil {
				return err
			}
			if err := svc.Delete(cmd.Context(), args[0], etag); err != nil {
				return err
			}
			return a.printJSON(map[string]string{"deleted": args[0]})
		},
	}
	cmd.Flags().StringVar(&etag, "etag", "", "expected etag (fetched when omitted)")
	return cmd
}

func newRelationshipOperationsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "operations <relationship-id>",
		Short: "List asynchronous operations recorded for a relationship",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.relService(cmd)
			if err != nil {
				return err
			}
			ops, err := svc.Operations(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(ops)
		},
	}
}
