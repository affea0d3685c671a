package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gdap/internal/assignment"
)

func newAssignmentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assignment",
		Aliases: []string{"assign"},
		Short:   "Manage role-to-group assignments on active relationships",
	}
	cmd.AddCommand(
		newAssignmentCreateCmd(a),
		newAssignmentUpdateCmd(a),
		newAssignmentRemoveCmd(a),
		newAssignmentListCmd(a),
		newAssignmentTemplateCmd(a),
	)
	return cmd
}

func (a *app) assignmentManager(cmd *cobra.Command) (*assignment.Manager, error) {
	sess, bundle, err := a.session(cmd.Context())
	if err != nil {
		return nil, err
	}
	return assignment.NewManager(a.log, a.directory(), sess, bundle.TenantID), nil
}

func newAssignmentCreateCmd(a *app) *cobra.Command {
	var (
		relationshipID string
		groupID        string
		roleIDs        []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Bind a security group to roles on a relationship",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.assignmentManager(cmd)
			if err != nil {
				return err
			}
			res, err := mgr.Create(cmd.Context(), relationshipID, groupID, roleIDs)
			if err != nil {
				return err
			}
			return a.printJSON(map[string]any{
				"outcome":    res.Outcome,
				"assignment": res.Assignment,
			})
		},
	}
	cmd.Flags().StringVar(&relationshipID, "relationship", "", "relationship id")
	cmd.Flags().StringVar(&groupID, "group", "", "security group id")
	cmd.Flags().StringSliceVar(&roleIDs, "role", nil, "role definition id (repeatable)")
	_ = cmd.MarkFlagRequired("relationship")
	_ = cmd.MarkFlagRequired("group")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newAssignmentUpdateCmd(a *app) *cobra.Command {
	var (
		relationshipID string
		assignmentID   string
		roleIDs        []string
		etag           string
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Replace the role set of an assignment",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.assignmentManager(cmd)
			if err != nil {
				return err
			}
			updated, err := mgr.Update(cmd.Context(), relationshipID, assignmentID, roleIDs, etag)
			if err != nil {
				return err
			}
			return a.printJSON(updated)
		},
	}
	cmd.Flags().StringVar(&relationshipID, "relationship", "", "relationship id")
	cmd.Flags().StringVar(&assignmentID, "id", "", "assignment id")
	cmd.Flags().StringSliceVar(&roleIDs, "role", nil, "role definition id (repeatable)")
	cmd.Flags().StringVar(&etag, "etag", "", "expected etag (fetched when omitted)")
	_ = cmd.MarkFlagRequired("relationship")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newAssignmentRemoveCmd(a *app) *cobra.Command {
	var (
		relationshipID string
		assignmentID   string
		etag           string
	)
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Detach an assignment",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.assignmentManager(cmd)
			if err != nil {
				return err
			}
			if err := mgr.Remove(cmd.Context(), relationshipID, assignmentID, etag); err != nil {
				return err
			}
			return a.printJSON(map[string]string{"removed": assignmentID})
		},
	}
	cmd.Flags().StringVar(&relationshipID, "relationship", "", "relationship id")
	cmd.Flags().StringVar(&assignmentID, "id", "", "assignment id")
	cmd.Flags().StringVar(&etag, "etag", "", "expected etag (fetched when omitted)")
	_ = cmd.MarkFlagRequired("relationship")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newAssignmentListCmd(a *app) *cobra.Command {
	var relationshipID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assignments on a relationship",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.assignmentManager(cmd)
			if err != nil {
				return err
			}
			all, err := mgr.List(cmd.Context(), relationshipID)
			if err != nil {
				return err
			}
			return a.printJSON(all)
		},
	}
	cmd.Flags().StringVar(&relationshipID, "relationship", "", "relationship id")
	_ = cmd.MarkFlagRequired("relationship")
	return cmd
}

func newAssignmentTemplateCmd(a *app) *cobra.Command {
	var (
		relationshipID string
		name           string
		file           string
	)
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Apply a named (group, roles) template to a relationship",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = a.cfg.TemplatesFile
			}
			templates, err := assignment.LoadTemplates(file)
			if err != nil {
				return err
			}
			tpl, ok := templates[name]
			if !ok {
				return fmt.Errorf("template %q not found in %s", name, file)
			}
			mgr, err := a.assignmentManager(cmd)
			if err != nil {
				return err
			}
			outcomes, err := mgr.ApplyTemplate(cmd.Context(), relationshipID, tpl)
			if err != nil {
				return err
			}
			return a.printJSON(outcomes)
		},
	}
	cmd.Flags().StringVar(&relationshipID, "relationship", "", "relationship id")
	cmd.Flags().StringVar(&name, "name", "", "template name")
	cmd.Flags().StringVar(&file, "file", "", "templates file (default from config)")
	_ = cmd.MarkFlagRequired("relationship")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
