package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gdap/internal/directory"
	"gdap/internal/token"
	"gdap/pkg/config"
	"gdap/pkg/credstore"
	"gdap/pkg/logger"
)

// app bundles the lazily-built shared dependencies every subcommand needs.
type app struct {
	cfg   config.Config
	log   logger.Sugared
	query string // JMESPath filter applied to JSON output
}

func (a *app) store() credstore.Store {
	return credstore.Open(a.cfg.CredentialsFile)
}

func (a *app) directory() *directory.Client {
	return directory.New(a.log, a.cfg.GraphBaseURL)
}

// session loads the credential bundle and wraps it in a per-tenant token
// cache for the lifetime of this invocation.
func (a *app) session(ctx context.Context) (*token.Session, credstore.Bundle, error) {
	bundle, err := a.store().Load(ctx)
	if err != nil {
		return nil, credstore.Bundle{}, err
	}
	if err := bundle.Validate(); err != nil {
		return nil, credstore.Bundle{}, err
	}
	r := token.NewRefresher(a.log, a.cfg.LoginBaseURL)
	return token.NewSession(a.log, r, bundle, a.cfg.DefaultScope), bundle, nil
}

func main() {
	a := &app{}

	root := &cobra.Command{
		Use:           "gdapctl",
		Short:         "Manage delegated-admin relationships and multi-tenant consent",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.cfg = config.Load()
			a.log = logger.New(a.cfg.Env)
		},
	}
	root.PersistentFlags().StringVar(&a.query, "query", "", "JMESPath expression applied to the JSON output")

	root.AddCommand(
		newLoginCmd(a),
		newTokenCmd(a),
		newRelationshipCmd(a),
		newAssignmentCmd(a),
		newConsentCmd(a),
		newRolesCmd(a),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
