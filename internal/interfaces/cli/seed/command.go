// Package seed loads the plan catalog into the database.
package seed

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orris-inc/tenancy/internal/infrastructure/database"
	"github.com/orris-inc/tenancy/internal/infrastructure/persistence/seeds"
	"github.com/orris-inc/tenancy/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/orris-inc/tenancy/internal/interfaces/http"
)

var (
	opts        bootstrap.Options
	catalogPath string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed reference data",
	}
	opts.BindFlags(cmd)

	plans := &cobra.Command{
		Use:   "plans",
		Short: "Create or update plans from the catalog file",
		Long:  `Upsert every plan in the catalog by slug. Without --file the configured catalog is used, falling back to the built-in one.`,
		RunE:  runPlans,
	}
	plans.Flags().StringVarP(&catalogPath, "file", "f", "", "Plan catalog YAML (default: subscription.plan_catalog)")

	cmd.AddCommand(plans)
	return cmd
}

func runPlans(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap.Setup(&opts)
	if err != nil {
		return err
	}

	path := catalogPath
	if path == "" {
		path = cfg.Subscription.PlanCatalog
	}
	defs, err := seeds.LoadPlanCatalog(path, log)
	if err != nil {
		return err
	}

	db, err := bootstrap.OpenDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close()

	container, err := httpRouter.NewContainer(cfg, db, log)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	defer container.Close()

	result, err := container.Service.SyncPlans(cmd.Context(), defs)
	if err != nil {
		return fmt.Errorf("plan sync failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "plans synced: %d created, %d updated\n", result.Created, result.Updated)
	return nil
}
