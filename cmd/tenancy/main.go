package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/orris-inc/tenancy/internal/interfaces/cli/migrate"
	"github.com/orris-inc/tenancy/internal/interfaces/cli/seed"
	"github.com/orris-inc/tenancy/internal/interfaces/cli/server"
	"github.com/orris-inc/tenancy/internal/interfaces/cli/token"
	"github.com/orris-inc/tenancy/internal/interfaces/cli/worker"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tenancy",
		Short: "Tenancy - tenant subscription and entitlement service",
		Long:  `Tenancy manages tenant subscriptions, plan changes and employee entitlements, with an HTTP API, a background worker and administrative commands.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		worker.NewCommand(),
		migrate.NewCommand(),
		seed.NewCommand(),
		token.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
