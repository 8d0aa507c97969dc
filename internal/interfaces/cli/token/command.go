// Package token issues API tokens for operators and local testing.
package token

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orris-inc/tenancy/internal/infrastructure/auth"
	"github.com/orris-inc/tenancy/internal/interfaces/cli/bootstrap"
	"github.com/orris-inc/tenancy/internal/shared/authorization"
	sharedConfig "github.com/orris-inc/tenancy/internal/shared/config"
)

var (
	opts     bootstrap.Options
	userID   uint
	role     string
	tenantID uint
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed API token",
		Long:  `Sign a bearer token with the configured JWT secret. Tenant tokens must name the tenant they belong to.`,
		RunE:  run,
	}

	opts.BindFlags(cmd)
	cmd.Flags().UintVar(&userID, "user-id", 0, "Subject user ID (required)")
	cmd.Flags().StringVar(&role, "role", string(authorization.RoleTenant), "Role: tenant, seller, admin or supadmin")
	cmd.Flags().UintVar(&tenantID, "tenant-id", 0, "Tenant the user belongs to (tenant role only)")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, _, err := bootstrap.Setup(&opts)
	if err != nil {
		return err
	}

	signed, err := issue(cfg.Auth.JWT, userID, role, tenantID)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), signed)
	return nil
}

func issue(cfg sharedConfig.JWTConfig, userID uint, roleName string, tenantID uint) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("auth.jwt.secret is not configured")
	}
	r, err := authorization.ParseUserRole(roleName)
	if err != nil {
		return "", err
	}
	if r == authorization.RoleTenant && tenantID == 0 {
		return "", fmt.Errorf("--tenant-id is required for tenant tokens")
	}
	if r != authorization.RoleTenant {
		tenantID = 0
	}
	return auth.NewJWTService(cfg.Secret, cfg.Issuer, cfg.ExpMinutes).Generate(userID, r, tenantID)
}
