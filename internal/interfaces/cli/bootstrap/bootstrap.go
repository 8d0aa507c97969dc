// Package bootstrap holds the start-up steps shared by every command.
package bootstrap

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/orris-inc/tenancy/internal/infrastructure/config"
	"github.com/orris-inc/tenancy/internal/infrastructure/database"
	"github.com/orris-inc/tenancy/internal/shared/biztime"
	"github.com/orris-inc/tenancy/internal/shared/constants"
	"github.com/orris-inc/tenancy/internal/shared/logger"
)

// Options are the persistent flags every command accepts.
type Options struct {
	Env        string
	ConfigPath string
}

// BindFlags registers --env and --config on cmd.
func (o *Options) BindFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&o.Env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&o.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
}

// Environment resolves the effective environment; ENV wins over the flag.
func (o *Options) Environment() string {
	if envVar := os.Getenv("ENV"); envVar != "" {
		return envVar
	}
	return o.Env
}

// Setup loads configuration, then initializes logging and the business timezone.
func Setup(opts *Options) (*config.Config, logger.Interface, error) {
	env := opts.Environment()

	cfg, err := config.Load(env, opts.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, env != constants.EnvProduction); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	return cfg, logger.NewLogger(), nil
}

// OpenDatabase initializes the shared connection. Callers defer database.Close.
func OpenDatabase(cfg *config.Config, log logger.Interface) (*gorm.DB, error) {
	db, err := database.Init(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Infow("database connected", "driver", cfg.Database.Driver)
	return db, nil
}
