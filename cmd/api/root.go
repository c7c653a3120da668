package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jwalitptl/shadowing-api/config"
	"github.com/jwalitptl/shadowing-api/internal/repository/sqlstore"
	"github.com/jwalitptl/shadowing-api/pkg/logger"
)

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	v   *viper.Viper
	cfg *config.Config
}

func newRootCommand() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:           "shadowing",
		Short:         "Dental shadowing clinic directory and experience tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a config file (defaults to ./config.yml or ./config/config.yml)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("db-driver", "", "Database driver: sqlite3 or postgres")
	flags.String("db-path", "", "SQLite database file")
	flags.Int("port", 0, "HTTP port")

	bindings := map[string]string{
		"config":          "config",
		"log.level":       "log-level",
		"database.driver": "db-driver",
		"database.path":   "db-path",
		"server.port":     "port",
	}
	for key, flag := range bindings {
		if err := a.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}

	rootCmd.AddCommand(
		newServeCommand(a),
		newMigrateCommand(a),
		newSeedCommand(a),
	)
	return rootCmd
}

// initialize loads configuration and installs the global logger.
func (a *app) initialize() error {
	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger.Setup(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	return nil
}

// openDatabase connects and applies pending migrations.
func (a *app) openDatabase(ctx context.Context) (*sqlx.DB, error) {
	db, err := sqlstore.NewDB(a.cfg.Database)
	if err != nil {
		return nil, err
	}

	version, err := sqlstore.Migrate(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Info().Int("schema_version", version).Msg("database ready")
	return db, nil
}
