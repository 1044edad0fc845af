package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rpattn/klinik/internal/config"
	"github.com/rpattn/klinik/internal/db"
	"github.com/rpattn/klinik/internal/importer"
	"github.com/rpattn/klinik/internal/logging"
	"github.com/rpattn/klinik/internal/repository"
	"github.com/rpattn/klinik/internal/repository/mysql"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "klinik",
		Short:         "Clinic master data import service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing config.yaml")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(templateCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and the root logger shared by every command.
func bootstrap() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logging.Setup(cfg.Log.Level, cfg.Log.Format), nil
}

// openStore connects to the configured backend. The returned func closes it.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	switch cfg.Database.Driver {
	case db.DriverMySQL:
		conn, err := db.NewMySQL(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return mysql.NewStore(conn), func() { _ = conn.Close() }, nil
	default:
		conn, err := db.NewConnection(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresStore(conn), conn.Close, nil
	}
}

func newImportService(store repository.Store, cfg *config.Config) *importer.Service {
	return importer.NewService(store, importer.DefaultRegistry(), importer.Config{
		MaxRows:  cfg.Import.MaxRows,
		ErrorCap: cfg.Import.ErrorCap,
	})
}
