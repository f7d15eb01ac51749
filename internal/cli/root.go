// Package cli implements the libctl administrative command line tool.
// It talks to the database directly and is meant to be run on the host
// where the server keeps its data, not against the HTTP API.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/avolkau/librarium/internal/auth"
	"github.com/avolkau/librarium/internal/config"
	"github.com/avolkau/librarium/internal/database"
	"github.com/avolkau/librarium/internal/database/books"
	"github.com/avolkau/librarium/internal/database/users"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "libctl",
	Short: "Administrative tool for the librarium service",
	Long: `libctl manages librarium accounts and catalog data directly in the
database. Run it on the machine that hosts the server, pointing at the
same database file the server uses.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the database file (defaults to DATABASE_PATH or ./librarium.db)")
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(seedCmd)
}

// Execute runs the root command.
func Execute() error {
	_ = godotenv.Load()
	return rootCmd.Execute()
}

// openStores connects to the database and builds the repositories the
// commands need. The caller must Close the returned database.
func openStores() (*database.Database, *users.Repository, *books.Repository, *auth.Service, error) {
	cfg := config.NewConfig()
	path := cfg.Database.Path
	if dbPath != "" {
		path = dbPath
	}

	db, err := database.NewDatabase(path)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	userRepo := users.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)
	authService := auth.NewService(userRepo, cfg.Auth)
	return db, userRepo, bookRepo, authService, nil
}
