package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"bookstore/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	config.LoadEnvFiles()
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply and inspect the bookstore database migrations",
		SilenceUsage: true,
	}
	root.PersistentFlags().String(flagDSN, "", "PostgreSQL connection string (env DB_DSN)")
	root.PersistentFlags().String(flagMigrationsDir, "", "Directory holding goose SQL migrations (env MIGRATIONS_DIR)")
	bindConfig(v, root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd.Context(), v, func(db *sql.DB) error {
					if err := goose.Up(db, migrationsDir(v)); err != nil {
						return fmt.Errorf("failed to run migrations: %w", err)
					}
					cmd.Println("Migrations applied successfully")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd.Context(), v, func(db *sql.DB) error {
					if err := goose.Down(db, migrationsDir(v)); err != nil {
						return fmt.Errorf("failed to rollback migrations: %w", err)
					}
					cmd.Println("Migrations rolled back successfully")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the state of every migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd.Context(), v, func(db *sql.DB) error {
					return goose.Status(db, migrationsDir(v))
				})
			},
		},
		&cobra.Command{
			Use:   "create NAME",
			Short: "Create a new SQL migration file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := goose.Create(nil, migrationsDir(v), args[0], "sql"); err != nil {
					return fmt.Errorf("failed to create migration: %w", err)
				}
				cmd.Printf("Migration created: %s\n", args[0])
				return nil
			},
		},
	)
	return root
}

func withDB(ctx context.Context, v *viper.Viper, fn func(db *sql.DB) error) error {
	dsn := databaseDSN(v)
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database (%s): %w", config.RedactDSN(dsn), err)
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return fn(db)
}
