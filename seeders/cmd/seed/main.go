package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"equiptrak/internal/authz"
	"equiptrak/pkg/config"
	"equiptrak/pkg/database/migrations"
	"equiptrak/pkg/database/postgresql"
	applogger "equiptrak/pkg/logger"
	"equiptrak/pkg/service"
	"equiptrak/seeders"
)

func main() {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.File)
	defer func() { _ = logger.Sync() }()

	root := &cobra.Command{
		Use:           "seed",
		Short:         "EquipTrak database and operations tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		migrateCommand(cfg, logger),
		seedCommand(cfg, logger),
		tokenCommand(cfg),
	)

	if err := root.Execute(); err != nil {
		logger.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

// withDB opens the pool for the duration of fn.
func withDB(cmd *cobra.Command, cfg *config.Config, logger *zap.Logger, fn func(ctx context.Context, db *pgxpool.Pool) error) error {
	ctx := cmd.Context()
	db, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(ctx, db)
}

func migrateCommand(cfg *config.Config, logger *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect schema migrations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd, cfg, logger, migrations.Up)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd, cfg, logger, migrations.Down)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the migration status",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd, cfg, logger, migrations.Status)
			},
		},
	)
	return cmd
}

func seedCommand(cfg *config.Config, logger *zap.Logger) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "dictionaries",
		Short: "Seed equipment types and a sample engineer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd, cfg, logger, func(ctx context.Context, db *pgxpool.Pool) error {
				if migrate {
					if err := migrations.Up(ctx, db); err != nil {
						return err
					}
				}
				return seeders.Seed(ctx, db, logger)
			})
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply migrations first")
	return cmd
}

// tokenCommand mints a bearer token for local development. Production tokens
// come from the identity provider.
func tokenCommand(cfg *config.Config) *cobra.Command {
	var (
		role      string
		email     string
		companyID string
		ttl       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Print a signed development token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := authz.ParseRole(role)
			if err != nil {
				return err
			}

			var company *uint64
			if companyID != "" {
				id, err := strconv.ParseUint(companyID, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid --company-id: %w", err)
				}
				company = &id
			}
			if parsed == authz.RoleCustomer && company == nil {
				return fmt.Errorf("customer tokens need --company-id")
			}

			token, err := service.NewJWTService(cfg.JWT.SecretKey, ttl).GenerateToken(args[0], email, string(parsed), company)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", string(authz.RoleAdmin), "admin or customer")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVar(&companyID, "company-id", "", "company claim for customer tokens")
	cmd.Flags().DurationVar(&ttl, "ttl", cfg.JWT.AccessTokenTTL, "token lifetime")
	return cmd
}
