// Package seeders fills the reference tables a fresh database needs.
package seeders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"equiptrak/internal/entities"
)

// SampleEngineer is created by Seed so that records can be issued on a new
// install.
const SampleEngineer = "Workshop Engineer"

// Seed runs every seeder in order. Each seeder is idempotent.
func Seed(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) error {
	if err := seedEquipmentTypes(ctx, db, logger); err != nil {
		return fmt.Errorf("equipment types: %w", err)
	}
	if err := seedEngineer(ctx, db, logger, SampleEngineer); err != nil {
		return fmt.Errorf("engineers: %w", err)
	}
	return nil
}

// seedEquipmentTypes keeps the names of the seeded types in line with the
// certificate labels.
func seedEquipmentTypes(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO equipment_types (code, name) VALUES ($1, $2)
			  ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, updated_at = now()`

	for _, t := range entities.RecordTypes() {
		if _, err := tx.Exec(ctx, query, string(t), t.DisplayName()); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	logger.Info("equipment types seeded", zap.Int("count", len(entities.RecordTypes())))
	return nil
}

func seedEngineer(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger, name string) error {
	tag, err := db.Exec(ctx,
		`INSERT INTO engineers (name) SELECT $1::text WHERE NOT EXISTS (SELECT 1 FROM engineers WHERE name = $1::text)`,
		name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		logger.Info("engineer already present", zap.String("name", name))
		return nil
	}
	logger.Info("engineer seeded", zap.String("name", name))
	return nil
}
