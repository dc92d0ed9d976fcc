package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"equiptrak/internal/entities"
	db "equiptrak/internal/infrastructure/bd"
	apperrors "equiptrak/pkg/errors"
	"equiptrak/pkg/types"
)

const (
	engineerTable  = "engineers"
	engineerFields = "id, name, created_at, updated_at"
)

var allowedEngineerColumns = map[string]string{
	"id":   "id",
	"name": "name",
}

type EngineerRepositoryInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]*entities.Engineer, uint64, error)
	FindByID(ctx context.Context, id uint64) (*entities.Engineer, error)
	FindByName(ctx context.Context, name string) (*entities.Engineer, error)
	Create(ctx context.Context, e *entities.Engineer) (uint64, error)
	Update(ctx context.Context, e *entities.Engineer) error
	Delete(ctx context.Context, id uint64) error
}

type engineerRepository struct {
	storage *pgxpool.Pool
}

func NewEngineerRepository(storage *pgxpool.Pool) EngineerRepositoryInterface {
	return &engineerRepository{storage: storage}
}

func scanEngineer(row pgx.Row) (*entities.Engineer, error) {
	var e entities.Engineer
	if err := row.Scan(&e.ID, &e.Name, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (r *engineerRepository) GetAll(ctx context.Context, filter types.Filter) ([]*entities.Engineer, uint64, error) {
	base := psql.Select().From(engineerTable)
	if filter.Search != "" {
		base = base.Where(sq.ILike{"name": "%" + filter.Search + "%"})
	}

	countQuery, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count engineers: %w", err)
	}
	if total == 0 {
		return []*entities.Engineer{}, 0, nil
	}

	listFilter := filter
	if len(listFilter.Sort) == 0 {
		listFilter.Sort = map[string]string{"name": "asc"}
	}
	query, args, err := db.ApplyListParams(base.Columns(engineerFields), listFilter, allowedEngineerColumns).ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list engineers: %w", err)
	}
	defer rows.Close()

	engineers := make([]*entities.Engineer, 0)
	for rows.Next() {
		e, err := scanEngineer(rows)
		if err != nil {
			return nil, 0, err
		}
		engineers = append(engineers, e)
	}
	return engineers, total, rows.Err()
}

func (r *engineerRepository) FindByID(ctx context.Context, id uint64) (*entities.Engineer, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", engineerFields, engineerTable)
	return scanEngineer(r.storage.QueryRow(ctx, query, id))
}

func (r *engineerRepository) FindByName(ctx context.Context, name string) (*entities.Engineer, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE name = $1 ORDER BY id LIMIT 1", engineerFields, engineerTable)
	return scanEngineer(r.storage.QueryRow(ctx, query, name))
}

func (r *engineerRepository) Create(ctx context.Context, e *entities.Engineer) (uint64, error) {
	var id uint64
	query := fmt.Sprintf("INSERT INTO %s (name) VALUES ($1) RETURNING id", engineerTable)
	if err := r.storage.QueryRow(ctx, query, e.Name).Scan(&id); err != nil {
		return 0, writeError(err)
	}
	return id, nil
}

func (r *engineerRepository) Update(ctx context.Context, e *entities.Engineer) error {
	query := fmt.Sprintf("UPDATE %s SET name = $1, updated_at = NOW() WHERE id = $2", engineerTable)
	result, err := r.storage.Exec(ctx, query, e.Name, e.ID)
	if err != nil {
		return writeError(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete fails with a PersistenceError while records reference the engineer.
func (r *engineerRepository) Delete(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", engineerTable), id)
	if err != nil {
		return writeError(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
