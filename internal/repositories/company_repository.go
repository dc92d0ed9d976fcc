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
	companyTable  = "companies"
	companyFields = "id, name, address, city, county, postcode, country, phone, email, created_at, updated_at"
)

var allowedCompanyColumns = map[string]string{
	"id":         "id",
	"name":       "name",
	"city":       "city",
	"county":     "county",
	"postcode":   "postcode",
	"created_at": "created_at",
}

type CompanyRepositoryInterface interface {
	GetAll(ctx context.Context, filter types.Filter, scope *uint64) ([]*entities.Company, uint64, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Company, error)
	Create(ctx context.Context, tx pgx.Tx, c *entities.Company) (uint64, error)
	Update(ctx context.Context, tx pgx.Tx, c *entities.Company) error
	Delete(ctx context.Context, id uint64) error
}

type companyRepository struct {
	storage *pgxpool.Pool
}

func NewCompanyRepository(storage *pgxpool.Pool) CompanyRepositoryInterface {
	return &companyRepository{storage: storage}
}

func (r *companyRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func scanCompany(row pgx.Row) (*entities.Company, error) {
	var c entities.Company
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.City, &c.County, &c.Postcode,
		&c.Country, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// GetAll lists companies. A non-nil scope restricts the result to one company.
func (r *companyRepository) GetAll(ctx context.Context, filter types.Filter, scope *uint64) ([]*entities.Company, uint64, error) {
	base := psql.Select().From(companyTable)
	if scope != nil {
		base = base.Where(sq.Eq{"id": *scope})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		base = base.Where(sq.Or{
			sq.ILike{"name": pattern},
			sq.ILike{"city": pattern},
			sq.ILike{"postcode": pattern},
		})
	}

	countQuery, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build companies count: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count companies: %w", err)
	}
	if total == 0 {
		return []*entities.Company{}, 0, nil
	}

	listFilter := filter
	listFilter.Filter = nil
	if len(listFilter.Sort) == 0 {
		listFilter.Sort = map[string]string{"name": "asc"}
	}
	query, args, err := db.ApplyListParams(base.Columns(companyFields), listFilter, allowedCompanyColumns).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build companies query: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	companies := make([]*entities.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, err
		}
		companies = append(companies, c)
	}
	return companies, total, rows.Err()
}

func (r *companyRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Company, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", companyFields, companyTable)
	return scanCompany(r.getQuerier(tx).QueryRow(ctx, query, id))
}

func (r *companyRepository) Create(ctx context.Context, tx pgx.Tx, c *entities.Company) (uint64, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, address, city, county, postcode, country, phone, email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`, companyTable)

	var id uint64
	err := r.getQuerier(tx).QueryRow(ctx, query,
		c.Name, c.Address, c.City, c.County, c.Postcode, c.Country, c.Phone, c.Email,
	).Scan(&id)
	if err != nil {
		return 0, writeError(err)
	}
	return id, nil
}

func (r *companyRepository) Update(ctx context.Context, tx pgx.Tx, c *entities.Company) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, address = $2, city = $3, county = $4, postcode = $5,
		    country = $6, phone = $7, email = $8, updated_at = NOW()
		WHERE id = $9`, companyTable)

	result, err := r.getQuerier(tx).Exec(ctx, query,
		c.Name, c.Address, c.City, c.County, c.Postcode, c.Country, c.Phone, c.Email, c.ID)
	if err != nil {
		return writeError(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete cascades to the company's equipment and records.
func (r *companyRepository) Delete(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", companyTable), id)
	if err != nil {
		return writeError(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
