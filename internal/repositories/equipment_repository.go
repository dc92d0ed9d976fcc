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

const equipmentSelectFields = `e.id, e.name, e.serial_number, e.company_id, e.equipment_type_id,
	e.last_test_date, e.next_test_date, e.created_at, e.updated_at,
	c.name, et.code, et.name`

var allowedEquipmentColumns = map[string]string{
	"id":                "e.id",
	"name":              "e.name",
	"serial_number":     "e.serial_number",
	"company_id":        "e.company_id",
	"equipment_type_id": "e.equipment_type_id",
	"last_test_date":    "e.last_test_date",
	"next_test_date":    "e.next_test_date",
	"created_at":        "e.created_at",
}

type EquipmentRepositoryInterface interface {
	// ListAll returns every row matching the column filters, unpaginated.
	// Status filtering and paging happen after classification.
	ListAll(ctx context.Context, filter types.Filter, scope *uint64) ([]*entities.Equipment, error)
	FindByID(ctx context.Context, id uint64) (*entities.Equipment, error)
	Update(ctx context.Context, e *entities.Equipment) error
	Delete(ctx context.Context, id uint64) error
	// Upsert inserts or updates by (company_id, serial_number). Test dates only
	// move forward.
	Upsert(ctx context.Context, tx pgx.Tx, e *entities.Equipment) (uint64, error)
	// ResyncTestDates recomputes last/next test dates from each equipment's
	// latest record.
	ResyncTestDates(ctx context.Context, tx pgx.Tx, equipmentIDs []uint64) error
}

type equipmentRepository struct {
	storage *pgxpool.Pool
}

func NewEquipmentRepository(storage *pgxpool.Pool) EquipmentRepositoryInterface {
	return &equipmentRepository{storage: storage}
}

func (r *equipmentRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func equipmentSelect() sq.SelectBuilder {
	return psql.Select(equipmentSelectFields).
		From("equipments e").
		Join("companies c ON c.id = e.company_id").
		LeftJoin("equipment_types et ON et.id = e.equipment_type_id")
}

func scanEquipment(row pgx.Row) (*entities.Equipment, error) {
	var e entities.Equipment
	var companyName string
	var typeCode, typeName *string

	err := row.Scan(&e.ID, &e.Name, &e.SerialNumber, &e.CompanyID, &e.EquipmentTypeID,
		&e.LastTestDate, &e.NextTestDate, &e.CreatedAt, &e.UpdatedAt,
		&companyName, &typeCode, &typeName)
	if err != nil {
		return nil, notFound(err)
	}

	e.Company = &entities.Company{ID: e.CompanyID, Name: companyName}
	if e.EquipmentTypeID != nil && typeCode != nil {
		e.EquipmentType = &entities.EquipmentType{
			ID:   *e.EquipmentTypeID,
			Code: entities.RecordType(*typeCode),
			Name: *typeName,
		}
	}
	return &e, nil
}

func (r *equipmentRepository) ListAll(ctx context.Context, filter types.Filter, scope *uint64) ([]*entities.Equipment, error) {
	builder := equipmentSelect()
	if scope != nil {
		builder = builder.Where(sq.Eq{"e.company_id": *scope})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"e.name": pattern},
			sq.ILike{"e.serial_number": pattern},
			sq.ILike{"c.name": pattern},
		})
	}

	listFilter := filter
	listFilter.WithPagination = false
	if len(listFilter.Sort) == 0 {
		listFilter.Sort = map[string]string{"next_test_date": "asc"}
	}
	builder = db.ApplyListParams(builder, listFilter, allowedEquipmentColumns).OrderBy("e.id ASC")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build equipment query: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	defer rows.Close()

	list := make([]*entities.Equipment, 0)
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *equipmentRepository) FindByID(ctx context.Context, id uint64) (*entities.Equipment, error) {
	query, args, err := equipmentSelect().Where(sq.Eq{"e.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanEquipment(r.storage.QueryRow(ctx, query, args...))
}

func (r *equipmentRepository) Update(ctx context.Context, e *entities.Equipment) error {
	result, err := r.storage.Exec(ctx, `
		UPDATE equipments
		SET name = $1, serial_number = $2, equipment_type_id = $3,
		    last_test_date = $4, next_test_date = $5, updated_at = NOW()
		WHERE id = $6`,
		e.Name, e.SerialNumber, e.EquipmentTypeID, e.LastTestDate, e.NextTestDate, e.ID)
	if err != nil {
		return writeError(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *equipmentRepository) Delete(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, "DELETE FROM equipments WHERE id = $1", id)
	if err != nil {
		return writeError(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *equipmentRepository) Upsert(ctx context.Context, tx pgx.Tx, e *entities.Equipment) (uint64, error) {
	const query = `
		INSERT INTO equipments (name, serial_number, company_id, equipment_type_id, last_test_date, next_test_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (company_id, serial_number) DO UPDATE SET
			name = EXCLUDED.name,
			equipment_type_id = COALESCE(EXCLUDED.equipment_type_id, equipments.equipment_type_id),
			last_test_date = CASE
				WHEN equipments.last_test_date IS NULL OR EXCLUDED.last_test_date >= equipments.last_test_date
				THEN EXCLUDED.last_test_date ELSE equipments.last_test_date END,
			next_test_date = CASE
				WHEN equipments.last_test_date IS NULL OR EXCLUDED.last_test_date >= equipments.last_test_date
				THEN EXCLUDED.next_test_date ELSE equipments.next_test_date END,
			updated_at = NOW()
		RETURNING id`

	var id uint64
	err := r.getQuerier(tx).QueryRow(ctx, query,
		e.Name, e.SerialNumber, e.CompanyID, e.EquipmentTypeID, e.LastTestDate, e.NextTestDate,
	).Scan(&id)
	if err != nil {
		return 0, writeError(err)
	}
	return id, nil
}

func (r *equipmentRepository) ResyncTestDates(ctx context.Context, tx pgx.Tx, equipmentIDs []uint64) error {
	if len(equipmentIDs) == 0 {
		return nil
	}
	const query = `
		UPDATE equipments e
		SET last_test_date = l.test_date, next_test_date = l.retest_date, updated_at = NOW()
		FROM (
			SELECT DISTINCT ON (i.equipment_id) i.equipment_id, r.test_date, r.retest_date
			FROM service_record_items i
			JOIN service_records r ON r.id = i.record_id
			WHERE i.equipment_id = ANY($1)
			ORDER BY i.equipment_id, r.test_date DESC, r.id DESC
		) l
		WHERE e.id = l.equipment_id`

	if _, err := r.getQuerier(tx).Exec(ctx, query, equipmentIDs); err != nil {
		return writeError(err)
	}
	return nil
}
