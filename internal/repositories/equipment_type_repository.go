package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"equiptrak/internal/entities"
)

const (
	equipmentTypeTable  = "equipment_types"
	equipmentTypeFields = "id, code, name, created_at, updated_at"
)

type EquipmentTypeRepositoryInterface interface {
	GetAll(ctx context.Context) ([]*entities.EquipmentType, error)
	FindByID(ctx context.Context, id uint64) (*entities.EquipmentType, error)
	FindByCode(ctx context.Context, tx pgx.Tx, code entities.RecordType) (*entities.EquipmentType, error)
	Create(ctx context.Context, t *entities.EquipmentType) (uint64, error)
}

type equipmentTypeRepository struct {
	storage *pgxpool.Pool
}

func NewEquipmentTypeRepository(storage *pgxpool.Pool) EquipmentTypeRepositoryInterface {
	return &equipmentTypeRepository{storage: storage}
}

func (r *equipmentTypeRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func scanEquipmentType(row pgx.Row) (*entities.EquipmentType, error) {
	var t entities.EquipmentType
	if err := row.Scan(&t.ID, &t.Code, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *equipmentTypeRepository) GetAll(ctx context.Context) ([]*entities.EquipmentType, error) {
	rows, err := r.storage.Query(ctx, fmt.Sprintf("SELECT %s FROM %s ORDER BY id", equipmentTypeFields, equipmentTypeTable))
	if err != nil {
		return nil, fmt.Errorf("list equipment types: %w", err)
	}
	defer rows.Close()

	list := make([]*entities.EquipmentType, 0)
	for rows.Next() {
		t, err := scanEquipmentType(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *equipmentTypeRepository) FindByID(ctx context.Context, id uint64) (*entities.EquipmentType, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", equipmentTypeFields, equipmentTypeTable)
	return scanEquipmentType(r.storage.QueryRow(ctx, query, id))
}

func (r *equipmentTypeRepository) FindByCode(ctx context.Context, tx pgx.Tx, code entities.RecordType) (*entities.EquipmentType, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE code = $1", equipmentTypeFields, equipmentTypeTable)
	return scanEquipmentType(r.getQuerier(tx).QueryRow(ctx, query, code))
}

func (r *equipmentTypeRepository) Create(ctx context.Context, t *entities.EquipmentType) (uint64, error) {
	var id uint64
	query := fmt.Sprintf("INSERT INTO %s (code, name) VALUES ($1, $2) RETURNING id", equipmentTypeTable)
	if err := r.storage.QueryRow(ctx, query, t.Code, t.Name).Scan(&id); err != nil {
		return 0, writeError(err)
	}
	return id, nil
}
