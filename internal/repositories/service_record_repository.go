package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"equiptrak/internal/entities"
	db "equiptrak/internal/infrastructure/bd"
	apperrors "equiptrak/pkg/errors"
	"equiptrak/pkg/types"
)

const recordSelectFields = `r.id, r.record_type, r.company_id, r.engineer_id, r.test_date, r.retest_date,
	r.certificate_number, r.notes, r.measurements, r.created_at, r.updated_at,
	c.name, en.name`

var allowedRecordColumns = map[string]string{
	"id":                 "r.id",
	"record_type":        "r.record_type",
	"company_id":         "r.company_id",
	"engineer_id":        "r.engineer_id",
	"test_date":          "r.test_date",
	"retest_date":        "r.retest_date",
	"certificate_number": "r.certificate_number",
	"created_at":         "r.created_at",
}

type ServiceRecordRepositoryInterface interface {
	// InsertRecord stores the record and its items. Item EquipmentIDs must
	// already be set.
	InsertRecord(ctx context.Context, tx pgx.Tx, rec *entities.ServiceRecord) (uint64, error)
	FetchLatestRecordForEquipment(ctx context.Context, equipmentID uint64) (*entities.ServiceRecord, error)
	FindByID(ctx context.Context, id uint64) (*entities.ServiceRecord, error)
	FindByCertificateNumber(ctx context.Context, number string) (*entities.ServiceRecord, error)
	GetAll(ctx context.Context, filter types.Filter, scope *uint64) ([]*entities.ServiceRecord, uint64, error)
	UpdateDates(ctx context.Context, tx pgx.Tx, id uint64, testDate, retestDate time.Time) error
	UpdateCertificateNumber(ctx context.Context, tx pgx.Tx, id uint64, number string) error
}

type serviceRecordRepository struct {
	storage *pgxpool.Pool
}

func NewServiceRecordRepository(storage *pgxpool.Pool) ServiceRecordRepositoryInterface {
	return &serviceRecordRepository{storage: storage}
}

func (r *serviceRecordRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func recordSelect() sq.SelectBuilder {
	return psql.Select(recordSelectFields).
		From("service_records r").
		Join("companies c ON c.id = r.company_id").
		Join("engineers en ON en.id = r.engineer_id")
}

func scanRecord(row pgx.Row) (*entities.ServiceRecord, error) {
	var rec entities.ServiceRecord
	var companyName, engineerName string
	var measurements []byte

	err := row.Scan(&rec.ID, &rec.RecordType, &rec.CompanyID, &rec.EngineerID, &rec.TestDate, &rec.RetestDate,
		&rec.CertificateNumber, &rec.Notes, &measurements, &rec.CreatedAt, &rec.UpdatedAt,
		&companyName, &engineerName)
	if err != nil {
		return nil, notFound(err)
	}
	if len(measurements) > 0 {
		rec.Measurements = measurements
	}
	rec.Company = &entities.Company{ID: rec.CompanyID, Name: companyName}
	rec.Engineer = &entities.Engineer{ID: rec.EngineerID, Name: engineerName}
	return &rec, nil
}

func (r *serviceRecordRepository) InsertRecord(ctx context.Context, tx pgx.Tx, rec *entities.ServiceRecord) (uint64, error) {
	q := r.getQuerier(tx)

	var measurements interface{}
	if len(rec.Measurements) > 0 {
		measurements = []byte(rec.Measurements)
	}

	err := q.QueryRow(ctx, `
		INSERT INTO service_records
			(record_type, company_id, engineer_id, test_date, retest_date, certificate_number, notes, measurements)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		rec.RecordType, rec.CompanyID, rec.EngineerID, rec.TestDate, rec.RetestDate,
		rec.CertificateNumber, rec.Notes, measurements,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return 0, writeError(err)
	}

	if len(rec.Items) == 0 {
		return rec.ID, nil
	}

	insert := psql.Insert("service_record_items").
		Columns("record_id", "position", "equipment_id", "name", "serial_number").
		Suffix("RETURNING id")
	for i := range rec.Items {
		item := &rec.Items[i]
		item.RecordID = rec.ID
		insert = insert.Values(rec.ID, item.Position, item.EquipmentID, item.Name, item.SerialNumber)
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build record items insert: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return 0, writeError(err)
	}
	defer rows.Close()
	for i := 0; rows.Next(); i++ {
		if err := rows.Scan(&rec.Items[i].ID); err != nil {
			return 0, writeError(err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, writeError(err)
	}

	return rec.ID, nil
}

func (r *serviceRecordRepository) findOne(ctx context.Context, builder sq.SelectBuilder) (*entities.ServiceRecord, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rec, err := scanRecord(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, []*entities.ServiceRecord{rec}); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *serviceRecordRepository) FindByID(ctx context.Context, id uint64) (*entities.ServiceRecord, error) {
	return r.findOne(ctx, recordSelect().Where(sq.Eq{"r.id": id}))
}

func (r *serviceRecordRepository) FindByCertificateNumber(ctx context.Context, number string) (*entities.ServiceRecord, error) {
	return r.findOne(ctx, recordSelect().Where(sq.Eq{"r.certificate_number": number}))
}

// FetchLatestRecordForEquipment returns the most recent record listing the
// equipment, by test date then insertion order.
func (r *serviceRecordRepository) FetchLatestRecordForEquipment(ctx context.Context, equipmentID uint64) (*entities.ServiceRecord, error) {
	builder := recordSelect().
		Where(sq.Expr("EXISTS (SELECT 1 FROM service_record_items i WHERE i.record_id = r.id AND i.equipment_id = ?)", equipmentID)).
		OrderBy("r.test_date DESC", "r.id DESC").
		Limit(1)
	return r.findOne(ctx, builder)
}

func (r *serviceRecordRepository) GetAll(ctx context.Context, filter types.Filter, scope *uint64) ([]*entities.ServiceRecord, uint64, error) {
	where := sq.And{}
	if scope != nil {
		where = append(where, sq.Eq{"r.company_id": *scope})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, sq.Or{
			sq.ILike{"r.certificate_number": pattern},
			sq.ILike{"c.name": pattern},
			sq.Expr("EXISTS (SELECT 1 FROM service_record_items i WHERE i.record_id = r.id AND i.serial_number ILIKE ?)", pattern),
		})
	}

	countBuilder := psql.Select("COUNT(*)").
		From("service_records r").
		Join("companies c ON c.id = r.company_id").
		Where(where)
	countFilter := filter
	countFilter.Sort = nil
	countFilter.WithPagination = false
	countQuery, countArgs, err := db.ApplyListParams(countBuilder, countFilter, allowedRecordColumns).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count service records: %w", err)
	}
	if total == 0 {
		return []*entities.ServiceRecord{}, 0, nil
	}

	listFilter := filter
	if len(listFilter.Sort) == 0 {
		listFilter.Sort = map[string]string{"test_date": "desc"}
	}
	query, args, err := db.ApplyListParams(recordSelect().Where(where), listFilter, allowedRecordColumns).
		OrderBy("r.id DESC").
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list service records: %w", err)
	}
	records := make([]*entities.ServiceRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		records = append(records, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachItems(ctx, records); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *serviceRecordRepository) attachItems(ctx context.Context, records []*entities.ServiceRecord) error {
	if len(records) == 0 {
		return nil
	}
	byID := make(map[uint64]*entities.ServiceRecord, len(records))
	ids := make([]uint64, 0, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
		ids = append(ids, rec.ID)
	}

	rows, err := r.storage.Query(ctx, `
		SELECT id, record_id, position, equipment_id, name, serial_number
		FROM service_record_items
		WHERE record_id = ANY($1)
		ORDER BY record_id, position`, ids)
	if err != nil {
		return fmt.Errorf("load record items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item entities.ServiceRecordItem
		if err := rows.Scan(&item.ID, &item.RecordID, &item.Position, &item.EquipmentID, &item.Name, &item.SerialNumber); err != nil {
			return err
		}
		if rec, ok := byID[item.RecordID]; ok {
			rec.Items = append(rec.Items, item)
		}
	}
	return rows.Err()
}

func (r *serviceRecordRepository) UpdateDates(ctx context.Context, tx pgx.Tx, id uint64, testDate, retestDate time.Time) error {
	result, err := r.getQuerier(tx).Exec(ctx,
		"UPDATE service_records SET test_date = $1, retest_date = $2, updated_at = NOW() WHERE id = $3",
		testDate, retestDate, id)
	if err != nil {
		return writeError(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *serviceRecordRepository) UpdateCertificateNumber(ctx context.Context, tx pgx.Tx, id uint64, number string) error {
	result, err := r.getQuerier(tx).Exec(ctx,
		"UPDATE service_records SET certificate_number = $1, updated_at = NOW() WHERE id = $2",
		number, id)
	if err != nil {
		return writeError(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
