package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"equiptrak/internal/authz"
	"equiptrak/internal/dto"
	"equiptrak/internal/entities"
	"equiptrak/internal/events"
	"equiptrak/internal/lifecycle"
	"equiptrak/internal/records"
	"equiptrak/internal/repositories"
	apperrors "equiptrak/pkg/errors"
	"equiptrak/pkg/eventbus"
	"equiptrak/pkg/types"
)

// EventPublisher is satisfied by *eventbus.Bus.
type EventPublisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

type ServiceRecordServiceInterface interface {
	Create(ctx context.Context, payload dto.CreateServiceRecordDTO) (*dto.ServiceRecordDTO, error)
	GetAll(ctx context.Context, filter types.Filter) (*dto.PaginatedResponse[dto.ServiceRecordDTO], error)
	FindByID(ctx context.Context, id uint64) (*dto.ServiceRecordDTO, error)
	UpdateDates(ctx context.Context, id uint64, payload dto.UpdateRecordDatesDTO) (*dto.ServiceRecordDTO, error)
	UpdateCertificateNumber(ctx context.Context, id uint64, payload dto.UpdateCertificateNumberDTO) (*dto.ServiceRecordDTO, error)
}

type ServiceRecordService struct {
	txManager     repositories.TxManagerInterface
	recordRepo    repositories.ServiceRecordRepositoryInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	typeRepo      repositories.EquipmentTypeRepositoryInterface
	cache         repositories.CacheRepositoryInterface
	builder       *records.Builder
	classifier    *lifecycle.Classifier
	gate          *authz.Gatekeeper
	bus           EventPublisher
	logger        *zap.Logger
}

func NewServiceRecordService(
	txManager repositories.TxManagerInterface,
	recordRepo repositories.ServiceRecordRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	typeRepo repositories.EquipmentTypeRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	builder *records.Builder,
	classifier *lifecycle.Classifier,
	gate *authz.Gatekeeper,
	bus EventPublisher,
	logger *zap.Logger,
) ServiceRecordServiceInterface {
	return &ServiceRecordService{
		txManager:     txManager,
		recordRepo:    recordRepo,
		equipmentRepo: equipmentRepo,
		typeRepo:      typeRepo,
		cache:         cache,
		builder:       builder,
		classifier:    classifier,
		gate:          gate,
		bus:           bus,
		logger:        logger,
	}
}

// Create builds the record, then stores it together with its equipment rows
// in one transaction. The certificate number is drawn before the transaction
// starts and is lost if the transaction fails.
func (s *ServiceRecordService) Create(ctx context.Context, payload dto.CreateServiceRecordDTO) (*dto.ServiceRecordDTO, error) {
	if _, err := s.gate.Authorize(ctx, authz.RecordsCreate, &payload.CompanyID); err != nil {
		return nil, err
	}

	input, err := builderInput(payload)
	if err != nil {
		return nil, err
	}

	draft, err := s.builder.Build(ctx, input)
	if err != nil {
		if errors.Is(err, apperrors.ErrGenerationFailed) {
			s.logger.Error("certificate number generation failed", zap.Uint64("company_id", payload.CompanyID), zap.Error(err))
		}
		return nil, err
	}

	rec := &entities.ServiceRecord{
		RecordType:        draft.RecordType,
		CompanyID:         draft.CompanyID,
		EngineerID:        draft.EngineerID,
		TestDate:          draft.TestDate,
		RetestDate:        draft.RetestDate,
		CertificateNumber: draft.CertificateNumber,
		Notes:             draft.Notes,
		Measurements:      draft.Measurements,
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		typeID, err := s.equipmentTypeID(ctx, tx, draft.RecordType)
		if err != nil {
			return err
		}

		rec.Items = make([]entities.ServiceRecordItem, 0, len(draft.Items))
		for i, item := range draft.Items {
			equipmentID, err := s.equipmentRepo.Upsert(ctx, tx, &entities.Equipment{
				Name:            item.Name,
				SerialNumber:    item.SerialNumber,
				CompanyID:       draft.CompanyID,
				EquipmentTypeID: typeID,
				LastTestDate:    &draft.TestDate,
				NextTestDate:    &draft.RetestDate,
			})
			if err != nil {
				return err
			}
			rec.Items = append(rec.Items, entities.ServiceRecordItem{
				Position:     i + 1,
				EquipmentID:  equipmentID,
				Name:         item.Name,
				SerialNumber: item.SerialNumber,
			})
		}

		_, err = s.recordRepo.InsertRecord(ctx, tx, rec)
		return err
	})
	if err != nil {
		s.logger.Error("failed to store service record",
			zap.String("certificate_number", draft.CertificateNumber),
			zap.Uint64("company_id", draft.CompanyID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("service record issued",
		zap.Uint64("record_id", rec.ID),
		zap.String("certificate_number", rec.CertificateNumber),
		zap.String("status", string(draft.Status)),
	)
	invalidateDashboard(ctx, s.cache, s.classifier, s.logger, rec.CompanyID)

	stored, err := s.recordRepo.FindByID(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	s.publishIssued(ctx, stored)

	return toServiceRecordDTO(stored, s.classifier), nil
}

func (s *ServiceRecordService) equipmentTypeID(ctx context.Context, tx pgx.Tx, code entities.RecordType) (*uint64, error) {
	t, err := s.typeRepo.FindByCode(ctx, tx, code)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Warn("no equipment type seeded for record type", zap.String("record_type", string(code)))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t.ID, nil
}

func (s *ServiceRecordService) publishIssued(ctx context.Context, rec *entities.ServiceRecord) {
	event := events.RecordIssuedEvent{
		EventID:           uuid.NewString(),
		RecordID:          rec.ID,
		RecordType:        rec.RecordType,
		CertificateNumber: rec.CertificateNumber,
		CompanyID:         rec.CompanyID,
		TestDate:          rec.TestDate,
		RetestDate:        rec.RetestDate,
		IssuedAt:          time.Now().UTC(),
	}
	if rec.Company != nil {
		event.CompanyName = rec.Company.Name
	}
	if len(rec.Items) > 0 {
		event.EquipmentName = rec.Items[0].Name
	}
	s.bus.Publish(ctx, event)
}

func (s *ServiceRecordService) GetAll(ctx context.Context, filter types.Filter) (*dto.PaginatedResponse[dto.ServiceRecordDTO], error) {
	principal, err := s.gate.Authorize(ctx, authz.RecordsView, nil)
	if err != nil {
		return nil, err
	}

	list, total, err := s.recordRepo.GetAll(ctx, filter, principal.CompanyScope())
	if err != nil {
		return nil, err
	}

	out := make([]dto.ServiceRecordDTO, 0, len(list))
	for _, rec := range list {
		out = append(out, *toServiceRecordDTO(rec, s.classifier))
	}
	return &dto.PaginatedResponse[dto.ServiceRecordDTO]{
		List:       out,
		Pagination: dto.Pagination{TotalCount: total, Limit: filter.Limit, Page: filter.Page},
	}, nil
}

func (s *ServiceRecordService) load(ctx context.Context, id uint64, permission string) (*entities.ServiceRecord, error) {
	rec, err := s.recordRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.gate.Authorize(ctx, permission, &rec.CompanyID); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *ServiceRecordService) FindByID(ctx context.Context, id uint64) (*dto.ServiceRecordDTO, error) {
	rec, err := s.load(ctx, id, authz.RecordsView)
	if err != nil {
		return nil, err
	}
	return toServiceRecordDTO(rec, s.classifier), nil
}

// UpdateDates edits the test date, and the retest date for LOLER records.
// Non-LOLER retest dates are always recomputed. Equipment listed on the
// record gets its last/next test dates recomputed from its latest record.
func (s *ServiceRecordService) UpdateDates(ctx context.Context, id uint64, payload dto.UpdateRecordDatesDTO) (*dto.ServiceRecordDTO, error) {
	rec, err := s.load(ctx, id, authz.RecordsUpdate)
	if err != nil {
		return nil, err
	}

	testDate, err := optionalDate("test_date", payload.TestDate, true)
	if err != nil {
		return nil, err
	}
	if testDate == nil {
		return nil, apperrors.NewValidationError("test_date", "a test date is required")
	}
	requested, err := optionalDate("retest_date", payload.RetestDate.String, payload.RetestDate.Valid)
	if err != nil {
		return nil, err
	}
	retestDate, err := records.ResolveRetestDate(rec.RecordType, *testDate, requested)
	if err != nil {
		return nil, err
	}

	equipmentIDs := make([]uint64, 0, len(rec.Items))
	for _, item := range rec.Items {
		equipmentIDs = append(equipmentIDs, item.EquipmentID)
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.recordRepo.UpdateDates(ctx, tx, id, *testDate, retestDate); err != nil {
			return err
		}
		return s.equipmentRepo.ResyncTestDates(ctx, tx, equipmentIDs)
	})
	if err != nil {
		s.logger.Error("failed to update record dates", zap.Uint64("record_id", id), zap.Error(err))
		return nil, err
	}
	invalidateDashboard(ctx, s.cache, s.classifier, s.logger, rec.CompanyID)

	return s.FindByID(ctx, id)
}

// UpdateCertificateNumber replaces the number. Uniqueness is enforced by the
// store and surfaces as a persistence error.
func (s *ServiceRecordService) UpdateCertificateNumber(ctx context.Context, id uint64, payload dto.UpdateCertificateNumberDTO) (*dto.ServiceRecordDTO, error) {
	rec, err := s.load(ctx, id, authz.RecordsUpdate)
	if err != nil {
		return nil, err
	}

	number := strings.TrimSpace(payload.CertificateNumber)
	if number == "" {
		return nil, apperrors.NewValidationError("certificate_number", "a certificate number is required")
	}
	if number == rec.CertificateNumber {
		return toServiceRecordDTO(rec, s.classifier), nil
	}

	if err := s.recordRepo.UpdateCertificateNumber(ctx, nil, id, number); err != nil {
		s.logger.Warn("failed to change certificate number",
			zap.Uint64("record_id", id),
			zap.String("certificate_number", number),
			zap.Error(err),
		)
		return nil, err
	}
	s.logger.Info("certificate number changed",
		zap.Uint64("record_id", id),
		zap.String("from", rec.CertificateNumber),
		zap.String("to", number),
	)
	return s.FindByID(ctx, id)
}

func builderInput(payload dto.CreateServiceRecordDTO) (records.Input, error) {
	testDate, err := optionalDate("test_date", payload.TestDate.String, payload.TestDate.Valid)
	if err != nil {
		return records.Input{}, err
	}
	retestDate, err := optionalDate("retest_date", payload.RetestDate.String, payload.RetestDate.Valid)
	if err != nil {
		return records.Input{}, err
	}

	items := make([]*records.LineItem, len(payload.Items))
	for i, item := range payload.Items {
		if item != nil {
			items[i] = &records.LineItem{Name: item.Name, SerialNumber: item.SerialNumber}
		}
	}

	return records.Input{
		RecordType:   entities.RecordType(strings.ToLower(strings.TrimSpace(payload.RecordType))),
		CompanyID:    payload.CompanyID,
		EngineerID:   payload.EngineerID,
		TestDate:     testDate,
		RetestDate:   retestDate,
		Notes:        ptrFromNullString(payload.Notes),
		Items:        items,
		Measurements: payload.Measurements,
	}, nil
}
