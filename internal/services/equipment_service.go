package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"equiptrak/internal/authz"
	"equiptrak/internal/dto"
	"equiptrak/internal/entities"
	"equiptrak/internal/lifecycle"
	"equiptrak/internal/records"
	"equiptrak/internal/repositories"
	apperrors "equiptrak/pkg/errors"
	"equiptrak/pkg/types"
)

const (
	dashboardCacheTTL  = time.Minute
	dashboardDueSoon   = 10
	dashboardKeyPrefix = "equiptrak:dashboard:"
)

type EquipmentServiceInterface interface {
	GetAll(ctx context.Context, filter types.Filter) (*dto.PaginatedResponse[dto.EquipmentDTO], error)
	FindByID(ctx context.Context, id uint64) (*dto.EquipmentDTO, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateEquipmentDTO) (*dto.EquipmentDTO, error)
	Delete(ctx context.Context, id uint64) error
	LatestRecord(ctx context.Context, id uint64) (*dto.ServiceRecordDTO, error)
	Export(ctx context.Context, filter types.Filter) ([]dto.EquipmentDTO, error)
	Dashboard(ctx context.Context) (*dto.DashboardDTO, error)
}

type EquipmentService struct {
	repo       repositories.EquipmentRepositoryInterface
	recordRepo repositories.ServiceRecordRepositoryInterface
	cache      repositories.CacheRepositoryInterface
	classifier *lifecycle.Classifier
	gate       *authz.Gatekeeper
	logger     *zap.Logger
}

func NewEquipmentService(
	repo repositories.EquipmentRepositoryInterface,
	recordRepo repositories.ServiceRecordRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	classifier *lifecycle.Classifier,
	gate *authz.Gatekeeper,
	logger *zap.Logger,
) EquipmentServiceInterface {
	return &EquipmentService{
		repo:       repo,
		recordRepo: recordRepo,
		cache:      cache,
		classifier: classifier,
		gate:       gate,
		logger:     logger,
	}
}

// GetAll lists the register with live status. filter[status] is matched
// against the derived status, so paging happens here rather than in SQL.
func (s *EquipmentService) GetAll(ctx context.Context, filter types.Filter) (*dto.PaginatedResponse[dto.EquipmentDTO], error) {
	principal, err := s.gate.Authorize(ctx, authz.EquipmentView, nil)
	if err != nil {
		return nil, err
	}

	list, err := s.classified(ctx, filter, principal.CompanyScope())
	if err != nil {
		return nil, err
	}

	total := uint64(len(list))
	if filter.WithPagination && filter.Limit > 0 {
		list = pageOf(list, filter.Offset, filter.Limit)
	}

	return &dto.PaginatedResponse[dto.EquipmentDTO]{
		List:       list,
		Pagination: dto.Pagination{TotalCount: total, Limit: filter.Limit, Page: filter.Page},
	}, nil
}

func (s *EquipmentService) classified(ctx context.Context, filter types.Filter, scope *uint64) ([]dto.EquipmentDTO, error) {
	rows, err := s.repo.ListAll(ctx, filter, scope)
	if err != nil {
		return nil, err
	}

	wanted, err := statusFilter(filter.FilterValue("status"))
	if err != nil {
		return nil, err
	}

	out := make([]dto.EquipmentDTO, 0, len(rows))
	for _, e := range rows {
		item := toEquipmentDTO(e, s.classifier)
		if len(wanted) > 0 && !wanted[lifecycle.Status(item.Status)] {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func statusFilter(raw string) (map[lifecycle.Status]bool, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	known := make(map[lifecycle.Status]bool)
	for _, st := range lifecycle.AllStatuses() {
		known[st] = true
	}
	wanted := make(map[lifecycle.Status]bool)
	for _, part := range strings.Split(raw, ",") {
		st := lifecycle.Status(strings.ToLower(strings.TrimSpace(part)))
		if st == "" {
			continue
		}
		if !known[st] {
			return nil, apperrors.NewValidationError("filter[status]", "unknown status %q", part)
		}
		wanted[st] = true
	}
	return wanted, nil
}

func pageOf[T any](list []T, offset, limit int) []T {
	if offset >= len(list) {
		return []T{}
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end]
}

func (s *EquipmentService) load(ctx context.Context, id uint64, permission string) (*entities.Equipment, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.gate.Authorize(ctx, permission, &e.CompanyID); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EquipmentService) FindByID(ctx context.Context, id uint64) (*dto.EquipmentDTO, error) {
	e, err := s.load(ctx, id, authz.EquipmentView)
	if err != nil {
		return nil, err
	}
	out := toEquipmentDTO(e, s.classifier)
	return &out, nil
}

func (s *EquipmentService) Update(ctx context.Context, id uint64, payload dto.UpdateEquipmentDTO) (*dto.EquipmentDTO, error) {
	e, err := s.load(ctx, id, authz.EquipmentManage)
	if err != nil {
		return nil, err
	}

	lastTest, err := optionalDate("last_test_date", payload.LastTestDate.String, payload.LastTestDate.Valid)
	if err != nil {
		return nil, err
	}
	nextTest, err := optionalDate("next_test_date", payload.NextTestDate.String, payload.NextTestDate.Valid)
	if err != nil {
		return nil, err
	}
	if lastTest != nil && nextTest != nil && nextTest.Before(*lastTest) {
		return nil, apperrors.NewValidationError("next_test_date", "next test date cannot be before the last test date")
	}

	e.Name = strings.TrimSpace(payload.Name)
	e.SerialNumber = strings.TrimSpace(payload.SerialNumber)
	e.EquipmentTypeID = payload.EquipmentTypeID
	e.LastTestDate = lastTest
	e.NextTestDate = nextTest

	if err := s.repo.Update(ctx, e); err != nil {
		s.logger.Error("failed to update equipment", zap.Uint64("equipment_id", id), zap.Error(err))
		return nil, err
	}
	s.invalidateDashboard(ctx, e.CompanyID)
	return s.FindByID(ctx, id)
}

func (s *EquipmentService) Delete(ctx context.Context, id uint64) error {
	e, err := s.load(ctx, id, authz.EquipmentManage)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateDashboard(ctx, e.CompanyID)
	return nil
}

func (s *EquipmentService) LatestRecord(ctx context.Context, id uint64) (*dto.ServiceRecordDTO, error) {
	if _, err := s.load(ctx, id, authz.RecordsView); err != nil {
		return nil, err
	}
	rec, err := s.recordRepo.FetchLatestRecordForEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	return toServiceRecordDTO(rec, s.classifier), nil
}

// Export returns the whole filtered register, ignoring pagination.
func (s *EquipmentService) Export(ctx context.Context, filter types.Filter) ([]dto.EquipmentDTO, error) {
	principal, err := s.gate.Authorize(ctx, authz.EquipmentExport, nil)
	if err != nil {
		return nil, err
	}
	filter.WithPagination = false
	return s.classified(ctx, filter, principal.CompanyScope())
}

// Dashboard counts equipment per status. Results are cached per scope and UTC
// day for a minute; cache failures fall through to the database.
func (s *EquipmentService) Dashboard(ctx context.Context) (*dto.DashboardDTO, error) {
	principal, err := s.gate.Authorize(ctx, authz.DashboardView, nil)
	if err != nil {
		return nil, err
	}
	scope := principal.CompanyScope()
	key := dashboardKey(s.classifier.CurrentTime(), scope)

	if cached, err := s.cache.Get(ctx, key); err == nil {
		var out dto.DashboardDTO
		if err := json.Unmarshal([]byte(cached), &out); err == nil {
			return &out, nil
		}
		s.logger.Warn("discarding unreadable dashboard cache entry", zap.String("key", key))
	} else if !errors.Is(err, repositories.ErrCacheMiss) {
		s.logger.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
	}

	list, err := s.classified(ctx, types.Filter{}, scope)
	if err != nil {
		return nil, err
	}

	out := &dto.DashboardDTO{Total: len(list), DueSoon: make([]dto.EquipmentDTO, 0, dashboardDueSoon)}
	for _, item := range list {
		switch lifecycle.Status(item.Status) {
		case lifecycle.StatusValid:
			out.Valid++
		case lifecycle.StatusUpcoming:
			out.Upcoming++
		case lifecycle.StatusExpired:
			out.Expired++
		default:
			out.Invalid++
		}
		// list is ordered by next test date, so the first hits are the most urgent.
		if (item.Status == string(lifecycle.StatusUpcoming) || item.Status == string(lifecycle.StatusExpired)) &&
			len(out.DueSoon) < dashboardDueSoon {
			out.DueSoon = append(out.DueSoon, item)
		}
	}

	if payload, err := json.Marshal(out); err == nil {
		if err := s.cache.Set(ctx, key, string(payload), dashboardCacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

func (s *EquipmentService) invalidateDashboard(ctx context.Context, companyID uint64) {
	invalidateDashboard(ctx, s.cache, s.classifier, s.logger, companyID)
}

func invalidateDashboard(ctx context.Context, cache repositories.CacheRepositoryInterface, classifier *lifecycle.Classifier, logger *zap.Logger, companyID uint64) {
	now := classifier.CurrentTime()
	keys := []string{dashboardKey(now, nil), dashboardKey(now, &companyID)}
	if err := cache.Del(ctx, keys...); err != nil {
		logger.Warn("dashboard cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// dashboardKey includes the UTC day because every status flips at UTC
// midnight.
func dashboardKey(now time.Time, scope *uint64) string {
	day := now.UTC().Format(dateLayout)
	if scope == nil {
		return fmt.Sprintf("%s%s:all", dashboardKeyPrefix, day)
	}
	return fmt.Sprintf("%s%s:company:%d", dashboardKeyPrefix, day, *scope)
}

func optionalDate(field, value string, valid bool) (*time.Time, error) {
	if !valid || strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parsed := lifecycle.ParseDate(value)
	if parsed == nil {
		return nil, apperrors.NewValidationError(field, "expected a date in YYYY-MM-DD form")
	}
	d := records.DateOnly(*parsed)
	return &d, nil
}
