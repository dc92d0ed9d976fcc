package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"equiptrak/internal/authz"
	"equiptrak/internal/dto"
	"equiptrak/internal/entities"
	"equiptrak/internal/repositories"
	"equiptrak/pkg/types"
)

type EngineerServiceInterface interface {
	GetAll(ctx context.Context, filter types.Filter) (*dto.PaginatedResponse[dto.EngineerDTO], error)
	FindByID(ctx context.Context, id uint64) (*dto.EngineerDTO, error)
	Create(ctx context.Context, payload dto.CreateEngineerDTO) (*dto.EngineerDTO, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateEngineerDTO) (*dto.EngineerDTO, error)
	Delete(ctx context.Context, id uint64) error
}

type EngineerService struct {
	repo   repositories.EngineerRepositoryInterface
	gate   *authz.Gatekeeper
	logger *zap.Logger
}

func NewEngineerService(repo repositories.EngineerRepositoryInterface, gate *authz.Gatekeeper, logger *zap.Logger) EngineerServiceInterface {
	return &EngineerService{repo: repo, gate: gate, logger: logger}
}

func (s *EngineerService) GetAll(ctx context.Context, filter types.Filter) (*dto.PaginatedResponse[dto.EngineerDTO], error) {
	if _, err := s.gate.Authorize(ctx, authz.CatalogsView, nil); err != nil {
		return nil, err
	}
	engineers, total, err := s.repo.GetAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	list := make([]dto.EngineerDTO, 0, len(engineers))
	for _, e := range engineers {
		list = append(list, *toEngineerDTO(e))
	}
	return &dto.PaginatedResponse[dto.EngineerDTO]{
		List:       list,
		Pagination: dto.Pagination{TotalCount: total, Limit: filter.Limit, Page: filter.Page},
	}, nil
}

func (s *EngineerService) FindByID(ctx context.Context, id uint64) (*dto.EngineerDTO, error) {
	if _, err := s.gate.Authorize(ctx, authz.CatalogsView, nil); err != nil {
		return nil, err
	}
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toEngineerDTO(e), nil
}

func (s *EngineerService) Create(ctx context.Context, payload dto.CreateEngineerDTO) (*dto.EngineerDTO, error) {
	if _, err := s.gate.Authorize(ctx, authz.CatalogsManage, nil); err != nil {
		return nil, err
	}
	e := &entities.Engineer{Name: strings.TrimSpace(payload.Name)}
	id, err := s.repo.Create(ctx, e)
	if err != nil {
		s.logger.Error("failed to create engineer", zap.String("name", e.Name), zap.Error(err))
		return nil, err
	}
	return s.FindByID(ctx, id)
}

func (s *EngineerService) Update(ctx context.Context, id uint64, payload dto.UpdateEngineerDTO) (*dto.EngineerDTO, error) {
	if _, err := s.gate.Authorize(ctx, authz.CatalogsManage, nil); err != nil {
		return nil, err
	}
	e := &entities.Engineer{ID: id, Name: strings.TrimSpace(payload.Name)}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

// Delete fails with a persistence error while records still reference the
// engineer.
func (s *EngineerService) Delete(ctx context.Context, id uint64) error {
	if _, err := s.gate.Authorize(ctx, authz.CatalogsManage, nil); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
