package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"equiptrak/internal/authz"
	"equiptrak/internal/dto"
	"equiptrak/internal/entities"
	"equiptrak/internal/repositories"
)

type EquipmentTypeServiceInterface interface {
	GetAll(ctx context.Context) ([]dto.EquipmentTypeDTO, error)
	Create(ctx context.Context, payload dto.CreateEquipmentTypeDTO) (*dto.EquipmentTypeDTO, error)
}

type EquipmentTypeService struct {
	repo   repositories.EquipmentTypeRepositoryInterface
	gate   *authz.Gatekeeper
	logger *zap.Logger
}

func NewEquipmentTypeService(repo repositories.EquipmentTypeRepositoryInterface, gate *authz.Gatekeeper, logger *zap.Logger) EquipmentTypeServiceInterface {
	return &EquipmentTypeService{repo: repo, gate: gate, logger: logger}
}

func (s *EquipmentTypeService) GetAll(ctx context.Context) ([]dto.EquipmentTypeDTO, error) {
	if _, err := s.gate.Authorize(ctx, authz.CatalogsView, nil); err != nil {
		return nil, err
	}
	types, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EquipmentTypeDTO, 0, len(types))
	for _, t := range types {
		out = append(out, *toEquipmentTypeDTO(t))
	}
	return out, nil
}

func (s *EquipmentTypeService) Create(ctx context.Context, payload dto.CreateEquipmentTypeDTO) (*dto.EquipmentTypeDTO, error) {
	if _, err := s.gate.Authorize(ctx, authz.CatalogsManage, nil); err != nil {
		return nil, err
	}
	t := &entities.EquipmentType{
		Code: entities.RecordType(payload.Code),
		Name: strings.TrimSpace(payload.Name),
	}
	id, err := s.repo.Create(ctx, t)
	if err != nil {
		s.logger.Error("failed to create equipment type", zap.String("code", payload.Code), zap.Error(err))
		return nil, err
	}
	t.ID = id
	return toEquipmentTypeDTO(t), nil
}
