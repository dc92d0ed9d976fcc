package services

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"equiptrak/internal/authz"
	"equiptrak/internal/dto"
	"equiptrak/internal/entities"
	"equiptrak/internal/lifecycle"
	"equiptrak/internal/repositories"
	"equiptrak/pkg/types"
)

type CompanyServiceInterface interface {
	GetAll(ctx context.Context, filter types.Filter) (*dto.PaginatedResponse[dto.CompanyDTO], error)
	FindByID(ctx context.Context, id uint64) (*dto.CompanyDTO, error)
	Create(ctx context.Context, payload dto.CreateCompanyDTO) (*dto.CompanyDTO, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateCompanyDTO) (*dto.CompanyDTO, error)
	Delete(ctx context.Context, id uint64) error
}

type CompanyService struct {
	repo       repositories.CompanyRepositoryInterface
	txManager  repositories.TxManagerInterface
	cache      repositories.CacheRepositoryInterface
	classifier *lifecycle.Classifier
	gate       *authz.Gatekeeper
	logger     *zap.Logger
}

func NewCompanyService(
	repo repositories.CompanyRepositoryInterface,
	txManager repositories.TxManagerInterface,
	cache repositories.CacheRepositoryInterface,
	classifier *lifecycle.Classifier,
	gate *authz.Gatekeeper,
	logger *zap.Logger,
) CompanyServiceInterface {
	return &CompanyService{
		repo:       repo,
		txManager:  txManager,
		cache:      cache,
		classifier: classifier,
		gate:       gate,
		logger:     logger,
	}
}

func (s *CompanyService) GetAll(ctx context.Context, filter types.Filter) (*dto.PaginatedResponse[dto.CompanyDTO], error) {
	principal, err := s.gate.Authorize(ctx, authz.CompaniesView, nil)
	if err != nil {
		return nil, err
	}

	companies, total, err := s.repo.GetAll(ctx, filter, principal.CompanyScope())
	if err != nil {
		return nil, err
	}

	list := make([]dto.CompanyDTO, 0, len(companies))
	for _, c := range companies {
		list = append(list, *toCompanyDTO(c))
	}
	return &dto.PaginatedResponse[dto.CompanyDTO]{
		List:       list,
		Pagination: dto.Pagination{TotalCount: total, Limit: filter.Limit, Page: filter.Page},
	}, nil
}

func (s *CompanyService) FindByID(ctx context.Context, id uint64) (*dto.CompanyDTO, error) {
	if _, err := s.gate.Authorize(ctx, authz.CompaniesView, &id); err != nil {
		return nil, err
	}
	company, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return toCompanyDTO(company), nil
}

func (s *CompanyService) Create(ctx context.Context, payload dto.CreateCompanyDTO) (*dto.CompanyDTO, error) {
	if _, err := s.gate.Authorize(ctx, authz.CompaniesManage, nil); err != nil {
		return nil, err
	}

	var created *entities.Company
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		id, err := s.repo.Create(ctx, tx, companyFromDTO(payload))
		if err != nil {
			return err
		}
		created, err = s.repo.FindByID(ctx, tx, id)
		return err
	})
	if err != nil {
		s.logger.Error("failed to create company", zap.String("name", payload.Name), zap.Error(err))
		return nil, err
	}

	s.logger.Info("company created", zap.Uint64("company_id", created.ID))
	return toCompanyDTO(created), nil
}

func (s *CompanyService) Update(ctx context.Context, id uint64, payload dto.UpdateCompanyDTO) (*dto.CompanyDTO, error) {
	if _, err := s.gate.Authorize(ctx, authz.CompaniesManage, nil); err != nil {
		return nil, err
	}

	var updated *entities.Company
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		company := companyFromDTO(payload)
		company.ID = id
		if err := s.repo.Update(ctx, tx, company); err != nil {
			return err
		}
		var err error
		updated, err = s.repo.FindByID(ctx, tx, id)
		return err
	})
	if err != nil {
		s.logger.Error("failed to update company", zap.Uint64("company_id", id), zap.Error(err))
		return nil, err
	}
	return toCompanyDTO(updated), nil
}

// Delete removes the company together with its equipment and records.
func (s *CompanyService) Delete(ctx context.Context, id uint64) error {
	if _, err := s.gate.Authorize(ctx, authz.CompaniesManage, nil); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	// The cascade drops the company's equipment, so the counts are stale.
	invalidateDashboard(ctx, s.cache, s.classifier, s.logger, id)
	s.logger.Info("company deleted", zap.Uint64("company_id", id))
	return nil
}

func companyFromDTO(payload dto.CreateCompanyDTO) *entities.Company {
	return &entities.Company{
		Name:     strings.TrimSpace(payload.Name),
		Address:  strings.TrimSpace(payload.Address),
		City:     strings.TrimSpace(payload.City),
		County:   strings.TrimSpace(payload.County),
		Postcode: strings.ToUpper(strings.TrimSpace(payload.Postcode)),
		Country:  strings.TrimSpace(payload.Country),
		Phone:    strings.TrimSpace(payload.Phone),
		Email:    ptrFromNullString(payload.Email),
	}
}
