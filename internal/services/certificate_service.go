package services

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"equiptrak/internal/authz"
	"equiptrak/internal/dto"
	"equiptrak/internal/lifecycle"
	"equiptrak/internal/repositories"
)

type CertificateServiceInterface interface {
	FindByNumber(ctx context.Context, number string) (*dto.CertificateDTO, error)
}

// CertificateService resolves everything the external renderer prints.
type CertificateService struct {
	recordRepo  repositories.ServiceRecordRepositoryInterface
	companyRepo repositories.CompanyRepositoryInterface
	classifier  *lifecycle.Classifier
	gate        *authz.Gatekeeper
	frontendURL string
	logger      *zap.Logger
}

func NewCertificateService(
	recordRepo repositories.ServiceRecordRepositoryInterface,
	companyRepo repositories.CompanyRepositoryInterface,
	classifier *lifecycle.Classifier,
	gate *authz.Gatekeeper,
	frontendURL string,
	logger *zap.Logger,
) CertificateServiceInterface {
	return &CertificateService{
		recordRepo:  recordRepo,
		companyRepo: companyRepo,
		classifier:  classifier,
		gate:        gate,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

func (s *CertificateService) FindByNumber(ctx context.Context, number string) (*dto.CertificateDTO, error) {
	rec, err := s.recordRepo.FindByCertificateNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		return nil, err
	}
	if _, err := s.gate.Authorize(ctx, authz.CertificatesView, &rec.CompanyID); err != nil {
		return nil, err
	}

	company, err := s.companyRepo.FindByID(ctx, nil, rec.CompanyID)
	if err != nil {
		return nil, err
	}

	return &dto.CertificateDTO{
		ServiceRecordDTO: *toServiceRecordDTO(rec, s.classifier),
		Company:          *toCompanyDTO(company),
		VerifyURL:        CertificateVerifyURL(s.frontendURL, rec.CertificateNumber),
	}, nil
}

// CertificateVerifyURL is the deep link encoded into the printed QR code.
func CertificateVerifyURL(frontendURL, number string) string {
	return strings.TrimRight(frontendURL, "/") + "/certificates/" + url.PathEscape(number)
}
