package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"equiptrak/internal/events"
	"equiptrak/internal/repositories"
	"equiptrak/internal/services"
	"equiptrak/pkg/eventbus"
)

// CertificateEmailListener tells the customer that a certificate was issued.
// Delivery problems never affect the record, they are only logged.
type CertificateEmailListener struct {
	companyRepo repositories.CompanyRepositoryInterface
	mailer      services.MailerInterface
	frontendURL string
	logger      *zap.Logger
}

func NewCertificateEmailListener(
	companyRepo repositories.CompanyRepositoryInterface,
	mailer services.MailerInterface,
	frontendURL string,
	logger *zap.Logger,
) *CertificateEmailListener {
	return &CertificateEmailListener{
		companyRepo: companyRepo,
		mailer:      mailer,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

func (l *CertificateEmailListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.RecordIssuedName, l.HandleRecordIssued)
	l.logger.Info("certificate email listener subscribed", zap.String("event", events.RecordIssuedName))
}

func (l *CertificateEmailListener) HandleRecordIssued(ctx context.Context, event eventbus.Event) error {
	issued, ok := event.(events.RecordIssuedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	company, err := l.companyRepo.FindByID(ctx, nil, issued.CompanyID)
	if err != nil {
		return fmt.Errorf("load company %d: %w", issued.CompanyID, err)
	}
	if company.Email == nil || *company.Email == "" {
		l.logger.Debug("company has no email address, skipping certificate email",
			zap.Uint64("company_id", company.ID),
			zap.String("certificate_number", issued.CertificateNumber),
		)
		return nil
	}

	err = l.mailer.SendCertificateIssued(ctx, services.CertificateEmail{
		To:                *company.Email,
		CertificateNumber: issued.CertificateNumber,
		CustomerName:      company.Name,
		EquipmentName:     issued.EquipmentName,
		RetestDate:        issued.RetestDate.Format("02/01/2006"),
		VerifyURL:         services.CertificateVerifyURL(l.frontendURL, issued.CertificateNumber),
	})
	if err != nil {
		return fmt.Errorf("send certificate %s (event %s): %w", issued.CertificateNumber, issued.EventID, err)
	}
	return nil
}
