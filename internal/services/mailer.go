package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"equiptrak/internal/queue"
)

type CertificateEmail struct {
	To                string
	CertificateNumber string
	CustomerName      string
	EquipmentName     string
	RetestDate        string
	VerifyURL         string
}

type MailerInterface interface {
	SendCertificateIssued(ctx context.Context, email CertificateEmail) error
}

// QueueMailer renders the message and enqueues it for the worker.
type QueueMailer struct {
	client queue.Enqueuer
	from   string
	logger *zap.Logger
}

func NewQueueMailer(client queue.Enqueuer, from string, logger *zap.Logger) MailerInterface {
	return &QueueMailer{client: client, from: from, logger: logger}
}

func (m *QueueMailer) SendCertificateIssued(ctx context.Context, email CertificateEmail) error {
	if strings.TrimSpace(email.To) == "" {
		return fmt.Errorf("certificate %s: empty recipient", email.CertificateNumber)
	}

	payload := queue.CertificateEmailPayload{
		From:              m.from,
		To:                email.To,
		Subject:           fmt.Sprintf("Certificate %s issued", email.CertificateNumber),
		Body:              renderCertificateEmail(email),
		CertificateNumber: email.CertificateNumber,
	}
	if err := queue.EnqueueCertificateEmail(ctx, m.client, payload); err != nil {
		return err
	}

	m.logger.Info("certificate email enqueued",
		zap.String("certificate_number", email.CertificateNumber),
		zap.String("to", email.To),
	)
	return nil
}

func renderCertificateEmail(email CertificateEmail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", email.CustomerName)
	fmt.Fprintf(&b, "Certificate %s has been issued", email.CertificateNumber)
	if email.EquipmentName != "" {
		fmt.Fprintf(&b, " for %s", email.EquipmentName)
	}
	b.WriteString(".\n")
	if email.RetestDate != "" {
		fmt.Fprintf(&b, "The next test is due on %s.\n", email.RetestDate)
	}
	if email.VerifyURL != "" {
		fmt.Fprintf(&b, "\nView or verify the certificate at %s\n", email.VerifyURL)
	}
	return b.String()
}
