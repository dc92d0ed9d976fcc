package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Relay hands a message to whatever actually delivers mail.
type Relay interface {
	Deliver(ctx context.Context, msg CertificateEmailPayload) error
}

// LogRelay only logs the message. It is the default because delivery is
// done by an external mail service.
type LogRelay struct {
	logger *zap.Logger
}

func NewLogRelay(logger *zap.Logger) *LogRelay {
	return &LogRelay{logger: logger}
}

func (r *LogRelay) Deliver(_ context.Context, msg CertificateEmailPayload) error {
	r.logger.Info("certificate email relayed",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("certificate_number", msg.CertificateNumber),
	)
	return nil
}

// Processor is plugged into the asynq worker loop.
type Processor struct {
	relay  Relay
	logger *zap.Logger
}

func NewProcessor(relay Relay, logger *zap.Logger) *Processor {
	return &Processor{relay: relay, logger: logger}
}

func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(CertificateEmailTask, p.HandleCertificateEmail)
	return mux
}

func (p *Processor) HandleCertificateEmail(ctx context.Context, task *asynq.Task) error {
	var payload CertificateEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		// Retrying cannot fix a malformed payload.
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.To == "" {
		return fmt.Errorf("certificate %s has no recipient: %w", payload.CertificateNumber, asynq.SkipRetry)
	}

	if err := p.relay.Deliver(ctx, payload); err != nil {
		p.logger.Warn("certificate email delivery failed",
			zap.String("certificate_number", payload.CertificateNumber),
			zap.Error(err),
		)
		return err
	}
	return nil
}
