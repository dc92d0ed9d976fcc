// Package queue defines the background tasks the API enqueues and the
// handlers the worker runs for them.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// CertificateEmailTask is enqueued once per issued certificate with a
	// known customer address.
	CertificateEmailTask = "certificate:email"

	certificateEmailMaxRetry = 5
)

// CertificateEmailPayload is the rendered message; the worker only hands it
// to the relay.
type CertificateEmailPayload struct {
	From              string `json:"from"`
	To                string `json:"to"`
	Subject           string `json:"subject"`
	Body              string `json:"body"`
	CertificateNumber string `json:"certificate_number"`
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func NewCertificateEmailTask(payload CertificateEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(CertificateEmailTask, data, asynq.MaxRetry(certificateEmailMaxRetry)), nil
}

func EnqueueCertificateEmail(ctx context.Context, client Enqueuer, payload CertificateEmailPayload) error {
	task, err := NewCertificateEmailTask(payload)
	if err != nil {
		return err
	}
	if _, err := client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue certificate email: %w", err)
	}
	return nil
}
