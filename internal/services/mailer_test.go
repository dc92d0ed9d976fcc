package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equiptrak/internal/queue"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "t1", Type: task.Type()}, nil
}

func TestQueueMailerEnqueuesRenderedMessage(t *testing.T) {
	enq := &fakeEnqueuer{}
	mailer := NewQueueMailer(enq, "certificates@equiptrak.local", zap.NewNop())

	err := mailer.SendCertificateIssued(context.Background(), CertificateEmail{
		To:                "workshop@acme.co.uk",
		CertificateNumber: "ET-00000009",
		CustomerName:      "Acme Fabrication",
		EquipmentName:     "ARO Spot Welder",
		RetestDate:        "31/12/2025",
		VerifyURL:         CertificateVerifyURL("https://app.example", "ET-00000009"),
	})
	require.NoError(t, err)
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, queue.CertificateEmailTask, enq.tasks[0].Type())

	var payload queue.CertificateEmailPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &payload))
	assert.Equal(t, "certificates@equiptrak.local", payload.From)
	assert.Equal(t, "Certificate ET-00000009 issued", payload.Subject)
	assert.Contains(t, payload.Body, "Dear Acme Fabrication")
	assert.Contains(t, payload.Body, "for ARO Spot Welder")
	assert.Contains(t, payload.Body, "https://app.example/certificates/ET-00000009")
}

func TestQueueMailerRejectsEmptyRecipient(t *testing.T) {
	enq := &fakeEnqueuer{}
	err := NewQueueMailer(enq, "x@y", zap.NewNop()).SendCertificateIssued(context.Background(), CertificateEmail{CertificateNumber: "ET-1"})
	assert.Error(t, err)
	assert.Empty(t, enq.tasks)
}
