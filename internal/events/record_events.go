package events

import (
	"time"

	"equiptrak/internal/entities"
)

const RecordIssuedName = "record.issued"

// RecordIssuedEvent is published after a service record and its equipment
// rows have been committed.
type RecordIssuedEvent struct {
	EventID           string
	RecordID          uint64
	RecordType        entities.RecordType
	CertificateNumber string
	CompanyID         uint64
	CompanyName       string
	EquipmentName     string
	TestDate          time.Time
	RetestDate        time.Time
	IssuedAt          time.Time
}

func (e RecordIssuedEvent) Name() string {
	return RecordIssuedName
}
