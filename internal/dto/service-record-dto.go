package dto

import (
	"encoding/json"

	"github.com/aarondl/null/v8"
)

type RecordItemDTO struct {
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number"`
}

// CreateServiceRecordDTO leaves required-field checks to the record builder
// so that every rejection reports the same field names.
type CreateServiceRecordDTO struct {
	RecordType   string           `json:"record_type"`
	CompanyID    uint64           `json:"company_id"`
	EngineerID   uint64           `json:"engineer_id"`
	TestDate     null.String      `json:"test_date"`
	RetestDate   null.String      `json:"retest_date"`
	Notes        null.String      `json:"notes" validate:"omitempty,max=2000"`
	Items        []*RecordItemDTO `json:"items"`
	Measurements json.RawMessage  `json:"measurements,omitempty"`
}

type UpdateRecordDatesDTO struct {
	TestDate   string      `json:"test_date" validate:"required"`
	RetestDate null.String `json:"retest_date"`
}

type UpdateCertificateNumberDTO struct {
	CertificateNumber string `json:"certificate_number" validate:"required,max=64"`
}

type RecordItemResponseDTO struct {
	Position     int    `json:"position"`
	EquipmentID  uint64 `json:"equipment_id"`
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number"`
}

type ServiceRecordDTO struct {
	ID                uint64                  `json:"id"`
	RecordType        string                  `json:"record_type"`
	RecordTypeName    string                  `json:"record_type_name"`
	Company           ShortCompanyDTO         `json:"company"`
	Engineer          ShortEngineerDTO        `json:"engineer"`
	TestDate          string                  `json:"test_date"`
	RetestDate        string                  `json:"retest_date"`
	Status            string                  `json:"status"`
	StatusColor       string                  `json:"status_color"`
	CertificateNumber string                  `json:"certificate_number"`
	Notes             null.String             `json:"notes"`
	Measurements      json.RawMessage         `json:"measurements,omitempty"`
	Items             []RecordItemResponseDTO `json:"items"`
	CreatedAt         string                  `json:"created_at,omitempty"`
}

// CertificateDTO is everything needed to print a certificate.
type CertificateDTO struct {
	ServiceRecordDTO
	Company   CompanyDTO `json:"company"`
	VerifyURL string     `json:"verify_url"`
}
