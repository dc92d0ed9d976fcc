package dto

import "github.com/aarondl/null/v8"

type UpdateEquipmentDTO struct {
	Name            string      `json:"name" validate:"required,max=255"`
	SerialNumber    string      `json:"serial_number" validate:"required,serial_number"`
	EquipmentTypeID *uint64     `json:"equipment_type_id" validate:"omitempty,gt=0"`
	LastTestDate    null.String `json:"last_test_date"`
	NextTestDate    null.String `json:"next_test_date"`
}

type EquipmentDTO struct {
	ID              uint64            `json:"id"`
	Name            string            `json:"name"`
	SerialNumber    string            `json:"serial_number"`
	Company         ShortCompanyDTO   `json:"company"`
	EquipmentType   *EquipmentTypeDTO `json:"equipment_type,omitempty"`
	LastTestDate    null.String       `json:"last_test_date"`
	NextTestDate    null.String       `json:"next_test_date"`
	Status          string            `json:"status"`
	StatusColor     string            `json:"status_color"`
	DaysUntilRetest *int64            `json:"days_until_retest,omitempty"`
	CreatedAt       string            `json:"created_at,omitempty"`
	UpdatedAt       string            `json:"updated_at,omitempty"`
}

type DashboardDTO struct {
	Total    int            `json:"total"`
	Valid    int            `json:"valid"`
	Upcoming int            `json:"upcoming"`
	Expired  int            `json:"expired"`
	Invalid  int            `json:"invalid"`
	DueSoon  []EquipmentDTO `json:"due_soon"`
}
