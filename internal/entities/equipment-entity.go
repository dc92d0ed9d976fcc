package entities

import (
	"time"

	"equiptrak/pkg/types"
)

// Equipment is a physical asset owned by a company. Its lifecycle status is
// never stored; it is derived from NextTestDate when read.
type Equipment struct {
	ID              uint64
	Name            string
	SerialNumber    string
	CompanyID       uint64
	EquipmentTypeID *uint64
	LastTestDate    *time.Time
	NextTestDate    *time.Time

	types.BaseEntity

	// Joined fields, not columns
	Company       *Company       `db:"-"`
	EquipmentType *EquipmentType `db:"-"`
}
