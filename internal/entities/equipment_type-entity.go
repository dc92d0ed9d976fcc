package entities

import "equiptrak/pkg/types"

type EquipmentType struct {
	ID   uint64     `json:"id"`
	Code RecordType `json:"code"`
	Name string     `json:"name"`

	types.BaseEntity
}
