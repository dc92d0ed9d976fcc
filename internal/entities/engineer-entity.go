package entities

import "equiptrak/pkg/types"

type Engineer struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`

	types.BaseEntity
}
