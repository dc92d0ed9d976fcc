package entities

import "equiptrak/pkg/types"

type Company struct {
	ID       uint64
	Name     string
	Address  string
	City     string
	County   string
	Postcode string
	Country  string
	Phone    string
	Email    *string

	types.BaseEntity
}
