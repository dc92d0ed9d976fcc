package dto

import "github.com/aarondl/null/v8"

type CreateCompanyDTO struct {
	Name     string      `json:"name" validate:"required,max=255"`
	Address  string      `json:"address" validate:"max=255"`
	City     string      `json:"city" validate:"max=100"`
	County   string      `json:"county" validate:"max=100"`
	Postcode string      `json:"postcode" validate:"omitempty,uk_postcode"`
	Country  string      `json:"country" validate:"max=100"`
	Phone    string      `json:"phone" validate:"omitempty,phone"`
	Email    null.String `json:"email" validate:"omitempty,email"`
}

// UpdateCompanyDTO is a full replacement of the editable fields.
type UpdateCompanyDTO = CreateCompanyDTO

type CompanyDTO struct {
	ID        uint64      `json:"id"`
	Name      string      `json:"name"`
	Address   string      `json:"address"`
	City      string      `json:"city"`
	County    string      `json:"county"`
	Postcode  string      `json:"postcode"`
	Country   string      `json:"country"`
	Phone     string      `json:"phone"`
	Email     null.String `json:"email"`
	CreatedAt string      `json:"created_at,omitempty"`
	UpdatedAt string      `json:"updated_at,omitempty"`
}

type ShortCompanyDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}
