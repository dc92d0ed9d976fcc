package dto

type CreateEquipmentTypeDTO struct {
	Code string `json:"code" validate:"required,oneof=service spot_welder compressor rivet_tool loler"`
	Name string `json:"name" validate:"required,max=100"`
}

type EquipmentTypeDTO struct {
	ID   uint64 `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}
