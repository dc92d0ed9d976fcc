package dto

type CreateEngineerDTO struct {
	Name string `json:"name" validate:"required,max=255"`
}

type UpdateEngineerDTO = CreateEngineerDTO

type EngineerDTO struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type ShortEngineerDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}
