package dto

type PaginatedResponse[T any] struct {
	List       []T        `json:"list"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	TotalCount uint64 `json:"total_count"`
	Limit      int    `json:"limit"`
	Page       int    `json:"page"`
}
