package types

// Filter represents query parameters for filtering and pagination.
//
//	/api/equipment?search=ARO&sort[next_test_date]=asc&filter[company_id]=1,2&filter[status]=expired&limit=20&page=2
type Filter struct {
	Search         string                 `json:"search,omitempty"`
	Sort           map[string]string      `json:"sort,omitempty"`
	Filter         map[string]interface{} `json:"filter,omitempty"`
	Limit          int                    `json:"limit"`
	Offset         int                    `json:"offset"`
	Page           int                    `json:"page"`
	WithPagination bool                   `json:"with_pagination"`
}

// Pagination represents pagination metadata.
type Pagination struct {
	TotalCount uint64 `json:"total_count"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}

// FilterValue returns filter[key] as a string, or "" when absent.
func (f Filter) FilterValue(key string) string {
	v, ok := f.Filter[key]
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
