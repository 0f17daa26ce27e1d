package types

// Filter represents query parameters for filtering and pagination.
type Filter struct {
	Search string                 `json:"search,omitempty"`
	Filter map[string]interface{} `json:"filter,omitempty"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Page   int                    `json:"page"`
}

// http://localhost:8080/api/workers/?search=иван&is_active=true&position=Разработчик&page=2&page_size=50
