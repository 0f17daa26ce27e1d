// Файл: internal/dto/claims_dto.go
package dto

// Principal - аутентифицированный пользователь текущего запроса.
type Principal struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
	IsActive bool   `json:"is_active"`
}

func (p *Principal) String() string {
	if p == nil {
		return "anonymous"
	}
	return p.Username
}
