// Файл: internal/entities/user-entity.go
package entities

import "time"

// User - копия учётной записи из внешнего провайдера идентификации.
type User struct {
	ID        uint64    `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	IsStaff   bool      `json:"is_staff" db:"is_staff"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (u User) String() string {
	return u.Username
}
