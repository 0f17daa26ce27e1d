package entities

import (
	"time"

	"github.com/aarondl/null/v8"

	"workers-service/pkg/types"
)

type Worker struct {
	ID         uint64      `json:"id" db:"id"`
	FirstName  string      `json:"first_name" db:"first_name"`
	MiddleName null.String `json:"middle_name" db:"middle_name"`
	LastName   string      `json:"last_name" db:"last_name"`
	Email      string      `json:"email" db:"email"`
	Position   string      `json:"position" db:"position"`
	IsActive   bool        `json:"is_active" db:"is_active"`
	HiredDate  time.Time   `json:"hired_date" db:"hired_date"`

	// CreatedBy - слабая ссылка на пользователя, обнуляется при его удалении.
	CreatedBy     *uint64 `json:"created_by" db:"created_by"`
	CreatedByName *string `json:"-" db:"-"`

	types.BaseEntity
	types.SoftDelete
}

func (w Worker) String() string {
	return w.FirstName + " " + w.LastName
}
