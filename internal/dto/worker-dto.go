package dto

import (
	"time"

	"github.com/aarondl/null/v8"

	"workers-service/internal/entities"
)

const DateLayout = "2006-01-02"

type CreateWorkerDTO struct {
	FirstName  string      `json:"first_name" form:"first_name" validate:"required,not_blank,max=150"`
	MiddleName null.String `json:"middle_name" form:"middle_name" validate:"omitempty,max=150"`
	LastName   string      `json:"last_name" form:"last_name" validate:"required,not_blank,max=150"`
	Email      string      `json:"email" form:"email" validate:"required,custom_email,max=254"`
	Position   string      `json:"position" form:"position" validate:"required,not_blank,max=200"`
	IsActive   *bool       `json:"is_active" form:"is_active"`
}

// UpdateWorkerDTO - частичное обновление; какие поля реально пришли, решает набор sent.
type UpdateWorkerDTO struct {
	FirstName  *string     `json:"first_name" form:"first_name" validate:"omitempty,not_blank,max=150"`
	MiddleName null.String `json:"middle_name" form:"middle_name" validate:"omitempty,max=150"`
	LastName   *string     `json:"last_name" form:"last_name" validate:"omitempty,not_blank,max=150"`
	Email      *string     `json:"email" form:"email" validate:"omitempty,custom_email,max=254"`
	Position   *string     `json:"position" form:"position" validate:"omitempty,not_blank,max=200"`
	IsActive   *bool       `json:"is_active" form:"is_active"`
}

// WorkerListItemDTO - краткое представление для списка.
type WorkerListItemDTO struct {
	ID         uint64      `json:"id"`
	FirstName  string      `json:"first_name"`
	MiddleName null.String `json:"middle_name"`
	LastName   string      `json:"last_name"`
	Position   string      `json:"position"`
	IsActive   bool        `json:"is_active"`
}

// WorkerDTO - полное представление; created_by отдаётся как имя пользователя.
type WorkerDTO struct {
	ID         uint64      `json:"id"`
	FirstName  string      `json:"first_name"`
	MiddleName null.String `json:"middle_name"`
	LastName   string      `json:"last_name"`
	Email      string      `json:"email"`
	Position   string      `json:"position"`
	IsActive   bool        `json:"is_active"`
	HiredDate  string      `json:"hired_date"`
	CreatedBy  *string     `json:"created_by"`
	CreatedAt  string      `json:"created_at"`
	UpdatedAt  string      `json:"updated_at"`
	IsDeleted  bool        `json:"is_deleted"`
}

type WorkerListFilter struct {
	IsActive *bool
	Position *string
	Search   string
	Limit    int
	Offset   int
	Page     int
}

func NewWorkerListItemDTO(w entities.Worker) WorkerListItemDTO {
	return WorkerListItemDTO{
		ID:         w.ID,
		FirstName:  w.FirstName,
		MiddleName: w.MiddleName,
		LastName:   w.LastName,
		Position:   w.Position,
		IsActive:   w.IsActive,
	}
}

func NewWorkerDTO(w *entities.Worker) *WorkerDTO {
	return &WorkerDTO{
		ID:         w.ID,
		FirstName:  w.FirstName,
		MiddleName: w.MiddleName,
		LastName:   w.LastName,
		Email:      w.Email,
		Position:   w.Position,
		IsActive:   w.IsActive,
		HiredDate:  w.HiredDate.Format(DateLayout),
		CreatedBy:  w.CreatedByName,
		CreatedAt:  w.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  w.UpdatedAt.Format(time.RFC3339),
		IsDeleted:  w.IsDeleted,
	}
}

// FieldSet - json-ключи, присутствующие в теле PATCH-запроса.
type FieldSet map[string]bool

func (s FieldSet) Has(field string) bool { return s[field] }
