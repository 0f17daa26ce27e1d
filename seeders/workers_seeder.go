package seeders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"workers-service/internal/entities"
	"workers-service/internal/repositories"
	apperrors "workers-service/pkg/errors"
)

type demoWorker struct {
	FirstName  string
	MiddleName string
	LastName   string
	Email      string
	Position   string
	IsActive   bool
}

var demoWorkers = []demoWorker{
	{"Алексей", "Игоревич", "Смирнов", "a.smirnov@example.com", "Инженер", true},
	{"Мария", "Сергеевна", "Кузнецова", "m.kuznetsova@example.com", "Бухгалтер", true},
	{"Дмитрий", "", "Попов", "d.popov@example.com", "Инженер", true},
	{"Елена", "Викторовна", "Васильева", "e.vasileva@example.com", "HR-менеджер", true},
	{"Сергей", "Петрович", "Новиков", "s.novikov@example.com", "Водитель", false},
	{"Ольга", "", "Морозова", "o.morozova@example.com", "Аналитик", true},
}

// SeedWorkers добавляет демонстрационных сотрудников. Уже существующие email пропускаются.
func SeedWorkers(ctx context.Context, db *pgxpool.Pool, createdBy *uint64, logger *zap.Logger) error {
	log.Println("  - Запуск сидера сотрудников...")

	workerRepo := repositories.NewWorkerRepository(db, logger)
	now := time.Now()
	created := 0

	for _, d := range demoWorkers {
		w := entities.Worker{
			FirstName: d.FirstName,
			LastName:  d.LastName,
			Email:     d.Email,
			Position:  d.Position,
			IsActive:  d.IsActive,
			HiredDate: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
			CreatedBy: createdBy,
		}
		if d.MiddleName != "" {
			w.MiddleName = null.StringFrom(d.MiddleName)
		}

		if _, err := workerRepo.Create(ctx, nil, w); err != nil {
			var validationErr *apperrors.ValidationError
			if errors.As(err, &validationErr) {
				log.Printf("    ℹ️  %s уже существует, пропускаем", d.Email)
				continue
			}
			return fmt.Errorf("не удалось создать сотрудника %s: %w", d.Email, err)
		}
		created++
	}

	log.Printf("    ✅ Создано сотрудников: %d", created)
	return nil
}
