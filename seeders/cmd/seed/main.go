package main

import (
	"context"
	"flag"
	"log"

	"workers-service/internal/entities"
	"workers-service/pkg/config"
	"workers-service/pkg/database/postgresql"
	applogger "workers-service/pkg/logger"
	"workers-service/pkg/service"
	"workers-service/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	// --- Определяем флаги ---
	runMigrate := flag.Bool("migrate", false, "Применить миграции перед наполнением")
	staffName := flag.String("staff", "", "Создать сотрудника отдела кадров (is_staff) с указанным username")
	userName := flag.String("user", "", "Создать обычного пользователя (только чтение) с указанным username")
	printToken := flag.Bool("token", false, "Выпустить access-токены для созданных пользователей")
	runWorkers := flag.Bool("workers", false, "Добавить демонстрационных сотрудников")

	flag.Parse()

	if !*runMigrate && *staffName == "" && *userName == "" && !*runWorkers {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -migrate -staff admin -token")
		log.Println("  go run ./seeders/cmd/seed -staff admin -workers")
		log.Println("======================================================")
		return
	}

	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log)
	ctx := context.Background()

	log.Println("📦 Используется DSN:", cfg.Postgres.DSN)
	dbPool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		log.Fatalf("❌ Не удалось подключиться к БД: %v", err)
	}
	defer dbPool.Close()

	log.Println("======================================================")

	if *runMigrate {
		if err := postgresql.Migrate(ctx, dbPool, logger); err != nil {
			log.Fatalf("❌ Ошибка миграции: %v", err)
		}
		log.Println("======================================================")
	}

	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, logger)
	var staff *entities.User

	for _, u := range []struct {
		name    string
		isStaff bool
	}{{*staffName, true}, {*userName, false}} {
		if u.name == "" {
			continue
		}
		user, err := seeders.SeedUser(ctx, dbPool, u.name, u.isStaff, logger)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		if u.isStaff {
			staff = user
		}
		if *printToken {
			token, err := seeders.IssueToken(user, jwtSvc)
			if err != nil {
				log.Fatalf("❌ %v", err)
			}
			log.Printf("🔑 %s: Bearer %s", user.Username, token)
		}
	}

	if *runWorkers {
		var createdBy *uint64
		if staff != nil {
			createdBy = &staff.ID
		}
		if err := seeders.SeedWorkers(ctx, dbPool, createdBy, logger); err != nil {
			log.Fatalf("❌ Ошибка наполнения сотрудников: %v", err)
		}
		log.Println("======================================================")
	}

	log.Println("✅ Все указанные операции сидирования успешно завершены.")
	log.Println("======================================================")
}
