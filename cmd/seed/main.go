package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"

	"agenda/config"
	"agenda/internal/domain"
	"agenda/pkg/database"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("наполнение тестовыми данными")

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("конфигурация: %v", err)
	}

	pool, err := database.NewPostgresDB(cfg.Postgres)
	if err != nil {
		log.Fatalf("подключение к БД: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	ctx := context.Background()
	if err := seedDoctors(ctx, pool, cfg.Timezone.Supported, 50); err != nil {
		log.Fatalf("врачи: %v", err)
	}
	if err := seedPatients(ctx, pool, 500); err != nil {
		log.Fatalf("пациенты: %v", err)
	}

	log.Println("наполнение завершено")
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, timezones []string, count int) error {
	log.Printf("создание %d врачей", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		hours, err := json.Marshal(randomWorkingHours())
		if err != nil {
			return err
		}

		tz := timezones[gofakeit.Number(0, len(timezones)-1)]
		notice := []int{12, 24, 48}[gofakeit.Number(0, 2)]
		penalty := float64(gofakeit.Number(0, 10) * 10)

		_, err = tx.Exec(ctx, `
			INSERT INTO doctors (
				first_name, last_name, email, timezone, working_hours,
				cancellation_notice_hours, cancellation_penalty_pct,
				created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		`,
			gofakeit.FirstName(),
			gofakeit.LastName(),
			gofakeit.Email(),
			tz,
			hours,
			notice,
			penalty,
		)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("врачи созданы")
	return nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("создание %d пациентов", count)

	const batchSize = 100

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			_, err := tx.Exec(ctx, `
				INSERT INTO patients (first_name, last_name, email, phone, created_at, updated_at)
				VALUES ($1, $2, $3, $4, now(), now())
			`,
				gofakeit.FirstName(),
				gofakeit.LastName(),
				gofakeit.Email(),
				gofakeit.Phone(),
			)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Printf("пациенты созданы: %d/%d", end, count)
	}

	return nil
}

func randomWorkingHours() domain.WorkingHours {
	starts := []string{"08:00", "09:00", "10:00"}
	ends := []string{"16:00", "17:00", "18:00", "19:00"}

	hours := make(domain.WorkingHours, 7)
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
		hours[day] = domain.WorkingDay{
			Start:     starts[gofakeit.Number(0, len(starts)-1)],
			End:       ends[gofakeit.Number(0, len(ends)-1)],
			Available: true,
		}
	}
	hours["saturday"] = domain.WorkingDay{
		Start:     "09:00",
		End:       "13:00",
		Available: gofakeit.Bool(),
	}
	hours["sunday"] = domain.WorkingDay{Available: false}
	return hours
}
