package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agenda/internal/domain"
)

type DoctorRepo struct {
	db *pgxpool.Pool
}

func NewDoctorRepository(db *pgxpool.Pool) *DoctorRepo {
	return &DoctorRepo{
		db: db,
	}
}

func (r *DoctorRepo) GetByID(ctx context.Context, id int64) (*domain.Doctor, error) {
	query := `
		SELECT id, first_name, last_name, email, timezone, working_hours,
		       cancellation_notice_hours, cancellation_penalty_pct,
		       calendar_id, calendar_subject, calendar_synced_at,
		       created_at, updated_at
		FROM doctors
		WHERE id = $1
	`

	var d domain.Doctor
	var workingHoursRaw []byte

	err := r.db.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.FirstName,
		&d.LastName,
		&d.Email,
		&d.Timezone,
		&workingHoursRaw,
		&d.CancellationNoticeHours,
		&d.CancellationPenaltyPct,
		&d.CalendarID,
		&d.CalendarSubject,
		&d.CalendarSyncedAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("врач с ID %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка получения данных врача: %w", err)
	}

	if len(workingHoursRaw) > 0 {
		if err := json.Unmarshal(workingHoursRaw, &d.WorkingHours); err != nil {
			return nil, fmt.Errorf("ошибка разбора расписания врача: %w", err)
		}
	}

	return &d, nil
}

func (r *DoctorRepo) UpdateCalendarSyncedAt(ctx context.Context, id int64, syncedAt time.Time) error {
	query := `
		UPDATE doctors
		SET calendar_synced_at = $1, updated_at = $2
		WHERE id = $3
	`

	tag, err := r.db.Exec(ctx, query, syncedAt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка сохранения отметки синхронизации: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("врач с ID %d: %w", id, domain.ErrNotFound)
	}

	return nil
}
