package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agenda/internal/domain"
)

const appointmentColumns = `
	id, doctor_id, patient_id, date_time_utc, duration_minutes, timezone,
	type, status, title, notes, external_event_id, external_calendar_id,
	cancellation_reason, cancellation_penalty, diagnosis, recommendations,
	created_at, updated_at
`

type AppointmentRepo struct {
	db *pgxpool.Pool
}

func NewAppointmentRepository(db *pgxpool.Pool) *AppointmentRepo {
	return &AppointmentRepo{
		db: db,
	}
}

func (r *AppointmentRepo) Create(ctx context.Context, a domain.Appointment) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// повторная проверка пересечения внутри транзакции: замок по врачу
	// держит сервис, а уникальный индекс по слоту страхует на уровне БД
	checkQuery := `
		SELECT COUNT(*)
		FROM appointments
		WHERE doctor_id = $1
		AND status != 'cancelled'
		AND date_time_utc < $3
		AND date_time_utc + duration_minutes * INTERVAL '1 minute' > $2
	`

	var count int
	err = tx.QueryRow(ctx, checkQuery, a.DoctorID, a.DateTimeUTC, a.End()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка проверки доступности слота: %w", err)
	}

	if count > 0 {
		return 0, fmt.Errorf("%w: слот уже занят", domain.ErrConflict)
	}

	query := `
		INSERT INTO appointments (
			doctor_id, patient_id, date_time_utc, duration_minutes, timezone,
			type, status, title, notes, external_event_id, external_calendar_id,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		RETURNING id
	`

	now := time.Now()
	var id int64
	err = tx.QueryRow(ctx, query,
		a.DoctorID,
		a.PatientID,
		a.DateTimeUTC,
		a.DurationMinutes,
		a.Timezone,
		a.Type,
		a.Status,
		a.Title,
		a.Notes,
		a.ExternalEventID,
		a.ExternalCalendarID,
		now,
	).Scan(&id)

	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: слот уже занят", domain.ErrConflict)
		}
		return 0, fmt.Errorf("ошибка создания записи на прием: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка при коммите транзакции: %w", err)
	}

	return id, nil
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE id = $1`, appointmentColumns)

	appointment, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("запись на прием с ID %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка получения записи на прием: %w", err)
	}

	return appointment, nil
}

func (r *AppointmentRepo) GetByExternalEventID(ctx context.Context, doctorID int64, eventID string) (*domain.Appointment, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM appointments
		WHERE doctor_id = $1 AND external_event_id = $2
	`, appointmentColumns)

	appointment, err := scanAppointment(r.db.QueryRow(ctx, query, doctorID, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("запись для события %s: %w", eventID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка поиска записи по внешнему событию: %w", err)
	}

	return appointment, nil
}

func (r *AppointmentRepo) Update(ctx context.Context, a domain.Appointment) error {
	query := `
		UPDATE appointments
		SET date_time_utc = $1,
		    duration_minutes = $2,
		    timezone = $3,
		    type = $4,
		    status = $5,
		    title = $6,
		    notes = $7,
		    external_event_id = $8,
		    external_calendar_id = $9,
		    cancellation_reason = $10,
		    cancellation_penalty = $11,
		    diagnosis = $12,
		    recommendations = $13,
		    updated_at = $14
		WHERE id = $15
	`

	tag, err := r.db.Exec(ctx, query,
		a.DateTimeUTC,
		a.DurationMinutes,
		a.Timezone,
		a.Type,
		a.Status,
		a.Title,
		a.Notes,
		a.ExternalEventID,
		a.ExternalCalendarID,
		a.CancellationReason,
		a.CancellationPenalty,
		a.Diagnosis,
		a.Recommendations,
		time.Now(),
		a.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: слот уже занят", domain.ErrConflict)
		}
		return fmt.Errorf("ошибка обновления записи на прием: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("запись на прием с ID %d: %w", a.ID, domain.ErrNotFound)
	}

	return nil
}

func (r *AppointmentRepo) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	conditions, args := buildAppointmentFilter(filter)
	argCount := len(args) + 1

	query := fmt.Sprintf(`
		SELECT %s FROM appointments
		WHERE %s
		ORDER BY date_time_utc ASC
	`, appointmentColumns, strings.Join(conditions, " AND "))

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, filter.Limit)
		argCount++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argCount)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *AppointmentRepo) CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error) {
	conditions, args := buildAppointmentFilter(filter)

	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM appointments WHERE %s
	`, strings.Join(conditions, " AND "))

	var count int
	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета записей: %w", err)
	}

	return count, nil
}

func (r *AppointmentRepo) FindOverlapping(ctx context.Context, doctorID int64, start, end time.Time, excludeID *int64) ([]domain.Appointment, error) {
	conditions := []string{
		"doctor_id = $1",
		"status != 'cancelled'",
		"date_time_utc < $3",
		"date_time_utc + duration_minutes * INTERVAL '1 minute' > $2",
	}
	args := []interface{}{doctorID, start, end}

	if excludeID != nil {
		conditions = append(conditions, fmt.Sprintf("id != $%d", len(args)+1))
		args = append(args, *excludeID)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM appointments
		WHERE %s
		ORDER BY date_time_utc ASC
	`, appointmentColumns, strings.Join(conditions, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска пересекающихся записей: %w", err)
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func buildAppointmentFilter(filter domain.AppointmentFilter) ([]string, []interface{}) {
	conditions := []string{"doctor_id = $1"}
	args := []interface{}{filter.DoctorID}
	argCount := 2

	if filter.PatientID != nil {
		conditions = append(conditions, fmt.Sprintf("patient_id = $%d", argCount))
		args = append(args, *filter.PatientID)
		argCount++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filter.Status)
		argCount++
	}

	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("date_time_utc >= $%d", argCount))
		args = append(args, *filter.StartDate)
		argCount++
	}

	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("date_time_utc < $%d", argCount))
		args = append(args, *filter.EndDate)
		argCount++
	}

	return conditions, args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var a domain.Appointment
	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&a.DateTimeUTC,
		&a.DurationMinutes,
		&a.Timezone,
		&a.Type,
		&a.Status,
		&a.Title,
		&a.Notes,
		&a.ExternalEventID,
		&a.ExternalCalendarID,
		&a.CancellationReason,
		&a.CancellationPenalty,
		&a.Diagnosis,
		&a.Recommendations,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.DateTimeUTC = a.DateTimeUTC.UTC()

	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]domain.Appointment, error) {
	appointments := make([]domain.Appointment, 0)
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки записи: %w", err)
		}
		appointments = append(appointments, *appointment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return appointments, nil
}

func isUniqueViolation(err error) bool {
	// 23505 — unique_violation
	return err != nil && strings.Contains(err.Error(), "23505")
}
