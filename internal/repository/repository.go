package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"agenda/internal/domain"
)

type Repositories struct {
	Appointment AppointmentRepository
	Doctor      DoctorRepository
	Patient     PatientRepository
}

func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		Appointment: NewAppointmentRepository(db),
		Doctor:      NewDoctorRepository(db),
		Patient:     NewPatientRepository(db),
	}
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment domain.Appointment) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetByExternalEventID(ctx context.Context, doctorID int64, eventID string) (*domain.Appointment, error)
	Update(ctx context.Context, appointment domain.Appointment) error
	List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error)
	CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error)
	FindOverlapping(ctx context.Context, doctorID int64, start, end time.Time, excludeID *int64) ([]domain.Appointment, error)
}

type DoctorRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Doctor, error)
	UpdateCalendarSyncedAt(ctx context.Context, id int64, syncedAt time.Time) error
}

type PatientRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Patient, error)
}
