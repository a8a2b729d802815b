package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"agenda/config"
	"agenda/internal/calendar"
	"agenda/internal/domain"
	"agenda/internal/lock"
	"agenda/internal/notification"
	"agenda/internal/repository"
	"agenda/internal/storage"
	"agenda/pkg/timezone"
)

type Deps struct {
	Repos         *repository.Repositories
	Gateway       calendar.Gateway
	Locker        lock.DoctorLocker
	Notifier      notification.Notifier
	ReportStorage storage.ReportStorage
	Normalizer    *timezone.Normalizer
	Logger        *zap.Logger
	Config        *config.Config
}

type Services struct {
	Availability AvailabilityService
	Schedule     ScheduleService
	Calendar     CalendarService
	Appointment  AppointmentService
}

func NewServices(deps Deps) *Services {
	availability := NewAvailabilityService(
		deps.Repos.Appointment,
		deps.Repos.Doctor,
		deps.Gateway,
		deps.Normalizer,
		deps.Config.Availability,
		deps.Logger,
	)

	calendarSvc := NewCalendarService(
		deps.Repos.Appointment,
		deps.Repos.Doctor,
		deps.Gateway,
		deps.ReportStorage,
		deps.Config.Sync,
		deps.Logger,
	)

	return &Services{
		Availability: availability,
		Schedule: NewScheduleService(
			deps.Repos.Appointment,
			deps.Repos.Doctor,
			deps.Normalizer,
			deps.Config.Availability,
			deps.Logger,
		),
		Calendar: calendarSvc,
		Appointment: NewAppointmentService(
			deps.Repos.Appointment,
			deps.Repos.Doctor,
			deps.Repos.Patient,
			availability,
			calendarSvc,
			deps.Gateway,
			deps.Locker,
			deps.Notifier,
			deps.Normalizer,
			deps.Config.Availability,
			deps.Logger,
		),
	}
}

type AvailabilityService interface {
	IsAvailable(ctx context.Context, doctorID int64, startUTC time.Time, durationMinutes int) (bool, error)
	CheckSlot(ctx context.Context, doctor *domain.Doctor, startUTC time.Time, durationMinutes int, excludeID *int64) (bool, error)
}

type ScheduleService interface {
	GetFreeSlots(ctx context.Context, doctorID int64, date string, durationMinutes int) ([]domain.Slot, error)
	GetDoctorAvailability(ctx context.Context, doctorID int64, startDate, endDate string) ([]domain.Slot, error)
}

type CalendarService interface {
	ListAuthoritative(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error)
	Sync(ctx context.Context, doctorID int64) (*domain.SyncResult, error)
}

type AppointmentService interface {
	Create(ctx context.Context, dto domain.CreateAppointmentDTO) (*domain.Appointment, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	Update(ctx context.Context, id int64, dto domain.UpdateAppointmentDTO) (*domain.Appointment, error)
	Cancel(ctx context.Context, id int64, reason string) (*domain.Appointment, error)
	Confirm(ctx context.Context, id int64) (*domain.Appointment, error)
	Complete(ctx context.Context, id int64, dto domain.CompleteAppointmentDTO) (*domain.Appointment, error)
	NoShow(ctx context.Context, id int64) (*domain.Appointment, error)
	List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error)
}
