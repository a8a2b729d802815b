package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agenda/config"
	"agenda/internal/calendar"
	"agenda/internal/domain"
	"agenda/internal/lock"
	"agenda/internal/notification"
	"agenda/internal/repository"
	"agenda/pkg/timezone"
	"agenda/pkg/validator"
)

// Формат локального времени в запросах на создание и перенос записи.
const dateTimeLayout = "2006-01-02 15:04"

type AppointmentServiceImpl struct {
	apptRepo     repository.AppointmentRepository
	doctorRepo   repository.DoctorRepository
	patientRepo  repository.PatientRepository
	availability AvailabilityService
	calendarSvc  CalendarService
	gateway      calendar.Gateway
	locker       lock.DoctorLocker
	notifier     notification.Notifier
	normalizer   *timezone.Normalizer
	cfg          config.AvailabilityConfig
	logger       *zap.Logger
}

func NewAppointmentService(
	apptRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
	availability AvailabilityService,
	calendarSvc CalendarService,
	gateway calendar.Gateway,
	locker lock.DoctorLocker,
	notifier notification.Notifier,
	normalizer *timezone.Normalizer,
	cfg config.AvailabilityConfig,
	logger *zap.Logger,
) *AppointmentServiceImpl {
	return &AppointmentServiceImpl{
		apptRepo:     apptRepo,
		doctorRepo:   doctorRepo,
		patientRepo:  patientRepo,
		availability: availability,
		calendarSvc:  calendarSvc,
		gateway:      gateway,
		locker:       locker,
		notifier:     notifier,
		normalizer:   normalizer,
		cfg:          cfg,
		logger:       logger,
	}
}

// Create бронирует слот. Проверка доступности и вставка выполняются под
// замком врача, чтобы конкурирующие запросы на один слот не прошли оба.
func (s *AppointmentServiceImpl) Create(ctx context.Context, dto domain.CreateAppointmentDTO) (*domain.Appointment, error) {
	patient, err := s.patientRepo.GetByID(ctx, dto.PatientID)
	if err != nil {
		return nil, err
	}
	doctor, err := s.doctorRepo.GetByID(ctx, dto.DoctorID)
	if err != nil {
		return nil, err
	}
	if !validator.ValidateDuration(dto.DurationMinutes, s.cfg.MaxDurationMinutes) {
		return nil, fmt.Errorf("%w: недопустимая длительность %d мин", domain.ErrValidation, dto.DurationMinutes)
	}
	if !domain.ValidAppointmentType(dto.Type) {
		return nil, fmt.Errorf("%w: неизвестный тип записи %q", domain.ErrValidation, dto.Type)
	}

	wall, err := time.Parse(dateTimeLayout, dto.DateTime)
	if err != nil {
		return nil, fmt.Errorf("%w: некорректная дата и время %q", domain.ErrValidation, dto.DateTime)
	}

	startUTC, bookingZone := s.normalize(doctor, wall)

	var created *domain.Appointment
	lockErr := s.locker.WithDoctorLock(ctx, doctor.ID, func(lockCtx context.Context) error {
		available, err := s.availability.CheckSlot(lockCtx, doctor, startUTC, dto.DurationMinutes, nil)
		if err != nil {
			return err
		}
		if !available {
			return fmt.Errorf("%w: врач занят в выбранное время", domain.ErrConflict)
		}

		patientID := dto.PatientID
		appointment := domain.Appointment{
			DoctorID:        doctor.ID,
			PatientID:       &patientID,
			DateTimeUTC:     startUTC,
			DurationMinutes: dto.DurationMinutes,
			Timezone:        bookingZone,
			Type:            dto.Type,
			Status:          domain.AppointmentStatusScheduled,
			Title:           fmt.Sprintf("Прием: %s %s", patient.FirstName, patient.LastName),
			Notes:           dto.Notes,
		}

		id, err := s.apptRepo.Create(lockCtx, appointment)
		if err != nil {
			return err
		}
		created, err = s.apptRepo.GetByID(lockCtx, id)
		return err
	})
	if lockErr != nil {
		if errors.Is(lockErr, lock.ErrLockNotAcquired) {
			return nil, fmt.Errorf("%w: врач уже бронируется, повторите запрос", domain.ErrConflict)
		}
		return nil, lockErr
	}

	s.mirrorCreate(ctx, doctor, patient, created)

	if err := s.notifier.AppointmentBooked(ctx, created.ID, patient.Email, created.DateTimeUTC); err != nil {
		s.logger.Warn("не удалось отправить уведомление о записи",
			zap.Int64("appointment_id", created.ID),
			zap.Error(err),
		)
	}

	return created, nil
}

func (s *AppointmentServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	return s.apptRepo.GetByID(ctx, id)
}

// Update меняет время, длительность, тип или заметки записи. Повторная
// проверка доступности при переносе включается конфигурацией.
func (s *AppointmentServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdateAppointmentDTO) (*domain.Appointment, error) {
	appointment, err := s.apptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status.Terminal() {
		return nil, fmt.Errorf("%w: запись в терминальном статусе %s", domain.ErrConflict, appointment.Status)
	}

	doctor, err := s.doctorRepo.GetByID(ctx, appointment.DoctorID)
	if err != nil {
		return nil, err
	}

	rescheduled := false
	if dto.DateTime != nil {
		wall, err := time.Parse(dateTimeLayout, *dto.DateTime)
		if err != nil {
			return nil, fmt.Errorf("%w: некорректная дата и время %q", domain.ErrValidation, *dto.DateTime)
		}
		startUTC, bookingZone := s.normalize(doctor, wall)
		appointment.DateTimeUTC = startUTC
		appointment.Timezone = bookingZone
		rescheduled = true
	}
	if dto.DurationMinutes != nil {
		if !validator.ValidateDuration(*dto.DurationMinutes, s.cfg.MaxDurationMinutes) {
			return nil, fmt.Errorf("%w: недопустимая длительность %d мин", domain.ErrValidation, *dto.DurationMinutes)
		}
		appointment.DurationMinutes = *dto.DurationMinutes
		rescheduled = true
	}
	if dto.Type != nil {
		if !domain.ValidAppointmentType(*dto.Type) {
			return nil, fmt.Errorf("%w: неизвестный тип записи %q", domain.ErrValidation, *dto.Type)
		}
		appointment.Type = *dto.Type
	}
	if dto.Notes != nil {
		appointment.Notes = *dto.Notes
	}

	if rescheduled && s.cfg.RevalidateOnUpdate {
		available, err := s.availability.CheckSlot(ctx, doctor, appointment.DateTimeUTC, appointment.DurationMinutes, &appointment.ID)
		if err != nil {
			return nil, err
		}
		if !available {
			return nil, fmt.Errorf("%w: врач занят в выбранное время", domain.ErrConflict)
		}
	}

	if err := s.apptRepo.Update(ctx, *appointment); err != nil {
		return nil, err
	}

	s.mirrorUpdate(ctx, doctor, appointment)

	return appointment, nil
}

// Cancel отменяет запись. При отмене позже допустимого срока начисляется
// штраф по тарифу врача.
func (s *AppointmentServiceImpl) Cancel(ctx context.Context, id int64, reason string) (*domain.Appointment, error) {
	appointment, err := s.apptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(appointment.Status, domain.AppointmentStatusCancelled) {
		return nil, fmt.Errorf("%w: запись в статусе %s нельзя отменить", domain.ErrConflict, appointment.Status)
	}

	doctor, err := s.doctorRepo.GetByID(ctx, appointment.DoctorID)
	if err != nil {
		return nil, err
	}

	hoursUntil := time.Until(appointment.DateTimeUTC).Hours()
	if hoursUntil < float64(doctor.CancellationNoticeHours) {
		penalty := doctor.CancellationPenaltyPct
		appointment.CancellationPenalty = &penalty
	}

	appointment.Status = domain.AppointmentStatusCancelled
	appointment.CancellationReason = &reason

	if err := s.apptRepo.Update(ctx, *appointment); err != nil {
		return nil, err
	}

	s.mirrorDelete(ctx, doctor, appointment)
	s.notifyCancelled(ctx, appointment, reason)

	return appointment, nil
}

func (s *AppointmentServiceImpl) Confirm(ctx context.Context, id int64) (*domain.Appointment, error) {
	return s.transition(ctx, id, domain.AppointmentStatusConfirmed, nil)
}

// Complete закрывает подтвержденную запись и сохраняет итог приема.
func (s *AppointmentServiceImpl) Complete(ctx context.Context, id int64, dto domain.CompleteAppointmentDTO) (*domain.Appointment, error) {
	return s.transition(ctx, id, domain.AppointmentStatusCompleted, func(appointment *domain.Appointment) {
		if dto.Diagnosis != "" {
			appointment.Diagnosis = &dto.Diagnosis
		}
		if dto.Recommendations != "" {
			appointment.Recommendations = &dto.Recommendations
		}
	})
}

func (s *AppointmentServiceImpl) NoShow(ctx context.Context, id int64) (*domain.Appointment, error) {
	return s.transition(ctx, id, domain.AppointmentStatusNoShow, nil)
}

func (s *AppointmentServiceImpl) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error) {
	return s.calendarSvc.ListAuthoritative(ctx, filter)
}

func (s *AppointmentServiceImpl) transition(ctx context.Context, id int64, to domain.AppointmentStatus, apply func(*domain.Appointment)) (*domain.Appointment, error) {
	appointment, err := s.apptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(appointment.Status, to) {
		return nil, fmt.Errorf("%w: переход %s -> %s недопустим", domain.ErrConflict, appointment.Status, to)
	}

	appointment.Status = to
	if apply != nil {
		apply(appointment)
	}

	if err := s.apptRepo.Update(ctx, *appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

// normalize переводит настенное время в UTC по зоне врача. Неизвестная зона
// заменяется зоной по умолчанию, в записи сохраняется фактически
// примененная зона.
func (s *AppointmentServiceImpl) normalize(doctor *domain.Doctor, wall time.Time) (time.Time, string) {
	startUTC, substituted := s.normalizer.ToUTC(wall, doctor.Timezone)
	zone := doctor.Timezone
	if substituted {
		zone = s.normalizer.Default()
		s.logger.Warn("неподдерживаемая временная зона врача, используется зона по умолчанию",
			zap.Int64("doctor_id", doctor.ID),
			zap.String("timezone", doctor.Timezone),
			zap.String("substituted", zone),
		)
	}
	return startUTC, zone
}

// mirrorCreate создает зеркальное событие во внешнем календаре. Ошибки не
// прерывают бронирование: зеркало догонит следующая синхронизация.
func (s *AppointmentServiceImpl) mirrorCreate(ctx context.Context, doctor *domain.Doctor, patient *domain.Patient, appointment *domain.Appointment) {
	if s.gateway == nil || !doctor.HasCalendar() {
		return
	}

	input := calendar.EventInput{
		Title:       appointment.Title,
		Description: appointment.Notes,
		Start:       appointment.DateTimeUTC,
		End:         appointment.End(),
		Attendees:   []string{patient.Email},
		UID:         uuid.NewString(),
	}
	event, err := s.gateway.CreateEvent(ctx, doctor.CalendarRef(), input)
	if err != nil {
		s.logger.Error("не удалось создать зеркальное событие в календаре",
			zap.Int64("appointment_id", appointment.ID),
			zap.Error(err),
		)
		return
	}

	eventID := event.ID
	calendarID := event.CalendarID
	appointment.ExternalEventID = &eventID
	appointment.ExternalCalendarID = &calendarID
	if err := s.apptRepo.Update(ctx, *appointment); err != nil {
		s.logger.Error("не удалось сохранить ссылку на зеркальное событие",
			zap.Int64("appointment_id", appointment.ID),
			zap.Error(err),
		)
	}
}

func (s *AppointmentServiceImpl) mirrorUpdate(ctx context.Context, doctor *domain.Doctor, appointment *domain.Appointment) {
	if s.gateway == nil || !doctor.HasCalendar() || appointment.ExternalEventID == nil {
		return
	}

	input := calendar.EventInput{
		Title:       appointment.Title,
		Description: appointment.Notes,
		Start:       appointment.DateTimeUTC,
		End:         appointment.End(),
	}
	if err := s.gateway.UpdateEvent(ctx, doctor.CalendarRef(), *appointment.ExternalEventID, input); err != nil {
		s.logger.Error("не удалось обновить зеркальное событие в календаре",
			zap.Int64("appointment_id", appointment.ID),
			zap.Error(err),
		)
	}
}

func (s *AppointmentServiceImpl) mirrorDelete(ctx context.Context, doctor *domain.Doctor, appointment *domain.Appointment) {
	if s.gateway == nil || !doctor.HasCalendar() || appointment.ExternalEventID == nil {
		return
	}

	if err := s.gateway.DeleteEvent(ctx, doctor.CalendarRef(), *appointment.ExternalEventID); err != nil {
		s.logger.Error("не удалось удалить зеркальное событие из календаря",
			zap.Int64("appointment_id", appointment.ID),
			zap.Error(err),
		)
	}
}

func (s *AppointmentServiceImpl) notifyCancelled(ctx context.Context, appointment *domain.Appointment, reason string) {
	if appointment.PatientID == nil {
		return
	}
	patient, err := s.patientRepo.GetByID(ctx, *appointment.PatientID)
	if err != nil {
		s.logger.Warn("пациент для уведомления не найден",
			zap.Int64("appointment_id", appointment.ID),
			zap.Error(err),
		)
		return
	}
	if err := s.notifier.AppointmentCancelled(ctx, appointment.ID, patient.Email, reason); err != nil {
		s.logger.Warn("не удалось отправить уведомление об отмене",
			zap.Int64("appointment_id", appointment.ID),
			zap.Error(err),
		)
	}
}
