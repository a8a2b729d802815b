package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"agenda/config"
	"agenda/internal/calendar"
	"agenda/internal/domain"
	"agenda/internal/repository"
	"agenda/pkg/timezone"
	"agenda/pkg/validator"
)

// AvailabilityServiceImpl проверяет доступность слота в три этапа:
// рабочие часы врача, пересечения с локальными записями и занятость
// во внешнем календаре.
type AvailabilityServiceImpl struct {
	apptRepo   repository.AppointmentRepository
	doctorRepo repository.DoctorRepository
	gateway    calendar.Gateway
	normalizer *timezone.Normalizer
	cfg        config.AvailabilityConfig
	logger     *zap.Logger
}

func NewAvailabilityService(
	apptRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	gateway calendar.Gateway,
	normalizer *timezone.Normalizer,
	cfg config.AvailabilityConfig,
	logger *zap.Logger,
) *AvailabilityServiceImpl {
	return &AvailabilityServiceImpl{
		apptRepo:   apptRepo,
		doctorRepo: doctorRepo,
		gateway:    gateway,
		normalizer: normalizer,
		cfg:        cfg,
		logger:     logger,
	}
}

func (s *AvailabilityServiceImpl) IsAvailable(ctx context.Context, doctorID int64, startUTC time.Time, durationMinutes int) (bool, error) {
	doctor, err := s.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		return false, err
	}
	return s.CheckSlot(ctx, doctor, startUTC, durationMinutes, nil)
}

// CheckSlot выполняет трехэтапную проверку для уже загруженного врача.
// excludeID исключает запись из проверки пересечений при переносе.
func (s *AvailabilityServiceImpl) CheckSlot(ctx context.Context, doctor *domain.Doctor, startUTC time.Time, durationMinutes int, excludeID *int64) (bool, error) {
	if !validator.ValidateDuration(durationMinutes, s.cfg.MaxDurationMinutes) {
		return false, fmt.Errorf("%w: недопустимая длительность %d мин", domain.ErrValidation, durationMinutes)
	}

	if !s.withinWorkingHours(doctor, startUTC, durationMinutes) {
		return false, nil
	}

	endUTC := startUTC.Add(time.Duration(durationMinutes) * time.Minute)
	overlapping, err := s.apptRepo.FindOverlapping(ctx, doctor.ID, startUTC, endUTC, excludeID)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки пересечений: %w", err)
	}
	if len(overlapping) > 0 {
		return false, nil
	}

	return s.checkExternalBusy(ctx, doctor, startUTC, endUTC)
}

// withinWorkingHours проверяет, что слот целиком попадает в рабочее окно
// врача в его локальной временной зоне.
func (s *AvailabilityServiceImpl) withinWorkingHours(doctor *domain.Doctor, startUTC time.Time, durationMinutes int) bool {
	local, substituted := s.normalizer.ToZone(startUTC, doctor.Timezone)
	if substituted {
		s.logger.Warn("неподдерживаемая временная зона врача, используется зона по умолчанию",
			zap.Int64("doctor_id", doctor.ID),
			zap.String("timezone", doctor.Timezone),
		)
	}

	day, ok := doctor.WorkingHours.ForWeekday(local.Weekday())
	if !ok || !day.Available {
		return false
	}

	dayStart, ok := validator.ParseWallClock(day.Start)
	if !ok {
		s.logger.Error("некорректное рабочее время врача",
			zap.Int64("doctor_id", doctor.ID),
			zap.String("start", day.Start),
		)
		return false
	}
	dayEnd, ok := validator.ParseWallClock(day.End)
	if !ok {
		s.logger.Error("некорректное рабочее время врача",
			zap.Int64("doctor_id", doctor.ID),
			zap.String("end", day.End),
		)
		return false
	}

	slotStart := local.Hour()*60 + local.Minute()
	slotEnd := slotStart + durationMinutes

	return slotStart >= dayStart && slotEnd <= dayEnd
}

// checkExternalBusy опрашивает внешний календарь врача. При недоступности
// календаря поведение зависит от режима: fail-open пропускает слот,
// fail-closed возвращает ошибку.
func (s *AvailabilityServiceImpl) checkExternalBusy(ctx context.Context, doctor *domain.Doctor, startUTC, endUTC time.Time) (bool, error) {
	if s.gateway == nil || !doctor.HasCalendar() {
		return true, nil
	}

	busy, err := s.gateway.FreeBusy(ctx, doctor.CalendarRef(), startUTC, endUTC)
	if err != nil {
		if s.cfg.FailOpen {
			s.logger.Warn("внешний календарь недоступен, слот считается свободным",
				zap.Int64("doctor_id", doctor.ID),
				zap.Error(err),
			)
			return true, nil
		}
		return false, fmt.Errorf("%w: %s", domain.ErrExternalService, err.Error())
	}

	for _, interval := range busy {
		if domain.IntervalsOverlap(startUTC, endUTC, interval.Start, interval.End) {
			return false, nil
		}
	}
	return true, nil
}
