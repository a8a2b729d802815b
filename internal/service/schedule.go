package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"agenda/config"
	"agenda/internal/domain"
	"agenda/internal/repository"
	"agenda/pkg/timezone"
	"agenda/pkg/validator"
)

// Окно запроса расписания ограничено месяцем, чтобы не перебирать
// произвольно длинные интервалы.
const maxAvailabilityRangeDays = 31

type ScheduleServiceImpl struct {
	apptRepo   repository.AppointmentRepository
	doctorRepo repository.DoctorRepository
	normalizer *timezone.Normalizer
	cfg        config.AvailabilityConfig
	logger     *zap.Logger
}

func NewScheduleService(
	apptRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	normalizer *timezone.Normalizer,
	cfg config.AvailabilityConfig,
	logger *zap.Logger,
) *ScheduleServiceImpl {
	return &ScheduleServiceImpl{
		apptRepo:   apptRepo,
		doctorRepo: doctorRepo,
		normalizer: normalizer,
		cfg:        cfg,
		logger:     logger,
	}
}

// GetFreeSlots возвращает сетку слотов врача на локальную дату. Шаг сетки
// фиксированный, слот, не помещающийся целиком в рабочее окно, отбрасывается.
func (s *ScheduleServiceImpl) GetFreeSlots(ctx context.Context, doctorID int64, date string, durationMinutes int) ([]domain.Slot, error) {
	if !validator.ValidateDate(date) {
		return nil, fmt.Errorf("%w: некорректная дата %q", domain.ErrValidation, date)
	}
	if !validator.ValidateDuration(durationMinutes, s.cfg.MaxDurationMinutes) {
		return nil, fmt.Errorf("%w: недопустимая длительность %d мин", domain.ErrValidation, durationMinutes)
	}

	doctor, err := s.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	day, _ := time.Parse("2006-01-02", date)
	return s.slotsForDay(ctx, doctor, day, durationMinutes)
}

// GetDoctorAvailability строит сетку слотов на диапазон дат включительно.
func (s *ScheduleServiceImpl) GetDoctorAvailability(ctx context.Context, doctorID int64, startDate, endDate string) ([]domain.Slot, error) {
	if !validator.ValidateDate(startDate) || !validator.ValidateDate(endDate) {
		return nil, fmt.Errorf("%w: некорректный диапазон дат", domain.ErrValidation)
	}

	from, _ := time.Parse("2006-01-02", startDate)
	to, _ := time.Parse("2006-01-02", endDate)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: конец диапазона раньше начала", domain.ErrValidation)
	}
	if to.Sub(from) > maxAvailabilityRangeDays*24*time.Hour {
		return nil, fmt.Errorf("%w: диапазон превышает %d дней", domain.ErrValidation, maxAvailabilityRangeDays)
	}

	doctor, err := s.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	slots := make([]domain.Slot, 0)
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		daySlots, err := s.slotsForDay(ctx, doctor, day, s.cfg.SlotStepMinutes)
		if err != nil {
			return nil, err
		}
		slots = append(slots, daySlots...)
	}
	return slots, nil
}

// slotsForDay генерирует сетку на одну локальную дату врача. Занятость
// проверяется по локальным записям, загруженным одним запросом на день.
func (s *ScheduleServiceImpl) slotsForDay(ctx context.Context, doctor *domain.Doctor, day time.Time, durationMinutes int) ([]domain.Slot, error) {
	loc, substituted := s.normalizer.Resolve(doctor.Timezone)
	if substituted {
		s.logger.Warn("неподдерживаемая временная зона врача, используется зона по умолчанию",
			zap.Int64("doctor_id", doctor.ID),
			zap.String("timezone", doctor.Timezone),
		)
	}

	localMidnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	working, ok := doctor.WorkingHours.ForWeekday(localMidnight.Weekday())
	if !ok || !working.Available {
		return []domain.Slot{}, nil
	}

	dayStart, ok := validator.ParseWallClock(working.Start)
	if !ok {
		return []domain.Slot{}, nil
	}
	dayEnd, ok := validator.ParseWallClock(working.End)
	if !ok || dayEnd <= dayStart {
		return []domain.Slot{}, nil
	}

	// Границы окна строятся как настенное время врача, чтобы переходы
	// на летнее время не сдвигали рабочие часы.
	windowStart := time.Date(day.Year(), day.Month(), day.Day(), dayStart/60, dayStart%60, 0, 0, loc).UTC()
	windowEnd := time.Date(day.Year(), day.Month(), day.Day(), dayEnd/60, dayEnd%60, 0, 0, loc).UTC()

	booked, err := s.apptRepo.FindOverlapping(ctx, doctor.ID, windowStart, windowEnd, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки записей на день: %w", err)
	}

	step := time.Duration(s.cfg.SlotStepMinutes) * time.Minute
	slotLen := time.Duration(durationMinutes) * time.Minute

	slots := make([]domain.Slot, 0)
	for cur := windowStart; !cur.Add(slotLen).After(windowEnd); cur = cur.Add(step) {
		slotEnd := cur.Add(slotLen)
		available := true
		for i := range booked {
			if domain.IntervalsOverlap(cur, slotEnd, booked[i].Start(), booked[i].End()) {
				available = false
				break
			}
		}
		slots = append(slots, domain.Slot{Start: cur, End: slotEnd, Available: available})
	}
	return slots, nil
}
