package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"agenda/config"
	"agenda/internal/calendar"
	"agenda/internal/domain"
	"agenda/internal/repository"
	"agenda/internal/storage"
)

// CalendarServiceImpl сверяет локальные записи с внешним календарем.
// Внешний календарь является источником истины: при чтении его события
// перекрывают локальные поля, при синхронизации расхождения записываются
// в локальное хранилище.
type CalendarServiceImpl struct {
	apptRepo   repository.AppointmentRepository
	doctorRepo repository.DoctorRepository
	gateway    calendar.Gateway
	reports    storage.ReportStorage
	cfg        config.SyncConfig
	logger     *zap.Logger
}

func NewCalendarService(
	apptRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	gateway calendar.Gateway,
	reports storage.ReportStorage,
	cfg config.SyncConfig,
	logger *zap.Logger,
) *CalendarServiceImpl {
	return &CalendarServiceImpl{
		apptRepo:   apptRepo,
		doctorRepo: doctorRepo,
		gateway:    gateway,
		reports:    reports,
		cfg:        cfg,
		logger:     logger,
	}
}

// ListAuthoritative возвращает список записей врача, сверенный с внешним
// календарем. Если календарь недоступен или не подключен, список строится
// по локальному хранилищу.
func (s *CalendarServiceImpl) ListAuthoritative(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error) {
	doctor, err := s.doctorRepo.GetByID(ctx, filter.DoctorID)
	if err != nil {
		return nil, 0, err
	}

	if s.gateway == nil || !doctor.HasCalendar() {
		return s.listLocal(ctx, filter)
	}

	from, to := s.window(filter)
	items, err := s.gateway.ListEvents(ctx, doctor.CalendarRef(), from, to)
	if err != nil {
		s.logger.Warn("внешний календарь недоступен, список строится по локальному хранилищу",
			zap.Int64("doctor_id", doctor.ID),
			zap.Error(err),
		)
		return s.listLocal(ctx, filter)
	}

	// Пустой ответ календаря означает не «записей нет», а «календарь молчит»:
	// незазеркаленные локальные записи обязаны остаться в выдаче.
	if len(items) == 0 {
		return s.listLocal(ctx, filter)
	}

	merged := make([]domain.Appointment, 0, len(items))
	for _, item := range items {
		if item.Err != nil {
			s.logger.Warn("событие календаря пропущено",
				zap.Int64("doctor_id", doctor.ID),
				zap.Error(item.Err),
			)
			continue
		}
		event := item.Event
		if event.Cancelled() {
			continue
		}

		appt, err := s.projectEvent(ctx, doctor, event)
		if err != nil {
			s.logger.Warn("не удалось сопоставить событие календаря",
				zap.Int64("doctor_id", doctor.ID),
				zap.String("event_id", event.ID),
				zap.Error(err),
			)
			continue
		}
		if matchesFilter(appt, filter) {
			merged = append(merged, *appt)
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].DateTimeUTC.Before(merged[j].DateTimeUTC)
	})

	total := len(merged)
	return paginate(merged, filter.Offset, filter.Limit), total, nil
}

// Sync приводит локальное хранилище в соответствие с внешним календарем
// врача в пределах окна синхронизации. Ошибки отдельных событий собираются
// в отчет и не прерывают обход.
func (s *CalendarServiceImpl) Sync(ctx context.Context, doctorID int64) (*domain.SyncResult, error) {
	doctor, err := s.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if s.gateway == nil || !doctor.HasCalendar() {
		return nil, fmt.Errorf("%w: у врача не подключен внешний календарь", domain.ErrValidation)
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -s.cfg.WindowPastDays)
	to := now.AddDate(0, 0, s.cfg.WindowFutureDays)

	items, err := s.gateway.ListEvents(ctx, doctor.CalendarRef(), from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrExternalService, err.Error())
	}

	result := &domain.SyncResult{
		DoctorID: doctor.ID,
		Errors:   make([]string, 0),
		SyncedAt: now,
	}

	for _, item := range items {
		result.TotalEvents++
		if item.Err != nil {
			result.Errors = append(result.Errors, item.Err.Error())
			continue
		}
		if err := s.syncEvent(ctx, doctor, item.Event, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("событие %s: %s", item.Event.ID, err.Error()))
		}
	}

	if err := s.doctorRepo.UpdateCalendarSyncedAt(ctx, doctor.ID, now); err != nil {
		s.logger.Error("не удалось сохранить отметку синхронизации",
			zap.Int64("doctor_id", doctor.ID),
			zap.Error(err),
		)
		result.Errors = append(result.Errors, fmt.Sprintf("отметка синхронизации: %s", err.Error()))
	}

	s.uploadReport(ctx, result)

	s.logger.Info("синхронизация календаря завершена",
		zap.Int64("doctor_id", doctor.ID),
		zap.Int("total_events", result.TotalEvents),
		zap.Int("new", result.NewAppointments),
		zap.Int("updated", result.UpdatedAppointments),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// syncEvent обрабатывает одно событие: создает локальную запись-оболочку
// для неизвестного события или обновляет существующую при расхождении.
func (s *CalendarServiceImpl) syncEvent(ctx context.Context, doctor *domain.Doctor, event domain.ExternalCalendarEvent, result *domain.SyncResult) error {
	local, err := s.apptRepo.GetByExternalEventID(ctx, doctor.ID, event.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if local == nil {
		if event.Cancelled() {
			return nil
		}
		duration := event.DurationMinutes()
		if duration <= 0 {
			return fmt.Errorf("некорректная длительность события")
		}
		eventID := event.ID
		calendarID := event.CalendarID
		shell := domain.Appointment{
			DoctorID:           doctor.ID,
			PatientID:          nil,
			DateTimeUTC:        event.Start,
			DurationMinutes:    duration,
			Timezone:           doctor.Timezone,
			Type:               domain.AppointmentTypePresential,
			Status:             domain.AppointmentStatusScheduled,
			Title:              event.Title,
			Notes:              event.Description,
			ExternalEventID:    &eventID,
			ExternalCalendarID: &calendarID,
		}
		if _, err := s.apptRepo.Create(ctx, shell); err != nil {
			return err
		}
		result.NewAppointments++
		return nil
	}

	// Терминальные записи не переписываются: их статус окончателен даже
	// если событие в календаре продолжает меняться.
	if local.Status.Terminal() {
		return nil
	}

	if event.Cancelled() {
		reason := "событие отменено во внешнем календаре"
		local.Status = domain.AppointmentStatusCancelled
		local.CancellationReason = &reason
		if err := s.apptRepo.Update(ctx, *local); err != nil {
			return err
		}
		result.UpdatedAppointments++
		return nil
	}

	changed := false
	if !local.DateTimeUTC.Equal(event.Start) {
		local.DateTimeUTC = event.Start
		changed = true
	}
	if duration := event.DurationMinutes(); duration > 0 && duration != local.DurationMinutes {
		local.DurationMinutes = duration
		changed = true
	}
	if event.Title != "" && event.Title != local.Title {
		local.Title = event.Title
		changed = true
	}
	if event.Description != "" && event.Description != local.Notes {
		local.Notes = event.Description
		changed = true
	}
	if !changed {
		return nil
	}

	if err := s.apptRepo.Update(ctx, *local); err != nil {
		return err
	}
	result.UpdatedAppointments++
	return nil
}

// projectEvent строит проекцию записи для выдачи наружу: локальная запись
// обогащается полями события, для неизвестного события возвращается
// оболочка без локального идентификатора.
func (s *CalendarServiceImpl) projectEvent(ctx context.Context, doctor *domain.Doctor, event domain.ExternalCalendarEvent) (*domain.Appointment, error) {
	local, err := s.apptRepo.GetByExternalEventID(ctx, doctor.ID, event.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if local != nil {
		projected := *local
		projected.DateTimeUTC = event.Start
		if duration := event.DurationMinutes(); duration > 0 {
			projected.DurationMinutes = duration
		}
		if event.Title != "" {
			projected.Title = event.Title
		}
		return &projected, nil
	}

	eventID := event.ID
	calendarID := event.CalendarID
	return &domain.Appointment{
		DoctorID:           doctor.ID,
		DateTimeUTC:        event.Start,
		DurationMinutes:    event.DurationMinutes(),
		Timezone:           doctor.Timezone,
		Type:               domain.AppointmentTypePresential,
		Status:             domain.AppointmentStatusScheduled,
		Title:              event.Title,
		Notes:              event.Description,
		ExternalEventID:    &eventID,
		ExternalCalendarID: &calendarID,
	}, nil
}

func (s *CalendarServiceImpl) listLocal(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error) {
	appointments, err := s.apptRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.apptRepo.CountByFilter(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return appointments, total, nil
}

// window определяет интервал запроса событий: границы фильтра, если заданы,
// иначе окно синхронизации вокруг текущего момента.
func (s *CalendarServiceImpl) window(filter domain.AppointmentFilter) (time.Time, time.Time) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -s.cfg.WindowPastDays)
	to := now.AddDate(0, 0, s.cfg.WindowFutureDays)
	if filter.StartDate != nil {
		from = *filter.StartDate
	}
	if filter.EndDate != nil {
		to = *filter.EndDate
	}
	return from, to
}

func (s *CalendarServiceImpl) uploadReport(ctx context.Context, result *domain.SyncResult) {
	if s.reports == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		s.logger.Error("не удалось сериализовать отчет синхронизации", zap.Error(err))
		return
	}
	objectName := fmt.Sprintf("sync-reports/doctor-%d/%s.json", result.DoctorID, result.SyncedAt.Format("20060102T150405Z"))
	location, err := s.reports.UploadReport(ctx, data, objectName)
	if err != nil {
		s.logger.Warn("не удалось выгрузить отчет синхронизации", zap.Error(err))
		return
	}
	s.logger.Info("отчет синхронизации сохранен", zap.String("location", location))
}

func matchesFilter(appt *domain.Appointment, filter domain.AppointmentFilter) bool {
	if filter.PatientID != nil {
		if appt.PatientID == nil || *appt.PatientID != *filter.PatientID {
			return false
		}
	}
	if filter.Status != nil && appt.Status != *filter.Status {
		return false
	}
	if filter.StartDate != nil && appt.DateTimeUTC.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && !appt.DateTimeUTC.Before(*filter.EndDate) {
		return false
	}
	return true
}

func paginate(appointments []domain.Appointment, offset, limit int) []domain.Appointment {
	if offset >= len(appointments) {
		return []domain.Appointment{}
	}
	end := len(appointments)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return appointments[offset:end]
}
