package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"agenda/internal/domain"
	"agenda/internal/lock"
)

type deniedLocker struct{}

func (deniedLocker) WithDoctorLock(_ context.Context, _ int64, _ func(ctx context.Context) error) error {
	return lock.ErrLockNotAcquired
}

type lifecycleFixture struct {
	apptRepo   *fakeAppointmentRepo
	doctorRepo *fakeDoctorRepo
	gateway    *fakeGateway
	notifier   *fakeNotifier
	svc        *AppointmentServiceImpl
}

func newLifecycleFixture(t *testing.T, withCalendar bool, locker lock.DoctorLocker) *lifecycleFixture {
	t.Helper()

	apptRepo := newFakeAppointmentRepo()
	doctorRepo := newFakeDoctorRepo(testDoctor(1, withCalendar))
	patientRepo := newFakePatientRepo(testPatient(7))
	gateway := newFakeGateway()
	notifier := &fakeNotifier{}
	cfg := testConfig()
	normalizer := testNormalizer()

	availability := NewAvailabilityService(apptRepo, doctorRepo, gateway, normalizer, cfg, testLogger)
	calendarSvc := newCalendarForTest(apptRepo, doctorRepo, gateway, nil)

	if locker == nil {
		locker = lock.NoopLocker{}
	}

	svc := NewAppointmentService(
		apptRepo, doctorRepo, patientRepo,
		availability, calendarSvc, gateway,
		locker, notifier, normalizer, cfg, testLogger,
	)

	return &lifecycleFixture{
		apptRepo:   apptRepo,
		doctorRepo: doctorRepo,
		gateway:    gateway,
		notifier:   notifier,
		svc:        svc,
	}
}

func TestCreateAppointment(t *testing.T) {
	f := newLifecycleFixture(t, true, nil)

	// 2027-01-12 — вторник, 10:00 в рабочих часах Сантьяго.
	created, err := f.svc.Create(context.Background(), domain.CreateAppointmentDTO{
		PatientID:       7,
		DoctorID:        1,
		DateTime:        "2027-01-12 10:00",
		DurationMinutes: 60,
		Type:            domain.AppointmentTypePresential,
		Notes:           "первичный прием",
	})
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if created.ID == 0 {
		t.Error("запись должна получить идентификатор")
	}
	if created.Status != domain.AppointmentStatusScheduled {
		t.Errorf("статус %s, ожидался scheduled", created.Status)
	}
	if created.PatientID == nil || *created.PatientID != 7 {
		t.Error("пациент не привязан")
	}
	if created.Timezone != "America/Santiago" {
		t.Errorf("зона бронирования %q", created.Timezone)
	}

	want := santiagoUTC(t, 2027, time.January, 12, 10, 0)
	if !created.DateTimeUTC.Equal(want) {
		t.Errorf("время %v, ожидалось %v", created.DateTimeUTC, want)
	}

	// Зеркальное событие создано, ссылка сохранена.
	if len(f.gateway.created) != 1 {
		t.Fatalf("зеркальных событий %d, ожидалось 1", len(f.gateway.created))
	}
	stored, _ := f.apptRepo.GetByID(context.Background(), created.ID)
	if stored.ExternalEventID == nil || *stored.ExternalEventID == "" {
		t.Error("ссылка на зеркальное событие не сохранена")
	}

	if len(f.notifier.booked) != 1 {
		t.Error("уведомление о записи не отправлено")
	}
}

func TestCreateAppointmentConflict(t *testing.T) {
	f := newLifecycleFixture(t, false, nil)
	ctx := context.Background()

	dto := domain.CreateAppointmentDTO{
		PatientID:       7,
		DoctorID:        1,
		DateTime:        "2027-01-12 10:00",
		DurationMinutes: 60,
		Type:            domain.AppointmentTypeRemote,
	}
	if _, err := f.svc.Create(ctx, dto); err != nil {
		t.Fatalf("первая запись должна пройти: %v", err)
	}

	dto.DateTime = "2027-01-12 10:30"
	if _, err := f.svc.Create(ctx, dto); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("ожидалась ErrConflict, получено: %v", err)
	}
}

func TestCreateAppointmentOutsideWorkingHours(t *testing.T) {
	f := newLifecycleFixture(t, false, nil)

	_, err := f.svc.Create(context.Background(), domain.CreateAppointmentDTO{
		PatientID:       7,
		DoctorID:        1,
		DateTime:        "2027-01-12 20:00",
		DurationMinutes: 60,
		Type:            domain.AppointmentTypePresential,
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("ожидалась ErrConflict, получено: %v", err)
	}
}

func TestCreateAppointmentValidation(t *testing.T) {
	f := newLifecycleFixture(t, false, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		dto  domain.CreateAppointmentDTO
		want error
	}{
		{
			"неизвестный пациент",
			domain.CreateAppointmentDTO{PatientID: 99, DoctorID: 1, DateTime: "2027-01-12 10:00", DurationMinutes: 60, Type: domain.AppointmentTypePresential},
			domain.ErrNotFound,
		},
		{
			"неизвестный врач",
			domain.CreateAppointmentDTO{PatientID: 7, DoctorID: 99, DateTime: "2027-01-12 10:00", DurationMinutes: 60, Type: domain.AppointmentTypePresential},
			domain.ErrNotFound,
		},
		{
			"некорректная дата",
			domain.CreateAppointmentDTO{PatientID: 7, DoctorID: 1, DateTime: "12.01.2027 10:00", DurationMinutes: 60, Type: domain.AppointmentTypePresential},
			domain.ErrValidation,
		},
		{
			"нулевая длительность",
			domain.CreateAppointmentDTO{PatientID: 7, DoctorID: 1, DateTime: "2027-01-12 10:00", DurationMinutes: 0, Type: domain.AppointmentTypePresential},
			domain.ErrValidation,
		},
		{
			"неизвестный тип",
			domain.CreateAppointmentDTO{PatientID: 7, DoctorID: 1, DateTime: "2027-01-12 10:00", DurationMinutes: 60, Type: "телепатия"},
			domain.ErrValidation,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Create(ctx, tc.dto); !errors.Is(err, tc.want) {
				t.Errorf("ожидалась %v, получено: %v", tc.want, err)
			}
		})
	}
}

func TestCreateAppointmentLockBusy(t *testing.T) {
	f := newLifecycleFixture(t, false, deniedLocker{})

	_, err := f.svc.Create(context.Background(), domain.CreateAppointmentDTO{
		PatientID:       7,
		DoctorID:        1,
		DateTime:        "2027-01-12 10:00",
		DurationMinutes: 60,
		Type:            domain.AppointmentTypePresential,
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("занятый замок должен давать ErrConflict, получено: %v", err)
	}
}

func TestUpdateAppointmentReschedule(t *testing.T) {
	f := newLifecycleFixture(t, false, nil)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, domain.CreateAppointmentDTO{
		PatientID:       7,
		DoctorID:        1,
		DateTime:        "2027-01-12 10:00",
		DurationMinutes: 60,
		Type:            domain.AppointmentTypePresential,
	})
	if err != nil {
		t.Fatalf("подготовка записи: %v", err)
	}

	newTime := "2027-01-12 14:00"
	updated, err := f.svc.Update(ctx, created.ID, domain.UpdateAppointmentDTO{DateTime: &newTime})
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	want := santiagoUTC(t, 2027, time.January, 12, 14, 0)
	if !updated.DateTimeUTC.Equal(want) {
		t.Errorf("время %v, ожидалось %v", updated.DateTimeUTC, want)
	}
}

func TestUpdateAppointmentSameSlotNotConflicting(t *testing.T) {
	f := newLifecycleFixture(t, false, nil)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, domain.CreateAppointmentDTO{
		PatientID:       7,
		DoctorID:        1,
		DateTime:        "2027-01-12 10:00",
		DurationMinutes: 60,
		Type:            domain.AppointmentTypePresential,
	})
	if err != nil {
		t.Fatalf("подготовка записи: %v", err)
	}

	// Перенос на полчаса внутри собственного интервала: запись не должна
	// конфликтовать сама с собой.
	newTime := "2027-01-12 10:30"
	if _, err := f.svc.Update(ctx, created.ID, domain.UpdateAppointmentDTO{DateTime: &newTime}); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
}

func TestUpdateAppointmentRescheduleConflict(t *testing.T) {
	f := newLifecycleFixture(t, false, nil)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, domain.CreateAppointmentDTO{
		PatientID:       7,
		DoctorID:        1,
		DateTime:        "2027-01-12 10:00",
		DurationMinutes: 60,
		Type:            domain.AppointmentTypePresential,
	})
	if err != nil {
		t.Fatalf("подготовка записи: %v", err)
	}
	if _, err := f.svc.Create(ctx, domain.CreateAppointmentDTO{
		PatientID:       7,
		DoctorID:        1,
		DateTime:        "2027-01-12 14:00",
		DurationMinutes: 60,
		Type:            domain.AppointmentTypePresential,
	}); err != nil {
		t.Fatalf("подготовка записи: %v", err)
	}

	newTime := "2027-01-12 14:30"
	if _, err := f.svc.Update(ctx, first.ID, domain.UpdateAppointmentDTO{DateTime: &newTime}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("ожидалась ErrConflict, получено: %v", err)
	}
}

func TestUpdateTerminalAppointment(t *testing.T) {
	f := newLifecycleFixture(t, false, nil)
	ctx := context.Background()

	id, err := f.apptRepo.Create(ctx, domain.Appointment{
		DoctorID:        1,
		DateTimeUTC:     time.Now().UTC().Add(72 * time.Hour),
		DurationMinutes: 60,
		Status:          domain.AppointmentStatusCancelled,
	})
	if err != nil {
		t.Fatalf("подготовка записи: %v", err)
	}

	notes := "поздно"
	if _, err := f.svc.Update(ctx, id, domain.UpdateAppointmentDTO{Notes: &notes}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("ожидалась ErrConflict, получено: %v", err)
	}
}

func TestCancelWithPenalty(t *testing.T) {
	f := newLifecycleFixture(t, true, nil)
	ctx := context.Background()

	// Запись через два часа: меньше суточного срока предупреждения.
	patientID := int64(7)
	eventID := "ev-1"
	id, err := f.apptRepo.Create(ctx, domain.Appointment{
		DoctorID:        1,
		PatientID:       &patientID,
		DateTimeUTC:     time.Now().UTC().Add(2 * time.Hour),
		DurationMinutes: 60,
		Status:          domain.AppointmentStatusConfirmed,
		ExternalEventID: &eventID,
	})
	if err != nil {
		t.Fatalf("подготовка записи: %v", err)
	}

	cancelled, err := f.svc.Cancel(ctx, id, "семейные обстоятельства")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if cancelled.Status != domain.AppointmentStatusCancelled {
		t.Errorf("статус %s", cancelled.Status)
	}
	if cancelled.CancellationPenalty == nil || *cancelled.CancellationPenalty != 50 {
		t.Error("штраф за позднюю отмену не начислен")
	}
	if cancelled.CancellationReason == nil || *cancelled.CancellationReason != "семейные обстоятельства" {
		t.Error("причина отмены не сохранена")
	}

	if len(f.gateway.deleted) != 1 || f.gateway.deleted[0] != "ev-1" {
		t.Error("зеркальное событие не удалено")
	}
	if len(f.notifier.cancelled) != 1 {
		t.Error("уведомление об отмене не отправлено")
	}
}

func TestCancelWithoutPenalty(t *testing.T) {
	f := newLifecycleFixture(t, false, nil)
	ctx := context.Background()

	patientID := int64(7)
	id, err := f.apptRepo.Create(ctx, domain.Appointment{
		DoctorID:        1,
		PatientID:       &patientID,
		DateTimeUTC:     time.Now().UTC().Add(72 * time.Hour),
		DurationMinutes: 60,
		Status:          domain.AppointmentStatusScheduled,
	})
	if err != nil {
		t.Fatalf("подготовка записи: %v", err)
	}

	cancelled, err := f.svc.Cancel(ctx, id, "перенос")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if cancelled.CancellationPenalty != nil {
		t.Error("штраф не должен начисляться при заблаговременной отмене")
	}
}

func TestCancelTerminal(t *testing.T) {
	f := newLifecycleFixture(t, false, nil)
	ctx := context.Background()

	id, err := f.apptRepo.Create(ctx, domain.Appointment{
		DoctorID:        1,
		DateTimeUTC:     time.Now().UTC().Add(72 * time.Hour),
		DurationMinutes: 60,
		Status:          domain.AppointmentStatusCompleted,
	})
	if err != nil {
		t.Fatalf("подготовка записи: %v", err)
	}

	if _, err := f.svc.Cancel(ctx, id, "поздно"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("ожидалась ErrConflict, получено: %v", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	f := newLifecycleFixture(t, false, nil)
	ctx := context.Background()

	id, err := f.apptRepo.Create(ctx, domain.Appointment{
		DoctorID:        1,
		DateTimeUTC:     time.Now().UTC().Add(72 * time.Hour),
		DurationMinutes: 60,
		Status:          domain.AppointmentStatusScheduled,
	})
	if err != nil {
		t.Fatalf("подготовка записи: %v", err)
	}

	// Завершить можно только подтвержденную запись.
	if _, err := f.svc.Complete(ctx, id, domain.CompleteAppointmentDTO{}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("завершение без подтверждения: ожидалась ErrConflict, получено %v", err)
	}

	confirmed, err := f.svc.Confirm(ctx, id)
	if err != nil {
		t.Fatalf("подтверждение: %v", err)
	}
	if confirmed.Status != domain.AppointmentStatusConfirmed {
		t.Errorf("статус %s", confirmed.Status)
	}

	// Повторное подтверждение недопустимо.
	if _, err := f.svc.Confirm(ctx, id); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("повторное подтверждение: ожидалась ErrConflict, получено %v", err)
	}

	completed, err := f.svc.Complete(ctx, id, domain.CompleteAppointmentDTO{
		Diagnosis:       "ОРВИ",
		Recommendations: "постельный режим",
	})
	if err != nil {
		t.Fatalf("завершение: %v", err)
	}
	if completed.Status != domain.AppointmentStatusCompleted {
		t.Errorf("статус %s", completed.Status)
	}
	if completed.Diagnosis == nil || *completed.Diagnosis != "ОРВИ" {
		t.Error("диагноз не сохранен")
	}

	// Терминальный статус окончателен.
	if _, err := f.svc.NoShow(ctx, id); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("неявка после завершения: ожидалась ErrConflict, получено %v", err)
	}
}

func TestNoShow(t *testing.T) {
	f := newLifecycleFixture(t, false, nil)
	ctx := context.Background()

	id, err := f.apptRepo.Create(ctx, domain.Appointment{
		DoctorID:        1,
		DateTimeUTC:     time.Now().UTC().Add(-time.Hour),
		DurationMinutes: 60,
		Status:          domain.AppointmentStatusConfirmed,
	})
	if err != nil {
		t.Fatalf("подготовка записи: %v", err)
	}

	marked, err := f.svc.NoShow(ctx, id)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if marked.Status != domain.AppointmentStatusNoShow {
		t.Errorf("статус %s", marked.Status)
	}
}
