package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"agenda/internal/domain"
)

func newScheduleForTest(apptRepo *fakeAppointmentRepo, doctorRepo *fakeDoctorRepo) *ScheduleServiceImpl {
	return NewScheduleService(apptRepo, doctorRepo, testNormalizer(), testConfig(), testLogger)
}

func TestGetFreeSlotsGrid(t *testing.T) {
	doctorRepo := newFakeDoctorRepo(testDoctor(1, false))
	svc := newScheduleForTest(newFakeAppointmentRepo(), doctorRepo)

	slots, err := svc.GetFreeSlots(context.Background(), 1, "2026-01-13", 60)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	// 09:00-17:00, шаг 30 мин, длительность 60 мин: последний слот 16:00.
	if len(slots) != 15 {
		t.Fatalf("ожидалось 15 слотов, получено %d", len(slots))
	}

	first := santiagoUTC(t, 2026, time.January, 13, 9, 0)
	if !slots[0].Start.Equal(first) {
		t.Errorf("первый слот %v, ожидалось %v", slots[0].Start, first)
	}

	last := santiagoUTC(t, 2026, time.January, 13, 16, 0)
	if !slots[len(slots)-1].Start.Equal(last) {
		t.Errorf("последний слот %v, ожидалось %v", slots[len(slots)-1].Start, last)
	}

	for i, slot := range slots {
		if !slot.Available {
			t.Errorf("слот %d должен быть свободен", i)
		}
		if got := slot.End.Sub(slot.Start); got != time.Hour {
			t.Errorf("слот %d: длительность %v, ожидался час", i, got)
		}
	}
}

func TestGetFreeSlotsMarksBooked(t *testing.T) {
	apptRepo := newFakeAppointmentRepo()
	doctorRepo := newFakeDoctorRepo(testDoctor(1, false))
	svc := newScheduleForTest(apptRepo, doctorRepo)
	ctx := context.Background()

	if _, err := apptRepo.Create(ctx, domain.Appointment{
		DoctorID:        1,
		DateTimeUTC:     santiagoUTC(t, 2026, time.January, 13, 10, 0),
		DurationMinutes: 60,
		Status:          domain.AppointmentStatusScheduled,
	}); err != nil {
		t.Fatalf("подготовка записи: %v", err)
	}

	slots, err := svc.GetFreeSlots(ctx, 1, "2026-01-13", 60)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	busy := make(map[string]bool)
	for _, slot := range slots {
		if !slot.Available {
			local, _ := testNormalizer().ToZone(slot.Start, "America/Santiago")
			busy[local.Format("15:04")] = true
		}
	}

	// Запись 10:00-11:00 блокирует часовые слоты с началом 09:30, 10:00 и 10:30.
	for _, want := range []string{"09:30", "10:00", "10:30"} {
		if !busy[want] {
			t.Errorf("слот %s должен быть занят", want)
		}
	}
	if len(busy) != 3 {
		t.Errorf("занятых слотов %d, ожидалось 3", len(busy))
	}
}

func TestGetFreeSlotsDayOff(t *testing.T) {
	doctorRepo := newFakeDoctorRepo(testDoctor(1, false))
	svc := newScheduleForTest(newFakeAppointmentRepo(), doctorRepo)

	// 2026-01-17 — суббота.
	slots, err := svc.GetFreeSlots(context.Background(), 1, "2026-01-17", 30)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("в выходной слотов быть не должно, получено %d", len(slots))
	}
}

func TestGetFreeSlotsValidation(t *testing.T) {
	doctorRepo := newFakeDoctorRepo(testDoctor(1, false))
	svc := newScheduleForTest(newFakeAppointmentRepo(), doctorRepo)
	ctx := context.Background()

	if _, err := svc.GetFreeSlots(ctx, 1, "13-01-2026", 30); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("некорректная дата: ожидалась ErrValidation, получено %v", err)
	}
	if _, err := svc.GetFreeSlots(ctx, 1, "2026-01-13", 0); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("нулевая длительность: ожидалась ErrValidation, получено %v", err)
	}
	if _, err := svc.GetFreeSlots(ctx, 99, "2026-01-13", 30); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("неизвестный врач: ожидалась ErrNotFound, получено %v", err)
	}
}

func TestGetDoctorAvailabilityRange(t *testing.T) {
	doctorRepo := newFakeDoctorRepo(testDoctor(1, false))
	svc := newScheduleForTest(newFakeAppointmentRepo(), doctorRepo)

	// Понедельник и вторник, шаг и длительность 30 мин: 16 слотов в день.
	slots, err := svc.GetDoctorAvailability(context.Background(), 1, "2026-01-12", "2026-01-13")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if len(slots) != 32 {
		t.Fatalf("ожидалось 32 слота, получено %d", len(slots))
	}

	for i := 1; i < len(slots); i++ {
		if slots[i].Start.Before(slots[i-1].Start) {
			t.Fatal("слоты должны идти в хронологическом порядке")
		}
	}
}

func TestGetDoctorAvailabilityRangeValidation(t *testing.T) {
	doctorRepo := newFakeDoctorRepo(testDoctor(1, false))
	svc := newScheduleForTest(newFakeAppointmentRepo(), doctorRepo)
	ctx := context.Background()

	if _, err := svc.GetDoctorAvailability(ctx, 1, "2026-01-13", "2026-01-12"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("обратный диапазон: ожидалась ErrValidation, получено %v", err)
	}
	if _, err := svc.GetDoctorAvailability(ctx, 1, "2026-01-01", "2026-03-01"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("диапазон больше месяца: ожидалась ErrValidation, получено %v", err)
	}
}
