package domain

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to AppointmentStatus
		want     bool
	}{
		{AppointmentStatusScheduled, AppointmentStatusConfirmed, true},
		{AppointmentStatusScheduled, AppointmentStatusCancelled, true},
		{AppointmentStatusScheduled, AppointmentStatusNoShow, true},
		{AppointmentStatusScheduled, AppointmentStatusCompleted, false},
		{AppointmentStatusConfirmed, AppointmentStatusCompleted, true},
		{AppointmentStatusConfirmed, AppointmentStatusCancelled, true},
		{AppointmentStatusConfirmed, AppointmentStatusNoShow, true},
		{AppointmentStatusConfirmed, AppointmentStatusScheduled, false},
		{AppointmentStatusCancelled, AppointmentStatusConfirmed, false},
		{AppointmentStatusCompleted, AppointmentStatusCancelled, false},
		{AppointmentStatusNoShow, AppointmentStatusConfirmed, false},
	}

	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, ожидалось %v", c.from, c.to, got, c.want)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := []AppointmentStatus{
		AppointmentStatusCancelled,
		AppointmentStatusCompleted,
		AppointmentStatusNoShow,
	}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("статус %s должен быть терминальным", s)
		}
	}

	if AppointmentStatusScheduled.Terminal() || AppointmentStatusConfirmed.Terminal() {
		t.Error("scheduled и confirmed не терминальные статусы")
	}
}

func TestIntervalsOverlap(t *testing.T) {
	base := time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)
	at := func(m int) time.Time { return base.Add(time.Duration(m) * time.Minute) }

	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{"частичное пересечение", at(0), at(60), at(30), at(90), true},
		{"вложенный интервал", at(0), at(60), at(15), at(45), true},
		{"совпадение", at(0), at(60), at(0), at(60), true},
		{"встык без пересечения", at(0), at(60), at(60), at(120), false},
		{"раздельные", at(0), at(30), at(90), at(120), false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := IntervalsOverlap(c.aStart, c.aEnd, c.bStart, c.bEnd)
			if got != c.want {
				t.Errorf("получено %v, ожидалось %v", got, c.want)
			}

			// симметрия: overlaps(A,B) == overlaps(B,A)
			if sym := IntervalsOverlap(c.bStart, c.bEnd, c.aStart, c.aEnd); sym != got {
				t.Errorf("нарушена симметрия: %v != %v", sym, got)
			}
		})
	}
}

func TestWorkingHoursForWeekday(t *testing.T) {
	wh := WorkingHours{
		"monday":  {Start: "09:00", End: "17:00", Available: true},
		"tuesday": {Start: "09:00", End: "17:00", Available: true},
		"sunday":  {Start: "00:00", End: "00:00", Available: false},
	}

	day, ok := wh.ForWeekday(time.Tuesday)
	if !ok || day.Start != "09:00" {
		t.Errorf("вторник: ok=%v day=%+v", ok, day)
	}

	if _, ok := wh.ForWeekday(time.Saturday); ok {
		t.Error("суббота отсутствует в расписании")
	}
}
