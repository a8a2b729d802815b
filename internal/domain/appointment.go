package domain

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

func (s AppointmentStatus) Terminal() bool {
	switch s {
	case AppointmentStatusCancelled, AppointmentStatusCompleted, AppointmentStatusNoShow:
		return true
	}
	return false
}

// CanTransition проверяет допустимость перехода статуса: терминальные
// статусы неизменяемы, завершить можно только подтверждённую запись.
func CanTransition(from, to AppointmentStatus) bool {
	if from.Terminal() {
		return false
	}

	switch to {
	case AppointmentStatusConfirmed:
		return from == AppointmentStatusScheduled
	case AppointmentStatusCompleted:
		return from == AppointmentStatusConfirmed
	case AppointmentStatusCancelled, AppointmentStatusNoShow:
		return from == AppointmentStatusScheduled || from == AppointmentStatusConfirmed
	}

	return false
}

type AppointmentType string

const (
	AppointmentTypePresential AppointmentType = "presential"
	AppointmentTypeRemote     AppointmentType = "remote"
	AppointmentTypeHome       AppointmentType = "home"
)

func ValidAppointmentType(t AppointmentType) bool {
	switch t {
	case AppointmentTypePresential, AppointmentTypeRemote, AppointmentTypeHome:
		return true
	}
	return false
}

type Appointment struct {
	ID                  int64             `json:"id"`
	DoctorID            int64             `json:"doctor_id"`
	PatientID           *int64            `json:"patient_id"`
	DateTimeUTC         time.Time         `json:"date_time_utc"`
	DurationMinutes     int               `json:"duration_minutes"`
	Timezone            string            `json:"timezone_at_booking"`
	Type                AppointmentType   `json:"type"`
	Status              AppointmentStatus `json:"status"`
	Title               string            `json:"title,omitempty"`
	Notes               string            `json:"notes,omitempty"`
	ExternalEventID     *string           `json:"external_event_id,omitempty"`
	ExternalCalendarID  *string           `json:"external_calendar_id,omitempty"`
	CancellationReason  *string           `json:"cancellation_reason,omitempty"`
	CancellationPenalty *float64          `json:"cancellation_penalty,omitempty"`
	Diagnosis           *string           `json:"diagnosis,omitempty"`
	Recommendations     *string           `json:"recommendations,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

func (a *Appointment) Start() time.Time {
	return a.DateTimeUTC
}

func (a *Appointment) End() time.Time {
	return a.DateTimeUTC.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// IntervalsOverlap — классическая проверка пересечения полуоткрытых
// интервалов [aStart, aEnd) и [bStart, bEnd).
func IntervalsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

type CreateAppointmentDTO struct {
	PatientID       int64           `json:"patient_id" binding:"required"`
	DoctorID        int64           `json:"doctor_id" binding:"required"`
	DateTime        string          `json:"date_time" binding:"required"`
	DurationMinutes int             `json:"duration_minutes" binding:"required"`
	Type            AppointmentType `json:"type" binding:"required,oneof=presential remote home"`
	Notes           string          `json:"notes"`
}

type UpdateAppointmentDTO struct {
	DateTime        *string          `json:"date_time"`
	DurationMinutes *int             `json:"duration_minutes"`
	Type            *AppointmentType `json:"type" binding:"omitempty,oneof=presential remote home"`
	Notes           *string          `json:"notes"`
}

type CancelAppointmentDTO struct {
	Reason string `json:"reason"`
}

type CompleteAppointmentDTO struct {
	Diagnosis       string `json:"diagnosis"`
	Recommendations string `json:"recommendations"`
}

type AppointmentFilter struct {
	DoctorID  int64              `json:"doctor_id"`
	PatientID *int64             `json:"patient_id"`
	Status    *AppointmentStatus `json:"status"`
	StartDate *time.Time         `json:"start_date"`
	EndDate   *time.Time         `json:"end_date"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}
