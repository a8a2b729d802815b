package domain

import (
	"time"
)

// CalendarRef — адрес внешнего календаря: идентификатор календаря и
// делегированный субъект, от имени которого выполняются запросы.
type CalendarRef struct {
	CalendarID string `json:"calendar_id"`
	Subject    string `json:"subject"`
}

// ExternalCalendarEvent — событие внешнего календаря, нормализованное на
// границе шлюза: start/end уже приведены к UTC.
type ExternalCalendarEvent struct {
	ID          string    `json:"id"`
	CalendarID  string    `json:"calendar_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Status      string    `json:"status"`
	Transparent bool      `json:"transparent"`
	Attendees   []string  `json:"attendees,omitempty"`
}

func (e *ExternalCalendarEvent) DurationMinutes() int {
	return int(e.End.Sub(e.Start) / time.Minute)
}

func (e *ExternalCalendarEvent) Cancelled() bool {
	return e.Status == "cancelled"
}

type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type SyncResult struct {
	DoctorID            int64     `json:"doctor_id"`
	TotalEvents         int       `json:"total_events"`
	NewAppointments     int       `json:"new_appointments"`
	UpdatedAppointments int       `json:"updated_appointments"`
	Errors              []string  `json:"errors"`
	SyncedAt            time.Time `json:"synced_at"`
}

// Slot — эфемерный слот для выдачи наружу, никогда не сохраняется.
type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}
