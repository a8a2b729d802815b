package domain

import (
	"strings"
	"time"
)

type WorkingDay struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}

// WorkingHours — недельное расписание врача: ключи monday..sunday,
// время начала и окончания в локальной зоне врача в формате "HH:MM".
type WorkingHours map[string]WorkingDay

func (wh WorkingHours) ForWeekday(day time.Weekday) (WorkingDay, bool) {
	wd, ok := wh[strings.ToLower(day.String())]
	return wd, ok
}

type Doctor struct {
	ID                      int64        `json:"id"`
	FirstName               string       `json:"first_name"`
	LastName                string       `json:"last_name"`
	Email                   string       `json:"email"`
	Timezone                string       `json:"timezone"`
	WorkingHours            WorkingHours `json:"working_hours"`
	CancellationNoticeHours int          `json:"cancellation_notice_hours"`
	CancellationPenaltyPct  float64      `json:"cancellation_penalty_pct"`
	CalendarID              *string      `json:"calendar_id,omitempty"`
	CalendarSubject         *string      `json:"calendar_subject,omitempty"`
	CalendarSyncedAt        *time.Time   `json:"calendar_synced_at,omitempty"`
	CreatedAt               time.Time    `json:"created_at"`
	UpdatedAt               time.Time    `json:"updated_at"`
}

// HasCalendar — есть ли у врача делегированный доступ к внешнему календарю.
// Без него внешний уровень проверки доступности и синхронизация пропускаются.
func (d *Doctor) HasCalendar() bool {
	return d.CalendarID != nil && *d.CalendarID != "" &&
		d.CalendarSubject != nil && *d.CalendarSubject != ""
}

func (d *Doctor) CalendarRef() CalendarRef {
	if !d.HasCalendar() {
		return CalendarRef{}
	}
	return CalendarRef{
		CalendarID: *d.CalendarID,
		Subject:    *d.CalendarSubject,
	}
}
