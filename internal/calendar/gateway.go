package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agenda/internal/domain"
)

// Gateway — порт внешнего календаря. Все вызовы требуют действующего
// делегированного доступа (ref.Subject); получение и обновление токена —
// забота реализации.
type Gateway interface {
	ListEvents(ctx context.Context, ref domain.CalendarRef, from, to time.Time) ([]EventItem, error)
	FreeBusy(ctx context.Context, ref domain.CalendarRef, from, to time.Time) ([]domain.BusyInterval, error)
	CreateEvent(ctx context.Context, ref domain.CalendarRef, input EventInput) (*domain.ExternalCalendarEvent, error)
	UpdateEvent(ctx context.Context, ref domain.CalendarRef, eventID string, input EventInput) error
	DeleteEvent(ctx context.Context, ref domain.CalendarRef, eventID string) error
}

// EventInput — данные для создания или обновления зеркального события.
type EventInput struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string
	UID         string
}

// EventItem — результат разбора одного события на границе шлюза. Событие с
// непустым Err не валидно; вызывающий решает, пропустить его или учесть
// в списке ошибок синхронизации.
type EventItem struct {
	Event domain.ExternalCalendarEvent
	Err   error
}

type eventTimeDTO struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type attendeeDTO struct {
	Email string `json:"email"`
}

// eventDTO — строгое представление события на границе: произвольный ответ
// внешнего API разбирается и валидируется здесь и только здесь.
type eventDTO struct {
	ID           string        `json:"id"`
	Status       string        `json:"status"`
	Summary      string        `json:"summary"`
	Description  string        `json:"description"`
	Transparency string        `json:"transparency"`
	Start        eventTimeDTO  `json:"start"`
	End          eventTimeDTO  `json:"end"`
	Attendees    []attendeeDTO `json:"attendees"`
}

func (dto eventDTO) toDomain(calendarID string) (domain.ExternalCalendarEvent, error) {
	if strings.TrimSpace(dto.ID) == "" {
		return domain.ExternalCalendarEvent{}, errors.New("событие без идентификатора")
	}

	event := domain.ExternalCalendarEvent{
		ID:          dto.ID,
		CalendarID:  calendarID,
		Title:       dto.Summary,
		Description: dto.Description,
		Status:      dto.Status,
		Transparent: dto.Transparency == "transparent",
	}

	for _, a := range dto.Attendees {
		if a.Email != "" {
			event.Attendees = append(event.Attendees, a.Email)
		}
	}

	// отмененные события приходят без времени, это не ошибка
	if event.Cancelled() && dto.Start.DateTime == "" && dto.Start.Date == "" {
		return event, nil
	}

	start, err := parseEventTime(dto.Start)
	if err != nil {
		return domain.ExternalCalendarEvent{}, fmt.Errorf("событие %s: некорректное начало: %w", dto.ID, err)
	}

	end, err := parseEventTime(dto.End)
	if err != nil {
		return domain.ExternalCalendarEvent{}, fmt.Errorf("событие %s: некорректное окончание: %w", dto.ID, err)
	}

	if !end.After(start) {
		return domain.ExternalCalendarEvent{}, fmt.Errorf("событие %s: окончание не позже начала", dto.ID)
	}

	event.Start = start
	event.End = end

	return event, nil
}

// parseEventTime нормализует время события к UTC. Каждое время несет свою
// зону: либо смещение в RFC3339, либо именованную зону для событий на весь
// день.
func parseEventTime(dto eventTimeDTO) (time.Time, error) {
	if dto.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dto.DateTime)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	}

	if dto.Date != "" {
		loc := time.UTC
		if dto.TimeZone != "" {
			if parsed, err := time.LoadLocation(dto.TimeZone); err == nil {
				loc = parsed
			}
		}

		t, err := time.ParseInLocation("2006-01-02", dto.Date, loc)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	}

	return time.Time{}, errors.New("пустое время события")
}
