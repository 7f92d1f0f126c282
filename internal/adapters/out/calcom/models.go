package calcom

import (
	"encoding/json"
	"time"

	"github.com/soraaya/calcom-booking-webhook/internal/core/domain"
)

// envelope - общий конверт ответов Cal.com v2: {"status": "...", "data": ...}
type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
	Message string          `json:"message"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorMessage достает самое информативное сообщение об ошибке из конверта
func (e *envelope) ErrorMessage() string {
	if e.Error != nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return e.Message
}

// eventTypesData - коллекция типов событий; в разных ручках Cal.com
// возвращает либо массив, либо обертку {"eventTypes": [...]}
type eventTypesWrapper struct {
	EventTypes []domain.EventType `json:"eventTypes"`
}

func decodeEventTypes(data json.RawMessage) ([]domain.EventType, error) {
	var eventTypes []domain.EventType
	if err := json.Unmarshal(data, &eventTypes); err == nil {
		return eventTypes, nil
	}

	var wrapper eventTypesWrapper
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.EventTypes, nil
}

// slotsData - ответ /slots: слоты сгруппированы по датам,
// {"2025-09-01": [{"start": "2025-09-01T09:00:00+05:30"}, ...]}
type slotsData map[string][]slotEntry

type slotEntry struct {
	Start string `json:"start"`
}

type attendeeData struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type bookingData struct {
	UID       string         `json:"uid"`
	Title     string         `json:"title"`
	Start     string         `json:"start"`
	End       string         `json:"end"`
	Attendees []attendeeData `json:"attendees"`
}

func (b bookingData) toDomain() *domain.Booking {
	booking := &domain.Booking{
		UID:   b.UID,
		Title: b.Title,
	}

	// Даты провайдера парсим не строго: отсутствующие поля
	// достраивает сервисный слой
	if start, err := time.Parse(time.RFC3339, b.Start); err == nil {
		booking.Start = start
	}
	if end, err := time.Parse(time.RFC3339, b.End); err == nil {
		booking.End = end
	}

	for _, attendee := range b.Attendees {
		booking.Attendees = append(booking.Attendees, domain.Attendee{
			Name:  attendee.Name,
			Email: attendee.Email,
		})
	}

	return booking
}

type attendeePayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	TimeZone string `json:"timeZone"`
	Language string `json:"language"`
}

type createBookingPayload struct {
	EventTypeID int64             `json:"eventTypeId"`
	Start       string            `json:"start"`
	Attendee    attendeePayload   `json:"attendee"`
	Metadata    map[string]string `json:"metadata"`
}
