package out

import (
	"context"

	"github.com/soraaya/calcom-booking-webhook/internal/core/domain"
)

// EventPublisherPort - публикация событий о созданных бронях.
// Публикация не входит в цикл запрос-ответ: ошибка публикации не должна
// приводить к ошибке бронирования.
type EventPublisherPort interface {
	PublishBookingCreated(ctx context.Context, booking domain.Booking) error
}
