package in

import (
	"context"

	"github.com/soraaya/calcom-booking-webhook/internal/core/domain"
)

type SchedulingUseCase interface {
	// Свободные слоты в окне [targetDate, targetDate + rangeDays)
	CheckAvailability(ctx context.Context, query domain.AvailabilityQuery) (*domain.Availability, error)

	// Создание брони на дату и время для участника по email
	BookAppointment(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error)
}
