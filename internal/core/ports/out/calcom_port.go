package out

import (
	"context"
	"time"

	"github.com/soraaya/calcom-booking-webhook/internal/core/domain"
)

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type SlotQuery struct {
	EventType domain.EventTypeRef
	Start     time.Time
	End       time.Time
	Timezone  string
}

type CreateBookingRequest struct {
	EventType domain.EventTypeRef
	Start     time.Time
	Attendee  domain.Attendee
	Timezone  string
}

type CalcomPort interface {
	// Текущий пользователь по API-ключу
	GetMe(ctx context.Context) (*User, error)

	// Методы для работы с коллекциями типов событий
	GetEventTypes(ctx context.Context) ([]domain.EventType, error)
	GetTeams(ctx context.Context) ([]domain.Team, error)
	GetTeamEventTypes(ctx context.Context, teamID int64) ([]domain.EventType, error)

	// Свободные слоты и создание брони
	GetAvailableSlots(ctx context.Context, query SlotQuery) ([]time.Time, error)
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error)
}
