package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/soraaya/calcom-booking-webhook/internal/config"
	"github.com/soraaya/calcom-booking-webhook/internal/core/domain"
	"github.com/soraaya/calcom-booking-webhook/internal/core/ports/out"
	"github.com/soraaya/calcom-booking-webhook/internal/utils"
)

type SchedulingService struct {
	calcomPort    out.CalcomPort
	publisherPort out.EventPublisherPort
	logger        out.LoggerPort
	cfg           *config.Config
	location      *time.Location

	now func() time.Time
}

func NewSchedulingService(
	calcomPort out.CalcomPort,
	publisherPort out.EventPublisherPort,
	cfg *config.Config,
	logger out.LoggerPort,
) *SchedulingService {
	return &SchedulingService{
		calcomPort:    calcomPort,
		publisherPort: publisherPort,
		logger:        logger.WithModule("SchedulingService"),
		cfg:           cfg,
		location:      cfg.Location(),
		now:           time.Now,
	}
}

func (s *SchedulingService) CheckAvailability(ctx context.Context, query domain.AvailabilityQuery) (*domain.Availability, error) {
	s.logger.Info("availability.check.started", out.LogFields{
		"targetDate": query.TargetDate.Format("2006-01-02"),
		"rangeDays":  query.RangeDays,
	})

	eventType, err := s.resolveEventType(ctx, s.cfg.Cal.EventTypeSlug)
	if err != nil {
		return nil, err
	}

	windowStart := utils.StartCurrentDay(query.TargetDate, s.location)
	windowEnd := windowStart.AddDate(0, 0, query.RangeDays)

	starts, err := s.calcomPort.GetAvailableSlots(ctx, out.SlotQuery{
		EventType: *eventType,
		Start:     windowStart,
		End:       windowEnd,
		Timezone:  s.cfg.App.Timezone,
	})
	if err != nil {
		s.logger.Error("availability.check.slots_fetch_failed", out.LogFields{
			"eventTypeId": eventType.ID,
			"error":       err.Error(),
		})
		return nil, err
	}

	duration := s.slotDuration(eventType)
	now := s.now().In(s.location)

	slots := make([]domain.AvailableSlot, 0, len(starts))
	for _, start := range starts {
		local := start.In(s.location)
		if local.Before(windowStart) || !local.Before(windowEnd) {
			continue
		}
		// Слоты, начало которых уже прошло, не предлагаем
		if local.Before(now) {
			continue
		}

		slots = append(slots, domain.AvailableSlot{
			StartTime: local,
			EndTime:   local.Add(duration),
			Available: true,
		})
	}

	sort.Slice(slots, func(i, j int) bool {
		return slots[i].StartTime.Before(slots[j].StartTime)
	})

	s.logger.Info("availability.check.finished", out.LogFields{
		"targetDate": query.TargetDate.Format("2006-01-02"),
		"slotsCount": len(slots),
	})

	return &domain.Availability{
		TargetDate:        query.TargetDate,
		Slots:             slots,
		Message:           fmt.Sprintf("Found %d available slots", len(slots)),
		FormattedResponse: formatAvailability(query.TargetDate, slots),
	}, nil
}

func (s *SchedulingService) BookAppointment(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error) {
	s.logger.Info("booking.create.started", out.LogFields{
		"targetDate": req.TargetDate.Format("2006-01-02"),
		"time":       req.StartClock.Format("15:04"),
		"email":      req.Email,
	})

	eventType, err := s.resolveEventType(ctx, s.cfg.Cal.EventTypeSlug)
	if err != nil {
		return nil, err
	}

	name := DeriveNameFromEmail(req.Email)
	start := time.Date(
		req.TargetDate.Year(), req.TargetDate.Month(), req.TargetDate.Day(),
		req.StartClock.Hour(), req.StartClock.Minute(), 0, 0,
		s.location,
	)
	duration := s.slotDuration(eventType)

	booking, err := s.calcomPort.CreateBooking(ctx, out.CreateBookingRequest{
		EventType: *eventType,
		Start:     start,
		Attendee: domain.Attendee{
			Name:  name,
			Email: req.Email,
		},
		Timezone: s.cfg.App.Timezone,
	})
	if err != nil {
		s.logger.Error("booking.create.failed", out.LogFields{
			"eventTypeId": eventType.ID,
			"error":       err.Error(),
		})
		return nil, err
	}

	// Провайдер может не вернуть часть полей, достраиваем их сами
	if booking.Start.IsZero() {
		booking.Start = start
	}
	if booking.End.IsZero() {
		booking.End = booking.Start.Add(duration)
	}
	if booking.Title == "" {
		booking.Title = fmt.Sprintf("%s <> %s", eventType.Slug, name)
	}
	if len(booking.Attendees) == 0 {
		booking.Attendees = []domain.Attendee{{Name: name, Email: req.Email}}
	}

	s.logger.Info("booking.create.finished", out.LogFields{
		"bookingId": booking.UID,
	})

	s.publishBookingCreated(ctx, booking)

	return booking, nil
}

// resolveEventType ищет слаг в личной коллекции и в коллекциях всех команд.
// Обе коллекции опрашиваются всегда: найденный в нескольких местах слаг -
// ошибка конфигурации, а не повод выбрать какую-то из коллекций.
func (s *SchedulingService) resolveEventType(ctx context.Context, slug string) (*domain.EventTypeRef, error) {
	var matches []domain.EventTypeRef

	personal, err := s.calcomPort.GetEventTypes(ctx)
	if err != nil {
		return nil, err
	}
	for _, et := range personal {
		if et.Slug == slug {
			matches = append(matches, domain.EventTypeRef{
				ID:              et.ID,
				Slug:            et.Slug,
				Scope:           domain.EventTypeScopePersonal,
				LengthInMinutes: et.LengthInMinutes,
			})
		}
	}

	teams, err := s.calcomPort.GetTeams(ctx)
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		teamEventTypes, err := s.calcomPort.GetTeamEventTypes(ctx, team.ID)
		if err != nil {
			return nil, err
		}
		for _, et := range teamEventTypes {
			if et.Slug == slug {
				matches = append(matches, domain.EventTypeRef{
					ID:              et.ID,
					Slug:            et.Slug,
					Scope:           domain.EventTypeScopeTeam,
					TeamID:          team.ID,
					TeamSlug:        team.Slug,
					LengthInMinutes: et.LengthInMinutes,
				})
			}
		}
	}

	switch len(matches) {
	case 0:
		s.logger.Error("event_type.resolve.not_found", out.LogFields{
			"slug": slug,
		})
		return nil, fmt.Errorf("%w: slug %q", domain.ErrEventTypeNotFound, slug)
	case 1:
		s.logger.Debug("event_type.resolve.success", out.LogFields{
			"slug":        slug,
			"eventTypeId": matches[0].ID,
			"scope":       matches[0].Scope,
		})
		return &matches[0], nil
	default:
		s.logger.Error("event_type.resolve.ambiguous", out.LogFields{
			"slug":         slug,
			"matchesCount": len(matches),
		})
		return nil, fmt.Errorf("%w: slug %q matches %d event types", domain.ErrEventTypeAmbiguous, slug, len(matches))
	}
}

func (s *SchedulingService) slotDuration(eventType *domain.EventTypeRef) time.Duration {
	if eventType.LengthInMinutes > 0 {
		return time.Duration(eventType.LengthInMinutes) * time.Minute
	}
	return s.cfg.SlotDuration()
}

func (s *SchedulingService) publishBookingCreated(ctx context.Context, booking *domain.Booking) {
	if s.publisherPort == nil {
		return
	}

	// Бронь уже создана, ошибка публикации не должна ломать ответ
	if err := s.publisherPort.PublishBookingCreated(ctx, *booking); err != nil {
		s.logger.Error("booking.event.publish_failed", out.LogFields{
			"bookingId": booking.UID,
			"error":     err.Error(),
		})
	}
}

// DeriveNameFromEmail строит отображаемое имя из локальной части email:
// "john.doe@example.com" -> "John Doe"
func DeriveNameFromEmail(email string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}

	words := strings.Fields(strings.ReplaceAll(local, ".", " "))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}

	return strings.Join(words, " ")
}

func formatAvailability(targetDate time.Time, slots []domain.AvailableSlot) string {
	date := targetDate.Format("2006-01-02")
	if len(slots) == 0 {
		return fmt.Sprintf("No available slots found for %s", date)
	}

	startTimes := make([]string, 0, len(slots))
	for _, slot := range slots {
		startTimes = append(startTimes, slot.StartTime.Format("15:04"))
	}

	return fmt.Sprintf("Available slots for %s:\n%s\n\nTotal: %d slots available",
		date, strings.Join(startTimes, ", "), len(slots))
}
