package http

import (
	"errors"
	"strings"
	"time"

	"github.com/soraaya/calcom-booking-webhook/internal/core/domain"
	"github.com/soraaya/calcom-booking-webhook/internal/core/json_types"
	"github.com/soraaya/calcom-booking-webhook/internal/utils"
)

type CheckAvailabilityRequest struct {
	TargetDate    string `json:"target_date" binding:"required"`
	TimeRangeDays *int   `json:"time_range_days"`
}

// Validate разбирает и проверяет запрос, не обращаясь к Cal.com
func (r *CheckAvailabilityRequest) Validate(now time.Time, defaultRangeDays int) (domain.AvailabilityQuery, error) {
	targetDate, err := json_types.ParseDate(r.TargetDate)
	if err != nil {
		return domain.AvailabilityQuery{}, err
	}

	if isPastDate(targetDate, now) {
		return domain.AvailabilityQuery{}, errors.New("cannot check availability for past dates")
	}

	rangeDays := defaultRangeDays
	if r.TimeRangeDays != nil {
		if *r.TimeRangeDays <= 0 {
			return domain.AvailabilityQuery{}, errors.New("time_range_days must be a positive integer")
		}
		rangeDays = *r.TimeRangeDays
	}

	return domain.AvailabilityQuery{
		TargetDate: targetDate,
		RangeDays:  rangeDays,
	}, nil
}

type BookAppointmentRequest struct {
	TargetDate string `json:"target_date" binding:"required"`
	Time       string `json:"time" binding:"required"`
	EmailID    string `json:"email_id" binding:"required"`
}

func (r *BookAppointmentRequest) Validate(now time.Time) (domain.BookingRequest, error) {
	targetDate, err := json_types.ParseDate(r.TargetDate)
	if err != nil {
		return domain.BookingRequest{}, err
	}

	if isPastDate(targetDate, now) {
		return domain.BookingRequest{}, errors.New("cannot book appointments for past dates")
	}

	startClock, err := json_types.ParseClockTime(r.Time)
	if err != nil {
		return domain.BookingRequest{}, err
	}

	if err := validateEmail(r.EmailID); err != nil {
		return domain.BookingRequest{}, err
	}

	return domain.BookingRequest{
		TargetDate: targetDate,
		StartClock: startClock,
		Email:      r.EmailID,
	}, nil
}

// isPastDate сравнивает календарные дни, время внутри дня не учитывается
func isPastDate(targetDate, now time.Time) bool {
	return targetDate.Before(utils.StartCurrentDay(now, time.UTC))
}

func validateEmail(email string) error {
	at := strings.Index(email, "@")
	if at <= 0 || at != strings.LastIndex(email, "@") || at == len(email)-1 {
		return errors.New("email_id must be a valid email address")
	}
	return nil
}

type TimeSlotResponse struct {
	StartTime json_types.ClockTime `json:"start_time"`
	EndTime   json_types.ClockTime `json:"end_time"`
	Available bool                 `json:"available"`
}

type CheckAvailabilityResponse struct {
	Success           bool               `json:"success"`
	TargetDate        json_types.Date    `json:"target_date"`
	AvailableSlots    []TimeSlotResponse `json:"available_slots"`
	Message           string             `json:"message"`
	FormattedResponse string             `json:"formatted_response,omitempty"`
}

type AppointmentDetails struct {
	BookingID string            `json:"booking_id"`
	StartTime string            `json:"start_time"`
	EndTime   string            `json:"end_time"`
	Title     string            `json:"title"`
	Attendees []domain.Attendee `json:"attendees"`
}

type BookAppointmentResponse struct {
	Success            bool                `json:"success"`
	BookingID          string              `json:"booking_id"`
	Message            string              `json:"message"`
	AppointmentDetails *AppointmentDetails `json:"appointment_details,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}
