package domain

import "time"

type Attendee struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type BookingRequest struct {
	TargetDate time.Time
	StartClock time.Time
	Email      string
}

// Booking - созданная запись со стороны Cal.com
type Booking struct {
	UID       string
	Title     string
	Start     time.Time
	End       time.Time
	Attendees []Attendee
}
