package domain

import "time"

// AvailableSlot - свободный интервал в локальном времени.
// Занятые интервалы в ответ не попадают, поэтому Available всегда true.
type AvailableSlot struct {
	StartTime time.Time
	EndTime   time.Time
	Available bool
}

type AvailabilityQuery struct {
	TargetDate time.Time
	RangeDays  int
}

type Availability struct {
	TargetDate        time.Time
	Slots             []AvailableSlot
	Message           string
	FormattedResponse string
}
