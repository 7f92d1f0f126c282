package utils

import "time"

// StartCurrentDay возвращает ту же дату со временем 00:00 в указанной таймзоне
func StartCurrentDay(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
