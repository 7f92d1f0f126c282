package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

const clockLayout = "15:04"

// ParseClockTime парсит локальное время строго в формате HH:MM
func ParseClockTime(str string) (time.Time, error) {
	if len(str) != len(clockLayout) {
		return time.Time{}, fmt.Errorf("failed to parse time %q: expected HH:MM", str)
	}

	parsedTime, err := time.Parse(clockLayout, str)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse time %q: expected HH:MM", str)
	}

	return parsedTime, nil
}

type ClockTime struct {
	Time time.Time
}

func (t *ClockTime) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	parsedTime, err := ParseClockTime(str)
	if err != nil {
		return err
	}

	*t = ClockTime{Time: parsedTime}
	return nil
}

func (t ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(clockLayout))
}

func (t ClockTime) String() string {
	return t.Time.Format(clockLayout)
}
