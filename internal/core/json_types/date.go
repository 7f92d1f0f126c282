package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate парсит календарную дату строго в формате YYYY-MM-DD
func ParseDate(str string) (time.Time, error) {
	parsedDate, err := time.Parse(dateLayout, str)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: expected YYYY-MM-DD", str)
	}

	return parsedDate, nil
}

type Date struct {
	Date time.Time
}

func (t *Date) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	parsedDate, err := ParseDate(str)
	if err != nil {
		return err
	}

	*t = Date{Date: parsedDate}
	return nil
}

func (t Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Date.Format(dateLayout))
}

func (t Date) String() string {
	return t.Date.Format(dateLayout)
}
