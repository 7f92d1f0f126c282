package json_types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2030-06-15")
	require.NoError(t, err)
	assert.Equal(t, 2030, parsed.Year())
	assert.Equal(t, 15, parsed.Day())

	for _, invalid := range []string{"", "15-06-2030", "2030/06/15", "2030-13-01", "2030-06-15T10:00:00Z", "tomorrow"} {
		_, err := ParseDate(invalid)
		assert.Error(t, err, "expected %q to be rejected", invalid)
	}
}

func TestParseClockTime(t *testing.T) {
	parsed, err := ParseClockTime("14:30")
	require.NoError(t, err)
	assert.Equal(t, 14, parsed.Hour())
	assert.Equal(t, 30, parsed.Minute())

	for _, invalid := range []string{"", "25:99", "9:00", "14:30:00", "14.30", "2pm"} {
		_, err := ParseClockTime(invalid)
		assert.Error(t, err, "expected %q to be rejected", invalid)
	}
}

func TestDateJSON(t *testing.T) {
	var date Date
	require.NoError(t, json.Unmarshal([]byte(`"2030-06-15"`), &date))

	encoded, err := json.Marshal(date)
	require.NoError(t, err)
	assert.Equal(t, `"2030-06-15"`, string(encoded))

	assert.Error(t, json.Unmarshal([]byte(`"not-a-date"`), &date))
	assert.Error(t, json.Unmarshal([]byte(`42`), &date))
}

func TestClockTimeJSON(t *testing.T) {
	var clock ClockTime
	require.NoError(t, json.Unmarshal([]byte(`"09:05"`), &clock))

	encoded, err := json.Marshal(clock)
	require.NoError(t, err)
	assert.Equal(t, `"09:05"`, string(encoded))

	assert.Error(t, json.Unmarshal([]byte(`"25:99"`), &clock))
}
