package config

import (
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	App struct {
		Version  string `env:"APP_VERSION" envDefault:"1.0.0"`
		Timezone string `env:"APP_TIMEZONE" envDefault:"Asia/Kolkata"`
		Debug    bool   `env:"DEBUG" envDefault:"false"`
	}

	HTTP struct {
		Host string `env:"HOST" envDefault:"0.0.0.0"`
		Port string `env:"PORT" envDefault:"8000"`
	}

	Cal struct {
		APIKey         string `env:"CAL_API_KEY,required"`
		BaseURL        string `env:"CAL_BASE_URL" envDefault:"https://api.cal.com/v2"`
		Username       string `env:"CAL_USERNAME,required"`
		EventTypeSlug  string `env:"CAL_EVENT_TYPE_SLUG" envDefault:"build3-demo"`
		TimeoutSeconds int    `env:"CAL_TIMEOUT_SECONDS" envDefault:"10"`
	}

	Calendar struct {
		TimeRangeDays       int `env:"DEFAULT_TIME_RANGE_DAYS" envDefault:"7"`
		SlotDurationMinutes int `env:"DEFAULT_SLOT_DURATION_MINUTES" envDefault:"30"`
	}

	RabbitMQ struct {
		Enabled bool   `env:"RABBITMQ_ENABLED"`
		URL     string `env:"RABBITMQ_URL"`
		Queue   string `env:"RABBITMQ_QUEUE" envDefault:"booking.events"`
	}
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Location возвращает таймзону приложения, при некорректном значении - UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) CalTimeout() time.Duration {
	return time.Duration(c.Cal.TimeoutSeconds) * time.Second
}

func (c *Config) SlotDuration() time.Duration {
	return time.Duration(c.Calendar.SlotDurationMinutes) * time.Minute
}
