package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is loaded from the environment at startup.
type Config struct {
	Port int `envconfig:"PORT" default:"8080"`

	// ResponseDelay is how long the simulated assistant "thinks" before its
	// delayed effects fire.
	ResponseDelay time.Duration `envconfig:"RESPONSE_DELAY" default:"1s"`

	// SessionTTL bounds how long an idle session is kept in memory.
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"30m"`

	// LegacyTimers disables cancellation of scheduled effects on session
	// teardown; once scheduled, effects always fire.
	LegacyTimers bool `envconfig:"LEGACY_TIMERS" default:"false"`

	// GoogleAPIKey is accepted for forward compatibility with a real
	// assessment backend. The canned assessor never uses it.
	GoogleAPIKey string `envconfig:"GOOGLE_API_KEY"`

	SMTP SMTPConfig

	DoctorEmail string `envconfig:"DOCTOR_EMAIL"`
}

// SMTPConfig configures the outbound mail client. When Host is empty the
// service runs with the dry-run mailer and only logs deliveries.
type SMTPConfig struct {
	Host     string `envconfig:"SMTP_HOST"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"SMTP_USERNAME"`
	Password string `envconfig:"SMTP_PASSWORD"`
	From     string `envconfig:"SMTP_FROM" default:"no-reply@healthscreen.local"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
