package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type App struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":5000"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Store
	StoreDriver  string        `envconfig:"STORE_DRIVER" default:"mongo"`
	MongoURI     string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDB      string        `envconfig:"MONGO_DB" default:"Register"`
	PostgresDSN  string        `envconfig:"POSTGRES_DSN"`
	StoreTimeout time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`

	// Mail relay
	SMTPHost    string        `envconfig:"SMTP_HOST"`
	SMTPPort    string        `envconfig:"SMTP_PORT" default:"465"`
	SMTPUser    string        `envconfig:"SMTP_USER"`
	SMTPPass    string        `envconfig:"SMTP_PASS"`
	SMTPFrom    string        `envconfig:"SMTP_FROM"`
	MailTimeout time.Duration `envconfig:"MAIL_TIMEOUT" default:"10s"`

	// Events
	RabbitMQURL string `envconfig:"RABBITMQ_URL"`
	EventsQueue string `envconfig:"EVENTS_QUEUE" default:"registry_events"`

	HospitalIDMaxAttempts int `envconfig:"HOSPITAL_ID_MAX_ATTEMPTS" default:"50"`
}

// Load reads an optional .env file, then the process environment.
func Load() (App, error) {
	_ = godotenv.Load()

	var c App
	if err := envconfig.Process("", &c); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func (c App) Validate() error {
	switch c.StoreDriver {
	case DriverMongo, DriverMemory:
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when STORE_DRIVER=%s", DriverPostgres)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.SMTPHost != "" && (c.SMTPUser == "" || c.SMTPPass == "") {
		return fmt.Errorf("SMTP_USER and SMTP_PASS are required when SMTP_HOST is set")
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.HospitalIDMaxAttempts <= 0 {
		return fmt.Errorf("HOSPITAL_ID_MAX_ATTEMPTS must be positive")
	}
	return nil
}
