package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Cash received policies for a sale submission.
const (
	CashPolicyManual = "manual" // entered by the salesperson, checked against the total
	CashPolicyAuto   = "auto"   // forced to the computed total
)

// Config holds everything the server reads from the environment (.env first).
type Config struct {
	Addr    string `envconfig:"APP_ADDR" default:":8080"`
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:8080"`

	DBDriver   string `envconfig:"DB_DRIVER" default:"mysql"`
	DBDSN      string `envconfig:"DB_DSN"`
	DBLogLevel string `envconfig:"DB_LOG_LEVEL" default:"warn"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	CORSOrigins       []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
	AllowRegistration bool     `envconfig:"ALLOW_REGISTRATION" default:"false"`

	CashReceivedPolicy string `envconfig:"CASH_RECEIVED_POLICY" default:"manual"`
	SaleRequirePlate   bool   `envconfig:"SALE_REQUIRE_PLATE" default:"false"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash-001"`

	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogDevelopment bool   `envconfig:"LOG_DEVELOPMENT" default:"false"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.DBDSN == "" {
		return errors.New("DB_DSN must be provided")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided")
	}
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.CashReceivedPolicy {
	case CashPolicyManual, CashPolicyAuto:
	default:
		return fmt.Errorf("unsupported CASH_RECEIVED_POLICY %q", c.CashReceivedPolicy)
	}
	return nil
}

// AssistantEnabled reports whether the /ask endpoint has credentials.
func (c *Config) AssistantEnabled() bool {
	return c != nil && c.GeminiAPIKey != ""
}
