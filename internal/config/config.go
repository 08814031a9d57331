package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// ConfigFileEnv names an optional YAML file layered over the defaults.
	ConfigFileEnv = "FEEDBACK_CONFIG"
	envPrefix     = "FEEDBACK_"

	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// legacyEnv maps the unprefixed variable names used by existing deployments
// onto config keys.
var legacyEnv = map[string]string{
	"ENV":             "env",
	"PORT":            "port",
	"LOG_LEVEL":       "log_level",
	"ALLOWED_ORIGINS": "allowed_origins",
	"ALLOWED_HOST":    "allowed_host",
	"FRONTEND_URL":    "frontend_url",
	"MONGODB_URI":     "mongo_uri",
	"MONGO_URI":       "mongo_uri",
	"POSTGRES_URI":    "postgres_uri",
	"STORE_DRIVER":    "store_driver",
	"EMAIL_USER":      "email_user",
	"EMAIL_PASS":      "email_pass",
	"EMAIL_FROM":      "email_from",
	"OPERATOR_EMAIL":  "operator_email",
	"SMTP_HOST":       "smtp_host",
	"SMTP_PORT":       "smtp_port",
	"NOTIFY_TIMEZONE": "notify_timezone",
}

type Config struct {
	Environment    string   `koanf:"env"` // production, development, ...
	Port           string   `koanf:"port"`
	LogLevel       string   `koanf:"log_level"`
	AllowedOrigins []string `koanf:"allowed_origins"` // CORS; falls back to FrontendURL
	FrontendURL    string   `koanf:"frontend_url"`
	AllowedHost    string   `koanf:"allowed_host"` // production Host check; empty disables

	StoreDriver  string        `koanf:"store_driver"` // mongo or postgres
	MongoURI     string        `koanf:"mongo_uri"`
	PostgresURI  string        `koanf:"postgres_uri"`
	StoreTimeout time.Duration `koanf:"store_timeout"`

	// Categories optionally restricts the category field; empty accepts any value
	Categories []string `koanf:"categories"`

	SMTPHost       string        `koanf:"smtp_host"`
	SMTPPort       int           `koanf:"smtp_port"`
	EmailUser      string        `koanf:"email_user"`
	EmailPass      string        `koanf:"email_pass"`
	EmailFrom      string        `koanf:"email_from"`
	OperatorEmail  string        `koanf:"operator_email"`
	EmailTimeout   time.Duration `koanf:"email_timeout"`
	NotifyTimezone string        `koanf:"notify_timezone"`

	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() *Config {
	return &Config{
		Environment:     "development",
		Port:            "5000",
		LogLevel:        "info",
		FrontendURL:     "http://localhost:3000",
		StoreDriver:     DriverMongo,
		MongoURI:        "mongodb://localhost:27017/feedback",
		PostgresURI:     "postgres://localhost:5432/feedback?sslmode=disable",
		StoreTimeout:    5 * time.Second,
		SMTPHost:        "smtp.gmail.com",
		SMTPPort:        587,
		EmailTimeout:    15 * time.Second,
		NotifyTimezone:  "UTC",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load layers, lowest precedence first: defaults, the YAML file named by
// FEEDBACK_CONFIG, the unprefixed legacy variables, FEEDBACK_* variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", legacyKey), nil); err != nil {
		return nil, fmt.Errorf("load legacy env: %w", err)
	}

	prefixed := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Defaults()
	// Decoding merges into existing slices, so only seed categories when unset.
	// An explicitly empty list accepts any category.
	if k.Exists("categories") {
		cfg.Categories = nil
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func legacyKey(name string) string {
	// MONGODB_URI wins over MONGO_URI
	if name == "MONGO_URI" && os.Getenv("MONGODB_URI") != "" {
		return ""
	}
	return legacyEnv[name]
}

func (c *Config) normalize() {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.AllowedOrigins = trimList(c.AllowedOrigins)
	if len(c.AllowedOrigins) == 0 && strings.TrimSpace(c.FrontendURL) != "" {
		c.AllowedOrigins = []string{strings.TrimSpace(c.FrontendURL)}
	}
	c.Categories = trimList(c.Categories)
}

// Validate reports settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("port must not be empty"))
	}
	switch c.StoreDriver {
	case DriverMongo, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.StoreDriver))
	}
	if c.EmailEnabled() && c.SMTPPort <= 0 {
		errs = append(errs, fmt.Errorf("invalid smtp port %d", c.SMTPPort))
	}
	if _, err := time.LoadLocation(c.NotifyTimezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid notify timezone %q: %w", c.NotifyTimezone, err))
	}
	return errors.Join(errs...)
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// EmailEnabled reports whether an SMTP account is configured.
func (c *Config) EmailEnabled() bool {
	return strings.TrimSpace(c.EmailUser) != ""
}

// Operator returns the recipient of new-feedback alerts.
func (c *Config) Operator() string {
	if c.OperatorEmail != "" {
		return c.OperatorEmail
	}
	return c.EmailUser
}

// Location returns the timezone used in operator alerts.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.NotifyTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func trimList(in []string) []string {
	var out []string
	for _, part := range in {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
