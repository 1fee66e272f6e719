package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Backend drivers.
const (
	DriverAppwrite = "appwrite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server      ServerConfig
	Backend     BackendConfig
	Appwrite    AppwriteConfig
	Postgres    PostgresConfig
	Session     SessionConfig
	Redis       RedisConfig
	Flow        FlowConfig
	Admin       AdminConfig
	Idempotency IdempotencyConfig
	RateLimit   RateLimitConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type BackendConfig struct {
	Driver string
}

type AppwriteConfig struct {
	Endpoint           string
	ProjectID          string
	APIKey             string
	DatabaseID         string
	UsersCollection    string
	MoviesCollection   string
	BookingsCollection string
	Timeout            time.Duration
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
	MaxConns int32
}

// SessionConfig covers sessions issued by the postgres and memory drivers.
// Secret is only read by postgres.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type FlowConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

type AdminConfig struct {
	Key string
}

type IdempotencyConfig struct {
	TTL time.Duration
}

type RateLimitConfig struct {
	AuthLimit  int
	AuthWindow time.Duration
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	var errs []error
	env := envReader{errs: &errs}

	cfg := &Config{
		Server: ServerConfig{
			Host: env.str("SERVER_HOST", "localhost"),
			Port: env.integer("SERVER_PORT", 8080),
		},
		Backend: BackendConfig{
			Driver: env.str("BACKEND_DRIVER", DriverAppwrite),
		},
		Appwrite: AppwriteConfig{
			Endpoint:           env.str("APPWRITE_ENDPOINT", "https://cloud.appwrite.io/v1"),
			ProjectID:          os.Getenv("APPWRITE_PROJECT_ID"),
			APIKey:             os.Getenv("APPWRITE_API_KEY"),
			DatabaseID:         os.Getenv("APPWRITE_DATABASE_ID"),
			UsersCollection:    os.Getenv("APPWRITE_USERS_COLLECTION_ID"),
			MoviesCollection:   os.Getenv("APPWRITE_MOVIES_COLLECTION_ID"),
			BookingsCollection: os.Getenv("APPWRITE_BOOKINGS_COLLECTION_ID"),
			Timeout:            env.duration("APPWRITE_TIMEOUT", 12*time.Second),
		},
		Postgres: PostgresConfig{
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Name:     os.Getenv("POSTGRES_DB"),
			Host:     env.str("POSTGRES_HOST", "localhost"),
			Port:     env.integer("POSTGRES_PORT", 5432),
			SSLMode:  env.str("POSTGRES_SSLMODE", "disable"),
			MaxConns: int32(env.integer("POSTGRES_MAX_CONNS", 0)),
		},
		Session: SessionConfig{
			Secret: os.Getenv("SESSION_SECRET"),
			TTL:    env.duration("SESSION_TTL", 30*24*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     env.str("REDIS_ADDR", "localhost:6380"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       env.integer("REDIS_DB", 0),
		},
		Flow: FlowConfig{
			IdleTTL:       env.duration("FLOW_IDLE_TTL", 30*time.Minute),
			SweepInterval: env.duration("FLOW_SWEEP_INTERVAL", time.Minute),
		},
		Admin: AdminConfig{
			Key: os.Getenv("ADMIN_KEY"),
		},
		Idempotency: IdempotencyConfig{
			TTL: env.duration("IDEMPOTENCY_TTL", 2*time.Hour),
		},
		RateLimit: RateLimitConfig{
			AuthLimit:  env.integer("RATE_LIMIT_AUTH", 10),
			AuthWindow: env.duration("RATE_LIMIT_AUTH_WINDOW", time.Minute),
		},
	}

	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", op, errors.Join(errs...))
	}

	return cfg, nil
}

// validate checks the settings the selected backend driver needs.
func (c *Config) validate() []error {
	var errs []error

	missing := func(name, value string) {
		if value == "" {
			errs = append(errs, fmt.Errorf("missing %s", name))
		}
	}

	switch c.Backend.Driver {
	case DriverAppwrite:
		missing("APPWRITE_PROJECT_ID", c.Appwrite.ProjectID)
		missing("APPWRITE_API_KEY", c.Appwrite.APIKey)
		missing("APPWRITE_DATABASE_ID", c.Appwrite.DatabaseID)
		missing("APPWRITE_USERS_COLLECTION_ID", c.Appwrite.UsersCollection)
		missing("APPWRITE_MOVIES_COLLECTION_ID", c.Appwrite.MoviesCollection)
		missing("APPWRITE_BOOKINGS_COLLECTION_ID", c.Appwrite.BookingsCollection)
	case DriverPostgres:
		missing("POSTGRES_USER", c.Postgres.User)
		missing("POSTGRES_PASSWORD", c.Postgres.Password)
		missing("POSTGRES_DB", c.Postgres.Name)
		if len(c.Session.Secret) < 32 {
			errs = append(errs, errors.New("SESSION_SECRET must be at least 32 bytes"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown BACKEND_DRIVER %q", c.Backend.Driver))
	}

	if c.RateLimit.AuthLimit < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_AUTH must not be negative"))
	}

	return errs
}

// DSN is the pgx connection string of the postgres settings.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.Name,
		p.SSLMode,
	)
}

// envReader reads typed variables, collecting parse errors instead of
// stopping at the first.
type envReader struct {
	errs *[]error
}

func (r envReader) str(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func (r envReader) integer(name string, def int) int {
	s := os.Getenv(name)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		*r.errs = append(*r.errs, fmt.Errorf("invalid %s: %w", name, err))
		return def
	}
	return v
}

func (r envReader) duration(name string, def time.Duration) time.Duration {
	s := os.Getenv(name)
	if s == "" {
		return def
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		*r.errs = append(*r.errs, fmt.Errorf("invalid %s: %w", name, err))
		return def
	}
	return v
}
