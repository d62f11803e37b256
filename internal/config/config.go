package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App  AppConfig
	DB   DBConfig
	Log  LogConfig
	Auth AuthConfig
	CORS CORSConfig
}

type AppConfig struct {
	Name string `envconfig:"APP_NAME" default:"maestro-detail"`
	Env  string `envconfig:"APP_ENV" default:"development"`
	Port string `envconfig:"PORT" default:"8080"`
}

type DBConfig struct {
	Driver          string        `envconfig:"DB_DRIVER" default:"postgres"`
	DSN             string        `envconfig:"DB_DSN"`
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            string        `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"postgres"`
	Password        string        `envconfig:"DB_PASSWORD" default:"postgres"`
	Name            string        `envconfig:"DB_NAME" default:"maestro_detail"`
	SSLMode         string        `envconfig:"DB_SSLMODE" default:"disable"`
	SQLitePath      string        `envconfig:"DB_SQLITE_PATH" default:"maestro.db"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`
	LogLevel        string        `envconfig:"DB_LOG_LEVEL" default:"warn"`
	Migrate         bool          `envconfig:"DB_MIGRATE" default:"false"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE"`
}

type AuthConfig struct {
	JWTSecret string `envconfig:"JWT_SECRET"`
}

type CORSConfig struct {
	AllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:5173,http://localhost:8081"`
}

// Load reads configs/.env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	if cfg.DB.Driver != DriverPostgres && cfg.DB.Driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}

	return &cfg, nil
}

// ConnectionString returns the DSN for the configured driver. DB_DSN wins when set.
func (c DBConfig) ConnectionString() string {
	if c.DSN != "" {
		return c.DSN
	}
	if c.Driver == DriverSQLite {
		return c.SQLitePath
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Enabled reports whether API routes require a bearer token.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}
