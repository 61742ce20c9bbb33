package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata" // зоны лиги нужны и в образах без tzdata

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/Dosada05/league-system/storage"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string `env:"DATABASE_URL,required"`
	JWTSecretKey string `env:"JWT_SECRET_KEY,required"`
	ServerPort   int    `env:"SERVER_PORT" envDefault:"8080"`

	// PointsPerWin не имеет значения по умолчанию: его задаёт лига.
	PointsPerWin           int    `env:"POINTS_PER_WIN,required"`
	DefaultRoundLengthDays int    `env:"DEFAULT_ROUND_LENGTH_DAYS" envDefault:"15"`
	MinPlayers             int    `env:"MIN_PLAYERS" envDefault:"2"`
	CronSecret             string `env:"CRON_SECRET,required"`
	LeagueTimezone         string `env:"LEAGUE_TIMEZONE" envDefault:"America/Argentina/Buenos_Aires"`
	ExpiryCron             string `env:"EXPIRY_CRON"`

	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	R2AccountID       string `env:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	R2BucketName      string `env:"R2_BUCKET_NAME"`
	R2PublicBaseURL   string `env:"R2_PUBLIC_BASE_URL"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	LoginRatePerSecond float64  `env:"LOGIN_RATE_PER_SECOND" envDefault:"5"`
	LogLevel           string   `env:"LOG_LEVEL" envDefault:"info"`

	location *time.Location
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse(env.Options{})
}

// Parse reads the environment described by opts and validates the result.
// Tests pass opts.Environment instead of touching the process environment.
func Parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if c.PointsPerWin < 1 {
		return fmt.Errorf("POINTS_PER_WIN must be at least 1, got %d", c.PointsPerWin)
	}
	if c.DefaultRoundLengthDays < 1 {
		return fmt.Errorf("DEFAULT_ROUND_LENGTH_DAYS must be at least 1, got %d", c.DefaultRoundLengthDays)
	}
	if c.MinPlayers < 2 {
		return fmt.Errorf("MIN_PLAYERS must be at least 2, got %d", c.MinPlayers)
	}
	if c.LoginRatePerSecond <= 0 {
		return fmt.Errorf("LOGIN_RATE_PER_SECOND must be positive, got %v", c.LoginRatePerSecond)
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	if r2 := c.R2(); r2.Enabled() && !r2.Complete() {
		return errors.New("R2 settings are all-or-nothing: set every R2_* variable or none")
	}
	if _, err := c.logLevel(); err != nil {
		return err
	}

	loc, err := time.LoadLocation(c.LeagueTimezone)
	if err != nil {
		return fmt.Errorf("invalid LEAGUE_TIMEZONE %q: %w", c.LeagueTimezone, err)
	}
	c.location = loc
	return nil
}

// Location is the league's time zone; a round period ends at midnight there.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func (c *Config) R2() storage.R2Config {
	return storage.R2Config{
		AccountID:       c.R2AccountID,
		AccessKeyID:     c.R2AccessKeyID,
		SecretAccessKey: c.R2SecretAccessKey,
		BucketName:      c.R2BucketName,
		PublicBaseURL:   c.R2PublicBaseURL,
	}
}

// SlogLevel returns the parsed LOG_LEVEL. validate has already rejected
// unknown values.
func (c *Config) SlogLevel() slog.Level {
	level, _ := c.logLevel()
	return level
}

func (c *Config) logLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
}
