package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Payroll  PayrollConfig
	NATS     NATSConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// PayrollConfig holds the company-wide computation policy.
type PayrollConfig struct {
	LateDayMultiplier   decimal.Decimal
	AbsentDayMultiplier decimal.Decimal
	OvertimeNormal      decimal.Decimal
	OvertimeWeekend     decimal.Decimal
	OvertimeHoliday     decimal.Decimal
	HoursPerDay         int
	WorkingWeekdays     []time.Weekday
	StatutoryRulesPath  string // empty uses the built-in table
}

type NATSConfig struct {
	URL string // empty disables event publishing
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "simplehr"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Payroll configuration
	payroll := PayrollConfig{
		StatutoryRulesPath: getEnv("STATUTORY_RULES_PATH", ""),
	}
	decimals := []struct {
		key      string
		fallback string
		dst      *decimal.Decimal
	}{
		{"PAYROLL_LATE_DAY_MULTIPLIER", "0.5", &payroll.LateDayMultiplier},
		{"PAYROLL_ABSENT_DAY_MULTIPLIER", "1", &payroll.AbsentDayMultiplier},
		{"PAYROLL_OVERTIME_NORMAL", "1.5", &payroll.OvertimeNormal},
		{"PAYROLL_OVERTIME_WEEKEND", "2", &payroll.OvertimeWeekend},
		{"PAYROLL_OVERTIME_HOLIDAY", "2", &payroll.OvertimeHoliday},
	}
	for _, d := range decimals {
		v, err := decimal.NewFromString(getEnv(d.key, d.fallback))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}
	payroll.HoursPerDay, err = strconv.Atoi(getEnv("PAYROLL_HOURS_PER_DAY", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_HOURS_PER_DAY: %w", err)
	}
	payroll.WorkingWeekdays, err = parseWeekdays(getEnvSlice("PAYROLL_WORKING_WEEKDAYS", "mon,tue,wed,thu,fri"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_WORKING_WEEKDAYS: %w", err)
	}
	config.Payroll = payroll

	config.NATS = NATSConfig{URL: getEnv("NATS_URL", "")}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Database.MinConns < 0 || c.Database.MaxConns < 1 || c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS/DB_MAX_CONNS out of range")
	}
	for name, d := range map[string]decimal.Decimal{
		"PAYROLL_LATE_DAY_MULTIPLIER":   c.Payroll.LateDayMultiplier,
		"PAYROLL_ABSENT_DAY_MULTIPLIER": c.Payroll.AbsentDayMultiplier,
		"PAYROLL_OVERTIME_NORMAL":       c.Payroll.OvertimeNormal,
		"PAYROLL_OVERTIME_WEEKEND":      c.Payroll.OvertimeWeekend,
		"PAYROLL_OVERTIME_HOLIDAY":      c.Payroll.OvertimeHoliday,
	} {
		if d.IsNegative() {
			return fmt.Errorf("%s must be non-negative", name)
		}
	}
	if c.Payroll.HoursPerDay < 1 || c.Payroll.HoursPerDay > 24 {
		return fmt.Errorf("PAYROLL_HOURS_PER_DAY must be between 1 and 24")
	}
	if len(c.Payroll.WorkingWeekdays) == 0 {
		return fmt.Errorf("PAYROLL_WORKING_WEEKDAYS is required")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key, fallback string) []string {
	value := getEnv(key, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

func parseWeekdays(names []string) ([]time.Weekday, error) {
	seen := make(map[time.Weekday]bool)
	var days []time.Weekday
	for _, n := range names {
		d, ok := weekdayNames[strings.ToLower(n)]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", n)
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	return days, nil
}
