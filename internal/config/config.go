package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Leave    LeaveConfig
	Cron     CronConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	Timezone    string
	FrontendURL string
}

type DatabaseConfig struct {
	Driver   string
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

// LeaveConfig holds the accounting constants.
type LeaveConfig struct {
	RegularWorkHours      int
	OvertimeGraceMinutes  int
	OvertimeMultiplier    decimal.Decimal
	MonthlyAccrualRate    decimal.Decimal
	AccrualCodes          []string
	CarryOverCodes        []string
	SickLeaveCode         string
	CompensatoryLeaveCode string
}

type CronConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Load reads the environment. A .env file in the working directory is
// applied first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	var errs []error

	// Application configuration
	config.App = AppConfig{
		Port:        getEnvInt("APP_PORT", 8080, &errs),
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Timezone:    getEnv("APP_TIMEZONE", "UTC"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// Database configuration
	config.Database = DatabaseConfig{
		Driver:   strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432, &errs),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "leave_engine"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(getEnvInt("DB_MAX_CONNS", 25, &errs)),
		MinConns: int32(getEnvInt("DB_MIN_CONNS", 5, &errs)),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Leave accounting
	config.Leave = LeaveConfig{
		RegularWorkHours:      getEnvInt("LEAVE_REGULAR_WORK_HOURS", 8, &errs),
		OvertimeGraceMinutes:  getEnvInt("LEAVE_OVERTIME_GRACE_MINUTES", 20, &errs),
		OvertimeMultiplier:    getEnvDecimal("LEAVE_OVERTIME_MULTIPLIER", "1.5", &errs),
		MonthlyAccrualRate:    getEnvDecimal("LEAVE_MONTHLY_ACCRUAL_RATE", "1.25", &errs),
		AccrualCodes:          getEnvSlice("LEAVE_ACCRUAL_CODES", "VL,SL"),
		CarryOverCodes:        getEnvSlice("LEAVE_CARRY_OVER_CODES", "VL,SL"),
		SickLeaveCode:         strings.ToUpper(getEnv("LEAVE_SICK_CODE", "SL")),
		CompensatoryLeaveCode: strings.ToUpper(getEnv("LEAVE_COMPENSATORY_CODE", "CL")),
	}

	// Scheduled jobs
	interval, err := time.ParseDuration(getEnv("CRON_INTERVAL", "1h"))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid CRON_INTERVAL: %w", err))
	}
	config.Cron = CronConfig{
		Enabled:  getEnvBool("CRON_ENABLED", true, &errs),
		Interval: interval,
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Database.Driver)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	if c.Leave.RegularWorkHours <= 0 {
		return fmt.Errorf("LEAVE_REGULAR_WORK_HOURS must be positive")
	}
	if c.Leave.OvertimeGraceMinutes < 0 {
		return fmt.Errorf("LEAVE_OVERTIME_GRACE_MINUTES must not be negative")
	}
	if !c.Leave.OvertimeMultiplier.IsPositive() {
		return fmt.Errorf("LEAVE_OVERTIME_MULTIPLIER must be positive")
	}
	if !c.Leave.MonthlyAccrualRate.IsPositive() {
		return fmt.Errorf("LEAVE_MONTHLY_ACCRUAL_RATE must be positive")
	}
	if c.Leave.SickLeaveCode == "" || c.Leave.CompensatoryLeaveCode == "" {
		return fmt.Errorf("LEAVE_SICK_CODE and LEAVE_COMPENSATORY_CODE are required")
	}
	if c.Cron.Enabled && c.Cron.Interval <= 0 {
		return fmt.Errorf("CRON_INTERVAL must be positive")
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

// Location is the zone "today" is computed in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) LeavePolicy() leave.Policy {
	return leave.Policy{
		OvertimeMultiplier:    c.Leave.OvertimeMultiplier,
		MonthlyAccrualRate:    c.Leave.MonthlyAccrualRate,
		HoursPerDay:           decimal.NewFromInt(int64(c.Leave.RegularWorkHours)),
		AccrualCodes:          c.Leave.AccrualCodes,
		CarryOverCodes:        c.Leave.CarryOverCodes,
		SickLeaveCode:         c.Leave.SickLeaveCode,
		CompensatoryLeaveCode: c.Leave.CompensatoryLeaveCode,
	}
}

func (c *Config) AttendancePolicy() attendance.Policy {
	return attendance.NewPolicy(c.Leave.RegularWorkHours, c.Leave.OvertimeGraceMinutes)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return b
}

func getEnvDecimal(key, fallback string, errs *[]error) decimal.Decimal {
	d, err := decimal.NewFromString(getEnv(key, fallback))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return decimal.Zero
	}
	return d
}

// getEnvSlice splits a comma separated list, upper-casing and dropping blanks.
func getEnvSlice(key, fallback string) []string {
	var result []string
	for _, part := range strings.Split(getEnv(key, fallback), ",") {
		if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
			result = append(result, part)
		}
	}
	return result
}
