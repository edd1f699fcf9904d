// Package config загружает настройки сервиса из config.toml,
// .env и переменных окружения
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	"github.com/m04kA/SMC-SportsBookingService/pkg/types"
)

// ErrInvalidConfig возвращается, когда конфигурация не проходит проверку
var ErrInvalidConfig = errors.New("config: invalid configuration")

const defaultAdvanceBookingDays = 14

// Config конфигурация сервиса
type Config struct {
	Server         ServerConfig         `toml:"server"`
	Database       DatabaseConfig       `toml:"database"`
	Logs           LogsConfig           `toml:"logs"`
	Metrics        MetricsConfig        `toml:"metrics"`
	Auth           AuthConfig           `toml:"auth"`
	Redis          RedisConfig          `toml:"redis"`
	RabbitMQ       RabbitMQConfig       `toml:"rabbitmq"`
	UserService    UserServiceConfig    `toml:"user_service"`
	PaymentGateway PaymentGatewayConfig `toml:"payment_gateway"`
	Booking        BookingConfig        `toml:"booking"`
	Scheduler      SchedulerConfig      `toml:"scheduler"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig настройки Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// AuthConfig настройки аутентификации.
// Заголовкам X-User-ID/X-User-Role от API gateway доверяем только при пустом
// JWTSecret и явно включенном TrustGatewayHeaders.
type AuthConfig struct {
	JWTSecret           string `toml:"jwt_secret"`
	TrustGatewayHeaders bool   `toml:"trust_gateway_headers"`
}

// RedisConfig кэш занятых слотов
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	TTL      int    `toml:"ttl"` // секунды
}

// RabbitMQConfig очередь исходящих уведомлений
type RabbitMQConfig struct {
	Enabled     bool   `toml:"enabled"`
	URL         string `toml:"url"`
	Queue       string `toml:"queue"`
	Workers     int    `toml:"workers"`
	BufferSize  int    `toml:"buffer_size"`
	MaxAttempts int    `toml:"max_attempts"`
}

// UserServiceConfig клиент сервиса пользователей
type UserServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// PaymentGatewayConfig настройки платежного шлюза
type PaymentGatewayConfig struct {
	PaymentURL    string `toml:"payment_url"`
	TmnCode       string `toml:"tmn_code"`
	HashSecret    string `toml:"hash_secret"`
	ReturnURL     string `toml:"return_url"`
	ExpireMinutes int    `toml:"expire_minutes"`
}

// BookingConfig расписание слотов и часовой пояс объектов
type BookingConfig struct {
	TimeZone           string `toml:"time_zone"`
	OpenTime           string `toml:"open_time"`
	CloseTime          string `toml:"close_time"`
	SlotMinutes        int    `toml:"slot_minutes"`
	AdvanceBookingDays *int   `toml:"advance_booking_days"` // 0 - без ограничения
}

// Location часовой пояс бронирований
func (b BookingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(b.TimeZone)
}

// Schedule расписание слотов. Вызывать после Validate
func (b BookingConfig) Schedule() domain.SlotSchedule {
	schedule := domain.SlotSchedule{
		OpenTime:    types.TimeString(b.OpenTime),
		CloseTime:   types.TimeString(b.CloseTime),
		SlotMinutes: b.SlotMinutes,
	}
	if b.AdvanceBookingDays != nil {
		schedule.AdvanceBookingDays = *b.AdvanceBookingDays
	}
	return schedule
}

// SchedulerConfig фоновые задачи
type SchedulerConfig struct {
	Enabled       bool   `toml:"enabled"`
	ReconcileCron string `toml:"reconcile_cron"`
}

// Load читает .env (если есть), затем path, затем применяет переменные окружения
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate проставляет значения по умолчанию и проверяет обязательные поля
func (c *Config) Validate() error {
	setDefault(&c.Server.HTTPPort, 8080)
	setDefault(&c.Server.ReadTimeout, 15)
	setDefault(&c.Server.WriteTimeout, 15)
	setDefault(&c.Server.IdleTimeout, 60)
	setDefault(&c.Server.ShutdownTimeout, 10)

	setDefault(&c.Database.Port, 5432)
	setDefault(&c.Database.MaxOpenConns, 25)
	setDefault(&c.Database.MaxIdleConns, 5)
	setDefault(&c.Database.ConnMaxLifetime, 300)
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "sports_booking_service"
	}

	setDefault(&c.Redis.TTL, 60)

	if c.RabbitMQ.Queue == "" {
		c.RabbitMQ.Queue = "sports_booking.notifications"
	}

	setDefault(&c.UserService.Timeout, 5)
	setDefault(&c.PaymentGateway.ExpireMinutes, 15)

	if c.Booking.TimeZone == "" {
		c.Booking.TimeZone = "UTC"
	}
	if c.Booking.OpenTime == "" {
		c.Booking.OpenTime = "06:00"
	}
	if c.Booking.CloseTime == "" {
		c.Booking.CloseTime = "22:00"
	}
	setDefault(&c.Booking.SlotMinutes, 60)
	if c.Booking.AdvanceBookingDays == nil {
		days := defaultAdvanceBookingDays
		c.Booking.AdvanceBookingDays = &days
	}

	if c.Scheduler.ReconcileCron == "" {
		c.Scheduler.ReconcileCron = "@every 1h"
	}

	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("%w: database host and dbname are required", ErrInvalidConfig)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis.addr is required when redis is enabled", ErrInvalidConfig)
	}
	if c.RabbitMQ.Enabled && c.RabbitMQ.URL == "" {
		return fmt.Errorf("%w: rabbitmq.url is required when rabbitmq is enabled", ErrInvalidConfig)
	}
	if c.Auth.JWTSecret == "" && !c.Auth.TrustGatewayHeaders {
		return fmt.Errorf("%w: auth.jwt_secret is required unless auth.trust_gateway_headers is set", ErrInvalidConfig)
	}
	if c.PaymentGateway.HashSecret == "" {
		return fmt.Errorf("%w: payment_gateway.hash_secret is required", ErrInvalidConfig)
	}
	if *c.Booking.AdvanceBookingDays < 0 {
		return fmt.Errorf("%w: booking.advance_booking_days must not be negative", ErrInvalidConfig)
	}
	if _, err := c.Booking.Location(); err != nil {
		return fmt.Errorf("%w: booking.time_zone: %v", ErrInvalidConfig, err)
	}

	open, err := types.NewTimeStringFromString(c.Booking.OpenTime)
	if err != nil {
		return fmt.Errorf("%w: booking.open_time: %v", ErrInvalidConfig, err)
	}
	closing, err := types.NewTimeStringFromString(c.Booking.CloseTime)
	if err != nil {
		return fmt.Errorf("%w: booking.close_time: %v", ErrInvalidConfig, err)
	}
	if !open.IsBefore(closing) {
		return fmt.Errorf("%w: booking.open_time must be before close_time", ErrInvalidConfig)
	}
	c.Booking.OpenTime, c.Booking.CloseTime = open.String(), closing.String()

	return nil
}

func (c *Config) overrideWithEnv() {
	envInt("HTTP_PORT", &c.Server.HTTPPort)

	envString("DB_HOST", &c.Database.Host)
	envInt("DB_PORT", &c.Database.Port)
	envString("DB_USER", &c.Database.User)
	envString("DB_PASSWORD", &c.Database.Password)
	envString("DB_NAME", &c.Database.DBName)
	envString("DB_SSLMODE", &c.Database.SSLMode)

	envString("LOG_LEVEL", &c.Logs.Level)
	envString("JWT_SECRET", &c.Auth.JWTSecret)
	envBool("AUTH_TRUST_GATEWAY_HEADERS", &c.Auth.TrustGatewayHeaders)

	envString("REDIS_ADDR", &c.Redis.Addr)
	envString("REDIS_PASSWORD", &c.Redis.Password)

	envString("RABBITMQ_URL", &c.RabbitMQ.URL)

	envString("USER_SERVICE_URL", &c.UserService.URL)

	envString("PAYMENT_TMN_CODE", &c.PaymentGateway.TmnCode)
	envString("PAYMENT_HASH_SECRET", &c.PaymentGateway.HashSecret)
	envString("PAYMENT_RETURN_URL", &c.PaymentGateway.ReturnURL)

	envString("BOOKING_TIME_ZONE", &c.Booking.TimeZone)
}

func setDefault(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
