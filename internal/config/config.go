package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	Tracing   TracingConfig
	Scoring   ScoringConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Warnings собирает некритичные проблемы загрузки; main выводит их после инициализации логгера
	Warnings []string `mapstructure:"-"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	Mode         string // debug | release | test
	// AllowOrigins: список origin для CORS
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// MigrationsPath: путь к SQL-миграциям в формате file://
	MigrationsPath string `mapstructure:"migrations_path"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single'.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // мс
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // мс
}

// JWTConfig содержит параметры проверки токенов внешнего сервиса идентификации
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// LogConfig задает ротацию файла логов
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// TracingConfig содержит настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	Endpoint    string `mapstructure:"endpoint"`
}

// ScoringConfig управляет выбором стратегии подсчета баллов
type ScoringConfig struct {
	// RemoteEnabled: вызывать ли хранимую функцию calculate_quiz_score перед локальным подсчетом
	RemoteEnabled bool `mapstructure:"remote_enabled"`
	// StatisticsRoutineEnabled: вызывать ли get_quiz_statistics перед локальной агрегацией
	StatisticsRoutineEnabled bool `mapstructure:"statistics_routine_enabled"`
}

// CacheConfig содержит TTL кешей
type CacheConfig struct {
	StatisticsTTLSec int `mapstructure:"statistics_ttl_sec"`
}

// RateLimitConfig содержит настройки ограничения запросов к API
type RateLimitConfig struct {
	MaxRequests int `mapstructure:"max_requests"`
	WindowSec   int `mapstructure:"window_sec"`
	// LocalBurst: размер burst для in-process лимитера, если Redis недоступен
	LocalBurst int `mapstructure:"local_burst"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// IsDebug сообщает, запущен ли сервер в режиме отладки
func (s *ServerConfig) IsDebug() bool {
	return s.Mode == "debug"
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	vip := viper.New()

	// 1. Значения по умолчанию
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 15)
	vip.SetDefault("server.write_timeout", 15)
	vip.SetDefault("server.mode", "release")
	vip.SetDefault("server.allow_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.migrations_path", "file://migrations")
	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("jwt.issuer", "identity-service")
	vip.SetDefault("log.file", "logs/app.log")
	vip.SetDefault("log.max_size_mb", 100)
	vip.SetDefault("log.max_backups", 5)
	vip.SetDefault("log.max_age_days", 30)
	vip.SetDefault("log.compress", true)
	vip.SetDefault("tracing.service_name", "quiz-engine")
	vip.SetDefault("scoring.remote_enabled", true)
	vip.SetDefault("scoring.statistics_routine_enabled", true)
	vip.SetDefault("cache.statistics_ttl_sec", 60)
	vip.SetDefault("rate_limit.max_requests", 120)
	vip.SetDefault("rate_limit.window_sec", 60)
	vip.SetDefault("rate_limit.local_burst", 20)

	// 2. Привязываем переменные окружения ЯВНО
	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.mode", "GIN_MODE")

	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.issuer", "JWT_ISSUER")

	vip.BindEnv("tracing.enabled", "TRACING_ENABLED")
	vip.BindEnv("tracing.endpoint", "TRACING_ENDPOINT")

	vip.BindEnv("scoring.remote_enabled", "SCORING_REMOTE_ENABLED")

	var warnings []string

	// 3. Файл конфигурации (не страшно, если его нет, т.к. есть BindEnv)
	if configPath != "" {
		if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
			warnings = append(warnings, fmt.Sprintf("config file %q not found, using env/defaults", configPath))
		} else {
			vip.SetConfigFile(configPath)
			if err := vip.ReadInConfig(); err != nil {
				warnings = append(warnings, fmt.Sprintf("failed to read config file %q: %v", configPath, err))
			}
		}
	}

	// 4. Анмаршалим конфигурацию
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Warnings = warnings

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate проверяет обязательные параметры
func (c *Config) validate() error {
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required (check JWT_SECRET env var)")
	}
	if !c.Server.IsDebug() && c.Database.Password == "" {
		return fmt.Errorf("database password is required in non-debug mode (check DATABASE_PASSWORD env var)")
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing is enabled but TRACING_ENDPOINT is empty")
	}
	if c.RateLimit.MaxRequests <= 0 || c.RateLimit.WindowSec <= 0 {
		return fmt.Errorf("rate_limit.max_requests and rate_limit.window_sec must be positive")
	}
	return nil
}
