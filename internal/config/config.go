package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" validate:"required"`
	Store   StoreConfig   `mapstructure:"store" validate:"required"`
	Game    GameConfig    `mapstructure:"game" validate:"required"`
	Mastery MasteryConfig `mapstructure:"mastery"`
	Content ContentConfig `mapstructure:"content"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat       string        `mapstructure:"log_format" validate:"required,oneof=json text"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// StoreConfig selects and configures the score store backend.
type StoreConfig struct {
	Driver        string `mapstructure:"driver" validate:"required,oneof=postgres sqlite redis memory"`
	DatabaseURL   string `mapstructure:"database_url" validate:"required_if=Driver postgres,omitempty,url"`
	SQLitePath    string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
	RedisAddr     string `mapstructure:"redis_addr" validate:"required_if=Driver redis,omitempty,hostname_port"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" validate:"gte=0"`
	KeyPrefix     string `mapstructure:"key_prefix"`
}

// GameConfig contains the matching game settings.
type GameConfig struct {
	SectionSize      int           `mapstructure:"section_size" validate:"required,gt=0"`
	RetrySectionSize int           `mapstructure:"retry_section_size" validate:"required,gt=0"`
	CompletionDelay  time.Duration `mapstructure:"completion_delay" validate:"gte=0"`
	ErrorFlashDelay  time.Duration `mapstructure:"error_flash_delay" validate:"gte=0"`
	RetryDecoy       bool          `mapstructure:"retry_decoy"`
	Language         string        `mapstructure:"language" validate:"required"`
	MaxActiveGames   int           `mapstructure:"max_active_games" validate:"gte=0"`
}

// MasteryConfig overrides the mastery colour thresholds. Zero keeps the default.
type MasteryConfig struct {
	GreenThreshold    float64 `mapstructure:"green_threshold" validate:"gte=0,lte=1"`
	YellowThreshold   float64 `mapstructure:"yellow_threshold" validate:"gte=0,lte=1"`
	OrangeThreshold   float64 `mapstructure:"orange_threshold" validate:"gte=0,lte=1"`
	MasteredWordRatio float64 `mapstructure:"mastered_word_ratio" validate:"gte=0,lte=1"`
	ReportSize        int     `mapstructure:"report_size" validate:"gte=0"`
}

// ContentConfig points at lesson content. With a catalog loaded, results and
// progress are checked against the full word list of each parent.
type ContentConfig struct {
	CatalogPath string `mapstructure:"catalog_path"`
}
