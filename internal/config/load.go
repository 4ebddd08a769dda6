package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads,
// e.g. COBAN_SERVER_PORT or COBAN_STORE_DRIVER.
const EnvPrefix = "COBAN"

// Options controls where Load looks for configuration besides the environment.
type Options struct {
	// EnvFile is a dotenv file whose variables are exported before loading.
	// Variables already present in the environment win. A missing file is ignored.
	EnvFile string

	// ConfigFile is an optional YAML, TOML or JSON file. Environment
	// variables take precedence over its values.
	ConfigFile string
}

// Load reads configuration from a .env file in the working directory and the
// environment. It returns a populated Config or an error if loading or
// validation fails.
func Load() (*Config, error) {
	return LoadWithOptions(Options{EnvFile: ".env"})
}

// LoadWithOptions is Load with explicit file locations.
func LoadWithOptions(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading env file %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", opts.ConfigFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.sqlite_path", "coban.db")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.key_prefix", "coban:score:")

	v.SetDefault("game.section_size", 5)
	v.SetDefault("game.retry_section_size", 4)
	v.SetDefault("game.completion_delay", "500ms")
	v.SetDefault("game.error_flash_delay", "800ms")
	v.SetDefault("game.retry_decoy", false)
	v.SetDefault("game.language", "en")
	v.SetDefault("game.max_active_games", 1000)
}

// bindEnv registers keys without defaults so AutomaticEnv picks them up
// during Unmarshal.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"store.database_url",
		"store.redis_addr",
		"store.redis_password",
		"mastery.green_threshold",
		"mastery.yellow_threshold",
		"mastery.orange_threshold",
		"mastery.mastered_word_ratio",
		"mastery.report_size",
		"content.catalog_path",
	} {
		_ = v.BindEnv(key)
	}
}
