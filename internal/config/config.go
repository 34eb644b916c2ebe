package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/DanielPopoola/paylane-go/paylane"
	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
)

const envPrefix = "PAYLANE_"

type Config struct {
	API     APIConfig     `koanf:"api"`
	Logger  LoggerConfig  `koanf:"logger"`
	Journal JournalConfig `koanf:"journal"`
}

type APIConfig struct {
	BaseURL   string        `koanf:"base_url" validate:"required,url"`
	Username  string        `koanf:"username" validate:"required"`
	Password  string        `koanf:"password" validate:"required"`
	SSLVerify bool          `koanf:"ssl_verify"`
	Timeout   time.Duration `koanf:"timeout" validate:"required"`
}

type LoggerConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

type JournalConfig struct {
	Enabled      bool           `koanf:"enabled"`
	WriteTimeout time.Duration  `koanf:"write_timeout" validate:"required"`
	Database     DatabaseConfig `koanf:"database" validate:"-"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password" validate:"required"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"required"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"api.base_url":                        paylane.DefaultBaseURL,
		"api.ssl_verify":                      true,
		"api.timeout":                         30 * time.Second,
		"logger.level":                        "info",
		"logger.format":                       "text",
		"journal.enabled":                     false,
		"journal.write_timeout":               2 * time.Second,
		"journal.database.port":               5432,
		"journal.database.ssl_mode":           "disable",
		"journal.database.max_open_conns":     4,
		"journal.database.max_idle_conns":     1,
		"journal.database.conn_max_lifetime":  time.Hour,
		"journal.database.conn_max_idle_time": 30 * time.Minute,
	}
}

// LoadConfig layers defaults, PAYLANE_* environment variables (with .env
// autoloaded) and overrides, in that order. Override keys use dotted paths
// such as "api.base_url". A double underscore in an environment variable
// separates sections: PAYLANE_API__USERNAME sets api.username.
func LoadConfig(overrides map[string]interface{}) (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		logger.Error("failed to load default configuration", "error", err)
		return nil, err
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, envPrefix)),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			logger.Error("failed to load overrides", "error", err)
			return nil, err
		}
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	if mainConfig.Journal.Enabled {
		if err := validate.Struct(mainConfig.Journal.Database); err != nil {
			logger.Error("journal database config validation failed", "error", err)
			return nil, err
		}
	}

	return mainConfig, nil
}

// ClientOptions translates the API section into paylane client options.
func (c *APIConfig) ClientOptions() []paylane.Option {
	return []paylane.Option{
		paylane.WithBaseURL(c.BaseURL),
		paylane.WithHTTPTimeout(c.Timeout),
		paylane.WithSSLVerify(c.SSLVerify),
	}
}
