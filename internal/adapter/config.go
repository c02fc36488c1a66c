package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// StorageBackend selects where the session is persisted
type StorageBackend string

const (
	StorageBolt   StorageBackend = "bolt"
	StorageRedis  StorageBackend = "redis"
	StorageMemory StorageBackend = "memory"
)

// Config holds all application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Storage StorageConfig `mapstructure:"storage"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Logging LoggingConfig `mapstructure:"logging"`
	Games   GamesConfig   `mapstructure:"games"`
}

// APIConfig describes the content backend
type APIConfig struct {
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
	PageSize int    `mapstructure:"page_size" validate:"min=1,max=100"`
}

// StorageConfig holds session storage configuration
type StorageConfig struct {
	Backend  StorageBackend `mapstructure:"backend" validate:"oneof=bolt redis memory"`
	Path     string         `mapstructure:"path"`
	RedisURL string         `mapstructure:"redis_url" validate:"required_if=Backend redis"`
	Profile  string         `mapstructure:"profile"` // redis key namespace
}

// CatalogConfig points at the offline catalog fixture
type CatalogConfig struct {
	Path string `mapstructure:"path"` // empty = built-in sample catalog
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"` // "-" = stderr
	Level string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
}

// GamesConfig holds game catalog preferences
type GamesConfig struct {
	DefaultCategory string `mapstructure:"default_category" validate:"omitempty,oneof=all action casual puzzle sports"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Endpoint: "",
			PageSize: 20,
		},
		Storage: StorageConfig{
			Backend: StorageBolt,
			Path:    defaultDataPath(),
			Profile: "default",
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "reel.log"),
			Level: "info",
		},
		Games: GamesConfig{
			DefaultCategory: "all",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "reel")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "reel")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "reel")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "reel")
	}
}

// LoadConfig loads configuration from a .env file, the config file and
// REEL_* environment variables, in increasing precedence. An empty
// configFile searches the OS config directory and the working directory.
func LoadConfig(configFile string) (*Config, error) {
	// A missing .env is normal
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	cfg := DefaultConfig()
	v := viper.New()
	setDefaults(v, cfg)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Environment variable overrides, e.g. REEL_STORAGE_BACKEND
	v.SetEnvPrefix("REEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	cfg.Catalog.Path = expandHome(cfg.Catalog.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that
// are absent from the config file.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.endpoint", cfg.API.Endpoint)
	v.SetDefault("api.page_size", cfg.API.PageSize)
	v.SetDefault("storage.backend", string(cfg.Storage.Backend))
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("storage.redis_url", cfg.Storage.RedisURL)
	v.SetDefault("storage.profile", cfg.Storage.Profile)
	v.SetDefault("catalog.path", cfg.Catalog.Path)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("games.default_category", cfg.Games.DefaultCategory)
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
