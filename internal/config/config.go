// Package config loads process configuration from config.yaml, a .env
// file and GAMESHELF_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/meur/gameshelf/internal/storage"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. GAMESHELF_SERVER_ADDRESS
const EnvPrefix = "GAMESHELF"

// Config mirrors config.yaml
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Catalog CatalogConfig `mapstructure:"catalog"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	AllowedOrigins  []string      `mapstructure:"allowedOrigins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

// StorageConfig selects and configures the key-value backend
type StorageConfig struct {
	Driver string      `mapstructure:"driver"`
	Path   string      `mapstructure:"path"`
	Redis  RedisConfig `mapstructure:"redis"`
}

// RedisConfig configures the redis backend
type RedisConfig struct {
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	Namespace string `mapstructure:"namespace"`
}

// CatalogConfig configures the RAWG client
type CatalogConfig struct {
	BaseURL string        `mapstructure:"baseURL"`
	APIKey  string        `mapstructure:"apiKey"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StorageOptions converts the storage section for storage.Open
func (c StorageConfig) StorageOptions() storage.Options {
	return storage.Options{
		Driver:         c.Driver,
		Path:           c.Path,
		RedisAddress:   c.Redis.Address,
		RedisPassword:  c.Redis.Password,
		RedisDB:        c.Redis.DB,
		RedisNamespace: c.Redis.Namespace,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.allowedOrigins", []string{"http://localhost:5173", "http://localhost:3000"})
	v.SetDefault("server.shutdownTimeout", 10*time.Second)

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", "./gameshelf.db")
	v.SetDefault("storage.redis.address", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.namespace", "gameshelf")

	v.SetDefault("catalog.baseURL", "https://api.rawg.io/api")
	v.SetDefault("catalog.apiKey", "")
	v.SetDefault("catalog.timeout", 10*time.Second)
}

// Load reads configuration. An empty path searches ./config and . for
// config.yaml; a missing file is not an error since every key has a
// default.
func Load(path string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Storage.Driver == "" {
		return nil, errors.New("storage.driver must be set")
	}
	return &cfg, nil
}
