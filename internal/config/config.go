package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Log    LogConfig    `yaml:"log"`
	API    APIConfig    `yaml:"api"`
	Feed   FeedConfig   `yaml:"feed"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type APIConfig struct {
	BasePath string `yaml:"base_path"`
}

type FeedConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// Load reads configuration from an optional .env file, an optional YAML file
// and environment variables, in that order.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "activitylog.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		API: APIConfig{
			BasePath: "/v1",
		},
		Feed: FeedConfig{
			DefaultPageSize: 50,
			MaxPageSize:     200,
		},
	}

	if path := os.Getenv("ACTIVITYLOG_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("ACTIVITYLOG_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("ACTIVITYLOG_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ACTIVITYLOG_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("ACTIVITYLOG_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("ACTIVITYLOG_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if basePath := os.Getenv("ACTIVITYLOG_API_BASE_PATH"); basePath != "" {
		cfg.API.BasePath = basePath
	}
	if sizeStr := os.Getenv("ACTIVITYLOG_FEED_DEFAULT_PAGE_SIZE"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ACTIVITYLOG_FEED_DEFAULT_PAGE_SIZE: %w", err)
		}
		cfg.Feed.DefaultPageSize = size
	}
	if sizeStr := os.Getenv("ACTIVITYLOG_FEED_MAX_PAGE_SIZE"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ACTIVITYLOG_FEED_MAX_PAGE_SIZE: %w", err)
		}
		cfg.Feed.MaxPageSize = size
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
