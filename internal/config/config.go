package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/sir_venger/msg2json/pkg/msgproto"
)

const (
	DefaultPort            = 3000
	DefaultShutdownTimeout = 15 * time.Second

	// Сервис слушает только loopback.
	host = "127.0.0.1"
)

type Config struct {
	Port            int           `yaml:"port" json:"port" env:"FUNCTIONS_CUSTOMHANDLER_PORT"`
	AdminPort       int           `yaml:"admin_port" json:"admin_port" env:"MSG2JSON_ADMIN_PORT"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" json:"max_upload_bytes" env:"MSG2JSON_MAX_UPLOAD_BYTES"`
	LogLevel        string        `yaml:"log_level" json:"log_level" env:"MSG2JSON_LOG_LEVEL"`
	LogFormat       string        `yaml:"log_format" json:"log_format" env:"MSG2JSON_LOG_FORMAT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" env:"MSG2JSON_SHUTDOWN_TIMEOUT"`
}

// Default возвращает конфигурацию без файла и переменных окружения.
func Default() *Config {
	return &Config{
		Port:            DefaultPort,
		MaxUploadBytes:  msgproto.DefaultMaxUploadBytes,
		LogLevel:        "info",
		LogFormat:       "text",
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Load читает YAML-конфигурацию, применяет ENV-переопределения и возвращает актуальную структуру.
// Пустой path берётся из CONFIG_PATH; отсутствие файла не ошибка.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(b, c); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// ENV override
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("config env: %w", err)
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range 1..65535", c.Port))
	}
	if c.AdminPort < 0 || c.AdminPort > 65535 {
		errs = append(errs, fmt.Errorf("admin_port %d out of range 0..65535", c.AdminPort))
	}
	if c.AdminPort != 0 && c.AdminPort == c.Port {
		errs = append(errs, fmt.Errorf("admin_port must differ from port %d", c.Port))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown_timeout must be positive, got %s", c.ShutdownTimeout))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log_format %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

// ListenAddr — адрес API-сервера.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(host, strconv.Itoa(c.Port))
}

// AdminAddr — адрес служебного сервера (/health, /metrics). Пустая строка, если он выключен.
func (c *Config) AdminAddr() string {
	if c.AdminPort == 0 {
		return ""
	}
	return net.JoinHostPort(host, strconv.Itoa(c.AdminPort))
}
