// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"telegram-file-relay/internal/domain"

	"gopkg.in/yaml.v3"
)

// TelegramUploadLimit is the Bot API ceiling for documents sent by bots.
const TelegramUploadLimit int64 = 50 * 1000 * 1000

// DefaultMaxBytes keeps a margin below TelegramUploadLimit.
const DefaultMaxBytes int64 = 45 * 1024 * 1024

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string `yaml:"token"`
	Workers  int    `yaml:"workers"` // polling workers
	Language string `yaml:"language"`
	Name     string `yaml:"name"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HealthConfig struct {
	Port    int    `yaml:"port"`
	Service string `yaml:"service"`
}

type MetricsConfig struct {
	Port int `yaml:"port"` // 0 disables the listener
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// RelayLimit is how many relay commands a user may issue per RelayWindow.
	RelayLimit  int           `yaml:"relay_limit"`
	RelayWindow time.Duration `yaml:"relay_window"`
}

type RelayConfig struct {
	Timeout         time.Duration `yaml:"timeout"`
	ResolverTimeout time.Duration `yaml:"resolver_timeout"`
	MaxBytes        int64         `yaml:"max_bytes"`
	UserAgent       string        `yaml:"user_agent"`
	Workers         int           `yaml:"workers"`
	YandexAPI       string        `yaml:"yandex_api"`
}

type S3Config struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// SourceConfig describes one relayable file, keyed by bot command.
type SourceConfig struct {
	Command     string `yaml:"command"`
	URL         string `yaml:"url"`
	FileName    string `yaml:"file_name"`
	Description string `yaml:"description"`
}

type Config struct {
	Bot     BotConfig      `yaml:"bot"`
	Log     LogConfig      `yaml:"log"`
	Health  HealthConfig   `yaml:"health"`
	Metrics MetricsConfig  `yaml:"metrics"`
	Redis   RedisConfig    `yaml:"redis"`
	Relay   RelayConfig    `yaml:"relay"`
	S3      S3Config       `yaml:"s3"`
	Sources []SourceConfig `yaml:"sources"`

	Runtime RuntimeConfig `yaml:"-"`
}

// DefaultSources are used when the config file does not list any.
// URLs come from PRICE_URL, STOCK_URL and PRICE_MP_URL.
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{Command: "price", FileName: "price.xlsx", Description: "прайс-лист"},
		{Command: "stock", FileName: "stock.xlsx", Description: "остатки на складе"},
		{Command: "price_MP", FileName: "price_MP.xlsx", Description: "прайс для маркетплейсов"},
	}
}

var sourceEnv = map[string]string{
	"price":    "PRICE_URL",
	"stock":    "STOCK_URL",
	"price_mp": "PRICE_MP_URL",
}

// Load reads the YAML file at path (a missing file is fine), applies
// environment overrides and defaults, then validates the result.
// The bot token is checked separately by ValidateBot.
func Load(path string, dev bool) (*Config, error) {
	return load(path, dev, os.Getenv)
}

func load(path string, dev bool, getenv func(string) string) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if cfg.Relay.MaxBytes > TelegramUploadLimit {
		return nil, fmt.Errorf("relay.max_bytes %d exceeds telegram limit %d", cfg.Relay.MaxBytes, TelegramUploadLimit)
	}
	seen := make(map[string]struct{}, len(cfg.Sources))
	for _, s := range cfg.Sources {
		key := strings.ToLower(s.Command)
		if key == "" {
			return nil, errors.New("sources: command is required")
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("sources: duplicate command %q", s.Command)
		}
		seen[key] = struct{}{}
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// ValidateBot checks what only the Telegram side needs. The fetch command
// runs without a token, so Load leaves this to serve.
func (c *Config) ValidateBot() error {
	if strings.TrimSpace(c.Bot.Token) == "" {
		return domain.ErrMissingToken
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("TELEGRAM_TOKEN"); v != "" {
		cfg.Bot.Token = v
	}
	if v := getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.Health.Port = p
	}
	if v := getenv("METRICS_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("METRICS_PORT: %w", err)
		}
		cfg.Metrics.Port = p
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}

	if len(cfg.Sources) == 0 {
		cfg.Sources = DefaultSources()
	}
	for i := range cfg.Sources {
		name, ok := sourceEnv[strings.ToLower(cfg.Sources[i].Command)]
		if !ok {
			continue
		}
		if v := getenv(name); v != "" {
			cfg.Sources[i].URL = v
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.Language == "" {
		cfg.Bot.Language = "ru"
	}
	if cfg.Bot.Name == "" {
		cfg.Bot.Name = "File Relay Bot"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Health.Port <= 0 {
		cfg.Health.Port = 8080
	}
	if cfg.Health.Service == "" {
		cfg.Health.Service = cfg.Bot.Name
	}
	if cfg.Relay.Timeout <= 0 {
		cfg.Relay.Timeout = 60 * time.Second
	}
	if cfg.Relay.ResolverTimeout <= 0 {
		cfg.Relay.ResolverTimeout = 15 * time.Second
	}
	if cfg.Relay.MaxBytes <= 0 {
		cfg.Relay.MaxBytes = DefaultMaxBytes
	}
	if cfg.Relay.UserAgent == "" {
		cfg.Relay.UserAgent = "Mozilla/5.0 (compatible; FileRelayBot/1.0)"
	}
	if cfg.Relay.Workers <= 0 {
		cfg.Relay.Workers = 4
	}
	if cfg.Relay.YandexAPI == "" {
		cfg.Relay.YandexAPI = "https://cloud-api.yandex.net"
	}
	if cfg.Redis.RelayLimit <= 0 {
		cfg.Redis.RelayLimit = 10
	}
	if cfg.Redis.RelayWindow <= 0 {
		cfg.Redis.RelayWindow = time.Minute
	}
	for i := range cfg.Sources {
		s := &cfg.Sources[i]
		if s.FileName == "" {
			s.FileName = s.Command
		}
		if s.Description == "" {
			s.Description = s.FileName
		}
	}
}
