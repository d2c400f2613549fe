package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/glunkad/invoice-service/internal/models"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const tokenPlaceholder = "YOUR_BOT_TOKEN_HERE"

// Config is the whole YAML configuration.
type Config struct {
	App        AppConfig        `yaml:"app"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Property   models.Property  `yaml:"property"`
	Invoice    InvoiceConfig    `yaml:"invoice"`
	Session    SessionConfig    `yaml:"session"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Workers    int              `yaml:"workers"`
}

// AppConfig names the application and the timezone dates are read in.
type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Timezone    string `yaml:"timezone"`
}

// TelegramConfig holds the bot token.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	Debug    bool   `yaml:"debug"`
}

// InvoiceConfig selects the invoice format and where files are written.
type InvoiceConfig struct {
	// Format is either "pdf" or "xlsx".
	Format  string `yaml:"format"`
	TempDir string `yaml:"temp_dir"`
}

// SessionConfig bounds how long an idle session is kept.
type SessionConfig struct {
	// TTL drops sessions idle for longer than this. Zero keeps them forever.
	TTL time.Duration `yaml:"ttl"`
}

// RedisConfig points at the optional session store.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// MonitoringConfig enables the Prometheus endpoint.
type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

// LoggingConfig configures zap and log rotation.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	FilePath string `yaml:"file_path"`
}

// Load reads .env (if present) and the YAML file at configPath, expanding
// ${VAR} references against the environment.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML config bytes, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	expandedData := []byte(os.ExpandEnv(string(data)))

	config := Default()
	if err := yaml.Unmarshal(expandedData, config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	config.fillDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Default returns a config with every optional value filled in.
func Default() *Config {
	return &Config{
		App:      AppConfig{Name: "invoice-bot", Environment: "development", Timezone: "Local"},
		Property: models.DefaultProperty,
		Invoice:  InvoiceConfig{Format: "pdf"},
		Session:  SessionConfig{TTL: 24 * time.Hour},
		Monitoring: MonitoringConfig{
			PrometheusPort: 9090,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Workers: 4,
	}
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.Property.Name == "" {
		c.Property.Name = def.Property.Name
	}
	if c.Property.Location == "" {
		c.Property.Location = def.Property.Location
	}
	if c.Property.Host == "" {
		c.Property.Host = def.Property.Host
	}
	if c.Property.CancellationPolicy == "" {
		c.Property.CancellationPolicy = def.Property.CancellationPolicy
	}
	if c.Invoice.Format == "" {
		c.Invoice.Format = def.Invoice.Format
	}
	if c.App.Timezone == "" {
		c.App.Timezone = def.App.Timezone
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
}

// Validate checks the values the bot cannot start without.
func (c *Config) Validate() error {
	token := strings.TrimSpace(c.Telegram.BotToken)
	if token == "" || token == tokenPlaceholder {
		return errors.New("telegram.bot_token is not set (use TELEGRAM_BOT_TOKEN)")
	}

	switch c.Invoice.Format {
	case "pdf", "xlsx":
	default:
		return fmt.Errorf("invoice.format %q is not supported (pdf, xlsx)", c.Invoice.Format)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Session.TTL < 0 {
		return errors.New("session.ttl must not be negative")
	}
	return nil
}

// Location resolves app.timezone used to interpret check-in/check-out input.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("app.timezone %q: %w", c.App.Timezone, err)
	}
	return loc, nil
}
