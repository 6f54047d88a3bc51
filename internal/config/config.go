package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/NamanBalaji/mcfetch/internal/source"
)

const (
	appName        = "mcfetch"
	configFileName = "config.yaml"
	envPrefix      = "MCFETCH"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds the configuration options for the application.
type Config struct {
	DataDir  string         `yaml:"dataDir,omitempty" envconfig:"DATA_DIR" validate:"required"`
	LogLevel string         `yaml:"logLevel,omitempty" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFile  string         `yaml:"logFile,omitempty" envconfig:"LOG_FILE"`
	Download DownloadConfig `yaml:"download" envconfig:"DOWNLOAD"`
}

// DownloadConfig is the immutable transfer policy shared by every downloader
// of a manager. Timeouts are whole seconds.
type DownloadConfig struct {
	ThreadPoolSize     int             `yaml:"threadPoolSize" envconfig:"THREAD_POOL_SIZE" validate:"gte=1"`
	LargeFileThreshold int64           `yaml:"largeFileThreshold" envconfig:"LARGE_FILE_THRESHOLD" validate:"gte=0"`
	LargeFileChunks    int             `yaml:"largeFileChunks" envconfig:"LARGE_FILE_CHUNKS" validate:"gte=1"`
	Strategy           source.Strategy `yaml:"strategy" envconfig:"STRATEGY" validate:"gte=0,lte=2"`
	MaxRetries         int             `yaml:"maxRetries" envconfig:"MAX_RETRIES" validate:"gte=0"`
	ConnectTimeout     int             `yaml:"connectTimeout" envconfig:"CONNECT_TIMEOUT" validate:"gte=1"`
	ReadTimeout        int             `yaml:"readTimeout" envconfig:"READ_TIMEOUT" validate:"gte=1"`
	RetryDelay         time.Duration   `yaml:"retryDelay" envconfig:"RETRY_DELAY" validate:"gte=0"`
}

// ConnectTimeoutDuration bounds dialing and waiting for response headers.
func (c *DownloadConfig) ConnectTimeoutDuration() time.Duration {
	return time.Duration(c.ConnectTimeout) * time.Second
}

// ReadTimeoutDuration is the stall limit between two received bytes.
func (c *DownloadConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Second
}

// Validate checks every field against its constraints.
func (c *DownloadConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid download config: %w", err)
	}

	return nil
}

// DefaultDownloadConfig returns the documented defaults.
func DefaultDownloadConfig() DownloadConfig {
	return DownloadConfig{
		ThreadPoolSize:     threadPoolSize,
		LargeFileThreshold: largeFileThreshold,
		LargeFileChunks:    largeFileChunks,
		Strategy:           strategy,
		MaxRetries:         maxRetries,
		ConnectTimeout:     connectTimeout,
		ReadTimeout:        readTimeout,
		RetryDelay:         retryDelay,
	}
}

func DefaultConfig() Config {
	return Config{
		DataDir:  dataDir,
		LogLevel: logLevel,
		Download: DefaultDownloadConfig(),
	}
}

// DefaultPath returns the config file location under the XDG config home.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, configFileName)
}

// GetConfig reads the configuration file at DefaultPath.
func GetConfig() (*Config, error) {
	return Load(DefaultPath())
}

// Load builds a Config from defaults, then the YAML file at path, then
// MCFETCH_* environment variables, and validates the result. A missing or
// empty file leaves the defaults in place. Keys absent from the file keep
// their defaults, so an explicit zero such as maxRetries: 0 is honoured.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	b, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if len(b) > 0 {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("apply environment: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Save writes cfg as YAML to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, b, 0o644)
}
