// Package config loads placeholder-mcp settings.
//
// Precedence, lowest to highest:
//  1. Defaults
//  2. YAML config file (--config or PLACEHOLDER_CONFIG)
//  3. .env file (optional)
//  4. Environment variables (PLACEHOLDER_*)
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/placeholder-mcp/internal/logging"
	"github.com/ironsheep/placeholder-mcp/internal/placeholder"
)

const (
	// EnvPrefix is the prefix for all environment variables.
	EnvPrefix = "PLACEHOLDER_"

	// EnvConfigFile names the YAML config file when --config is not given.
	EnvConfigFile = EnvPrefix + "CONFIG"
)

// Config holds all runtime settings.
type Config struct {
	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// Width, Height and Quality are the default placeholder options.
	Width   int     `yaml:"width" env:"WIDTH"`
	Height  int     `yaml:"height" env:"HEIGHT"`
	Quality float64 `yaml:"quality" env:"QUALITY"`

	// Resampler is "bilinear" or "nearest".
	Resampler string `yaml:"resampler" env:"RESAMPLER"`

	// BlurSigma enables a Gaussian pass on the placeholder raster when > 0.
	BlurSigma float64 `yaml:"blur_sigma" env:"BLUR_SIGMA"`

	// FetchTimeout bounds each HTTP source fetch.
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"FETCH_TIMEOUT"`

	// MaxSourceBytes rejects larger sources.
	MaxSourceBytes int64 `yaml:"max_source_bytes" env:"MAX_SOURCE_BYTES"`

	// MaxSourcePixels rejects sources declaring more decoded pixels.
	MaxSourcePixels int64 `yaml:"max_source_pixels" env:"MAX_SOURCE_PIXELS"`

	// MaxDimension caps the width and height a caller may request.
	MaxDimension int `yaml:"max_dimension" env:"MAX_DIMENSION"`

	// UserAgent is sent with HTTP fetches.
	UserAgent string `yaml:"user_agent" env:"USER_AGENT"`

	// HTTPAddr is the listen address of the serve command.
	HTTPAddr string `yaml:"http_addr" env:"HTTP_ADDR"`

	// HTTPAllowFiles lets HTTP clients name local files as sources.
	HTTPAllowFiles bool `yaml:"http_allow_files" env:"HTTP_ALLOW_FILES"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:        "info",
		Width:           placeholder.DefaultWidth,
		Height:          placeholder.DefaultHeight,
		Quality:         placeholder.DefaultQuality,
		Resampler:       string(placeholder.ResampleBilinear),
		FetchTimeout:    placeholder.DefaultFetchTimeout,
		MaxSourceBytes:  placeholder.DefaultMaxSourceBytes,
		MaxSourcePixels: placeholder.DefaultMaxSourcePixels,
		MaxDimension:    placeholder.DefaultMaxDimension,
		UserAgent:       "placeholder-mcp",
		HTTPAddr:        ":8080",
	}
}

// Loader loads configuration from files and environment.
type Loader struct {
	file    string
	envFile string
}

// NewLoader creates a loader reading ".env" and PLACEHOLDER_CONFIG.
func NewLoader() *Loader {
	return &Loader{envFile: ".env"}
}

// WithFile sets the YAML config file. It overrides PLACEHOLDER_CONFIG.
func (l *Loader) WithFile(path string) *Loader {
	l.file = path
	return l
}

// WithEnvFile sets the dotenv file. An empty path disables dotenv loading.
func (l *Loader) WithEnvFile(path string) *Loader {
	l.envFile = path
	return l
}

// Load applies every layer and validates the result.
//
// A missing .env file is ignored; a missing YAML file that was asked for
// explicitly is an error.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.envFile != "" {
		if err := godotenv.Load(l.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", l.envFile, err)
		}
	}

	file := l.file
	if file == "" {
		file = os.Getenv(EnvConfigFile)
	}
	if file != "" {
		if err := loadFile(file, cfg); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings no component can honour.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MaxDimension <= 0 {
		return fmt.Errorf("max_dimension must be positive, got %d", c.MaxDimension)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("placeholder size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Width > c.MaxDimension || c.Height > c.MaxDimension {
		return fmt.Errorf("placeholder size %dx%d exceeds max_dimension %d", c.Width, c.Height, c.MaxDimension)
	}
	if c.Quality <= 0 || c.Quality > 1 {
		return fmt.Errorf("quality must be in (0,1], got %v", c.Quality)
	}
	if _, err := placeholder.ParseResampler(c.Resampler); err != nil {
		return err
	}
	if c.BlurSigma < 0 {
		return fmt.Errorf("blur_sigma must not be negative, got %v", c.BlurSigma)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.MaxSourceBytes <= 0 {
		return fmt.Errorf("max_source_bytes must be positive, got %d", c.MaxSourceBytes)
	}
	if c.MaxSourcePixels <= 0 {
		return fmt.Errorf("max_source_pixels must be positive, got %d", c.MaxSourcePixels)
	}
	return nil
}

// PlaceholderOptions returns the configured default rendition.
func (c *Config) PlaceholderOptions() placeholder.Options {
	return placeholder.Options{Width: c.Width, Height: c.Height, Quality: c.Quality}
}
