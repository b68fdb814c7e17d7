package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// EnvPrefix prefixes every environment variable read by loadEnv.
const EnvPrefix = "QUICKFLIP"

// Config holds runtime settings for the QuickFlip CLI.
type Config struct {
	BackendURL     string        `envconfig:"BACKEND_URL" validate:"required,url"`
	DBPath         string        `envconfig:"DB_PATH" validate:"required"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`
	LogLevel       string        `envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	// LogFormat is text, json or console. Empty picks console on a
	// terminal and text otherwise.
	LogFormat     string `envconfig:"LOG_FORMAT" validate:"omitempty,oneof=text json console"`
	ImageMaxWidth int    `envconfig:"IMAGE_MAX_WIDTH" validate:"min=64,max=4096"`
	ImageQuality  int    `envconfig:"IMAGE_QUALITY" validate:"min=1,max=100"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://127.0.0.1:8080/api"
	c.DBPath = "quickflip.db"
	c.RequestTimeout = 30 * time.Second
	c.LogLevel = "info"
	c.LogFormat = ""
	c.ImageMaxWidth = 800
	c.ImageQuality = 80
}

// Validate checks field ranges after all sources are applied.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok {
		msgs := make([]string, 0, len(errs))
		for _, fe := range errs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
	}
	return fmt.Errorf("invalid config: %w", err)
}

// LoadConfig applies defaults, then the JSON file, the environment and the
// command-line flags found in args (without the program name). Later
// sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := loadEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
