package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/quickflip/internal/flagx"
	"github.com/dmitrijs2005/quickflip/internal/timex"
)

// jsonConfig is the on-disk shape. Pointers tell absent keys from zero
// values so a partial file only overrides what it names.
type jsonConfig struct {
	BackendURL     *string         `json:"backend_url"`
	DBPath         *string         `json:"db_path"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	LogLevel       *string         `json:"log_level"`
	LogFormat      *string         `json:"log_format"`
	ImageMaxWidth  *int            `json:"image_max_width"`
	ImageQuality   *int            `json:"image_quality"`
}

// parseJSON overlays cfg with the file named by -c or -config in args.
// Without either flag nothing is loaded.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if jc.BackendURL != nil {
		cfg.BackendURL = *jc.BackendURL
	}
	if jc.DBPath != nil {
		cfg.DBPath = *jc.DBPath
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.LogFormat != nil {
		cfg.LogFormat = *jc.LogFormat
	}
	if jc.ImageMaxWidth != nil {
		cfg.ImageMaxWidth = *jc.ImageMaxWidth
	}
	if jc.ImageQuality != nil {
		cfg.ImageQuality = *jc.ImageQuality
	}
	return nil
}
