// Package config loads runtime configuration for the QuickFlip CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. QUICKFLIP_* environment variables.
//  4. Command-line flags, which override everything else.
//
// The result is checked with (*Config).Validate.
//
// # JSON schema
//
// Durations are timex.Duration, so they may be strings like "15s" or
// integer nanoseconds:
//
//	{
//	  "backend_url": "https://quickflip.example/api",
//	  "db_path": "quickflip.db",
//	  "request_timeout": "15s",
//	  "log_level": "info",
//	  "log_format": "console",
//	  "image_max_width": 800,
//	  "image_quality": 80
//	}
//
// # Environment
//
//	QUICKFLIP_BACKEND_URL, QUICKFLIP_DB_PATH, QUICKFLIP_REQUEST_TIMEOUT,
//	QUICKFLIP_LOG_LEVEL, QUICKFLIP_LOG_FORMAT, QUICKFLIP_IMAGE_MAX_WIDTH,
//	QUICKFLIP_IMAGE_QUALITY
package config
