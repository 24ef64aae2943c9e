// Package config reads callscope settings from the environment. A .env file
// in the working directory is loaded first when present.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"callscope/internal/layout"
	"callscope/internal/logging"
)

// Config is the resolved configuration.
type Config struct {
	PrefsPath    string `json:"prefsPath" jsonschema:"title=Preferences Path,description=File holding persisted preferences (CALLSCOPE_PREFS)"`
	Orientation  string `json:"orientation" jsonschema:"title=Orientation,description=Layout orientation used when no preference is stored (CALLSCOPE_ORIENTATION),enum=HORIZONTAL,enum=VERTICAL,default=HORIZONTAL"`
	ListingCache int    `json:"listingCache" jsonschema:"title=Listing Cache,description=Number of rendered listings kept in memory (CALLSCOPE_LISTING_CACHE),minimum=1,default=256"`
	NoColor      bool   `json:"noColor" jsonschema:"title=No Color,description=Disable listing highlighting (CALLSCOPE_NO_COLOR)"`
	LogLevel     string `json:"logLevel" jsonschema:"title=Log Level,description=Log level (CALLSCOPE_LOG_LEVEL),enum=debug,enum=info,enum=warn,enum=error,default=info"`
	LogPrefix    string `json:"logPrefix" jsonschema:"title=Log Prefix,description=Prefix of every log line (CALLSCOPE_LOG_PREFIX),default=callscope"`
}

const defaultListingCache = 256

// Load reads .env (if any) and the environment.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv resolves the configuration through getenv.
func FromEnv(getenv func(string) string) *Config {
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	cfg := &Config{
		PrefsPath:    firstNonEmpty(get("CALLSCOPE_PREFS"), defaultPrefsPath()),
		Orientation:  layout.Horizontal.String(),
		ListingCache: defaultListingCache,
		LogLevel:     firstNonEmpty(strings.ToLower(get("CALLSCOPE_LOG_LEVEL")), "info"),
		LogPrefix:    firstNonEmpty(get("CALLSCOPE_LOG_PREFIX"), "callscope"),
	}
	if o, err := layout.ParseOrientation(get("CALLSCOPE_ORIENTATION")); err == nil {
		cfg.Orientation = o.String()
	}
	if n, err := strconv.Atoi(get("CALLSCOPE_LISTING_CACHE")); err == nil && n > 0 {
		cfg.ListingCache = n
	}
	if v, err := strconv.ParseBool(get("CALLSCOPE_NO_COLOR")); err == nil {
		cfg.NoColor = v
	}
	return cfg
}

// DefaultOrientation returns the configured orientation.
func (c *Config) DefaultOrientation() layout.Orientation {
	o, err := layout.ParseOrientation(c.Orientation)
	if err != nil {
		return layout.Horizontal
	}
	return o
}

// LogOptions returns the logger options of c.
func (c *Config) LogOptions(debug bool) logging.Options {
	return logging.Options{Level: c.LogLevel, Prefix: c.LogPrefix, Debug: debug}
}

func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "callscope", "prefs.json")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
