package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"

	"github.com/notexe/reminder-dash/internal/reminder"
)

// EnvPrefix namespaces environment overrides: REMINDER_LIST__PAGE_SIZE
// sets list.page_size.
const EnvPrefix = "REMINDER_"

// BaseURLEnv overrides api.base_url on its own.
const BaseURLEnv = "REMINDER_API_BASE_URL"

type Config struct {
	API    APIConfig    `koanf:"api"`
	List   ListConfig   `koanf:"list"`
	Notify NotifyConfig `koanf:"notify"`
	UI     UIConfig     `koanf:"ui"`
	Log    LogConfig    `koanf:"log"`
	Server ServerConfig `koanf:"server"`
}

type APIConfig struct {
	BaseURL string `koanf:"base_url"`
	Timeout int    `koanf:"timeout"` // seconds
}

// TimeoutDuration returns the HTTP client timeout.
func (c APIConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

type ListConfig struct {
	PageSize   int    `koanf:"page_size"`
	DebounceMS int    `koanf:"debounce_ms"`
	Sort       string `koanf:"sort"`   // "<field>,<asc|desc>"
	Layout     string `koanf:"layout"` // tabs | grouped
}

// Debounce returns the quiet period before a filter change is fetched.
func (c ListConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

type NotifyConfig struct {
	TimeoutMS int `koanf:"timeout_ms"`
}

// Timeout returns how long a notification stays visible.
func (c NotifyConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

type UIConfig struct {
	ColoredOutput bool `koanf:"colored_output"`
	ShowIDs       bool `koanf:"show_ids"`
	Width         int  `koanf:"width"` // 0 = terminal width
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // text | json
	File   string `koanf:"file"`   // empty = stderr
}

type ServerConfig struct {
	Addr           string   `koanf:"addr"`
	DBPath         string   `koanf:"db_path"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// Load builds the configuration from, in increasing precedence: built-in
// defaults, the YAML file at configPath (if it exists), a .env file in the
// working directory, REMINDER_* environment variables and finally
// REMINDER_API_BASE_URL.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKeyValue), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if baseURL := os.Getenv(BaseURLEnv); baseURL != "" {
		k.Set("api.base_url", baseURL)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Server.DBPath = expandPath(cfg.Server.DBPath)
	cfg.Log.File = expandPath(cfg.Log.File)

	return &cfg, nil
}

// loadDotEnv exports the variables in path without overriding ones that
// are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// envKeyValue maps REMINDER_LIST__PAGE_SIZE to list.page_size. Lists are
// comma separated.
func envKeyValue(key, value string) (string, interface{}) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")

	if key == "server.allowed_origins" {
		var origins []string
		for _, o := range strings.Split(value, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		return key, origins
	}
	return key, value
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute http(s) URL, got %q", c.API.BaseURL)
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}

	if c.List.PageSize <= 0 || c.List.PageSize > 100 {
		return fmt.Errorf("list.page_size must be between 1 and 100")
	}

	if c.List.DebounceMS <= 0 {
		return fmt.Errorf("list.debounce_ms must be positive")
	}

	if _, err := reminder.ParseSort(c.List.Sort); err != nil {
		return fmt.Errorf("list.sort: %w", err)
	}

	switch c.List.Layout {
	case "tabs", "grouped":
	default:
		return fmt.Errorf("list.layout must be tabs or grouped, got %q", c.List.Layout)
	}

	if c.Notify.TimeoutMS <= 0 {
		return fmt.Errorf("notify.timeout_ms must be positive")
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
