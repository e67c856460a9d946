package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"api": map[string]interface{}{
			"base_url": "http://localhost:8080/api/v1/reminders",
			"timeout":  30,
		},
		"list": map[string]interface{}{
			"page_size":   9,
			"debounce_ms": 500,
			"sort":        "dueDate,asc",
			"layout":      "tabs",
		},
		"notify": map[string]interface{}{
			"timeout_ms": 4000,
		},
		"ui": map[string]interface{}{
			"colored_output": true,
			"show_ids":       true,
			"width":          0,
		},
		"log": map[string]interface{}{
			"level":  "info",
			"format": "text",
			"file":   "~/.reminders/reminders.log",
		},
		"server": map[string]interface{}{
			"addr":            ":8080",
			"db_path":         "~/.reminders/reminders.db",
			"allowed_origins": []string{"http://localhost:3000"},
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.reminders/config.yaml"
}
