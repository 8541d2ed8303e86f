package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const envPrefix = "MESSAGING_"

// configSections are the top level config keys that environment variables
// may target, e.g. MESSAGING_LINE_ACCESS_TOKEN sets line.access_token.
var configSections = []string{"line", "messenger", "telegram", "viber", "wechat", "botframework", "http", "ratelimit"}

// loadRawConfig reads a YAML file (optional) and applies MESSAGING_*
// environment overrides on top of it.
func loadRawConfig(path string, environ []string) (map[string]any, error) {
	raw := map[string]any{}
	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	}
	applyEnv(raw, environ)
	return raw, nil
}

func applyEnv(raw map[string]any, environ []string) {
	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(name, envPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, envPrefix))
		if key == "service_name" {
			raw[key] = value
			continue
		}
		for _, section := range configSections {
			field, found := strings.CutPrefix(key, section+"_")
			if !found || field == "" {
				continue
			}
			values, _ := raw[section].(map[string]any)
			if values == nil {
				values = map[string]any{}
				raw[section] = values
			}
			values[field] = value
			break
		}
	}
}
