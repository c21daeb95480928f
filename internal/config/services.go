package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// servicesFile mirrors config/services.yaml.
type servicesFile struct {
	Services map[string]struct {
		Port        int    `yaml:"port"`
		Description string `yaml:"description"`
	} `yaml:"services"`
}

// LoadServicePorts reads per-service port assignments from config/services.yaml.
func LoadServicePorts() (map[string]int, error) {
	return LoadServicePortsFromPath(filepath.Join("config", "services.yaml"))
}

// LoadServicePortsFromPath reads port assignments from a specific path.
func LoadServicePortsFromPath(path string) (map[string]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read services config: %w", err)
	}

	var file servicesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse services config: %w", err)
	}

	ports := make(map[string]int, len(file.Services))
	for name, settings := range file.Services {
		if settings.Port == 0 {
			return nil, fmt.Errorf("service %s: port is required", name)
		}
		ports[name] = settings.Port
	}
	return ports, nil
}

// LoadServicePortsOrDefault returns the configured ports, or an empty map when
// no services.yaml is present.
func LoadServicePortsOrDefault() (map[string]int, error) {
	ports, err := LoadServicePorts()
	if err != nil {
		return map[string]int{}, nil
	}
	return ports, nil
}
