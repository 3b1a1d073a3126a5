package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"conductorsync/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/conductorsync"
	configFileName = "config.yaml"
)

// osUserHomeDir is swapped out in tests.
var osUserHomeDir = os.UserHomeDir

// GetDefaultConfigPath returns ~/.config/conductorsync.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads config.yaml from configPath on top of the defaults.
// An empty configPath means the default directory.
func LoadConfig(configPath string) (Config, error) {
	if configPath == "" {
		defaultPath, err := GetDefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		configPath = defaultPath
	}

	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		cerr := NewConfigurationError(configFilePath, configFileName, ErrorTypeIO, "failed to read config file", err)
		cerr.Suggestions = []string{"Check the permissions of the configuration directory"}
		return Config{}, cerr
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		cerr := NewConfigurationError(configFilePath, configFileName, ErrorTypeParse, "config file is not valid YAML", err)
		cerr.Details = err.Error()
		return Config{}, cerr
	}

	if err := config.Validate(); err != nil {
		cerr := NewConfigurationError(configFilePath, configFileName, ErrorTypeValidation, "config file has invalid values", err)
		cerr.Details = err.Error()
		cerr.Suggestions = []string{
			"relocation.scope accepts: hosted, all",
			"relocation.naming accepts: hash, basename",
		}
		return Config{}, cerr
	}

	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}
