package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/adrg/xdg"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override, e.g. PAGEMETA_TIMEOUT.
const EnvPrefix = "PAGEMETA"

// LocalConfigFile is looked up in the working directory.
const LocalConfigFile = ".pagemeta.yaml"

// xdgConfigFile is looked up relative to the XDG config directories.
const xdgConfigFile = "pagemeta/config.yaml"

// Load builds a Config from defaults, the config file and the environment.
// It returns the file that was used, or "" when none was found.
//
// An explicit path that does not exist yields ErrConfigNotFound. Without an
// explicit path a missing file is not an error.
func Load(path string) (Config, string, error) {
	cfg := Default()

	file, err := FindConfigFile(path)
	if err != nil {
		return cfg, "", err
	}
	if file != "" {
		if err := LoadFile(file, &cfg); err != nil {
			return cfg, file, err
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, file, fmt.Errorf("reading environment: %w", err)
	}

	return cfg, file, nil
}

// LoadFile overlays the YAML document at path onto cfg. Keys absent from the
// file keep their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) //nolint:gosec // user-selected config path
	if err != nil {
		if os.IsNotExist(err) {
			return ErrConfigNotFound
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// FindConfigFile resolves the config file to use:
//  1. path, when given
//  2. .pagemeta.yaml in the working directory
//  3. pagemeta/config.yaml under the XDG config directories
func FindConfigFile(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return "", err
		}
		return path, nil
	}

	if _, err := os.Stat(LocalConfigFile); err == nil {
		return LocalConfigFile, nil
	}

	if found, err := xdg.SearchConfigFile(xdgConfigFile); err == nil {
		return found, nil
	}

	return "", nil
}
