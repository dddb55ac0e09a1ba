package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ndstoolkit/ndsrom/internal/cmdlogger"
)

type Manager struct {
	// Override to replace all other configs
	OverrideConfig *Config
	// Config to use if no config file is found next to the ROM
	DefaultConfig Config
	// Cache to store loaded configs
	ConfigMap map[string]Config
}

func NewManager() *Manager {
	return &Manager{ConfigMap: map[string]Config{}}
}

// UseOverride updates the Manager to use the config at the given path in place
// of any other config files that would be loaded when calling Get
func (c *Manager) UseOverride(configPath string) error {
	config, err := tryLoadConfig(configPath)
	if err != nil {
		return err
	}
	c.OverrideConfig = &config

	return nil
}

// Get returns the config to use for the ROM or directory at targetPath. A
// config file that cannot be used is reported and the default is returned.
func (c *Manager) Get(targetPath string) Config {
	if c.OverrideConfig != nil {
		return *c.OverrideConfig
	}

	configPath, err := normalizeConfigLoadPath(targetPath)
	if err != nil {
		return c.DefaultConfig
	}

	if config, ok := c.ConfigMap[configPath]; ok {
		return config
	}

	config, err := tryLoadConfig(configPath)
	if err == nil {
		cmdlogger.Debugf("Loaded config from: %s", config.LoadPath)
	} else {
		// anything other than the config file not existing is most likely due to an invalid config file
		if !errors.Is(err, os.ErrNotExist) {
			cmdlogger.Errorf("%s at %s because: %v", cmdlogger.InvalidConfigPrefix, configPath, err)
		}
		config = c.DefaultConfig
	}
	c.ConfigMap[configPath] = config

	return config
}

// normalizeConfigLoadPath finds the folder containing target and appends
// ConfigName
func normalizeConfigLoadPath(target string) (string, error) {
	stat, err := os.Stat(target)
	if err != nil {
		return "", fmt.Errorf("failed to stat target: %w", err)
	}

	dir := target
	if !stat.IsDir() {
		dir = filepath.Dir(target)
	}

	return filepath.Join(dir, ConfigName), nil
}

// tryLoadConfig attempts to parse the config file at the given path as TOML,
// returning the Config object if successful or otherwise the error
func tryLoadConfig(configPath string) (Config, error) {
	config := Config{}
	m, err := toml.DecodeFile(configPath, &config)
	if err != nil {
		return Config{}, err
	}

	if unknownKeys := m.Undecoded(); len(unknownKeys) > 0 {
		keys := make([]string, 0, len(unknownKeys))
		for _, key := range unknownKeys {
			keys = append(keys, key.String())
		}

		return Config{}, fmt.Errorf("unknown keys in config file: %s", strings.Join(keys, ", "))
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	config.LoadPath = configPath

	return config, nil
}
