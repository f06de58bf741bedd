package main

import (
	"os"
)

// loadConfig reads the environment, overlays CONFIG_FILE when set and
// validates the result.
func loadConfig() (Config, error) {
	cfg, err := loadConfigFromEnv()
	if err != nil {
		return Config{}, err
	}
	if cfg.ConfigFile != "" {
		if err := cfg.applyLoopFile(cfg.ConfigFile); err != nil {
			return Config{}, err
		}
	}
	if hostname, _ := os.Hostname(); hostname != "" {
		cfg.Hostname = hostname
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
