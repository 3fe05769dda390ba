package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	firvoiceDir := filepath.Join(configDir, "firvoice")
	if err := os.MkdirAll(firvoiceDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(firvoiceDir, "config.toml"), nil
}

// Load reads the config file, creating it with defaults on first run.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Printf("Config: no config file, writing defaults to %s", configPath)
		defaults := DefaultConfig()
		if err := Save(defaults); err != nil {
			return nil, err
		}
		return defaults, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", configPath, err)
	}

	var config Config
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if config.Providers == nil {
		config.Providers = make(map[string]ProviderConfig)
	}
	config.applyDefaults()

	log.Printf("Config: loaded configuration from %s", configPath)
	return &config, nil
}

// Save writes the config to its canonical location.
func Save(config *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file %s: %w", configPath, err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// applyDefaults fills gaps left by a hand-edited config file.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Backend.URL == "" {
		c.Backend.URL = defaults.Backend.URL
	}
	if c.Backend.Timeout <= 0 {
		c.Backend.Timeout = defaults.Backend.Timeout
	}
	if c.Interview.Language == "" {
		c.Interview.Language = defaults.Interview.Language
	}
	if c.Interview.MinRecordingBytes <= 0 {
		c.Interview.MinRecordingBytes = defaults.Interview.MinRecordingBytes
	}
	if c.Interview.MaxAttempts <= 0 {
		c.Interview.MaxAttempts = defaults.Interview.MaxAttempts
	}
	if c.Interview.RetryBackoff <= 0 {
		c.Interview.RetryBackoff = defaults.Interview.RetryBackoff
	}
	if c.Interview.CallSpacing < 0 {
		c.Interview.CallSpacing = defaults.Interview.CallSpacing
	}
	if c.Interview.CallTimeout <= 0 {
		c.Interview.CallTimeout = defaults.Interview.CallTimeout
	}
	if c.Recording.SampleRate <= 0 {
		c.Recording.SampleRate = defaults.Recording.SampleRate
	}
	if c.Recording.Channels <= 0 {
		c.Recording.Channels = defaults.Recording.Channels
	}
	if c.Recording.Format == "" {
		c.Recording.Format = defaults.Recording.Format
	}
	if c.Recording.SliceDuration <= 0 {
		c.Recording.SliceDuration = defaults.Recording.SliceDuration
	}
	if c.Recording.ChannelBufferSize <= 0 {
		c.Recording.ChannelBufferSize = defaults.Recording.ChannelBufferSize
	}
	if c.Transcription.Provider == "" {
		c.Transcription.Provider = defaults.Transcription.Provider
	}
	if c.Notifications.Type == "" {
		c.Notifications.Type = "none"
	}
}
