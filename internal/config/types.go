package config

import (
	"os"
	"time"

	"firvoice/internal/capture"
	"firvoice/internal/interview"
	"firvoice/internal/transcriber"
)

type Config struct {
	Backend       BackendConfig             `toml:"backend"`
	Interview     InterviewConfig           `toml:"interview"`
	Recording     RecordingConfig           `toml:"recording"`
	Playback      PlaybackConfig            `toml:"playback"`
	Transcription TranscriptionConfig       `toml:"transcription"`
	Notifications NotificationsConfig       `toml:"notifications"`
	Providers     map[string]ProviderConfig `toml:"providers"`
	Reports       ReportsConfig             `toml:"reports"`
}

// BackendConfig points at the FIR analysis backend.
type BackendConfig struct {
	URL     string        `toml:"url"`
	Timeout time.Duration `toml:"timeout"`
}

// InterviewConfig tunes capture validation and the finalization pass.
type InterviewConfig struct {
	Language          string        `toml:"language"`
	MinRecordingBytes int           `toml:"min_recording_bytes"`
	MaxAttempts       int           `toml:"max_attempts"`
	RetryBackoff      time.Duration `toml:"retry_backoff"`
	CallSpacing       time.Duration `toml:"call_spacing"`
	CallTimeout       time.Duration `toml:"call_timeout"`
}

type RecordingConfig struct {
	SampleRate        int           `toml:"sample_rate"`
	Channels          int           `toml:"channels"`
	Format            string        `toml:"format"`
	Device            string        `toml:"device"`
	SliceDuration     time.Duration `toml:"slice_duration"`
	ChannelBufferSize int           `toml:"channel_buffer_size"`
}

type PlaybackConfig struct {
	Enabled bool `toml:"enabled"`
}

type TranscriptionConfig struct {
	Provider string `toml:"provider"` // "backend" or "openai"
}

type NotificationsConfig struct {
	Enabled bool   `toml:"enabled"`
	Type    string `toml:"type"` // "desktop", "log", "none"
}

// ProviderConfig holds the API key for a provider.
type ProviderConfig struct {
	APIKey string `toml:"api_key"`
}

// ReportsConfig controls where generated report files land.
type ReportsConfig struct {
	Dir string `toml:"dir"`
}

func (c *Config) ToCaptureConfig() capture.Config {
	return capture.Config{
		SampleRate:        c.Recording.SampleRate,
		Channels:          c.Recording.Channels,
		Format:            c.Recording.Format,
		SliceDuration:     c.Recording.SliceDuration,
		Device:            c.Recording.Device,
		ChannelBufferSize: c.Recording.ChannelBufferSize,
	}
}

func (c *Config) ToFinalizeConfig() interview.FinalizeConfig {
	return interview.FinalizeConfig{
		MaxAttempts:       c.Interview.MaxAttempts,
		RetryBackoff:      c.Interview.RetryBackoff,
		CallSpacing:       c.Interview.CallSpacing,
		CallTimeout:       c.Interview.CallTimeout,
		MinRecordingBytes: c.Interview.MinRecordingBytes,
	}
}

func (c *Config) ToTranscriberOptions(backend transcriber.BackendClient) transcriber.Options {
	return transcriber.Options{
		Provider:     c.Transcription.Provider,
		Backend:      backend,
		OpenAIAPIKey: c.resolveAPIKey("openai"),
	}
}

// resolveAPIKey reads a provider key from config, falling back to the
// conventional environment variable.
func (c *Config) resolveAPIKey(provider string) string {
	if p, ok := c.Providers[provider]; ok && p.APIKey != "" {
		return p.APIKey
	}
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	}
	return ""
}
