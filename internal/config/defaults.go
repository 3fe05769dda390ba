package config

import (
	"time"

	"firvoice/internal/language"
)

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:     "http://localhost:5000",
			Timeout: 60 * time.Second,
		},
		Interview: InterviewConfig{
			Language:          string(language.English),
			MinRecordingBytes: 1000,
			MaxAttempts:       2,
			RetryBackoff:      time.Second,
			CallSpacing:       500 * time.Millisecond,
			CallTimeout:       10 * time.Second,
		},
		Recording: RecordingConfig{
			SampleRate:        16000,
			Channels:          1,
			Format:            "s16le",
			Device:            "",
			SliceDuration:     time.Second,
			ChannelBufferSize: 20,
		},
		Playback: PlaybackConfig{
			Enabled: true,
		},
		Transcription: TranscriptionConfig{
			Provider: "backend",
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Type:    "desktop",
		},
		Providers: make(map[string]ProviderConfig),
		Reports: ReportsConfig{
			Dir: "",
		},
	}
}
