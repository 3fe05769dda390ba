package config

import (
	"fmt"
	"net/url"

	"firvoice/internal/language"
)

func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("invalid backend.url: empty")
	}
	if parsed, err := url.Parse(c.Backend.URL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid backend.url: %s (must be an absolute http/https URL)", c.Backend.URL)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("invalid backend.timeout: %v", c.Backend.Timeout)
	}

	if !language.Language(c.Interview.Language).IsValid() {
		return fmt.Errorf("invalid interview.language: %s (must be english, hindi, or punjabi)", c.Interview.Language)
	}
	if c.Interview.MinRecordingBytes <= 0 {
		return fmt.Errorf("invalid interview.min_recording_bytes: %d", c.Interview.MinRecordingBytes)
	}
	if c.Interview.MaxAttempts <= 0 {
		return fmt.Errorf("invalid interview.max_attempts: %d", c.Interview.MaxAttempts)
	}
	if c.Interview.RetryBackoff <= 0 {
		return fmt.Errorf("invalid interview.retry_backoff: %v", c.Interview.RetryBackoff)
	}
	if c.Interview.CallSpacing < 0 {
		return fmt.Errorf("invalid interview.call_spacing: %v", c.Interview.CallSpacing)
	}
	if c.Interview.CallTimeout <= 0 {
		return fmt.Errorf("invalid interview.call_timeout: %v", c.Interview.CallTimeout)
	}

	if c.Recording.SampleRate <= 0 {
		return fmt.Errorf("invalid recording.sample_rate: %d", c.Recording.SampleRate)
	}
	if c.Recording.Channels <= 0 {
		return fmt.Errorf("invalid recording.channels: %d", c.Recording.Channels)
	}
	if c.Recording.Format == "" {
		return fmt.Errorf("invalid recording.format: empty")
	}
	if c.Recording.SliceDuration <= 0 {
		return fmt.Errorf("invalid recording.slice_duration: %v", c.Recording.SliceDuration)
	}
	if c.Recording.ChannelBufferSize <= 0 {
		return fmt.Errorf("invalid recording.channel_buffer_size: %d", c.Recording.ChannelBufferSize)
	}

	switch c.Transcription.Provider {
	case "backend":
	case "openai":
		if c.resolveAPIKey("openai") == "" {
			return fmt.Errorf("OpenAI API key required: not found in config (providers.openai.api_key) or environment variable (OPENAI_API_KEY)")
		}
	default:
		return fmt.Errorf("unsupported transcription.provider: %s (must be backend or openai)", c.Transcription.Provider)
	}

	validTypes := map[string]bool{"desktop": true, "log": true, "none": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}

	return nil
}
