package transcriber

import (
	"context"
	"fmt"

	"firvoice/internal/language"
)

// Adapter converts recorded speech to text.
type Adapter interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string, lang language.Language) (string, error)
	Name() string
}

// Provider names accepted in configuration.
const (
	ProviderBackend = "backend"
	ProviderOpenAI  = "openai"
)

// Options carries everything any provider might need. Unused fields are
// ignored by the selected provider.
type Options struct {
	Provider string

	// Backend provider
	Backend BackendClient

	// OpenAI provider
	OpenAIAPIKey string
}

// NewAdapter selects a provider by name.
func NewAdapter(opts Options) (Adapter, error) {
	switch opts.Provider {
	case ProviderBackend, "":
		if opts.Backend == nil {
			return nil, fmt.Errorf("backend provider requires a client")
		}
		return NewBackendAdapter(opts.Backend), nil
	case ProviderOpenAI:
		if opts.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return NewOpenAIAdapter(opts.OpenAIAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown transcription provider %q", opts.Provider)
	}
}
