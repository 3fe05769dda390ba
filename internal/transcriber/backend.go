package transcriber

import (
	"context"
	"fmt"

	"firvoice/internal/firclient"
	"firvoice/internal/language"
)

// BackendClient is the slice of the FIR backend API this package needs.
type BackendClient interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string, lang language.Language) (*firclient.TranscribeResult, error)
}

// BackendAdapter transcribes through the FIR backend, which runs its own
// Whisper pipeline server-side.
type BackendAdapter struct {
	client BackendClient
}

func NewBackendAdapter(client BackendClient) *BackendAdapter {
	return &BackendAdapter{client: client}
}

func (a *BackendAdapter) Name() string { return ProviderBackend }

func (a *BackendAdapter) Transcribe(ctx context.Context, audio []byte, mimeType string, lang language.Language) (string, error) {
	result, err := a.client.Transcribe(ctx, audio, mimeType, lang)
	if err != nil {
		return "", fmt.Errorf("backend transcription: %w", err)
	}
	return result.Text, nil
}
