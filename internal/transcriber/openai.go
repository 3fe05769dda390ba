package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"firvoice/internal/language"
)

// OpenAIAdapter transcribes directly against the OpenAI Whisper API,
// bypassing the FIR backend. Useful when the backend is reachable only for
// analysis or not at all.
type OpenAIAdapter struct {
	client *openai.Client
}

func NewOpenAIAdapter(apiKey string) *OpenAIAdapter {
	return &OpenAIAdapter{client: openai.NewClient(apiKey)}
}

func (a *OpenAIAdapter) Name() string { return ProviderOpenAI }

func (a *OpenAIAdapter) Transcribe(ctx context.Context, audio []byte, mimeType string, lang language.Language) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("no audio data")
	}

	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   bytes.NewReader(audio),
		FilePath: "audio" + extensionFor(mimeType),
	}
	if code := lang.WhisperCode(); code != "" {
		req.Language = code
	}

	resp, err := a.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/webm":
		return ".webm"
	case "audio/ogg":
		return ".ogg"
	default:
		return ".wav"
	}
}
