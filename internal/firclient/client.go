package firclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"

	"firvoice/internal/language"
)

const (
	defaultTimeout = 60 * time.Second

	// Responses are read fully; cap them so a misbehaving backend cannot
	// exhaust memory.
	maxResponseBytes = 32 << 20
)

// Client talks to the FIR analysis backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Synthesize converts question prompt text to speech via the backend's TTS
// engine and returns the audio bytes (mp3).
func (c *Client) Synthesize(ctx context.Context, text string, lang language.Language) ([]byte, error) {
	return c.textToSpeech(ctx, "/tts", text, lang)
}

// SynthesizeWelcome generates the welcome briefing audio. The backend serves
// it from a dedicated endpoint.
func (c *Client) SynthesizeWelcome(ctx context.Context, text string, lang language.Language) ([]byte, error) {
	return c.textToSpeech(ctx, "/generate_speech", text, lang)
}

func (c *Client) textToSpeech(ctx context.Context, path, text string, lang language.Language) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{
		"text":     text,
		"language": string(lang),
	})
	if err != nil {
		return nil, fmt.Errorf("encode tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("backend returned empty audio")
	}
	return body, nil
}

// Transcribe sends one audio answer and returns the transcription.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string, lang language.Language) (*TranscribeResult, error) {
	filename := fmt.Sprintf("answer-%s%s", uuid.NewString(), extensionFor(mimeType))
	req, err := c.multipartRequest(ctx, "/transcribe", filename, mimeType, audio, lang)
	if err != nil {
		return nil, err
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var result TranscribeResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode transcription response: %w", err)
	}
	if strings.TrimSpace(result.Text) == "" {
		return nil, fmt.Errorf("backend returned empty transcription")
	}
	return &result, nil
}

// UploadStatement submits the assembled interview statement as a text file
// and returns the backend's full analysis.
func (c *Client) UploadStatement(ctx context.Context, statement string, lang language.Language) (*Report, error) {
	filename := fmt.Sprintf("statement-%s.txt", uuid.NewString())
	req, err := c.multipartRequest(ctx, "/upload_audio", filename, "text/plain", []byte(statement), lang)
	if err != nil {
		return nil, err
	}
	return c.doReport(req)
}

// UploadAudio submits one standalone audio file for the single-recording
// flow and returns the backend's full analysis.
func (c *Client) UploadAudio(ctx context.Context, audio []byte, mimeType string, lang language.Language) (*Report, error) {
	filename := fmt.Sprintf("recording-%s%s", uuid.NewString(), extensionFor(mimeType))
	req, err := c.multipartRequest(ctx, "/upload_single_audio_file", filename, mimeType, audio, lang)
	if err != nil {
		return nil, err
	}
	return c.doReport(req)
}

// UpdateReport sends edited fields and returns the regenerated draft text.
func (c *Client) UpdateReport(ctx context.Context, update UpdateRequest) (string, error) {
	payload, err := json.Marshal(update)
	if err != nil {
		return "", fmt.Errorf("encode update request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/update_fir", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var result struct {
		Status   string `json:"status"`
		FIRDraft string `json:"fir_draft"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode update response: %w", err)
	}
	return result.FIRDraft, nil
}

// multipartRequest builds a file-upload request with the language form
// field the backend expects.
func (c *Client) multipartRequest(ctx context.Context, path, filename, mimeType string, data []byte, lang language.Language) (*http.Request, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write file data: %w", err)
	}

	if err := writer.WriteField("language", string(lang)); err != nil {
		return nil, fmt.Errorf("write language field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

func (c *Client) doReport(req *http.Request) (*Report, error) {
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var report Report
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &report, nil
}

// do executes the request and returns the response body. Non-2xx responses
// become an APIError carrying the backend's error text when present.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errBody) == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
		}
		return nil, apiErr
	}
	return body, nil
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
		return ".bin"
	}
}
