// Package transcribe defines the speech-to-text collaborator and a client
// for Whisper-compatible HTTP services.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Transcript is the normalized transcription output: the spoken text plus a
// BCP 47 language tag when the service reported one.
type Transcript struct {
	Text     string
	Language string
}

// Transcriber consumes audio bytes and produces a transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (*Transcript, error)
}

// Options configures the Whisper client.
type Options struct {
	BaseURL    string
	Model      string
	APIKey     string
	HTTPClient *http.Client
}

// WhisperClient posts audio to an OpenAI-compatible /audio/transcriptions
// endpoint.
type WhisperClient struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

// NewWhisperClient constructs the client. BaseURL is required.
func NewWhisperClient(opts Options) (*WhisperClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("transcribe: base url is required")
	}
	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &WhisperClient{
		baseURL:    baseURL,
		model:      model,
		apiKey:     strings.TrimSpace(opts.APIKey),
		httpClient: client,
	}, nil
}

type whisperResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Transcribe uploads the audio as multipart form data and decodes the
// verbose JSON reply.
func (c *WhisperClient) Transcribe(ctx context.Context, audio io.Reader, filename string) (*Transcript, error) {
	if filename == "" {
		filename = "audio.mp3"
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("transcribe: create form: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("transcribe: copy audio: %w", err)
	}
	if err := form.WriteField("model", c.model); err != nil {
		return nil, fmt.Errorf("transcribe: write model field: %w", err)
	}
	if err := form.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("transcribe: write format field: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("transcribe: close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, fmt.Errorf("transcribe: create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcribe: invoke service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("transcribe: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var decoded whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("transcribe: decode response: %w", err)
	}

	text := strings.TrimSpace(decoded.Text)
	if text == "" {
		return nil, fmt.Errorf("transcribe: empty transcription")
	}

	return &Transcript{
		Text:     text,
		Language: NormalizeLanguage(decoded.Language),
	}, nil
}

// NormalizeLanguage canonicalizes a reported language into a BCP 47 tag.
// Whisper services report either tags ("en", "en-US") or plain names
// ("english"); unparseable values pass through lowercased.
func NormalizeLanguage(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	if t, err := language.Parse(tag); err == nil {
		return t.String()
	}
	return strings.ToLower(tag)
}
