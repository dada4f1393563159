package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/alphavoice/alphavoice/internal/audio"
)

var (
	// ErrMissingAPIKey is returned before any network call when no key is configured.
	ErrMissingAPIKey = errors.New("please set your API key")
	// ErrEmptyAudio is returned when the clip carries no bytes.
	ErrEmptyAudio = errors.New("no audio to transcribe")
)

// Request carries the per-session settings snapshot the call depends on.
type Request struct {
	APIKey   string
	Provider Provider
}

// UpstreamError wraps a provider or network failure. Error returns the
// upstream message unchanged so it can be shown to the user as-is.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	return e.Message
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Options configures a Client.
type Options struct {
	// ScratchDir holds the temporary recording file. Defaults to os.TempDir().
	ScratchDir string
	// BaseURLs overrides provider endpoints by provider name.
	BaseURLs map[string]string
	// Timeout bounds one HTTP request. Zero leaves it unbounded.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client performs one-shot Whisper transcriptions without retries.
type Client struct {
	scratchDir string
	baseURLs   map[string]string
	httpClient *http.Client
	logger     *slog.Logger

	// The scratch file name is fixed, so calls are serialized on it.
	scratchMu sync.Mutex
}

func NewClient(opts Options) *Client {
	scratchDir := strings.TrimSpace(opts.ScratchDir)
	if scratchDir == "" {
		scratchDir = filepath.Join(os.TempDir(), "alphavoice")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	baseURLs := make(map[string]string, len(opts.BaseURLs))
	for name, url := range opts.BaseURLs {
		if strings.TrimSpace(url) != "" {
			baseURLs[name] = strings.TrimSpace(url)
		}
	}

	return &Client{
		scratchDir: scratchDir,
		baseURLs:   baseURLs,
		httpClient: httpClient,
		logger:     opts.Logger,
	}
}

// Transcribe uploads clip to the request's provider and returns the recognized text.
func (c *Client) Transcribe(ctx context.Context, clip audio.Clip, req Request) (string, error) {
	apiKey := strings.TrimSpace(req.APIKey)
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}
	if clip.Empty() {
		return "", ErrEmptyAudio
	}

	provider := req.Provider.resolved()

	c.scratchMu.Lock()
	defer c.scratchMu.Unlock()

	path, err := c.writeScratch(clip)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = os.Remove(path)
	}()

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open scratch file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	api := c.api(apiKey, provider)

	start := time.Now()
	response, err := api.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:           file,
		Model:          openai.AudioModel(provider.Model()),
		ResponseFormat: openai.AudioResponseFormatJSON,
	})
	latency := time.Since(start)
	if err != nil {
		upstream := toUpstreamError(provider, err)
		c.logWarn("transcription request failed",
			"provider", provider.Name(),
			"status", upstream.StatusCode,
			"latency_ms", latency.Milliseconds(),
			"error", upstream.Message,
		)
		return "", upstream
	}
	if response == nil {
		return "", &UpstreamError{Provider: provider.Name(), Message: "transcription API returned no response"}
	}

	c.logDebug("transcription request complete",
		"provider", provider.Name(),
		"model", provider.Model(),
		"audio_bytes", len(clip.Data),
		"latency_ms", latency.Milliseconds(),
	)
	return response.Text, nil
}

// Ping verifies that the provider is reachable and accepts the key by listing models.
func (c *Client) Ping(ctx context.Context, req Request) error {
	apiKey := strings.TrimSpace(req.APIKey)
	if apiKey == "" {
		return ErrMissingAPIKey
	}
	provider := req.Provider.resolved()
	api := c.api(apiKey, provider)
	if _, err := api.Models.List(ctx); err != nil {
		return toUpstreamError(provider, err)
	}
	return nil
}

func (c *Client) api(apiKey string, provider Provider) openai.Client {
	return openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(c.baseURL(provider)),
		option.WithHTTPClient(c.httpClient),
		option.WithMaxRetries(0),
	)
}

func (c *Client) baseURL(provider Provider) string {
	if override, ok := c.baseURLs[provider.Name()]; ok {
		return override
	}
	return provider.BaseURL()
}

// writeScratch overwrites the single scratch recording file.
func (c *Client) writeScratch(clip audio.Clip) (string, error) {
	if err := os.MkdirAll(c.scratchDir, 0o700); err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	path := filepath.Join(c.scratchDir, "recording."+clip.Ext())
	if err := os.WriteFile(path, clip.Data, 0o600); err != nil {
		return "", fmt.Errorf("write scratch file: %w", err)
	}
	return path, nil
}

func toUpstreamError(provider Provider, err error) *UpstreamError {
	upstream := &UpstreamError{Provider: provider.Name(), Message: err.Error(), Err: err}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		upstream.StatusCode = apiErr.StatusCode
		if msg := apiErrorMessage(apiErr); msg != "" {
			upstream.Message = msg
		}
	}
	return upstream
}

// apiErrorMessage prefers the provider's own message. Both OpenAI and Groq
// nest it under "error"; some gateways return it at the top level.
func apiErrorMessage(apiErr *openai.Error) string {
	if msg := strings.TrimSpace(apiErr.Message); msg != "" {
		return msg
	}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(apiErr.RawJSON()), &envelope); err == nil {
		if msg := strings.TrimSpace(envelope.Error.Message); msg != "" {
			return msg
		}
	}

	if apiErr.StatusCode != 0 {
		return fmt.Sprintf("%d %s", apiErr.StatusCode, http.StatusText(apiErr.StatusCode))
	}
	return ""
}

func (c *Client) logWarn(msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg, args...)
}

func (c *Client) logDebug(msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Debug(msg, args...)
}
