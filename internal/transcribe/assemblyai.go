package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/snarg/lectern/internal/media"
)

const defaultAssemblyAIBaseURL = "https://api.assemblyai.com/v2"

// assemblyAIPollInterval is how often a pending transcript job is polled.
const assemblyAIPollInterval = 2 * time.Second

// AssemblyAIClient calls the AssemblyAI speech-to-text API. Second-preference
// backend: cloud accuracy, requires a configured API key.
type AssemblyAIClient struct {
	apiKey   string
	baseURL  string
	language string
	tempDir  string
	client   *http.Client
}

// assemblyaiUploadResponse is the response from POST /upload.
type assemblyaiUploadResponse struct {
	UploadURL string `json:"upload_url"`
}

// assemblyaiTranscript is the transcript job envelope from the API.
type assemblyaiTranscript struct {
	ID           string `json:"id"`
	Status       string `json:"status"` // "queued", "processing", "completed", "error"
	Text         string `json:"text"`
	LanguageCode string `json:"language_code"`
	Error        string `json:"error"`
}

// NewAssemblyAIClient creates a new AssemblyAI backend.
func NewAssemblyAIClient(apiKey, language, tempDir string, timeout time.Duration) *AssemblyAIClient {
	return &AssemblyAIClient{
		apiKey:   apiKey,
		baseURL:  defaultAssemblyAIBaseURL,
		language: language,
		tempDir:  tempDir,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name returns the backend name.
func (a *AssemblyAIClient) Name() string { return "assemblyai" }

// Available reports whether an API key is configured.
func (a *AssemblyAIClient) Available() bool { return a.apiKey != "" }

// Transcribe uploads the track, creates a transcript job, and polls until it
// completes or the context expires.
func (a *AssemblyAIClient) Transcribe(ctx context.Context, track *media.Track) (*BackendResult, error) {
	audioData, err := a.encodeWAV(track)
	if err != nil {
		return nil, err
	}

	uploadURL, err := a.upload(ctx, audioData)
	if err != nil {
		return nil, err
	}

	id, err := a.createTranscript(ctx, uploadURL)
	if err != nil {
		return nil, err
	}

	for {
		tr, err := a.getTranscript(ctx, id)
		if err != nil {
			return nil, err
		}
		switch tr.Status {
		case "completed":
			return &BackendResult{Text: tr.Text, Language: tr.LanguageCode}, nil
		case "error":
			return nil, fmt.Errorf("assemblyai transcript failed: %s", tr.Error)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(assemblyAIPollInterval):
		}
	}
}

func (a *AssemblyAIClient) encodeWAV(track *media.Track) ([]byte, error) {
	wavPath, err := media.TempWAV(a.tempDir, "lectern-aai")
	if err != nil {
		return nil, err
	}
	defer os.Remove(wavPath)
	if err := track.WriteWAV(wavPath); err != nil {
		return nil, fmt.Errorf("write temp wav: %w", err)
	}
	return os.ReadFile(wavPath)
}

func (a *AssemblyAIClient) upload(ctx context.Context, audioData []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/upload", bytes.NewReader(audioData))
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Authorization", a.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	var out assemblyaiUploadResponse
	if err := a.do(req, &out); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	if out.UploadURL == "" {
		return "", fmt.Errorf("upload: empty upload_url in response")
	}
	return out.UploadURL, nil
}

func (a *AssemblyAIClient) createTranscript(ctx context.Context, audioURL string) (string, error) {
	body, _ := json.Marshal(map[string]any{
		"audio_url":     audioURL,
		"language_code": a.language,
		"punctuate":     true,
		"format_text":   true,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/transcript", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create transcript request: %w", err)
	}
	req.Header.Set("Authorization", a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	var out assemblyaiTranscript
	if err := a.do(req, &out); err != nil {
		return "", fmt.Errorf("create transcript: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("create transcript: empty id in response")
	}
	return out.ID, nil
}

func (a *AssemblyAIClient) getTranscript(ctx context.Context, id string) (*assemblyaiTranscript, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/transcript/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("create poll request: %w", err)
	}
	req.Header.Set("Authorization", a.apiKey)

	var out assemblyaiTranscript
	if err := a.do(req, &out); err != nil {
		return nil, fmt.Errorf("poll transcript: %w", err)
	}
	return &out, nil
}

func (a *AssemblyAIClient) do(req *http.Request, v any) error {
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("assemblyai API error (status %d): %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
