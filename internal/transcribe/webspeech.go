package transcribe

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/snarg/lectern/internal/media"
)

// WebSpeechClient calls a keyless web speech-recognition endpoint (the same
// one the browser speech API uses). Last-preference backend: needs network
// connectivity only, no credential.
type WebSpeechClient struct {
	url      string
	language string
	tempDir  string
	client   *http.Client
}

// webSpeechResponse is one line of the endpoint's JSON-lines response.
type webSpeechResponse struct {
	Result []struct {
		Alternative []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternative"`
		Final bool `json:"final"`
	} `json:"result"`
}

// NewWebSpeechClient creates a new web speech backend.
func NewWebSpeechClient(url, language, tempDir string, timeout time.Duration) *WebSpeechClient {
	return &WebSpeechClient{
		url:      url,
		language: language,
		tempDir:  tempDir,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name returns the backend name.
func (c *WebSpeechClient) Name() string { return "webspeech" }

// Available reports whether an endpoint URL is configured.
func (c *WebSpeechClient) Available() bool { return c.url != "" }

// Transcribe posts the track's PCM audio to the endpoint and parses the
// JSON-lines response. The service streams empty result lines before the
// final one; the first non-empty result wins.
func (c *WebSpeechClient) Transcribe(ctx context.Context, track *media.Track) (*BackendResult, error) {
	audioData, err := c.encodeWAV(track)
	if err != nil {
		return nil, err
	}

	lang := c.language
	if lang == "" {
		lang = "en"
	}
	endpoint, err := url.Parse(c.url)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint url: %w", err)
	}
	q := endpoint.Query()
	q.Set("client", "chromium")
	q.Set("lang", lang)
	q.Set("output", "json")
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(audioData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", fmt.Sprintf("audio/l16; rate=%d", track.SampleRate))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webspeech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("webspeech API error (status %d): %s", resp.StatusCode, string(body))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var parsed webSpeechResponse
		if err := json.Unmarshal([]byte(line), &parsed); err != nil {
			return nil, fmt.Errorf("decode response line: %w", err)
		}
		for _, r := range parsed.Result {
			if len(r.Alternative) > 0 && r.Alternative[0].Transcript != "" {
				return &BackendResult{Text: r.Alternative[0].Transcript, Language: lang}, nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return nil, fmt.Errorf("webspeech returned no recognition result")
}

func (c *WebSpeechClient) encodeWAV(track *media.Track) ([]byte, error) {
	wavPath, err := media.TempWAV(c.tempDir, "lectern-websp")
	if err != nil {
		return nil, err
	}
	defer os.Remove(wavPath)
	if err := track.WriteWAV(wavPath); err != nil {
		return nil, fmt.Errorf("write temp wav: %w", err)
	}
	return os.ReadFile(wavPath)
}
