package studypack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultGenerativeBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// RESTRequester is the raw-API implementation: one POST to the
// :generateContent endpoint, no SDK. Interchangeable with GeminiRequester.
type RESTRequester struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	log     zerolog.Logger
}

// generateContentRequest is the provider request envelope.
type generateContentRequest struct {
	Contents []restContent `json:"contents"`
}

type restContent struct {
	Parts []restPart `json:"parts"`
}

type restPart struct {
	Text string `json:"text"`
}

// generateContentResponse is the provider response envelope; only the
// innermost text is extracted before schema parsing.
type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []restPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// NewRESTRequester creates the raw HTTP requester.
func NewRESTRequester(apiKey, model string, timeout time.Duration, log zerolog.Logger) (*RESTRequester, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}
	return &RESTRequester{
		apiKey:  apiKey,
		baseURL: defaultGenerativeBaseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}, nil
}

// Mode identifies the implementation in logs.
func (r *RESTRequester) Mode() string { return "rest" }

// Generate sends one request and parses the response. No retry on transport
// failure or malformed output.
func (r *RESTRequester) Generate(ctx context.Context, transcript string) (*StudyPackage, error) {
	payload, err := json.Marshal(generateContentRequest{
		Contents: []restContent{{Parts: []restPart{{Text: BuildPrompt(transcript)}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", r.baseURL, r.model, r.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: API error (status %d): %s", ErrTransport, resp.StatusCode, string(body))
	}

	var envelope generateContentResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", ErrMalformed, err)
	}
	if len(envelope.Candidates) == 0 || len(envelope.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no candidates in response", ErrMalformed)
	}
	text := ""
	for _, part := range envelope.Candidates[0].Content.Parts {
		text += part.Text
	}
	if text == "" {
		return nil, fmt.Errorf("%w: no text content in response", ErrMalformed)
	}

	pkg, err := Parse(text)
	if err != nil {
		r.log.Warn().Err(err).Str("model", r.model).Msg("generation response failed schema parse")
		return nil, err
	}
	return pkg, nil
}
