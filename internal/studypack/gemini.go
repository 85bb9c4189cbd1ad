package studypack

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// GeminiRequester is the SDK-mediated implementation, using the official
// genai client.
type GeminiRequester struct {
	model *genai.GenerativeModel
	name  string
	log   zerolog.Logger
}

// NewGeminiRequester creates the SDK client. Fails fast on a missing key
// rather than producing a requester that errors on every call.
func NewGeminiRequester(ctx context.Context, apiKey, modelName string, log zerolog.Logger) (*GeminiRequester, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiRequester{
		model: client.GenerativeModel(modelName),
		name:  modelName,
		log:   log,
	}, nil
}

// Mode identifies the implementation in logs.
func (g *GeminiRequester) Mode() string { return "sdk" }

// Generate sends one request and parses the response. A failed call is
// terminal for this invocation; the caller decides what to surface.
func (g *GeminiRequester) Generate(ctx context.Context, transcript string) (*StudyPackage, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(BuildPrompt(transcript)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no candidates in response", ErrMalformed)
	}
	text := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text += string(txt)
		}
	}
	if text == "" {
		return nil, fmt.Errorf("%w: no text content in response", ErrMalformed)
	}

	pkg, err := Parse(text)
	if err != nil {
		g.log.Warn().Err(err).Str("model", g.name).Msg("generation response failed schema parse")
		return nil, err
	}
	return pkg, nil
}
