package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"google.golang.org/genai"
)

const (
	defaultModel       = "gemini-2.5-flash"
	defaultTemperature = float32(0.8)
)

var ErrUnsupportedDocument = errors.New("unsupported document type")

// inlineTypes are the document types Gemini accepts as inline bytes.
var inlineTypes = []string{"application/pdf"}

type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator wraps the Google GenAI client to send a prompt together with one document.
type Generator struct {
	models    contentModels
	modelName string
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Generator{models: client.Models, modelName: model}, nil
}

// GenerateContent sends the prompt and the document and returns the textual response.
func (g *Generator) GenerateContent(ctx context.Context, prompt string, document []byte) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	docPart, err := documentPart(document)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{docPart, {Text: prompt}},
	}}

	temperature := defaultTemperature
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
	}

	resp, err := g.models.GenerateContent(ctx, g.modelName, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

// documentPart turns document bytes into a request part. PDFs and images go inline,
// plain text is sent as text and anything else is refused.
func documentPart(data []byte) (*genai.Part, error) {
	if len(data) == 0 {
		return nil, errors.New("document must not be empty")
	}

	mtype := mimetype.Detect(data)

	switch {
	case mimetype.EqualsAny(mtype.String(), inlineTypes...):
		return &genai.Part{InlineData: &genai.Blob{MIMEType: mtype.String(), Data: data}}, nil
	case strings.HasPrefix(mtype.String(), "image/"):
		return &genai.Part{InlineData: &genai.Blob{MIMEType: mtype.String(), Data: data}}, nil
	case mtype.Is("text/plain") && utf8.Valid(data):
		return &genai.Part{Text: string(data)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDocument, mtype.String())
	}
}
