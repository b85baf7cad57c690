package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"navbuddy/api/internal/apperr"
	"navbuddy/api/internal/vision"
)

const (
	defaultTemperature = 0.45
	defaultMaxTokens   = 1024
)

type Engine struct {
	APIKey string
	Model  string

	opts []option.ClientOption
}

// New keeps the key on the engine; a client is created per call.
func New(apiKey, model string, opts ...option.ClientOption) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
		opts:   opts,
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Generate(ctx context.Context, in vision.Request) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	if len(in.Image.Data) == 0 {
		return "", fmt.Errorf("gemini: %w", apperr.ErrEmptyImage)
	}

	opts := append([]option.ClientOption{option.WithAPIKey(e.APIKey)}, e.opts...)
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", apperr.Upstream(e.Name(), err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	configure(m, in.JSON)

	resp, err := m.GenerateContent(ctx, parts(in)...)
	if err != nil {
		return "", apperr.Upstream(e.Name(), err)
	}
	txt := firstText(resp)
	if strings.TrimSpace(txt) == "" {
		return "", &apperr.UpstreamError{Service: e.Name(), Message: "empty response"}
	}
	return txt, nil
}

// configure sets the generation settings shared by all calls; jsonOut asks
// for application/json instead of text/plain.
func configure(m *genai.GenerativeModel, jsonOut bool) {
	mime := "text/plain"
	if jsonOut {
		mime = "application/json"
	}
	m.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: mime,
	}
	m.SetTemperature(defaultTemperature)
	m.SetMaxOutputTokens(defaultMaxTokens)
}

// parts: сначала текст промпта, потом картинка.
func parts(in vision.Request) []genai.Part {
	return []genai.Part{
		genai.Text(in.Prompt),
		genai.ImageData(in.Image.Format, in.Image.Data),
	}
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
